package retrieval

import (
	"context"
	"errors"
)

// Refresh recomputes vectors for the tenant's stale entries, or for
// every entry when full is true. A full rebuild is the recovery path
// after a bulk import or an encoder mode change.
//
// Encoding happens outside the corpus write lock; each result is folded
// back in under a short per-entry critical section, and skipped if the
// question text changed while the encoder call was in flight. Entries
// whose encoding failed stay stale and are retried on the next refresh.
// With no intervening corpus change a second Refresh finds nothing
// stale and issues zero encoder calls.
func (s *Service) Refresh(ctx context.Context, tenantID string, full bool) (RefreshReport, error) {
	c, err := s.corpusFor(ctx, tenantID)
	if err != nil {
		return RefreshReport{}, err
	}

	settings := s.settings(ctx, tenantID)
	encoder := s.encoderFor(settings.EncoderMode)

	type pending struct {
		id       string
		question string
	}
	c.mu.RLock()
	work := make([]pending, 0, len(c.entries))
	for _, entry := range c.entries {
		if full || entry.Stale() {
			work = append(work, pending{id: entry.ID, question: entry.Question})
		}
	}
	c.mu.RUnlock()

	var report RefreshReport
	dirty := false
	for _, item := range work {
		vector, err := encoder.Encode(ctx, item.question)
		if err != nil {
			var dimErr *DimensionError
			if errors.As(err, &dimErr) {
				return report, err
			}
			s.logger.Warn("embedding refresh failed for entry", "tenant", tenantID, "entry", item.id, "error", err)
			report.Failed++
			if full && s.clearVector(c, item.id) {
				dirty = true
			}
			continue
		}
		if len(vector) != s.cfg.Dimension {
			return report, &DimensionError{Want: s.cfg.Dimension, Got: len(vector)}
		}
		if s.setVector(c, item.id, item.question, vector) {
			report.Regenerated++
			dirty = true
		}
	}

	if dirty {
		c.mu.Lock()
		err = s.persist(ctx, tenantID, c)
		c.mu.Unlock()
		if err != nil {
			return report, err
		}
	}

	s.logger.Info("embedding refresh complete", "tenant", tenantID, "full", full,
		"regenerated", report.Regenerated, "failed", report.Failed)
	return report, nil
}

// setVector installs a freshly encoded vector, unless the entry was
// deleted or its question edited while the encoder call was in flight.
func (s *Service) setVector(c *corpus, entryID, question string, vector []float32) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, entry := range c.entries {
		if entry.ID != entryID {
			continue
		}
		if entry.Question != question {
			return false
		}
		entry.Vector = vector
		c.entries[i] = entry
		return true
	}
	return false
}

// clearVector marks an entry stale. Used during a full rebuild when
// re-encoding failed, so a vector from a previous encoder mode is never
// served as fresh.
func (s *Service) clearVector(c *corpus, entryID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, entry := range c.entries {
		if entry.ID != entryID {
			continue
		}
		if entry.Vector == nil {
			return false
		}
		entry.Vector = nil
		c.entries[i] = entry
		return true
	}
	return false
}
