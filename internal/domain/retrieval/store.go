package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/guestflow/faqbot/pkg/errors"
)

func newEntry(question, answer string) Entry {
	now := time.Now().UTC()
	return Entry{
		ID:        uuid.NewString(),
		Question:  question,
		Answer:    answer,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Add appends a new entry with a stale vector. Duplicate question text
// (case-sensitive exact match) fails with ErrDuplicateQuestion.
func (s *Service) Add(ctx context.Context, tenantID, question, answer string) (Entry, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return Entry{}, apperrors.Wrap("invalid_input", "question and answer cannot be empty", nil)
	}
	c, err := s.corpusFor(ctx, tenantID)
	if err != nil {
		return Entry{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.entries {
		if existing.Question == question {
			return Entry{}, ErrDuplicateQuestion
		}
	}
	entry := newEntry(question, answer)
	c.entries = append(c.entries, entry)
	if err := s.persist(ctx, tenantID, c); err != nil {
		c.entries = c.entries[:len(c.entries)-1]
		return Entry{}, err
	}
	return entry, nil
}

// Update rewrites an entry. A changed question marks the vector stale;
// an answer-only edit keeps the vector valid, since the answer text does
// not participate in retrieval.
func (s *Service) Update(ctx context.Context, tenantID, entryID, question, answer string) (Entry, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return Entry{}, apperrors.Wrap("invalid_input", "question and answer cannot be empty", nil)
	}
	c, err := s.corpusFor(ctx, tenantID)
	if err != nil {
		return Entry{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := -1
	for i, existing := range c.entries {
		if existing.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Entry{}, ErrEntryNotFound
	}
	for i, existing := range c.entries {
		if i != idx && existing.Question == question {
			return Entry{}, ErrDuplicateQuestion
		}
	}
	previous := c.entries[idx]
	updated := previous
	updated.Question = question
	updated.Answer = answer
	updated.UpdatedAt = time.Now().UTC()
	if question != previous.Question {
		updated.Vector = nil
	}
	c.entries[idx] = updated
	if err := s.persist(ctx, tenantID, c); err != nil {
		c.entries[idx] = previous
		return Entry{}, err
	}
	return updated, nil
}

// Delete removes an entry by id.
func (s *Service) Delete(ctx context.Context, tenantID, entryID string) error {
	c, err := s.corpusFor(ctx, tenantID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := -1
	for i, existing := range c.entries {
		if existing.ID == entryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrEntryNotFound
	}
	previous := c.entries
	c.entries = append(append([]Entry{}, c.entries[:idx]...), c.entries[idx+1:]...)
	if err := s.persist(ctx, tenantID, c); err != nil {
		c.entries = previous
		return err
	}
	return nil
}

// Import merges external pairs into the corpus, silently skipping any
// whose question exactly matches an existing entry. Imported entries are
// stale until the next refresh; existing entries are never overwritten.
func (s *Service) Import(ctx context.Context, tenantID string, pairs []QAPair) (ImportReport, error) {
	c, err := s.corpusFor(ctx, tenantID)
	if err != nil {
		return ImportReport{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(c.entries))
	for _, existing := range c.entries {
		seen[existing.Question] = struct{}{}
	}

	var report ImportReport
	previous := c.entries
	merged := cloneEntries(c.entries)
	for _, pair := range pairs {
		question := strings.TrimSpace(pair.Question)
		answer := strings.TrimSpace(pair.Answer)
		if question == "" || answer == "" {
			report.Skipped++
			continue
		}
		if _, dup := seen[question]; dup {
			report.Skipped++
			continue
		}
		seen[question] = struct{}{}
		merged = append(merged, newEntry(question, answer))
		report.Added++
	}
	if report.Added == 0 {
		return report, nil
	}
	c.entries = merged
	if err := s.persist(ctx, tenantID, c); err != nil {
		c.entries = previous
		return ImportReport{}, err
	}
	return report, nil
}

// Export returns every (question, answer) pair in insertion order and
// archives a CSV snapshot when an archiver is configured.
func (s *Service) Export(ctx context.Context, tenantID string) ([]QAPair, error) {
	entries, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	pairs := make([]QAPair, 0, len(entries))
	for _, entry := range entries {
		pairs = append(pairs, QAPair{Question: entry.Question, Answer: entry.Answer})
	}
	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, tenantID, MarshalCSV(pairs)); err != nil {
			s.logger.Warn("export archive failed", "tenant", tenantID, "error", err)
		}
	}
	return pairs, nil
}

// List returns the tenant's entries in insertion order.
func (s *Service) List(ctx context.Context, tenantID string) ([]Entry, error) {
	return s.snapshot(ctx, tenantID)
}
