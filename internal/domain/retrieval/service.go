package retrieval

import (
	"context"
	"log/slog"
	"sync"

	apperrors "github.com/guestflow/faqbot/pkg/errors"
	"github.com/guestflow/faqbot/pkg/metrics"
)

// Service is the retrieval core: it owns the per-tenant corpora and
// exposes query answering, FAQ CRUD, import/export and the embedding
// lifecycle. Mutations are serialized per tenant; queries read a
// consistent snapshot and run concurrently.
type Service struct {
	cfg      Config
	repo     CorpusRepository
	encoder  Encoder
	offline  Encoder
	notifier Notifier
	tenants  ConfigProvider
	archiver Archiver
	logger   *slog.Logger

	mu      sync.Mutex
	corpora map[string]*corpus
}

// corpus is the in-memory state for one tenant. mu serializes mutations
// while allowing concurrent snapshot reads.
type corpus struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewService wires up the retrieval core. archiver may be nil.
func NewService(cfg Config, repo CorpusRepository, encoder, offline Encoder, notifier Notifier, tenants ConfigProvider, archiver Archiver, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		repo:     repo,
		encoder:  encoder,
		offline:  offline,
		notifier: notifier,
		tenants:  tenants,
		archiver: archiver,
		logger:   logger.With("component", "retrieval.service"),
		corpora:  make(map[string]*corpus),
	}
}

// corpusFor returns the tenant's corpus, loading it from the repository
// on first access and seeding a brand-new tenant with example entries.
func (s *Service) corpusFor(ctx context.Context, tenantID string) (*corpus, error) {
	s.mu.Lock()
	c, ok := s.corpora[tenantID]
	if !ok {
		c = &corpus{}
		s.corpora[tenantID] = c
	}
	s.mu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries != nil {
		return c, nil
	}
	entries, err := s.repo.Load(ctx, tenantID)
	if err != nil {
		// leave the corpus unloaded so the next access retries
		return nil, apperrors.Wrap("corpus_unavailable", "load corpus failed", err)
	}
	if len(entries) == 0 && s.cfg.SeedOnCreate {
		entries = seedEntries()
		if err := s.repo.Save(ctx, tenantID, cloneEntries(entries)); err != nil {
			s.logger.Warn("seed corpus save failed", "tenant", tenantID, "error", err)
		} else {
			s.logger.Info("seeded example corpus", "tenant", tenantID, "entries", len(entries))
		}
	}
	if entries == nil {
		entries = []Entry{}
	}
	c.entries = entries
	return c, nil
}

// snapshot returns a copy of the tenant's committed entries.
func (s *Service) snapshot(ctx context.Context, tenantID string) ([]Entry, error) {
	c, err := s.corpusFor(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneEntries(c.entries), nil
}

// persist writes the corpus through to the repository. Callers hold the
// corpus write lock.
func (s *Service) persist(ctx context.Context, tenantID string, c *corpus) error {
	if err := s.repo.Save(ctx, tenantID, cloneEntries(c.entries)); err != nil {
		return apperrors.Wrap("corpus_unavailable", "save corpus failed", err)
	}
	return nil
}

func (s *Service) settings(ctx context.Context, tenantID string) TenantSettings {
	settings, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		s.logger.Warn("tenant settings lookup failed, using defaults", "tenant", tenantID, "error", err)
		settings = TenantSettings{}
	}
	return settings.sanitized(s.cfg)
}

func (s *Service) encoderFor(mode EncoderMode) Encoder {
	if mode == EncoderModeOffline && s.offline != nil {
		return s.offline
	}
	return s.encoder
}

// notify delivers an escalation notification, swallowing any delivery
// failure after logging it.
func (s *Service) notify(ctx context.Context, n Notification) bool {
	if s.notifier == nil {
		return false
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.logger.Warn("escalation notification failed", "tenant", n.TenantID, "error", err)
		metrics.NotificationsTotal.WithLabelValues("failed").Inc()
		return false
	}
	metrics.NotificationsTotal.WithLabelValues("sent").Inc()
	return true
}

func seedEntries() []Entry {
	entries := make([]Entry, 0, len(seedPairs))
	for _, pair := range seedPairs {
		entries = append(entries, newEntry(pair.Question, pair.Answer))
	}
	return entries
}

func cloneEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
