package corpusrepo

import (
	"context"
	"sync"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
)

// MemoryRepository keeps each tenant corpus in process memory. Used for
// tests and for development without Postgres.
type MemoryRepository struct {
	mu      sync.RWMutex
	corpora map[string][]retrieval.Entry
}

// NewMemoryRepository constructs a repository backed by memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{corpora: make(map[string][]retrieval.Entry)}
}

// Load implements retrieval.CorpusRepository.
func (r *MemoryRepository) Load(_ context.Context, tenantID string) ([]retrieval.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored := r.corpora[tenantID]
	out := make([]retrieval.Entry, len(stored))
	copy(out, stored)
	return out, nil
}

// Save implements retrieval.CorpusRepository.
func (r *MemoryRepository) Save(_ context.Context, tenantID string, entries []retrieval.Entry) error {
	stored := make([]retrieval.Entry, len(entries))
	copy(stored, entries)
	r.mu.Lock()
	r.corpora[tenantID] = stored
	r.mu.Unlock()
	return nil
}

var _ retrieval.CorpusRepository = (*MemoryRepository)(nil)
