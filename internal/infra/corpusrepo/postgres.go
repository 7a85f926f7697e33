package corpusrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
)

// PostgresRepository persists corpora in a faq_entries table with a
// pgvector embedding column. Save replaces the tenant's rows inside one
// transaction, so readers never observe a half-written corpus.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Load implements retrieval.CorpusRepository.
func (r *PostgresRepository) Load(ctx context.Context, tenantID string) ([]retrieval.Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, question, answer, embedding, created_at, updated_at
		FROM faq_entries
		WHERE tenant_id = $1
		ORDER BY position
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%w: query faq entries: %v", retrieval.ErrCorpusUnavailable, err)
	}
	defer rows.Close()

	var entries []retrieval.Entry
	for rows.Next() {
		var (
			entry     retrieval.Entry
			embedding *pgvector.Vector
		)
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Answer, &embedding, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan faq entry: %w", err)
		}
		if embedding != nil {
			entry.Vector = embedding.Slice()
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read faq entries: %w", err)
	}
	return entries, nil
}

// Save implements retrieval.CorpusRepository.
func (r *PostgresRepository) Save(ctx context.Context, tenantID string, entries []retrieval.Entry) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: begin corpus save: %v", retrieval.ErrCorpusUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM faq_entries WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("clear faq entries: %w", err)
	}
	for position, entry := range entries {
		var embedding any
		if !entry.Stale() {
			embedding = pgvector.NewVector(entry.Vector)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO faq_entries (id, tenant_id, position, question, answer, embedding, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, entry.ID, tenantID, position, entry.Question, entry.Answer, embedding, entry.CreatedAt, entry.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert faq entry: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit corpus save: %v", retrieval.ErrCorpusUnavailable, err)
	}
	return nil
}

var _ retrieval.CorpusRepository = (*PostgresRepository)(nil)
