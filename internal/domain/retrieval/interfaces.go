package retrieval

import "context"

// Encoder turns raw text into a fixed-dimension vector. Implementations
// must be deterministic within a mode: the same text always yields the
// same vector within a process.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// CorpusRepository persists the per-tenant entry set. Save must be
// atomic enough that a concurrent Load never observes a half-written
// corpus; the concrete storage format is up to the implementation.
type CorpusRepository interface {
	Load(ctx context.Context, tenantID string) ([]Entry, error)
	Save(ctx context.Context, tenantID string, entries []Entry) error
}

// Notification is the payload pushed to staff when confidence is low.
type Notification struct {
	TenantID string
	Question string
	// Answer is the best stored answer that was rejected, or a failure
	// description when scoring itself broke.
	Answer  string
	Score   float64
	Context map[string]string
}

// Notifier delivers escalation notifications. Delivery failure must not
// surface into the retrieval policy; the service logs and continues.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// ConfigProvider resolves per-tenant retrieval settings.
type ConfigProvider interface {
	Get(ctx context.Context, tenantID string) (TenantSettings, error)
}

// Archiver stores a rendered CSV export snapshot, e.g. in object storage.
type Archiver interface {
	Archive(ctx context.Context, tenantID string, csv []byte) error
}
