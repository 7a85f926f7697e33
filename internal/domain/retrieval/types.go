package retrieval

import "time"

// Decision is the retrieval policy outcome for a single query.
type Decision string

const (
	// DecisionAuto returns the stored answer verbatim.
	DecisionAuto Decision = "auto"
	// DecisionHedged returns the stored answer with an uncertainty disclaimer.
	DecisionHedged Decision = "hedged"
	// DecisionEscalated returns the generic ask-staff answer and hands the
	// query to human follow-up.
	DecisionEscalated Decision = "escalated"
)

// Entry is one question/answer pair in a tenant corpus. An entry whose
// Vector is empty is stale: its embedding was never computed or no longer
// reflects the question text, and it must not participate in ranking.
type Entry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Vector    []float32 `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Stale reports whether the entry is excluded from ranking.
func (e Entry) Stale() bool {
	return len(e.Vector) == 0
}

// Match pairs an entry with its similarity score against a query.
type Match struct {
	Entry Entry   `json:"entry"`
	Score float64 `json:"score"`
}

// Request carries one end-user query. Context holds free-form metadata
// (e.g. a room number) that is forwarded to escalation notifications.
type Request struct {
	Question string            `json:"question"`
	Context  map[string]string `json:"context,omitempty"`
}

// QueryResult is the transient outcome of answering one query.
type QueryResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Decision Decision `json:"decision"`
	Score    float64  `json:"score"`
	Matches  []Match  `json:"matches,omitempty"`
	Notified bool     `json:"notified"`
}

// QAPair is the import/export unit: a bare question/answer pair.
type QAPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ImportReport summarizes a bulk merge.
type ImportReport struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// RefreshReport summarizes an embedding refresh pass.
type RefreshReport struct {
	Regenerated int `json:"regenerated"`
	Failed      int `json:"failed"`
}

// EncoderMode selects where embeddings come from.
type EncoderMode string

const (
	// EncoderModeProvider uses the external embedding API.
	EncoderModeProvider EncoderMode = "provider"
	// EncoderModeOffline uses the deterministic hash-seeded encoder.
	EncoderModeOffline EncoderMode = "offline"
)

// TenantSettings are the per-tenant retrieval knobs.
type TenantSettings struct {
	// SimilarityThreshold is the outer threshold: any top score below it
	// fires a staff notification.
	SimilarityThreshold float64
	// EscalateThreshold is the inner threshold: below it the stored answer
	// is withheld entirely and the generic message is returned.
	EscalateThreshold float64
	// EncoderMode optionally forces the offline encoder for this tenant.
	EncoderMode EncoderMode
}
