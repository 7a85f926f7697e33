package retrieval

// Config holds runtime knobs for the retrieval core.
type Config struct {
	// Dimension is the embedding dimensionality D, fixed per deployment.
	Dimension int
	// Defaults applied when the tenant config provider has no override.
	SimilarityThreshold float64
	EscalateThreshold   float64
	// EscalationAnswer is the fixed ask-staff message.
	EscalationAnswer string
	// HedgeDisclaimer is appended to medium-confidence answers.
	HedgeDisclaimer string
	// FailureAnswer is shown when scoring itself fails.
	FailureAnswer string
	// SeedOnCreate seeds a new tenant corpus with example entries.
	SeedOnCreate bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Dimension:           1536,
		SimilarityThreshold: 0.6,
		EscalateThreshold:   0.4,
		EscalationAnswer:    "We are sorry, we need to check this question with our staff. Could you please wait a moment?",
		HedgeDisclaimer:     "If anything about this answer is unclear, please ask our staff directly.",
		FailureAnswer:       "An error occurred. Please contact our staff.",
		SeedOnCreate:        true,
	}
}

func (c TenantSettings) sanitized(defaults Config) TenantSettings {
	out := c
	if out.SimilarityThreshold <= 0 {
		out.SimilarityThreshold = defaults.SimilarityThreshold
	}
	if out.EscalateThreshold <= 0 {
		out.EscalateThreshold = defaults.EscalateThreshold
	}
	if out.EncoderMode == "" {
		out.EncoderMode = EncoderModeProvider
	}
	// an escalate threshold above the similarity threshold would erase
	// the hedged band and auto-answer below it; clamp so the two stay
	// ordered even when an override sets only one of the pair
	if out.EscalateThreshold > out.SimilarityThreshold {
		out.EscalateThreshold = out.SimilarityThreshold
	}
	return out
}
