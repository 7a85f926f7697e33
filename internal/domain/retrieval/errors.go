package retrieval

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateQuestion is returned when an add or import would create a
	// second entry with identical question text.
	ErrDuplicateQuestion = errors.New("question already exists")
	// ErrEntryNotFound is returned by update/delete for an unknown entry id.
	ErrEntryNotFound = errors.New("faq entry not found")
	// ErrEncoderUnavailable marks a recoverable embedding provider failure.
	ErrEncoderUnavailable = errors.New("encoder unavailable")
	// ErrCorpusUnavailable marks a storage failure while loading or saving a corpus.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
)

// DimensionError reports a vector whose length differs from the configured
// dimension. It indicates a configuration inconsistency (for example half
// the corpus embedded under a different model) and is never absorbed:
// callers must abort the operation instead of truncating or padding.
type DimensionError struct {
	Want int
	Got  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: want %d, got %d", e.Want, e.Got)
}
