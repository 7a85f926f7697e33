package encoder

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
)

// FallbackEncoder wraps the provider encoder with the offline
// deterministic one. After the first provider failure the process stays
// on the offline encoder: provider and offline vectors live in
// incompatible spaces, so mixing them within one corpus would corrupt
// ranking. Recovering the provider requires a restart plus a full
// embedding rebuild.
type FallbackEncoder struct {
	primary  retrieval.Encoder
	fallback retrieval.Encoder
	degraded atomic.Bool
	logger   *slog.Logger
}

// NewFallbackEncoder decorates primary with a sticky offline fallback.
func NewFallbackEncoder(primary, fallback retrieval.Encoder, logger *slog.Logger) *FallbackEncoder {
	return &FallbackEncoder{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With("component", "encoder.fallback"),
	}
}

// Encode implements retrieval.Encoder.
func (e *FallbackEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if e.degraded.Load() {
		return e.fallback.Encode(ctx, text)
	}
	vector, err := e.primary.Encode(ctx, text)
	if err == nil {
		return vector, nil
	}
	if e.degraded.CompareAndSwap(false, true) {
		e.logger.Error("provider encoder failed, switching to offline encoder for the remainder of the process", "error", err)
	}
	return e.fallback.Encode(ctx, text)
}

// Dimension implements retrieval.Encoder.
func (e *FallbackEncoder) Dimension() int {
	return e.primary.Dimension()
}

// Space names the vector space the encoder currently produces, so
// cached provider vectors stop matching once the process degrades.
func (e *FallbackEncoder) Space() string {
	if e.degraded.Load() {
		return spaceOf(e.fallback)
	}
	return spaceOf(e.primary)
}

// Degraded reports whether the process has switched to the offline encoder.
func (e *FallbackEncoder) Degraded() bool {
	return e.degraded.Load()
}

var _ retrieval.Encoder = (*FallbackEncoder)(nil)
