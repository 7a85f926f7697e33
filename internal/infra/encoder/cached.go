package encoder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"log/slog"
	"math"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
	"github.com/guestflow/faqbot/pkg/metrics"
)

// KVStore is the consumer interface for the embedding cache.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// spacer is implemented by encoders whose vectors belong to a named
// space. Vectors from different spaces (provider models, the offline
// encoder) are mutually incomparable and must never share a cache key.
type spacer interface {
	Space() string
}

func spaceOf(enc retrieval.Encoder) string {
	if s, ok := enc.(spacer); ok {
		return s.Space()
	}
	return "default"
}

// CachedEncoder memoizes embeddings in a key-value store keyed by the
// inner encoder's current space and a hash of the input text, so a
// cached vector is only ever served back into the space that produced
// it. Cache errors degrade to the inner encoder.
type CachedEncoder struct {
	inner  retrieval.Encoder
	store  KVStore
	prefix string
	logger *slog.Logger
}

// NewCachedEncoder creates the caching decorator.
func NewCachedEncoder(inner retrieval.Encoder, store KVStore, logger *slog.Logger) *CachedEncoder {
	return &CachedEncoder{
		inner:  inner,
		store:  store,
		prefix: "emb:",
		logger: logger.With("component", "encoder.cache"),
	}
}

// Encode implements retrieval.Encoder.
func (e *CachedEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	key := e.cacheKey(text)

	payload, ok, err := e.store.Get(ctx, key)
	if err != nil {
		e.logger.Warn("embedding cache read failed", "error", err)
	} else if ok {
		if vector, decodeErr := decodeVector(payload); decodeErr == nil && len(vector) == e.inner.Dimension() {
			metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
			return vector, nil
		}
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()

	vector, err := e.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	// recompute the key: the inner encoder may have switched spaces
	// (sticky fallback) while this call was in flight
	if err := e.store.Set(ctx, e.cacheKey(text), encodeVector(vector)); err != nil {
		e.logger.Warn("embedding cache write failed", "error", err)
	}
	return vector, nil
}

// Dimension implements retrieval.Encoder.
func (e *CachedEncoder) Dimension() int {
	return e.inner.Dimension()
}

func (e *CachedEncoder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return e.prefix + spaceOf(e.inner) + ":" + hex.EncodeToString(sum[:])
}

func encodeVector(vector []float32) []byte {
	out := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

func decodeVector(payload []byte) ([]float32, error) {
	if len(payload)%4 != 0 {
		return nil, errInvalidPayload
	}
	vector := make([]float32, len(payload)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4:]))
	}
	return vector, nil
}

var _ retrieval.Encoder = (*CachedEncoder)(nil)

var errInvalidPayload = errors.New("cached embedding payload is malformed")
