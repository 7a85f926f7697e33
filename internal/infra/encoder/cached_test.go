package encoder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/guestflow/faqbot/internal/infra/embcache"
)

func TestCachedEncoderHitSkipsInner(t *testing.T) {
	inner := &scriptedEncoder{dim: 3, vector: []float32{0.1, 0.2, 0.3}}
	enc := NewCachedEncoder(inner, embcache.NewMemoryStore(), discardLogger())

	first, err := enc.Encode(context.Background(), "what time is checkout")
	require.NoError(t, err)
	require.Equal(t, 1, inner.callCount())

	second, err := enc.Encode(context.Background(), "what time is checkout")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, 1, inner.callCount())
}

func TestCachedEncoderDistinctTextsMiss(t *testing.T) {
	inner := &scriptedEncoder{dim: 3, vector: []float32{1, 0, 0}}
	enc := NewCachedEncoder(inner, embcache.NewMemoryStore(), discardLogger())

	_, err := enc.Encode(context.Background(), "first")
	require.NoError(t, err)
	_, err = enc.Encode(context.Background(), "second")
	require.NoError(t, err)
	require.Equal(t, 2, inner.callCount())
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("cache offline")
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("cache offline")
}

func TestCachedEncoderSurvivesStoreFailure(t *testing.T) {
	inner := &scriptedEncoder{dim: 3, vector: []float32{1, 0, 0}}
	enc := NewCachedEncoder(inner, failingStore{}, discardLogger())

	vector, err := enc.Encode(context.Background(), "q")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 0, 0}, vector)
}

func TestCachedEncoderRejectsMalformedPayload(t *testing.T) {
	store := embcache.NewMemoryStore()
	inner := &scriptedEncoder{dim: 3, vector: []float32{1, 0, 0}}
	enc := NewCachedEncoder(inner, store, discardLogger())

	require.NoError(t, store.Set(context.Background(), enc.cacheKey("q"), []byte{1, 2, 3}))

	vector, err := enc.Encode(context.Background(), "q")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 0, 0}, vector)
	require.Equal(t, 1, inner.callCount())
}

func TestCachedEncoderDoesNotServeCrossSpaceVectors(t *testing.T) {
	primary := &scriptedEncoder{dim: 3, space: "provider/test-model", vector: []float32{1, 0, 0}}
	offline := &scriptedEncoder{dim: 3, space: "offline", vector: []float32{0, 1, 0}}
	fb := NewFallbackEncoder(primary, offline, discardLogger())
	enc := NewCachedEncoder(fb, embcache.NewMemoryStore(), discardLogger())

	// healthy: the provider vector is served and cached
	vector, err := enc.Encode(context.Background(), "what time is check-in")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 0, 0}, vector)

	// the provider dies and an unrelated query trips the sticky fallback
	primary.mu.Lock()
	primary.err = errors.New("provider down")
	primary.mu.Unlock()
	_, err = enc.Encode(context.Background(), "unrelated question")
	require.NoError(t, err)
	require.True(t, fb.Degraded())

	// the earlier text must now encode in the offline space, not replay
	// the cached provider vector
	vector, err = enc.Encode(context.Background(), "what time is check-in")
	require.NoError(t, err)
	require.Equal(t, []float32{0, 1, 0}, vector)
}

func TestCachedEncoderWritesUnderPostDegradationSpace(t *testing.T) {
	primary := &scriptedEncoder{dim: 3, space: "provider/test-model", err: errors.New("provider down")}
	offline := &scriptedEncoder{dim: 3, space: "offline", vector: []float32{0, 1, 0}}
	fb := NewFallbackEncoder(primary, offline, discardLogger())
	enc := NewCachedEncoder(fb, embcache.NewMemoryStore(), discardLogger())

	// the very first call degrades mid-encode; its vector must be cached
	// in the offline space and replayed without another encoder call
	vector, err := enc.Encode(context.Background(), "q")
	require.NoError(t, err)
	require.Equal(t, []float32{0, 1, 0}, vector)

	before := offline.callCount()
	vector, err = enc.Encode(context.Background(), "q")
	require.NoError(t, err)
	require.Equal(t, []float32{0, 1, 0}, vector)
	require.Equal(t, before, offline.callCount())
}

func TestVectorCodecRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75}
	out, err := decodeVector(encodeVector(in))
	require.NoError(t, err)
	require.Equal(t, in, out)

	_, err = decodeVector([]byte{0, 1})
	require.ErrorIs(t, err, errInvalidPayload)
}
