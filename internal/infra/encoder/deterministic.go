package encoder

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
)

// DeterministicEncoder derives a unit vector from a stable hash of the
// input, avoiding any network calls. Its vectors are self-consistent
// but carry no semantic meaning: identical text always maps to the same
// vector, similar text does not map to nearby vectors.
type DeterministicEncoder struct {
	dim int
}

// NewDeterministicEncoder constructs the offline encoder.
func NewDeterministicEncoder(dim int) *DeterministicEncoder {
	if dim <= 0 {
		dim = 32
	}
	return &DeterministicEncoder{dim: dim}
}

// Encode implements retrieval.Encoder.
func (e *DeterministicEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	hash := fnv.New64a()
	_, _ = hash.Write([]byte(text))
	seed := hash.Sum64()

	vector := make([]float32, e.dim)
	var norm float64
	for i := 0; i < e.dim; i++ {
		seed = seed*1099511628211 + 1469598103934665603
		v := float64(seed%997) / 997.0
		vector[i] = float32(v)
		norm += v * v
	}
	// normalize so cosine scores stay comparable with provider vectors
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector, nil
}

// Dimension implements retrieval.Encoder.
func (e *DeterministicEncoder) Dimension() int {
	return e.dim
}

// Space names the vector space shared by all offline encoders.
func (e *DeterministicEncoder) Space() string {
	return "offline"
}

var _ retrieval.Encoder = (*DeterministicEncoder)(nil)
