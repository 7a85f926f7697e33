package retrieval

import (
	"math"
	"sort"
)

// Rank scores every eligible corpus entry against the query vector and
// returns the matches best-first. Stale entries are never scored. Equal
// scores keep corpus insertion order. A vector whose length differs from
// dim aborts with a DimensionError.
func Rank(query []float32, entries []Entry, dim int) ([]Match, error) {
	if len(query) != dim {
		return nil, &DimensionError{Want: dim, Got: len(query)}
	}
	matches := make([]Match, 0, len(entries))
	for _, entry := range entries {
		if entry.Stale() {
			continue
		}
		if len(entry.Vector) != dim {
			return nil, &DimensionError{Want: dim, Got: len(entry.Vector)}
		}
		matches = append(matches, Match{Entry: entry, Score: cosineSimilarity(query, entry.Vector)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// cosineSimilarity returns dot(a,b)/(|a||b|). Degenerate zero vectors
// score -1 so they always rank last instead of failing the request.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return -1
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
