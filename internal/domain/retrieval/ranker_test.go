package retrieval

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func entryWithVector(question string, vector []float32) Entry {
	entry := newEntry(question, "answer for "+question)
	entry.Vector = vector
	return entry
}

func TestRankOrdersByDescendingScore(t *testing.T) {
	query := []float32{1, 0, 0}
	entries := []Entry{
		entryWithVector("far", []float32{0, 1, 0}),
		entryWithVector("close", []float32{1, 0.1, 0}),
		entryWithVector("exact", []float32{1, 0, 0}),
	}

	matches, err := Rank(query, entries, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	require.Equal(t, "exact", matches[0].Entry.Question)
	require.Equal(t, "close", matches[1].Entry.Question)
	require.Equal(t, "far", matches[2].Entry.Question)
	for i := 1; i < len(matches); i++ {
		require.LessOrEqual(t, matches[i].Score, matches[i-1].Score)
	}
}

func TestRankExcludesStaleEntries(t *testing.T) {
	stale := newEntry("stale", "answer")
	entries := []Entry{
		stale,
		entryWithVector("fresh", []float32{1, 0, 0}),
	}

	matches, err := Rank([]float32{1, 0, 0}, entries, 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "fresh", matches[0].Entry.Question)
}

func TestRankTieBreakPreservesInsertionOrder(t *testing.T) {
	entries := []Entry{
		entryWithVector("first", []float32{0, 1, 0}),
		entryWithVector("second", []float32{0, 1, 0}),
		entryWithVector("third", []float32{0, 1, 0}),
	}

	matches, err := Rank([]float32{0, 1, 0}, entries, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	require.Equal(t, "first", matches[0].Entry.Question)
	require.Equal(t, "second", matches[1].Entry.Question)
	require.Equal(t, "third", matches[2].Entry.Question)
}

func TestRankRejectsQueryDimensionMismatch(t *testing.T) {
	_, err := Rank([]float32{1, 0}, nil, 3)
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	require.Equal(t, 3, dimErr.Want)
	require.Equal(t, 2, dimErr.Got)
}

func TestRankRejectsEntryDimensionMismatch(t *testing.T) {
	entries := []Entry{entryWithVector("short", []float32{1, 0})}

	_, err := Rank([]float32{1, 0, 0}, entries, 3)
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
}

func TestRankEmptyCorpusReturnsNoMatches(t *testing.T) {
	matches, err := Rank([]float32{1, 0, 0}, nil, 3)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestRankDegenerateVectorRanksLast(t *testing.T) {
	entries := []Entry{
		entryWithVector("zero", []float32{0, 0, 0}),
		entryWithVector("opposite", []float32{-1, 1, 0}),
	}

	matches, err := Rank([]float32{1, 0, 0}, entries, 3)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "opposite", matches[0].Entry.Question)
	require.Equal(t, "zero", matches[1].Entry.Question)
}
