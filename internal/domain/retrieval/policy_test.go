package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// seedCorpusWithScore installs one embedded entry and wires the stub
// encoder so that ranking the given query against it yields score.
// Vectors are unit length, so cosine equals the dot product.
func seedCorpusWithScore(t *testing.T, svc *Service, deps *testServiceDeps, query string, score float64) Entry {
	t.Helper()
	ctx := context.Background()

	deps.encoder.vectors["stored question"] = []float32{1, 0, 0}
	s := float32(score)
	deps.encoder.vectors[query] = []float32{s, float32sqrt(1 - score*score), 0}

	entry, err := svc.Add(ctx, testTenant, "stored question", "the stored answer")
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, testTenant, false)
	require.NoError(t, err)
	return entry
}

func float32sqrt(v float64) float32 {
	if v <= 0 {
		return 0
	}
	root := v
	for i := 0; i < 40; i++ {
		root = (root + v/root) / 2
	}
	return float32(root)
}

func TestAnswerHighConfidenceReturnsStoredAnswerVerbatim(t *testing.T) {
	svc, deps := newTestService()
	seedCorpusWithScore(t, svc, deps, "user question", 0.8)

	result, err := svc.Answer(context.Background(), testTenant, Request{Question: "user question"})
	require.NoError(t, err)
	require.Equal(t, DecisionAuto, result.Decision)
	require.Equal(t, "the stored answer", result.Answer)
	require.InDelta(t, 0.8, result.Score, 0.01)
	require.Empty(t, deps.notifier.sent())
}

func TestAnswerMediumConfidenceHedgesAndNotifies(t *testing.T) {
	svc, deps := newTestService()
	seedCorpusWithScore(t, svc, deps, "user question", 0.5)

	result, err := svc.Answer(context.Background(), testTenant, Request{Question: "user question"})
	require.NoError(t, err)
	require.Equal(t, DecisionHedged, result.Decision)
	require.True(t, strings.HasPrefix(result.Answer, "the stored answer"))
	require.Contains(t, result.Answer, svc.cfg.HedgeDisclaimer)

	sent := deps.notifier.sent()
	require.Len(t, sent, 1)
	require.Equal(t, "user question", sent[0].Question)
	require.Equal(t, "the stored answer", sent[0].Answer)
	require.InDelta(t, 0.5, sent[0].Score, 0.01)
}

func TestAnswerLowConfidenceEscalatesAndNotifiesWithRejectedAnswer(t *testing.T) {
	svc, deps := newTestService()
	seedCorpusWithScore(t, svc, deps, "user question", 0.2)

	result, err := svc.Answer(context.Background(), testTenant, Request{Question: "user question"})
	require.NoError(t, err)
	require.Equal(t, DecisionEscalated, result.Decision)
	require.Equal(t, svc.cfg.EscalationAnswer, result.Answer)

	sent := deps.notifier.sent()
	require.Len(t, sent, 1)
	require.Equal(t, "the stored answer", sent[0].Answer)
	require.InDelta(t, 0.2, sent[0].Score, 0.01)
}

func TestAnswerEmptyCorpusEscalatesWithZeroScore(t *testing.T) {
	svc, deps := newTestService()

	result, err := svc.Answer(context.Background(), testTenant, Request{Question: "anything"})
	require.NoError(t, err)
	require.Equal(t, DecisionEscalated, result.Decision)
	require.Equal(t, svc.cfg.EscalationAnswer, result.Answer)

	sent := deps.notifier.sent()
	require.Len(t, sent, 1)
	require.Zero(t, sent[0].Score)
	require.Empty(t, sent[0].Answer)
}

func TestAnswerEncoderFailureEscalatesWithoutSurfacingError(t *testing.T) {
	svc, deps := newTestService()
	deps.encoder.err = errBoom

	result, err := svc.Answer(context.Background(), testTenant, Request{Question: "anything"})
	require.NoError(t, err)
	require.Equal(t, DecisionEscalated, result.Decision)
	require.Equal(t, svc.cfg.FailureAnswer, result.Answer)

	sent := deps.notifier.sent()
	require.Len(t, sent, 1)
	require.Contains(t, sent[0].Answer, "error:")
	require.Zero(t, sent[0].Score)
}

func TestAnswerCorpusLoadFailureEscalates(t *testing.T) {
	svc, deps := newTestService()
	deps.repo.loadErr = errBoom

	result, err := svc.Answer(context.Background(), testTenant, Request{Question: "anything"})
	require.NoError(t, err)
	require.Equal(t, DecisionEscalated, result.Decision)
	require.Equal(t, svc.cfg.FailureAnswer, result.Answer)
}

func TestAnswerDimensionMismatchAbortsLoudly(t *testing.T) {
	svc, deps := newTestService()
	seedCorpusWithScore(t, svc, deps, "user question", 0.8)
	deps.encoder.vectors["user question"] = []float32{1, 0} // wrong dimension

	_, err := svc.Answer(context.Background(), testTenant, Request{Question: "user question"})
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Answer(context.Background(), testTenant, Request{Question: "   "})
	require.Error(t, err)
}

func TestAnswerNotificationFailureIsSwallowed(t *testing.T) {
	svc, deps := newTestService()
	seedCorpusWithScore(t, svc, deps, "user question", 0.2)
	deps.notifier.err = errBoom

	result, err := svc.Answer(context.Background(), testTenant, Request{Question: "user question"})
	require.NoError(t, err)
	require.Equal(t, DecisionEscalated, result.Decision)
	require.False(t, result.Notified)
}

func TestAnswerContextFlowsIntoNotification(t *testing.T) {
	svc, deps := newTestService()
	seedCorpusWithScore(t, svc, deps, "user question", 0.2)

	_, err := svc.Answer(context.Background(), testTenant, Request{
		Question: "user question",
		Context:  map[string]string{"room": "204"},
	})
	require.NoError(t, err)

	sent := deps.notifier.sent()
	require.Len(t, sent, 1)
	require.Equal(t, "204", sent[0].Context["room"])
}

func TestTenantSettingsClampEscalateToSimilarity(t *testing.T) {
	defaults := DefaultConfig() // similarity 0.6, escalate 0.4
	got := TenantSettings{SimilarityThreshold: 0.3}.sanitized(defaults)
	require.Equal(t, 0.3, got.SimilarityThreshold)
	require.Equal(t, 0.3, got.EscalateThreshold)
}

func TestAnswerPartialOverrideKeepsThresholdsOrdered(t *testing.T) {
	svc, deps := newTestService()
	seedCorpusWithScore(t, svc, deps, "user question", 0.35)
	// the override lowers only the outer threshold below the inherited
	// escalate default (0.4); the pair must stay ordered, so 0.35 is an
	// auto answer rather than falling into an inverted band
	deps.tenants.settings = TenantSettings{SimilarityThreshold: 0.3}

	result, err := svc.Answer(context.Background(), testTenant, Request{Question: "user question"})
	require.NoError(t, err)
	require.Equal(t, DecisionAuto, result.Decision)
	require.Empty(t, deps.notifier.sent())
}

func TestAnswerTenantThresholdOverridesApply(t *testing.T) {
	svc, deps := newTestService()
	seedCorpusWithScore(t, svc, deps, "user question", 0.5)
	// with a lowered outer threshold 0.5 becomes an auto answer
	deps.tenants.settings = TenantSettings{SimilarityThreshold: 0.45, EscalateThreshold: 0.3}

	result, err := svc.Answer(context.Background(), testTenant, Request{Question: "user question"})
	require.NoError(t, err)
	require.Equal(t, DecisionAuto, result.Decision)
	require.Empty(t, deps.notifier.sent())
}
