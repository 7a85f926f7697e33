package retrieval

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/guestflow/faqbot/pkg/errors"
	"github.com/guestflow/faqbot/pkg/metrics"
)

const topMatchesKept = 5

// Answer resolves one end-user query against the tenant corpus.
//
// The decision hinges on the top match's score s and two thresholds:
// s >= similarityThreshold returns the stored answer verbatim with no
// notification. Below it, staff are always notified with the rejected
// answer and s; the inner escalate threshold then only decides what the
// user sees, the stored answer with a disclaimer or the generic
// ask-staff message. Scoring failures of any kind degrade to an
// escalated outcome with a best-effort notification; the caller never
// sees a raw internal error. The one exception is a dimension mismatch,
// which signals deployment misconfiguration and aborts loudly.
func (s *Service) Answer(ctx context.Context, tenantID string, req Request) (QueryResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return QueryResult{}, apperrors.Wrap("invalid_input", "question cannot be empty", nil)
	}

	settings := s.settings(ctx, tenantID)

	entries, err := s.snapshot(ctx, tenantID)
	if err != nil {
		return s.answerFailure(ctx, tenantID, question, req.Context, err), nil
	}

	vector, err := s.encoderFor(settings.EncoderMode).Encode(ctx, question)
	if err != nil {
		return s.answerFailure(ctx, tenantID, question, req.Context, err), nil
	}

	matches, err := Rank(vector, entries, s.cfg.Dimension)
	if err != nil {
		var dimErr *DimensionError
		if errors.As(err, &dimErr) {
			return QueryResult{}, err
		}
		return s.answerFailure(ctx, tenantID, question, req.Context, err), nil
	}

	result := QueryResult{Question: question}
	if len(matches) > topMatchesKept {
		result.Matches = matches[:topMatchesKept]
	} else {
		result.Matches = matches
	}

	if len(matches) == 0 {
		result.Decision = DecisionEscalated
		result.Answer = s.cfg.EscalationAnswer
		result.Notified = s.notify(ctx, Notification{
			TenantID: tenantID,
			Question: question,
			Score:    0,
			Context:  req.Context,
		})
		metrics.QueryDecisionsTotal.WithLabelValues(tenantID, string(result.Decision)).Inc()
		return result, nil
	}

	top := matches[0]
	result.Score = top.Score

	switch {
	case top.Score >= settings.SimilarityThreshold:
		result.Decision = DecisionAuto
		result.Answer = top.Entry.Answer
	default:
		result.Notified = s.notify(ctx, Notification{
			TenantID: tenantID,
			Question: question,
			Answer:   top.Entry.Answer,
			Score:    top.Score,
			Context:  req.Context,
		})
		if top.Score < settings.EscalateThreshold {
			result.Decision = DecisionEscalated
			result.Answer = s.cfg.EscalationAnswer
		} else {
			result.Decision = DecisionHedged
			result.Answer = top.Entry.Answer + "\n\n" + s.cfg.HedgeDisclaimer
		}
	}

	metrics.QueryDecisionsTotal.WithLabelValues(tenantID, string(result.Decision)).Inc()
	return result, nil
}

// answerFailure converts an internal scoring failure into the safe
// escalated outcome, notifying staff with the failure in place of an
// answer.
func (s *Service) answerFailure(ctx context.Context, tenantID, question string, reqContext map[string]string, cause error) QueryResult {
	s.logger.Error("query scoring failed", "tenant", tenantID, "error", cause)
	notified := s.notify(ctx, Notification{
		TenantID: tenantID,
		Question: question,
		Answer:   "error: " + cause.Error(),
		Score:    0,
		Context:  reqContext,
	})
	metrics.QueryDecisionsTotal.WithLabelValues(tenantID, string(DecisionEscalated)).Inc()
	return QueryResult{
		Question: question,
		Answer:   s.cfg.FailureAnswer,
		Decision: DecisionEscalated,
		Notified: notified,
	}
}
