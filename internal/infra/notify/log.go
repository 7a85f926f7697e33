package notify

import (
	"context"
	"log/slog"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
)

// LogNotifier records escalations in the service log. Used when no LINE
// credentials are configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier constructs the notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("component", "notify.log")}
}

// Notify implements retrieval.Notifier.
func (n *LogNotifier) Notify(_ context.Context, notification retrieval.Notification) error {
	n.logger.Info("escalation",
		"tenant", notification.TenantID,
		"question", notification.Question,
		"answer", notification.Answer,
		"score", notification.Score,
		"context", notification.Context,
	)
	return nil
}

var _ retrieval.Notifier = (*LogNotifier)(nil)
