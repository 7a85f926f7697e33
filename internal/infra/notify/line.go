package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
)

const defaultPushURL = "https://api.line.me/v2/bot/message/push"

// LineNotifier delivers escalation notifications as LINE push messages
// to the tenant's staff account.
type LineNotifier struct {
	channelToken string
	recipientID  string
	pushURL      string
	httpClient   *http.Client
	now          func() time.Time
}

// NewLineNotifier constructs the notifier.
func NewLineNotifier(channelToken, recipientID, pushURL string) (*LineNotifier, error) {
	if strings.TrimSpace(channelToken) == "" || strings.TrimSpace(recipientID) == "" {
		return nil, errors.New("line channel token and recipient id cannot be empty")
	}
	if strings.TrimSpace(pushURL) == "" {
		pushURL = defaultPushURL
	}
	return &LineNotifier{
		channelToken: channelToken,
		recipientID:  recipientID,
		pushURL:      pushURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
	}, nil
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []pushMessage `json:"messages"`
}

type pushMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify implements retrieval.Notifier.
func (n *LineNotifier) Notify(ctx context.Context, notification retrieval.Notification) error {
	payload, err := json.Marshal(pushRequest{
		To:       n.recipientID,
		Messages: []pushMessage{{Type: "text", Text: n.formatMessage(notification)}},
	})
	if err != nil {
		return fmt.Errorf("encode line push: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.pushURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build line push: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.channelToken)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("line push failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("line push status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (n *LineNotifier) formatMessage(notification retrieval.Notification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Staff follow-up] %s\n\n", n.now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Tenant: %s\n\n", notification.TenantID)

	// stable ordering keeps messages diffable
	keys := make([]string, 0, len(notification.Context))
	for key := range notification.Context {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, "%s: %s\n", key, notification.Context[key])
	}
	if len(keys) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question:\n%s\n\n", notification.Question)
	if notification.Answer != "" {
		fmt.Fprintf(&b, "System answer:\n%s\n\n", notification.Answer)
	}
	fmt.Fprintf(&b, "Similarity score: %.2f\n", notification.Score)
	b.WriteString("This message was sent automatically by the FAQ bot.")
	return b.String()
}

var _ retrieval.Notifier = (*LineNotifier)(nil)
