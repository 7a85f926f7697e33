package encoder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
	"github.com/guestflow/faqbot/internal/infra/llm/embedapi"
	"github.com/guestflow/faqbot/pkg/metrics"
)

// maxInputTokens guards against requests the provider would reject.
const maxInputTokens = 8192

// ProviderEncoder obtains embeddings from the external embeddings API.
type ProviderEncoder struct {
	client    *embedapi.Client
	model     string
	dimension int
	tokenizer *tiktoken.Tiktoken
	logger    *slog.Logger
}

// NewProviderEncoder constructs the production encoder. Token counting
// degrades to the provider's own accounting when the model has no local
// tokenizer.
func NewProviderEncoder(client *embedapi.Client, model string, dimension int, logger *slog.Logger) *ProviderEncoder {
	tokenizer, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Warn("no local tokenizer for embedding model", "model", model, "error", err)
		tokenizer = nil
	}
	return &ProviderEncoder{
		client:    client,
		model:     strings.TrimSpace(model),
		dimension: dimension,
		tokenizer: tokenizer,
		logger:    logger.With("component", "encoder.provider"),
	}
}

// Encode implements retrieval.Encoder.
func (e *ProviderEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	if e.tokenizer != nil {
		tokens := len(e.tokenizer.Encode(text, nil, nil))
		if tokens > maxInputTokens {
			metrics.EmbeddingRequestsTotal.WithLabelValues("provider", "rejected").Inc()
			return nil, fmt.Errorf("%w: input of %d tokens exceeds the %d token limit",
				retrieval.ErrEncoderUnavailable, tokens, maxInputTokens)
		}
		metrics.EmbeddingTokensTotal.WithLabelValues("provider").Add(float64(tokens))
	}

	start := time.Now()
	resp, err := e.client.CreateEmbedding(ctx, embedapi.EmbeddingRequest{
		Model: e.model,
		Input: []string{text},
	})
	metrics.EmbeddingRequestDuration.WithLabelValues("provider").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues("provider", "error").Inc()
		return nil, fmt.Errorf("%w: %v", retrieval.ErrEncoderUnavailable, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues("provider", "error").Inc()
		return nil, fmt.Errorf("%w: embedding response empty", retrieval.ErrEncoderUnavailable)
	}
	if e.tokenizer == nil && resp.Usage.TotalTokens > 0 {
		metrics.EmbeddingTokensTotal.WithLabelValues("provider").Add(float64(resp.Usage.TotalTokens))
	}
	metrics.EmbeddingRequestsTotal.WithLabelValues("provider", "ok").Inc()

	vector := make([]float32, len(resp.Data[0].Embedding))
	copy(vector, resp.Data[0].Embedding)
	return vector, nil
}

// Dimension implements retrieval.Encoder.
func (e *ProviderEncoder) Dimension() int {
	return e.dimension
}

// Space names the vector space, one per embedding model.
func (e *ProviderEncoder) Space() string {
	return "provider/" + e.model
}

var _ retrieval.Encoder = (*ProviderEncoder)(nil)
