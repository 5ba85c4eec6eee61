package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	"github.com/kailas-cloud/schemefinder/internal/metrics"
)

const systemPrompt = "You write plain-language summaries of Indian government welfare schemes " +
	"for a public directory. Reply with one paragraph of at most three sentences: " +
	"who can apply, what they receive, and how to apply. Do not invent amounts or dates."

// Summarizer drafts scheme summaries with an OpenAI-compatible chat API.
type Summarizer struct {
	client    *openai.Client
	model     string
	maxTokens int
	logger    *zap.Logger
}

// Config holds the summary provider settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	Timeout   time.Duration // zero keeps the client default
	Logger    *zap.Logger
}

// NewSummarizer creates an OpenAI-compatible summary provider.
func NewSummarizer(cfg *Config) *Summarizer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Summarizer{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		logger:    cfg.Logger,
	}
}

// Summarize returns a short summary of the scheme draft.
func (s *Summarizer) Summarize(ctx context.Context, sc scheme.Scheme) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: describe(&sc)},
		},
		Temperature: 0.2,
	}
	if s.maxTokens > 0 {
		req.MaxTokens = s.maxTokens
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.SummarizerRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.SummarizerRequestsTotal.WithLabelValues(s.model, "error").Inc()
		return "", fmt.Errorf("empty completion: %w", domain.ErrSummarizerFailed)
	}

	metrics.SummarizerRequestsTotal.WithLabelValues(s.model, "success").Inc()
	metrics.SummarizerRequestDuration.WithLabelValues(s.model).Observe(duration.Seconds())
	s.logger.Debug("Summary generated",
		zap.String("model", s.model),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
		zap.Duration("duration", duration),
	)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (s *Summarizer) HealthCheck(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// describe renders the draft as the user message.
func describe(sc *scheme.Scheme) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", sc.Name)
	fmt.Fprintf(&b, "Category: %s\n", sc.Category)
	if states := sc.States.Values(); len(states) > 0 {
		fmt.Fprintf(&b, "States: %s\n", strings.Join(states, ", "))
	}
	if sc.Summary != "" {
		fmt.Fprintf(&b, "Submitted description: %s\n", sc.Summary)
	}
	if len(sc.Benefits) > 0 {
		fmt.Fprintf(&b, "Benefits: %s\n", strings.Join(sc.Benefits, "; "))
	}
	if len(sc.Documents) > 0 {
		fmt.Fprintf(&b, "Documents: %s\n", strings.Join(sc.Documents, "; "))
	}
	if sc.Rules.MinAge > 0 {
		fmt.Fprintf(&b, "Minimum age: %d\n", sc.Rules.MinAge)
	}
	if amount, capped := sc.Rules.IncomeMax.Amount(); capped {
		fmt.Fprintf(&b, "Annual income limit: Rs %.0f\n", amount)
	}
	if sc.Rules.Gender != "" && sc.Rules.Gender != scheme.GenderAny {
		fmt.Fprintf(&b, "Gender: %s\n", sc.Rules.Gender)
	}
	if sc.ApplyLink != "" {
		fmt.Fprintf(&b, "Apply at: %s\n", sc.ApplyLink)
	}
	return b.String()
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrSummarizerFailed for the 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrSummarizerFailed

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("summary API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("summary API error %d: %s: %w", reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("summary API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("summary request: %w: %w", err, wrap)
	}
	return fmt.Errorf("summary request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
