package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	"github.com/kailas-cloud/schemefinder/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterDomainMetrics()
	os.Exit(m.Run())
}

func testScheme() scheme.Scheme {
	return scheme.Scheme{
		Name:      "Kalia Yojana",
		Category:  scheme.CategoryFarmer,
		States:    scheme.SpecificStates("odisha"),
		Benefits:  []string{"Rs 10000 per family"},
		ApplyLink: "https://kalia.odisha.gov.in",
		Rules:     scheme.Rules{MinAge: 18, IncomeMax: scheme.Capped(150000), Gender: scheme.GenderAny},
	}
}

func newTestSummarizer(url string) *Summarizer {
	return NewSummarizer(&Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})
}

func TestSummarizer_Summarize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if !strings.Contains(req.Messages[1].Content, "Kalia Yojana") ||
			!strings.Contains(req.Messages[1].Content, "Annual income limit: Rs 150000") {
			t.Errorf("draft not described: %q", req.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"model": "test-model",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Farmers in Odisha get support.  "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 50, "completion_tokens": 8, "total_tokens": 58}
		}`))
	}))
	defer server.Close()

	got, err := newTestSummarizer(server.URL).Summarize(context.Background(), testScheme())
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if got != "Farmers in Odisha get support." {
		t.Errorf("unexpected summary: %q", got)
	}
}

func TestSummarizer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit"}}`))
	}))
	defer server.Close()

	_, err := newTestSummarizer(server.URL).Summarize(context.Background(), testScheme())
	if !errors.Is(err, domain.ErrSummarizerFailed) {
		t.Fatalf("expected ErrSummarizerFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestSummarizer_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "x", "object": "chat.completion", "choices": []}`))
	}))
	defer server.Close()

	if _, err := newTestSummarizer(server.URL).Summarize(context.Background(), testScheme()); !errors.Is(err, domain.ErrSummarizerFailed) {
		t.Fatalf("expected ErrSummarizerFailed, got %v", err)
	}
}

func TestSummarizer_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object": "list", "data": []}`))
	}))
	defer server.Close()

	if err := newTestSummarizer(server.URL).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck failed: %v", err)
	}
}

func TestExtractDetail(t *testing.T) {
	if got := extractDetail([]byte(`{"detail": "model not found"}`)); got != "model not found" {
		t.Errorf("got %q", got)
	}
	if got := extractDetail([]byte(`not json`)); got != "" {
		t.Errorf("got %q", got)
	}
}
