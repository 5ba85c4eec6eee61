package schemefinder

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	catalogus "github.com/kailas-cloud/schemefinder/internal/usecase/catalog"
)

const dataset = `[
  {"id":"pm-kisan","slug":"pm-kisan","name":"PM Kisan","summary":"Income support","category":"farmer",
   "states":["all"],"tags":["cash"],"benefits":[],"documents":[],"applyLink":"https://pmkisan.gov.in",
   "rules":{"minAge":18,"incomeMax":null,"gender":"any"}},
  {"id":"raj-krishi","slug":"raj-krishi","name":"Rajasthan Krishi","summary":"Farm inputs","category":"farmer",
   "states":["rajasthan"],"tags":["inputs"],"benefits":[],"documents":[],"applyLink":"https://example.org/rk",
   "rules":{"minAge":18,"incomeMax":300000,"gender":"any"}},
  {"id":"scholar","slug":"scholar","name":"Scholarship","summary":"Fees","category":"student",
   "states":["all"],"tags":["education"],"benefits":[],"documents":[],"applyLink":"https://example.org/s",
   "rules":{"minAge":0,"incomeMax":250000,"gender":"any"}}
]`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schemes.json")
	if err := os.WriteFile(path, []byte(dataset), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), append([]Option{WithDataset(writeDataset(t))}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func slugs(ms []Match) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Scheme.Slug
	}
	return out
}

func TestNew_NoStorage(t *testing.T) {
	if _, err := New(context.Background()); err == nil {
		t.Fatal("expected error when no storage configured")
	}
}

func TestNew_MissingDataset(t *testing.T) {
	_, err := New(context.Background(), WithDataset(filepath.Join(t.TempDir(), "missing.json")))
	if err == nil {
		t.Fatal("expected error for a missing dataset")
	}
}

func TestClient_Match(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	res, err := c.Match(ctx, DefaultProfile())
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if diff := cmp.Diff([]string{"raj-krishi", "pm-kisan"}, slugs(res.Matches)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if res.Eligible != 2 {
		t.Errorf("eligible = %d, want 2", res.Eligible)
	}

	res, err = c.Match(ctx, DefaultProfile(), SortByName())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"pm-kisan", "raj-krishi"}, slugs(res.Matches)); diff != "" {
		t.Errorf("name order (-want +got):\n%s", diff)
	}

	res, err = c.Match(ctx, DefaultProfile(), WithText("inputs"), WithTag("inputs"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"raj-krishi"}, slugs(res.Matches)); diff != "" {
		t.Errorf("refined (-want +got):\n%s", diff)
	}
}

func TestClient_MatchNormalizesState(t *testing.T) {
	c := newTestClient(t)
	p := DefaultProfile()
	p.State = "  Rajasthan "
	res, err := c.Match(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Matches) != 2 {
		t.Errorf("matches = %v, want both farmer schemes", slugs(res.Matches))
	}
}

func TestClient_MatchInvalidProfile(t *testing.T) {
	c := newTestClient(t)
	p := DefaultProfile()
	p.Age = -1
	if _, err := c.Match(context.Background(), p); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestClient_Catalog(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	list, err := c.Schemes(ctx, Filter{Category: CategoryFarmer, State: "kerala"})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Slug != "pm-kisan" {
		t.Errorf("Schemes = %v", list)
	}

	s, err := c.Scheme(ctx, "scholar")
	if err != nil {
		t.Fatal(err)
	}
	if s.Category != CategoryStudent {
		t.Errorf("category = %q", s.Category)
	}
	if _, err := c.Scheme(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	states, err := c.States(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"rajasthan"}, states); diff != "" {
		t.Errorf("states (-want +got):\n%s", diff)
	}
}

func TestClient_Health(t *testing.T) {
	h := newTestClient(t).Health(context.Background())
	if h.Status != "ok" || h.Checks["storage"] != "ok" || h.Checks["catalog"] != "ok" {
		t.Errorf("health = %+v", h)
	}
}

func TestClient_Observability(t *testing.T) {
	reg := prometheus.NewRegistry()
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c := newTestClient(t, WithPrometheus(reg), WithLogger(logger))
	if _, err := c.Match(context.Background(), DefaultProfile()); err != nil {
		t.Fatal(err)
	}
	_, _ = c.Scheme(context.Background(), "nope")

	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("match", "ok")); got != 1 {
		t.Errorf("match ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.obs.metrics.operations.WithLabelValues("scheme", "error")); got != 1 {
		t.Errorf("scheme error = %v, want 1", got)
	}
	if !strings.Contains(logs.String(), "op=scheme") {
		t.Errorf("failure not logged:\n%s", logs.String())
	}

	// A second client on the same registry reuses the collectors.
	if _, err := New(context.Background(), WithDataset(writeDataset(t)), WithPrometheus(reg)); err != nil {
		t.Fatalf("second client: %v", err)
	}
}

type mockCatalog struct {
	listFn func(ctx context.Context, f catalogus.Filter) ([]scheme.Scheme, error)
}

func (m *mockCatalog) Refresh(context.Context) error { return nil }

func (m *mockCatalog) List(ctx context.Context, f catalogus.Filter) ([]scheme.Scheme, error) {
	return m.listFn(ctx, f)
}

func (m *mockCatalog) Get(context.Context, string) (scheme.Scheme, error) {
	return scheme.Scheme{}, ErrNotFound
}

func (m *mockCatalog) States(context.Context) ([]string, error) { return nil, nil }

func (m *mockCatalog) Categories(context.Context) ([]scheme.Category, error) { return nil, nil }

func TestClient_SchemesWrapsError(t *testing.T) {
	boom := errors.New("boom")
	c := &Client{catalog: &mockCatalog{
		listFn: func(context.Context, catalogus.Filter) ([]scheme.Scheme, error) { return nil, boom },
	}}
	if _, err := c.Schemes(context.Background(), Filter{}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}
