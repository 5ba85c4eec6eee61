package chi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/auth"
	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	domsub "github.com/kailas-cloud/schemefinder/internal/domain/submission"
	adminuc "github.com/kailas-cloud/schemefinder/internal/usecase/admin"
	catalogus "github.com/kailas-cloud/schemefinder/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/schemefinder/internal/usecase/health"
	matchuc "github.com/kailas-cloud/schemefinder/internal/usecase/match"
	subuc "github.com/kailas-cloud/schemefinder/internal/usecase/submission"
)

// --- Mocks ---

type mockCatalog struct {
	schemes []scheme.Scheme
	err     error
}

func (m *mockCatalog) Published(_ context.Context) ([]scheme.Scheme, error) {
	return m.schemes, m.err
}

func (m *mockCatalog) List(_ context.Context, f catalogus.Filter) ([]scheme.Scheme, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []scheme.Scheme
	for _, s := range m.schemes {
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		if f.State != "" && !s.States.Covers(f.State) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *mockCatalog) Get(_ context.Context, idOrSlug string) (scheme.Scheme, error) {
	for _, s := range m.schemes {
		if s.Slug == idOrSlug || s.ID == idOrSlug {
			return s, nil
		}
	}
	return scheme.Scheme{}, domain.ErrNotFound
}

func (m *mockCatalog) States(_ context.Context) ([]string, error) {
	return []string{"rajasthan"}, m.err
}

func (m *mockCatalog) Categories(_ context.Context) ([]scheme.Category, error) {
	return []scheme.Category{scheme.CategoryFarmer, scheme.CategoryStudent}, m.err
}

type mockAdmin struct {
	listFn   func(ctx context.Context, status scheme.Status) ([]scheme.Scheme, error)
	getFn    func(ctx context.Context, id string) (scheme.Scheme, error)
	createFn func(ctx context.Context, in scheme.Scheme, actor string) (scheme.Scheme, error)
	updateFn func(ctx context.Context, id string, in scheme.Scheme, actor string) (scheme.Scheme, error)
	deleteFn func(ctx context.Context, id, actor string) error
	statsFn  func(ctx context.Context) (adminuc.Stats, error)
}

func (m *mockAdmin) List(ctx context.Context, status scheme.Status) ([]scheme.Scheme, error) {
	if m.listFn != nil {
		return m.listFn(ctx, status)
	}
	return nil, nil
}

func (m *mockAdmin) Get(ctx context.Context, id string) (scheme.Scheme, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return scheme.Scheme{}, domain.ErrNotFound
}

func (m *mockAdmin) Create(ctx context.Context, in scheme.Scheme, actor string) (scheme.Scheme, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in, actor)
	}
	return in, nil
}

func (m *mockAdmin) Update(ctx context.Context, id string, in scheme.Scheme, actor string) (scheme.Scheme, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, in, actor)
	}
	return in, nil
}

func (m *mockAdmin) Delete(ctx context.Context, id, actor string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id, actor)
	}
	return nil
}

func (m *mockAdmin) Stats(ctx context.Context) (adminuc.Stats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return adminuc.Stats{}, nil
}

type mockSubmissions struct {
	submitFn    func(ctx context.Context, draft scheme.Scheme) (domsub.Submission, error)
	listFn      func(ctx context.Context) ([]domsub.Submission, error)
	getFn       func(ctx context.Context, id string) (domsub.Submission, error)
	reviewFn    func(ctx context.Context, id string, status domsub.Status, reviewer, notes string) (subuc.ReviewResult, error)
	summarizeFn func(ctx context.Context, id string) (domsub.Submission, error)
}

func (m *mockSubmissions) Submit(ctx context.Context, draft scheme.Scheme) (domsub.Submission, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, draft)
	}
	return domsub.Submission{ID: "sub-1", SchemeData: draft, Status: domsub.StatusPending}, nil
}

func (m *mockSubmissions) List(ctx context.Context) ([]domsub.Submission, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockSubmissions) Get(ctx context.Context, id string) (domsub.Submission, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return domsub.Submission{}, domain.ErrNotFound
}

func (m *mockSubmissions) Review(
	ctx context.Context, id string, status domsub.Status, reviewer, notes string,
) (subuc.ReviewResult, error) {
	if m.reviewFn != nil {
		return m.reviewFn(ctx, id, status, reviewer, notes)
	}
	return subuc.ReviewResult{}, nil
}

func (m *mockSubmissions) Summarize(ctx context.Context, id string) (domsub.Submission, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(ctx, id)
	}
	return domsub.Submission{}, domain.ErrSummarizerDisabled
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

type mockAuth struct {
	enabled bool
	authFn  func(ctx context.Context, credential string) (auth.Principal, error)
}

func (m *mockAuth) Enabled() bool { return m.enabled }

func (m *mockAuth) Authenticate(ctx context.Context, credential string) (auth.Principal, error) {
	return m.authFn(ctx, credential)
}

const adminToken = "admin-token"

func allowAdmin() *mockAuth {
	return &mockAuth{
		enabled: true,
		authFn: func(_ context.Context, credential string) (auth.Principal, error) {
			switch credential {
			case adminToken:
				return auth.Principal{Subject: "u1", Email: "admin@example.org", Method: auth.MethodToken}, nil
			case "visitor-token":
				return auth.Principal{}, domain.ErrForbidden
			}
			return auth.Principal{}, domain.ErrUnauthorized
		},
	}
}

// --- Fixtures ---

type testEnv struct {
	catalog     *mockCatalog
	admin       *mockAdmin
	submissions *mockSubmissions
	health      *mockHealth
	authn       *mockAuth
}

func newTestEnv() *testEnv {
	return &testEnv{
		catalog:     &mockCatalog{schemes: fixtureSchemes()},
		admin:       &mockAdmin{},
		submissions: &mockSubmissions{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{"storage": healthuc.CheckOK, "catalog": healthuc.CheckOK},
		}},
		authn: allowAdmin(),
	}
}

func (e *testEnv) handler() http.Handler {
	srv := NewServer(Services{
		Catalog:     e.catalog,
		Match:       matchuc.New(e.catalog),
		Admin:       e.admin,
		Submissions: e.submissions,
		Health:      e.health,
	}, zap.NewNop())
	return NewRouter(srv, e.authn, zap.NewNop())
}

func fixtureSchemes() []scheme.Scheme {
	return []scheme.Scheme{
		{
			ID: "pm-kisan", Slug: "pm-kisan", Name: "PM Kisan", Summary: "Income support for farmers",
			Category: scheme.CategoryFarmer, States: scheme.AllStates(), Tags: []string{"cash"},
			Rules:  scheme.Rules{MinAge: 18, IncomeMax: scheme.Unlimited(), Gender: scheme.GenderAny},
			Status: scheme.StatusPublished,
		},
		{
			ID: "raj-krishi", Slug: "raj-krishi", Name: "Rajasthan Krishi", Summary: "State farm inputs",
			Category: scheme.CategoryFarmer, States: scheme.SpecificStates("rajasthan"), Tags: []string{"inputs"},
			Rules:  scheme.Rules{MinAge: 18, IncomeMax: scheme.Capped(300000), Gender: scheme.GenderAny},
			Status: scheme.StatusPublished,
		},
		{
			ID: "scholar", Slug: "scholar", Name: "Scholarship", Summary: "For students",
			Category: scheme.CategoryStudent, States: scheme.AllStates(), Tags: []string{"education"},
			Rules:  scheme.Rules{IncomeMax: scheme.Capped(250000), Gender: scheme.GenderAny},
			Status: scheme.StatusPublished,
		},
	}
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func asAdmin() []string {
	return []string{"Authorization", "Bearer " + adminToken}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v (body=%q)", err, rec.Body.String())
	}
	return resp
}
