package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	"github.com/kailas-cloud/schemefinder/internal/domain/submission"
)

// --- Mocks ---

type mockRepo struct {
	schemes   []scheme.Scheme
	created   *scheme.Scheme
	updated   *scheme.Scheme
	listErr   error
	createErr error
	deleteErr error
}

func (m *mockRepo) ListSchemes(_ context.Context) ([]scheme.Scheme, error) {
	return m.schemes, m.listErr
}

func (m *mockRepo) GetScheme(_ context.Context, id string) (scheme.Scheme, error) {
	for i := range m.schemes {
		if m.schemes[i].ID == id {
			return m.schemes[i], nil
		}
	}
	return scheme.Scheme{}, domain.ErrNotFound
}

func (m *mockRepo) CreateScheme(_ context.Context, s *scheme.Scheme) error {
	m.created = s
	return m.createErr
}

func (m *mockRepo) UpdateScheme(_ context.Context, s *scheme.Scheme) error {
	m.updated = s
	return nil
}

func (m *mockRepo) DeleteScheme(_ context.Context, _ string) error {
	return m.deleteErr
}

type mockSubmissions struct {
	subs []submission.Submission
	err  error
}

func (m *mockSubmissions) ListSubmissions(_ context.Context) ([]submission.Submission, error) {
	return m.subs, m.err
}

type mockRefresher struct {
	calls int
	err   error
}

func (m *mockRefresher) Refresh(_ context.Context) error {
	m.calls++
	return m.err
}

var fixedNow = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo, subs *mockSubmissions, ref *mockRefresher) *Service {
	svc := New(repo, subs, ref, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	svc.newID = func() string { return "generated-id" }
	return svc
}

func validInput() scheme.Scheme {
	return scheme.Scheme{
		Name:      "Mukhyamantri Kisan Sahay",
		Category:  scheme.CategoryFarmer,
		States:    scheme.SpecificStates("gujarat"),
		ApplyLink: "https://example.gov.in/apply",
		Rules:     scheme.Rules{MinAge: 18, IncomeMax: scheme.Capped(300000)},
	}
}

// --- Tests ---

func TestCreate(t *testing.T) {
	repo := &mockRepo{}
	ref := &mockRefresher{}
	svc := newTestService(repo, &mockSubmissions{}, ref)

	got, err := svc.Create(context.Background(), validInput(), "admin@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "generated-id" || got.Slug != "mukhyamantri-kisan-sahay" {
		t.Errorf("unexpected identity: id=%q slug=%q", got.ID, got.Slug)
	}
	if got.Rules.Gender != scheme.GenderAny || got.Status != scheme.StatusPublished {
		t.Errorf("defaults not applied: %+v", got.Rules)
	}
	if !got.CreatedAt.Equal(fixedNow) || got.CreatedBy != "admin@example.com" {
		t.Errorf("metadata not set: %+v", got)
	}
	if repo.created == nil || ref.calls != 1 {
		t.Errorf("expected store + refresh, got created=%v refreshes=%d", repo.created != nil, ref.calls)
	}
}

func TestCreate_Invalid(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockSubmissions{}, &mockRefresher{})
	in := validInput()
	in.States = scheme.StateScope{}

	_, err := svc.Create(context.Background(), in, "a")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Field != "states" {
		t.Fatalf("expected states validation error, got %v", err)
	}
	if repo.created != nil {
		t.Error("invalid scheme must not be stored")
	}
}

func TestCreateDraft_NameAndCategoryOnly(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockSubmissions{}, &mockRefresher{})

	in := scheme.Scheme{Name: "Minimal", Category: scheme.CategoryFarmer, Status: scheme.StatusPublished}
	got, err := svc.CreateDraft(context.Background(), in, "admin@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != scheme.StatusDraft || got.Slug != "minimal" || got.ID != "generated-id" {
		t.Errorf("unexpected draft: %+v", got)
	}
	if repo.created == nil || repo.created.IsPublished() {
		t.Errorf("draft not stored as unpublished: %+v", repo.created)
	}
}

func TestCreateDraft_SlugFallsBackToID(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockSubmissions{}, &mockRefresher{})

	got, err := svc.CreateDraft(context.Background(), scheme.Scheme{Name: "!!!", Category: scheme.CategoryOther}, "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Slug != "generated-id" {
		t.Errorf("slug = %q, want id fallback", got.Slug)
	}
}

func TestCreateDraft_RequiresCategory(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockSubmissions{}, &mockRefresher{})

	_, err := svc.CreateDraft(context.Background(), scheme.Scheme{Name: "Minimal"}, "a")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if repo.created != nil {
		t.Error("invalid draft must not be stored")
	}
}

func TestCreate_SlugTaken(t *testing.T) {
	existing := validInput()
	existing.ID = "other"
	existing.Normalize()
	repo := &mockRepo{schemes: []scheme.Scheme{existing}}
	svc := newTestService(repo, &mockSubmissions{}, &mockRefresher{})

	if _, err := svc.Create(context.Background(), validInput(), "a"); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCreate_StoreUnavailable(t *testing.T) {
	repo := &mockRepo{createErr: domain.ErrStoreUnavailable}
	ref := &mockRefresher{}
	svc := newTestService(repo, &mockSubmissions{}, ref)

	if _, err := svc.Create(context.Background(), validInput(), "a"); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if ref.calls != 0 {
		t.Error("failed write must not refresh the catalog")
	}
}

func TestUpdate_KeepsCreationMetadata(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := validInput()
	existing.ID = "s1"
	existing.CreatedAt = created
	existing.CreatedBy = "first@example.com"
	existing.Normalize()
	repo := &mockRepo{schemes: []scheme.Scheme{existing}}
	svc := newTestService(repo, &mockSubmissions{}, &mockRefresher{})

	in := validInput()
	in.Summary = "Updated summary"
	got, err := svc.Update(context.Background(), "s1", in, "second@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.CreatedAt.Equal(created) || got.CreatedBy != "first@example.com" || !got.UpdatedAt.Equal(fixedNow) {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if repo.updated == nil || repo.updated.Summary != "Updated summary" {
		t.Error("update not stored")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockSubmissions{}, &mockRefresher{})
	if _, err := svc.Update(context.Background(), "nope", validInput(), "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ref := &mockRefresher{}
	svc := newTestService(&mockRepo{}, &mockSubmissions{}, ref)
	if err := svc.Delete(context.Background(), "x", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.calls != 1 {
		t.Errorf("expected refresh, got %d", ref.calls)
	}

	svc = newTestService(&mockRepo{deleteErr: domain.ErrNotFound}, &mockSubmissions{}, &mockRefresher{})
	if err := svc.Delete(context.Background(), "x", "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList_ByStatus(t *testing.T) {
	draft := scheme.Scheme{ID: "d", Status: scheme.StatusDraft}
	pub := scheme.Scheme{ID: "p", Status: scheme.StatusPublished}
	legacy := scheme.Scheme{ID: "l"}
	svc := newTestService(&mockRepo{schemes: []scheme.Scheme{draft, pub, legacy}}, &mockSubmissions{}, nil)

	got, err := svc.List(context.Background(), scheme.StatusPublished)
	if err != nil || len(got) != 2 {
		t.Fatalf("published: %v, %v", got, err)
	}
	got, _ = svc.List(context.Background(), scheme.StatusDraft)
	if len(got) != 1 || got[0].ID != "d" {
		t.Errorf("draft: %v", got)
	}
	if _, err := svc.List(context.Background(), "archived"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStats(t *testing.T) {
	schemes := []scheme.Scheme{
		{ID: "1", Category: scheme.CategoryFarmer, Status: scheme.StatusPublished},
		{ID: "2", Category: scheme.CategoryFarmer},
		{ID: "3", Category: scheme.CategoryHealth, Status: scheme.StatusPublished},
		{ID: "4", Category: scheme.CategoryHealth, Status: scheme.StatusDraft},
	}
	subs := []submission.Submission{
		{ID: "a", Status: submission.StatusPending},
		{ID: "b", Status: submission.StatusApproved},
		{ID: "c", Status: submission.StatusPending},
	}
	svc := newTestService(&mockRepo{schemes: schemes}, &mockSubmissions{subs: subs}, nil)

	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Stats{
		TotalSchemes:       3,
		TotalSubmissions:   3,
		PendingSubmissions: 2,
		Categories:         map[string]int{"farmer": 2, "health": 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}

func TestStats_NoSubmissionStore(t *testing.T) {
	svc := newTestService(
		&mockRepo{schemes: []scheme.Scheme{{ID: "1", Category: scheme.CategoryJobs}}},
		&mockSubmissions{err: domain.ErrStoreUnavailable},
		nil,
	)
	got, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.TotalSchemes != 1 || got.TotalSubmissions != 0 {
		t.Errorf("unexpected stats: %+v", got)
	}
}

func TestStats_Error(t *testing.T) {
	svc := newTestService(&mockRepo{listErr: errors.New("down")}, &mockSubmissions{}, nil)
	if _, err := svc.Stats(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
