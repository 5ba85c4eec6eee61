// Package admin implements scheme management and the dashboard counters.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	"github.com/kailas-cloud/schemefinder/internal/domain/submission"
)

// Stats are the dashboard counters.
type Stats struct {
	TotalSchemes       int            `json:"totalSchemes"`
	TotalSubmissions   int            `json:"totalSubmissions"`
	PendingSubmissions int            `json:"pendingSubmissions"`
	Categories         map[string]int `json:"categories"`
}

// Service handles scheme CRUD for administrators.
type Service struct {
	repo        Repository
	submissions SubmissionLister
	catalog     CatalogRefresher
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
}

// New creates an admin service. catalog can be nil.
func New(repo Repository, submissions SubmissionLister, catalog CatalogRefresher, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		submissions: submissions,
		catalog:     catalog,
		logger:      logger,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// List returns stored schemes, optionally narrowed to one status.
func (s *Service) List(ctx context.Context, status scheme.Status) ([]scheme.Scheme, error) {
	if status != "" && !status.IsValid() {
		return nil, domain.NewValidationError("status", "must be draft or published")
	}
	all, err := s.repo.ListSchemes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	if status == "" {
		return all, nil
	}
	out := make([]scheme.Scheme, 0, len(all))
	for i := range all {
		if all[i].Status == status || (status == scheme.StatusPublished && all[i].IsPublished()) {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Get returns a stored scheme regardless of status.
func (s *Service) Get(ctx context.Context, id string) (scheme.Scheme, error) {
	sc, err := s.repo.GetScheme(ctx, id)
	if err != nil {
		return scheme.Scheme{}, fmt.Errorf("get scheme: %w", err)
	}
	return sc, nil
}

// Create validates and stores a new scheme. An empty id gets a UUID.
func (s *Service) Create(ctx context.Context, in scheme.Scheme, actor string) (scheme.Scheme, error) {
	in.Normalize()
	return s.create(ctx, in, actor, (*scheme.Scheme).Validate)
}

// CreateDraft stores an unpublished scheme that only carries what a public
// submission must: a name and a category. It stays out of the catalog until
// an update completes and publishes it.
func (s *Service) CreateDraft(ctx context.Context, in scheme.Scheme, actor string) (scheme.Scheme, error) {
	in.Normalize()
	in.Status = scheme.StatusDraft
	return s.create(ctx, in, actor, (*scheme.Scheme).ValidateDraft)
}

func (s *Service) create(ctx context.Context, in scheme.Scheme, actor string, validate func(*scheme.Scheme) error) (scheme.Scheme, error) {
	if err := validate(&in); err != nil {
		return scheme.Scheme{}, err
	}
	if in.ID == "" {
		in.ID = s.newID()
	}
	if in.Slug == "" {
		in.Slug = in.ID
	}
	now := s.now().UTC()
	in.CreatedAt = now
	in.UpdatedAt = now
	in.CreatedBy = actor
	if err := s.ensureSlugFree(ctx, in.Slug, in.ID); err != nil {
		return scheme.Scheme{}, err
	}

	if err := s.repo.CreateScheme(ctx, &in); err != nil {
		return scheme.Scheme{}, fmt.Errorf("create scheme: %w", err)
	}
	s.logger.Info("Scheme created",
		zap.String("id", in.ID),
		zap.String("slug", in.Slug),
		zap.String("status", string(in.Status)),
		zap.String("actor", actor),
	)
	s.refresh(ctx)
	return in, nil
}

// Update replaces the scheme with id, keeping its creation metadata.
func (s *Service) Update(ctx context.Context, id string, in scheme.Scheme, actor string) (scheme.Scheme, error) {
	existing, err := s.repo.GetScheme(ctx, id)
	if err != nil {
		return scheme.Scheme{}, fmt.Errorf("get scheme: %w", err)
	}
	in.Normalize()
	in.ID = id
	in.CreatedAt = existing.CreatedAt
	in.CreatedBy = existing.CreatedBy
	in.UpdatedAt = s.now().UTC()
	if err := in.Validate(); err != nil {
		return scheme.Scheme{}, err
	}
	if err := s.ensureSlugFree(ctx, in.Slug, in.ID); err != nil {
		return scheme.Scheme{}, err
	}

	if err := s.repo.UpdateScheme(ctx, &in); err != nil {
		return scheme.Scheme{}, fmt.Errorf("update scheme: %w", err)
	}
	s.logger.Info("Scheme updated", zap.String("id", id), zap.String("actor", actor))
	s.refresh(ctx)
	return in, nil
}

// Delete removes a scheme.
func (s *Service) Delete(ctx context.Context, id, actor string) error {
	if err := s.repo.DeleteScheme(ctx, id); err != nil {
		return fmt.Errorf("delete scheme: %w", err)
	}
	s.logger.Info("Scheme deleted", zap.String("id", id), zap.String("actor", actor))
	s.refresh(ctx)
	return nil
}

// Stats counts published schemes per category and submissions by state.
// Both reads run concurrently. A store without submissions reports zero.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var (
		schemes []scheme.Scheme
		subs    []submission.Submission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		schemes, err = s.repo.ListSchemes(gctx)
		if err != nil {
			return fmt.Errorf("list schemes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		subs, err = s.submissions.ListSubmissions(gctx)
		if errors.Is(err, domain.ErrStoreUnavailable) {
			subs = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("list submissions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	st := Stats{Categories: make(map[string]int)}
	for i := range schemes {
		if !schemes[i].IsPublished() {
			continue
		}
		st.TotalSchemes++
		st.Categories[string(schemes[i].Category)]++
	}
	st.TotalSubmissions = len(subs)
	for i := range subs {
		if subs[i].IsPending() {
			st.PendingSubmissions++
		}
	}
	return st, nil
}

func (s *Service) ensureSlugFree(ctx context.Context, slug, id string) error {
	all, err := s.repo.ListSchemes(ctx)
	if err != nil {
		return fmt.Errorf("list schemes: %w", err)
	}
	for i := range all {
		if all[i].Slug == slug && all[i].ID != id {
			return fmt.Errorf("slug %q: %w", slug, domain.ErrAlreadyExists)
		}
	}
	return nil
}

func (s *Service) refresh(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Refresh(ctx); err != nil {
		s.logger.Warn("Catalog refresh after write failed", zap.Error(err))
	}
}
