// Package catalog serves the published scheme catalog from an in-memory snapshot.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/domain"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	"github.com/kailas-cloud/schemefinder/internal/metrics"
)

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	Category scheme.Category
	State    string
}

// Snapshot is an immutable view of the published catalog.
type Snapshot struct {
	Schemes    []scheme.Scheme
	States     []string
	Categories []scheme.Category
	Revision   int64
	LoadedAt   time.Time

	bySlug map[string]int
	byID   map[string]int
}

func newSnapshot(all []scheme.Scheme, rev int64, now time.Time) *Snapshot {
	snap := &Snapshot{
		Schemes:  make([]scheme.Scheme, 0, len(all)),
		Revision: rev,
		LoadedAt: now,
		bySlug:   make(map[string]int, len(all)),
		byID:     make(map[string]int, len(all)),
	}
	states := make(map[string]struct{})
	cats := make(map[scheme.Category]struct{})
	for i := range all {
		s := all[i]
		if !s.IsPublished() {
			continue
		}
		idx := len(snap.Schemes)
		snap.Schemes = append(snap.Schemes, s)
		if _, dup := snap.bySlug[s.Slug]; !dup {
			snap.bySlug[s.Slug] = idx
		}
		snap.byID[s.ID] = idx
		for _, st := range s.States.States() {
			states[st] = struct{}{}
		}
		cats[s.Category] = struct{}{}
	}

	snap.States = make([]string, 0, len(states))
	for st := range states {
		snap.States = append(snap.States, st)
	}
	sort.Strings(snap.States)

	snap.Categories = make([]scheme.Category, 0, len(cats))
	for c := range cats {
		snap.Categories = append(snap.Categories, c)
	}
	sort.Slice(snap.Categories, func(i, j int) bool { return snap.Categories[i] < snap.Categories[j] })
	return snap
}

// Service owns the catalog snapshot. Readers never lock; Refresh swaps the
// snapshot pointer atomically and refreshes are serialized.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time

	snap      atomic.Pointer[Snapshot]
	refreshMu sync.Mutex
}

// New creates a catalog service. The first read loads the snapshot lazily.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Refresh reloads the catalog from storage unconditionally.
func (s *Service) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	return s.reload(ctx)
}

// RefreshIfChanged reloads only when the storage revision moved.
// Returns true when a new snapshot was installed.
func (s *Service) RefreshIfChanged(ctx context.Context) (bool, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	rev, err := s.repo.Revision(ctx)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("catalog revision: %w", err)
	}
	if cur := s.snap.Load(); cur != nil && cur.Revision == rev {
		metrics.CatalogRefreshTotal.WithLabelValues("unchanged").Inc()
		return false, nil
	}
	if err := s.reload(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// reload must be called with refreshMu held.
func (s *Service) reload(ctx context.Context) error {
	rev, err := s.repo.Revision(ctx)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("catalog revision: %w", err)
	}
	all, err := s.repo.ListSchemes(ctx)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("load catalog: %w", err)
	}

	snap := newSnapshot(all, rev, s.now())
	s.snap.Store(snap)

	metrics.CatalogRefreshTotal.WithLabelValues("ok").Inc()
	metrics.CatalogSchemes.Set(float64(len(snap.Schemes)))
	s.logger.Info("Catalog loaded",
		zap.Int("schemes", len(snap.Schemes)),
		zap.Int("stored", len(all)),
		zap.Int64("revision", rev),
	)
	return nil
}

// Snapshot returns the current snapshot, loading it on first use.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}
	if err := s.reload(ctx); err != nil {
		return nil, err
	}
	return s.snap.Load(), nil
}

// Published returns every published scheme in storage order.
// The slice is shared and must not be modified.
func (s *Service) Published(ctx context.Context) ([]scheme.Scheme, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Schemes, nil
}

// List returns published schemes matching the filter. A state filter keeps
// nationwide schemes and those naming the state.
func (s *Service) List(ctx context.Context, f Filter) ([]scheme.Scheme, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	state := scheme.NormalizeState(f.State)
	out := make([]scheme.Scheme, 0, len(snap.Schemes))
	for i := range snap.Schemes {
		sc := &snap.Schemes[i]
		if f.Category != "" && sc.Category != f.Category {
			continue
		}
		if state != "" && !sc.States.Covers(state) {
			continue
		}
		out = append(out, *sc)
	}
	return out, nil
}

// Get looks a published scheme up by slug first, then by id.
func (s *Service) Get(ctx context.Context, idOrSlug string) (scheme.Scheme, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return scheme.Scheme{}, err
	}
	if i, ok := snap.bySlug[idOrSlug]; ok {
		return snap.Schemes[i], nil
	}
	if i, ok := snap.byID[idOrSlug]; ok {
		return snap.Schemes[i], nil
	}
	return scheme.Scheme{}, fmt.Errorf("scheme %q: %w", idOrSlug, domain.ErrNotFound)
}

// States returns the sorted explicit state ids used by published schemes.
func (s *Service) States(ctx context.Context) ([]string, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.States, nil
}

// Categories returns the sorted categories used by published schemes.
func (s *Service) Categories(ctx context.Context) ([]scheme.Category, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Categories, nil
}

// Ready reports whether a snapshot is available, loading it if needed.
func (s *Service) Ready(ctx context.Context) error {
	_, err := s.Snapshot(ctx)
	return err
}
