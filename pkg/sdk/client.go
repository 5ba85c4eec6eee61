package schemefinder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/config"
	"github.com/kailas-cloud/schemefinder/internal/domain/scheme"
	"github.com/kailas-cloud/schemefinder/internal/storage"
	catalogus "github.com/kailas-cloud/schemefinder/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/schemefinder/internal/usecase/health"
	matchuc "github.com/kailas-cloud/schemefinder/internal/usecase/match"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for mocks in tests.
type catalogUseCase interface {
	Refresh(ctx context.Context) error
	List(ctx context.Context, f catalogus.Filter) ([]scheme.Scheme, error)
	Get(ctx context.Context, idOrSlug string) (scheme.Scheme, error)
	States(ctx context.Context) ([]string, error)
	Categories(ctx context.Context) ([]scheme.Category, error)
}

type matchUseCase interface {
	Results(ctx context.Context, q matchuc.Query) (matchuc.Result, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the schemefinder SDK entry point.
type Client struct {
	backend   *storage.Backend
	catalog   catalogUseCase
	match     matchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and loads the catalog once.
// The provided context bounds connecting and the initial load.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{keyPrefix: "schemefinder:"}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.driver == "" {
		return nil, errors.New("schemefinder: storage required (use WithDataset, WithRedis or WithPostgres)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg, cfg.driver)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(ctx, &config.StorageConfig{
		Driver:           cfg.driver,
		Path:             cfg.path,
		Addrs:            cfg.addrs,
		Password:         cfg.password,
		KeyPrefix:        cfg.keyPrefix,
		DSN:              cfg.dsn,
		ReadinessTimeout: int(defaultReadinessTimeout / time.Second),
	}, zap.NewNop())
	if err != nil {
		return nil, fmt.Errorf("schemefinder: open storage: %w", err)
	}

	c := wireClient(backend, obs)
	if err := c.Refresh(ctx); err != nil {
		backend.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(backend *storage.Backend, obs *observer) *Client {
	catalog := catalogus.New(backend.Schemes, zap.NewNop())
	return &Client{
		backend:   backend,
		catalog:   catalog,
		match:     matchuc.New(catalog),
		healthSvc: healthuc.New(backend.Pinger, catalog, nil),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	c.backend.Close()
}

// Refresh reloads the catalog from storage.
func (c *Client) Refresh(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("refresh", start, err) }()

	if err = c.catalog.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	return nil
}

// Match ranks the published schemes a profile is eligible for, best first.
func (c *Client) Match(ctx context.Context, p Profile, opts ...MatchOption) (_ MatchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("match", start, err) }()

	var mo matchOptions
	for _, o := range opts {
		o(&mo)
	}
	q := matchuc.Query{Profile: p, Text: mo.text, Tag: mo.tag, Sort: matchuc.SortBest}
	if mo.byName {
		q.Sort = matchuc.SortName
	}
	q.Profile.State = scheme.NormalizeState(q.Profile.State)

	res, err := c.match.Results(ctx, q)
	if err != nil {
		return MatchResult{}, fmt.Errorf("match: %w", err)
	}
	c.obs.matched(len(res.Matches))
	return MatchResult{Matches: res.Matches, Tags: res.Tags, Eligible: res.Eligible}, nil
}

// Schemes lists published schemes.
func (c *Client) Schemes(ctx context.Context, f Filter) (_ []Scheme, err error) {
	start := time.Now()
	defer func() { c.obs.observe("schemes", start, err) }()

	out, err := c.catalog.List(ctx, catalogus.Filter{Category: f.Category, State: f.State})
	if err != nil {
		return nil, fmt.Errorf("list schemes: %w", err)
	}
	return out, nil
}

// Scheme returns one published scheme by slug or id.
func (c *Client) Scheme(ctx context.Context, idOrSlug string) (_ Scheme, err error) {
	start := time.Now()
	defer func() { c.obs.observe("scheme", start, err) }()

	s, err := c.catalog.Get(ctx, idOrSlug)
	if err != nil {
		return Scheme{}, fmt.Errorf("get scheme %q: %w", idOrSlug, err)
	}
	return s, nil
}

// States returns the sorted state ids named by published schemes.
func (c *Client) States(ctx context.Context) ([]string, error) {
	return c.catalog.States(ctx)
}

// Categories returns the sorted categories in use.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	return c.catalog.Categories(ctx)
}

// Health checks storage and the catalog snapshot.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
