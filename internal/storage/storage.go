// Package storage opens the scheme and submission repositories for the configured driver.
package storage

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/config"
	dbRedis "github.com/kailas-cloud/schemefinder/internal/db/redis"
	"github.com/kailas-cloud/schemefinder/internal/repository/jsonfile"
	"github.com/kailas-cloud/schemefinder/internal/repository/postgres"
	schemerepo "github.com/kailas-cloud/schemefinder/internal/repository/scheme"
	submissionrepo "github.com/kailas-cloud/schemefinder/internal/repository/submission"
	adminuc "github.com/kailas-cloud/schemefinder/internal/usecase/admin"
	catalogus "github.com/kailas-cloud/schemefinder/internal/usecase/catalog"
	subuc "github.com/kailas-cloud/schemefinder/internal/usecase/submission"
)

// SchemeStore is everything the catalog and admin use cases need.
type SchemeStore interface {
	catalogus.Repository
	adminuc.Repository
}

// Backend is the wired storage for one driver.
type Backend struct {
	Schemes     SchemeStore
	Submissions subuc.Repository
	Pinger      interface{ Ping(ctx context.Context) error }
	closeFn     func()
}

// Close releases connections. Safe on a nil Backend.
func (b *Backend) Close() {
	if b != nil && b.closeFn != nil {
		b.closeFn()
	}
}

// Open connects to the configured driver. Postgres migrations run before it returns.
func Open(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*Backend, error) {
	timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	switch cfg.Driver {
	case config.DriverJSON, "":
		repo := jsonfile.New(cfg.Path)
		logger.Info("Using read-only JSON dataset", zap.String("path", cfg.Path))
		return &Backend{Schemes: repo, Submissions: repo, Pinger: repo}, nil

	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, timeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		logger.Info("Connected to redis", zap.Strings("addrs", cfg.Addrs))
		return &Backend{
			Schemes:     schemerepo.New(store, cfg.KeyPrefix),
			Submissions: submissionrepo.New(store, cfg.KeyPrefix),
			Pinger:      store,
			closeFn:     store.Close,
		}, nil

	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		pool, err := postgres.Connect(connectCtx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("Connected to postgres")
		repo := postgres.New(pool)
		return &Backend{Schemes: repo, Submissions: repo, Pinger: repo, closeFn: pool.Close}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
