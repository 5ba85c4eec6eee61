// Package refresher periodically reloads the catalog snapshot when the
// stored catalog revision changes, so replicas pick up writes made elsewhere.
package refresher

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Catalog is reloaded on every tick if its storage revision moved.
type Catalog interface {
	RefreshIfChanged(ctx context.Context) (bool, error)
}

// Refresher wraps robfig/cron and runs the refresh job.
type Refresher struct {
	cron    *cron.Cron
	catalog Catalog
	spec    string
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Refresher firing on spec (e.g. "@every 1m").
func New(catalog Catalog, spec string, logger *zap.Logger) *Refresher {
	cl := cronLogger{logger: logger}
	return &Refresher{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		catalog: catalog,
		spec:    spec,
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Start registers the job and starts the scheduler. ctx bounds every run.
func (r *Refresher) Start(ctx context.Context) error {
	if _, err := r.cron.AddFunc(r.spec, func() { r.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	r.cron.Start()
	r.logger.Info("Catalog refresher started", zap.String("spec", r.spec))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish or ctx to expire.
func (r *Refresher) Stop(ctx context.Context) {
	done := r.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		r.logger.Warn("Catalog refresher stop timed out")
	}
	r.logger.Info("Catalog refresher stopped")
}

// RunOnce performs one revision check and reload.
func (r *Refresher) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	changed, err := r.catalog.RefreshIfChanged(ctx)
	if err != nil {
		r.logger.Warn("Catalog refresh failed", zap.Error(err))
		return
	}
	if changed {
		r.logger.Info("Catalog refreshed")
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, zap.Any("cron", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, zap.Error(err), zap.Any("cron", keysAndValues))
}
