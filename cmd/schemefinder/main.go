package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/schemefinder/internal/auth"
	"github.com/kailas-cloud/schemefinder/internal/config"
	logpkg "github.com/kailas-cloud/schemefinder/internal/logger"
	"github.com/kailas-cloud/schemefinder/internal/metrics"
	"github.com/kailas-cloud/schemefinder/internal/refresher"
	"github.com/kailas-cloud/schemefinder/internal/storage"
	chiTransport "github.com/kailas-cloud/schemefinder/internal/transport/chi"
	openaiSum "github.com/kailas-cloud/schemefinder/internal/transport/openai"
	adminuc "github.com/kailas-cloud/schemefinder/internal/usecase/admin"
	catalogus "github.com/kailas-cloud/schemefinder/internal/usecase/catalog"
	healthuc "github.com/kailas-cloud/schemefinder/internal/usecase/health"
	matchuc "github.com/kailas-cloud/schemefinder/internal/usecase/match"
	subuc "github.com/kailas-cloud/schemefinder/internal/usecase/submission"
	"github.com/kailas-cloud/schemefinder/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting schemefinder API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx := context.Background()
	store, err := storage.Open(ctx, &cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.Error(err))
	}
	defer store.Close()

	metrics.RegisterDomainMetrics()

	catalogSvc := catalogus.New(store.Schemes, logger)
	if err := catalogSvc.Refresh(ctx); err != nil {
		// Serve anyway; the snapshot loads lazily on first request and health reports the failure.
		logger.Error("Initial catalog load failed", zap.Error(err))
	}
	matchSvc := matchuc.New(catalogSvc)
	adminSvc := adminuc.New(store.Schemes, store.Submissions, catalogSvc, logger)

	var summarizer subuc.Summarizer
	var providerCheck healthuc.ProviderChecker
	if cfg.Summarizer.Enabled() {
		s := openaiSum.NewSummarizer(&openaiSum.Config{
			APIKey:    cfg.Summarizer.APIKey,
			BaseURL:   cfg.Summarizer.BaseURL,
			Model:     cfg.Summarizer.Model,
			MaxTokens: cfg.Summarizer.MaxTokens,
			Timeout:   time.Duration(cfg.Summarizer.TimeoutSec) * time.Second,
			Logger:    logger,
		})
		summarizer = s
		providerCheck = s
		logger.Info("Summarizer enabled", zap.String("model", cfg.Summarizer.Model))
	}
	submissionSvc := subuc.New(store.Submissions, adminSvc, summarizer, logger)
	healthSvc := healthuc.New(store.Pinger, catalogSvc, providerCheck)

	verifier := auth.NewVerifier(auth.Config{
		Secret:        cfg.Auth.TokenSecret,
		Issuer:        cfg.Auth.TokenIssuer,
		Audience:      cfg.Auth.TokenAudience,
		AllowedEmails: cfg.Auth.AdminEmails,
		APIKeys:       cfg.Auth.APIKeys,
		ClockSkew:     time.Duration(cfg.Auth.ClockSkewSec) * time.Second,
	})
	if !verifier.Enabled() {
		logger.Warn("Admin authentication not configured, admin API disabled")
	}

	server := chiTransport.NewServer(chiTransport.Services{
		Catalog:     catalogSvc,
		Match:       matchSvc,
		Admin:       adminSvc,
		Submissions: submissionSvc,
		Health:      healthSvc,
	}, logger)
	handler := chiTransport.NewRouter(server, verifier, logger)

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	var ref *refresher.Refresher
	if cfg.Catalog.RefreshSpec != "" {
		ref = refresher.New(catalogSvc, cfg.Catalog.RefreshSpec, logger)
		if err := ref.Start(refreshCtx); err != nil {
			logger.Fatal("Failed to start catalog refresher", zap.Error(err))
		}
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	stopRefresh()
	if ref != nil {
		ref.Stop(shutdownCtx)
	}

	logger.Info("Server stopped gracefully")
}
