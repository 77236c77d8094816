// Package main package
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vishalvchavan/streamsmt/internal/config"
	"github.com/vishalvchavan/streamsmt/internal/mapping"
	"github.com/vishalvchavan/streamsmt/internal/metrics"
	"github.com/vishalvchavan/streamsmt/internal/orchestrator"
	"github.com/vishalvchavan/streamsmt/internal/reload"
	"github.com/vishalvchavan/streamsmt/internal/reload/remote/classpath"
	"github.com/vishalvchavan/streamsmt/internal/reload/remote/s3"
	"github.com/vishalvchavan/streamsmt/internal/transform"
	"github.com/vishalvchavan/streamsmt/pkg/logger"
)

// Version is passed in via ldflags at build time
var Version = "1.0.0"

var flagConfig = flag.String("config", "", "path to the config file")

func main() {
	flag.Parse()

	bootLog := logger.New().With("version", Version)
	bootLog.Info("Starting transform engine...")

	cfg, err := config.Load(*flagConfig, bootLog)
	if err != nil {
		bootLog.Errorf("Application config is invalid: %v", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.LogLevel).With("version", Version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := metrics.New()
	keys := transform.NewKeyStore()
	store := mapping.NewStore(keys, rec)

	source, err := buildSource(ctx, cfg)
	if err != nil {
		log.Errorf("Failed to initialize mapping source: %v", err)
		os.Exit(1)
	}

	reloadCfg := reload.DefaultConfig()
	reloadCfg.Interval = time.Duration(cfg.HotReloadIntervalSeconds) * time.Second
	reloadCfg.RetryAttempts = uint(cfg.ReloadRetryAttempts)
	reloadCfg.RetryBaseDelay = time.Duration(cfg.ReloadRetryBaseDelayMs) * time.Millisecond
	reloadCfg.RetryMaxDelay = time.Duration(cfg.ReloadRetryMaxDelayMs) * time.Millisecond
	reloadCfg.ProbeTimeout = time.Duration(cfg.ReloadProbeTimeoutSecs) * time.Second
	reloadCfg.FetchTimeout = time.Duration(cfg.ReloadFetchTimeoutSecs) * time.Second

	controller := reload.NewController(reloadCfg, source, store, log, rec)
	controller.Start(ctx)

	orch := orchestrator.New(store, rec, log, orchestrator.Config{
		FailOnMissingMapping: cfg.FailOnMissingMapping,
		AttachSourceMetadata: cfg.AttachSourceMetadata,
		StoreRawPayload:      cfg.StoreRawPayload,
	})

	srv := newHTTPServer(fmt.Sprintf(":%d", cfg.MetricsPort), rec.Registry, orch, log)

	shutdownDone := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down transform engine...")
		shutdownHTTPServer(ctx, srv, log)
		controller.Stop()
		close(shutdownDone)
	}()

	log.Infow("HTTP server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Errorf("HTTP server failed: %v", err)
	}

	<-shutdownDone
}

func buildSource(ctx context.Context, cfg *config.Config) (reload.Source, error) {
	if cfg.MappingSource == "s3" {
		return s3.New(ctx, s3.Options{
			Bucket:          cfg.RemoteBucket,
			Key:             cfg.MappingLocation,
			Region:          cfg.RemoteRegion,
			Endpoint:        cfg.RemoteEndpoint,
			AccessKeyID:     cfg.RemoteAccessKeyID,
			SecretAccessKey: cfg.RemoteSecretAccessKey,
			UsePathStyle:    cfg.RemoteUsePathStyle,
		})
	}
	return classpath.New(os.DirFS("."), cfg.MappingLocation), nil
}
