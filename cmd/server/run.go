package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/config"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/dashboard"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/httpx"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/ingest"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/store"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/telemetry"
)

type app struct {
	cfg    config.Config
	log    *slog.Logger
	reg    *prometheus.Registry
	tel    *telemetry.Collectors
	loader *dashboard.Loader
	svc    *dashboard.Service
}

func newApp(cfg config.Config, logger *slog.Logger) (*app, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	tel := telemetry.New(reg)

	client, err := ingest.NewClient(ingest.Options{
		BaseURL: cfg.BackendURL,
		HTTP:    ingest.NewHTTPClient(cfg.HTTPTimeout),
		Logger:  logger,
		Metrics: tel,
		Retries: cfg.BackendRetries,
	})
	if err != nil {
		return nil, err
	}

	st := store.NewMemoryStore()
	loader := dashboard.NewLoader(client, st, logger, tel)
	if !loader.SetPreset(cfg.DatePreset) {
		logger.Warn("unknown date preset, using today", slog.String("preset", cfg.DatePreset))
	}
	svc := dashboard.NewService(dashboard.Options{
		Store:         st,
		Loader:        loader,
		Toggler:       dashboard.NewToggler(client, st, loader, logger, tel),
		Logger:        logger,
		Account:       cfg.AccountName,
		BreakEvenROAS: cfg.BreakEvenROAS,
	})
	return &app{cfg: cfg, log: logger, reg: reg, tel: tel, loader: loader, svc: svc}, nil
}

func loadConfig() (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func serve(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return fmt.Errorf("cannot load config: %w", err)
	}
	a, err := newApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("cannot build the application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.loader.Run(ctx, cfg.RefreshInterval)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpx.NewRouter(logger, a.svc, httpx.Options{
			Telemetry:   a.tel,
			Gatherer:    a.reg,
			CORSOrigins: cfg.CORSOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			slog.String("port", cfg.Port),
			slog.String("backend", cfg.BackendURL),
			slog.String("preset", a.loader.Preset()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Warn("signal received, shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
