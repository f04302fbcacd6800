package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DevalPrime/Meta-Ads-Manager/internal/config"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/store"
	"github.com/DevalPrime/Meta-Ads-Manager/internal/stubapi"
)

func main() {
	cfg := config.FromEnv()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	fx, err := store.LoadFixture(cfg.FixturePath)
	if err != nil {
		logger.Error("cannot load fixture", slog.String("path", cfg.FixturePath), slog.String("err", err.Error()))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.StubPort,
		Handler:           stubapi.NewRouter(store.NewFixtureStore(fx), logger, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("starting stub backend",
		slog.String("port", cfg.StubPort),
		slog.String("fixture", cfg.FixturePath),
		slog.Int("campaigns", len(fx.Campaigns)),
		slog.Int("adsets", len(fx.AdSets)))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.String("err", err.Error()))
		os.Exit(1)
	}
}
