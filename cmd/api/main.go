package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/opencarelab/eidbi-assistant/internal/adapters/http"
	"github.com/opencarelab/eidbi-assistant/internal/bootstrap"
	"github.com/opencarelab/eidbi-assistant/internal/config"
	"github.com/opencarelab/eidbi-assistant/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup("eidbi-api", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		app.QueryUC,
		app.Retriever,
		app.Store,
		app.HTTPMetrics.Handler(),
		app.HTTPMetrics,
	).Handler()

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		if err := app.ListenForRefresh(ctx); err != nil {
			slog.Error("refresh_listener_failed", "error", err)
		}
	}()

	go func() {
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("api_server_failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_failed", "error", err)
	}
}
