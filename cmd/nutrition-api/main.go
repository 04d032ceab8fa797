// Command nutrition-api serves the item store over the remote wire format
// that the http gateway mode consumes.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/nutrition/internal/app"
	"github.com/JonMunkholm/nutrition/internal/config"
	"github.com/JonMunkholm/nutrition/internal/gateway"
	"github.com/JonMunkholm/nutrition/internal/logging"
	"github.com/JonMunkholm/nutrition/internal/remote"
)

func main() {
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Gateway.Mode == config.GatewayHTTP {
		slog.Error("nutrition-api cannot proxy another remote store; use postgres or memory mode")
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := app.OpenStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	gw, err := app.Decorate(store.Gateway, cfg, reg)
	if err != nil {
		slog.Error("failed to build gateway", "error", err)
		os.Exit(1)
	}

	format, err := gateway.ParseFormat(cfg.Gateway.Format)
	if err != nil {
		slog.Error("invalid wire format", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	if cfg.Metrics.Enabled {
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	router.Mount("/", remote.NewHandler(gw, remote.Options{
		Format:         format,
		TrustedProxies: cfg.Security.TrustedProxies,
		Timeout:        cfg.Server.RequestTimeout,
	}))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("remote store listening", "addr", server.Addr, "format", format, "mode", cfg.Gateway.Mode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
