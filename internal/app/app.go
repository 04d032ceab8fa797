// Package app wires configuration into the store, gateway decorators and
// service shared by every binary.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/JonMunkholm/nutrition/internal/config"
	"github.com/JonMunkholm/nutrition/internal/core"
	"github.com/JonMunkholm/nutrition/internal/gateway"
	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/JonMunkholm/nutrition/internal/table"
)

// Store is an opened backend. Close releases its resources.
type Store struct {
	Gateway gateway.Gateway
	Close   func()
}

// OpenStore opens the backend named by cfg.Gateway.Mode.
func OpenStore(ctx context.Context, cfg *config.Config) (*Store, error) {
	switch cfg.Gateway.Mode {
	case config.GatewayHTTP:
		gw, err := gateway.NewHTTPGateway(cfg.Gateway.URL, gateway.WithTimeout(cfg.Gateway.Timeout))
		if err != nil {
			return nil, err
		}
		slog.Info("using remote store", "url", cfg.Gateway.URL)
		return &Store{Gateway: gw, Close: func() {}}, nil

	case config.GatewayPostgres:
		return openPostgres(ctx, cfg)

	case config.GatewayMemory, "":
		slog.Info("using in-memory store with sample data")
		return &Store{Gateway: gateway.NewMemoryGateway(schema.SampleRows()), Close: func() {}}, nil

	default:
		return nil, fmt.Errorf("unknown gateway mode: %q", cfg.Gateway.Mode)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Store, error) {
	pool, err := gateway.OpenPool(ctx, cfg.Database.URL, gateway.PoolOptions{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}

	pg := gateway.NewPostgresGateway(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if cfg.Database.SeedSample {
		n, err := pg.Seed(ctx, schema.SampleRows())
		if err != nil {
			pool.Close()
			return nil, err
		}
		slog.Info("seeded sample items", "inserted", n)
	}

	slog.Info("connected to database", "max_conns", cfg.Database.MaxConns)
	return &Store{Gateway: pg, Close: pool.Close}, nil
}

// Decorate adds row validation and, as configured, metrics and tracing.
// reg may be nil when metrics are disabled.
func Decorate(gw gateway.Gateway, cfg *config.Config, reg prometheus.Registerer) (gateway.Gateway, error) {
	return gateway.NewObservable(gateway.NewValidating(gw), gateway.ObservableOptions{
		Name:          cfg.Metrics.Namespace + "_gateway",
		Registerer:    reg,
		EnableMetrics: cfg.Metrics.Enabled,
		EnableTracing: cfg.Metrics.Tracing,
		Logger:        slog.Default().With("component", "gateway"),
	})
}

// TableOptions converts the table section of cfg.
func TableOptions(cfg *config.Config) (table.Options, error) {
	column, err := schema.ParseColumnKey(cfg.Table.SortColumn)
	if err != nil {
		return table.Options{}, fmt.Errorf("table sort column: %w", err)
	}
	dir, err := table.ParseDirection(cfg.Table.SortDirection)
	if err != nil {
		return table.Options{}, fmt.Errorf("table sort direction: %w", err)
	}
	return table.Options{
		SortKey:   table.SortKey{Column: column, Direction: dir},
		PageSize:  cfg.Table.PageSize,
		PageSizes: cfg.Table.PageSizes,
	}, nil
}

// NewService builds the core service over gw with the shared call limiter.
func NewService(cfg *config.Config, gw gateway.Gateway) (*core.Service, error) {
	opts, err := TableOptions(cfg)
	if err != nil {
		return nil, err
	}
	return core.NewService(gw, core.Options{
		Table:        opts,
		DeleteFanOut: cfg.Gateway.DeleteFanOut,
		Limiter:      core.NewLimiter(cfg.Gateway.MaxConcurrent, cfg.Gateway.MaxWaitTime),
	})
}
