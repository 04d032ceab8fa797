package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ObservableOptions configures NewObservable.
type ObservableOptions struct {
	// Name prefixes metric names and tags spans and log lines.
	Name string

	// Registerer receives the collectors. Nil means prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer

	EnableMetrics bool
	EnableTracing bool

	// Logger, when set, logs every completed operation at debug level and
	// every failure at warn.
	Logger *slog.Logger
}

// Metrics holds the gateway collectors.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	active     *prometheus.GaugeVec
	rows       prometheus.Gauge
}

// NewMetrics creates collectors named after name and registers them with
// reg. Collectors already registered under the same names are reused.
func NewMetrics(name string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: name + "_operations_total",
				Help: "Total number of gateway operations by outcome",
			},
			[]string{"operation", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    name + "_operation_duration_seconds",
				Help:    "Duration of gateway operations in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"operation"},
		),
		active: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: name + "_active_operations",
				Help: "Number of in-flight gateway operations",
			},
			[]string{"operation"},
		),
		rows: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: name + "_rows_fetched",
				Help: "Row count returned by the last successful fetch-all",
			},
		),
	}

	m.operations = register(reg, m.operations)
	m.duration = register(reg, m.duration)
	m.active = register(reg, m.active)
	m.rows = register(reg, m.rows)
	return m
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(fmt.Sprintf("gateway: register metrics: %v", err))
	}
	return c
}

// Observable adds metrics, trace spans and logs to any Gateway.
type Observable struct {
	next    Gateway
	name    string
	metrics *Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
}

// NewObservable wraps next.
func NewObservable(next Gateway, opts ObservableOptions) (*Observable, error) {
	if next == nil {
		return nil, errors.New("gateway is nil")
	}
	if opts.Name == "" {
		opts.Name = "nutrition_gateway"
	}

	obs := &Observable{next: next, name: opts.Name, logger: opts.Logger}
	if opts.EnableMetrics {
		obs.metrics = NewMetrics(opts.Name, opts.Registerer)
	}
	if opts.EnableTracing {
		obs.tracer = otel.Tracer(fmt.Sprintf("gateway.%s", opts.Name))
	}
	return obs, nil
}

// observe runs fn inside a span and records its outcome.
func (obs *Observable) observe(ctx context.Context, op Op, id schema.ID, fn func(context.Context) error) error {
	start := time.Now()

	var span trace.Span
	if obs.tracer != nil {
		attrs := []attribute.KeyValue{
			attribute.String("component", obs.name),
			attribute.String("operation", string(op)),
		}
		if id != "" {
			attrs = append(attrs, attribute.String("row.id", string(id)))
		}
		ctx, span = obs.tracer.Start(ctx, fmt.Sprintf("gateway.%s", op), trace.WithAttributes(attrs...))
		defer span.End()
	}

	if obs.metrics != nil {
		obs.metrics.active.WithLabelValues(string(op)).Inc()
		defer obs.metrics.active.WithLabelValues(string(op)).Dec()
	}

	err := fn(ctx)
	duration := time.Since(start)
	status := kindLabel(err)

	if span != nil {
		span.SetAttributes(
			attribute.Int64("duration_ms", duration.Milliseconds()),
			attribute.String("status", status),
		)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			span.RecordError(err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}

	if obs.metrics != nil {
		obs.metrics.operations.WithLabelValues(string(op), status).Inc()
		obs.metrics.duration.WithLabelValues(string(op)).Observe(duration.Seconds())
	}

	if obs.logger != nil {
		if err != nil {
			obs.logger.WarnContext(ctx, "gateway operation failed",
				"component", obs.name,
				"operation", op,
				"id", id,
				"status", status,
				"duration_ms", duration.Milliseconds(),
				"error", err,
			)
		} else {
			obs.logger.DebugContext(ctx, "gateway operation completed",
				"component", obs.name,
				"operation", op,
				"id", id,
				"duration_ms", duration.Milliseconds(),
			)
		}
	}

	return err
}

func (obs *Observable) FetchAll(ctx context.Context) ([]schema.Row, error) {
	var rows []schema.Row
	err := obs.observe(ctx, OpFetchAll, "", func(ctx context.Context) error {
		var fetchErr error
		rows, fetchErr = obs.next.FetchAll(ctx)
		return fetchErr
	})
	if err == nil && obs.metrics != nil {
		obs.metrics.rows.Set(float64(len(rows)))
	}
	return rows, err
}

func (obs *Observable) Upsert(ctx context.Context, row schema.Row) (schema.Row, error) {
	var stored schema.Row
	err := obs.observe(ctx, OpUpsert, row.ID, func(ctx context.Context) error {
		var upsertErr error
		stored, upsertErr = obs.next.Upsert(ctx, row)
		return upsertErr
	})
	return stored, err
}

func (obs *Observable) DeleteOne(ctx context.Context, id schema.ID) error {
	return obs.observe(ctx, OpDelete, id, func(ctx context.Context) error {
		return obs.next.DeleteOne(ctx, id)
	})
}
