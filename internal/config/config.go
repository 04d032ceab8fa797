// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Gateway  GatewayConfig
	Database DatabaseConfig
	Table    TableConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// Gateway modes.
const (
	GatewayHTTP     = "http"
	GatewayPostgres = "postgres"
	GatewayMemory   = "memory"
)

// GatewayConfig selects and tunes the remote store.
type GatewayConfig struct {
	// Mode is the store backend: http, postgres or memory (default: memory)
	Mode string `env:"GATEWAY_MODE" default:"memory"`

	// URL is the remote store endpoint, required in http mode
	URL string `env:"GATEWAY_URL" envAlt:"NUTRITION_API_URL"`

	// Timeout bounds each gateway request (default: 10s)
	Timeout time.Duration `env:"GATEWAY_TIMEOUT" default:"10s"`

	// Format is the wire format served by nutrition-api: tagged or plain (default: tagged)
	Format string `env:"GATEWAY_FORMAT" default:"tagged"`

	// MaxConcurrent caps in-flight gateway calls across all sessions (default: 16)
	MaxConcurrent int `env:"GATEWAY_MAX_CONCURRENT" default:"16"`

	// MaxWaitTime is how long a call waits for a free slot (default: 10s)
	MaxWaitTime time.Duration `env:"GATEWAY_MAX_WAIT_TIME" default:"10s"`

	// DeleteFanOut bounds parallel deletes within one batch (default: 8)
	DeleteFanOut int `env:"GATEWAY_DELETE_FAN_OUT" default:"8"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string, required in postgres mode
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// SeedSample inserts the sample desserts into an empty table on startup (default: false)
	SeedSample bool `env:"DB_SEED_SAMPLE" default:"false"`
}

// TableConfig holds the defaults every new table starts with.
type TableConfig struct {
	// SortColumn is the initial sort column (default: calories)
	SortColumn string `env:"TABLE_SORT_COLUMN" default:"calories"`

	// SortDirection is asc or desc (default: asc)
	SortDirection string `env:"TABLE_SORT_DIRECTION" default:"asc"`

	// PageSize is the initial rows per page (default: 5)
	PageSize int `env:"TABLE_PAGE_SIZE" default:"5"`

	// PageSizes lists the selectable page sizes (default: 5,10,25)
	PageSizes []int `env:"TABLE_PAGE_SIZES" default:"5,10,25"`
}

// SessionConfig holds per-user session settings.
type SessionConfig struct {
	// TTL is how long an idle session is kept (default: 30m)
	TTL time.Duration `env:"SESSION_TTL" default:"30m"`

	// SweepInterval is how often idle sessions are removed (default: 1m)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" default:"1m"`

	// CookieName names the session cookie (default: nutrition_session)
	CookieName string `env:"SESSION_COOKIE_NAME" default:"nutrition_session"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// MutationLimit is requests per minute for save and delete (default: 30)
	MutationLimit int `env:"RATE_LIMIT_MUTATIONS" default:"30"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// CSRFKey is the 32-byte key for form tokens; empty generates one per process
	CSRFKey string `env:"CSRF_KEY"`

	// SecureCookies marks session and CSRF cookies Secure (default: false)
	SecureCookies bool `env:"SECURITY_SECURE_COOKIES" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// MetricsConfig holds observability settings.
type MetricsConfig struct {
	// Enabled exposes /metrics and records gateway metrics (default: true)
	Enabled bool `env:"METRICS_ENABLED" default:"true"`

	// Tracing records OpenTelemetry spans around gateway calls (default: false)
	Tracing bool `env:"METRICS_TRACING" default:"false"`

	// Namespace prefixes metric names (default: nutrition)
	Namespace string `env:"METRICS_NAMESPACE" default:"nutrition"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
