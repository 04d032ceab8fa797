// Package web provides the HTTP server and handlers for the nutrition admin UI.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"

	"github.com/JonMunkholm/nutrition/internal/config"
	"github.com/JonMunkholm/nutrition/internal/core"
	webmw "github.com/JonMunkholm/nutrition/internal/web/middleware"
)

// Server is the HTTP server for the nutrition admin UI.
type Server struct {
	registry *core.Registry
	cfg      *config.Config
	metrics  http.Handler
	router   *chi.Mux
	server   *http.Server

	limiter         *rateLimiter
	mutationLimiter *rateLimiter
}

// Options configures a Server.
type Options struct {
	Registry *core.Registry
	Config   *config.Config
	Metrics  http.Handler // Served at /metrics when non-nil
}

// NewServer creates a new Server instance.
func NewServer(opts Options) (*Server, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if opts.Config == nil {
		return nil, fmt.Errorf("config is nil")
	}

	s := &Server{
		registry: opts.Registry,
		cfg:      opts.Config,
		metrics:  opts.Metrics,
		router:   chi.NewRouter(),
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() error {
	cfg := s.cfg

	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(cfg.Security.TrustedProxies))
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// Security hardening
	s.router.Use(securityHeaders(cfg.Security.EnableCSP))

	if cfg.Rate.Enabled {
		s.limiter = newRateLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		s.mutationLimiter = newRateLimiter(cfg.Rate.MutationLimit, time.Minute)
		s.router.Use(s.limiter.middleware)
	}

	protect, err := csrfProtect(cfg.Security)
	if err != nil {
		return err
	}
	if !cfg.Security.SecureCookies {
		s.router.Use(plaintextHTTP)
	}
	s.router.Use(protect)

	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics)
	}

	s.router.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		// Pages
		r.Get("/", s.handleIndex)
		r.Get("/items/form", s.handleOpenForm)

		// Table intents
		r.Route("/table", func(r chi.Router) {
			r.Post("/refresh", s.handleRefresh)
			r.Post("/sort/{column}", s.handleSort)
			r.Post("/select/{id}", s.handleToggle)
			r.Post("/select-all", s.handleSelectAll)
			r.Post("/page/{direction}", s.handlePage)
			r.Post("/page-size", s.handlePageSize)
			r.With(s.limitMutations).Post("/delete", s.handleDelete)
		})

		// Form
		r.Post("/items/form/cancel", s.handleCancelForm)
		r.With(s.limitMutations).Post("/items", s.handleSave)

		// API routes
		r.Route("/api", func(r chi.Router) {
			r.Get("/view", s.handleAPIView)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.stop()
		s.mutationLimiter.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// contentSecurityPolicy allows the inline stylesheet and nothing from
// other origins.
const contentSecurityPolicy = "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'"

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			if enableCSP {
				w.Header().Set("Content-Security-Policy", contentSecurityPolicy)
			}

			// Control referrer information
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}

// csrfProtect builds the form token middleware. An empty key gets a random
// one, so tokens do not survive a restart.
func csrfProtect(sec config.SecurityConfig) (func(http.Handler) http.Handler, error) {
	key := []byte(sec.CSRFKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, fmt.Errorf("generate csrf key: no randomness available")
		}
	}

	return csrf.Protect(key,
		csrf.Secure(sec.SecureCookies),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.CookieName("nutrition_csrf"),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	), nil
}

// plaintextHTTP marks requests as served over plain HTTP so the token check
// skips the strict TLS referer test.
func plaintextHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
	})
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	reason := csrf.FailureReason(r)
	if reason == nil {
		reason = errForbidden
	}
	respondError(w, r, fmt.Errorf("csrf: %w", reason), http.StatusForbidden)
}
