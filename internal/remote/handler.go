// Package remote serves any gateway.Gateway over the REST wire format the
// HTTP gateway consumes, so the web admin and the terminal UI can run
// against a real endpoint backed by PostgreSQL or memory.
//
// Routes:
//
//	GET    /items       every row, envelope-wrapped in the configured format
//	PUT    /items       upsert one row (plain JSON or typed attributes)
//	DELETE /items/{id}  delete one row
//	GET    /healthz     liveness
package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/JonMunkholm/nutrition/internal/gateway"
	"github.com/JonMunkholm/nutrition/internal/logging"
	"github.com/JonMunkholm/nutrition/internal/schema"
	webmw "github.com/JonMunkholm/nutrition/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxBodyBytes caps an upsert request body.
const maxBodyBytes = 1 << 20

// Options configures the handler.
type Options struct {
	Format         gateway.Format
	TrustedProxies []string
	Timeout        time.Duration
}

// Handler exposes a Gateway over HTTP.
type Handler struct {
	gw     gateway.Gateway
	format gateway.Format
	router *chi.Mux
}

// NewHandler builds the router for gw.
func NewHandler(gw gateway.Gateway, opts Options) *Handler {
	if opts.Format == "" {
		opts.Format = gateway.FormatTagged
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	h := &Handler{gw: gw, format: opts.Format, router: chi.NewRouter()}

	h.router.Use(middleware.RequestID)
	h.router.Use(webmw.TrustedRealIP(opts.TrustedProxies))
	h.router.Use(webmw.Logger)
	h.router.Use(middleware.Recoverer)
	h.router.Use(middleware.Timeout(opts.Timeout))

	h.router.Get("/healthz", h.handleHealth)
	h.router.Route("/items", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Put("/", h.handleUpsert)
		r.Delete("/{id}", h.handleDelete)
	})
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	rows, err := h.gw.FetchAll(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	data, err := gateway.EncodeRows(rows, h.format)
	if err != nil {
		h.respondError(w, r, fmt.Errorf("encode rows: %w", err))
		return
	}
	writeRaw(w, http.StatusOK, data)
}

func (h *Handler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "request body too large"})
		return
	}

	row, err := gateway.DecodeRow(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	stored, err := h.gw.Upsert(r.Context(), row)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("item stored", "id", stored.ID)
	data, err := gateway.EncodeRow(stored, h.format)
	if err != nil {
		h.respondError(w, r, fmt.Errorf("encode row: %w", err))
		return
	}
	writeRaw(w, http.StatusOK, data)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	raw, err := url.PathUnescape(chi.URLParam(r, "id"))
	id := schema.ID(raw)
	if err != nil || id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "id is required"})
		return
	}

	if err := h.gw.DeleteOne(r.Context(), id); err != nil {
		h.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("item deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]string{"deleted": string(id)})
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// respondError maps a gateway failure kind to a status code.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	kind := gateway.KindOf(err)
	switch kind {
	case gateway.ErrNotFound:
		status = http.StatusNotFound
	case gateway.ErrValidation:
		status = http.StatusUnprocessableEntity
	case gateway.ErrNetwork, gateway.ErrParse:
		status = http.StatusBadGateway
	}

	logging.FromContext(r.Context()).Warn("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)

	body := errorBody{Error: http.StatusText(status)}
	if kind != nil {
		body.Kind = kind.Error()
	}
	// Validation messages are safe and useful to the client.
	var gwErr *gateway.Error
	if errors.Is(err, gateway.ErrValidation) && errors.As(err, &gwErr) && gwErr.Err != nil {
		body.Error = gwErr.Err.Error()
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encode response", http.StatusInternalServerError)
		return
	}
	writeRaw(w, status, data)
}

func writeRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
