package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// DefaultTimeout bounds each remote call when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// HTTPGateway talks to the remote REST endpoint.
//
//	GET    {base}       list every row
//	PUT    {base}       upsert one row sent as plain JSON
//	DELETE {base}/{id}  delete one row
type HTTPGateway struct {
	base    *url.URL
	client  *http.Client
	timeout time.Duration
}

// HTTPOption configures an HTTPGateway.
type HTTPOption func(*HTTPGateway)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(g *HTTPGateway) {
		if c != nil {
			g.client = c
		}
	}
}

// WithTimeout sets the per-request timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) HTTPOption {
	return func(g *HTTPGateway) {
		g.timeout = d
	}
}

// NewHTTPGateway returns a gateway for the endpoint at rawURL.
func NewHTTPGateway(rawURL string, opts ...HTTPOption) (*HTTPGateway, error) {
	u, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gateway url must be http or https: %q", rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("gateway url has no host: %q", rawURL)
	}

	g := &HTTPGateway{
		base:    u,
		client:  &http.Client{},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *HTTPGateway) FetchAll(ctx context.Context) ([]schema.Row, error) {
	status, body, err := g.do(ctx, http.MethodGet, g.base.String(), nil)
	if err != nil {
		return nil, newError(OpFetchAll, "", ErrNetwork, err)
	}
	if status < 200 || status > 299 {
		return nil, newError(OpFetchAll, "", ErrNetwork, statusError(status, body))
	}

	rows, err := DecodeRows(body)
	if err != nil {
		return nil, newError(OpFetchAll, "", ErrParse, err)
	}
	return rows, nil
}

func (g *HTTPGateway) Upsert(ctx context.Context, row schema.Row) (schema.Row, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return schema.Row{}, newError(OpUpsert, row.ID, ErrValidation, err)
	}

	status, body, err := g.do(ctx, http.MethodPut, g.base.String(), payload)
	if err != nil {
		return schema.Row{}, newError(OpUpsert, row.ID, ErrNetwork, err)
	}
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return schema.Row{}, newError(OpUpsert, row.ID, ErrValidation, statusError(status, body))
	case status < 200 || status > 299:
		return schema.Row{}, newError(OpUpsert, row.ID, ErrNetwork, statusError(status, body))
	}

	// The stored row is echoed when the endpoint returns one; an empty or
	// acknowledgement-only body means the row was stored as sent.
	if stored, err := DecodeRow(body); err == nil && stored.ID == row.ID {
		return stored, nil
	}
	return row, nil
}

func (g *HTTPGateway) DeleteOne(ctx context.Context, id schema.ID) error {
	target := g.base.String() + "/" + url.PathEscape(string(id))

	status, body, err := g.do(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return newError(OpDelete, id, ErrNetwork, err)
	}
	switch {
	case status == http.StatusNotFound:
		return newError(OpDelete, id, ErrNotFound, nil)
	case status < 200 || status > 299:
		return newError(OpDelete, id, ErrNetwork, statusError(status, body))
	}
	return nil
}

// do performs one request and reads the whole body. Any error it returns is
// a transport failure.
func (g *HTTPGateway) do(ctx context.Context, method, target string, payload []byte) (int, []byte, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("%s %s: timed out: %w", method, target, err)
		}
		return 0, nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// maxStatusMessage caps how much of an error body ends up in the error text.
const maxStatusMessage = 200

func statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxStatusMessage {
		cut := maxStatusMessage
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	if msg == "" {
		return fmt.Errorf("unexpected status %d", status)
	}
	return fmt.Errorf("unexpected status %d: %s", status, msg)
}
