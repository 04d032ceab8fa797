package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHTTPGateway(t *testing.T, h http.HandlerFunc, opts ...HTTPOption) *HTTPGateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	g, err := NewHTTPGateway(srv.URL+"/items", opts...)
	require.NoError(t, err)
	return g
}

func TestNewHTTPGateway_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "http://", "://nope"} {
		_, err := NewHTTPGateway(raw)
		assert.Error(t, err, raw)
	}
}

func TestHTTPGateway_FetchAll(t *testing.T) {
	g := newTestHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/items", r.URL.Path)
		_, _ = io.WriteString(w, taggedEnvelope)
	})

	rows, err := g.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []schema.Row{cupcake}, rows)
}

func TestHTTPGateway_FetchAllFailures(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
		kind   error
	}{
		"server error":   {status: http.StatusInternalServerError, body: "boom", kind: ErrNetwork},
		"not found":      {status: http.StatusNotFound, kind: ErrNetwork},
		"garbage body":   {status: http.StatusOK, body: "<html>", kind: ErrParse},
		"bad attribute":  {status: http.StatusOK, body: `[{"id":"1"}]`, kind: ErrParse},
		"envelope error": {status: http.StatusOK, body: `{"statusCode":502,"body":"upstream"}`, kind: ErrParse},
		"null ids":       {status: http.StatusOK, body: `[{"id":null,"name":"a","calories":1,"fat":0,"carbs":0,"protein":0},{"id":null,"name":"b","calories":1,"fat":0,"carbs":0,"protein":0}]`, kind: ErrParse},
		"non finite":     {status: http.StatusOK, body: `[{"id":{"S":"1"},"name":{"S":"a"},"calories":{"N":"NaN"},"fat":{"N":"Inf"},"carbs":{"N":"1"},"protein":{"N":"1"}}]`, kind: ErrParse},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			g := newTestHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := g.FetchAll(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)

			var gwErr *Error
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, OpFetchAll, gwErr.Op)
		})
	}
}

func TestHTTPGateway_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g, err := NewHTTPGateway(url)
	require.NoError(t, err)

	_, err = g.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, g.DeleteOne(context.Background(), "1"), ErrNetwork)
}

func TestHTTPGateway_Timeout(t *testing.T) {
	release := make(chan struct{})
	g := newTestHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, WithTimeout(20*time.Millisecond))
	defer close(release)

	_, err := g.FetchAll(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestHTTPGateway_UpsertSendsPlainRow(t *testing.T) {
	var got map[string]any
	g := newTestHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `"ok"`)
	})

	stored, err := g.Upsert(context.Background(), cupcake)
	require.NoError(t, err)
	assert.Equal(t, cupcake, stored)
	assert.Equal(t, "1", got["id"])
	assert.Equal(t, "Cupcake", got["name"])
	assert.Equal(t, 305.0, got["calories"])
}

func TestHTTPGateway_UpsertUsesEchoedRow(t *testing.T) {
	g := newTestHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
		echoed := cupcake
		echoed.Name = "Cupcake (normalised)"
		data, err := EncodeRow(echoed, FormatTagged)
		require.NoError(t, err)
		_, _ = w.Write(data)
	})

	stored, err := g.Upsert(context.Background(), cupcake)
	require.NoError(t, err)
	assert.Equal(t, "Cupcake (normalised)", stored.Name)
}

func TestHTTPGateway_UpsertFailures(t *testing.T) {
	tests := map[string]struct {
		status int
		kind   error
	}{
		"bad request":   {http.StatusBadRequest, ErrValidation},
		"unprocessable": {http.StatusUnprocessableEntity, ErrValidation},
		"server error":  {http.StatusBadGateway, ErrNetwork},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			g := newTestHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			})

			_, err := g.Upsert(context.Background(), cupcake)
			assert.ErrorIs(t, err, tc.kind)
		})
	}
}

func TestHTTPGateway_DeleteOne(t *testing.T) {
	tests := map[string]struct {
		status int
		kind   error
	}{
		"deleted":      {http.StatusOK, nil},
		"no content":   {http.StatusNoContent, nil},
		"missing":      {http.StatusNotFound, ErrNotFound},
		"server error": {http.StatusInternalServerError, ErrNetwork},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			g := newTestHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodDelete, r.Method)
				assert.Equal(t, "/items/7", r.URL.Path)
				w.WriteHeader(tc.status)
			})

			err := g.DeleteOne(context.Background(), "7")
			if tc.kind == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.kind)
			var gwErr *Error
			require.ErrorAs(t, err, &gwErr)
			assert.Equal(t, schema.ID("7"), gwErr.ID)
		})
	}
}

func TestHTTPGateway_DeleteEscapesID(t *testing.T) {
	g := newTestHTTPGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items/a%2Fb", r.URL.EscapedPath())
		w.WriteHeader(http.StatusOK)
	})

	assert.NoError(t, g.DeleteOne(context.Background(), "a/b"))
}

func TestStatusError_TrimsOnRuneBoundary(t *testing.T) {
	body := "a" + strings.Repeat("é", 150)

	err := statusError(http.StatusBadGateway, []byte(body))

	msg := err.Error()
	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.Contains(t, msg, "unexpected status 502: a")
	assert.Len(t, strings.TrimPrefix(strings.TrimSuffix(msg, "..."), "unexpected status 502: "), 199)
}
