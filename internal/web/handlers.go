package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"

	"github.com/JonMunkholm/nutrition/internal/core"
	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/JonMunkholm/nutrition/internal/table"
	"github.com/JonMunkholm/nutrition/internal/web/templates"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "sessions": s.registry.Len()})
}

// handleIndex renders the full page and drains notices.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.renderPage(w, r, sess)
}

// handleOpenForm renders the page with the add/update dialog open.
func (s *Server) handleOpenForm(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	sess.OpenForm()
	s.renderPage(w, r, sess)
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, sess *core.Session) {
	data := templates.PageData{
		View:      sess.Table().View(),
		Form:      sess.Form(),
		Notices:   sess.DrainNotices(),
		CSRFField: string(csrf.TemplateField(r)),
	}
	if err := templates.Render(r.Context(), w, http.StatusOK, templates.Page(data)); err != nil {
		slog.Error("render page", "error", err)
	}
}

// handleRefresh reloads the table from the store.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *core.Session) error {
		// Failures are queued as notices.
		_ = sess.Load(r.Context())
		return nil
	})
}

// handleSort applies a header click.
func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	column, err := schema.ParseColumnKey(chi.URLParam(r, "column"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.withSession(w, r, func(sess *core.Session) error {
		return sess.Table().RequestSort(column)
	})
}

// handleToggle flips one row's selection. A row removed meanwhile only
// produces a notice.
func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	s.withSession(w, r, func(sess *core.Session) error {
		if err := sess.Table().Toggle(schema.ID(id)); err != nil {
			if errors.Is(err, table.ErrUnknownRow) {
				sess.NotifyError(err)
				return nil
			}
			return err
		}
		return nil
	})
}

// handleSelectAll sets or clears every row. Without a checked value the
// header checkbox toggles: anything short of all selected selects all.
func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *core.Session) error {
		checked := sess.Table().View().SelectAll != table.Checked
		if v := r.PostFormValue("checked"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return badRequest(err)
			}
			checked = b
		}
		sess.Table().SelectAll(checked)
		return nil
	})
}

// handlePage moves one page forward or back.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	direction := chi.URLParam(r, "direction")
	s.withSession(w, r, func(sess *core.Session) error {
		switch direction {
		case "next":
			sess.Table().NextPage()
		case "prev":
			sess.Table().PrevPage()
		default:
			return badRequest(errors.New("unknown page direction: " + direction))
		}
		return nil
	})
}

// handlePageSize changes rows per page.
func (s *Server) handlePageSize(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *core.Session) error {
		size, err := strconv.Atoi(r.PostFormValue("size"))
		if err != nil {
			return badRequest(table.ErrInvalidPageSize)
		}
		if err := sess.Table().SetPageSize(size); err != nil {
			return badRequest(err)
		}
		return nil
	})
}

// handleDelete deletes the selected rows.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *core.Session) error {
		// Per-row failures are reported as notices and stay selected.
		_, _ = sess.DeleteSelected(r.Context())
		return nil
	})
}

// handleCancelForm closes the dialog, keeping the draft.
func (s *Server) handleCancelForm(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(sess *core.Session) error {
		sess.CancelForm()
		return nil
	})
}

// handleSave upserts the submitted draft. A failed save reopens the form
// with the draft preserved.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	if err := r.ParseForm(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	draft := schema.Draft{
		ID:       r.PostFormValue("id"),
		Name:     r.PostFormValue("name"),
		Calories: r.PostFormValue("calories"),
		Fat:      r.PostFormValue("fat"),
		Carbs:    r.PostFormValue("carbs"),
		Protein:  r.PostFormValue("protein"),
	}
	if _, err := sess.Save(r.Context(), draft); err != nil {
		http.Redirect(w, r, "/items/form", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// viewResponse is the JSON shape of GET /api/view.
type viewResponse struct {
	Title     string         `json:"title"`
	PageLabel string         `json:"pageLabel"`
	View      table.View     `json:"view"`
	Form      formResponse   `json:"form"`
	Notices   []noticeResult `json:"notices"`
}

type formResponse struct {
	Open        bool              `json:"open"`
	Editing     bool              `json:"editing"`
	Draft       schema.Draft      `json:"draft"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

type noticeResult struct {
	Level   string   `json:"level"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

// handleAPIView returns the current view as JSON. Notices are included but
// not drained; the page render owns them.
func (s *Server) handleAPIView(w http.ResponseWriter, r *http.Request) {
	sess, err := session(r)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	v := sess.Table().View()
	form := sess.Form()
	resp := viewResponse{
		Title:     v.Title(),
		PageLabel: v.PageLabel(),
		View:      v,
		Form: formResponse{
			Open:        form.Open,
			Editing:     form.Editing,
			Draft:       form.Draft,
			FieldErrors: form.FieldErrors,
		},
		Notices: []noticeResult{},
	}
	for _, n := range sess.PeekNotices() {
		resp.Notices = append(resp.Notices, noticeResult{
			Level:   string(n.Level),
			Message: n.Message,
			Action:  n.Action,
			Code:    n.Code,
			Details: n.Details,
		})
	}
	writeJSON(w, resp)
}

// badRequestError marks a handler error as the client's fault.
type badRequestError struct{ err error }

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func badRequest(err error) error { return badRequestError{err: err} }

// withSession runs fn against the request's session and redirects back to
// the page (post/redirect/get). Bad input is answered with 400.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(*core.Session) error) {
	sess, err := session(r)
	if err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	if err := fn(sess); err != nil {
		status := http.StatusInternalServerError
		var bad badRequestError
		if errors.As(err, &bad) {
			status = http.StatusBadRequest
		}
		respondError(w, r, err, status)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
