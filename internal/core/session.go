package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/nutrition/internal/gateway"
	"github.com/JonMunkholm/nutrition/internal/logging"
	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/JonMunkholm/nutrition/internal/table"
	"golang.org/x/sync/errgroup"
)

// Session is one user's view of the nutrition table: its engine state, the
// add/update form and pending notices.
//
// Network calls run outside every lock. Each completion applies exactly one
// table mutation batch, so the engine invariants hold whatever the gateway
// returns and however calls interleave.
type Session struct {
	id  string
	svc *Service
	tbl *table.Table

	mu          sync.Mutex
	formOpen    bool
	editing     bool
	draft       schema.Draft
	fieldErrors map[string]string
	notices     []Notice
	lastSeen    time.Time
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Table returns the engine. Sort, selection and paging intents go straight
// to it.
func (s *Session) Table() *table.Table { return s.tbl }

// Touch records activity for idle sweeping.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = s.svc.now()
	s.mu.Unlock()
}

// LastSeen returns the time of the last Touch.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Load fetches every row. On success the table is replaced wholesale; on
// failure the table is left exactly as it was and an error notice is
// queued.
func (s *Session) Load(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	var rows []schema.Row
	err := s.svc.limiter.do(ctx, func(ctx context.Context) error {
		var fetchErr error
		rows, fetchErr = s.svc.gw.FetchAll(ctx)
		return fetchErr
	})
	if err != nil {
		logger.Warn("load failed", "error", err)
		s.Notify(errorNotice(err))
		return fmt.Errorf("load: %w", err)
	}

	s.tbl.ReplaceAll(rows)
	logger.Debug("table loaded", "rows", len(rows))
	return nil
}

// OpenForm shows the add/update form. With exactly one row selected the
// draft is pre-filled from that row, unless the draft already belongs to it.
// Otherwise the current draft is kept, so a cancelled or failed edit is not
// lost. Opening an already open form changes nothing.
func (s *Session) OpenForm() FormState {
	selected := s.tbl.SelectedIDs()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.formOpen {
		return s.formLocked()
	}
	if len(selected) == 1 && s.draft.ID != string(selected[0]) {
		if row, ok := s.tbl.Row(selected[0]); ok {
			s.draft = schema.DraftFromRow(row)
			s.editing = true
			s.fieldErrors = nil
		}
	}
	s.formOpen = true
	return s.formLocked()
}

// CancelForm hides the form and keeps the draft.
func (s *Session) CancelForm() {
	s.mu.Lock()
	s.formOpen = false
	s.mu.Unlock()
}

// ResetForm hides the form and blanks the draft.
func (s *Session) ResetForm() {
	s.mu.Lock()
	s.formOpen = false
	s.resetDraftLocked()
	s.mu.Unlock()
}

// Form returns the current form state.
func (s *Session) Form() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.formLocked()
}

func (s *Session) formLocked() FormState {
	fe := make(map[string]string, len(s.fieldErrors))
	for k, v := range s.fieldErrors {
		fe[k] = v
	}
	return FormState{Open: s.formOpen, Draft: s.draft, FieldErrors: fe, Editing: s.editing}
}

func (s *Session) resetDraftLocked() {
	s.draft = schema.BlankDraft()
	s.editing = false
	s.fieldErrors = nil
}

// Save parses draft and upserts it. A draft that does not parse never
// reaches the gateway. On success the row is upserted into the table, the
// form resets to the blank template and an acknowledgement is queued. On
// any failure the table is unchanged, the form stays open and the draft is
// preserved.
func (s *Session) Save(ctx context.Context, draft schema.Draft) (schema.Row, error) {
	logger := logging.FromContext(ctx)

	s.mu.Lock()
	s.draft = draft
	s.formOpen = true
	s.fieldErrors = nil
	s.mu.Unlock()

	row, err := draft.Parse()
	if err != nil {
		fields, details := fieldProblems(err)
		s.mu.Lock()
		s.fieldErrors = fields
		s.mu.Unlock()

		verr := &gateway.Error{Op: gateway.OpUpsert, ID: schema.ID(draft.ID), Kind: gateway.ErrValidation, Err: err}
		s.Notify(errorNotice(verr, details...))
		logger.Info("draft rejected", "fields", len(fields))
		return schema.Row{}, verr
	}

	var stored schema.Row
	err = s.svc.limiter.do(ctx, func(ctx context.Context) error {
		var upsertErr error
		stored, upsertErr = s.svc.gw.Upsert(ctx, row)
		return upsertErr
	})
	if err != nil {
		var details []string
		var gwErr *gateway.Error
		if errors.Is(err, gateway.ErrValidation) && errors.As(err, &gwErr) && gwErr.Err != nil {
			details = []string{gwErr.Err.Error()}
		}
		s.Notify(errorNotice(err, details...))
		logger.Warn("save failed", "id", row.ID, "error", err)
		return schema.Row{}, fmt.Errorf("save %s: %w", row.ID, err)
	}

	inserted := s.tbl.Upsert(stored)

	s.mu.Lock()
	s.formOpen = false
	s.resetDraftLocked()
	s.mu.Unlock()

	s.Notify(successNotice("Item saved successfully"))
	logger.Info("item saved", "id", stored.ID, "inserted", inserted)
	return stored, nil
}

// DeleteSelected snapshots the selection, deletes every id concurrently,
// waits for all of them, then removes the rows that are gone in one
// mutation batch. A remote not-found counts as gone. Rows whose delete
// failed stay in the table and stay selected.
//
// The returned error joins the individual failures and is nil when every
// delete succeeded.
func (s *Session) DeleteSelected(ctx context.Context) (DeleteResult, error) {
	ids := s.tbl.SelectedIDs()
	result := DeleteResult{Requested: ids, Failed: map[schema.ID]error{}}
	if len(ids) == 0 {
		return result, nil
	}

	logger := logging.WithFields(ctx, "ids", len(ids))
	logger.Info("delete started")

	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(s.svc.fanOut)
	for i, id := range ids {
		g.Go(func() error {
			errs[i] = s.svc.limiter.do(ctx, func(ctx context.Context) error {
				return s.svc.gw.DeleteOne(ctx, id)
			})
			// Failures are collected per id; none cancels its siblings.
			return nil
		})
	}
	_ = g.Wait()

	var failures []error
	for i, id := range ids {
		err := errs[i]
		switch {
		case err == nil, errors.Is(err, gateway.ErrNotFound):
			result.Removed = append(result.Removed, id)
		default:
			result.Failed[id] = err
			failures = append(failures, err)
		}
	}

	s.tbl.Remove(result.Removed)

	switch {
	case len(failures) == 0:
		s.Notify(successNotice(deletedMessage(len(result.Removed))))
	default:
		details := make([]string, 0, len(failures))
		for _, id := range ids {
			if err, ok := result.Failed[id]; ok {
				details = append(details, fmt.Sprintf("%s: %s", id, MapError(err).Message))
			}
		}
		s.Notify(Notice{Level: NoticeError, UserMessage: partialDeleteMessage, Details: details})
	}

	logger.Info("delete finished", "removed", len(result.Removed), "failed", len(failures))
	return result, errors.Join(failures...)
}

func deletedMessage(n int) string {
	if n == 1 {
		return "Deleted 1 item"
	}
	return fmt.Sprintf("Deleted %d items", n)
}

// Notify queues a notice.
func (s *Session) Notify(n Notice) {
	s.mu.Lock()
	s.notices = append(s.notices, n)
	s.mu.Unlock()
}

// NotifyError queues the user message for err.
func (s *Session) NotifyError(err error) {
	s.Notify(errorNotice(err))
}

// PeekNotices returns pending notices without clearing them.
func (s *Session) PeekNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice(nil), s.notices...)
}

// DrainNotices returns and clears pending notices.
func (s *Session) DrainNotices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}

// fieldProblems flattens a draft parse error into per-field messages.
func fieldProblems(err error) (map[string]string, []string) {
	fields := map[string]string{}
	var details []string

	var joined interface{ Unwrap() []error }
	parts := []error{err}
	if errors.As(err, &joined) {
		parts = joined.Unwrap()
	}
	for _, part := range parts {
		var fe schema.FieldError
		if errors.As(part, &fe) {
			fields[fe.Field] = fe.Message
		}
		details = append(details, part.Error())
	}
	return fields, details
}
