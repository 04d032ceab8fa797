package core

import (
	"github.com/JonMunkholm/nutrition/internal/schema"
)

// NoticeLevel classifies a notice for display.
type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeError   NoticeLevel = "error"
)

// Notice is a one-shot message for the user. Presentation layers drain
// and render notices once.
type Notice struct {
	Level NoticeLevel
	UserMessage
	Details []string // Per-field or per-row specifics, may be empty
}

// successNotice builds an acknowledgement without an error code.
func successNotice(message string) Notice {
	return Notice{Level: NoticeSuccess, UserMessage: UserMessage{Message: message}}
}

// errorNotice maps err to a user message.
func errorNotice(err error, details ...string) Notice {
	return Notice{Level: NoticeError, UserMessage: MapError(err), Details: details}
}

// FormState is a snapshot of the add/update form.
type FormState struct {
	Open        bool
	Draft       schema.Draft
	FieldErrors map[string]string // field name -> problem
	Editing     bool              // Draft was pre-filled from an existing row
}

// DeleteResult reports the outcome of one delete-selected batch.
type DeleteResult struct {
	Requested []schema.ID
	Removed   []schema.ID         // Removed from the table, includes remote not-found
	Failed    map[schema.ID]error // Still in the table and still selected
}

// Partial reports whether some but not all deletes failed.
func (r DeleteResult) Partial() bool {
	return len(r.Failed) > 0 && len(r.Removed) > 0
}
