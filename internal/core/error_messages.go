package core

// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. When users see a notice, they can quote the code to
// support staff for faster diagnosis.
//
// Gateway failures are matched by kind first (errors.Is), so the wording
// of the underlying cause never changes the code:
//
//	NET001   - Network: the remote store could not be reached
//	           Action: Check your connection and try again
//	PARSE001 - Parse: the remote store answered with data we could not read
//	           Action: Try again; if it persists, contact support
//	VAL001   - Validation: the item was rejected
//	           Action: Check the highlighted fields and save again
//	NF001    - Not found: the item no longer exists
//	           Action: Refresh the table to see the latest data
//
// Other errors fall back to case-insensitive pattern matching:
//
//	VAL002  - "invalid number"          Invalid number format
//	VAL003  - "required field"          Required field is empty
//	TBL001  - "column not found"        Unknown sort column
//	TBL002  - "invalid page size"       Unsupported page size
//	TBL003  - "row not found"           Row is no longer in the table
//	RATE001 - "too many concurrent"     Too many requests in flight
//	SEC001  - "csrf"                    Form token missing or stale
//	RATE002 - "rate limit"              Too many requests
//	NET002  - "context deadline exceeded", "timeout"
//	NET003  - "context canceled"
//
// Notices raised by the session itself:
//
//	DEL001 - Partial delete: some selected items could not be deleted
//	         Action: The failed items stay selected; try deleting again
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # For Support Staff
//
// When a user reports ERR000, check the application logs for the original
// technical error; every notice is logged with its request and session id.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/nutrition/internal/gateway"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// kindMessages maps gateway failure kinds to user messages.
var kindMessages = []struct {
	kind error
	msg  UserMessage
}{
	{
		kind: gateway.ErrNetwork,
		msg: UserMessage{
			Message: "Unable to reach the nutrition store",
			Action:  "Check your connection and try again",
			Code:    "NET001",
		},
	},
	{
		kind: gateway.ErrParse,
		msg: UserMessage{
			Message: "The nutrition store sent data that could not be read",
			Action:  "Try again; if it persists, contact support",
			Code:    "PARSE001",
		},
	},
	{
		kind: gateway.ErrValidation,
		msg: UserMessage{
			Message: "The item was rejected",
			Action:  "Check the fields and save again",
			Code:    "VAL001",
		},
	},
	{
		kind: gateway.ErrNotFound,
		msg: UserMessage{
			Message: "The item no longer exists",
			Action:  "Refresh the table to see the latest data",
			Code:    "NF001",
		},
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. The first matching pattern wins, so more specific patterns come
// before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Use digits with an optional decimal point, for example 3.7",
			Code:    "VAL002",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Fill in the ID and the dessert name",
			Code:    "VAL003",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Unknown column",
			Action:  "Sort by one of the table headers",
			Code:    "TBL001",
		},
	},
	{
		pattern: "invalid page size",
		msg: UserMessage{
			Message: "Unsupported page size",
			Action:  "Choose one of the listed page sizes",
			Code:    "TBL002",
		},
	},
	{
		pattern: "row not found",
		msg: UserMessage{
			Message: "That row is no longer in the table",
			Action:  "Refresh the table to see the latest data",
			Code:    "TBL003",
		},
	},
	{
		pattern: "too many concurrent",
		msg: UserMessage{
			Message: "The server is busy with other requests",
			Action:  "Please wait a moment and try again",
			Code:    "RATE001",
		},
	},
	{
		pattern: "csrf",
		msg: UserMessage{
			Message: "The form has expired",
			Action:  "Reload the page and try again",
			Code:    "SEC001",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "NET002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "NET002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "NET003",
		},
	},
}

// partialDeleteMessage is raised when some deletes in a batch fail.
var partialDeleteMessage = UserMessage{
	Message: "Some items could not be deleted",
	Action:  "The failed items stay selected; try deleting again",
	Code:    "DEL001",
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Gateway failure kinds are checked first, then known patterns
// (case-insensitive). If nothing matches, ERR000 is returned.
//
// Example:
//
//	err := gw.DeleteOne(ctx, "7") // returns a not-found gateway error
//	msg := MapError(err)
//	// msg.Code == "NF001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, km := range kindMessages {
		if errors.Is(err, km.kind) {
			return km.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return msg.String()
}

// String renders the message as "Message (Code: XXX). Action".
func (m UserMessage) String() string {
	return fmt.Sprintf("%s (Code: %s). %s", m.Message, m.Code, m.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with its user message.
type UserError struct {
	Err error
	Msg UserMessage
}

// NewUserError returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{Err: err, Msg: MapError(err)}
}

func (e *UserError) Error() string { return e.Msg.Message }

func (e *UserError) Unwrap() error { return e.Err }
