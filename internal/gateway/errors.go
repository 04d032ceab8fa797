package gateway

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/nutrition/internal/schema"
)

// Failure kinds. Every error returned by a Gateway matches exactly one of
// these with errors.Is.
var (
	ErrNetwork    = errors.New("network error")
	ErrParse      = errors.New("parse error")
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
)

// Op names a gateway operation.
type Op string

const (
	OpFetchAll Op = "fetch-all"
	OpUpsert   Op = "upsert"
	OpDelete   Op = "delete"
)

// Error is a gateway failure with its operation, kind and cause.
type Error struct {
	Op   Op
	ID   schema.ID // Empty for fetch-all
	Kind error     // One of ErrNetwork, ErrParse, ErrValidation, ErrNotFound
	Err  error     // Underlying cause, may be nil
}

func (e *Error) Error() string {
	target := string(e.Op)
	if e.ID != "" {
		target += " " + string(e.ID)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", target, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", target, e.Kind, e.Err)
}

// Is matches the failure kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op Op, id schema.ID, kind, err error) *Error {
	return &Error{Op: op, ID: id, Kind: kind, Err: err}
}

// KindOf returns the failure kind of err, or nil if err is not a gateway error.
func KindOf(err error) error {
	for _, kind := range []error{ErrNetwork, ErrParse, ErrValidation, ErrNotFound} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// kindLabel is the short metric label for a failure kind.
func kindLabel(err error) string {
	if err == nil {
		return "ok"
	}
	switch KindOf(err) {
	case ErrNetwork:
		return "network"
	case ErrParse:
		return "parse"
	case ErrValidation:
		return "validation"
	case ErrNotFound:
		return "not_found"
	}
	return "error"
}
