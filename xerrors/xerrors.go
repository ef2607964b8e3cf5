// Package xerrors defines the three error kinds the archive and sheet
// engine use to report failures: NotFound, Invalid and Resource.
package xerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies an error the way callers are expected to handle it.
type Kind int

const (
	// KindNotFound means the requested path/row/subrow/language is
	// absent. Recoverable: the caller can try something else.
	KindNotFound Kind = iota
	// KindInvalid means data read from the archive violates its
	// format. Not retried.
	KindInvalid
	// KindResource means the underlying I/O or capability failed.
	// Not retried.
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInvalid:
		return "invalid"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every exported operation
// in this module.
type Error struct {
	Kind  Kind
	What  string // what was being looked up / read (NotFound), or where in the format (Invalid/Resource)
	Why   string // human-readable reason
	cause error
}

func (e *Error) Error() string {
	if e.Why == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.What)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.What, e.Why)
}

// Unwrap lets errors.Is/errors.As see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// NotFound builds a KindNotFound error for the given "what" (e.g. a row,
// a sheet name, a language code).
func NotFound(what string) error {
	return &Error{Kind: KindNotFound, What: what}
}

// NotFoundf builds a KindNotFound error with a formatted "what".
func NotFoundf(format string, args ...interface{}) error {
	return &Error{Kind: KindNotFound, What: fmt.Sprintf(format, args...)}
}

// Invalid builds a KindInvalid error citing where the format was
// violated and why.
func Invalid(where, why string) error {
	return &Error{Kind: KindInvalid, What: where, Why: why}
}

// Invalidf builds a KindInvalid error with a formatted reason.
func Invalidf(where, format string, args ...interface{}) error {
	return &Error{Kind: KindInvalid, What: where, Why: fmt.Sprintf(format, args...)}
}

// Resource wraps an underlying I/O or capability failure, preserving it
// as the error's cause via github.com/pkg/errors so callers retain a
// stack trace when the failure originates deep in a decoder.
func Resource(detail string, cause error) error {
	return &Error{Kind: KindResource, What: detail, cause: errors.WithStack(cause)}
}

// Resourcef builds a KindResource error with a formatted detail and no
// underlying cause, for cases where the failure has no wrapped error
// (e.g. a short read detected after the fact).
func Resourcef(format string, args ...interface{}) error {
	return &Error{Kind: KindResource, What: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool { return Is(err, KindNotFound) }

// IsInvalid reports whether err is a KindInvalid error.
func IsInvalid(err error) bool { return Is(err, KindInvalid) }

// IsResource reports whether err is a KindResource error.
func IsResource(err error) bool { return Is(err, KindResource) }
