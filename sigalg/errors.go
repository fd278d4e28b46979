package sigalg

import "errors"

// ErrKind is a stable category for programmatic error handling.
//
// These categories are intended to remain stable across versions.
// Callers should branch on ErrKind/RuleID rather than matching error
// strings.
//
// NOTE: Error() strings are intentionally kept human-readable and may
// evolve. Use errors.As to extract *Error for structured handling.
type ErrKind string

const (
	KindRegistry ErrKind = "Registry"
	KindKey      ErrKind = "Key"
	KindBackend  ErrKind = "Backend"
)

// Error is the library's structured error type for the algorithm layer.
//
// RuleID is a stable identifier (e.g., SIGIL-REG-001, SIGIL-KEY-101)
// that names the violated contract.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    ErrKind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError constructs a structured error.
func NewError(kind ErrKind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// WrapError constructs a structured error with a cause.
func WrapError(kind ErrKind, ruleID, msg string, cause error) error {
	if cause == nil {
		return NewError(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given kind.
func IsKind(err error, kind ErrKind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if
// unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
