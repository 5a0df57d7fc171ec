package providers

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure classes the orchestration layer
// reacts to. Classification happens once, inside the provider adapter, so the
// retry/fallback logic never has to match on error message text.
type ErrorKind int

const (
	// KindFatal failures recur regardless of retry or model choice.
	KindFatal ErrorKind = iota
	// KindModelMissing means the requested model does not exist for this
	// account; the next candidate is tried with no delay.
	KindModelMissing
	// KindTransient failures (rate limit, overload) are worth retrying with
	// backoff on the same model.
	KindTransient
	// KindAccessDenied means the API key is invalid or lacks permission.
	// Permission errors are account-wide, not model-specific, so no further
	// candidates are attempted.
	KindAccessDenied
)

func (k ErrorKind) String() string {
	switch k {
	case KindModelMissing:
		return "model_missing"
	case KindTransient:
		return "transient"
	case KindAccessDenied:
		return "access_denied"
	default:
		return "fatal"
	}
}

// Error wraps a provider failure with its classification and the model that
// produced it. The underlying error is preserved for diagnostics.
type Error struct {
	Kind  ErrorKind
	Model string
	Err   error
}

func (e *Error) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Model, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified provider error.
func NewError(kind ErrorKind, model string, err error) *Error {
	return &Error{Kind: kind, Model: model, Err: err}
}

// KindOf extracts the classification from an error chain. Unclassified
// errors are fatal.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindFatal
}

// IsTransient reports whether the error is worth retrying on the same model.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}
