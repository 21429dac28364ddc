package apperror

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide whether to retry,
// fail fast, or surface a user-facing fallback.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidInput marks bad caller input (empty question, malformed request).
	KindInvalidInput
	// KindConfiguration marks missing or invalid deployment config (API keys, DSN).
	// Never retryable.
	KindConfiguration
	// KindTransientUpstream marks network/timeout/rate-limit failures on an
	// upstream API. Safe to retry with backoff.
	KindTransientUpstream
	// KindSchemaMismatch marks a malformed upstream payload, e.g. an embedding
	// whose dimensionality does not match the deployment's.
	KindSchemaMismatch
	// KindGenerationFailed marks an LLM call that could not produce usable content.
	KindGenerationFailed
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindConfiguration:
		return "configuration"
	case KindTransientUpstream:
		return "transient_upstream"
	case KindSchemaMismatch:
		return "schema_mismatch"
	case KindGenerationFailed:
		return "generation_failed"
	default:
		return "unknown"
	}
}

// Error carries a Kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	Op   string // logical operation, e.g. "jina.generate"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a kinded error from a message.
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap attaches a kind and operation to an existing error.
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind from err, or KindUnknown when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err (or anything it wraps) carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether err is safe to retry.
func Retryable(err error) bool {
	return KindOf(err) == KindTransientUpstream
}
