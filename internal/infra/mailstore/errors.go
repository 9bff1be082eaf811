package mailstore

import (
	"errors"
	"fmt"
)

// Kind classifies provider failures so the orchestrator's retry policy
// never inspects error strings.
type Kind int

const (
	// KindUnknown: unclassified failure; treated as retryable.
	KindUnknown Kind = iota
	// KindRateLimited: throttling; retry with backoff.
	KindRateLimited
	// KindUnavailable: transient transport/server failure; retryable.
	KindUnavailable
	// KindNotFound: the message is gone; skip, never retry.
	KindNotFound
	// KindPermanent: the request can never succeed; record and move on.
	KindPermanent
)

func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	case KindNotFound:
		return "not_found"
	case KindPermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Error is a classified provider failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a classification.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the classification from an error chain. Unwrapped
// errors read as KindUnknown.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// Retryable reports whether the failure class is worth retrying with
// backoff on the same provider.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindUnavailable, KindUnknown:
		return true
	default:
		return false
	}
}
