package core

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies a failed reviewer attempt. The set is closed; every
// retryable failure maps to exactly one of these values.
type FailureKind string

const (
	FailureRateLimited   FailureKind = "rate_limited"
	FailureInputTooLarge FailureKind = "input_too_large"
	FailureProviderError FailureKind = "provider_error"
	FailureLowQuality    FailureKind = "low_quality_output"
	FailureTimedOut      FailureKind = "timed_out"
)

// ReviewError is a classified, retryable reviewer failure.
type ReviewError struct {
	Kind FailureKind
	Err  error
}

func (e *ReviewError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *ReviewError) Unwrap() error { return e.Err }

// NewReviewError wraps err with a failure classification.
func NewReviewError(kind FailureKind, err error) *ReviewError {
	return &ReviewError{Kind: kind, Err: err}
}

// AuthError is an authentication or authorization failure. It is never
// retried and is the only failure that propagates past the pipeline boundary.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return "authentication error: " + e.Message
}

// IsAuthError reports whether err is an authentication failure.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// ClassifyError maps an arbitrary reviewer error to its failure kind.
// Context deadline errors count as timeouts; anything unclassified is
// treated as a provider error so it still consumes a retry attempt.
func ClassifyError(err error) FailureKind {
	var re *ReviewError
	if errors.As(err, &re) {
		return re.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimedOut
	}
	return FailureProviderError
}
