package errors

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Submission pipeline outcomes. The first three are expected, user-facing results.
var (
	// ErrCaptchaFailed covers a low score, a rejected token and an unreachable verifier.
	ErrCaptchaFailed = errors.New("captcha verification failed")

	// ErrRateLimited means the submitter already used their window.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidInput indicates invalid input data
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable marks a transport or provider-side failure.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrInternal indicates an internal server error
	ErrInternal = errors.New("internal error")
)

// ValidationError names the offending field and a message safe to show the submitter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// RateLimitError carries how long the submitter has to wait.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// RetryAfterSeconds rounds the wait up to whole seconds.
func (e *RateLimitError) RetryAfterSeconds() int {
	return int(math.Ceil(e.RetryAfter.Seconds()))
}

// InvalidInputError creates an invalid input error with context
func InvalidInputError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ProviderError wraps a failed call to an external provider.
func ProviderError(provider string, err error) error {
	return fmt.Errorf("%s: %w: %w", provider, ErrProviderUnavailable, err)
}

// InternalError creates an internal error with context
func InternalError(msg string) error {
	return fmt.Errorf("%s: %w", msg, ErrInternal)
}

// Is checks if an error matches a target error (works with wrapped errors)
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target any) bool {
	return errors.As(err, target)
}
