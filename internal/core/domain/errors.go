package domain

import (
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or normaliser type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrDecoding indicates raw content could not be decoded as text.
	ErrDecoding = errors.New("decoding failed")

	// ErrProviderUnavailable indicates an AI provider could not be reached
	// after exhausting retries.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrRateLimited indicates the provider rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrDimensionMismatch indicates a vector's dimensions do not match
	// the dimensions the store was created with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// RateLimitError carries the retry-after hint reported by a provider.
// It matches ErrRateLimited under errors.Is.
type RateLimitError struct {
	// RetryAfter is how long the caller should wait before retrying.
	// Zero means the provider gave no hint.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// Is reports whether this error matches ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

