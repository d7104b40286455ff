package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestRateLimitError_Is tests matching against ErrRateLimited
func TestRateLimitError_Is(t *testing.T) {
	err := &RateLimitError{RetryAfter: 2 * time.Second}

	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.False(t, errors.Is(err, ErrProviderUnavailable))

	wrapped := fmt.Errorf("embed batch: %w", err)
	assert.True(t, errors.Is(wrapped, ErrRateLimited))
}

// TestRateLimitError_Error tests message formatting
func TestRateLimitError_Error(t *testing.T) {
	withHint := &RateLimitError{RetryAfter: 5 * time.Second}
	assert.Equal(t, "rate limited, retry after 5s", withHint.Error())

	noHint := &RateLimitError{}
	assert.Equal(t, "rate limited", noHint.Error())
}

// TestRateLimitError_As tests retrieving the retry hint from a chain
func TestRateLimitError_As(t *testing.T) {
	wrapped := fmt.Errorf("embed batch: %w", &RateLimitError{RetryAfter: time.Second})

	var rle *RateLimitError
	assert.True(t, errors.As(wrapped, &rle))
	assert.Equal(t, time.Second, rle.RetryAfter)
}
