package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream down")

func fail() (string, error) { return "", errUpstream }

func TestExecute_ReturnsTypedResult(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig("test-ok"))

	id, err := Execute(cb, func() (string, error) { return "msg_1", nil })

	require.NoError(t, err)
	assert.Equal(t, "msg_1", id)
}

func TestExecute_OpensAfterRepeatedFailures(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig("test-trip"))

	for i := 0; i < 3; i++ {
		_, err := Execute(cb, fail)
		assert.ErrorIs(t, err, errUpstream)
	}
	assert.True(t, IsCircuitOpen(cb))

	calls := 0
	_, err := Execute(cb, func() (string, error) {
		calls++
		return "", nil
	})

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Contains(t, err.Error(), "circuit breaker 'test-trip' is open")
	assert.Zero(t, calls)
}

func TestExecute_CanceledContextDoesNotTrip(t *testing.T) {
	cb := NewCircuitBreaker(DefaultConfig("test-cancel"))

	for i := 0; i < 5; i++ {
		_, err := Execute(cb, func() (string, error) { return "", context.Canceled })
		assert.ErrorIs(t, err, context.Canceled)
	}

	assert.False(t, IsCircuitOpen(cb))
}

func TestExecute_HalfOpenRecovers(t *testing.T) {
	cfg := DefaultConfig("test-recover")
	cfg.Timeout = 10 * time.Millisecond
	cb := NewCircuitBreaker(cfg)

	for i := 0; i < 3; i++ {
		_, _ = Execute(cb, fail) //nolint:errcheck
	}
	require.True(t, IsCircuitOpen(cb))

	assert.Eventually(t, func() bool {
		return cb.State() == gobreaker.StateHalfOpen
	}, time.Second, 5*time.Millisecond)

	for i := 0; i < int(cfg.MaxRequests); i++ {
		_, err := Execute(cb, func() (string, error) { return "ok", nil })
		require.NoError(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, errUpstream, FormatError("x", errUpstream))
	assert.Contains(t, FormatError("x", gobreaker.ErrTooManyRequests).Error(), "too many requests")
}
