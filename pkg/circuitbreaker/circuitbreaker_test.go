package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBackend = errors.New("backend down")

func TestOpensAfterConsecutiveFailures(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Settings{Name: "backend", MaxRequests: 2, Timeout: time.Minute})
	cb.now = func() time.Time { return now }

	fail := func() error { return errBackend }
	calls := 0
	ok := func() error { calls++; return nil }

	assert.ErrorIs(t, cb.Execute(fail), errBackend)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errBackend)
	assert.Equal(t, StateOpen, cb.State())

	assert.ErrorIs(t, cb.Execute(ok), ErrOpen)
	assert.Zero(t, calls)

	now = now.Add(2 * time.Minute)
	assert.NoError(t, cb.Execute(ok))
	assert.Equal(t, 1, calls)
	assert.Equal(t, StateClosed, cb.State())
}

func TestHalfOpenProbeFailureReopens(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(Settings{MaxRequests: 1, Timeout: time.Second})
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errBackend })
	now = now.Add(2 * time.Second)

	assert.ErrorIs(t, cb.Execute(func() error { return errBackend }), errBackend)
	assert.Equal(t, StateOpen, cb.State())
}

func TestSkippedErrorsDoNotTrip(t *testing.T) {
	errMissing := errors.New("not found")
	cb := NewCircuitBreaker(Settings{MaxRequests: 1, Timeout: time.Minute})
	isMissing := func(err error) bool { return errors.Is(err, errMissing) }

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errMissing }, isMissing), errMissing)
	}
	assert.Equal(t, StateClosed, cb.State())
}
