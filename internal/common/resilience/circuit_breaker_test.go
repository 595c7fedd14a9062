package resilience

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "github.com/AlibekovAA/rhythmix/backend/internal/common/errors"
)

type fakeNow struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeNow) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeNow) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func newTestBreaker(threshold int32, timeout time.Duration) (*CircuitBreaker, *fakeNow) {
	now := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Threshold:  threshold,
		Timeout:    timeout,
		ResetAfter: 5 * time.Second,
		Name:       "test_breaker",
		Now:        now.Now,
	})
	return cb, now
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb, _ := newTestBreaker(2, 0)
	failure := errors.New("boom")

	for i := 0; i < 2; i++ {
		err := cb.Call(context.Background(), func(context.Context) error { return failure })
		require.ErrorIs(t, err, failure)
	}

	called := false
	err := cb.Call(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, commonerrors.ErrCircuitOpen)
	assert.False(t, called)
	assert.True(t, cb.IsOpen())
}

func TestCircuitBreaker_ClosesAfterResetWindow(t *testing.T) {
	cb, now := newTestBreaker(1, 0)

	_ = cb.Call(context.Background(), func(context.Context) error { return errors.New("boom") })
	require.True(t, cb.IsOpen())

	now.Advance(6 * time.Second)
	assert.False(t, cb.IsOpen())
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.NoError(t, cb.Call(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_FailedTrialReopens(t *testing.T) {
	cb, now := newTestBreaker(3, 0)
	failure := errors.New("boom")

	for i := 0; i < 3; i++ {
		_ = cb.Call(context.Background(), func(context.Context) error { return failure })
	}
	require.Equal(t, StateOpen, cb.State())

	now.Advance(6 * time.Second)
	err := cb.Call(context.Background(), func(context.Context) error { return failure })
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, StateOpen, cb.State(), "one failed trial call is enough to re-open")

	now.Advance(time.Second)
	assert.ErrorIs(t, cb.Call(context.Background(), func(context.Context) error { return nil }), commonerrors.ErrCircuitOpen)
}

func TestCircuitBreaker_HalfOpenAdmitsSingleTrial(t *testing.T) {
	cb, now := newTestBreaker(1, 0)
	_ = cb.Call(context.Background(), func(context.Context) error { return errors.New("boom") })
	now.Advance(6 * time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Call(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	err := cb.Call(context.Background(), func(context.Context) error {
		t.Error("second call must not run while the trial call is in flight")
		return nil
	})
	assert.ErrorIs(t, err, commonerrors.ErrCircuitOpen)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(2, 0)
	failure := errors.New("boom")

	_ = cb.Call(context.Background(), func(context.Context) error { return failure })
	require.NoError(t, cb.Call(context.Background(), func(context.Context) error { return nil }))
	_ = cb.Call(context.Background(), func(context.Context) error { return failure })

	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_ZeroThresholdNeverOpens(t *testing.T) {
	cb, _ := newTestBreaker(0, 0)

	for i := 0; i < 10; i++ {
		_ = cb.Call(context.Background(), func(context.Context) error { return errors.New("boom") })
	}
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_AppliesTimeout(t *testing.T) {
	cb, _ := newTestBreaker(5, 20*time.Millisecond)

	err := cb.Call(context.Background(), func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(20*time.Millisecond), deadline, 20*time.Millisecond)
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCircuitBreaker_ExcludedErrorsAreNeutral(t *testing.T) {
	ignored := errors.New("caller went away")
	now := &fakeNow{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Threshold:  2,
		ResetAfter: 5 * time.Second,
		Now:        now.Now,
		Exclude:    func(err error) bool { return errors.Is(err, ignored) },
	})

	for i := 0; i < 5; i++ {
		err := cb.Call(context.Background(), func(context.Context) error { return ignored })
		require.ErrorIs(t, err, ignored)
	}
	assert.Equal(t, StateClosed, cb.State())

	failure := errors.New("boom")
	_ = cb.Call(context.Background(), func(context.Context) error { return failure })
	_ = cb.Call(context.Background(), func(context.Context) error { return ignored })
	_ = cb.Call(context.Background(), func(context.Context) error { return failure })
	require.Equal(t, StateOpen, cb.State(), "excluded errors must not reset the failure count")

	now.Advance(6 * time.Second)
	_ = cb.Call(context.Background(), func(context.Context) error { return ignored })
	assert.Equal(t, StateHalfOpen, cb.State(), "an excluded trial call neither closes nor re-opens")
	assert.NoError(t, cb.Call(context.Background(), func(context.Context) error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}
