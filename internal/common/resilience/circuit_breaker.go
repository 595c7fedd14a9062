package resilience

import (
	"context"
	"sync"
	"time"

	commonerrors "github.com/AlibekovAA/rhythmix/backend/internal/common/errors"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/logger"
	"github.com/AlibekovAA/rhythmix/backend/internal/observability/metrics"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

type CircuitBreakerConfig struct {
	// Threshold is the number of consecutive failures that opens the
	// circuit. Zero or less disables the breaker.
	Threshold  int32
	Timeout    time.Duration
	ResetAfter time.Duration
	Name       string
	Logger     *logger.Logger
	// Now overrides the time source; defaults to time.Now.
	Now func() time.Time
	// Exclude marks errors that say nothing about the protected dependency.
	// They are returned to the caller but leave the breaker state untouched.
	Exclude func(error) bool
}

// CircuitBreaker opens after Threshold consecutive failures. Once ResetAfter
// has elapsed a single trial call is let through: success closes the
// circuit, failure re-opens it for another ResetAfter.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig

	mu       sync.Mutex
	failures int32
	openedAt time.Time
	open     bool
	trialing bool
}

func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.Now == nil {
		config.Now = time.Now
	}
	cb := &CircuitBreaker{cfg: config}
	cb.publish(StateClosed)
	return cb
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

func (cb *CircuitBreaker) IsOpen() bool {
	return cb.State() == StateOpen
}

func (cb *CircuitBreaker) stateLocked() State {
	if !cb.open {
		return StateClosed
	}
	if cb.cfg.Now().Sub(cb.openedAt) >= cb.cfg.ResetAfter {
		return StateHalfOpen
	}
	return StateOpen
}

// Call runs fn under the breaker's timeout. Any error returned by fn counts as
// a failure, so callers translate expected outcomes (not found, conflict)
// into a nil return before handing control back.
func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	trial, err := cb.admit()
	if err != nil {
		return err
	}

	callCtx := ctx
	if cb.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cb.cfg.Timeout)
		defer cancel()
	}

	err = fn(callCtx)
	cb.record(err, trial)
	return err
}

func (cb *CircuitBreaker) admit() (trial bool, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.stateLocked() {
	case StateClosed:
		return false, nil
	case StateHalfOpen:
		if !cb.trialing {
			cb.trialing = true
			cb.publish(StateHalfOpen)
			return true, nil
		}
	}

	if cb.cfg.Logger != nil {
		cb.cfg.Logger.Warnf("circuit breaker [%s]: circuit is open, rejecting request", cb.cfg.Name)
	}
	return false, commonerrors.ErrCircuitOpen
}

func (cb *CircuitBreaker) record(err error, trial bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if trial {
		cb.trialing = false
	}

	if err != nil && cb.cfg.Exclude != nil && cb.cfg.Exclude(err) {
		return
	}

	if err == nil {
		if cb.open && cb.cfg.Logger != nil {
			cb.cfg.Logger.Infof("circuit breaker [%s]: closed", cb.cfg.Name)
		}
		cb.failures = 0
		cb.open = false
		cb.publish(StateClosed)
		return
	}

	cb.failures++
	if cb.cfg.Name != "" {
		metrics.CircuitBreakerFailures.WithLabelValues(cb.cfg.Name).Inc()
	}

	if cb.cfg.Threshold <= 0 {
		return
	}
	if trial || cb.failures >= cb.cfg.Threshold {
		if !cb.open && cb.cfg.Logger != nil {
			cb.cfg.Logger.Warnf("circuit breaker [%s]: opened after %d failures: %v", cb.cfg.Name, cb.failures, err)
		}
		cb.open = true
		cb.openedAt = cb.cfg.Now()
		cb.publish(StateOpen)
	}
}

func (cb *CircuitBreaker) publish(s State) {
	if cb.cfg.Name != "" {
		metrics.CircuitBreakerState.WithLabelValues(cb.cfg.Name).Set(float64(s))
	}
}
