package executor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// State represents the state of a circuit breaker.
type State int32

const (
	// StateClosed allows rewrite tasks to execute normally.
	StateClosed State = iota
	// StateOpen rejects rewrite tasks outright.
	StateOpen
	// StateHalfOpen allows a limited number of probe tasks through.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker guards the rewrite task executor against a backend
// (disk, network-attached storage) that has started failing every
// write. It is consulted once per task, not once per entry, since a
// task is the unit of atomicity in the rewrite contract.
type CircuitBreaker struct {
	lastFailureTime     time.Time
	lastOpenedAt        time.Time
	onStateChange       func(from, to State)
	name                string
	resetTimeout        time.Duration
	totalSuccesses      int64
	totalFailures       int64
	totalCalls          int64
	mu                  sync.RWMutex
	halfOpenMaxCalls    int32
	halfOpenCalls       int32
	successes           int32
	failures            int32
	state               int32
	consecutiveFailures int32
	maxFailures         int32
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	OnStateChange    func(from, to State)
	Name             string
	ResetTimeout     time.Duration
	MaxFailures      int32
	HalfOpenMaxCalls int32
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 60 * time.Second
	}
	if config.HalfOpenMaxCalls <= 0 {
		config.HalfOpenMaxCalls = 1
	}

	return &CircuitBreaker{
		name:             config.Name,
		maxFailures:      config.MaxFailures,
		resetTimeout:     config.ResetTimeout,
		halfOpenMaxCalls: config.HalfOpenMaxCalls,
		onStateChange:    config.OnStateChange,
		state:            int32(StateClosed),
	}
}

// Execute runs fn through the circuit breaker. Only errors for which
// countsAsFailure(err) is true move the breaker towards StateOpen; a
// fatal, non-transient error (CorruptSegment) is still returned to the
// caller but does not count against the breaker, since tripping it
// would needlessly block unrelated tasks that would have succeeded.
func (cb *CircuitBreaker) Execute(fn func() error, countsAsFailure func(error) bool) error {
	if !cb.canExecute() {
		return fmt.Errorf("circuit breaker '%s' is open", cb.name)
	}

	atomic.AddInt64(&cb.totalCalls, 1)

	err := fn()

	if err != nil && countsAsFailure(err) {
		cb.recordFailure()
	} else {
		cb.recordSuccess()
	}

	return err
}

func (cb *CircuitBreaker) canExecute() bool {
	state := State(atomic.LoadInt32(&cb.state))

	switch state {
	case StateClosed:
		return true

	case StateOpen:
		cb.mu.RLock()
		shouldTransition := time.Since(cb.lastFailureTime) > cb.resetTimeout
		cb.mu.RUnlock()

		if shouldTransition {
			cb.transitionTo(StateHalfOpen)
			return true
		}
		return false

	case StateHalfOpen:
		calls := atomic.AddInt32(&cb.halfOpenCalls, 1)
		return calls <= cb.halfOpenMaxCalls

	default:
		return false
	}
}

func (cb *CircuitBreaker) recordFailure() {
	atomic.AddInt64(&cb.totalFailures, 1)
	failures := atomic.AddInt32(&cb.failures, 1)
	atomic.AddInt32(&cb.consecutiveFailures, 1)

	cb.mu.Lock()
	cb.lastFailureTime = time.Now()
	cb.mu.Unlock()

	state := State(atomic.LoadInt32(&cb.state))

	switch state {
	case StateClosed:
		if failures >= cb.maxFailures {
			cb.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		cb.transitionTo(StateOpen)
	}
}

func (cb *CircuitBreaker) recordSuccess() {
	atomic.AddInt64(&cb.totalSuccesses, 1)
	atomic.StoreInt32(&cb.consecutiveFailures, 0)

	state := State(atomic.LoadInt32(&cb.state))

	switch state {
	case StateHalfOpen:
		successes := atomic.AddInt32(&cb.successes, 1)
		if successes >= cb.halfOpenMaxCalls {
			cb.transitionTo(StateClosed)
		}
	case StateClosed:
		atomic.StoreInt32(&cb.failures, 0)
	}
}

func (cb *CircuitBreaker) transitionTo(newState State) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := State(atomic.LoadInt32(&cb.state))
	if oldState == newState {
		return
	}

	atomic.StoreInt32(&cb.state, int32(newState))

	switch newState {
	case StateClosed, StateHalfOpen:
		atomic.StoreInt32(&cb.failures, 0)
		atomic.StoreInt32(&cb.successes, 0)
		atomic.StoreInt32(&cb.halfOpenCalls, 0)
	case StateOpen:
		cb.lastOpenedAt = time.Now()
		atomic.StoreInt32(&cb.successes, 0)
		atomic.StoreInt32(&cb.halfOpenCalls, 0)
	}

	if cb.onStateChange != nil {
		cb.onStateChange(oldState, newState)
	}
}

// GetState returns the current circuit breaker state.
func (cb *CircuitBreaker) GetState() State {
	return State(atomic.LoadInt32(&cb.state))
}

// Reset forces the breaker back to StateClosed, clearing all counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	atomic.StoreInt32(&cb.state, int32(StateClosed))
	atomic.StoreInt32(&cb.failures, 0)
	atomic.StoreInt32(&cb.successes, 0)
	atomic.StoreInt32(&cb.halfOpenCalls, 0)
	atomic.StoreInt32(&cb.consecutiveFailures, 0)
}
