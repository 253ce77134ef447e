package executor

import (
	"errors"
	"testing"
	"time"
)

func alwaysFailure(error) bool { return true }
func neverFailure(error) bool  { return false }

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 3, ResetTimeout: time.Hour})
	failing := errors.New("boom")

	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return failing }, alwaysFailure)
	}

	if cb.GetState() != StateOpen {
		t.Fatalf("GetState() = %v, want StateOpen after 3 failures", cb.GetState())
	}

	err := cb.Execute(func() error { return nil }, alwaysFailure)
	if err == nil {
		t.Error("Execute() on an open breaker should reject the call")
	}
}

func TestCircuitBreaker_NonCountingFailureNeverTrips(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour})
	fatal := errors.New("corrupt")

	for i := 0; i < 5; i++ {
		err := cb.Execute(func() error { return fatal }, neverFailure)
		if !errors.Is(err, fatal) {
			t.Fatalf("Execute() should still surface the error, got %v", err)
		}
	}

	if cb.GetState() != StateClosed {
		t.Errorf("GetState() = %v, want StateClosed: non-counting errors must not trip the breaker", cb.GetState())
	}
}

func TestCircuitBreaker_HalfOpenRecoversOnSuccess(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Millisecond, HalfOpenMaxCalls: 1})

	_ = cb.Execute(func() error { return errors.New("boom") }, alwaysFailure)
	if cb.GetState() != StateOpen {
		t.Fatalf("GetState() = %v, want StateOpen", cb.GetState())
	}

	time.Sleep(5 * time.Millisecond)

	err := cb.Execute(func() error { return nil }, alwaysFailure)
	if err != nil {
		t.Fatalf("Execute() in half-open with a successful probe should succeed, got %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Errorf("GetState() = %v, want StateClosed after a successful half-open probe", cb.GetState())
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Hour})
	_ = cb.Execute(func() error { return errors.New("boom") }, alwaysFailure)
	if cb.GetState() != StateOpen {
		t.Fatalf("GetState() = %v, want StateOpen", cb.GetState())
	}

	cb.Reset()
	if cb.GetState() != StateClosed {
		t.Errorf("GetState() = %v, want StateClosed after Reset", cb.GetState())
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half-open",
	}
	for state, want := range tests {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
