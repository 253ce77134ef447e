// Package torture drives the rewrite task executor through its fault
// taxonomy (transient I/O and space failures, fatal corruption) across
// repeated iterations.
package torture

import (
	"sync"
	"time"

	"github.com/raftlog/compactor/compaction/executor"
	"github.com/raftlog/compactor/internal/logger"
)

// Scenario represents one fault-injection scenario against a rewrite
// task executor.
type Scenario interface {
	Name() string
	// Execute builds a task representative of this scenario and runs it
	// through exec, returning the error it produced (nil on success).
	Execute(exec *executor.Executor) error
	// Wanted reports whether Execute's error matches what the scenario
	// expects — success for a clean rewrite, a specific recoverable or
	// fatal error for a fault scenario.
	Wanted(err error) bool
}

// Config configures a torture Suite run.
type Config struct {
	Iterations    int
	StopOnFailure bool
}

// Suite orchestrates torture testing of the compaction executor.
type Suite struct {
	scenarios []Scenario
	config    Config
	mu        sync.Mutex
}

// NewSuite creates a new torture test suite.
func NewSuite(cfg Config) *Suite {
	if cfg.Iterations <= 0 {
		cfg.Iterations = 1
	}
	return &Suite{config: cfg}
}

// RegisterScenario adds a scenario to the suite.
func (s *Suite) RegisterScenario(scenario Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios = append(s.scenarios, scenario)
}

// ScenarioResult reports pass/fail counts for one scenario across every
// iteration it ran.
type ScenarioResult struct {
	Passed   int
	Failed   int
	Errors   []error
	Duration time.Duration
}

// Report is the outcome of a full Suite.Run.
type Report struct {
	StartTime time.Time
	EndTime   time.Time
	Scenarios map[string]*ScenarioResult
	Success   bool
}

// Run executes every registered scenario for Config.Iterations
// iterations against a fresh Executor each time, so a tripped circuit
// breaker in one iteration never contaminates the next.
func (s *Suite) Run() (*Report, error) {
	report := &Report{StartTime: time.Now(), Scenarios: make(map[string]*ScenarioResult)}
	for _, scenario := range s.scenarios {
		report.Scenarios[scenario.Name()] = &ScenarioResult{}
	}

	for i := 0; i < s.config.Iterations; i++ {
		for _, scenario := range s.scenarios {
			result := report.Scenarios[scenario.Name()]
			start := time.Now()

			exec := &executor.Executor{Breaker: executor.NewCircuitBreaker(executor.CircuitBreakerConfig{})}
			err := scenario.Execute(exec)

			if scenario.Wanted(err) {
				result.Passed++
				result.Duration += time.Since(start)
			} else {
				result.Failed++
				result.Errors = append(result.Errors, err)
				if s.config.StopOnFailure {
					report.EndTime = time.Now()
					report.Success = false
					return report, err
				}
			}
		}
	}

	report.EndTime = time.Now()
	report.Success = true
	for _, result := range report.Scenarios {
		if result.Failed > 0 {
			report.Success = false
		}
	}
	return report, nil
}

// PrintReport logs a summary of the suite's results.
func (r *Report) PrintReport() {
	logger.Log.Info("=== COMPACTION TORTURE REPORT ===")
	logger.Log.Info("Duration: {duration}", r.EndTime.Sub(r.StartTime))
	for name, result := range r.Scenarios {
		logger.Log.Info("Scenario {name}: {passed} passed, {failed} failed", name, result.Passed, result.Failed)
	}
	if r.Success {
		logger.Log.Info("ALL SCENARIOS PASSED")
	} else {
		logger.Log.Error("SOME SCENARIOS FAILED")
	}
}
