//go:build torture
// +build torture

package torture

import (
	"testing"

	"github.com/raftlog/compactor/torture/scenarios"
)

func TestTorture(t *testing.T) {
	iterations := 1000
	if testing.Short() {
		iterations = 10
	}

	suite := NewSuite(Config{Iterations: iterations, StopOnFailure: false})
	suite.RegisterScenario(scenarios.NewCleanRewrite())
	suite.RegisterScenario(scenarios.NewCorruption())
	suite.RegisterScenario(scenarios.NewDiskFull())
	suite.RegisterScenario(scenarios.NewBreakerTrips())

	report, err := suite.Run()
	if err != nil {
		t.Fatalf("torture suite error: %v", err)
	}
	report.PrintReport()

	if !report.Success {
		t.Fatal("torture suite reported one or more failing scenarios")
	}
}
