package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the serialized form compared against golden files.
// Map keys and struct fields marshal in a fixed order, so byte-level
// comparison is stable across runs.
type TraceSnapshot struct {
	Scenario string         `json:"scenario"`
	Machine  string         `json:"machine"`
	Trace    []TraceEvent   `json:"trace"`
	Final    map[string]any `json:"final"`
}

// RunWithGolden executes a scenario and compares its trace snapshot
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		t.Fatalf("scenario run failed: %v", err)
	}
	AssertGolden(t, result)
	return result
}

// AssertGolden compares an already-produced result against the golden
// file named after its scenario.
func AssertGolden(t *testing.T, result *Result) {
	t.Helper()

	snapshot := TraceSnapshot{
		Scenario: result.Scenario,
		Machine:  result.Machine,
		Trace:    result.Trace,
		Final:    result.Final,
	}
	data, err := json.MarshalIndent(&snapshot, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal trace snapshot: %v", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, result.Scenario, data)
}
