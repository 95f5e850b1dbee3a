package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunGateScenario(t *testing.T) {
	result, err := Run(&Scenario{
		Name:       "gate_inline",
		Machine:    "gate",
		InstanceID: "gate-1",
		Start:      true,
		Steps: []Step{
			{Set: &SetStep{Field: "a", Value: 1}},
			{Set: &SetStep{Field: "b", Value: 2}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Reaction: "gate.open", Count: 1},
			{Type: AssertFieldEquals, Field: "opens", Value: 1},
		},
	})
	require.NoError(t, err)

	assert.True(t, result.Passed(), "errors: %v", result.Errors)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, "gate.open", result.Trace[0].Reaction)
	assert.Equal(t, "gate-1", result.Trace[0].Instance)
	assert.Equal(t, "b", result.Trace[0].Field)
	assert.Equal(t, map[string]any{"a": 1, "b": 2, "opens": 1}, result.Final)
}

func TestRunDefaultsInstanceID(t *testing.T) {
	result, err := Run(&Scenario{
		Name:    "gate_default_id",
		Machine: "gate",
		Start:   true,
		Steps: []Step{
			{Set: &SetStep{Field: "a", Value: 1}},
			{Set: &SetStep{Field: "b", Value: 2}},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Trace, 1)
	assert.Equal(t, DefaultInstanceID, result.Trace[0].Instance)
}

func TestRunSelfStoppingMachine(t *testing.T) {
	result, err := Run(&Scenario{
		Name:    "counter_inline",
		Machine: "counter",
		Params:  map[string]any{"count_to": 3},
		Start:   true,
		Assertions: []Assertion{
			{Type: AssertTraceCount, Reaction: "counter.step", Count: 3},
			{Type: AssertFieldEquals, Field: "count", Value: 3},
			{Type: AssertFieldEquals, Field: "done", Value: true},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Passed(), "errors: %v", result.Errors)
}

func TestRunUnknownMachine(t *testing.T) {
	_, err := Run(&Scenario{Name: "x", Machine: "no-such-machine"})
	assert.ErrorContains(t, err, `unknown machine "no-such-machine"`)
}

func TestRunUnknownFieldInStep(t *testing.T) {
	_, err := Run(&Scenario{
		Name:    "x",
		Machine: "gate",
		Steps:   []Step{{Set: &SetStep{Field: "bogus", Value: 1}}},
	})
	assert.ErrorContains(t, err, "step 0")
}

func TestRunFailedAssertionsPopulateErrors(t *testing.T) {
	result, err := Run(&Scenario{
		Name:    "gate_wrong_expectation",
		Machine: "gate",
		Start:   true,
		Steps: []Step{
			{Set: &SetStep{Field: "a", Value: 1}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceContains, Reaction: "gate.open"},
		},
	})
	require.NoError(t, err)
	assert.False(t, result.Passed())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "gate.open")
}

func TestRunStopStepHaltsExecution(t *testing.T) {
	result, err := Run(&Scenario{
		Name:       "gate_stopped_early",
		Machine:    "gate",
		InstanceID: "gate-1",
		Start:      true,
		Steps: []Step{
			{Stop: true},
			// With the executor stopped, edges are detected but the
			// dispatch is rejected; the reaction never runs.
			{Set: &SetStep{Field: "a", Value: 1}},
			{Set: &SetStep{Field: "b", Value: 2}},
		},
		Assertions: []Assertion{
			{Type: AssertTraceCount, Reaction: "gate.open", Count: 0},
			{Type: AssertFieldEquals, Field: "opens", Value: 0},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Passed(), "errors: %v", result.Errors)
}
