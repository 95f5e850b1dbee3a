// Package harness provides scenario-driven conformance testing for
// the trig reaction engine.
//
// The harness builds a registered machine, drives its fields through
// the steps of a YAML scenario, captures every executed dispatch as a
// trace, and validates assertions against the trace and final field
// values. With fixed instance IDs and the executor's logical ordering
// the trace is fully deterministic, so scenarios can also be compared
// against golden files.
//
// # Scenario Format
//
//	name: scenario_name
//	description: "What this scenario validates"
//	machine: gate
//	instance_id: gate-1        # optional, defaults to test-instance
//	params: { count_to: 3 }    # optional machine parameters
//	start: true                # run the initial evaluation pass
//	steps:
//	  - set: {field: a, value: 1}
//	  - settle: true
//	  - stop: true
//	assertions:
//	  - type: trace_contains
//	    reaction: gate.open
//	  - type: trace_order
//	    reactions: [gate.open]
//	  - type: trace_count
//	    reaction: gate.open
//	    count: 1
//	  - type: field_equals
//	    field: opens
//	    value: 1
//
// Every set step settles the executor before the next step runs, so
// steps never race in-flight reactions and traces stay reproducible.
//
// # Assertion Types
//
//   - trace_contains: a reaction appears in the trace at least once
//   - trace_order: reactions appear in the given relative order
//   - trace_count: a reaction appears exactly N times
//   - field_equals: a final field value matches
package harness
