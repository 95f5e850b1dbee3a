package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance test: a machine to build, steps to
// drive it with, and assertions over the resulting trace and state.
type Scenario struct {
	// Name uniquely identifies the scenario; golden files are named
	// after it.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description,omitempty"`

	// Machine is the registry name of the machine under test.
	Machine string `yaml:"machine"`

	// InstanceID fixes the machine's primary instance identity. Empty
	// defaults to "test-instance" so traces stay deterministic.
	InstanceID string `yaml:"instance_id,omitempty"`

	// Params are passed to the machine's Build.
	Params map[string]any `yaml:"params,omitempty"`

	// Start runs the initial evaluation pass before the steps.
	Start bool `yaml:"start,omitempty"`

	// Steps drive the machine in order.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions validate the trace and final field values.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one scenario action. Exactly one directive must be set.
type Step struct {
	// Set writes a field value; the harness settles the executor
	// afterwards.
	Set *SetStep `yaml:"set,omitempty"`

	// Settle waits for the executor to drain.
	Settle bool `yaml:"settle,omitempty"`

	// Stop requests executor shutdown; queued reactions still drain.
	Stop bool `yaml:"stop,omitempty"`
}

// SetStep names a field and the value to write.
type SetStep struct {
	Field string `yaml:"field"`
	Value any    `yaml:"value"`
}

// Assertion validates the trace or a final field value.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Reaction is the qualified reaction name (trace_contains,
	// trace_count).
	Reaction string `yaml:"reaction,omitempty"`

	// Reactions is the expected relative order (trace_order).
	Reactions []string `yaml:"reactions,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Field and Value name a final field value (field_equals).
	Field string `yaml:"field,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFieldEquals   = "field_equals"
)

// DefaultInstanceID is used when a scenario does not pin one.
const DefaultInstanceID = "test-instance"

// LoadScenario reads and validates a scenario from a YAML file.
// Decoding is strict: unknown keys fail, catching typos in scenario
// files instead of silently ignoring them.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a scenario from YAML bytes.
func ParseScenario(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks structural requirements the YAML schema cannot.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario missing required field: name")
	}
	if s.Machine == "" {
		return fmt.Errorf("scenario %q missing required field: machine", s.Name)
	}
	for i, step := range s.Steps {
		n := 0
		if step.Set != nil {
			n++
			if step.Set.Field == "" {
				return fmt.Errorf("scenario %q step %d: set requires a field", s.Name, i)
			}
		}
		if step.Settle {
			n++
		}
		if step.Stop {
			n++
		}
		if n != 1 {
			return fmt.Errorf("scenario %q step %d: exactly one of set/settle/stop required", s.Name, i)
		}
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertTraceContains, AssertTraceCount:
			if a.Reaction == "" {
				return fmt.Errorf("scenario %q assertion %d: %s requires a reaction", s.Name, i, a.Type)
			}
		case AssertTraceOrder:
			if len(a.Reactions) == 0 {
				return fmt.Errorf("scenario %q assertion %d: trace_order requires reactions", s.Name, i)
			}
		case AssertFieldEquals:
			if a.Field == "" {
				return fmt.Errorf("scenario %q assertion %d: field_equals requires a field", s.Name, i)
			}
		default:
			return fmt.Errorf("scenario %q assertion %d: unknown type %q", s.Name, i, a.Type)
		}
	}
	return nil
}
