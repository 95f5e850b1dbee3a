package harness

// TraceEvent records one executed dispatch: the reaction that ran and
// the field change that raised its guard. Events appear in execution
// order, which the executor guarantees equals submission order. Seq
// numbers are deliberately omitted: ordering is the contract, the
// concrete stamps are not.
type TraceEvent struct {
	Reaction string `json:"reaction"`
	Instance string `json:"instance"`
	Field    string `json:"field"`
	Old      any    `json:"old"`
	New      any    `json:"new"`
}

// Result holds a scenario execution's trace, final field values, and
// any failures.
type Result struct {
	Scenario string
	Machine  string

	// Trace lists executed dispatches in execution order.
	Trace []TraceEvent

	// Final maps exposed field names to their values after the
	// executor drained.
	Final map[string]any

	// Errors collects assertion failures and reaction panics.
	Errors []string
}

// NewResult creates an empty result for a scenario.
func NewResult(scenario, machine string) *Result {
	return &Result{
		Scenario: scenario,
		Machine:  machine,
		Final:    map[string]any{},
	}
}

// AddError records a failure.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Passed reports whether the scenario completed without failures.
func (r *Result) Passed() bool {
	return len(r.Errors) == 0
}
