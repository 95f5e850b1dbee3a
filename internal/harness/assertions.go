package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails. It carries the
// full trace so the failure message is debuggable on its own.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Trace    []TraceEvent
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s (%s: %v -> %v)\n",
			i+1, event.Reaction, event.Field, event.Old, event.New)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and
// returns the failure messages. All assertions are evaluated even
// after a failure, so one run reports every violation.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertFieldEquals:
			err = assertFieldEquals(result.Final, result.Trace, a)
		default:
			err = fmt.Errorf("unknown assertion type: %q", a.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Reaction == a.Reaction {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("reaction %q in trace", a.Reaction),
		Actual:   "not present",
		Trace:    trace,
	}
}

// assertTraceOrder checks relative order: the named reactions must
// appear in the given sequence, other events may interleave.
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Reactions) && event.Reaction == a.Reactions[next] {
			next++
		}
	}
	if next == len(a.Reactions) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceOrder,
		Expected: fmt.Sprintf("reactions in order %v", a.Reactions),
		Actual:   fmt.Sprintf("matched %d of %d (stuck at %q)", next, len(a.Reactions), a.Reactions[next]),
		Trace:    trace,
	}
}

func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Reaction == a.Reaction {
			count++
		}
	}
	if count == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertTraceCount,
		Expected: fmt.Sprintf("reaction %q exactly %d times", a.Reaction, a.Count),
		Actual:   fmt.Sprintf("%d times", count),
		Trace:    trace,
	}
}

func assertFieldEquals(final map[string]any, trace []TraceEvent, a Assertion) error {
	got, ok := final[a.Field]
	if !ok {
		return &AssertionError{
			Type:     AssertFieldEquals,
			Expected: fmt.Sprintf("field %q present", a.Field),
			Actual:   "no such field",
			Trace:    trace,
		}
	}
	if valuesEqual(got, a.Value) {
		return nil
	}
	return &AssertionError{
		Type:     AssertFieldEquals,
		Expected: fmt.Sprintf("field %q == %v", a.Field, a.Value),
		Actual:   fmt.Sprintf("%v", got),
		Trace:    trace,
	}
}

// valuesEqual compares a field value against the expected value from
// YAML, bridging the integer shapes a decoder may produce.
func valuesEqual(got, want any) bool {
	if got == want {
		return true
	}
	gi, gok := asInt64(got)
	wi, wok := asInt64(want)
	return gok && wok && gi == wi
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
