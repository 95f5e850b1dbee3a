package machines

import (
	"fmt"
	"sort"

	"github.com/trigkit/trig"
)

// Bundle is a built machine: its primary instance, the executor it
// dispatches on, and name-addressed accessors so the harness and CLI
// can drive typed fields generically.
type Bundle struct {
	Machine  string
	Instance *trig.Instance
	Executor *trig.Executor

	// Instances lists every instance the machine owns, primary first.
	// Multi-instance machines (watcher) append their secondaries.
	Instances []*trig.Instance

	setters map[string]func(any) error
	getters map[string]func() any
}

// NewBundle wraps a built instance. Machines add field accessors with
// Expose*.
func NewBundle(machine string, st *trig.Instance, exec *trig.Executor) *Bundle {
	return &Bundle{
		Machine:   machine,
		Instance:  st,
		Executor:  exec,
		Instances: []*trig.Instance{st},
		setters:   map[string]func(any) error{},
		getters:   map[string]func() any{},
	}
}

// Start runs the initial evaluation pass on every owned instance, in
// creation order.
func (b *Bundle) Start() error {
	for _, st := range b.Instances {
		if err := st.Start(); err != nil {
			return fmt.Errorf("machine %q instance %s: %w", b.Machine, st.ID(), err)
		}
	}
	return nil
}

// ExposeInt makes an int field settable and gettable by name.
func ExposeInt(b *Bundle, f *trig.Field[int], st *trig.Instance) {
	b.setters[f.Name()] = func(v any) error {
		n, err := intValue(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.Name(), err)
		}
		f.Set(st, n)
		return nil
	}
	b.getters[f.Name()] = func() any { return f.Get(st) }
}

// ExposeBool makes a bool field settable and gettable by name.
func ExposeBool(b *Bundle, f *trig.Field[bool], st *trig.Instance) {
	b.setters[f.Name()] = func(v any) error {
		bv, ok := v.(bool)
		if !ok {
			return fmt.Errorf("field %q: expected bool, got %T", f.Name(), v)
		}
		f.Set(st, bv)
		return nil
	}
	b.getters[f.Name()] = func() any { return f.Get(st) }
}

// ExposeString makes a string field settable and gettable by name.
func ExposeString(b *Bundle, f *trig.Field[string], st *trig.Instance) {
	b.setters[f.Name()] = func(v any) error {
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("field %q: expected string, got %T", f.Name(), v)
		}
		f.Set(st, s)
		return nil
	}
	b.getters[f.Name()] = func() any { return f.Get(st) }
}

// Set writes a value to an exposed field. The caller must not race
// the executor: settle before external writes.
func (b *Bundle) Set(field string, value any) error {
	set, ok := b.setters[field]
	if !ok {
		return fmt.Errorf("machine %q has no settable field %q (have %v)",
			b.Machine, field, b.FieldNames())
	}
	return set(value)
}

// Get reads an exposed field's current value.
func (b *Bundle) Get(field string) (any, error) {
	get, ok := b.getters[field]
	if !ok {
		return nil, fmt.Errorf("machine %q has no field %q (have %v)",
			b.Machine, field, b.FieldNames())
	}
	return get(), nil
}

// FieldNames returns the exposed field names, sorted.
func (b *Bundle) FieldNames() []string {
	names := make([]string, 0, len(b.getters))
	for name := range b.getters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// intValue coerces the integer shapes a YAML decoder or flag parser
// produces.
func intValue(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
		return 0, fmt.Errorf("expected integer, got %v", n)
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}

// intParam reads an optional integer parameter with a default.
func intParam(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	n, err := intValue(v)
	if err != nil {
		return 0, fmt.Errorf("param %q: %w", key, err)
	}
	return n, nil
}
