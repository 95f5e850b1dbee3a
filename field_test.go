package trig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldGetReturnsInitialValue(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("thermostat")
	target := NewField(m, "target", 21.5)
	label := NewField(m, "label", "hallway")
	st := m.NewInstance(exec)

	assert.Equal(t, 21.5, target.Get(st))
	assert.Equal(t, "hallway", label.Get(st))
}

func TestFieldSetNoOpWriteNeverNotifies(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("thermostat")
	target := NewField(m, "target", 21)

	var calls int
	target.OnChange(func(*Instance, int, int) { calls++ })

	st := m.NewInstance(exec)
	target.Set(st, 21)
	target.Set(st, 21)
	target.Set(st, 21)
	assert.Zero(t, calls)

	target.Set(st, 22)
	assert.Equal(t, 1, calls)
	target.Set(st, 22)
	assert.Equal(t, 1, calls)
}

func TestFieldSetNotifiesInRegistrationOrder(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("thermostat")
	target := NewField(m, "target", 0)

	var order []string
	target.OnChange(func(*Instance, int, int) { order = append(order, "a") })
	target.OnChange(func(*Instance, int, int) { order = append(order, "b") })
	target.OnChange(func(*Instance, int, int) { order = append(order, "c") })

	st := m.NewInstance(exec)
	target.Set(st, 1)

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestFieldSetReentrantWritesAreDepthFirst(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("cascade")
	a := NewField(m, "a", 0)
	b := NewField(m, "b", 0)

	var order []string
	a.OnChange(func(st *Instance, old, new int) {
		order = append(order, "a-changed")
		// Nested write: its full notification chain completes before
		// the outer Set returns.
		b.Set(st, new*10)
	})
	a.OnChange(func(*Instance, int, int) { order = append(order, "a-second") })
	b.OnChange(func(*Instance, int, int) { order = append(order, "b-changed") })

	st := m.NewInstance(exec)
	a.Set(st, 1)

	assert.Equal(t, []string{"a-changed", "b-changed", "a-second"}, order)
	assert.Equal(t, 10, b.Get(st))
}

func TestFieldOnChangeReceivesOldAndNew(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("thermostat")
	target := NewField(m, "target", 18)

	type transition struct{ old, new int }
	var seen []transition
	target.OnChange(func(st *Instance, old, new int) {
		seen = append(seen, transition{old, new})
	})

	st := m.NewInstance(exec)
	target.Set(st, 20)
	target.Set(st, 16)

	assert.Equal(t, []transition{{18, 20}, {20, 16}}, seen)
}

func TestFieldReactIsInstanceScoped(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("thermostat")
	target := NewField(m, "target", 0)

	one := m.NewInstance(exec, WithID("one"))
	two := m.NewInstance(exec, WithID("two"))

	var oneCalls, twoCalls int
	require.NoError(t, target.React(one, func(*Instance, int, int) { oneCalls++ }))
	require.NoError(t, target.React(two, func(*Instance, int, int) { twoCalls++ }))

	target.Set(one, 5)
	assert.Equal(t, 1, oneCalls)
	assert.Zero(t, twoCalls)

	target.Set(two, 9)
	assert.Equal(t, 1, oneCalls)
	assert.Equal(t, 1, twoCalls)
}

func TestFieldReactRejectsForeignInstance(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("thermostat")
	target := NewField(m, "target", 0)
	m.NewInstance(exec)

	other := NewModel("doorbell")
	NewField(other, "rings", 0)
	foreign := other.NewInstance(exec)

	err := target.React(foreign, func(*Instance, int, int) {})
	assert.ErrorIs(t, err, ErrModelMismatch)
}

func TestFieldAccessWithForeignInstancePanics(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("thermostat")
	target := NewField(m, "target", 0)
	m.NewInstance(exec)

	other := NewModel("doorbell")
	NewField(other, "rings", 0)
	foreign := other.NewInstance(exec)

	assert.Panics(t, func() { target.Get(foreign) })
	assert.Panics(t, func() { target.Set(foreign, 1) })
}

func TestNewFieldDuplicateNamePanics(t *testing.T) {
	m := NewModel("thermostat")
	NewField(m, "target", 0)
	assert.Panics(t, func() { NewField(m, "target", 0) })
}

func TestFieldDeclarationsCloseOnFirstInstance(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("thermostat")
	target := NewField(m, "target", 0)
	m.NewInstance(exec)

	assert.Panics(t, func() { NewField(m, "late", 0) })
	assert.Panics(t, func() { target.OnChange(func(*Instance, int, int) {}) })
}

func TestFieldInstanceHooksDoNotLeakAcrossInstances(t *testing.T) {
	exec := NewExecutor()
	m := NewModel("thermostat")
	target := NewField(m, "target", 0)

	var modelCalls int
	target.OnChange(func(*Instance, int, int) { modelCalls++ })

	one := m.NewInstance(exec)
	two := m.NewInstance(exec)

	var oneCalls int
	require.NoError(t, target.React(one, func(*Instance, int, int) { oneCalls++ }))

	// The instance hook on one must not have mutated the shared
	// declaration hook list used by two.
	target.Set(two, 7)
	assert.Equal(t, 1, modelCalls)
	assert.Zero(t, oneCalls)
}
