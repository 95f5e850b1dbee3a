package trig

import (
	"log/slog"
)

// FieldRef identifies a field declaration independent of its value
// type. Reactions receive the changed field through this interface.
type FieldRef interface {
	// Name returns the field's declared name, unique within its Model.
	Name() string

	// Model returns the Model the field is declared on.
	Model() *Model
}

// Change is the observation surface delivered to every reaction: the
// instance it happened on, the field that changed, and the value
// transition. For an initial evaluation at Start, Old equals New and
// Field is the predicate's first dependency.
type Change struct {
	Instance *Instance
	Field    FieldRef
	Old      any
	New      any

	// Seq is the logical clock stamp assigned when the mutation
	// committed.
	Seq int64
}

// fieldHook is the synchronous notification callback registered on a
// field: either a user field reaction or a guard recompute.
type fieldHook func(st *Instance, c Change)

// fieldDecl is the type-erased view of a Field[T] the Model and
// Predicate machinery operate on.
type fieldDecl interface {
	FieldRef
	slotIndex() int
	initialAny() any
	declHooks() []fieldHook
	appendDeclHook(h fieldHook)
}

// Field is an observable, mutation-detecting state cell declaration.
//
// A Field is declared once per Model; a distinct instance-bound value
// slot is created per Instance at binding time. The zero-cost typed
// handle is used both to access per-instance values (Get/Set) and to
// build Predicates (Eq, Ne, Lt, ...).
//
// T being comparable makes incompatible assignments a compile error -
// the strictest form of the type-error policy.
type Field[T comparable] struct {
	model   *Model
	name    string
	idx     int
	initial T

	// hooks collects model-level reactions and guard recomputes in
	// registration order. Shared read-only by every instance slot
	// once the model freezes.
	hooks []fieldHook
}

// NewField declares a field on the model with an initial value.
// Panics if the name duplicates an existing field or the model has
// already been instantiated.
func NewField[T comparable](m *Model, name string, initial T) *Field[T] {
	m.mustDeclareField(name)
	f := &Field[T]{
		model:   m,
		name:    name,
		idx:     len(m.fields),
		initial: initial,
	}
	m.fields = append(m.fields, f)
	return f
}

// Name returns the field's declared name.
func (f *Field[T]) Name() string { return f.name }

// Model returns the Model the field is declared on.
func (f *Field[T]) Model() *Model { return f.model }

func (f *Field[T]) slotIndex() int             { return f.idx }
func (f *Field[T]) initialAny() any            { return f.initial }
func (f *Field[T]) declHooks() []fieldHook     { return f.hooks }
func (f *Field[T]) appendDeclHook(h fieldHook) { f.hooks = append(f.hooks, h) }

// Get returns the field's current value on the instance. No side
// effects.
func (f *Field[T]) Get(st *Instance) T {
	st.mustBelongTo(f.model)
	return st.slots[f.idx].value.(T)
}

// Set writes a new value to the field on the instance.
//
// Equal writes are no-ops: no notification occurs. An unequal write
// commits the value and then - before Set returns - synchronously
// invokes every hook registered on the field in registration order.
// Re-entrant writes performed by a hook are fully processed, nested
// cascades included, before the outer Set returns: notification is
// depth-first, never deferred. Rising edges detected along the way
// queue their reactions on the Executor instead of running inline.
func (f *Field[T]) Set(st *Instance, v T) {
	st.mustBelongTo(f.model)
	s := &st.slots[f.idx]
	old := s.value.(T)
	if old == v {
		return
	}
	s.value = v

	c := Change{
		Instance: st,
		Field:    f,
		Old:      old,
		New:      v,
		Seq:      st.exec.clock.Next(),
	}
	slog.Debug("field changed",
		"field", f.name,
		"instance", st.id,
		"old", old,
		"new", v,
		"seq", c.Seq,
	)

	// Snapshot the slice header: hooks registered during notification
	// see only later changes.
	hooks := s.hooks
	for _, h := range hooks {
		h(st, c)
	}
}

// OnChange registers a model-level field reaction: fn runs
// synchronously, in registration order, on every instance whenever
// the field's value changes. Must be called before the model is
// instantiated.
func (f *Field[T]) OnChange(fn func(st *Instance, old, new T)) {
	f.model.mustMutate()
	f.hooks = append(f.hooks, func(st *Instance, c Change) {
		fn(st, c.Old.(T), c.New.(T))
	})
}

// React registers an instance-specific field reaction on st. This is
// the cross-instance subscription surface: any party holding an
// instance reference may observe its fields. The reaction runs
// synchronously after the model-level hooks, in registration order.
func (f *Field[T]) React(st *Instance, fn func(st *Instance, old, new T)) error {
	if st.model != f.model {
		return ErrModelMismatch
	}
	st.addInstanceHook(f.idx, func(st *Instance, c Change) {
		fn(st, c.Old.(T), c.New.(T))
	})
	return nil
}
