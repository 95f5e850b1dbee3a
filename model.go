package trig

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Model is the reusable blueprint of a state machine: named Field
// declarations plus guards (Predicate, reactions) in declaration
// order.
//
// Declarations happen once, at setup; the first NewInstance freezes
// the model. Declaration order NEVER changes after that point - it is
// what makes evaluation deterministic: when a field changes, the
// guards depending on it recompute in the order they were declared.
type Model struct {
	name   string
	fields []fieldDecl
	guards []*Guard
	frozen bool
}

// NewModel creates an empty model.
func NewModel(name string) *Model {
	return &Model{name: name}
}

// Name returns the model's name.
func (m *Model) Name() string { return m.name }

// FieldNames returns the declared field names in declaration order.
func (m *Model) FieldNames() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name()
	}
	return names
}

func (m *Model) mustMutate() {
	if m.frozen {
		panic(fmt.Sprintf("trig: model %q already instantiated; declarations are closed", m.name))
	}
}

func (m *Model) mustDeclareField(name string) {
	m.mustMutate()
	for _, f := range m.fields {
		if f.Name() == name {
			panic(fmt.Sprintf("trig: duplicate field %q on model %q", name, m.name))
		}
	}
}

// Guard pairs a Predicate with the reactions that fire on its rising
// edges. Guards declared on a Model are bound to every instance;
// guards attached via Instance.When exist on that instance alone.
type Guard struct {
	model     *Model
	name      string
	pred      *Predicate
	reactions []Reaction
}

// Name returns the guard's name.
func (g *Guard) Name() string { return g.name }

// Predicate returns the guard's predicate.
func (g *Guard) Predicate() *Predicate { return g.pred }

// React registers an additional reaction on the guard. Reactions fire
// in registration order on each rising edge. Returns the guard for
// chaining.
func (g *Guard) React(fn Reaction) *Guard {
	g.model.mustMutate()
	g.reactions = append(g.reactions, fn)
	return g
}

// When declares a guard: fn fires, via the Executor, each time pred
// transitions from not-true (including the initial unevaluated state)
// to true on an instance. Panics if pred reads fields of another
// model or the model is frozen.
func (m *Model) When(name string, pred *Predicate, fn Reaction) *Guard {
	m.mustMutate()
	if pred == nil {
		panic(fmt.Sprintf("trig: guard %q on model %q requires a predicate", name, m.name))
	}
	if pred.model != m {
		panic(fmt.Sprintf("trig: guard %q: predicate %s reads fields of model %q, not %q",
			name, pred, pred.model.name, m.name))
	}

	g := &Guard{model: m, name: name, pred: pred, reactions: []Reaction{fn}}
	gi := len(m.guards)
	m.guards = append(m.guards, g)

	// One recompute hook per distinct dependency field. The bound
	// guard is resolved through the instance so edge state stays
	// instance-owned.
	for _, dep := range pred.deps {
		dep.appendDeclHook(func(st *Instance, c Change) {
			st.recompute(st.guards[gi], c)
		})
	}
	return g
}

// triState is a guard's last-known truth value.
type triState int8

const (
	stateUnevaluated triState = iota
	stateFalse
	stateTrue
)

// boundGuard is a guard's per-instance edge state.
type boundGuard struct {
	guard *Guard
	state triState
}

// slot is a field's per-instance storage.
type slot struct {
	value any

	// hooks aliases the declaration's hook list until an instance-
	// specific hook forces a copy.
	hooks []fieldHook
	owned bool
}

// InstanceOption configures NewInstance.
type InstanceOption func(*instanceConfig)

type instanceConfig struct {
	id string
}

// WithID fixes the instance identity instead of generating a UUIDv7.
// Used for deterministic traces in tests and scenarios.
func WithID(id string) InstanceOption {
	return func(cfg *instanceConfig) {
		cfg.id = id
	}
}

// Instance is a Model bound to fresh, instance-owned state: one value
// slot per declared Field and one edge-state record per guard. Two
// instances of the same Model never share a slot or edge state.
//
// Instance state carries no locks; see the package concurrency
// contract.
type Instance struct {
	id      string
	model   *Model
	exec    *Executor
	slots   []slot
	guards  []*boundGuard
	started bool
}

// NewInstance binds the model to a new instance using exec for
// reaction dispatch. Freezes the model on first call. Panics if exec
// is nil.
func (m *Model) NewInstance(exec *Executor, opts ...InstanceOption) *Instance {
	if exec == nil {
		panic(fmt.Sprintf("trig: model %q instantiated without an executor", m.name))
	}
	m.frozen = true

	cfg := instanceConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.id == "" {
		cfg.id = uuid.Must(uuid.NewV7()).String()
	}

	st := &Instance{
		id:     cfg.id,
		model:  m,
		exec:   exec,
		slots:  make([]slot, len(m.fields)),
		guards: make([]*boundGuard, len(m.guards)),
	}
	for i, f := range m.fields {
		st.slots[i] = slot{value: f.initialAny(), hooks: f.declHooks()}
	}
	for i, g := range m.guards {
		st.guards[i] = &boundGuard{guard: g}
	}

	slog.Debug("instance bound",
		"model", m.name,
		"instance", st.id,
		"fields", len(st.slots),
		"guards", len(st.guards),
	)
	return st
}

// ID returns the instance identity.
func (st *Instance) ID() string { return st.id }

// Model returns the instance's model.
func (st *Instance) Model() *Model { return st.model }

// Executor returns the executor the instance dispatches on.
func (st *Instance) Executor() *Executor { return st.exec }

// Started reports whether Start has run.
func (st *Instance) Started() bool { return st.started }

// Start performs the first evaluation pass over every bound guard in
// declaration order. Guards already true against the initial field
// values fire exactly once - asynchronously, through the Executor -
// treating the pass as a transition from unevaluated to true. Guards
// a pre-start mutation already evaluated are left alone: at most one
// firing per edge holds across the pass.
func (st *Instance) Start() error {
	if st.started {
		return ErrAlreadyStarted
	}
	st.started = true

	slog.Info("instance starting", "model", st.model.name, "instance", st.id)
	for _, bg := range st.guards {
		st.initialEval(bg)
	}
	return nil
}

// When attaches a guard to this instance alone. This is the
// first-class cross-instance subscription: any party holding the
// instance reference can guard its own behavior on this instance's
// state. If the instance has started, the predicate is evaluated
// immediately with initial-edge semantics.
func (st *Instance) When(name string, pred *Predicate, fn Reaction) error {
	if pred == nil {
		return fmt.Errorf("trig: guard %q requires a predicate", name)
	}
	if pred.model != st.model {
		return fmt.Errorf("%w: guard %q reads model %q, instance is %q",
			ErrModelMismatch, name, pred.model.name, st.model.name)
	}

	g := &Guard{model: st.model, name: name, pred: pred, reactions: []Reaction{fn}}
	bg := &boundGuard{guard: g}
	st.guards = append(st.guards, bg)
	for _, dep := range pred.deps {
		st.addInstanceHook(dep.slotIndex(), func(st *Instance, c Change) {
			st.recompute(bg, c)
		})
	}

	if st.started {
		st.initialEval(bg)
	}
	return nil
}

// recompute is the dependency-change handler: re-evaluate the guard's
// predicate and submit its reactions on a rising edge. The stored
// truth value is updated on every call; submission happens only on
// not-true -> true.
func (st *Instance) recompute(bg *boundGuard, c Change) {
	v := bg.guard.pred.eval(st)
	prev := bg.state
	if v {
		bg.state = stateTrue
	} else {
		bg.state = stateFalse
	}
	if !v || prev == stateTrue {
		return
	}
	st.fire(bg, c)
}

// initialEval evaluates a guard that has never been evaluated,
// firing it if the initial value is already true.
func (st *Instance) initialEval(bg *boundGuard) {
	if bg.state != stateUnevaluated {
		return
	}
	if !bg.guard.pred.eval(st) {
		bg.state = stateFalse
		return
	}
	bg.state = stateTrue

	// Synthesize the triggering change from the first dependency:
	// there was no mutation, so Old equals New.
	dep := bg.guard.pred.deps[0]
	cur := st.slots[dep.slotIndex()].value
	st.fire(bg, Change{
		Instance: st,
		Field:    dep,
		Old:      cur,
		New:      cur,
		Seq:      st.exec.clock.Next(),
	})
}

func (st *Instance) fire(bg *boundGuard, c Change) {
	name := st.model.name + "." + bg.guard.name
	slog.Debug("rising edge",
		"guard", name,
		"instance", st.id,
		"predicate", bg.guard.pred.expr,
		"seq", c.Seq,
	)
	for _, fn := range bg.guard.reactions {
		if err := st.exec.Submit(name, fn, c); err != nil {
			slog.Warn("rising edge dropped",
				"guard", name,
				"instance", st.id,
				"error", err,
			)
		}
	}
}

// addInstanceHook appends an instance-specific hook to a field slot,
// copying the shared declaration list on first write.
func (st *Instance) addInstanceHook(idx int, h fieldHook) {
	s := &st.slots[idx]
	if !s.owned {
		copied := make([]fieldHook, len(s.hooks), len(s.hooks)+1)
		copy(copied, s.hooks)
		s.hooks = copied
		s.owned = true
	}
	s.hooks = append(s.hooks, h)
}

func (st *Instance) mustBelongTo(m *Model) {
	if st.model != m {
		panic(fmt.Sprintf("trig: model %q value used with instance of model %q",
			m.name, st.model.name))
	}
}
