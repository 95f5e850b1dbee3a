package trig

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Predicate is a boolean expression over the Fields of one Model,
// built from comparison leaves and the And/Or/Not combinators.
//
// A Predicate is pure: Evaluate recomputes the expression bottom-up
// against current field values with no side effects. Edge state lives
// on the instance's bound guard, never on the Predicate, so one
// Predicate value may guard reactions on any number of instances.
//
// Predicates are immutable once constructed.
type Predicate struct {
	model *Model

	// deps lists the distinct fields the expression reads, in first-
	// reference order. Guards register exactly one recompute hook per
	// entry.
	deps []fieldDecl

	eval func(st *Instance) bool
	expr string
}

// Evaluate recomputes the predicate against the instance's current
// field values. Pure; safe to call any number of times.
func (p *Predicate) Evaluate(st *Instance) bool {
	st.mustBelongTo(p.model)
	return p.eval(st)
}

// Fields returns the distinct fields the predicate depends on, in
// first-reference order.
func (p *Predicate) Fields() []FieldRef {
	refs := make([]FieldRef, len(p.deps))
	for i, d := range p.deps {
		refs[i] = d
	}
	return refs
}

// String renders the expression for logs and traces.
func (p *Predicate) String() string { return p.expr }

// Model returns the Model whose fields the predicate reads.
func (p *Predicate) Model() *Model { return p.model }

func leaf(f fieldDecl, expr string, eval func(st *Instance) bool) *Predicate {
	return &Predicate{
		model: f.Model(),
		deps:  []fieldDecl{f},
		eval:  eval,
		expr:  expr,
	}
}

func leaf2(a, b fieldDecl, expr string, eval func(st *Instance) bool) *Predicate {
	if a.Model() != b.Model() {
		panic(fmt.Sprintf("trig: cannot compare field %s.%s with field %s.%s of a different model",
			a.Model().Name(), a.Name(), b.Model().Name(), b.Name()))
	}
	deps := []fieldDecl{a}
	if b != a {
		deps = append(deps, b)
	}
	return &Predicate{model: a.Model(), deps: deps, eval: eval, expr: expr}
}

// Eq builds the predicate "field == value".
func (f *Field[T]) Eq(v T) *Predicate {
	return leaf(f, fmt.Sprintf("(%s == %v)", f.name, v), func(st *Instance) bool {
		return f.Get(st) == v
	})
}

// Ne builds the predicate "field != value".
func (f *Field[T]) Ne(v T) *Predicate {
	return leaf(f, fmt.Sprintf("(%s != %v)", f.name, v), func(st *Instance) bool {
		return f.Get(st) != v
	})
}

// EqField builds the predicate "field == other", comparing two fields
// of the same model on the same instance.
func (f *Field[T]) EqField(o *Field[T]) *Predicate {
	return leaf2(f, o, fmt.Sprintf("(%s == %s)", f.name, o.name), func(st *Instance) bool {
		return f.Get(st) == o.Get(st)
	})
}

// NeField builds the predicate "field != other".
func (f *Field[T]) NeField(o *Field[T]) *Predicate {
	return leaf2(f, o, fmt.Sprintf("(%s != %s)", f.name, o.name), func(st *Instance) bool {
		return f.Get(st) != o.Get(st)
	})
}

// Ordered comparisons are package functions rather than methods:
// method sets cannot narrow a type parameter, so the cmp.Ordered
// constraint has to live on the function.

// Lt builds the predicate "field < value".
func Lt[T cmp.Ordered](f *Field[T], v T) *Predicate {
	return leaf(f, fmt.Sprintf("(%s < %v)", f.name, v), func(st *Instance) bool {
		return f.Get(st) < v
	})
}

// Le builds the predicate "field <= value".
func Le[T cmp.Ordered](f *Field[T], v T) *Predicate {
	return leaf(f, fmt.Sprintf("(%s <= %v)", f.name, v), func(st *Instance) bool {
		return f.Get(st) <= v
	})
}

// Gt builds the predicate "field > value".
func Gt[T cmp.Ordered](f *Field[T], v T) *Predicate {
	return leaf(f, fmt.Sprintf("(%s > %v)", f.name, v), func(st *Instance) bool {
		return f.Get(st) > v
	})
}

// Ge builds the predicate "field >= value".
func Ge[T cmp.Ordered](f *Field[T], v T) *Predicate {
	return leaf(f, fmt.Sprintf("(%s >= %v)", f.name, v), func(st *Instance) bool {
		return f.Get(st) >= v
	})
}

// LtFields builds the predicate "a < b" over two fields.
func LtFields[T cmp.Ordered](a, b *Field[T]) *Predicate {
	return leaf2(a, b, fmt.Sprintf("(%s < %s)", a.name, b.name), func(st *Instance) bool {
		return a.Get(st) < b.Get(st)
	})
}

// LeFields builds the predicate "a <= b" over two fields.
func LeFields[T cmp.Ordered](a, b *Field[T]) *Predicate {
	return leaf2(a, b, fmt.Sprintf("(%s <= %s)", a.name, b.name), func(st *Instance) bool {
		return a.Get(st) <= b.Get(st)
	})
}

// GtFields builds the predicate "a > b" over two fields.
func GtFields[T cmp.Ordered](a, b *Field[T]) *Predicate {
	return leaf2(a, b, fmt.Sprintf("(%s > %s)", a.name, b.name), func(st *Instance) bool {
		return a.Get(st) > b.Get(st)
	})
}

// GeFields builds the predicate "a >= b" over two fields.
func GeFields[T cmp.Ordered](a, b *Field[T]) *Predicate {
	return leaf2(a, b, fmt.Sprintf("(%s >= %s)", a.name, b.name), func(st *Instance) bool {
		return a.Get(st) >= b.Get(st)
	})
}

// And builds the conjunction of the given predicates. Short-circuits
// left to right. Logical combinators are named functions, not
// operators, so the same composition surface exists everywhere.
// Panics on an empty argument list: a predicate with zero
// dependencies is invalid by construction.
func And(preds ...*Predicate) *Predicate {
	return combine("and", preds, func(st *Instance) bool {
		for _, p := range preds {
			if !p.eval(st) {
				return false
			}
		}
		return true
	})
}

// Or builds the disjunction of the given predicates. Short-circuits
// left to right. Panics on an empty argument list.
func Or(preds ...*Predicate) *Predicate {
	return combine("or", preds, func(st *Instance) bool {
		for _, p := range preds {
			if p.eval(st) {
				return true
			}
		}
		return false
	})
}

// Not builds the negation of p.
func Not(p *Predicate) *Predicate {
	if p == nil {
		panic("trig: Not requires a predicate")
	}
	return &Predicate{
		model: p.model,
		deps:  slices.Clone(p.deps),
		eval:  func(st *Instance) bool { return !p.eval(st) },
		expr:  fmt.Sprintf("(not %s)", p.expr),
	}
}

func combine(op string, preds []*Predicate, eval func(st *Instance) bool) *Predicate {
	if len(preds) == 0 {
		panic(fmt.Sprintf("trig: %s requires at least one operand", op))
	}
	if len(preds) == 1 {
		if preds[0] == nil {
			panic(fmt.Sprintf("trig: %s received a nil predicate", op))
		}
		return preds[0]
	}

	model := preds[0].model
	var deps []fieldDecl
	exprs := make([]string, len(preds))
	for i, p := range preds {
		if p == nil {
			panic(fmt.Sprintf("trig: %s received a nil predicate", op))
		}
		if p.model != model {
			panic(fmt.Sprintf("trig: cannot combine predicates of models %q and %q",
				model.Name(), p.model.Name()))
		}
		for _, d := range p.deps {
			if !slices.Contains(deps, d) {
				deps = append(deps, d)
			}
		}
		exprs[i] = p.expr
	}

	return &Predicate{
		model: model,
		deps:  deps,
		eval:  eval,
		expr:  "(" + strings.Join(exprs, " "+op+" ") + ")",
	}
}
