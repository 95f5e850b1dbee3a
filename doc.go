// Package trig is a declarative, edge-triggered reaction layer over
// observable state.
//
// A program declares a Model: a set of named Fields (observable state
// cells) and a set of guards - boolean Predicates over those Fields
// paired with Reactions that fire when the predicate transitions from
// not-true to true. The Model is a reusable blueprint; NewInstance
// binds it to fresh, instance-owned state so that independent
// instances never share a Field or a predicate's edge state.
//
// ARCHITECTURE:
//
// Single-Consumer Dispatch Loop:
// All reactions execute on one goroutine inside Executor.Run. This
// ensures:
//   - Strict FIFO: reactions run in exact submission order
//   - No two reaction bodies ever interleave
//   - A reaction that mutates the Fields that triggered it queues
//     further work instead of recursing
//
// Mutation Flow:
//  1. Field.Set compares the new value against the current one; equal
//     writes are no-ops and notify nobody
//  2. An unequal write commits the value, then synchronously notifies
//     every hook registered on that Field in registration order
//  3. Predicate recompute hooks re-evaluate their guard; a rising edge
//     (not-true -> true, including the initial unevaluated state)
//     submits the guard's reactions to the Executor
//  4. The Executor later - but in submission order - invokes each
//     reaction to completion
//
// Field notification is fully synchronous and depth-first: a Set
// performed by a hook is processed, cascades and all, before the outer
// Set returns. The only asynchronous boundary in the system is between
// a rising edge being detected and the subscribed reaction running.
//
// CONCURRENCY CONTRACT:
//
// Instance state has no internal locking. During steady-state
// operation the dispatch loop is the sole mutator; hosts that mutate
// Fields from outside a reaction are responsible for not doing so
// from multiple goroutines concurrently with the loop. Executor.Submit
// and Executor.Stop are safe from any goroutine.
//
// ORDERING GUARANTEES:
//  1. Within one Field, hooks fire in registration order
//  2. Within one guard, reactions fire in registration order per edge
//  3. Globally, the Executor runs reactions in exact submission order,
//     regardless of which Field or guard produced them
//
// All dispatches are stamped with a monotonic logical clock (never
// wall-clock time), so a trace of seq numbers fully determines the
// execution order.
package trig
