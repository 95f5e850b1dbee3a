package trig

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the runtime surface. Construction-time
// misuse of the declaration builders (duplicate field names, empty
// combinators, mixing Models) panics instead - those are programmer
// errors that should fail at setup, not be handled.
var (
	// ErrStopped is returned by Submit once the Executor has fully
	// drained after Stop. Already-queued reactions still run.
	ErrStopped = errors.New("trig: executor stopped")

	// ErrAlreadyStarted is returned by Instance.Start on a second call.
	ErrAlreadyStarted = errors.New("trig: instance already started")

	// ErrModelMismatch is returned when a Predicate or Field is used
	// with an Instance of a different Model.
	ErrModelMismatch = errors.New("trig: predicate and instance belong to different models")
)

// ReactionPanicError reports a panic recovered from a reaction body.
// The dispatch loop never aborts on one; it is routed to the error
// hook and the next queued reaction still runs. The failed reaction is
// not redelivered - at-most-once execution per rising edge holds even
// on failure.
type ReactionPanicError struct {
	// Seq is the dispatch's logical clock stamp.
	Seq int64

	// Reaction is the qualified reaction name ("model.guard").
	Reaction string

	// Instance identifies the owning instance.
	Instance string

	// Value is the recovered panic value.
	Value any
}

// Error implements the error interface.
func (e *ReactionPanicError) Error() string {
	return fmt.Sprintf("trig: reaction %s panicked (seq=%d, instance=%s): %v",
		e.Reaction, e.Seq, e.Instance, e.Value)
}

// IsReactionPanic returns true if the error is a ReactionPanicError.
// Uses errors.As to handle wrapped errors.
func IsReactionPanic(err error) bool {
	var re *ReactionPanicError
	return errors.As(err, &re)
}
