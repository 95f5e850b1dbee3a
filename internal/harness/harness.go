package harness

import (
	"context"
	"fmt"
	"time"

	"github.com/trigkit/trig"
	"github.com/trigkit/trig/internal/machines"
)

// stepTimeout bounds each settle so a machine that never drains fails
// the scenario instead of hanging it.
const stepTimeout = 10 * time.Second

// Run executes a scenario and returns its result.
//
// Each scenario builds a fresh machine on a fresh executor for
// isolation. The executor's observer captures every dispatch in
// execution order; the harness settles after each set step so
// external writes never race in-flight reactions and the trace is
// reproducible run to run.
func Run(scenario *Scenario) (*Result, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	machine, ok := machines.Lookup(scenario.Machine)
	if !ok {
		return nil, fmt.Errorf("scenario %q: unknown machine %q (have %v)",
			scenario.Name, scenario.Machine, machines.Names())
	}

	result := NewResult(scenario.Name, machine.Name)

	instanceID := scenario.InstanceID
	if instanceID == "" {
		instanceID = DefaultInstanceID
	}

	// The observer and error hook run on the executor goroutine; the
	// trace is read only after Run returns below.
	bundle, err := machine.Build(machines.Config{
		Params:     scenario.Params,
		InstanceID: instanceID,
		ExecutorOptions: []trig.ExecutorOption{
			trig.WithObserver(func(d trig.Dispatch) {
				result.Trace = append(result.Trace, TraceEvent{
					Reaction: d.Reaction,
					Instance: d.Change.Instance.ID(),
					Field:    fieldName(d.Change.Field),
					Old:      d.Change.Old,
					New:      d.Change.New,
				})
			}),
			trig.WithErrorHook(func(d trig.Dispatch, v any) {
				result.AddError(fmt.Sprintf("reaction %s panicked: %v", d.Reaction, v))
			}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %q: failed to build machine: %w", scenario.Name, err)
	}

	if scenario.Start {
		if err := bundle.Start(); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- bundle.Executor.Run(runCtx)
	}()

	execErr := func() error {
		// Machines that run to completion on Start (counter,
		// trafficlight) drain before the first external write.
		if err := settle(bundle); err != nil {
			return err
		}
		for i, step := range scenario.Steps {
			if err := runStep(bundle, step); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
		}
		return settle(bundle)
	}()
	if execErr != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, execErr)
	}

	bundle.Executor.Stop()
	if err := <-done; err != nil {
		return nil, fmt.Errorf("scenario %q: executor: %w", scenario.Name, err)
	}

	for _, field := range bundle.FieldNames() {
		v, err := bundle.Get(field)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
		}
		result.Final[field] = v
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func runStep(bundle *machines.Bundle, step Step) error {
	switch {
	case step.Set != nil:
		if err := bundle.Set(step.Set.Field, step.Set.Value); err != nil {
			return err
		}
		return settle(bundle)
	case step.Settle:
		return settle(bundle)
	case step.Stop:
		bundle.Executor.Stop()
		return settle(bundle)
	default:
		return fmt.Errorf("empty step")
	}
}

func settle(bundle *machines.Bundle) error {
	ctx, cancel := context.WithTimeout(context.Background(), stepTimeout)
	defer cancel()
	if err := bundle.Executor.Settle(ctx); err != nil {
		return fmt.Errorf("executor did not settle: %w", err)
	}
	return nil
}

func fieldName(f trig.FieldRef) string {
	if f == nil {
		return ""
	}
	return f.Name()
}
