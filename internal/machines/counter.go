package machines

import (
	"github.com/trigkit/trig"
)

// counterModel counts from 0 to count_to and stops its executor.
//
// Edge-triggered guards cannot loop on a condition that stays true, so
// the counter drives itself with a pump flip-flop: "arm" raises pump
// while there is counting left to do, "step" consumes the pump,
// increments, and lowers it again - each increment is a fresh rising
// edge on both guards. "finish" fires once when the target is reached.
type counterModel struct {
	model   *trig.Model
	count   *trig.Field[int]
	countTo *trig.Field[int]
	pump    *trig.Field[bool]
	done    *trig.Field[bool]
}

var counter = newCounterModel()

func newCounterModel() *counterModel {
	m := trig.NewModel("counter")
	c := &counterModel{
		model:   m,
		count:   trig.NewField(m, "count", 0),
		countTo: trig.NewField(m, "count_to", 0),
		pump:    trig.NewField(m, "pump", false),
		done:    trig.NewField(m, "done", false),
	}

	m.When("arm", trig.And(c.pump.Eq(false), trig.LtFields(c.count, c.countTo)),
		func(st *trig.Instance, _ trig.Change) {
			c.pump.Set(st, true)
		})

	m.When("step", c.pump.Eq(true),
		func(st *trig.Instance, _ trig.Change) {
			c.count.Set(st, c.count.Get(st)+1)
			c.pump.Set(st, false)
		})

	m.When("finish", trig.GeFields(c.count, c.countTo),
		func(st *trig.Instance, _ trig.Change) {
			c.done.Set(st, true)
			st.Executor().Stop()
		})

	return c
}

func init() {
	Register(Machine{
		Name:        "counter",
		Description: "counts from 0 to count_to once, then stops the executor",
		Build:       buildCounter,
	})
}

func buildCounter(cfg Config) (*Bundle, error) {
	countTo, err := intParam(cfg.Params, "count_to", 3)
	if err != nil {
		return nil, err
	}

	exec := trig.NewExecutor(cfg.ExecutorOptions...)
	var opts []trig.InstanceOption
	if cfg.InstanceID != "" {
		opts = append(opts, trig.WithID(cfg.InstanceID))
	}
	st := counter.model.NewInstance(exec, opts...)
	counter.countTo.Set(st, countTo)

	b := NewBundle("counter", st, exec)
	ExposeInt(b, counter.count, st)
	ExposeInt(b, counter.countTo, st)
	ExposeBool(b, counter.pump, st)
	ExposeBool(b, counter.done, st)
	return b, nil
}
