package machines

import (
	"github.com/trigkit/trig"
)

// gateModel opens when a == 1 and b == 2 hold simultaneously. The
// opens field counts rising edges of the conjunction, so scenarios
// can pin down exact edge semantics under multi-field updates.
type gateModel struct {
	model *trig.Model
	a     *trig.Field[int]
	b     *trig.Field[int]
	opens *trig.Field[int]
}

var gate = newGateModel()

func newGateModel() *gateModel {
	m := trig.NewModel("gate")
	g := &gateModel{
		model: m,
		a:     trig.NewField(m, "a", 0),
		b:     trig.NewField(m, "b", 0),
		opens: trig.NewField(m, "opens", 0),
	}

	m.When("open", trig.And(g.a.Eq(1), g.b.Eq(2)),
		func(st *trig.Instance, _ trig.Change) {
			g.opens.Set(st, g.opens.Get(st)+1)
		})

	return g
}

func init() {
	Register(Machine{
		Name:        "gate",
		Description: "two-field AND gate counting rising edges",
		Build:       buildGate,
	})
}

func buildGate(cfg Config) (*Bundle, error) {
	exec := trig.NewExecutor(cfg.ExecutorOptions...)
	var opts []trig.InstanceOption
	if cfg.InstanceID != "" {
		opts = append(opts, trig.WithID(cfg.InstanceID))
	}
	st := gate.model.NewInstance(exec, opts...)

	b := NewBundle("gate", st, exec)
	ExposeInt(b, gate.a, st)
	ExposeInt(b, gate.b, st)
	ExposeInt(b, gate.opens, st)
	return b, nil
}
