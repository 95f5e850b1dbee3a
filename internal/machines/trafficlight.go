package machines

import (
	"github.com/trigkit/trig"
)

// Light colors, in rotation order.
const (
	ColorRed    = "red"
	ColorGreen  = "green"
	ColorYellow = "yellow"
)

// trafficLightModel rotates red -> green -> yellow -> red for
// cycles_to full cycles, then stops its executor. The same pump
// flip-flop as the counter turns "keep rotating while cycles remain"
// into a sequence of genuine rising edges.
type trafficLightModel struct {
	model    *trig.Model
	color    *trig.Field[string]
	ticks    *trig.Field[int]
	cycles   *trig.Field[int]
	cyclesTo *trig.Field[int]
	yellows  *trig.Field[int]
	pump     *trig.Field[bool]
}

var trafficLight = newTrafficLightModel()

func newTrafficLightModel() *trafficLightModel {
	m := trig.NewModel("trafficlight")
	tl := &trafficLightModel{
		model:    m,
		color:    trig.NewField(m, "color", ColorRed),
		ticks:    trig.NewField(m, "ticks", 0),
		cycles:   trig.NewField(m, "cycles", 0),
		cyclesTo: trig.NewField(m, "cycles_to", 0),
		yellows:  trig.NewField(m, "yellows", 0),
		pump:     trig.NewField(m, "pump", false),
	}

	m.When("arm", trig.And(tl.pump.Eq(false), trig.LtFields(tl.cycles, tl.cyclesTo)),
		func(st *trig.Instance, _ trig.Change) {
			tl.pump.Set(st, true)
		})

	m.When("advance", tl.pump.Eq(true),
		func(st *trig.Instance, _ trig.Change) {
			tl.ticks.Set(st, tl.ticks.Get(st)+1)
			switch tl.color.Get(st) {
			case ColorRed:
				tl.color.Set(st, ColorGreen)
			case ColorGreen:
				tl.color.Set(st, ColorYellow)
			case ColorYellow:
				tl.color.Set(st, ColorRed)
				tl.cycles.Set(st, tl.cycles.Get(st)+1)
			}
			tl.pump.Set(st, false)
		})

	// A color guard alongside the rotation: counts entries into
	// yellow, once per edge.
	m.When("caution", tl.color.Eq(ColorYellow),
		func(st *trig.Instance, _ trig.Change) {
			tl.yellows.Set(st, tl.yellows.Get(st)+1)
		})

	m.When("finish", trig.GeFields(tl.cycles, tl.cyclesTo),
		func(st *trig.Instance, _ trig.Change) {
			st.Executor().Stop()
		})

	return tl
}

func init() {
	Register(Machine{
		Name:        "trafficlight",
		Description: "rotates red/green/yellow for cycles_to cycles, then stops",
		Build:       buildTrafficLight,
	})
}

func buildTrafficLight(cfg Config) (*Bundle, error) {
	cyclesTo, err := intParam(cfg.Params, "cycles_to", 2)
	if err != nil {
		return nil, err
	}

	exec := trig.NewExecutor(cfg.ExecutorOptions...)
	var opts []trig.InstanceOption
	if cfg.InstanceID != "" {
		opts = append(opts, trig.WithID(cfg.InstanceID))
	}
	st := trafficLight.model.NewInstance(exec, opts...)
	trafficLight.cyclesTo.Set(st, cyclesTo)

	b := NewBundle("trafficlight", st, exec)
	ExposeString(b, trafficLight.color, st)
	ExposeInt(b, trafficLight.ticks, st)
	ExposeInt(b, trafficLight.cycles, st)
	ExposeInt(b, trafficLight.cyclesTo, st)
	ExposeInt(b, trafficLight.yellows, st)
	return b, nil
}
