package machines

import (
	"github.com/trigkit/trig"
)

// The watcher machine is two models on one executor: a sensor whose
// value is driven from outside, and a monitor subscribed to it across
// the instance boundary. The monitor mirrors the sensor's value with
// a synchronous field reaction and counts threshold crossings with an
// ad-hoc guard attached to the sensor instance.
type sensorModel struct {
	model     *trig.Model
	value     *trig.Field[int]
	threshold *trig.Field[int]
}

type monitorModel struct {
	model    *trig.Model
	observed *trig.Field[int]
	alerts   *trig.Field[int]
}

var (
	sensor  = newSensorModel()
	monitor = newMonitorModel()
)

func newSensorModel() *sensorModel {
	m := trig.NewModel("sensor")
	return &sensorModel{
		model:     m,
		value:     trig.NewField(m, "value", 0),
		threshold: trig.NewField(m, "threshold", 0),
	}
}

func newMonitorModel() *monitorModel {
	m := trig.NewModel("monitor")
	return &monitorModel{
		model:    m,
		observed: trig.NewField(m, "observed", 0),
		alerts:   trig.NewField(m, "alerts", 0),
	}
}

func init() {
	Register(Machine{
		Name:        "watcher",
		Description: "monitor instance mirroring and alerting on a sensor instance",
		Build:       buildWatcher,
	})
}

func buildWatcher(cfg Config) (*Bundle, error) {
	threshold, err := intParam(cfg.Params, "threshold", 5)
	if err != nil {
		return nil, err
	}

	exec := trig.NewExecutor(cfg.ExecutorOptions...)

	var sensorOpts, monitorOpts []trig.InstanceOption
	if cfg.InstanceID != "" {
		sensorOpts = append(sensorOpts, trig.WithID(cfg.InstanceID))
		monitorOpts = append(monitorOpts, trig.WithID(cfg.InstanceID+"-monitor"))
	}
	sensorSt := sensor.model.NewInstance(exec, sensorOpts...)
	monitorSt := monitor.model.NewInstance(exec, monitorOpts...)
	sensor.threshold.Set(sensorSt, threshold)

	// Synchronous mirror: every sensor value lands in the monitor's
	// observed field before the sensor's Set returns.
	if err := sensor.value.React(sensorSt, func(_ *trig.Instance, _, new int) {
		monitor.observed.Set(monitorSt, new)
	}); err != nil {
		return nil, err
	}

	// Cross-instance guard: the monitor reacts to the sensor's rising
	// edges, mutating its own state.
	if err := sensorSt.When("over-threshold",
		trig.GtFields(sensor.value, sensor.threshold),
		func(_ *trig.Instance, _ trig.Change) {
			monitor.alerts.Set(monitorSt, monitor.alerts.Get(monitorSt)+1)
		}); err != nil {
		return nil, err
	}

	b := NewBundle("watcher", sensorSt, exec)
	b.Instances = append(b.Instances, monitorSt)
	ExposeInt(b, sensor.value, sensorSt)
	ExposeInt(b, sensor.threshold, sensorSt)
	ExposeInt(b, monitor.observed, monitorSt)
	ExposeInt(b, monitor.alerts, monitorSt)
	return b, nil
}
