// Package machines hosts the built-in example state machines exposed
// through the registry: counter, trafficlight, watcher, and gate.
//
// Each machine packages a Model declaration plus the glue the harness
// and CLI need to drive it generically: a Build function producing a
// Bundle with name-addressed field setters and getters. Machines are
// registered at init time; Lookup normalizes incoming names to NFC so
// scenario files and CLI arguments compare by canonical form.
//
// Machines that run to completion on their own (counter,
// trafficlight) stop the shared Executor when done; externally driven
// machines (gate, watcher) leave lifecycle control to the caller.
package machines
