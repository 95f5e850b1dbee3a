package machines

import (
	"fmt"
	"sort"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/trigkit/trig"
)

// Machine describes a registered example state machine.
type Machine struct {
	// Name is the registry key, stored in NFC form.
	Name string

	// Description is a one-line summary for listings.
	Description string

	// Build constructs a fresh instance of the machine wired to a new
	// Executor. The caller owns the returned Bundle's lifecycle.
	Build func(cfg Config) (*Bundle, error)
}

// Config carries construction parameters into Build.
type Config struct {
	// Params holds machine-specific parameters, typically decoded
	// from a scenario file or CLI flags.
	Params map[string]any

	// InstanceID fixes the primary instance's identity. Empty means
	// a generated UUID.
	InstanceID string

	// ExecutorOptions configure the machine's Executor; the harness
	// installs its trace observer here.
	ExecutorOptions []trig.ExecutorOption
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Machine{}
)

// Register adds a machine to the registry. Panics on an empty name or
// a duplicate registration: both are wiring mistakes that should fail
// at init, not at lookup.
func Register(m Machine) {
	if m.Name == "" {
		panic("machines: Register with empty name")
	}
	if m.Build == nil {
		panic(fmt.Sprintf("machines: Register %q with nil Build", m.Name))
	}
	name := norm.NFC.String(m.Name)

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("machines: duplicate registration of %q", name))
	}
	m.Name = name
	registry[name] = m
}

// Lookup finds a machine by name. Names arriving from scenario files
// or the command line are normalized to NFC before comparison, so
// visually identical spellings resolve to the same machine.
func Lookup(name string) (Machine, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	m, ok := registry[norm.NFC.String(name)]
	return m, ok
}

// Names returns the registered machine names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
