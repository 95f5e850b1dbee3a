package machines

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMachine(t *testing.T, name string, cfg Config) *Bundle {
	t.Helper()
	m, ok := Lookup(name)
	require.True(t, ok, "machine %q not registered", name)
	b, err := m.Build(cfg)
	require.NoError(t, err)
	return b
}

func TestCounterCountsToTargetAndStops(t *testing.T) {
	b := buildMachine(t, "counter", Config{
		Params:     map[string]any{"count_to": 5},
		InstanceID: "counter-1",
	})
	require.NoError(t, b.Start())

	// The counter stops its own executor; Run returns when drained.
	require.NoError(t, b.Executor.Run(context.Background()))

	count, err := b.Get("count")
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	done, err := b.Get("done")
	require.NoError(t, err)
	assert.Equal(t, true, done)

	pump, err := b.Get("pump")
	require.NoError(t, err)
	assert.Equal(t, false, pump)
}

func TestCounterZeroTargetFinishesImmediately(t *testing.T) {
	b := buildMachine(t, "counter", Config{
		Params: map[string]any{"count_to": 0},
	})
	require.NoError(t, b.Start())
	require.NoError(t, b.Executor.Run(context.Background()))

	count, err := b.Get("count")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	done, err := b.Get("done")
	require.NoError(t, err)
	assert.Equal(t, true, done)
}

func TestCounterDefaultTarget(t *testing.T) {
	b := buildMachine(t, "counter", Config{})
	require.NoError(t, b.Start())
	require.NoError(t, b.Executor.Run(context.Background()))

	count, err := b.Get("count")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestCounterRejectsBadParam(t *testing.T) {
	m, ok := Lookup("counter")
	require.True(t, ok)
	_, err := m.Build(Config{Params: map[string]any{"count_to": "nine"}})
	assert.ErrorContains(t, err, "count_to")
}

func TestCounterInstancesAreIsolated(t *testing.T) {
	one := buildMachine(t, "counter", Config{Params: map[string]any{"count_to": 2}})
	two := buildMachine(t, "counter", Config{Params: map[string]any{"count_to": 7}})

	require.NoError(t, one.Start())
	require.NoError(t, two.Start())
	require.NoError(t, one.Executor.Run(context.Background()))
	require.NoError(t, two.Executor.Run(context.Background()))

	oneCount, err := one.Get("count")
	require.NoError(t, err)
	twoCount, err := two.Get("count")
	require.NoError(t, err)
	assert.Equal(t, 2, oneCount)
	assert.Equal(t, 7, twoCount)
}
