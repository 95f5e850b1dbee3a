package machines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleFieldNamesSorted(t *testing.T) {
	b := buildMachine(t, "counter", Config{})
	assert.Equal(t, []string{"count", "count_to", "done", "pump"}, b.FieldNames())
}

func TestBundleBoolAndStringSetters(t *testing.T) {
	light := buildMachine(t, "trafficlight", Config{})
	require.NoError(t, light.Set("color", ColorGreen))
	color, err := light.Get("color")
	require.NoError(t, err)
	assert.Equal(t, ColorGreen, color)
	assert.ErrorContains(t, light.Set("color", 3), "expected string")

	counter := buildMachine(t, "counter", Config{})
	require.NoError(t, counter.Set("done", true))
	assert.ErrorContains(t, counter.Set("done", "yes"), "expected bool")
}

func TestIntValueCoercions(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int
		wantErr bool
	}{
		{"int", 42, 42, false},
		{"int64", int64(7), 7, false},
		{"uint64", uint64(9), 9, false},
		{"whole float", float64(3), 3, false},
		{"fractional float", 3.5, 0, true},
		{"string", "3", 0, true},
		{"bool", true, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := intValue(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIntParamDefaults(t *testing.T) {
	got, err := intParam(nil, "missing", 11)
	require.NoError(t, err)
	assert.Equal(t, 11, got)

	got, err = intParam(map[string]any{"n": 4}, "n", 11)
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	_, err = intParam(map[string]any{"n": "x"}, "n", 11)
	assert.ErrorContains(t, err, `param "n"`)
}
