package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoCounter(t *testing.T) {
	out, err := execute(t, "demo", "counter", "--param", "count_to=2", "--id", "demo-counter")
	require.NoError(t, err)

	assert.Contains(t, out, "machine: counter")
	assert.Contains(t, out, "counter.finish on demo-counter")
	assert.Contains(t, out, "count: 2")
	assert.Contains(t, out, "PASS")
}

func TestDemoJSONOutput(t *testing.T) {
	out, err := execute(t, "demo", "counter", "--param", "count_to=1", "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report resultReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "counter", report.Machine)
	assert.True(t, report.Passed)
	assert.NotEmpty(t, report.Trace)
	assert.EqualValues(t, 1, report.Final["count"].(float64))
}

func TestDemoUnknownMachine(t *testing.T) {
	_, err := execute(t, "demo", "unobtainium")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown machine "unobtainium"`)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestDemoBadParam(t *testing.T) {
	_, err := execute(t, "demo", "counter", "--param", "count_to")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"count_to=5", "fast=true", "color=red"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"count_to": 5,
		"fast":     true,
		"color":    "red",
	}, params)

	empty, err := parseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = parseParams([]string{"=5"})
	assert.Error(t, err)
}
