package harness

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden scenarios pin the exact trace byte for byte; the remaining
// scenario files assert on trace shape and final state only.
var goldenScenarios = map[string]bool{
	"counter_counts_to_two": true,
	"gate_opens_once":       true,
}

func TestScenarioFiles(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "scenario name must match file name")

			var result *Result
			if goldenScenarios[name] {
				result = RunWithGolden(t, scenario)
			} else {
				result, err = Run(scenario)
				require.NoError(t, err)
			}
			assert.True(t, result.Passed(), "errors: %v", result.Errors)
		})
	}
}

func TestGoldenFilesExist(t *testing.T) {
	for name := range goldenScenarios {
		_, err := os.Stat(filepath.Join("testdata", "golden", name+".golden"))
		assert.NoError(t, err, "golden file for %s", name)
	}
}
