package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	testingpkg "github.com/aristath/pricing/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{"PRICING_PORT", "LOG_LEVEL", "DEV_MODE", "FORECAST_DAYS", "PRICING_STRATEGY", "TARGET_OCCUPANCY"} {
		t.Setenv(key, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	clearEnv(t)

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &stdout, &stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeRequest(t *testing.T, name string, body interface{}) string {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, payload, 0o600))
	return path
}

func TestRecommend_FromFile(t *testing.T) {
	path := writeRequest(t, "request.json", map[string]interface{}{
		"history":               testingpkg.NewHistoryRows(testingpkg.HistoryOptions{Days: 90}),
		"current_average_price": 110,
		"holidays":              map[string]string{"2025-07-03": "Regatta"},
	})

	stdout, stderr, err := execute(t, "", "recommend", "--input", path, "--today", "2025-07-01", "--days", "4", "--strategy", "conservative")
	require.NoError(t, err, stderr)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))

	recs := result["recommendations"].([]interface{})
	require.Len(t, recs, 4)
	first := recs[0].(map[string]interface{})
	assert.Contains(t, first["date"], "2025-07-02")
	assert.Equal(t, "conservative", first["strategy"])
	assert.Equal(t, "Regatta", recs[1].(map[string]interface{})["holiday_name"])

	summary := result["summary"].(map[string]interface{})
	assert.Equal(t, float64(4), summary["days"])
	assert.Contains(t, stderr, "Generated pricing recommendations")
}

func TestRecommend_FromStdinAsYAML(t *testing.T) {
	stdin := `current_average_price: 100
today: "2025-06-10"
forecast_days: 2
history:
  - date: "2025-06-01"
    price: 100
    occupancy: 70
  - date: "2025-06-02"
    price: 120
    occupancy: 60
`
	stdout, stderr, err := execute(t, stdin, "recommend", "--output", "yaml")
	require.NoError(t, err, stderr)

	var result map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &result))
	recs := result["recommendations"].([]interface{})
	require.Len(t, recs, 2)
	assert.Equal(t, "balanced", recs[0].(map[string]interface{})["strategy"])
}

func TestRecommend_ContractViolations(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
	}{
		{name: "empty input", stdin: "  ", args: []string{"recommend"}},
		{name: "missing average price", stdin: `{"today": "2025-06-10"}`, args: []string{"recommend"}},
		{name: "zero days", stdin: `{"current_average_price": 100}`, args: []string{"recommend", "--days", "0"}},
		{name: "days above cap", stdin: `{"current_average_price": 100}`, args: []string{"recommend", "--days", "366"}},
		{name: "unknown strategy", stdin: `{"current_average_price": 100}`, args: []string{"recommend", "--strategy", "reckless"}},
		{name: "bad today", stdin: `{"current_average_price": 100}`, args: []string{"recommend", "--today", "10/06/2025"}},
		{name: "unknown output", stdin: `{"current_average_price": 100}`, args: []string{"recommend", "--output", "xml"}},
		{name: "missing file", args: []string{"recommend", "--input", "/nonexistent/request.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, tt.stdin, tt.args...)
			assert.Error(t, err)
			assert.Empty(t, stdout)
		})
	}
}

func TestAnalyze(t *testing.T) {
	path := writeRequest(t, "history.json", map[string]interface{}{
		"history": testingpkg.NewHistoryRows(testingpkg.HistoryOptions{Days: 60}),
	})

	stdout, stderr, err := execute(t, "", "analyze", "-i", path)
	require.NoError(t, err, stderr)

	var analysis map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &analysis))
	assert.Contains(t, analysis, "elasticity")
	assert.Contains(t, analysis, "factors")
	assert.Equal(t, float64(60), analysis["competitor"].(map[string]interface{})["sample_size"])
}

func TestStrategies(t *testing.T) {
	stdout, _, err := execute(t, "", "strategies", "-o", "yaml")
	require.NoError(t, err)

	var listing struct {
		Default    string `yaml:"default"`
		Strategies []struct {
			Name string `yaml:"name"`
		} `yaml:"strategies"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &listing))
	assert.Equal(t, "balanced", listing.Default)
	require.Len(t, listing.Strategies, 3)
	assert.Equal(t, "aggressive", listing.Strategies[2].Name)
}

func TestStrategies_DefaultFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("PRICING_STRATEGY", "aggressive")

	var stdout bytes.Buffer
	cmd := newRootCmd(strings.NewReader(""), &stdout, &bytes.Buffer{})
	cmd.SetArgs([]string{"strategies"})
	require.NoError(t, cmd.Execute())

	var listing map[string]interface{}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &listing))
	assert.Equal(t, "aggressive", listing["default"])
}
