package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeInputs(t *testing.T) (csvPath, cfgPath string) {
	t.Helper()
	dir := t.TempDir()
	noise := []float64{0.3, -0.2, 0.1, -0.4, 0.2, 0.0, -0.1, 0.4, -0.3, 0.1}
	var sb strings.Builder
	sb.WriteString("x,y\n")
	for i, e := range noise {
		y := float64(10 * (i + 1))
		fmt.Fprintf(&sb, "%g,%g\n", y/2+e, y)
	}
	csvPath = filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sb.String()), 0o600))

	cfgPath = filepath.Join(dir, "regselect.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("cv_folds: 2\nmax_rounds: 5\nlog_level: error\n"), 0o600))
	return csvPath, cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand_JSON(t *testing.T) {
	csvPath, cfgPath := writeInputs(t)
	plotPath := filepath.Join(t.TempDir(), "cv.png")

	out, err := execute(t, "run", "--config", cfgPath, "--data", csvPath, "--target", "y", "--json", "--plot", plotPath)
	require.NoError(t, err)

	var rep struct {
		Evaluations []struct {
			ModelName      string   `json:"model_name"`
			RSquared       *float64 `json:"r_squared"`
			SelectedRounds *int     `json:"selected_rounds"`
		} `json:"evaluations"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.Len(t, rep.Evaluations, 2)
	assert.Equal(t, "linear", rep.Evaluations[0].ModelName)
	require.NotNil(t, rep.Evaluations[0].RSquared)
	assert.Greater(t, *rep.Evaluations[0].RSquared, 0.95)
	require.NotNil(t, rep.Evaluations[1].SelectedRounds)
	assert.LessOrEqual(t, *rep.Evaluations[1].SelectedRounds, 5)

	_, err = os.Stat(plotPath)
	assert.NoError(t, err)
}

func TestRunCommand_Table(t *testing.T) {
	csvPath, cfgPath := writeInputs(t)
	out, err := execute(t, "run", "--config", cfgPath, "--data", csvPath, "--target", "y")
	require.NoError(t, err)
	assert.Contains(t, out, "Held-out evaluation")
	assert.Contains(t, out, "boosted")
}

func TestRunCommand_MissingTarget(t *testing.T) {
	csvPath, cfgPath := writeInputs(t)
	_, err := execute(t, "run", "--config", cfgPath, "--data", csvPath, "--target", "z")
	assert.Error(t, err)

	_, err = execute(t, "run", "--config", cfgPath, "--data", csvPath)
	assert.Error(t, err)
}

func TestCVCommand(t *testing.T) {
	csvPath, cfgPath := writeInputs(t)
	out, err := execute(t, "cv", "--config", cfgPath, "--data", csvPath, "--target", "y")
	require.NoError(t, err)
	assert.Contains(t, out, "selected round")
	assert.Contains(t, out, "2 folds")
}

func TestConfigCommand(t *testing.T) {
	_, cfgPath := writeInputs(t)
	t.Setenv("REGSELECT_MAX_DEPTH", "4")

	out, err := execute(t, "config", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "cv_folds: 2")
	assert.Contains(t, out, "max_depth: 4")
}
