package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CleanWorkspace(t *testing.T) {
	out, err := execute(t, "validate", "testdata/report.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "ok:")
}

func TestValidate_Cycle(t *testing.T) {
	out, err := execute(t, "validate", "testdata/cycle.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeCycle)
}

// JSON failures carry the cycle path so a UI can highlight it.
func TestValidate_CycleJSON(t *testing.T) {
	out, err := execute(t, "--format", "json", "validate", "testdata/cycle.yaml")
	require.Error(t, err)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string `json:"code"`
			Details struct {
				Valid bool     `json:"valid"`
				Cycle []string `json:"cycle"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeCycle, resp.Error.Code)
	assert.Equal(t, []string{"a", "b", "a"}, resp.Error.Details.Cycle)
	assert.False(t, resp.Error.Details.Valid)
}

func TestOrder_Target(t *testing.T) {
	out, err := execute(t, "order", "testdata/report.yaml", "--target", "active_totals")
	require.NoError(t, err)
	assert.Equal(t, "monthly_totals\nactive_users\nactive_totals\n", out)
}

func TestOrder_All(t *testing.T) {
	out, err := execute(t, "order", "testdata/report.yaml")
	require.NoError(t, err)
	// Seeded alphabetically: active_totals pulls its deps in first.
	assert.Equal(t, "monthly_totals\nactive_users\nactive_totals\n", out)
}

func TestOrder_Cycle(t *testing.T) {
	out, err := execute(t, "order", "testdata/cycle.yaml")
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeCycle)
}

func TestDeps_DirectDependents(t *testing.T) {
	out, err := execute(t, "deps", "testdata/report.yaml", "monthly_totals")
	require.NoError(t, err)
	assert.Equal(t, "active_totals\n", out)
}

func TestDeps_NoDependents(t *testing.T) {
	out, err := execute(t, "deps", "testdata/report.yaml", "active_totals")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing depends on active_totals")
}

func TestGraph_Listing(t *testing.T) {
	out, err := execute(t, "graph", "testdata/report.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "active_totals -> monthly_totals, active_users")
	assert.Contains(t, out, "active_users\n")
	assert.Contains(t, out, "monthly_totals\n")
}
