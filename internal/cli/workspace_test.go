package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlweave/sqlweave/internal/workspace"
)

func TestDecompose_WritesWorkspaceFile(t *testing.T) {
	dir := t.TempDir()
	sqlPath := filepath.Join(dir, "report.sql")
	require.NoError(t, os.WriteFile(sqlPath,
		[]byte("WITH a AS (SELECT 1), b AS (SELECT * FROM a) SELECT count(*) FROM b"), 0o644))

	out, err := execute(t, "decompose", sqlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "2 cte(s)")

	ws, err := workspace.Load(filepath.Join(dir, "report.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "report", ws.Name)
	require.Len(t, ws.CTEs, 2)
	assert.Equal(t, "a", ws.CTEs[0].Name)
	assert.Equal(t, []string{"a"}, ws.CTEs[1].Dependencies)
	assert.Equal(t, []string{"b"}, ws.MainDeps)
}

func TestDecompose_ExplicitOutputAndName(t *testing.T) {
	dir := t.TempDir()
	sqlPath := filepath.Join(dir, "in.sql")
	outPath := filepath.Join(dir, "out.yaml")
	require.NoError(t, os.WriteFile(sqlPath, []byte("SELECT 1"), 0o644))

	_, err := execute(t, "decompose", sqlPath, "-o", outPath, "--name", "trivial")
	require.NoError(t, err)

	ws, err := workspace.Load(outPath)
	require.NoError(t, err)
	assert.Equal(t, "trivial", ws.Name)
	assert.Empty(t, ws.CTEs)
	assert.Equal(t, "SELECT 1", ws.Main)
}

func TestDecompose_ParseError(t *testing.T) {
	dir := t.TempDir()
	sqlPath := filepath.Join(dir, "bad.sql")
	require.NoError(t, os.WriteFile(sqlPath, []byte("SELEC oops"), 0o644))

	out, err := execute(t, "decompose", sqlPath)
	require.Error(t, err)
	assert.Contains(t, out, ErrCodeParse)
}

func TestWorkspace_SaveListShowRm(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ws.db")

	out, err := execute(t, "workspace", "save", "testdata/report.yaml", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "saved report")

	out, err = execute(t, "workspace", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "report")
	assert.Contains(t, out, "3 cte(s)")

	out, err = execute(t, "workspace", "show", "report", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "name: report")
	assert.Contains(t, out, "monthly_totals")

	out, err = execute(t, "workspace", "rm", "report", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "removed report")

	out, err = execute(t, "workspace", "list", "--db", dbPath)
	require.NoError(t, err)
	assert.NotContains(t, out, "report")
}

func TestWorkspace_ShowUnknown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ws.db")

	out, err := execute(t, "workspace", "show", "absent", "--db", dbPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, ErrCodeNotFound)
}
