package workspace

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlweave/sqlweave/internal/cte"
	"github.com/sqlweave/sqlweave/internal/decompose"
)

func TestNew_AssignsUUIDv7(t *testing.T) {
	ws := New("report")
	parsed, err := uuid.Parse(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Equal(t, "report", ws.Name)
	assert.False(t, ws.CreatedAt.IsZero())
}

func TestMapping_KeyedByName(t *testing.T) {
	ws := New("report")
	ws.CTEs = []*cte.CTE{
		{Name: "a", Query: "SELECT 1"},
		{Name: "b", Query: "SELECT * FROM a", Dependencies: []string{"a"}},
	}

	m, err := ws.Mapping()
	require.NoError(t, err)
	require.Len(t, m, 2)
	assert.Same(t, ws.CTEs[0], m["a"])
}

func TestMapping_RejectsDuplicateNames(t *testing.T) {
	ws := New("report")
	ws.CTEs = []*cte.CTE{
		{Name: "a", Query: "SELECT 1"},
		{Name: "a", Query: "SELECT 2"},
	}

	_, err := ws.Mapping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate cte name")
}

func TestMapping_RejectsEmptyName(t *testing.T) {
	ws := New("report")
	ws.CTEs = []*cte.CTE{{Query: "SELECT 1"}}

	_, err := ws.Mapping()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty name")
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ws := New("report")
	ws.Main = "SELECT * FROM b"
	ws.MainDeps = []string{"b"}
	ws.CTEs = []*cte.CTE{
		{Name: "a", Query: "SELECT 1", Description: "seed"},
		{Name: "b", Query: "SELECT * FROM a", Dependencies: []string{"a"}},
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, ws.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ws.ID, loaded.ID)
	assert.Equal(t, ws.Main, loaded.Main)
	assert.Equal(t, ws.MainDeps, loaded.MainDeps)
	require.Len(t, loaded.CTEs, 2)
	assert.Equal(t, "seed", loaded.CTEs[0].Description)
	assert.Equal(t, []string{"a"}, loaded.CTEs[1].Dependencies)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestFromDecomposition_KeepsDeclarationOrder(t *testing.T) {
	d, err := decompose.Decompose(
		"WITH zeta AS (SELECT 1), alpha AS (SELECT * FROM zeta) SELECT * FROM alpha")
	require.NoError(t, err)

	ws := FromDecomposition("imported", d)
	require.Len(t, ws.CTEs, 2)
	assert.Equal(t, "zeta", ws.CTEs[0].Name)
	assert.Equal(t, "alpha", ws.CTEs[1].Name)
	assert.Equal(t, []string{"alpha"}, ws.MainDeps)
}
