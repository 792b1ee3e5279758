package decompose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlweave/sqlweave/internal/cte"
)

func TestDecompose_NoWithClause(t *testing.T) {
	d, err := Decompose("SELECT * FROM users")
	require.NoError(t, err)

	assert.Empty(t, d.CTEs)
	assert.Empty(t, d.Order)
	assert.Equal(t, "SELECT * FROM users", d.Main.Query)
	assert.Empty(t, d.Main.Dependencies)
}

func TestDecompose_SingleCTE(t *testing.T) {
	d, err := Decompose("WITH a AS (SELECT 1) SELECT * FROM a")
	require.NoError(t, err)

	require.Equal(t, []string{"a"}, d.Order)
	require.Contains(t, d.CTEs, "a")
	assert.Equal(t, "SELECT 1", d.CTEs["a"].Query)
	assert.Empty(t, d.CTEs["a"].Dependencies)

	assert.Equal(t, "SELECT * FROM a", d.Main.Query)
	assert.Equal(t, []string{"a"}, d.Main.Dependencies)
}

func TestDecompose_DependencyChain(t *testing.T) {
	d, err := Decompose(
		"WITH a AS (SELECT 1), b AS (SELECT * FROM a) SELECT * FROM b")
	require.NoError(t, err)

	require.Equal(t, []string{"a", "b"}, d.Order)
	assert.Empty(t, d.CTEs["a"].Dependencies)
	assert.Equal(t, []string{"a"}, d.CTEs["b"].Dependencies)
	assert.Equal(t, []string{"b"}, d.Main.Dependencies)
}

// Real tables referenced alongside CTEs do not become dependencies.
func TestDecompose_ExternalTablesIgnored(t *testing.T) {
	d, err := Decompose(
		"WITH recent AS (SELECT * FROM events WHERE ts > now()) " +
			"SELECT * FROM recent JOIN users u ON u.id = recent.user_id")
	require.NoError(t, err)

	assert.Empty(t, d.CTEs["recent"].Dependencies)
	assert.Equal(t, []string{"recent"}, d.Main.Dependencies)
}

// A schema-qualified name is a real table even when it collides with a
// CTE name.
func TestDecompose_SchemaQualifiedIsNotACTE(t *testing.T) {
	d, err := Decompose(
		"WITH users AS (SELECT 1) SELECT * FROM public.users")
	require.NoError(t, err)

	assert.Empty(t, d.Main.Dependencies)
}

func TestDecompose_ReferenceInsideSubquery(t *testing.T) {
	d, err := Decompose(
		"WITH banned AS (SELECT id FROM moderation), " +
			"visible AS (SELECT * FROM posts WHERE author_id NOT IN (SELECT id FROM banned)) " +
			"SELECT * FROM visible")
	require.NoError(t, err)

	assert.Equal(t, []string{"banned"}, d.CTEs["visible"].Dependencies)
}

func TestDecompose_ColumnAliases(t *testing.T) {
	d, err := Decompose("WITH t(x, y) AS (SELECT 1, 2) SELECT * FROM t")
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, d.CTEs["t"].Columns)
}

// A recursive CTE's self-reference is not a dependency; it needs no
// separate definition and would self-loop the graph.
func TestDecompose_RecursiveSelfReference(t *testing.T) {
	d, err := Decompose(
		"WITH RECURSIVE seq(n) AS (SELECT 1 UNION ALL SELECT n + 1 FROM seq WHERE n < 5) " +
			"SELECT * FROM seq")
	require.NoError(t, err)

	assert.Empty(t, d.CTEs["seq"].Dependencies)
	assert.Equal(t, []string{"seq"}, d.Main.Dependencies)
}

func TestDecompose_DuplicateName(t *testing.T) {
	_, err := Decompose("WITH a AS (SELECT 1), a AS (SELECT 2) SELECT * FROM a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate cte name")
}

func TestDecompose_ParseError(t *testing.T) {
	_, err := Decompose("SELEC 1")
	require.Error(t, err)
}

func TestDecompose_MultipleStatements(t *testing.T) {
	_, err := Decompose("SELECT 1; SELECT 2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one statement")
}

// The mapping a decomposition produces feeds straight into the engine:
// recomposing the main query over it yields an executable statement.
func TestDecompose_RoundTripCompose(t *testing.T) {
	d, err := Decompose(
		"WITH a AS (SELECT 1), b AS (SELECT * FROM a) SELECT count(*) FROM b")
	require.NoError(t, err)

	sql, err := cte.Compose(d.Main.Query, d.Main.Dependencies, d.CTEs)
	require.NoError(t, err)
	assert.Contains(t, sql, "WITH a AS (")
	assert.Contains(t, sql, "b AS (")
	assert.Contains(t, sql, "SELECT count(*) FROM b")
}
