// Package decompose splits a SQL statement into a main query plus its
// named CTE fragments, the form the resolution engine works on.
//
// Parsing uses the PostgreSQL parser (pg_query_go), so anything
// Postgres accepts decomposes, and each fragment's body is the
// deparsed AST rather than a substring of the input. Dependency lists
// are derived by walking each fragment for unqualified table
// references that name another CTE of the same statement.
package decompose

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
	"golang.org/x/text/unicode/norm"

	"github.com/sqlweave/sqlweave/internal/cte"
)

// Decomposition is one statement split into engine form.
type Decomposition struct {
	// Main is the statement with its WITH clause removed.
	Main Fragment

	// CTEs is the mapping the engine consumes.
	CTEs cte.Mapping

	// Order preserves WITH-list declaration order, which the mapping
	// cannot.
	Order []string
}

// Fragment is a query body plus the CTE names it references.
type Fragment struct {
	Query        string
	Dependencies []string
}

// Decompose parses sql (exactly one statement) and splits it into a
// main query and a CTE mapping.
//
// A statement with no WITH clause yields an empty mapping and the
// whole statement as Main. Duplicate CTE names are an error because a
// mapping cannot hold both definitions. CTE names are NFC-normalized
// so visually identical identifiers land on the same key.
func Decompose(sql string) (*Decomposition, error) {
	parsed, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("parse statement: %w", err)
	}
	if len(parsed.Stmts) != 1 {
		return nil, fmt.Errorf("expected exactly one statement, got %d", len(parsed.Stmts))
	}
	stmt := parsed.Stmts[0].Stmt

	d := &Decomposition{CTEs: cte.Mapping{}}

	with := withClauseOf(stmt)
	if with != nil {
		known := make(map[string]bool, len(with.Ctes))
		for _, node := range with.Ctes {
			expr := node.GetCommonTableExpr()
			if expr == nil {
				continue
			}
			known[norm.NFC.String(expr.Ctename)] = true
		}

		for _, node := range with.Ctes {
			expr := node.GetCommonTableExpr()
			if expr == nil {
				continue
			}
			name := norm.NFC.String(expr.Ctename)
			if _, dup := d.CTEs[name]; dup {
				return nil, fmt.Errorf("duplicate cte name %q", name)
			}
			body, err := deparse(expr.Ctequery)
			if err != nil {
				return nil, fmt.Errorf("deparse cte %q: %w", name, err)
			}
			d.CTEs[name] = &cte.CTE{
				Name:         name,
				Query:        body,
				Dependencies: referencedCTEs(expr.Ctequery, known, name),
				Columns:      columnAliases(expr.Aliascolnames),
			}
			d.Order = append(d.Order, name)
		}

		detachWithClause(stmt)
	}

	mainSQL, err := deparse(stmt)
	if err != nil {
		return nil, fmt.Errorf("deparse main query: %w", err)
	}
	names := make(map[string]bool, len(d.CTEs))
	for name := range d.CTEs {
		names[name] = true
	}
	d.Main = Fragment{
		Query:        mainSQL,
		Dependencies: referencedCTEs(stmt, names, ""),
	}
	return d, nil
}

// withClauseOf pulls the WITH clause off any statement kind that can
// carry one.
func withClauseOf(node *pg_query.Node) *pg_query.WithClause {
	switch n := node.Node.(type) {
	case *pg_query.Node_SelectStmt:
		if n.SelectStmt != nil {
			return n.SelectStmt.WithClause
		}
	case *pg_query.Node_InsertStmt:
		if n.InsertStmt != nil {
			return n.InsertStmt.WithClause
		}
	case *pg_query.Node_UpdateStmt:
		if n.UpdateStmt != nil {
			return n.UpdateStmt.WithClause
		}
	case *pg_query.Node_DeleteStmt:
		if n.DeleteStmt != nil {
			return n.DeleteStmt.WithClause
		}
	}
	return nil
}

// detachWithClause strips the WITH clause so the remainder deparses as
// the bare main query.
func detachWithClause(node *pg_query.Node) {
	switch n := node.Node.(type) {
	case *pg_query.Node_SelectStmt:
		if n.SelectStmt != nil {
			n.SelectStmt.WithClause = nil
		}
	case *pg_query.Node_InsertStmt:
		if n.InsertStmt != nil {
			n.InsertStmt.WithClause = nil
		}
	case *pg_query.Node_UpdateStmt:
		if n.UpdateStmt != nil {
			n.UpdateStmt.WithClause = nil
		}
	case *pg_query.Node_DeleteStmt:
		if n.DeleteStmt != nil {
			n.DeleteStmt.WithClause = nil
		}
	}
}

// deparse renders a statement-level node back to SQL text.
func deparse(node *pg_query.Node) (string, error) {
	return pg_query.Deparse(&pg_query.ParseResult{
		Stmts: []*pg_query.RawStmt{{Stmt: node}},
	})
}

// columnAliases converts an Aliascolnames list to plain strings.
func columnAliases(nodes []*pg_query.Node) []string {
	var cols []string
	for _, n := range nodes {
		if s := n.GetString_(); s != nil {
			cols = append(cols, s.Sval)
		}
	}
	return cols
}
