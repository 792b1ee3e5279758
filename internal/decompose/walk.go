package decompose

import (
	pg_query "github.com/pganalyze/pg_query_go/v6"
	"golang.org/x/text/unicode/norm"
)

// refScan collects CTE references while walking one fragment's subtree.
type refScan struct {
	known map[string]bool
	self  string
	seen  map[string]bool
	refs  []string
}

// referencedCTEs returns the names from known that node references as
// unqualified relations, in first-appearance order.
//
// self names the CTE being scanned; a recursive CTE's reference to
// itself is not a dependency (it needs no separate definition and
// would self-loop the graph). Schema-qualified names are always real
// tables, never CTE references.
func referencedCTEs(node *pg_query.Node, known map[string]bool, self string) []string {
	s := &refScan{known: known, self: self, seen: make(map[string]bool)}
	s.walk(node)
	return s.refs
}

func (s *refScan) record(rv *pg_query.RangeVar) {
	if rv == nil || rv.Relname == "" || rv.Catalogname != "" || rv.Schemaname != "" {
		return
	}
	name := norm.NFC.String(rv.Relname)
	if name == s.self || !s.known[name] || s.seen[name] {
		return
	}
	s.seen[name] = true
	s.refs = append(s.refs, name)
}

func (s *refScan) walkAll(nodes []*pg_query.Node) {
	for _, n := range nodes {
		s.walk(n)
	}
}

// walk descends into the node kinds a relation reference can hide in.
// Nested WITH clauses are deliberately not entered: an inner CTE list
// is a definition scope of its own, and its names shadow ours.
func (s *refScan) walk(node *pg_query.Node) {
	if node == nil {
		return
	}
	switch n := node.Node.(type) {
	case *pg_query.Node_RangeVar:
		s.record(n.RangeVar)

	case *pg_query.Node_SelectStmt:
		sel := n.SelectStmt
		if sel == nil {
			return
		}
		s.walkAll(sel.TargetList)
		s.walkAll(sel.FromClause)
		s.walk(sel.WhereClause)
		s.walkAll(sel.GroupClause)
		s.walk(sel.HavingClause)
		s.walkAll(sel.SortClause)
		s.walk(sel.LimitCount)
		s.walk(sel.LimitOffset)
		if sel.Larg != nil {
			s.walk(&pg_query.Node{Node: &pg_query.Node_SelectStmt{SelectStmt: sel.Larg}})
		}
		if sel.Rarg != nil {
			s.walk(&pg_query.Node{Node: &pg_query.Node_SelectStmt{SelectStmt: sel.Rarg}})
		}

	case *pg_query.Node_InsertStmt:
		if n.InsertStmt != nil {
			s.walk(n.InsertStmt.SelectStmt)
		}

	case *pg_query.Node_UpdateStmt:
		upd := n.UpdateStmt
		if upd == nil {
			return
		}
		s.walkAll(upd.TargetList)
		s.walkAll(upd.FromClause)
		s.walk(upd.WhereClause)

	case *pg_query.Node_DeleteStmt:
		del := n.DeleteStmt
		if del == nil {
			return
		}
		s.walkAll(del.UsingClause)
		s.walk(del.WhereClause)

	case *pg_query.Node_JoinExpr:
		if n.JoinExpr != nil {
			s.walk(n.JoinExpr.Larg)
			s.walk(n.JoinExpr.Rarg)
			s.walk(n.JoinExpr.Quals)
		}

	case *pg_query.Node_RangeSubselect:
		if n.RangeSubselect != nil {
			s.walk(n.RangeSubselect.Subquery)
		}

	case *pg_query.Node_SubLink:
		if n.SubLink != nil {
			s.walk(n.SubLink.Testexpr)
			s.walk(n.SubLink.Subselect)
		}

	case *pg_query.Node_ResTarget:
		if n.ResTarget != nil {
			s.walk(n.ResTarget.Val)
		}

	case *pg_query.Node_AExpr:
		if n.AExpr != nil {
			s.walk(n.AExpr.Lexpr)
			s.walk(n.AExpr.Rexpr)
		}

	case *pg_query.Node_BoolExpr:
		if n.BoolExpr != nil {
			s.walkAll(n.BoolExpr.Args)
		}

	case *pg_query.Node_NullTest:
		if n.NullTest != nil {
			s.walk(n.NullTest.Arg)
		}

	case *pg_query.Node_FuncCall:
		if n.FuncCall != nil {
			s.walkAll(n.FuncCall.Args)
		}

	case *pg_query.Node_CoalesceExpr:
		if n.CoalesceExpr != nil {
			s.walkAll(n.CoalesceExpr.Args)
		}

	case *pg_query.Node_TypeCast:
		if n.TypeCast != nil {
			s.walk(n.TypeCast.Arg)
		}

	case *pg_query.Node_CaseExpr:
		if n.CaseExpr != nil {
			s.walk(n.CaseExpr.Arg)
			s.walkAll(n.CaseExpr.Args)
			s.walk(n.CaseExpr.Defresult)
		}

	case *pg_query.Node_CaseWhen:
		if n.CaseWhen != nil {
			s.walk(n.CaseWhen.Expr)
			s.walk(n.CaseWhen.Result)
		}

	case *pg_query.Node_SortBy:
		if n.SortBy != nil {
			s.walk(n.SortBy.Node)
		}
	}
}
