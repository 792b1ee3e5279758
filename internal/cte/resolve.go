package cte

import "strings"

// indentUnit is the fixed indentation applied to nested query bodies
// inside a generated WITH block. Cosmetic, but pinned by golden tests:
// generated SQL must be byte-stable across releases.
const indentUnit = "    "

// Resolve recomposes target into a single executable SQL statement.
//
// When target has no resolvable dependencies its body is returned
// verbatim, with no WITH clause. Otherwise every CTE in definition
// order except target itself becomes a `name AS (...)` block and the
// statement ends with `SELECT * FROM target`.
//
// The SQL text is passed through untouched apart from re-indentation;
// the engine never validates or rewrites it.
func Resolve(target string, m Mapping) (string, error) {
	order, err := OrderFor(target, m)
	if err != nil {
		return "", err
	}
	if len(order) == 1 {
		return m[target].Query, nil
	}
	var b strings.Builder
	writeWithClause(&b, order[:len(order)-1], m)
	b.WriteString("SELECT * FROM ")
	b.WriteString(target)
	return b.String(), nil
}

// Compose renders query prefixed by the WITH clause needed to define
// deps (and everything they depend on) out of m. Dangling names in
// deps are skipped like any other external reference; when nothing in
// deps is resolvable the query is returned verbatim.
//
// This is the whole-statement form used when recomposing a workspace's
// main query, where the trailing SQL is authored text rather than a
// synthesized SELECT.
func Compose(query string, deps []string, m Mapping) (string, error) {
	w := newWalker(m)
	for _, dep := range deps {
		if err := w.visit(dep); err != nil {
			return "", err
		}
	}
	if len(w.order) == 0 {
		return query, nil
	}
	var b strings.Builder
	writeWithClause(&b, w.order, m)
	b.WriteString(query)
	return b.String(), nil
}

// writeWithClause emits `WITH name AS (...)` blocks for names in the
// given order, joined by ",\n", followed by a newline so the main
// query starts at column zero.
func writeWithClause(b *strings.Builder, names []string, m Mapping) {
	b.WriteString("WITH ")
	for i, name := range names {
		if i > 0 {
			b.WriteString(",\n")
		}
		b.WriteString(name)
		b.WriteString(" AS (\n")
		b.WriteString(indent(m[name].Query))
		b.WriteString("\n)")
	}
	b.WriteString("\n")
}

// indent shifts every line of body right by one indent unit.
func indent(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		lines[i] = indentUnit + line
	}
	return strings.Join(lines, "\n")
}
