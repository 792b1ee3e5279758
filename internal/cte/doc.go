// Package cte implements the CTE dependency resolution engine.
//
// A decomposed SQL statement is a mapping of CTE name to fragment, each
// fragment declaring the names of the CTEs it references. The engine
// treats one mapping as the complete universe for a call: it walks the
// implied dependency graph to detect cycles, computes definition order,
// answers reverse-dependency lookups, and recomposes an executable
// WITH statement for any target in the mapping.
//
// Every operation is a pure function of its arguments. The engine never
// mutates a mapping, never retains one across calls, and keeps no state
// of its own, so calls are trivially repeatable and safe to run from
// concurrent callers as long as nobody mutates a mapping mid-call.
//
// Dependency names that are not keys of the mapping are references to
// real tables (or CTEs outside the current editing scope) and are
// skipped during traversal rather than treated as errors. Partial
// mappings, such as a workspace mid-edit, still resolve for the portion
// that is known.
//
// Determinism: wherever the contract says "mapping order" the engine
// iterates keys in sorted order, since Go map iteration is randomized.
// Dependency lists are walked in declared order. Given the same mapping
// the output is byte-for-byte reproducible.
package cte
