package cte

import "sort"

// CTE is one named query fragment of a decomposed SQL statement.
//
// Query holds the body only, without the `WITH name AS (...)` wrapper.
// Dependencies lists the names the body references; entries that are not
// keys of the surrounding Mapping refer to real tables and are ignored
// by the graph algorithms. Description and Columns are editor metadata
// with no effect on resolution.
type CTE struct {
	Name         string   `json:"name" yaml:"name"`
	Query        string   `json:"query" yaml:"query"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty"`
	Columns      []string `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// Mapping is the universe of CTEs visible to one resolution call,
// keyed by name. The engine only reads it; ownership stays with the
// caller, and callers in concurrent hosts must not mutate a mapping
// while a call is walking it.
type Mapping map[string]*CTE

// Adjacency projects the mapping to name -> declared dependency list.
//
// The lists are shallow copies of each CTE's Dependencies as declared,
// including names that are not keys of the mapping. Callers that want
// the resolvable graph should use OrderFor/OrderAll instead; this is
// for introspection (graph display) where external references matter.
func Adjacency(m Mapping) map[string][]string {
	adj := make(map[string][]string, len(m))
	for name, c := range m {
		deps := make([]string, len(c.Dependencies))
		copy(deps, c.Dependencies)
		adj[name] = deps
	}
	return adj
}

// Dependents returns the names of CTEs whose dependency list contains
// name, in sorted order. Only direct dependents; no traversal.
func Dependents(name string, m Mapping) []string {
	var out []string
	for _, candidate := range sortedNames(m) {
		for _, dep := range m[candidate].Dependencies {
			if dep == name {
				out = append(out, candidate)
				break
			}
		}
	}
	return out
}

// sortedNames returns the mapping keys in sorted order. All "whole
// mapping" iteration goes through this so output is reproducible.
func sortedNames(m Mapping) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
