package cte

// walker runs one depth-first traversal over a mapping. The node state
// sets live per walker, never across calls, so repeated operations on
// the same mapping cannot observe each other.
//
// Node states: absent from both sets = unvisited, in inProgress = on
// the current DFS path, in done = recorded. An edge into an in-progress
// node is a cycle.
type walker struct {
	m          Mapping
	inProgress map[string]bool
	done       map[string]bool
	path       []string
	order      []string
}

func newWalker(m Mapping) *walker {
	return &walker{
		m:          m,
		inProgress: make(map[string]bool),
		done:       make(map[string]bool),
	}
}

// visit records name and everything it depends on in post-order, so
// every dependency lands in w.order strictly before its dependents.
// Names that are not mapping keys are external references and are
// skipped without emitting a node.
func (w *walker) visit(name string) error {
	c, ok := w.m[name]
	if !ok {
		return nil
	}
	if w.done[name] {
		return nil
	}
	if w.inProgress[name] {
		// Trim the DFS chain to the loop itself: nodes above the
		// revisited one are on the path but not on the cycle.
		start := 0
		for i, n := range w.path {
			if n == name {
				start = i
				break
			}
		}
		cycle := append(append([]string(nil), w.path[start:]...), name)
		return newCycleError(name, cycle)
	}

	w.inProgress[name] = true
	w.path = append(w.path, name)
	for _, dep := range c.Dependencies {
		if err := w.visit(dep); err != nil {
			return err
		}
	}
	w.path = w.path[:len(w.path)-1]
	delete(w.inProgress, name)

	w.done[name] = true
	w.order = append(w.order, name)
	return nil
}

// OrderFor returns the definition order for target: every CTE in the
// result appears before all CTEs that depend on it, and target is the
// final element. Only the subgraph reachable from target is visited.
//
// Fails with NOT_FOUND when target is not a key of m and with
// CIRCULAR_DEPENDENCY when the reachable subgraph contains a cycle.
func OrderFor(target string, m Mapping) ([]string, error) {
	if _, ok := m[target]; !ok {
		return nil, newNotFoundError(target)
	}
	w := newWalker(m)
	if err := w.visit(target); err != nil {
		return nil, err
	}
	return w.order, nil
}

// OrderAll returns a definition order covering every CTE in the
// mapping, seeded from each key in sorted order. Fails with
// CIRCULAR_DEPENDENCY when any component of the graph contains a cycle,
// including components disconnected from each other.
func OrderAll(m Mapping) ([]string, error) {
	w := newWalker(m)
	for _, name := range sortedNames(m) {
		if err := w.visit(name); err != nil {
			return nil, err
		}
	}
	return w.order, nil
}

// Validate reports whether the whole mapping is free of dependency
// cycles. It visits every node, so a cycle disconnected from any
// particular query is still caught. This is the yes/no form of the
// check; the ordering operations surface the same condition as an
// error instead.
func Validate(m Mapping) bool {
	_, err := OrderAll(m)
	return err == nil
}
