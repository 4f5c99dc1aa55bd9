package graph

// Reduce computes the transitive reduction of the active view: an edge
// u->v is dropped if v remains reachable from u through some other path of
// at least as strict a kind — a strict edge is only dropped when another
// strict path can replace it, since a non-strict alternate would weaken the
// ordering guarantee the edge carries. When keepExplicit is true, every
// non-implicit edge is retained even if redundant.
func (g *TaskGraph) Reduce(keepExplicit bool) {
	for _, u := range g.activePaths() {
		for v, edge := range g.snapshotSuccessors(u) {
			if !g.isActive(v) {
				continue
			}
			if keepExplicit && !edge.Implicit {
				continue
			}
			if g.reachableExcludingEdge(u, v, edge.Strict) {
				delete(g.successors[u], v)
				delete(g.predecessors[v], u)
			}
		}
	}
}

func (g *TaskGraph) snapshotSuccessors(path string) map[string]*Edge {
	out := make(map[string]*Edge, len(g.successors[path]))
	for k, v := range g.successors[path] {
		out[k] = v
	}
	return out
}

func (g *TaskGraph) activePaths() []string {
	var out []string
	for _, path := range g.order {
		if g.isActive(path) {
			out = append(out, path)
		}
	}
	return out
}

// reachableExcludingEdge reports whether v remains reachable from u without
// using the direct edge u->v. When requireStrict is true, only strict edges
// are followed, so a strict u->v edge is only reported reachable (and so
// only eligible for removal) when a strict alternate path exists; a weaker
// non-strict detour must not be mistaken for a replacement.
func (g *TaskGraph) reachableExcludingEdge(u, v string, requireStrict bool) bool {
	visited := map[string]bool{u: true}
	stack := make([]string, 0, len(g.successors[u]))
	for succ, edge := range g.successors[u] {
		if succ == v {
			continue
		}
		if requireStrict && !edge.Strict {
			continue
		}
		stack = append(stack, succ)
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true
		if n == v {
			return true
		}
		if !g.isActive(n) {
			continue
		}
		for succ, edge := range g.successors[n] {
			if requireStrict && !edge.Strict {
				continue
			}
			stack = append(stack, succ)
		}
	}
	return false
}
