package graph

import "github.com/krakenbuild/kraken/internal/task"

// Trim restricts the graph's active view to the transitive strict-
// predecessor closure of goals. An empty goals list restores the full
// graph as the active view. Inactive tasks remain in the graph (so status
// lookups and later re-Trim calls still work) but are excluded from Ready,
// ExecutionOrder, Tasks, and IsComplete.
func (g *TaskGraph) Trim(goals []*task.Task) error {
	g.targets = make(map[string]bool, len(goals))
	for _, t := range goals {
		g.targets[t.Path()] = true
	}

	if len(g.targets) == 0 {
		g.inactive = make(map[string]bool)
		return nil
	}

	active := make(map[string]bool)
	var visit func(path string) error
	visit = func(path string) error {
		if active[path] {
			return nil
		}
		active[path] = true
		for pred, edge := range g.predecessors[path] {
			if edge.Strict {
				if err := visit(pred); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for path := range g.targets {
		if err := visit(path); err != nil {
			return err
		}
	}

	inactive := make(map[string]bool)
	for _, path := range g.order {
		if !active[path] {
			inactive[path] = true
		}
	}
	g.inactive = inactive
	return nil
}

// Targets returns the goal task paths passed to the most recent Trim call,
// or an empty slice if the full graph is the active view.
func (g *TaskGraph) Targets() []string {
	out := make([]string, 0, len(g.targets))
	for path := range g.targets {
		out = append(out, path)
	}
	return out
}

func (g *TaskGraph) isActive(path string) bool {
	return !g.inactive[path]
}

// Exclude marks each of paths inactive directly, layered on top of the
// active view established by the most recent Trim (-x/--exclude).
func (g *TaskGraph) Exclude(paths []string) {
	for _, p := range paths {
		g.inactive[p] = true
	}
}

// ExcludeSubgraph marks each of paths, and every strict predecessor it
// transitively depends on, inactive (-X/--exclude-subgraph).
func (g *TaskGraph) ExcludeSubgraph(paths []string) {
	visited := make(map[string]bool)
	var visit func(path string)
	visit = func(path string) {
		if visited[path] {
			return
		}
		visited[path] = true
		g.inactive[path] = true
		for pred, edge := range g.predecessors[path] {
			if edge.Strict {
				visit(pred)
			}
		}
	}
	for _, p := range paths {
		visit(p)
	}
}
