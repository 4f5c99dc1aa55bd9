// Package graph implements TaskGraph: the directed graph of task paths
// built from every task's relationships, with transitive-closure trimming,
// transitive reduction, a per-task status store, and the queries the
// executor needs (ready set, execution order, completion).
package graph

import (
	"sort"

	"github.com/krakenbuild/kraken/internal/task"
	krakenerrors "github.com/krakenbuild/kraken/pkg/errors"
)

// Edge carries the flags accumulated for one (from, to) pair: from must (if
// Strict) or should (if not) run before to. Implicit marks an edge added by
// group-dependency unfurling rather than a direct relationship.
type Edge struct {
	Strict   bool
	Implicit bool
}

// TaskGraph is a directed graph of task paths, built from every task's
// GetRelationships, plus a status store recording each task's last result.
type TaskGraph struct {
	tasks map[string]*task.Task
	// successors[from][to] is the edge meaning "from must/should run before to".
	successors   map[string]map[string]*Edge
	predecessors map[string]map[string]*Edge
	order        []string // insertion order, for deterministic iteration

	targets  map[string]bool // empty means "entire graph is the target"
	inactive map[string]bool

	statuses   map[string]task.Status
	background map[string]bool
	completed  map[string]bool
}

// New creates an empty graph.
func New() *TaskGraph {
	return &TaskGraph{
		tasks:        make(map[string]*task.Task),
		successors:   make(map[string]map[string]*Edge),
		predecessors: make(map[string]map[string]*Edge),
		targets:      make(map[string]bool),
		inactive:     make(map[string]bool),
		statuses:     make(map[string]task.Status),
		background:   make(map[string]bool),
		completed:    make(map[string]bool),
	}
}

// Task returns the node for path, or nil.
func (g *TaskGraph) Task(path string) *task.Task { return g.tasks[path] }

// AddTask inserts t and, recursively, every task reachable through its
// relationships, adding an edge per relationship oriented by its Inverse
// flag. When either endpoint of a newly added edge is a GroupTask and the
// edge does not come from group membership, implicit edges are added
// unfurling the group into its members so real ordering is enforced between
// the leaf tasks, not just between the group nodes.
func (g *TaskGraph) AddTask(t *task.Task) error {
	if _, ok := g.tasks[t.Path()]; ok {
		return nil
	}
	g.tasks[t.Path()] = t
	g.order = append(g.order, t.Path())

	rels, err := t.GetRelationships()
	if err != nil {
		return err
	}
	for _, rel := range rels {
		if err := g.AddTask(rel.Other); err != nil {
			return err
		}
		from, to := rel.Other.Path(), t.Path()
		if rel.Inverse {
			from, to = t.Path(), rel.Other.Path()
		}
		if err := g.addEdge(from, to, rel.Strict, false); err != nil {
			return err
		}
		isMember := false
		for _, m := range t.Members() {
			if m == rel.Other {
				isMember = true
				break
			}
		}
		if !isMember {
			g.unfurl(from, to, rel.Strict)
		}
	}
	return nil
}

func (g *TaskGraph) addEdge(from, to string, strict, implicit bool) error {
	if from == to {
		return nil
	}
	if g.successors[from] == nil {
		g.successors[from] = make(map[string]*Edge)
	}
	if g.predecessors[to] == nil {
		g.predecessors[to] = make(map[string]*Edge)
	}
	if existing, ok := g.successors[from][to]; ok {
		existing.Strict = existing.Strict || strict
		existing.Implicit = existing.Implicit && implicit
		return nil
	}
	edge := &Edge{Strict: strict, Implicit: implicit}
	g.successors[from][to] = edge
	g.predecessors[to][from] = edge
	if strict {
		if path, found := g.findPath(to, from); found {
			return krakenerrors.NewCycleError(append(path, to))
		}
	}
	return nil
}

// unfurl adds implicit edges when from or to is a GroupTask: every leaf
// task reachable by fully expanding from's members gets an implicit edge to
// every direct member of to (or to itself, if to is not a group).
func (g *TaskGraph) unfurl(from, to string, strict bool) {
	fromLeaves := g.leafUnfurl(from, make(map[string]bool))
	toMembers := g.directMembers(to)

	isUnfurl := len(fromLeaves) > 1 || len(fromLeaves) == 1 && fromLeaves[0] != from
	isUnfurl = isUnfurl || len(toMembers) > 1 || len(toMembers) == 1 && toMembers[0] != to
	if !isUnfurl {
		return
	}

	for _, leaf := range fromLeaves {
		for _, member := range toMembers {
			if leaf == member {
				continue
			}
			_ = g.addEdge(leaf, member, strict, true)
		}
	}
}

func (g *TaskGraph) directMembers(path string) []string {
	t := g.tasks[path]
	if t == nil || t.Kind() != task.KindGroup || len(t.Members()) == 0 {
		return []string{path}
	}
	out := make([]string, 0, len(t.Members()))
	for _, m := range t.Members() {
		out = append(out, m.Path())
	}
	return out
}

func (g *TaskGraph) leafUnfurl(path string, visiting map[string]bool) []string {
	if visiting[path] {
		return nil
	}
	visiting[path] = true
	t := g.tasks[path]
	if t == nil || t.Kind() != task.KindGroup || len(t.Members()) == 0 {
		return []string{path}
	}
	var out []string
	for _, m := range t.Members() {
		out = append(out, g.leafUnfurl(m.Path(), visiting)...)
	}
	return out
}

// findPath returns a strict-edge path from "from" to "to", if one exists,
// used to detect and report a cycle before committing a new strict edge.
func (g *TaskGraph) findPath(from, to string) ([]string, bool) {
	if from == to {
		return []string{from}, true
	}
	visited := make(map[string]bool)
	var walk func(n string, path []string) ([]string, bool)
	walk = func(n string, path []string) ([]string, bool) {
		if visited[n] {
			return nil, false
		}
		visited[n] = true
		path = append(path, n)
		for succ, edge := range g.successors[n] {
			if !edge.Strict {
				continue
			}
			if succ == to {
				return append(append([]string(nil), path...), succ), true
			}
			if found, ok := walk(succ, path); ok {
				return found, true
			}
		}
		return nil, false
	}
	return walk(from, nil)
}

// Paths returns every task path in the graph, sorted.
func (g *TaskGraph) Paths() []string {
	out := append([]string(nil), g.order...)
	sort.Strings(out)
	return out
}

// Edge returns the edge from pred to succ, or nil if none exists.
func (g *TaskGraph) Edge(pred, succ string) *Edge {
	if m, ok := g.successors[pred]; ok {
		return m[succ]
	}
	return nil
}

// Predecessors returns every task path with an edge into path.
func (g *TaskGraph) Predecessors(path string) []string {
	var out []string
	for pred := range g.predecessors[path] {
		out = append(out, pred)
	}
	sort.Strings(out)
	return out
}

// Successors returns every task path path has an edge into.
func (g *TaskGraph) Successors(path string) []string {
	var out []string
	for succ := range g.successors[path] {
		out = append(out, succ)
	}
	sort.Strings(out)
	return out
}
