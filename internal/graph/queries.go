package graph

import (
	"sort"

	"github.com/krakenbuild/kraken/internal/task"
	krakenerrors "github.com/krakenbuild/kraken/pkg/errors"
)

// Ready returns every active task with no unsatisfied strict predecessor
// and no recorded status: indegree zero in the subgraph restricted to
// ¬completed, over strict edges only.
func (g *TaskGraph) Ready() []*task.Task {
	var out []*task.Task
	for _, path := range g.order {
		if !g.isActive(path) {
			continue
		}
		if _, has := g.statuses[path]; has {
			continue
		}
		if g.hasUnsatisfiedStrictPredecessor(path) {
			continue
		}
		out = append(out, g.tasks[path])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path() < out[j].Path() })
	return out
}

func (g *TaskGraph) hasUnsatisfiedStrictPredecessor(path string) bool {
	for pred, edge := range g.predecessors[path] {
		if !edge.Strict {
			continue
		}
		if !g.isActive(pred) {
			continue
		}
		if !g.completed[pred] {
			return true
		}
	}
	return false
}

// ExecutionOrder returns a topological sort of the ready subgraph (the
// active view restricted to not-yet-completed tasks), or of the entire
// graph when all is true.
func (g *TaskGraph) ExecutionOrder(all bool) ([]*task.Task, error) {
	indegree := make(map[string]int)
	var nodes []string
	include := func(path string) bool {
		if all {
			return true
		}
		return g.isActive(path) && !g.completed[path]
	}
	for _, path := range g.order {
		if !include(path) {
			continue
		}
		nodes = append(nodes, path)
		indegree[path] = 0
	}
	nodeSet := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		nodeSet[n] = true
	}
	for _, n := range nodes {
		for succ := range g.successors[n] {
			if nodeSet[succ] {
				indegree[succ]++
			}
		}
	}

	var queue []string
	for _, n := range nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	sort.Strings(queue)

	var order []string
	for len(queue) > 0 {
		sort.Strings(queue)
		n := queue[0]
		queue = queue[1:]
		order = append(order, n)
		for succ := range g.successors[n] {
			if !nodeSet[succ] {
				continue
			}
			indegree[succ]--
			if indegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != len(nodes) {
		return nil, krakenerrors.NewCycleError(nodes)
	}

	out := make([]*task.Task, len(order))
	for i, path := range order {
		out[i] = g.tasks[path]
	}
	return out, nil
}

// IsComplete reports whether every active task has an ok status.
func (g *TaskGraph) IsComplete() bool {
	for _, path := range g.order {
		if !g.isActive(path) {
			continue
		}
		if !g.completed[path] {
			return false
		}
	}
	return true
}

// TaskFilter narrows the result of Tasks.
type TaskFilter struct {
	All     bool // include inactive (trimmed-out) tasks
	Pending bool // only tasks with no recorded status
	Failed  bool // only tasks whose last status is Failed
}

// Tasks returns the active tasks (or every task, if filter.All) matching
// filter.
func (g *TaskGraph) Tasks(filter TaskFilter) []*task.Task {
	var out []*task.Task
	for _, path := range g.order {
		if !filter.All && !g.isActive(path) {
			continue
		}
		status, has := g.statuses[path]
		if filter.Pending && has {
			continue
		}
		if filter.Failed && !(has && status.Type == task.Failed) {
			continue
		}
		out = append(out, g.tasks[path])
	}
	return out
}
