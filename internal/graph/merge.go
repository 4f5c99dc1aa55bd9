package graph

import "github.com/krakenbuild/kraken/internal/task"

// ResultsFrom merges other's recorded statuses into g. For a task present
// in both, the not-ok status wins when they disagree; otherwise whichever
// side has a status is used, preferring g's own when both agree.
func (g *TaskGraph) ResultsFrom(other *TaskGraph) error {
	for _, path := range other.order {
		t := g.tasks[path]
		if t == nil {
			continue
		}
		a, hasA := g.statuses[path]
		b, hasB := other.statuses[path]
		if !hasB {
			continue
		}
		var resolved = b
		if hasA && a.Type != b.Type {
			if a.IsOk() {
				resolved = b
			} else {
				resolved = a
			}
		} else if hasA {
			resolved = a
		}
		if err := g.SetStatus(t, resolved, true); err != nil {
			return err
		}
	}
	return nil
}

// Resume clears the status of every background task that is a direct
// strict predecessor of a still-pending task, so it reruns before that
// task can execute.
func (g *TaskGraph) Resume() {
	for path := range g.background {
		usedByPending := false
		for succ, edge := range g.successors[path] {
			if !edge.Strict {
				continue
			}
			if _, has := g.statuses[succ]; !has {
				usedByPending = true
				break
			}
		}
		if usedByPending {
			delete(g.statuses, path)
			delete(g.completed, path)
			delete(g.background, path)
		}
	}
}

// Restart drops every recorded status, allowing a full re-execution.
func (g *TaskGraph) Restart() {
	g.statuses = make(map[string]task.Status)
	g.completed = make(map[string]bool)
	g.background = make(map[string]bool)
}
