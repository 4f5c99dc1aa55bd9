package graph

import (
	"fmt"

	"github.com/krakenbuild/kraken/internal/task"
)

// Status returns the last recorded status for path, if any.
func (g *TaskGraph) Status(path string) (task.Status, bool) {
	s, ok := g.statuses[path]
	return s, ok
}

// SetStatus records s for t. A task with no current status, or whose
// current status is Started (a background task finishing teardown), may
// always be assigned. Any other reassignment is rejected unless force is
// set, used by ResultsFrom when merging persisted graphs.
func (g *TaskGraph) SetStatus(t *task.Task, s task.Status, force bool) error {
	path := t.Path()
	if current, ok := g.statuses[path]; ok && !force && current.Type != task.Started {
		return fmt.Errorf("graph: task %s already has status %s", path, current)
	}
	g.statuses[path] = s
	if s.IsOk() {
		g.completed[path] = true
	} else {
		delete(g.completed, path)
	}
	if s.IsStarted() {
		g.background[path] = true
	} else {
		delete(g.background, path)
	}
	return nil
}

// IsCompleted reports whether path's last status is ok.
func (g *TaskGraph) IsCompleted(path string) bool { return g.completed[path] }

// IsBackground reports whether path's last status was Started.
func (g *TaskGraph) IsBackground(path string) bool { return g.background[path] }
