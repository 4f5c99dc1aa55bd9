package graph

import "github.com/krakenbuild/kraken/internal/task"

// Snapshot is a self-contained, (de)serializable encoding of a TaskGraph's
// node set, edge set, and status map — everything internal/persist needs to
// write a state file and later fold it back into a live graph via
// ResultsFrom, without carrying any *task.Task value.
type Snapshot struct {
	Tasks      []string                  `yaml:"tasks"`
	Edges      []SnapshotEdge            `yaml:"edges"`
	Statuses   map[string]SnapshotStatus `yaml:"statuses"`
	Targets    []string                  `yaml:"targets,omitempty"`
	Background []string                  `yaml:"background,omitempty"`
}

// SnapshotEdge is one recorded (from, to) edge with its flags.
type SnapshotEdge struct {
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Strict   bool   `yaml:"strict"`
	Implicit bool   `yaml:"implicit"`
}

// SnapshotStatus mirrors task.Status in a form yaml.v3 can round-trip.
type SnapshotStatus struct {
	Type    string `yaml:"type"`
	Message string `yaml:"message,omitempty"`
}

// Export captures g's current node set, edge set, and status map.
func (g *TaskGraph) Export() Snapshot {
	s := Snapshot{
		Tasks:    append([]string(nil), g.order...),
		Statuses: make(map[string]SnapshotStatus, len(g.statuses)),
		Targets:  g.Targets(),
	}
	for path, status := range g.statuses {
		s.Statuses[path] = SnapshotStatus{Type: string(status.Type), Message: status.Message}
	}
	for path := range g.background {
		s.Background = append(s.Background, path)
	}
	for _, from := range g.order {
		for to, edge := range g.successors[from] {
			s.Edges = append(s.Edges, SnapshotEdge{From: from, To: to, Strict: edge.Strict, Implicit: edge.Implicit})
		}
	}
	return s
}

// FromSnapshot rebuilds a status-only shadow graph from s, suitable as the
// argument to ResultsFrom: it carries the recorded order and statuses but no
// *task.Task values, since a freshly loaded snapshot predates the live task
// objects it will be folded into.
func FromSnapshot(s Snapshot) *TaskGraph {
	g := New()
	g.order = append([]string(nil), s.Tasks...)
	for path, status := range s.Statuses {
		g.statuses[path] = task.NewStatus(task.StatusType(status.Type), status.Message)
	}
	for _, path := range s.Background {
		g.background[path] = true
	}
	for _, t := range s.Targets {
		g.targets[t] = true
	}
	return g
}
