// Package task implements Task, the logical unit of work scheduled by a
// TaskGraph: its property schema, relationship derivation, status-free
// lifecycle hooks (Prepare/Execute/Teardown), and the GroupTask/VoidTask/
// BackgroundTask kinds built on top of it.
package task

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	krakenlog "github.com/krakenbuild/kraken/internal/logger"
	"github.com/krakenbuild/kraken/internal/property"
	"github.com/krakenbuild/kraken/internal/supplier"
	krakenerrors "github.com/krakenbuild/kraken/pkg/errors"
)

// ProjectHandle is the narrow view of a project a task needs: its path, for
// computing the task's own path; selector resolution, for lazily resolving
// explicit relationship selectors; and the context-scoped path -> task
// index used to resolve property-lineage owners back to task values.
// Kept separate from the project package's concrete type to avoid an
// import cycle (project imports task freely; task never imports project).
type ProjectHandle interface {
	Path() string
	Resolve(selector string) ([]*Task, error)
	RegisterTask(t *Task)
	LookupTask(path string) (*Task, bool)
}

// Task is a logical unit of work: a named, schema-backed property bag owned
// by a project, carrying a capability (what running it actually does) and
// explicit/derived relationships to other tasks.
type Task struct {
	Name        string
	Default     bool
	Description string
	Capture     CaptureMode
	Metadata    []any

	project    ProjectHandle
	kind       Kind
	capability Capability
	logger     *krakenlog.Logger

	properties map[string]*property.Property[any]
	order      []string // property insertion order, for GetDescription
	explicit   []Relationship
	members    []*Task // GroupTask member tasks, empty for every other kind
	output     io.Writer
}

// CaptureMode controls how a task's stdout/stderr is handled during
// Execute.
type CaptureMode int

const (
	// CaptureNone does not capture Output; it is discarded by default.
	CaptureNone CaptureMode = iota
	// CaptureSemi captures Output and always appends it to the status message.
	CaptureSemi
	// CaptureFull captures Output and appends it to the status message only
	// when the task fails.
	CaptureFull
)

// New constructs a task named name, owned by project, with the given
// property schema and capability. kind tags which capability variant this
// is, used by the graph and executor to special-case GroupTask.
func New(name string, project ProjectHandle, schema Schema, capability Capability, kind Kind) *Task {
	t := &Task{
		Name:       name,
		Default:    true,
		Capture:    CaptureFull,
		project:    project,
		kind:       kind,
		capability: capability,
		logger:     krakenlog.Nop(),
	}
	t.properties = schema.build(t.Path())
	t.order = make([]string, 0, len(schema))
	for _, d := range schema {
		t.order = append(t.order, d.Name)
	}
	return t
}

// SetLogger attaches a logger used for diagnostic messages, such as the
// warning Update logs for an unknown property name.
func (t *Task) SetLogger(l *krakenlog.Logger) { t.logger = l }

// Output returns the writer a Capability's Execute should send its
// stdout/stderr-equivalent output to. Defaults to io.Discard; the
// TaskExecutor redirects it to a capture buffer around one Execute call
// when Capture is not CaptureNone.
func (t *Task) Output() io.Writer {
	if t.output == nil {
		return io.Discard
	}
	return t.output
}

// SetOutput redirects Output for the scope of one execution. Passing nil
// restores the default (io.Discard).
func (t *Task) SetOutput(w io.Writer) { t.output = w }

// Path returns the task's fully qualified path: ":name" for a task owned by
// the root project, or "<project-path>:name" otherwise.
func (t *Task) Path() string {
	projectPath := t.project.Path()
	if projectPath == ":" {
		return ":" + t.Name
	}
	return projectPath + ":" + t.Name
}

// Kind reports which capability variant this task carries.
func (t *Task) Kind() Kind { return t.kind }

// Property returns the named property, or nil if the schema does not
// declare it.
func (t *Task) Property(name string) *property.Property[any] { return t.properties[name] }

// GetMetadata returns every object attached to Metadata, satisfying the
// narrow interface internal/loader uses to query metadata uniformly across
// tasks and projects.
func (t *Task) GetMetadata() []any { return t.Metadata }

// Properties returns every property in schema declaration order.
func (t *Task) Properties() []*property.Property[any] {
	out := make([]*property.Property[any], 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.properties[name])
	}
	return out
}

// Update assigns values onto the task's properties by name. If
// raiseOnUnknown is true, a key with no matching property is an error;
// otherwise unknown keys are logged as a warning and skipped.
func (t *Task) Update(values map[string]any, raiseOnUnknown bool) error {
	for name, value := range values {
		p, ok := t.properties[name]
		if !ok {
			if raiseOnUnknown {
				return krakenerrors.NewTypeError(t.Path()+"."+name, nil, value)
			}
			t.logger.Warn(fmt.Sprintf("%s: ignoring unknown property %q", t.Path(), name))
			continue
		}
		if err := p.Set(value); err != nil {
			return err
		}
	}
	return nil
}

// AddRelationship records a relationship to target, which may be a *Task, a
// []*Task, or a selector string resolved lazily when GetRelationships runs.
func (t *Task) AddRelationship(target any, strict, inverse bool) error {
	switch v := target.(type) {
	case *Task:
		t.explicit = append(t.explicit, Relationship{target: v, strict: strict, inverse: inverse})
	case []*Task:
		for _, other := range v {
			t.explicit = append(t.explicit, Relationship{target: other, strict: strict, inverse: inverse})
		}
	case string:
		t.explicit = append(t.explicit, Relationship{selector: v, strict: strict, inverse: inverse})
	default:
		return fmt.Errorf("task: AddRelationship target must be *Task, []*Task, or a selector string, got %T", target)
	}
	return nil
}

// GetRelationships yields every (other, strict, inverse) triple derived
// from: (a) lineage-upstream properties owned by another task (strict
// predecessor), (b) TaskSupplier lineage entries (strict predecessor), and
// (c) explicit relationships added via AddRelationship, resolving any
// selector strings against the owning project.
func (t *Task) GetRelationships() ([]ResolvedRelationship, error) {
	var out []ResolvedRelationship

	seen := make(map[string]bool)
	for _, member := range t.members {
		if !seen[member.Path()] {
			seen[member.Path()] = true
			out = append(out, ResolvedRelationship{Other: member, Strict: true})
		}
	}
	for _, p := range t.properties {
		for _, entry := range supplier.Lineage(p) {
			if other, ok := ownerOf(entry.Supplier, t.Path(), t.project.LookupTask); ok {
				if !seen[other.Path()] {
					seen[other.Path()] = true
					out = append(out, ResolvedRelationship{Other: other, Strict: true})
				}
			}
			if ts, ok := entry.Supplier.(*TaskSupplier); ok {
				if !seen[ts.task.Path()] {
					seen[ts.task.Path()] = true
					out = append(out, ResolvedRelationship{Other: ts.task, Strict: true})
				}
			}
		}
	}

	for _, rel := range t.explicit {
		if rel.target != nil {
			out = append(out, ResolvedRelationship{Other: rel.target, Strict: rel.strict, Inverse: rel.inverse})
			continue
		}
		matches, err := t.project.Resolve(rel.selector)
		if err != nil {
			return nil, err
		}
		for _, other := range matches {
			out = append(out, ResolvedRelationship{Other: other, Strict: rel.strict, Inverse: rel.inverse})
		}
	}

	return out, nil
}

// propertyOwner is implemented by *property.Property[T] via its OwnerPath
// method; used to detect cross-task lineage edges without a type parameter.
type propertyOwner interface {
	OwnerPath() string
}

// ownerOf resolves s's owning task through lookup, the context-scoped index
// behind ProjectHandle.LookupTask, rather than any process-wide state.
func ownerOf(s supplier.Any, selfPath string, lookup func(string) (*Task, bool)) (*Task, bool) {
	owned, ok := s.(propertyOwner)
	if !ok {
		return nil, false
	}
	ownerPath := owned.OwnerPath()
	if ownerPath == selfPath || ownerPath == "" {
		return nil, false
	}
	return lookup(ownerPath)
}

// Finalize freezes every non-output property against further writes, then
// registers the task into its owning context's path index so later
// relationship resolution (ownerOf) can map a lineage owner path back to
// this task.
func (t *Task) Finalize() {
	for _, p := range t.properties {
		if !p.IsOutput() {
			p.Finalize()
		}
	}
	t.project.RegisterTask(t)
}

// Prepare runs the task's cheap readiness check. A nil capability status
// defaults to Pending.
func (t *Task) Prepare() (Status, error) {
	s, err := t.capability.Prepare(t)
	if err != nil {
		return Status{}, err
	}
	if s.Type == "" {
		s = PendingStatus()
	}
	return s, nil
}

// Execute performs the task's work. A nil capability status defaults to
// Succeeded.
func (t *Task) Execute() (Status, error) {
	s, err := t.capability.Execute(t)
	if err != nil {
		return Status{}, err
	}
	if s.Type == "" {
		s = SucceededStatus("")
	}
	return s, nil
}

// Teardown is invoked once every direct successor has finished, only if the
// task's last recorded status was Started.
func (t *Task) Teardown() (Status, error) {
	s, err := t.capability.Teardown(t)
	if err != nil {
		return Status{}, err
	}
	if s.Type == "" {
		s = SucceededStatus("")
	}
	return s, nil
}

// GetDescription formats Description, substituting "{name}" placeholders
// with the corresponding property's current value. Path properties render
// relative to the working directory when possible; unset properties render
// as "<empty>".
func (t *Task) GetDescription(cwd string) string {
	if t.Description == "" {
		return ""
	}
	out := t.Description
	for _, name := range t.order {
		placeholder := "{" + name + "}"
		if !strings.Contains(out, placeholder) {
			continue
		}
		out = strings.ReplaceAll(out, placeholder, t.renderProperty(name, cwd))
	}
	return out
}

func (t *Task) renderProperty(name, cwd string) string {
	p := t.properties[name]
	if p == nil || p.IsVoid() {
		return "<empty>"
	}
	v, err := p.Get()
	if err != nil {
		return "<empty>"
	}
	if pathVal, ok := v.(property.Path); ok {
		if cwd != "" {
			if rel, err := relPath(cwd, string(pathVal)); err == nil {
				return rel
			}
		}
		return string(pathVal)
	}
	return fmt.Sprintf("%v", v)
}

func relPath(base, target string) (string, error) {
	return filepath.Rel(base, target)
}
