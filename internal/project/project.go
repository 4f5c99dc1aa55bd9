// Package project implements Project and Context: the tree of named tasks
// and child projects a build is organized into, the standard task groups
// every project is seeded with, and the selector resolution algorithm used
// to turn a CLI goal string into a concrete set of tasks.
package project

import (
	krakenlog "github.com/krakenbuild/kraken/internal/logger"
	"github.com/krakenbuild/kraken/internal/task"
	krakenerrors "github.com/krakenbuild/kraken/pkg/errors"
)

// standardGroups lists the pre-created task groups every project carries,
// in the order later groups strictly depend on earlier ones: fmt runs
// before lint, lint before check, and so on through deploy. A project's own
// tasks join whichever group they declare (or none).
var standardGroups = []string{
	"fmt", "lint", "check", "build", "test", "integrationTest", "apply", "publish", "deploy",
}

// member is either a *task.Task or a *Project, stored uniformly so a
// project's member map can hold both.
type member struct {
	task    *task.Task
	project *Project
}

// Project is one node in the build tree: a named collection of tasks and
// child projects, seeded with the standard task groups.
type Project struct {
	Name      string
	Directory string

	parent   *Project
	context  *Context
	members  map[string]member
	order    []string
	metadata []any
	logger   *krakenlog.Logger
}

// New creates a project named name under parent (nil for the root project),
// owned by ctx, seeding the standard groups and their inter-group strict
// ordering.
func New(name, directory string, parent *Project, ctx *Context) *Project {
	p := &Project{
		Name:      name,
		Directory: directory,
		parent:    parent,
		context:   ctx,
		members:   make(map[string]member),
		logger:    krakenlog.Nop(),
	}

	var previous *task.Task
	for _, groupName := range standardGroups {
		group := task.NewGroupTask(groupName, p, nil)
		if previous != nil {
			_ = group.AddRelationship(previous, true, false)
		}
		p.addTask(groupName, group)
		previous = group
	}

	return p
}

// SetLogger attaches a logger used for diagnostic messages.
func (p *Project) SetLogger(l *krakenlog.Logger) { p.logger = l }

// Path returns the project's colon-separated path: ":" for the root
// project, "parent-path:name" for any child.
func (p *Project) Path() string {
	if p.parent == nil {
		return ":"
	}
	if p.parent.Path() == ":" {
		return ":" + p.Name
	}
	return p.parent.Path() + ":" + p.Name
}

// Parent returns the project's parent, or nil for the root project.
func (p *Project) Parent() *Project { return p.parent }

// Context returns the owning context.
func (p *Project) Context() *Context { return p.context }

// AddMetadata attaches an arbitrary metadata object to the project.
func (p *Project) AddMetadata(m any) { p.metadata = append(p.metadata, m) }

// Metadata returns every attached metadata object.
func (p *Project) Metadata() []any { return p.metadata }

// GetMetadata satisfies loader.MetadataHolder alongside task.Task's method
// of the same name.
func (p *Project) GetMetadata() []any { return p.metadata }

func (p *Project) addTask(name string, t *task.Task) {
	if _, exists := p.members[name]; !exists {
		p.order = append(p.order, name)
	}
	p.members[name] = member{task: t}
}

// AddTask registers t as a member of this project under its own Name.
// Returns an error if a member with that name already exists.
func (p *Project) AddTask(t *task.Task) error {
	if _, exists := p.members[t.Name]; exists {
		return krakenerrors.NewDuplicateError(p.Path(), t.Name)
	}
	p.addTask(t.Name, t)
	return nil
}

// AddChildProject registers child as a member sub-project.
func (p *Project) AddChildProject(child *Project) error {
	if _, exists := p.members[child.Name]; exists {
		return krakenerrors.NewDuplicateError(p.Path(), child.Name)
	}
	p.order = append(p.order, child.Name)
	p.members[child.Name] = member{project: child}
	return nil
}

// Group returns the named standard (or user-created) group task, or nil.
func (p *Project) Group(name string) *task.Task {
	if m, ok := p.members[name]; ok {
		return m.task
	}
	return nil
}

// Task returns the named member task (not a sub-project), or nil.
func (p *Project) Task(name string) *task.Task {
	if m, ok := p.members[name]; ok {
		return m.task
	}
	return nil
}

// ChildProject returns the named member sub-project, or nil.
func (p *Project) ChildProject(name string) *Project {
	if m, ok := p.members[name]; ok {
		return m.project
	}
	return nil
}

// Tasks returns every task directly owned by this project, in declaration
// order, excluding child projects.
func (p *Project) Tasks() []*task.Task {
	var out []*task.Task
	for _, name := range p.order {
		if m := p.members[name]; m.task != nil {
			out = append(out, m.task)
		}
	}
	return out
}

// ChildProjects returns every direct child project, in declaration order.
func (p *Project) ChildProjects() []*Project {
	var out []*Project
	for _, name := range p.order {
		if m := p.members[name]; m.project != nil {
			out = append(out, m.project)
		}
	}
	return out
}

// AllTasks returns every task owned transitively by this project and its
// descendants.
func (p *Project) AllTasks() []*task.Task {
	out := append([]*task.Task{}, p.Tasks()...)
	for _, child := range p.ChildProjects() {
		out = append(out, child.AllTasks()...)
	}
	return out
}

// DefaultTasks returns every directly owned task whose Default flag is set.
func (p *Project) DefaultTasks() []*task.Task {
	var out []*task.Task
	for _, t := range p.Tasks() {
		if t.Default {
			out = append(out, t)
		}
	}
	return out
}

// Finalize calls Finalize on every task owned transitively by this project.
func (p *Project) Finalize() {
	for _, t := range p.AllTasks() {
		t.Finalize()
	}
}

// Resolve implements task.ProjectHandle: it resolves selector relative to
// this project, per the algorithm in Context.Resolve.
func (p *Project) Resolve(selector string) ([]*task.Task, error) {
	return p.context.resolve(selector, p)
}

// RegisterTask implements task.ProjectHandle: it indexes t in the owning
// context's path -> task table, shared by every project in the tree.
func (p *Project) RegisterTask(t *task.Task) { p.context.registerTask(t) }

// LookupTask implements task.ProjectHandle: it resolves a task path against
// the owning context's path -> task table.
func (p *Project) LookupTask(path string) (*task.Task, bool) { return p.context.lookupTask(path) }
