package project

import (
	"strings"

	"github.com/krakenbuild/kraken/internal/task"
	krakenerrors "github.com/krakenbuild/kraken/pkg/errors"
)

// EventType tags one of the lifecycle events a Context emits while loading
// and finalizing the project tree.
type EventType int

const (
	OnProjectInit EventType = iota
	OnProjectLoaded
	OnProjectBeginFinalize
	OnProjectFinalized
	OnContextBeginFinalize
	OnContextFinalized
	// Any matches every event type; a listener registered under Any is
	// invoked for every emitted event in addition to its own type's
	// listeners.
	Any
)

// Listener is called when an event fires, receiving the project the event
// concerns (nil for context-wide events).
type Listener func(event EventType, p *Project)

// Context owns the root project and the process-wide build state: the
// build directory, the listener registry, the path -> task index used for
// relationship resolution, and the finalized flag. Exactly one Context may
// be "current" per execution thread (see EnterContext).
type Context struct {
	BuildDirectory string

	root      *Project
	listeners map[EventType][]Listener
	finalized bool
	tasks     map[string]*task.Task
}

// NewContext creates a context rooted at a new root project named name,
// directed at projectDirectory, writing build state under buildDirectory.
func NewContext(name, projectDirectory, buildDirectory string) *Context {
	ctx := &Context{
		BuildDirectory: buildDirectory,
		listeners:      make(map[EventType][]Listener),
		tasks:          make(map[string]*task.Task),
	}
	ctx.root = New(name, projectDirectory, nil, ctx)
	ctx.emit(OnProjectInit, ctx.root)
	return ctx
}

// registerTask indexes t by its path, called as each task is finalized.
func (c *Context) registerTask(t *task.Task) { c.tasks[t.Path()] = t }

// lookupTask resolves a task path to the task value registered under it, if
// any task in this context has been finalized under that path yet.
func (c *Context) lookupTask(path string) (*task.Task, bool) {
	t, ok := c.tasks[path]
	return t, ok
}

// RootProject returns the context's root project.
func (c *Context) RootProject() *Project { return c.root }

// IsFinalized reports whether Finalize has run.
func (c *Context) IsFinalized() bool { return c.finalized }

// On registers a listener for the given event type.
func (c *Context) On(event EventType, l Listener) {
	c.listeners[event] = append(c.listeners[event], l)
}

func (c *Context) emit(event EventType, p *Project) {
	for _, l := range c.listeners[event] {
		l(event, p)
	}
	if event != Any {
		for _, l := range c.listeners[Any] {
			l(event, p)
		}
	}
}

// NotifyProjectLoaded emits OnProjectLoaded for p, called once a loader has
// finished populating it.
func (c *Context) NotifyProjectLoaded(p *Project) { c.emit(OnProjectLoaded, p) }

// Finalize finalizes every task in the project tree, emitting the
// begin/end project and context finalize events around the work.
func (c *Context) Finalize() {
	c.emit(OnContextBeginFinalize, nil)
	c.finalizeProject(c.root)
	c.finalized = true
	c.emit(OnContextFinalized, nil)
}

func (c *Context) finalizeProject(p *Project) {
	c.emit(OnProjectBeginFinalize, p)
	p.Finalize()
	c.emit(OnProjectFinalized, p)
	for _, child := range p.ChildProjects() {
		c.finalizeProject(child)
	}
}

// resolve implements the selector resolution algorithm:
//  1. strip a trailing "?", remembering optional;
//  2. a selector with no ":" matches every task in the context named sel;
//  3. otherwise walk colon-separated segments, consuming project names as
//     long as the next segment names a child project;
//  4. an empty remainder (trailing ":") yields the matched project's
//     default tasks;
//  5. a single-segment remainder resolves exactly that task name;
//  6. more than one remaining segment means an intermediate project does
//     not exist.
func (c *Context) resolve(selector string, reference *Project) ([]*task.Task, error) {
	optional := false
	sel := selector
	if strings.HasSuffix(sel, "?") {
		optional = true
		sel = strings.TrimSuffix(sel, "?")
	}

	if !strings.Contains(sel, ":") {
		matches := c.tasksNamed(sel)
		if len(matches) == 0 && !optional {
			return nil, krakenerrors.NewSelectorError(selector, "no task named \""+sel+"\" in context")
		}
		return matches, nil
	}

	segments := strings.Split(sel, ":")
	current := reference
	if segments[0] == "" {
		current = c.root
		segments = segments[1:]
	}

	i := 0
	for i < len(segments)-1 {
		child := current.ChildProject(segments[i])
		if child == nil {
			break
		}
		current = child
		i++
	}
	remainder := segments[i:]

	switch {
	case len(remainder) == 1 && remainder[0] == "":
		return current.DefaultTasks(), nil
	case len(remainder) == 1:
		t := current.Task(remainder[0])
		if t == nil {
			if optional {
				return nil, nil
			}
			return nil, krakenerrors.NewSelectorError(selector, "no task named \""+remainder[0]+"\" in project "+current.Path())
		}
		return []*task.Task{t}, nil
	default:
		if optional {
			return nil, nil
		}
		return nil, krakenerrors.NewSelectorError(selector, "project \""+remainder[0]+"\" does not exist under "+current.Path())
	}
}

func (c *Context) tasksNamed(name string) []*task.Task {
	var out []*task.Task
	for _, t := range c.root.AllTasks() {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

// Resolve resolves selector relative to the root project. A nil/empty
// selector returns every default task across the project tree.
func (c *Context) Resolve(selector string) ([]*task.Task, error) {
	if selector == "" {
		var out []*task.Task
		for _, t := range c.root.AllTasks() {
			if t.Default {
				out = append(out, t)
			}
		}
		return out, nil
	}
	return c.resolve(selector, c.root)
}

// currentContext holds the process-wide "current" context installed by
// EnterContext. Exactly one context is current per execution thread, so
// this is not guarded beyond the executor's own single-threaded
// cooperative scheduling.
var currentContext *Context

// EnterContext installs ctx as the current context for the duration of a
// script load region, returning a release function that must run on every
// exit path. This scoped-acquisition form exists for loaders that need the
// ambient/global context; callers that can thread *Context explicitly
// should prefer doing so.
func EnterContext(ctx *Context) (release func()) {
	previous := currentContext
	currentContext = ctx
	return func() {
		currentContext = previous
	}
}

// Current returns the context installed by the innermost EnterContext call,
// or nil if none is active.
func Current() *Context {
	return currentContext
}
