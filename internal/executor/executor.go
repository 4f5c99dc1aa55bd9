// Package executor implements GraphExecutor: the ready-set scheduling loop
// that drives a graph.TaskGraph to completion, one task at a time as it
// becomes ready, tearing down background tasks once their last successor
// finishes.
package executor

import (
	"sync/atomic"

	"github.com/krakenbuild/kraken/internal/graph"
	"github.com/krakenbuild/kraken/internal/task"
	krakenerrors "github.com/krakenbuild/kraken/pkg/errors"
)

// GraphExecutor drives g to completion: it repeatedly takes the ready set,
// dispatches each task, and waits for the next completion before taking the
// ready set again, since nothing new can become ready until a status is
// recorded.
type GraphExecutor struct {
	g            *graph.TaskGraph
	observer     Observer
	taskExecutor TaskExecutor
	rem          *rememberer
	interrupted  atomic.Bool
}

// New builds a GraphExecutor over g. A nil observer defaults to NopObserver;
// a nil taskExecutor defaults to the goroutine-per-task executor.
func New(g *graph.TaskGraph, observer Observer, taskExecutor TaskExecutor) *GraphExecutor {
	if observer == nil {
		observer = NopObserver{}
	}
	if taskExecutor == nil {
		taskExecutor = NewTaskExecutor()
	}
	return &GraphExecutor{g: g, observer: observer, taskExecutor: taskExecutor, rem: newRememberer()}
}

// Interrupt requests the executor stop dispatching new tasks once the
// currently in-flight ones finish. Safe to call from another goroutine,
// e.g. a signal handler.
func (e *GraphExecutor) Interrupt() { e.interrupted.Store(true) }

type doneEvent struct {
	t      *task.Task
	status task.Status
}

// Run executes every active task in g until none remain ready, then tears
// down whatever background tasks are still open. If goals is non-empty, g
// is first trimmed to their transitive strict-predecessor closure. Returns
// a BuildError naming every task whose final status was not ok, or nil.
func (e *GraphExecutor) Run(goals []*task.Task) error {
	if len(goals) > 0 {
		if err := e.g.Trim(goals); err != nil {
			return err
		}
	}

	e.observer.BeforeExecuteGraph(e.g)

	// Buffered so a TaskExecutor that reports done synchronously (as
	// SyncTaskExecutor does, for deterministic tests) never blocks trying to
	// send before the dispatch loop below reaches its receive.
	doneCh := make(chan doneEvent, len(e.g.Paths())+1)
	inFlight := 0
	dispatched := make(map[string]bool)

	// Once interrupted, nothing new is dispatched, but the loop keeps
	// receiving until every task already in flight has reported back.
	for inFlight > 0 || (!e.g.IsComplete() && !e.interrupted.Load()) {
		if !e.interrupted.Load() {
			for _, t := range e.g.Ready() {
				if dispatched[t.Path()] {
					continue
				}
				dispatched[t.Path()] = true
				if e.dispatchOne(t, doneCh) {
					inFlight++
				}
			}
		}
		if inFlight == 0 {
			break
		}
		ev := <-doneCh
		inFlight--
		delete(dispatched, ev.t.Path())
		e.observer.AfterExecuteTask(ev.t, ev.status)
		e.onDone(ev.t, ev.status)
	}

	e.teardownRemaining()
	e.observer.AfterExecuteGraph(e.g)

	var failedPaths []string
	for _, t := range e.g.Tasks(graph.TaskFilter{}) {
		if !e.g.IsCompleted(t.Path()) {
			failedPaths = append(failedPaths, t.Path())
		}
	}
	return krakenerrors.NewBuildError(failedPaths)
}

// dispatchOne runs t's Prepare step and either resolves its status inline
// (Skipped, UpToDate, or a Prepare failure) or, if Prepare reports Pending,
// hands Execute to the task executor and returns true to mark t in flight.
// BeforeExecuteTask only fires once Prepare has actually resolved to
// Pending, immediately before dispatch; a task that short-circuits at
// Prepare never sees an execute hook.
func (e *GraphExecutor) dispatchOne(t *task.Task, doneCh chan<- doneEvent) bool {
	e.observer.BeforePrepareTask(t)

	prepStatus, err := t.Prepare()
	if err != nil {
		prepStatus = task.FailedStatus(err.Error())
		e.observer.AfterPrepareTask(t, prepStatus)
		e.onDone(t, prepStatus)
		return false
	}
	e.observer.AfterPrepareTask(t, prepStatus)
	if prepStatus.Type != task.Pending {
		e.onDone(t, prepStatus)
		return false
	}

	e.observer.BeforeExecuteTask(t)
	e.taskExecutor.ExecuteTask(t, func(s task.Status) {
		doneCh <- doneEvent{t: t, status: s}
	})
	return true
}

// onDone records t's status and either registers t as a background task
// awaiting teardown or releases any background task whose last outstanding
// successor t happened to be.
func (e *GraphExecutor) onDone(t *task.Task, status task.Status) {
	_ = e.g.SetStatus(t, status, false)

	if status.IsInterrupted() {
		e.interrupted.Store(true)
	}

	if status.IsStarted() {
		if e.rem.register(t.Path(), e.g.Successors(t.Path())) {
			e.teardownOne(t)
		}
		return
	}

	for _, path := range e.rem.markDone(t.Path()) {
		if bt := e.g.Task(path); bt != nil {
			e.teardownOne(bt)
		}
	}
}

func (e *GraphExecutor) teardownOne(t *task.Task) {
	status, err := t.Teardown()
	if err != nil {
		status = task.FailedStatus(err.Error())
	}
	_ = e.g.SetStatus(t, status, true)
}

// teardownRemaining closes out every background task that never saw its
// last successor finish: first whatever the rememberer still tracked from
// this run, then any task the graph still marks Started (e.g. left over
// from a resumed build) that this run never touched.
func (e *GraphExecutor) teardownRemaining() {
	handled := make(map[string]bool)
	for _, path := range e.rem.pending() {
		if t := e.g.Task(path); t != nil {
			e.teardownOne(t)
			handled[path] = true
		}
	}
	for _, path := range e.g.Paths() {
		if handled[path] || !e.g.IsBackground(path) {
			continue
		}
		if t := e.g.Task(path); t != nil {
			e.teardownOne(t)
		}
	}
}
