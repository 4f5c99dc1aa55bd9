package executor

import (
	"bytes"
	"fmt"

	"github.com/krakenbuild/kraken/internal/task"
)

// TaskExecutor runs a single task's Execute hook, reporting the resulting
// status through done exactly once. Swappable so tests can run tasks
// synchronously instead of spawning goroutines.
type TaskExecutor interface {
	ExecuteTask(t *task.Task, done func(task.Status))
}

// goroutineTaskExecutor runs Execute in its own goroutine, recovering a
// panic into a Failed status so one misbehaving task can't take down the
// scheduling loop.
type goroutineTaskExecutor struct{}

// NewTaskExecutor returns the default TaskExecutor: one goroutine per task.
func NewTaskExecutor() TaskExecutor { return goroutineTaskExecutor{} }

func (goroutineTaskExecutor) ExecuteTask(t *task.Task, done func(task.Status)) {
	go func() {
		done(safeExecute(t))
	}()
}

// safeExecute runs t.Execute, converting a panic or returned error into a
// Failed status, and redirects t's Output for the duration of the call when
// Capture is not CaptureNone: CaptureFull surfaces the buffered output only
// on failure, CaptureSemi always appends it to the status message.
func safeExecute(t *task.Task) (status task.Status) {
	defer func() {
		if r := recover(); r != nil {
			status = task.FailedStatus(fmt.Sprintf("panic: %v", r))
		}
	}()

	var buf *bytes.Buffer
	if t.Capture != task.CaptureNone {
		buf = &bytes.Buffer{}
		t.SetOutput(buf)
		defer t.SetOutput(nil)
	}

	s, err := t.Execute()
	if err != nil {
		s = task.FailedStatus(err.Error())
	}

	if buf != nil && buf.Len() > 0 {
		if s.IsFailed() || t.Capture == task.CaptureSemi {
			s = task.NewStatus(s.Type, appendCaptured(s.Message, buf.String()))
		}
	}
	return s
}

func appendCaptured(message, captured string) string {
	if message == "" {
		return captured
	}
	return message + "\n" + captured
}

// SyncTaskExecutor runs Execute on the calling goroutine, used by tests that
// need deterministic, non-concurrent scheduling.
type SyncTaskExecutor struct{}

func (SyncTaskExecutor) ExecuteTask(t *task.Task, done func(task.Status)) {
	done(safeExecute(t))
}
