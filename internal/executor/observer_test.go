package executor

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krakenbuild/kraken/internal/graph"
	"github.com/krakenbuild/kraken/internal/task"
)

var errBoom = errors.New("boom")

type hookRecorder struct {
	NopObserver
	mu    sync.Mutex
	calls []string
}

func (r *hookRecorder) record(name, path string) {
	r.mu.Lock()
	r.calls = append(r.calls, name+":"+path)
	r.mu.Unlock()
}

func (r *hookRecorder) BeforePrepareTask(t *task.Task)               { r.record("beforePrepare", t.Path()) }
func (r *hookRecorder) AfterPrepareTask(t *task.Task, _ task.Status) { r.record("afterPrepare", t.Path()) }
func (r *hookRecorder) BeforeExecuteTask(t *task.Task)               { r.record("beforeExecute", t.Path()) }
func (r *hookRecorder) AfterExecuteTask(t *task.Task, _ task.Status) { r.record("afterExecute", t.Path()) }

func TestObserverSeesPrepareAndExecuteHooksForPendingTask(t *testing.T) {
	proj := root()
	a := runnable("a", proj)

	g := graph.New()
	require.NoError(t, g.AddTask(a))

	rec := &hookRecorder{}
	exec := New(g, rec, SyncTaskExecutor{})
	require.NoError(t, exec.Run(nil))

	require.Equal(t, []string{
		"beforePrepare::a",
		"afterPrepare::a",
		"beforeExecute::a",
		"afterExecute::a",
	}, rec.calls)
}

func TestObserverSkipsExecuteHooksForTaskThatNeverReachesPending(t *testing.T) {
	proj := root()
	// NewVoidTask defaults to skip=true, so Prepare resolves to Skipped and
	// the task never reaches Execute.
	a := task.NewVoidTask("a", proj)

	g := graph.New()
	require.NoError(t, g.AddTask(a))

	rec := &hookRecorder{}
	exec := New(g, rec, SyncTaskExecutor{})
	require.NoError(t, exec.Run(nil))

	require.Equal(t, []string{
		"beforePrepare::a",
		"afterPrepare::a",
	}, rec.calls)
}

// failingPrepareCapability fails Prepare outright, so dispatchOne must
// resolve and record a status without ever reaching Execute.
type failingPrepareCapability struct{ err error }

func (c failingPrepareCapability) Prepare(*task.Task) (task.Status, error) { return task.Status{}, c.err }
func (failingPrepareCapability) Execute(*task.Task) (task.Status, error)   { return task.Status{}, nil }
func (failingPrepareCapability) Teardown(*task.Task) (task.Status, error)  { return task.Status{}, nil }

func TestObserverSkipsExecuteHooksWhenPrepareFails(t *testing.T) {
	proj := root()
	failing := task.New("failing", proj, nil, failingPrepareCapability{err: errBoom}, task.KindPlain)

	g := graph.New()
	require.NoError(t, g.AddTask(failing))

	rec := &hookRecorder{}
	exec := New(g, rec, SyncTaskExecutor{})
	require.Error(t, exec.Run(nil))

	require.Equal(t, []string{
		"beforePrepare::failing",
		"afterPrepare::failing",
	}, rec.calls)
}
