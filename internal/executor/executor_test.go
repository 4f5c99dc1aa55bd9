package executor

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krakenbuild/kraken/internal/graph"
	"github.com/krakenbuild/kraken/internal/task"
)

type fakeProject struct {
	path  string
	index map[string]*task.Task
}

func (f *fakeProject) Path() string                        { return f.path }
func (f *fakeProject) Resolve(string) ([]*task.Task, error) { return nil, nil }

func (f *fakeProject) RegisterTask(t *task.Task) {
	if f.index == nil {
		f.index = make(map[string]*task.Task)
	}
	f.index[t.Path()] = t
}

func (f *fakeProject) LookupTask(path string) (*task.Task, bool) {
	t, ok := f.index[path]
	return t, ok
}

func root() *fakeProject { return &fakeProject{path: ":"} }

// runnable returns a VoidTask with skip=false, so Prepare reports Pending
// and Execute actually runs.
func runnable(name string, proj task.ProjectHandle) *task.Task {
	t := task.NewVoidTask(name, proj)
	_ = t.Property("skip").Set(false)
	return t
}

func TestRunExecutesLinearChainInOrderAndSucceeds(t *testing.T) {
	proj := root()

	a := runnable("a", proj)
	b := runnable("b", proj)
	require.NoError(t, b.AddRelationship(a, true, false))
	c := runnable("c", proj)
	require.NoError(t, c.AddRelationship(b, true, false))

	g := graph.New()
	require.NoError(t, g.AddTask(c))

	var mu sync.Mutex
	var order []string
	obs := &recordingObserver{onAfter: func(tk *task.Task, s task.Status) {
		mu.Lock()
		order = append(order, tk.Name)
		mu.Unlock()
	}}

	exec := New(g, obs, SyncTaskExecutor{})
	err := exec.Run(nil)
	require.NoError(t, err)
	require.True(t, g.IsComplete())
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRunReportsBuildErrorOnFailure(t *testing.T) {
	proj := root()

	a := task.New("a", proj, nil, task.FuncCapability{ExecuteFunc: func(*task.Task) (task.Status, error) {
		return task.FailedStatus("boom"), nil
	}}, task.KindPlain)
	b := runnable("b", proj)
	require.NoError(t, b.AddRelationship(a, false, false))

	g := graph.New()
	require.NoError(t, g.AddTask(a))
	require.NoError(t, g.AddTask(b))

	exec := New(g, nil, SyncTaskExecutor{})
	err := exec.Run(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), a.Path())
}

func TestRunTearsDownBackgroundTaskAfterLastStrictSuccessor(t *testing.T) {
	proj := root()

	var mu sync.Mutex
	var teardowns []string
	start := func(name string) task.StartBackgroundFunc {
		return func(t *task.Task, stack *task.CleanupStack) (task.Status, error) {
			stack.Defer(func() error {
				mu.Lock()
				teardowns = append(teardowns, name)
				mu.Unlock()
				return nil
			})
			return task.StartedStatus(), nil
		}
	}
	b1 := task.NewBackgroundTask("b1", proj, nil, start("b1"))
	b2 := task.NewBackgroundTask("b2", proj, nil, start("b2"))

	leaf := runnable("leaf", proj)
	require.NoError(t, leaf.AddRelationship(b1, true, false))
	require.NoError(t, leaf.AddRelationship(b2, true, false))

	g := graph.New()
	require.NoError(t, g.AddTask(leaf))

	exec := New(g, nil, SyncTaskExecutor{})
	err := exec.Run(nil)
	require.NoError(t, err)
	require.True(t, g.IsComplete())

	require.ElementsMatch(t, []string{"b1", "b2"}, teardowns)
	status, ok := g.Status(b1.Path())
	require.True(t, ok)
	require.Equal(t, task.Succeeded, status.Type)
	status, ok = g.Status(b2.Path())
	require.True(t, ok)
	require.Equal(t, task.Succeeded, status.Type)
}

func TestRunTearsDownEveryStartedTaskExactlyOnce(t *testing.T) {
	proj := root()

	teardownCount := map[string]int{}
	var mu sync.Mutex
	start := func(name string) task.StartBackgroundFunc {
		return func(t *task.Task, stack *task.CleanupStack) (task.Status, error) {
			stack.Defer(func() error {
				mu.Lock()
				teardownCount[name]++
				mu.Unlock()
				return nil
			})
			return task.StartedStatus(), nil
		}
	}
	server := task.NewBackgroundTask("server", proj, nil, start("server"))
	client := runnable("client", proj)
	require.NoError(t, client.AddRelationship(server, true, false))

	g := graph.New()
	require.NoError(t, g.AddTask(client))

	exec := New(g, nil, SyncTaskExecutor{})
	require.NoError(t, exec.Run(nil))

	require.Equal(t, 1, teardownCount["server"])
}

func TestRunSurfacesCapturedOutputOnFailureWhenCaptureFull(t *testing.T) {
	proj := root()

	a := task.New("a", proj, nil, task.FuncCapability{ExecuteFunc: func(t *task.Task) (task.Status, error) {
		fmt.Fprint(t.Output(), "building...\nerror: missing dependency")
		return task.FailedStatus("build step failed"), nil
	}}, task.KindPlain)
	a.Capture = task.CaptureFull

	g := graph.New()
	require.NoError(t, g.AddTask(a))

	exec := New(g, nil, SyncTaskExecutor{})
	err := exec.Run(nil)
	require.Error(t, err)

	status, ok := g.Status(a.Path())
	require.True(t, ok)
	require.Contains(t, status.Message, "build step failed")
	require.Contains(t, status.Message, "missing dependency")
}

func TestRunDoesNotSurfaceCapturedOutputOnSuccessWhenCaptureFull(t *testing.T) {
	proj := root()

	a := task.New("a", proj, nil, task.FuncCapability{ExecuteFunc: func(t *task.Task) (task.Status, error) {
		fmt.Fprint(t.Output(), "quiet build log")
		return task.SucceededStatus(""), nil
	}}, task.KindPlain)
	a.Capture = task.CaptureFull

	g := graph.New()
	require.NoError(t, g.AddTask(a))

	exec := New(g, nil, SyncTaskExecutor{})
	require.NoError(t, exec.Run(nil))

	status, ok := g.Status(a.Path())
	require.True(t, ok)
	require.NotContains(t, status.Message, "quiet build log")
}

type recordingObserver struct {
	NopObserver
	onAfter func(t *task.Task, s task.Status)
}

func (r *recordingObserver) AfterExecuteTask(t *task.Task, s task.Status) {
	if r.onAfter != nil {
		r.onAfter(t, s)
	}
}
