package task

// CleanupStack accumulates cleanup callbacks registered while a background
// task starts up, mirroring Python's contextlib.ExitStack. Callbacks run in
// last-registered-first order when Close is called.
type CleanupStack struct {
	funcs []func() error
}

// Defer registers fn to run when the stack is closed.
func (c *CleanupStack) Defer(fn func() error) {
	c.funcs = append(c.funcs, fn)
}

// Close runs every registered callback in reverse order, returning the first
// error encountered (after still running the remaining callbacks).
func (c *CleanupStack) Close() error {
	var first error
	for i := len(c.funcs) - 1; i >= 0; i-- {
		if err := c.funcs[i](); err != nil && first == nil {
			first = err
		}
	}
	c.funcs = nil
	return first
}

// StartBackgroundFunc is implemented by a background task's concrete work:
// it registers cleanup on stack and returns the status to report. Returning
// Started keeps the stack open until Teardown; any other status (or a
// non-nil error) closes it immediately.
type StartBackgroundFunc func(t *Task, stack *CleanupStack) (Status, error)

// backgroundCapability opens a CleanupStack, invokes StartFunc, and keeps the
// stack open only when the hook reports Started; Teardown closes it.
type backgroundCapability struct {
	baseCapability
	StartFunc StartBackgroundFunc
	stack     *CleanupStack
}

func (b *backgroundCapability) Execute(t *Task) (Status, error) {
	stack := &CleanupStack{}
	status, err := b.StartFunc(t, stack)
	if err != nil {
		_ = stack.Close()
		return Status{}, err
	}
	if status.Type != Started {
		_ = stack.Close()
		return status, nil
	}
	b.stack = stack
	return status, nil
}

func (b *backgroundCapability) Teardown(*Task) (Status, error) {
	if b.stack == nil {
		return SucceededStatus(""), nil
	}
	err := b.stack.Close()
	b.stack = nil
	if err != nil {
		return FailedStatus(err.Error()), nil
	}
	return SucceededStatus(""), nil
}

// NewBackgroundTask creates a task whose Execute opens a scoped cleanup
// region, calls start, and on a Started result leaves the region open until
// Teardown closes it.
func NewBackgroundTask(name string, project ProjectHandle, schema Schema, start StartBackgroundFunc) *Task {
	return New(name, project, schema, &backgroundCapability{StartFunc: start}, KindBackground)
}
