package task

// Capability is the closed set of behaviors a task kind supplies. It is held
// by a single *Task value alongside a Kind tag rather than expressed through
// struct embedding, since the kind set (plain, group, void, background) is
// closed and the variants do not share field layout.
type Capability interface {
	// Prepare performs a cheap, non-blocking check. It must not return
	// Succeeded or Failed.
	Prepare(t *Task) (Status, error)
	// Execute performs the task's work.
	Execute(t *Task) (Status, error)
	// Teardown runs once every direct successor has finished, only if the
	// task's last recorded status was Started.
	Teardown(t *Task) (Status, error)
}

// Kind tags which capability a Task carries.
type Kind string

const (
	KindPlain      Kind = "plain"
	KindGroup      Kind = "group"
	KindVoid       Kind = "void"
	KindBackground Kind = "background"
)

// baseCapability supplies the default Prepare/Teardown behavior shared by
// plain and custom tasks: prepare defaults to Pending, teardown defaults to
// Succeeded. Execute has no sensible default and must be supplied by the
// embedding capability.
type baseCapability struct{}

func (baseCapability) Prepare(*Task) (Status, error)  { return PendingStatus(), nil }
func (baseCapability) Teardown(*Task) (Status, error) { return SucceededStatus(""), nil }

// FuncCapability adapts a plain Execute function into a Capability, using
// the default Prepare/Teardown behavior. This is the ordinary case for leaf
// tasks that do work and have no background lifecycle.
type FuncCapability struct {
	baseCapability
	ExecuteFunc func(t *Task) (Status, error)
}

func (f FuncCapability) Execute(t *Task) (Status, error) {
	if f.ExecuteFunc == nil {
		return SucceededStatus(""), nil
	}
	return f.ExecuteFunc(t)
}
