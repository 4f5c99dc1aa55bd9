package task

import krakenerrors "github.com/krakenbuild/kraken/pkg/errors"

// groupCapability implements Capability for a GroupTask: it never executes
// its own action, only its members.
type groupCapability struct{}

func (groupCapability) Prepare(*Task) (Status, error) {
	return SkippedStatus("is a GroupTask"), nil
}

func (groupCapability) Execute(t *Task) (Status, error) {
	return Status{}, krakenerrors.NewSelectorError(t.Path(), "GroupTask.Execute must never be invoked")
}

func (groupCapability) Teardown(*Task) (Status, error) {
	return SucceededStatus(""), nil
}

// NewGroupTask creates a task that carries a list of member tasks. Its
// GetRelationships yields every member as a strict predecessor, in addition
// to any explicitly added relationships. A group's own Default flag is
// independent of its members'.
func NewGroupTask(name string, project ProjectHandle, members []*Task) *Task {
	t := New(name, project, nil, groupCapability{}, KindGroup)
	t.members = members
	return t
}

// Members returns the group's member tasks.
func (t *Task) Members() []*Task { return t.members }

// AddMember appends a task to a GroupTask's member list.
func (t *Task) AddMember(member *Task) { t.members = append(t.members, member) }
