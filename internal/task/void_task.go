package task

import "github.com/krakenbuild/kraken/internal/property"

// voidTaskSchema declares a void task's two properties: a boolean skip
// flag, defaulting to true, and a message shown when skipped.
var voidTaskSchema = Schema{
	{Name: "skip", ItemType: property.Bool(), IsOutput: false, Default: true},
	{Name: "message", ItemType: property.String(), IsOutput: false, Default: ""},
}

type voidCapability struct{}

func (voidCapability) Prepare(t *Task) (Status, error) {
	skip, _ := t.Property("skip").Get()
	message, _ := t.Property("message").Get()
	msg, _ := message.(string)
	if s, _ := skip.(bool); s {
		return SkippedStatus(msg), nil
	}
	return PendingStatus(), nil
}

func (voidCapability) Execute(*Task) (Status, error) {
	return SucceededStatus(""), nil
}

func (voidCapability) Teardown(*Task) (Status, error) {
	return SucceededStatus(""), nil
}

// NewVoidTask creates a trivial task used as a grouping placeholder or
// manual gate: when its "skip" property is true (the default) it reports
// Skipped(message) without running; otherwise it reports Pending and its
// Execute is a no-op.
func NewVoidTask(name string, project ProjectHandle) *Task {
	return New(name, project, voidTaskSchema, voidCapability{}, KindVoid)
}
