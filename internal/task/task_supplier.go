package task

import "github.com/krakenbuild/kraken/internal/supplier"

// TaskSupplier is a supplier.Supplier[*Task] wrapping a reference to another
// task. Assigning one into a property records a strict dependency edge on
// that task, per GetRelationships' rule (b): "every TaskSupplier resolves to
// its task, strict predecessor".
type TaskSupplier struct {
	task *Task
}

// NewTaskSupplier wraps t so it can be assigned into a property, establishing
// a strict dependency on t without requiring t's own output properties to be
// consumed.
func NewTaskSupplier(t *Task) *TaskSupplier { return &TaskSupplier{task: t} }

func (s *TaskSupplier) Get() (*Task, error)         { return s.task, nil }
func (s *TaskSupplier) DerivedFrom() []supplier.Any { return nil }
func (s *TaskSupplier) IsVoid() bool                { return false }
func (s *TaskSupplier) Describe() string            { return s.task.Path() }

// AsSupplier wraps t as a type-erased supplier suitable for assignment into
// a Property[any], establishing the strict dependency edge described above.
func AsSupplier(t *Task) supplier.Supplier[any] {
	return supplier.Erase[*Task](NewTaskSupplier(t))
}
