package loader

import (
	"github.com/krakenbuild/kraken/internal/project"
	"github.com/krakenbuild/kraken/internal/task"
)

// MetadataHolder is implemented by both *task.Task and *project.Project
// (each via its GetMetadata method), letting MetadataOf query either
// uniformly. Attaching metadata stays type-specific, since Task and Project
// expose it under different names (Task.Metadata is a plain field; Project
// wraps its own slice).
type MetadataHolder interface {
	GetMetadata() []any
}

// MetadataOf returns the first object in holder's metadata list assignable
// to T, and whether one was found.
func MetadataOf[T any](holder MetadataHolder) (T, bool) {
	for _, m := range holder.GetMetadata() {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// AttachTaskMetadata appends m to t's metadata list.
func AttachTaskMetadata(t *task.Task, m any) {
	t.Metadata = append(t.Metadata, m)
}

// AttachProjectMetadata appends m to proj's metadata list.
func AttachProjectMetadata(proj *project.Project, m any) {
	proj.AddMetadata(m)
}
