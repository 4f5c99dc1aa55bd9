package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krakenbuild/kraken/internal/task"
)

func TestExportFromSnapshotRoundTripsStatusesIntoResultsFrom(t *testing.T) {
	proj := root()

	a := task.NewVoidTask("a", proj)
	b := task.NewVoidTask("b", proj)
	require.NoError(t, b.AddRelationship(a, true, false))

	saved := New()
	require.NoError(t, saved.AddTask(b))
	require.NoError(t, saved.SetStatus(a, task.SucceededStatus(""), false))
	require.NoError(t, saved.SetStatus(b, task.FailedStatus("boom"), false))

	snap := saved.Export()
	require.Len(t, snap.Tasks, 2)
	require.Len(t, snap.Edges, 1)
	require.Equal(t, "SUCCEEDED", snap.Statuses[a.Path()].Type)
	require.Equal(t, "FAILED", snap.Statuses[b.Path()].Type)

	fresh := New()
	require.NoError(t, fresh.AddTask(b))
	require.NoError(t, fresh.ResultsFrom(FromSnapshot(snap)))

	status, ok := fresh.Status(a.Path())
	require.True(t, ok)
	require.Equal(t, task.Succeeded, status.Type)
	status, ok = fresh.Status(b.Path())
	require.True(t, ok)
	require.Equal(t, task.Failed, status.Type)
}
