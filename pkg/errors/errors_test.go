package errors

import (
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmptyErrorWrapsUnderlying(t *testing.T) {
	t.Parallel()

	underlying := stdErrors.New("no upstream value")
	err := NewEmptyError(":proj:task.out", "output never set", underlying)

	var emptyErr *EmptyError
	require.ErrorAs(t, err, &emptyErr)
	require.Equal(t, ":proj:task.out", emptyErr.Supplier)
	require.True(t, stdErrors.Is(err, underlying))
	require.Contains(t, err.Error(), "output never set")
}

func TestTypeErrorListsBranches(t *testing.T) {
	t.Parallel()

	err := NewTypeError(":proj:task.in", []string{"string", "Path"}, 42)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	require.Equal(t, []string{"string", "Path"}, typeErr.Branches)
	require.Contains(t, err.Error(), "string")
	require.Contains(t, err.Error(), "Path")
}

func TestFinalizedErrorNamesProperty(t *testing.T) {
	t.Parallel()

	err := NewFinalizedError(":proj:task.out")

	var finalErr *FinalizedError
	require.ErrorAs(t, err, &finalErr)
	require.Contains(t, err.Error(), "finalized")
}

func TestSelectorErrorIncludesSelector(t *testing.T) {
	t.Parallel()

	err := NewSelectorError(":proj:missing", "no task named \"missing\"")

	var selErr *SelectorError
	require.ErrorAs(t, err, &selErr)
	require.Equal(t, ":proj:missing", selErr.Selector)
}

func TestCycleErrorRendersPath(t *testing.T) {
	t.Parallel()

	err := NewCycleError([]string{":a", ":b", ":a"})

	require.Contains(t, err.Error(), ":a -> :b -> :a")
}

func TestDuplicateErrorNamesOwner(t *testing.T) {
	t.Parallel()

	err := NewDuplicateError(`project ":proj"`, "build")

	require.Contains(t, err.Error(), "build")
}

func TestBuildErrorAggregatesFailedPaths(t *testing.T) {
	t.Parallel()

	err := NewBuildError([]string{":proj:a", ":proj:b"})
	require.Error(t, err)
	require.Contains(t, err.Error(), ":proj:a")
	require.Contains(t, err.Error(), ":proj:b")

	require.Nil(t, NewBuildError(nil))
}
