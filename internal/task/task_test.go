package task

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeProject is a minimal ProjectHandle used to exercise Task in isolation
// from the project package. It owns its own path -> task index, just as a
// real *project.Context does, so tests never share state with each other.
type fakeProject struct {
	path  string
	tasks map[string][]*Task
	index map[string]*Task
}

func (f *fakeProject) Path() string { return f.path }

func (f *fakeProject) Resolve(selector string) ([]*Task, error) {
	return f.tasks[selector], nil
}

func (f *fakeProject) RegisterTask(t *Task) {
	if f.index == nil {
		f.index = make(map[string]*Task)
	}
	f.index[t.Path()] = t
}

func (f *fakeProject) LookupTask(path string) (*Task, bool) {
	t, ok := f.index[path]
	return t, ok
}

func rootProject() *fakeProject {
	return &fakeProject{path: ":", tasks: map[string][]*Task{}}
}

func TestTaskPathForRootProject(t *testing.T) {
	proj := rootProject()
	tsk := NewVoidTask("build", proj)
	require.Equal(t, ":build", tsk.Path())
}

func TestTaskPathForNestedProject(t *testing.T) {
	proj := &fakeProject{path: ":app", tasks: map[string][]*Task{}}
	tsk := NewVoidTask("build", proj)
	require.Equal(t, ":app:build", tsk.Path())
}

func TestVoidTaskSkipsByDefault(t *testing.T) {
	proj := rootProject()
	tsk := NewVoidTask("noop", proj)
	s, err := tsk.Prepare()
	require.NoError(t, err)
	require.Equal(t, Skipped, s.Type)
}

func TestVoidTaskRunsWhenSkipFalse(t *testing.T) {
	proj := rootProject()
	tsk := NewVoidTask("noop", proj)
	require.NoError(t, tsk.Update(map[string]any{"skip": false}, true))

	s, err := tsk.Prepare()
	require.NoError(t, err)
	require.Equal(t, Pending, s.Type)

	s, err = tsk.Execute()
	require.NoError(t, err)
	require.Equal(t, Succeeded, s.Type)
}

func TestUpdateRejectsUnknownPropertyWhenStrict(t *testing.T) {
	proj := rootProject()
	tsk := NewVoidTask("noop", proj)
	err := tsk.Update(map[string]any{"bogus": 1}, true)
	require.Error(t, err)
}

func TestUpdateIgnoresUnknownPropertyWhenLax(t *testing.T) {
	proj := rootProject()
	tsk := NewVoidTask("noop", proj)
	err := tsk.Update(map[string]any{"bogus": 1}, false)
	require.NoError(t, err)
}

func TestGroupTaskYieldsMembersAsStrictPredecessors(t *testing.T) {
	proj := rootProject()
	a := NewVoidTask("a", proj)
	b := NewVoidTask("b", proj)
	group := NewGroupTask("g", proj, []*Task{a, b})

	rels, err := group.GetRelationships()
	require.NoError(t, err)
	require.Len(t, rels, 2)
	for _, r := range rels {
		require.True(t, r.Strict)
	}
}

func TestGroupTaskPrepareIsSkipped(t *testing.T) {
	proj := rootProject()
	group := NewGroupTask("g", proj, nil)
	s, err := group.Prepare()
	require.NoError(t, err)
	require.Equal(t, Skipped, s.Type)
}

func TestGroupTaskExecuteFails(t *testing.T) {
	proj := rootProject()
	group := NewGroupTask("g", proj, nil)
	_, err := group.Execute()
	require.Error(t, err)
}

func TestExplicitSelectorRelationshipResolvesThroughProject(t *testing.T) {
	proj := rootProject()
	dep := NewVoidTask("dep", proj)
	proj.tasks[":dep"] = []*Task{dep}

	tsk := NewVoidTask("main", proj)
	require.NoError(t, tsk.AddRelationship(":dep", true, false))

	rels, err := tsk.GetRelationships()
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Same(t, dep, rels[0].Other)
	require.True(t, rels[0].Strict)
}

func TestPropertyLineageAcrossTasksBecomesStrictDependency(t *testing.T) {
	proj := rootProject()

	producer := NewVoidTask("producer", proj)
	require.NoError(t, producer.Property("message").Set("built"))
	producer.Finalize()

	// A property.Property[any] itself satisfies supplier.Supplier[any], so
	// wiring the consumer's input directly from the producer's property
	// records a lineage edge rule (a) turns into a strict dependency.
	consumer := NewVoidTask("consumer", proj)
	require.NoError(t, consumer.Property("message").Set(producer.Property("message")))
	consumer.Finalize()

	rels, err := consumer.GetRelationships()
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Same(t, producer, rels[0].Other)
	require.True(t, rels[0].Strict)
}

func TestTaskSupplierBecomesStrictDependency(t *testing.T) {
	proj := rootProject()

	dep := NewVoidTask("dep", proj)
	dep.Finalize()

	consumer := NewVoidTask("consumer", proj)
	require.NoError(t, consumer.Property("skip").Set(AsSupplier(dep)))

	rels, err := consumer.GetRelationships()
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Same(t, dep, rels[0].Other)
	require.True(t, rels[0].Strict)
}

func TestGetDescriptionSubstitutesPropertiesAndEmptyPlaceholder(t *testing.T) {
	proj := rootProject()
	tsk := NewVoidTask("noop", proj)
	tsk.Description = "runs with message={message}"
	require.NoError(t, tsk.Property("message").Set("hi"))

	require.Equal(t, "runs with message=hi", tsk.GetDescription(""))
}

func TestFinalizeFreezesNonOutputProperties(t *testing.T) {
	proj := rootProject()
	tsk := NewVoidTask("noop", proj)
	tsk.Finalize()

	err := tsk.Property("skip").Set(false)
	require.Error(t, err)
}
