package project

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krakenbuild/kraken/internal/task"
	krakenerrors "github.com/krakenbuild/kraken/pkg/errors"
)

func TestRootProjectPath(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	require.Equal(t, ":", ctx.RootProject().Path())
}

func TestChildProjectPath(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	child := New("app", "/src/app", ctx.RootProject(), ctx)
	require.NoError(t, ctx.RootProject().AddChildProject(child))

	require.Equal(t, ":app", child.Path())
}

func TestStandardGroupsSeededInOrder(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	root := ctx.RootProject()

	for _, name := range standardGroups {
		require.NotNil(t, root.Group(name), "missing standard group %q", name)
	}

	rels, err := root.Group("build").GetRelationships()
	require.NoError(t, err)
	require.Len(t, rels, 1)
	require.Equal(t, "check", rels[0].Other.Name)
}

func TestAddTaskRejectsDuplicateName(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	root := ctx.RootProject()

	require.NoError(t, root.AddTask(task.NewVoidTask("compile", root)))
	err := root.AddTask(task.NewVoidTask("compile", root))
	require.Error(t, err)
	require.ErrorAs(t, err, new(*krakenerrors.DuplicateError))
}

func TestAddChildProjectRejectsDuplicateName(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	root := ctx.RootProject()

	require.NoError(t, root.AddChildProject(New("app", "/src/app", root, ctx)))
	err := root.AddChildProject(New("app", "/src/app", root, ctx))
	require.Error(t, err)
	require.ErrorAs(t, err, new(*krakenerrors.DuplicateError))
}

func TestDefaultTasksOnlyIncludesDefaultFlagged(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	root := ctx.RootProject()

	def := task.NewVoidTask("release", root)
	nonDef := task.NewVoidTask("debug", root)
	nonDef.Default = false
	require.NoError(t, root.AddTask(def))
	require.NoError(t, root.AddTask(nonDef))

	names := make([]string, 0)
	for _, tk := range root.DefaultTasks() {
		names = append(names, tk.Name)
	}
	require.Contains(t, names, "release")
	require.NotContains(t, names, "debug")
}

func TestResolveBareNameMatchesAcrossContext(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	root := ctx.RootProject()
	app := New("app", "/src/app", root, ctx)
	require.NoError(t, root.AddChildProject(app))

	require.NoError(t, app.AddTask(task.NewVoidTask("compile", app)))

	matches, err := ctx.Resolve("compile")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, ":app:compile", matches[0].Path())
}

func TestResolveAbsoluteSelectorWalksChildProjects(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	root := ctx.RootProject()
	app := New("app", "/src/app", root, ctx)
	require.NoError(t, root.AddChildProject(app))
	require.NoError(t, app.AddTask(task.NewVoidTask("compile", app)))

	matches, err := ctx.Resolve(":app:compile")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Same(t, app.Task("compile"), matches[0])
}

func TestResolveTrailingColonYieldsDefaultTasks(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	root := ctx.RootProject()
	app := New("app", "/src/app", root, ctx)
	require.NoError(t, root.AddChildProject(app))
	require.NoError(t, app.AddTask(task.NewVoidTask("compile", app)))

	matches, err := ctx.Resolve(":app:")
	require.NoError(t, err)

	var names []string
	for _, tk := range matches {
		names = append(names, tk.Name)
	}
	require.Contains(t, names, "compile")
}

func TestResolveMissingTaskFailsUnlessOptional(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")

	_, err := ctx.Resolve(":missing")
	require.Error(t, err)

	matches, err := ctx.Resolve(":missing?")
	require.NoError(t, err)
	require.Nil(t, matches)
}

func TestResolveUnknownIntermediateProjectFails(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")

	_, err := ctx.Resolve(":nope:compile")
	require.Error(t, err)
}

func TestFinalizeFreezesEveryProjectTask(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")
	root := ctx.RootProject()
	app := New("app", "/src/app", root, ctx)
	require.NoError(t, root.AddChildProject(app))
	compile := task.NewVoidTask("compile", app)
	require.NoError(t, app.AddTask(compile))

	ctx.Finalize()
	require.True(t, ctx.IsFinalized())

	err := compile.Property("skip").Set(false)
	require.Error(t, err)
}

func TestLifecycleEventsFireInOrder(t *testing.T) {
	ctx := NewContext("root", "/src", "/src/build")

	var fired []EventType
	ctx.On(Any, func(event EventType, p *Project) { fired = append(fired, event) })

	ctx.Finalize()

	require.Contains(t, fired, OnContextBeginFinalize)
	require.Contains(t, fired, OnProjectBeginFinalize)
	require.Contains(t, fired, OnProjectFinalized)
	require.Contains(t, fired, OnContextFinalized)
}
