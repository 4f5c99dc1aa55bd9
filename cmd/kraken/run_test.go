package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/krakenbuild/kraken/internal/project"
	"github.com/krakenbuild/kraken/internal/task"
)

func fixtureBuilder(t *testing.T) ContextBuilder {
	t.Helper()
	return func(projectDir, buildDir string) (*project.Context, error) {
		ctx := project.NewContext("root", projectDir, buildDir)
		proj := ctx.RootProject()
		v := task.NewVoidTask("greet", proj)
		v.Default = true
		if err := proj.AddTask(v); err != nil {
			return nil, err
		}
		return ctx, nil
	}
}

func executeCmd(t *testing.T, build ContextBuilder, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(build)
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(append([]string{"-b", filepath.Join(t.TempDir(), "build")}, args...))
	err := root.Execute()
	return buf.String(), err
}

func TestRunExecutesDefaultGoalsWhenNoneGiven(t *testing.T) {
	out, err := executeCmd(t, fixtureBuilder(t), "run")
	require.NoError(t, err)
	_ = out
}

func TestRunSkipBuildDoesNotExecute(t *testing.T) {
	out, err := executeCmd(t, fixtureBuilder(t), "run", "-s")
	require.NoError(t, err)
	require.Contains(t, out, "skipping execution")
}

func TestRunRejectsUnknownRestartValue(t *testing.T) {
	_, err := executeCmd(t, fixtureBuilder(t), "run", "--restart", "bogus")
	require.Error(t, err)
}

func TestRunRestartAllRequiresResume(t *testing.T) {
	_, err := executeCmd(t, fixtureBuilder(t), "run", "--restart", "all")
	require.Error(t, err)
}

func TestRunNoGoalsErrorsWithoutAllowNoTasks(t *testing.T) {
	_, err := executeCmd(t, fixtureBuilder(t), "run", "nonexistent?")
	require.Error(t, err)
}

func TestRunNoGoalsAllowedWithAllowNoTasksFlag(t *testing.T) {
	out, err := executeCmd(t, fixtureBuilder(t), "run", "-0", "nonexistent?")
	require.NoError(t, err)
	require.Contains(t, out, "no goals selected")
}
