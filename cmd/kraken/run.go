package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krakenbuild/kraken/internal/executor"
	"github.com/krakenbuild/kraken/internal/graph"
	"github.com/krakenbuild/kraken/internal/persist"
	"github.com/krakenbuild/kraken/internal/project"
	"github.com/krakenbuild/kraken/internal/task"
)

type runFlags struct {
	skipBuild    bool
	allowNoTasks bool
	exclude      []string
	excludeSub   []string
	resume       bool
	restart      string
	noSave       bool
}

func newRunCmd(common *commonFlags, build ContextBuilder) *cobra.Command {
	rf := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [goals...]",
		Short: "resolve the task graph for the given goals and execute it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, common, build, rf, args)
		},
	}

	cmd.Flags().BoolVarP(&rf.skipBuild, "skip-build", "s", false, "load the project but do not execute it")
	cmd.Flags().BoolVarP(&rf.allowNoTasks, "allow-no-tasks", "0", false, "exit 0 instead of erroring when no goals are selected")
	cmd.Flags().StringArrayVarP(&rf.exclude, "exclude", "x", nil, "exclude a task from the active graph (repeatable)")
	cmd.Flags().StringArrayVarP(&rf.excludeSub, "exclude-subgraph", "X", nil, "exclude a task and everything it strictly depends on (repeatable)")
	cmd.Flags().BoolVar(&rf.resume, "resume", false, "fold the previously persisted build state into this run")
	cmd.Flags().StringVar(&rf.restart, "restart", "", `with --resume, "all" discards the folded results and reruns everything`)
	cmd.Flags().BoolVar(&rf.noSave, "no-save", false, "do not persist build state on exit")

	return cmd
}

func runRun(cmd *cobra.Command, common *commonFlags, build ContextBuilder, rf *runFlags, goalSelectors []string) error {
	if rf.restart != "" && rf.restart != "all" {
		return fmt.Errorf(`--restart only accepts "all", got %q`, rf.restart)
	}
	if rf.restart == "all" && !rf.resume {
		return fmt.Errorf("--restart all requires --resume")
	}
	if err := common.validate(); err != nil {
		return err
	}

	log, err := common.newLogger()
	if err != nil {
		return err
	}

	ctx, err := build(common.ProjectDir, common.BuildDir)
	if err != nil {
		return err
	}
	ctx.RootProject().SetLogger(log)
	ctx.Finalize()

	goals, err := resolveGoals(ctx, goalSelectors)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		if rf.allowNoTasks {
			fmt.Fprintln(cmd.OutOrStdout(), "no goals selected")
			return nil
		}
		return fmt.Errorf("no goals selected (pass -0/--allow-no-tasks to allow this)")
	}

	g := graph.New()
	for _, t := range goals {
		if err := g.AddTask(t); err != nil {
			return err
		}
	}
	if err := g.Trim(goals); err != nil {
		return err
	}
	g.Exclude(rf.exclude)
	g.ExcludeSubgraph(rf.excludeSub)

	if rf.resume {
		snapshots, err := persist.Load(common.BuildDir)
		if err != nil {
			return fmt.Errorf("loading previous build state: %w", err)
		}
		if err := persist.Fold(g, snapshots, rf.restart == "all"); err != nil {
			return fmt.Errorf("resuming previous build state: %w", err)
		}
	}

	if rf.skipBuild {
		fmt.Fprintln(cmd.OutOrStdout(), "project loaded, skipping execution (-s/--skip-build)")
		return nil
	}

	observer := executor.NewLoggingObserver(log)
	exec := executor.New(g, observer, executor.NewTaskExecutor())
	buildErr := exec.Run(nil)

	if !rf.noSave {
		if err := persist.Save(common.BuildDir, g); err != nil {
			return fmt.Errorf("saving build state: %w", err)
		}
	}

	return buildErr
}

// resolveGoals resolves every selector against ctx, falling back to the
// root project's default tasks when selectors is empty, and deduplicating
// by path while preserving first-seen order.
func resolveGoals(ctx *project.Context, selectors []string) ([]*task.Task, error) {
	var tasks []*task.Task
	if len(selectors) == 0 {
		tasks = ctx.RootProject().DefaultTasks()
	} else {
		for _, sel := range selectors {
			matches, err := ctx.Resolve(sel)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, matches...)
		}
	}

	seen := make(map[string]bool, len(tasks))
	out := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if seen[t.Path()] {
			continue
		}
		seen[t.Path()] = true
		out = append(out, t)
	}
	return out, nil
}
