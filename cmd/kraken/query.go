package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/krakenbuild/kraken/internal/graph"
	"github.com/krakenbuild/kraken/internal/persist"
	"github.com/krakenbuild/kraken/internal/project"
	"github.com/krakenbuild/kraken/internal/task"
)

// loadPersistedStatuses flattens every persisted snapshot's statuses into a
// single path -> status-type map, later snapshots (by filename, already
// sorted by persist.Load) overriding earlier ones.
func loadPersistedStatuses(buildDir string) (map[string]string, error) {
	snapshots, err := persist.Load(buildDir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, s := range snapshots {
		for path, status := range s.Statuses {
			out[path] = status.Type
		}
	}
	return out, nil
}

func newQueryCmd(common *commonFlags, build ContextBuilder) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "inspect a project's task tree without executing it",
	}
	cmd.AddCommand(newQueryLsCmd(common, build))
	cmd.AddCommand(newQueryDescribeCmd(common, build))
	cmd.AddCommand(newQueryVisualizeCmd(common, build))
	cmd.AddCommand(newQueryEnvCmd(common, build))
	cmd.AddCommand(newQueryIsUpToDateCmd(common, build))
	return cmd
}

func loadFinalizedContext(common *commonFlags, build ContextBuilder) (*project.Context, error) {
	if err := common.validate(); err != nil {
		return nil, err
	}
	ctx, err := build(common.ProjectDir, common.BuildDir)
	if err != nil {
		return nil, err
	}
	ctx.Finalize()
	return ctx, nil
}

func newQueryLsCmd(common *commonFlags, build ContextBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "list every task, grouped by non-group and group",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := loadFinalizedContext(common, build)
			if err != nil {
				return err
			}
			all := ctx.RootProject().AllTasks()
			sort.Slice(all, func(i, j int) bool { return all[i].Path() < all[j].Path() })

			var plain, groups []*task.Task
			for _, t := range all {
				if t.Kind() == task.KindGroup {
					groups = append(groups, t)
				} else {
					plain = append(plain, t)
				}
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "tasks:")
			for _, t := range plain {
				fmt.Fprintf(out, "  %s\n", t.Path())
			}
			fmt.Fprintln(out, "groups:")
			for _, t := range groups {
				fmt.Fprintf(out, "  %s\n", t.Path())
			}
			return nil
		},
	}
}

func newQueryDescribeCmd(common *commonFlags, build ContextBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "describe [goals...]",
		Short: "describe the resolved tasks in detail: kind, relationships, properties",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := loadFinalizedContext(common, build)
			if err != nil {
				return err
			}
			goals, err := resolveGoals(ctx, args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range goals {
				fmt.Fprintf(out, "%s (%s)\n", t.Path(), t.Kind())
				if t.Description != "" {
					fmt.Fprintf(out, "  description: %s\n", t.Description)
				}
				rels, err := t.GetRelationships()
				if err != nil {
					return err
				}
				for _, rel := range rels {
					arrow := "->"
					if !rel.Strict {
						arrow = "~>"
					}
					fmt.Fprintf(out, "  %s %s %s\n", t.Path(), arrow, rel.Other.Path())
				}
				for _, p := range t.Properties() {
					direction := "in "
					if p.IsOutput() {
						direction = "out"
					}
					value := "<unset>"
					if v, err := p.Get(); err == nil {
						value = fmt.Sprintf("%v", v)
					}
					fmt.Fprintf(out, "  [%s] %s: %s = %s\n", direction, p.Name(), p.ItemType().String(), value)
				}
			}
			return nil
		},
	}
}

func newQueryVisualizeCmd(common *commonFlags, build ContextBuilder) *cobra.Command {
	var includeInactive, show, reduce, reduceKeepExplicit bool

	cmd := &cobra.Command{
		Use:   "visualize [goals...]",
		Short: "render the task graph as DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := loadFinalizedContext(common, build)
			if err != nil {
				return err
			}
			goals, err := resolveGoals(ctx, args)
			if err != nil {
				return err
			}
			if len(goals) == 0 {
				goals = ctx.RootProject().AllTasks()
			}

			g := graph.New()
			for _, t := range goals {
				if err := g.AddTask(t); err != nil {
					return err
				}
			}
			if !includeInactive {
				if err := g.Trim(goals); err != nil {
					return err
				}
			}
			if reduce || reduceKeepExplicit {
				g.Reduce(reduceKeepExplicit)
			}

			renderDOT(cmd.OutOrStdout(), g, includeInactive)
			if show {
				fmt.Fprintln(cmd.ErrOrStderr(), "note: opening a browser is outside this CLI's scope; DOT was written to stdout instead")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&includeInactive, "all", "a", false, "include inactive (trimmed-out) tasks")
	cmd.Flags().BoolVarP(&show, "show", "s", false, "open the rendered graph in a browser")
	cmd.Flags().BoolVarP(&reduce, "reduce", "R", false, "transitively reduce the graph before rendering")
	cmd.Flags().BoolVarP(&reduceKeepExplicit, "reduce-keep-explicit", "r", false, "transitively reduce, but keep explicit edges even if redundant")
	return cmd
}

// newQueryEnvCmd builds `query env`, which emits a minimal static
// description of the process environment.
// The environment/wrapper subsystem that normally backs this command is
// explicitly out of scope, so this is a fixed shape rather than a live
// introspection of a wrapper-managed environment.
func newQueryEnvCmd(common *commonFlags, build ContextBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "print a minimal description of the build environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			env := []map[string]string{
				{"name": "KRAKEN_PROJECT_DIR", "value": common.ProjectDir},
				{"name": "KRAKEN_BUILD_DIR", "value": common.BuildDir},
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(env)
		},
	}
}

func newQueryIsUpToDateCmd(common *commonFlags, build ContextBuilder) *cobra.Command {
	var legend bool
	cmd := &cobra.Command{
		Use:   "is-up-to-date [goals...]",
		Short: "exit 0 iff every goal's last recorded status is up-to-date or skipped",
		RunE: func(cmd *cobra.Command, args []string) error {
			if legend {
				fmt.Fprintln(cmd.OutOrStdout(), "exit 0: every goal is up-to-date or skipped; exit 1: otherwise")
				return nil
			}
			ctx, err := loadFinalizedContext(common, build)
			if err != nil {
				return err
			}
			goals, err := resolveGoals(ctx, args)
			if err != nil {
				return err
			}
			snapshots, err := loadPersistedStatuses(common.BuildDir)
			if err != nil {
				return err
			}
			for _, t := range goals {
				status, ok := snapshots[t.Path()]
				if !ok || !(status == string(task.UpToDate) || status == string(task.Skipped)) {
					return fmt.Errorf("%s is not up-to-date", t.Path())
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&legend, "legend", false, "print the exit-code legend instead of checking")
	return cmd
}
