package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	krakenlog "github.com/krakenbuild/kraken/internal/logger"
	"github.com/krakenbuild/kraken/internal/project"
)

// commonFlags carries the flags every subcommand shares, validated with
// struct tags the way decoded config documents are validated elsewhere in
// this codebase.
type commonFlags struct {
	BuildDir   string `validate:"required"`
	ProjectDir string `validate:"required"`
	Verbose    bool
	Quiet      bool
}

func (f *commonFlags) logLevel() string {
	switch {
	case f.Verbose:
		return "debug"
	case f.Quiet:
		return "warn"
	default:
		return "info"
	}
}

func (f *commonFlags) validate() error {
	if err := validatorInstance().Struct(f); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

func (f *commonFlags) newLogger() (*krakenlog.Logger, error) {
	return krakenlog.New(krakenlog.Options{Level: f.logLevel(), HumanReadable: true})
}

// ContextBuilder produces the in-process project tree a command runs
// against. kraken's core ships no build-script parser (that front end is
// explicitly out of scope); a real deployment supplies one, e.g. by
// wrapping a loader.Loader. The zero-value CLI wires noLoaderConfigured,
// which reports that cleanly instead of silently doing nothing.
type ContextBuilder func(projectDir, buildDir string) (*project.Context, error)

func noLoaderConfigured(projectDir, _ string) (*project.Context, error) {
	return nil, fmt.Errorf("kraken: no build-script loader configured for project directory %q; "+
		"the core ships without a DSL front end, wire a loader.Loader into the CLI to load real projects", projectDir)
}

func newRootCmd(build ContextBuilder) *cobra.Command {
	flags := &commonFlags{}

	cmd := &cobra.Command{
		Use:           "kraken",
		Short:         "kraken resolves a project's task graph and drives it to completion",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.BuildDir, "build-dir", "b", "build", "build output directory")
	cmd.PersistentFlags().StringVarP(&flags.ProjectDir, "project-dir", "p", ".", "root project directory")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "only log warnings and errors")

	cmd.AddCommand(newRunCmd(flags, build))
	cmd.AddCommand(newQueryCmd(flags, build))

	return cmd
}

var sharedValidator = validator.New()

func validatorInstance() *validator.Validate { return sharedValidator }
