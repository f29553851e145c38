// Package commands implements the tasktrack subcommands.
package commands

import (
	"context"
	"flag"
	"io"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
)

// Requirement is what a command needs before it can run.
type Requirement int

const (
	// RequiresNothing commands run on config alone (help, version).
	RequiresNothing Requirement = iota

	// RequiresApp commands get a wired App but no session check.
	RequiresApp

	// RequiresSession commands run only with an authenticated session.
	RequiresSession
)

// Command is one tasktrack subcommand.
type Command interface {
	Name() string
	Aliases() []string

	// Synopsis is the one-line summary shown by help.
	Synopsis() string
	Usage() string

	// Requires tells the dispatcher what to prepare before Run.
	Requires() Requirement

	// RegisterFlags adds the command's flags next to the common ones.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command with the positional args left after flag
	// parsing and returns the process exit code. a is nil for
	// RequiresNothing commands; for RequiresSession commands the session
	// is already authenticated.
	Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int
}
