package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string          { return "rm" }
func (c *RmCmd) Aliases() []string     { return []string{"delete"} }
func (c *RmCmd) Synopsis() string      { return "Delete a task" }
func (c *RmCmd) Usage() string         { return "tasktrack rm <ref>" }
func (c *RmCmd) Requires() Requirement { return RequiresSession }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := findTask(ctx, a, ref)
	if err != nil {
		return report(errOut, err)
	}
	if err := a.Tasks.RemoveTask(ctx, task.ID); err != nil {
		return report(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
