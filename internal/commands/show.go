package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string          { return "show" }
func (c *ShowCmd) Aliases() []string     { return nil }
func (c *ShowCmd) Synopsis() string      { return "Show a task with its description" }
func (c *ShowCmd) Usage() string         { return "tasktrack show <ref>" }
func (c *ShowCmd) Requires() Requirement { return RequiresSession }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := findTask(ctx, a, ref)
	if err != nil {
		return report(errOut, err)
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
