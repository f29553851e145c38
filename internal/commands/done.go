package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
	"tasktrack/internal/tasks"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string          { return "done" }
func (c *DoneCmd) Aliases() []string     { return nil }
func (c *DoneCmd) Synopsis() string      { return "Mark a task done" }
func (c *DoneCmd) Usage() string         { return "tasktrack done <ref>" }
func (c *DoneCmd) Requires() Requirement { return RequiresSession }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := findTask(ctx, a, ref)
	if err != nil {
		return report(errOut, err)
	}
	if task.Status == service.StatusDone {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already done")
		}
		return exitcode.Success
	}

	form := tasks.FormFromTask(task)
	form.Status = service.StatusDone.String()
	if _, err := a.Tasks.EditTask(ctx, task.ID, form); err != nil {
		return report(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
