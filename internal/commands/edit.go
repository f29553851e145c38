package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/tasks"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       optionalString
	description optionalString
	status      optionalString
	due         optionalString
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change a task" }
func (c *EditCmd) Usage() string {
	return "tasktrack edit [--title <t>] [-d <description>] [--status <s>] [--due <YYYY-MM-DD>] <ref>"
}
func (c *EditCmd) Requires() Requirement { return RequiresSession }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	*c = EditCmd{}
	fs.Var(&c.title, "title", "")
	fs.Var(&c.title, "t", "")
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
	fs.Var(&c.status, "status", "")
	fs.Var(&c.status, "s", "")
	fs.Var(&c.due, "due", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s (flags go before the task reference)\n", args[1])
		return exitcode.UserError
	}
	if !c.title.set && !c.description.set && !c.status.set && !c.due.set {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}

	task, err := findTask(ctx, a, ref)
	if err != nil {
		return report(errOut, err)
	}

	form := tasks.FormFromTask(task)
	overlay(&form.Title, c.title)
	overlay(&form.Description, c.description)
	overlay(&form.Status, c.status)
	overlay(&form.DueDate, c.due)

	if _, err := a.Tasks.EditTask(ctx, task.ID, form); err != nil {
		return report(errOut, err)
	}
	return ok(out, cfg.Quiet)
}

func overlay(dst *string, v optionalString) {
	if v.set {
		*dst = v.value
	}
}
