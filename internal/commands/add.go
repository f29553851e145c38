package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/tasks"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	status      string
	due         string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasktrack add [-d <description>] [--status <s>] [--due <YYYY-MM-DD>] <title...>"
}
func (c *AddCmd) Requires() Requirement { return RequiresSession }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.StringVar(&c.due, "due", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	_, err := a.Tasks.AddTask(ctx, tasks.Form{
		Title:       title,
		Description: c.description,
		Status:      c.status,
		DueDate:     c.due,
	})
	if err != nil {
		return report(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
