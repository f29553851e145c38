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
	Register(&PasswdCmd{})
}

// PasswdCmd implements the passwd command.
type PasswdCmd struct {
	current string
	next    string
}

func (c *PasswdCmd) Name() string          { return "passwd" }
func (c *PasswdCmd) Aliases() []string     { return nil }
func (c *PasswdCmd) Synopsis() string      { return "Change the account password" }
func (c *PasswdCmd) Usage() string         { return "tasktrack passwd [--current <password>] [--new <password>]" }
func (c *PasswdCmd) Requires() Requirement { return RequiresSession }

func (c *PasswdCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.current, "current", "", "")
	fs.StringVar(&c.next, "new", "", "")
}

func (c *PasswdCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	p := newPrompter(errOut)
	current, next := c.current, c.next
	var err error
	if current == "" {
		if current, err = p.secret("Current password", "current password"); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if next == "" {
		if next, err = p.secret("New password", "new password"); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}
	if next == current {
		fmt.Fprintln(errOut, "error: new password must differ from the current one")
		return exitcode.UserError
	}

	if err := a.Session.ChangePassword(ctx, current, next); err != nil {
		return report(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
