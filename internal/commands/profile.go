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
	"tasktrack/internal/service"
	"tasktrack/internal/session"
)

func init() {
	Register(&ProfileCmd{})
}

// ProfileCmd implements the profile command.
type ProfileCmd struct {
	first  optionalString
	second optionalString
	email  optionalString
}

func (c *ProfileCmd) Name() string      { return "profile" }
func (c *ProfileCmd) Aliases() []string { return nil }
func (c *ProfileCmd) Synopsis() string  { return "Show or update the profile" }
func (c *ProfileCmd) Usage() string {
	return "tasktrack profile [--first <name>] [--second <name>] [--email <email>]"
}
func (c *ProfileCmd) Requires() Requirement { return RequiresSession }

func (c *ProfileCmd) RegisterFlags(fs *flag.FlagSet) {
	c.first, c.second, c.email = optionalString{}, optionalString{}, optionalString{}
	fs.Var(&c.first, "first", "")
	fs.Var(&c.second, "second", "")
	fs.Var(&c.email, "email", "")
}

func (c *ProfileCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	upd := service.ProfileUpdate{
		FirstName:  c.first.ptr(),
		SecondName: c.second.ptr(),
		Email:      c.email.ptr(),
	}

	if upd.FirstName == nil && upd.SecondName == nil && upd.Email == nil {
		st := a.Session.State()
		if st.User == nil {
			return report(errOut, session.ErrNotAuthenticated)
		}
		output.FormatProfile(out, *st.User)
		return exitcode.Success
	}
	if upd.Email != nil && *upd.Email == "" {
		fmt.Fprintln(errOut, "error: email cannot be empty")
		return exitcode.UserError
	}

	if _, err := a.Session.UpdateProfile(ctx, upd); err != nil {
		return report(errOut, err)
	}
	return ok(out, cfg.Quiet)
}
