package commands

import (
	"context"
	"flag"
	"io"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/output"
	"tasktrack/internal/session"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string          { return "whoami" }
func (c *WhoamiCmd) Aliases() []string     { return nil }
func (c *WhoamiCmd) Synopsis() string      { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string         { return "tasktrack whoami" }
func (c *WhoamiCmd) Requires() Requirement { return RequiresSession }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	st := a.Session.State()
	if st.User == nil {
		return report(errOut, session.ErrNotAuthenticated)
	}
	output.FormatProfile(out, *st.User)
	return exitcode.Success
}
