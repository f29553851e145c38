package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct {
	google bool
}

func (c *LogoutCmd) Name() string          { return "logout" }
func (c *LogoutCmd) Aliases() []string     { return nil }
func (c *LogoutCmd) Synopsis() string      { return "Sign out and remove stored credentials" }
func (c *LogoutCmd) Usage() string         { return "tasktrack logout [--google]" }
func (c *LogoutCmd) Requires() Requirement { return RequiresApp }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.google, "google", false, "")
}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if c.google {
		return c.forgetGoogle(cfg, out, errOut)
	}

	if a.Session.AccessToken() == "" {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	// The server call is best effort; local credentials are always removed.
	if err := a.Session.Logout(ctx); err != nil {
		return report(errOut, err)
	}
	return ok(out, cfg.Quiet)
}

// forgetGoogle removes the saved Google import token.
func (c *LogoutCmd) forgetGoogle(cfg *config.Config, out, errOut io.Writer) int {
	err := os.Remove(cfg.GoogleTokenPath())
	if errors.Is(err, fs.ErrNotExist) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in to Google")
		}
		return exitcode.Success
	}
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	return ok(out, cfg.Quiet)
}
