package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/gateway"
	"tasktrack/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email    string
	password string
}

func (c *LoginCmd) Name() string          { return "login" }
func (c *LoginCmd) Aliases() []string     { return []string{"signin"} }
func (c *LoginCmd) Synopsis() string      { return "Sign in to the task server" }
func (c *LoginCmd) Usage() string         { return "tasktrack login --email <email> [--password <password>]" }
func (c *LoginCmd) Requires() Requirement { return RequiresApp }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	email := strings.TrimSpace(c.email)
	if email == "" && len(args) > 0 {
		email = strings.TrimSpace(args[0])
	}
	if email == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}

	// A valid session for the same account needs no new tokens.
	if err := a.Session.CheckAuth(ctx); err != nil {
		return report(errOut, err)
	}
	if st := a.Session.State(); st.IsAuthenticated && st.User != nil && strings.EqualFold(st.User.Email, email) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}

	password, err := newPrompter(errOut).password(c.password)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	err = a.Session.Login(ctx, service.Credentials{Email: email, Password: password})
	if err != nil {
		return reportAuthFailure(errOut, a, err)
	}
	return ok(out, cfg.Quiet)
}

// reportAuthFailure prints the session's error for a failed login or
// registration. Transport failures keep their own exit code.
func reportAuthFailure(errOut io.Writer, a *app.App, err error) int {
	if errors.Is(err, gateway.ErrTransport) {
		return report(errOut, err)
	}
	msg := a.Session.State().Error
	if msg == "" {
		msg = gateway.Message(err)
	}
	fmt.Fprintf(errOut, "error: %s\n", msg)
	if gateway.IsStatus(err, http.StatusConflict) || gateway.IsStatus(err, http.StatusBadRequest) {
		return exitcode.UserError
	}
	return exitcode.AuthError
}
