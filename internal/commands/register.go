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
	"tasktrack/internal/service"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	first    string
	second   string
	last     string
	email    string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account and sign in" }
func (c *RegisterCmd) Usage() string {
	return "tasktrack register --first <name> [--second <name>] --last <name> --email <email> [--password <password>]"
}
func (c *RegisterCmd) Requires() Requirement { return RequiresApp }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.first, "first", "", "")
	fs.StringVar(&c.second, "second", "", "")
	fs.StringVar(&c.last, "last", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	reg := service.Registration{
		FirstName:  strings.TrimSpace(c.first),
		SecondName: strings.TrimSpace(c.second),
		LastName:   strings.TrimSpace(c.last),
		Email:      strings.TrimSpace(c.email),
	}
	for _, req := range []struct{ flag, value string }{
		{"--first", reg.FirstName},
		{"--last", reg.LastName},
		{"--email", reg.Email},
	} {
		if req.value == "" {
			fmt.Fprintf(errOut, "error: %s required\n", req.flag)
			return exitcode.UserError
		}
	}

	password, err := newPrompter(errOut).password(c.password)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	reg.Password = password

	if err := a.Session.Register(ctx, reg); err != nil {
		return reportAuthFailure(errOut, a, err)
	}
	return ok(out, cfg.Quiet)
}
