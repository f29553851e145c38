// Package cli parses the command line and dispatches to commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/app"
	"tasktrack/internal/commands"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/logger"
	"tasktrack/internal/session"
)

// defaultCommand runs when tasktrack is invoked without arguments.
const defaultCommand = "list"

// AppFactory builds the wired application for one invocation. Tests pass a
// factory over an in-memory backend.
type AppFactory func(ctx context.Context, cfg *config.Config) (*app.App, error)

// DefaultFactory wires the REST backend with a logger configured from cfg.
func DefaultFactory(ctx context.Context, cfg *config.Config) (*app.App, error) {
	log := logger.New(logger.Config{
		Level:    logger.Level(cfg.Debug),
		Encoding: cfg.LogEncoding,
	})
	return app.New(cfg, log)
}

// Dispatcher resolves the command, parses its flags and prepares what the
// command requires before running it.
type Dispatcher struct {
	registry *commands.Registry
	factory  AppFactory
}

// NewDispatcher returns a dispatcher over registry. A nil factory means
// DefaultFactory.
func NewDispatcher(registry *commands.Registry, factory AppFactory) *Dispatcher {
	if factory == nil {
		factory = DefaultFactory
	}
	return &Dispatcher{registry: registry, factory: factory}
}

// Run executes the command named by args[0] and returns the exit code.
// Flags are only accepted after the command name.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		args = []string{defaultCommand}
	}

	name := args[0]
	cmd, found := d.registry.Find(name)
	if strings.HasPrefix(name, "-") || !found {
		return userError(errOut, "unknown command: %s", name)
	}
	return d.dispatch(ctx, cmd, args[1:], out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		return userError(errOut, "%s", flagErrorMessage(err))
	}
	rest := fs.Args()
	// "--" stops flag parsing; a dash argument right after it is still a flag typo.
	if len(rest) > 0 && strings.HasPrefix(rest[0], "-") {
		return userError(errOut, "unknown flag: %s", rest[0])
	}

	cfg, err := config.New(common.configDir)
	if err != nil {
		return userError(errOut, "%s", err)
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug

	if cmd.Requires() == commands.RequiresNothing {
		return cmd.Run(ctx, cfg, nil, rest, out, errOut)
	}

	a, err := d.factory(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %s\n", err)
		return exitcode.AuthError
	}
	defer a.Close()

	if cmd.Requires() == commands.RequiresSession {
		if code, ok := requireSession(ctx, a, errOut); !ok {
			return code
		}
	}
	return cmd.Run(ctx, cfg, a, rest, out, errOut)
}

// requireSession restores the stored session and reports why it is missing.
func requireSession(ctx context.Context, a *app.App, errOut io.Writer) (int, bool) {
	if err := a.Session.CheckAuth(ctx); err != nil {
		fmt.Fprintf(errOut, "error: auth error: %s\n", err)
		return exitcode.AuthError, false
	}

	st := a.Session.State()
	if st.IsAuthenticated {
		return exitcode.Success, true
	}
	switch st.Error {
	case session.MsgSessionExpired:
		fmt.Fprintln(errOut, "error: session expired (run: tasktrack login)")
	case session.MsgSessionInit:
		fmt.Fprintln(errOut, "error: session init failed (run: tasktrack login)")
	default:
		fmt.Fprintln(errOut, "error: not logged in (run: tasktrack login)")
	}
	return exitcode.AuthError, false
}

func userError(errOut io.Writer, format string, args ...any) int {
	fmt.Fprintf(errOut, "error: "+format+"\n", args...)
	return exitcode.UserError
}

// flagErrorMessage rewords the flag package's errors.
func flagErrorMessage(err error) string {
	msg := err.Error()
	if _, name, ok := strings.Cut(msg, "flag needs an argument: "); ok {
		return "flag needs an argument: " + name
	}
	if name, ok := strings.CutPrefix(msg, "flag provided but not defined: "); ok {
		return "unknown flag: " + name
	}
	return msg
}
