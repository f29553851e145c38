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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string          { return "help" }
func (c *HelpCmd) Aliases() []string     { return nil }
func (c *HelpCmd) Synopsis() string      { return "Print usage" }
func (c *HelpCmd) Usage() string         { return "tasktrack help [command]" }
func (c *HelpCmd) Requires() Requirement { return RequiresNothing }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, _ *app.App, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, ok := DefaultRegistry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "%s\n\nUsage:\n  %s\n", cmd.Synopsis(), cmd.Usage())
		return exitcode.Success
	}
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tasktrack                                    List all tasks
  tasktrack list [common flags] [--status <s>] [--due <YYYY-MM-DD>] [--search <term>]
                 [--sort created|title|status|due] [--desc]
  tasktrack show [common flags] <ref>
  tasktrack add [common flags] [-d <description>] [--status <s>] [--due <YYYY-MM-DD>] <title...>
  tasktrack edit [common flags] [--title <t>] [-d <description>] [--status <s>] [--due <YYYY-MM-DD>] <ref>
  tasktrack done [common flags] <ref>
  tasktrack rm [common flags] <ref>
  tasktrack login [common flags] --email <email> [--password <password>]
  tasktrack register [common flags] --first <name> [--second <name>] --last <name> --email <email>
  tasktrack logout [common flags] [--google]
  tasktrack whoami [common flags]
  tasktrack profile [common flags] [--first <name>] [--second <name>] [--email <email>]
  tasktrack passwd [common flags] [--current <password>] [--new <password>]
  tasktrack google-login [common flags]
  tasktrack import [common flags] [--list <list-name> | --all]
  tasktrack help [command]
  tasktrack version

Task references:
  <n>        Position in the default listing (oldest first)
  <id>       Full task ID, or at least 4 leading characters of it

Statuses: todo, in_progress, done, archived

Passwords are prompted on stdin unless --password or TASKTRACK_PASSWORD is set.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
