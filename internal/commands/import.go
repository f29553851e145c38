package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/importer/googletasks"
)

func init() {
	Register(&ImportCmd{})
}

// ImportCmd implements the import command.
type ImportCmd struct {
	listName string
	all      bool
}

func (c *ImportCmd) Name() string          { return "import" }
func (c *ImportCmd) Aliases() []string     { return nil }
func (c *ImportCmd) Synopsis() string      { return "Import open tasks from Google Tasks" }
func (c *ImportCmd) Usage() string         { return "tasktrack import [--list <list-name> | --all]" }
func (c *ImportCmd) Requires() Requirement { return RequiresSession }

func (c *ImportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
	fs.BoolVar(&c.all, "all", false, "")
}

func (c *ImportCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	if c.all && c.listName != "" {
		fmt.Fprintln(errOut, "error: cannot use both --list and --all")
		return exitcode.UserError
	}

	src, err := a.GoogleSource(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	lists, err := src.Lists(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
	selected, err := c.selectLists(lists)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := a.Tasks.LoadTasks(ctx); err != nil {
		return report(errOut, err)
	}
	sum, err := googletasks.Import(ctx, src, a.Tasks, selected)
	if err != nil {
		if sum.Imported > 0 {
			fmt.Fprintf(errOut, "imported %d before failing\n", sum.Imported)
		}
		if errors.Is(err, googletasks.ErrSource) {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
		return report(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "imported %d, skipped %d\n", sum.Imported, sum.Skipped)
	}
	return exitcode.Success
}

func (c *ImportCmd) selectLists(lists []googletasks.List) ([]googletasks.List, error) {
	switch {
	case c.all:
		return lists, nil
	case c.listName != "":
		list, err := googletasks.ResolveList(lists, c.listName)
		if err != nil {
			return nil, err
		}
		return []googletasks.List{list}, nil
	}
	for _, list := range lists {
		if list.IsDefault {
			return []googletasks.List{list}, nil
		}
	}
	return nil, fmt.Errorf("no default list found")
}
