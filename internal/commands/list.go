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
	"tasktrack/internal/output"
	"tasktrack/internal/service"
	"tasktrack/internal/tasks"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasktrack` (no args) and `tasktrack list [filters]`.
type ListCmd struct {
	status string
	due    string
	search string
	sortBy string
	desc   bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "tasktrack list [--status <s>] [--due <YYYY-MM-DD>] [--search <term>] [--sort <key>] [--desc]"
}
func (c *ListCmd) Requires() Requirement { return RequiresSession }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.status, "status", "", "")
	fs.StringVar(&c.status, "s", "", "")
	fs.StringVar(&c.due, "due", "", "")
	fs.StringVar(&c.search, "search", "", "")
	fs.StringVar(&c.search, "q", "", "")
	fs.StringVar(&c.sortBy, "sort", "", "")
	fs.BoolVar(&c.desc, "desc", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, a *app.App, args []string, out, errOut io.Writer) int {
	// Positional words are a search term: `tasktrack list milk`.
	search := strings.TrimSpace(c.search)
	if search == "" && len(args) > 0 {
		search = strings.Join(args, " ")
	}

	filters := tasks.Filters{SearchTerm: search}
	if c.status != "" {
		st, err := service.ParseStatus(c.status)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		filters.Status = &st
	}
	if c.due != "" {
		due, err := tasks.ParseDate(c.due)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		filters.DueDate = &due
	}
	key, err := tasks.ParseSortKey(c.sortBy)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := a.Tasks.LoadTasks(ctx); err != nil {
		return report(errOut, err)
	}

	// Numbers always come from the default listing so they stay valid as
	// references whatever filters are applied.
	nums := numbering(a.Tasks.View())

	a.Tasks.SetFilters(filters)
	a.Tasks.SetSortBy(key)
	if c.desc {
		a.Tasks.SetSortDirection(tasks.Descending)
	}
	view := a.Tasks.View()

	if len(view) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	for _, task := range view {
		output.FormatTask(out, nums[task.ID], task)
	}
	return exitcode.Success
}
