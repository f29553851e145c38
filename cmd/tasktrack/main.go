// Command tasktrack is a terminal client for the task tracker API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tasktrack/internal/cli"
	"tasktrack/internal/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	d := cli.NewDispatcher(commands.DefaultRegistry, cli.DefaultFactory)
	code := d.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
