package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"tasktrack/internal/exitcode"
	"tasktrack/internal/gateway"
	"tasktrack/internal/session"
	"tasktrack/internal/tasks"
)

const (
	msgNotLoggedIn    = "error: not logged in (run: tasktrack login)"
	msgSessionExpired = "error: session expired (run: tasktrack login)"
)

// report prints err to errOut and returns the exit code for it.
func report(errOut io.Writer, err error) int {
	var apiErr *gateway.APIError
	switch {
	case errors.Is(err, gateway.ErrRefreshFailed), errors.Is(err, session.ErrTokenExpired):
		fmt.Fprintln(errOut, msgSessionExpired)
		return exitcode.AuthError
	case errors.Is(err, tasks.ErrUnauthenticated), errors.Is(err, session.ErrNotAuthenticated):
		fmt.Fprintln(errOut, msgNotLoggedIn)
		return exitcode.AuthError
	case errors.As(err, &apiErr):
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized, apiErr.StatusCode == http.StatusForbidden:
			fmt.Fprintf(errOut, "error: auth error: %s\n", apiErr.Message)
			return exitcode.AuthError
		case apiErr.StatusCode >= http.StatusInternalServerError:
			fmt.Fprintf(errOut, "error: backend error: %s\n", apiErr.Message)
			return exitcode.BackendError
		default:
			fmt.Fprintf(errOut, "error: %s\n", apiErr.Message)
			return exitcode.UserError
		}
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(errOut, "error: cancelled")
		return exitcode.UserError
	case errors.Is(err, gateway.ErrTransport):
		fmt.Fprintf(errOut, "error: backend error: %s\n", gateway.Message(err))
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
}

// ok prints the success acknowledgement unless quiet.
func ok(out io.Writer, quiet bool) int {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
