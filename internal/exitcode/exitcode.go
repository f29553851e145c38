// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError covers bad arguments, invalid task input, unknown task
	// references and 4xx rejections other than auth.
	UserError = 1

	// AuthError covers a missing or expired session, rejected credentials
	// and missing Google import authorization.
	AuthError = 2

	// BackendError covers 5xx responses, timeouts and unreachable servers.
	BackendError = 3
)
