package cli_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tasktrack/internal/app"
	"tasktrack/internal/cli"
	"tasktrack/internal/commands"
	"tasktrack/internal/config"
	"tasktrack/internal/credstore"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
	"tasktrack/internal/testutil"
)

const testEmail = "ann@example.com"

// testFactory creates an app factory over the given FakeService and store.
func testFactory(svc *testutil.FakeService, store credstore.Store) cli.AppFactory {
	return func(ctx context.Context, cfg *config.Config) (*app.App, error) {
		return app.Wire(svc, store, nil), nil
	}
}

func newFixture(t *testing.T) (*testutil.FakeService, *credstore.Memory, *cli.Dispatcher) {
	t.Helper()
	svc := testutil.NewFakeService()
	svc.AddUser(testEmail, "secret", "Ann")
	store := credstore.NewMemory(service.TokenPair{})
	return svc, store, cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc, store))
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	full := append([]string{args[0], "--config", t.TempDir()}, args[1:]...)
	code = d.Run(context.Background(), full, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func storeTokens(t *testing.T, store credstore.Store, pair service.TokenPair) {
	t.Helper()
	require.NoError(t, store.SetAccessToken(pair.AccessToken))
	require.NoError(t, store.SetRefreshToken(pair.RefreshToken))
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, _, d := newFixture(t)

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"unknowncmd"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	_, _, d := newFixture(t)

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_HelpAndVersionNeedNoApp(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, func(context.Context, *config.Config) (*app.App, error) {
		t.Fatal("factory must not be called")
		return nil, nil
	})

	stdout, stderr, code := run(t, d, "help")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}

	stdout, _, code = run(t, d, "version")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "tasktrack 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	svc, _, d := newFixture(t)

	for _, args := range [][]string{{"list"}, {"add", "Buy milk"}, {"whoami"}} {
		_, stderr, code := run(t, d, args...)
		if code != exitcode.AuthError {
			t.Errorf("%v: expected exit code %d, got %d", args, exitcode.AuthError, code)
		}
		expected := "error: not logged in (run: tasktrack login)\n"
		if stderr != expected {
			t.Errorf("%v: expected %q, got %q", args, expected, stderr)
		}
	}
	require.Zero(t, svc.Calls("ListTasks"))
	require.Zero(t, svc.Calls("CreateTask"))
}

func TestDispatcher_LoginThenList(t *testing.T) {
	svc, _, d := newFixture(t)

	stdout, stderr, code := run(t, d, "login", "--email", testEmail, "--password", "secret")
	require.Equal(t, exitcode.Success, code, stderr)
	require.Equal(t, "ok\n", stdout)

	_, stderr, code = run(t, d, "add", "--due", "2026-04-01", "Buy milk")
	require.Equal(t, exitcode.Success, code, stderr)

	stdout, _, code = run(t, d, "list")
	require.Equal(t, exitcode.Success, code)
	require.Contains(t, stdout, "   1  ")
	require.Contains(t, stdout, "Buy milk  (due 2026-04-01)")

	_, _, code = run(t, d, "logout")
	require.Equal(t, exitcode.Success, code)
	require.Equal(t, 1, svc.Calls("Logout"))

	_, _, code = run(t, d, "list")
	require.Equal(t, exitcode.AuthError, code)
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	svc, store, d := newFixture(t)
	storeTokens(t, store, svc.IssueTokens(testEmail))

	var stdout, stderr bytes.Buffer
	code := d.Run(context.Background(), nil, &stdout, &stderr)

	require.Equal(t, exitcode.Success, code, stderr.String())
	require.Equal(t, "no tasks found\n", stdout.String())
	require.Equal(t, 1, svc.Calls("ListTasks"))
}

func TestDispatcher_ExpiredSessionIsRefreshed(t *testing.T) {
	svc, store, d := newFixture(t)
	svc.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale := svc.IssueTokens(testEmail)
	svc.Now = time.Now
	storeTokens(t, store, stale)

	_, stderr, code := run(t, d, "whoami")

	require.Equal(t, exitcode.Success, code, stderr)
	require.Equal(t, 1, svc.Calls("Refresh"))
	pair, err := store.Load()
	require.NoError(t, err)
	require.NotEqual(t, stale.AccessToken, pair.AccessToken)
	require.NotEqual(t, stale.RefreshToken, pair.RefreshToken)
}

func TestDispatcher_ExpiredSessionRefreshRejected(t *testing.T) {
	svc, store, d := newFixture(t)
	svc.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale := svc.IssueTokens(testEmail)
	svc.Now = time.Now
	storeTokens(t, store, stale)
	svc.RefreshErr = testutil.Errorf(401, "Invalid refresh token")

	_, stderr, code := run(t, d, "list")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: session expired (run: tasktrack login)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	pair, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, pair.AccessToken)
}

func TestDispatcher_FlagErrors(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		stderr string
	}{
		{"unknown flag", []string{"list", "--bogus"}, "error: unknown flag: -bogus\n"},
		{"missing value", []string{"add", "--due"}, "error: flag needs an argument: -due\n"},
		{"flag after positional", []string{"rm", "--", "-1"}, "error: unknown flag: -1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, d := newFixture(t)
			var stdout, stderr bytes.Buffer
			code := d.Run(context.Background(), tt.args, &stdout, &stderr)
			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr.String() != tt.stderr {
				t.Errorf("expected %q, got %q", tt.stderr, stderr.String())
			}
		})
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	d := cli.NewDispatcher(commands.DefaultRegistry, func(context.Context, *config.Config) (*app.App, error) {
		return nil, errors.New("credentials.db: timeout")
	})

	_, stderr, code := run(t, d, "logout")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: auth error: credentials.db: timeout\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}
