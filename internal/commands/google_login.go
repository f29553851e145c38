package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"

	"tasktrack/internal/app"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/importer/googletasks"
)

const (
	callbackTimeout   = 5 * time.Minute
	exchangeTimeout   = 30 * time.Second
	tokenProbeTimeout = 10 * time.Second

	// The loopback redirect listens on the first free port in this range.
	callbackFirstPort = 8085
	callbackPorts     = 5
)

const missingClientHelp = `Importing from Google Tasks needs a Desktop OAuth client:

1. Open https://console.cloud.google.com/apis/credentials
2. Enable the Google Tasks API for the project
3. Create an OAuth client ID of type "Desktop app"
4. Download its JSON and save it as:
   %s

Then run 'tasktrack google-login' again.
`

func init() {
	Register(&GoogleLoginCmd{})
}

// GoogleLoginCmd authorizes read access to Google Tasks for import.
type GoogleLoginCmd struct{}

func (c *GoogleLoginCmd) Name() string          { return "google-login" }
func (c *GoogleLoginCmd) Aliases() []string     { return nil }
func (c *GoogleLoginCmd) Synopsis() string      { return "Authorize Google Tasks import" }
func (c *GoogleLoginCmd) Usage() string         { return "tasktrack google-login" }
func (c *GoogleLoginCmd) Requires() Requirement { return RequiresNothing }

func (c *GoogleLoginCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *GoogleLoginCmd) Run(ctx context.Context, cfg *config.Config, _ *app.App, args []string, out, errOut io.Writer) int {
	clientPath := cfg.GoogleClientPath()
	if !cfg.HasGoogleClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n\n", filepath.Base(clientPath), cfg.Dir)
		fmt.Fprintf(errOut, missingClientHelp, clientPath)
		return exitcode.AuthError
	}

	oauthCfg, err := googletasks.OAuthConfig(clientPath)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if googleTokenValid(ctx, cfg.GoogleTokenPath(), oauthCfg) {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in to Google")
		}
		return exitcode.Success
	}

	token, err := authorize(ctx, oauthCfg, errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := googletasks.SaveToken(cfg.GoogleTokenPath(), token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	return ok(out, cfg.Quiet)
}

// authorize runs the PKCE loopback flow: print the consent URL, wait for
// the redirect, exchange the code.
func authorize(ctx context.Context, oauthCfg *oauth2.Config, errOut io.Writer) (*oauth2.Token, error) {
	ln, port, err := listenLoopback()
	if err != nil {
		return nil, errors.New("could not bind to local port for OAuth callback")
	}
	defer ln.Close()

	state, err := randomState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()
	oauthCfg.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)

	fmt.Fprintln(errOut, "Open this URL in your browser:")
	fmt.Fprintln(errOut, oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	))

	cb := newOAuthCallback(state)
	code, err := cb.wait(ctx, ln)
	if err != nil {
		return nil, err
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()
	token, err := oauthCfg.Exchange(exchangeCtx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}
	return token, nil
}

// oauthCallback receives exactly one redirect carrying the expected state.
type oauthCallback struct {
	state string
	codes chan string
	errs  chan error
}

func newOAuthCallback(state string) *oauthCallback {
	return &oauthCallback{
		state: state,
		codes: make(chan string, 1),
		errs:  make(chan error, 1),
	}
}

func (cb *oauthCallback) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("state") != cb.state:
		http.Error(w, "state mismatch", http.StatusBadRequest)
		cb.fail(errors.New("oauth callback state mismatch"))
	case q.Get("error") != "":
		http.Error(w, "authorization denied", http.StatusForbidden)
		cb.fail(fmt.Errorf("authorization denied: %s", q.Get("error")))
	case q.Get("code") == "":
		http.Error(w, "no code in callback", http.StatusBadRequest)
		cb.fail(errors.New("no code in callback"))
	default:
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>tasktrack is authorized</h1><p>You can close this window.</p></body></html>")
		select {
		case cb.codes <- q.Get("code"):
		default:
		}
	}
}

func (cb *oauthCallback) fail(err error) {
	select {
	case cb.errs <- err:
	default:
	}
}

func (cb *oauthCallback) wait(ctx context.Context, ln net.Listener) (string, error) {
	mux := http.NewServeMux()
	mux.Handle("/callback", cb)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cb.fail(err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	timer := time.NewTimer(callbackTimeout)
	defer timer.Stop()

	select {
	case code := <-cb.codes:
		return code, nil
	case err := <-cb.errs:
		return "", err
	case <-timer.C:
		return "", errors.New("oauth callback timed out")
	case <-ctx.Done():
		return "", errors.New("cancelled")
	}
}

func listenLoopback() (net.Listener, int, error) {
	var lastErr error
	for port := callbackFirstPort; port < callbackFirstPort+callbackPorts; port++ {
		ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return ln, port, nil
		}
		lastErr = err
	}
	return nil, 0, lastErr
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// googleTokenValid reports whether the saved token has a refresh token and
// still yields an access token.
func googleTokenValid(ctx context.Context, path string, oauthCfg *oauth2.Config) bool {
	token, err := googletasks.LoadToken(path)
	if err != nil || token.RefreshToken == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, tokenProbeTimeout)
	defer cancel()
	_, err = oauthCfg.TokenSource(ctx, token).Token()
	return err == nil
}
