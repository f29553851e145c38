// Package gateway sends every API request, attaching the bearer token and
// transparently refreshing expired credentials.
//
// On a 401 the first request to notice becomes the refresher: it posts the
// refresh credentials once, re-establishes the session and replays itself.
// Requests that hit 401 while that refresh is in flight wait for its outcome
// and replay with the new token, so at most one refresh is ever in flight.
// A 401 for a token that has since been replaced replays without refreshing.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 10 * time.Second

	// DefaultRefreshTimeout bounds the shared refresh and session re-establishment.
	DefaultRefreshTimeout = 15 * time.Second

	// RefreshPath is the token refresh endpoint.
	RefreshPath = "/refresh"

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20
)

// Session is the part of the session manager the gateway relies on.
type Session interface {
	// AccessToken returns the persisted access token, or "".
	AccessToken() string

	// RefreshCredentials returns what the refresh endpoint needs.
	RefreshCredentials() (email, refreshToken string, ok bool)

	// EstablishSession installs a freshly issued token pair.
	EstablishSession(ctx context.Context, accessToken, refreshToken string) error

	// Logout ends the session after a failed refresh.
	Logout(ctx context.Context) error
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Body   any

	// NoAuth skips the Authorization header.
	NoAuth bool

	// NoRefresh returns a 401 as is instead of refreshing.
	NoRefresh bool

	retried bool
}

// TokenResponse is the body of the login, registration and refresh endpoints.
// Decoding is case-insensitive, so PascalCase fields are accepted too.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type refreshRequest struct {
	Email        string `json:"email"`
	RefreshToken string `json:"refreshToken"`
}

type refreshResult struct {
	token string
	err   error
}

// Config configures a Gateway.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	RefreshTimeout time.Duration
	HTTPClient     *http.Client
}

// Gateway is the single outbound path to the API.
type Gateway struct {
	baseURL        string
	timeout        time.Duration
	refreshTimeout time.Duration
	client         *http.Client
	log            *zap.Logger

	mu         sync.Mutex
	session    Session
	refreshing bool
	waiters    []chan refreshResult
}

// New creates a Gateway. A nil logger disables logging.
func New(cfg Config, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	refreshTimeout := cfg.RefreshTimeout
	if refreshTimeout <= 0 {
		refreshTimeout = DefaultRefreshTimeout
	}
	return &Gateway{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		timeout:        timeout,
		refreshTimeout: refreshTimeout,
		client:         client,
		log:            log.Named("gateway"),
	}
}

// Attach connects the session whose tokens the gateway uses.
func (g *Gateway) Attach(s Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = s
}

func (g *Gateway) currentSession() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Do sends r and decodes a 2xx JSON body into out (when out is non-nil).
// Non-2xx replies are returned as *APIError.
func (g *Gateway) Do(ctx context.Context, r *Request, out any) error {
	sess := g.currentSession()

	token := ""
	if sess != nil {
		token = sess.AccessToken()
	}

	status, body, err := g.send(ctx, r, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && g.canRefresh(ctx, r, sess) {
		r.retried = true
		token, err = g.awaitRefresh(ctx, sess, token)
		if err != nil {
			return err
		}
		g.log.Debug("replaying request", zap.String("method", r.Method), zap.String("path", r.Path))
		status, body, err = g.send(ctx, r, token)
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return newAPIError(status, body)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", r.Method, r.Path, err)
	}
	return nil
}

func (g *Gateway) canRefresh(ctx context.Context, r *Request, sess Session) bool {
	if r.retried || r.NoRefresh || inRefresh(ctx) || sess == nil {
		return false
	}
	_, _, ok := sess.RefreshCredentials()
	return ok
}

// awaitRefresh joins the in-flight refresh or starts one, and waits for its
// outcome. The refresh itself is not bound to ctx.
//
// sent is the token the rejected request carried. When no refresh is in
// flight and the session already holds a different token, an earlier
// refresh has settled and that token is returned as is.
func (g *Gateway) awaitRefresh(ctx context.Context, sess Session, sent string) (string, error) {
	ch := make(chan refreshResult, 1)

	g.mu.Lock()
	if !g.refreshing {
		if current := sess.AccessToken(); current != "" && current != sent {
			g.mu.Unlock()
			g.log.Debug("token already refreshed, replaying")
			return current, nil
		}
	}
	g.waiters = append(g.waiters, ch)
	start := !g.refreshing
	g.refreshing = true
	queued := len(g.waiters)
	g.mu.Unlock()

	if start {
		go g.runRefresh(context.WithoutCancel(ctx), sess)
	} else {
		g.log.Debug("waiting for in-flight refresh", zap.Int("waiters", queued))
	}

	select {
	case res := <-ch:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (g *Gateway) runRefresh(ctx context.Context, sess Session) {
	token, err := g.refresh(ctx, sess)

	g.mu.Lock()
	waiters := g.waiters
	g.waiters = nil
	g.refreshing = false
	g.mu.Unlock()

	g.log.Debug("refresh settled", zap.Int("waiters", len(waiters)), zap.Bool("ok", err == nil))
	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}
}

func (g *Gateway) refresh(ctx context.Context, sess Session) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.refreshTimeout)
	defer cancel()
	ctx = withRefresh(ctx)

	token, err := g.exchange(ctx, sess)
	if err != nil {
		g.log.Warn("refresh failed, logging out", zap.Error(err))
		if logoutErr := sess.Logout(ctx); logoutErr != nil {
			g.log.Debug("logout after failed refresh", zap.Error(logoutErr))
		}
		return "", fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return token, nil
}

func (g *Gateway) exchange(ctx context.Context, sess Session) (string, error) {
	email, refreshToken, ok := sess.RefreshCredentials()
	if !ok {
		return "", ErrNoRefreshCredentials
	}

	g.log.Debug("refreshing access token")
	var resp TokenResponse
	err := g.Do(ctx, &Request{
		Method:    http.MethodPost,
		Path:      RefreshPath,
		Body:      refreshRequest{Email: email, RefreshToken: refreshToken},
		NoAuth:    true,
		NoRefresh: true,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("refresh response has no access token")
	}
	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}

	if err := sess.EstablishSession(ctx, resp.AccessToken, resp.RefreshToken); err != nil {
		return "", err
	}
	return resp.AccessToken, nil
}

func (g *Gateway) send(ctx context.Context, r *Request, token string) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode %s %s body: %w", r.Method, r.Path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, g.baseURL+r.Path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !r.NoAuth && token != "" {
		(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, nil, transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, nil, transportError(err)
	}

	g.log.Debug("request",
		zap.String("method", r.Method),
		zap.String("path", r.Path),
		zap.Int("status", resp.StatusCode),
		zap.Bool("retried", r.retried),
	)
	return resp.StatusCode, data, nil
}

type refreshKey struct{}

// withRefresh marks ctx as belonging to the refresh itself. Requests made
// under it never start or join a refresh.
func withRefresh(ctx context.Context) context.Context {
	return context.WithValue(ctx, refreshKey{}, true)
}

func inRefresh(ctx context.Context) bool {
	v, _ := ctx.Value(refreshKey{}).(bool)
	return v
}
