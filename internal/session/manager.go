// Package session owns the client-side session: who is logged in, with
// which tokens, and the transitions between those states.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasktrack/internal/credstore"
	"tasktrack/internal/gateway"
	"tasktrack/internal/service"
)

// Manager holds the session state. All transitions happen under one lock;
// network calls never hold it.
type Manager struct {
	api   service.Service
	store credstore.Store
	log   *zap.Logger
	now   func() time.Time

	mu       sync.Mutex
	state    State
	loading  int
	resolved bool
}

// New creates a Manager. A nil logger disables logging.
func New(api service.Service, store credstore.Store, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		api:   api,
		store: store,
		log:   log.Named("session"),
		now:   time.Now,
	}
}

// SetClock replaces the clock used for expiry checks (for testing).
func (m *Manager) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// State returns a copy of the current session.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	s.IsLoading = m.loading > 0
	switch {
	case s.IsLoading:
		s.Phase = PhaseLoading
	case s.IsAuthenticated:
		s.Phase = PhaseAuthenticated
	case m.resolved:
		s.Phase = PhaseUnauthenticated
	default:
		s.Phase = PhaseUnknown
	}
	return s
}

// UserID returns the authenticated user's id.
func (m *Manager) UserID() (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.IsAuthenticated || m.state.User == nil {
		return uuid.Nil, false
	}
	return m.state.User.ID, true
}

// AccessToken returns the persisted access token.
func (m *Manager) AccessToken() string {
	pair, err := m.store.Load()
	if err != nil {
		m.log.Warn("read credentials", zap.Error(err))
		return ""
	}
	return pair.AccessToken
}

// RefreshCredentials returns the email and refresh token needed to refresh.
func (m *Manager) RefreshCredentials() (string, string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.User == nil || m.state.User.Email == "" || m.state.RefreshToken == "" {
		return "", "", false
	}
	return m.state.User.Email, m.state.RefreshToken, true
}

// Login exchanges credentials for tokens and establishes the session.
func (m *Manager) Login(ctx context.Context, creds service.Credentials) error {
	done := m.begin()
	defer done()

	pair, err := m.api.Login(ctx, creds)
	if err != nil {
		m.log.Debug("login rejected", zap.Error(err))
		m.clear(serverMessage(err, MsgLoginFailed))
		return fmt.Errorf("login: %w", err)
	}
	return m.EstablishSession(ctx, pair.AccessToken, pair.RefreshToken)
}

// Register creates an account and establishes its session.
func (m *Manager) Register(ctx context.Context, reg service.Registration) error {
	done := m.begin()
	defer done()

	pair, err := m.api.Register(ctx, reg)
	if err != nil {
		m.log.Debug("registration rejected", zap.Error(err))
		m.clear(serverMessage(err, MsgRegistrationFailed))
		return fmt.Errorf("register: %w", err)
	}
	return m.EstablishSession(ctx, pair.AccessToken, pair.RefreshToken)
}

// Logout tells the server (best effort) and clears the session.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.api.Logout(ctx); err != nil {
		m.log.Warn("server logout failed", zap.Error(err))
	}
	m.ClearSession()
	return nil
}

// CheckAuth restores the session from the credential store. Failures leave
// the session cleared and are not returned; only an unreadable store is.
//
// An expired access token is exchanged once for a new pair when a refresh
// token and the token's email are available.
func (m *Manager) CheckAuth(ctx context.Context) error {
	pair, err := m.store.Load()
	if err != nil {
		if errors.Is(err, credstore.ErrCorrupt) {
			m.log.Warn("discarding unreadable credentials", zap.Error(err))
			m.ClearSession()
			return nil
		}
		return fmt.Errorf("load credentials: %w", err)
	}
	if pair.AccessToken == "" {
		m.clear("")
		return nil
	}

	done := m.begin()
	defer done()

	if refreshed, ok := m.refreshExpired(ctx, pair); ok {
		pair = refreshed
	}
	if err := m.EstablishSession(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
		m.log.Debug("stored session rejected", zap.Error(err))
	}
	return nil
}

func (m *Manager) refreshExpired(ctx context.Context, pair service.TokenPair) (service.TokenPair, bool) {
	if pair.RefreshToken == "" {
		return pair, false
	}
	decoded, err := DecodeToken(pair.AccessToken)
	if err != nil || decoded.Email == "" || !m.expired(decoded) {
		return pair, false
	}

	m.log.Debug("stored access token expired, refreshing")
	next, err := m.api.Refresh(ctx, decoded.Email, pair.RefreshToken)
	if err != nil {
		m.log.Debug("startup refresh failed", zap.Error(err))
		return pair, false
	}
	return next, true
}

// EstablishSession validates an access token, loads the profile and makes
// the session authenticated. Every failure leaves the session cleared.
func (m *Manager) EstablishSession(ctx context.Context, accessToken, refreshToken string) error {
	if accessToken == "" {
		m.clear("")
		return ErrNoToken
	}

	decoded, err := DecodeToken(accessToken)
	if err != nil {
		m.clear(MsgSessionInit)
		return err
	}
	if m.expired(decoded) {
		m.clear(MsgSessionExpired)
		return ErrTokenExpired
	}
	userID, err := uuid.Parse(decoded.UserID)
	if err != nil {
		m.clear(MsgSessionInit)
		return fmt.Errorf("%w: user id: %w", ErrInvalidToken, err)
	}

	// Persisted before the profile fetch so that request carries it.
	if err := m.store.SetAccessToken(accessToken); err != nil {
		m.clear(MsgSessionInit)
		return fmt.Errorf("persist access token: %w", err)
	}

	user, err := m.api.GetUser(ctx, userID)
	if err != nil {
		m.clear(MsgSessionInit)
		return fmt.Errorf("fetch profile: %w", err)
	}

	if refreshToken != "" {
		if err := m.store.SetRefreshToken(refreshToken); err != nil {
			m.clear(MsgSessionInit)
			return fmt.Errorf("persist refresh token: %w", err)
		}
	}

	m.mu.Lock()
	m.state = State{
		User:            &user,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		IsAuthenticated: true,
	}
	m.resolved = true
	m.mu.Unlock()

	m.log.Debug("session established", zap.Stringer("user", user.ID))
	return nil
}

// ClearSession removes persisted tokens and resets the session.
func (m *Manager) ClearSession() {
	m.clear("")
}

// UpdateProfile changes profile fields and installs the server's copy.
func (m *Manager) UpdateProfile(ctx context.Context, upd service.ProfileUpdate) (service.UserProfile, error) {
	userID, ok := m.UserID()
	if !ok {
		return service.UserProfile{}, ErrNotAuthenticated
	}
	upd.UserID = userID

	done := m.begin()
	defer done()

	user, err := m.api.UpdateProfile(ctx, upd)
	if err != nil {
		m.setError(gateway.Message(err))
		return service.UserProfile{}, fmt.Errorf("update profile: %w", err)
	}

	m.mu.Lock()
	if m.state.IsAuthenticated && m.state.User != nil && m.state.User.ID == user.ID {
		u := user
		m.state.User = &u
		m.state.Error = ""
	}
	m.mu.Unlock()
	return user, nil
}

// ChangePassword replaces the current user's password.
func (m *Manager) ChangePassword(ctx context.Context, current, next string) error {
	userID, ok := m.UserID()
	if !ok {
		return ErrNotAuthenticated
	}

	done := m.begin()
	defer done()

	err := m.api.ChangePassword(ctx, userID, service.PasswordChange{CurrentPassword: current, NewPassword: next})
	if err != nil {
		m.setError(gateway.Message(err))
		return fmt.Errorf("change password: %w", err)
	}
	return nil
}

// ClearError dismisses the current error.
func (m *Manager) ClearError() {
	m.setError("")
}

func (m *Manager) expired(t DecodedToken) bool {
	m.mu.Lock()
	now := m.now()
	m.mu.Unlock()
	return t.ExpiresAt*1000 <= now.UnixMilli()
}

// begin marks an operation in flight and returns its completion func.
func (m *Manager) begin() func() {
	m.mu.Lock()
	m.loading++
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.loading--
		m.mu.Unlock()
	}
}

func (m *Manager) clear(msg string) {
	if err := m.store.Clear(); err != nil {
		m.log.Warn("clear credentials", zap.Error(err))
	}
	m.mu.Lock()
	m.state = State{Error: msg}
	m.resolved = true
	m.mu.Unlock()
}

func (m *Manager) setError(msg string) {
	m.mu.Lock()
	m.state.Error = msg
	m.mu.Unlock()
}

// serverMessage returns the API's message for err, or fallback when the
// server did not supply one.
func serverMessage(err error, fallback string) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) && apiErr.ServerMessage() != "" {
		return apiErr.ServerMessage()
	}
	return fallback
}
