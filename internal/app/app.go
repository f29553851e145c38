// Package app wires the gateway, REST backend, session manager and task
// store for one process.
package app

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"tasktrack/internal/backend/rest"
	"tasktrack/internal/config"
	"tasktrack/internal/credstore"
	"tasktrack/internal/gateway"
	"tasktrack/internal/importer/googletasks"
	"tasktrack/internal/service"
	"tasktrack/internal/session"
	"tasktrack/internal/tasks"
)

// GoogleSourceFactory opens the Google Tasks account to import from.
type GoogleSourceFactory func(ctx context.Context) (googletasks.Source, error)

// App holds the wired components.
type App struct {
	Log     *zap.Logger
	API     service.Service
	Session *session.Manager
	Tasks   *tasks.Store

	// GoogleSource opens the import source. Replaced in tests.
	GoogleSource GoogleSourceFactory

	closers []io.Closer
}

// New builds the production wiring from cfg.
func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	store, closer, err := OpenCredentialStore(cfg)
	if err != nil {
		return nil, err
	}

	gw := gateway.New(gateway.Config{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		RefreshTimeout: cfg.API.RefreshTimeout,
	}, log)

	a := Wire(rest.New(gw, log), store, log)
	gw.Attach(a.Session)
	a.GoogleSource = func(ctx context.Context) (googletasks.Source, error) {
		return googletasks.New(ctx, cfg.GoogleClientPath(), cfg.GoogleTokenPath())
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	return a, nil
}

// Wire connects an API implementation and a credential store.
func Wire(api service.Service, store credstore.Store, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	mgr := session.New(api, store, log)
	return &App{
		Log:     log,
		API:     api,
		Session: mgr,
		Tasks:   tasks.New(api, mgr, log),
		GoogleSource: func(context.Context) (googletasks.Source, error) {
			return nil, fmt.Errorf("google import is not configured")
		},
	}
}

// OpenCredentialStore opens the store selected by cfg. The returned closer
// is nil when the store holds no resources.
func OpenCredentialStore(cfg *config.Config) (credstore.Store, io.Closer, error) {
	switch cfg.CredentialStore {
	case config.StoreBolt:
		if err := cfg.EnsureDir(); err != nil {
			return nil, nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		b, err := credstore.OpenBolt(cfg.CredentialsDBPath())
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil
	default:
		return credstore.NewFile(cfg.TokenPath()), nil, nil
	}
}

// Close releases held resources and flushes the logger.
func (a *App) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	_ = a.Log.Sync()
	return firstErr
}
