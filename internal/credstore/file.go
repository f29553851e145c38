package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"

	"tasktrack/internal/service"
)

// File stores the token pair as an oauth2.Token JSON document.
// The file is written with mode 0600 and removed when both tokens are empty.
type File struct {
	path string

	mu     sync.Mutex
	loaded bool
	pair   service.TokenPair
}

// NewFile returns a File store at path. The file is read lazily.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the token file location.
func (f *File) Path() string {
	return f.path
}

func (f *File) Load() (service.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadLocked(); err != nil {
		return service.TokenPair{}, err
	}
	return f.pair, nil
}

func (f *File) SetAccessToken(token string) error {
	return f.update(func(p *service.TokenPair) { p.AccessToken = token })
}

func (f *File) SetRefreshToken(token string) error {
	return f.update(func(p *service.TokenPair) { p.RefreshToken = token })
}

func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pair = service.TokenPair{}
	f.loaded = true
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

func (f *File) update(apply func(*service.TokenPair)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// A corrupt file is overwritten rather than blocking new credentials.
	if err := f.loadLocked(); err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	next := f.pair
	apply(&next)
	if err := f.write(next); err != nil {
		return err
	}
	f.pair = next
	f.loaded = true
	return nil
}

func (f *File) loadLocked() error {
	if f.loaded {
		return nil
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		f.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, filepath.Base(f.path), err)
	}
	f.pair = service.TokenPair{AccessToken: token.AccessToken, RefreshToken: token.RefreshToken}
	f.loaded = true
	return nil
}

func (f *File) write(pair service.TokenPair) error {
	if pair.AccessToken == "" && pair.RefreshToken == "" {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove token: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	token := &oauth2.Token{
		AccessToken:  pair.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: pair.RefreshToken,
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.path, data, 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}
