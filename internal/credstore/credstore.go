// Package credstore persists the access and refresh tokens between runs.
package credstore

import (
	"errors"

	"tasktrack/internal/service"
)

// Fixed keys under which the tokens are stored.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// ErrCorrupt is returned when stored credentials cannot be decoded.
var ErrCorrupt = errors.New("credential store is corrupt")

// Store is a key-value store for the token pair.
// A missing token loads as the empty string.
type Store interface {
	Load() (service.TokenPair, error)
	SetAccessToken(token string) error
	SetRefreshToken(token string) error
	Clear() error
}
