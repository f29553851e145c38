package credstore

import (
	"sync"

	"tasktrack/internal/service"
)

// Memory keeps tokens in process memory only.
type Memory struct {
	mu   sync.Mutex
	pair service.TokenPair
}

// NewMemory returns a Memory store seeded with pair.
func NewMemory(pair service.TokenPair) *Memory {
	return &Memory{pair: pair}
}

func (m *Memory) Load() (service.TokenPair, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pair, nil
}

func (m *Memory) SetAccessToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair.AccessToken = token
	return nil
}

func (m *Memory) SetRefreshToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair.RefreshToken = token
	return nil
}

func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pair = service.TokenPair{}
	return nil
}
