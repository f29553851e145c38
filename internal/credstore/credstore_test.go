package credstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"tasktrack/internal/service"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	pair, err := s.Load()
	require.NoError(t, err)
	require.Empty(t, pair.AccessToken)
	require.Empty(t, pair.RefreshToken)

	require.NoError(t, s.SetAccessToken("T1"))
	require.NoError(t, s.SetRefreshToken("R1"))

	pair, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, service.TokenPair{AccessToken: "T1", RefreshToken: "R1"}, pair)

	require.NoError(t, s.SetAccessToken("T2"))
	pair, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, "T2", pair.AccessToken)
	require.Equal(t, "R1", pair.RefreshToken)

	require.NoError(t, s.Clear())
	pair, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, service.TokenPair{}, pair)
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory(service.TokenPair{}))
}

func TestFile(t *testing.T) {
	exerciseStore(t, NewFile(filepath.Join(t.TempDir(), "token.json")))
}

func TestBolt(t *testing.T) {
	b, err := OpenBolt(filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	exerciseStore(t, b)
}

func TestFile_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	f := NewFile(path)
	require.NoError(t, f.SetAccessToken("access"))
	require.NoError(t, f.SetRefreshToken("refresh"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var token oauth2.Token
	require.NoError(t, json.Unmarshal(data, &token))
	require.Equal(t, "access", token.AccessToken)
	require.Equal(t, "refresh", token.RefreshToken)

	// A fresh store sees the persisted pair.
	pair, err := NewFile(path).Load()
	require.NoError(t, err)
	require.Equal(t, "access", pair.AccessToken)
}

func TestFile_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	f := NewFile(path)
	require.NoError(t, f.SetAccessToken("access"))
	require.NoError(t, f.Clear())

	_, err := os.Stat(path)
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFile_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFile(path).Load()
	require.ErrorIs(t, err, ErrCorrupt)

	f := NewFile(path)
	require.NoError(t, f.SetAccessToken("fresh"))
	pair, err := f.Load()
	require.NoError(t, err)
	require.Equal(t, "fresh", pair.AccessToken)
}
