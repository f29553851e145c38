package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/config"
	"tasktrack/internal/service"
	"tasktrack/internal/testutil"
)

func TestOpenCredentialStore(t *testing.T) {
	dir := t.TempDir()

	cfg := &config.Config{Dir: dir}
	cfg.CredentialStore = config.StoreFile
	store, closer, err := OpenCredentialStore(cfg)
	require.NoError(t, err)
	require.Nil(t, closer)
	require.NoError(t, store.SetAccessToken("T"))
	_, err = os.Stat(filepath.Join(dir, config.TokenFile))
	require.NoError(t, err)

	cfg.CredentialStore = config.StoreBolt
	store, closer, err = OpenCredentialStore(cfg)
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()
	require.NoError(t, store.SetAccessToken("T"))
	_, err = os.Stat(filepath.Join(dir, config.CredentialsDBFile))
	require.NoError(t, err)
}

// apiServer is a minimal task API whose first token expires on the first
// task listing, forcing one refresh.
type apiServer struct {
	userID    uuid.UUID
	refreshes atomic.Int32
	access    atomic.Value
}

func (s *apiServer) issue() (string, string) {
	token := testutil.MintToken(s.userID, "ann@example.com", time.Now().Add(time.Hour))
	s.access.Store(token)
	return token, uuid.NewString()
}

func (s *apiServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reply := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	authorized := r.Header.Get("Authorization") == "Bearer "+s.access.Load().(string)

	switch {
	case r.URL.Path == "/api/login":
		access, refresh := s.issue()
		reply(map[string]string{"accessToken": access, "refreshToken": refresh})
	case r.URL.Path == "/api/refresh":
		s.refreshes.Add(1)
		access, refresh := s.issue()
		reply(map[string]string{"accessToken": access, "refreshToken": refresh})
	case strings.HasPrefix(r.URL.Path, "/api/user/"):
		if !authorized {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		reply(map[string]any{"id": s.userID.String(), "firstName": "Ann", "email": "ann@example.com", "roleId": 1})
	case strings.HasPrefix(r.URL.Path, "/api/task/user/"):
		if !authorized || s.refreshes.Load() == 0 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		reply([]map[string]any{{"id": uuid.NewString(), "title": "from server", "status": 0}})
	default:
		http.NotFound(w, r)
	}
}

func TestNew_EndToEndRefresh(t *testing.T) {
	api := &apiServer{userID: uuid.New()}
	api.access.Store("")
	srv := httptest.NewServer(api)
	defer srv.Close()

	cfg := &config.Config{Dir: t.TempDir()}
	cfg.API.BaseURL = srv.URL + "/api"
	cfg.CredentialStore = config.StoreFile

	a, err := New(cfg, nil)
	require.NoError(t, err)
	defer a.Close()

	ctx := context.Background()
	require.NoError(t, a.Session.Login(ctx, service.Credentials{Email: "ann@example.com", Password: "pw"}))
	first := a.Session.State().AccessToken

	require.NoError(t, a.Tasks.LoadTasks(ctx))
	require.Len(t, a.Tasks.Tasks(), 1)
	require.EqualValues(t, 1, api.refreshes.Load())

	state := a.Session.State()
	require.True(t, state.IsAuthenticated)
	require.NotEqual(t, first, state.AccessToken)
}
