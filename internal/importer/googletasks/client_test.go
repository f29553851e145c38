package googletasks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/service"
	"tasktrack/internal/tasks"
	"tasktrack/internal/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewWithHTTPClient(context.Background(), srv.Client(), srv.URL+"/")
	require.NoError(t, err)
	return c
}

func TestClient_ListsAndOpenTasks(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/users/@me/lists/@default"):
			_, _ = w.Write([]byte(`{"id":"L1","title":"My Tasks"}`))
		case strings.HasSuffix(r.URL.Path, "/users/@me/lists"):
			_, _ = w.Write([]byte(`{"items":[{"id":"L1","title":"My Tasks"},{"id":"L2","title":"Work"}]}`))
		case strings.HasSuffix(r.URL.Path, "/lists/L2/tasks"):
			require.Equal(t, "false", r.URL.Query().Get("showCompleted"))
			if r.URL.Query().Get("pageToken") == "" {
				_, _ = w.Write([]byte(`{"items":[{"title":"Ship it","notes":"v2","due":"2025-04-01T00:00:00.000Z"}],"nextPageToken":"p2"}`))
				return
			}
			_, _ = w.Write([]byte(`{"items":[{"title":"Review"}]}`))
		default:
			http.NotFound(w, r)
		}
	})

	lists, err := c.Lists(context.Background())
	require.NoError(t, err)
	require.Equal(t, []List{
		{ID: "L1", Title: "My Tasks", IsDefault: true},
		{ID: "L2", Title: "Work"},
	}, lists)

	items, err := c.OpenTasks(context.Background(), "L2")
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "Ship it", items[0].Title)
	require.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), *items[0].Due)
	require.Nil(t, items[1].Due)
}

func TestClient_AuthError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.Lists(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "google-login")
}

func TestResolveList(t *testing.T) {
	lists := []List{{ID: "1", Title: "Work"}, {ID: "2", Title: "Home"}, {ID: "3", Title: "home "}}

	got, err := ResolveList(lists, " work ")
	require.NoError(t, err)
	require.Equal(t, "1", got.ID)

	_, err = ResolveList(lists, "home")
	require.ErrorContains(t, err, "ambiguous")

	_, err = ResolveList(lists, "garden")
	require.ErrorContains(t, err, "not found")
}

type fakeSource struct {
	items map[string][]Item
}

func (f *fakeSource) Lists(context.Context) ([]List, error) { return nil, nil }

func (f *fakeSource) OpenTasks(_ context.Context, listID string) ([]Item, error) {
	return f.items[listID], nil
}

type staticUser uuid.UUID

func (u staticUser) UserID() (uuid.UUID, bool) { return uuid.UUID(u), true }

func TestImport_SkipsDuplicates(t *testing.T) {
	fake := testutil.NewFakeService()
	user := fake.AddUser("ann@example.com", "pw", "Ann")
	due := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	fake.AddTask(user.ID, "Ship it", service.StatusInProgress, &due)

	store := tasks.New(fake, staticUser(user.ID), nil)
	require.NoError(t, store.LoadTasks(context.Background()))

	src := &fakeSource{items: map[string][]Item{
		"L1": {{Title: "ship it", Due: &due}, {Title: "Review", Notes: "PR 12"}, {Title: "  "}},
		"L2": {{Title: "Review", Notes: "again"}},
	}}

	sum, err := Import(context.Background(), src, store, []List{{ID: "L1"}, {ID: "L2"}})
	require.NoError(t, err)
	require.Equal(t, Summary{Imported: 1, Skipped: 3}, sum)

	stored := fake.StoredTasks(user.ID)
	require.Len(t, stored, 2)
	require.Equal(t, "Review", stored[1].Title)
	require.Equal(t, "PR 12", stored[1].Description)
	require.Equal(t, service.StatusTodo, stored[1].Status)
}
