package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"tasktrack/internal/gateway"
	"tasktrack/internal/service"
)

type recorded struct {
	method string
	path   string
	body   map[string]any
}

func newClient(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			require.NoError(t, json.Unmarshal(data, &rec.body))
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	gw := gateway.New(gateway.Config{BaseURL: srv.URL, Timeout: 2 * time.Second}, nil)
	return New(gw, nil), &calls
}

func reply(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, body)
}

func TestLogin_AcceptsPascalCaseTokens(t *testing.T) {
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"AccessToken":"T1","RefreshToken":"R1"}`)
	})

	pair, err := c.Login(context.Background(), service.Credentials{Email: "ann@example.com", Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, service.TokenPair{AccessToken: "T1", RefreshToken: "R1"}, pair)

	require.Len(t, *calls, 1)
	require.Equal(t, "/login", (*calls)[0].path)
	require.Equal(t, "ann@example.com", (*calls)[0].body["email"])
}

func TestLogin_Unauthorized(t *testing.T) {
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		reply(w, `{"message":"Invalid email or password"}`)
	})

	_, err := c.Login(context.Background(), service.Credentials{Email: "a", Password: "b"})
	require.Error(t, err)
	require.Equal(t, "Invalid email or password", gateway.Message(err))
}

func TestRegister_Body(t *testing.T) {
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"accessToken":"T1","refreshToken":"R1"}`)
	})

	_, err := c.Register(context.Background(), service.Registration{
		FirstName: "Ann", LastName: "Lee", Email: "ann@example.com", Password: "pw",
	})
	require.NoError(t, err)

	body := (*calls)[0].body
	require.Equal(t, "/registration", (*calls)[0].path)
	require.Equal(t, "Ann", body["firstName"])
	require.Equal(t, "Lee", body["lastName"])
	require.NotContains(t, body, "secondName")
}

func TestGetUser(t *testing.T) {
	id := uuid.New()
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"id":"`+id.String()+`","firstName":"Ann","email":"ann@example.com","roleId":2,"createdAt":"2024-03-01T10:00:00"}`)
	})

	user, err := c.GetUser(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "/user/"+id.String(), (*calls)[0].path)
	require.Equal(t, id, user.ID)
	require.Equal(t, "Ann", user.FirstName)
	require.Equal(t, 2, user.RoleID)
	require.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), user.CreatedAt)
}

func TestListTasks_Decoding(t *testing.T) {
	userID := uuid.New()
	t1, t2, t3 := uuid.New(), uuid.New(), uuid.New()
	c, _ := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `[
			{"id":"`+t1.String()+`","userId":"`+userID.String()+`","title":"a","status":2,"createdAt":"2024-01-01T00:00:00Z","dueDate":"2024-02-01"},
			{"id":"`+t2.String()+`","title":"b","status":"in_progress","createdAt":"2024-01-02T08:30:00.123","dueDate":null},
			{"id":"`+t3.String()+`","title":"c","status":9,"createdAt":"2024-01-03T00:00:00+02:00"}
		]`)
	})

	tasks, err := c.ListTasks(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	require.Equal(t, service.StatusDone, tasks[0].Status)
	require.Equal(t, userID, tasks[0].UserID)
	require.NotNil(t, tasks[0].DueDate)
	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), *tasks[0].DueDate)

	require.Equal(t, service.StatusInProgress, tasks[1].Status)
	require.Nil(t, tasks[1].DueDate)
	require.Equal(t, 123*time.Millisecond, time.Duration(tasks[1].CreatedAt.Nanosecond()))

	// Unknown codes fall back to todo.
	require.Equal(t, service.StatusTodo, tasks[2].Status)
	require.Equal(t, time.Date(2024, 1, 2, 22, 0, 0, 0, time.UTC), tasks[2].CreatedAt)
}

func TestCreateTask_Body(t *testing.T) {
	userID, taskID := uuid.New(), uuid.New()
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"id":"`+taskID.String()+`","userId":"`+userID.String()+`","title":"Buy milk","status":1,"createdAt":"2024-01-01T00:00:00Z","dueDate":"2024-05-01T00:00:00Z"}`)
	})

	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task, err := c.CreateTask(context.Background(), service.CreateTaskRequest{
		UserID:  userID,
		Title:   "Buy milk",
		Status:  service.StatusInProgress,
		DueDate: &due,
	})
	require.NoError(t, err)
	require.Equal(t, taskID, task.ID)

	body := (*calls)[0].body
	require.Equal(t, "/task/create", (*calls)[0].path)
	require.Equal(t, "Buy milk", body["title"])
	require.EqualValues(t, 1, body["status"])
	require.Equal(t, "2024-05-01T00:00:00Z", body["dueDate"])
	require.Equal(t, userID.String(), body["userId"])
	require.NotContains(t, body, "description")
}

func TestUpdateTask_OmitsUnsetFields(t *testing.T) {
	taskID := uuid.New()
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"id":"`+taskID.String()+`","title":"new","status":2}`)
	})

	title := "new"
	status := service.StatusDone
	task, err := c.UpdateTask(context.Background(), service.UpdateTaskRequest{TaskID: taskID, Title: &title, Status: &status})
	require.NoError(t, err)
	require.Equal(t, "new", task.Title)

	body := (*calls)[0].body
	require.Equal(t, http.MethodPut, (*calls)[0].method)
	require.Equal(t, taskID.String(), body["taskId"])
	require.EqualValues(t, 2, body["status"])
	require.NotContains(t, body, "description")
	require.NotContains(t, body, "dueDate")
}

func TestDeleteTask(t *testing.T) {
	taskID := uuid.New()
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	task, err := c.DeleteTask(context.Background(), taskID)
	require.NoError(t, err)
	require.Equal(t, taskID, task.ID)
	require.Equal(t, "/task/delete", (*calls)[0].path)
	require.Equal(t, taskID.String(), (*calls)[0].body["taskId"])
}

func TestChangePasswordAndProfile(t *testing.T) {
	userID := uuid.New()
	c, calls := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/user/update" {
			reply(w, `{"id":"`+userID.String()+`","firstName":"Anna","email":"ann@example.com"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.ChangePassword(context.Background(), userID, service.PasswordChange{CurrentPassword: "old", NewPassword: "new"}))
	require.Equal(t, "/user/"+userID.String()+"/password", (*calls)[0].path)
	require.Equal(t, "new", (*calls)[0].body["newPassword"])

	name := "Anna"
	user, err := c.UpdateProfile(context.Background(), service.ProfileUpdate{UserID: userID, FirstName: &name})
	require.NoError(t, err)
	require.Equal(t, "Anna", user.FirstName)
	require.Equal(t, userID.String(), (*calls)[1].body["userId"])
	require.NotContains(t, (*calls)[1].body, "email")
}

func TestParseWireTime(t *testing.T) {
	got, err := parseWireTime("2024-06-30")
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), got)

	_, err = parseWireTime("30/06/2024")
	require.Error(t, err)

	got, err = parseWireTime("")
	require.NoError(t, err)
	require.True(t, got.IsZero())
}
