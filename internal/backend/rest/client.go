// Package rest implements service.Service over the task REST API.
package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tasktrack/internal/gateway"
	"tasktrack/internal/service"
)

// API paths relative to the base URL.
const (
	PathLogin        = "/login"
	PathRegistration = "/registration"
	PathLogout       = "/logout"
	PathUser         = "/user/%s"
	PathUserUpdate   = "/user/update"
	PathUserPassword = "/user/%s/password"
	PathUserTasks    = "/task/user/%s"
	PathTaskCreate   = "/task/create"
	PathTaskUpdate   = "/task/update"
	PathTaskDelete   = "/task/delete"
)

// Doer sends one API request. *gateway.Gateway implements it.
type Doer interface {
	Do(ctx context.Context, r *gateway.Request, out any) error
}

// Client implements service.Service over HTTP.
type Client struct {
	gw  Doer
	log *zap.Logger
}

var _ service.Service = (*Client)(nil)

// New creates a Client sending through gw.
func New(gw Doer, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{gw: gw, log: log.Named("rest")}
}

// Login exchanges credentials for a token pair.
// A 401 here is a wrong password, never a refresh trigger.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.TokenPair, error) {
	var resp gateway.TokenResponse
	err := c.gw.Do(ctx, &gateway.Request{
		Method:    http.MethodPost,
		Path:      PathLogin,
		Body:      credentialsDTO{Email: creds.Email, Password: creds.Password},
		NoAuth:    true,
		NoRefresh: true,
	}, &resp)
	if err != nil {
		return service.TokenPair{}, err
	}
	return tokenPair(resp)
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg service.Registration) (service.TokenPair, error) {
	var resp gateway.TokenResponse
	err := c.gw.Do(ctx, &gateway.Request{
		Method: http.MethodPost,
		Path:   PathRegistration,
		Body: registrationDTO{
			FirstName:  reg.FirstName,
			SecondName: reg.SecondName,
			LastName:   reg.LastName,
			Email:      reg.Email,
			Password:   reg.Password,
		},
		NoAuth:    true,
		NoRefresh: true,
	}, &resp)
	if err != nil {
		return service.TokenPair{}, err
	}
	return tokenPair(resp)
}

// Refresh exchanges a refresh token for a new pair.
func (c *Client) Refresh(ctx context.Context, email, refreshToken string) (service.TokenPair, error) {
	var resp gateway.TokenResponse
	err := c.gw.Do(ctx, &gateway.Request{
		Method:    http.MethodPost,
		Path:      gateway.RefreshPath,
		Body:      refreshDTO{Email: email, RefreshToken: refreshToken},
		NoAuth:    true,
		NoRefresh: true,
	}, &resp)
	if err != nil {
		return service.TokenPair{}, err
	}
	if resp.RefreshToken == "" {
		resp.RefreshToken = refreshToken
	}
	return tokenPair(resp)
}

// Logout invalidates the tokens server-side.
func (c *Client) Logout(ctx context.Context) error {
	return c.gw.Do(ctx, &gateway.Request{
		Method:    http.MethodPost,
		Path:      PathLogout,
		NoRefresh: true,
	}, nil)
}

// GetUser fetches a profile.
func (c *Client) GetUser(ctx context.Context, userID uuid.UUID) (service.UserProfile, error) {
	var dto userDTO
	if err := c.gw.Do(ctx, &gateway.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf(PathUser, userID),
	}, &dto); err != nil {
		return service.UserProfile{}, err
	}
	return dto.toProfile()
}

// UpdateProfile applies upd and returns the stored profile.
func (c *Client) UpdateProfile(ctx context.Context, upd service.ProfileUpdate) (service.UserProfile, error) {
	var dto userDTO
	if err := c.gw.Do(ctx, &gateway.Request{
		Method: http.MethodPut,
		Path:   PathUserUpdate,
		Body: profileUpdateDTO{
			UserID:     upd.UserID.String(),
			FirstName:  upd.FirstName,
			SecondName: upd.SecondName,
			Email:      upd.Email,
		},
	}, &dto); err != nil {
		return service.UserProfile{}, err
	}
	return dto.toProfile()
}

// ChangePassword replaces the user's password.
func (c *Client) ChangePassword(ctx context.Context, userID uuid.UUID, change service.PasswordChange) error {
	return c.gw.Do(ctx, &gateway.Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf(PathUserPassword, userID),
		Body: passwordChangeDTO{
			CurrentPassword: change.CurrentPassword,
			NewPassword:     change.NewPassword,
		},
	}, nil)
}

// ListTasks returns every task owned by userID.
func (c *Client) ListTasks(ctx context.Context, userID uuid.UUID) ([]service.Task, error) {
	var dtos []taskDTO
	if err := c.gw.Do(ctx, &gateway.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf(PathUserTasks, userID),
	}, &dtos); err != nil {
		return nil, err
	}

	result := make([]service.Task, 0, len(dtos))
	for _, dto := range dtos {
		task, err := c.toTask(dto)
		if err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req service.CreateTaskRequest) (service.Task, error) {
	var dto taskDTO
	if err := c.gw.Do(ctx, &gateway.Request{
		Method: http.MethodPost,
		Path:   PathTaskCreate,
		Body: createTaskDTO{
			Title:       req.Title,
			Description: req.Description,
			Status:      req.Status.ToWire(),
			DueDate:     formatWireTime(req.DueDate),
			UserID:      req.UserID.String(),
		},
	}, &dto); err != nil {
		return service.Task{}, err
	}
	return c.toTask(dto)
}

// UpdateTask updates a task.
func (c *Client) UpdateTask(ctx context.Context, req service.UpdateTaskRequest) (service.Task, error) {
	body := updateTaskDTO{
		TaskID:      req.TaskID.String(),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     formatWireTime(req.DueDate),
	}
	if req.Status != nil {
		wire := req.Status.ToWire()
		body.Status = &wire
	}

	var dto taskDTO
	if err := c.gw.Do(ctx, &gateway.Request{
		Method: http.MethodPut,
		Path:   PathTaskUpdate,
		Body:   body,
	}, &dto); err != nil {
		return service.Task{}, err
	}
	return c.toTask(dto)
}

// DeleteTask deletes a task and returns the deleted record.
func (c *Client) DeleteTask(ctx context.Context, taskID uuid.UUID) (service.Task, error) {
	var dto taskDTO
	if err := c.gw.Do(ctx, &gateway.Request{
		Method: http.MethodPost,
		Path:   PathTaskDelete,
		Body:   deleteTaskDTO{TaskID: taskID.String()},
	}, &dto); err != nil {
		return service.Task{}, err
	}
	if dto.ID == "" {
		// Some servers reply with an empty body.
		return service.Task{ID: taskID}, nil
	}
	return c.toTask(dto)
}

func (c *Client) toTask(dto taskDTO) (service.Task, error) {
	id, err := parseID(dto.ID)
	if err != nil {
		return service.Task{}, fmt.Errorf("task id: %w", err)
	}
	userID, err := parseID(dto.UserID)
	if err != nil {
		return service.Task{}, fmt.Errorf("task user id: %w", err)
	}

	status, ok := decodeStatus(dto.Status)
	if !ok {
		c.log.Warn("unknown task status, using todo",
			zap.String("task", dto.ID),
			zap.ByteString("status", dto.Status),
		)
	}

	return service.Task{
		ID:          id,
		UserID:      userID,
		Title:       dto.Title,
		Description: dto.Description,
		Status:      status,
		CreatedAt:   dto.CreatedAt.Time,
		UpdatedAt:   dto.UpdatedAt.ptr(),
		DueDate:     dto.DueDate.ptr(),
	}, nil
}

func tokenPair(resp gateway.TokenResponse) (service.TokenPair, error) {
	if resp.AccessToken == "" {
		return service.TokenPair{}, fmt.Errorf("token response has no access token")
	}
	return service.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}, nil
}
