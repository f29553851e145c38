// Package googletasks reads open tasks from Google Tasks for import.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gtasks "google.golang.org/api/tasks/v1"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second

	// Scope is the read-only OAuth scope the importer needs.
	Scope = gtasks.TasksReadonlyScope
)

// List is a Google task list.
type List struct {
	ID        string
	Title     string
	IsDefault bool
}

// Item is an open Google task.
type Item struct {
	Title string
	Notes string
	Due   *time.Time
}

// Source is what the importer reads from.
type Source interface {
	Lists(ctx context.Context) ([]List, error)
	OpenTasks(ctx context.Context, listID string) ([]Item, error)
}

// Client reads from the Google Tasks API.
type Client struct {
	svc *gtasks.Service
}

// OAuthConfig reads the Desktop OAuth client file downloaded from the
// Google Cloud console.
func OAuthConfig(clientPath string) (*oauth2.Config, error) {
	name := filepath.Base(clientPath)
	data, err := os.ReadFile(clientPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	cfg, err := google.ConfigFromJSON(data, Scope)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return cfg, nil
}

// New creates a client from the OAuth client file and the token saved by
// google-login. The token is refreshed transparently while importing.
func New(ctx context.Context, clientPath, tokenPath string) (*Client, error) {
	oauthCfg, err := OAuthConfig(clientPath)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, oauthCfg.TokenSource(ctx, token))
	svc, err := gtasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewWithHTTPClient creates a client against endpoint (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	svc, err := gtasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// LoadToken reads a saved Google OAuth token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("not logged in to Google (run: tasktrack google-login): %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", filepath.Base(path), err)
	}
	return &token, nil
}

// SaveToken saves a Google OAuth token with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Lists returns all task lists in API order.
func (c *Client) Lists(ctx context.Context) ([]List, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// "@default" resolves to the real ID of the account's default list.
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	var result []List
	err = c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *gtasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, List{
				ID:        list.Id,
				Title:     list.Title,
				IsDefault: list.Id == defaultList.Id,
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// OpenTasks returns every open task of a list, across all pages.
func (c *Client) OpenTasks(ctx context.Context, listID string) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var result []Item
	err := c.svc.Tasks.List(listID).
		MaxResults(PageSize).
		ShowCompleted(false).
		ShowDeleted(false).
		ShowHidden(false).
		Pages(ctx, func(resp *gtasks.Tasks) error {
			for _, task := range resp.Items {
				item := Item{Title: task.Title, Notes: task.Notes}
				if task.Due != "" {
					if due, err := time.Parse(time.RFC3339, task.Due); err == nil {
						due = due.UTC()
						item.Due = &due
					}
				}
				result = append(result, item)
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// ResolveList finds a list by title, ignoring case and surrounding space.
func ResolveList(lists []List, name string) (List, error) {
	name = strings.TrimSpace(name)

	var found []List
	for _, l := range lists {
		if strings.EqualFold(strings.TrimSpace(l.Title), name) {
			found = append(found, l)
		}
	}

	switch len(found) {
	case 0:
		return List{}, fmt.Errorf("list not found: %s", name)
	case 1:
		return found[0], nil
	default:
		return List{}, fmt.Errorf("ambiguous list name: %s", name)
	}
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.New("google tasks: request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.New("google token expired or revoked (run: tasktrack google-login)")
		}
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return errors.New("google token expired or revoked (run: tasktrack google-login)")
	}
	return fmt.Errorf("google tasks: %w", err)
}
