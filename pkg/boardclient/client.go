// Package boardclient is the Go client for the taskboard API. It pairs a
// cookie-aware HTTP client with an in-memory Board that applies task moves
// optimistically and falls back to an authoritative refetch on failure.
package boardclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// User is the public account record returned by the auth endpoints.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Task mirrors the API's task representation.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Revision    int64      `json:"revision"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// CreateTask carries the fields for a new task. Zero values are omitted and
// take the server defaults (status todo, priority medium).
type CreateTask struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// TaskPatch is a partial update: nil fields are left untouched by the
// server. Setting DueDate to an empty string clears it.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Revision    *int64  `json:"revision,omitempty"`
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the taskboard HTTP API. The session cookie set by Login
// lives in the client's cookie jar, so one Client is one user session.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for the API at baseURL.
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("boardclient: cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: defaultRequestTimeout,
		},
	}, nil
}

type authResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type profileResponse struct {
	User *User `json:"user"`
}

// Register creates an account and returns it with the session token.
func (c *Client) Register(ctx context.Context, name, email, password string) (*User, string, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, http.StatusCreated, &resp); err != nil {
		return nil, "", err
	}
	return resp.User, resp.Token, nil
}

// Login authenticates and stores the session cookie in the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Logout clears the server-set session cookie.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, http.StatusOK, nil)
}

// Profile returns the authenticated user.
func (c *Client) Profile(ctx context.Context) (*User, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// ListTasks fetches the caller's tasks, newest first.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, http.StatusOK, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask adds a task to the caller's board.
func (c *Client) CreateTask(ctx context.Context, in CreateTask) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks", in, http.StatusCreated, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetTask fetches a single task.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, http.StatusOK, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask applies a partial patch and returns the updated task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, patch, http.StatusOK, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, http.StatusOK, nil)
}

// do executes one request: JSON in, JSON out, with non-2xx responses
// decoded from the {"error": "..."} envelope into *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("boardclient: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("boardclient: build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("boardclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("boardclient: decode response: %w", err)
	}
	return nil
}
