// Package taskstore provides a client for the remote task collection.
// It supports listing, creating, completing and deleting tasks over JSON/HTTP.
package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

const (
	// DefaultBaseURL is where the backend listens during local development.
	DefaultBaseURL = "http://localhost:8080"
	// TasksPath is the collection resource for every operation.
	TasksPath = "/api/tasks"
)

// ErrMissingEnvelope is returned when a create or update response has no
// "data" object.
var ErrMissingEnvelope = errors.New("response has no data envelope")

// StatusError is returned for any non-2xx response. The body is not read.
type StatusError struct {
	Method     string
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: received non-2xx response status %d", e.Method, TasksPath, e.StatusCode)
}

// Client talks to the task backend. It does not retry and sets no timeout
// of its own; cancellation is left to the caller's context.
type Client struct {
	http *resty.Client
	log  logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json"),
		log: discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches every task.
func (c *Client) List(ctx context.Context) ([]Task, error) {
	resp, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	var tasks []Task
	if err := json.Unmarshal(resp.Body(), &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode task list: %w", err)
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

// Create stores a new task and returns the backend's record.
func (c *Client) Create(ctx context.Context, draft Draft) (*Task, error) {
	resp, err := c.do(ctx, http.MethodPost, draft)
	if err != nil {
		return nil, err
	}
	return unwrapTask(resp.Body())
}

// SetDone updates the done flag of one task and returns the updated record.
func (c *Client) SetDone(ctx context.Context, id int, isDone bool) (*Task, error) {
	body := struct {
		ID     int  `json:"id"`
		IsDone bool `json:"isDone"`
	}{ID: id, IsDone: isDone}

	resp, err := c.do(ctx, http.MethodPatch, body)
	if err != nil {
		return nil, err
	}
	return unwrapTask(resp.Body())
}

// Remove deletes one task.
func (c *Client) Remove(ctx context.Context, id int) error {
	body := struct {
		ID int `json:"id"`
	}{ID: id}

	_, err := c.do(ctx, http.MethodDelete, body)
	return err
}

func (c *Client) do(ctx context.Context, method string, body any) (*resty.Response, error) {
	requestID := uuid.NewString()
	req := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", requestID)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, TasksPath)
	if err != nil {
		return nil, fmt.Errorf("failed to execute %s %s: %w", method, TasksPath, err)
	}

	entry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"status":     resp.StatusCode(),
		"request_id": requestID,
		"duration":   resp.Time(),
	})
	if !resp.IsSuccess() {
		entry.Warn("task store request failed")
		return nil, &StatusError{Method: method, StatusCode: resp.StatusCode()}
	}
	entry.Debug("task store request")
	return resp, nil
}

func unwrapTask(body []byte) (*Task, error) {
	data := gjson.GetBytes(body, "data")
	if !data.Exists() || !data.IsObject() {
		return nil, ErrMissingEnvelope
	}
	var task Task
	if err := json.Unmarshal([]byte(data.Raw), &task); err != nil {
		return nil, fmt.Errorf("failed to decode task: %w", err)
	}
	return &task, nil
}
