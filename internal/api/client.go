// internal/api/client.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"cloudtask/internal/common/config"
	stderrors "cloudtask/internal/common/errors"
	"cloudtask/internal/common/logger"
	"cloudtask/internal/models"
	"cloudtask/internal/query"
)

// Client talks to the remote CloudTask service. Retries with backoff,
// including 429 rate limiting, are handled by the underlying retryable
// transport.
type Client struct {
	baseURL string
	apiKey  string
	http    *retryablehttp.Client
	log     logger.Logger
}

// SearchResult is the wire shape of POST /tasks/search responses.
type SearchResult struct {
	Tasks []models.Task `json:"tasks"`
	Total int           `json:"total,omitempty"`
}

func NewClient(cfg config.APIConfig, apiKey string, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 5 * time.Second
	rc.HTTPClient.Timeout = config.GetDuration(cfg.Timeout)
	rc.Logger = nil

	return &Client{
		baseURL: trimTrailingSlash(cfg.BaseURL),
		apiKey:  apiKey,
		http:    rc,
		log:     log,
	}
}

// SearchTasks posts the filter's wire JSON to the search endpoint.
func (c *Client) SearchTasks(ctx context.Context, f *query.Filter) (*SearchResult, error) {
	body, err := c.request(ctx, http.MethodPost, "/tasks/search", f)
	if err != nil {
		return nil, err
	}

	var result SearchResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, stderrors.NewAPIRequestError(fmt.Errorf("malformed search response: %w", err))
	}
	return &result, nil
}

// Search satisfies the tasks.Backend interface by delegating to SearchTasks.
func (c *Client) Search(ctx context.Context, f *query.Filter) ([]models.Task, error) {
	result, err := c.SearchTasks(ctx, f)
	if err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

// CreateTask creates a task and returns the stored record.
func (c *Client) CreateTask(ctx context.Context, payload map[string]interface{}) (*models.Task, error) {
	body, err := c.request(ctx, http.MethodPost, "/tasks", payload)
	if err != nil {
		return nil, err
	}

	var task models.Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, stderrors.NewAPIRequestError(fmt.Errorf("malformed create response: %w", err))
	}
	return &task, nil
}

// UpdateTask applies a partial update to one task.
func (c *Client) UpdateTask(ctx context.Context, taskID int64, payload map[string]interface{}) error {
	_, err := c.request(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", taskID), payload)
	return err
}

// DeleteTask removes one task.
func (c *Client) DeleteTask(ctx context.Context, taskID int64) error {
	_, err := c.request(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", taskID), nil)
	return err
}

func (c *Client) request(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, stderrors.NewAPIRequestError(fmt.Errorf("failed to encode request body: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, stderrors.NewAPIRequestError(err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.log.Debug("api request", map[string]interface{}{
		"method":    method,
		"path":      path,
		"requestId": requestID,
	})

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, stderrors.NewAPIRequestError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, stderrors.NewAPIRequestError(err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, stderrors.NewAPIAuthError(snippet(body))
	default:
		return nil, stderrors.NewAPIRequestError(
			fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, snippet(body)))
	}
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
