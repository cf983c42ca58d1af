// Package client is the shared access layer for everything that talks to
// the TooZ Hub API: the admin CLI, the dashboard and the portal. It owns
// the request/error/session-expiry cycle so each frontend only deals with
// typed results.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrSessionExpired is returned for any 401; the stored token has already
// been cleared when the caller sees it.
var ErrSessionExpired = errors.New("session expired, please log in again")

// ErrUnreachable wraps transport failures so callers can show a
// connectivity hint instead of a raw dial error.
var ErrUnreachable = errors.New("cannot reach server")

// APIError carries the server-supplied message of a non-2xx response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// Client issues authenticated requests against one API base URL.
type Client struct {
	BaseURL string
	Session *Session
	HTTP    *http.Client
}

// New creates a client with a 30 second request timeout.
func New(baseURL string, session *Session) *Client {
	return &Client{
		BaseURL: baseURL,
		Session: session,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Request performs one API call. body is JSON-marshaled when non-nil; out is
// filled from the response body when non-nil. A 204 leaves out untouched.
// On 401 the stored token is cleared and ErrSessionExpired returned.
func (c *Client) Request(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.Session.Clear()
		return ErrSessionExpired
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// errorMessage pulls a human-readable message out of an error body. The API
// writes {"error": ...}; older deployments used {"detail": ...}, so both are
// tried before falling back to the HTTP status text.
func errorMessage(body []byte, statusText string) string {
	var parsed struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Detail != "" {
			return parsed.Detail
		}
	}
	return statusText
}

// Get is shorthand for a GET request.
func (c *Client) Get(path string, out interface{}) error {
	return c.Request(http.MethodGet, path, nil, out)
}

// Post is shorthand for a POST request.
func (c *Client) Post(path string, body, out interface{}) error {
	return c.Request(http.MethodPost, path, body, out)
}

// Patch is shorthand for a PATCH request.
func (c *Client) Patch(path string, body, out interface{}) error {
	return c.Request(http.MethodPatch, path, body, out)
}

// Put is shorthand for a PUT request.
func (c *Client) Put(path string, body, out interface{}) error {
	return c.Request(http.MethodPut, path, body, out)
}

// Delete is shorthand for a DELETE request.
func (c *Client) Delete(path string, out interface{}) error {
	return c.Request(http.MethodDelete, path, nil, out)
}
