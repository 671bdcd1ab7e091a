package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// getJSON issues a GET through Do and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

// sendJSON issues a request with a JSON payload through the transport core
// and decodes the response into out when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request payload: %w", err)
	}
	header := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := c.do(ctx, method, path, bytes.NewReader(body), header)
	if err != nil {
		return err
	}
	return decodeResponse(resp, out)
}

// decodeResponse reads and closes the body, turns unexpected statuses into an
// HTTPError, and unmarshals the rest into out.
func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse server response: %w", err)
	}
	return nil
}

// Me returns the account behind the current session.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/api/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every account on the server the session may see.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}
