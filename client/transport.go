package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"atelier/db"
)

const (
	loginPath   = "/api/auth/login"
	refreshPath = "/api/auth/refresh"
	logoutPath  = "/api/auth/logout"
)

// authRoutes never trigger the refresh cycle; a 401 from them is final.
// Matching is substring-based on the resolved URL, kept exactly as the
// server-side contract expects it.
var authRoutes = []string{loginPath, refreshPath, logoutPath}

func isAuthRoute(target string) bool {
	for _, route := range authRoutes {
		if strings.Contains(target, route) {
			return true
		}
	}
	return false
}

// Do sends a request with the stored access token attached and transparently
// recovers from an expired session: on a 401 from a non-auth route it runs
// one coordinated refresh and retries the request once with the new token.
//
// The returned error is non-nil only for transport-level failures. Semantic
// outcomes, including a 401 that survived the refresh cycle, come back as a
// real *http.Response for the caller to interpret.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	return c.do(ctx, method, path, body, nil)
}

// do is the transport core behind Do. The extra header set lets
// package-internal callers pass request headers, such as Range for resumed
// downloads, that are replayed identically on the retry.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, header http.Header) (*http.Response, error) {
	target := c.resolveURL(path)

	// Buffer the body up front so a retry reissues identical bytes.
	var payload []byte
	if body != nil {
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("failed to buffer request body: %w", err)
		}
		payload = b
	}

	resp, err := c.send(ctx, method, target, payload, header, c.currentToken())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || isAuthRoute(target) {
		return resp, nil
	}

	log.Debug().Str("method", method).Str("url", target).Msg("Request returned 401; refreshing session")
	token := c.refreshAccessToken(ctx)
	if token == "" {
		// Dead session. The caller gets the original 401.
		c.expireSession()
		return resp, nil
	}

	// The retry supersedes the first response.
	drainBody(resp)

	retry, err := c.send(ctx, method, target, payload, header, token)
	if err != nil {
		return nil, err
	}
	if retry.StatusCode == http.StatusUnauthorized {
		c.expireSession()
	}
	return retry, nil
}

// send issues a single HTTP attempt. Authorization is attached only when a
// token is present; everything else about the request is the caller's.
func (c *Client) send(ctx context.Context, method, target string, payload []byte, header http.Header, token string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request for %s: %w", method, target, err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

// currentToken reads the access token from the store. A read failure is not
// fatal; the request simply goes out unauthenticated.
func (c *Client) currentToken() string {
	session, err := c.store.GetSession()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read session; sending request unauthenticated")
		return ""
	}
	if session == nil {
		return ""
	}
	return session.AccessToken
}

// refreshKey collapses every concurrent refresh onto one in-flight call.
const refreshKey = "session-refresh"

// refreshAccessToken runs the coordinated refresh. Concurrent callers share
// one network call and its result; once that call settles, the next 401
// starts a fresh one. An empty string means the session could not be
// refreshed, whatever the reason.
func (c *Client) refreshAccessToken(ctx context.Context) string {
	v, _, _ := c.refresh.Do(refreshKey, func() (interface{}, error) {
		return c.performRefresh(ctx), nil
	})
	token, _ := v.(string)
	return token
}

// performRefresh calls the refresh endpoint with the stored refresh cookie
// and persists the new token before returning it, so by the time any waiting
// caller retries, the store already holds the token that retry will use.
func (c *Client) performRefresh(ctx context.Context) string {
	session, err := c.store.GetSession()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read session before refresh")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(refreshPath), nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create refresh request")
		return ""
	}
	if session != nil && session.RefreshCookie != "" {
		req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: session.RefreshCookie})
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("Session refresh request failed")
		return ""
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to read refresh response")
		return ""
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Info().Int("status", resp.StatusCode).Msg("Server rejected the session refresh")
		return ""
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		log.Warn().Err(err).Msg("Failed to parse refresh response")
		return ""
	}
	token := strings.TrimSpace(result.Token)
	if token == "" {
		log.Warn().Msg("Refresh response carried no token")
		return ""
	}

	if session == nil {
		session = &db.Session{}
	}
	session.AccessToken = token
	if rotated := refreshCookieFrom(resp); rotated != "" {
		session.RefreshCookie = rotated
	}
	session.SavedAt = time.Now().Format(time.RFC3339)
	if err := c.store.SaveSession(session); err != nil {
		log.Error().Err(err).Msg("Failed to persist refreshed session")
	}
	log.Info().Msg("Session refreshed")
	return token
}

// RefreshSession implements auth.TokenRefresher on top of the same
// single-flight refresh the 401 path uses.
func (c *Client) RefreshSession(ctx context.Context) (string, error) {
	token := c.refreshAccessToken(ctx)
	if token == "" {
		return "", errors.New("the server rejected the session refresh; login is required")
	}
	return token, nil
}

// expireSession clears the stored session and tells subscribers the login is
// gone. Runs at most once per failed request cycle.
func (c *Client) expireSession() {
	if err := c.store.ClearSession(); err != nil {
		log.Error().Err(err).Msg("Failed to clear the expired session")
	}
	if c.notifier != nil {
		c.notifier.NotifySessionExpired()
	}
}

// refreshCookieFrom extracts the refresh cookie value from a response's
// Set-Cookie headers, or "" when the server did not rotate it.
func refreshCookieFrom(resp *http.Response) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == refreshCookieName {
			return cookie.Value
		}
	}
	return ""
}

// drainBody discards and closes a response body so the underlying connection
// can be reused.
func drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
