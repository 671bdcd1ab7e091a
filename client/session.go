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

// Login authenticates with email and password and saves the resulting
// session locally: the access token, the refresh cookie the server sets, and
// the user's identity for offline display. Login is an auth route, so a 401
// here means bad credentials and never triggers the refresh cycle.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login payload: %w", err)
	}

	header := http.Header{"Content-Type": []string{"application/json"}}
	resp, err := c.do(ctx, http.MethodPost, loginPath, bytes.NewReader(payload), header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse login response: %w", err)
	}
	token := strings.TrimSpace(result.Token)
	if token == "" {
		return nil, errors.New("login response carried no access token")
	}

	session := &db.Session{
		AccessToken:   token,
		RefreshCookie: refreshCookieFrom(resp),
		UserID:        result.User.ID,
		UserName:      result.User.Name,
		UserEmail:     result.User.Email,
		UserRole:      result.User.Role,
		SavedAt:       time.Now().Format(time.RFC3339),
	}
	if err := c.store.SaveSession(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info().Str("user", result.User.Email).Msg("Logged in")
	return &result.User, nil
}

// Logout revokes the refresh credential on the server and clears the local
// session. The local session goes away even when the server call fails; a
// half-revoked login must not leave a usable token on disk.
func (c *Client) Logout(ctx context.Context) error {
	header := http.Header{}
	if session, err := c.store.GetSession(); err == nil && session != nil && session.RefreshCookie != "" {
		header.Set("Cookie", (&http.Cookie{Name: refreshCookieName, Value: session.RefreshCookie}).String())
	}

	resp, err := c.do(ctx, http.MethodPost, logoutPath, nil, header)
	if err != nil {
		log.Warn().Err(err).Msg("Logout request failed; clearing the local session anyway")
	} else {
		drainBody(resp)
	}

	if err := c.store.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	log.Info().Msg("Logged out")
	return nil
}
