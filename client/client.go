package client

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"atelier/db"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "atelier-cli"

	// refreshCookieName is the cookie the server sets at login and expects
	// back on refresh and logout calls.
	refreshCookieName = "refreshToken"
)

// SessionStore is the persistence the client needs for the login session.
// The cmd layer backs it with the GORM repository; tests use an in-memory
// fake. Clearing removes the whole session record, token and user data alike.
type SessionStore interface {
	GetSession() (*db.Session, error)
	SaveSession(session *db.Session) error
	ClearSession() error
}

// ExpiryNotifier receives the signal that the session was cleared after the
// server rejected a refresh.
type ExpiryNotifier interface {
	NotifySessionExpired()
}

// Client is an authenticated HTTP client for one Atelier server. Every API
// call goes through Do, which owns bearer-token attachment and the
// refresh-and-retry cycle on 401 responses.
type Client struct {
	BaseURL    string
	httpClient *http.Client
	store      SessionStore
	notifier   ExpiryNotifier
	refresh    singleflight.Group
}

// New creates a Client for the server at baseURL. A nil httpClient gets a
// default with a 30-second timeout and the standard header transport. The
// notifier may be nil when nobody listens for session expiry.
func New(baseURL string, store SessionStore, notifier ExpiryNotifier, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   defaultTimeout,
			Transport: NewHeaderTransport(nil, defaultUserAgent),
		}
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		store:      store,
		notifier:   notifier,
	}
}

// resolveURL joins a server-relative path onto the base URL. Absolute URLs,
// such as storage locations from a file manifest, pass through untouched.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.BaseURL + path
}
