package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"atelier/db"
)

// ErrNotLoggedIn indicates that no session is saved locally.
var ErrNotLoggedIn = errors.New("no saved session; login is required")

// freshnessWindow is how much remaining lifetime an access token must have
// before EnsureFresh considers it usable without a refresh.
const freshnessWindow = 60 * time.Second

// Service decides when the saved access token needs a proactive refresh.
type Service struct {
	Storer    SessionStorer
	Refresher TokenRefresher
}

// NewService creates a new instance of Service with the given dependencies.
func NewService(storer SessionStorer, refresher TokenRefresher) *Service {
	return &Service{Storer: storer, Refresher: refresher}
}

// EnsureFresh returns the saved session, refreshing its access token first
// when the token is missing or about to expire. The refreshed token is
// persisted by the Refresher; the returned session carries it either way.
func (s *Service) EnsureFresh(ctx context.Context) (*db.Session, error) {
	session, err := s.Storer.GetSession()
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, ErrNotLoggedIn
	}
	if tokenUsable(session.AccessToken) {
		return session, nil
	}
	log.Info().Msg("Access token missing or near expiry; refreshing session")
	token, err := s.Refresher.RefreshSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session: %w", err)
	}
	session.AccessToken = token
	return session, nil
}

// tokenUsable reports whether the token can be sent as-is. Opaque tokens
// carry no readable expiry, so they are assumed usable and left to the
// retry-on-401 path in the client.
func tokenUsable(token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	expiresAt, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	return time.Now().Add(freshnessWindow).Before(expiresAt)
}
