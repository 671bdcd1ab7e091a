package auth

import (
	"context"

	"atelier/db"
)

// SessionStorer defines the contract for any component that can load the
// saved login session.
type SessionStorer interface {
	GetSession() (*db.Session, error)
}

// TokenRefresher defines the contract for any component that can obtain a
// fresh access token for the current session. Implementations persist the
// new token before returning it.
type TokenRefresher interface {
	RefreshSession(ctx context.Context) (string, error)
}
