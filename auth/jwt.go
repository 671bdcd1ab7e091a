package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reports the expiry time carried in a JWT access token.
// The token is parsed without signature verification: the client never holds
// the server's signing secret, and the expiry is only used to decide whether
// a proactive refresh is worth attempting. The server stays the authority on
// whether a token is actually valid.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse access token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("access token has no expiry claim")
	}
	return claims.ExpiresAt.Time, nil
}
