package client

import (
	"net/http"

	"github.com/google/uuid"
)

// headerTransport stamps outgoing requests with the client identity headers:
// a User-Agent and a per-request X-Request-ID the server logs for
// correlation.
type headerTransport struct {
	base      http.RoundTripper
	userAgent string
}

// NewHeaderTransport wraps base with the identity headers. A nil base falls
// back to http.DefaultTransport.
func NewHeaderTransport(base http.RoundTripper, userAgent string) http.RoundTripper {
	return &headerTransport{base: base, userAgent: userAgent}
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if clone.Header.Get("X-Request-ID") == "" {
		clone.Header.Set("X-Request-ID", uuid.NewString())
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}
