package testutil

import (
	"net/http"
	"time"

	"vendorhub/pkg/requestcontext"
)

// WithFixedTime pins the request-scoped clock, standing in for the
// requesttime middleware.
func WithFixedTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// WithClientIP sets the client address the rate limiter keys on.
func WithClientIP(req *http.Request, ip string) *http.Request {
	req.RemoteAddr = ip + ":40000"
	return req.WithContext(requestcontext.WithClientIP(req.Context(), ip))
}
