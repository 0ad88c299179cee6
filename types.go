package fetchgate

import (
	"context"
	"net/http"
	"time"
)

// Middleware wraps a single transport exchange.
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface. *http.Client does not
// satisfy it directly; use WithHTTPClient for that.
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Option represents a configuration option
type Option func(*Client)

// Context keys for cache control
type contextKey string

const (
	CacheControlKey contextKey = "fetchgate_cache_control"
)

// CacheControl holds per-call cache options for Read.
type CacheControl struct {
	TTL time.Duration
}

// WithContextCacheTTL overrides the cache lifetime for reads issued with the
// returned context. A ttl of zero or less stores nothing.
func WithContextCacheTTL(ctx context.Context, ttl time.Duration) context.Context {
	return context.WithValue(ctx, CacheControlKey, &CacheControl{TTL: ttl})
}

func cacheTTLFromContext(ctx context.Context, fallback time.Duration) time.Duration {
	if cc, ok := ctx.Value(CacheControlKey).(*CacheControl); ok && cc != nil {
		return cc.TTL
	}
	return fallback
}
