package api

import (
	"context"
	"net/url"
)

// Access selects which credentials the gateway attaches to a request
type Access int

const (
	// Public requests carry no Authorization header
	Public Access = iota
	// Authenticated requests carry the session access token
	Authenticated
	// Renewal requests carry the session refresh token. Only the
	// token renewal route uses it.
	Renewal
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case Renewal:
		return "renewal"
	default:
		return "unknown"
	}
}

// Request describes one backend call. Path is relative to the configured
// base URL and may carry a query string.
type Request struct {
	Method string
	Path   string
	Body   any
	Access Access
}

// Doer executes backend requests. Gateway is the production implementation.
type Doer interface {
	Do(ctx context.Context, req Request, out any) error
}

// Fetch runs req through d and decodes the success payload into a T
func Fetch[T any](ctx context.Context, d Doer, req Request) (T, error) {
	var out T
	if err := d.Do(ctx, req, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// PathWithQuery appends q to path, leaving path untouched when q is empty
func PathWithQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
