// Package users is the client of the backend users module: sign-in and
// session lifecycle, profile, self registration, user administration and
// groups.
package users

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"iotower.com/console/api"
	"iotower.com/console/cache"
	"iotower.com/console/session"
)

const (
	// ConfigTTL is how long the module configuration is reused
	ConfigTTL = 10 * time.Minute
	// ProfileTTL is how long the user profile is reused
	ProfileTTL = 60 * time.Minute
)

const base = "/users/1.0"

// Options configures a Client
type Options struct {
	Logger *slog.Logger
	// Now replaces time.Now in the caches, for tests
	Now func() time.Time
}

// Client calls the users module. It owns the module configuration and
// profile caches.
type Client struct {
	doer    api.Doer
	session *session.Store
	log     *slog.Logger

	config  *cache.Cached[ModuleConfig]
	profile *cache.Cached[BasicProfile]
}

// New creates a users client over doer, updating sess on sign-in
func New(doer api.Doer, sess *session.Store, opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	var cacheOpts []cache.Option
	if opts.Now != nil {
		cacheOpts = append(cacheOpts, cache.WithClock(opts.Now))
	}

	c := &Client{
		doer:    doer,
		session: sess,
		log:     opts.Logger,
	}
	c.config = cache.NewCached("users_config",
		cache.NewSlot[ModuleConfig](ConfigTTL, cacheOpts...),
		c.fetchModuleConfig, false, opts.Logger)
	c.profile = cache.NewCached("users_profile",
		cache.NewSlot[BasicProfile](ProfileTTL, cacheOpts...),
		c.fetchProfile, true, opts.Logger)
	return c
}

// ModuleConfig returns the users module configuration, cached for ConfigTTL
func (c *Client) ModuleConfig(ctx context.Context) (ModuleConfig, error) {
	return c.config.Get(ctx, false)
}

func (c *Client) fetchModuleConfig(ctx context.Context) (ModuleConfig, error) {
	return api.Fetch[ModuleConfig](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   base + "/config",
		Access: api.Public,
	})
}

// ClearCaches drops the module configuration and the profile
func (c *Client) ClearCaches() {
	c.config.Slot().Clear()
	c.profile.Slot().Clear()
}

// call runs a request whose success payload is an ActionResult
func (c *Client) call(ctx context.Context, req api.Request) (api.ActionResult, error) {
	return api.Fetch[api.ActionResult](ctx, c.doer, req)
}
