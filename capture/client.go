// Package capture is the client of the backend data capture module:
// ingestion protocols and the endpoints devices report to.
package capture

import (
	"context"
	"net/http"
	"net/url"

	"iotower.com/console/api"
)

const base = "/capture/1.0"

// Client calls the capture module
type Client struct {
	doer api.Doer
}

// New creates a capture client over doer
func New(doer api.Doer) *Client {
	return &Client{doer: doer}
}

// Protocols lists the protocols endpoints can be created with
func (c *Client) Protocols(ctx context.Context) ([]Protocol, error) {
	return api.Fetch[[]Protocol](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   base + "/protocol",
		Access: api.Authenticated,
	})
}

// Endpoints lists the endpoints owned by the signed-in user
func (c *Client) Endpoints(ctx context.Context) ([]Endpoint, error) {
	return api.Fetch[[]Endpoint](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   base + "/endpoint",
		Access: api.Authenticated,
	})
}

// CreateEndpoint creates an endpoint
func (c *Client) CreateEndpoint(ctx context.Context, body EndpointCreationBody) (Endpoint, error) {
	return api.Fetch[Endpoint](ctx, c.doer, api.Request{
		Method: http.MethodPost,
		Path:   base + "/endpoint",
		Body:   body,
		Access: api.Authenticated,
	})
}

// DeleteEndpoint deletes an endpoint by id
func (c *Client) DeleteEndpoint(ctx context.Context, id string) (api.ActionResult, error) {
	return api.Fetch[api.ActionResult](ctx, c.doer, api.Request{
		Method: http.MethodDelete,
		Path:   base + "/endpoint/" + url.PathEscape(id) + "/",
		Access: api.Authenticated,
	})
}
