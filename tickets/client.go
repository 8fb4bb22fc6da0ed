// Package tickets is the client of the backend support ticket module.
package tickets

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"iotower.com/console/api"
)

const base = "/tickets/1.0"

// Client calls the tickets module
type Client struct {
	doer api.Doer
}

// New creates a tickets client over doer
func New(doer api.Doer) *Client {
	return &Client{doer: doer}
}

// CreatePublic opens a ticket without a session. The first call returns a
// confirmation code mailed to body.Email; repeating the call with the code
// set creates the ticket.
func (c *Client) CreatePublic(ctx context.Context, body CreationBody) (CreationResponse, error) {
	return api.Fetch[CreationResponse](ctx, c.doer, api.Request{
		Method: http.MethodPost,
		Path:   base + "/public/create",
		Body:   body,
		Access: api.Public,
	})
}

// Create opens a ticket for the signed-in user
func (c *Client) Create(ctx context.Context, body CreationBody) (CreationResponse, error) {
	return api.Fetch[CreationResponse](ctx, c.doer, api.Request{
		Method: http.MethodPost,
		Path:   base + "/ticket",
		Body:   body,
		Access: api.Authenticated,
	})
}

// List returns the tickets of the signed-in user, closed ones included when
// closed is set.
func (c *Client) List(ctx context.Context, closed bool) ([]Abstract, error) {
	q := url.Values{}
	if closed {
		q.Set("closed", "true")
	}
	return api.Fetch[[]Abstract](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   api.PathWithQuery(base+"/ticket", q),
		Access: api.Authenticated,
	})
}

// Get returns a ticket with its replies
func (c *Client) Get(ctx context.Context, id int64) (Detail, error) {
	return api.Fetch[Detail](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   ticketPath("/ticket/", id),
		Access: api.Authenticated,
	})
}

// Reply adds a message to a ticket of the signed-in user
func (c *Client) Reply(ctx context.Context, body MessageBody) (api.ActionResult, error) {
	return api.Fetch[api.ActionResult](ctx, c.doer, api.Request{
		Method: http.MethodPost,
		Path:   ticketPath("/ticket/", body.ID),
		Body:   body,
		Access: api.Authenticated,
	})
}

// ReplyPublic adds a message to a ticket opened anonymously. body.AuthKey is
// the key received by email.
func (c *Client) ReplyPublic(ctx context.Context, body MessageBody) (api.ActionResult, error) {
	if body.AuthKey == "" {
		return api.ActionResult{}, api.NewActionResult(api.StatusBadRequest, 400, api.MsgInvalidRequest)
	}
	return api.Fetch[api.ActionResult](ctx, c.doer, api.Request{
		Method: http.MethodPost,
		Path:   ticketPath("/public/", body.ID),
		Body:   body,
		Access: api.Public,
	})
}

func ticketPath(prefix string, id int64) string {
	return base + prefix + strconv.FormatInt(id, 10) + "/"
}
