package users

import (
	"context"
	"net/http"
	"net/url"

	"iotower.com/console/api"
)

// AdminListUsers lists users, or the users waiting in purgatory
func (c *Client) AdminListUsers(ctx context.Context, purgatory bool) ([]UserListElement, error) {
	q := url.Values{}
	if purgatory {
		q.Set("purgatory", "true")
	}
	return api.Fetch[[]UserListElement](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   api.PathWithQuery(base+"/admin/users", q),
		Access: api.Authenticated,
	})
}

// AdminSearchUsers searches users by login or email fragment
func (c *Client) AdminSearchUsers(ctx context.Context, body SearchBody) ([]UserListElement, error) {
	return api.Fetch[[]UserListElement](ctx, c.doer, api.Request{
		Method: http.MethodPost,
		Path:   base + "/admin/search",
		Body:   body,
		Access: api.Authenticated,
	})
}

// AdminSwitchState activates or deactivates a user
func (c *Client) AdminSwitchState(ctx context.Context, body StateSwitchBody) (api.ActionResult, error) {
	return c.call(ctx, api.Request{
		Method: http.MethodPost,
		Path:   base + "/admin/state",
		Body:   body,
		Access: api.Authenticated,
	})
}

// AdminRestoreUser brings a user back from purgatory
func (c *Client) AdminRestoreUser(ctx context.Context, body IdentificationBody) (api.ActionResult, error) {
	return c.call(ctx, api.Request{
		Method: http.MethodPost,
		Path:   base + "/admin/restore",
		Body:   body,
		Access: api.Authenticated,
	})
}

// AdminDeleteUser deletes a user
func (c *Client) AdminDeleteUser(ctx context.Context, login string) (api.ActionResult, error) {
	return c.call(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   base + "/admin/user/" + url.PathEscape(login) + "/",
		Access: api.Authenticated,
	})
}

// AdminRoles lists the roles the signed-in admin may grant
func (c *Client) AdminRoles(ctx context.Context) ([]AccessibleRole, error) {
	return api.Fetch[[]AccessibleRole](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   base + "/admin/roles",
		Access: api.Authenticated,
	})
}

// AdminUserRights returns the rights of a user
func (c *Client) AdminUserRights(ctx context.Context, body RightsRequest) (RightsResponse, error) {
	return api.Fetch[RightsResponse](ctx, c.doer, api.Request{
		Method: http.MethodPost,
		Path:   base + "/admin/rights",
		Body:   body,
		Access: api.Authenticated,
	})
}

// AdminUpdateRights replaces roles, groups or ACLs of a user
func (c *Client) AdminUpdateRights(ctx context.Context, body RightsUpdateBody) (api.ActionResult, error) {
	return c.call(ctx, api.Request{
		Method: http.MethodPost,
		Path:   base + "/admin/rights/update",
		Body:   body,
		Access: api.Authenticated,
	})
}
