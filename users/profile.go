package users

import (
	"context"
	"net/http"

	"iotower.com/console/api"
)

// Profile returns the signed-in user profile, cached for ProfileTTL. force,
// or a profile change made through this client, bypasses the cache. When a
// refresh fails and a profile was fetched before, the previous profile is
// returned instead of the error.
func (c *Client) Profile(ctx context.Context, force bool) (BasicProfile, error) {
	return c.profile.Get(ctx, force)
}

func (c *Client) fetchProfile(ctx context.Context) (BasicProfile, error) {
	return api.Fetch[BasicProfile](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   base + "/profile/basic",
		Access: api.Authenticated,
	})
}

// UpdateCustomFields replaces the profile custom fields
func (c *Client) UpdateCustomFields(ctx context.Context, body CustomFieldsBody) (api.ActionResult, error) {
	return c.mutateProfile(ctx, api.Request{
		Method: http.MethodPut,
		Path:   base + "/profile/customfields",
		Body:   body,
		Access: api.Authenticated,
	})
}

// UpdateBasicProfile updates names, phone, country and language
func (c *Client) UpdateBasicProfile(ctx context.Context, body BasicProfileBody) (api.ActionResult, error) {
	return c.mutateProfile(ctx, api.Request{
		Method: http.MethodPut,
		Path:   base + "/profile/basic",
		Body:   body,
		Access: api.Authenticated,
	})
}

// ChangeTwoFA selects the second factor method. Switching to the
// authenticator returns the secret to enroll.
func (c *Client) ChangeTwoFA(ctx context.Context, body TwoFABody) (TwoFAResponse, error) {
	resp, err := api.Fetch[TwoFAResponse](ctx, c.doer, api.Request{
		Method: http.MethodPut,
		Path:   base + "/profile/2fa",
		Body:   body,
		Access: api.Authenticated,
	})
	if err != nil {
		return TwoFAResponse{}, err
	}
	c.profile.Slot().Invalidate()
	return resp, nil
}

// ChangePassword changes the password of the signed-in user
func (c *Client) ChangePassword(ctx context.Context, body PasswordChangeBody) (api.ActionResult, error) {
	return c.call(ctx, api.Request{
		Method: http.MethodPut,
		Path:   base + "/profile/password",
		Body:   body,
		Access: api.Authenticated,
	})
}

// DeleteAccount deletes the signed-in account. The account goes to purgatory
// for the configured delay; the local session ends immediately.
func (c *Client) DeleteAccount(ctx context.Context) (api.ActionResult, error) {
	res, err := c.call(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   base + "/profile",
		Access: api.Authenticated,
	})
	if err != nil {
		return api.ActionResult{}, err
	}
	c.session.Clear()
	c.ClearCaches()
	return res, nil
}

func (c *Client) mutateProfile(ctx context.Context, req api.Request) (api.ActionResult, error) {
	res, err := c.call(ctx, req)
	if err != nil {
		return api.ActionResult{}, err
	}
	c.profile.Slot().Invalidate()
	return res, nil
}
