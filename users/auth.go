package users

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"iotower.com/console/api"
	"iotower.com/console/session"
)

// Login signs in with email and password. On success the session holds the
// returned tokens; when TwoFARequired is set the token is limited until
// Upgrade succeeds.
func (c *Client) Login(ctx context.Context, body LoginBody) (LoginResponse, error) {
	resp, err := api.Fetch[LoginResponse](ctx, c.doer, api.Request{
		Method: http.MethodPost,
		Path:   base + "/session/signin",
		Body:   body,
		Access: api.Public,
	})
	if err != nil {
		return LoginResponse{}, err
	}

	// another user may have been signed in; renewal keeps identity, sign-in
	// starts from nothing
	c.session.Clear()
	c.profile.Slot().Clear()
	c.applyGrant(resp)
	return resp, nil
}

// Upgrade completes a two factor sign-in with the received code
func (c *Client) Upgrade(ctx context.Context, secondFactor string) (LoginResponse, error) {
	q := url.Values{}
	q.Set("secondFactor", secondFactor)

	resp, err := api.Fetch[LoginResponse](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   api.PathWithQuery(base+"/session/upgrade", q),
		Access: api.Authenticated,
	})
	if err != nil {
		return LoginResponse{}, err
	}
	c.applyGrant(resp)
	return resp, nil
}

// Renew exchanges the refresh token for a new access token
func (c *Client) Renew(ctx context.Context) (LoginResponse, error) {
	resp, err := api.Fetch[LoginResponse](ctx, c.doer, api.Request{
		Method: http.MethodGet,
		Path:   base + "/session/refresh",
		Access: api.Renewal,
	})
	if err != nil {
		return LoginResponse{}, err
	}
	c.applyGrant(resp)
	return resp, nil
}

// RenewIfNeeded renews the access token when it is inside the renewal
// window. It reports whether a renewal happened.
func (c *Client) RenewIfNeeded(ctx context.Context) (bool, error) {
	if c.session.IsJWTExpired() || !c.session.IsJWTToBeRenewed() {
		return false, nil
	}
	if _, err := c.Renew(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Logout signs out. The local session and caches are dropped whatever the
// backend answers.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.call(ctx, api.Request{
		Method: http.MethodGet,
		Path:   base + "/session/signout",
		Access: api.Authenticated,
	})
	c.session.Clear()
	c.ClearCaches()
	return err
}

func (c *Client) applyGrant(resp LoginResponse) {
	err := c.session.Apply(session.Grant{
		AccessToken:  resp.JWTToken,
		RefreshToken: resp.JWTRenewalToken,
		Email:        resp.Email,
		Login:        resp.Login,
		TwoFASize:    resp.TwoFASize,
		TwoFAType:    string(resp.TwoFAType),
	})
	if err != nil {
		// the backend accepted us; only the display claims are missing
		c.log.Warn("login_token_claims_unavailable", slog.String("err", err.Error()))
	}
}
