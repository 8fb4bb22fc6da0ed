package users

import (
	"context"
	"net/http"

	"iotower.com/console/api"
)

// LostPassword mails a password reset link
func (c *Client) LostPassword(ctx context.Context, body PasswordLostBody) (api.ActionResult, error) {
	return c.call(ctx, api.Request{
		Method: http.MethodPost,
		Path:   base + "/public/password/lost",
		Body:   body,
		Access: api.Public,
	})
}

// ResetPassword sets a new password with the key from the reset link
func (c *Client) ResetPassword(ctx context.Context, body PasswordChangeBody) (api.ActionResult, error) {
	if body.ChangeKey == "" {
		return api.ActionResult{}, api.NewActionResult(api.StatusBadRequest, 400, api.MsgInvalidRequest)
	}
	return c.call(ctx, api.Request{
		Method: http.MethodPut,
		Path:   base + "/public/password/change",
		Body:   body,
		Access: api.Public,
	})
}

// Register starts self registration. Depending on the module configuration
// the backend mails a validation link or answers with an account to create.
func (c *Client) Register(ctx context.Context, body AccountRegistrationBody) (api.ActionResult, error) {
	return c.call(ctx, api.Request{
		Method: http.MethodPost,
		Path:   base + "/public/register",
		Body:   body,
		Access: api.Public,
	})
}

// CreateAccount completes self registration
func (c *Client) CreateAccount(ctx context.Context, body AccountCreationBody) (api.ActionResult, error) {
	return c.call(ctx, api.Request{
		Method: http.MethodPost,
		Path:   base + "/public/create",
		Body:   body,
		Access: api.Public,
	})
}
