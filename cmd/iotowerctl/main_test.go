package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"iotower.com/console/api"
	"iotower.com/console/backendtest"
	"iotower.com/console/capture"
	"iotower.com/console/config"
	"iotower.com/console/session"
	"iotower.com/console/tickets"
	"iotower.com/console/users"
)

type envGetter map[string]string

func (e envGetter) GetWithDefault(key, def string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return def
}

func newTestConsole(t *testing.T, opts options) (*backendtest.Server, *console) {
	t.Helper()

	srv := backendtest.New(t)
	cfg, err := config.LoadPublic(envGetter{"BACKEND_API_BASE": srv.URL, "FORCE_INVITE_CODE": "TEAM"})
	require.NoError(t, err)
	if opts.lang == "" {
		opts.lang = "en"
	}
	c, err := newConsole(context.Background(), cfg, opts)
	require.NoError(t, err)
	t.Cleanup(c.close)
	return srv, c
}

func TestTicketID(t *testing.T) {
	t.Parallel()

	id, err := ticketID([]string{"42"})
	require.NoError(t, err)
	require.Equal(t, int64(42), id)

	for _, args := range [][]string{nil, {"x"}, {"0"}, {"1", "2"}} {
		_, err := ticketID(args)
		var usageErr usageError
		require.ErrorAs(t, err, &usageErr)
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	_, c := newTestConsole(t, options{})
	_, err := c.run(context.Background(), "frobnicate", nil)
	var usageErr usageError
	require.ErrorAs(t, err, &usageErr)
}

func TestSessionCommandsNeedSignIn(t *testing.T) {
	t.Parallel()

	srv, c := newTestConsole(t, options{})
	ctx := context.Background()

	for _, cmd := range []string{"profile", "tickets", "protocols", "endpoints"} {
		_, err := c.run(ctx, cmd, nil)
		res := api.AsActionResult(err)
		require.Equal(t, api.StatusForbidden, res.Status, cmd)
		require.Equal(t, "sessionExpired", res.Message)
	}
	require.Empty(t, srv.Requests())
}

func TestLoginWhoamiLogout(t *testing.T) {
	t.Parallel()

	srv, c := newTestConsole(t, options{email: "jdoe@example.com", password: "changeme"})
	srv.Handle(http.MethodPost, "/users/1.0/session/signin", backendtest.JSON(http.StatusOK, users.LoginResponse{
		Email:           "jdoe@example.com",
		Login:           "a1b2",
		JWTToken:        srv.Token("a1b2", []string{session.RoleGroupAdmin}, 3*time.Hour),
		JWTRenewalToken: "renewal",
	}))
	srv.Handle(http.MethodGet, "/users/1.0/session/signout", srv.RequireBearer(backendtest.Result("OK", http.StatusOK, "bye")))
	ctx := context.Background()

	out, err := c.run(ctx, "login", nil)
	require.NoError(t, err)
	resp := out.(users.LoginResponse)
	require.Empty(t, resp.JWTToken)
	require.Equal(t, "a1b2", resp.Login)
	require.NotEmpty(t, c.session.BackendJWT())

	out, err = c.run(ctx, "whoami", nil)
	require.NoError(t, err)
	who := out.(whoamiView)
	require.Equal(t, "jdoe@example.com", who.Email)
	require.True(t, who.GroupAdmin)
	require.False(t, who.UserAdmin)
	require.Equal(t, "3 hours", who.ExpiresIn)

	_, err = c.run(ctx, "logout", nil)
	require.NoError(t, err)
	require.True(t, c.session.IsJWTExpired())
}

func TestTicketsAndEndpoints(t *testing.T) {
	t.Parallel()

	srv, c := newTestConsole(t, options{closed: true, lang: "fr-CA"})
	require.NoError(t, c.session.Apply(session.Grant{AccessToken: srv.Token("a1b2", nil, time.Hour)}))
	srv.Handle(http.MethodGet, "/tickets/1.0/ticket", srv.RequireBearer(backendtest.JSON(http.StatusOK, []tickets.Abstract{{ID: 3}})))
	srv.Handle(http.MethodGet, "/tickets/1.0/ticket/3/", srv.RequireBearer(backendtest.JSON(http.StatusOK, tickets.Detail{ID: 3})))
	srv.Handle(http.MethodGet, "/capture/1.0/endpoint", srv.RequireBearer(backendtest.JSON(http.StatusOK, []capture.Endpoint{{
		ID:         "e1",
		CreationMs: time.Now().Add(-72 * time.Hour).UnixMilli(),
	}})))
	srv.Handle(http.MethodGet, "/capture/1.0/protocol", srv.RequireBearer(backendtest.JSON(http.StatusOK, []capture.Protocol{{
		ID:              "p1",
		MandatoryFields: []capture.MandatoryField{{Name: "port", ValueType: "number,1,223"}},
	}})))
	ctx := context.Background()

	out, err := c.run(ctx, "tickets", nil)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "closed=true", srv.Last().Query)

	out, err = c.run(ctx, "ticket", []string{"3"})
	require.NoError(t, err)
	require.Equal(t, int64(3), out.(tickets.Detail).ID)

	out, err = c.run(ctx, "endpoints", nil)
	require.NoError(t, err)
	require.Equal(t, "3 jours", out.([]endpointView)[0].Age)

	out, err = c.run(ctx, "protocols", nil)
	require.NoError(t, err)
	require.Equal(t, "number (1..223)", out.([]protocolView)[0].Fields["port"])
}

func TestRegisterUsesForcedInviteCode(t *testing.T) {
	t.Parallel()

	srv, c := newTestConsole(t, options{email: "new@example.com", invite: "typed"})
	srv.Handle(http.MethodPost, "/users/1.0/public/register", backendtest.Result("OK", http.StatusOK, "mail-sent"))

	_, err := c.run(context.Background(), "register", nil)
	require.NoError(t, err)
	require.Contains(t, string(srv.Last().Body), `"registrationCode":"TEAM"`)
}

func TestStatusReportsBackendDown(t *testing.T) {
	t.Parallel()

	srv, c := newTestConsole(t, options{})
	srv.Handle(http.MethodGet, "/users/1.0/config", backendtest.Raw(http.StatusServiceUnavailable, "text/plain", "maintenance"))

	out, err := c.run(context.Background(), "status", nil)
	require.NoError(t, err)
	v := out.(statusView)
	require.False(t, v.BackendUp)
	require.False(t, v.SignedIn)
	require.Equal(t, srv.URL, v.Backend)
}

func TestReportErrorExitCodes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	usageShown := false
	code := reportError(&buf, usageError("ticket takes a ticket id"), func() { usageShown = true })
	require.Equal(t, 2, code)
	require.True(t, usageShown)
	require.Contains(t, buf.String(), "ticket takes a ticket id")

	buf.Reset()
	usageShown = false
	code = reportError(&buf, api.NewActionResult(api.StatusForbidden, 403, "err-not-signed-in"), func() { usageShown = true })
	require.Equal(t, 1, code)
	require.False(t, usageShown)
	require.Contains(t, buf.String(), `"message": "err-not-signed-in"`)

	buf.Reset()
	code = reportError(&buf, errors.New("boom"), func() {})
	require.Equal(t, 1, code)
	require.Contains(t, buf.String(), api.MsgUnknownError)
}

func TestCloseReleasesDatabase(t *testing.T) {
	t.Parallel()

	_, c := newTestConsole(t, options{})
	closed := 0
	c.closeDB = func() { closed++ }

	_, err := c.run(context.Background(), "ticket", []string{"x"})
	require.Error(t, err)
	c.close()
	require.Equal(t, 1, closed)
}
