package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"iotower.com/console/backendtest"
	"iotower.com/console/session"
)

type capHandler struct {
	mu      sync.Mutex
	base    []slog.Attr
	records []map[string]any
	msgs    []string
}

func (h *capHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *capHandler) Handle(_ context.Context, r slog.Record) error {
	out := make(map[string]any, len(h.base)+8)
	for _, a := range h.base {
		out[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.Any()
		return true
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, out)
	h.msgs = append(h.msgs, r.Message)
	return nil
}

func (h *capHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &capHandlerView{parent: h, base: append(append([]slog.Attr{}, h.base...), attrs...)}
}

func (h *capHandler) WithGroup(string) slog.Handler { return h }

// capHandlerView shares the parent record list but carries its own attrs
type capHandlerView struct {
	parent *capHandler
	base   []slog.Attr
}

func (v *capHandlerView) Enabled(ctx context.Context, l slog.Level) bool {
	return v.parent.Enabled(ctx, l)
}
func (v *capHandlerView) Handle(ctx context.Context, r slog.Record) error {
	r2 := r.Clone()
	r2.AddAttrs(v.base...)
	return v.parent.Handle(ctx, r2)
}
func (v *capHandlerView) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &capHandlerView{parent: v.parent, base: append(append([]slog.Attr{}, v.base...), attrs...)}
}
func (v *capHandlerView) WithGroup(string) slog.Handler { return v }

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type signinBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func newGateway(t *testing.T, srv *backendtest.Server, timeout time.Duration) (*Gateway, *session.Store) {
	t.Helper()
	s := session.New()
	g, err := NewGateway(s, Options{BaseURL: srv.URL + "/", Timeout: timeout, UserAgent: "iotowerctl-test"})
	require.NoError(t, err)
	return g, s
}

func TestDoSuccessMarksBackendUp(t *testing.T) {
	t.Parallel()

	srv := backendtest.New(t)
	srv.Handle(http.MethodGet, "/users/1.0/config", backendtest.JSON(http.StatusOK, payload{Name: "cfg", Count: 3}))

	g, s := newGateway(t, srv, 0)
	s.SetBackendUp(false)

	got, err := Fetch[payload](context.Background(), g, Request{Method: http.MethodGet, Path: "/users/1.0/config", Access: Public})
	require.NoError(t, err)
	require.Equal(t, payload{Name: "cfg", Count: 3}, got)
	require.True(t, s.BackendUp())

	last := srv.Last()
	require.Equal(t, "application/json", last.ContentType)
	require.Empty(t, last.Authorization)
	_, err = uuid.Parse(last.RequestID)
	require.NoError(t, err)
}

func TestDoAttachesBearerAtCallTime(t *testing.T) {
	t.Parallel()

	srv := backendtest.New(t)
	srv.Handle(http.MethodGet, "/capture/1.0/protocol", srv.RequireBearer(backendtest.JSON(http.StatusOK, []payload{})))

	g, s := newGateway(t, srv, 0)

	// the token is set after the gateway exists
	token := srv.Token("jdoe", []string{"ROLE_USER"}, time.Hour)
	require.NoError(t, s.Apply(session.Grant{AccessToken: token, RefreshToken: "refresh-token"}))

	_, err := Fetch[[]payload](context.Background(), g, Request{Method: http.MethodGet, Path: "/capture/1.0/protocol", Access: Authenticated})
	require.NoError(t, err)
	require.Equal(t, "Bearer "+token, srv.Last().Authorization)

	srv.Handle(http.MethodGet, "/users/1.0/session/refresh", backendtest.JSON(http.StatusOK, payload{}))
	_, err = Fetch[payload](context.Background(), g, Request{Method: http.MethodGet, Path: "/users/1.0/session/refresh", Access: Renewal})
	require.NoError(t, err)
	require.Equal(t, "Bearer refresh-token", srv.Last().Authorization)
}

func TestDoSendsJSONBody(t *testing.T) {
	t.Parallel()

	srv := backendtest.New(t)
	srv.Handle(http.MethodPost, "/users/1.0/session/signin", backendtest.JSON(http.StatusOK, payload{Name: "ok"}))

	g, _ := newGateway(t, srv, 0)
	body := signinBody{Email: "jdoe@example.com", Password: "secret"}
	_, err := Fetch[payload](context.Background(), g, Request{Method: http.MethodPost, Path: "/users/1.0/session/signin", Body: body})
	require.NoError(t, err)

	var sent signinBody
	require.NoError(t, json.Unmarshal(srv.Last().Body, &sent))
	require.Equal(t, body, sent)
}

func TestDoTimeout(t *testing.T) {
	t.Parallel()

	srv := backendtest.New(t)
	srv.Handle(http.MethodGet, "/slow", backendtest.Delay(500*time.Millisecond, backendtest.JSON(http.StatusOK, payload{})))

	g, s := newGateway(t, srv, 50*time.Millisecond)

	err := g.Do(context.Background(), Request{Method: http.MethodGet, Path: "/slow"}, nil)
	require.Equal(t, &ActionResult{Status: StatusUnknown, StatusCode: 0, Message: MsgBackendTimeout}, err)
	require.False(t, s.BackendUp())
}

func TestDoStructuredErrorPassesThrough(t *testing.T) {
	t.Parallel()

	srv := backendtest.New(t)
	srv.Handle(http.MethodGet, "/tickets/1.0/ticket/42/", backendtest.Result("NOTFOUND", http.StatusNotFound, "err-ticket-not-found"))

	for _, up := range []bool{true, false} {
		g, s := newGateway(t, srv, 0)
		s.SetBackendUp(up)

		err := g.Do(context.Background(), Request{Method: http.MethodGet, Path: "/tickets/1.0/ticket/42/", Access: Authenticated}, nil)
		require.Equal(t, &ActionResult{Status: StatusNotFound, StatusCode: 404, Message: "err-ticket-not-found"}, err)
		require.Equal(t, up, s.BackendUp())
		require.True(t, IsStatus(err, StatusNotFound))
	}
}

func TestDoUnknownErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		ctype  string
		body   string
	}{
		{"error body without status", http.StatusBadRequest, "application/json", `{"message":"nope"}`},
		{"error body with empty status", http.StatusInternalServerError, "application/json", `{"status":"","message":"nope"}`},
		{"html error page", http.StatusBadGateway, "text/html", "<html>bad gateway</html>"},
		{"empty success", http.StatusOK, "application/json", ""},
		{"null success", http.StatusOK, "application/json", "null"},
		{"unparseable success", http.StatusOK, "application/json", "{broken"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := backendtest.New(t)
			srv.Handle(http.MethodGet, "/x", backendtest.Raw(tc.status, tc.ctype, tc.body))
			g, s := newGateway(t, srv, 0)

			var out payload
			err := g.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, &out)
			require.Equal(t, &ActionResult{Status: StatusUnknown, StatusCode: 0, Message: MsgUnknownError}, err)
			require.False(t, s.BackendUp())
		})
	}
}

func TestDoConnectionRefused(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s := session.New()
	g, err := NewGateway(s, Options{BaseURL: "http://" + addr})
	require.NoError(t, err)

	err = g.Do(context.Background(), Request{Method: http.MethodGet, Path: "/users/1.0/config"}, nil)
	require.Equal(t, MsgUnknownError, AsActionResult(err).Message)
	require.False(t, s.BackendUp())
}

func TestDoRejectsInvalidBodyLocally(t *testing.T) {
	t.Parallel()

	srv := backendtest.New(t)
	g, s := newGateway(t, srv, 0)

	err := g.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/users/1.0/session/signin",
		Body:   &signinBody{Email: "not-an-email"},
	}, nil)
	require.Equal(t, &ActionResult{Status: StatusBadRequest, StatusCode: 400, Message: MsgInvalidRequest}, err)
	require.Empty(t, srv.Requests())
	require.True(t, s.BackendUp())
}

func TestDoCallerCancel(t *testing.T) {
	t.Parallel()

	srv := backendtest.New(t)
	srv.Handle(http.MethodGet, "/slow", backendtest.Delay(500*time.Millisecond, backendtest.JSON(http.StatusOK, payload{})))
	g, s := newGateway(t, srv, 0)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := g.Do(ctx, Request{Method: http.MethodGet, Path: "/slow"}, nil)
	require.Equal(t, MsgRequestCanceled, AsActionResult(err).Message)
	require.True(t, s.BackendUp())
}

func TestDoLogsOneRecordPerCall(t *testing.T) {
	t.Parallel()

	srv := backendtest.New(t)
	srv.Handle(http.MethodGet, "/users/1.0/config", backendtest.JSON(http.StatusOK, payload{Name: "cfg"}))

	h := &capHandler{}
	g, err := NewGateway(session.New(), Options{BaseURL: srv.URL, Logger: slog.New(h)})
	require.NoError(t, err)

	require.NoError(t, g.Do(context.Background(), Request{Method: http.MethodGet, Path: "/users/1.0/config"}, nil))

	h.mu.Lock()
	defer h.mu.Unlock()
	require.Equal(t, []string{"backend_call"}, h.msgs)
	rec := h.records[0]
	require.Equal(t, srv.Last().RequestID, rec["request_id"])
	require.Equal(t, "/users/1.0/config", rec["path"])
	require.Equal(t, "public", rec["access"])
	require.EqualValues(t, 200, rec["code"])
}

func TestNewGatewayValidatesBaseURL(t *testing.T) {
	t.Parallel()

	for _, base := range []string{"", "localhost:8091", "ftp://host", "http://"} {
		_, err := NewGateway(session.New(), Options{BaseURL: base})
		require.Error(t, err, base)
	}

	_, err := NewGateway(nil, Options{BaseURL: "http://localhost:8091"})
	require.Error(t, err)
}

func TestAsActionResult(t *testing.T) {
	t.Parallel()

	require.Nil(t, AsActionResult(nil))

	ar := NewActionResult(StatusForbidden, 403, "err-forbidden")
	require.Same(t, ar, AsActionResult(ar))
	require.Equal(t, MsgUnknownError, AsActionResult(context.DeadlineExceeded).Message)
	require.Equal(t, 418, StatusTeapot.HTTPCode())
	require.False(t, Status("WHATEVER").Known())
}
