package tickets

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"iotower.com/console/api"
	"iotower.com/console/backendtest"
	"iotower.com/console/session"
	"iotower.com/console/users"
)

func setup(t *testing.T) (*backendtest.Server, *session.Store, *Client) {
	t.Helper()

	srv := backendtest.New(t)
	sess := session.New()
	gw, err := api.NewGateway(sess, api.Options{BaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)
	require.NoError(t, sess.Apply(session.Grant{AccessToken: srv.Token("jdoe", nil, time.Hour)}))
	return srv, sess, New(gw)
}

func TestCreatePublicConfirmationFlow(t *testing.T) {
	t.Parallel()

	srv, _, client := setup(t)
	srv.Handle(http.MethodPost, "/tickets/1.0/public/create", func(c *fiber.Ctx) error {
		var body CreationBody
		if err := json.Unmarshal(c.Body(), &body); err != nil {
			return err
		}
		if body.ConfirmationCode == "" {
			return c.JSON(CreationResponse{ConfirmationCode: "sent"})
		}
		return c.JSON(CreationResponse{TicketID: 42})
	})
	ctx := context.Background()
	body := CreationBody{Topic: "Gateway offline", Content: "Since this morning", Email: "anon@example.com"}

	resp, err := client.CreatePublic(ctx, body)
	require.NoError(t, err)
	require.Equal(t, "sent", resp.ConfirmationCode)
	require.Zero(t, resp.TicketID)
	require.Empty(t, srv.Last().Authorization)

	body.ConfirmationCode = "123456"
	resp, err = client.CreatePublic(ctx, body)
	require.NoError(t, err)
	require.Equal(t, int64(42), resp.TicketID)
}

func TestCreateSendsContext(t *testing.T) {
	t.Parallel()

	srv, _, client := setup(t)
	srv.Handle(http.MethodPost, "/tickets/1.0/ticket", srv.RequireBearer(
		backendtest.JSON(http.StatusOK, CreationResponse{TicketID: 7})))

	resp, err := client.Create(context.Background(), CreationBody{
		Topic:   "Billing",
		Content: "Invoice missing",
		Context: []users.CustomField{{Name: "page", Value: "/billing"}},
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), resp.TicketID)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(srv.Last().Body, &sent))
	require.Equal(t, "Billing", sent["topic"])
	require.NotContains(t, sent, "email")
	require.Len(t, sent["context"], 1)
}

func TestCreateRejectsEmptyTopic(t *testing.T) {
	t.Parallel()

	srv, _, client := setup(t)
	_, err := client.Create(context.Background(), CreationBody{Content: "no topic"})
	require.True(t, api.IsStatus(err, api.StatusBadRequest))
	require.Empty(t, srv.Requests())
}

func TestListClosedQuery(t *testing.T) {
	t.Parallel()

	srv, _, client := setup(t)
	srv.Handle(http.MethodGet, "/tickets/1.0/ticket", srv.RequireBearer(backendtest.JSON(http.StatusOK, []Abstract{
		{ID: 1, Topic: "open one", Status: StateOpen, AdminPending: true},
		{ID: 2, Topic: "closed one", Status: StateClosed},
	})))
	ctx := context.Background()

	list, err := client.List(ctx, false)
	require.NoError(t, err)
	require.Empty(t, srv.Last().Query)
	require.Len(t, list, 2)
	require.False(t, list[0].Closed())
	require.True(t, list[1].Closed())

	_, err = client.List(ctx, true)
	require.NoError(t, err)
	require.Equal(t, "closed=true", srv.Last().Query)
}

func TestGetAndReply(t *testing.T) {
	t.Parallel()

	srv, _, client := setup(t)
	srv.Handle(http.MethodGet, "/tickets/1.0/ticket/12/", srv.RequireBearer(backendtest.JSON(http.StatusOK, Detail{
		ID:      12,
		Content: "help",
		Responses: []Message{
			{ID: "r1", Content: "on it", FromUser: false},
			{ID: "r2", Content: "thanks", FromUser: true},
		},
	})))
	srv.Handle(http.MethodPost, "/tickets/1.0/ticket/12/", srv.RequireBearer(backendtest.Result("OK", http.StatusOK, "ticket-updated")))
	ctx := context.Background()

	detail, err := client.Get(ctx, 12)
	require.NoError(t, err)
	require.Len(t, detail.Responses, 2)
	require.True(t, detail.Responses[1].FromUser)

	res, err := client.Reply(ctx, MessageBody{ID: 12, CloseTicket: true})
	require.NoError(t, err)
	require.Equal(t, "ticket-updated", res.Message)

	_, err = client.Reply(ctx, MessageBody{ID: 12})
	require.True(t, api.IsStatus(err, api.StatusBadRequest))
	require.Equal(t, 1, srv.Hits(http.MethodPost, "/tickets/1.0/ticket/12/"))
}

func TestReplyPublicNeedsAuthKey(t *testing.T) {
	t.Parallel()

	srv, _, client := setup(t)
	srv.Handle(http.MethodPost, "/tickets/1.0/public/12/", backendtest.Result("OK", http.StatusOK, "ticket-updated"))
	ctx := context.Background()

	_, err := client.ReplyPublic(ctx, MessageBody{ID: 12, Content: "more details"})
	require.True(t, api.IsStatus(err, api.StatusBadRequest))
	require.Empty(t, srv.Requests())

	_, err = client.ReplyPublic(ctx, MessageBody{ID: 12, Content: "more details", AuthKey: "k-1"})
	require.NoError(t, err)
	last := srv.Last()
	require.Empty(t, last.Authorization)
	require.Contains(t, string(last.Body), `"AuthKey":"k-1"`)
}

func TestTicketNotFoundPassesThrough(t *testing.T) {
	t.Parallel()

	srv, sess, client := setup(t)
	srv.Handle(http.MethodGet, "/tickets/1.0/ticket/99/", backendtest.Result("NOTFOUND", http.StatusNotFound, "ticket-not-found"))

	_, err := client.Get(context.Background(), 99)
	res := api.AsActionResult(err)
	require.Equal(t, api.StatusNotFound, res.Status)
	require.Equal(t, "ticket-not-found", res.Message)
	require.True(t, sess.BackendUp())
}
