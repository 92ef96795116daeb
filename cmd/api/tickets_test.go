package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeffreysprompts/internal/store"
)

func openTicket(t *testing.T, mux http.Handler, userID string) store.Ticket {
	t.Helper()

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/support/tickets",
		body: map[string]string{
			"subject": "export button missing",
			"message": "the export button disappeared after the last update",
		},
		userID: userID,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var ticket store.Ticket
	decodeData(t, rr, &ticket)
	return ticket
}

func TestTicketLifecycle(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	ticket := openTicket(t, mux, "alice")
	assert.Equal(t, store.TicketOpen, ticket.Status)
	assert.True(t, strings.HasPrefix(ticket.Ref, "JP-"))

	// A stranger cannot read it; the requester can.
	rr := executeRequest(t, mux, testRequest{
		method: http.MethodGet, path: "/v1/support/tickets/" + ticket.ID, userID: "mallory",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = executeRequest(t, mux, testRequest{
		method: http.MethodGet, path: "/v1/support/tickets/" + ticket.ID, userID: "alice",
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	// A support (admin) reply parks the ticket in pending.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/support/tickets/" + ticket.ID + "/replies",
		body: map[string]string{"body": "can you share a screenshot?"}, admin: true,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var updated store.Ticket
	decodeData(t, rr, &updated)
	assert.Equal(t, store.TicketPending, updated.Status)
	require.Len(t, updated.Messages, 2)
	assert.Equal(t, store.RoleSupport, updated.Messages[1].AuthorRole)

	// The requester's reply reopens it.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/support/tickets/" + ticket.ID + "/replies",
		body: map[string]string{"body": "attached, see the sidebar"}, userID: "alice",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &updated)
	assert.Equal(t, store.TicketOpen, updated.Status)

	// Admin closes it; further replies conflict.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPatch, path: "/v1/support/tickets/" + ticket.ID + "/status",
		body: map[string]string{"status": "closed"}, admin: true,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/support/tickets/" + ticket.ID + "/replies",
		body: map[string]string{"body": "hello?"}, userID: "alice",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestTicketListScopedToRequester(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	openTicket(t, mux, "alice")
	openTicket(t, mux, "alice")
	openTicket(t, mux, "bob")

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodGet, path: "/v1/support/tickets", userID: "alice",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var listing struct {
		Tickets []store.Ticket `json:"tickets"`
	}
	decodeData(t, rr, &listing)
	assert.Len(t, listing.Tickets, 2)
}

func TestTicketStatusRequiresAdmin(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	ticket := openTicket(t, mux, "alice")

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPatch, path: "/v1/support/tickets/" + ticket.ID + "/status",
		body: map[string]string{"status": "resolved"}, userID: "alice",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("WWW-Authenticate"))
}

func TestTicketValidation(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/support/tickets",
		body:   map[string]string{"subject": "x", "message": "too short"},
		userID: "alice",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
