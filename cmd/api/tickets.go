package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jeffreysprompts/internal/mailer"
	"jeffreysprompts/internal/params"
	"jeffreysprompts/internal/store"
)

type createTicketPayload struct {
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// createTicketHandler godoc
//
//	@Summary		Open a support ticket
//	@Tags			support
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	store.Ticket
//	@Failure		400	{object}	error
//	@Router			/support/tickets [post]
func (app *application) createTicketHandler(w http.ResponseWriter, r *http.Request) {
	var payload createTicketPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	id := getIdentity(r)
	ticket := &store.Ticket{
		RequesterID: id.UserID,
		Subject:     payload.Subject,
		Messages: []store.TicketMessage{{
			AuthorRole: store.RoleUser,
			AuthorID:   id.UserID,
			Body:       payload.Message,
		}},
	}

	if err := app.store.Tickets.Create(r.Context(), ticket); err != nil {
		if errors.Is(err, store.ErrInvalid) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, ticket)
}

func (app *application) listTicketsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	tickets, total, err := app.store.Tickets.ListByRequester(r.Context(), getIdentity(r).UserID, p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"tickets":    tickets,
		"pagination": p,
	})
}

// getTicketHandler returns the ticket to its requester or an admin; anyone
// else gets 404 rather than confirmation that the ticket exists.
func (app *application) getTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticket, err := app.store.Tickets.GetByID(r.Context(), chi.URLParam(r, "ticketID"))
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}
	if ticket.RequesterID != getIdentity(r).UserID && !app.isAdmin(r) {
		app.notFoundResponse(w, r, errors.New("not the ticket requester"))
		return
	}
	app.jsonResponse(w, http.StatusOK, ticket)
}

type ticketReplyPayload struct {
	Body string `json:"body" validate:"required,min=1,max=5000"`
}

// replyTicketHandler appends to the thread. An admin (basic auth) reply is
// a support reply and parks the ticket in pending; the requester's reply
// (re)opens it. The support reply also emails the requester when the
// mailer is configured and the requester is a registered user.
func (app *application) replyTicketHandler(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "ticketID")

	var payload ticketReplyPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ticket, err := app.store.Tickets.GetByID(r.Context(), ticketID)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	id := getIdentity(r)
	admin := app.isAdmin(r)
	if !admin && ticket.RequesterID != id.UserID {
		app.notFoundResponse(w, r, errors.New("not the ticket requester"))
		return
	}

	msg := store.TicketMessage{
		AuthorRole: store.RoleUser,
		AuthorID:   id.UserID,
		Body:       payload.Body,
	}
	if admin {
		msg.AuthorRole = store.RoleSupport
	}

	updated, err := app.store.Tickets.Reply(r.Context(), ticketID, msg)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, err)
		case errors.Is(err, store.ErrInvalid):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if admin {
		app.emailTicketReply(r, updated, payload.Body)
	}

	app.jsonResponse(w, http.StatusOK, updated)
}

func (app *application) emailTicketReply(r *http.Request, ticket *store.Ticket, reply string) {
	if app.mailer == nil {
		return
	}
	requester, err := app.store.Users.GetByID(r.Context(), ticket.RequesterID)
	if err != nil {
		// Visitor-opened ticket; there is no address to mail.
		return
	}

	data := map[string]string{
		"Username":  requester.Username,
		"TicketRef": ticket.Ref,
		"Subject":   ticket.Subject,
		"Reply":     reply,
	}
	status, err := app.mailer.Send(mailer.TicketReplyTemplate, requester.Username, requester.Email, data)
	if err != nil {
		app.logger.Errorw("ticket reply email failed", "ticket", ticket.Ref, "error", err)
		return
	}
	app.logger.Infow("ticket reply email sent", "ticket", ticket.Ref, "status", status)
}

type setStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=open pending resolved closed"`
}

func (app *application) setTicketStatusHandler(w http.ResponseWriter, r *http.Request) {
	var payload setStatusPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ticket, err := app.store.Tickets.SetStatus(r.Context(), chi.URLParam(r, "ticketID"), payload.Status)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrInvalid):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	app.jsonResponse(w, http.StatusOK, ticket)
}
