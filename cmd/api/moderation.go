package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"jeffreysprompts/internal/store"
)

type createActionPayload struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Target    string `json:"target" validate:"required"`
	Reason    string `json:"reason" validate:"required,max=1000"`
}

func (app *application) createModerationActionHandler(w http.ResponseWriter, r *http.Request) {
	var payload createActionPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	action := &store.ModerationAction{
		SubjectID: payload.SubjectID,
		Target:    payload.Target,
		Reason:    payload.Reason,
	}
	if err := app.store.Moderation.CreateAction(r.Context(), action); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusCreated, action)
}

// getModerationActionHandler returns the action along with the appeal
// state the UI needs: whether the window is still open and whether an
// appeal was already filed.
func (app *application) getModerationActionHandler(w http.ResponseWriter, r *http.Request) {
	action, err := app.store.Moderation.GetAction(r.Context(), chi.URLParam(r, "actionID"))
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	appealed := false
	if _, err := app.store.Moderation.GetAppealByAction(r.Context(), action.ID); err == nil {
		appealed = true
	}

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"action":         action,
		"appealable":     store.AppealEligible(action.CreatedAt, time.Now().UTC()) && !appealed,
		"appealed":       appealed,
		"window_ends_at": action.CreatedAt.Add(store.AppealWindow),
	})
}

type createAppealPayload struct {
	Statement string `json:"statement" validate:"required,min=10,max=1000"`
}

func (app *application) createAppealHandler(w http.ResponseWriter, r *http.Request) {
	var payload createAppealPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	appeal := &store.Appeal{
		ActionID:    chi.URLParam(r, "actionID"),
		AppellantID: getIdentity(r).UserID,
		Statement:   payload.Statement,
	}
	err := app.store.Moderation.CreateAppeal(r.Context(), appeal)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, errors.New("this action has already been appealed"))
		case errors.Is(err, store.ErrInvalid):
			app.badRequestResponse(w, r, errors.New("the appeal window for this action has closed"))
		default:
			app.internalServerError(w, r, err)
		}
		return
	}
	app.jsonResponse(w, http.StatusCreated, appeal)
}

func (app *application) getAppealHandler(w http.ResponseWriter, r *http.Request) {
	appeal, err := app.store.Moderation.GetAppeal(r.Context(), chi.URLParam(r, "appealID"))
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, appeal)
}
