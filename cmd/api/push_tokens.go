package main

import (
	"errors"
	"net/http"
	"strings"
)

type registerPushTokenPayload struct {
	Token string `json:"token" validate:"required"`
}

// registerPushTokenHandler stores the caller's Expo push token so author
// responses to their reviews can be delivered as notifications.
func (app *application) registerPushTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload registerPushTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if !strings.HasPrefix(payload.Token, "ExponentPushToken") {
		app.badRequestResponse(w, r, errors.New("token must be an Expo push token"))
		return
	}

	if err := app.store.PushTokens.Register(r.Context(), getIdentity(r).UserID, payload.Token); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "push token registered"})
}
