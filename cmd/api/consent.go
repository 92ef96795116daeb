package main

import (
	"errors"
	"net/http"
	"time"

	"jeffreysprompts/internal/store"
)

const consentCookie = "cookie-consent"

// getConsentHandler returns the visitor's recorded choice, or 404 when no
// choice was ever made so the client knows to show the banner.
func (app *application) getConsentHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := app.store.Consent.Get(r.Context(), getIdentity(r).UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, errors.New("no consent recorded"))
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, rec)
}

type consentPayload struct {
	Functional    bool   `json:"functional"`
	Analytics     bool   `json:"analytics"`
	Marketing     bool   `json:"marketing"`
	PolicyVersion string `json:"policy_version" validate:"required,max=20"`
}

// recordConsentHandler stores the choice and mirrors it into a cookie so the
// banner stays dismissed without a round trip.
func (app *application) recordConsentHandler(w http.ResponseWriter, r *http.Request) {
	var payload consentPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	rec := &store.ConsentRecord{
		VisitorID:     getIdentity(r).UserID,
		Functional:    payload.Functional,
		Analytics:     payload.Analytics,
		Marketing:     payload.Marketing,
		PolicyVersion: payload.PolicyVersion,
	}
	if err := app.store.Consent.Put(r.Context(), rec); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     consentCookie,
		Value:    payload.PolicyVersion,
		Path:     "/",
		MaxAge:   int((180 * 24 * time.Hour).Seconds()),
		SameSite: http.SameSiteLaxMode,
	})

	app.jsonResponse(w, http.StatusOK, rec)
}
