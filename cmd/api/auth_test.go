package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeffreysprompts/internal/store"
)

func TestRegisterUser(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	body := map[string]string{
		"username": "maya",
		"email":    "maya@example.com",
		"password": "correct horse battery",
	}

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/authentication/user", body: body,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var user store.User
	decodeData(t, rr, &user)
	assert.Equal(t, "maya", user.Username)
	assert.NotEmpty(t, user.ID)
	assert.NotContains(t, rr.Body.String(), "correct horse battery", "password must never serialize")

	// Duplicate email conflicts.
	body["username"] = "maya2"
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/authentication/user", body: body,
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestRegisterUserValidation(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/authentication/user",
		body: map[string]string{"username": "x", "email": "not-an-email", "password": "short"},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTokenFlow(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	registerTestUser(t, app, "maya", "maya@example.com")

	// Wrong password.
	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/authentication/token",
		body: map[string]string{"email": "maya@example.com", "password": "wrong password here"},
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Right password yields a pair.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/authentication/token",
		body: map[string]string{"email": "maya@example.com", "password": "correct horse battery"},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	decodeData(t, rr, &tokens)
	require.NotEmpty(t, tokens.AccessToken)
	require.NotEmpty(t, tokens.RefreshToken)

	// The access token unlocks registered-only routes.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodGet, path: "/v1/feed", bearer: tokens.AccessToken,
	})
	assert.Equal(t, http.StatusOK, rr.Code)

	// The refresh token mints a new pair.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/authentication/refresh",
		body: map[string]string{"refresh_token": tokens.RefreshToken},
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decodeData(t, rr, &tokens)
	assert.NotEmpty(t, tokens.AccessToken)

	// Garbage refresh tokens are rejected.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/authentication/refresh",
		body: map[string]string{"refresh_token": "garbage.token.here"},
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestInvalidBearerRejected(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodGet, path: "/v1/prompts", bearer: "not.a.jwt",
	})
	assert.Equal(t, http.StatusUnauthorized, rr.Code, "a present-but-invalid token must not downgrade to visitor")
}
