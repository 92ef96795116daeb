package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeffreysprompts/internal/store"
)

func TestConsentFlow(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	// No choice recorded yet: the client should show the banner.
	rr := executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/consent", userID: "v1"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/consent",
		body: map[string]any{
			"functional":     true,
			"analytics":      false,
			"marketing":      false,
			"policy_version": "2026-01",
		},
		userID: "v1",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var rec store.ConsentRecord
	decodeData(t, rr, &rec)
	assert.True(t, rec.Necessary, "necessary consent is always on")
	assert.True(t, rec.Functional)
	assert.False(t, rec.Analytics)

	// The choice is mirrored into a cookie.
	var found bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == consentCookie {
			found = true
			assert.Equal(t, "2026-01", c.Value)
		}
	}
	assert.True(t, found, "consent cookie must be set")

	// Re-recording is last-write-wins.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/consent",
		body: map[string]any{
			"functional":     false,
			"analytics":      true,
			"marketing":      true,
			"policy_version": "2026-02",
		},
		userID: "v1",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/consent", userID: "v1"})
	require.Equal(t, http.StatusOK, rr.Code)
	decodeData(t, rr, &rec)
	assert.False(t, rec.Functional)
	assert.True(t, rec.Analytics)
	assert.Equal(t, "2026-02", rec.PolicyVersion)

	// Another visitor still has no record.
	rr = executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/consent", userID: "v2"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestConsentValidation(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/consent",
		body:   map[string]any{"functional": true},
		userID: "v1",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code, "policy_version is required")
}
