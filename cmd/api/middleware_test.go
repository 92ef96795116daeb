package main

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeffreysprompts/internal/observability"
	"jeffreysprompts/internal/ratelimiter"
)

func TestVisitorCookieIssued(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/prompts"})
	require.Equal(t, http.StatusOK, rr.Code)

	var issued bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == userIDCookie && c.Value != "" {
			issued = true
		}
	}
	assert.True(t, issued, "first contact must receive a user-id cookie")

	// A caller with a cookie keeps it.
	rr = executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/prompts", userID: "existing"})
	for _, c := range rr.Result().Cookies() {
		assert.NotEqual(t, userIDCookie, c.Name, "no new cookie for returning visitors")
	}
}

func TestRateLimit(t *testing.T) {
	app := newTestApplication(t)
	app.config.rateLimiter = ratelimiter.Config{
		RequestsPerTimeFrame: 2,
		TimeFrame:            time.Hour,
		Enabled:              true,
	}
	app.rateLimiter = ratelimiter.NewFixedWindowLimiter(2, time.Hour)
	mux := app.mount()

	for i := 0; i < 2; i++ {
		rr := executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/health", userID: "v"})
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/health", userID: "v"})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestHealthCheck(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/health"})
	require.Equal(t, http.StatusOK, rr.Code)

	var status map[string]string
	decodeData(t, rr, &status)
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["env"])

	rr = executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/ready"})
	assert.Equal(t, http.StatusOK, rr.Code, "memory mode is always ready")
}

func TestMetricsLabelRoutePattern(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	counter := observability.HTTPRequests.WithLabelValues("/v1/reviews/{reviewID}/vote", "POST", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"r-one", "r-two"} {
		rr := executeRequest(t, mux, testRequest{
			method: http.MethodPost, path: "/v1/reviews/" + id + "/vote",
			body:   map[string]string{"stance": "helpful"},
			userID: "v",
		})
		require.Equal(t, http.StatusNotFound, rr.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter),
		"distinct review IDs must land on one route-pattern series")
}

func TestDebugVarsRequiresBasicAuth(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/debug/vars"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = executeRequest(t, mux, testRequest{method: http.MethodGet, path: "/v1/debug/vars", admin: true})
	assert.Equal(t, http.StatusOK, rr.Code)
}
