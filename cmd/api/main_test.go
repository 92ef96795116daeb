package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jeffreysprompts/internal/auth"
	"jeffreysprompts/internal/cache"
	"jeffreysprompts/internal/ratelimiter"
	"jeffreysprompts/internal/search"
	"jeffreysprompts/internal/store"
)

func newTestApplication(t *testing.T) *application {
	t.Helper()

	storage := store.NewMemoryStorage()
	prompts, err := storage.Prompts.All(context.Background())
	require.NoError(t, err)

	docs := make([]search.Document, 0, len(prompts))
	for _, p := range prompts {
		docs = append(docs, search.Document{
			Slug: p.Slug, Title: p.Title, Description: p.Description,
			Body: p.Body, Tags: p.Tags, CreatedAt: p.CreatedAt,
		})
	}

	return &application{
		config: config{
			env:  "test",
			addr: ":0",
			auth: authConfig{
				basic: basicConfig{user: "admin", pass: "secret"},
				token: tokenConfig{iss: "jeffreysprompts"},
			},
			rateLimiter: ratelimiter.Config{
				RequestsPerTimeFrame: 1000,
				TimeFrame:            time.Minute,
			},
		},
		store:         storage,
		logger:        zap.NewNop().Sugar(),
		cache:         cache.Noop{},
		search:        search.NewIndex(docs, storage.TagMappings.Resolve),
		authenticator: auth.NewJWTAuthenticator("test-secret", "test-refresh", "jeffreysprompts", "jeffreysprompts", time.Hour, 24*time.Hour),
		rateLimiter:   ratelimiter.NewFixedWindowLimiter(1000, time.Minute),
	}
}

type testRequest struct {
	method string
	path   string
	body   any
	userID string // user-id cookie
	bearer string
	admin  bool
}

func executeRequest(t *testing.T, mux http.Handler, tr testRequest) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if tr.body != nil {
		b, err := json.Marshal(tr.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}

	req := httptest.NewRequest(tr.method, tr.path, body)
	if tr.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tr.userID != "" {
		req.AddCookie(&http.Cookie{Name: userIDCookie, Value: tr.userID})
	}
	if tr.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+tr.bearer)
	}
	if tr.admin {
		creds := base64.StdEncoding.EncodeToString([]byte("admin:secret"))
		req.Header.Set("Authorization", "Basic "+creds)
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// decodeData unmarshals the "data" envelope into dst.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

// registerTestUser creates a registered account and returns it with a valid
// access token.
func registerTestUser(t *testing.T, app *application, username, email string) (*store.User, string) {
	t.Helper()

	user := &store.User{Username: username, Email: email}
	require.NoError(t, user.Password.Set("correct horse battery"))
	require.NoError(t, app.store.Users.Create(context.Background(), user))

	access, _, err := app.authenticator.GenerateTokens(user.ID)
	require.NoError(t, err)
	return user, access
}
