package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeffreysprompts/internal/transcript"
)

func TestProcessTranscript(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	raw := "user: my key is sk-abcdefghijklmnop1234\nassistant: never paste keys into chats"

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/transcripts/process",
		body:   map[string]any{"raw": raw, "render": true},
		userID: "v",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var result struct {
		Document transcript.Document `json:"document"`
		Markdown string              `json:"markdown"`
	}
	decodeData(t, rr, &result)

	require.Len(t, result.Document.Turns, 2)
	assert.Equal(t, transcript.RoleUser, result.Document.Turns[0].Role)
	assert.NotContains(t, result.Document.Turns[0].Content, "sk-abcdefghijklmnop1234")
	assert.Contains(t, result.Markdown, "# Transcript")
	assert.Greater(t, result.Document.Stats.ApproxTokens, 0)
}

func TestProcessTranscriptEmpty(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/transcripts/process",
		body:   map[string]any{"raw": "   "},
		userID: "v",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
