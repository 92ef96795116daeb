package main

import (
	"errors"
	"net/http"

	"jeffreysprompts/internal/transcript"
)

type processTranscriptPayload struct {
	Raw    string `json:"raw" validate:"required"`
	Render bool   `json:"render"`
}

// processTranscriptHandler godoc
//
//	@Summary		Process a raw session transcript
//	@Description	Splits the transcript into turns, redacts secret-looking tokens and computes stats. Set render to also get a markdown rendering.
//	@Tags			transcripts
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	map[string]any
//	@Failure		400	{object}	error
//	@Router			/transcripts/process [post]
func (app *application) processTranscriptHandler(w http.ResponseWriter, r *http.Request) {
	var payload processTranscriptPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	doc, err := transcript.Process(payload.Raw)
	if err != nil {
		if errors.Is(err, transcript.ErrEmpty) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	out := map[string]any{"document": doc}
	if payload.Render {
		out["markdown"] = doc.Markdown()
	}
	app.jsonResponse(w, http.StatusOK, out)
}
