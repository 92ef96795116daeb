package main

import (
	"net/http"
)

// listTagMappingsHandler exposes the alias table so clients can canonicalize
// tags before filtering.
//
//	@Summary		List tag mappings
//	@Description	Returns the alias to canonical tag table
//	@Tags			prompts
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/tags/mappings [get]
func (app *application) listTagMappingsHandler(w http.ResponseWriter, r *http.Request) {
	app.jsonResponse(w, http.StatusOK, app.store.TagMappings.List())
}

type tagMappingPayload struct {
	Alias     string `json:"alias" validate:"required,max=50"`
	Canonical string `json:"canonical" validate:"required,max=50"`
}

// upsertTagMappingHandler adds or replaces one alias. Admin only: the alias
// table shapes every tag filter and search query.
//
//	@Summary		Upsert a tag mapping
//	@Description	Maps an alias to a canonical tag
//	@Tags			prompts
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		tagMappingPayload	true	"Mapping"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	error
//	@Failure		401		{object}	error
//	@Security		BasicAuth
//	@Router			/tags/mappings [put]
func (app *application) upsertTagMappingHandler(w http.ResponseWriter, r *http.Request) {
	var payload tagMappingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	app.store.TagMappings.Upsert(payload.Alias, payload.Canonical)
	app.jsonResponse(w, http.StatusOK, map[string]string{
		payload.Alias: app.store.TagMappings.Resolve(payload.Alias),
	})
}
