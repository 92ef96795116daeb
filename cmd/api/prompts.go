package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"jeffreysprompts/internal/params"
	"jeffreysprompts/internal/store"
)

// listPromptsHandler godoc
//
//	@Summary		List catalog items
//	@Tags			prompts
//	@Produce		json
//	@Param			type		query	string	false	"prompt | bundle | workflow | collection | skill"
//	@Param			category	query	string	false	"category filter"
//	@Param			tag			query	string	false	"tag filter (aliases resolve)"
//	@Success		200	{object}	map[string]any
//	@Router			/prompts [get]
func (app *application) listPromptsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	contentType := q.Get("type")
	if contentType != "" && !store.ValidContentType(contentType) {
		app.badRequestResponse(w, r, fmt.Errorf("unknown content type %q", contentType))
		return
	}

	tag := q.Get("tag")
	if tag != "" {
		tag = app.store.TagMappings.Resolve(tag)
	}

	p := params.ParsePagination(q)
	prompts, total, err := app.store.Prompts.List(r.Context(), store.PromptQuery{
		Type:     contentType,
		Category: q.Get("category"),
		Tag:      tag,
		Limit:    p.Limit,
		Offset:   p.Offset,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"prompts":    prompts,
		"pagination": p,
	})
}

func (app *application) getPromptHandler(w http.ResponseWriter, r *http.Request) {
	prompt, err := app.store.Prompts.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, prompt)
}

type searchHit struct {
	Prompt store.Prompt `json:"prompt"`
	Score  float64      `json:"score"`
}

// searchPromptsHandler godoc
//
//	@Summary		Search the catalog
//	@Description	BM25 over title, tags, description and body, reranked by review helpfulness and recency
//	@Tags			prompts
//	@Produce		json
//	@Param			q	query	string	true	"query"
//	@Success		200	{object}	map[string]any
//	@Router			/prompts/search [get]
func (app *application) searchPromptsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		app.badRequestResponse(w, r, fmt.Errorf("query parameter q is required"))
		return
	}

	cacheKey := "search:" + query
	var cached []searchHit
	if hit, err := app.cache.Get(r.Context(), cacheKey, &cached); err == nil && hit {
		app.jsonResponse(w, http.StatusOK, map[string]any{"query": query, "results": cached})
		return
	}

	results := app.search.Search(query, 20)
	hits := make([]searchHit, 0, len(results))
	for _, res := range results {
		prompt, err := app.store.Prompts.GetBySlug(r.Context(), res.Slug)
		if err != nil {
			continue
		}
		hits = append(hits, searchHit{Prompt: *prompt, Score: res.Score})
	}

	if err := app.cache.Set(r.Context(), cacheKey, hits, 30*time.Second); err != nil {
		app.logger.Warnw("search cache set failed", "error", err)
	}
	app.jsonResponse(w, http.StatusOK, map[string]any{"query": query, "results": hits})
}
