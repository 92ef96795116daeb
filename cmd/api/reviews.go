package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"jeffreysprompts/internal/notifications"
	"jeffreysprompts/internal/params"
	"jeffreysprompts/internal/store"
)

type submitReviewPayload struct {
	ContentType string `json:"content_type" validate:"required"`
	ContentID   string `json:"content_id" validate:"required"`
	Rating      string `json:"rating" validate:"required,oneof=up down"`
	Content     string `json:"content" validate:"required"`
}

// submitReviewHandler godoc
//
//	@Summary		Submit a review
//	@Description	Creates the caller's review for a content item, or overwrites it on resubmission
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Success		201	{object}	store.Review
//	@Success		200	{object}	store.Review
//	@Failure		400	{object}	error
//	@Failure		404	{object}	error
//	@Router			/reviews [post]
func (app *application) submitReviewHandler(w http.ResponseWriter, r *http.Request) {
	var payload submitReviewPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if !store.ValidContentType(payload.ContentType) {
		app.badRequestResponse(w, r, fmt.Errorf("unknown content type %q", payload.ContentType))
		return
	}

	// The content item must exist in the catalog.
	if _, err := app.store.Prompts.GetBySlug(r.Context(), payload.ContentID); err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	id := getIdentity(r)
	review := &store.Review{
		ContentType: payload.ContentType,
		ContentID:   payload.ContentID,
		AuthorID:    id.UserID,
		Rating:      payload.Rating,
		Content:     payload.Content,
	}

	created, err := app.store.Reviews.Submit(r.Context(), review)
	if err != nil {
		if errors.Is(err, store.ErrInvalid) {
			app.badRequestResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.invalidateSummary(r, payload.ContentType, payload.ContentID)

	if created {
		app.appendFeedEvent(r, &store.Event{
			ActorID:     id.UserID,
			Type:        store.EventReviewPublished,
			SubjectType: payload.ContentType,
			SubjectID:   payload.ContentID,
		})
		app.jsonResponse(w, http.StatusCreated, review)
		return
	}
	app.jsonResponse(w, http.StatusOK, review)
}

// listReviewsHandler godoc
//
//	@Summary		List reviews for a content item
//	@Description	Reported reviews are excluded unless the caller is an admin asking for them
//	@Tags			reviews
//	@Produce		json
//	@Param			content_type		query	string	true	"content type"
//	@Param			content_id			query	string	true	"content id"
//	@Param			sort				query	string	false	"newest | oldest | most-helpful"
//	@Param			include_reported	query	bool	false	"admin only"
//	@Success		200	{object}	map[string]any
//	@Router			/reviews [get]
func (app *application) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contentType := q.Get("content_type")
	contentID := q.Get("content_id")
	if contentType == "" || contentID == "" {
		app.badRequestResponse(w, r, fmt.Errorf("content_type and content_id are required"))
		return
	}

	sortBy := q.Get("sort")
	switch sortBy {
	case "", store.SortNewest, store.SortOldest, store.SortMostHelpful:
	default:
		app.badRequestResponse(w, r, fmt.Errorf("unknown sort %q", sortBy))
		return
	}

	p := params.ParsePagination(q)
	includeReported := q.Get("include_reported") == "true" && app.isAdmin(r)

	reviews, total, err := app.store.Reviews.List(r.Context(), store.ReviewQuery{
		ContentType:     contentType,
		ContentID:       contentID,
		Sort:            sortBy,
		IncludeReported: includeReported,
		Limit:           p.Limit,
		Offset:          p.Offset,
	})
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"reviews":    reviews,
		"pagination": p,
	})
}

// reviewSummaryHandler serves the aggregate card shown next to a content
// item. Cached briefly; invalidated on every review mutation.
func (app *application) reviewSummaryHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	contentType := q.Get("content_type")
	contentID := q.Get("content_id")
	if contentType == "" || contentID == "" {
		app.badRequestResponse(w, r, fmt.Errorf("content_type and content_id are required"))
		return
	}

	key := summaryCacheKey(contentType, contentID)
	var cached store.ReviewSummary
	if hit, err := app.cache.Get(r.Context(), key, &cached); err == nil && hit {
		app.jsonResponse(w, http.StatusOK, &cached)
		return
	}

	summary, err := app.store.Reviews.Summary(r.Context(), contentType, contentID, time.Now().UTC())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.cache.Set(r.Context(), key, summary, time.Minute); err != nil {
		app.logger.Warnw("summary cache set failed", "error", err)
	}
	app.jsonResponse(w, http.StatusOK, summary)
}

func summaryCacheKey(contentType, contentID string) string {
	return fmt.Sprintf("reviews:summary:%s:%s", contentType, contentID)
}

func (app *application) invalidateSummary(r *http.Request, contentType, contentID string) {
	if err := app.cache.Del(r.Context(), summaryCacheKey(contentType, contentID)); err != nil {
		app.logger.Warnw("summary cache invalidation failed", "error", err)
	}
}

// refreshSearchHelpfulness feeds the item's current helpfulness ratio back
// into the search index so vote mutations move its rerank.
func (app *application) refreshSearchHelpfulness(r *http.Request, contentType, contentID string) {
	summary, err := app.store.Reviews.Summary(r.Context(), contentType, contentID, time.Now().UTC())
	if err != nil {
		app.logger.Warnw("helpfulness refresh failed", "content_id", contentID, "error", err)
		return
	}
	app.search.SetHelpfulness(contentID, summary.HelpfulnessRatio)
}

type votePayload struct {
	Stance string `json:"stance" validate:"required,oneof=helpful not-helpful none"`
}

// voteReviewHandler records or overwrites the caller's helpfulness vote.
func (app *application) voteReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")

	var payload votePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.Vote(r.Context(), reviewID, getIdentity(r).UserID, payload.Stance)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, store.ErrInvalid):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.invalidateSummary(r, review.ContentType, review.ContentID)
	app.refreshSearchHelpfulness(r, review.ContentType, review.ContentID)
	app.jsonResponse(w, http.StatusOK, review)
}

type reportPayload struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

func (app *application) reportReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")

	var payload reportPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	if err := app.store.Reviews.Report(r.Context(), reviewID, getIdentity(r).UserID, payload.Reason); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.invalidateSummary(r, review.ContentType, review.ContentID)
	app.refreshSearchHelpfulness(r, review.ContentType, review.ContentID)
	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "review reported"})
}

type responsePayload struct {
	Content string `json:"content" validate:"required,max=2000"`
}

// respondReviewHandler lets the content author attach their single reply to
// a review of their item.
func (app *application) respondReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")

	var payload responsePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	prompt, err := app.store.Prompts.GetBySlug(r.Context(), review.ContentID)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	id := getIdentity(r)
	if prompt.AuthorID != id.UserID {
		// Not the content author; do not reveal whether the review exists.
		app.notFoundResponse(w, r, errors.New("not the content author"))
		return
	}

	updated, err := app.store.Reviews.Respond(r.Context(), reviewID, store.AuthorResponse{
		ResponderID: id.UserID,
		Content:     payload.Content,
	})
	if err != nil {
		switch {
		case errors.Is(err, store.ErrConflict):
			app.conflictResponse(w, r, errors.New("review already has a response"))
		case errors.Is(err, store.ErrInvalid):
			app.badRequestResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	app.appendFeedEvent(r, &store.Event{
		ActorID:     id.UserID,
		Type:        store.EventResponsePublished,
		SubjectType: review.ContentType,
		SubjectID:   review.ContentID,
	})
	app.notifyReviewer(r, updated, prompt.Title)

	app.jsonResponse(w, http.StatusOK, updated)
}

// notifyReviewer pushes a response notification to the review author when
// they registered a push token. Failures are logged only.
func (app *application) notifyReviewer(r *http.Request, review *store.Review, contentTitle string) {
	if app.push == nil {
		return
	}
	token, err := app.store.PushTokens.Get(r.Context(), review.AuthorID)
	if err != nil {
		return
	}
	if err := notifications.SendAuthorResponseNotification(r.Context(), app.push, token, contentTitle, review.ID); err != nil {
		app.logger.Warnw("push notification failed", "review_id", review.ID, "error", err)
	}
}

// deleteReviewHandler removes the caller's own review. A foreign review ID
// yields 404, same as a missing one.
func (app *application) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID := chi.URLParam(r, "reviewID")

	review, err := app.store.Reviews.GetByID(r.Context(), reviewID)
	if err != nil {
		app.notFoundResponse(w, r, err)
		return
	}

	if err := app.store.Reviews.Delete(r.Context(), reviewID, getIdentity(r).UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			app.notFoundResponse(w, r, err)
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.invalidateSummary(r, review.ContentType, review.ContentID)
	app.refreshSearchHelpfulness(r, review.ContentType, review.ContentID)
	app.jsonResponse(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

func (app *application) appendFeedEvent(r *http.Request, e *store.Event) {
	if err := app.store.Feed.Append(r.Context(), e); err != nil {
		app.logger.Warnw("feed append failed", "type", e.Type, "error", err)
	}
}
