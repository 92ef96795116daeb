package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jeffreysprompts/internal/store"
)

func TestReviewLifecycle(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	submit := map[string]string{
		"content_type": "prompt",
		"content_id":   "code-review-companion",
		"rating":       "up",
		"content":      "really sharpened my review habits",
	}

	// First submission creates.
	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews", body: submit, userID: "alice",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var review store.Review
	decodeData(t, rr, &review)
	assert.Equal(t, "alice", review.AuthorID)
	assert.Equal(t, store.RatingUp, review.Rating)

	// Resubmission by the same visitor overwrites instead of duplicating.
	submit["rating"] = "down"
	submit["content"] = "changed my mind after more use"
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews", body: submit, userID: "alice",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = executeRequest(t, mux, testRequest{
		method: http.MethodGet,
		path:   "/v1/reviews?content_type=prompt&content_id=code-review-companion",
		userID: "bob",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var listing struct {
		Reviews []store.Review `json:"reviews"`
	}
	decodeData(t, rr, &listing)
	require.Len(t, listing.Reviews, 1)
	assert.Equal(t, store.RatingDown, listing.Reviews[0].Rating)

	// A different visitor votes the review helpful.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews/" + review.ID + "/vote",
		body: map[string]string{"stance": "helpful"}, userID: "bob",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var voted store.Review
	decodeData(t, rr, &voted)
	assert.Equal(t, 1, voted.HelpfulCount)

	// The author deletes their review; a stranger cannot.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodDelete, path: "/v1/reviews/" + review.ID, userID: "mallory",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = executeRequest(t, mux, testRequest{
		method: http.MethodDelete, path: "/v1/reviews/" + review.ID, userID: "alice",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSubmitReviewUnknownContent(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews",
		body: map[string]string{
			"content_type": "prompt",
			"content_id":   "no-such-prompt",
			"rating":       "up",
			"content":      "reviewing thin air over here",
		},
		userID: "alice",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSubmitReviewValidation(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	// Bad rating value.
	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews",
		body: map[string]string{
			"content_type": "prompt",
			"content_id":   "code-review-companion",
			"rating":       "5-stars",
			"content":      "long enough to pass the length check",
		},
		userID: "alice",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Too short after sanitization.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews",
		body: map[string]string{
			"content_type": "prompt",
			"content_id":   "code-review-companion",
			"rating":       "up",
			"content":      "<b>ok</b>",
		},
		userID: "alice",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReportedReviewHiddenUnlessAdmin(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews",
		body: map[string]string{
			"content_type": "prompt",
			"content_id":   "code-review-companion",
			"rating":       "up",
			"content":      "buy cheap watches at example.com",
		},
		userID: "spammer",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var review store.Review
	decodeData(t, rr, &review)

	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews/" + review.ID + "/report",
		body: map[string]string{"reason": "spam"}, userID: "bob",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	listPath := "/v1/reviews?content_type=prompt&content_id=code-review-companion"

	var listing struct {
		Reviews []store.Review `json:"reviews"`
	}

	rr = executeRequest(t, mux, testRequest{method: http.MethodGet, path: listPath, userID: "bob"})
	decodeData(t, rr, &listing)
	assert.Empty(t, listing.Reviews)

	// include_reported is ignored for non-admins.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodGet, path: listPath + "&include_reported=true", userID: "bob",
	})
	decodeData(t, rr, &listing)
	assert.Empty(t, listing.Reviews)

	// Admins asking for it see the reported review.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodGet, path: listPath + "&include_reported=true", admin: true,
	})
	decodeData(t, rr, &listing)
	assert.Len(t, listing.Reviews, 1)
}

func TestAuthorResponse(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews",
		body: map[string]string{
			"content_type": "prompt",
			"content_id":   "code-review-companion",
			"rating":       "up",
			"content":      "really sharpened my review habits",
		},
		userID: "alice",
	})
	require.Equal(t, http.StatusCreated, rr.Code)
	var review store.Review
	decodeData(t, rr, &review)

	respond := map[string]string{"content": "glad it helps!"}

	// Only the content author (u-jeffrey for this prompt) may respond.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews/" + review.ID + "/response",
		body: respond, userID: "impostor",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews/" + review.ID + "/response",
		body: respond, userID: "u-jeffrey",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var responded store.Review
	decodeData(t, rr, &responded)
	require.NotNil(t, responded.Response)
	assert.Equal(t, "u-jeffrey", responded.Response.ResponderID)

	// Second response conflicts.
	rr = executeRequest(t, mux, testRequest{
		method: http.MethodPost, path: "/v1/reviews/" + review.ID + "/response",
		body: respond, userID: "u-jeffrey",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestReviewSummary(t *testing.T) {
	app := newTestApplication(t)
	mux := app.mount()

	for _, sub := range []struct{ user, rating string }{
		{"alice", "up"}, {"bob", "up"}, {"carol", "down"},
	} {
		rr := executeRequest(t, mux, testRequest{
			method: http.MethodPost, path: "/v1/reviews",
			body: map[string]string{
				"content_type": "prompt",
				"content_id":   "code-review-companion",
				"rating":       sub.rating,
				"content":      "a perfectly reasonable take on this prompt",
			},
			userID: sub.user,
		})
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := executeRequest(t, mux, testRequest{
		method: http.MethodGet,
		path:   "/v1/reviews/summary?content_type=prompt&content_id=code-review-companion",
		userID: "dave",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var sum store.ReviewSummary
	decodeData(t, rr, &sum)
	assert.Equal(t, 3, sum.Total)
	assert.InDelta(t, 2.0/3.0, sum.UpRatio, 1e-9)
}
