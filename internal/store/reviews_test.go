package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitReview(t *testing.T, s *ReviewStore, authorID, rating, content string) *Review {
	t.Helper()
	r := &Review{
		ContentType: ContentPrompt,
		ContentID:   "code-review-companion",
		AuthorID:    authorID,
		Rating:      rating,
		Content:     content,
	}
	_, err := s.Submit(context.Background(), r)
	require.NoError(t, err)
	return r
}

func TestSubmitOverwritesSameAuthor(t *testing.T) {
	s := NewReviewStore()
	ctx := context.Background()

	first := submitReview(t, s, "alice", RatingUp, "really sharpened my review habits")

	second := &Review{
		ContentType: ContentPrompt,
		ContentID:   "code-review-companion",
		AuthorID:    "alice",
		Rating:      RatingDown,
		Content:     "changed my mind after more use",
	}
	created, err := s.Submit(ctx, second)
	require.NoError(t, err)
	assert.False(t, created, "resubmission must not create a second review")
	assert.Equal(t, first.ID, second.ID)

	reviews, total, err := s.List(ctx, ReviewQuery{ContentType: ContentPrompt, ContentID: "code-review-companion"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, RatingDown, reviews[0].Rating)
	assert.Equal(t, "changed my mind after more use", reviews[0].Content)
}

func TestSubmitValidation(t *testing.T) {
	s := NewReviewStore()
	ctx := context.Background()

	_, err := s.Submit(ctx, &Review{
		ContentType: ContentPrompt, ContentID: "x", AuthorID: "a",
		Rating: "5-stars", Content: "long enough content here",
	})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = s.Submit(ctx, &Review{
		ContentType: ContentPrompt, ContentID: "x", AuthorID: "a",
		Rating: RatingUp, Content: "short",
	})
	assert.ErrorIs(t, err, ErrInvalid)

	// HTML is stripped before the length check.
	_, err = s.Submit(ctx, &Review{
		ContentType: ContentPrompt, ContentID: "x", AuthorID: "a",
		Rating: RatingUp, Content: "<b><i><u>hi</u></i></b>",
	})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSubmitStripsHTML(t *testing.T) {
	s := NewReviewStore()
	r := submitReview(t, s, "alice", RatingUp, `great prompt <script>alert("x")</script> use it daily`)
	assert.NotContains(t, r.Content, "<script>")
	assert.NotContains(t, r.Content, "alert")
}

func TestVoteOnePerVoter(t *testing.T) {
	s := NewReviewStore()
	ctx := context.Background()
	r := submitReview(t, s, "alice", RatingUp, "really sharpened my review habits")

	for i := 0; i < 3; i++ {
		_, err := s.Vote(ctx, r.ID, "bob", StanceHelpful)
		require.NoError(t, err)
	}
	got, err := s.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.HelpfulCount, "repeated votes by one voter count once")

	// Switching stance moves the vote, never double counts.
	_, err = s.Vote(ctx, r.ID, "bob", StanceNotHelpful)
	require.NoError(t, err)
	got, _ = s.GetByID(ctx, r.ID)
	assert.Equal(t, 0, got.HelpfulCount)
	assert.Equal(t, 1, got.NotHelpfulCount)

	// Retracting.
	_, err = s.Vote(ctx, r.ID, "bob", StanceNone)
	require.NoError(t, err)
	got, _ = s.GetByID(ctx, r.ID)
	assert.Equal(t, 0, got.HelpfulCount)
	assert.Equal(t, 0, got.NotHelpfulCount)

	// Retracting a vote that was never cast stays at zero.
	_, err = s.Vote(ctx, r.ID, "carol", StanceNone)
	require.NoError(t, err)
	got, _ = s.GetByID(ctx, r.ID)
	assert.GreaterOrEqual(t, got.HelpfulCount, 0)
	assert.GreaterOrEqual(t, got.NotHelpfulCount, 0)
}

func TestVoteUnknownReview(t *testing.T) {
	s := NewReviewStore()
	_, err := s.Vote(context.Background(), "nope", "bob", StanceHelpful)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportedExcludedFromListing(t *testing.T) {
	s := NewReviewStore()
	ctx := context.Background()

	r1 := submitReview(t, s, "alice", RatingUp, "really sharpened my review habits")
	submitReview(t, s, "bob", RatingDown, "did not work for my use case")

	require.NoError(t, s.Report(ctx, r1.ID, "carol", "spam"))

	reviews, total, err := s.List(ctx, ReviewQuery{ContentType: ContentPrompt, ContentID: "code-review-companion"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "bob", reviews[0].AuthorID)

	// Moderators still see it.
	_, total, err = s.List(ctx, ReviewQuery{
		ContentType: ContentPrompt, ContentID: "code-review-companion", IncludeReported: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	// And the summary skips it.
	sum, err := s.Summary(ctx, ContentPrompt, "code-review-companion", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
}

func TestMostHelpfulSort(t *testing.T) {
	s := NewReviewStore()
	ctx := context.Background()

	a := submitReview(t, s, "alice", RatingUp, "really sharpened my review habits")
	b := submitReview(t, s, "bob", RatingUp, "solid structure for code review")
	submitReview(t, s, "carol", RatingDown, "too verbose for small diffs")

	for _, voter := range []string{"v1", "v2", "v3"} {
		_, err := s.Vote(ctx, b.ID, voter, StanceHelpful)
		require.NoError(t, err)
	}
	_, err := s.Vote(ctx, a.ID, "v1", StanceHelpful)
	require.NoError(t, err)

	reviews, _, err := s.List(ctx, ReviewQuery{
		ContentType: ContentPrompt, ContentID: "code-review-companion", Sort: SortMostHelpful,
	})
	require.NoError(t, err)
	require.Len(t, reviews, 3)
	assert.Equal(t, b.ID, reviews[0].ID)
	assert.Equal(t, a.ID, reviews[1].ID)
}

func TestRespondOnce(t *testing.T) {
	s := NewReviewStore()
	ctx := context.Background()
	r := submitReview(t, s, "alice", RatingUp, "really sharpened my review habits")

	got, err := s.Respond(ctx, r.ID, AuthorResponse{ResponderID: "u-jeffrey", Content: "glad it helps!"})
	require.NoError(t, err)
	require.NotNil(t, got.Response)
	assert.Equal(t, "u-jeffrey", got.Response.ResponderID)

	_, err = s.Respond(ctx, r.ID, AuthorResponse{ResponderID: "u-jeffrey", Content: "one more thing"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestRespondRejectsEmptyAfterSanitize(t *testing.T) {
	s := NewReviewStore()
	ctx := context.Background()
	r := submitReview(t, s, "alice", RatingUp, "really sharpened my review habits")

	_, err := s.Respond(ctx, r.ID, AuthorResponse{ResponderID: "u-jeffrey", Content: "<script>alert(1)</script>"})
	assert.ErrorIs(t, err, ErrInvalid)

	got, err := s.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Response, "a rejected response must not be stored")
}

func TestSanitizeResponseContent(t *testing.T) {
	clean, err := SanitizeResponseContent("  <b>thanks</b> for the detail  ")
	require.NoError(t, err)
	assert.Equal(t, "thanks for the detail", clean)

	_, err = SanitizeResponseContent("<img src=x>")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDeleteAuthorOnly(t *testing.T) {
	s := NewReviewStore()
	ctx := context.Background()
	r := submitReview(t, s, "alice", RatingUp, "really sharpened my review habits")

	err := s.Delete(ctx, r.ID, "mallory")
	assert.ErrorIs(t, err, ErrNotFound, "a foreign caller must not learn the review exists")

	require.NoError(t, s.Delete(ctx, r.ID, "alice"))
	_, err = s.GetByID(ctx, r.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The slot is free again for a fresh review.
	again := submitReview(t, s, "alice", RatingDown, "second thoughts after deleting")
	assert.NotEqual(t, r.ID, again.ID)
}

func TestSummaryRatios(t *testing.T) {
	s := NewReviewStore()
	ctx := context.Background()

	a := submitReview(t, s, "alice", RatingUp, "really sharpened my review habits")
	submitReview(t, s, "bob", RatingUp, "solid structure for code review")
	submitReview(t, s, "carol", RatingDown, "too verbose for small diffs")

	_, err := s.Vote(ctx, a.ID, "v1", StanceHelpful)
	require.NoError(t, err)
	_, err = s.Vote(ctx, a.ID, "v2", StanceNotHelpful)
	require.NoError(t, err)

	sum, err := s.Summary(ctx, ContentPrompt, "code-review-companion", time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 3, sum.Total)
	assert.Equal(t, 3, sum.Recent30Days)
	assert.InDelta(t, 2.0/3.0, sum.UpRatio, 1e-9)
	assert.InDelta(t, 0.5, sum.HelpfulnessRatio, 1e-9)
}
