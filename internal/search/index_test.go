package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocs() []Document {
	old := time.Now().UTC().Add(-90 * 24 * time.Hour)
	return []Document{
		{
			Slug:        "code-review-companion",
			Title:       "Code Review Companion",
			Description: "Structured code review with severity levels",
			Body:        "Review the diff for correctness, naming and test coverage.",
			Tags:        []string{"code-review", "go"},
			CreatedAt:   old,
		},
		{
			Slug:        "bug-triage-workflow",
			Title:       "Bug Triage Workflow",
			Description: "Reproduce, isolate and classify incoming bugs",
			Body:        "Walk the report, reproduce, bisect, classify severity.",
			Tags:        []string{"debugging"},
			CreatedAt:   old,
		},
		{
			Slug:        "docs-from-code",
			Title:       "Docs From Code",
			Description: "Generate reference documentation from source",
			Body:        "Read the package and write user-facing documentation.",
			Tags:        []string{"documentation"},
			CreatedAt:   old,
		},
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("The quick-BROWN fox, and a K8s cluster!")
	assert.Equal(t, []string{"quick", "brown", "fox", "k8s", "cluster"}, got)
}

func TestSearchRanksTitleMatchesFirst(t *testing.T) {
	ix := NewIndex(testDocs(), nil)

	results := ix.Search("code review", 10)
	require.NotEmpty(t, results)
	assert.Equal(t, "code-review-companion", results[0].Slug)
}

func TestSearchNoMatch(t *testing.T) {
	ix := NewIndex(testDocs(), nil)
	assert.Empty(t, ix.Search("kubernetes operators", 10))
	assert.Empty(t, ix.Search("", 10))
	assert.Empty(t, ix.Search("the and of", 10), "stopword-only queries match nothing")
}

func TestSearchResolverAliases(t *testing.T) {
	resolve := func(tok string) string {
		if tok == "golang" {
			return "go"
		}
		return tok
	}
	ix := NewIndex(testDocs(), resolve)

	// "golang" resolves to the "go" tag on the companion doc.
	results := ix.Search("golang", 10)
	require.Len(t, results, 1)
	assert.Equal(t, "code-review-companion", results[0].Slug)
}

func TestSearchHelpfulnessBoost(t *testing.T) {
	docs := testDocs()
	base := NewIndex(docs, nil).Search("documentation", 10)
	require.NotEmpty(t, base)

	for i := range docs {
		if docs[i].Slug == "docs-from-code" {
			docs[i].Helpfulness = 1
		}
	}
	boosted := NewIndex(docs, nil).Search("documentation", 10)
	require.NotEmpty(t, boosted)
	assert.Greater(t, boosted[0].Score, base[0].Score)
}

func TestSetHelpfulness(t *testing.T) {
	ix := NewIndex(testDocs(), nil)
	base := ix.Search("documentation", 10)
	require.NotEmpty(t, base)

	ix.SetHelpfulness("docs-from-code", 1)
	boosted := ix.Search("documentation", 10)
	require.NotEmpty(t, boosted)
	assert.Greater(t, boosted[0].Score, base[0].Score)

	ix.SetHelpfulness("docs-from-code", 0)
	reset := ix.Search("documentation", 10)
	assert.Equal(t, base[0].Score, reset[0].Score)

	// Unknown slugs are a no-op.
	ix.SetHelpfulness("ghost", 1)
}

func TestSearchRecencyBoost(t *testing.T) {
	docs := testDocs()
	base := NewIndex(docs, nil).Search("bug triage", 10)
	require.NotEmpty(t, base)

	for i := range docs {
		if docs[i].Slug == "bug-triage-workflow" {
			docs[i].CreatedAt = time.Now().UTC().Add(-24 * time.Hour)
		}
	}
	boosted := NewIndex(docs, nil).Search("bug triage", 10)
	require.NotEmpty(t, boosted)
	assert.Greater(t, boosted[0].Score, base[0].Score)
}

func TestSearchDeterministicOrder(t *testing.T) {
	ix := NewIndex(testDocs(), nil)

	first := ix.Search("review report package", 10)
	for i := 0; i < 5; i++ {
		again := ix.Search("review report package", 10)
		assert.Equal(t, first, again)
	}
}

func TestSearchLimit(t *testing.T) {
	ix := NewIndex(testDocs(), nil)
	results := ix.Search("the review documentation severity", 1)
	assert.Len(t, results, 1)
}
