// Package search implements the catalog search: a BM25 inverted index over
// the embedded prompt catalog, reranked by review helpfulness and recency.
package search

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
)

const (
	bm25K1 = 1.2
	bm25B  = 0.75

	// Field weights applied to term frequency at index time.
	weightTitle       = 3
	weightTags        = 2
	weightDescription = 2
	weightBody        = 1

	helpfulnessBoost = 0.2
	recencyBoost     = 0.05
	recencyWindow    = 30 * 24 * time.Hour
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {},
	"on": {}, "or": {}, "that": {}, "the": {}, "to": {}, "with": {},
}

// Document is what the index knows about one catalog item. Helpfulness is
// the item's review helpfulness ratio at index/refresh time.
type Document struct {
	Slug        string
	Title       string
	Description string
	Body        string
	Tags        []string
	CreatedAt   time.Time
	Helpfulness float64
}

type Result struct {
	Slug  string  `json:"slug"`
	Score float64 `json:"score"`
}

// Resolver canonicalizes a single token, used for tag aliases. The identity
// function is a valid resolver.
type Resolver func(string) string

type docEntry struct {
	doc    Document
	length float64 // weighted token count
}

type Index struct {
	resolve  Resolver
	mu       sync.RWMutex // guards the Helpfulness field of docs
	docs     []docEntry
	ords     map[string]int // slug -> doc ordinal
	postings map[string]map[int]float64 // term -> doc ordinal -> weighted tf
	avgLen   float64
}

func NewIndex(docs []Document, resolve Resolver) *Index {
	if resolve == nil {
		resolve = func(s string) string { return s }
	}
	ix := &Index{
		resolve:  resolve,
		ords:     make(map[string]int, len(docs)),
		postings: make(map[string]map[int]float64),
	}

	var totalLen float64
	for _, d := range docs {
		ord := len(ix.docs)
		var length float64
		add := func(text string, weight float64) {
			for _, tok := range Tokenize(text) {
				term := resolve(tok)
				if ix.postings[term] == nil {
					ix.postings[term] = make(map[int]float64)
				}
				ix.postings[term][ord] += weight
				length += weight
			}
		}
		add(d.Title, weightTitle)
		add(strings.Join(d.Tags, " "), weightTags)
		add(d.Description, weightDescription)
		add(d.Body, weightBody)

		ix.ords[d.Slug] = ord
		ix.docs = append(ix.docs, docEntry{doc: d, length: length})
		totalLen += length
	}
	if len(ix.docs) > 0 {
		ix.avgLen = totalLen / float64(len(ix.docs))
	}
	return ix
}

// Tokenize lowercases and splits on non-letter/digit runs, dropping
// stopwords and single characters.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// SetHelpfulness updates one document's review helpfulness ratio so the
// rerank tracks vote mutations. Unknown slugs are ignored.
func (ix *Index) SetHelpfulness(slug string, ratio float64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ord, ok := ix.ords[slug]; ok {
		ix.docs[ord].doc.Helpfulness = ratio
	}
}

// Search scores every document holding at least one query term, then blends
// in the helpfulness and recency boosts. Ordering is deterministic: score
// descending, ties by slug.
func (ix *Index) Search(query string, limit int) []Result {
	terms := Tokenize(query)
	if len(terms) == 0 || len(ix.docs) == 0 {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	now := time.Now().UTC()
	n := float64(len(ix.docs))
	scores := make(map[int]float64)

	for _, tok := range terms {
		term := ix.resolve(tok)
		posting := ix.postings[term]
		if len(posting) == 0 {
			continue
		}
		df := float64(len(posting))
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		for ord, tf := range posting {
			dl := ix.docs[ord].length
			denom := tf + bm25K1*(1-bm25B+bm25B*dl/ix.avgLen)
			scores[ord] += idf * (tf * (bm25K1 + 1)) / denom
		}
	}

	results := make([]Result, 0, len(scores))
	for ord, score := range scores {
		d := ix.docs[ord].doc
		score *= 1 + helpfulnessBoost*d.Helpfulness
		if now.Sub(d.CreatedAt) < recencyWindow {
			score *= 1 + recencyBoost
		}
		results = append(results, Result{Slug: d.Slug, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Slug < results[j].Slug
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
