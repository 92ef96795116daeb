package params

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantPage   int
		wantOffset int
	}{
		{"", 20, 1, 0},
		{"limit=10&page=3", 10, 3, 20},
		{"limit=500", 50, 1, 0},     // capped
		{"limit=-5", 20, 1, 0},      // back to default
		{"limit=abc&page=xyz", 20, 1, 0},
		{"page=0", 20, 1, 0},
	}

	for _, tc := range cases {
		q, _ := url.ParseQuery(tc.query)
		p := ParsePagination(q)
		assert.Equal(t, tc.wantLimit, p.Limit, tc.query)
		assert.Equal(t, tc.wantPage, p.Page, tc.query)
		assert.Equal(t, tc.wantOffset, p.Offset, tc.query)
	}
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2, Offset: 10}
	p.ComputeMeta(25)

	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	p = Pagination{Limit: 10, Page: 1}
	p.ComputeMeta(0)
	assert.Zero(t, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}
