// Package search ranks typeahead suggestions for the search overlay.
// The projection's own text filter stays plain substring matching; this is
// only the live suggestion dropdown, where fuzzy ranking reads better.
package search

import (
	"github.com/hectorm/xstreamify/internal/models"
	"github.com/sahilm/fuzzy"
)

// Suggestion is one ranked title match
type Suggestion struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Score          int    `json:"score"`
	MatchedIndexes []int  `json:"matchedIndexes,omitempty"`
}

type movieSource []*models.MovieRecord

func (s movieSource) String(i int) string { return s[i].Title }
func (s movieSource) Len() int            { return len(s) }

// Suggest returns up to limit title suggestions for the query, best first.
// An empty query yields nothing.
func Suggest(movies []*models.MovieRecord, q string, limit int) []Suggestion {
	if q == "" || len(movies) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = 10
	}

	matches := fuzzy.FindFrom(q, movieSource(movies))
	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Suggestion, len(matches))
	for i, match := range matches {
		out[i] = Suggestion{
			ID:             movies[match.Index].ID,
			Title:          movies[match.Index].Title,
			Score:          match.Score,
			MatchedIndexes: match.MatchedIndexes,
		}
	}
	return out
}
