// Package query computes display projections of the movie collection.
// Project is pure: identical inputs give identical ordered output and the
// input collection is never mutated.
package query

import (
	"sort"
	"strings"

	"github.com/hectorm/xstreamify/internal/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Project filters and orders the collection for display. Steps, in fixed
// order: tab filter, case-insensitive substring filter on title, stable sort.
// The Recent tab does not narrow the set; it forces RecentFirst ordering.
func Project(collection []*models.MovieRecord, view models.ViewSpec) []*models.MovieRecord {
	out := make([]*models.MovieRecord, 0, len(collection))
	for _, m := range collection {
		if matchesTab(m, view.Tab) {
			out = append(out, m)
		}
	}

	if q := strings.ToLower(strings.TrimSpace(view.Query)); q != "" {
		kept := out[:0]
		for _, m := range out {
			if strings.Contains(strings.ToLower(m.Title), q) {
				kept = append(kept, m)
			}
		}
		out = kept
	}

	sortKey := view.SortKey
	if view.Tab == models.TabRecent {
		sortKey = models.SortRecentFirst
	}
	sortProjection(out, sortKey)

	return out
}

func matchesTab(m *models.MovieRecord, tab models.Tab) bool {
	if tab == models.TabFavorites {
		return m.Favorite
	}
	return true
}

func sortProjection(movies []*models.MovieRecord, key models.SortKey) {
	// Collators are not safe for concurrent use, so build one per call.
	// IgnoreCase matches the base-sensitivity compare the UI always used.
	titles := collate.New(language.Und, collate.IgnoreCase)

	switch key {
	case models.SortTitleDesc:
		sort.SliceStable(movies, func(i, j int) bool {
			return titles.CompareString(movies[j].Title, movies[i].Title) < 0
		})
	case models.SortRecentFirst:
		sort.SliceStable(movies, func(i, j int) bool {
			return movies[i].AddedAt > movies[j].AddedAt
		})
	case models.SortFavoritesFirst:
		sort.SliceStable(movies, func(i, j int) bool {
			if movies[i].Favorite != movies[j].Favorite {
				return movies[i].Favorite
			}
			return movies[i].AddedAt > movies[j].AddedAt
		})
	default: // TitleAsc
		sort.SliceStable(movies, func(i, j int) bool {
			return titles.CompareString(movies[i].Title, movies[j].Title) < 0
		})
	}
}
