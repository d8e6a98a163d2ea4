package models

// Tab is a named predefined view filter
type Tab string

const (
	TabAll       Tab = "all"
	TabRecent    Tab = "recent"
	TabFavorites Tab = "favs"
)

// ParseTab maps a user-supplied tab name to a Tab, defaulting to All
func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabRecent:
		return TabRecent
	case TabFavorites:
		return TabFavorites
	default:
		return TabAll
	}
}

// SortKey selects the projection ordering
type SortKey string

const (
	SortTitleAsc       SortKey = "az"
	SortTitleDesc      SortKey = "za"
	SortRecentFirst    SortKey = "new"
	SortFavoritesFirst SortKey = "fav"
)

// ParseSortKey maps a user-supplied sort name to a SortKey, defaulting to TitleAsc
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortTitleDesc:
		return SortTitleDesc
	case SortRecentFirst:
		return SortRecentFirst
	case SortFavoritesFirst:
		return SortFavoritesFirst
	default:
		return SortTitleAsc
	}
}

// ViewSpec is the ephemeral view state driving a projection
type ViewSpec struct {
	Query   string  `json:"query"`
	Tab     Tab     `json:"tab"`
	SortKey SortKey `json:"sortKey"`
}

// Prefs is the persisted last-used view preference document
type Prefs struct {
	Tab     Tab     `json:"tab"`
	SortKey SortKey `json:"sortKey"`
	Query   string  `json:"query"`
}

// DefaultPrefs returns the preferences used before the user has touched anything
func DefaultPrefs() *Prefs {
	return &Prefs{Tab: TabAll, SortKey: SortTitleAsc}
}
