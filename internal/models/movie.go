package models

// MovieRecord is the canonical movie entry in the vault.
type MovieRecord struct {
	ID        string   `boltholdKey:"ID" json:"id"`
	Title     string   `json:"title"`
	Year      *int     `json:"year,omitempty"`      // nil = unknown
	PosterURL string   `json:"posterUrl,omitempty"` // empty = placeholder at render time
	Tags      []string `json:"tags,omitempty"`      // insertion order kept for display
	AddedAt   int64    `json:"addedAt"`             // milliseconds since epoch, immutable
	Favorite  bool     `json:"favorite"`
}

// Clone returns a deep copy so callers can never mutate the canonical record.
func (m *MovieRecord) Clone() *MovieRecord {
	if m == nil {
		return nil
	}
	out := *m
	if m.Year != nil {
		y := *m.Year
		out.Year = &y
	}
	if m.Tags != nil {
		out.Tags = make([]string, len(m.Tags))
		copy(out.Tags, m.Tags)
	}
	return &out
}

// CloneMovies deep-copies a collection snapshot.
func CloneMovies(movies []*MovieRecord) []*MovieRecord {
	out := make([]*MovieRecord, len(movies))
	for i, m := range movies {
		out[i] = m.Clone()
	}
	return out
}

// Profile is a viewer profile. Profiles do not scope favorites; the
// favorite flag lives on the record itself.
type Profile struct {
	ID     string `boltholdKey:"ID" json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
	Kids   bool   `json:"kids"`
}
