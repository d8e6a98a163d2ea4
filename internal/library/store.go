package library

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hectorm/xstreamify/internal/models"
	"github.com/hectorm/xstreamify/internal/transfer"
	"github.com/sirupsen/logrus"
)

// Year bounds considered plausible for a release year.
const (
	MinYear = 1880
	MaxYear = 2100
)

// AddInput is the payload for creating a movie record
type AddInput struct {
	Title     string   `json:"title"`
	Year      *int     `json:"year,omitempty"`
	PosterURL string   `json:"posterUrl,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Patch is a partial update; only non-nil fields are applied
type Patch struct {
	Title     *string   `json:"title,omitempty"`
	Year      *int      `json:"year,omitempty"`
	PosterURL *string   `json:"posterUrl,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
}

// RemovalFunc is notified with the ids of records removed from the collection,
// so selection state can drop them instead of dangling.
type RemovalFunc func(ids []string)

// Store is the sole mutable owner of the movie collection. Every mutation is
// written through to the database before it is committed to memory.
type Store struct {
	db     *models.Database
	logger *logrus.Logger

	mu        sync.RWMutex
	movies    []*models.MovieRecord // insertion order
	index     map[string]int
	lastAdded int64

	onRemove []RemovalFunc
}

// NewStore creates a library store backed by db
func NewStore(db *models.Database, logger *logrus.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
		index:  make(map[string]int),
	}
}

// OnRemove registers an observer for record removals. Observers are invoked
// after the mutation commits and outside the store lock.
func (s *Store) OnRemove(fn RemovalFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRemove = append(s.onRemove, fn)
}

// Load populates the in-memory collection from the database. Corrupt or
// unreadable data is logged and discarded; the store starts empty rather
// than trusting it partially.
func (s *Store) Load() error {
	movies, err := s.db.GetAllMovies()
	if err != nil {
		s.logger.WithError(err).Warn("Failed to read collection, starting empty")
		movies = nil
	}

	kept := movies[:0]
	for _, m := range movies {
		if m.ID == "" || strings.TrimSpace(m.Title) == "" {
			s.logger.WithField("id", m.ID).Warn("Discarding corrupt movie record")
			continue
		}
		kept = append(kept, m)
	}

	// Re-establish insertion order; AddedAt is assigned monotonically.
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].AddedAt != kept[j].AddedAt {
			return kept[i].AddedAt < kept[j].AddedAt
		}
		return kept[i].ID < kept[j].ID
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.movies = kept
	s.rebuildIndex()
	s.lastAdded = 0
	for _, m := range kept {
		if m.AddedAt > s.lastAdded {
			s.lastAdded = m.AddedAt
		}
	}

	s.logger.WithField("count", len(kept)).Info("Collection loaded")
	return nil
}

// Add validates input, assigns an id and creation timestamp, persists the
// record and appends it to the collection.
func (s *Store) Add(input AddInput) (*models.MovieRecord, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if err := validateYear(input.Year); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record := &models.MovieRecord{
		ID:        uuid.NewString(),
		Title:     title,
		Year:      input.Year,
		PosterURL: strings.TrimSpace(input.PosterURL),
		AddedAt:   s.nextTimestamp(),
	}
	if len(input.Tags) > 0 {
		record.Tags = make([]string, len(input.Tags))
		copy(record.Tags, input.Tags)
	}

	if err := s.db.InsertMovie(record); err != nil {
		return nil, &PersistenceError{Op: "add", Err: err}
	}

	s.movies = append(s.movies, record)
	s.index[record.ID] = len(s.movies) - 1

	s.logger.WithFields(logrus.Fields{
		"id":    record.ID,
		"title": record.Title,
	}).Info("Movie added")

	return record.Clone(), nil
}

// Update applies a partial patch to an existing record
func (s *Store) Update(id string, patch Patch) (*models.MovieRecord, error) {
	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		patch.Title = &title
	}
	if err := validateYear(patch.Year); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	updated := s.movies[pos].Clone()
	if patch.Title != nil {
		updated.Title = *patch.Title
	}
	if patch.Year != nil {
		y := *patch.Year
		updated.Year = &y
	}
	if patch.PosterURL != nil {
		updated.PosterURL = strings.TrimSpace(*patch.PosterURL)
	}
	if patch.Tags != nil {
		updated.Tags = make([]string, len(*patch.Tags))
		copy(updated.Tags, *patch.Tags)
	}

	if err := s.db.UpdateMovie(updated); err != nil {
		return nil, &PersistenceError{Op: "update", Err: err}
	}

	s.movies[pos] = updated
	return updated.Clone(), nil
}

// Remove deletes a record by id and notifies removal observers
func (s *Store) Remove(id string) error {
	s.mu.Lock()

	pos, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return &NotFoundError{ID: id}
	}

	if err := s.db.DeleteMovie(id); err != nil {
		s.mu.Unlock()
		return &PersistenceError{Op: "remove", Err: err}
	}

	s.movies = append(s.movies[:pos], s.movies[pos+1:]...)
	s.rebuildIndex()
	observers := s.observersLocked()
	s.mu.Unlock()

	s.logger.WithField("id", id).Info("Movie removed")
	notify(observers, []string{id})
	return nil
}

// ToggleFavorite flips the favorite flag on a record
func (s *Store) ToggleFavorite(id string) (*models.MovieRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}

	updated := s.movies[pos].Clone()
	updated.Favorite = !updated.Favorite

	if err := s.db.UpdateMovie(updated); err != nil {
		return nil, &PersistenceError{Op: "toggle favorite", Err: err}
	}

	s.movies[pos] = updated
	return updated.Clone(), nil
}

// BulkSetFavorite sets the favorite flag on every id still present. Missing
// ids are skipped: a record may have been deleted between selection and
// action, and bulk operations tolerate that staleness.
func (s *Store) BulkSetFavorite(ids []string, value bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	affected := 0
	for _, id := range ids {
		pos, ok := s.index[id]
		if !ok {
			continue
		}
		if s.movies[pos].Favorite == value {
			affected++
			continue
		}

		updated := s.movies[pos].Clone()
		updated.Favorite = value
		if err := s.db.UpdateMovie(updated); err != nil {
			return affected, &PersistenceError{Op: "bulk favorite", Err: err}
		}
		s.movies[pos] = updated
		affected++
	}

	s.logger.WithFields(logrus.Fields{
		"requested": len(ids),
		"affected":  affected,
		"favorite":  value,
	}).Info("Bulk favorite applied")

	return affected, nil
}

// BulkRemove removes every id still present and returns the count removed
func (s *Store) BulkRemove(ids []string) (int, error) {
	s.mu.Lock()

	var removed []string
	for _, id := range ids {
		if _, ok := s.index[id]; !ok {
			continue
		}
		if err := s.db.DeleteMovie(id); err != nil {
			s.commitRemovalsLocked(removed)
			observers := s.observersLocked()
			s.mu.Unlock()
			notify(observers, removed)
			return len(removed), &PersistenceError{Op: "bulk remove", Err: err}
		}
		removed = append(removed, id)
	}

	s.commitRemovalsLocked(removed)
	observers := s.observersLocked()
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"requested": len(ids),
		"removed":   len(removed),
	}).Info("Bulk remove applied")

	notify(observers, removed)
	return len(removed), nil
}

// ImportMerge merges incoming records into the collection using the
// id-match, title-match, insert tie-break and persists the result in one
// transaction.
func (s *Store) ImportMerge(incoming []*models.MovieRecord) (transfer.MergeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, stats := transfer.Merge(s.movies, incoming)

	if err := s.db.ReplaceAllMovies(merged); err != nil {
		return transfer.MergeStats{}, &PersistenceError{Op: "import", Err: err}
	}

	s.movies = merged
	s.rebuildIndex()
	for _, m := range merged {
		if m.AddedAt > s.lastAdded {
			s.lastAdded = m.AddedAt
		}
	}

	s.logger.WithFields(logrus.Fields{
		"inserted": stats.Inserted,
		"replaced": stats.Replaced,
	}).Info("Import merged")

	return stats, nil
}

// ExportAll renders the full collection as an export document
func (s *Store) ExportAll() ([]byte, error) {
	return transfer.Export(s.All())
}

// All returns a defensive deep-copy snapshot in insertion order
func (s *Store) All() []*models.MovieRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneMovies(s.movies)
}

// Count returns the number of records in the collection
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}

// nextTimestamp assigns creation times that never move backwards, even when
// two adds land within the same millisecond.
func (s *Store) nextTimestamp() int64 {
	now := time.Now().UnixMilli()
	if now <= s.lastAdded {
		now = s.lastAdded + 1
	}
	s.lastAdded = now
	return now
}

func (s *Store) rebuildIndex() {
	s.index = make(map[string]int, len(s.movies))
	for i, m := range s.movies {
		s.index[m.ID] = i
	}
}

func (s *Store) commitRemovalsLocked(ids []string) {
	if len(ids) == 0 {
		return
	}
	gone := make(map[string]bool, len(ids))
	for _, id := range ids {
		gone[id] = true
	}
	kept := s.movies[:0]
	for _, m := range s.movies {
		if !gone[m.ID] {
			kept = append(kept, m)
		}
	}
	s.movies = kept
	s.rebuildIndex()
}

func (s *Store) observersLocked() []RemovalFunc {
	out := make([]RemovalFunc, len(s.onRemove))
	copy(out, s.onRemove)
	return out
}

func notify(observers []RemovalFunc, ids []string) {
	if len(ids) == 0 {
		return
	}
	for _, fn := range observers {
		fn(ids)
	}
}

func validateTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	return trimmed, nil
}

func validateYear(year *int) error {
	if year == nil {
		return nil
	}
	if *year < MinYear || *year > MaxYear {
		return &ValidationError{Field: "year", Reason: "must be between 1880 and 2100"}
	}
	return nil
}
