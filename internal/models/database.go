package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// SchemaVersion is the version of the persisted schema this build understands.
const SchemaVersion = 1

const (
	metaKey          = "schema"
	prefsKey         = "view"
	activeProfileKey = "active"
)

// schemaMeta is the versioned marker written once on first open.
type schemaMeta struct {
	Version int
}

// activeProfile records which viewer profile is currently selected.
type activeProfile struct {
	ID string
}

// Database wraps the bolthold store. It is the only durable home of the
// collection; callers hold no independent persisted copy.
type Database struct {
	store *bolthold.Store
}

// NewDatabase opens (or creates) the vault database and verifies the schema
// version. A store written by a newer build is refused rather than half-read.
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &Database{store: store}
	if err := db.ensureSchema(); err != nil {
		store.Close()
		return nil, err
	}

	return db, nil
}

func (db *Database) ensureSchema() error {
	var meta schemaMeta
	err := db.store.Get(metaKey, &meta)
	if err == bolthold.ErrNotFound {
		return db.store.Insert(metaKey, &schemaMeta{Version: SchemaVersion})
	}
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if meta.Version > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", meta.Version, SchemaVersion)
	}
	return nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// StoredSchemaVersion reports the version marker currently on disk.
func (db *Database) StoredSchemaVersion() (int, error) {
	var meta schemaMeta
	if err := db.store.Get(metaKey, &meta); err != nil {
		return 0, err
	}
	return meta.Version, nil
}

// Movie operations

// InsertMovie persists a new movie record
func (db *Database) InsertMovie(movie *MovieRecord) error {
	return db.store.Insert(movie.ID, movie)
}

// UpdateMovie persists changes to an existing movie record
func (db *Database) UpdateMovie(movie *MovieRecord) error {
	return db.store.Update(movie.ID, movie)
}

// GetMovieByID retrieves a movie record by ID
func (db *Database) GetMovieByID(id string) (*MovieRecord, error) {
	var movie MovieRecord
	err := db.store.Get(id, &movie)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetAllMovies retrieves every movie record. Order is not guaranteed; the
// library store re-establishes insertion order from AddedAt.
func (db *Database) GetAllMovies() ([]*MovieRecord, error) {
	var movies []*MovieRecord
	err := db.store.Find(&movies, nil)
	return movies, err
}

// DeleteMovie deletes a movie record by ID
func (db *Database) DeleteMovie(id string) error {
	return db.store.Delete(id, &MovieRecord{})
}

// ReplaceAllMovies swaps the entire persisted collection in one transaction,
// so a failed import never leaves a mix of old and new records.
func (db *Database) ReplaceAllMovies(movies []*MovieRecord) error {
	return db.store.Bolt().Update(func(tx *bbolt.Tx) error {
		if err := db.store.TxDeleteMatching(tx, &MovieRecord{}, nil); err != nil {
			return err
		}
		for _, movie := range movies {
			if err := db.store.TxInsert(tx, movie.ID, movie); err != nil {
				return err
			}
		}
		return nil
	})
}

// Preference operations

// GetPrefs retrieves the persisted view preferences, or defaults when none
// have been saved yet.
func (db *Database) GetPrefs() (*Prefs, error) {
	var prefs Prefs
	err := db.store.Get(prefsKey, &prefs)
	if err == bolthold.ErrNotFound {
		return DefaultPrefs(), nil
	}
	if err != nil {
		return nil, err
	}
	return &prefs, nil
}

// PutPrefs persists the view preferences
func (db *Database) PutPrefs(prefs *Prefs) error {
	return db.store.Upsert(prefsKey, prefs)
}

// Profile operations

// InsertProfile persists a new viewer profile
func (db *Database) InsertProfile(profile *Profile) error {
	return db.store.Insert(profile.ID, profile)
}

// UpdateProfile persists changes to an existing profile
func (db *Database) UpdateProfile(profile *Profile) error {
	return db.store.Update(profile.ID, profile)
}

// GetProfileByID retrieves a profile by ID
func (db *Database) GetProfileByID(id string) (*Profile, error) {
	var profile Profile
	err := db.store.Get(id, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetAllProfiles retrieves every viewer profile
func (db *Database) GetAllProfiles() ([]*Profile, error) {
	var profiles []*Profile
	err := db.store.Find(&profiles, nil)
	return profiles, err
}

// DeleteProfile deletes a profile by ID
func (db *Database) DeleteProfile(id string) error {
	return db.store.Delete(id, &Profile{})
}

// GetActiveProfileID returns the selected profile id, or empty when none.
func (db *Database) GetActiveProfileID() (string, error) {
	var active activeProfile
	err := db.store.Get(activeProfileKey, &active)
	if err == bolthold.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return active.ID, nil
}

// SetActiveProfileID persists the selected profile id. Empty clears it.
func (db *Database) SetActiveProfileID(id string) error {
	return db.store.Upsert(activeProfileKey, &activeProfile{ID: id})
}

// ErrNotFound reports whether err is the store's missing-record error.
func ErrNotFound(err error) bool {
	return err == bolthold.ErrNotFound
}
