package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) (*Database, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vault.db")
	db, err := NewDatabase(path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, path
}

func TestSchemaVersionWrittenOnFirstOpen(t *testing.T) {
	db, _ := openTestDB(t)

	version, err := db.StoredSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestMovieCRUD(t *testing.T) {
	db, _ := openTestDB(t)

	year := 1999
	movie := &MovieRecord{
		ID:      "m-1",
		Title:   "The Matrix",
		Year:    &year,
		Tags:    []string{"sci-fi", "action"},
		AddedAt: 1000,
	}
	require.NoError(t, db.InsertMovie(movie))

	got, err := db.GetMovieByID("m-1")
	require.NoError(t, err)
	assert.Equal(t, movie, got)

	got.Favorite = true
	require.NoError(t, db.UpdateMovie(got))

	again, err := db.GetMovieByID("m-1")
	require.NoError(t, err)
	assert.True(t, again.Favorite)

	require.NoError(t, db.DeleteMovie("m-1"))
	_, err = db.GetMovieByID("m-1")
	assert.True(t, ErrNotFound(err))
}

func TestReplaceAllMovies(t *testing.T) {
	db, _ := openTestDB(t)

	require.NoError(t, db.InsertMovie(&MovieRecord{ID: "old-1", Title: "Old", AddedAt: 1}))
	require.NoError(t, db.InsertMovie(&MovieRecord{ID: "old-2", Title: "Older", AddedAt: 2}))

	require.NoError(t, db.ReplaceAllMovies([]*MovieRecord{
		{ID: "new-1", Title: "New", AddedAt: 3},
	}))

	movies, err := db.GetAllMovies()
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "new-1", movies[0].ID)
}

func TestPrefsDefaultAndRoundTrip(t *testing.T) {
	db, _ := openTestDB(t)

	prefs, err := db.GetPrefs()
	require.NoError(t, err)
	assert.Equal(t, DefaultPrefs(), prefs, "unsaved prefs fall back to defaults")

	saved := &Prefs{Tab: TabFavorites, SortKey: SortRecentFirst, Query: "mat"}
	require.NoError(t, db.PutPrefs(saved))

	loaded, err := db.GetPrefs()
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestProfilesAndActiveMarker(t *testing.T) {
	db, _ := openTestDB(t)

	require.NoError(t, db.InsertProfile(&Profile{ID: "p-1", Name: "Hector"}))
	require.NoError(t, db.InsertProfile(&Profile{ID: "p-2", Name: "Allison", Kids: true}))

	profiles, err := db.GetAllProfiles()
	require.NoError(t, err)
	assert.Len(t, profiles, 2)

	active, err := db.GetActiveProfileID()
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, db.SetActiveProfileID("p-2"))
	active, err = db.GetActiveProfileID()
	require.NoError(t, err)
	assert.Equal(t, "p-2", active)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.db")
	db, err := NewDatabase(path)
	require.NoError(t, err)

	require.NoError(t, db.InsertMovie(&MovieRecord{ID: "m-1", Title: "Heat", AddedAt: 1}))
	require.NoError(t, db.Close())

	db2, err := NewDatabase(path)
	require.NoError(t, err)
	defer db2.Close()

	movies, err := db2.GetAllMovies()
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, "Heat", movies[0].Title)

	version, err := db2.StoredSchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}
