package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hectorm/xstreamify/internal/library"
	"github.com/hectorm/xstreamify/internal/models"
	"github.com/hectorm/xstreamify/internal/selection"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store *library.Store
	mux   *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "vault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := library.NewStore(db, logger)
	require.NoError(t, store.Load())

	selMgr := selection.NewManager(store)
	store.OnRemove(selMgr.DropRemoved)

	mux := http.NewServeMux()
	moviesHandler := NewMoviesHandler(store, logger)
	mux.HandleFunc("/api/movies", moviesHandler.ServeHTTP)
	mux.HandleFunc("/api/movies/", moviesHandler.ServeHTTP)
	mux.HandleFunc("/api/movies/bulk", NewBulkHandler(store, selMgr, logger).ServeHTTP)
	mux.HandleFunc("/api/movies/export", NewExportHandler(store, logger).ServeHTTP)
	mux.HandleFunc("/api/movies/import", NewImportHandler(store, logger).ServeHTTP)
	mux.HandleFunc("/api/prefs", NewPrefsHandler(db, logger).ServeHTTP)

	return &testEnv{store: store, mux: mux}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestAddToggleAndProjectFavorites(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{
		"title": "Interstellar",
		"year":  2014,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var interstellar models.MovieRecord
	decode(t, rec, &interstellar)

	rec = env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{
		"title": "Arrival",
		"year":  2016,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPatch, "/api/movies/"+interstellar.ID+"/favorite", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/movies?tab=favs&sort=az", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list ListResponse
	decode(t, rec, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Interstellar", list.Items[0].Title)
	assert.True(t, list.Items[0].Favorite)
}

func TestCreateValidationFailure(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{
		"title": "   ",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "title", errResp.Field)
	assert.Equal(t, 0, env.store.Count())
}

func TestUpdateAndRemoveNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/movies/missing", map[string]interface{}{
		"title": "Anything",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/movies/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var errResp ErrorResponse
	decode(t, rec, &errResp)
	assert.Equal(t, "missing", errResp.ID)
}

func TestListSortsAndFilters(t *testing.T) {
	env := newTestEnv(t)

	for _, title := range []string{"Whiplash", "arrival", "Heat"} {
		rec := env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{"title": title})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := env.do(t, http.MethodGet, "/api/movies?sort=az", nil)
	var list ListResponse
	decode(t, rec, &list)
	require.Equal(t, 3, list.Total)
	assert.Equal(t, "arrival", list.Items[0].Title)
	assert.Equal(t, "Whiplash", list.Items[2].Title)

	rec = env.do(t, http.MethodGet, "/api/movies?query=hea", nil)
	decode(t, rec, &list)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "Heat", list.Items[0].Title)
}

func TestBulkFavoriteIgnoresHiddenAndStaleIDs(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{"title": "Alpha"})
	var alpha models.MovieRecord
	decode(t, rec, &alpha)

	rec = env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{"title": "Beta"})
	var beta models.MovieRecord
	decode(t, rec, &beta)

	// Beta deleted out of band after the client rendered its list
	require.Equal(t, http.StatusOK, env.do(t, http.MethodDelete, "/api/movies/"+beta.ID, nil).Code)

	rec = env.do(t, http.MethodPost, "/api/movies/bulk", map[string]interface{}{
		"action": "favorite",
		"ids":    []string{alpha.ID, beta.ID},
		"view":   map[string]string{"tab": "all"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BulkResponse
	decode(t, rec, &resp)
	assert.Equal(t, 1, resp.Affected)
	assert.Equal(t, 1, resp.Ignored)

	all := env.store.All()
	require.Len(t, all, 1)
	assert.True(t, all[0].Favorite)
}

func TestBulkDeleteScopedToProjection(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{"title": "Keep Me"})
	var keep models.MovieRecord
	decode(t, rec, &keep)

	rec = env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{"title": "Matrix"})
	var matrix models.MovieRecord
	decode(t, rec, &matrix)

	// The caller's view only shows "Matrix"; "Keep Me" cannot be bulk-deleted
	rec = env.do(t, http.MethodPost, "/api/movies/bulk", map[string]interface{}{
		"action": "delete",
		"ids":    []string{keep.ID, matrix.ID},
		"view":   map[string]string{"tab": "all", "query": "matrix"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BulkResponse
	decode(t, rec, &resp)
	assert.Equal(t, 1, resp.Affected)
	assert.Equal(t, 1, resp.Ignored)

	all := env.store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "Keep Me", all[0].Title)
}

func TestBulkConcurrentRequestsKeepSelectionsApart(t *testing.T) {
	env := newTestEnv(t)

	var ids []string
	for i := 0; i < 20; i++ {
		rec := env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{
			"title": fmt.Sprintf("Movie %02d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		var m models.MovieRecord
		decode(t, rec, &m)
		ids = append(ids, m.ID)
	}

	// Each request favorites a disjoint pair; an interleaving that let one
	// request dispatch another's selection would skew the counts.
	results := make([]BulkResponse, 10)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, _ := json.Marshal(map[string]interface{}{
				"action": "favorite",
				"ids":    []string{ids[2*i], ids[2*i+1]},
				"view":   map[string]string{"tab": "all"},
			})
			req := httptest.NewRequest(http.MethodPost, "/api/movies/bulk", bytes.NewReader(body))
			rec := httptest.NewRecorder()
			env.mux.ServeHTTP(rec, req)
			if rec.Code == http.StatusOK {
				json.Unmarshal(rec.Body.Bytes(), &results[i])
			}
		}(i)
	}
	wg.Wait()

	for i, resp := range results {
		assert.Equal(t, 2, resp.Affected, "request %d", i)
		assert.Equal(t, 0, resp.Ignored, "request %d", i)
	}
	for _, m := range env.store.All() {
		assert.True(t, m.Favorite, m.Title)
	}
}

func TestBulkUnknownAction(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/movies/bulk", map[string]interface{}{
		"action": "explode",
		"ids":    []string{"x"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportThenExport(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/movies", map[string]interface{}{"title": "Dune"})
	require.Equal(t, http.StatusCreated, rec.Code)

	doc := `[{"title": "dune"}, {"title": "Tenet"}, {"title": ""}]`
	req := httptest.NewRequest(http.MethodPost, "/api/movies/import", bytes.NewBufferString(doc))
	importRec := httptest.NewRecorder()
	env.mux.ServeHTTP(importRec, req)
	require.Equal(t, http.StatusOK, importRec.Code)

	var resp ImportResponse
	decode(t, importRec, &resp)
	assert.Equal(t, 1, resp.Replaced, "case-insensitive title match folds into the existing record")
	assert.Equal(t, 1, resp.Inserted)
	assert.Equal(t, 1, resp.Skipped)

	exportRec := env.do(t, http.MethodGet, "/api/movies/export", nil)
	require.Equal(t, http.StatusOK, exportRec.Code)
	assert.Contains(t, exportRec.Header().Get("Content-Disposition"), "xstreamify-library-")

	var exported []*models.MovieRecord
	require.NoError(t, json.Unmarshal(exportRec.Body.Bytes(), &exported))
	assert.Len(t, exported, 2)
}

func TestImportRejectsNonArray(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/movies/import", bytes.NewBufferString(`{"title":"x"}`))
	rec := httptest.NewRecorder()
	env.mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, env.store.Count(), "whole import aborts, nothing applied")
}

func TestPrefsRoundTrip(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/prefs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var prefs models.Prefs
	decode(t, rec, &prefs)
	assert.Equal(t, models.TabAll, prefs.Tab)

	rec = env.do(t, http.MethodPut, "/api/prefs", map[string]string{
		"tab":     "favs",
		"sortKey": "new",
		"query":   "mat",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/prefs", nil)
	decode(t, rec, &prefs)
	assert.Equal(t, models.TabFavorites, prefs.Tab)
	assert.Equal(t, models.SortRecentFirst, prefs.SortKey)
	assert.Equal(t, "mat", prefs.Query)
}

func TestPrefsNormalizesUnknownValues(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPut, "/api/prefs", map[string]string{
		"tab":     "bogus",
		"sortKey": "bogus",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var prefs models.Prefs
	decode(t, rec, &prefs)
	assert.Equal(t, models.TabAll, prefs.Tab)
	assert.Equal(t, models.SortTitleAsc, prefs.SortKey)
}
