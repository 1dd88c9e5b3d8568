package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/chrisbanes/tivi-sub008/internal/catalog"
	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// testCatalog builds a catalog over a temp database. The API clients are nil;
// tests only exercise paths served from local data.
func testCatalog(t *testing.T) (*database.Database, *catalog.Catalog) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, catalog.New(db, nil, nil, 20, testLogger())
}

func TestHealthEndpoint(t *testing.T) {
	handler := NewHealthHandler(testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestHealthRejectsPost(t *testing.T) {
	handler := NewHealthHandler(testLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusReportsCountsAndLedger(t *testing.T) {
	db, cat := testCatalog(t)

	err := db.Update(func(tx *bbolt.Tx) error {
		title := "Seeded"
		show := models.Show{TraktID: 1, Title: &title}
		if err := db.TxSaveShow(tx, &show); err != nil {
			return err
		}
		return db.TxRecordRequestSuccess(tx, models.RequestTrendingShows, models.GlobalEntityID)
	})
	require.NoError(t, err)

	handler := NewStatusHandler(db, cat, testLogger())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Counts.Shows)
	require.Len(t, body.LastFetches, 1)
	assert.Equal(t, models.RequestTrendingShows, body.LastFetches[0].Kind)
}

func TestTrendingServesLocalDataWhenFresh(t *testing.T) {
	db, cat := testCatalog(t)

	err := db.Update(func(tx *bbolt.Tx) error {
		title := "Fresh Show"
		show := models.Show{TraktID: 1, Title: &title}
		if err := db.TxSaveShow(tx, &show); err != nil {
			return err
		}
		entry := []*models.TrendingEntry{{ShowID: show.ID, Page: 0, PageOrder: 0, Watchers: 5}}
		if err := database.TxReplacePage(db, tx, 0, entry); err != nil {
			return err
		}
		return db.TxRecordRequestSuccess(tx, models.RequestTrendingShows, models.GlobalEntityID)
	})
	require.NoError(t, err)

	handler := NewCatalogHandler(cat, testLogger())
	rec := httptest.NewRecorder()
	handler.Trending(rec, httptest.NewRequest(http.MethodGet, "/api/shows/trending", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.EntryWithShow[models.TrendingEntry]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].Entry.Watchers)
	assert.Equal(t, "Fresh Show", *entries[0].Show.Title)
}

func TestShowRejectsInvalidID(t *testing.T) {
	_, cat := testCatalog(t)

	handler := NewCatalogHandler(cat, testLogger())
	req := httptest.NewRequest(http.MethodGet, "/api/shows/abc", nil)
	req.SetPathValue("id", "abc")

	rec := httptest.NewRecorder()
	handler.Show(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshUnknownCollection(t *testing.T) {
	_, cat := testCatalog(t)

	handler := NewCatalogHandler(cat, testLogger())
	req := httptest.NewRequest(http.MethodPost, "/api/refresh/bogus", nil)
	req.SetPathValue("collection", "bogus")

	rec := httptest.NewRecorder()
	handler.Refresh(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestClearLibrary(t *testing.T) {
	db, cat := testCatalog(t)

	err := db.Update(func(tx *bbolt.Tx) error {
		entry := []*models.TrendingEntry{{ShowID: 1, Page: 0, PageOrder: 0}}
		if err := database.TxReplacePage(db, tx, 0, entry); err != nil {
			return err
		}
		return db.TxRecordRequestSuccess(tx, models.RequestTrendingShows, models.GlobalEntityID)
	})
	require.NoError(t, err)

	handler := NewCatalogHandler(cat, testLogger())
	rec := httptest.NewRecorder()
	handler.ClearLibrary(rec, httptest.NewRequest(http.MethodPost, "/api/library/clear", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	count, err := database.CountEntries[models.TrendingEntry](db)
	require.NoError(t, err)
	assert.Zero(t, count)

	requested, err := db.HasBeenRequested(models.RequestTrendingShows, models.GlobalEntityID)
	require.NoError(t, err)
	assert.False(t, requested, "ledger must be wiped with the collections")
}
