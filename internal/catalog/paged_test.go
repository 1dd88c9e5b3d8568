package catalog

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func str(s string) *string { return &s }

// fakeTrendingFeed serves canned pages and counts fetches.
type fakeTrendingFeed struct {
	pages      map[int][]models.Show
	fetchCount int32
}

func (f *fakeTrendingFeed) trendingStore(db *database.Database) *TrendingShowsLike {
	return newPagedStore(db, DefaultPageSize, testLogger(), pagedConfig[models.Show, models.TrendingEntry]{
		name:      "trending_test",
		kind:      models.RequestTrendingShows,
		topic:     database.TopicTrendingShows,
		threshold: time.Hour,
		fetch: func(ctx context.Context, page, pageSize int) ([]models.Show, error) {
			atomic.AddInt32(&f.fetchCount, 1)
			return f.pages[page], nil
		},
		itemShow: func(item models.Show) models.Show { return item },
		entry: func(item models.Show, showID uint64, page, order int) *models.TrendingEntry {
			return &models.TrendingEntry{ShowID: showID, Page: page, PageOrder: order}
		},
		entryShowID: func(e *models.TrendingEntry) uint64 { return e.ShowID },
	})
}

// TrendingShowsLike matches the store shape the trending collection uses,
// with the fetcher swapped for a canned feed.
type TrendingShowsLike = store.Store[int, []models.Show, []models.EntryWithShow[models.TrendingEntry]]

func TestPagedStoreGetFetchesAndJoinsShows(t *testing.T) {
	db := openTestDB(t)
	feed := &fakeTrendingFeed{pages: map[int][]models.Show{
		0: {
			{TraktID: 1, Title: str("First")},
			{TraktID: 2, Title: str("Second")},
		},
	}}
	store := feed.trendingStore(db)

	entries, err := store.Get(context.Background(), 0, false)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "First", *entries[0].Show.Title)
	assert.Equal(t, "Second", *entries[1].Show.Title)
	assert.EqualValues(t, 1, atomic.LoadInt32(&feed.fetchCount))

	// A fresh ledger entry means the second read is served locally.
	_, err = store.Get(context.Background(), 0, false)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&feed.fetchCount))
}

func TestPagedStoreWriteRecordsLedger(t *testing.T) {
	db := openTestDB(t)
	feed := &fakeTrendingFeed{pages: map[int][]models.Show{
		0: {{TraktID: 1, Title: str("First")}},
	}}
	store := feed.trendingStore(db)

	require.NoError(t, store.Refresh(context.Background(), 0))

	valid, err := db.IsRequestValid(models.RequestTrendingShows, models.GlobalEntityID, time.Hour)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestPagedStorePageZeroReplacesWholeCollection(t *testing.T) {
	db := openTestDB(t)
	feed := &fakeTrendingFeed{pages: map[int][]models.Show{
		0: {
			{TraktID: 1, Title: str("A")},
			{TraktID: 2, Title: str("B")},
		},
		1: {
			{TraktID: 3, Title: str("C")},
			{TraktID: 4, Title: str("D")},
		},
	}}
	store := feed.trendingStore(db)

	require.NoError(t, store.Refresh(context.Background(), 0))
	require.NoError(t, store.Refresh(context.Background(), 1))

	count, err := database.CountEntries[models.TrendingEntry](db)
	require.NoError(t, err)
	require.Equal(t, 4, count)

	// A shrunken page 0 replaces everything, including the old page 1.
	feed.pages[0] = []models.Show{{TraktID: 9, Title: str("Only")}}
	require.NoError(t, store.Refresh(context.Background(), 0))

	count, err = database.CountEntries[models.TrendingEntry](db)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPagedStoreReusesExistingShowRows(t *testing.T) {
	db := openTestDB(t)
	feed := &fakeTrendingFeed{pages: map[int][]models.Show{
		0: {{TraktID: 1, Title: str("Same Show")}},
	}}
	store := feed.trendingStore(db)

	require.NoError(t, store.Refresh(context.Background(), 0))
	require.NoError(t, store.Refresh(context.Background(), 0))

	count, err := db.CountShows()
	require.NoError(t, err)
	assert.Equal(t, 1, count, "repeated refreshes must not duplicate placeholder shows")
}

func TestPagedStoreClearAllEmptiesCollection(t *testing.T) {
	db := openTestDB(t)
	feed := &fakeTrendingFeed{pages: map[int][]models.Show{
		0: {{TraktID: 1, Title: str("A")}},
	}}
	store := feed.trendingStore(db)

	require.NoError(t, store.Refresh(context.Background(), 0))
	require.NoError(t, store.ClearAll(context.Background()))

	count, err := database.CountEntries[models.TrendingEntry](db)
	require.NoError(t, err)
	assert.Zero(t, count)
}
