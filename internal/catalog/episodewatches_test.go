package catalog

import (
	"testing"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/services/trakt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func seedEpisodes(t *testing.T, db *database.Database, showID uint64, traktIDs ...int64) {
	t.Helper()
	err := db.Update(func(tx *bbolt.Tx) error {
		season := models.Season{ShowID: showID, TraktID: 10, Number: 1}
		if err := database.TxUpsertByID(db, tx, 0, &season); err != nil {
			return err
		}
		for i, id := range traktIDs {
			episode := models.Episode{SeasonID: season.ID, TraktID: id, Number: i + 1}
			if err := database.TxUpsertByID(db, tx, 0, &episode); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func runWatchSync(t *testing.T, db *database.Database, showID uint64, items []trakt.EpisodeWatchItem) {
	t.Helper()
	err := db.Update(func(tx *bbolt.Tx) error {
		return syncEpisodeWatches(db, tx, showID, items, testLogger())
	})
	require.NoError(t, err)
}

func TestSyncEpisodeWatchesReconciles(t *testing.T) {
	db := openTestDB(t)
	showID := seedShow(t, db, 100)
	seedEpisodes(t, db, showID, 101, 102, 103)

	now := time.Now().Truncate(time.Second)
	runWatchSync(t, db, showID, []trakt.EpisodeWatchItem{
		{ID: 1, EpisodeTraktID: 101, WatchedAt: now.Add(-3 * time.Hour)},
		{ID: 2, EpisodeTraktID: 102, WatchedAt: now.Add(-2 * time.Hour)},
		{ID: 3, EpisodeTraktID: 103, WatchedAt: now.Add(-time.Hour)},
	})

	watches, err := db.GetEpisodeWatchesForShow(showID)
	require.NoError(t, err)
	require.Len(t, watches, 3)

	// History entry 1 is gone remotely, entry 4 is new.
	runWatchSync(t, db, showID, []trakt.EpisodeWatchItem{
		{ID: 2, EpisodeTraktID: 102, WatchedAt: now.Add(-2 * time.Hour)},
		{ID: 3, EpisodeTraktID: 103, WatchedAt: now.Add(-time.Hour)},
		{ID: 4, EpisodeTraktID: 101, WatchedAt: now},
	})

	watches, err = db.GetEpisodeWatchesForShow(showID)
	require.NoError(t, err)
	require.Len(t, watches, 3)

	ids := make(map[int64]bool)
	for _, w := range watches {
		ids[w.TraktID] = true
	}
	assert.False(t, ids[1])
	assert.True(t, ids[2])
	assert.True(t, ids[3])
	assert.True(t, ids[4])
}

func TestSyncEpisodeWatchesSkipsUnknownEpisodes(t *testing.T) {
	db := openTestDB(t)
	showID := seedShow(t, db, 100)
	seedEpisodes(t, db, showID, 101)

	runWatchSync(t, db, showID, []trakt.EpisodeWatchItem{
		{ID: 1, EpisodeTraktID: 101, WatchedAt: time.Now()},
		{ID: 2, EpisodeTraktID: 999, WatchedAt: time.Now()},
	})

	watches, err := db.GetEpisodeWatchesForShow(showID)
	require.NoError(t, err)
	require.Len(t, watches, 1)
	assert.EqualValues(t, 1, watches[0].TraktID)
}

func TestSyncEpisodeWatchesIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	showID := seedShow(t, db, 100)
	seedEpisodes(t, db, showID, 101)

	items := []trakt.EpisodeWatchItem{
		{ID: 1, EpisodeTraktID: 101, WatchedAt: time.Now().Truncate(time.Second)},
	}
	runWatchSync(t, db, showID, items)

	before, err := db.GetEpisodeWatchesForShow(showID)
	require.NoError(t, err)
	require.Len(t, before, 1)

	runWatchSync(t, db, showID, items)

	after, err := db.GetEpisodeWatchesForShow(showID)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)
}
