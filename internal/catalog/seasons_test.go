package catalog

import (
	"testing"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/services/trakt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

func seedShow(t *testing.T, db *database.Database, traktID int64) uint64 {
	t.Helper()
	show := models.Show{TraktID: traktID, Title: str("Seeded Show")}
	err := db.Update(func(tx *bbolt.Tx) error {
		return db.TxSaveShow(tx, &show)
	})
	require.NoError(t, err)
	return show.ID
}

func runSeasonSync(t *testing.T, db *database.Database, showID uint64, remote []trakt.SeasonWithEpisodes) {
	t.Helper()
	err := db.Update(func(tx *bbolt.Tx) error {
		return syncSeasons(db, tx, showID, remote, testLogger())
	})
	require.NoError(t, err)
}

func TestSyncSeasonsInsertsSeasonsAndEpisodes(t *testing.T) {
	db := openTestDB(t)
	showID := seedShow(t, db, 100)

	runSeasonSync(t, db, showID, []trakt.SeasonWithEpisodes{
		{
			Season: models.Season{TraktID: 10, Number: 1, EpisodeCount: 2},
			Episodes: []models.Episode{
				{TraktID: 101, Number: 1, Title: str("Pilot")},
				{TraktID: 102, Number: 2},
			},
		},
		{
			Season:   models.Season{TraktID: 20, Number: 2},
			Episodes: []models.Episode{{TraktID: 201, Number: 1}},
		},
	})

	seasons, err := db.GetSeasonsForShow(showID)
	require.NoError(t, err)
	require.Len(t, seasons, 2)
	assert.Equal(t, 1, seasons[0].Number)

	episodes, err := db.GetEpisodesForSeason(seasons[0].ID)
	require.NoError(t, err)
	require.Len(t, episodes, 2)
	assert.Equal(t, "Pilot", *episodes[0].Title)
}

func TestSyncSeasonsPreservesSurrogateIDs(t *testing.T) {
	db := openTestDB(t)
	showID := seedShow(t, db, 100)

	remote := []trakt.SeasonWithEpisodes{
		{
			Season:   models.Season{TraktID: 10, Number: 1},
			Episodes: []models.Episode{{TraktID: 101, Number: 1, Title: str("Old")}},
		},
	}
	runSeasonSync(t, db, showID, remote)

	before, err := db.GetSeasonsForShow(showID)
	require.NoError(t, err)
	require.Len(t, before, 1)
	episodesBefore, err := db.GetEpisodesForSeason(before[0].ID)
	require.NoError(t, err)
	require.Len(t, episodesBefore, 1)

	// Same remote keys with changed metadata must update in place.
	remote[0].Episodes[0].Title = str("New")
	runSeasonSync(t, db, showID, remote)

	after, err := db.GetSeasonsForShow(showID)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, before[0].ID, after[0].ID)

	episodesAfter, err := db.GetEpisodesForSeason(after[0].ID)
	require.NoError(t, err)
	require.Len(t, episodesAfter, 1)
	assert.Equal(t, episodesBefore[0].ID, episodesAfter[0].ID)
	assert.Equal(t, "New", *episodesAfter[0].Title)
}

func TestSyncSeasonsRemovesVanishedSeasonWithEpisodes(t *testing.T) {
	db := openTestDB(t)
	showID := seedShow(t, db, 100)

	runSeasonSync(t, db, showID, []trakt.SeasonWithEpisodes{
		{
			Season:   models.Season{TraktID: 10, Number: 1},
			Episodes: []models.Episode{{TraktID: 101, Number: 1}},
		},
		{
			Season:   models.Season{TraktID: 20, Number: 2},
			Episodes: []models.Episode{{TraktID: 201, Number: 1}},
		},
	})

	// Season 2 disappears remotely.
	runSeasonSync(t, db, showID, []trakt.SeasonWithEpisodes{
		{
			Season:   models.Season{TraktID: 10, Number: 1},
			Episodes: []models.Episode{{TraktID: 101, Number: 1}},
		},
	})

	seasons, err := db.GetSeasonsForShow(showID)
	require.NoError(t, err)
	require.Len(t, seasons, 1)
	assert.EqualValues(t, 10, seasons[0].TraktID)

	episodeCount, err := database.CountEntries[models.Episode](db)
	require.NoError(t, err)
	assert.Equal(t, 1, episodeCount, "episodes of the vanished season must be gone")
}
