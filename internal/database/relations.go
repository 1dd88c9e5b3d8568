package database

import (
	"fmt"

	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Related shows

// GetRelatedEntries returns the related-show entries for a show, in provider
// order.
func (db *Database) GetRelatedEntries(showID uint64) ([]*models.RelatedEntry, error) {
	var entries []*models.RelatedEntry
	err := db.store.Find(&entries, bolthold.Where("ShowID").Eq(showID).SortBy("OrderIndex"))
	return entries, err
}

// TxReplaceRelatedEntries replaces the related entries for a show.
func (db *Database) TxReplaceRelatedEntries(tx *bbolt.Tx, showID uint64, entries []*models.RelatedEntry) error {
	if err := db.store.TxDeleteMatching(tx, &models.RelatedEntry{}, bolthold.Where("ShowID").Eq(showID)); err != nil {
		return fmt.Errorf("failed to clear related entries: %w", err)
	}
	for _, entry := range entries {
		if err := db.store.TxInsert(tx, bolthold.NextSequence(), entry); err != nil {
			return fmt.Errorf("failed to insert related entry: %w", err)
		}
	}
	return nil
}

// DeleteRelatedEntries removes the related entries for a show.
func (db *Database) DeleteRelatedEntries(showID uint64) error {
	return db.Update(func(tx *bbolt.Tx) error {
		return db.store.TxDeleteMatching(tx, &models.RelatedEntry{}, bolthold.Where("ShowID").Eq(showID))
	})
}

// Watched shows

// GetWatchedEntries returns all watched-show entries, most recent first.
func (db *Database) GetWatchedEntries() ([]*models.WatchedEntry, error) {
	var entries []*models.WatchedEntry
	err := db.store.Find(&entries, (&bolthold.Query{}).SortBy("LastWatched").Reverse())
	return entries, err
}

// TxGetWatchedEntries returns all watched-show entries inside a transaction.
func (db *Database) TxGetWatchedEntries(tx *bbolt.Tx) ([]*models.WatchedEntry, error) {
	var entries []*models.WatchedEntry
	err := db.store.TxFind(tx, &entries, nil)
	return entries, err
}

// Followed shows

// GetFollowedEntries returns all followed-show entries.
func (db *Database) GetFollowedEntries() ([]*models.FollowedEntry, error) {
	var entries []*models.FollowedEntry
	err := db.store.Find(&entries, (&bolthold.Query{}).SortBy("FollowedAt"))
	return entries, err
}

// TxGetFollowedEntries returns all followed-show entries inside a transaction.
func (db *Database) TxGetFollowedEntries(tx *bbolt.Tx) ([]*models.FollowedEntry, error) {
	var entries []*models.FollowedEntry
	err := db.store.TxFind(tx, &entries, nil)
	return entries, err
}

// Show images

// GetShowImages returns the stored artwork for a show, best rated first.
func (db *Database) GetShowImages(showID uint64) ([]*models.ShowImage, error) {
	var images []*models.ShowImage
	err := db.store.Find(&images, bolthold.Where("ShowID").Eq(showID).SortBy("Rating").Reverse())
	return images, err
}

// TxReplaceShowImages replaces the stored artwork for a show.
func (db *Database) TxReplaceShowImages(tx *bbolt.Tx, showID uint64, images []*models.ShowImage) error {
	if err := db.store.TxDeleteMatching(tx, &models.ShowImage{}, bolthold.Where("ShowID").Eq(showID)); err != nil {
		return fmt.Errorf("failed to clear show images: %w", err)
	}
	for _, image := range images {
		if err := db.store.TxInsert(tx, bolthold.NextSequence(), image); err != nil {
			return fmt.Errorf("failed to insert show image: %w", err)
		}
	}
	return nil
}

// TxDeleteAllShowImages removes every stored show image.
func (db *Database) TxDeleteAllShowImages(tx *bbolt.Tx) error {
	return db.store.TxDeleteMatching(tx, &models.ShowImage{}, nil)
}

// Seasons and episodes

// GetSeasonsForShow returns the seasons of a show in season order.
func (db *Database) GetSeasonsForShow(showID uint64) ([]*models.Season, error) {
	var seasons []*models.Season
	err := db.store.Find(&seasons, bolthold.Where("ShowID").Eq(showID).SortBy("Number"))
	return seasons, err
}

// TxGetSeasonsForShow returns the seasons of a show inside a transaction.
func (db *Database) TxGetSeasonsForShow(tx *bbolt.Tx, showID uint64) ([]*models.Season, error) {
	var seasons []*models.Season
	err := db.store.TxFind(tx, &seasons, bolthold.Where("ShowID").Eq(showID).SortBy("Number"))
	return seasons, err
}

// GetEpisodesForSeason returns the episodes of a season in episode order.
func (db *Database) GetEpisodesForSeason(seasonID uint64) ([]*models.Episode, error) {
	var episodes []*models.Episode
	err := db.store.Find(&episodes, bolthold.Where("SeasonID").Eq(seasonID).SortBy("Number"))
	return episodes, err
}

// TxGetEpisodesForSeason returns the episodes of a season inside a
// transaction.
func (db *Database) TxGetEpisodesForSeason(tx *bbolt.Tx, seasonID uint64) ([]*models.Episode, error) {
	var episodes []*models.Episode
	err := db.store.TxFind(tx, &episodes, bolthold.Where("SeasonID").Eq(seasonID).SortBy("Number"))
	return episodes, err
}

// TxDeleteEpisodesForSeason removes every episode of a season.
func (db *Database) TxDeleteEpisodesForSeason(tx *bbolt.Tx, seasonID uint64) error {
	return db.store.TxDeleteMatching(tx, &models.Episode{}, bolthold.Where("SeasonID").Eq(seasonID))
}

// TxDeleteSeasonsForShow removes every season of a show together with the
// episodes they contain.
func (db *Database) TxDeleteSeasonsForShow(tx *bbolt.Tx, showID uint64) error {
	seasons, err := db.TxGetSeasonsForShow(tx, showID)
	if err != nil {
		return err
	}
	for _, season := range seasons {
		if err := db.TxDeleteEpisodesForSeason(tx, season.ID); err != nil {
			return err
		}
	}
	return db.store.TxDeleteMatching(tx, &models.Season{}, bolthold.Where("ShowID").Eq(showID))
}

// TxDeleteAllSeasons removes every season and episode row.
func (db *Database) TxDeleteAllSeasons(tx *bbolt.Tx) error {
	if err := db.store.TxDeleteMatching(tx, &models.Episode{}, nil); err != nil {
		return err
	}
	return db.store.TxDeleteMatching(tx, &models.Season{}, nil)
}

// TxGetEpisodeByTraktID resolves an episode by its remote ID inside a
// transaction.
func (db *Database) TxGetEpisodeByTraktID(tx *bbolt.Tx, traktID int64) (*models.Episode, error) {
	var episode models.Episode
	if err := db.store.TxFindOne(tx, &episode, bolthold.Where("TraktID").Eq(traktID)); err != nil {
		return nil, err
	}
	return &episode, nil
}

// Episode watches

// GetEpisodeWatchesForShow returns the episode watches recorded for a show.
func (db *Database) GetEpisodeWatchesForShow(showID uint64) ([]*models.EpisodeWatch, error) {
	var watches []*models.EpisodeWatch
	err := db.store.Find(&watches, bolthold.Where("ShowID").Eq(showID).SortBy("WatchedAt"))
	return watches, err
}

// TxGetEpisodeWatchesForShow returns the episode watches for a show inside a
// transaction.
func (db *Database) TxGetEpisodeWatchesForShow(tx *bbolt.Tx, showID uint64) ([]*models.EpisodeWatch, error) {
	var watches []*models.EpisodeWatch
	err := db.store.TxFind(tx, &watches, bolthold.Where("ShowID").Eq(showID))
	return watches, err
}

// TxDeleteEpisodeWatchesForShow removes the episode watches for a show.
func (db *Database) TxDeleteEpisodeWatchesForShow(tx *bbolt.Tx, showID uint64) error {
	return db.store.TxDeleteMatching(tx, &models.EpisodeWatch{}, bolthold.Where("ShowID").Eq(showID))
}

// TxDeleteAllEpisodeWatches removes every episode watch row.
func (db *Database) TxDeleteAllEpisodeWatches(tx *bbolt.Tx) error {
	return db.store.TxDeleteMatching(tx, &models.EpisodeWatch{}, nil)
}

// Generic upsert/delete used by diff syncers.

// TxUpsertByID inserts entity when id is zero, otherwise updates the existing
// row. On insert the entity's key field is populated by the store.
func TxUpsertByID[T any](db *Database, tx *bbolt.Tx, id uint64, entity *T) error {
	if id == 0 {
		return db.store.TxInsert(tx, bolthold.NextSequence(), entity)
	}
	return db.store.TxUpdate(tx, id, entity)
}

// TxDeleteByID deletes the row with the given key.
func TxDeleteByID[T any](db *Database, tx *bbolt.Tx, id uint64) error {
	return db.store.TxDelete(tx, id, new(T))
}
