package catalog

import (
	"context"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/services/trakt"
	"github.com/chrisbanes/tivi-sub008/internal/store"
	"github.com/chrisbanes/tivi-sub008/internal/syncer"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// Unit is the key type for singleton (unpaginated, unkeyed) collections.
type Unit struct{}

// WatchedShows is the remote-backed store of the user's watched collection.
// The remote list is authoritative, so writes diff-sync rather than replace:
// rows keep their local IDs across refreshes.
type WatchedShows = store.Store[Unit, []trakt.WatchedItem, []models.EntryWithShow[models.WatchedEntry]]

// NewWatchedShows builds the watched shows store, stale after 6 hours.
func NewWatchedShows(db *database.Database, traktClient *trakt.Client, logger *logrus.Logger) *WatchedShows {
	fetcher := func(ctx context.Context, _ Unit) ([]trakt.WatchedItem, error) {
		return traktClient.WatchedShows(ctx)
	}

	source := store.SourceOfTruth[Unit, []trakt.WatchedItem, []models.EntryWithShow[models.WatchedEntry]]{
		Read: func(ctx context.Context, _ Unit) ([]models.EntryWithShow[models.WatchedEntry], bool, error) {
			entries, err := db.GetWatchedEntries()
			if err != nil {
				return nil, false, err
			}
			if len(entries) == 0 {
				return nil, false, nil
			}
			joined, err := joinShows(db, entries, func(entry *models.WatchedEntry) uint64 {
				return entry.ShowID
			})
			if err != nil {
				return nil, false, err
			}
			return joined, true, nil
		},
		Write: func(ctx context.Context, _ Unit, items []trakt.WatchedItem) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				// Resolve shows first so the syncer only deals with entries.
				type resolved struct {
					showID uint64
					item   trakt.WatchedItem
				}
				remote := make([]resolved, 0, len(items))
				for _, item := range items {
					showID, err := db.TxGetShowIDOrSavePlaceholder(tx, item.Show)
					if err != nil {
						return err
					}
					remote = append(remote, resolved{showID: showID, item: item})
				}

				current, err := db.TxGetWatchedEntries(tx)
				if err != nil {
					return err
				}
				currentRows := make([]models.WatchedEntry, len(current))
				for i, entry := range current {
					currentRows[i] = *entry
				}

				s := &syncer.Syncer[models.WatchedEntry, resolved, uint64]{
					LocalKey: func(entry models.WatchedEntry) (uint64, bool) {
						return entry.ShowID, true
					},
					RemoteKey: func(r resolved) (uint64, bool) {
						return r.showID, true
					},
					Map: func(r resolved, current *models.WatchedEntry) models.WatchedEntry {
						entry := models.WatchedEntry{
							ShowID:      r.showID,
							LastWatched: r.item.LastWatched,
							Plays:       r.item.Plays,
						}
						if current != nil {
							entry.ID = current.ID
						}
						return entry
					},
					Upsert: func(tx *bbolt.Tx, entry *models.WatchedEntry) error {
						return database.TxUpsertByID(db, tx, entry.ID, entry)
					},
					Delete: func(tx *bbolt.Tx, entry models.WatchedEntry) error {
						return database.TxDeleteByID[models.WatchedEntry](db, tx, entry.ID)
					},
					Logger: logger,
				}
				if _, err := s.Sync(tx, currentRows, remote, true); err != nil {
					return err
				}
				return db.TxRecordRequestSuccess(tx, models.RequestWatchedShows, models.GlobalEntityID)
			})
			if err == nil {
				db.Notify(database.TopicWatchedShows, database.TopicShows)
			}
			return err
		},
		Delete: func(ctx context.Context, _ Unit) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				return database.TxDeleteAllEntries[models.WatchedEntry](db, tx)
			})
			if err == nil {
				db.Notify(database.TopicWatchedShows)
			}
			return err
		},
		DeleteAll: func(ctx context.Context) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				return database.TxDeleteAllEntries[models.WatchedEntry](db, tx)
			})
			if err == nil {
				db.Notify(database.TopicWatchedShows)
			}
			return err
		},
		Subscribe: func() (<-chan struct{}, func()) {
			return db.Subscribe(database.TopicWatchedShows)
		},
	}

	validator := func(ctx context.Context, _ Unit) (bool, error) {
		return db.IsRequestValid(models.RequestWatchedShows, models.GlobalEntityID, 6*time.Hour)
	}

	return store.New("watched_shows", fetcher, source, validator, logger)
}
