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

// FollowedShows is the remote-backed store of the shows the user follows.
// Like the watched collection, the remote list is authoritative and writes
// diff-sync against it.
type FollowedShows = store.Store[Unit, []trakt.FollowedItem, []models.EntryWithShow[models.FollowedEntry]]

// NewFollowedShows builds the followed shows store, stale after 6 hours.
func NewFollowedShows(db *database.Database, traktClient *trakt.Client, logger *logrus.Logger) *FollowedShows {
	fetcher := func(ctx context.Context, _ Unit) ([]trakt.FollowedItem, error) {
		return traktClient.FollowedShows(ctx)
	}

	source := store.SourceOfTruth[Unit, []trakt.FollowedItem, []models.EntryWithShow[models.FollowedEntry]]{
		Read: func(ctx context.Context, _ Unit) ([]models.EntryWithShow[models.FollowedEntry], bool, error) {
			entries, err := db.GetFollowedEntries()
			if err != nil {
				return nil, false, err
			}
			if len(entries) == 0 {
				return nil, false, nil
			}
			joined, err := joinShows(db, entries, func(entry *models.FollowedEntry) uint64 {
				return entry.ShowID
			})
			if err != nil {
				return nil, false, err
			}
			return joined, true, nil
		},
		Write: func(ctx context.Context, _ Unit, items []trakt.FollowedItem) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				type resolved struct {
					showID uint64
					item   trakt.FollowedItem
				}
				remote := make([]resolved, 0, len(items))
				for _, item := range items {
					showID, err := db.TxGetShowIDOrSavePlaceholder(tx, item.Show)
					if err != nil {
						return err
					}
					remote = append(remote, resolved{showID: showID, item: item})
				}

				current, err := db.TxGetFollowedEntries(tx)
				if err != nil {
					return err
				}
				currentRows := make([]models.FollowedEntry, len(current))
				for i, entry := range current {
					currentRows[i] = *entry
				}

				s := &syncer.Syncer[models.FollowedEntry, resolved, uint64]{
					LocalKey: func(entry models.FollowedEntry) (uint64, bool) {
						return entry.ShowID, true
					},
					RemoteKey: func(r resolved) (uint64, bool) {
						return r.showID, true
					},
					Map: func(r resolved, current *models.FollowedEntry) models.FollowedEntry {
						entry := models.FollowedEntry{
							ShowID:     r.showID,
							FollowedAt: r.item.FollowedAt,
						}
						if current != nil {
							entry.ID = current.ID
						}
						return entry
					},
					Upsert: func(tx *bbolt.Tx, entry *models.FollowedEntry) error {
						return database.TxUpsertByID(db, tx, entry.ID, entry)
					},
					Delete: func(tx *bbolt.Tx, entry models.FollowedEntry) error {
						return database.TxDeleteByID[models.FollowedEntry](db, tx, entry.ID)
					},
					Logger: logger,
				}
				if _, err := s.Sync(tx, currentRows, remote, true); err != nil {
					return err
				}
				return db.TxRecordRequestSuccess(tx, models.RequestFollowedShows, models.GlobalEntityID)
			})
			if err == nil {
				db.Notify(database.TopicFollowedShows, database.TopicShows)
			}
			return err
		},
		Delete: func(ctx context.Context, _ Unit) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				return database.TxDeleteAllEntries[models.FollowedEntry](db, tx)
			})
			if err == nil {
				db.Notify(database.TopicFollowedShows)
			}
			return err
		},
		DeleteAll: func(ctx context.Context) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				return database.TxDeleteAllEntries[models.FollowedEntry](db, tx)
			})
			if err == nil {
				db.Notify(database.TopicFollowedShows)
			}
			return err
		},
		Subscribe: func() (<-chan struct{}, func()) {
			return db.Subscribe(database.TopicFollowedShows)
		},
	}

	validator := func(ctx context.Context, _ Unit) (bool, error) {
		return db.IsRequestValid(models.RequestFollowedShows, models.GlobalEntityID, 6*time.Hour)
	}

	return store.New("followed_shows", fetcher, source, validator, logger)
}
