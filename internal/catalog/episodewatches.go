package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/services/trakt"
	"github.com/chrisbanes/tivi-sub008/internal/store"
	"github.com/chrisbanes/tivi-sub008/internal/syncer"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// EpisodeWatches is the remote-backed store of the signed-in user's watch
// history for one show, keyed by the local show ID. History entries are
// reconciled by their remote history ID.
type EpisodeWatches = store.Store[uint64, []trakt.EpisodeWatchItem, []*models.EpisodeWatch]

// NewEpisodeWatches builds the episode watch store, stale after 6 hours.
// History entries referencing episodes not yet stored locally are skipped, so
// callers should sync seasons before watches.
func NewEpisodeWatches(db *database.Database, traktClient *trakt.Client, logger *logrus.Logger) *EpisodeWatches {
	fetcher := func(ctx context.Context, showID uint64) ([]trakt.EpisodeWatchItem, error) {
		show, err := db.GetShow(showID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrShowNotFound, showID)
		}
		if err != nil {
			return nil, err
		}
		if show.TraktID == 0 {
			return nil, fmt.Errorf("%w: id %d", ErrShowNotLinked, showID)
		}
		return traktClient.ShowWatchHistory(ctx, show.TraktID)
	}

	source := store.SourceOfTruth[uint64, []trakt.EpisodeWatchItem, []*models.EpisodeWatch]{
		Read: func(ctx context.Context, showID uint64) ([]*models.EpisodeWatch, bool, error) {
			watches, err := db.GetEpisodeWatchesForShow(showID)
			if err != nil {
				return nil, false, err
			}
			return watches, len(watches) > 0, nil
		},
		Write: func(ctx context.Context, showID uint64, items []trakt.EpisodeWatchItem) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				if err := syncEpisodeWatches(db, tx, showID, items, logger); err != nil {
					return err
				}
				return db.TxRecordRequestSuccess(tx, models.RequestEpisodeWatches, showID)
			})
			if err == nil {
				db.Notify(database.TopicEpisodeWatches)
			}
			return err
		},
		Delete: func(ctx context.Context, showID uint64) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				if err := db.TxDeleteEpisodeWatchesForShow(tx, showID); err != nil {
					return err
				}
				return db.TxDeleteLastRequest(tx, models.RequestEpisodeWatches, showID)
			})
			if err == nil {
				db.Notify(database.TopicEpisodeWatches)
			}
			return err
		},
		DeleteAll: func(ctx context.Context) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				if err := db.TxDeleteAllEpisodeWatches(tx); err != nil {
					return err
				}
				return db.TxDeleteLastRequestsOfKind(tx, models.RequestEpisodeWatches)
			})
			if err == nil {
				db.Notify(database.TopicEpisodeWatches)
			}
			return err
		},
		Subscribe: func() (<-chan struct{}, func()) {
			return db.Subscribe(database.TopicEpisodeWatches)
		},
	}

	validator := func(ctx context.Context, showID uint64) (bool, error) {
		return db.IsRequestValid(models.RequestEpisodeWatches, showID, 6*time.Hour)
	}

	return store.New("episode_watches", fetcher, source, validator, logger)
}

// syncEpisodeWatches reconciles the remote history entries for a show against
// the local rows, keyed by the remote history ID.
func syncEpisodeWatches(db *database.Database, tx *bbolt.Tx, showID uint64, items []trakt.EpisodeWatchItem, logger *logrus.Logger) error {
	type resolvedWatch struct {
		historyID int64
		episodeID uint64
		watchedAt time.Time
	}

	resolved := make([]resolvedWatch, 0, len(items))
	skipped := 0
	for _, item := range items {
		episode, err := db.TxGetEpisodeByTraktID(tx, item.EpisodeTraktID)
		if errors.Is(err, database.ErrNotFound) {
			skipped++
			continue
		}
		if err != nil {
			return err
		}
		resolved = append(resolved, resolvedWatch{
			historyID: item.ID,
			episodeID: episode.ID,
			watchedAt: item.WatchedAt,
		})
	}
	if skipped > 0 {
		logger.WithFields(logrus.Fields{
			"show_id": showID,
			"skipped": skipped,
		}).Debug("Skipped history entries for unknown episodes")
	}

	current, err := db.TxGetEpisodeWatchesForShow(tx, showID)
	if err != nil {
		return err
	}
	currentRows := make([]models.EpisodeWatch, len(current))
	for i, watch := range current {
		currentRows[i] = *watch
	}

	watchSync := syncer.Syncer[models.EpisodeWatch, resolvedWatch, int64]{
		LocalKey:  func(w models.EpisodeWatch) (int64, bool) { return w.TraktID, w.TraktID != 0 },
		RemoteKey: func(w resolvedWatch) (int64, bool) { return w.historyID, w.historyID != 0 },
		Map: func(remote resolvedWatch, current *models.EpisodeWatch) models.EpisodeWatch {
			mapped := models.EpisodeWatch{
				EpisodeID: remote.episodeID,
				ShowID:    showID,
				TraktID:   remote.historyID,
				WatchedAt: remote.watchedAt,
			}
			if current != nil {
				mapped.ID = current.ID
			}
			return mapped
		},
		Upsert: func(tx *bbolt.Tx, row *models.EpisodeWatch) error {
			return database.TxUpsertByID(db, tx, row.ID, row)
		},
		Delete: func(tx *bbolt.Tx, row models.EpisodeWatch) error {
			return database.TxDeleteByID[models.EpisodeWatch](db, tx, row.ID)
		},
		Logger: logger.WithField("collection", "episode_watches"),
	}
	_, err = watchSync.Sync(tx, currentRows, resolved, true)
	return err
}
