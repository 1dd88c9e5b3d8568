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

// SeasonsStore is the remote-backed store of a show's seasons and episodes,
// keyed by the local show ID.
type SeasonsStore = store.Store[uint64, []trakt.SeasonWithEpisodes, []models.SeasonWithEpisodes]

// NewSeasonsStore builds the seasons store, stale after 14 days. Seasons and
// episodes are reconciled against the remote list rather than replaced, so
// local surrogate IDs survive a refresh.
func NewSeasonsStore(db *database.Database, traktClient *trakt.Client, logger *logrus.Logger) *SeasonsStore {
	fetcher := func(ctx context.Context, showID uint64) ([]trakt.SeasonWithEpisodes, error) {
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
		return traktClient.ShowSeasons(ctx, show.TraktID)
	}

	source := store.SourceOfTruth[uint64, []trakt.SeasonWithEpisodes, []models.SeasonWithEpisodes]{
		Read: func(ctx context.Context, showID uint64) ([]models.SeasonWithEpisodes, bool, error) {
			seasons, err := db.GetSeasonsForShow(showID)
			if err != nil {
				return nil, false, err
			}
			result := make([]models.SeasonWithEpisodes, 0, len(seasons))
			for _, season := range seasons {
				episodes, err := db.GetEpisodesForSeason(season.ID)
				if err != nil {
					return nil, false, err
				}
				entry := models.SeasonWithEpisodes{Season: *season}
				for _, episode := range episodes {
					entry.Episodes = append(entry.Episodes, *episode)
				}
				result = append(result, entry)
			}
			return result, len(result) > 0, nil
		},
		Write: func(ctx context.Context, showID uint64, remote []trakt.SeasonWithEpisodes) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				if err := syncSeasons(db, tx, showID, remote, logger); err != nil {
					return err
				}
				return db.TxRecordRequestSuccess(tx, models.RequestShowSeasons, showID)
			})
			if err == nil {
				db.Notify(database.TopicSeasons)
			}
			return err
		},
		Delete: func(ctx context.Context, showID uint64) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				if err := db.TxDeleteSeasonsForShow(tx, showID); err != nil {
					return err
				}
				return db.TxDeleteLastRequest(tx, models.RequestShowSeasons, showID)
			})
			if err == nil {
				db.Notify(database.TopicSeasons)
			}
			return err
		},
		DeleteAll: func(ctx context.Context) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				if err := db.TxDeleteAllSeasons(tx); err != nil {
					return err
				}
				return db.TxDeleteLastRequestsOfKind(tx, models.RequestShowSeasons)
			})
			if err == nil {
				db.Notify(database.TopicSeasons)
			}
			return err
		},
		Subscribe: func() (<-chan struct{}, func()) {
			return db.Subscribe(database.TopicSeasons)
		},
	}

	validator := func(ctx context.Context, showID uint64) (bool, error) {
		return db.IsRequestValid(models.RequestShowSeasons, showID, 14*24*time.Hour)
	}

	return store.New("seasons", fetcher, source, validator, logger)
}

// syncSeasons reconciles the remote season list, then the episodes of every
// surviving season, inside one transaction.
func syncSeasons(db *database.Database, tx *bbolt.Tx, showID uint64, remote []trakt.SeasonWithEpisodes, logger *logrus.Logger) error {
	current, err := db.TxGetSeasonsForShow(tx, showID)
	if err != nil {
		return err
	}
	currentRows := make([]models.Season, len(current))
	for i, season := range current {
		currentRows[i] = *season
	}

	remoteSeasons := make([]models.Season, len(remote))
	for i, item := range remote {
		remoteSeasons[i] = item.Season
	}

	seasonSync := syncer.Syncer[models.Season, models.Season, int64]{
		LocalKey:  func(s models.Season) (int64, bool) { return s.TraktID, s.TraktID != 0 },
		RemoteKey: func(s models.Season) (int64, bool) { return s.TraktID, s.TraktID != 0 },
		Map: func(remote models.Season, current *models.Season) models.Season {
			mapped := remote
			mapped.ShowID = showID
			if current != nil {
				mapped.ID = current.ID
			}
			return mapped
		},
		Upsert: func(tx *bbolt.Tx, row *models.Season) error {
			return database.TxUpsertByID(db, tx, row.ID, row)
		},
		Delete: func(tx *bbolt.Tx, row models.Season) error {
			if err := db.TxDeleteEpisodesForSeason(tx, row.ID); err != nil {
				return err
			}
			return database.TxDeleteByID[models.Season](db, tx, row.ID)
		},
		Logger: logger.WithField("collection", "seasons"),
	}
	if _, err := seasonSync.Sync(tx, currentRows, remoteSeasons, true); err != nil {
		return err
	}

	// Re-read to learn the surrogate IDs of freshly inserted seasons.
	synced, err := db.TxGetSeasonsForShow(tx, showID)
	if err != nil {
		return err
	}
	seasonIDs := make(map[int64]uint64, len(synced))
	for _, season := range synced {
		seasonIDs[season.TraktID] = season.ID
	}

	for _, item := range remote {
		seasonID, ok := seasonIDs[item.Season.TraktID]
		if !ok {
			continue
		}
		currentEpisodes, err := db.TxGetEpisodesForSeason(tx, seasonID)
		if err != nil {
			return err
		}
		episodeRows := make([]models.Episode, len(currentEpisodes))
		for i, episode := range currentEpisodes {
			episodeRows[i] = *episode
		}

		episodeSync := syncer.Syncer[models.Episode, models.Episode, int64]{
			LocalKey:  func(e models.Episode) (int64, bool) { return e.TraktID, e.TraktID != 0 },
			RemoteKey: func(e models.Episode) (int64, bool) { return e.TraktID, e.TraktID != 0 },
			Map: func(remote models.Episode, current *models.Episode) models.Episode {
				mapped := remote
				mapped.SeasonID = seasonID
				if current != nil {
					mapped.ID = current.ID
				}
				return mapped
			},
			Upsert: func(tx *bbolt.Tx, row *models.Episode) error {
				return database.TxUpsertByID(db, tx, row.ID, row)
			},
			Delete: func(tx *bbolt.Tx, row models.Episode) error {
				return database.TxDeleteByID[models.Episode](db, tx, row.ID)
			},
			Logger: logger.WithField("collection", "episodes"),
		}
		if _, err := episodeSync.Sync(tx, episodeRows, item.Episodes, true); err != nil {
			return err
		}
	}
	return nil
}
