package catalog

import (
	"context"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/services/tmdb"
	"github.com/chrisbanes/tivi-sub008/internal/services/trakt"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// Catalog bundles every collection store plus search over one database.
type Catalog struct {
	Trending       *TrendingShows
	Popular        *PopularShows
	Anticipated    *AnticipatedShows
	Recommended    *RecommendedShows
	Related        *RelatedShows
	Watched        *WatchedShows
	Followed       *FollowedShows
	Shows          *ShowStore
	Images         *ShowImages
	Seasons        *SeasonsStore
	EpisodeWatches *EpisodeWatches
	Search         *Search

	db     *database.Database
	logger *logrus.Logger
}

// New wires all stores against the given database and API clients.
func New(db *database.Database, traktClient *trakt.Client, tmdbClient *tmdb.Client, pageSize int, logger *logrus.Logger) *Catalog {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Catalog{
		Trending:       NewTrendingShows(db, traktClient, pageSize, logger),
		Popular:        NewPopularShows(db, traktClient, pageSize, logger),
		Anticipated:    NewAnticipatedShows(db, traktClient, pageSize, logger),
		Recommended:    NewRecommendedShows(db, traktClient, pageSize, logger),
		Related:        NewRelatedShows(db, traktClient, logger),
		Watched:        NewWatchedShows(db, traktClient, logger),
		Followed:       NewFollowedShows(db, traktClient, logger),
		Shows:          NewShowStore(db, traktClient, tmdbClient, logger),
		Images:         NewShowImages(db, tmdbClient, logger),
		Seasons:        NewSeasonsStore(db, traktClient, logger),
		EpisodeWatches: NewEpisodeWatches(db, traktClient, logger),
		Search:         NewSearch(db, traktClient, logger),
		db:             db,
		logger:         logger,
	}
}

// Counts summarises the stored collection sizes for the status endpoint.
type Counts struct {
	Shows       int `json:"shows"`
	Trending    int `json:"trending"`
	Popular     int `json:"popular"`
	Anticipated int `json:"anticipated"`
	Recommended int `json:"recommended"`
	Related     int `json:"related"`
	Watched     int `json:"watched"`
	Followed    int `json:"followed"`
	Images      int `json:"images"`
	Seasons     int `json:"seasons"`
	Episodes    int `json:"episodes"`
	Watches     int `json:"episode_watches"`
}

// Counts reports the number of rows in every collection.
func (c *Catalog) Counts() (Counts, error) {
	var counts Counts
	var err error

	if counts.Shows, err = c.db.CountShows(); err != nil {
		return Counts{}, err
	}
	if counts.Trending, err = database.CountEntries[models.TrendingEntry](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Popular, err = database.CountEntries[models.PopularEntry](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Anticipated, err = database.CountEntries[models.AnticipatedEntry](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Recommended, err = database.CountEntries[models.RecommendedEntry](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Related, err = database.CountEntries[models.RelatedEntry](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Watched, err = database.CountEntries[models.WatchedEntry](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Followed, err = database.CountEntries[models.FollowedEntry](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Images, err = database.CountEntries[models.ShowImage](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Seasons, err = database.CountEntries[models.Season](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Episodes, err = database.CountEntries[models.Episode](c.db); err != nil {
		return Counts{}, err
	}
	if counts.Watches, err = database.CountEntries[models.EpisodeWatch](c.db); err != nil {
		return Counts{}, err
	}
	return counts, nil
}

// ClearLibrary removes every collection entry and the whole last-request
// ledger in a single transaction. Show rows are kept, so external ID mappings
// survive; every collection reads as empty and stale afterwards.
func (c *Catalog) ClearLibrary(ctx context.Context) error {
	err := c.db.Update(func(tx *bbolt.Tx) error {
		if err := database.TxDeleteAllEntries[models.TrendingEntry](c.db, tx); err != nil {
			return err
		}
		if err := database.TxDeleteAllEntries[models.PopularEntry](c.db, tx); err != nil {
			return err
		}
		if err := database.TxDeleteAllEntries[models.AnticipatedEntry](c.db, tx); err != nil {
			return err
		}
		if err := database.TxDeleteAllEntries[models.RecommendedEntry](c.db, tx); err != nil {
			return err
		}
		if err := database.TxDeleteAllEntries[models.RelatedEntry](c.db, tx); err != nil {
			return err
		}
		if err := database.TxDeleteAllEntries[models.WatchedEntry](c.db, tx); err != nil {
			return err
		}
		if err := database.TxDeleteAllEntries[models.FollowedEntry](c.db, tx); err != nil {
			return err
		}
		if err := c.db.TxDeleteAllShowImages(tx); err != nil {
			return err
		}
		if err := c.db.TxDeleteAllSeasons(tx); err != nil {
			return err
		}
		if err := c.db.TxDeleteAllEpisodeWatches(tx); err != nil {
			return err
		}
		return c.db.TxDeleteLastRequests(tx)
	})
	if err != nil {
		return err
	}

	c.Search.ClearCache()
	c.db.Notify(
		database.TopicShows,
		database.TopicTrendingShows,
		database.TopicPopularShows,
		database.TopicAnticipatedShows,
		database.TopicRecommendedShows,
		database.TopicRelatedShows,
		database.TopicWatchedShows,
		database.TopicFollowedShows,
		database.TopicShowImages,
		database.TopicSeasons,
		database.TopicEpisodeWatches,
	)
	c.logger.Info("Library cleared")
	return nil
}
