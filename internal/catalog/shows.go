package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/services/tmdb"
	"github.com/chrisbanes/tivi-sub008/internal/services/trakt"
	"github.com/chrisbanes/tivi-sub008/internal/store"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
	"golang.org/x/sync/errgroup"
)

// showDetails carries the per-provider results of one show detail fetch.
type showDetails struct {
	Trakt models.Show
	Tmdb  models.Show
}

// ShowStore is the remote-backed store of full show details, keyed by the
// local show ID. Both providers are queried concurrently and their results
// merged into the existing local row.
type ShowStore = store.Store[uint64, showDetails, models.Show]

// NewShowStore builds the show details store, stale after 14 days.
func NewShowStore(db *database.Database, traktClient *trakt.Client, tmdbClient *tmdb.Client, logger *logrus.Logger) *ShowStore {
	fetcher := func(ctx context.Context, showID uint64) (showDetails, error) {
		local, err := db.GetShow(showID)
		if errors.Is(err, database.ErrNotFound) {
			return showDetails{}, fmt.Errorf("%w: id %d", ErrShowNotFound, showID)
		}
		if err != nil {
			return showDetails{}, err
		}
		if local.TraktID == 0 {
			return showDetails{}, fmt.Errorf("%w: id %d", ErrShowNotLinked, showID)
		}

		var details showDetails
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			show, err := traktClient.GetShow(gctx, local.TraktID)
			if err != nil {
				return err
			}
			details.Trakt = show
			return nil
		})
		if local.TmdbID != 0 {
			g.Go(func() error {
				show, err := tmdbClient.GetShow(gctx, local.TmdbID)
				if err != nil {
					return err
				}
				details.Tmdb = show
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return showDetails{}, err
		}
		return details, nil
	}

	source := store.SourceOfTruth[uint64, showDetails, models.Show]{
		Read: func(ctx context.Context, showID uint64) (models.Show, bool, error) {
			show, err := db.GetShow(showID)
			if errors.Is(err, database.ErrNotFound) {
				return models.Show{}, false, nil
			}
			if err != nil {
				return models.Show{}, false, err
			}
			return *show, true, nil
		},
		Write: func(ctx context.Context, showID uint64, details showDetails) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				local, err := db.TxGetShow(tx, showID)
				if err != nil {
					return err
				}
				merged := models.MergeShows(*local, details.Trakt, details.Tmdb)
				if err := db.TxSaveShow(tx, &merged); err != nil {
					return err
				}
				return db.TxRecordRequestSuccess(tx, models.RequestShowDetails, showID)
			})
			if err == nil {
				db.Notify(database.TopicShows)
			}
			return err
		},
		Delete: func(ctx context.Context, showID uint64) error {
			// Show rows are shared by every collection entry, so clearing the
			// details only drops the ledger row and forces the next refresh.
			return db.Update(func(tx *bbolt.Tx) error {
				return db.TxDeleteLastRequest(tx, models.RequestShowDetails, showID)
			})
		},
		DeleteAll: func(ctx context.Context) error {
			return db.Update(func(tx *bbolt.Tx) error {
				return db.TxDeleteLastRequestsOfKind(tx, models.RequestShowDetails)
			})
		},
		Subscribe: func() (<-chan struct{}, func()) {
			return db.Subscribe(database.TopicShows)
		},
	}

	validator := func(ctx context.Context, showID uint64) (bool, error) {
		return db.IsRequestValid(models.RequestShowDetails, showID, 14*24*time.Hour)
	}

	return store.New("show_details", fetcher, source, validator, logger)
}
