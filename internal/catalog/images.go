package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/services/tmdb"
	"github.com/chrisbanes/tivi-sub008/internal/store"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// ShowImages is the remote-backed store of TMDb artwork for a show, keyed by
// the local show ID.
type ShowImages = store.Store[uint64, []models.ShowImage, []*models.ShowImage]

// NewShowImages builds the show artwork store, stale after 28 days.
func NewShowImages(db *database.Database, tmdbClient *tmdb.Client, logger *logrus.Logger) *ShowImages {
	fetcher := func(ctx context.Context, showID uint64) ([]models.ShowImage, error) {
		show, err := db.GetShow(showID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrShowNotFound, showID)
		}
		if err != nil {
			return nil, err
		}
		if show.TmdbID == 0 {
			return nil, fmt.Errorf("%w: id %d", ErrShowNotLinked, showID)
		}

		images, err := tmdbClient.ShowImages(ctx, show.TmdbID)
		if err != nil {
			return nil, err
		}
		for i := range images {
			images[i].ShowID = showID
		}
		return images, nil
	}

	source := store.SourceOfTruth[uint64, []models.ShowImage, []*models.ShowImage]{
		Read: func(ctx context.Context, showID uint64) ([]*models.ShowImage, bool, error) {
			images, err := db.GetShowImages(showID)
			if err != nil {
				return nil, false, err
			}
			return images, len(images) > 0, nil
		},
		Write: func(ctx context.Context, showID uint64, images []models.ShowImage) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				rows := make([]*models.ShowImage, len(images))
				for i := range images {
					rows[i] = &images[i]
				}
				if err := db.TxReplaceShowImages(tx, showID, rows); err != nil {
					return err
				}
				return db.TxRecordRequestSuccess(tx, models.RequestShowImages, showID)
			})
			if err == nil {
				db.Notify(database.TopicShowImages)
			}
			return err
		},
		Delete: func(ctx context.Context, showID uint64) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				if err := db.TxReplaceShowImages(tx, showID, nil); err != nil {
					return err
				}
				return db.TxDeleteLastRequest(tx, models.RequestShowImages, showID)
			})
			if err == nil {
				db.Notify(database.TopicShowImages)
			}
			return err
		},
		DeleteAll: func(ctx context.Context) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				if err := db.TxDeleteAllShowImages(tx); err != nil {
					return err
				}
				return db.TxDeleteLastRequestsOfKind(tx, models.RequestShowImages)
			})
			if err == nil {
				db.Notify(database.TopicShowImages)
			}
			return err
		},
		Subscribe: func() (<-chan struct{}, func()) {
			return db.Subscribe(database.TopicShowImages)
		},
	}

	validator := func(ctx context.Context, showID uint64) (bool, error) {
		return db.IsRequestValid(models.RequestShowImages, showID, 28*24*time.Hour)
	}

	return store.New("show_images", fetcher, source, validator, logger)
}
