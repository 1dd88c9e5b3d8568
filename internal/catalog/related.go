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
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// RelatedShows is the remote-backed store of shows related to a given show,
// keyed by the local show ID.
type RelatedShows = store.Store[uint64, []models.Show, []models.EntryWithShow[models.RelatedEntry]]

// NewRelatedShows builds the related shows store. Relations barely change,
// so cached results are good for 28 days.
func NewRelatedShows(db *database.Database, traktClient *trakt.Client, logger *logrus.Logger) *RelatedShows {
	fetcher := func(ctx context.Context, showID uint64) ([]models.Show, error) {
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
		return traktClient.RelatedShows(ctx, show.TraktID)
	}

	source := store.SourceOfTruth[uint64, []models.Show, []models.EntryWithShow[models.RelatedEntry]]{
		Read: func(ctx context.Context, showID uint64) ([]models.EntryWithShow[models.RelatedEntry], bool, error) {
			entries, err := db.GetRelatedEntries(showID)
			if err != nil {
				return nil, false, err
			}
			if len(entries) == 0 {
				return nil, false, nil
			}
			joined, err := joinShows(db, entries, func(entry *models.RelatedEntry) uint64 {
				return entry.RelatedShowID
			})
			if err != nil {
				return nil, false, err
			}
			return joined, true, nil
		},
		Write: func(ctx context.Context, showID uint64, shows []models.Show) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				entries := make([]*models.RelatedEntry, 0, len(shows))
				for i, show := range shows {
					relatedID, err := db.TxGetShowIDOrSavePlaceholder(tx, show)
					if err != nil {
						return err
					}
					entries = append(entries, &models.RelatedEntry{
						ShowID:        showID,
						RelatedShowID: relatedID,
						OrderIndex:    i,
					})
				}
				if err := db.TxReplaceRelatedEntries(tx, showID, entries); err != nil {
					return err
				}
				return db.TxRecordRequestSuccess(tx, models.RequestRelatedShows, showID)
			})
			if err == nil {
				db.Notify(database.TopicRelatedShows, database.TopicShows)
			}
			return err
		},
		Delete: func(ctx context.Context, showID uint64) error {
			if err := db.DeleteRelatedEntries(showID); err != nil {
				return err
			}
			db.Notify(database.TopicRelatedShows)
			return nil
		},
		DeleteAll: func(ctx context.Context) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				return database.TxDeleteAllEntries[models.RelatedEntry](db, tx)
			})
			if err == nil {
				db.Notify(database.TopicRelatedShows)
			}
			return err
		},
		Subscribe: func() (<-chan struct{}, func()) {
			return db.Subscribe(database.TopicRelatedShows)
		},
	}

	validator := func(ctx context.Context, showID uint64) (bool, error) {
		return db.IsRequestValid(models.RequestRelatedShows, showID, 28*24*time.Hour)
	}

	return store.New("related_shows", fetcher, source, validator, logger)
}
