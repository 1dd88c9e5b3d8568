// Package catalog instantiates the remote-backed collection stores that make
// up the local show catalog: trending, popular, anticipated and recommended
// pages, related shows, the user's watched and followed collections, show
// details and artwork, seasons/episodes and episode watch history.
package catalog

import (
	"context"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/store"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

// DefaultPageSize is the number of entries requested per collection page.
const DefaultPageSize = 20

// pagedConfig describes one paginated collection: how to fetch a page of
// remote items of type N and how to turn each item into an entry row of type
// E linked to a resolved show.
type pagedConfig[N any, E any] struct {
	name      string
	kind      models.RequestKind
	topic     string
	threshold time.Duration

	fetch       func(ctx context.Context, page, pageSize int) ([]N, error)
	itemShow    func(item N) models.Show
	entry       func(item N, showID uint64, page, order int) *E
	entryShowID func(entry *E) uint64
}

// newPagedStore assembles a store for a paginated collection. Writes resolve
// show placeholders, replace the page (page 0 replaces the whole collection)
// and record the fetch in the ledger, all in one transaction.
func newPagedStore[N any, E any](
	db *database.Database,
	pageSize int,
	logger *logrus.Logger,
	cfg pagedConfig[N, E],
) *store.Store[int, []N, []models.EntryWithShow[E]] {
	fetcher := func(ctx context.Context, page int) ([]N, error) {
		return cfg.fetch(ctx, page, pageSize)
	}

	source := store.SourceOfTruth[int, []N, []models.EntryWithShow[E]]{
		Read: func(ctx context.Context, page int) ([]models.EntryWithShow[E], bool, error) {
			entries, err := database.FindPage[E](db, page)
			if err != nil {
				return nil, false, err
			}
			if len(entries) == 0 {
				return nil, false, nil
			}
			joined, err := joinShows(db, entries, cfg.entryShowID)
			if err != nil {
				return nil, false, err
			}
			return joined, true, nil
		},
		Write: func(ctx context.Context, page int, items []N) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				entries := make([]*E, 0, len(items))
				for i, item := range items {
					showID, err := db.TxGetShowIDOrSavePlaceholder(tx, cfg.itemShow(item))
					if err != nil {
						return err
					}
					entries = append(entries, cfg.entry(item, showID, page, i))
				}
				if err := database.TxReplacePage(db, tx, page, entries); err != nil {
					return err
				}
				return db.TxRecordRequestSuccess(tx, cfg.kind, models.GlobalEntityID)
			})
			if err == nil {
				db.Notify(cfg.topic, database.TopicShows)
			}
			return err
		},
		Delete: func(ctx context.Context, page int) error {
			if err := database.DeletePage[E](db, page); err != nil {
				return err
			}
			db.Notify(cfg.topic)
			return nil
		},
		DeleteAll: func(ctx context.Context) error {
			err := db.Update(func(tx *bbolt.Tx) error {
				return database.TxDeleteAllEntries[E](db, tx)
			})
			if err == nil {
				db.Notify(cfg.topic)
			}
			return err
		},
		Subscribe: func() (<-chan struct{}, func()) {
			return db.Subscribe(cfg.topic)
		},
	}

	validator := func(ctx context.Context, page int) (bool, error) {
		return db.IsRequestValid(cfg.kind, models.GlobalEntityID, cfg.threshold)
	}

	return store.New(cfg.name, fetcher, source, validator, logger)
}

// joinShows pairs collection entries with their show rows. Entries whose show
// row has vanished are dropped rather than surfaced as errors.
func joinShows[E any](db *database.Database, entries []*E, showID func(*E) uint64) ([]models.EntryWithShow[E], error) {
	ids := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, showID(entry))
	}
	shows, err := db.GetShows(ids)
	if err != nil {
		return nil, err
	}

	out := make([]models.EntryWithShow[E], 0, len(entries))
	for _, entry := range entries {
		show, ok := shows[showID(entry)]
		if !ok {
			continue
		}
		out = append(out, models.EntryWithShow[E]{Entry: *entry, Show: show})
	}
	return out, nil
}
