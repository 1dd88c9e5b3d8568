package catalog

import (
	"context"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/services/trakt"
	"github.com/chrisbanes/tivi-sub008/internal/store"
	"github.com/sirupsen/logrus"
)

// AnticipatedShows is the remote-backed store of the anticipated collection,
// keyed by page.
type AnticipatedShows = store.Store[int, []trakt.AnticipatedItem, []models.EntryWithShow[models.AnticipatedEntry]]

// NewAnticipatedShows builds the anticipated shows store, stale after 3
// hours.
func NewAnticipatedShows(db *database.Database, traktClient *trakt.Client, pageSize int, logger *logrus.Logger) *AnticipatedShows {
	return newPagedStore(db, pageSize, logger, pagedConfig[trakt.AnticipatedItem, models.AnticipatedEntry]{
		name:      "anticipated_shows",
		kind:      models.RequestAnticipatedShows,
		topic:     database.TopicAnticipatedShows,
		threshold: 3 * time.Hour,
		fetch: func(ctx context.Context, page, pageSize int) ([]trakt.AnticipatedItem, error) {
			return traktClient.AnticipatedShows(ctx, page, pageSize)
		},
		itemShow: func(item trakt.AnticipatedItem) models.Show { return item.Show },
		entry: func(item trakt.AnticipatedItem, showID uint64, page, order int) *models.AnticipatedEntry {
			return &models.AnticipatedEntry{ShowID: showID, Page: page, PageOrder: order, ListCount: item.ListCount}
		},
		entryShowID: func(entry *models.AnticipatedEntry) uint64 { return entry.ShowID },
	})
}
