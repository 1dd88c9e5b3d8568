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

// TrendingShows is the remote-backed store of the trending collection, keyed
// by page.
type TrendingShows = store.Store[int, []trakt.TrendingItem, []models.EntryWithShow[models.TrendingEntry]]

// NewTrendingShows builds the trending shows store. Trending moves quickly,
// so cached pages go stale after 3 hours.
func NewTrendingShows(db *database.Database, traktClient *trakt.Client, pageSize int, logger *logrus.Logger) *TrendingShows {
	return newPagedStore(db, pageSize, logger, pagedConfig[trakt.TrendingItem, models.TrendingEntry]{
		name:      "trending_shows",
		kind:      models.RequestTrendingShows,
		topic:     database.TopicTrendingShows,
		threshold: 3 * time.Hour,
		fetch: func(ctx context.Context, page, pageSize int) ([]trakt.TrendingItem, error) {
			return traktClient.TrendingShows(ctx, page, pageSize)
		},
		itemShow: func(item trakt.TrendingItem) models.Show { return item.Show },
		entry: func(item trakt.TrendingItem, showID uint64, page, order int) *models.TrendingEntry {
			return &models.TrendingEntry{ShowID: showID, Page: page, PageOrder: order, Watchers: item.Watchers}
		},
		entryShowID: func(entry *models.TrendingEntry) uint64 { return entry.ShowID },
	})
}
