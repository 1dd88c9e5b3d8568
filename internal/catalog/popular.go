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

// PopularShows is the remote-backed store of the popular collection, keyed by
// page.
type PopularShows = store.Store[int, []models.Show, []models.EntryWithShow[models.PopularEntry]]

// NewPopularShows builds the popular shows store, stale after 3 hours.
func NewPopularShows(db *database.Database, traktClient *trakt.Client, pageSize int, logger *logrus.Logger) *PopularShows {
	return newPagedStore(db, pageSize, logger, pagedConfig[models.Show, models.PopularEntry]{
		name:      "popular_shows",
		kind:      models.RequestPopularShows,
		topic:     database.TopicPopularShows,
		threshold: 3 * time.Hour,
		fetch: func(ctx context.Context, page, pageSize int) ([]models.Show, error) {
			return traktClient.PopularShows(ctx, page, pageSize)
		},
		itemShow: func(show models.Show) models.Show { return show },
		entry: func(_ models.Show, showID uint64, page, order int) *models.PopularEntry {
			return &models.PopularEntry{ShowID: showID, Page: page, PageOrder: order}
		},
		entryShowID: func(entry *models.PopularEntry) uint64 { return entry.ShowID },
	})
}
