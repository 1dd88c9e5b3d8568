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

// RecommendedShows is the remote-backed store of the personalised
// recommendations collection, keyed by page.
type RecommendedShows = store.Store[int, []models.Show, []models.EntryWithShow[models.RecommendedEntry]]

// NewRecommendedShows builds the recommended shows store. Recommendations
// move slowly, so cached pages are good for 3 days.
func NewRecommendedShows(db *database.Database, traktClient *trakt.Client, pageSize int, logger *logrus.Logger) *RecommendedShows {
	return newPagedStore(db, pageSize, logger, pagedConfig[models.Show, models.RecommendedEntry]{
		name:      "recommended_shows",
		kind:      models.RequestRecommendedShows,
		topic:     database.TopicRecommendedShows,
		threshold: 3 * 24 * time.Hour,
		fetch: func(ctx context.Context, page, pageSize int) ([]models.Show, error) {
			return traktClient.RecommendedShows(ctx, page, pageSize)
		},
		itemShow: func(show models.Show) models.Show { return show },
		entry: func(_ models.Show, showID uint64, page, order int) *models.RecommendedEntry {
			return &models.RecommendedEntry{ShowID: showID, Page: page, PageOrder: order}
		},
		entryShowID: func(entry *models.RecommendedEntry) uint64 { return entry.ShowID },
	})
}
