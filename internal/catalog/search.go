package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/database"
	"github.com/chrisbanes/tivi-sub008/internal/models"
	"github.com/chrisbanes/tivi-sub008/internal/services/trakt"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"go.etcd.io/bbolt"
)

const searchCacheTTL = 10 * time.Minute

// Search looks shows up by title. Remote results are saved as local rows (or
// matched to existing ones), and result ID lists are memoized per query so
// repeated searches within the TTL never hit the network.
type Search struct {
	db     *database.Database
	trakt  *trakt.Client
	cache  *gocache.Cache
	logger *logrus.Logger
}

// NewSearch builds the search repository.
func NewSearch(db *database.Database, traktClient *trakt.Client, logger *logrus.Logger) *Search {
	return &Search{
		db:     db,
		trakt:  traktClient,
		cache:  gocache.New(searchCacheTTL, 30*time.Minute),
		logger: logger,
	}
}

// Search returns the shows matching query, in relevance order. An empty query
// returns no results without a remote call.
func (s *Search) Search(ctx context.Context, query string) ([]models.Show, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	cacheKey := strings.ToLower(query)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return s.loadResults(cached.([]uint64))
	}

	remote, err := s.trakt.SearchShows(ctx, query)
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, 0, len(remote))
	err = s.db.Update(func(tx *bbolt.Tx) error {
		for _, show := range remote {
			id, err := s.db.TxGetShowIDOrSavePlaceholder(tx, show)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		s.db.Notify(database.TopicShows)
	}

	s.cache.Set(cacheKey, ids, gocache.DefaultExpiration)
	s.logger.WithFields(logrus.Fields{
		"query":   query,
		"results": len(ids),
	}).Debug("Search results fetched")

	return s.loadResults(ids)
}

// ClearCache drops all memoized search results.
func (s *Search) ClearCache() {
	s.cache.Flush()
}

func (s *Search) loadResults(ids []uint64) ([]models.Show, error) {
	shows, err := s.db.GetShows(ids)
	if err != nil {
		return nil, err
	}
	results := make([]models.Show, 0, len(ids))
	for _, id := range ids {
		if show, ok := shows[id]; ok {
			results = append(results, show)
		}
	}
	return results, nil
}
