package scheduler

import (
	"context"

	"github.com/chrisbanes/tivi-sub008/internal/catalog"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler manages scheduled catalog refreshes
type Scheduler struct {
	cron    *cron.Cron
	catalog *catalog.Catalog
	logger  *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(cat *catalog.Catalog, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		catalog: cat,
		logger:  logger,
	}
}

// Start registers the refresh jobs and starts the cron loop. An initial
// warm-up refresh runs immediately in the background.
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Every 3 hours: refresh the discover collections
	if _, err := s.cron.AddFunc("0 */3 * * *", func() {
		s.runDiscoverRefresh()
	}); err != nil {
		return err
	}

	// Every 6 hours: refresh the signed-in user's collections
	if _, err := s.cron.AddFunc("0 */6 * * *", func() {
		s.runUserRefresh()
	}); err != nil {
		return err
	}

	// Daily: refresh recommendations
	if _, err := s.cron.AddFunc("0 4 * * *", func() {
		s.runRecommendedRefresh()
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")

	// Warm the catalog immediately
	go func() {
		s.runDiscoverRefresh()
		s.runUserRefresh()
		s.runRecommendedRefresh()
	}()

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	s.cron.Stop()
}

// runDiscoverRefresh refreshes the first page of each discover collection
func (s *Scheduler) runDiscoverRefresh() {
	s.logger.Info("Running scheduled discover refresh")
	ctx := context.Background()

	if err := s.catalog.Trending.Refresh(ctx, 0); err != nil {
		s.logger.WithError(err).Error("Trending refresh failed")
	}
	if err := s.catalog.Popular.Refresh(ctx, 0); err != nil {
		s.logger.WithError(err).Error("Popular refresh failed")
	}
	if err := s.catalog.Anticipated.Refresh(ctx, 0); err != nil {
		s.logger.WithError(err).Error("Anticipated refresh failed")
	}

	s.logger.Info("Discover refresh completed")
}

// runUserRefresh refreshes the watched and followed collections
func (s *Scheduler) runUserRefresh() {
	s.logger.Info("Running scheduled user collections refresh")
	ctx := context.Background()

	if err := s.catalog.Watched.Refresh(ctx, catalog.Unit{}); err != nil {
		s.logger.WithError(err).Error("Watched refresh failed")
	}
	if err := s.catalog.Followed.Refresh(ctx, catalog.Unit{}); err != nil {
		s.logger.WithError(err).Error("Followed refresh failed")
	}

	s.logger.Info("User collections refresh completed")
}

// runRecommendedRefresh refreshes the first page of recommendations
func (s *Scheduler) runRecommendedRefresh() {
	s.logger.Info("Running scheduled recommendations refresh")
	ctx := context.Background()

	if err := s.catalog.Recommended.Refresh(ctx, 0); err != nil {
		s.logger.WithError(err).Error("Recommended refresh failed")
	}
}
