package trakt

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/models"
)

// SeasonWithEpisodes is a season of a show with its episodes, mapped into
// local entity shapes. Season and episode IDs are left unresolved; the writer
// assigns them when persisting.
type SeasonWithEpisodes struct {
	Season   models.Season
	Episodes []models.Episode
}

// ShowSeasons retrieves every season of a show, including episodes.
func (c *Client) ShowSeasons(ctx context.Context, traktID int64) ([]SeasonWithEpisodes, error) {
	path := fmt.Sprintf("/shows/%d/seasons?extended=episodes,full", traktID)

	var wire []struct {
		Number int `json:"number"`
		IDs    struct {
			Trakt int64 `json:"trakt"`
		} `json:"ids"`
		Title    string `json:"title"`
		Overview string `json:"overview"`
		Episodes []struct {
			Number int `json:"number"`
			IDs    struct {
				Trakt int64 `json:"trakt"`
			} `json:"ids"`
			Title      string     `json:"title"`
			Overview   string     `json:"overview"`
			FirstAired *time.Time `json:"first_aired"`
		} `json:"episodes"`
	}
	if err := c.doRequest(ctx, "GET", path, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get show seasons: %w", err)
	}

	seasons := make([]SeasonWithEpisodes, 0, len(wire))
	for _, ws := range wire {
		season := SeasonWithEpisodes{
			Season: models.Season{
				TraktID:      ws.IDs.Trakt,
				Number:       ws.Number,
				Title:        optString(ws.Title),
				Summary:      optString(ws.Overview),
				EpisodeCount: len(ws.Episodes),
			},
		}
		for _, we := range ws.Episodes {
			season.Episodes = append(season.Episodes, models.Episode{
				TraktID:    we.IDs.Trakt,
				Number:     we.Number,
				Title:      optString(we.Title),
				Summary:    optString(we.Overview),
				FirstAired: we.FirstAired,
			})
		}
		seasons = append(seasons, season)
	}
	return seasons, nil
}

// EpisodeWatchItem is one entry of the user's watch history for a show. ID is
// the remote history entry ID, the reconciliation key for diff syncs.
type EpisodeWatchItem struct {
	ID             int64
	EpisodeTraktID int64
	WatchedAt      time.Time
}

// ShowWatchHistory retrieves the user's complete episode watch history for a
// show. The result is authoritative: entries deleted remotely are absent.
func (c *Client) ShowWatchHistory(ctx context.Context, traktID int64) ([]EpisodeWatchItem, error) {
	path := fmt.Sprintf("/sync/history/shows/%d?limit=1000", traktID)

	var wire []struct {
		ID        int64     `json:"id"`
		WatchedAt time.Time `json:"watched_at"`
		Action    string    `json:"action"`
		Type      string    `json:"type"`
		Episode   *struct {
			IDs struct {
				Trakt int64 `json:"trakt"`
			} `json:"ids"`
		} `json:"episode"`
	}
	if err := c.doRequest(ctx, "GET", path, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get watch history: %w", err)
	}

	items := make([]EpisodeWatchItem, 0, len(wire))
	for _, w := range wire {
		if w.Type != "episode" || w.Episode == nil {
			continue
		}
		items = append(items, EpisodeWatchItem{
			ID:             w.ID,
			EpisodeTraktID: w.Episode.IDs.Trakt,
			WatchedAt:      w.WatchedAt,
		})
	}
	return items, nil
}
