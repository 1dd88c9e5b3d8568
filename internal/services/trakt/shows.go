package trakt

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chrisbanes/tivi-sub008/internal/models"
)

// wireShow is the show object as returned by the Trakt API.
type wireShow struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
	IDs   struct {
		Trakt int64  `json:"trakt"`
		Slug  string `json:"slug"`
		Tmdb  int64  `json:"tmdb"`
		Imdb  string `json:"imdb"`
	} `json:"ids"`
	Overview      string     `json:"overview"`
	FirstAired    *time.Time `json:"first_aired"`
	Runtime       int        `json:"runtime"`
	Certification string     `json:"certification"`
	Network       string     `json:"network"`
	Country       string     `json:"country"`
	Homepage      string     `json:"homepage"`
	Rating        float64    `json:"rating"`
	Votes         int        `json:"votes"`
	Genres        []string   `json:"genres"`
}

// toShow maps the wire object into the local entity shape. Fields the API
// did not populate stay nil so that merges keep existing local values.
func (w wireShow) toShow() models.Show {
	show := models.Show{
		TraktID: w.IDs.Trakt,
		TmdbID:  w.IDs.Tmdb,
		ImdbID:  w.IDs.Imdb,
	}

	show.Title = optString(w.Title)
	show.Summary = optString(w.Overview)
	show.Homepage = optString(w.Homepage)
	show.Network = optString(w.Network)
	show.Certification = optString(w.Certification)
	show.Country = optString(w.Country)
	show.FirstAired = w.FirstAired
	show.Genres = w.Genres
	if w.Runtime != 0 {
		show.Runtime = &w.Runtime
	}
	if w.Rating != 0 {
		show.TraktRating = &w.Rating
	}
	if w.Votes != 0 {
		show.TraktVotes = &w.Votes
	}
	return show
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// TrendingItem is a show on the trending list.
type TrendingItem struct {
	Show     models.Show
	Watchers int
}

// TrendingShows retrieves a page of trending shows. Pages are 0-based here;
// the API counts from 1.
func (c *Client) TrendingShows(ctx context.Context, page, pageSize int) ([]TrendingItem, error) {
	path := fmt.Sprintf("/shows/trending?page=%d&limit=%d&extended=full", page+1, pageSize)

	var wire []struct {
		Watchers int      `json:"watchers"`
		Show     wireShow `json:"show"`
	}
	if err := c.doRequest(ctx, "GET", path, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get trending shows: %w", err)
	}

	items := make([]TrendingItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, TrendingItem{Show: w.Show.toShow(), Watchers: w.Watchers})
	}
	return items, nil
}

// PopularShows retrieves a page of popular shows.
func (c *Client) PopularShows(ctx context.Context, page, pageSize int) ([]models.Show, error) {
	path := fmt.Sprintf("/shows/popular?page=%d&limit=%d&extended=full", page+1, pageSize)

	var wire []wireShow
	if err := c.doRequest(ctx, "GET", path, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get popular shows: %w", err)
	}

	shows := make([]models.Show, 0, len(wire))
	for _, w := range wire {
		shows = append(shows, w.toShow())
	}
	return shows, nil
}

// AnticipatedItem is a show on the anticipated list.
type AnticipatedItem struct {
	Show      models.Show
	ListCount int
}

// AnticipatedShows retrieves a page of the most anticipated shows.
func (c *Client) AnticipatedShows(ctx context.Context, page, pageSize int) ([]AnticipatedItem, error) {
	path := fmt.Sprintf("/shows/anticipated?page=%d&limit=%d&extended=full", page+1, pageSize)

	var wire []struct {
		ListCount int      `json:"list_count"`
		Show      wireShow `json:"show"`
	}
	if err := c.doRequest(ctx, "GET", path, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get anticipated shows: %w", err)
	}

	items := make([]AnticipatedItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, AnticipatedItem{Show: w.Show.toShow(), ListCount: w.ListCount})
	}
	return items, nil
}

// RecommendedShows retrieves a page of personalised show recommendations.
func (c *Client) RecommendedShows(ctx context.Context, page, pageSize int) ([]models.Show, error) {
	path := fmt.Sprintf("/recommendations/shows?page=%d&limit=%d&extended=full", page+1, pageSize)

	var wire []wireShow
	if err := c.doRequest(ctx, "GET", path, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get recommended shows: %w", err)
	}

	shows := make([]models.Show, 0, len(wire))
	for _, w := range wire {
		shows = append(shows, w.toShow())
	}
	return shows, nil
}

// RelatedShows retrieves shows related to the given show.
func (c *Client) RelatedShows(ctx context.Context, traktID int64) ([]models.Show, error) {
	path := fmt.Sprintf("/shows/%d/related?extended=full", traktID)

	var wire []wireShow
	if err := c.doRequest(ctx, "GET", path, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get related shows: %w", err)
	}

	shows := make([]models.Show, 0, len(wire))
	for _, w := range wire {
		shows = append(shows, w.toShow())
	}
	return shows, nil
}

// WatchedItem is one show of the user's watched collection.
type WatchedItem struct {
	Show        models.Show
	Plays       int
	LastWatched time.Time
}

// WatchedShows retrieves the user's full watched-show collection.
func (c *Client) WatchedShows(ctx context.Context) ([]WatchedItem, error) {
	var wire []struct {
		Plays         int       `json:"plays"`
		LastWatchedAt time.Time `json:"last_watched_at"`
		Show          wireShow  `json:"show"`
	}
	if err := c.doRequest(ctx, "GET", "/sync/watched/shows?extended=full", nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get watched shows: %w", err)
	}

	items := make([]WatchedItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, WatchedItem{
			Show:        w.Show.toShow(),
			Plays:       w.Plays,
			LastWatched: w.LastWatchedAt,
		})
	}
	return items, nil
}

// FollowedItem is one show of the user's followed list.
type FollowedItem struct {
	Show       models.Show
	FollowedAt time.Time
}

// FollowedShows retrieves the user's followed shows (the show watchlist).
func (c *Client) FollowedShows(ctx context.Context) ([]FollowedItem, error) {
	var wire []struct {
		ListedAt time.Time `json:"listed_at"`
		Show     wireShow  `json:"show"`
	}
	if err := c.doRequest(ctx, "GET", "/sync/watchlist/shows?extended=full", nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get followed shows: %w", err)
	}

	items := make([]FollowedItem, 0, len(wire))
	for _, w := range wire {
		items = append(items, FollowedItem{Show: w.Show.toShow(), FollowedAt: w.ListedAt})
	}
	return items, nil
}

// GetShow retrieves full metadata for a single show.
func (c *Client) GetShow(ctx context.Context, traktID int64) (models.Show, error) {
	path := fmt.Sprintf("/shows/%d?extended=full", traktID)

	var wire wireShow
	if err := c.doRequest(ctx, "GET", path, nil, &wire); err != nil {
		return models.Show{}, fmt.Errorf("failed to get show: %w", err)
	}
	return wire.toShow(), nil
}

// SearchShows searches shows by title.
func (c *Client) SearchShows(ctx context.Context, query string) ([]models.Show, error) {
	path := "/search/show?extended=full&query=" + url.QueryEscape(query)

	var wire []struct {
		Type string   `json:"type"`
		Show wireShow `json:"show"`
	}
	if err := c.doRequest(ctx, "GET", path, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to search shows: %w", err)
	}

	shows := make([]models.Show, 0, len(wire))
	for _, w := range wire {
		if w.Type != "show" {
			continue
		}
		shows = append(shows, w.Show.toShow())
	}
	return shows, nil
}
