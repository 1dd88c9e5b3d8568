package tmdb

import (
	"context"
	"fmt"

	"github.com/chrisbanes/tivi-sub008/internal/models"
)

// GetShow retrieves the TMDb-side metadata for a show: artwork paths plus a
// few fields Trakt does not carry. Fields the API left empty stay nil so the
// merge keeps existing values.
func (c *Client) GetShow(ctx context.Context, tmdbID int64) (models.Show, error) {
	path := fmt.Sprintf("/tv/%d", tmdbID)

	var wire struct {
		ID           int64  `json:"id"`
		Name         string `json:"name"`
		PosterPath   string `json:"poster_path"`
		BackdropPath string `json:"backdrop_path"`
		Homepage     string `json:"homepage"`
	}
	if err := c.doRequest(ctx, path, nil, &wire); err != nil {
		return models.Show{}, fmt.Errorf("failed to get show: %w", err)
	}

	show := models.Show{TmdbID: wire.ID}
	if wire.PosterPath != "" {
		show.TmdbPosterPath = &wire.PosterPath
	}
	if wire.BackdropPath != "" {
		show.TmdbBackdropPath = &wire.BackdropPath
	}
	if wire.Homepage != "" {
		show.Homepage = &wire.Homepage
	}
	return show, nil
}
