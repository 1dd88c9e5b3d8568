package tmdb

import (
	"context"
	"fmt"

	"github.com/chrisbanes/tivi-sub008/internal/models"
)

// ShowImages retrieves the posters and backdrops for a show, mapped into
// local entity shapes. ShowID is left unset; the caller fills it in from the
// local row the images belong to.
func (c *Client) ShowImages(ctx context.Context, tmdbID int64) ([]models.ShowImage, error) {
	path := fmt.Sprintf("/tv/%d/images", tmdbID)

	var wire struct {
		Posters []struct {
			FilePath    string  `json:"file_path"`
			VoteAverage float64 `json:"vote_average"`
			ISO639      string  `json:"iso_639_1"`
		} `json:"posters"`
		Backdrops []struct {
			FilePath    string  `json:"file_path"`
			VoteAverage float64 `json:"vote_average"`
			ISO639      string  `json:"iso_639_1"`
		} `json:"backdrops"`
	}
	if err := c.doRequest(ctx, path, nil, &wire); err != nil {
		return nil, fmt.Errorf("failed to get show images: %w", err)
	}

	images := make([]models.ShowImage, 0, len(wire.Posters)+len(wire.Backdrops))
	for _, p := range wire.Posters {
		images = append(images, models.ShowImage{
			Kind:     models.ImageKindPoster,
			Path:     p.FilePath,
			Language: p.ISO639,
			Rating:   p.VoteAverage,
		})
	}
	for _, b := range wire.Backdrops {
		images = append(images, models.ShowImage{
			Kind:     models.ImageKindBackdrop,
			Path:     b.FilePath,
			Language: b.ISO639,
			Rating:   b.VoteAverage,
		})
	}
	return images, nil
}
