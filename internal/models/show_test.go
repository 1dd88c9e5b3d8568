package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func str(s string) *string    { return &s }
func intp(i int) *int         { return &i }
func floatp(f float64) *float64 { return &f }

func TestMergeShowsTraktWinsForMetadata(t *testing.T) {
	local := Show{
		ID:      7,
		TraktID: 100,
		Title:   str("Old Title"),
		Summary: str("Old summary"),
	}
	trakt := Show{
		TraktID:     100,
		Title:       str("New Title"),
		Runtime:     intp(45),
		TraktRating: floatp(8.2),
	}

	merged := MergeShows(local, trakt, Show{})

	assert.EqualValues(t, 7, merged.ID)
	assert.Equal(t, "New Title", *merged.Title)
	assert.Equal(t, "Old summary", *merged.Summary, "unset provider field keeps local value")
	assert.Equal(t, 45, *merged.Runtime)
	assert.Equal(t, 8.2, *merged.TraktRating)
}

func TestMergeShowsTmdbWinsForArtworkAndID(t *testing.T) {
	local := Show{
		TraktID:        100,
		TmdbID:         1,
		TmdbPosterPath: str("/old-poster.jpg"),
	}
	trakt := Show{TraktID: 100, TmdbID: 2}
	tmdb := Show{
		TmdbID:           3,
		TmdbPosterPath:   str("/new-poster.jpg"),
		TmdbBackdropPath: str("/backdrop.jpg"),
	}

	merged := MergeShows(local, trakt, tmdb)

	assert.EqualValues(t, 3, merged.TmdbID)
	assert.Equal(t, "/new-poster.jpg", *merged.TmdbPosterPath)
	assert.Equal(t, "/backdrop.jpg", *merged.TmdbBackdropPath)
}

func TestMergeShowsTraktTmdbIDUsedWhenTmdbSilent(t *testing.T) {
	local := Show{TraktID: 100}
	trakt := Show{TraktID: 100, TmdbID: 2}

	merged := MergeShows(local, trakt, Show{})
	assert.EqualValues(t, 2, merged.TmdbID)
}

func TestMergeShowsEmptyProvidersIsNoOp(t *testing.T) {
	aired := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	local := Show{
		ID:         4,
		TraktID:    100,
		ImdbID:     "tt1234",
		Title:      str("Title"),
		Genres:     []string{"drama"},
		FirstAired: &aired,
	}

	merged := MergeShows(local, Show{}, Show{})
	assert.Equal(t, local, merged)
}

func TestMergeShowsIdempotent(t *testing.T) {
	local := Show{ID: 4, TraktID: 100}
	trakt := Show{
		TraktID: 100,
		Title:   str("Title"),
		Genres:  []string{"drama", "comedy"},
	}
	tmdb := Show{TmdbID: 9, TmdbPosterPath: str("/p.jpg")}

	once := MergeShows(local, trakt, tmdb)
	twice := MergeShows(once, trakt, tmdb)
	assert.Equal(t, once, twice)
}

func TestHasExternalID(t *testing.T) {
	assert.False(t, Show{}.HasExternalID())
	assert.True(t, Show{TraktID: 1}.HasExternalID())
	assert.True(t, Show{TmdbID: 1}.HasExternalID())
	assert.True(t, Show{ImdbID: "tt1"}.HasExternalID())
}
