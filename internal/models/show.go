package models

import "time"

// Show represents a TV show known locally. A show row may start life as a
// placeholder carrying only external IDs and a title, and is enriched in place
// once the full metadata has been fetched.
type Show struct {
	ID uint64 `boltholdKey:"ID"`

	// External identifiers. Zero values mean "unknown".
	TraktID int64  `boltholdIndex:"TraktID"`
	TmdbID  int64  `boltholdIndex:"TmdbID"`
	ImdbID  string `boltholdIndex:"ImdbID"`

	// Metadata. Nil means the provider has not supplied a value yet.
	Title         *string
	Summary       *string
	Homepage      *string
	Network       *string
	Certification *string
	Runtime       *int
	Country       *string
	FirstAired    *time.Time
	Genres        []string

	// Trakt specific fields
	TraktRating *float64
	TraktVotes  *int

	// TMDb specific fields
	TmdbPosterPath   *string
	TmdbBackdropPath *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasExternalID reports whether the show carries at least one external
// identifier and can therefore be matched against remote data.
func (s Show) HasExternalID() bool {
	return s.TraktID != 0 || s.TmdbID != 0 || s.ImdbID != ""
}

// MergeShows merges freshly fetched provider data into a local show.
// Trakt values win for show metadata, TMDb values win for artwork and for the
// TMDb ID itself; anything the providers left unset keeps the local value.
// The merge is idempotent: merging a show with itself yields the same show.
func MergeShows(local, trakt, tmdb Show) Show {
	merged := local

	merged.Title = pickString(trakt.Title, local.Title)
	merged.Summary = pickString(trakt.Summary, local.Summary)
	merged.Homepage = pickString(trakt.Homepage, local.Homepage)
	merged.Network = pickString(trakt.Network, local.Network)
	merged.Certification = pickString(trakt.Certification, local.Certification)
	merged.Runtime = pickInt(trakt.Runtime, local.Runtime)
	merged.Country = pickString(trakt.Country, local.Country)
	merged.FirstAired = pickTime(trakt.FirstAired, local.FirstAired)
	if trakt.Genres != nil {
		merged.Genres = trakt.Genres
	}

	if trakt.TraktID != 0 {
		merged.TraktID = trakt.TraktID
	}
	if trakt.ImdbID != "" {
		merged.ImdbID = trakt.ImdbID
	}
	merged.TraktRating = pickFloat(trakt.TraktRating, local.TraktRating)
	merged.TraktVotes = pickInt(trakt.TraktVotes, local.TraktVotes)

	switch {
	case tmdb.TmdbID != 0:
		merged.TmdbID = tmdb.TmdbID
	case trakt.TmdbID != 0:
		merged.TmdbID = trakt.TmdbID
	}
	merged.TmdbPosterPath = pickString(tmdb.TmdbPosterPath, local.TmdbPosterPath)
	merged.TmdbBackdropPath = pickString(tmdb.TmdbBackdropPath, local.TmdbBackdropPath)

	return merged
}

func pickString(remote, local *string) *string {
	if remote != nil {
		return remote
	}
	return local
}

func pickInt(remote, local *int) *int {
	if remote != nil {
		return remote
	}
	return local
}

func pickFloat(remote, local *float64) *float64 {
	if remote != nil {
		return remote
	}
	return local
}

func pickTime(remote, local *time.Time) *time.Time {
	if remote != nil {
		return remote
	}
	return local
}
