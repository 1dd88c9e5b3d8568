package models

import "time"

// Season is a season of a show.
type Season struct {
	ID           uint64 `boltholdKey:"ID"`
	ShowID       uint64 `boltholdIndex:"ShowID"`
	TraktID      int64  `boltholdIndex:"TraktID"`
	Number       int
	Title        *string
	Summary      *string
	EpisodeCount int
}

// Episode is a single episode of a season.
type Episode struct {
	ID         uint64 `boltholdKey:"ID"`
	SeasonID   uint64 `boltholdIndex:"SeasonID"`
	TraktID    int64  `boltholdIndex:"TraktID"`
	Number     int
	Title      *string
	Summary    *string
	FirstAired *time.Time
}

// EpisodeWatch records a single watch of an episode, mirrored from the
// remote tracking service. TraktID is the remote history entry ID and is the
// reconciliation key for diff syncs.
type EpisodeWatch struct {
	ID        uint64 `boltholdKey:"ID"`
	EpisodeID uint64 `boltholdIndex:"EpisodeID"`
	ShowID    uint64 `boltholdIndex:"ShowID"`
	TraktID   int64  `boltholdIndex:"TraktID"`
	WatchedAt time.Time
}

// SeasonWithEpisodes pairs a season with its episodes.
type SeasonWithEpisodes struct {
	Season   Season
	Episodes []Episode
}
