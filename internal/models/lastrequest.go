package models

import "time"

// RequestKind names a class of remote request tracked by the last-request
// ledger.
type RequestKind string

const (
	RequestTrendingShows    RequestKind = "trending_shows"
	RequestPopularShows     RequestKind = "popular_shows"
	RequestAnticipatedShows RequestKind = "anticipated_shows"
	RequestRecommendedShows RequestKind = "recommended_shows"
	RequestRelatedShows     RequestKind = "related_shows"
	RequestWatchedShows     RequestKind = "watched_shows"
	RequestFollowedShows    RequestKind = "followed_shows"
	RequestShowDetails      RequestKind = "show_details"
	RequestShowImages       RequestKind = "show_images"
	RequestShowSeasons      RequestKind = "show_seasons"
	RequestEpisodeWatches   RequestKind = "episode_watches"
)

// GlobalEntityID is the sentinel entity ID used by ledger records for
// collections that are not scoped to a single entity.
const GlobalEntityID uint64 = 0

// LastRequest records when a remote resource was last fetched successfully.
// One row exists per (Kind, EntityID) pair; writes are last-write-wins.
type LastRequest struct {
	ID        uint64      `boltholdKey:"ID"`
	Kind      RequestKind `boltholdIndex:"Kind"`
	EntityID  uint64
	Timestamp time.Time
}
