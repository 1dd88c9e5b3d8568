package models

import "time"

// TrendingEntry associates a show with a page of the trending collection.
type TrendingEntry struct {
	ID        uint64 `boltholdKey:"ID"`
	ShowID    uint64 `boltholdIndex:"ShowID"`
	Page      int    `boltholdIndex:"Page"`
	PageOrder int
	Watchers  int
}

// PopularEntry associates a show with a page of the popular collection.
type PopularEntry struct {
	ID        uint64 `boltholdKey:"ID"`
	ShowID    uint64 `boltholdIndex:"ShowID"`
	Page      int    `boltholdIndex:"Page"`
	PageOrder int
}

// AnticipatedEntry associates a show with a page of the anticipated collection.
type AnticipatedEntry struct {
	ID        uint64 `boltholdKey:"ID"`
	ShowID    uint64 `boltholdIndex:"ShowID"`
	Page      int    `boltholdIndex:"Page"`
	PageOrder int
	ListCount int
}

// RecommendedEntry associates a show with a page of the personalised
// recommendations collection.
type RecommendedEntry struct {
	ID        uint64 `boltholdKey:"ID"`
	ShowID    uint64 `boltholdIndex:"ShowID"`
	Page      int    `boltholdIndex:"Page"`
	PageOrder int
}

// RelatedEntry links a show to another show related to it. The collection is
// keyed by ShowID; OrderIndex preserves the order returned by the provider.
type RelatedEntry struct {
	ID            uint64 `boltholdKey:"ID"`
	ShowID        uint64 `boltholdIndex:"ShowID"`
	RelatedShowID uint64
	OrderIndex    int
}

// WatchedEntry records that the user has watched a show. The collection is
// global (unpaginated) and fully authoritative on each sync.
type WatchedEntry struct {
	ID          uint64 `boltholdKey:"ID"`
	ShowID      uint64 `boltholdIndex:"ShowID"`
	LastWatched time.Time
	Plays       int
}

// FollowedEntry records that the user follows a show.
type FollowedEntry struct {
	ID         uint64 `boltholdKey:"ID"`
	ShowID     uint64 `boltholdIndex:"ShowID"`
	FollowedAt time.Time
}

// ImageKind classifies a show image.
type ImageKind string

const (
	ImageKindPoster   ImageKind = "poster"
	ImageKindBackdrop ImageKind = "backdrop"
)

// ShowImage is a single piece of artwork for a show, sourced from TMDb.
type ShowImage struct {
	ID       uint64 `boltholdKey:"ID"`
	ShowID   uint64 `boltholdIndex:"ShowID"`
	Kind     ImageKind
	Path     string
	Language string
	Rating   float64
}

// EntryWithShow pairs a collection entry with its resolved show row.
type EntryWithShow[E any] struct {
	Entry E
	Show  Show
}
