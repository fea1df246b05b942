package models

import "time"

// Item represents one watchlist entry, added from TMDb and reconciled
// against the Jellyfin library by the background sync
type Item struct {
	ID     uint64 `boltholdKey:"ID"`
	TMDBId int    `boltholdUnique:"TMDBId"` // TMDb ID, unique per item

	MediaType MediaType // "movie" or "tv"
	Title     string

	// Metadata copied from TMDb at creation time
	PosterPath       string
	Overview         string
	ReleaseDate      string
	Genres           string // comma-separated TMDb genre IDs
	Rating           float64
	RuntimeMinutes   int
	OriginalLanguage string

	// Reconciliation state, owned by the sync engine
	Available  bool
	Watched    bool
	JellyfinID string // matched Jellyfin item ID, "" when unmatched

	// Set once the user manually toggles Watched; the sync never
	// recomputes Watched while this is true, and never clears it
	WatchedOverride bool

	// Queue position, nil when not queued
	QueueOrder *int `boltholdIndex:"QueueOrder"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
