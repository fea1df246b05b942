package models

// MediaType represents the type of media (movie or tv show)
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// Valid reports whether the media type is one of the known values
func (m MediaType) Valid() bool {
	return m == MediaTypeMovie || m == MediaTypeTV
}

// SortOrder represents a watchlist sort order
type SortOrder string

const (
	SortDateAsc   SortOrder = "date_asc"
	SortDateDesc  SortOrder = "date_desc"
	SortTitleAsc  SortOrder = "title_asc"
	SortTitleDesc SortOrder = "title_desc"
)

// WatchedFilter narrows a watchlist query by watched status
type WatchedFilter string

const (
	FilterWatched   WatchedFilter = "watched"
	FilterUnwatched WatchedFilter = "unwatched"
)

// AvailabilityFilter narrows a watchlist query by library availability
type AvailabilityFilter string

const (
	FilterAvailable AvailabilityFilter = "available"
	FilterMissing   AvailabilityFilter = "missing"
)
