package controllers

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/models"
	"github.com/amaumene/jellywatch/internal/services/tmdb"
)

var (
	// ErrItemNotFound is returned when an item ID matches nothing
	ErrItemNotFound = errors.New("item not found")
	// ErrDuplicateItem is returned when the TMDb ID is already on the watchlist
	ErrDuplicateItem = errors.New("item already exists in watchlist")
)

// AddRequest carries what the client knows about a title being added
type AddRequest struct {
	TMDBId      int              `json:"tmdb_id"`
	Title       string           `json:"title"`
	MediaType   models.MediaType `json:"media_type"`
	PosterPath  string           `json:"poster_path"`
	Overview    string           `json:"overview"`
	ReleaseDate string           `json:"release_date"`
}

// ListFilter narrows and orders a watchlist query
type ListFilter struct {
	MediaType    models.MediaType
	Watched      models.WatchedFilter
	Availability models.AvailabilityFilter
	Search       string
	Genres       []string // item must carry every listed genre ID
	Sort         models.SortOrder
}

// MetadataProvider is the slice of the TMDb client the watchlist needs
type MetadataProvider interface {
	GetDetails(ctx context.Context, tmdbID int, mediaType models.MediaType) (*tmdb.Details, error)
}

// WatchlistController owns watchlist CRUD, queue ordering and metadata
// enrichment. The reconciliation itself lives in SyncController.
type WatchlistController struct {
	db       *models.Database
	tmdb     MetadataProvider
	syncCtrl *SyncController
	logger   *logrus.Logger
}

// NewWatchlistController creates a new watchlist controller
func NewWatchlistController(db *models.Database, tmdbClient MetadataProvider, syncCtrl *SyncController, logger *logrus.Logger) *WatchlistController {
	return &WatchlistController{
		db:       db,
		tmdb:     tmdbClient,
		syncCtrl: syncCtrl,
		logger:   logger,
	}
}

// Add puts a new title on the watchlist. TMDb details and the ad-hoc
// Jellyfin availability probe are both best-effort: if either fails the
// item is still saved with defaults.
func (c *WatchlistController) Add(ctx context.Context, req AddRequest) (*models.Item, error) {
	if !req.MediaType.Valid() {
		return nil, errors.New("media_type must be movie or tv")
	}

	if _, err := c.db.GetItemByTMDBID(req.TMDBId); err == nil {
		return nil, ErrDuplicateItem
	}

	item := &models.Item{
		TMDBId:      req.TMDBId,
		MediaType:   req.MediaType,
		Title:       req.Title,
		PosterPath:  req.PosterPath,
		Overview:    req.Overview,
		ReleaseDate: req.ReleaseDate,
	}

	details, err := c.tmdb.GetDetails(ctx, req.TMDBId, req.MediaType)
	if err != nil {
		c.logger.WithError(err).WithField("title", req.Title).Warn("Failed to fetch TMDb details")
	} else {
		item.Genres = details.GenreIDs()
		item.Rating = details.Rating
		item.RuntimeMinutes = details.RuntimeMinutes
		item.OriginalLanguage = details.OriginalLanguage
	}

	c.syncCtrl.CheckNewItem(ctx, item)

	if err := c.db.CreateItem(item); err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"title":     item.Title,
		"type":      item.MediaType,
		"available": item.Available,
	}).Info("Added item to watchlist")
	return item, nil
}

// Remove deletes an item from the watchlist
func (c *WatchlistController) Remove(id uint64) error {
	if _, err := c.db.GetItemByID(id); err != nil {
		return ErrItemNotFound
	}
	return c.db.DeleteItem(id)
}

// ToggleWatched flips the watched flag by explicit user action and makes
// the override sticky: the background sync stops recomputing Watched for
// this item from now on.
func (c *WatchlistController) ToggleWatched(id uint64) (*models.Item, error) {
	item, err := c.db.GetItemByID(id)
	if err != nil {
		return nil, ErrItemNotFound
	}

	item.Watched = !item.Watched
	item.WatchedOverride = true
	if err := c.db.UpdateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// List returns watchlist items matching the filter, ordered per its sort
func (c *WatchlistController) List(filter ListFilter) ([]*models.Item, error) {
	all, err := c.db.GetAllItems()
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	items := make([]*models.Item, 0, len(all))
	for _, item := range all {
		if filter.MediaType.Valid() && item.MediaType != filter.MediaType {
			continue
		}
		if filter.Watched == models.FilterWatched && !item.Watched {
			continue
		}
		if filter.Watched == models.FilterUnwatched && item.Watched {
			continue
		}
		if filter.Availability == models.FilterAvailable && !item.Available {
			continue
		}
		if filter.Availability == models.FilterMissing && item.Available {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Title), search) {
			continue
		}
		if !hasAllGenres(item.Genres, filter.Genres) {
			continue
		}
		items = append(items, item)
	}

	sortItems(items, filter.Sort)
	return items, nil
}

// hasAllGenres reports whether the comma-separated genre list carries
// every wanted genre ID
func hasAllGenres(genres string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	have := make(map[string]bool)
	for _, id := range strings.Split(genres, ",") {
		have[strings.TrimSpace(id)] = true
	}
	for _, id := range wanted {
		if !have[strings.TrimSpace(id)] {
			return false
		}
	}
	return true
}

func sortItems(items []*models.Item, order models.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		switch order {
		case models.SortDateAsc:
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		case models.SortTitleAsc:
			return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
		case models.SortTitleDesc:
			return strings.ToLower(items[i].Title) > strings.ToLower(items[j].Title)
		default: // newest first
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
	})
}

// BackfillGenres fills in genre metadata for items added before genres
// were recorded. Per-item TMDb failures are counted and skipped.
func (c *WatchlistController) BackfillGenres(ctx context.Context) (updated, failed int, err error) {
	items, err := c.db.GetItemsWithoutGenres()
	if err != nil {
		return 0, 0, err
	}

	for _, item := range items {
		details, err := c.tmdb.GetDetails(ctx, item.TMDBId, item.MediaType)
		if err != nil {
			failed++
			c.logger.WithError(err).WithField("title", item.Title).Warn("Failed to backfill genres")
			continue
		}

		genres := details.GenreIDs()
		if genres == "" {
			continue
		}
		item.Genres = genres
		if err := c.db.UpdateItem(item); err != nil {
			failed++
			continue
		}
		updated++
	}

	if updated > 0 {
		c.logger.WithField("count", updated).Info("Backfilled genres")
	}
	return updated, failed, nil
}
