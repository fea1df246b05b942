package controllers

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/metrics"
	"github.com/amaumene/jellywatch/internal/models"
	"github.com/amaumene/jellywatch/internal/services/jellyfin"
)

// Store is the storage surface the sync engine needs
type Store interface {
	GetAllItems() ([]*models.Item, error)
	UpdateItem(item *models.Item) error
}

// Library is one session's view of the remote media library
type Library interface {
	FindMatch(ctx context.Context, tmdbID int, mediaType models.MediaType, title string) (*jellyfin.Match, error)
	IsWatched(ctx context.Context, match *jellyfin.Match, mediaType models.MediaType) (bool, error)
}

// Result aggregates the outcome of one reconciliation pass
type Result struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// SyncController reconciles watchlist items against the Jellyfin library
type SyncController struct {
	db          Store
	openLibrary func() Library
	logger      *logrus.Logger
}

// NewSyncController creates a new sync controller. openLibrary starts a
// library session scoped to one run, so no identity state leaks between
// unrelated passes.
func NewSyncController(db Store, openLibrary func() Library, logger *logrus.Logger) *SyncController {
	return &SyncController{
		db:          db,
		openLibrary: openLibrary,
		logger:      logger,
	}
}

// ReconcileOne resolves a single item against the library and returns a
// copy with Available, Watched and JellyfinID recomputed. Watched is left
// alone while the user override is set, including when nothing matches.
// On error the returned item is unchanged.
func (c *SyncController) ReconcileOne(ctx context.Context, lib Library, item *models.Item) (*models.Item, error) {
	updated := *item

	match, err := lib.FindMatch(ctx, item.TMDBId, item.MediaType, item.Title)
	if err != nil {
		return item, fmt.Errorf("match lookup failed: %w", err)
	}

	if match == nil {
		updated.Available = false
		updated.JellyfinID = ""
		if !updated.WatchedOverride {
			updated.Watched = false
		}
		return &updated, nil
	}

	updated.Available = true
	updated.JellyfinID = match.ID
	if !updated.WatchedOverride {
		watched, err := lib.IsWatched(ctx, match, item.MediaType)
		if err != nil {
			return item, fmt.Errorf("watched lookup failed: %w", err)
		}
		updated.Watched = watched
	}
	return &updated, nil
}

// SyncAll runs one full reconciliation pass: every item is resolved
// sequentially and persisted immediately, so a crash mid-run leaves the
// already-processed items updated. A failure on one item never aborts the
// rest; only a storage load failure kills the whole run.
func (c *SyncController) SyncAll(ctx context.Context) (Result, error) {
	c.logger.Info("Starting Jellyfin sync")
	start := time.Now()

	items, err := c.db.GetAllItems()
	if err != nil {
		metrics.SyncRuns.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("failed to load watchlist: %w", err)
	}

	lib := c.openLibrary()
	var result Result
	for _, item := range items {
		updated, err := c.ReconcileOne(ctx, lib, item)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"item_id": item.ID,
				"title":   item.Title,
			}).Warn("Skipping item")
			result.Skipped++
			continue
		}

		if err := c.db.UpdateItem(updated); err != nil {
			c.logger.WithError(err).WithField("item_id", item.ID).Error("Failed to save item")
			result.Skipped++
			continue
		}
		result.Processed++
	}

	metrics.SyncRuns.WithLabelValues("ok").Inc()
	metrics.ItemsProcessed.Add(float64(result.Processed))
	metrics.ItemsSkipped.Add(float64(result.Skipped))
	metrics.SyncDuration.Observe(time.Since(start).Seconds())

	c.logger.WithFields(logrus.Fields{
		"processed": result.Processed,
		"skipped":   result.Skipped,
		"duration":  time.Since(start).Round(time.Millisecond),
	}).Info("Jellyfin sync completed")
	return result, nil
}

// CheckNewItem probes the library for a just-added item and fills in its
// availability, watched state and Jellyfin ID. Failures are tolerated;
// the item keeps its defaults and the add still succeeds.
func (c *SyncController) CheckNewItem(ctx context.Context, item *models.Item) {
	lib := c.openLibrary()
	updated, err := c.ReconcileOne(ctx, lib, item)
	if err != nil {
		c.logger.WithError(err).WithField("title", item.Title).Warn("Could not verify availability for new item")
		return
	}

	item.Available = updated.Available
	item.Watched = updated.Watched
	item.JellyfinID = updated.JellyfinID
}
