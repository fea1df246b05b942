package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/controllers"
	"github.com/amaumene/jellywatch/internal/models"
)

// WatchlistHandler handles watchlist CRUD and queue requests
type WatchlistHandler struct {
	ctrl   *controllers.WatchlistController
	logger *logrus.Logger
}

// NewWatchlistHandler creates a new watchlist handler
func NewWatchlistHandler(ctrl *controllers.WatchlistController, logger *logrus.Logger) *WatchlistHandler {
	return &WatchlistHandler{ctrl: ctrl, logger: logger}
}

// ItemResponse is the wire shape of a watchlist item
type ItemResponse struct {
	ID               uint64  `json:"id"`
	Title            string  `json:"title"`
	MediaType        string  `json:"media_type"`
	TMDBId           int     `json:"tmdb_id"`
	PosterPath       string  `json:"poster_path,omitempty"`
	Overview         string  `json:"overview,omitempty"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	Genres           string  `json:"genres,omitempty"`
	Rating           float64 `json:"rating,omitempty"`
	RuntimeMinutes   int     `json:"runtime_minutes,omitempty"`
	OriginalLanguage string  `json:"original_language,omitempty"`
	IsAvailable      bool    `json:"is_available"`
	IsWatched        bool    `json:"is_watched"`
	WatchedOverride  bool    `json:"watched_manually_set"`
	QueueOrder       *int    `json:"queue_order"`
	JellyfinItemID   string  `json:"jellyfin_item_id,omitempty"`
	CreatedAt        string  `json:"created_at,omitempty"`
	UpdatedAt        string  `json:"updated_at,omitempty"`
}

func toItemResponse(item *models.Item) ItemResponse {
	resp := ItemResponse{
		ID:               item.ID,
		Title:            item.Title,
		MediaType:        string(item.MediaType),
		TMDBId:           item.TMDBId,
		PosterPath:       item.PosterPath,
		Overview:         item.Overview,
		ReleaseDate:      item.ReleaseDate,
		Genres:           item.Genres,
		Rating:           item.Rating,
		RuntimeMinutes:   item.RuntimeMinutes,
		OriginalLanguage: item.OriginalLanguage,
		IsAvailable:      item.Available,
		IsWatched:        item.Watched,
		WatchedOverride:  item.WatchedOverride,
		QueueOrder:       item.QueueOrder,
		JellyfinItemID:   item.JellyfinID,
	}
	if !item.CreatedAt.IsZero() {
		resp.CreatedAt = item.CreatedAt.Format(time.RFC3339)
	}
	if !item.UpdatedAt.IsZero() {
		resp.UpdatedAt = item.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}

func toItemList(items []*models.Item) map[string]interface{} {
	responses := make([]ItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, toItemResponse(item))
	}
	return map[string]interface{}{
		"items": responses,
		"count": len(responses),
	}
}

// List handles GET /api/watchlist
func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := controllers.ListFilter{
		MediaType:    models.MediaType(q.Get("media_type")),
		Watched:      models.WatchedFilter(q.Get("watched")),
		Availability: models.AvailabilityFilter(q.Get("availability")),
		Search:       q.Get("search"),
		Sort:         models.SortOrder(q.Get("sort")),
	}
	if genres := q.Get("genres"); genres != "" {
		for _, id := range strings.Split(genres, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.Genres = append(filter.Genres, id)
			}
		}
	}

	items, err := h.ctrl.List(filter)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list watchlist")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toItemList(items))
}

// Add handles POST /api/watchlist
func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req controllers.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.ctrl.Add(r.Context(), req)
	if err != nil {
		if errors.Is(err, controllers.ErrDuplicateItem) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to add item")
		writeError(w, http.StatusInternalServerError, "Error adding item")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

func itemID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(r.PathValue("id"), 10, 64)
}

// Remove handles DELETE /api/watchlist/{id}
func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	if err := h.ctrl.Remove(id); err != nil {
		if errors.Is(err, controllers.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.WithError(err).Error("Failed to remove item")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Item removed successfully"})
}

// ToggleWatched handles POST /api/watchlist/{id}/toggle-watched
func (h *WatchlistHandler) ToggleWatched(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.ctrl.ToggleWatched(id)
	if err != nil {
		if errors.Is(err, controllers.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.WithError(err).Error("Failed to toggle watched")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// BackfillGenres handles POST /api/watchlist/backfill-genres
func (h *WatchlistHandler) BackfillGenres(w http.ResponseWriter, r *http.Request) {
	updated, failed, err := h.ctrl.BackfillGenres(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to backfill genres")
		writeError(w, http.StatusInternalServerError, "Error backfilling genres")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"updated": updated,
		"errors":  failed,
	})
}

// Queue handles GET /api/watchlist/queue
func (h *WatchlistHandler) Queue(w http.ResponseWriter, r *http.Request) {
	items, err := h.ctrl.Queue()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list queue")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toItemList(items))
}

// AddToQueue handles POST /api/watchlist/{id}/add-to-queue
func (h *WatchlistHandler) AddToQueue(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.ctrl.AddToQueue(id)
	if err != nil {
		if errors.Is(err, controllers.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.WithError(err).Error("Failed to queue item")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

// RemoveFromQueue handles POST /api/watchlist/{id}/remove-from-queue
func (h *WatchlistHandler) RemoveFromQueue(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid item ID")
		return
	}

	item, err := h.ctrl.RemoveFromQueue(id)
	if err != nil {
		if errors.Is(err, controllers.ErrItemNotFound) {
			writeError(w, http.StatusNotFound, "Item not found")
			return
		}
		h.logger.WithError(err).Error("Failed to unqueue item")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	writeJSON(w, http.StatusOK, toItemResponse(item))
}

type reorderRequest struct {
	ItemOrders map[string]int `json:"item_orders"`
}

// ReorderQueue handles POST /api/watchlist/reorder-queue
func (h *WatchlistHandler) ReorderQueue(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	orders := make(map[uint64]int, len(req.ItemOrders))
	for rawID, order := range req.ItemOrders {
		id, err := strconv.ParseUint(rawID, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid item ID in item_orders")
			return
		}
		orders[id] = order
	}

	if err := h.ctrl.ReorderQueue(orders); err != nil {
		h.logger.WithError(err).Error("Failed to reorder queue")
		writeError(w, http.StatusInternalServerError, "Error reordering queue")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Queue reordered successfully"})
}
