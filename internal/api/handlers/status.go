package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/models"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalItems  int            `json:"total_items"`
	Available   int            `json:"available"`
	Missing     int            `json:"missing"`
	Watched     int            `json:"watched"`
	Overridden  int            `json:"watched_overridden"`
	Queued      int            `json:"queued"`
	ItemsByType map[string]int `json:"items_by_type"`
}

// ServeHTTP handles the status endpoint
func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	items, err := h.db.GetAllItems()
	if err != nil {
		h.logger.WithError(err).Error("Failed to get items")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response := StatusResponse{
		TotalItems:  len(items),
		ItemsByType: make(map[string]int),
	}

	for _, item := range items {
		if item.Available {
			response.Available++
		} else {
			response.Missing++
		}
		if item.Watched {
			response.Watched++
		}
		if item.WatchedOverride {
			response.Overridden++
		}
		if item.QueueOrder != nil {
			response.Queued++
		}
		response.ItemsByType[string(item.MediaType)]++
	}

	writeJSON(w, http.StatusOK, response)
}
