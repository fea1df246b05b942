package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/controllers"
)

// SyncHandler exposes the on-demand reconciliation trigger
type SyncHandler struct {
	syncCtrl *controllers.SyncController
	logger   *logrus.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(syncCtrl *controllers.SyncController, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{syncCtrl: syncCtrl, logger: logger}
}

// Trigger handles POST /api/sync: runs a full reconciliation pass
// synchronously and returns the counts
func (h *SyncHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	result, err := h.syncCtrl.SyncAll(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("On-demand sync failed")
		writeError(w, http.StatusInternalServerError, "Sync failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
