package handlers

import (
	"net/http"
	"strings"

	"github.com/amaumene/jellywatch/internal/config"
)

// ConfigHandler exposes the small piece of configuration the frontend needs
type ConfigHandler struct {
	jellyfinURL string
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(cfg *config.Config) *ConfigHandler {
	return &ConfigHandler{
		jellyfinURL: strings.TrimRight(cfg.JellyfinURL, "/"),
	}
}

// ServeHTTP handles the frontend config endpoint
func (h *ConfigHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"jellyfin_base_url": h.jellyfinURL,
	})
}
