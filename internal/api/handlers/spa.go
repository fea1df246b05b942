package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// SPAHandler serves the built frontend: real files when they exist,
// index.html for everything else so client-side routing works
type SPAHandler struct {
	webDir string
	logger *logrus.Logger
}

// NewSPAHandler creates a new SPA handler
func NewSPAHandler(webDir string, logger *logrus.Logger) *SPAHandler {
	return &SPAHandler{webDir: webDir, logger: logger}
}

// ServeHTTP serves static files with an index.html fallback
func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	// Reject path traversal before touching the filesystem
	path := filepath.Clean(strings.TrimPrefix(r.URL.Path, "/"))
	if path == ".." || strings.HasPrefix(path, "../") {
		writeError(w, http.StatusBadRequest, "Invalid path")
		return
	}

	if path != "." {
		candidate := filepath.Join(h.webDir, path)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			http.ServeFile(w, r, candidate)
			return
		}
	}

	index := filepath.Join(h.webDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		h.logger.WithField("web_dir", h.webDir).Debug("Frontend build not found")
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Frontend not built. Run the frontend build and point WEB_DIR at the output.",
		})
		return
	}

	// index.html must never be cached, or deploys go stale
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
	http.ServeFile(w, r, index)
}
