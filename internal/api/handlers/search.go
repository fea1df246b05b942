package handlers

import (
	"net/http"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/models"
	"github.com/amaumene/jellywatch/internal/services/tmdb"
)

const maxSearchResults = 20

// SearchHandler serves TMDb metadata lookups
type SearchHandler struct {
	tmdb   *tmdb.Client
	logger *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(tmdbClient *tmdb.Client, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{tmdb: tmdbClient, logger: logger}
}

// Search handles GET /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}
	kind := models.MediaType(r.URL.Query().Get("type"))

	hits, err := h.tmdb.Search(r.Context(), query, kind)
	if err != nil {
		h.logger.WithError(err).WithField("query", query).Error("TMDb search failed")
		writeError(w, http.StatusBadGateway, "Error searching TMDb")
		return
	}

	if len(hits) > maxSearchResults {
		hits = hits[:maxSearchResults]
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": hits,
		"query":   query,
	})
}

// Genres handles GET /api/genres, merging the movie and tv taxonomies
func (h *SearchHandler) Genres(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("media_type")

	var genres []tmdb.Genre
	seen := make(map[int]bool)
	add := func(list []tmdb.Genre) {
		for _, g := range list {
			if !seen[g.ID] {
				seen[g.ID] = true
				genres = append(genres, g)
			}
		}
	}

	if kind == "" || kind == "all" || kind == string(models.MediaTypeMovie) {
		list, err := h.tmdb.GetGenreList(r.Context(), models.MediaTypeMovie)
		if err != nil {
			h.logger.WithError(err).Error("Failed to fetch movie genres")
			writeError(w, http.StatusBadGateway, "Error fetching genres")
			return
		}
		add(list)
	}
	if kind == "" || kind == "all" || kind == string(models.MediaTypeTV) {
		list, err := h.tmdb.GetGenreList(r.Context(), models.MediaTypeTV)
		if err != nil {
			h.logger.WithError(err).Error("Failed to fetch tv genres")
			writeError(w, http.StatusBadGateway, "Error fetching genres")
			return
		}
		add(list)
	}

	sort.Slice(genres, func(i, j int) bool { return genres[i].Name < genres[j].Name })
	writeJSON(w, http.StatusOK, map[string]interface{}{"genres": genres})
}
