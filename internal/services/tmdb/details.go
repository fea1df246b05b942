package tmdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gocache "github.com/patrickmn/go-cache"

	"github.com/amaumene/jellywatch/internal/models"
)

// Genre is one TMDb genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Details holds the per-title metadata copied onto a watchlist item
type Details struct {
	Genres           []Genre
	RuntimeMinutes   int
	Rating           float64
	OriginalLanguage string
}

// GenreIDs returns the genre IDs as the comma-separated form stored on items
func (d *Details) GenreIDs() string {
	ids := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		if g.ID != 0 {
			ids = append(ids, strconv.Itoa(g.ID))
		}
	}
	return strings.Join(ids, ",")
}

type detailsPayload struct {
	Genres           []Genre `json:"genres"`
	Runtime          int     `json:"runtime"`          // movies
	EpisodeRunTime   []int   `json:"episode_run_time"` // tv
	VoteAverage      float64 `json:"vote_average"`
	OriginalLanguage string  `json:"original_language"`
}

// GetDetails fetches genres, runtime, rating and language for one title
func (c *Client) GetDetails(ctx context.Context, tmdbID int, mediaType models.MediaType) (*Details, error) {
	path := fmt.Sprintf("/movie/%d", tmdbID)
	if mediaType == models.MediaTypeTV {
		path = fmt.Sprintf("/tv/%d", tmdbID)
	}

	var payload detailsPayload
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to get details: %w", err)
	}

	runtime := payload.Runtime
	if runtime == 0 && len(payload.EpisodeRunTime) > 0 {
		runtime = payload.EpisodeRunTime[0]
	}

	return &Details{
		Genres:           payload.Genres,
		RuntimeMinutes:   runtime,
		Rating:           payload.VoteAverage,
		OriginalLanguage: payload.OriginalLanguage,
	}, nil
}

type genreListPayload struct {
	Genres []Genre `json:"genres"`
}

// GetGenreList fetches the TMDb genre taxonomy for one media type. The
// result is cached, the taxonomy changes essentially never.
func (c *Client) GetGenreList(ctx context.Context, mediaType models.MediaType) ([]Genre, error) {
	cacheKey := "genres:" + string(mediaType)
	if cached, ok := c.cache.Get(cacheKey); ok {
		return cached.([]Genre), nil
	}

	path := "/genre/movie/list"
	if mediaType == models.MediaTypeTV {
		path = "/genre/tv/list"
	}

	var payload genreListPayload
	if err := c.getJSON(ctx, path, nil, &payload); err != nil {
		return nil, fmt.Errorf("failed to get genre list: %w", err)
	}

	c.cache.Set(cacheKey, payload.Genres, gocache.DefaultExpiration)
	return payload.Genres, nil
}
