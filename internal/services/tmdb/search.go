package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/amaumene/jellywatch/internal/models"
)

// CatalogHit is one normalized search result from TMDb
type CatalogHit struct {
	TMDBId      int              `json:"tmdb_id"`
	Title       string           `json:"title"`
	MediaType   models.MediaType `json:"media_type"`
	PosterPath  string           `json:"poster_path"`
	Overview    string           `json:"overview"`
	ReleaseDate string           `json:"release_date"`
	Year        string           `json:"year"`
}

// searchResult is the raw TMDb search payload, shared between the movie
// and tv endpoints (title/release_date vs name/first_air_date)
type searchResult struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Name         string  `json:"name"`
	Overview     string  `json:"overview"`
	PosterPath   string  `json:"poster_path"`
	ReleaseDate  string  `json:"release_date"`
	FirstAirDate string  `json:"first_air_date"`
	VoteAverage  float64 `json:"vote_average"`
}

type searchPage struct {
	Results []searchResult `json:"results"`
}

func (r searchResult) toHit(mediaType models.MediaType) CatalogHit {
	title := r.Title
	release := r.ReleaseDate
	if mediaType == models.MediaTypeTV {
		title = r.Name
		release = r.FirstAirDate
	}

	year := ""
	if len(release) >= 4 {
		year = release[:4]
	}

	return CatalogHit{
		TMDBId:      r.ID,
		Title:       title,
		MediaType:   mediaType,
		PosterPath:  PosterURL(r.PosterPath),
		Overview:    r.Overview,
		ReleaseDate: release,
		Year:        year,
	}
}

// searchKind queries one of the TMDb search endpoints
func (c *Client) searchKind(ctx context.Context, query string, mediaType models.MediaType) ([]CatalogHit, error) {
	path := "/search/movie"
	if mediaType == models.MediaTypeTV {
		path = "/search/tv"
	}

	params := url.Values{}
	params.Set("query", query)

	var page searchPage
	if err := c.getJSON(ctx, path, params, &page); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	hits := make([]CatalogHit, 0, len(page.Results))
	for _, r := range page.Results {
		hits = append(hits, r.toHit(mediaType))
	}
	return hits, nil
}

// Search queries TMDb for the given text. With an empty kind both the
// movie and tv endpoints are queried concurrently (independent read-only
// lookups) and the results concatenated, movies first.
func (c *Client) Search(ctx context.Context, query string, kind models.MediaType) ([]CatalogHit, error) {
	if kind.Valid() {
		return c.searchKind(ctx, query, kind)
	}

	var (
		wg              sync.WaitGroup
		movies, shows   []CatalogHit
		movieErr, tvErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		movies, movieErr = c.searchKind(ctx, query, models.MediaTypeMovie)
	}()
	go func() {
		defer wg.Done()
		shows, tvErr = c.searchKind(ctx, query, models.MediaTypeTV)
	}()
	wg.Wait()

	if movieErr != nil {
		return nil, movieErr
	}
	if tvErr != nil {
		return nil, tvErr
	}
	return append(movies, shows...), nil
}
