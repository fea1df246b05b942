package jellyfin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/amaumene/jellywatch/internal/models"
	"github.com/amaumene/jellywatch/internal/utils"
)

const pageSize = 200

// Session scopes one logical run against the library (one full sync pass,
// or one ad-hoc check for a newly added item). It memoizes the resolved
// user ID so unrelated runs never share identity state.
type Session struct {
	c            *Client
	userID       string
	userResolved bool
}

// NewSession starts a fresh session against the library
func (c *Client) NewSession() *Session {
	return &Session{c: c}
}

// resolveUser resolves the Jellyfin user whose playback state is checked.
// The preferred username from config wins when present, otherwise the
// first account is used. The result is memoized for the session.
func (s *Session) resolveUser(ctx context.Context) string {
	if s.userResolved {
		return s.userID
	}

	var users []user
	if err := s.c.getJSON(ctx, "/Users", nil, &users); err != nil {
		s.c.logger.WithError(err).Warn("Failed to list Jellyfin users")
		return ""
	}
	if len(users) == 0 {
		s.c.logger.Warn("Jellyfin reports no users")
		return ""
	}

	selected := users[0]
	if s.c.username != "" {
		found := false
		for _, u := range users {
			if strings.EqualFold(u.Name, s.c.username) {
				selected = u
				found = true
				break
			}
		}
		if !found {
			s.c.logger.WithField("username", s.c.username).Warn("Preferred Jellyfin user not found, using first account")
		}
	}

	s.c.logger.WithFields(logrus.Fields{
		"user":    selected.Name,
		"user_id": selected.ID,
	}).Debug("Resolved Jellyfin user")

	s.userID = selected.ID
	s.userResolved = true
	return s.userID
}

// ListAll fetches the full movie and series catalog, paginating until the
// reported total is reached or a page comes back empty. A transport
// failure degrades to whatever was collected so far (possibly nothing);
// callers treat that as "no items this attempt", not as a fatal error.
func (s *Session) ListAll(ctx context.Context) []LibraryItem {
	params := url.Values{}
	params.Set("Recursive", "true")
	params.Set("IncludeItemTypes", "Movie,Series")
	params.Set("Fields", "ProviderIds,UserData")
	if userID := s.resolveUser(ctx); userID != "" {
		params.Set("UserId", userID)
	}

	var all []LibraryItem
	for start := 0; ; start += pageSize {
		params.Set("StartIndex", strconv.Itoa(start))
		params.Set("Limit", strconv.Itoa(pageSize))

		var page itemsPage
		if err := s.c.getJSON(ctx, "/Items", params, &page); err != nil {
			s.c.logger.WithError(err).Warn("Failed to fetch Jellyfin library page")
			return all
		}

		all = append(all, page.Items...)
		if len(all) >= page.TotalRecordCount || len(page.Items) == 0 {
			break
		}
	}

	s.c.logger.WithField("count", len(all)).Debug("Fetched Jellyfin library")
	return all
}

// jellyfinType maps a watchlist media type onto the Jellyfin item type
func jellyfinType(mediaType models.MediaType) string {
	if mediaType == models.MediaTypeMovie {
		return "Movie"
	}
	return "Series"
}

// FindMatch resolves a watchlist entry against the library. Provider-ID
// matching wins outright; a normalized-title fallback (exact preferred
// over substring, first encountered wins in each class) catches items
// whose metadata is missing the TMDb ID. Returns nil when nothing matches.
func (s *Session) FindMatch(ctx context.Context, tmdbID int, mediaType models.MediaType, title string) (*Match, error) {
	items := s.ListAll(ctx)
	wantType := jellyfinType(mediaType)
	wantTitle := utils.NormalizeTitle(title)

	var exact, partial *LibraryItem
	for i := range items {
		item := &items[i]
		if item.Type != wantType {
			continue
		}

		if value, ok := item.ProviderIds.TMDB(); ok && MatchesTMDBID(value, tmdbID) {
			s.c.logger.WithFields(logrus.Fields{
				"title":   item.Name,
				"tmdb_id": tmdbID,
			}).Debug("Matched library item by TMDb ID")
			return &Match{ID: item.ID, Item: item}, nil
		}

		if wantTitle == "" {
			continue
		}
		name := utils.NormalizeTitle(item.Name)
		switch {
		case name == wantTitle:
			if exact == nil {
				exact = item
			}
		case strings.Contains(name, wantTitle) || strings.Contains(wantTitle, name):
			if partial == nil {
				partial = item
			}
		}
	}

	fallback := exact
	if fallback == nil {
		fallback = partial
	}
	if fallback != nil {
		s.c.logger.WithFields(logrus.Fields{
			"title":   fallback.Name,
			"wanted":  title,
			"exact":   exact != nil,
			"tmdb_id": tmdbID,
		}).Debug("Matched library item by title fallback")
		return &Match{ID: fallback.ID, Item: fallback}, nil
	}

	s.c.logger.WithFields(logrus.Fields{
		"tmdb_id": tmdbID,
		"type":    mediaType,
	}).Debug("No library item matched")
	return nil, nil
}

// IsWatched derives a watched boolean for a matched item. Movies count as
// watched when any playback signal is present; a series counts as watched
// when its own played flag is set, or every one of its episodes is played
// and at least one episode exists.
func (s *Session) IsWatched(ctx context.Context, match *Match, mediaType models.MediaType) (bool, error) {
	if match == nil {
		return false, nil
	}

	userData := s.fetchUserData(ctx, match)
	if userData == nil {
		return false, nil
	}

	if mediaType == models.MediaTypeMovie {
		return movieWatched(userData), nil
	}
	return s.seriesWatched(ctx, match, userData), nil
}

// fetchUserData fetches fresh per-item user state, falling back to the
// payload embedded in the listing when the fetch fails. The listing may
// omit user state entirely, which is why a fresh fetch is preferred.
func (s *Session) fetchUserData(ctx context.Context, match *Match) *UserData {
	params := url.Values{}
	params.Set("Fields", "UserData")
	if userID := s.resolveUser(ctx); userID != "" {
		params.Set("UserId", userID)
	}

	var fresh LibraryItem
	err := s.c.getJSON(ctx, fmt.Sprintf("/Items/%s", match.ID), params, &fresh)
	if err == nil && fresh.UserData != nil {
		return fresh.UserData
	}
	if err != nil {
		s.c.logger.WithError(err).WithField("item_id", match.ID).Debug("Per-item fetch failed, using listing payload")
	}
	return match.Item.UserData
}

func movieWatched(ud *UserData) bool {
	return ud.Played || ud.PlayCount > 0 || ud.PlayedPercentage >= 100 || ud.LastPlayedDate != nil
}

// seriesWatched checks the series-level played flag, then falls back to
// walking the episode list. Any failure fetching episodes degrades to the
// series-level flag.
func (s *Session) seriesWatched(ctx context.Context, match *Match, ud *UserData) bool {
	if ud.Played {
		return true
	}

	params := url.Values{}
	params.Set("Fields", "UserData")
	if userID := s.resolveUser(ctx); userID != "" {
		params.Set("UserId", userID)
	}

	var episodes itemsPage
	if err := s.c.getJSON(ctx, fmt.Sprintf("/Shows/%s/Episodes", match.ID), params, &episodes); err != nil {
		s.c.logger.WithError(err).WithField("series_id", match.ID).Debug("Episode fetch failed, using series flag")
		return ud.Played
	}
	if len(episodes.Items) == 0 {
		return false
	}

	for _, episode := range episodes.Items {
		if episode.UserData == nil || !episode.UserData.Played {
			return false
		}
	}
	return true
}
