package jellyfin

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ProviderIDs holds the external-ID map of a library item. Jellyfin emits
// the values as strings, but some metadata pickers have written numbers in
// the past, so decoding accepts both and normalizes to text.
type ProviderIDs map[string]string

// UnmarshalJSON decodes the provider map tolerating numeric values
func (p *ProviderIDs) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	ids := make(ProviderIDs, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			ids[key] = s
			continue
		}
		var n json.Number
		if err := json.Unmarshal(value, &n); err == nil {
			ids[key] = n.String()
		}
	}
	*p = ids
	return nil
}

// tmdbProviderKeys are the field-name spellings under which Jellyfin has
// been observed to store the TMDb ID
var tmdbProviderKeys = []string{"Tmdb", "TheMovieDb", "tmdb", "TMDB"}

// TMDB returns the TMDb ID value, if present under any known spelling
func (p ProviderIDs) TMDB() (string, bool) {
	for _, key := range tmdbProviderKeys {
		if value, ok := p[key]; ok {
			return value, true
		}
	}
	return "", false
}

// MatchesTMDBID reports whether a provider-ID value refers to the given
// TMDb ID, comparing both as text and as integer
func MatchesTMDBID(value string, tmdbID int) bool {
	value = strings.TrimSpace(value)
	if value == strconv.Itoa(tmdbID) {
		return true
	}
	if n, err := strconv.Atoi(value); err == nil {
		return n == tmdbID
	}
	return false
}

// UserData is the per-user playback state Jellyfin attaches to an item
type UserData struct {
	Played           bool    `json:"Played"`
	PlayCount        int     `json:"PlayCount"`
	PlayedPercentage float64 `json:"PlayedPercentage"`
	LastPlayedDate   *string `json:"LastPlayedDate"`
}

// LibraryItem represents one movie, series or episode from the Jellyfin API
type LibraryItem struct {
	ID          string      `json:"Id"`
	Name        string      `json:"Name"`
	Type        string      `json:"Type"` // "Movie", "Series", "Episode"
	ProviderIds ProviderIDs `json:"ProviderIds"`
	UserData    *UserData   `json:"UserData"`
}

// itemsPage is one page of a paginated /Items response
type itemsPage struct {
	Items            []LibraryItem `json:"Items"`
	TotalRecordCount int           `json:"TotalRecordCount"`
}

// user is a Jellyfin account as returned by /Users
type user struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// Match is the result of resolving one watchlist item against the library
type Match struct {
	ID   string       // Jellyfin item ID, used for direct linking
	Item *LibraryItem // listing payload, including embedded UserData if any
}

func (m *Match) String() string {
	if m == nil {
		return "<no match>"
	}
	return fmt.Sprintf("%s (%s)", m.Item.Name, m.ID)
}
