package controllers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/amaumene/jellywatch/internal/models"
	"github.com/amaumene/jellywatch/internal/services/tmdb"
)

// fakeMetadata serves canned TMDb details per ID
type fakeMetadata struct {
	details map[int]*tmdb.Details
	err     error
	calls   int
}

func (f *fakeMetadata) GetDetails(ctx context.Context, tmdbID int, mediaType models.MediaType) (*tmdb.Details, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if d, ok := f.details[tmdbID]; ok {
		return d, nil
	}
	return &tmdb.Details{}, nil
}

func newTestDatabase(t *testing.T) *models.Database {
	t.Helper()
	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "watchlist.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestControllers(t *testing.T, db *models.Database, meta MetadataProvider, lib Library) *WatchlistController {
	t.Helper()
	if meta == nil {
		meta = &fakeMetadata{}
	}
	if lib == nil {
		lib = &fakeLibrary{}
	}
	syncCtrl := NewSyncController(db, func() Library { return lib }, testLogger())
	return NewWatchlistController(db, meta, syncCtrl, testLogger())
}

func TestAddEnrichesFromMetadata(t *testing.T) {
	db := newTestDatabase(t)
	meta := &fakeMetadata{details: map[int]*tmdb.Details{
		603: {
			Genres:           []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
			RuntimeMinutes:   136,
			Rating:           8.2,
			OriginalLanguage: "en",
		},
	}}
	ctrl := newTestControllers(t, db, meta, nil)

	item, err := ctrl.Add(t.Context(), AddRequest{TMDBId: 603, Title: "The Matrix", MediaType: models.MediaTypeMovie})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	if item.Genres != "28,878" {
		t.Errorf("Genres = %q, want %q", item.Genres, "28,878")
	}
	if item.RuntimeMinutes != 136 || item.Rating != 8.2 || item.OriginalLanguage != "en" {
		t.Errorf("Metadata not copied onto item: %+v", item)
	}
	if item.ID == 0 {
		t.Error("Item not assigned a sequence ID")
	}
}

func TestAddSurvivesMetadataFailure(t *testing.T) {
	db := newTestDatabase(t)
	meta := &fakeMetadata{err: errors.New("tmdb down")}
	ctrl := newTestControllers(t, db, meta, nil)

	item, err := ctrl.Add(t.Context(), AddRequest{TMDBId: 603, Title: "The Matrix", MediaType: models.MediaTypeMovie})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if item.Genres != "" || item.Rating != 0 {
		t.Errorf("Expected defaults when metadata fails, got %+v", item)
	}

	if _, err := db.GetItemByTMDBID(603); err != nil {
		t.Errorf("Item not persisted: %v", err)
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	db := newTestDatabase(t)
	ctrl := newTestControllers(t, db, nil, nil)

	req := AddRequest{TMDBId: 603, Title: "The Matrix", MediaType: models.MediaTypeMovie}
	if _, err := ctrl.Add(t.Context(), req); err != nil {
		t.Fatalf("First add failed: %v", err)
	}
	if _, err := ctrl.Add(t.Context(), req); !errors.Is(err, ErrDuplicateItem) {
		t.Errorf("Expected ErrDuplicateItem, got %v", err)
	}
}

func TestAddRejectsInvalidMediaType(t *testing.T) {
	ctrl := newTestControllers(t, newTestDatabase(t), nil, nil)

	if _, err := ctrl.Add(t.Context(), AddRequest{TMDBId: 603, Title: "The Matrix", MediaType: "podcast"}); err == nil {
		t.Error("Expected error for invalid media type")
	}
}

func TestRemove(t *testing.T) {
	db := newTestDatabase(t)
	ctrl := newTestControllers(t, db, nil, nil)

	item, err := ctrl.Add(t.Context(), AddRequest{TMDBId: 603, Title: "The Matrix", MediaType: models.MediaTypeMovie})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := ctrl.Remove(item.ID); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := db.GetItemByID(item.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("Item still present after remove: %v", err)
	}
	if err := ctrl.Remove(item.ID); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound on second remove, got %v", err)
	}
}

func TestToggleWatchedSetsOverride(t *testing.T) {
	db := newTestDatabase(t)
	ctrl := newTestControllers(t, db, nil, nil)

	item, err := ctrl.Add(t.Context(), AddRequest{TMDBId: 603, Title: "The Matrix", MediaType: models.MediaTypeMovie})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	toggled, err := ctrl.ToggleWatched(item.ID)
	if err != nil {
		t.Fatalf("ToggleWatched returned error: %v", err)
	}
	if !toggled.Watched || !toggled.WatchedOverride {
		t.Errorf("Expected watched with sticky override, got %+v", toggled)
	}

	toggled, err = ctrl.ToggleWatched(item.ID)
	if err != nil {
		t.Fatalf("Second toggle returned error: %v", err)
	}
	if toggled.Watched || !toggled.WatchedOverride {
		t.Errorf("Override must stay set after toggling back, got %+v", toggled)
	}
}

func seedItem(t *testing.T, db *models.Database, item models.Item) *models.Item {
	t.Helper()
	if err := db.CreateItem(&item); err != nil {
		t.Fatalf("Failed to seed item %q: %v", item.Title, err)
	}
	return &item
}

func TestListFilters(t *testing.T) {
	db := newTestDatabase(t)
	ctrl := newTestControllers(t, db, nil, nil)

	seedItem(t, db, models.Item{TMDBId: 1, MediaType: models.MediaTypeMovie, Title: "The Matrix", Genres: "28,878", Available: true, Watched: true})
	seedItem(t, db, models.Item{TMDBId: 2, MediaType: models.MediaTypeMovie, Title: "Dune", Genres: "878", Available: true})
	seedItem(t, db, models.Item{TMDBId: 3, MediaType: models.MediaTypeTV, Title: "Fargo", Genres: "80"})

	cases := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"no filter", ListFilter{}, []string{"The Matrix", "Dune", "Fargo"}},
		{"movies only", ListFilter{MediaType: models.MediaTypeMovie}, []string{"The Matrix", "Dune"}},
		{"unwatched", ListFilter{Watched: models.FilterUnwatched}, []string{"Dune", "Fargo"}},
		{"missing", ListFilter{Availability: models.FilterMissing}, []string{"Fargo"}},
		{"title search", ListFilter{Search: "mat"}, []string{"The Matrix"}},
		{"genre intersection", ListFilter{Genres: []string{"28", "878"}}, []string{"The Matrix"}},
		{"genre no token-prefix match", ListFilter{Genres: []string{"8"}}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := ctrl.List(tc.filter)
			if err != nil {
				t.Fatalf("List returned error: %v", err)
			}

			var titles []string
			for _, item := range items {
				titles = append(titles, item.Title)
			}
			if len(titles) != len(tc.want) {
				t.Fatalf("Got %v, want %v", titles, tc.want)
			}
			got := make(map[string]bool)
			for _, title := range titles {
				got[title] = true
			}
			for _, title := range tc.want {
				if !got[title] {
					t.Errorf("Missing %q in %v", title, titles)
				}
			}
		})
	}
}

func TestListSortOrders(t *testing.T) {
	db := newTestDatabase(t)
	ctrl := newTestControllers(t, db, nil, nil)

	first := seedItem(t, db, models.Item{TMDBId: 1, MediaType: models.MediaTypeMovie, Title: "Zodiac"})
	time.Sleep(5 * time.Millisecond)
	second := seedItem(t, db, models.Item{TMDBId: 2, MediaType: models.MediaTypeMovie, Title: "Alien"})

	items, err := ctrl.List(ListFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if items[0].ID != second.ID {
		t.Errorf("Default sort should be newest first, got %q first", items[0].Title)
	}

	items, err = ctrl.List(ListFilter{Sort: models.SortDateAsc})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if items[0].ID != first.ID {
		t.Errorf("Date ascending should put the oldest first, got %q", items[0].Title)
	}

	items, err = ctrl.List(ListFilter{Sort: models.SortTitleAsc})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if items[0].Title != "Alien" {
		t.Errorf("Title ascending should put Alien first, got %q", items[0].Title)
	}
}

func TestBackfillGenres(t *testing.T) {
	db := newTestDatabase(t)
	meta := &fakeMetadata{details: map[int]*tmdb.Details{
		1: {Genres: []tmdb.Genre{{ID: 18, Name: "Drama"}}},
	}}
	ctrl := newTestControllers(t, db, meta, nil)

	bare := seedItem(t, db, models.Item{TMDBId: 1, MediaType: models.MediaTypeMovie, Title: "Heat"})
	seedItem(t, db, models.Item{TMDBId: 2, MediaType: models.MediaTypeMovie, Title: "Dune", Genres: "878"})

	updated, failed, err := ctrl.BackfillGenres(t.Context())
	if err != nil {
		t.Fatalf("BackfillGenres returned error: %v", err)
	}
	if updated != 1 || failed != 0 {
		t.Errorf("Expected 1 updated / 0 failed, got %d / %d", updated, failed)
	}
	if meta.calls != 1 {
		t.Errorf("Items with genres should be left alone, saw %d lookups", meta.calls)
	}

	got, err := db.GetItemByID(bare.ID)
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if got.Genres != "18" {
		t.Errorf("Genres = %q, want %q", got.Genres, "18")
	}
}

func TestBackfillGenresCountsFailures(t *testing.T) {
	db := newTestDatabase(t)
	meta := &fakeMetadata{err: errors.New("tmdb down")}
	ctrl := newTestControllers(t, db, meta, nil)

	seedItem(t, db, models.Item{TMDBId: 1, MediaType: models.MediaTypeMovie, Title: "Heat"})

	updated, failed, err := ctrl.BackfillGenres(t.Context())
	if err != nil {
		t.Fatalf("BackfillGenres returned error: %v", err)
	}
	if updated != 0 || failed != 1 {
		t.Errorf("Expected 0 updated / 1 failed, got %d / %d", updated, failed)
	}
}

func TestQueueOrdering(t *testing.T) {
	db := newTestDatabase(t)
	ctrl := newTestControllers(t, db, nil, nil)

	a := seedItem(t, db, models.Item{TMDBId: 1, MediaType: models.MediaTypeMovie, Title: "A"})
	b := seedItem(t, db, models.Item{TMDBId: 2, MediaType: models.MediaTypeMovie, Title: "B"})
	c := seedItem(t, db, models.Item{TMDBId: 3, MediaType: models.MediaTypeMovie, Title: "C"})

	for _, item := range []*models.Item{a, b, c} {
		if _, err := ctrl.AddToQueue(item.ID); err != nil {
			t.Fatalf("AddToQueue failed for %q: %v", item.Title, err)
		}
	}

	// Re-adding keeps the existing position
	requeued, err := ctrl.AddToQueue(a.ID)
	if err != nil {
		t.Fatalf("AddToQueue failed: %v", err)
	}
	if requeued.QueueOrder == nil || *requeued.QueueOrder != 1 {
		t.Errorf("Re-adding must keep position 1, got %v", requeued.QueueOrder)
	}

	queued, err := ctrl.Queue()
	if err != nil {
		t.Fatalf("Queue returned error: %v", err)
	}
	if len(queued) != 3 || queued[0].ID != a.ID || queued[2].ID != c.ID {
		t.Fatalf("Unexpected queue order: %v", queued)
	}

	// Removing the middle entry compacts everything behind it
	if _, err := ctrl.RemoveFromQueue(b.ID); err != nil {
		t.Fatalf("RemoveFromQueue failed: %v", err)
	}
	queued, err = ctrl.Queue()
	if err != nil {
		t.Fatalf("Queue returned error: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("Expected 2 queued items, got %d", len(queued))
	}
	if *queued[0].QueueOrder != 1 || *queued[1].QueueOrder != 2 {
		t.Errorf("Positions not compacted: %d, %d", *queued[0].QueueOrder, *queued[1].QueueOrder)
	}
	if queued[1].ID != c.ID {
		t.Errorf("Expected C at the back, got %q", queued[1].Title)
	}
}

func TestReorderQueue(t *testing.T) {
	db := newTestDatabase(t)
	ctrl := newTestControllers(t, db, nil, nil)

	a := seedItem(t, db, models.Item{TMDBId: 1, MediaType: models.MediaTypeMovie, Title: "A"})
	b := seedItem(t, db, models.Item{TMDBId: 2, MediaType: models.MediaTypeMovie, Title: "B"})
	for _, item := range []*models.Item{a, b} {
		if _, err := ctrl.AddToQueue(item.ID); err != nil {
			t.Fatalf("AddToQueue failed: %v", err)
		}
	}

	// Unknown IDs are ignored rather than failing the batch
	if err := ctrl.ReorderQueue(map[uint64]int{a.ID: 2, b.ID: 1, 999: 3}); err != nil {
		t.Fatalf("ReorderQueue returned error: %v", err)
	}

	queued, err := ctrl.Queue()
	if err != nil {
		t.Fatalf("Queue returned error: %v", err)
	}
	if queued[0].ID != b.ID || queued[1].ID != a.ID {
		t.Errorf("Queue not reordered: %q then %q", queued[0].Title, queued[1].Title)
	}
}
