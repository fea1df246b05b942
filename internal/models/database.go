package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// ErrNotFound is returned when a lookup matches no item
var ErrNotFound = bolthold.ErrNotFound

// Database wraps the bolthold store
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// CreateItem creates a new watchlist item
func (db *Database) CreateItem(item *Item) error {
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), item)
}

// UpdateItem updates an existing watchlist item
func (db *Database) UpdateItem(item *Item) error {
	item.UpdatedAt = time.Now()
	return db.store.Update(item.ID, item)
}

// DeleteItem deletes a watchlist item by ID
func (db *Database) DeleteItem(id uint64) error {
	return db.store.Delete(id, &Item{})
}

// GetItemByID retrieves a watchlist item by ID
func (db *Database) GetItemByID(id uint64) (*Item, error) {
	var item Item
	if err := db.store.Get(id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetItemByTMDBID retrieves a watchlist item by its TMDb ID
func (db *Database) GetItemByTMDBID(tmdbID int) (*Item, error) {
	var item Item
	err := db.store.FindOne(&item, bolthold.Where("TMDBId").Eq(tmdbID))
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// GetAllItems retrieves all watchlist items
func (db *Database) GetAllItems() ([]*Item, error) {
	var items []*Item
	err := db.store.Find(&items, nil)
	return items, err
}

// GetItemsWithoutGenres retrieves all items missing genre metadata
func (db *Database) GetItemsWithoutGenres() ([]*Item, error) {
	var items []*Item
	err := db.store.Find(&items, bolthold.Where("Genres").Eq(""))
	return items, err
}

// GetQueuedItems retrieves all queued items ordered by queue position
func (db *Database) GetQueuedItems() ([]*Item, error) {
	all, err := db.GetAllItems()
	if err != nil {
		return nil, err
	}

	// Filter in Go: bolthold cannot compare nil pointer fields
	var items []*Item
	for _, item := range all {
		if item.QueueOrder != nil {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return *items[i].QueueOrder < *items[j].QueueOrder
	})
	return items, nil
}

// MaxQueueOrder returns the highest queue position, 0 when the queue is empty
func (db *Database) MaxQueueOrder() (int, error) {
	items, err := db.GetQueuedItems()
	if err != nil {
		return 0, err
	}

	max := 0
	for _, item := range items {
		if item.QueueOrder != nil && *item.QueueOrder > max {
			max = *item.QueueOrder
		}
	}
	return max, nil
}
