package controllers

import "github.com/amaumene/jellywatch/internal/models"

// AddToQueue appends an item at the end of the queue. Already-queued
// items keep their position.
func (c *WatchlistController) AddToQueue(id uint64) (*models.Item, error) {
	item, err := c.db.GetItemByID(id)
	if err != nil {
		return nil, ErrItemNotFound
	}
	if item.QueueOrder != nil {
		return item, nil
	}

	max, err := c.db.MaxQueueOrder()
	if err != nil {
		return nil, err
	}
	next := max + 1
	item.QueueOrder = &next
	if err := c.db.UpdateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveFromQueue drops an item out of the queue and compacts the
// positions of everything that sat behind it
func (c *WatchlistController) RemoveFromQueue(id uint64) (*models.Item, error) {
	item, err := c.db.GetItemByID(id)
	if err != nil {
		return nil, ErrItemNotFound
	}
	if item.QueueOrder == nil {
		return item, nil
	}

	removed := *item.QueueOrder
	item.QueueOrder = nil
	if err := c.db.UpdateItem(item); err != nil {
		return nil, err
	}

	queued, err := c.db.GetQueuedItems()
	if err != nil {
		return nil, err
	}
	for _, other := range queued {
		if *other.QueueOrder > removed {
			shifted := *other.QueueOrder - 1
			other.QueueOrder = &shifted
			if err := c.db.UpdateItem(other); err != nil {
				return nil, err
			}
		}
	}
	return item, nil
}

// ReorderQueue applies an item-ID to position mapping in one shot
func (c *WatchlistController) ReorderQueue(orders map[uint64]int) error {
	for id, order := range orders {
		item, err := c.db.GetItemByID(id)
		if err != nil {
			continue
		}
		position := order
		item.QueueOrder = &position
		if err := c.db.UpdateItem(item); err != nil {
			return err
		}
	}
	return nil
}

// Queue lists queued items in queue order
func (c *WatchlistController) Queue() ([]*models.Item, error) {
	return c.db.GetQueuedItems()
}
