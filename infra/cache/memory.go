// Package cache holds the item cache tiers: a bounded in-memory LRU and a
// TTL'd on-disk JSON store, plus the story list snapshot.
package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/CrestNiraj12/hntui/domain"
)

// ItemCache is a bounded, recency-ordered map from item id to item.
// Both Get and Put count as a use. Safe for concurrent use.
type ItemCache struct {
	lru *lru.Cache[int64, domain.Item]
}

// NewItemCache creates a cache holding at most size items.
func NewItemCache(size int) (*ItemCache, error) {
	c, err := lru.New[int64, domain.Item](size)
	if err != nil {
		return nil, fmt.Errorf("item cache size %d: %w", size, err)
	}
	return &ItemCache{lru: c}, nil
}

// Get returns a copy of the cached item and refreshes its recency.
func (c *ItemCache) Get(id int64) (domain.Item, bool) {
	it, ok := c.lru.Get(id)
	if !ok {
		return domain.Item{}, false
	}
	return it.Clone(), true
}

// Put stores a copy of item, evicting the least recently used entry when full.
func (c *ItemCache) Put(id int64, item domain.Item) {
	c.lru.Add(id, item.Clone())
}

// Contains reports presence without touching recency.
func (c *ItemCache) Contains(id int64) bool {
	return c.lru.Contains(id)
}

// Len returns the number of cached items.
func (c *ItemCache) Len() int {
	return c.lru.Len()
}
