// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package expr

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of parsed templates kept by a Cache when no
// size is given.
const DefaultCacheSize = 256

// Cache keeps recently parsed templates keyed by their text. It is safe for
// concurrent use.
type Cache struct {
	cache *lru.Cache[string, *ParsedExpr]
}

// NewCache returns a Cache holding up to size templates. A size of zero or
// less selects DefaultCacheSize.
func NewCache(size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *ParsedExpr](size)
	if err != nil {
		return nil, fmt.Errorf("cannot create template cache: %w", err)
	}
	return &Cache{cache: cache}, nil
}

// Parse returns the parsed form of template, parsing it on a cache miss.
func (c *Cache) Parse(template string) *ParsedExpr {
	if pe, ok := c.cache.Get(template); ok {
		return pe
	}
	pe := NewParser().Parse(template)
	c.cache.Add(template, pe)
	return pe
}

// Len returns the number of cached templates.
func (c *Cache) Len() int {
	return c.cache.Len()
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.cache.Purge()
}
