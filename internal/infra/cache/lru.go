// Package cache provides the in-memory summary cache.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"haberozet/internal/domain/entity"
)

// DefaultSize and DefaultTTL bound the cache when the configuration is unset.
const (
	DefaultSize = 256
	DefaultTTL  = time.Hour
)

// SummaryLRU is a size- and age-bounded cache of successful summaries.
// It satisfies summarize.Cache and is safe for concurrent use.
type SummaryLRU struct {
	lru *expirable.LRU[string, entity.SummaryResult]
}

// NewSummaryLRU creates a cache holding at most size entries for ttl each.
// Non-positive arguments select the defaults.
func NewSummaryLRU(size int, ttl time.Duration) *SummaryLRU {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SummaryLRU{lru: expirable.NewLRU[string, entity.SummaryResult](size, nil, ttl)}
}

// Get returns the cached result for key.
func (c *SummaryLRU) Get(key string) (entity.SummaryResult, bool) {
	return c.lru.Get(key)
}

// Add stores a result. Failed results are ignored.
func (c *SummaryLRU) Add(key string, result entity.SummaryResult) {
	if result.Failed() {
		return
	}
	c.lru.Add(key, result)
}

// Len returns the number of live entries.
func (c *SummaryLRU) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *SummaryLRU) Purge() {
	c.lru.Purge()
}
