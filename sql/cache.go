// Copyright 2025 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sql

import (
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// KeyValueCache is a cache of key-value pairs.
type KeyValueCache interface {
	// Get the value for the given key, or ErrKeyNotFound on a miss.
	Get(key uint64) (interface{}, error)
	// Put a value for the given key.
	Put(key uint64, value interface{}, size uint64) error
	// Free discards every entry.
	Free()
	// Bytes currently accounted for by the cache.
	Bytes() uint64
}

// lruCache is a byte-budgeted LRU cache. Writes are atomic-replace under a
// single writer lock so readers never observe a torn entry.
type lruCache struct {
	mu     sync.RWMutex
	budget uint64
	used   uint64
	sizes  map[uint64]uint64
	inner  *lru.Cache
}

// NewLRUCache creates a cache that evicts least-recently-used entries once
// the byte budget is exceeded.
func NewLRUCache(budget uint64) KeyValueCache {
	c := &lruCache{
		budget: budget,
		sizes:  make(map[uint64]uint64),
	}
	// Eviction order comes from the lru list; the byte budget decides how
	// many evictions happen per Put.
	inner, err := lru.NewWithEvict(1<<18, c.onEvict)
	if err != nil {
		panic(err)
	}
	c.inner = inner
	return c
}

func (c *lruCache) onEvict(key, _ interface{}) {
	k := key.(uint64)
	c.used -= c.sizes[k]
	delete(c.sizes, k)
}

// Get implements KeyValueCache.
func (c *lruCache) Get(key uint64) (interface{}, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.inner.Get(key)
	if !ok {
		return nil, ErrKeyNotFound.New(key)
	}
	return v, nil
}

// Put implements KeyValueCache.
func (c *lruCache) Put(key uint64, value interface{}, size uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.sizes[key]; ok {
		c.used -= old
	}
	c.sizes[key] = size
	c.used += size
	c.inner.Add(key, value)
	for c.used > c.budget && c.inner.Len() > 1 {
		c.inner.RemoveOldest()
	}
	return nil
}

// Free implements KeyValueCache.
func (c *lruCache) Free() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inner.Purge()
	c.sizes = make(map[uint64]uint64)
	c.used = 0
}

// Bytes implements KeyValueCache.
func (c *lruCache) Bytes() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.used
}
