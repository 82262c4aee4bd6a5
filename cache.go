// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"github.com/golang/groupcache/lru"
)

// DefaultMaxCachedEndpoints is the default bound on cached endpoints
const DefaultMaxCachedEndpoints = 10

// EndpointCache maps remote names to resolved endpoints and evicts the least
// recently used entry (by Get or Put) once it holds more than MaxSize entries.
//
// The bound can grow at any time, but lowering it never drops entries on its
// own: the cache shrinks on the next Put. A bound of 0 (or less) turns every
// Put into a no-op.
//
// EndpointCache is not safe for concurrent use.
type EndpointCache struct {
	entries   *lru.Cache
	maxSize   int
	evictions uint64
}

// NewEndpointCache creates a cache holding at most maxSize endpoints
func NewEndpointCache(maxSize int) *EndpointCache {
	c := &EndpointCache{
		// the lru bound stays disabled, Put enforces maxSize itself
		entries: lru.New(0),
		maxSize: clampSize(maxSize),
	}
	c.entries.OnEvicted = func(lru.Key, interface{}) {
		c.evictions++
	}
	return c
}

// Get returns the endpoint cached for name and marks it most recently used
func (c *EndpointCache) Get(name string) (Endpoint, bool) {
	v, ok := c.entries.Get(name)
	if !ok {
		return Endpoint{}, false
	}
	return v.(Endpoint), true
}

// Put stores endpoint under name, marks it most recently used and then evicts
// least recently used entries until the bound holds again.
func (c *EndpointCache) Put(name string, endpoint Endpoint) {
	c.entries.Add(name, endpoint)
	for c.entries.Len() > c.maxSize {
		c.entries.RemoveOldest()
	}
}

// SetMaxSize changes the bound. Existing entries are kept until the next Put.
func (c *EndpointCache) SetMaxSize(maxSize int) {
	c.maxSize = clampSize(maxSize)
}

func (c *EndpointCache) MaxSize() int {
	return c.maxSize
}

func (c *EndpointCache) Len() int {
	return c.entries.Len()
}

// Evictions returns how many entries were dropped to honor the bound
func (c *EndpointCache) Evictions() uint64 {
	return c.evictions
}

func clampSize(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
