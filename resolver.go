// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"fmt"
	"sync"
)

// Resolver turns remote names into endpoints relative to a ServiceConfig and
// memoizes the results in an EndpointCache.
//
// Resolver is safe for concurrent use. The lookup, construction and insertion
// of an endpoint happen under a single lock, so concurrent misses on the same
// name construct it only once.
type Resolver struct {
	config *ServiceConfig

	mu     sync.Mutex
	cache  *EndpointCache
	hits   uint64
	misses uint64
}

// ResolverStats is a point-in-time view of a Resolver's cache
type ResolverStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Cached    int
	MaxCached int
}

// NewResolver creates a resolver caching at most maxCachedEndpoints endpoints
func NewResolver(config *ServiceConfig, maxCachedEndpoints int) *Resolver {
	return &Resolver{
		config: config,
		cache:  NewEndpointCache(maxCachedEndpoints),
	}
}

// Resolve returns the endpoint for name, constructing and caching it on a miss.
// It fails with a *MalformedReferenceError, leaving the cache untouched, when
// name cannot be resolved against the base URL.
func (r *Resolver) Resolve(name string) (Endpoint, error) {
	endpoint, _, err := r.resolve(name)
	return endpoint, err
}

func (r *Resolver) resolve(name string) (Endpoint, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if endpoint, ok := r.cache.Get(name); ok {
		r.hits++
		return endpoint, true, nil
	}
	r.misses++

	if r.config == nil {
		return Endpoint{}, false, fmt.Errorf("%w: resolver has no service config", ErrInvalidBaseURL)
	}
	endpoint, err := r.config.BaseURL().Resolve(name)
	if err != nil {
		return Endpoint{}, false, err
	}
	r.cache.Put(name, endpoint)
	return endpoint, false, nil
}

// SetMaxCachedEndpoints changes the cache bound. Lowering it takes effect on
// the next insertion; no entry is dropped right away.
func (r *Resolver) SetMaxCachedEndpoints(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.SetMaxSize(n)
}

func (r *Resolver) Stats() ResolverStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ResolverStats{
		Hits:      r.hits,
		Misses:    r.misses,
		Evictions: r.cache.Evictions(),
		Cached:    r.cache.Len(),
		MaxCached: r.cache.MaxSize(),
	}
}

// Config returns the configuration endpoints are resolved against
func (r *Resolver) Config() *ServiceConfig {
	return r.config
}
