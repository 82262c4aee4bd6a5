// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package remoting

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestResolver(t *testing.T, base string, maxCached int) *Resolver {
	t.Helper()
	b, err := ParseBaseURL(base)
	if err != nil {
		t.Fatalf("ParseBaseURL: %v", err)
	}
	config, err := NewServiceConfig(b)
	if err != nil {
		t.Fatalf("NewServiceConfig: %v", err)
	}
	return NewResolver(config, maxCached)
}

func resolveString(t *testing.T, r *Resolver, name string) string {
	t.Helper()
	ep, err := r.Resolve(name)
	if err != nil {
		t.Fatalf("Resolve(%q): %v", name, err)
	}
	return ep.String()
}

func TestResolverEvictionScenario(t *testing.T) {
	r := newTestResolver(t, "http://host/api/", 2)

	for _, tc := range []struct{ name, want string }{
		{"a", "http://host/api/a"},
		{"b", "http://host/api/b"},
		{"c", "http://host/api/c"},
	} {
		if got := resolveString(t, r, tc.name); got != tc.want {
			t.Errorf("Resolve(%q) = %s, want %s", tc.name, got, tc.want)
		}
	}

	want := ResolverStats{Misses: 3, Evictions: 1, Cached: 2, MaxCached: 2}
	if diff := cmp.Diff(want, r.Stats()); diff != "" {
		t.Fatalf("stats after a, b, c (-want +got):\n%s", diff)
	}

	// "a" was evicted by "c", so it is constructed again
	if got := resolveString(t, r, "a"); got != "http://host/api/a" {
		t.Errorf("Resolve(a) = %s", got)
	}
	if got := r.Stats().Misses; got != 4 {
		t.Errorf("Misses = %d, want 4", got)
	}
}

func TestResolverIdempotent(t *testing.T) {
	r := newTestResolver(t, "http://host/api/", DefaultMaxCachedEndpoints)

	first, err := r.Resolve("calc")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Resolve("calc")
	if err != nil {
		t.Fatal(err)
	}
	if !first.Equal(second) {
		t.Errorf("Resolve not idempotent: %s vs %s", first, second)
	}

	want := ResolverStats{Hits: 1, Misses: 1, Cached: 1, MaxCached: DefaultMaxCachedEndpoints}
	if diff := cmp.Diff(want, r.Stats()); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}

func TestResolverConcurrentMissInsertsOnce(t *testing.T) {
	r := newTestResolver(t, "http://host/api/", DefaultMaxCachedEndpoints)

	const workers = 64
	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]string, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			ep, err := r.Resolve("shared")
			if err != nil {
				t.Errorf("Resolve: %v", err)
				return
			}
			results[i] = ep.String()
		}(i)
	}
	close(start)
	wg.Wait()

	for i, got := range results {
		if got != "http://host/api/shared" {
			t.Fatalf("worker %d got %q", i, got)
		}
	}
	stats := r.Stats()
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want exactly one construction", stats.Misses)
	}
	if stats.Hits != workers-1 {
		t.Errorf("Hits = %d, want %d", stats.Hits, workers-1)
	}
	if stats.Cached != 1 {
		t.Errorf("Cached = %d, want 1", stats.Cached)
	}
}

func TestResolverConcurrentWithResize(t *testing.T) {
	r := newTestResolver(t, "http://host/api/", 4)
	names := []string{"a", "b", "c", "d", "e", "f"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if j%50 == 0 {
					r.SetMaxCachedEndpoints((i + j) % 5)
				}
				name := names[(i+j)%len(names)]
				ep, err := r.Resolve(name)
				if err != nil {
					t.Errorf("Resolve: %v", err)
					return
				}
				if ep.String() != "http://host/api/"+name {
					t.Errorf("Resolve(%s) = %s", name, ep)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	r.SetMaxCachedEndpoints(2)
	resolveString(t, r, "z")
	if stats := r.Stats(); stats.Cached > 2 {
		t.Errorf("Cached = %d after insert with bound 2", stats.Cached)
	}
}

func TestResolverMalformedLeavesCacheUntouched(t *testing.T) {
	r := newTestResolver(t, "http://host/api/", 2)
	resolveString(t, r, "a")
	before := r.Stats()

	_, err := r.Resolve("bad%zz")
	if !errors.Is(err, ErrMalformedReference) {
		t.Fatalf("err = %v, want ErrMalformedReference", err)
	}
	after := r.Stats()
	if after.Cached != before.Cached || after.Evictions != before.Evictions {
		t.Errorf("cache changed: before %+v after %+v", before, after)
	}
	if _, ok := r.cache.Get("a"); !ok {
		t.Error("a was dropped by a failed resolution")
	}
}

func TestResolverLazyShrink(t *testing.T) {
	r := newTestResolver(t, "http://host/api/", 2)
	resolveString(t, r, "a")
	resolveString(t, r, "b")

	r.SetMaxCachedEndpoints(1)
	if got := r.Stats().Cached; got != 2 {
		t.Fatalf("Cached = %d right after shrinking, want 2", got)
	}

	resolveString(t, r, "c")
	want := ResolverStats{Misses: 3, Evictions: 2, Cached: 1, MaxCached: 1}
	if diff := cmp.Diff(want, r.Stats()); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}

func TestResolverCachingDisabled(t *testing.T) {
	r := newTestResolver(t, "http://host/api/", 0)
	resolveString(t, r, "a")
	resolveString(t, r, "a")

	want := ResolverStats{Misses: 2, Evictions: 2, Cached: 0, MaxCached: 0}
	if diff := cmp.Diff(want, r.Stats()); diff != "" {
		t.Errorf("stats (-want +got):\n%s", diff)
	}
}

func TestResolverRequiresBaseURL(t *testing.T) {
	if _, err := NewServiceConfig(BaseURL{}); !errors.Is(err, ErrInvalidBaseURL) {
		t.Errorf("NewServiceConfig(zero) err = %v, want ErrInvalidBaseURL", err)
	}

	r := NewResolver(nil, 4)
	_, err := r.Resolve("calc")
	if !errors.Is(err, ErrInvalidBaseURL) {
		t.Fatalf("Resolve err = %v, want ErrInvalidBaseURL", err)
	}
	if errors.Is(err, ErrMalformedReference) {
		t.Errorf("missing base reported as malformed name: %v", err)
	}
	if got := r.Stats().Cached; got != 0 {
		t.Errorf("Cached = %d, want 0", got)
	}

	var zero BaseURL
	if _, err := zero.Resolve("calc"); !errors.Is(err, ErrInvalidBaseURL) || errors.Is(err, ErrMalformedReference) {
		t.Errorf("zero base Resolve err = %v", err)
	}
}
