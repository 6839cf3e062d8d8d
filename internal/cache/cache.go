// Package cache provides the time-boxed response cache shared by all
// concurrent fetch operations.
package cache

import (
	"sync"
	"time"

	"github.com/adscout/scrape/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long a captured response stays servable.
const DefaultTTL = 1 * time.Hour

type entry struct {
	resp     models.FetchResponse
	storedAt time.Time
}

// Store is an in-memory response cache keyed by (method, URL). Entries
// expire after the configured TTL and are evicted lazily on lookup; there
// is no background cleanup and no count bound. Safe for concurrent use.
//
// Construct one per process (or per test) and inject it into the fetcher
// rather than relying on shared package state.
type Store struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
	hits    uint64
	misses  uint64
}

// New creates a Store with the given TTL. A non-positive TTL falls back to
// DefaultTTL.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the cached response for (method, url) if present and fresh.
// Expired entries are removed on the spot and reported as misses.
func (s *Store) Get(method, url string) (*models.FetchResponse, bool) {
	key := cacheKey(method, url)

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		s.miss()
		return nil, false
	}

	if time.Since(e.storedAt) > s.ttl {
		s.mu.Lock()
		// Re-check under write lock: a concurrent Set may have refreshed it.
		if cur, still := s.entries[key]; still && time.Since(cur.storedAt) > s.ttl {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		s.miss()
		return nil, false
	}

	s.mu.Lock()
	s.hits++
	s.mu.Unlock()

	log.Debug().Str("key", key).Msg("Cache hit")
	resp := e.resp
	return &resp, true
}

// Set stores a response for (method, url), overwriting any previous entry.
// Writes are idempotent overwrites; entries are independent, so no
// cross-entry coordination is needed.
func (s *Store) Set(method, url string, resp models.FetchResponse) {
	key := cacheKey(method, url)

	s.mu.Lock()
	s.entries[key] = entry{resp: resp, storedAt: time.Now()}
	s.mu.Unlock()

	log.Debug().Str("key", key).Dur("ttl", s.ttl).Msg("Cached response")
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]entry)
	s.hits = 0
	s.misses = 0
	s.mu.Unlock()
}

// Len returns the number of entries currently held, including any that
// have expired but not yet been looked up.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns hit and miss counters.
func (s *Store) Stats() (hits, misses uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hits, s.misses
}

func (s *Store) miss() {
	s.mu.Lock()
	s.misses++
	s.mu.Unlock()
}

func cacheKey(method, url string) string {
	if method == "" {
		method = "GET"
	}
	return method + " " + url
}
