// Package cache wraps expensive external lookups with per-category
// time-to-live checks over a database-backed store.
package cache

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/staffgraph/staffgraph/internal/database"
)

// Kind is the staleness category of a cached lookup. Different feeds go
// stale at very different rates: a current roster changes within days, a
// news article about a 2017 appointment never does.
type Kind string

const (
	// KindCurated entries are hand-maintained and never auto-expire.
	KindCurated Kind = "curated"
	// KindRoster entries are current-staff page scrapes.
	KindRoster Kind = "roster"
	// KindProfile entries are full career-history profile scrapes.
	KindProfile Kind = "profile"
	// KindNews entries are news/text-inference lookups.
	KindNews Kind = "news"
)

// Default TTLs per category. Zero means "never expires".
var defaultTTLs = map[Kind]time.Duration{
	KindCurated: 0,
	KindRoster:  24 * time.Hour,
	KindProfile: 7 * 24 * time.Hour,
	KindNews:    90 * 24 * time.Hour,
}

// ErrFetchFailed wraps a refetch error returned alongside the last good
// cached value, so callers can distinguish "stale but served" from a
// clean hit and decide whether to proceed or abort.
var ErrFetchFailed = errors.New("refetch failed, serving last cached value")

// FetchFunc retrieves fresh content for a key. Network concerns
// (timeouts, retries) belong to the implementor, not the cache.
type FetchFunc func() (map[string]interface{}, error)

// Store is a freshness cache over the cache_entries table. Construct
// one per process and pass it to the components that need it; there is
// no package-level instance. Concurrent refresh of the same key is
// last-writer-wins, acceptable because fetched content is idempotent.
type Store struct {
	db   *gorm.DB
	ttls map[Kind]time.Duration
	now  func() time.Time
}

// NewStore creates a cache store. Entries in ttlOverrides replace the
// default TTL for that category; a zero duration disables expiry.
func NewStore(db *gorm.DB, ttlOverrides map[Kind]time.Duration) *Store {
	ttls := make(map[Kind]time.Duration, len(defaultTTLs))
	for k, v := range defaultTTLs {
		ttls[k] = v
	}
	for k, v := range ttlOverrides {
		ttls[k] = v
	}
	return &Store{db: db, ttls: ttls, now: time.Now}
}

// TTL returns the configured time-to-live for a category.
func (s *Store) TTL(kind Kind) time.Duration {
	return s.ttls[kind]
}

// Fresh reports whether an entry fetched at the given time is still
// inside its category's TTL.
func (s *Store) Fresh(kind Kind, fetchedAt time.Time) bool {
	ttl := s.ttls[kind]
	if ttl == 0 {
		return true
	}
	return s.now().Sub(fetchedAt) < ttl
}

// Get returns the cached entry for a key, or nil if none exists.
func (s *Store) Get(key string) (*database.CacheEntry, error) {
	var entry database.CacheEntry
	err := s.db.Where("key = ?", key).First(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Put stores fresh content for a key, replacing any existing entry.
func (s *Store) Put(key string, kind Kind, payload map[string]interface{}) (*database.CacheEntry, error) {
	entry := database.CacheEntry{
		Key:       key,
		Category:  string(kind),
		Payload:   database.JSONB(payload),
		FetchedAt: s.now(),
	}
	err := s.db.Where("key = ?", key).
		Assign(map[string]interface{}{
			"category":   entry.Category,
			"payload":    entry.Payload,
			"fetched_at": entry.FetchedAt,
		}).
		FirstOrCreate(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetOrFetch returns cached content while it is fresh, refetching
// otherwise. When a refetch fails but a stale entry exists, the stale
// entry is returned together with an error wrapping ErrFetchFailed: the
// last good value is never destroyed by a failed refresh, and the
// failure is reported rather than swallowed.
func (s *Store) GetOrFetch(key string, kind Kind, fetch FetchFunc) (*database.CacheEntry, error) {
	cached, err := s.Get(key)
	if err != nil {
		return nil, err
	}
	if cached != nil && s.Fresh(kind, cached.FetchedAt) {
		return cached, nil
	}

	payload, fetchErr := fetch()
	if fetchErr != nil {
		if cached != nil {
			log.Printf("Refetch failed for %s (age %s), serving stale entry: %v",
				key, s.now().Sub(cached.FetchedAt).Round(time.Hour), fetchErr)
			return cached, fmt.Errorf("%w: %v", ErrFetchFailed, fetchErr)
		}
		return nil, fmt.Errorf("fetch failed for %s: %w", key, fetchErr)
	}

	return s.Put(key, kind, payload)
}
