// Package cache holds the fingerprint -> ticket mapping used to decide
// whether a failure gets a new ticket or a comment on an existing one.
//
// A Cache lives for the lifetime of the process that owns it and is never
// persisted. Every appender handed the same Cache shares one dedup domain.
package cache

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

const (
	// DefaultCapacity is the number of fingerprints kept before the least
	// recently used one is evicted.
	DefaultCapacity = 5000

	// DefaultIdleExpiry is how long an entry survives without being read or
	// written.
	DefaultIdleExpiry = 7 * 24 * time.Hour
)

type entry struct {
	ticketID   string
	lastAccess time.Time
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Cache is a bounded, idle-expiring map from fingerprint to ticket id.
// Safe for concurrent use.
type Cache struct {
	mu   sync.Mutex
	lru  *simplelru.LRU[int32, *entry]
	idle time.Duration
	now  func() time.Time

	locksMu sync.Mutex
	locks   map[int32]*keyLock
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache. Non-positive capacity or idle values fall back to
// the defaults.
func New(capacity int, idle time.Duration, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if idle <= 0 {
		idle = DefaultIdleExpiry
	}
	// NewLRU only fails on a non-positive size.
	lru, _ := simplelru.NewLRU[int32, *entry](capacity, nil)

	c := &Cache{
		lru:   lru,
		idle:  idle,
		now:   time.Now,
		locks: make(map[int32]*keyLock),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the ticket id stored for fp. A hit refreshes the entry's
// recency and idle timer.
func (c *Cache) Get(fp int32) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.expire(now)

	e, ok := c.lru.Get(fp)
	if !ok {
		return "", false
	}
	e.lastAccess = now
	return e.ticketID, true
}

// Put stores ticketID for fp, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Put(fp int32, ticketID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.expire(now)
	c.lru.Add(fp, &entry{ticketID: ticketID, lastAccess: now})
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expire(c.now())
	return c.lru.Len()
}

// expire removes idle entries. Recency order equals last-access order, so
// the scan stops at the first live entry. Caller holds c.mu.
func (c *Cache) expire(now time.Time) {
	for {
		_, e, ok := c.lru.GetOldest()
		if !ok || now.Sub(e.lastAccess) < c.idle {
			return
		}
		c.lru.RemoveOldest()
	}
}

// Lock acquires the decision lock for fp and returns its release func.
// Holders of the same fingerprint are serialized; different fingerprints
// proceed independently.
func (c *Cache) Lock(fp int32) func() {
	c.locksMu.Lock()
	kl, ok := c.locks[fp]
	if !ok {
		kl = &keyLock{}
		c.locks[fp] = kl
	}
	kl.refs++
	c.locksMu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()

		c.locksMu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(c.locks, fp)
		}
		c.locksMu.Unlock()
	}
}
