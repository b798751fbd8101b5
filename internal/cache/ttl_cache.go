package cache

import (
	"sync"
	"time"
)

const DefaultTTL = 60 * time.Second

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// TTLCache maps string keys to values that stay visible until their expiry.
// Expired entries are dropped on the next Get for that key; there is no sweep
// and no size bound.
type TTLCache[V any] struct {
	mu         sync.Mutex
	now        Clock
	defaultTTL time.Duration
	items      map[string]entry[V]
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

type Option func(*options)

type options struct {
	now        Clock
	defaultTTL time.Duration
}

func WithClock(now Clock) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithDefaultTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.defaultTTL = ttl
	}
}

func New[V any](opts ...Option) *TTLCache[V] {
	o := options{now: time.Now, defaultTTL: DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}

	return &TTLCache[V]{
		now:        o.now,
		defaultTTL: o.defaultTTL,
		items:      make(map[string]entry[V]),
	}
}

// Get returns the value for key while the current time is before its expiry.
func (c *TTLCache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	item, ok := c.items[key]
	if !ok {
		return zero, false
	}

	if !c.now().Before(item.expiresAt) {
		delete(c.items, key)
		return zero, false
	}

	return item.value, true
}

// Set stores value under key with the default TTL.
func (c *TTLCache[V]) Set(key string, value V) {
	c.SetWithTTL(key, value, c.defaultTTL)
}

// SetWithTTL stores value under key until now+ttl, replacing any previous entry.
// A non-positive ttl produces an entry that is already expired.
func (c *TTLCache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(ttl),
	}
}

func (c *TTLCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Len counts stored entries, including expired ones not yet read.
func (c *TTLCache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.items)
}
