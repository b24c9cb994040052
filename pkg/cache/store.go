// Package cache provides a bounded, TTL-aware key/value store backing the
// knowledge component.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// Entry holds a stored value with its expiration.
type Entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Store is a thread-safe LRU store with per-entry TTL. A zero TTL means
// entries never expire.
type Store struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	lru      *list.List
}

type record struct {
	key   string
	entry Entry
}

// NewStore creates a store holding at most capacity entries that expire
// after ttl. A non-positive capacity defaults to 128.
func NewStore(capacity int, ttl time.Duration) *Store {
	if capacity <= 0 {
		capacity = 128
	}
	return &Store{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

// Get retrieves a value. Expired entries are dropped on access.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return "", false
	}
	rec := elem.Value.(*record)
	if s.expired(rec.entry, time.Now()) {
		s.lru.Remove(elem)
		delete(s.items, key)
		return "", false
	}
	s.lru.MoveToFront(elem)
	return rec.entry.Value, true
}

// Set adds or updates a value, evicting the least recently used entry when
// over capacity.
func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{Value: value}
	if s.ttl > 0 {
		entry.ExpiresAt = time.Now().Add(s.ttl)
	}

	if elem, ok := s.items[key]; ok {
		s.lru.MoveToFront(elem)
		elem.Value.(*record).entry = entry
		return
	}

	elem := s.lru.PushFront(&record{key: key, entry: entry})
	s.items[key] = elem
	s.evict()
}

// Delete removes a key. It reports whether the key was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[key]
	if !ok {
		return false
	}
	s.lru.Remove(elem)
	delete(s.items, key)
	return true
}

// Keys lists live keys from most to least recently used.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	keys := make([]string, 0, s.lru.Len())
	for elem := s.lru.Front(); elem != nil; elem = elem.Next() {
		rec := elem.Value.(*record)
		if s.expired(rec.entry, now) {
			continue
		}
		keys = append(keys, rec.key)
	}
	return keys
}

// Len returns the number of stored entries, including any not yet pruned.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lru.Len()
}

// Snapshot returns a copy of the live entries for persistence.
func (s *Store) Snapshot() map[string]Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	dump := make(map[string]Entry, len(s.items))
	for k, elem := range s.items {
		rec := elem.Value.(*record)
		if s.expired(rec.entry, now) {
			continue
		}
		dump[k] = rec.entry
	}
	return dump
}

// Restore replaces the store contents with the given entries, skipping any
// that have already expired.
func (s *Store) Restore(dump map[string]Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lru.Init()
	s.items = make(map[string]*list.Element, s.capacity)

	now := time.Now()
	for k, v := range dump {
		if s.expired(v, now) {
			continue
		}
		elem := s.lru.PushFront(&record{key: k, entry: v})
		s.items[k] = elem
	}
	s.evict()
}

func (s *Store) expired(e Entry, now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

func (s *Store) evict() {
	for s.lru.Len() > s.capacity {
		oldest := s.lru.Back()
		if oldest == nil {
			return
		}
		s.lru.Remove(oldest)
		delete(s.items, oldest.Value.(*record).key)
	}
}
