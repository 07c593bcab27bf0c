package cloudcache

import (
	"container/list"
	"sync"
	"time"
)

type lruEntry[K comparable, V any] struct {
	key     K
	value   V
	expires time.Time
}

// lru is a thread-safe LRU with per-entry expiry.
type lru[K comparable, V any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[K]*list.Element
	order    *list.List
	mu       sync.Mutex
}

func newLRU[K comparable, V any](capacity int, ttl time.Duration) *lru[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &lru[K, V]{
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
		items:    make(map[K]*list.Element, capacity),
		order:    list.New(),
	}
}

// get returns a live value and marks it as recently used. Expired entries are
// evicted on access.
func (l *lru[K, V]) get(key K) (V, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero V
	elem, ok := l.items[key]
	if !ok {
		return zero, false
	}
	entry := elem.Value.(*lruEntry[K, V])
	if l.ttl > 0 && !l.now().Before(entry.expires) {
		l.order.Remove(elem)
		delete(l.items, key)
		return zero, false
	}
	l.order.MoveToFront(elem)
	return entry.value, true
}

func (l *lru[K, V]) put(key K, value V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	expires := l.now().Add(l.ttl)
	if elem, ok := l.items[key]; ok {
		l.order.MoveToFront(elem)
		entry := elem.Value.(*lruEntry[K, V])
		entry.value = value
		entry.expires = expires
		return
	}
	elem := l.order.PushFront(&lruEntry[K, V]{key: key, value: value, expires: expires})
	l.items[key] = elem
	if l.order.Len() > l.capacity {
		if oldest := l.order.Back(); oldest != nil {
			l.order.Remove(oldest)
			delete(l.items, oldest.Value.(*lruEntry[K, V]).key)
		}
	}
}

func (l *lru[K, V]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

func (l *lru[K, V]) purge() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make(map[K]*list.Element, l.capacity)
	l.order.Init()
}
