// Package ordmap provides an ordered key/value container backed by a sorted slice.
//
// Keys are kept strictly increasing, so positional access (GetByIndex) enumerates
// entries in key order rather than insertion order.
package ordmap

import (
	"cmp"
	"iter"
	"slices"
)

const initialCapacity = 4

// noCache marks the lookup cache as empty.
const noCache = -1

// Map is an ordered map from K to V. The zero value is not usable; call New.
type Map[K cmp.Ordered, V any] struct {
	keys     []K
	vals     []V
	cloneKey func(K) K // applied to a key when it is first inserted
	copyVal  func(V) V // applied to every value written by Set
	cache    int       // index resolved by the last successful Has
}

// New returns an empty map with room for a few entries.
func New[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{
		keys:  make([]K, 0, initialCapacity),
		vals:  make([]V, 0, initialCapacity),
		cache: noCache,
	}
}

// WithKeyClone makes the map keep its own copy of every inserted key.
// Returns the Map for method chaining
func (m *Map[K, V]) WithKeyClone(clone func(K) K) *Map[K, V] {
	m.cloneKey = clone
	return m
}

// WithValueCopy makes Set store fn(v) instead of v, so later changes to the
// caller's value never reach the stored entry. Use Ref to mutate in place.
// Returns the Map for method chaining
func (m *Map[K, V]) WithValueCopy(fn func(V) V) *Map[K, V] {
	m.copyVal = fn
	return m
}

// find returns the index where key is, or where it would be inserted.
func (m *Map[K, V]) find(key K) (int, bool) {
	return slices.BinarySearch(m.keys, key)
}

// Set inserts or replaces the value stored under key.
func (m *Map[K, V]) Set(key K, value V) {
	i, found := m.find(key)
	if !found {
		n := len(m.keys)
		if n == cap(m.keys) {
			m.grow()
		}
		if m.cloneKey != nil {
			key = m.cloneKey(key)
		}
		m.keys = m.keys[:n+1]
		m.vals = m.vals[:n+1]
		copy(m.keys[i+1:], m.keys[i:n])
		copy(m.vals[i+1:], m.vals[i:n])
		m.keys[i] = key
		if m.cache >= i {
			m.cache = noCache
		}
	}
	if m.copyVal != nil {
		value = m.copyVal(value)
	}
	m.vals[i] = value
}

// grow doubles the backing arrays. Any cached index is dropped.
func (m *Map[K, V]) grow() {
	size := max(initialCapacity, 2*cap(m.keys))
	keys := make([]K, len(m.keys), size)
	vals := make([]V, len(m.vals), size)
	copy(keys, m.keys)
	copy(vals, m.vals)
	m.keys, m.vals = keys, vals
	m.cache = noCache
}

// resolve finds key, consuming the cache slot left by Has.
func (m *Map[K, V]) resolve(key K) (int, bool) {
	i := m.cache
	m.cache = noCache
	if i >= 0 && i < len(m.keys) && m.keys[i] == key {
		return i, true
	}
	return m.find(key)
}

// Get returns the value stored under key. The bool is false when key is absent.
func (m *Map[K, V]) Get(key K) (V, bool) {
	i, found := m.resolve(key)
	if !found {
		var zero V
		return zero, false
	}
	return m.vals[i], true
}

// Ref returns a pointer to the stored value, or nil when key is absent.
// The pointer is valid until the next insertion or deletion.
func (m *Map[K, V]) Ref(key K) *V {
	i, found := m.resolve(key)
	if !found {
		return nil
	}
	return &m.vals[i]
}

// Has reports whether key is present. A hit is remembered so the following
// Get or Ref on the same key skips the search.
func (m *Map[K, V]) Has(key K) bool {
	i, found := m.find(key)
	if found {
		m.cache = i
	}
	return found
}

// Delete removes key. Deleting an absent key is a no-op.
func (m *Map[K, V]) Delete(key K) {
	i, found := m.find(key)
	if !found {
		return
	}
	m.keys = slices.Delete(m.keys, i, i+1)
	m.vals = slices.Delete(m.vals, i, i+1)
	if m.cache >= i {
		m.cache = noCache
	}
}

// GetByIndex returns the i-th value in key order.
func (m *Map[K, V]) GetByIndex(i int) (V, bool) {
	if i < 0 || i >= len(m.vals) {
		var zero V
		return zero, false
	}
	return m.vals[i], true
}

// KeyAt returns the i-th key in key order.
func (m *Map[K, V]) KeyAt(i int) (K, bool) {
	if i < 0 || i >= len(m.keys) {
		var zero K
		return zero, false
	}
	return m.keys[i], true
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	return len(m.keys)
}

// Keys returns a copy of the keys in ascending order.
func (m *Map[K, V]) Keys() []K {
	return slices.Clone(m.keys)
}

// All iterates entries in ascending key order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i := range m.keys {
			if !yield(m.keys[i], m.vals[i]) {
				return
			}
		}
	}
}
