// Package chainmap provides a resizable hash map with string keys
// that resolves collisions by separate chaining.
// Every bucket is an ordered slice of key-value pairs kept in
// insertion order. Once the ratio of stored pairs to buckets exceeds
// the configured load factor the number of buckets is doubled and
// all pairs are redistributed.
//
// A Map is not safe for concurrent use,
// callers must serialize access externally.
package chainmap

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
)

// GrowthFactor is the multiplier applied to the capacity on growth.
// Growth reinserts through the same path that triggers it, which only
// terminates without a second growth because the ratio is halved.
const GrowthFactor = 2

// Default configuration of a new map.
const (
	DefaultCapacity   = 8
	DefaultLoadFactor = 0.75
)

// Pair is a key-value pair.
type Pair[V any] struct {
	Key   string
	Value V
}

type bucket[V any] []Pair[V]

// Map is a hash map backed by a slice of buckets.
type Map[V any] struct {
	count           int
	capacity        int
	initialCapacity int
	loadFactor      float64
	buckets         []bucket[V]
	hasher          Hasher
}

// New creates a new map instance with the given initial capacity
// and load factor. HasherPolynomial is used if hasher is nil.
// Panics if capacity < 1 or loadFactor isn't in (0, 1].
func New[V any](capacity int, loadFactor float64, hasher Hasher) *Map[V] {
	if capacity < 1 {
		panic(fmt.Errorf("invalid capacity: %d", capacity))
	}
	if !(loadFactor > 0 && loadFactor <= 1) {
		panic(fmt.Errorf("invalid load factor: %v", loadFactor))
	}
	if hasher == nil {
		hasher = HasherPolynomial{}
	}
	return &Map[V]{
		capacity:        capacity,
		initialCapacity: capacity,
		loadFactor:      loadFactor,
		buckets:         make([]bucket[V], capacity),
		hasher:          hasher,
	}
}

// Equal returns true if m and mm have the same configuration
// and identical bucket contents.
func (m *Map[V]) Equal(mm *Map[V]) bool {
	return m.count == mm.count &&
		m.capacity == mm.capacity &&
		m.initialCapacity == mm.initialCapacity &&
		m.loadFactor == mm.loadFactor &&
		m.hasher == mm.hasher &&
		cmp.Equal(m.buckets, mm.buckets, cmp.Comparer(bucketsEqual[V]))
}

func bucketsEqual[V any](a, b bucket[V]) bool {
	// nil and empty buckets are equivalent
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key != b[i].Key || !cmp.Equal(a[i].Value, b[i].Value) {
			return false
		}
	}
	return true
}

// index returns the bucket index of key relative to the current capacity.
func (m *Map[V]) index(key string) int {
	return int(m.hasher.Hash(key) % uint64(m.capacity))
}

// Set associates key with value overwriting any existing association.
// Grows the map before returning if the insertion of a new key
// pushed the load above the load factor.
func (m *Map[V]) Set(key string, value V) {
	if m.insert(key, value) && m.exceedsLoadFactor() {
		m.grow()
	}
}

// insert returns true if key didn't exist yet.
func (m *Map[V]) insert(key string, value V) (added bool) {
	i := m.index(key)
	b := m.buckets[i]
	for p := range b {
		if b[p].Key == key {
			b[p].Value = value
			return false
		}
	}
	m.buckets[i] = append(b, Pair[V]{Key: key, Value: value})
	m.count++
	return true
}

func (m *Map[V]) exceedsLoadFactor() bool {
	return float64(m.count)/float64(m.capacity) > m.loadFactor
}

// grow multiplies the capacity by GrowthFactor and reinserts
// all pairs recomputing their index under the new capacity.
// The count is rebuilt by reinsertion.
func (m *Map[V]) grow() {
	old := m.buckets
	m.capacity *= GrowthFactor
	m.buckets = make([]bucket[V], m.capacity)
	m.count = 0
	for i := range old {
		for _, p := range old[i] {
			m.Set(p.Key, p.Value)
		}
	}
}

// Get returns (value, true) if key exists,
// otherwise returns (zeroValue, false).
func (m *Map[V]) Get(key string) (value V, ok bool) {
	b := m.buckets[m.index(key)]
	for i := range b {
		if b[i].Key == key {
			return b[i].Value, true
		}
	}
	return value, false
}

// Has returns true if key exists regardless of the associated value.
func (m *Map[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Remove deletes key and returns true if it existed,
// otherwise returns false.
// The order of the remaining pairs in the bucket is preserved.
// The capacity never shrinks.
func (m *Map[V]) Remove(key string) (removed bool) {
	i := m.index(key)
	b := m.buckets[i]
	for p := range b {
		if b[p].Key == key {
			copy(b[p:], b[p+1:])
			var zero Pair[V]
			b[len(b)-1] = zero
			m.buckets[i] = b[:len(b)-1]
			m.count--
			return true
		}
	}
	return false
}

// Len returns the number of stored key-value pairs.
func (m *Map[V]) Len() int { return m.count }

// Capacity returns the current number of buckets.
func (m *Map[V]) Capacity() int { return m.capacity }

// LoadFactor returns the configured load factor.
func (m *Map[V]) LoadFactor() float64 { return m.loadFactor }

// Reset removes all pairs and restores the capacity
// the map was created with.
func (m *Map[V]) Reset() {
	m.capacity, m.count = m.initialCapacity, 0
	m.buckets = make([]bucket[V], m.capacity)
}

// Visit calls fn for every stored key-value pair
// in bucket order and insertion order within a bucket.
// Returns immediately if fn returns true.
// The order is unspecified across growths and must not be relied on.
func (m *Map[V]) Visit(fn func(key string, value V) (stop bool)) {
	for i := range m.buckets {
		for _, p := range m.buckets[i] {
			if fn(p.Key, p.Value) {
				return
			}
		}
	}
}

// Keys returns all keys in visiting order.
func (m *Map[V]) Keys() []string {
	keys := make([]string, 0, m.count)
	m.Visit(func(key string, _ V) bool {
		keys = append(keys, key)
		return false
	})
	return keys
}

// Values returns all values in visiting order.
func (m *Map[V]) Values() []V {
	values := make([]V, 0, m.count)
	m.Visit(func(_ string, value V) bool {
		values = append(values, value)
		return false
	})
	return values
}

// Entries returns all key-value pairs in visiting order.
func (m *Map[V]) Entries() []Pair[V] {
	entries := make([]Pair[V], 0, m.count)
	for i := range m.buckets {
		entries = append(entries, m.buckets[i]...)
	}
	return entries
}

// Buckets returns a copy of all buckets indexed by bucket index.
// The returned slices don't alias the map's storage.
func (m *Map[V]) Buckets() [][]Pair[V] {
	s := make([][]Pair[V], len(m.buckets))
	for i := range m.buckets {
		s[i] = make([]Pair[V], len(m.buckets[i]))
		copy(s[i], m.buckets[i])
	}
	return s
}
