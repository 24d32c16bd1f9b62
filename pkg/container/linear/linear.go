// package linear provides a container.Mapper implementation
// backed by a single slice and linear search,
// which is equivalent to a chained map with one bucket.
package linear

type pair[V any] struct {
	Key   string
	Value V
}

type Linear[V any] struct {
	d []pair[V]
}

func New[V any](capacity int) *Linear[V] {
	return &Linear[V]{
		d: make([]pair[V], 0, capacity),
	}
}

func (m *Linear[V]) Set(key string, value V) {
	for i := 0; i < len(m.d); i++ {
		if m.d[i].Key == key {
			m.d[i].Value = value
			return
		}
	}
	m.d = append(m.d, pair[V]{
		Key:   key,
		Value: value,
	})
}

// Remove preserves the insertion order of the remaining pairs.
func (m *Linear[V]) Remove(key string) bool {
	for i := 0; i < len(m.d); i++ {
		if m.d[i].Key == key {
			m.d = append(m.d[:i], m.d[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Linear[V]) Get(key string) (v V, ok bool) {
	for i := 0; i < len(m.d); i++ {
		if m.d[i].Key == key {
			return m.d[i].Value, true
		}
	}
	return v, false
}

func (m *Linear[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Linear[V]) Reset() {
	m.d = m.d[:0]
}

func (m *Linear[V]) Len() int {
	return len(m.d)
}

func (m *Linear[V]) Visit(fn func(string, V) bool) {
	for i := 0; i < len(m.d); i++ {
		if fn(m.d[i].Key, m.d[i].Value) {
			break
		}
	}
}
