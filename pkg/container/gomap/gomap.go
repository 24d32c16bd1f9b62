// package gomap provides a container.Mapper implementation
// backed by Go's native map for benchmark reference.
package gomap

type Gomap[V any] struct {
	m map[string]V
}

func New[V any](capacity int) *Gomap[V] {
	return &Gomap[V]{
		m: make(map[string]V, capacity),
	}
}

func (m *Gomap[V]) Set(key string, value V) {
	m.m[key] = value
}

func (m *Gomap[V]) Remove(key string) bool {
	if _, ok := m.m[key]; !ok {
		return false
	}
	delete(m.m, key)
	return true
}

func (m *Gomap[V]) Get(key string) (v V, ok bool) {
	v, ok = m.m[key]
	return v, ok
}

func (m *Gomap[V]) Has(key string) bool {
	_, ok := m.m[key]
	return ok
}

func (m *Gomap[V]) Reset() {
	m.m = make(map[string]V)
}

func (m *Gomap[V]) Len() int {
	return len(m.m)
}

func (m *Gomap[V]) Visit(fn func(string, V) bool) {
	for k, v := range m.m {
		if fn(k, v) {
			break
		}
	}
}
