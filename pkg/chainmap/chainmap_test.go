package chainmap_test

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/graph-guard/chainmap/pkg/chainmap"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

type MockHasher struct {
	Map map[string]uint64
}

func (h *MockHasher) Hash(k string) uint64 {
	v, ok := h.Map[k]
	if !ok {
		panic(fmt.Errorf("unexpected key: %q", k))
	}
	return v
}

func TestNewPanics(t *testing.T) {
	for _, td := range []struct {
		capacity   int
		loadFactor float64
	}{
		{0, 0.75},
		{-1, 0.75},
		{8, 0},
		{8, -0.5},
		{8, 1.01},
	} {
		t.Run(fmt.Sprintf("%d_%v", td.capacity, td.loadFactor), func(t *testing.T) {
			require.Panics(t, func() {
				chainmap.New[int](td.capacity, td.loadFactor, nil)
			})
		})
	}
}

func TestNew(t *testing.T) {
	m := chainmap.New[int](8, 0.75, nil)
	require.Equal(t, 8, m.Capacity())
	require.Equal(t, 0.75, m.LoadFactor())
	require.Zero(t, m.Len())
	require.Len(t, m.Buckets(), 8)
}

func TestSetGet(t *testing.T) {
	m := chainmap.New[string](8, 0.75, nil)
	m.Set("a", "1")
	m.Set("b", "2")

	{
		v, ok := m.Get("b")
		require.True(t, ok)
		require.Equal(t, "2", v)
	}
	{
		v, ok := m.Get("nonexistent")
		require.False(t, ok)
		require.Zero(t, v)
	}
}

func TestSetOverwrite(t *testing.T) {
	m := chainmap.New[int](8, 0.75, nil)
	m.Set("k", 1)
	require.Equal(t, 1, m.Len())
	m.Set("k", 2)
	require.Equal(t, 1, m.Len())

	v, ok := m.Get("k")
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestSetOverwritePreservesPosition(t *testing.T) {
	m := chainmap.New[int](4, 1, &MockHasher{
		Map: map[string]uint64{"a": 1, "b": 1, "c": 1},
	})
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Set("a", 4)
	require.Equal(t, []chainmap.Pair[int]{
		{Key: "a", Value: 4},
		{Key: "b", Value: 2},
		{Key: "c", Value: 3},
	}, m.Buckets()[1])
}

func TestEmptyKey(t *testing.T) {
	m := chainmap.New[int](8, 0.75, nil)
	m.Set("", 42)
	v, ok := m.Get("")
	require.True(t, ok)
	require.Equal(t, 42, v)
	require.True(t, m.Remove(""))
	require.False(t, m.Has(""))
}

func TestZeroValueIsPresent(t *testing.T) {
	m := chainmap.New[*int](8, 0.75, nil)
	m.Set("nil", nil)
	require.True(t, m.Has("nil"))

	v, ok := m.Get("nil")
	require.True(t, ok)
	require.Nil(t, v)

	require.False(t, m.Has("missing"))
}

func TestHasIdempotent(t *testing.T) {
	m := chainmap.New[string](8, 0.75, nil)
	m.Set("a", "")
	for _, k := range []string{"a", "b"} {
		require.Equal(t, m.Has(k), m.Has(k), k)
	}
	require.True(t, m.Has("a"))
	require.False(t, m.Has("b"))
}

func TestSetCollision(t *testing.T) {
	m := chainmap.New[int](8, 1, &MockHasher{
		Map: map[string]uint64{"x": 0, "a": 1, "b": 9, "c": 17, "d": 2},
	})
	m.Set("a", -1)
	m.Set("b", 0)
	m.Set("c", 1)
	m.Set("x", 42)
	m.Set("d", 11)

	b := m.Buckets()
	require.Equal(t, []chainmap.Pair[int]{{Key: "x", Value: 42}}, b[0])
	require.Equal(t, []chainmap.Pair[int]{
		{Key: "a", Value: -1},
		{Key: "b", Value: 0},
		{Key: "c", Value: 1},
	}, b[1])
	require.Equal(t, []chainmap.Pair[int]{{Key: "d", Value: 11}}, b[2])

	for k, v := range map[string]int{"x": 42, "a": -1, "b": 0, "c": 1, "d": 11} {
		HasVal(t, m, k, v)
	}
}

func TestRemove(t *testing.T) {
	m := chainmap.New[int](8, 0.75, nil)
	m.Set("a", 1)
	m.Set("b", 2)
	require.Equal(t, 2, m.Len())

	require.True(t, m.Remove("a"))
	require.Equal(t, 1, m.Len())
	require.False(t, m.Has("a"))
	HasVal(t, m, "b", 2)

	require.False(t, m.Remove("a"))
	require.False(t, m.Remove("nonexistent"))
	require.Equal(t, 1, m.Len())
}

func TestRemovePreservesOrder(t *testing.T) {
	m := chainmap.New[int](4, 1, &MockHasher{
		Map: map[string]uint64{"a": 3, "b": 3, "c": 3, "d": 3},
	})
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Set("d", 4)

	require.True(t, m.Remove("b"))
	require.Equal(t, []chainmap.Pair[int]{
		{Key: "a", Value: 1},
		{Key: "c", Value: 3},
		{Key: "d", Value: 4},
	}, m.Buckets()[3])

	require.True(t, m.Remove("a"))
	require.True(t, m.Remove("d"))
	require.Equal(t, []chainmap.Pair[int]{
		{Key: "c", Value: 3},
	}, m.Buckets()[3])
	require.Equal(t, 1, m.Len())
}

func TestRemoveNoShrink(t *testing.T) {
	m := chainmap.New[int](2, 0.5, nil)
	for i := 0; i < 16; i++ {
		m.Set(strconv.Itoa(i), i)
	}
	c := m.Capacity()
	for i := 0; i < 16; i++ {
		require.True(t, m.Remove(strconv.Itoa(i)))
	}
	require.Zero(t, m.Len())
	require.Equal(t, c, m.Capacity())
}

func TestGrow(t *testing.T) {
	keys := []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}
	m := chainmap.New[int](8, 0.75, nil)
	for i, k := range keys {
		m.Set(k, i)
	}
	// 6/8 = 0.75 isn't above the load factor
	require.Equal(t, 6, m.Len())
	require.Equal(t, 8, m.Capacity())

	// 7/8 = 0.875 is above the load factor
	m.Set("eta", 6)
	keys = append(keys, "eta")
	require.Equal(t, 16, m.Capacity())
	require.Equal(t, 7, m.Len())
	require.Len(t, m.Buckets(), 16)
	for i, k := range keys {
		HasVal(t, m, k, i)
	}
}

func TestGrowRehashes(t *testing.T) {
	m := chainmap.New[int](2, 1, &MockHasher{
		Map: map[string]uint64{"a": 0, "b": 2, "c": 5},
	})
	m.Set("a", 1)
	m.Set("b", 2)
	require.Equal(t, 2, m.Capacity())
	require.Equal(t, []chainmap.Pair[int]{
		{Key: "a", Value: 1},
		{Key: "b", Value: 2},
	}, m.Buckets()[0])

	// 3/2 > 1 grows to 4 buckets
	m.Set("c", 3)
	require.Equal(t, 4, m.Capacity())
	require.Equal(t, [][]chainmap.Pair[int]{
		{{Key: "a", Value: 1}},
		{{Key: "c", Value: 3}},
		{{Key: "b", Value: 2}},
		{},
	}, m.Buckets())
}

func TestGrowOverwriteDoesNotTrigger(t *testing.T) {
	m := chainmap.New[int](4, 0.5, nil)
	m.Set("a", 1)
	m.Set("b", 2)
	require.Equal(t, 4, m.Capacity())
	for i := 0; i < 10; i++ {
		m.Set("a", i)
		m.Set("b", i)
	}
	require.Equal(t, 4, m.Capacity())
	require.Equal(t, 2, m.Len())
}

func TestGrowTerminatesWithSmallLoadFactor(t *testing.T) {
	m := chainmap.New[int](1, 0.1, nil)
	for i := 0; i < 100; i++ {
		m.Set(strconv.Itoa(i), i)
		require.LessOrEqual(t,
			float64(m.Len())/float64(m.Capacity()),
			m.LoadFactor(),
		)
	}
	require.Equal(t, 100, m.Len())
	for i := 0; i < 100; i++ {
		HasVal(t, m, strconv.Itoa(i), i)
	}
}

func TestGrowKeepsLoadBelowFactor(t *testing.T) {
	m := chainmap.New[int](8, 0.75, nil)
	prevCapacity := m.Capacity()
	for i := 0; i < 1024; i++ {
		m.Set(strconv.Itoa(i), i)
		require.LessOrEqual(t,
			float64(m.Len())/float64(m.Capacity()),
			m.LoadFactor(),
		)
		if c := m.Capacity(); c != prevCapacity {
			require.Equal(t, prevCapacity*chainmap.GrowthFactor, c)
			prevCapacity = c
		}
		require.Equal(t, m.Len(), countPairs(m))
	}
	require.Equal(t, 2048, m.Capacity())
}

func TestReset(t *testing.T) {
	m := chainmap.New[bool](8, 0.75, nil)
	numKeys := 64
	for i := 0; i < numKeys; i++ {
		m.Set(strconv.Itoa(i), true)
	}
	require.Equal(t, numKeys, m.Len())
	require.Greater(t, m.Capacity(), 8)

	m.Reset()

	require.Zero(t, m.Len())
	require.Equal(t, 8, m.Capacity())
	require.Equal(t, 0.75, m.LoadFactor())
	require.Len(t, m.Buckets(), 8)
	for i := 0; i < numKeys; i++ {
		v, ok := m.Get(strconv.Itoa(i))
		require.False(t, ok)
		require.Zero(t, v)
	}

	// The map remains usable after reset
	m.Set("x", true)
	HasVal(t, m, "x", true)
}

func TestKeysValuesEntries(t *testing.T) {
	m := chainmap.New[int](8, 0.75, nil)
	expect := map[string]int{"a": 1, "b": 2, "c": 3, "d": 4, "e": 5}
	for k, v := range expect {
		m.Set(k, v)
	}

	keys := m.Keys()
	slices.Sort(keys)
	require.Equal(t, []string{"a", "b", "c", "d", "e"}, keys)

	values := m.Values()
	slices.Sort(values)
	require.Equal(t, []int{1, 2, 3, 4, 5}, values)

	entries := m.Entries()
	require.Len(t, entries, len(expect))
	for _, e := range entries {
		require.Equal(t, expect[e.Key], e.Value)
	}
}

func TestEntriesOrder(t *testing.T) {
	m := chainmap.New[int](4, 1, &MockHasher{
		Map: map[string]uint64{"a": 2, "b": 0, "c": 2, "d": 1},
	})
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Set("d", 4)
	require.Equal(t, []string{"b", "d", "a", "c"}, m.Keys())
	require.Equal(t, []int{2, 4, 1, 3}, m.Values())
}

func TestVisitStop(t *testing.T) {
	m := chainmap.New[int](8, 0.75, nil)
	for i := 0; i < 5; i++ {
		m.Set(strconv.Itoa(i), i)
	}
	calls := 0
	m.Visit(func(string, int) bool {
		calls++
		return calls == 2
	})
	require.Equal(t, 2, calls)
}

func TestBucketsDoNotAlias(t *testing.T) {
	m := chainmap.New[int](8, 0.75, nil)
	m.Set("a", 1)
	b := m.Buckets()
	for i := range b {
		for j := range b[i] {
			b[i][j].Value = 100
		}
	}
	HasVal(t, m, "a", 1)
}

func TestEqual(t *testing.T) {
	a := chainmap.New[int](8, 0.75, nil)
	b := chainmap.New[int](8, 0.75, nil)
	require.True(t, a.Equal(b))

	a.Set("x", 1)
	require.False(t, a.Equal(b))
	b.Set("x", 1)
	require.True(t, a.Equal(b))

	a.Set("y", 2)
	a.Remove("y")
	require.True(t, a.Equal(b))

	b.Set("x", 2)
	require.False(t, a.Equal(b))
}

// TestRoundtrip checks every inserted key is retrievable
// with its latest value across several growths.
func TestRoundtrip(t *testing.T) {
	for _, hasher := range []string{
		chainmap.HasherNamePolynomial,
		chainmap.HasherNameXXH3,
		chainmap.HasherNameXXH64,
	} {
		t.Run(hasher, func(t *testing.T) {
			m := chainmap.New[int](8, 0.75, chainmap.HasherByName(hasher))
			for i := 0; i < 512; i++ {
				m.Set("key_"+strconv.Itoa(i), i)
			}
			for i := 0; i < 512; i += 2 {
				m.Set("key_"+strconv.Itoa(i), -i)
			}
			require.Equal(t, 512, m.Len())
			for i := 0; i < 512; i++ {
				e := i
				if i%2 == 0 {
					e = -i
				}
				HasVal(t, m, "key_"+strconv.Itoa(i), e)
			}
		})
	}
}

func HasVal[V any](
	t *testing.T,
	m *chainmap.Map[V],
	key string,
	expectedValue V,
) {
	t.Helper()
	v, ok := m.Get(key)
	require.True(t, ok, "key %q", key)
	require.Equal(t, expectedValue, v)
}

func countPairs[V any](m *chainmap.Map[V]) (n int) {
	for _, b := range m.Buckets() {
		n += len(b)
	}
	return n
}
