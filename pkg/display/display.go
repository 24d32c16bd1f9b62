// Package display implements the interactive view of a chained map.
// A Display takes free-text key and value inputs, applies them to
// the map it was constructed with and provides a snapshot of all
// buckets for rendering after every mutation.
// Empty inputs are ignored, the map itself accepts any key.
//
// Display is not safe for concurrent use.
package display

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/graph-guard/chainmap/pkg/chainmap"
	"github.com/graph-guard/chainmap/pkg/statistics"
	plog "github.com/phuslu/log"
)

type Display struct {
	m     *chainmap.Map[string]
	log   plog.Logger
	stats *statistics.MapSync
}

// New creates a display for m.
// stats is optional and may be nil.
func New(
	m *chainmap.Map[string],
	log plog.Logger,
	stats *statistics.MapSync,
) *Display {
	return &Display{m: m, log: log, stats: stats}
}

// Insert sets key to value and returns true.
// Noop returning false if either key or value is empty.
func (d *Display) Insert(key, value string) bool {
	start := time.Now()
	if key == "" || value == "" {
		d.record(statistics.OperationRejected, false, start)
		return false
	}
	capacity, exists := d.m.Capacity(), d.m.Has(key)
	d.m.Set(key, value)

	op := statistics.OperationInsert
	if exists {
		op = statistics.OperationOverwrite
	}
	grew := d.m.Capacity() != capacity
	d.record(op, grew, start)

	d.log.Debug().
		Str("key", key).
		Bool("overwrite", exists).
		Int("count", d.m.Len()).
		Int("capacity", d.m.Capacity()).
		Msg("insert")
	if grew {
		d.log.Info().
			Int("from", capacity).
			Int("to", d.m.Capacity()).
			Msg("grew")
	}
	return true
}

// Remove removes key and returns true if it existed.
// Noop returning false if key is empty.
func (d *Display) Remove(key string) (removed bool) {
	start := time.Now()
	if key == "" {
		d.record(statistics.OperationRejected, false, start)
		return false
	}
	removed = d.m.Remove(key)
	if removed {
		d.record(statistics.OperationRemove, false, start)
	} else {
		d.record(statistics.OperationRemoveMiss, false, start)
	}
	d.log.Debug().
		Str("key", key).
		Bool("removed", removed).
		Int("count", d.m.Len()).
		Msg("remove")
	return removed
}

// Clear resets the map to its initial capacity.
func (d *Display) Clear() {
	start := time.Now()
	d.m.Reset()
	d.record(statistics.OperationClear, false, start)
	d.log.Debug().Int("capacity", d.m.Capacity()).Msg("clear")
}

func (d *Display) record(op statistics.Operation, grew bool, start time.Time) {
	if d.stats != nil {
		d.stats.Update(op, grew, time.Since(start))
	}
}

// View is a snapshot of the map's state.
type View struct {
	Count      int          `json:"count"`
	Capacity   int          `json:"capacity"`
	LoadFactor float64      `json:"loadFactor"`
	Buckets    []BucketView `json:"buckets"`
}

// Load returns the ratio of stored pairs to buckets.
func (v View) Load() float64 {
	return float64(v.Count) / float64(v.Capacity)
}

type BucketView struct {
	Index int        `json:"index"`
	Pairs []PairView `json:"pairs"`
}

type PairView struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Snapshot returns the current state of all buckets.
// The returned view doesn't alias the map.
func (d *Display) Snapshot() View {
	b := d.m.Buckets()
	v := View{
		Count:      d.m.Len(),
		Capacity:   d.m.Capacity(),
		LoadFactor: d.m.LoadFactor(),
		Buckets:    make([]BucketView, len(b)),
	}
	for i := range b {
		p := make([]PairView, len(b[i]))
		for j := range b[i] {
			p[j] = PairView{Key: b[i][j].Key, Value: b[i][j].Value}
		}
		v.Buckets[i] = BucketView{Index: i, Pairs: p}
	}
	return v
}

// Render writes the current state of all buckets to w.
func (d *Display) Render(w io.Writer) error {
	return d.Snapshot().Render(w)
}

// Render writes v to w in the following format:
//
//	entries: 2, capacity: 8, load: 25% (max 75%)
//	Index 0
//	  key: value
//	Index 1
//	...
func (v View) Render(w io.Writer) error {
	if _, err := fmt.Fprintf(
		w, "entries: %s, capacity: %s, load: %s%% (max %s%%)\n",
		humanize.Comma(int64(v.Count)),
		humanize.Comma(int64(v.Capacity)),
		humanize.Ftoa(v.Load()*100),
		humanize.Ftoa(v.LoadFactor*100),
	); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	for _, b := range v.Buckets {
		if _, err := fmt.Fprintf(w, "Index %d\n", b.Index); err != nil {
			return fmt.Errorf("writing bucket %d: %w", b.Index, err)
		}
		for _, p := range b.Pairs {
			if _, err := fmt.Fprintf(w, "  %s: %s\n", p.Key, p.Value); err != nil {
				return fmt.Errorf("writing bucket %d: %w", b.Index, err)
			}
		}
	}
	return nil
}
