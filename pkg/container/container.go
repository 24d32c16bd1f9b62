// Package container defines the string-keyed map interface
// implemented by chainmap.Map and the reference implementations
// it is tested and benchmarked against.
package container

import "github.com/graph-guard/chainmap/pkg/chainmap"

type Mapper[V any] interface {
	Set(string, V)
	Get(string) (v V, ok bool)
	Has(string) bool
	Remove(string) bool
	Reset()
	Len() int
	Visit(func(string, V) (stop bool))
}

var _ Mapper[int] = (*chainmap.Map[int])(nil)
