// Package statistics provides synchronized thread-safe statistics
// counters for map operations.
package statistics

import (
	"sync/atomic"
	"time"
)

// Operation is a map operation recorded by MapSync.
type Operation int8

const (
	_ Operation = iota
	OperationInsert
	OperationOverwrite
	OperationRemove
	OperationRemoveMiss
	OperationClear
	OperationRejected
)

type MapSync struct {
	handledOperations     int64
	inserts               int64
	overwrites            int64
	removals              int64
	removeMisses          int64
	clears                int64
	rejected              int64
	growths               int64
	highestProcessingTime int64
	averageProcessingTime int64
}

func NewMapSync() *MapSync {
	return &MapSync{}
}

// Update records an operation.
// grew must be true if the operation changed the map's capacity.
func (s *MapSync) Update(
	op Operation,
	grew bool,
	processingTime time.Duration,
) {
	handled := atomic.AddInt64(&s.handledOperations, 1)

	switch op {
	case OperationInsert:
		atomic.AddInt64(&s.inserts, 1)
	case OperationOverwrite:
		atomic.AddInt64(&s.overwrites, 1)
	case OperationRemove:
		atomic.AddInt64(&s.removals, 1)
	case OperationRemoveMiss:
		atomic.AddInt64(&s.removeMisses, 1)
	case OperationClear:
		atomic.AddInt64(&s.clears, 1)
	case OperationRejected:
		atomic.AddInt64(&s.rejected, 1)
	}
	if grew {
		atomic.AddInt64(&s.growths, 1)
	}

	// Highest processing time
	if int64(processingTime) > atomic.LoadInt64(&s.highestProcessingTime) {
		atomic.StoreInt64(&s.highestProcessingTime, int64(processingTime))
	}

	// Average processing time
	curAvgProcessingTime := atomic.LoadInt64(&s.averageProcessingTime)
	atomic.AddInt64(
		&s.averageProcessingTime,
		(int64(processingTime)-curAvgProcessingTime)/handled,
	)
}

func (s *MapSync) GetHandledOperations() int64 {
	return atomic.LoadInt64(&s.handledOperations)
}

func (s *MapSync) GetInserts() int64 {
	return atomic.LoadInt64(&s.inserts)
}

func (s *MapSync) GetOverwrites() int64 {
	return atomic.LoadInt64(&s.overwrites)
}

func (s *MapSync) GetRemovals() int64 {
	return atomic.LoadInt64(&s.removals)
}

func (s *MapSync) GetRemoveMisses() int64 {
	return atomic.LoadInt64(&s.removeMisses)
}

func (s *MapSync) GetClears() int64 {
	return atomic.LoadInt64(&s.clears)
}

func (s *MapSync) GetRejected() int64 {
	return atomic.LoadInt64(&s.rejected)
}

func (s *MapSync) GetGrowths() int64 {
	return atomic.LoadInt64(&s.growths)
}

func (s *MapSync) GetHighestProcessingTime() int64 {
	return atomic.LoadInt64(&s.highestProcessingTime)
}

func (s *MapSync) GetAverageProcessingTime() int64 {
	return atomic.LoadInt64(&s.averageProcessingTime)
}
