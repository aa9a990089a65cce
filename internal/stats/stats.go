// Package stats counts magic constants and static calls across many
// compilation units.
//
// Each collector accumulates into a local map while it walks one tree,
// then adds its counts into a Shared map once and starts over empty.
// Shared is the only value meant to be touched by several goroutines.
package stats

import (
	"maps"
	"slices"
	"sync"
	"sync/atomic"
)

// Counts maps a label to the number of times it was seen.
type Counts map[string]int

// Labels returns the labels of c in ascending byte order.
func (c Counts) Labels() []string {
	return slices.Sorted(maps.Keys(c))
}

// Shared is a label counter safe for concurrent use. The zero value is
// ready to use.
type Shared struct {
	m sync.Map // string -> *atomic.Int64
}

// Add adds n to label, treating a missing label as zero.
func (s *Shared) Add(label string, n int) {
	v, ok := s.m.Load(label)
	if !ok {
		v, _ = s.m.LoadOrStore(label, new(atomic.Int64))
	}
	v.(*atomic.Int64).Add(int64(n))
}

// Get returns the current count of label.
func (s *Shared) Get(label string) int {
	v, ok := s.m.Load(label)
	if !ok {
		return 0
	}
	return int(v.(*atomic.Int64).Load())
}

// Snapshot copies the current counts. It is only consistent once every
// merge into s has returned.
func (s *Shared) Snapshot() Counts {
	out := make(Counts)
	s.m.Range(func(k, v any) bool {
		out[k.(string)] = int(v.(*atomic.Int64).Load())
		return true
	})
	return out
}

// local is the per-collector accumulator shared by both collectors.
type local struct {
	counts Counts
}

func (l *local) inc(label string) {
	if l.counts == nil {
		l.counts = make(Counts)
	}
	l.counts[label]++
}

// Counts returns the counts gathered since the last merge.
func (l *local) Counts() Counts {
	return maps.Clone(l.counts)
}

// Merge adds the local counts into shared and clears them.
func (l *local) Merge(shared *Shared) {
	for _, label := range l.counts.Labels() {
		shared.Add(label, l.counts[label])
	}
	clear(l.counts)
}
