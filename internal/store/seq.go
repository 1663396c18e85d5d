package store

import "sync/atomic"

// Seq hands out monotonically increasing record ids starting at 1. Each
// store instance owns one sequence per entity kind, so tests and
// multiple stores never share counter state.
type Seq struct {
	n atomic.Int64
}

// Next returns the next id in the sequence.
func (s *Seq) Next() int64 {
	return s.n.Add(1)
}

// Current returns the last id handed out, 0 if none.
func (s *Seq) Current() int64 {
	return s.n.Load()
}
