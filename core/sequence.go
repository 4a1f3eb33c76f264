package core

import "sync/atomic"

// Sequencer tags outstanding requests so that only the latest one may
// apply its result.
type Sequencer struct {
	latest atomic.Uint64
}

// Next issues a new sequence number, superseding all earlier ones.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Current reports whether seq is still the latest issued number.
func (s *Sequencer) Current(seq uint64) bool {
	return s.latest.Load() == seq
}
