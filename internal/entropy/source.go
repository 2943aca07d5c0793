// Package entropy provides the seeded random source threaded through the
// world context. Every stochastic decision (downtime rolls, arrival
// variance, event injection) draws from one Source so a run is fully
// replayable from its seed.
package entropy

import "math/rand"

// Source wraps a seeded generator with the helpers the simulation uses.
type Source struct {
	Seed int64
	rng  *rand.Rand
}

// NewSource creates a deterministic source from a seed.
func NewSource(seed int64) *Source {
	return &Source{
		Seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Float returns a float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.rng.Float64() < p
}

// IntN returns an int in [0, n). n must be positive.
func (s *Source) IntN(n int) int {
	return s.rng.Intn(n)
}

// Range returns a float64 uniformly drawn from [lo, hi).
func (s *Source) Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Float64()*(hi-lo)
}

// Jitter returns base scaled by a uniform factor in [1-spread, 1+spread].
func (s *Source) Jitter(base, spread float64) float64 {
	return base * (1 + (s.rng.Float64()*2-1)*spread)
}

// Fork derives an independent source for a subsystem. The child stream
// depends only on the parent seed and the label, not on how much the
// parent has been consumed. The mix runs in uint64 so the golden-ratio
// constant's wraparound is well defined.
func (s *Source) Fork(label int64) *Source {
	const mix = 0x9e3779b97f4a7c15
	return NewSource(int64(uint64(s.Seed) ^ uint64(label)*mix))
}
