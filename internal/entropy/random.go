// Package entropy provides the injectable random source threaded through every
// generation and tick function. A Source is a seeded math/rand stream, so the
// same seed always produces the same city, roster and month.
// When no seed is configured, NewSeed draws one from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"

	"github.com/google/uuid"
)

// Source is a seeded pseudo-random stream. Not safe for concurrent use.
type Source struct {
	seed int64
	rng  *mrand.Rand
}

// New creates a source from a seed.
func New(seed int64) *Source {
	return &Source{seed: seed, rng: mrand.New(mrand.NewSource(seed))}
}

// Derive returns an independent stream for a subsystem, seeded at seed+offset.
func (s *Source) Derive(offset int64) *Source {
	return New(s.seed + offset)
}

// Seed returns the seed this source was created with.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float returns a float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Intn returns an int in [0, n). n <= 0 yields 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.Intn(n)
}

// IntRange returns an int in [lo, hi], inclusive on both ends.
func (s *Source) IntRange(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// FloatRange returns a float64 in [lo, hi).
func (s *Source) FloatRange(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Chance reports true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.rng.Float64() < p
}

// Shuffle permutes n elements via swap.
func (s *Source) Shuffle(n int, swap func(i, j int)) {
	s.rng.Shuffle(n, swap)
}

// WeightedIndex picks an index with probability proportional to its weight.
// Returns -1 for an empty slice; falls back to a uniform pick when all
// weights are non-positive.
func (s *Source) WeightedIndex(weights []float64) int {
	if len(weights) == 0 {
		return -1
	}
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return s.rng.Intn(len(weights))
	}
	r := s.rng.Float64() * total
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		r -= w
		if r < 0 {
			return i
		}
	}
	return len(weights) - 1
}

// Pick returns a uniformly chosen element. items must be non-empty.
func Pick[T any](s *Source, items []T) T {
	return items[s.rng.Intn(len(items))]
}

// Sample returns n distinct elements chosen without replacement, in draw order.
// n is capped at len(items).
func Sample[T any](s *Source, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	pool := make([]T, len(items))
	copy(pool, items)
	s.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n]
}

// UUID returns a version 4 UUID whose bytes come from the stream, so
// generated IDs repeat with the seed. A nil source draws a random one.
func (s *Source) UUID() string {
	if s == nil {
		return uuid.NewString()
	}
	id, err := uuid.NewRandomFromReader(s.rng)
	if err != nil {
		// math/rand reads never fail.
		return uuid.NewString()
	}
	return id.String()
}

// NewSeed returns a seed from crypto/rand, for runs without a configured seed.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand does not fail on supported platforms.
		return 42
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
}
