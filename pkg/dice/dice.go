// Package dice holds the random helpers used by the game engines.
// Every engine draws through a Roller so tests can script outcomes.
package dice

import (
	"math/rand/v2"
	"sync"
)

// Roller is the source of randomness for the engines.
type Roller interface {
	// Float64 returns a value in [0,1).
	Float64() float64
	// IntN returns a value in [0,n). n must be > 0.
	IntN(n int) int
}

type randRoller struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (rr *randRoller) Float64() float64 {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.r.Float64()
}

func (rr *randRoller) IntN(n int) int {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.r.IntN(n)
}

// New returns a Roller backed by the runtime-seeded generator.
func New() Roller {
	return &randRoller{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a reproducible Roller.
func NewSeeded(seed uint64) Roller {
	return &randRoller{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sequence replays scripted floats in order, wrapping around at the end.
// An empty sequence always returns 0.
type Sequence struct {
	Values []float64
	pos    int
}

// NewSequence returns a Sequence over values.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{Values: values}
}

func (s *Sequence) Float64() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.pos%len(s.Values)]
	s.pos++
	return v
}

func (s *Sequence) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	i := int(s.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Int returns a uniform integer in [lo, hi].
func Int(r Roller, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// Float returns a uniform float in [lo, hi).
func Float(r Roller, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// Chance reports whether a fresh draw lands under p.
func Chance(r Roller, p float64) bool {
	return r.Float64() < p
}

// Pick returns a uniformly chosen element. ok is false for an empty slice.
func Pick[T any](r Roller, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[r.IntN(len(items))], true
}

// Weighted picks an element proportionally to weight(item).
// Non-positive weights count as 1.
func Weighted[T any](r Roller, items []T, weight func(T) float64) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	total := 0.0
	for _, it := range items {
		total += normWeight(weight(it))
	}
	roll := r.Float64() * total
	for _, it := range items {
		roll -= normWeight(weight(it))
		if roll < 0 {
			return it, true
		}
	}
	return items[len(items)-1], true
}

func normWeight(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// Shuffle permutes items in place (Fisher-Yates).
func Shuffle[T any](r Roller, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// Clamp bounds v to [lo, hi].
func Clamp[T int | float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
