// Package randvar provides the single seeded random source shared by every
// probabilistic rule of a simulation run.
package randvar

import (
	"math/rand/v2"
)

// Source is the random-variate interface the simulation draws from.
type Source interface {
	// Float64 returns a uniform draw in [0, 1).
	Float64() float64
	// IntN returns a uniform draw in [0, n). It panics if n <= 0.
	IntN(n int) int
	// Perm returns a random permutation of [0, n).
	Perm(n int) []int
	// Shuffle randomizes the order of n elements using swap.
	Shuffle(n int, swap func(i, j int))
}

// PCG is a Source backed by a PCG generator seeded from a single uint64.
type PCG struct {
	seed uint64
	rng  *rand.Rand
}

// New creates a source seeded with seed. Two sources with the same seed
// produce identical sequences.
func New(seed uint64) *PCG {
	return &PCG{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the source was created with
func (p *PCG) Seed() uint64 { return p.seed }

func (p *PCG) Float64() float64 { return p.rng.Float64() }

func (p *PCG) IntN(n int) int { return p.rng.IntN(n) }

func (p *PCG) Perm(n int) []int { return p.rng.Perm(n) }

func (p *PCG) Shuffle(n int, swap func(i, j int)) { p.rng.Shuffle(n, swap) }

// Between returns a uniform integer in [lo, hi]. When hi < lo the bounds
// are swapped.
func Between(src Source, lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Sample draws k distinct values uniformly from [0, n) using a partial
// Fisher-Yates shuffle. k is clamped to [0, n].
func Sample(src Source, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 || n <= 0 {
		return []int{}
	}

	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + src.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

// Chance reports whether a uniform draw falls below p.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}
