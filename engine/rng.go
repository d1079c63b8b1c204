package engine

import (
	"fmt"
	"math/rand"

	"github.com/nathoo/aventuro/engine/save"
)

// maxRNGPosition bounds the draws a save may claim. Replaying more than
// this would stall the load for no real session.
const maxRNGPosition = 1 << 24

// RNG wraps math/rand.Rand with deterministic position tracking.
// Position increments with every draw, enabling save/restore.
type RNG struct {
	seed   int64
	src    *rand.Rand
	pos    int64
	forced int
}

// NewRNG creates a new deterministic RNG from a seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		seed:   seed,
		src:    rand.New(rand.NewSource(seed)),
		forced: -1,
	}
}

// Percent returns an integer in [0, 100). If a value has been forced it is
// returned instead and the underlying source is not advanced.
func (r *RNG) Percent() int {
	if r.forced >= 0 {
		return r.forced
	}
	r.pos++
	return r.src.Intn(100)
}

// Force makes every following Percent return v. A negative v goes back to
// real draws.
func (r *RNG) Force(v int) {
	r.forced = v
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Position returns the number of draws made since creation.
func (r *RNG) Position() int64 {
	return r.pos
}

// RestoreRNG rebuilds the chance source of a saved session by replaying
// its draws, so "ŝanco" conditions continue where the save left off. A
// position the session could not have reached is a mismatch.
func RestoreRNG(seed, position int64) (*RNG, error) {
	if position < 0 || position > maxRNGPosition {
		return nil, fmt.Errorf("%w: chance position %d", save.ErrMismatch, position)
	}
	rng := NewRNG(seed)
	for rng.pos < position {
		rng.Percent()
	}
	return rng, nil
}
