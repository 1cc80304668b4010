// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package santa

import (
	"math/rand/v2"
	"slices"
	"sync"
)

// MaxShuffleAttempts bounds the randomized phase of GenerateAssignment.
const MaxShuffleAttempts = 100

// GenerateAssignment returns receivers aligned with ids: ids[i] gives to
// receivers[i]. The result is a bijection on ids with no fixed point.
//
// Up to attempts uniform shuffles are drawn and the first one without a
// fixed point wins. If none qualifies, Derange builds one directly, so the
// call always succeeds for two or more unique identifiers.
func GenerateAssignment[T comparable](ids []T, rng *rand.Rand, attempts int) ([]T, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	receivers := slices.Clone(ids)
	for range attempts {
		rng.Shuffle(len(receivers), func(i, j int) {
			receivers[i], receivers[j] = receivers[j], receivers[i]
		})
		if !hasFixedPoint(ids, receivers) {
			return receivers, nil
		}
	}

	return derange(ids, rng), nil
}

// Derange builds a fixed-point-free permutation of ids in a single pass.
//
// Each position i < n-1 is swapped with a uniform position j in (i, n-1],
// which yields a single cycle over all positions. The trailing check swaps
// the last element with a random earlier one should it still sit at its
// original position.
func Derange[T comparable](ids []T, rng *rand.Rand) ([]T, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}
	return derange(ids, rng), nil
}

func derange[T comparable](ids []T, rng *rand.Rand) []T {
	n := len(ids)
	out := slices.Clone(ids)

	for i := 0; i < n-1; i++ {
		j := i + 1 + rng.IntN(n-1-i)
		out[i], out[j] = out[j], out[i]
	}

	if out[n-1] == ids[n-1] {
		k := rng.IntN(n - 1)
		out[n-1], out[k] = out[k], out[n-1]
	}

	return out
}

func hasFixedPoint[T comparable](ids, receivers []T) bool {
	for i := range ids {
		if ids[i] == receivers[i] {
			return true
		}
	}
	return false
}

func validateIDs[T comparable](ids []T) error {
	if len(ids) < 2 {
		return ErrTooFewParticipants
	}
	seen := make(map[T]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return ErrDuplicateParticipant
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Engine draws assignments from an injected random source. It is safe for
// concurrent use; draws are serialized because *rand.Rand is not.
type Engine struct {
	// Attempts is the ceiling of the randomized phase. Zero skips straight to
	// the constructive fallback.
	Attempts int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine with the default attempt ceiling. A nil rng
// gets a freshly seeded PCG source.
func NewEngine(rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Engine{Attempts: MaxShuffleAttempts, rng: rng}
}

// NewSeededEngine creates an engine whose draws are reproducible.
func NewSeededEngine(seed1, seed2 uint64) *Engine {
	return NewEngine(rand.New(rand.NewPCG(seed1, seed2)))
}

// Assign maps each giver to a receiver. The returned map has one entry per
// id and is a fixed-point-free bijection.
func (e *Engine) Assign(ids []int64) (map[int64]int64, error) {
	e.mu.Lock()
	receivers, err := GenerateAssignment(ids, e.rng, e.Attempts)
	e.mu.Unlock()
	if err != nil {
		return nil, err
	}

	pairs := make(map[int64]int64, len(ids))
	for i, giver := range ids {
		pairs[giver] = receivers[i]
	}
	return pairs, nil
}
