// Package engine implements the interactive mini-game session engines:
// sliding puzzle, memory match, multiple-choice quiz, timeline ordering and
// whack-a-mole. Each engine is a small guarded state machine over player
// input plus a one-second session clock, and reports a normalized 0-100
// score outward exactly once per session.
//
// The package performs no I/O and owns no persistence; hosts inject timers,
// randomness, audio and callbacks through Options.
package engine

import "math/rand"

// Shuffle permutes items in place using Fisher-Yates. The result is always
// a permutation of the input multiset; a shuffle that happens to come out
// sorted is accepted as-is.
func Shuffle[T any](rnd *rand.Rand, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// ShuffledIndexes returns a permutation of [0, n).
func ShuffledIndexes(rnd *rand.Rand, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	Shuffle(rnd, idx)
	return idx
}
