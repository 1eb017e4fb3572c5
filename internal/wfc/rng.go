package wfc

import "math/rand"

// defaultSeed replaces a zero seed so that every solve is reproducible.
const defaultSeed int64 = 1

// Rand is the random source a solve draws from. *rand.Rand satisfies it.
// It is not shared across goroutines.
type Rand interface {
	Intn(n int) int
}

// NewRand returns a deterministic source. Seed 0 maps to defaultSeed.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = defaultSeed
	}
	return rand.New(rand.NewSource(seed))
}

// attemptSeed derives the seed of a retry attempt from the base seed.
func attemptSeed(seed int64, attempt int) int64 {
	return seed + int64(attempt*1000)
}
