package economy

import "math/rand/v2"

// Source yields the random draws behind every chance-based outcome. Tests
// inject scripted sources to pin down exact arithmetic.
type Source interface {
	// IntBetween returns a uniform value in [low, high] inclusive.
	IntBetween(low, high int64) int64
	// CoinFlip returns true with probability 0.5.
	CoinFlip() bool
	// Pick returns a uniform index in [0, n).
	Pick(n int) int
}

type mathSource struct{}

// NewSource returns a Source backed by the shared math/rand/v2 generator.
func NewSource() Source {
	return mathSource{}
}

func (mathSource) IntBetween(low, high int64) int64 {
	if high <= low {
		return low
	}

	return low + rand.Int64N(high-low+1)
}

func (mathSource) CoinFlip() bool {
	return rand.IntN(2) == 0
}

func (mathSource) Pick(n int) int {
	if n <= 1 {
		return 0
	}

	return rand.IntN(n)
}
