package randutil

import (
	"fmt"
	rand "math/rand/v2"
	"strconv"
	"strings"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The helper centralises how we derive the two 64-bit seeds required by rand/v2
// so that all call sites get reproducible sequences.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// RollNotation rolls dice described by "[N]d<M>" notation, N defaulting to 1,
// and returns the sum of N uniform integers in [1,M]. Malformed notation
// returns 0 alongside the error so callers can log and continue.
func RollNotation(rng *rand.Rand, notation string) (int, error) {
	s := strings.ToLower(strings.TrimSpace(notation))
	idx := strings.IndexByte(s, 'd')
	if idx < 0 {
		return 0, fmt.Errorf("invalid dice notation %q: missing 'd'", notation)
	}

	count := 1
	if idx > 0 {
		n, err := strconv.Atoi(s[:idx])
		if err != nil {
			return 0, fmt.Errorf("invalid dice notation %q: bad count", notation)
		}
		count = n
	}

	sides, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("invalid dice notation %q: bad sides", notation)
	}
	if count < 1 || sides < 1 {
		return 0, fmt.Errorf("invalid dice notation %q: non-positive values", notation)
	}

	sum := 0
	for i := 0; i < count; i++ {
		sum += 1 + rng.IntN(sides)
	}
	return sum, nil
}

// Shuffle performs an in-place Fisher-Yates shuffle of s.
func Shuffle[T any](rng *rand.Rand, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
