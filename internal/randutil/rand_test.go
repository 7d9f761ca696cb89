package randutil

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 16; i++ {
		require.Equal(t, a.Uint64(), b.Uint64(), "same seed must yield same sequence")
	}
}

func TestRollNotation(t *testing.T) {
	tests := []struct {
		notation string
		min, max int
		wantErr  bool
	}{
		{"d6", 1, 6, false},
		{"1d6", 1, 6, false},
		{"2d4", 2, 8, false},
		{"3d8", 3, 24, false},
		{"D20", 1, 20, false},
		{"", 0, 0, true},
		{"six", 0, 0, true},
		{"d", 0, 0, true},
		{"2d", 0, 0, true},
		{"xd6", 0, 0, true},
		{"0d6", 0, 0, true},
		{"2d0", 0, 0, true},
		{"-1d6", 0, 0, true},
	}

	rng := New(7)
	for _, tt := range tests {
		t.Run(tt.notation, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				got, err := RollNotation(rng, tt.notation)
				if tt.wantErr {
					require.Error(t, err)
					assert.Zero(t, got, "malformed notation must yield 0")
					return
				}
				require.NoError(t, err)
				assert.GreaterOrEqual(t, got, tt.min)
				assert.LessOrEqual(t, got, tt.max)
			}
		})
	}
}

func TestShufflePreservesElements(t *testing.T) {
	rng := New(99)
	orig := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	s := append([]int(nil), orig...)

	Shuffle(rng, s)

	sorted := append([]int(nil), s...)
	sort.Ints(sorted)
	assert.Equal(t, orig, sorted, "shuffle must permute, not alter, the elements")
}

func TestShuffleSmallSlices(t *testing.T) {
	rng := New(1)
	Shuffle(rng, []int{})
	one := []int{5}
	Shuffle(rng, one)
	assert.Equal(t, []int{5}, one)
}
