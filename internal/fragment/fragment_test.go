package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Count_fnDominatesWhenPositive(t *testing.T) {
	testCases := []struct {
		name string
		fn   float64
		want int
	}{
		{"exact", 16, 16},
		{"fractional floors", 16.9, 16},
		{"below minimum clamps to 3", 1, 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Count(10, tc.fn, 12, 2)
			assert.Equal(t, tc.want, got)
		})
	}
}

func Test_Count_fnAlwaysAtLeastThree(t *testing.T) {
	for fn := 1.0; fn < 10; fn++ {
		got := Count(5, fn, 12, 2)
		assert.GreaterOrEqual(t, got, 3)
	}
}

func Test_Count_floorFnMatchesSpecInvariant(t *testing.T) {
	// for all r > 0 and fn >= 3, fragments(r, fn, *, *) == floor(fn)
	radii := []float64{0.1, 1, 10, 1000}
	fns := []float64{3, 4, 7.9, 100}
	for _, r := range radii {
		for _, fn := range fns {
			got := Count(r, fn, 999, 999)
			assert.Equal(t, int(fn), got)
		}
	}
}

func Test_Count_zeroFnFloorsAtFive(t *testing.T) {
	got := Count(0.001, 0, 999, 999)
	assert.GreaterOrEqual(t, got, 5)
}

func Test_Count_zeroFnMonotonicNondecreasingInRadius(t *testing.T) {
	prev := Count(0, 0, 12, 2)
	for r := 1.0; r <= 100; r++ {
		got := Count(r, 0, 12, 2)
		assert.GreaterOrEqual(t, got, prev)
		prev = got
	}
}

func Test_Count_deterministic(t *testing.T) {
	a := Count(12.5, 0, 8, 1.5)
	b := Count(12.5, 0, 8, 1.5)
	assert.Equal(t, a, b)
}

func Test_Count_zeroFaOrFsDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Count(10, 0, 0, 0)
		Count(10, 0, 12, 0)
		Count(10, 0, 0, 2)
	})
}

func Test_Count_angleAndChordTakeTheLarger(t *testing.T) {
	// at r=100, fs=1 forces a huge chord-bound count far above the
	// angle-bound one.
	got := Count(100, 0, 360, 1)
	chordBound := Count(100, 0, 99999, 1)
	assert.Equal(t, chordBound, got)
	assert.Greater(t, got, 5)
}
