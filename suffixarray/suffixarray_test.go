package suffixarray

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurntSushi/lastdb/alphabet"
	"github.com/BurntSushi/lastdb/seed"
)

// TestTinyDNASingleSeed reproduces spec.md's end-to-end scenario 1:
// >s1 ACGTACGT, seed "1", indexStep=1, bucketDepth=1.
func TestTinyDNASingleSeed(t *testing.T) {
	a := alphabet.DNA(false)
	text := []byte("ACGTACGT")
	a.Tr(text, false)
	text = append(text, a.Delimiter)

	sd, err := seed.Parse("1", a, false)
	require.NoError(t, err)

	arr := New(sd, Width32, ChildFull, 1)
	arr.AddPositions(text, 0, len(text), 1, 1)
	require.Len(t, arr.Positions, 8)

	arr.Sort(text)
	got := make([]int64, len(arr.Positions))
	copy(got, arr.Positions)
	assert.Equal(t, []int64{0, 4, 1, 5, 2, 6, 3, 7}, got)

	arr.MakeBuckets(text, 1)
	wantSpans := [][2]int64{{0, 2}, {2, 4}, {4, 6}, {6, 8}}
	for i, want := range wantSpans {
		b, e := arr.BucketSpan(i)
		assert.Equal(t, want[0], b)
		assert.Equal(t, want[1], e)
	}
}

// TestMinimizerWindow reproduces spec.md's scenario 2: same input,
// --minimizer-window 3, expecting ceil(8/3) = 3 retained positions.
func TestMinimizerWindow(t *testing.T) {
	a := alphabet.DNA(false)
	text := []byte("ACGTACGT")
	a.Tr(text, false)
	text = append(text, a.Delimiter)

	sd, err := seed.Parse("1", a, false)
	require.NoError(t, err)

	arr := New(sd, Width32, ChildNone, 1)
	arr.AddPositions(text, 0, len(text), 1, 3)
	assert.Len(t, arr.Positions, 3)
}

// TestMakeBucketsCountsEveryPosition reproduces a case where a suffix
// terminates at the delimiter before reaching bucketDepth cyclic
// positions: text "AC", seed "1", bucket-depth 2. Position 1 ("C$")
// hits the delimiter at k=1, one short of depth 2. The bucket spans
// must still sum to len(Positions); a version that dropped
// early-terminating suffixes instead of padding them with a fixed
// digit would silently lose position 1 from every span.
func TestMakeBucketsCountsEveryPosition(t *testing.T) {
	a := alphabet.DNA(false)
	text := []byte("AC")
	a.Tr(text, false)
	text = append(text, a.Delimiter)

	sd, err := seed.Parse("1", a, false)
	require.NoError(t, err)

	arr := New(sd, Width32, ChildNone, 1)
	arr.AddPositions(text, 0, len(text), 1, 1)
	require.Len(t, arr.Positions, 2)

	arr.Sort(text)
	arr.MakeBuckets(text, 2)

	_, total := arr.BucketSpan(arr.numBuckets(2) - 1)
	assert.Equal(t, int64(len(arr.Positions)), total)
}

func TestSortCorrectnessIsAdjacentOrdered(t *testing.T) {
	a := alphabet.DNA(false)
	text := []byte("ACGTTGCAACGTACGTTTTT")
	a.Tr(text, false)
	text = append(text, a.Delimiter)

	sd, err := seed.Parse("1 1 0 1 1", a, false)
	require.NoError(t, err)

	arr := New(sd, Width64, ChildFull, 4)
	arr.AddPositions(text, 0, len(text), 1, 1)
	arr.Sort(text)

	for i := 0; i+1 < len(arr.Positions); i++ {
		assert.LessOrEqual(t, arr.compare(text, arr.Positions[i], arr.Positions[i+1]), 0)
	}
}
