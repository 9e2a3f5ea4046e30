package lastdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstSequenceInChunkCoversAllEvenly(t *testing.T) {
	numSeqs, numChunks := 10, 3
	var total int
	for c := 0; c < numChunks; c++ {
		lo := firstSequenceInChunk(numSeqs, c, numChunks)
		hi := firstSequenceInChunk(numSeqs, c+1, numChunks)
		assert.GreaterOrEqual(t, hi, lo)
		total += hi - lo
	}
	assert.Equal(t, numSeqs, total)
	assert.Equal(t, 0, firstSequenceInChunk(numSeqs, 0, numChunks))
	assert.Equal(t, numSeqs, firstSequenceInChunk(numSeqs, numChunks, numChunks))
}

func TestMaxLettersPerVolumeClampsToIndexWidth(t *testing.T) {
	args := DefaultArgs()
	args.IndexWidth = 32
	args.VolumeSize = 1 << 62 // deliberately oversized

	letters, err := maxLettersPerVolume(args, 1, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, letters, int64(^uint32(0)>>1))
}

func TestMaxLettersPerVolumeRejectsTooSmallBudget(t *testing.T) {
	args := DefaultArgs()
	args.VolumeSize = 1

	_, err := maxLettersPerVolume(args, 4, false)
	assert.Error(t, err)
}

func TestBuildSeedsDefaultsToYASS(t *testing.T) {
	args := DefaultArgs()
	alph, err := buildAlphabet(args)
	require.NoError(t, err)
	seeds, err := buildSeeds(args, alph)
	require.NoError(t, err)
	assert.NotEmpty(t, seeds)
}

func TestBuildAlphabetUserString(t *testing.T) {
	args := DefaultArgs()
	args.UserAlphabet = "ACGT"
	alph, err := buildAlphabet(args)
	require.NoError(t, err)
	assert.Equal(t, 4, alph.Size)
}
