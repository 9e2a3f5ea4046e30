package tantan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/BurntSushi/lastdb/alphabet"
)

// TestMaskLowersHomopolymerRun reproduces spec.md §8 scenario 3
// literally: ">s\nAAAAAAAAACGT\n" under --tantan 1 must lowercase the
// leading 9-letter A-run.
func TestMaskLowersHomopolymerRun(t *testing.T) {
	a := alphabet.DNA(true)
	buf := []byte("AAAAAAAAACGT")
	a.Tr(buf, true)

	m := New(a, 1)
	m.Mask(buf, 0, len(buf), a.NumbersToLowercase)

	for i, c := range buf[:9] {
		assert.NotEqualf(t, int(a.NumbersToUppercase[c]), int(c), "position %d not lowered", i)
	}
	for i, c := range buf[9:] {
		assert.Equalf(t, int(a.NumbersToUppercase[c]), int(c), "position %d unexpectedly lowered", 9+i)
	}
}

// TestMaskLeavesNonRepeatUntouched uses an 8-letter buffer: short
// enough that no period in [1,maxPeriod] can accumulate minRun
// matches regardless of content (max possible adjacent-match run for
// period p over 8 letters is 8-p, which is below every period's
// runLen+period>=minRun threshold), so this is untouched by
// construction, not by luck of the chosen letters.
func TestMaskLeavesNonRepeatUntouched(t *testing.T) {
	a := alphabet.DNA(true)
	buf := []byte("ACGTGCAT")
	orig := append([]byte(nil), buf...)
	a.Tr(buf, true)
	a.Tr(orig, true)

	m := New(a, 1)
	m.Mask(buf, 0, len(buf), a.NumbersToLowercase)
	assert.Equal(t, orig, buf)
}

func TestMaskNeverCrossesDelimiter(t *testing.T) {
	a := alphabet.DNA(true)
	buf := []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, a.Delimiter, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	m := New(a, 1)
	m.Mask(buf, 0, len(buf), a.NumbersToLowercase)
	assert.Equal(t, a.Delimiter, buf[12])
}
