package alphabet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDNARoundTrip(t *testing.T) {
	a := DNA(true)
	buf := []byte("ACGTacgt")
	a.Tr(buf, true)

	upper := []int{0, 1, 2, 3}
	for i, want := range upper {
		assert.Equal(t, want, int(buf[i]))
	}
	for i, want := range upper {
		lowerCode := int(buf[4+i])
		assert.Equal(t, want, int(a.NumbersToUppercase[lowerCode]))
		assert.NotEqual(t, want, lowerCode)
	}
}

func TestFoldsCaseWhenNotKept(t *testing.T) {
	a := DNA(true)
	buf := []byte("acgt")
	a.Tr(buf, false)
	for i, want := range []byte{0, 1, 2, 3} {
		assert.Equal(t, want, buf[i])
	}
}

func TestDelimiterForUnknownBytes(t *testing.T) {
	a := DNA(false)
	assert.Equal(t, a.Delimiter, a.Encode(' '))
	assert.Equal(t, a.Delimiter, a.Encode('\n'))
}

func TestCountCanonicalOnly(t *testing.T) {
	a := DNA(false)
	buf := []byte("ACGTN")
	a.Tr(buf, false)
	counts := make([]int, a.Size)
	a.Count(buf, counts)
	assert.Equal(t, []int{1, 1, 1, 1}, counts)
}

func TestLooksLikeDNA(t *testing.T) {
	a := DNA(false)
	good := []byte("ACGTACGTACGT")
	a.Tr(good, false)
	assert.True(t, a.LooksLikeDNA(good))

	bad := []byte("MKLVPQRSTWYMKLVPQRSTWY")
	protein := Protein(false)
	protein.Tr(bad, false)
	assert.False(t, protein.LooksLikeDNA(bad))
}

func TestFromStringRejectsDuplicates(t *testing.T) {
	_, err := FromString("AACG", false, false)
	assert.Error(t, err)
}
