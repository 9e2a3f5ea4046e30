package seed

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurntSushi/lastdb/alphabet"
)

func TestParseExactSeedEveryLetterOwnSubset(t *testing.T) {
	a := alphabet.DNA(false)
	s, err := Parse("1", a, false)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())

	codes := []byte{0, 1, 2, 3} // A C G T
	seen := map[byte]bool{}
	for _, c := range codes {
		sub := s.SubsetAt(0, c)
		assert.False(t, s.IsDelimiter(0, sub))
		seen[sub] = true
	}
	assert.Len(t, seen, 4)
	assert.True(t, s.IsDelimiter(0, s.SubsetAt(0, a.Delimiter)))
}

func TestDelimiterIsAlwaysTheHighestID(t *testing.T) {
	a := alphabet.DNA(false)
	s, err := Parse("1", a, false)
	require.NoError(t, err)
	delim := s.SubsetAt(0, a.Delimiter)
	for _, code := range []byte{0, 1, 2, 3} {
		assert.Less(t, s.SubsetAt(0, code), delim)
	}
}

func TestParseGroupedSubset(t *testing.T) {
	a := alphabet.DNA(false)
	s, err := Parse("(AG)(CT)", a, false)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())
	assert.Equal(t, s.SubsetAt(0, 0), s.SubsetAt(0, 2)) // A and G together
	assert.NotEqual(t, s.SubsetAt(0, 0), s.SubsetAt(1, 1))
}

func TestParseRejectsUnknownLetter(t *testing.T) {
	a := alphabet.DNA(false)
	_, err := Parse("Z", a, false)
	assert.Error(t, err)
}

func TestCaseSensitiveExcludesLowercase(t *testing.T) {
	a := alphabet.DNA(true)
	s, err := Parse("1", a, true)
	require.NoError(t, err)
	lowerA := byte(a.N + 1) // lowercase 'a' code
	assert.True(t, s.IsDelimiter(0, s.SubsetAt(0, lowerA)))
}

func TestCaseInsensitiveIncludesLowercase(t *testing.T) {
	a := alphabet.DNA(true)
	s, err := Parse("1", a, false)
	require.NoError(t, err)
	lowerA := byte(a.N + 1)
	assert.Equal(t, s.SubsetAt(0, 0), s.SubsetAt(0, lowerA))
}

func TestParseFileForwardsLastalLines(t *testing.T) {
	a := alphabet.DNA(false)
	src := "#lastal -r1 -q1\n1 1 0 1 1\n"
	seeds, err := ParseFile(strings.NewReader(src), a, false)
	require.NoError(t, err)
	require.Len(t, seeds, 1)
	assert.Equal(t, []string{"#lastal -r1 -q1"}, seeds[0].LastalLines)
	assert.Equal(t, 5, seeds[0].Len())
}

func TestBuiltinYASSExists(t *testing.T) {
	_, ok := Builtin("YASS")
	assert.True(t, ok)
}
