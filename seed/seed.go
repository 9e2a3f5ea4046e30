// Package seed implements lastdb.cc's CyclicSubsetSeed: a parsed
// pattern that, at each cyclic position, maps a letter code to a
// subset id.
package seed

import (
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/lastdb/alphabet"
	"github.com/BurntSushi/lastdb/cmd/util"
)

// unassigned marks a code that hasn't been placed into a real subset
// yet while a position's table is being built; every code left at
// unassigned becomes the delimiter id once the real subset count is
// known.
const unassigned = 255

// builtins holds seed patterns shipped with lastdb.cc, keyed by name
// as given to --seed.
var builtins = map[string]string{
	// default DNA seed: two spaced exact-match patterns (every letter
	// its own subset at each "1" position; no transition tolerance).
	"YASS": "1 1 1 0 1 1 0 1 1 1\n1 1 0 1 1 1 1 0 1 1\n",
	// the trivial "match every position exactly" seed.
	"exact": "1\n",
	"near":  "1 1 0 1 1\n",
}

// Seed is one cyclic subset seed: a sequence of L positions, each a
// 256-entry code->subset table, plus the number of subsets at each
// position (needed to size the bucket table mixed-radix index).
//
// The delimiter subset at position k is always the highest id,
// NumSubsets[k]-1: the alphabet's own delimiter code, any letter a
// position's descriptor doesn't place, and (under a case-sensitive
// seed) a lowercase code, all land there. Giving it the top id rather
// than 0 means ordinary numeric comparison of subset ids sorts a
// suffix that hits the delimiter strictly after any suffix that still
// has a real letter at the same cyclic offset, matching spec.md's
// worked sort-order example (scenario 1).
type Seed struct {
	Name        string
	Tables      [][256]byte // len == L; Tables[k][code] = subset id
	NumSubsets  []int       // len == L; number of distinct subset ids at position k (including delimiter)
	LastalLines []string    // "#lastal ..." comment lines forwarded verbatim
}

// Len returns the cyclic period L.
func (s *Seed) Len() int { return len(s.Tables) }

// SubsetAt returns the subset id for a code at cyclic position k.
func (s *Seed) SubsetAt(k int, code byte) byte {
	return s.Tables[k%len(s.Tables)][code]
}

// DelimiterID returns the reserved, always-highest subset id at
// cyclic position k.
func (s *Seed) DelimiterID(k int) byte {
	return byte(s.NumSubsets[k%len(s.Tables)] - 1)
}

// IsDelimiter reports whether subset is the delimiter id at position k.
func (s *Seed) IsDelimiter(k int, subset byte) bool {
	return subset == s.DelimiterID(k)
}

// Builtin looks up a seed by name (e.g. "YASS").
func Builtin(name string) (string, bool) {
	p, ok := builtins[name]
	return p, ok
}

// ParseFile reads a seed spec from r: pattern lines (one seed per
// line) plus optional "#lastal ..." comment lines forwarded into the
// manifest. Blank lines and other '#' comments are ignored.
func ParseFile(r io.Reader, alph *alphabet.Alphabet, caseSensitive bool) ([]*Seed, error) {
	rawLines, err := util.ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("Error reading seed spec: %s.", err)
	}

	var lastalLines []string
	var seeds []*Seed
	for i, raw := range rawLines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#lastal") {
			lastalLines = append(lastalLines, line)
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		s, err := Parse(line, alph, caseSensitive)
		if err != nil {
			return nil, fmt.Errorf("seed spec line %d: %s", i+1, err)
		}
		seeds = append(seeds, s)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("empty or unparseable seed specification")
	}
	for _, s := range seeds {
		s.LastalLines = lastalLines
	}
	return seeds, nil
}

// Parse builds a single Seed from one pattern line. A position
// descriptor is a single letter (its own subset), a parenthesised
// group of letters (one subset for the group), "1" (every canonical
// letter its own subset), or "0" (match anything; every real letter
// shares one subset, but the delimiter is still excluded — spec.md
// calls this "skip").
func Parse(pattern string, alph *alphabet.Alphabet, caseSensitive bool) (*Seed, error) {
	descriptors, err := tokenize(pattern)
	if err != nil {
		return nil, err
	}
	if len(descriptors) == 0 {
		return nil, fmt.Errorf("empty seed pattern")
	}

	s := &Seed{
		Tables:     make([][256]byte, len(descriptors)),
		NumSubsets: make([]int, len(descriptors)),
	}
	for k, desc := range descriptors {
		table, numSubsets, err := buildPosition(desc, alph, caseSensitive)
		if err != nil {
			return nil, fmt.Errorf("position %d (%q): %s", k, desc, err)
		}
		s.Tables[k] = table
		s.NumSubsets[k] = numSubsets
	}
	return s, nil
}

// tokenize splits a pattern line into position descriptors:
// whitespace-separated tokens, except a parenthesised group counts as
// one token even if it contains no internal whitespace.
func tokenize(pattern string) ([]string, error) {
	var out []string
	i := 0
	for i < len(pattern) {
		for i < len(pattern) && pattern[i] == ' ' {
			i++
		}
		if i >= len(pattern) {
			break
		}
		if pattern[i] == '(' {
			end := strings.IndexByte(pattern[i:], ')')
			if end < 0 {
				return nil, fmt.Errorf("unclosed '(' in seed pattern %q", pattern)
			}
			out = append(out, pattern[i:i+end+1])
			i += end + 1
			continue
		}
		start := i
		for i < len(pattern) && pattern[i] != ' ' {
			i++
		}
		out = append(out, pattern[start:i])
	}
	return out, nil
}

// buildPosition constructs one position's 256-entry code->subset
// table. Real subset ids are assigned starting at 0; every code left
// unassigned (ambiguity letters, the alphabet delimiter, and — under a
// case-sensitive seed — lowercase codes) is remapped to the delimiter
// id, one past the highest real id, once the real count is known.
func buildPosition(desc string, alph *alphabet.Alphabet, caseSensitive bool) ([256]byte, int, error) {
	var table [256]byte
	for i := range table {
		table[i] = unassigned
	}

	var realCount int
	switch {
	case desc == "0":
		for i := 0; i < alph.N; i++ {
			table[i] = 0
			if alph.KeepLowercase && !caseSensitive {
				table[alph.N+1+i] = 0
			}
		}
		realCount = 1

	case desc == "1":
		for i := 0; i < alph.Size; i++ {
			table[i] = byte(i)
			if alph.KeepLowercase && !caseSensitive {
				table[alph.N+1+i] = byte(i)
			}
		}
		realCount = alph.Size

	case strings.HasPrefix(desc, "(") && strings.HasSuffix(desc, ")"):
		group := desc[1 : len(desc)-1]
		if group == "" {
			return table, 0, fmt.Errorf("empty subset group")
		}
		for i := 0; i < len(group); i++ {
			if err := placeLetter(&table, alph, group[i], 0, caseSensitive); err != nil {
				return table, 0, err
			}
		}
		realCount = 1

	case len(desc) == 1:
		if err := placeLetter(&table, alph, desc[0], 0, caseSensitive); err != nil {
			return table, 0, err
		}
		realCount = 1

	default:
		return table, 0, fmt.Errorf("unrecognized seed position descriptor")
	}

	delimiterID := byte(realCount)
	for i := range table {
		if table[i] == unassigned {
			table[i] = delimiterID
		}
	}
	return table, realCount + 1, nil
}

// placeLetter assigns the subset id for one letter's upper-case code,
// and its lower-case code too unless the seed is case-sensitive (in
// which case the lowercase code is left unassigned, so it is folded
// into the delimiter by buildPosition's final pass).
func placeLetter(table *[256]byte, alph *alphabet.Alphabet, letter byte, subset byte, caseSensitive bool) error {
	idx := strings.IndexByte(alph.All, letter)
	if idx < 0 {
		return fmt.Errorf("unknown letter '%c'", letter)
	}
	table[idx] = subset
	if alph.KeepLowercase && !caseSensitive {
		table[alph.N+1+idx] = subset
	}
	return nil
}
