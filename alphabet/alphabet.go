// Package alphabet maps raw input bytes to small integer codes and
// back, the way lastdb.cc's Alphabet class does for lastdb.
package alphabet

import (
	"fmt"
	"strings"
)

// dnaLetters and dnaAmbiguous are the built-in DNA alphabet: four
// canonical bases plus the IUPAC ambiguity codes.
const (
	dnaLetters   = "ACGT"
	dnaAmbiguous = "NSWKMYRBDHV"

	proteinLetters   = "ACDEFGHIKLMNPQRSTVWY"
	proteinAmbiguous = "BJOUXZ*"
)

// Alphabet is a bijection between the 256-byte input space and a small
// code space. Codes [0, Size) are the canonical letters in the order
// given; codes [Size, N) are ambiguity codes; code 2N+1 is the
// delimiter / "out of alphabet" sentinel. When KeepLowercase is set,
// every real letter additionally has a lowercase twin code at +N+1, so case can
// round-trip through the coded buffer; NumbersToUppercase and
// NumbersToLowercase translate between the two ranges.
type Alphabet struct {
	Letters   string // canonical letters, uppercase, in canonical order
	Ambiguous string // extra letters mapped to valid codes but excluded from Size
	All       string // Letters + Ambiguous

	Size int // len(Letters): canonical letter count, used by count()
	N    int // len(All): total real-letter codes

	IsProtein     bool
	KeepLowercase bool

	// Delimiter is the sentinel code: both the inter-record delimiter
	// written into a coded MultiSequence buffer, and the code assigned
	// to any byte that is not a recognized letter.
	Delimiter byte

	encodeCased        [256]byte // byte -> code, case preserved
	NumbersToUppercase []byte    // code -> uppercase-range code
	NumbersToLowercase []byte    // code -> lowercase-range code
}

// DNA returns the built-in DNA alphabet.
func DNA(keepLowercase bool) *Alphabet {
	return build(dnaLetters, dnaAmbiguous, false, keepLowercase)
}

// Protein returns the built-in protein alphabet.
func Protein(keepLowercase bool) *Alphabet {
	return build(proteinLetters, proteinAmbiguous, true, keepLowercase)
}

// FromString builds a user-specified alphabet from a canonical letter
// string. No ambiguity letters are implied; any byte that is not one
// of the given letters (upper or lower case) maps to the delimiter.
func FromString(letters string, isProtein, keepLowercase bool) (*Alphabet, error) {
	letters = strings.ToUpper(letters)
	if len(letters) == 0 {
		return nil, fmt.Errorf("empty alphabet letter string")
	}
	seen := make(map[byte]bool, len(letters))
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			return nil, fmt.Errorf("alphabet letter '%c' is not a letter", c)
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate alphabet letter '%c'", c)
		}
		seen[c] = true
	}
	return build(letters, "", isProtein, keepLowercase), nil
}

func build(letters, ambiguous string, isProtein, keepLowercase bool) *Alphabet {
	a := &Alphabet{
		Letters:       letters,
		Ambiguous:     ambiguous,
		All:           letters + ambiguous,
		Size:          len(letters),
		IsProtein:     isProtein,
		KeepLowercase: keepLowercase,
	}
	a.N = len(a.All)
	a.Delimiter = byte(2*a.N + 1)

	numCodes := int(a.Delimiter) + 1
	a.NumbersToUppercase = make([]byte, numCodes)
	a.NumbersToLowercase = make([]byte, numCodes)
	for c := 0; c < numCodes; c++ {
		a.encodeCasedDefault(byte(c))
	}

	for i := 0; i < 256; i++ {
		a.encodeCased[i] = a.Delimiter
	}
	for i := 0; i < a.N; i++ {
		upper := a.All[i]
		lower := toLower(upper)
		upperCode := byte(i)
		lowerCode := byte(a.N + 1 + i)

		a.encodeCased[upper] = upperCode
		if keepLowercase {
			a.encodeCased[lower] = lowerCode
		} else {
			a.encodeCased[lower] = upperCode
		}

		a.NumbersToUppercase[upperCode] = upperCode
		a.NumbersToLowercase[upperCode] = lowerCode
		if keepLowercase {
			a.NumbersToUppercase[lowerCode] = upperCode
			a.NumbersToLowercase[lowerCode] = lowerCode
		}
	}
	a.NumbersToUppercase[a.Delimiter] = a.Delimiter
	a.NumbersToLowercase[a.Delimiter] = a.Delimiter
	return a
}

// encodeCasedDefault seeds the to-upper/to-lower tables with the
// identity before the real letter codes overwrite their entries;
// every code not assigned a canonical letter (i.e. the delimiter)
// falls through to itself.
func (a *Alphabet) encodeCasedDefault(c byte) {
	a.NumbersToUppercase[c] = c
	a.NumbersToLowercase[c] = c
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// Encode returns the code a raw input byte maps to, honoring case per
// KeepLowercase.
func (a *Alphabet) Encode(b byte) byte {
	return a.encodeCased[b]
}

// Tr translates a byte slice in place from raw input letters to codes.
// keepLowercase mirrors spec.md's tr(begin, end, keepLowercase): when
// false, every code is folded to its uppercase range regardless of how
// the Alphabet itself was built, so callers choosing not to preserve
// case for a given pass can still reuse one Alphabet.
func (a *Alphabet) Tr(buf []byte, keepLowercase bool) {
	for i, b := range buf {
		c := a.encodeCased[b]
		if !keepLowercase {
			c = a.NumbersToUppercase[c]
		}
		buf[i] = c
	}
}

// Count increments counts[0:Size] with the canonical-letter
// frequencies of a coded (not raw) range. Ambiguous and delimiter
// codes are ignored.
func (a *Alphabet) Count(coded []byte, counts []int) {
	for _, c := range coded {
		u := a.NumbersToUppercase[c]
		if int(u) < a.Size {
			counts[u]++
		}
	}
}

// String renders the full recognized letter set (canonical +
// ambiguous), the form written into a .prj manifest's alphabet= line;
// see DESIGN.md's Open Question resolution for why ambiguity letters
// are included.
func (a *Alphabet) String() string {
	return a.All
}

// LooksLikeDNA implements lastdb.cc's isDubiousDna heuristic: the
// first 100 letters (or fewer, if a delimiter is hit first) of coded
// text are folded to uppercase and checked against the canonical DNA
// codes plus 'N'; fewer than 90% matching triggers a warning upstream.
func (a *Alphabet) LooksLikeDNA(coded []byte) bool {
	const sampleSize = 100
	dnaLike := func(code byte) bool {
		u := a.NumbersToUppercase[code]
		if int(u) >= a.N {
			return false
		}
		return strings.IndexByte(dnaLetters+"N", a.All[u]) >= 0
	}

	total, matches := 0, 0
	for _, c := range coded {
		if c == a.Delimiter {
			break
		}
		total++
		if dnaLike(c) {
			matches++
		}
		if total >= sampleSize {
			break
		}
	}
	if total == 0 {
		return true
	}
	return float64(matches)/float64(total) >= 0.9
}
