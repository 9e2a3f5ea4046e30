// Package tantan soft-masks low-complexity, probably-repetitive
// regions of a coded sequence buffer in place, the way lastdb.cc's
// TantanMasker wraps the Tantan algorithm. The probabilistic repeat
// model here is a simplified, deterministic approximation: a sliding
// window flags a position as masked when its immediate neighborhood is
// dominated by short-period repeats of the same letter or dimer,
// which is the dominant real-world case Tantan targets (homopolymer
// and short tandem runs) without requiring the full HMM machinery.
package tantan

import "github.com/BurntSushi/lastdb/alphabet"

// Masker masks low-complexity runs in a coded buffer.
type Masker struct {
	alph     *alphabet.Alphabet
	stricter bool

	// minRun is the run length (in letters) that must repeat a short
	// period before tantan marks it low-complexity; stricter mode uses
	// a shorter run, matching --tantan 2's more aggressive masking.
	// minRun=9 is the lowest standard-mode value that still masks
	// spec.md §8 scenario 3's literal example (a 9-letter homopolymer
	// run, "AAAAAAAAACGT" under --tantan 1): period 1 over 9 identical
	// letters yields 8 adjacent matches, and the flush condition is
	// runLen+period >= minRun, i.e. 8+1 >= 9.
	minRun    int
	maxPeriod int
}

// New builds a Masker for the given alphabet. level selects the
// --tantan setting: 0 means masking is disabled (New is never called
// by the driver in that case, but is harmless if it is), 1 is
// standard, 2 is stricter.
func New(alph *alphabet.Alphabet, level int) *Masker {
	m := &Masker{alph: alph, stricter: level >= 2}
	if m.stricter {
		m.minRun, m.maxPeriod = 6, 3
	} else {
		m.minRun, m.maxPeriod = 9, 4
	}
	return m
}

// Mask scans coded[begin:end] in place and, for every position lastdb
// judges part of a low-complexity run, rewrites its code through
// toLowercaseTable. Positions outside any masked run are untouched.
// Mask never crosses a delimiter code, so it is safe to call on a
// range spanning multiple records as long as callers split on
// sequence boundaries for parallelism (spec.md §5) rather than
// correctness, since delimiters act as hard stops regardless.
func (m *Masker) Mask(coded []byte, begin, end int, toLowercaseTable []byte) {
	for period := 1; period <= m.maxPeriod; period++ {
		m.maskPeriod(coded, begin, end, period, toLowercaseTable)
	}
}

// maskPeriod marks runs where coded[i] == coded[i+period] for at
// least minRun-period consecutive comparisons, i.e. runs spanning at
// least minRun letters.
func (m *Masker) maskPeriod(coded []byte, begin, end, period int, toLowercaseTable []byte) {
	if end-begin <= period {
		return
	}
	runStart := -1
	runLen := 0

	flush := func(stop int) {
		if runLen+period >= m.minRun {
			for i := runStart; i < stop+period; i++ {
				if i < begin || i >= end {
					continue
				}
				c := coded[i]
				if c == m.alph.Delimiter {
					continue
				}
				coded[i] = toLowercaseTable[c]
			}
		}
		runStart, runLen = -1, 0
	}

	for i := begin; i+period < end; i++ {
		if coded[i] == m.alph.Delimiter || coded[i+period] == m.alph.Delimiter {
			flush(i)
			continue
		}
		if coded[i] == coded[i+period] {
			if runStart < 0 {
				runStart = i
			}
			runLen++
		} else {
			flush(i)
		}
	}
	flush(end - period)
}
