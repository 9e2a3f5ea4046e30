// Package suffixarray implements lastdb.cc's SubsetSuffixArray: the
// core of the index. It gathers candidate text positions, sorts them
// under a cyclic subset seed's comparison rather than raw byte
// comparison, builds a bucket table for O(1) descent, and writes the
// result to a volume's .suf/.bck files.
package suffixarray

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/BurntSushi/lastdb/cmd/util"
	"github.com/BurntSushi/lastdb/seed"
)

// IndexWidth selects the on-disk integer width for position and
// bucket-offset values. spec.md §9 leaves the 32-vs-64-bit choice to
// the implementation; it is recorded implicitly by file length, so
// the reader only needs to be told which width the writer used.
type IndexWidth int

const (
	Width32 IndexWidth = 32
	Width64 IndexWidth = 64
)

// MaxValue returns the largest position this width can address,
// the clamp spec.md §9's Open Question asks implementations to derive
// explicitly rather than infer.
func (w IndexWidth) MaxValue() int64 {
	if w == Width32 {
		return int64(^uint32(0) >> 1)
	}
	return int64(^uint64(0) >> 1)
}

// ChildTableKind selects the auxiliary structure emitted alongside the
// suffix array to speed descent past the bucket table's fixed depth.
// "None" omits it entirely (descent falls back to re-comparing via the
// seed). ChildByte, ChildShort and ChildFull are all written the same
// way, one index-width integer per position; no packed byte or short
// form is produced.
type ChildTableKind int

const (
	ChildNone ChildTableKind = iota
	ChildByte
	ChildShort
	ChildFull
)

func (k ChildTableKind) String() string {
	switch k {
	case ChildNone:
		return "none"
	case ChildByte:
		return "byte"
	case ChildShort:
		return "short"
	default:
		return "full"
	}
}

// Array is one SubsetSuffixArray: ephemeral to one volume x one seed.
type Array struct {
	Seed *seed.Seed

	Positions []int32pos // suffix positions, in sort order after Sort
	child     []int32pos // child[hi-1] = lo for each emitted equal-run [lo,hi)

	Depth       int
	bucketSpans []int32pos // len == numBuckets(Depth)+1

	IndexWidth           IndexWidth
	ChildKind            ChildTableKind
	MinUnsortedInterval  int
}

// int32pos is the in-memory position type; file width is chosen only
// at write time (ToFiles), so 64-bit headroom costs nothing here.
type int32pos = int64

// New creates an empty Array bound to one seed.
func New(sd *seed.Seed, width IndexWidth, childKind ChildTableKind, minUnsortedInterval int) *Array {
	return &Array{
		Seed:                sd,
		IndexWidth:          width,
		ChildKind:           childKind,
		MinUnsortedInterval: minUnsortedInterval,
	}
}

// AddPositions enumerates candidate suffix positions from [begin,end)
// per spec.md §4.5.1. window == 1 adds every step-th position whose
// seed-position-0 subset isn't the delimiter; window > 1 instead
// retains, per window of `window` stepped positions, only the
// lexicographically smallest under the seed (minimizer subsampling).
func (a *Array) AddPositions(text []byte, begin, end, step, window int) {
	if window <= 1 {
		for p := begin; p < end; p += step {
			if !a.Seed.IsDelimiter(0, a.Seed.SubsetAt(0, text[p])) {
				a.Positions = append(a.Positions, int64(p))
			}
		}
		return
	}

	span := step * window
	for winStart := begin; winStart < end; winStart += span {
		winEnd := winStart + span
		if winEnd > end {
			winEnd = end
		}
		best := -1
		for p := winStart; p < winEnd; p += step {
			if a.Seed.IsDelimiter(0, a.Seed.SubsetAt(0, text[p])) {
				continue
			}
			if best < 0 || a.compare(text, int64(p), int64(best)) < 0 {
				best = p
			}
		}
		if best >= 0 {
			a.Positions = append(a.Positions, int64(best))
		}
	}
}

// compare implements the subset-seed suffix comparison: positions i
// and j compare at cyclic offset k by seed-position k's subset id for
// text[i+k] vs text[j+k]; comparison stops as soon as either side's
// subset id is that position's delimiter id. Because the delimiter id
// is always the highest id at its position (see seed.Seed), a suffix
// that terminates sorts after one that still has a live subset at the
// same offset, and two suffixes that terminate simultaneously compare
// equal.
func (a *Array) compare(text []byte, i, j int64) int {
	if i == j {
		return 0
	}
	L := a.Seed.Len()
	for k := 0; ; k++ {
		si := a.Seed.SubsetAt(k%L, text[i+int64(k)])
		sj := a.Seed.SubsetAt(k%L, text[j+int64(k)])
		if si != sj {
			if si < sj {
				return -1
			}
			return 1
		}
		if a.Seed.IsDelimiter(k%L, si) {
			return 0
		}
	}
}

// Sort orders Positions under the seed's subset comparison using a
// subset-bucket radix sort (spec.md §4.5.2), and populates the child
// table used to navigate equal-prefix runs.
func (a *Array) Sort(text []byte) {
	n := len(a.Positions)
	a.child = make([]int32pos, n)
	for i := range a.child {
		a.child[i] = -1
	}
	if n <= 1 {
		return
	}
	a.sortRange(text, 0, n, 0)
}

// sortRange radix-sorts positions[lo:hi] by cyclic seed position k,
// recursing into every non-delimiter bucket with more than one member.
func (a *Array) sortRange(text []byte, lo, hi, k int) {
	n := hi - lo
	if n <= 1 {
		return
	}
	if n < a.MinUnsortedInterval {
		a.fallbackSort(text, lo, hi)
		if hi-1 >= lo {
			a.child[hi-1] = int64(lo)
		}
		return
	}

	L := a.Seed.Len()
	pos := k % L
	numSubsets := a.Seed.NumSubsets[pos]

	subsetOf := make([]byte, n)
	counts := make([]int, numSubsets)
	for i, p := range a.Positions[lo:hi] {
		s := a.Seed.SubsetAt(pos, text[p+int64(k)])
		subsetOf[i] = s
		counts[s]++
	}

	offsets := make([]int, numSubsets+1)
	for s := 0; s < numSubsets; s++ {
		offsets[s+1] = offsets[s] + counts[s]
	}

	scratch := make([]int32pos, n)
	cursor := append([]int(nil), offsets...)
	for i, p := range a.Positions[lo:hi] {
		s := subsetOf[i]
		scratch[cursor[s]] = p
		cursor[s]++
	}
	copy(a.Positions[lo:hi], scratch)

	delimiterID := numSubsets - 1
	for s := 0; s < numSubsets; s++ {
		bLo := lo + offsets[s]
		bHi := lo + offsets[s+1]
		if bHi <= bLo {
			continue
		}
		if s != delimiterID && bHi-bLo > 1 {
			a.sortRange(text, bLo, bHi, k+1)
		}
		a.child[bHi-1] = int64(bLo)
	}
}

// fallbackSort finishes a short run with a direct comparison sort,
// the minUnsortedInterval tuning parameter of spec.md §4.5.2.
func (a *Array) fallbackSort(text []byte, lo, hi int) {
	sub := a.Positions[lo:hi]
	sort.Slice(sub, func(i, j int) bool {
		return a.compare(text, sub[i], sub[j]) < 0
	})
}

// numBuckets returns the number of depth-d subset prefixes: the
// product, over seed positions 0..depth-1, of that position's
// NumSubsets (including its delimiter id: a suffix that hits the
// delimiter at some position k < depth lands in a bucket whose digit
// at k is the delimiter id; see bucketIndex).
func (a *Array) numBuckets(depth int) int {
	n := 1
	for k := 0; k < depth; k++ {
		n *= a.Seed.NumSubsets[k%a.Seed.Len()]
	}
	return n
}

// MakeBuckets precomputes, for every depth-letter subset prefix, the
// [begin,end) span in the sorted array (spec.md §4.5.3). The table is
// indexed by a mixed-radix integer built from the subset ids at each
// of the depth positions; every position is counted exactly once,
// including ones whose suffix hits the delimiter before depth (see
// bucketIndex), so the spans exactly partition Positions.
func (a *Array) MakeBuckets(text []byte, depth int) {
	a.Depth = depth
	numBuckets := a.numBuckets(depth)
	a.bucketSpans = make([]int32pos, numBuckets+1)

	if len(a.Positions) == 0 {
		return
	}

	counts := make([]int, numBuckets)
	for _, p := range a.Positions {
		counts[a.bucketIndex(text, p, depth)]++
	}
	for i := 0; i < numBuckets; i++ {
		a.bucketSpans[i+1] = a.bucketSpans[i] + int64(counts[i])
	}
}

// bucketIndex computes the mixed-radix bucket index for position p's
// first depth cyclic subsets. Once a suffix hits its delimiter id at
// some position k < depth, sortRange never descends past that
// position (the delimiter bucket is skipped in the recursion), so
// every such suffix shares one contiguous run at that point; bucketIndex
// reproduces that by using the delimiter digit at k and padding every
// remaining position (k+1..depth-1) with digit 0, rather than
// excluding the suffix from the bucket table entirely.
func (a *Array) bucketIndex(text []byte, p int64, depth int) int {
	idx := 0
	terminated := false
	for k := 0; k < depth; k++ {
		var s byte
		if !terminated {
			s = a.Seed.SubsetAt(k, text[p+int64(k)])
			terminated = a.Seed.IsDelimiter(k, s)
		}
		idx = idx*a.Seed.NumSubsets[k%a.Seed.Len()] + int(s)
	}
	return idx
}

// BucketSpan returns the [begin,end) span of the suffix array for
// bucket index idx, as produced by MakeBuckets.
func (a *Array) BucketSpan(idx int) (int64, int64) {
	return a.bucketSpans[idx], a.bucketSpans[idx+1]
}

// fileNames returns the .suf/.bck names for this seed's letter suffix
// ('a', 'b', ... when multiple seeds coexist; omitted when isLonely).
func fileNames(baseName string, seedIndex int, isLonely bool) (suf, bck string) {
	if isLonely {
		return baseName + ".suf", baseName + ".bck"
	}
	letter := string(rune('a' + seedIndex))
	return baseName + letter + ".suf", baseName + letter + ".bck"
}

// ToFiles writes the position vector, child table, and bucket table
// for this Array (spec.md §4.5.4). seedIndex selects the per-seed
// filename letter in multi-seed builds; textLength is recorded so the
// child-table / bucket-table layout can be validated on read-back.
func (a *Array) ToFiles(baseName string, seedIndex int, isLonely bool, textLength int64) error {
	sufName, bckName := fileNames(baseName, seedIndex, isLonely)

	if err := a.writeSuf(sufName); err != nil {
		return err
	}
	if err := a.writeBck(bckName, textLength); err != nil {
		return err
	}
	return nil
}

func (a *Array) byteOrder() binary.ByteOrder {
	return binary.NativeEndian
}

func (a *Array) writeInt(w *bufio.Writer, v int64) error {
	if a.IndexWidth == Width32 {
		var buf [4]byte
		a.byteOrder().PutUint32(buf[:], uint32(v))
		_, err := w.Write(buf[:])
		return err
	}
	var buf [8]byte
	a.byteOrder().PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func (a *Array) writeSuf(path string) error {
	f, err := util.CreateFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	for _, p := range a.Positions {
		if err := a.writeInt(w, p); err != nil {
			return fmt.Errorf("Error writing '%s': %s.", path, err)
		}
	}
	if a.ChildKind != ChildNone {
		for _, c := range a.child {
			if err := a.writeInt(w, c); err != nil {
				return fmt.Errorf("Error writing '%s': %s.", path, err)
			}
		}
	}
	return w.Flush()
}

func (a *Array) writeBck(path string, textLength int64) error {
	f, err := util.CreateFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	if err := a.writeInt(w, int64(a.Depth)); err != nil {
		return err
	}
	for k := 0; k < a.Depth; k++ {
		if err := a.writeInt(w, int64(a.Seed.NumSubsets[k%a.Seed.Len()])); err != nil {
			return err
		}
	}
	if err := a.writeInt(w, textLength); err != nil {
		return err
	}
	for _, s := range a.bucketSpans {
		if err := a.writeInt(w, s); err != nil {
			return fmt.Errorf("Error writing '%s': %s.", path, err)
		}
	}
	return w.Flush()
}
