// Package lastdb implements the IndexDriver: it orchestrates
// ingest -> mask -> index -> emit across one or more volumes, per
// spec.md §4.6.
package lastdb

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/BurntSushi/lastdb/alphabet"
	"github.com/BurntSushi/lastdb/multiseq"
	"github.com/BurntSushi/lastdb/seed"
	"github.com/BurntSushi/lastdb/suffixarray"
	"github.com/BurntSushi/lastdb/tantan"

	"github.com/BurntSushi/lastdb/cmd/util"
)

// Run executes the full indexing pipeline for args, writing one or
// more volumes under args.BaseName. Every error it returns is a
// *Error with one of the five kinds from spec.md §7.
func Run(args *Args) error {
	if args.BaseName == "" {
		return errorf(BadArgument, "an output base name is required")
	}

	alph, err := buildAlphabet(args)
	if err != nil {
		return err
	}
	seeds, err := buildSeeds(args, alph)
	if err != nil {
		return err
	}

	hasQuality := strings.HasPrefix(args.Format, "fastq")
	d := &driver{
		args:      args,
		alph:      alph,
		seeds:     seeds,
		hasQuality: hasQuality,
	}

	if args.CountsOnly {
		return d.runCountsOnly()
	}
	return d.runIndexed()
}

type driver struct {
	args       *Args
	alph       *alphabet.Alphabet
	seeds      []*seed.Seed
	hasQuality bool

	dubiousChecked bool
}

// buildAlphabet implements spec.md §4.6 step 2's alphabet half: build
// from a user letter string if given, else the built-in DNA alphabet
// (protein is only used if explicitly requested, since the
// dubious-DNA heuristic only makes sense against a default-DNA
// assumption).
func buildAlphabet(args *Args) (*alphabet.Alphabet, error) {
	if args.UserAlphabet != "" {
		a, err := alphabet.FromString(args.UserAlphabet, args.Protein, args.KeepLowercase)
		if err != nil {
			return nil, errorf(BadArgument, "%s", err)
		}
		return a, nil
	}
	if args.Protein {
		return alphabet.Protein(args.KeepLowercase), nil
	}
	return alphabet.DNA(args.KeepLowercase), nil
}

// buildSeeds merges a seed file's patterns with ad-hoc CLI patterns
// and named built-ins, per spec.md §4.6 step 1 / Design Note
// "Global-looking argument state": the seed file (if any) is parsed
// first, then explicit CLI seed patterns and names are appended,
// command line wins by simply being additional seeds, not a
// tie-broken override, since spec.md says seeds "may coexist".
func buildSeeds(args *Args, alph *alphabet.Alphabet) ([]*seed.Seed, error) {
	var seeds []*seed.Seed

	if args.SeedFile != "" {
		f, err := util.OpenFile(args.SeedFile)
		if err != nil {
			return nil, errorf(IoError, "%s", err)
		}
		defer f.Close()
		parsed, err := seed.ParseFile(f, alph, args.CaseSensitive)
		if err != nil {
			return nil, errorf(BadSeed, "%s", err)
		}
		seeds = append(seeds, parsed...)
	}

	for _, name := range args.SeedNames {
		pattern, ok := seed.Builtin(name)
		if !ok {
			return nil, errorf(BadSeed, "unknown built-in seed %q", name)
		}
		parsed, err := seed.ParseFile(strings.NewReader(pattern), alph, args.CaseSensitive)
		if err != nil {
			return nil, errorf(BadSeed, "%s", err)
		}
		seeds = append(seeds, parsed...)
	}

	for _, pattern := range args.SeedPatterns {
		s, err := seed.Parse(pattern, alph, args.CaseSensitive)
		if err != nil {
			return nil, errorf(BadSeed, "%s", err)
		}
		seeds = append(seeds, s)
	}

	if len(seeds) == 0 {
		pattern, _ := seed.Builtin("YASS")
		parsed, err := seed.ParseFile(strings.NewReader(pattern), alph, args.CaseSensitive)
		if err != nil {
			return nil, errorf(BadSeed, "%s", err)
		}
		seeds = parsed
	}
	return seeds, nil
}

func qualityOffset(format string) int {
	switch format {
	case "fastq-illumina", "fastq-solexa":
		return multiseq.QualityIllumina
	default:
		return multiseq.QualitySanger
	}
}

func (d *driver) inputNames() []string {
	if len(d.args.Inputs) == 0 {
		return []string{"-"}
	}
	return d.args.Inputs
}

func openInput(name string) (io.Reader, io.Closer, error) {
	if name == "" || name == "-" {
		return os.Stdin, io.NopCloser(nil), nil
	}
	f, err := util.OpenFile(name)
	if err != nil {
		return nil, nil, errorf(IoError, "%s", err)
	}
	return f, f, nil
}

// checkDubiousDNA implements spec.md §4.6 step 2's warning half: run
// once, against whatever text has accumulated in the first batch.
func (d *driver) checkDubiousDNA(ms *multiseq.MultiSequence) {
	if d.dubiousChecked || d.args.UserAlphabet != "" || d.args.Protein {
		d.dubiousChecked = true
		return
	}
	if len(ms.Text) == 0 {
		return
	}
	d.dubiousChecked = true
	if !d.alph.LooksLikeDNA(ms.Text) {
		util.Warning(fmt.Errorf("that's not DNA"), "lastdb")
	}
}

func (d *driver) appendOneBatch(ms *multiseq.MultiSequence, r io.Reader, maxLen int) error {
	if d.hasQuality {
		return ms.AppendFromFastq(r, maxLen, qualityOffset(d.args.Format))
	}
	return ms.AppendFromFasta(r, maxLen)
}

// runCountsOnly streams every input, accumulating letter frequencies,
// and resets MultiSequence after each append call; no volume is
// emitted. The letter budget passed here is unbounded, so one call
// reads a whole input: memory is bounded per input, not per record.
func (d *driver) runCountsOnly() error {
	ms := multiseq.New(d.alph, d.hasQuality)
	numSequences := 0
	var numLetters int64
	freqs := make([]int, d.alph.Size)

	for _, name := range d.inputNames() {
		r, closer, err := openInput(name)
		if err != nil {
			return err
		}
		for {
			err := d.appendOneBatch(ms, r, 1<<62)
			d.checkDubiousDNA(ms)
			if err == io.EOF {
				break
			}
			if err != nil {
				closer.Close()
				return errorf(BadInput, "%s", err)
			}
			for i := 0; i < ms.NumSequences(); i++ {
				numSequences++
				numLetters += int64(ms.SeqEnd(i) - ms.SeqBeg(i))
			}
			d.alph.Count(ms.Text, freqs)
			ms.Reset()
		}
		closer.Close()
	}

	m := &Manifest{
		Alphabet:       d.alph,
		NumOfSequences: numSequences,
		NumOfLetters:   numLetters,
		LetterFreqs:    freqs,
		CountsOnly:     true,
	}
	return m.WritePrj(d.args.BaseName + ".prj")
}

// runIndexed streams every input, splitting into volumes whenever the
// letter budget (maxLettersPerVolume) is hit, masking and indexing
// each volume as it closes.
func (d *driver) runIndexed() error {
	numSeeds := len(d.seeds)
	maxLen, err := maxLettersPerVolume(d.args, numSeeds, d.hasQuality)
	if err != nil {
		return err
	}

	ms := multiseq.New(d.alph, d.hasQuality)
	var volumeBases []string

	flush := func() error {
		if ms.NumSequences() == 0 {
			return nil
		}
		base := fmt.Sprintf("%s%d", d.args.BaseName, len(volumeBases))
		if err := d.buildVolume(ms, base, len(volumeBases)); err != nil {
			return err
		}
		volumeBases = append(volumeBases, base)
		ms.Reset()
		return nil
	}

	for _, name := range d.inputNames() {
		r, closer, err := openInput(name)
		if err != nil {
			return err
		}
		for {
			err := d.appendOneBatch(ms, r, int(maxLen))
			d.checkDubiousDNA(ms)
			if err == io.EOF {
				break
			}
			if err != nil {
				closer.Close()
				return errorf(BadInput, "%s", err)
			}
			if !ms.IsFinished() {
				if err := flush(); err != nil {
					closer.Close()
					return err
				}
			}
		}
		closer.Close()
	}
	if err := flush(); err != nil {
		return err
	}

	if len(volumeBases) == 0 {
		return errorf(BadInput, "no sequences found in input")
	}

	if len(volumeBases) == 1 {
		return renameSingleVolume(volumeBases[0], d.args.BaseName)
	}

	m := &Manifest{
		Alphabet:   d.alph,
		HasVolumes: true,
		Volumes:    len(volumeBases),
	}
	return m.WritePrj(d.args.BaseName + ".prj")
}

// renameSingleVolume drops the numeric suffix when only one volume was
// built, per spec.md §4.6 step 5: that volume's own files, including
// its manifest, become the top-level output.
func renameSingleVolume(volumeBase, finalBase string) error {
	if volumeBase == finalBase {
		return nil
	}
	suffixes := []string{".prj", ".tis", ".ssp", ".des", ".sds"}
	for _, ext := range suffixes {
		if err := os.Rename(volumeBase+ext, finalBase+ext); err != nil {
			return errorf(IoError, "Error renaming '%s': %s.", volumeBase+ext, err)
		}
	}
	for letter := 'a'; letter <= 'z'; letter++ {
		old := fmt.Sprintf("%s%c.suf", volumeBase, letter)
		if _, err := os.Stat(old); err != nil {
			if letter == 'a' {
				// single-seed ("lonely") build: unsuffixed names.
				if err := tryRename(volumeBase+".suf", finalBase+".suf"); err != nil {
					return err
				}
				if err := tryRename(volumeBase+".bck", finalBase+".bck"); err != nil {
					return err
				}
			}
			break
		}
		if err := os.Rename(old, fmt.Sprintf("%s%c.suf", finalBase, letter)); err != nil {
			return errorf(IoError, "Error renaming '%s': %s.", old, err)
		}
		oldBck := fmt.Sprintf("%s%c.bck", volumeBase, letter)
		if err := os.Rename(oldBck, fmt.Sprintf("%s%c.bck", finalBase, letter)); err != nil {
			return errorf(IoError, "Error renaming '%s': %s.", oldBck, err)
		}
	}
	return nil
}

func tryRename(oldPath, newPath string) error {
	if _, err := os.Stat(oldPath); err != nil {
		return nil
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return errorf(IoError, "Error renaming '%s': %s.", oldPath, err)
	}
	return nil
}

// buildVolume masks, indexes, and writes one closed volume: the
// masking pass, per-seed sort/bucket/emit, and this volume's own
// manifest and MultiSequence files.
func (d *driver) buildVolume(ms *multiseq.MultiSequence, base string, volumeIndex int) error {
	if d.args.Tantan > 0 {
		d.maskVolume(ms)
	}

	width, err := d.args.indexWidth()
	if err != nil {
		return err
	}
	childKind, err := d.args.childTableKind()
	if err != nil {
		return err
	}
	depth := d.args.BucketDepth
	if depth < 0 {
		depth = 1
	}

	finished := ms.FinishedSize()
	isLonely := len(d.seeds) == 1
	var lastalLines []string
	for i, sd := range d.seeds {
		arr := suffixarray.New(sd, width, childKind, d.args.MinUnsortedInterval)
		arr.AddPositions(ms.Text, 0, finished, d.args.IndexStep, d.args.MinimizerWindow)
		arr.Sort(ms.Text)
		bucketDepth := depth
		if bucketDepth > sd.Len() {
			bucketDepth = sd.Len()
		}
		arr.MakeBuckets(ms.Text, bucketDepth)
		if err := arr.ToFiles(base, i, isLonely, int64(finished)); err != nil {
			return errorf(IoError, "%s", err)
		}
		if len(sd.LastalLines) > len(lastalLines) {
			lastalLines = sd.LastalLines
		}
	}

	if err := ms.WriteFiles(base, int(width)); err != nil {
		return errorf(IoError, "%s", err)
	}
	util.Verbosef("wrote volume %q: %s, %d sequences\n",
		base, humanize.Bytes(uint64(finished)), ms.NumSequences())

	freqs := make([]int, d.alph.Size)
	d.alph.Count(ms.Text[:finished], freqs)
	numLetters := int64(0)
	for i := 0; i < ms.NumSequences(); i++ {
		numLetters += int64(ms.SeqEnd(i) - ms.SeqBeg(i))
	}

	m := &Manifest{
		Alphabet:             d.alph,
		NumOfSequences:       ms.NumSequences(),
		NumOfLetters:         numLetters,
		LetterFreqs:          freqs,
		MaxUnsortedInterval:  d.args.MinUnsortedInterval,
		KeepLowercase:        d.args.KeepLowercase,
		MaskLowercase:        d.args.Tantan > 0,
		HasTantanSetting:     d.args.Tantan > 0,
		TantanSetting:        d.args.Tantan,
		HasSequenceFormat:    d.args.Format != "fasta",
		SequenceFormat:       d.args.Format,
		HasMinimizerWindow:   d.args.MinimizerWindow > 1,
		MinimizerWindow:      d.args.MinimizerWindow,
		HasNumOfIndexes:      true,
		NumOfIndexes:         len(d.seeds),
		LastalLines:          lastalLines,
	}
	return m.WritePrj(base + ".prj")
}

// maskVolume runs the one-shot masking parallel-for of spec.md §5:
// finished sequences are split into T contiguous chunks by sequence
// index (firstSequenceInChunk), T-1 worker goroutines mask chunks
// 1..T-1, and the driver goroutine masks chunk 0 before joining.
// Progress across the T chunks is reported the way every other
// concurrent job in cmd/util is: through util.Progress.
func (d *driver) maskVolume(ms *multiseq.MultiSequence) {
	numSeqs := ms.NumSequences()
	if numSeqs == 0 {
		return
	}
	masker := tantan.New(d.alph, d.args.Tantan)

	t := d.args.Threads
	if t <= 0 {
		t = runtime.NumCPU()
	}
	if t > numSeqs {
		t = numSeqs
	}
	if t < 1 {
		t = 1
	}

	maskChunk := func(c int) {
		lo := firstSequenceInChunk(numSeqs, c, t)
		hi := firstSequenceInChunk(numSeqs, c+1, t)
		if lo >= hi {
			return
		}
		begin := ms.SeqBeg(lo)
		end := ms.SeqEnd(hi - 1)
		masker.Mask(ms.Text, begin, end, d.alph.NumbersToLowercase)
	}

	progress := util.NewProgress(t)
	var wg sync.WaitGroup
	for c := 1; c < t; c++ {
		wg.Add(1)
		go func(c int) {
			defer wg.Done()
			maskChunk(c)
			progress.JobDone(nil)
		}(c)
	}
	maskChunk(0)
	progress.JobDone(nil)
	wg.Wait()
	progress.Close()
}

// firstSequenceInChunk divides numSeqs sequences into numChunks
// contiguous groups as evenly as possible; chunk c owns sequences
// [firstSequenceInChunk(c), firstSequenceInChunk(c+1)).
func firstSequenceInChunk(numSeqs, chunk, numChunks int) int {
	if numChunks <= 0 {
		return 0
	}
	base := numSeqs / numChunks
	rem := numSeqs % numChunks
	if chunk < rem {
		return chunk * (base + 1)
	}
	return rem*(base+1) + (chunk-rem)*base
}
