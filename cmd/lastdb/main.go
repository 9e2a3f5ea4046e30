// Command lastdb builds a persistent, seeded index over a collection
// of DNA or protein sequences.
package main

import (
	"flag"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/BurntSushi/lastdb/cmd/util"
	"github.com/BurntSushi/lastdb/lastdb"
)

var (
	flagProtein         = flag.Bool("protein", false, "Use the built-in protein alphabet instead of DNA.")
	flagAlphabet        = flag.String("alphabet", "", "Explicit canonical letter string, overriding the built-in alphabet.")
	flagFormat          = flag.String("format", "fasta", "Input format: fasta, fastq-sanger, fastq-solexa, or fastq-illumina.")
	flagSeed            = flag.String("seed", "", "Comma-separated built-in seed names (e.g. YASS).")
	flagSeedFile        = flag.String("seed-file", "", "Path to a seed specification file.")
	flagSeedPattern     = flag.String("pattern", "", "Comma-separated ad-hoc seed pattern strings.")
	flagKeepLowercase   = flag.Bool("keep-lowercase", false, "Preserve soft-masked (lowercase) letters with a distinct code.")
	flagCaseSensitive   = flag.Bool("case-sensitive", false, "Exclude lowercase letters from indexing.")
	flagTantan          = flag.Int("tantan", 0, "Low-complexity masking: 0 off, 1 standard, 2 stricter.")
	flagIndexStep       = flag.Int("index-step", 1, "Index every Nth position.")
	flagMinimizerWindow = flag.Int("minimizer-window", 1, "Minimizer window size (1 disables minimizer subsampling).")
	flagMinSeedLimit    = flag.Int("min-seed-limit", 1, "minUnsortedInterval: runs shorter than this are finished by a fallback sort.")
	flagBucketDepth     = flag.Int("bucket-depth", -1, "Bucket table depth (-1 chooses a default).")
	flagChildTable      = flag.String("child-table", "byte", "Child table kind: none, byte, short, or full.")
	flagIndexWidth      = flag.Int("index-width", 32, "On-disk suffix-array integer width: 32 or 64.")
	flagVolumeSize      = flag.Int64("volume-size", 1<<30, "Target volume size in bytes.")
	flagThreads         = flag.Int("threads", 0, "Number of masking threads (0 means auto).")
	flagCountsOnly      = flag.Bool("counts-only", false, "Only report letter counts; write no index.")
)

func init() {
	flag.BoolVar(&util.FlagVerbose, "verbose", false, "Print progress to stderr.")
	flag.BoolVar(&util.FlagVerbose, "v", false, "Shorthand for -verbose.")
}

func main() {
	util.FlagParse("output-base-name [input-file ...]",
		"Build a subset-seeded index over one or more FASTA/FASTQ files.")
	util.AssertLeastNArg(1)

	args := lastdb.DefaultArgs()
	args.BaseName = util.Arg(0)
	for i := 1; i < util.NArg(); i++ {
		args.Inputs = append(args.Inputs, util.Arg(i))
	}
	if dir := path.Dir(args.BaseName); dir != "." {
		util.AssertIsDir(dir)
	}

	args.Protein = *flagProtein
	args.UserAlphabet = *flagAlphabet
	args.Format = *flagFormat
	if *flagSeed != "" {
		args.SeedNames = strings.Split(*flagSeed, ",")
	}
	args.SeedFile = *flagSeedFile
	if *flagSeedPattern != "" {
		args.SeedPatterns = strings.Split(*flagSeedPattern, ",")
	}
	args.KeepLowercase = *flagKeepLowercase
	args.CaseSensitive = *flagCaseSensitive
	args.Tantan = *flagTantan
	args.IndexStep = *flagIndexStep
	args.MinimizerWindow = *flagMinimizerWindow
	args.MinUnsortedInterval = *flagMinSeedLimit
	args.BucketDepth = *flagBucketDepth
	args.ChildTable = *flagChildTable
	args.IndexWidth = *flagIndexWidth
	args.VolumeSize = *flagVolumeSize
	args.Threads = *flagThreads
	args.CountsOnly = *flagCountsOnly
	args.Verbose = util.FlagVerbose

	if err := lastdb.Run(args); err != nil {
		fail(err)
	}
}

// fail prints "{programName}: {description}" and exits non-zero, per
// spec.md §7. An OutOfMemory error gets a terse, fixed message rather
// than whatever detail accompanied it.
func fail(err error) {
	prog := path.Base(os.Args[0])
	if lerr, ok := err.(*lastdb.Error); ok && lerr.Kind == lastdb.OutOfMemory {
		fmt.Fprintf(os.Stderr, "%s: out of memory\n", prog)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", prog, err)
	os.Exit(1)
}
