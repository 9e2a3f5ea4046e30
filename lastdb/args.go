package lastdb

import "github.com/BurntSushi/lastdb/suffixarray"

// Args mirrors the CLI surface of spec.md §6. cmd/lastdb/main.go
// populates one of these from command-line flags only and hands it to
// Run. A seed file contributes its pattern lines and "#lastal" lines
// (see buildSeeds); it does not set any field of Args.
type Args struct {
	BaseName   string
	Inputs     []string // input filenames; empty or "-" means stdin
	Format     string   // "fasta" (default), "fastq-sanger", "fastq-solexa", "fastq-illumina"

	Protein      bool
	UserAlphabet string // explicit letter string; overrides Protein

	SeedNames    []string // built-in seed names (e.g. "YASS")
	SeedFile     string
	SeedPatterns []string

	KeepLowercase bool
	CaseSensitive bool

	Tantan int // 0 off, 1 standard, 2 stricter

	IndexStep           int
	MinimizerWindow     int
	MinUnsortedInterval int
	BucketDepth         int
	ChildTable          string // "none", "byte", "short", "full"
	IndexWidth          int    // 32 or 64; Design Note "Index integer width"

	VolumeSize int64 // bytes
	Threads    int   // 0 means auto

	CountsOnly bool
	Verbose    bool
}

// DefaultArgs returns an Args with the same defaults lastdb.cc ships.
func DefaultArgs() *Args {
	return &Args{
		Format:              "fasta",
		IndexStep:           1,
		MinimizerWindow:     1,
		MinUnsortedInterval: 1,
		BucketDepth:         -1, // auto-chosen in Run
		ChildTable:          "byte",
		IndexWidth:          32,
		VolumeSize:          1 << 30, // 1 GiB
		Threads:             0,
	}
}

func (args *Args) childTableKind() (suffixarray.ChildTableKind, error) {
	switch args.ChildTable {
	case "none":
		return suffixarray.ChildNone, nil
	case "byte":
		return suffixarray.ChildByte, nil
	case "short":
		return suffixarray.ChildShort, nil
	case "full":
		return suffixarray.ChildFull, nil
	default:
		return 0, errorf(BadArgument, "unrecognized --child-table value %q", args.ChildTable)
	}
}

func (args *Args) indexWidth() (suffixarray.IndexWidth, error) {
	switch args.IndexWidth {
	case 32:
		return suffixarray.Width32, nil
	case 64:
		return suffixarray.Width64, nil
	default:
		return 0, errorf(BadArgument, "--index-width must be 32 or 64, got %d", args.IndexWidth)
	}
}

// maxLettersPerVolume derives a letter budget from the byte budget
// (args.VolumeSize), per spec.md §4.6: one or two bytes per stored
// letter (two when quality is tracked) plus (indexWidth+1)*numSeeds
// bytes of suffix-array/child-table overhead per indexed letter
// (amortized over indexStep). The result is clamped to the configured
// index width's addressable range — derived explicitly from
// IndexWidth rather than inferred from the original's overflow-prone
// comparison idiom (spec.md §9 Open Question; recorded in DESIGN.md).
func maxLettersPerVolume(args *Args, numSeeds int, hasQuality bool) (int64, error) {
	width, err := args.indexWidth()
	if err != nil {
		return 0, err
	}
	bytesPerLetter := int64(1)
	if hasQuality {
		bytesPerLetter = 2
	}
	indexOverheadPerSeed := int64(args.IndexWidth/8+1) * int64(numSeeds)
	if args.IndexStep > 0 {
		indexOverheadPerSeed /= int64(args.IndexStep)
	}
	bytesPerLetter += indexOverheadPerSeed
	if bytesPerLetter <= 0 {
		return 0, errorf(BadArgument, "volume size budget too small to store any letters")
	}

	letters := args.VolumeSize / bytesPerLetter
	if max := width.MaxValue(); letters > max {
		letters = max
	}
	if letters <= 0 {
		return 0, errorf(BadArgument, "--volume-size is too small for the chosen options")
	}
	return letters, nil
}
