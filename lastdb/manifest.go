package lastdb

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/lastdb/alphabet"
	"github.com/BurntSushi/lastdb/cmd/util"
)

const manifestVersion = "1"

// Manifest holds everything written to a .prj file (spec.md §6).
// Outside counts-only mode, exactly one of Volumes (top-level,
// multi-volume manifest) or NumOfIndexes (per-volume manifest) is set;
// a counts-only manifest sets neither.
type Manifest struct {
	Alphabet       *alphabet.Alphabet
	NumOfSequences int
	NumOfLetters   int64
	LetterFreqs    []int

	CountsOnly bool

	MaxUnsortedInterval int
	KeepLowercase       bool
	MaskLowercase       bool
	TantanSetting       int
	HasTantanSetting    bool
	SequenceFormat      string
	HasSequenceFormat   bool
	MinimizerWindow     int
	HasMinimizerWindow  bool

	Volumes      int
	HasVolumes   bool
	NumOfIndexes int
	HasNumOfIndexes bool

	LastalLines []string
}

// WritePrj writes the manifest as a line-oriented key=value file.
func (m *Manifest) WritePrj(path string) error {
	f, err := util.CreateFile(path)
	if err != nil {
		return errorf(IoError, "%s", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	line := func(format string, args ...interface{}) {
		fmt.Fprintf(w, format+"\n", args...)
	}

	line("version=%s", manifestVersion)
	line("alphabet=%s", m.Alphabet.String())
	line("numofsequences=%d", m.NumOfSequences)
	line("numofletters=%d", m.NumOfLetters)

	freqs := make([]string, len(m.LetterFreqs))
	for i, c := range m.LetterFreqs {
		freqs[i] = strconv.Itoa(c)
	}
	line("letterfreqs=%s", strings.Join(freqs, " "))

	if !m.CountsOnly {
		line("maxunsortedinterval=%d", m.MaxUnsortedInterval)
		line("keeplowercase=%s", boolStr(m.KeepLowercase))
		line("masklowercase=%s", boolStr(m.MaskLowercase))
		if m.HasTantanSetting {
			line("tantansetting=%d", m.TantanSetting)
		}
		if m.HasSequenceFormat {
			line("sequenceformat=%s", m.SequenceFormat)
		}
		if m.HasMinimizerWindow {
			line("minimizerwindow=%d", m.MinimizerWindow)
		}
		switch {
		case m.HasVolumes:
			line("volumes=%d", m.Volumes)
		case m.HasNumOfIndexes:
			line("numofindexes=%d", m.NumOfIndexes)
		}
	}

	for _, l := range m.LastalLines {
		line("%s", l)
	}

	if err := w.Flush(); err != nil {
		return errorf(IoError, "Error writing '%s': %s.", path, err)
	}
	return nil
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ReadPrj parses a .prj manifest back into key=value pairs, in file
// order, supporting the "manifest round-trip" testable property
// (spec.md §8): re-writing the returned pairs via WriteRawPrj
// reproduces the file byte-for-byte modulo whitespace.
func ReadPrj(path string) ([][2]string, error) {
	f, err := util.OpenFile(path)
	if err != nil {
		return nil, errorf(IoError, "%s", err)
	}
	defer f.Close()

	var pairs [][2]string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			pairs = append(pairs, [2]string{"", line})
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			return nil, errorf(BadInput, "malformed manifest line %q", line)
		}
		pairs = append(pairs, [2]string{kv[0], kv[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, errorf(IoError, "Error reading '%s': %s.", path, err)
	}
	return pairs, nil
}

// WriteRawPrj re-emits pairs produced by ReadPrj, one per line.
func WriteRawPrj(path string, pairs [][2]string) error {
	f, err := util.CreateFile(path)
	if err != nil {
		return errorf(IoError, "%s", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, kv := range pairs {
		if kv[0] == "" {
			fmt.Fprintf(w, "%s\n", kv[1])
			continue
		}
		fmt.Fprintf(w, "%s=%s\n", kv[0], kv[1])
	}
	return w.Flush()
}
