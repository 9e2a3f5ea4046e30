// Package multiseq implements lastdb.cc's MultiSequence: an
// append-only concatenated buffer of coded letters, delimited by a
// sentinel between records, with per-record names and offsets and an
// optional quality buffer.
package multiseq

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/lastdb/alphabet"
	"github.com/BurntSushi/lastdb/cmd/util"
)

// MultiSequence holds zero or more records concatenated into one
// coded buffer. Offsets[i] is the start of record i; Offsets[len-1]
// is the position just past the last finished record (equivalently,
// the next record's start). A record is finished once its trailing
// delimiter byte has been appended; the last entry of the buffer
// while a record is in progress is not yet delimited.
type MultiSequence struct {
	alph *alphabet.Alphabet

	Text    []byte   // concatenated coded letters, delimiter between records
	Quality []byte   // optional, one byte per Text byte; nil if not tracked
	Offsets []int    // len == finished record count + 1
	Names   []string // len == finished record count

	hasQuality bool

	// unfinished holds an in-progress record's raw (already-coded)
	// bytes and name, carried across a maxLen flush.
	unfinishedName string
	unfinishedBuf  []byte
	unfinishedQual []byte
	unfinishedOpen bool
}

// New creates an empty MultiSequence over the given alphabet.
// trackQuality enables a parallel quality buffer for FASTQ input.
func New(alph *alphabet.Alphabet, trackQuality bool) *MultiSequence {
	return &MultiSequence{
		alph:       alph,
		Offsets:    []int{0},
		hasQuality: trackQuality,
	}
}

// NumSequences returns the number of finished records.
func (m *MultiSequence) NumSequences() int { return len(m.Names) }

// SeqBeg returns the start of finished record i's interior (excluding
// any leading delimiter).
func (m *MultiSequence) SeqBeg(i int) int { return m.Offsets[i] }

// SeqEnd returns the end of finished record i's interior (excluding
// its trailing delimiter).
func (m *MultiSequence) SeqEnd(i int) int { return m.Offsets[i+1] - 1 }

// FinishedSize is the length of Text covering only finished records
// (i.e. excluding any in-progress unfinished record's bytes).
func (m *MultiSequence) FinishedSize() int {
	if len(m.Offsets) == 0 {
		return 0
	}
	return m.Offsets[len(m.Offsets)-1]
}

// UnfinishedSize is FinishedSize plus whatever has been read into the
// in-progress record so far.
func (m *MultiSequence) UnfinishedSize() int {
	return m.FinishedSize() + len(m.unfinishedBuf)
}

// IsFinished reports whether the most recent append completed its
// record (i.e. there is no carried-over in-progress record).
func (m *MultiSequence) IsFinished() bool { return !m.unfinishedOpen }

// Reset empties the buffer, discarding all finished records. An
// in-progress unfinished record, if any, is preserved so the caller
// can resume it into the fresh buffer exactly as lastdb.cc does
// across a volume flush.
func (m *MultiSequence) Reset() {
	m.Text = m.Text[:0]
	m.Quality = m.Quality[:0]
	m.Offsets = m.Offsets[:1]
	m.Offsets[0] = 0
	m.Names = m.Names[:0]
}

func (m *MultiSequence) finishCurrent() {
	m.Text = append(m.Text, m.unfinishedBuf...)
	if m.hasQuality {
		m.Quality = append(m.Quality, m.unfinishedQual...)
	}
	m.Text = append(m.Text, m.alph.Delimiter)
	if m.hasQuality {
		m.Quality = append(m.Quality, 0)
	}
	m.Names = append(m.Names, m.unfinishedName)
	m.Offsets = append(m.Offsets, len(m.Text))

	m.unfinishedBuf = m.unfinishedBuf[:0]
	m.unfinishedQual = m.unfinishedQual[:0]
	m.unfinishedName = ""
	m.unfinishedOpen = false
}

// fastaScanner wraps a bufio.Reader to peek at the next header line
// across calls, since a record's end is only known once the next '>'
// (or EOF) is seen.
type fastaScanner struct {
	r          *bufio.Reader
	pendingHdr string
	atEOF      bool
}

func newFastaScanner(r io.Reader) *fastaScanner { return &fastaScanner{r: bufio.NewReader(r)} }

func (fs *fastaScanner) readLine() (string, bool) {
	line, err := fs.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", false
	}
	line = strings.TrimSpace(line)
	if err == io.EOF && line == "" {
		fs.atEOF = true
		return "", false
	}
	if err == io.EOF {
		fs.atEOF = true
	}
	return line, true
}

// AppendFromFasta reads as many whole FASTA records as fit within
// maxLen (measured by UnfinishedSize), resuming any record left
// unfinished by a previous call. Returns io.EOF once the stream is
// exhausted and no more data was appended.
func (m *MultiSequence) AppendFromFasta(in io.Reader, maxLen int) error {
	fs := newFastaScanner(in)
	return m.appendFasta(fs, maxLen)
}

func (m *MultiSequence) appendFasta(fs *fastaScanner, maxLen int) error {
	if !m.unfinishedOpen {
		line, ok := fs.readLine()
		if !ok {
			return io.EOF
		}
		if !strings.HasPrefix(line, ">") {
			return fmt.Errorf("Error reading FASTA: expected '>' header, got %q.", line)
		}
		m.startRecord(headerName(line))
	}

	for {
		line, ok := fs.readLine()
		if !ok {
			// EOF: current record is as finished as it'll get.
			if len(m.unfinishedBuf) == 0 && !fs.atEOF {
				return fmt.Errorf("Error reading FASTA: truncated record.")
			}
			m.finishCurrent()
			return nil
		}
		if strings.HasPrefix(line, ">") {
			m.finishCurrent()
			if m.UnfinishedSize() >= maxLen {
				fs.pendingHdr = line
				return m.resumeHeader(fs, maxLen)
			}
			m.startRecord(headerName(line))
			continue
		}

		if err := m.appendLetters([]byte(line)); err != nil {
			return err
		}
		if m.UnfinishedSize() > maxLen && len(m.Names) == 0 && m.FinishedSize() == 0 {
			return fmt.Errorf("Error reading FASTA: a single record exceeds the volume size budget.")
		}
		if m.UnfinishedSize() >= maxLen {
			return nil // unfinished; caller flushes and resumes
		}
	}
}

// resumeHeader handles the case where a just-seen header line must
// become the next call's first record, because the budget was hit
// exactly as the previous record finished.
func (m *MultiSequence) resumeHeader(fs *fastaScanner, maxLen int) error {
	m.startRecord(headerName(fs.pendingHdr))
	fs.pendingHdr = ""
	m.unfinishedOpen = true
	return nil
}

func (m *MultiSequence) startRecord(name string) {
	m.unfinishedName = name
	m.unfinishedBuf = m.unfinishedBuf[:0]
	m.unfinishedQual = m.unfinishedQual[:0]
	m.unfinishedOpen = true
}

func (m *MultiSequence) appendLetters(raw []byte) error {
	coded := make([]byte, len(raw))
	copy(coded, raw)
	m.alph.Tr(coded, m.alph.KeepLowercase)
	m.unfinishedBuf = append(m.unfinishedBuf, coded...)
	return nil
}

func headerName(line string) string {
	fields := strings.Fields(strings.TrimPrefix(line, ">"))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// qualityOffset values for the supported FASTQ variants.
const (
	QualitySanger   = 33
	QualitySolexa   = 64
	QualityIllumina = 64
)

// AppendFromFastq reads as many whole FASTQ records as fit within
// maxLen, same resumption contract as AppendFromFasta. qualityOffset
// selects the Sanger/Illumina/Solexa quality encoding for validation.
func (m *MultiSequence) AppendFromFastq(in io.Reader, maxLen int, qualityOffset int) error {
	if !m.hasQuality {
		return fmt.Errorf("AppendFromFastq requires a quality-tracking MultiSequence")
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for {
		if !sc.Scan() {
			return io.EOF
		}
		header := strings.TrimSpace(sc.Text())
		if header == "" {
			continue
		}
		if !strings.HasPrefix(header, "@") {
			return fmt.Errorf("Error reading FASTQ: expected '@' header, got %q.", header)
		}
		if !sc.Scan() {
			return fmt.Errorf("Error reading FASTQ: truncated record.")
		}
		seqLine := strings.TrimSpace(sc.Text())
		if !sc.Scan() {
			return fmt.Errorf("Error reading FASTQ: missing '+' separator.")
		}
		sep := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(sep, "+") {
			return fmt.Errorf("Error reading FASTQ: expected '+' separator, got %q.", sep)
		}
		if !sc.Scan() {
			return fmt.Errorf("Error reading FASTQ: missing quality line.")
		}
		qualLine := strings.TrimSpace(sc.Text())
		if len(qualLine) != len(seqLine) {
			return fmt.Errorf("Error reading FASTQ: quality length does not match sequence length.")
		}
		for i := 0; i < len(qualLine); i++ {
			q := int(qualLine[i]) - qualityOffset
			if q < 0 || q > 93 {
				return fmt.Errorf("Error reading FASTQ: quality byte %q invalid for offset %d.", qualLine[i], qualityOffset)
			}
		}

		m.startRecord(headerName(header))
		if err := m.appendLetters([]byte(seqLine)); err != nil {
			return err
		}
		m.unfinishedQual = append(m.unfinishedQual, []byte(qualLine)...)

		if m.UnfinishedSize() > maxLen && m.FinishedSize() == 0 {
			return fmt.Errorf("Error reading FASTQ: a single record exceeds the volume size budget.")
		}
		m.finishCurrent()
		if m.FinishedSize() >= maxLen {
			return nil
		}
	}
}

// WriteFiles writes the .tis (coded text), .ssp (sequence start
// offsets), .des (concatenated names) and .sds (name start offsets)
// files for this buffer's finished records, per spec.md §6. width
// selects the fixed integer width (32 or 64) for .ssp and .sds; .tis
// is always one byte per coded letter, since it stores alphabet codes
// rather than positions.
func (m *MultiSequence) WriteFiles(baseName string, width int) error {
	if err := writeBytes(baseName+".tis", m.Text); err != nil {
		return err
	}
	if err := writeInts(baseName+".ssp", m.Offsets, width); err != nil {
		return err
	}

	var des []byte
	sds := make([]int, len(m.Names)+1)
	for i, name := range m.Names {
		sds[i] = len(des)
		des = append(des, name...)
	}
	sds[len(m.Names)] = len(des)

	if err := writeBytes(baseName+".des", des); err != nil {
		return err
	}
	if err := writeInts(baseName+".sds", sds, width); err != nil {
		return err
	}
	return nil
}

func writeBytes(path string, data []byte) error {
	f, err := util.CreateFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("Error writing '%s': %s.", path, err)
	}
	return nil
}

func writeInts(path string, values []int, width int) error {
	f, err := util.CreateFile(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	for _, v := range values {
		if width == 32 {
			var buf [4]byte
			binary.NativeEndian.PutUint32(buf[:], uint32(v))
			if _, err := w.Write(buf[:]); err != nil {
				return fmt.Errorf("Error writing '%s': %s.", path, err)
			}
		} else {
			var buf [8]byte
			binary.NativeEndian.PutUint64(buf[:], uint64(v))
			if _, err := w.Write(buf[:]); err != nil {
				return fmt.Errorf("Error writing '%s': %s.", path, err)
			}
		}
	}
	return w.Flush()
}
