package multiseq

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurntSushi/lastdb/alphabet"
)

func TestAppendFromFastaSingleRecord(t *testing.T) {
	a := alphabet.DNA(false)
	m := New(a, false)
	err := m.AppendFromFasta(strings.NewReader(">s1\nACGTACGT\n"), 1000)
	require.NoError(t, err)
	require.Equal(t, 1, m.NumSequences())
	assert.Equal(t, "s1", m.Names[0])
	assert.Equal(t, 0, m.SeqBeg(0))
	assert.Equal(t, 8, m.SeqEnd(0))
	assert.Equal(t, a.Delimiter, m.Text[8])
}

func TestAppendFromFastaMultipleRecords(t *testing.T) {
	a := alphabet.DNA(false)
	m := New(a, false)
	err := m.AppendFromFasta(strings.NewReader(">a\nACGT\n>b\nTTTT\n"), 1000)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 2, m.NumSequences())
	assert.Equal(t, []string{"a", "b"}, m.Names)
}

func TestAppendFromFastqValidatesQuality(t *testing.T) {
	a := alphabet.DNA(false)
	m := New(a, true)
	fq := "@r1\nACGT\n+\n!!!!\n"
	err := m.AppendFromFastq(strings.NewReader(fq), 1000, QualitySanger)
	require.ErrorIs(t, err, io.EOF)
	require.Equal(t, 1, m.NumSequences())
	assert.Len(t, m.Quality, 5) // 4 letters + 1 delimiter placeholder
}

func TestAppendFromFastqRejectsMismatchedLengths(t *testing.T) {
	a := alphabet.DNA(false)
	m := New(a, true)
	fq := "@r1\nACGT\n+\n!!!\n"
	err := m.AppendFromFastq(strings.NewReader(fq), 1000, QualitySanger)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}
