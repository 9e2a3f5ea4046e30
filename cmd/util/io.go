package util

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadLines reads r into trimmed lines. Unlike the Fatalf-on-error
// teacher version, it returns the read error so callers that run
// inside the driver (not a bare CLI entrypoint) can wrap it into
// their own error kind instead of exiting directly.
func ReadLines(r io.Reader) ([]string, error) {
	buf := bufio.NewReader(r)
	lines := make([]string, 0)
	for {
		line, err := buf.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("could not read line: %s", err)
		}
		lines = append(lines, strings.TrimSpace(line))
		if err == io.EOF {
			break
		}
	}
	return lines, nil
}

// OpenFile opens path for reading, wrapping a failure into the
// "Error opening '%s': %s." phrasing every lastdb.Error uses.
func OpenFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("Error opening '%s': %s.", path, err)
	}
	return f, nil
}

// CreateFile creates (or truncates) path for writing, same wrapping
// as OpenFile.
func CreateFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("Error creating '%s': %s.", path, err)
	}
	return f, nil
}
