// Package logsource reads simulation log files line by line. Files ending in
// .gz are decompressed on the fly.
package logsource

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// MaxLineSize is the longest line Each accepts.
const MaxLineSize = 16 << 20

// Source is an open input log.
type Source struct {
	Path   string
	file   *os.File
	reader io.Reader
	gz     *gzip.Reader
}

// Open opens path for reading.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input log: %w", err)
	}
	src := &Source{Path: path, file: f, reader: f}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to read gzip header of %s: %w", path, err)
		}
		src.gz = gz
		src.reader = gz
	}
	return src, nil
}

// Each calls fn for every line in file order. Line numbers start at 1 and
// line terminators are stripped. Iteration stops at the first error.
func (s *Source) Each(fn func(lineNo int, line string) error) error {
	scanner := bufio.NewScanner(s.reader)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := fn(lineNo, scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s after line %d: %w", s.Path, lineNo, err)
	}
	return nil
}

// Close releases the underlying file.
func (s *Source) Close() error {
	if s.gz != nil {
		_ = s.gz.Close()
	}
	return s.file.Close()
}
