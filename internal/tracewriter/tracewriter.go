// Package tracewriter owns the output files of a trace directory. Files are
// opened lazily on first append and stay open until Close.
package tracewriter

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidAgent is returned for agent ids that cannot name a file inside
// the trace directory.
var ErrInvalidAgent = errors.New("invalid agent id")

type handle struct {
	file *os.File
	buf  *bufio.Writer
}

// Dir maps file names below one directory to open, buffered handles.
// It is used from a single goroutine.
type Dir struct {
	path    string
	handles map[string]*handle
	order   []string
}

// Open creates the directory if needed and returns an empty Dir.
func Open(path string) (*Dir, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}
	return &Dir{
		path:    path,
		handles: make(map[string]*handle),
	}, nil
}

// Path returns the trace directory.
func (d *Dir) Path() string {
	return d.path
}

// AgentFile returns the file name holding the records of agent. Only path
// separators are rejected; "", "." and ".." become .txt, ..txt and ...txt.
func AgentFile(agent string) (string, error) {
	if strings.ContainsAny(agent, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAgent, agent)
	}
	return agent + ".txt", nil
}

// Create opens name eagerly, truncating any previous content. Calling it
// for an already open name is a no-op.
func (d *Dir) Create(name string) error {
	_, err := d.get(name)
	return err
}

// Append writes text and a newline to name, opening it on first use.
func (d *Dir) Append(name, text string) error {
	h, err := d.get(name)
	if err != nil {
		return err
	}
	if _, err := h.buf.WriteString(text); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := h.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (d *Dir) get(name string) (*handle, error) {
	if h, ok := d.handles[name]; ok {
		return h, nil
	}
	p := filepath.Join(d.path, name)
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	slog.Debug("Opened trace file", "path", p)
	h := &handle{file: f, buf: bufio.NewWriter(f)}
	d.handles[name] = h
	d.order = append(d.order, name)
	return h, nil
}

// Files returns the open file names in the order they were first opened.
func (d *Dir) Files() []string {
	return append([]string(nil), d.order...)
}

// Close flushes and closes every handle. All handles are closed even if
// some fail; the errors are joined.
func (d *Dir) Close() error {
	var errs []error
	for _, name := range d.order {
		h := d.handles[name]
		if err := h.buf.Flush(); err != nil {
			errs = append(errs, fmt.Errorf("failed to flush %s: %w", name, err))
		}
		if err := h.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", name, err))
		}
	}
	d.handles = make(map[string]*handle)
	d.order = nil
	return errors.Join(errs...)
}
