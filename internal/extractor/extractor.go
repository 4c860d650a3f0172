// Package extractor runs the two trace extraction passes: agent messages
// into per-agent files, then storage slot preloads into the ssv file.
package extractor

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/paulmach/orb"

	"tracextract/internal/config"
	"tracextract/internal/logsource"
	"tracextract/internal/message"
	"tracextract/internal/preload"
	"tracextract/internal/tracewriter"
)

// LineError locates a fatal condition in an input log.
type LineError struct {
	Path string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Stats counts what a run read and wrote.
type Stats struct {
	TraceDir     string
	LinesScanned int
	Messages     int // lines carrying a message payload
	Skipped      int // payloads with an unrecognized tag
	Records      int
	ByAgent      map[string]int
	ByKind       map[string]int
	Preloads     []orb.Point // in encounter order
}

func newStats(traceDir string) *Stats {
	return &Stats{
		TraceDir: traceDir,
		ByAgent:  make(map[string]int),
		ByKind:   make(map[string]int),
	}
}

// Agents returns the agents that received records, sorted.
func (s *Stats) Agents() []string {
	agents := make([]string, 0, len(s.ByAgent))
	for a := range s.ByAgent {
		agents = append(agents, a)
	}
	sort.Strings(agents)
	return agents
}

// Extractor runs one extraction over the logs selected by its config.
type Extractor struct {
	cfg config.Config
}

// New returns an Extractor for cfg. The config is validated by Run.
func New(cfg config.Config) *Extractor {
	return &Extractor{cfg: cfg}
}

// Run processes every configured input. The first fatal condition stops the
// run; output written up to that point is flushed either way.
func (e *Extractor) Run() (stats *Stats, err error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	traceDir := e.cfg.Resolve(e.cfg.TraceDir)
	stats = newStats(traceDir)

	dir, err := tracewriter.Open(traceDir)
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := dir.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, in := range e.cfg.Inputs {
		if err := e.extractMessages(dir, e.cfg.Resolve(in), stats); err != nil {
			return stats, err
		}
	}

	if e.cfg.SkipPreload {
		slog.Info("Skipping preload pass")
		return stats, nil
	}
	if err := dir.Create(e.cfg.SSVFile); err != nil {
		return stats, err
	}
	if err := e.extractPreloads(dir, e.cfg.Resolve(e.cfg.PreloadLog), stats); err != nil {
		return stats, err
	}
	return stats, nil
}

func (e *Extractor) extractMessages(dir *tracewriter.Dir, path string, stats *Stats) error {
	src, err := logsource.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	records := 0
	err = src.Each(func(lineNo int, line string) error {
		stats.LinesScanned++
		payload, ok := message.Match(line)
		if !ok {
			return nil
		}
		stats.Messages++

		record, err := message.Extract(payload)
		if err != nil {
			return &LineError{Path: path, Line: lineNo, Err: err}
		}
		if record.Empty() {
			stats.Skipped++
			slog.Debug("Skipping message with unrecognized tag", "path", path, "line", lineNo)
			return nil
		}

		name, err := tracewriter.AgentFile(record.Agent)
		if err != nil {
			return &LineError{Path: path, Line: lineNo, Err: err}
		}
		if err := dir.Append(name, record.Text()); err != nil {
			return &LineError{Path: path, Line: lineNo, Err: err}
		}
		records++
		stats.Records++
		stats.ByAgent[record.Agent]++
		stats.ByKind[record.Kind]++
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Extracted messages", "path", path, "records", records)
	return nil
}

func (e *Extractor) extractPreloads(dir *tracewriter.Dir, path string, stats *Stats) error {
	src, err := logsource.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	err = src.Each(func(lineNo int, line string) error {
		stats.LinesScanned++
		v, ok := preload.Match(line)
		if !ok {
			return nil
		}
		if err := dir.Append(e.cfg.SSVFile, v.Text()); err != nil {
			return &LineError{Path: path, Line: lineNo, Err: err}
		}
		stats.Preloads = append(stats.Preloads, v.Point())
		return nil
	})
	if err != nil {
		return err
	}
	slog.Info("Extracted preloads", "path", path, "records", len(stats.Preloads))
	return nil
}
