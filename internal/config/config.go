package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config selects the input logs and the trace directory of one run.
type Config struct {
	WorkDir     string   `yaml:"workdir"`      // base for relative paths
	TraceDir    string   `yaml:"trace_dir"`    // receives <agent>.txt and the ssv file
	Inputs      []string `yaml:"inputs"`       // message logs, processed in order
	PreloadLog  string   `yaml:"preload_log"`  // log holding sim.preload_variable calls
	SSVFile     string   `yaml:"ssv_file"`     // file name inside TraceDir
	SkipPreload bool     `yaml:"skip_preload"` // disable the preload pass
}

// Default returns the layout of the tileworld trace setup: two agent logs
// and the preload log in the working directory, output in ../trace.
func Default() Config {
	return Config{
		WorkDir:    ".",
		TraceDir:   filepath.Join("..", "trace"),
		Inputs:     []string{"alp1.txt", "alp2.txt"},
		PreloadLog: "preload_sim.txt",
		SSVFile:    "ssv.txt",
	}
}

// Load reads a YAML file on top of the defaults. Keys missing from the file
// keep their default value; unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve makes p absolute-or-relative to WorkDir.
func (c Config) Resolve(p string) string {
	if filepath.IsAbs(p) || c.WorkDir == "" {
		return p
	}
	return filepath.Join(c.WorkDir, p)
}

// Validate checks that a run can be started with c.
func (c Config) Validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("no input logs configured")
	}
	for _, in := range c.Inputs {
		if strings.TrimSpace(in) == "" {
			return fmt.Errorf("empty input log path")
		}
	}
	if c.TraceDir == "" {
		return fmt.Errorf("trace directory must not be empty")
	}
	if !c.SkipPreload {
		if c.PreloadLog == "" {
			return fmt.Errorf("preload log must not be empty")
		}
		if c.SSVFile == "" || strings.ContainsAny(c.SSVFile, `/\`) {
			return fmt.Errorf("invalid ssv file name: %q", c.SSVFile)
		}
	}
	return nil
}
