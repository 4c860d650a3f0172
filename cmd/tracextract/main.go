package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"tracextract/internal/config"
	"tracextract/internal/extractor"
	"tracextract/internal/report"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	configFile  string
	workDir     string
	traceDir    string
	inputs      []string
	preloadLog  string
	skipPreload bool
	verbose     bool

	printSummary bool
	summaryHTML  bool
	summaryOut   string
)

var rootCmd = &cobra.Command{
	Use:   "tracextract",
	Short: "Extract per-agent traces from simulation logs",
	Long: `tracextract scans simulation logs for embedded "message: <...>" records and
writes the request, read and write records of every agent to <trace-dir>/<agent>.txt.
Storage slot preloads from the preload log go to <trace-dir>/ssv.txt.

Without a subcommand it behaves like "tracextract run".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(verbose)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtraction(cmd)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract agent and storage slot traces",
	Long: `Extract agent and storage slot traces.

Inputs default to alp1.txt and alp2.txt, the preload log to preload_sim.txt,
all relative to the working directory. Output goes to ../trace.
Files ending in .gz are decompressed while reading.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtraction(cmd)
	},
}

var summaryCmd = &cobra.Command{
	Use:           "summary",
	Short:         "Extract traces and write a run summary",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := extract(cmd)
		if err != nil {
			return err
		}

		if summaryOut != "" {
			return writeSummaryFile(summaryOut, stats, summaryHTML)
		}
		return writeSummary(cmd.OutOrStdout(), stats, summaryHTML)
	},
}

func runExtraction(cmd *cobra.Command) error {
	stats, err := extract(cmd)
	if err != nil {
		return err
	}
	if printSummary {
		return writeSummary(cmd.OutOrStdout(), stats, false)
	}
	return nil
}

// loadConfig applies, in order: defaults, the config file, explicit flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("workdir") {
		cfg.WorkDir = workDir
	}
	if flags.Changed("trace-dir") {
		cfg.TraceDir = traceDir
	}
	if flags.Changed("input") {
		cfg.Inputs = inputs
	}
	if flags.Changed("preload") {
		cfg.PreloadLog = preloadLog
	}
	if flags.Changed("skip-preload") {
		cfg.SkipPreload = skipPreload
	}
	return cfg, nil
}

func extract(cmd *cobra.Command) (*extractor.Stats, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	slog.Debug("Starting extraction", "workdir", cfg.WorkDir, "traceDir", cfg.TraceDir, "inputs", cfg.Inputs)

	stats, err := extractor.New(cfg).Run()
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	slog.Info("Extraction finished", "records", stats.Records, "agents", len(stats.ByAgent), "preloads", len(stats.Preloads))
	return stats, nil
}

func writeSummary(w io.Writer, stats *extractor.Stats, asHTML bool) error {
	text := report.Markdown(stats)
	if asHTML {
		text = report.HTML(stats)
	}
	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// writeSummaryFile writes the summary to path. A failed close is an error.
func writeSummaryFile(path string, stats *extractor.Stats, asHTML bool) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close summary file: %w", cerr)
		}
	}()
	return writeSummary(f, stats, asHTML)
}

// setupLogging installs a text handler for interactive use and a JSON
// handler when stderr is redirected.
func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func addExtractionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file")
	cmd.Flags().StringVarP(&workDir, "workdir", "C", ".", "Directory relative input paths are resolved against")
	cmd.Flags().StringVarP(&traceDir, "trace-dir", "o", "../trace", "Output directory, relative to the working directory")
	cmd.Flags().StringSliceVarP(&inputs, "input", "i", nil, "Message log to process, in order (repeatable; default alp1.txt,alp2.txt)")
	cmd.Flags().StringVar(&preloadLog, "preload", "preload_sim.txt", "Log holding sim.preload_variable calls")
	cmd.Flags().BoolVar(&skipPreload, "skip-preload", false, "Do not extract storage slot preloads")
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every skipped message")

	addExtractionFlags(rootCmd)
	rootCmd.Flags().BoolVar(&printSummary, "summary", false, "Print a Markdown summary to stdout")

	addExtractionFlags(runCmd)
	runCmd.Flags().BoolVar(&printSummary, "summary", false, "Print a Markdown summary to stdout")

	addExtractionFlags(summaryCmd)
	summaryCmd.Flags().BoolVar(&summaryHTML, "html", false, "Render the summary as HTML")
	summaryCmd.Flags().StringVar(&summaryOut, "out", "", "Write the summary to a file instead of stdout")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(summaryCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
