// Package cmd implements the json-to-tables command-line interface.
package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/agentic-research/jsontotables/internal/config"
	"github.com/agentic-research/jsontotables/internal/fsinput"
	"github.com/agentic-research/jsontotables/internal/ingest"
	"github.com/agentic-research/jsontotables/internal/sink"
)

var (
	// Version, Commit and Date are set by the release build via
	// -ldflags, matching the corpus's version-stamping convention.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	sinkKind   string
	strict     bool
	parallel   int
	configPath string
	batchSize  int
	rootName   string
	quiet      bool
)

func init() {
	rootCmd.Flags().StringVar(&sinkKind, "sink", "csv", "Table sink: csv, json, stdout, or sqlite")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "Verify id-remapper invariants (key uniqueness, id density) as the run proceeds")
	rootCmd.Flags().IntVar(&parallel, "parallel", 0, "Tokenize up to N input files concurrently (0 disables the parallel extension)")
	rootCmd.Flags().StringVar(&configPath, "config", ".json-to-tables.hcl", "Optional HCL config file; flags explicitly set on the command line override it")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 10000, "Rows per SQLite transaction (sqlite sink only)")
	rootCmd.Flags().StringVar(&rootName, "root-name", "root", "Root table name (json sink only)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-file progress logging")
}

var rootCmd = &cobra.Command{
	Use:     "json-to-tables <output-dir> <input-glob>...",
	Short:   "Flatten nested JSON documents into a relational table layout",
	Args:    cobra.MinimumNArgs(2),
	Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir := args[0]
		patterns := args[1:]

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		applyConfigDefaults(cmd, cfg)

		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("creating output dir %s: %w", outputDir, err)
		}

		fs := fsinput.NewOSFilesystem(".")
		inputs, err := fsinput.Resolve(fs, patterns, func(path string, ioErr error) {
			log.Printf("json-to-tables: skipping %s: %v", path, ioErr)
		})
		if err != nil {
			return err
		}
		if len(inputs) == 0 {
			return fmt.Errorf("no input files matched %v", patterns)
		}

		s, err := newSink(outputDir)
		if err != nil {
			return err
		}

		onSuccess := func(name string, count int) {
			if !quiet {
				log.Printf("json-to-tables: ingested %d record(s) from %s", count, name)
			}
		}

		if parallel > 0 {
			return ingest.RunParallel(inputs, strict, s, onSuccess, parallel)
		}
		return ingest.Run(inputs, strict, s, onSuccess)
	},
}

// applyConfigDefaults lets the HCL config file set a flag's value, but
// only for flags the user didn't explicitly pass on the command line —
// flags always win.
func applyConfigDefaults(cmd *cobra.Command, cfg config.Config) {
	if cfg.Sink != "" && !cmd.Flags().Changed("sink") {
		sinkKind = cfg.Sink
	}
	if cfg.Strict && !cmd.Flags().Changed("strict") {
		strict = cfg.Strict
	}
	if cfg.Parallel != 0 && !cmd.Flags().Changed("parallel") {
		parallel = cfg.Parallel
	}
	if cfg.BatchSize != 0 && !cmd.Flags().Changed("batch-size") {
		batchSize = cfg.BatchSize
	}
}

func newSink(outputDir string) (sink.Sink, error) {
	switch sinkKind {
	case "csv":
		return sink.NewCSVSink(outputDir)
	case "json":
		return sink.NewJSONSink(rootName, filepath.Join(outputDir, "data.json")), nil
	case "stdout":
		return sink.NewStdoutSink(os.Stdout), nil
	case "sqlite":
		return sink.NewSQLiteSink(filepath.Join(outputDir, "db.sqlite"), outputDir, batchSize)
	default:
		return nil, fmt.Errorf("unknown sink %q (want csv, json, stdout, or sqlite)", sinkKind)
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
