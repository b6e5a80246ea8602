// Package main provides the CLI entry point for benchmerge, a tool
// that merges per-party MPC benchmark logs into summary tables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mpclab/benchmerge/aggregate"
	"github.com/mpclab/benchmerge/benchlog"
	"github.com/mpclab/benchmerge/report"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "benchmerge",
		Short: "Merge MPC benchmark logs into summary tables",
		Long: `Benchmerge collects the per-party log files written by distributed
MPC benchmark runs, extracts the run parameters encoded in each filename and
the timing samples in each body, and produces a per-file averages table plus
a cross-party aggregation keyed by benchmark configuration.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMergeCmd(logger))

	return root
}

func newMergeCmd(logger *slog.Logger) *cobra.Command {
	var (
		dir        string
		filesOut   string
		aggOut     string
		configPath string
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Scan a results directory and write both summary tables",
		Long: `Scan every *.txt file in the results directory, keep those whose
names match the benchmark naming scheme, and write the per-file and
aggregated CSV tables, echoing both to stdout.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := mergeConfig{
				dir:        dir,
				filesOut:   filesOut,
				aggOut:     aggOut,
				outputJSON: outputJSON,
			}

			if configPath != "" {
				fileCfg, err := loadConfig(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}

				cfg = fileCfg.apply(cmd.Flags(), cfg)
			}

			return runMerge(cmd.Context(), logger, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&dir, "dir", "benchmark_results",
		"Directory containing benchmark log files")
	flags.StringVar(&filesOut, "files-out", "individual_file_averages.csv",
		"Output path for the per-file averages table")
	flags.StringVar(&aggOut, "agg-out", "aggregated_averages.csv",
		"Output path for the aggregated averages table")
	flags.StringVar(&configPath, "config", "",
		"Optional YAML config file (flags override its values)")
	flags.BoolVar(&outputJSON, "json", false,
		"Print a JSON report instead of tables")

	return cmd
}

type mergeConfig struct {
	dir        string
	filesOut   string
	aggOut     string
	outputJSON bool
}

func runMerge(
	ctx context.Context,
	logger *slog.Logger,
	cfg mergeConfig,
) error {
	runID := uuid.NewString()

	logger.InfoContext(ctx, "starting merge",
		slog.String("run_id", runID),
		slog.String("dir", cfg.dir),
		slog.String("files_out", cfg.filesOut),
		slog.String("agg_out", cfg.aggOut),
	)

	// Step 1: Scan and parse every benchmark log in the directory.
	records, err := benchlog.ScanDir(cfg.dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", cfg.dir, err)
	}

	aggregate.SortRecords(records)

	logger.InfoContext(ctx, "logs parsed",
		slog.String("run_id", runID),
		slog.Int("files", len(records)),
	)

	// Step 2: Collapse per-party records into per-configuration rows.
	aggregated := aggregate.Aggregate(records)

	// Step 3: Write both CSV tables, overwriting previous runs.
	if err := writeCSV(cfg.filesOut, func(f *os.File) error {
		return report.WriteFilesCSV(f, records)
	}); err != nil {
		return fmt.Errorf("write %s: %w", cfg.filesOut, err)
	}

	if err := writeCSV(cfg.aggOut, func(f *os.File) error {
		return report.WriteAggregatedCSV(f, aggregated)
	}); err != nil {
		return fmt.Errorf("write %s: %w", cfg.aggOut, err)
	}

	// Step 4: Echo both tables for interactive inspection.
	if cfg.outputJSON {
		env := report.Envelope{
			RunID:       runID,
			GeneratedAt: time.Now().UTC(),
			Files:       records,
			Aggregated:  aggregated,
		}
		if err := report.GenerateJSON(os.Stdout, env); err != nil {
			return fmt.Errorf("generate JSON report: %w", err)
		}
	} else {
		if err := report.Generate(os.Stdout, records, aggregated); err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	logger.InfoContext(ctx, "merge complete",
		slog.String("run_id", runID),
		slog.Int("files", len(records)),
		slog.Int("configurations", len(aggregated)),
	)

	return nil
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}
