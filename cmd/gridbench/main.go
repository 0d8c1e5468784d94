// Package main provides the CLI entry point for gridbench, a benchmark
// orchestration tool comparing power-system analysis packages.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/avickers/gridbench/internal/compare"
	"github.com/avickers/gridbench/internal/config"
	"github.com/avickers/gridbench/internal/history"
	"github.com/avickers/gridbench/internal/runner"
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
		Use:   "gridbench",
		Short: "Power-system analysis benchmark orchestrator",
		Long: `Gridbench benchmarks PowSyBl and PowerModels.jl against the same
test network across AC power flow, DC power flow, DC N-1 contingency
analysis, and PTDF matrix calculation, then compares their timings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(logger))
	root.AddCommand(newCompareCmd(logger))
	root.AddCommand(newHistoryCmd(logger))

	return root
}

func newRunCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath string
		engineName string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one package's benchmark in-process",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			return runner.Run(
				cmd.Context(), logger, cfg, engineName, os.Stdout,
			)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "",
		"Path to gridbench.yaml (default: ./gridbench.yaml if present)")
	flags.StringVar(&engineName, "package", "powsybl",
		"Engine to benchmark: powsybl or powermodels")

	return cmd
}

func newCompareCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath string
		binDir     string
		skipBuild  bool
	)

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run both benchmarks and produce a comparison report",
		Long: `Compare runs each package's benchmark binary as a subprocess with a
timeout, merges the two result files, prints a markdown comparison, and
writes a combined JSON report. If one package fails or times out the
comparison proceeds with the other package's data.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runComparison(cmd.Context(), logger, comparisonConfig{
				configPath: configPath,
				binDir:     binDir,
				skipBuild:  skipBuild,
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "",
		"Path to gridbench.yaml (default: ./gridbench.yaml if present)")
	flags.StringVar(&binDir, "bin-dir", "bin",
		"Directory for runner binaries")
	flags.BoolVar(&skipBuild, "skip-build", false,
		"Skip building runner binaries")

	return cmd
}

type comparisonConfig struct {
	configPath string
	binDir     string
	skipBuild  bool
}

func runComparison(
	ctx context.Context,
	logger *slog.Logger,
	opts comparisonConfig,
) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	// The case file is read by both workers; a missing file fails the
	// run before any benchmark starts.
	if _, err := os.Stat(cfg.CaseFile); err != nil {
		return fmt.Errorf("test system case file: %w", err)
	}

	logger.Info("starting comparison",
		slog.String("case_file", cfg.CaseFile),
		slog.Int("contingencies", cfg.Contingencies),
		slog.Int("monitored_branches", cfg.MonitoredBranches),
		slog.Int("injection_points", cfg.InjectionPoints),
		slog.Duration("timeout", time.Duration(cfg.Timeout)),
	)

	// Stale result files would make a failed runner look successful.
	for _, name := range config.EngineNames() {
		ecfg := cfg.Engines[name]
		path := filepath.Join(cfg.OutputDir, ecfg.ResultFile)

		if err := os.Remove(path); err == nil {
			logger.Info("removed stale results", slog.String("path", path))
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("remove stale results %s: %w", path, err)
		}
	}

	outcomes := make([]compare.Outcome, 0, 2)

	for _, name := range config.EngineNames() {
		ecfg := cfg.Engines[name]

		binPath := compare.ResolveRunner(opts.binDir, name)

		if !opts.skipBuild {
			binPath, err = compare.BuildRunner(ctx, logger, opts.binDir, name)
			if err != nil {
				return err
			}
		}

		var args []string
		if opts.configPath != "" {
			args = append(args, "-config", opts.configPath)
		}

		r := &compare.Runner{
			Name:   ecfg.Package,
			Binary: binPath,
			Args:   args,
			Logger: logger.With(slog.String("package", ecfg.Package)),
		}

		resultPath := filepath.Join(cfg.OutputDir, ecfg.ResultFile)
		outcome := r.Run(ctx, time.Duration(cfg.Timeout), resultPath)
		outcomes = append(outcomes, outcome)
	}

	report := compare.BuildReport(outcomes[0], outcomes[1])

	compare.Render(os.Stdout, report)

	reportPath := filepath.Join(cfg.OutputDir, compare.ReportFileName(time.Now()))
	if err := report.WriteFile(reportPath); err != nil {
		return err
	}

	logger.Info("comparison report written", slog.String("path", reportPath))

	if cfg.HistoryDB != "" {
		if err := archiveComparison(ctx, cfg.HistoryDB, report); err != nil {
			logger.Warn("failed to archive comparison",
				slog.String("error", err.Error()),
			)
		}
	}

	for _, outcome := range outcomes {
		if outcome.State != compare.Completed {
			return fmt.Errorf(
				"%s benchmark did not complete (%s)",
				outcome.Name, outcome.State,
			)
		}
	}

	return nil
}

func archiveComparison(
	ctx context.Context,
	dbPath string,
	report *compare.Report,
) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	return store.Record(ctx, uuid.NewString(), report)
}

func newHistoryCmd(logger *slog.Logger) *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived comparison runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if cfg.HistoryDB == "" {
				return fmt.Errorf("no history database configured")
			}

			store, err := history.Open(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if len(entries) == 0 {
				logger.Info("history is empty",
					slog.String("db", cfg.HistoryDB),
				)

				return nil
			}

			printHistory(os.Stdout, entries)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "",
		"Path to gridbench.yaml (default: ./gridbench.yaml if present)")
	flags.IntVar(&limit, "limit", 20,
		"Maximum number of rows to show")

	return cmd
}

func printHistory(w *os.File, entries []history.Entry) {
	fmt.Fprintln(w, "| When | Test | A (ms) | B (ms) | Speedup | Faster |")
	fmt.Fprintln(w, "|------|------|--------|--------|---------|--------|")

	for _, e := range entries {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s | %s |\n",
			e.CreatedAt,
			e.Test,
			formatHistoryMs(e.ElapsedAMs),
			formatHistoryMs(e.ElapsedBMs),
			formatHistorySpeedup(e.Speedup),
			e.Faster,
		)
	}
}

func formatHistoryMs(v *float64) string {
	if v == nil {
		return "FAILED"
	}

	return fmt.Sprintf("%.2f", *v)
}

func formatHistorySpeedup(v *float64) string {
	if v == nil {
		return "N/A"
	}

	return fmt.Sprintf("%.2fx", *v)
}
