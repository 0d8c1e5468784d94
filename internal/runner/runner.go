// Package runner wires a configured solver worker to the benchmark suite
// and writes the per-package result file. Both runner binaries and the
// orchestrator's in-process run command go through here.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/avickers/gridbench/internal/bench"
	"github.com/avickers/gridbench/internal/config"
	"github.com/avickers/gridbench/internal/engine"
)

// Run starts the named engine's worker, executes the benchmark suite
// against it, writes the result file, and prints a summary to out.
func Run(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.Config,
	engineName string,
	out io.Writer,
) error {
	ecfg, ok := cfg.Engines[engineName]
	if !ok {
		return fmt.Errorf("engine %q not configured", engineName)
	}

	client, err := engine.Start(ctx, ecfg.Package, engine.CommandConfig{
		Command: ecfg.Command,
		Args:    ecfg.Args,
		Env:     ecfg.Env,
	}, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	result, err := bench.Run(ctx, logger, client, bench.SuiteConfig{
		Package:  ecfg.Package,
		CasePath: cfg.CaseFile,
		Counts: bench.SelectionCounts{
			Contingencies:     cfg.Contingencies,
			MonitoredBranches: cfg.MonitoredBranches,
			InjectionPoints:   cfg.InjectionPoints,
		},
	})
	if err != nil {
		return fmt.Errorf("run %s benchmark: %w", ecfg.Package, err)
	}

	resultPath := filepath.Join(cfg.OutputDir, ecfg.ResultFile)
	if err := result.WriteFile(resultPath); err != nil {
		return err
	}

	logger.Info("results written", slog.String("path", resultPath))
	result.WriteSummary(out)

	return nil
}
