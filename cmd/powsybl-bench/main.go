// Powsybl-bench runs the PowSyBl side of the benchmark: it starts the
// PowSyBl worker process, drives the four analyses against the test
// network, and writes powsybl_results.json.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/avickers/gridbench/internal/config"
	"github.com/avickers/gridbench/internal/runner"
)

func main() {
	configPath := flag.String("config", "",
		"path to gridbench.yaml (default: ./gridbench.yaml if present)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With(slog.String("package", "PowSyBl"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := runner.Run(
		context.Background(), logger, cfg, "powsybl", os.Stdout,
	); err != nil {
		logger.Error("benchmark failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
