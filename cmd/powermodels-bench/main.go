// Powermodels-bench runs the PowerModels.jl side of the benchmark: it
// starts the Julia worker process, drives the four analyses against the
// test network, and writes powermodels_results.json.
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
	})).With(slog.String("package", "PowerModels.jl"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := runner.Run(
		context.Background(), logger, cfg, "powermodels", os.Stdout,
	); err != nil {
		logger.Error("benchmark failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
