package bench

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/avickers/gridbench/internal/engine"
)

// SuiteConfig describes one benchmark run.
type SuiteConfig struct {
	Package  string
	CasePath string
	Counts   SelectionCounts
}

// Run loads the network through eng and executes the four analyses
// sequentially, returning the per-test timing record. A missing case
// file or a failure to load the network is fatal; individual analysis
// failures are recorded as null timings and the run continues.
func Run(ctx context.Context, logger *slog.Logger, eng engine.Engine, cfg SuiteConfig) (*Result, error) {
	if _, err := os.Stat(cfg.CasePath); err != nil {
		return nil, fmt.Errorf("case file %s: %w", cfg.CasePath, err)
	}

	summary, err := eng.LoadNetwork(ctx, cfg.CasePath)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}

	logger.Info("network loaded",
		slog.Int("buses", summary.Buses),
		slog.Int("branches", summary.Branches),
		slog.Int("generators", summary.Generators),
		slog.Int("loads", summary.Loads),
	)

	branches, err := eng.BranchIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	generators, err := eng.GeneratorIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list generators: %w", err)
	}

	loads, err := eng.LoadIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list loads: %w", err)
	}

	sel := BuildSelection(branches, generators, loads, cfg.Counts)

	logger.Info("selection fixed",
		slog.Int("contingencies", len(sel.Contingencies)),
		slog.Int("monitored_branches", len(sel.Monitored)),
		slog.Int("injection_points", len(sel.Injections)),
	)

	result := &Result{
		RunID:        uuid.NewString(),
		Timestamp:    time.Now().Format(time.RFC3339),
		Package:      cfg.Package,
		NetworkInfo:  summary,
		Config:       sel.Counts(),
		TimingMs:     make(map[string]*float64, 4),
		SuccessRates: make(map[string]string, 2),
	}

	// Test 1: AC power flow.
	elapsed, ok := TimeOperation(logger, TestACPowerFlow, func() error {
		return runPowerFlow(ctx, eng.RunACPowerFlow, engine.SolveOptions{})
	})
	result.setTiming(TestACPowerFlow, elapsed, ok)

	// Test 2: DC power flow with distributed slack.
	elapsed, ok = TimeOperation(logger, TestDCPowerFlow, func() error {
		return runPowerFlow(ctx, eng.RunDCPowerFlow, engine.SolveOptions{
			DistributedSlack: true,
		})
	})
	result.setTiming(TestDCPowerFlow, elapsed, ok)

	// Test 3: DC N-1 contingency analysis.
	var solved int

	elapsed, ok = TimeOperation(logger, TestDCContingency, func() error {
		n, err := runContingencies(ctx, logger, eng, sel.Contingencies)
		solved = n

		return err
	})
	result.setTiming(TestDCContingency, elapsed, ok)

	if ok {
		result.SuccessRates[TestDCContingency] = fmt.Sprintf(
			"%d/%d", solved, len(sel.Contingencies),
		)
	}

	// Test 4: PTDF matrix, base case plus every contingency.
	elapsed, ok = TimeOperation(logger, TestPTDF, func() error {
		return runPTDF(ctx, logger, eng, sel)
	})
	result.setTiming(TestPTDF, elapsed, ok)

	if ok {
		result.SuccessRates[TestPTDF] = "calculation_completed"
	}

	return result, nil
}

func runPowerFlow(
	ctx context.Context,
	solve func(context.Context, engine.SolveOptions) (engine.SolveStatus, error),
	opts engine.SolveOptions,
) error {
	status, err := solve(ctx, opts)
	if err != nil {
		return err
	}

	if !status.Accepted() {
		return fmt.Errorf("solver status %s", status)
	}

	return nil
}

// withBranchOutage takes the branch out of service, runs fn, and restores
// the branch on every exit path. The pre-mutation status is captured
// first and restored verbatim, never a guessed default. fnErr carries
// fn's failure; stateErr carries a failed read, outage, or restore, after
// which the network can no longer be trusted.
func withBranchOutage(
	ctx context.Context,
	eng engine.Engine,
	id string,
	fn func() error,
) (fnErr, stateErr error) {
	orig, err := eng.BranchInService(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read branch %s status: %w", id, err)
	}

	if err := eng.SetBranchInService(ctx, id, false); err != nil {
		return nil, fmt.Errorf("outage branch %s: %w", id, err)
	}

	defer func() {
		if err := eng.SetBranchInService(ctx, id, orig); err != nil && stateErr == nil {
			stateErr = fmt.Errorf("restore branch %s: %w", id, err)
		}
	}()

	return fn(), nil
}

// runContingencies solves the DC power flow once per contingency and
// returns how many solves reached an accepted status. A failed solve is
// counted and the loop continues; a state error aborts the analysis.
func runContingencies(
	ctx context.Context,
	logger *slog.Logger,
	eng engine.Engine,
	contingencies []string,
) (int, error) {
	solved := 0

	for _, id := range contingencies {
		fnErr, stateErr := withBranchOutage(ctx, eng, id, func() error {
			status, err := eng.RunDCPowerFlow(ctx, engine.SolveOptions{
				DistributedSlack: true,
			})
			if err != nil {
				return err
			}

			if !status.Accepted() {
				return fmt.Errorf("solver status %s", status)
			}

			return nil
		})

		if stateErr != nil {
			return solved, stateErr
		}

		if fnErr != nil {
			logger.Warn("contingency solve failed",
				slog.String("branch", id),
				slog.String("error", fnErr.Error()),
			)

			continue
		}

		solved++
	}

	return solved, nil
}

// runPTDF computes the base-case sensitivity matrix, then repeats the
// perturb/solve/restore pattern per contingency. Per-contingency matrices
// are discarded; only completion and timing are recorded.
func runPTDF(
	ctx context.Context,
	logger *slog.Logger,
	eng engine.Engine,
	sel Selection,
) error {
	if _, err := eng.ComputePTDF(ctx, sel.Monitored, sel.Injections); err != nil {
		return fmt.Errorf("base case: %w", err)
	}

	for _, id := range sel.Contingencies {
		fnErr, stateErr := withBranchOutage(ctx, eng, id, func() error {
			_, err := eng.ComputePTDF(ctx, sel.Monitored, sel.Injections)

			return err
		})

		if stateErr != nil {
			return stateErr
		}

		if fnErr != nil {
			logger.Warn("ptdf contingency failed",
				slog.String("branch", id),
				slog.String("error", fnErr.Error()),
			)
		}
	}

	return nil
}
