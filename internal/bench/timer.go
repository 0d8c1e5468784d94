// Package bench runs the four benchmark analyses against a solver engine
// and produces the per-package timing record. Both runner binaries share
// this package, so timing and contingency handling behave identically
// across packages.
package bench

import (
	"log/slog"
	"time"
)

// TimeOperation executes op once and measures its wall-clock time.
// On failure the elapsed time still reflects time-to-failure; the error
// is logged and swallowed so one failed analysis never aborts the run.
func TimeOperation(logger *slog.Logger, label string, op func() error) (time.Duration, bool) {
	logger.Info("running test", slog.String("test", label))

	start := time.Now()
	err := op()
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("test failed",
			slog.String("test", label),
			slog.Duration("elapsed", elapsed),
			slog.String("error", err.Error()),
		)

		return elapsed, false
	}

	logger.Info("test finished",
		slog.String("test", label),
		slog.Duration("elapsed", elapsed),
	)

	return elapsed, true
}
