package compare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/avickers/gridbench/internal/bench"
)

// Runner executes one package's benchmark binary as a subprocess.
type Runner struct {
	Name   string
	Binary string
	Args   []string
	Env    []string
	Logger *slog.Logger

	// Stdout and Stderr default to the parent's streams so runner
	// progress stays visible during long benchmarks.
	Stdout io.Writer
	Stderr io.Writer
}

// Outcome is the terminal state of one benchmark subprocess plus
// whatever result data its file yielded. Result is nil when the file is
// missing or malformed; the comparison proceeds without it.
type Outcome struct {
	Name   string
	State  RunState
	Result *bench.Result
	Err    error
}

// Run executes the runner binary, waits for it to finish or hit the
// timeout, then loads its result file. Timeout and non-zero exit are
// recorded, not propagated, so one package's failure never aborts the
// comparison.
func (r *Runner) Run(ctx context.Context, timeout time.Duration, resultFile string) Outcome {
	outcome := Outcome{Name: r.Name, State: Running}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.Binary, r.Args...)

	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}

	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}

	cmd.Stderr = r.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	r.Logger.Info("starting benchmark",
		slog.String("binary", r.Binary),
		slog.Duration("timeout", timeout),
	)

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		outcome.State = TimedOut
		outcome.Err = fmt.Errorf("timed out after %s", timeout)

		r.Logger.Error("benchmark timed out",
			slog.Duration("timeout", timeout),
		)

	case err != nil:
		outcome.State = Failed
		outcome.Err = err

		r.Logger.Error("benchmark failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", elapsed),
		)

	default:
		outcome.State = Completed

		r.Logger.Info("benchmark finished",
			slog.Duration("elapsed", elapsed),
		)
	}

	// Load whatever the runner managed to write, even after a failure.
	result, loadErr := bench.LoadResult(resultFile)
	if loadErr != nil {
		r.Logger.Warn("no result data",
			slog.String("path", resultFile),
			slog.String("error", loadErr.Error()),
		)

		return outcome
	}

	outcome.Result = result

	return outcome
}
