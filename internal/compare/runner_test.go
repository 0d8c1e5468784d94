package compare

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func shellRunner(script string) *Runner {
	return &Runner{
		Name:   "PowSyBl",
		Binary: "/bin/sh",
		Args:   []string{"-c", script},
		Logger: discardLogger(),
		Stdout: io.Discard,
		Stderr: io.Discard,
	}
}

func writeResultFile(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "powsybl_results.json")
	content := `{
		"run_id": "r1",
		"package": "PowSyBl",
		"timing_ms": {"ac_power_flow": 12.5, "dc_power_flow": null},
		"success_rates": {"dc_contingency_analysis": "3/3"}
	}`

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestRunnerCompletedWithData(t *testing.T) {
	resultPath := writeResultFile(t, t.TempDir())

	outcome := shellRunner("exit 0").Run(
		context.Background(), time.Minute, resultPath,
	)

	if outcome.State != Completed {
		t.Fatalf("state = %s, want COMPLETED", outcome.State)
	}
	if outcome.Result == nil {
		t.Fatal("expected result data")
	}
	if outcome.Result.Package != "PowSyBl" {
		t.Errorf("package = %q", outcome.Result.Package)
	}

	ms := outcome.Result.TimingMs["ac_power_flow"]
	if ms == nil || *ms != 12.5 {
		t.Errorf("ac timing = %v, want 12.5", ms)
	}
}

func TestRunnerNonZeroExitIsFailedNotFatal(t *testing.T) {
	resultPath := filepath.Join(t.TempDir(), "absent.json")

	outcome := shellRunner("exit 3").Run(
		context.Background(), time.Minute, resultPath,
	)

	if outcome.State != Failed {
		t.Fatalf("state = %s, want FAILED", outcome.State)
	}
	if outcome.Result != nil {
		t.Error("expected no result data")
	}
	if outcome.Err == nil {
		t.Error("expected recorded error")
	}
}

func TestRunnerTimeout(t *testing.T) {
	resultPath := filepath.Join(t.TempDir(), "absent.json")

	outcome := shellRunner("sleep 5").Run(
		context.Background(), 50*time.Millisecond, resultPath,
	)

	if outcome.State != TimedOut {
		t.Fatalf("state = %s, want TIMED_OUT", outcome.State)
	}
	if outcome.Result != nil {
		t.Error("expected no result data after timeout")
	}
}

func TestRunnerCompletedWithoutResultFile(t *testing.T) {
	// A runner that exits cleanly but leaves no parsable file is still
	// "no data"; the comparison must not treat this as fatal.
	resultPath := filepath.Join(t.TempDir(), "absent.json")

	outcome := shellRunner("exit 0").Run(
		context.Background(), time.Minute, resultPath,
	)

	if outcome.State != Completed {
		t.Fatalf("state = %s, want COMPLETED", outcome.State)
	}
	if outcome.Result != nil {
		t.Error("expected nil result for missing file")
	}
}

func TestRunnerMalformedResultFile(t *testing.T) {
	dir := t.TempDir()
	resultPath := filepath.Join(dir, "bad.json")

	if err := os.WriteFile(resultPath, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	outcome := shellRunner("exit 0").Run(
		context.Background(), time.Minute, resultPath,
	)

	if outcome.State != Completed {
		t.Fatalf("state = %s, want COMPLETED", outcome.State)
	}
	if outcome.Result != nil {
		t.Error("expected nil result for malformed file")
	}
}

func TestRunnerFailureStillLoadsPartialData(t *testing.T) {
	// If the runner crashed after writing results, the data is used.
	resultPath := writeResultFile(t, t.TempDir())

	outcome := shellRunner("exit 1").Run(
		context.Background(), time.Minute, resultPath,
	)

	if outcome.State != Failed {
		t.Fatalf("state = %s, want FAILED", outcome.State)
	}
	if outcome.Result == nil {
		t.Error("expected result data written before the crash")
	}
}

func TestResolveRunner(t *testing.T) {
	got := ResolveRunner("bin", "powsybl")
	want := filepath.Join("bin", "powsybl-bench")

	if got != want {
		t.Errorf("ResolveRunner = %q, want %q", got, want)
	}
}
