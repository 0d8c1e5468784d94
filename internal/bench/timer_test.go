package bench

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTimeOperationSuccess(t *testing.T) {
	calls := 0

	elapsed, ok := TimeOperation(discardLogger(), "test_op", func() error {
		calls++
		time.Sleep(time.Millisecond)

		return nil
	})

	if !ok {
		t.Error("expected success")
	}
	if calls != 1 {
		t.Errorf("operation ran %d times, want 1", calls)
	}
	if elapsed < 0 {
		t.Errorf("elapsed = %v, want non-negative", elapsed)
	}
}

func TestTimeOperationFailure(t *testing.T) {
	elapsed, ok := TimeOperation(discardLogger(), "test_op", func() error {
		time.Sleep(time.Millisecond)

		return errors.New("solver diverged")
	})

	if ok {
		t.Error("expected failure")
	}
	if elapsed < time.Millisecond {
		t.Errorf("elapsed = %v, want time-to-failure >= 1ms", elapsed)
	}
}
