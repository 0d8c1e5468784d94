package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/avickers/gridbench/internal/engine"
)

// Benchmark test names, in the order the suite runs them.
const (
	TestACPowerFlow   = "ac_power_flow"
	TestDCPowerFlow   = "dc_power_flow"
	TestDCContingency = "dc_contingency_analysis"
	TestPTDF          = "ptdf_calculation"
)

// TestNames returns the canonical test ordering used by results and
// comparison reports.
func TestNames() []string {
	return []string{
		TestACPowerFlow,
		TestDCPowerFlow,
		TestDCContingency,
		TestPTDF,
	}
}

// Result is the structured output of one benchmark run. Timing values
// are null for analyses that failed. A Result is written once and never
// mutated afterward.
type Result struct {
	RunID        string                `json:"run_id"`
	Timestamp    string                `json:"timestamp"`
	Package      string                `json:"package"`
	NetworkInfo  engine.NetworkSummary `json:"network_info"`
	Config       SelectionCounts       `json:"config"`
	TimingMs     map[string]*float64   `json:"timing_ms"`
	SuccessRates map[string]string     `json:"success_rates"`
}

func (r *Result) setTiming(test string, elapsed time.Duration, ok bool) {
	if !ok {
		r.TimingMs[test] = nil

		return
	}

	ms := float64(elapsed.Microseconds()) / 1000.0
	r.TimingMs[test] = &ms
}

// WriteFile serializes the result as indented JSON at path.
func (r *Result) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(r); err != nil {
		f.Close()

		return fmt.Errorf("encode result: %w", err)
	}

	return f.Close()
}

// WriteSummary prints the human-readable per-test summary.
func (r *Result) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "%s benchmark results\n", r.Package)
	fmt.Fprintf(w, "  network: %d buses, %d branches, %d generators, %d loads\n",
		r.NetworkInfo.Buses,
		r.NetworkInfo.Branches,
		r.NetworkInfo.Generators,
		r.NetworkInfo.Loads,
	)

	for _, test := range TestNames() {
		ms, present := r.TimingMs[test]
		switch {
		case !present:
			fmt.Fprintf(w, "  %s: skipped\n", test)
		case ms == nil:
			fmt.Fprintf(w, "  %s: FAILED\n", test)
		default:
			fmt.Fprintf(w, "  %s: %.2fms\n", test, *ms)
		}
	}

	for _, test := range TestNames() {
		if rate, ok := r.SuccessRates[test]; ok {
			fmt.Fprintf(w, "  %s success rate: %s\n", test, rate)
		}
	}
}

// LoadResult reads a result file written by a runner. Callers treat any
// error as "no data for this package" rather than a fatal condition.
func LoadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read result file: %w", err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode result file %s: %w", path, err)
	}

	return &result, nil
}
