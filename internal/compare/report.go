package compare

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/avickers/gridbench/internal/bench"
)

// TestSummary is one aligned row of the comparison: both packages'
// elapsed times for a test plus the derived ratio. Nil values mean the
// package has no timing for that test.
type TestSummary struct {
	Test       string   `json:"test"`
	ElapsedAMs *float64 `json:"package_a_ms"`
	ElapsedBMs *float64 `json:"package_b_ms"`
	Speedup    *float64 `json:"speedup"`
	Faster     string   `json:"faster"`
}

// Report is the combined comparison artifact: both raw timing records
// for traceability plus the per-test summary.
type Report struct {
	Timestamp string        `json:"timestamp"`
	PackageA  string        `json:"package_a"`
	PackageB  string        `json:"package_b"`
	StateA    string        `json:"package_a_state"`
	StateB    string        `json:"package_b_state"`
	ResultsA  *bench.Result `json:"package_a_results"`
	ResultsB  *bench.Result `json:"package_b_results"`
	Summary   []TestSummary `json:"comparison_summary"`
}

// BuildReport aligns the two outcomes by test name and computes speedup
// ratios. Either side may lack data; those rows carry no ratio and the
// faster label "N/A". Speedup is package A's elapsed time divided by
// package B's, so values above 1 mean package B was faster.
func BuildReport(a, b Outcome) *Report {
	report := &Report{
		Timestamp: time.Now().Format(time.RFC3339),
		PackageA:  a.Name,
		PackageB:  b.Name,
		StateA:    a.State.String(),
		StateB:    b.State.String(),
		ResultsA:  a.Result,
		ResultsB:  b.Result,
		Summary:   make([]TestSummary, 0, 4),
	}

	for _, test := range bench.TestNames() {
		row := TestSummary{Test: test, Faster: "N/A"}
		row.ElapsedAMs = timingFor(a.Result, test)
		row.ElapsedBMs = timingFor(b.Result, test)

		if row.ElapsedAMs != nil && row.ElapsedBMs != nil {
			if *row.ElapsedBMs != 0 {
				ratio := *row.ElapsedAMs / *row.ElapsedBMs
				row.Speedup = &ratio
			}

			if *row.ElapsedBMs < *row.ElapsedAMs {
				row.Faster = b.Name
			} else {
				row.Faster = a.Name
			}
		}

		report.Summary = append(report.Summary, row)
	}

	return report
}

func timingFor(result *bench.Result, test string) *float64 {
	if result == nil {
		return nil
	}

	return result.TimingMs[test]
}

// Render writes the markdown comparison.
func Render(w io.Writer, report *Report) {
	fmt.Fprintln(w, "## Benchmark Comparison")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", report.PackageA, report.StateA)
	fmt.Fprintf(w, "%s: %s\n", report.PackageB, report.StateB)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "| Test | %s (ms) | %s (ms) | Speedup (%s/%s) | Faster |\n",
		report.PackageA, report.PackageB, report.PackageA, report.PackageB,
	)
	fmt.Fprintln(w, "|------|---------|---------|---------|--------|")

	for _, row := range report.Summary {
		fmt.Fprintf(w, "| %s | %s | %s | %s | %s |\n",
			titleCase(row.Test),
			formatTiming(row.ElapsedAMs),
			formatTiming(row.ElapsedBMs),
			formatSpeedup(row.Speedup),
			row.Faster,
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "### Success Rates")
	fmt.Fprintln(w)
	renderSuccessRates(w, report.PackageA, report.ResultsA)
	renderSuccessRates(w, report.PackageB, report.ResultsB)
}

func renderSuccessRates(w io.Writer, pkg string, result *bench.Result) {
	if result == nil {
		fmt.Fprintf(w, "%s: no data\n", pkg)

		return
	}

	fmt.Fprintf(w, "%s:\n", pkg)

	for _, test := range bench.TestNames() {
		if rate, ok := result.SuccessRates[test]; ok {
			fmt.Fprintf(w, "  - %s: %s\n", test, rate)
		}
	}
}

// WriteFile serializes the report as indented JSON at path.
func (r *Report) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(r); err != nil {
		f.Close()

		return fmt.Errorf("encode report: %w", err)
	}

	return f.Close()
}

// ReportFileName returns the timestamped report file name for a run.
func ReportFileName(t time.Time) string {
	return "benchmark_comparison_" + t.Format("20060102_150405") + ".json"
}

func formatTiming(ms *float64) string {
	if ms == nil {
		return "FAILED"
	}

	return fmt.Sprintf("%.2f", *ms)
}

func formatSpeedup(ratio *float64) string {
	if ratio == nil {
		return "N/A"
	}

	return fmt.Sprintf("%.2fx", *ratio)
}

// titleCase turns a test key like "ac_power_flow" into "Ac Power Flow".
func titleCase(test string) string {
	words := strings.Split(test, "_")
	for i, word := range words {
		if word == "" {
			continue
		}

		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}

	return strings.Join(words, " ")
}
