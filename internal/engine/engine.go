// Package engine drives external power-system solver workers over a
// line-delimited JSON protocol on their stdin/stdout. The network model
// lives entirely inside the worker; the harness only ever sees element
// counts, identifiers, and solver statuses.
package engine

import "context"

// SolveStatus is a solver's reported termination status for one analysis.
type SolveStatus string

const (
	StatusConverged     SolveStatus = "CONVERGED"
	StatusOptimal       SolveStatus = "OPTIMAL"
	StatusLocallySolved SolveStatus = "LOCALLY_SOLVED"
	StatusInfeasible    SolveStatus = "INFEASIBLE"
	StatusDiverged      SolveStatus = "DIVERGED"
)

// Accepted reports whether the status counts as a successful solve.
func (s SolveStatus) Accepted() bool {
	switch s {
	case StatusConverged, StatusOptimal, StatusLocallySolved:
		return true
	}

	return false
}

// NetworkSummary holds the element counts the worker reports after
// parsing the case file.
type NetworkSummary struct {
	Buses      int `json:"buses"`
	Branches   int `json:"branches"`
	Generators int `json:"generators"`
	Loads      int `json:"loads"`
}

// PTDFSummary describes the shape of a computed sensitivity matrix.
// The matrix itself is discarded worker-side; only dimensions come back.
type PTDFSummary struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SolveOptions travel with every power-flow request so solver verbosity
// is explicit per invocation rather than ambient worker state.
type SolveOptions struct {
	DistributedSlack bool `json:"distributed_slack"`
	Verbose          bool `json:"verbose"`
}

// Engine is the surface the benchmark suite needs from a solver package.
type Engine interface {
	LoadNetwork(ctx context.Context, path string) (NetworkSummary, error)
	BranchIDs(ctx context.Context) ([]string, error)
	GeneratorIDs(ctx context.Context) ([]string, error)
	LoadIDs(ctx context.Context) ([]string, error)
	RunACPowerFlow(ctx context.Context, opts SolveOptions) (SolveStatus, error)
	RunDCPowerFlow(ctx context.Context, opts SolveOptions) (SolveStatus, error)
	BranchInService(ctx context.Context, id string) (bool, error)
	SetBranchInService(ctx context.Context, id string, inService bool) error
	ComputePTDF(ctx context.Context, monitored, injections []string) (PTDFSummary, error)
	Close() error
}
