package bench

import "sort"

// SelectionCounts is the benchmark sizing configuration. It is embedded
// verbatim in the result file so runs remain comparable.
type SelectionCounts struct {
	Contingencies     int `json:"contingencies"`
	MonitoredBranches int `json:"monitored_branches"`
	InjectionPoints   int `json:"injection_points"`
}

// Selection fixes the identifier sets both packages benchmark against.
// Identifiers are sorted then truncated so the same case file always
// yields the same sets regardless of source ordering.
type Selection struct {
	Contingencies []string
	Monitored     []string
	Injections    []string
}

// FirstSorted returns the first n identifiers in lexicographic order.
// The input slice is never mutated.
func FirstSorted(ids []string, n int) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	sort.Strings(out)

	if n < len(out) {
		out = out[:n]
	}

	return out
}

// BuildSelection derives the contingency, monitored-branch, and
// injection-point sets from the worker's identifier lists. Injection
// points are split evenly between generators and loads.
func BuildSelection(branches, generators, loads []string, counts SelectionCounts) Selection {
	genCount := counts.InjectionPoints / 2
	loadCount := counts.InjectionPoints - genCount

	injections := FirstSorted(generators, genCount)
	injections = append(injections, FirstSorted(loads, loadCount)...)

	return Selection{
		Contingencies: FirstSorted(branches, counts.Contingencies),
		Monitored:     FirstSorted(branches, counts.MonitoredBranches),
		Injections:    injections,
	}
}

// Counts reports the realized set sizes, which may be smaller than the
// configured ones on small networks.
func (s Selection) Counts() SelectionCounts {
	return SelectionCounts{
		Contingencies:     len(s.Contingencies),
		MonitoredBranches: len(s.Monitored),
		InjectionPoints:   len(s.Injections),
	}
}
