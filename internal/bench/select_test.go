package bench

import (
	"reflect"
	"testing"
)

func TestFirstSortedTruncates(t *testing.T) {
	// Selection must be deterministic regardless of source ordering.
	got := FirstSorted([]string{"B3", "B1", "B2"}, 2)
	want := []string{"B1", "B2"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FirstSorted = %v, want %v", got, want)
	}
}

func TestFirstSortedShortInput(t *testing.T) {
	got := FirstSorted([]string{"B2", "B1"}, 10)
	want := []string{"B1", "B2"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("FirstSorted = %v, want %v", got, want)
	}
}

func TestFirstSortedDoesNotMutateInput(t *testing.T) {
	ids := []string{"B3", "B1", "B2"}
	FirstSorted(ids, 2)

	if !reflect.DeepEqual(ids, []string{"B3", "B1", "B2"}) {
		t.Errorf("input mutated: %v", ids)
	}
}

func TestBuildSelection(t *testing.T) {
	branches := []string{"L5", "L2", "L9", "L1"}
	generators := []string{"G2", "G1", "G3"}
	loads := []string{"D2", "D1"}

	sel := BuildSelection(branches, generators, loads, SelectionCounts{
		Contingencies:     2,
		MonitoredBranches: 3,
		InjectionPoints:   4,
	})

	if want := []string{"L1", "L2"}; !reflect.DeepEqual(sel.Contingencies, want) {
		t.Errorf("contingencies = %v, want %v", sel.Contingencies, want)
	}
	if want := []string{"L1", "L2", "L5"}; !reflect.DeepEqual(sel.Monitored, want) {
		t.Errorf("monitored = %v, want %v", sel.Monitored, want)
	}
	// Injection points split evenly: 2 generators + 2 loads, each sorted.
	if want := []string{"G1", "G2", "D1", "D2"}; !reflect.DeepEqual(sel.Injections, want) {
		t.Errorf("injections = %v, want %v", sel.Injections, want)
	}

	counts := sel.Counts()
	if counts.Contingencies != 2 || counts.MonitoredBranches != 3 ||
		counts.InjectionPoints != 4 {
		t.Errorf("counts = %+v", counts)
	}
}

func TestBuildSelectionRepeatedRunsIdentical(t *testing.T) {
	counts := SelectionCounts{
		Contingencies:     2,
		MonitoredBranches: 2,
		InjectionPoints:   2,
	}

	first := BuildSelection([]string{"B2", "B3", "B1"}, []string{"G1"}, []string{"D1"}, counts)
	second := BuildSelection([]string{"B1", "B2", "B3"}, []string{"G1"}, []string{"D1"}, counts)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("selection differs across orderings: %+v vs %+v", first, second)
	}
}
