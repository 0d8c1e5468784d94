package engine

import "testing"

func TestSolveStatusAccepted(t *testing.T) {
	tests := []struct {
		status SolveStatus
		want   bool
	}{
		{StatusConverged, true},
		{StatusOptimal, true},
		{StatusLocallySolved, true},
		{StatusInfeasible, false},
		{StatusDiverged, false},
		{SolveStatus("MAX_ITERATION_REACHED"), false},
		{SolveStatus(""), false},
	}

	for _, tt := range tests {
		if got := tt.status.Accepted(); got != tt.want {
			t.Errorf("Accepted(%q) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
