// Package compare orchestrates the two benchmark runner subprocesses and
// merges their result files into a single comparison report.
package compare

// RunState tracks one benchmark subprocess through its lifecycle.
type RunState int

const (
	NotStarted RunState = iota
	Running
	Completed
	Failed
	TimedOut
)

// String returns the wire representation used in reports.
func (s RunState) String() string {
	switch s {
	case NotStarted:
		return "NOT_STARTED"
	case Running:
		return "RUNNING"
	case Completed:
		return "COMPLETED"
	case Failed:
		return "FAILED"
	case TimedOut:
		return "TIMED_OUT"
	default:
		return "UNKNOWN"
	}
}
