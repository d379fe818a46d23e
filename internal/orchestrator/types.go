// Package orchestrator implements the subsystem lifecycle engine: a
// dependency-ordered launch/land scheduler that runs per-subsystem
// readiness checks, admits ready subsystems in topological order, and
// tears them down in reverse order with symmetric semantics.
package orchestrator

import "fmt"

// SubsystemState is a node's position in the lifecycle state machine.
type SubsystemState int

const (
	Inactive SubsystemState = iota
	Starting
	Running
	Stopping
	Error
)

func (s SubsystemState) String() string {
	switch s {
	case Inactive:
		return "Inactive"
	case Starting:
		return "Starting"
	case Running:
		return "Running"
	case Stopping:
		return "Stopping"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("SubsystemState(%d)", int(s))
	}
}

// legalTransitions enumerates the only state changes set_state will
// accept. Error is reachable from any state and is terminal; it is
// special-cased in Registry.SetState rather than listed here.
var legalTransitions = map[SubsystemState][]SubsystemState{
	Inactive: {Starting},
	Starting: {Running},
	Running:  {Stopping},
	Stopping: {Inactive},
}

// SubsystemID is the stable integer slot assigned at registration time.
type SubsystemID int

// ReadinessVerdict is the output of a subsystem's check_ready().
type ReadinessVerdict struct {
	Subsystem SubsystemID
	Name      string
	Ready     bool
	Messages  []string
}

// ReadinessBatch is an insertion-ordered sequence of verdicts plus
// aggregate counters, derived from and consistent with those verdicts.
type ReadinessBatch struct {
	Verdicts      []ReadinessVerdict
	TotalChecked  int
	TotalReady    int
	TotalNotReady int
	AnyReady      bool
}

// NewReadinessBatch assembles a batch and derives its counters from the
// supplied verdicts, preserving insertion order.
func NewReadinessBatch(verdicts []ReadinessVerdict) *ReadinessBatch {
	b := &ReadinessBatch{Verdicts: verdicts, TotalChecked: len(verdicts)}
	for _, v := range verdicts {
		if v.Ready {
			b.TotalReady++
			b.AnyReady = true
		} else {
			b.TotalNotReady++
		}
	}
	return b
}
