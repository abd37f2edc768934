package trainer

// State is the trainer's position in the generation cycle
type State int

const (
	StateInitialized State = iota
	StateEvaluating
	StateSelecting
	StateMutating
	// StateConverged: fitness threshold reached or fitness plateaued
	StateConverged
	// StateStopped: generation cap reached
	StateStopped
	// StateAborted: an agent invariant was violated
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateEvaluating:
		return "evaluating"
	case StateSelecting:
		return "selecting"
	case StateMutating:
		return "mutating"
	case StateConverged:
		return "converged"
	case StateStopped:
		return "stopped"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further generation can run
func (s State) Terminal() bool {
	return s == StateConverged || s == StateStopped || s == StateAborted
}
