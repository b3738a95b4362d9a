package gate

// State is a step of the per-invocation state machine.
type State int

const (
	StateReceived State = iota
	StateClassified
	StateResolving
	StateActivating
	StateSettling
	StateDispatched
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateClassified:
		return "classified"
	case StateResolving:
		return "resolving"
	case StateActivating:
		return "activating"
	case StateSettling:
		return "settling"
	case StateDispatched:
		return "dispatched"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Terminal reports whether no further transitions can follow.
func (s State) Terminal() bool {
	return s == StateDispatched || s == StateFailed
}
