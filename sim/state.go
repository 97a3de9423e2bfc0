package sim

// State is the phase the simulation loop is in.
type State int32

const (
	StateIdle State = iota
	StateAgents
	StateDiffuse
	StateSwap
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAgents:
		return "agents"
	case StateDiffuse:
		return "diffuse"
	case StateSwap:
		return "swap"
	default:
		return "unknown"
	}
}
