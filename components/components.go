// Package components defines ECS components for agents.
package components

// Position represents an agent's location in field cells.
// Always inside [0,W)x[0,H).
type Position struct {
	X, Y float32
}

// Heading is an agent's direction of travel in radians.
type Heading struct {
	Angle float32
}

// Species identifies an agent's species and the trail channels it writes.
type Species struct {
	Index uint8
	// Mask selects trail channels: one-hot for a multi-species run, all ones
	// when a single species owns every channel.
	Mask [3]float32
}

// Tracking holds per-agent counters updated by the apply phase.
type Tracking struct {
	Bounces uint32
}
