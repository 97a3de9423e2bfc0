package sim

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/physarum/components"
	"github.com/pthm-cable/physarum/systems"
)

// AgentStore holds the agent population as entities in an ECS world.
// The population is fixed for the run.
type AgentStore struct {
	world *ecs.World

	mapper *ecs.Map4[
		components.Position,
		components.Heading,
		components.Species,
		components.Tracking,
	]
	filter *ecs.Filter4[
		components.Position,
		components.Heading,
		components.Species,
		components.Tracking,
	]

	// view mirrors agent state in entity order for readers outside a step.
	view []systems.Agent
}

// agentSnapshot captures read-only state for parallel processing.
type agentSnapshot struct {
	Entity ecs.Entity
	Agent  systems.Agent
}

// intent captures computed outputs to apply after the parallel phase.
type intent struct {
	X, Y    float32
	Angle   float32
	Bounced bool
}

// NewAgentStore creates a store populated with agents.
func NewAgentStore(agents []systems.Agent) *AgentStore {
	s := &AgentStore{world: ecs.NewWorld()}
	s.mapper = ecs.NewMap4[
		components.Position,
		components.Heading,
		components.Species,
		components.Tracking,
	](s.world)
	s.filter = ecs.NewFilter4[
		components.Position,
		components.Heading,
		components.Species,
		components.Tracking,
	](s.world)

	for i := range agents {
		a := &agents[i]
		pos := components.Position{X: a.X, Y: a.Y}
		head := components.Heading{Angle: a.Angle}
		sp := components.Species{Index: a.Species, Mask: a.Mask}
		track := components.Tracking{}
		s.mapper.NewEntity(&pos, &head, &sp, &track)
	}
	s.view = append([]systems.Agent(nil), agents...)
	return s
}

// Len returns the number of agents.
func (s *AgentStore) Len() int { return len(s.view) }

// snapshot builds read-only copies of every agent (phase A).
func (s *AgentStore) snapshot(dst []agentSnapshot) []agentSnapshot {
	dst = dst[:0]
	query := s.filter.Query()
	for query.Next() {
		pos, head, sp, _ := query.Get()
		dst = append(dst, agentSnapshot{
			Entity: query.Entity(),
			Agent: systems.Agent{
				X:       pos.X,
				Y:       pos.Y,
				Angle:   head.Angle,
				Species: sp.Index,
				Mask:    sp.Mask,
			},
		})
	}
	return dst
}

// apply writes computed intents back to the components (phase C).
// Runs single-threaded in snapshot order.
func (s *AgentStore) apply(snaps []agentSnapshot, intents []intent) {
	if cap(s.view) < len(snaps) {
		s.view = make([]systems.Agent, len(snaps))
	}
	s.view = s.view[:len(snaps)]

	for i := range snaps {
		in := &intents[i]
		pos, head, _, track := s.mapper.Get(snaps[i].Entity)

		pos.X, pos.Y = in.X, in.Y
		head.Angle = in.Angle
		if in.Bounced {
			track.Bounces++
		}

		a := snaps[i].Agent
		a.X, a.Y, a.Angle = in.X, in.Y, in.Angle
		s.view[i] = a
	}
}

// View returns the agents as of the last completed step. The slice is owned
// by the store and must not be modified or retained across steps.
func (s *AgentStore) View() []systems.Agent { return s.view }

// TotalBounces sums the bounce counters of every agent.
func (s *AgentStore) TotalBounces() uint64 {
	var n uint64
	query := s.filter.Query()
	for query.Next() {
		_, _, _, track := query.Get()
		n += uint64(track.Bounces)
	}
	return n
}
