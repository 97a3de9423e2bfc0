package sim

import (
	"github.com/pthm-cable/physarum/systems"
	"github.com/pthm-cable/physarum/telemetry"
)

// updateAgents runs the agent stage:
//
//	A: snapshot agent state from the store (serial)
//	B: sense, steer and move every agent against the current field (parallel)
//	C: write positions and headings back to the store (serial)
//	D: deposit trail and consume food at the new positions (parallel)
//
// Sensing in B reads only the current trail buffer, which nothing writes
// until D, so every agent sees the same field regardless of scheduling.
func (s *Simulation) updateAgents() error {
	s.state.Store(int32(StateAgents))
	s.perf.StartPhase(telemetry.PhaseAgents)

	// Phase A
	s.snapshots = s.store.snapshot(s.snapshots)
	n := len(s.snapshots)
	if cap(s.intents) < n {
		s.intents = make([]intent, n)
	}
	s.intents = s.intents[:n]

	// Phase B
	if err := s.pool.parallelFor(n, s.moveChunk); err != nil {
		return stageFailure("agents", err)
	}

	// Phase C
	s.store.apply(s.snapshots, s.intents)

	// Phase D
	s.perf.StartPhase(telemetry.PhaseDeposit)
	if err := s.pool.parallelFor(n, s.depositChunk); err != nil {
		return stageFailure("deposit", err)
	}
	return nil
}

func (s *Simulation) moveChunk(start, end, worker int) {
	acc := &s.scratch[worker]
	for i := start; i < end; i++ {
		a := s.snapshots[i].Agent
		sp := &s.species[a.Species]

		strength := systems.SteerStrength(sp, s.hashSeed, s.step, uint32(i))
		a.Angle = systems.Steer(&a, sp, s.trail, s.food, s.dt, strength)
		bounced := systems.Advance(&a, sp.MoveSpeed*s.dt, s.w, s.h)

		s.intents[i] = intent{X: a.X, Y: a.Y, Angle: a.Angle, Bounced: bounced}
		if bounced {
			acc.bounces++
		}
	}
}

func (s *Simulation) depositChunk(start, end, worker int) {
	acc := &s.scratch[worker]
	for i := start; i < end; i++ {
		in := &s.intents[i]
		a := &s.snapshots[i].Agent
		sp := &s.species[a.Species]

		s.trail.Deposit(in.X, in.Y, &a.Mask, s.trailWeight)
		acc.deposited += float64(s.trailWeight * s.maskSum[a.Species])

		if sp.FoodEatRate > 0 {
			acc.foodEaten += float64(s.food.Consume(in.X, in.Y, sp.FoodEatRate*s.dt))
		}
	}
}

// diffuseDecay blurs and decays every active channel from the current buffer
// into the next one. Rows of all channels are split across workers.
func (s *Simulation) diffuseDecay() error {
	s.state.Store(int32(StateDiffuse))
	s.perf.StartPhase(telemetry.PhaseDiffuse)

	if err := s.pool.parallelFor(s.channels*s.h, s.diffuseChunk); err != nil {
		return stageFailure("diffuse", err)
	}
	return nil
}

func (s *Simulation) diffuseChunk(start, end, _ int) {
	for r := start; r < end; {
		c := r / s.h
		y0 := r % s.h
		y1 := min(s.h, y0+(end-r))
		systems.DiffuseDecayRows(s.trail.Current(c), s.trail.Next(c), s.w, s.h, y0, y1, s.diffuse)
		r += y1 - y0
	}
}

// swap publishes the next buffer and advances the clock.
func (s *Simulation) swap() {
	s.state.Store(int32(StateSwap))
	s.perf.StartPhase(telemetry.PhaseSwap)

	s.trail.Swap()
	s.step++
	s.simTime += float64(s.dt)
}
