package sim

import (
	"github.com/pthm-cable/physarum/systems"
)

// Snapshot is a consistent copy of the simulation at a step boundary.
type Snapshot struct {
	Width, Height int
	Channels      int
	NumSpecies    int
	Step          uint64
	SimTime       float64

	Trail [systems.NumChannels][]float32
	Food  []float32

	X, Y, Angle []float32
	Species     []uint8
}

// Snapshot returns a copy of the current field, food and agents.
func (s *Simulation) Snapshot() *Snapshot {
	snap := &Snapshot{}
	s.SnapshotInto(snap)
	return snap
}

// SnapshotInto fills dst, reusing its slices where they are large enough.
// Food is read without stopping concurrent painters, so it may include paint
// applied after the step boundary.
func (s *Simulation) SnapshotInto(dst *Snapshot) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dst.Width, dst.Height = s.w, s.h
	dst.Channels = s.channels
	dst.NumSpecies = len(s.species)
	dst.Step = s.step
	dst.SimTime = s.simTime

	for c := 0; c < systems.NumChannels; c++ {
		dst.Trail[c] = s.trail.CopyCurrent(dst.Trail[c], c)
	}
	dst.Food = s.food.CopyInto(dst.Food)

	view := s.store.View()
	n := len(view)
	dst.X = resize(dst.X, n)
	dst.Y = resize(dst.Y, n)
	dst.Angle = resize(dst.Angle, n)
	if cap(dst.Species) < n {
		dst.Species = make([]uint8, n)
	}
	dst.Species = dst.Species[:n]
	for i := range view {
		dst.X[i] = view[i].X
		dst.Y[i] = view[i].Y
		dst.Angle[i] = view[i].Angle
		dst.Species[i] = view[i].Species
	}
}

// TrailAt returns the summed trail of every channel at cell (x, y).
func (sn *Snapshot) TrailAt(x, y int) float32 {
	if x < 0 || y < 0 || x >= sn.Width || y >= sn.Height {
		return 0
	}
	i := y*sn.Width + x
	var v float32
	for c := range sn.Trail {
		if len(sn.Trail[c]) > i {
			v += sn.Trail[c][i]
		}
	}
	return v
}

func resize(buf []float32, n int) []float32 {
	if cap(buf) < n {
		return make([]float32, n)
	}
	return buf[:n]
}
