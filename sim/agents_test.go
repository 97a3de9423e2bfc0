package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/physarum/systems"
)

func TestAgentStoreSnapshotApply(t *testing.T) {
	agents := []systems.Agent{
		{X: 1, Y: 2, Angle: 0.5, Species: 0, Mask: [3]float32{1, 0, 0}},
		{X: 3, Y: 4, Angle: 1.5, Species: 1, Mask: [3]float32{0, 1, 0}},
	}
	s := NewAgentStore(agents)
	require.Equal(t, 2, s.Len())

	snaps := s.snapshot(nil)
	require.Len(t, snaps, 2)
	assert.Equal(t, agents[0], snaps[0].Agent)
	assert.Equal(t, agents[1], snaps[1].Agent)

	s.apply(snaps, []intent{
		{X: 1.5, Y: 2.5, Angle: 0.25},
		{X: 0, Y: 4, Angle: 2, Bounced: true},
	})

	view := s.View()
	assert.Equal(t, float32(1.5), view[0].X)
	assert.Equal(t, float32(0.25), view[0].Angle)
	assert.Equal(t, uint8(1), view[1].Species, "species is untouched")
	assert.Equal(t, uint64(1), s.TotalBounces())

	// A second snapshot sees the applied state.
	snaps = s.snapshot(snaps)
	assert.Equal(t, float32(2.5), snaps[0].Agent.Y)
	assert.Equal(t, float32(2), snaps[1].Agent.Angle)
	assert.Equal(t, [3]float32{0, 1, 0}, snaps[1].Agent.Mask)
}

func TestAgentStoreViewIsCopy(t *testing.T) {
	agents := []systems.Agent{{X: 1, Y: 1}}
	s := NewAgentStore(agents)
	agents[0].X = 9
	assert.Equal(t, float32(1), s.View()[0].X)
}
