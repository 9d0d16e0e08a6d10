package locomotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJumpArcReturnsToStandingHeight(t *testing.T) {
	j := newJumpIntegrator(DefaultConfig(), FixedHeight(1.6))
	require.True(t, j.Start())
	assert.False(t, j.Start())

	phases := []JumpPhase{j.State().Phase}
	heights := []float64{j.ViewpointHeight()}
	landed := 0
	for i := 0; i < 500 && j.State().Phase != JumpIdle; i++ {
		step := j.Tick(frameDT)
		if step.Landed {
			landed++
		}
		if p := j.State().Phase; p != phases[len(phases)-1] {
			phases = append(phases, p)
		}
		heights = append(heights, j.ViewpointHeight())
	}

	assert.Equal(t, []JumpPhase{JumpRising, JumpFalling, JumpIdle}, phases)
	assert.Equal(t, 1, landed)
	assert.Equal(t, 1.6, heights[len(heights)-1])
	assert.Zero(t, j.Offset())

	peak := 0
	for i, h := range heights {
		if h > heights[peak] {
			peak = i
		}
	}
	require.Greater(t, peak, 0)
	for i := 1; i <= peak; i++ {
		assert.Greater(t, heights[i], heights[i-1])
	}
	for i := peak + 1; i < len(heights); i++ {
		assert.LessOrEqual(t, heights[i], heights[i-1])
	}
}

func TestJumpLandingDeltaSnapsExactly(t *testing.T) {
	j := newJumpIntegrator(DefaultConfig(), FixedHeight(1.6))
	j.Start()

	total := 0.0
	for {
		step := j.Tick(frameDT)
		total += step.Delta.Y()
		if step.Landed {
			break
		}
	}
	assert.InDelta(t, 0, total, 1e-9)
	assert.Equal(t, JumpState{}, j.State())
}

func TestIdleJumpDoesNothing(t *testing.T) {
	j := newJumpIntegrator(DefaultConfig(), FixedHeight(1.6))
	assert.Equal(t, JumpStep{}, j.Tick(frameDT))

	j.Start()
	j.Tick(frameDT)
	j.Cancel()
	assert.Equal(t, JumpIdle, j.State().Phase)
	assert.True(t, j.Start())
}
