package locomotion

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frameDT = 16 * time.Millisecond

func plainFrame() MotionFrame {
	return MotionFrame{
		DT:            frameDT,
		Orientation:   mgl64.QuatIdent(),
		AllowVertical: true,
		SpeedModifier: 1,
		PlayerScale:   1,
	}
}

func TestMotionDecaysBelowOnePercent(t *testing.T) {
	cfg := DefaultConfig()
	m := newMotionAccumulator(cfg)
	m.Add(mgl64.Vec3{0, 0, -1})

	var lengths []float64
	for i := 0; i < 40; i++ {
		d := m.ConsumeFrame(plainFrame())
		lengths = append(lengths, d.Vector.Len())
		m.EndFrame()
	}

	assert.InDelta(t, cfg.BaseSpeed*0.016*0.15, lengths[0], 1e-12)
	for i := 1; i < len(lengths); i++ {
		require.Less(t, lengths[i], lengths[i-1], "frame %d", i)
	}
	assert.Less(t, lengths[29], 0.01*lengths[0])
}

func TestImmersiveMotionHasNoCarry(t *testing.T) {
	m := newMotionAccumulator(DefaultConfig())
	m.Add(mgl64.Vec3{1, 0, 0})

	f := plainFrame()
	f.Immersive = true
	first := m.ConsumeFrame(f)
	m.EndFrame()
	second := m.ConsumeFrame(f)

	assert.True(t, first.TriedToMove)
	assert.InDelta(t, 3.2*0.016, first.Vector.Len(), 1e-12)
	assert.False(t, second.TriedToMove)
	assert.Zero(t, second.Vector.Len())
}

func TestAccumulateHonoursPreferences(t *testing.T) {
	m := newMotionAccumulator(DefaultConfig())
	m.Accumulate(Intent{Strafe: 0.5, Forward: 1}, DefaultPreferences())
	assert.Equal(t, mgl64.Vec3{0.5, 0, -1}, m.Pending())

	m = newMotionAccumulator(DefaultConfig())
	m.Accumulate(Intent{Strafe: 0.5, Forward: -1}, Preferences{DisableStrafing: true, DisableBackwardsMovement: true})
	assert.Equal(t, mgl64.Vec3{}, m.Pending())

	m.Accumulate(Intent{Strafe: 1, Forward: 1}, Preferences{DisableMovement: true})
	assert.Equal(t, mgl64.Vec3{}, m.Pending())
}

func TestBoostAndScale(t *testing.T) {
	m := newMotionAccumulator(DefaultConfig())
	m.Add(mgl64.Vec3{0, 0, -1})

	f := plainFrame()
	f.Boost = true
	f.PlayerScale = 4
	f.SpeedModifier = 0.5
	d := m.ConsumeFrame(f)
	assert.InDelta(t, 2*0.5*3.2*2*0.016*0.15, d.Vector.Len(), 1e-12)
}

func TestHorizontalMotionIgnoresPitch(t *testing.T) {
	m := newMotionAccumulator(DefaultConfig())
	m.Add(mgl64.Vec3{0, 0, -1})

	f := plainFrame()
	f.Orientation = mgl64.QuatRotate(-math.Pi/6, mgl64.Vec3{1, 0, 0})
	f.AllowVertical = false
	flat := m.ConsumeFrame(f)
	assert.InDelta(t, 0, flat.Vector.Y(), 1e-12)
	assert.Less(t, flat.Vector.Z(), 0.0)

	f.AllowVertical = true
	free := m.ConsumeFrame(f)
	assert.Less(t, free.Vector.Y(), 0.0)
}

func TestSnapRotateClearsEveryFrame(t *testing.T) {
	m := newMotionAccumulator(DefaultConfig())
	assert.False(t, m.SnapRotate(false, false, 45))

	assert.True(t, m.SnapRotate(true, false, 45))
	m.Rotate(0.1)
	assert.InDelta(t, math.Pi/4+0.1, m.Yaw(), 1e-12)
	m.EndFrame()
	assert.Zero(t, m.Yaw())

	m.SnapRotate(false, true, 30)
	assert.InDelta(t, -math.Pi/6, m.Yaw(), 1e-12)
}
