package locomotion

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/spatial"
)

// MotionFrame carries the per-frame context for ConsumeFrame.
type MotionFrame struct {
	DT            time.Duration
	Orientation   mgl64.Quat
	AllowVertical bool
	Boost         bool
	SpeedModifier float64
	PlayerScale   float64
	Immersive     bool
}

// Displacement is the world-space movement produced by one frame.
type Displacement struct {
	Vector      mgl64.Vec3
	TriedToMove bool
}

// motionAccumulator smooths movement intent. Each frame a fixed share of the
// stored motion is consumed and the remainder carried into the next frame.
type motionAccumulator struct {
	cfg Config

	relative mgl64.Vec3
	carry    mgl64.Vec3
	consumed bool
	yaw      float64
}

func newMotionAccumulator(cfg Config) *motionAccumulator {
	return &motionAccumulator{cfg: cfg}
}

// Accumulate folds an input sample into the stored motion.
func (m *motionAccumulator) Accumulate(intent Intent, prefs Preferences) {
	if prefs.DisableMovement {
		return
	}
	if !prefs.DisableStrafing {
		m.relative[0] += intent.Strafe
	}
	forward := -intent.Forward
	if prefs.DisableBackwardsMovement {
		forward = math.Min(0, forward)
	}
	m.relative[2] += forward
}

// Add enqueues a raw relative motion vector.
func (m *motionAccumulator) Add(v mgl64.Vec3) {
	m.relative = m.relative.Add(v)
}

// Rotate enqueues a yaw delta in radians.
func (m *motionAccumulator) Rotate(dyaw float64) {
	m.yaw += dyaw
}

// SnapRotate turns by degrees, left positive. It reports whether a snap happened.
func (m *motionAccumulator) SnapRotate(left, right bool, degrees float64) bool {
	snapped := false
	if left {
		m.yaw += mgl64.DegToRad(degrees)
		snapped = true
	}
	if right {
		m.yaw -= mgl64.DegToRad(degrees)
		snapped = true
	}
	return snapped
}

func (m *motionAccumulator) Yaw() float64 { return m.yaw }

func (m *motionAccumulator) Pending() mgl64.Vec3 { return m.relative }

// ConsumeFrame turns the consumable share of the stored motion into a
// world-space displacement.
func (m *motionAccumulator) ConsumeFrame(f MotionFrame) Displacement {
	blend := m.cfg.MotionBlend
	if f.Immersive {
		blend = 0
	}
	consumed := m.relative.Mul(1 - blend)
	m.carry = m.relative.Mul(blend)
	m.consumed = true

	orientation := f.Orientation
	if !f.AllowVertical {
		orientation = spatial.AffixToWorldUp(spatial.Transform{Rotation: orientation, Scale: mgl64.Vec3{1, 1, 1}}).Rotation
	}

	boost := 1.0
	if f.Boost {
		boost = m.cfg.BoostMultiplier
	}
	scale := boost * f.SpeedModifier * m.cfg.BaseSpeed * math.Sqrt(math.Max(f.PlayerScale, 0)) * f.DT.Seconds()

	return Displacement{
		Vector:      orientation.Rotate(consumed).Mul(scale),
		TriedToMove: consumed.LenSqr() > m.cfg.TriedToMoveSq,
	}
}

// EndFrame rolls the carry into the stored motion and clears the yaw delta.
func (m *motionAccumulator) EndFrame() {
	if m.consumed {
		m.relative = m.carry
	}
	m.carry = mgl64.Vec3{}
	m.consumed = false
	m.yaw = 0
}
