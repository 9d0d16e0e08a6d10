package locomotion

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

type JumpPhase uint8

const (
	JumpIdle JumpPhase = iota
	JumpRising
	JumpFalling
)

func (p JumpPhase) String() string {
	switch p {
	case JumpIdle:
		return "idle"
	case JumpRising:
		return "rising"
	case JumpFalling:
		return "falling"
	default:
		return "unknown"
	}
}

// JumpState is the vertical motion of a jump in progress.
type JumpState struct {
	Phase    JumpPhase
	Velocity mgl64.Vec3
}

// JumpStep is the result of one integration step.
type JumpStep struct {
	Delta  mgl64.Vec3
	Landed bool
}

// jumpIntegrator tracks how far the viewpoint has risen above the standing
// height reported by the height query.
type jumpIntegrator struct {
	cfg    Config
	height HeightQuery
	state  JumpState
	offset float64
}

func newJumpIntegrator(cfg Config, height HeightQuery) *jumpIntegrator {
	return &jumpIntegrator{cfg: cfg, height: height}
}

// Start begins a jump. It is a no-op unless idle.
func (j *jumpIntegrator) Start() bool {
	if j.state.Phase != JumpIdle {
		return false
	}
	j.state = JumpState{Phase: JumpRising, Velocity: mgl64.Vec3{0, j.cfg.JumpImpulse, 0}}
	j.offset = 0
	return true
}

// Tick integrates gravity over dt.
func (j *jumpIntegrator) Tick(dt time.Duration) JumpStep {
	if j.state.Phase == JumpIdle {
		return JumpStep{}
	}
	seconds := dt.Seconds()
	j.state.Velocity[1] -= j.cfg.Gravity * seconds
	delta := j.state.Velocity.Mul(seconds)

	if j.state.Phase == JumpRising && j.state.Velocity.Y() < 0 {
		j.state.Phase = JumpFalling
	}

	if j.state.Phase == JumpFalling {
		standing := j.standing()
		if standing+j.offset+delta.Y() <= standing+j.cfg.LandingMargin {
			// snap back to exactly the standing height
			delta = mgl64.Vec3{0, -j.offset, 0}
			j.offset = 0
			j.state = JumpState{}
			return JumpStep{Delta: delta, Landed: true}
		}
	}

	j.offset += delta.Y()
	return JumpStep{Delta: delta}
}

func (j *jumpIntegrator) State() JumpState { return j.state }

// Offset is the height of the viewpoint above standing height.
func (j *jumpIntegrator) Offset() float64 { return j.offset }

// ViewpointHeight is the current distance from the feet to the viewpoint.
func (j *jumpIntegrator) ViewpointHeight() float64 {
	return j.standing() + j.offset
}

func (j *jumpIntegrator) standing() float64 {
	return j.height.StandingHeight(true)
}

// Cancel abandons a jump in progress without moving the viewpoint.
func (j *jumpIntegrator) Cancel() {
	j.state = JumpState{}
	j.offset = 0
}
