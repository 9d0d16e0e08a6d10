package locomotion

import (
	"github.com/zeusync/locomotion/internal/core/events/cue"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/spatial"
	"github.com/zeusync/locomotion/internal/core/systems/navigation"
)

// Intent is one frame of movement input. Strafe and Forward are normalized.
type Intent struct {
	Strafe          float64
	Forward         float64
	Boost           bool
	Fly             bool
	Jump            bool
	SnapRotateLeft  bool
	SnapRotateRight bool
}

// Preferences are user settings that shape movement.
type Preferences struct {
	MovementSpeedModifier    float64
	DisableMovement          bool
	DisableStrafing          bool
	DisableBackwardsMovement bool
	SnapRotationDegrees      float64
}

// DefaultPreferences returns unrestricted movement with 45 degree snaps.
func DefaultPreferences() Preferences {
	return Preferences{MovementSpeedModifier: 1, SnapRotationDegrees: 45}
}

// InputSource samples the user's input once per frame.
type InputSource interface {
	Sample() Intent
	Preferences() Preferences
}

// Scene reports whether the avatar may be driven at all.
type Scene interface {
	Entered() bool
	Ghost() bool
	// Immersive is true inside a head-mounted session.
	Immersive() bool
}

// HeightQuery reports the avatar's current standing height. With feetOffset
// set the result is the distance from the feet to the viewpoint.
type HeightQuery interface {
	StandingHeight(feetOffset bool) float64
}

// Permissions gates optional abilities.
type Permissions interface {
	CanFly() bool
}

// Occupancy releases waypoints the avatar currently occupies.
type Occupancy interface {
	ReleaseOccupiedWaypoints()
}

// Avatar is the resolved scene node set handed to Attach.
type Avatar struct {
	Viewpoint spatial.Transform
}

// Deps are the external collaborators of a Controller. Nil members fall back
// to permissive defaults.
type Deps struct {
	Input       InputSource
	Scene       Scene
	Height      HeightQuery
	Permissions Permissions
	Occupancy   Occupancy
	Nav         navigation.Service
	Zone        string
	Cues        cue.Sink
	Logger      log.Log
	Mobile      bool
}

// StaticInput replays a fixed intent every frame.
type StaticInput struct {
	Intent Intent
	Prefs  Preferences
}

func (s *StaticInput) Sample() Intent           { return s.Intent }
func (s *StaticInput) Preferences() Preferences { return s.Prefs }

// StaticScene is a Scene with fixed answers.
type StaticScene struct {
	IsEntered   bool
	IsGhost     bool
	IsImmersive bool
}

func (s StaticScene) Entered() bool   { return s.IsEntered }
func (s StaticScene) Ghost() bool     { return s.IsGhost }
func (s StaticScene) Immersive() bool { return s.IsImmersive }

// FixedHeight reports a constant eye height; feet offset and plain queries agree.
type FixedHeight float64

func (h FixedHeight) StandingHeight(bool) float64 { return float64(h) }

type allowAll struct{}

func (allowAll) CanFly() bool { return true }

type noOccupancy struct{}

func (noOccupancy) ReleaseOccupiedWaypoints() {}
