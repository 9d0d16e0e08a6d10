package locomotion

import "strings"

// Mode is the locomotion bookkeeping shared across frames. A pending landing
// only exists while flying; the setters keep it that way.
type Mode struct {
	flying                bool
	landWhenPossible      bool
	unoccupyOnMove        bool
	teleportedSinceTravel bool
	motionLocked          bool
	teleportLocked        bool
	traveling             bool
}

func (m Mode) Flying() bool                { return m.flying }
func (m Mode) Walking() bool               { return !m.flying }
func (m Mode) LandWhenPossible() bool      { return m.landWhenPossible }
func (m Mode) UnoccupyOnMove() bool        { return m.unoccupyOnMove }
func (m Mode) TeleportedSinceTravel() bool { return m.teleportedSinceTravel }
func (m Mode) MotionLocked() bool          { return m.motionLocked }
func (m Mode) TeleportLocked() bool        { return m.teleportLocked }

// WaypointTraveling reports whether a waypoint request was active when the
// mode was read.
func (m Mode) WaypointTraveling() bool { return m.traveling }

func (m *Mode) fly(landWhenPossible bool) {
	m.flying = true
	m.landWhenPossible = landWhenPossible
}

func (m *Mode) walk() {
	m.flying = false
	m.landWhenPossible = false
}

func (m Mode) String() string {
	var b strings.Builder
	if m.flying {
		b.WriteString("flying")
		if m.landWhenPossible {
			b.WriteString("+landing")
		}
	} else {
		b.WriteString("walking")
	}
	if m.traveling {
		b.WriteString(",traveling")
	}
	if m.motionLocked {
		b.WriteString(",motion-locked")
	}
	if m.teleportLocked {
		b.WriteString(",teleport-locked")
	}
	return b.String()
}
