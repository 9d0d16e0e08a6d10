// Package locomotion drives an avatar's viewpoint from movement input, queued
// waypoint travel, jumps and fly toggles. The rig is derived from the
// viewpoint every frame and never moves on its own.
package locomotion

import (
	"context"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/locomotion/internal/core/events/cue"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/spatial"
	"github.com/zeusync/locomotion/internal/core/systems/navigation"
)

// Controller owns all locomotion state of a single avatar. It is driven from
// one goroutine: Tick and the entry points must not be called concurrently.
type Controller struct {
	cfg    Config
	logger log.Log

	input       InputSource
	scene       Scene
	height      HeightQuery
	permissions Permissions
	occupancy   Occupancy
	cues        cue.Sink
	mobile      bool

	nav       *navigation.Resolver
	motion    *motionAccumulator
	jump      *jumpIntegrator
	waypoints *waypointEngine

	attached    bool
	viewpoint   spatial.Transform
	rig         spatial.Transform
	mode        Mode
	inImmersive bool

	seq   uint64
	frame Frame
}

// WaypointDone is called with the id of every completed waypoint request.
type WaypointDone func(id uuid.UUID)

// New builds a detached controller. Tick is a no-op until Attach.
func New(cfg Config, deps Deps, done WaypointDone) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	logger = logger.With(log.String("system", "locomotion"))

	c := &Controller{
		cfg:         cfg,
		logger:      logger,
		input:       deps.Input,
		scene:       deps.Scene,
		height:      deps.Height,
		permissions: deps.Permissions,
		occupancy:   deps.Occupancy,
		cues:        deps.Cues,
		mobile:      deps.Mobile,
	}
	if c.input == nil {
		logger.Warn("no input source, movement input is ignored")
		c.input = &StaticInput{Prefs: DefaultPreferences()}
	}
	if c.scene == nil {
		c.scene = StaticScene{IsEntered: true}
	}
	if c.height == nil {
		c.height = FixedHeight(cfg.DefaultEyeHeight)
	}
	if c.permissions == nil {
		c.permissions = allowAll{}
	}
	if c.occupancy == nil {
		c.occupancy = noOccupancy{}
	}
	if c.cues == nil {
		c.cues = cue.NopSink{}
	}

	c.nav = navigation.NewResolver(deps.Nav, deps.Zone, func() float64 {
		return c.height.StandingHeight(true)
	}, logger)
	c.motion = newMotionAccumulator(cfg)
	c.jump = newJumpIntegrator(cfg, c.height)
	c.waypoints = newWaypointEngine(cfg, c.cues, logger, done)
	return c
}

// Attach hands the controller the avatar it drives.
func (c *Controller) Attach(avatar Avatar) {
	vp := avatar.Viewpoint
	if vp.Scale == (mgl64.Vec3{}) {
		vp.Scale = mgl64.Vec3{1, 1, 1}
	}
	if vp.Rotation.Len() == 0 {
		vp.Rotation = mgl64.QuatIdent()
	}
	c.viewpoint = vp
	c.rig = c.deriveRig()
	c.attached = true
	c.nav.Invalidate()
	c.logger.Info("avatar attached", log.Bool("nav_ready", c.nav.ZoneReady()))
}

func (c *Controller) Attached() bool { return c.attached }

// EnqueueWaypointTravel queues a travel to transform and returns its id.
func (c *Controller) EnqueueWaypointTravel(transform spatial.Transform, isInstant bool, options Options) uuid.UUID {
	return c.waypoints.Enqueue(transform, isInstant, options)
}

// EnqueueRelativeMotion adds v to the motion consumed by the next ticks.
func (c *Controller) EnqueueRelativeMotion(v mgl64.Vec3) {
	c.motion.Add(v)
}

// EnqueueRotation turns the viewpoint around world up on the next tick.
func (c *Controller) EnqueueRotation(dyaw float64) {
	c.motion.Rotate(dyaw)
}

// TeleportTo moves the avatar so that its viewpoint stands above p. It is
// refused while a waypoint has teleporting disabled.
func (c *Controller) TeleportTo(p mgl64.Vec3) bool {
	if !c.attached || c.mode.teleportLocked {
		return false
	}
	c.mode.teleportedSinceTravel = true
	c.mode.motionLocked = false

	offset := c.viewpoint.Position.Sub(c.rig.Position)
	target := p.Sub(mgl64.Vec3{offset.X(), 0, offset.Z()})
	rig := c.nav.Resolve(target, target, true)

	c.viewpoint.Position = rig.Add(offset)
	c.rig = c.deriveRig()
	c.logger.Debug("teleported", log.Any("target", p))
	return true
}

// SetFlyEnabled switches fly mode, subject to permission, and reports whether
// the avatar is flying afterwards.
func (c *Controller) SetFlyEnabled(enabled bool) bool {
	was := c.mode.flying
	if enabled && c.permissions.CanFly() {
		if !was {
			c.mode.fly(false)
		}
	} else {
		c.mode.walk()
	}
	if was != c.mode.flying {
		c.cues.Cue(cue.FlyChanged)
		c.logger.Debug("fly changed", log.Bool("flying", c.mode.flying))
	}
	return c.mode.flying
}

// InvalidateNavCache must be called whenever the nav mesh is reloaded.
func (c *Controller) InvalidateNavCache() {
	c.nav.Invalidate()
}

// Mode returns the current locomotion mode.
func (c *Controller) Mode() Mode {
	m := c.mode
	m.traveling = c.waypoints.Active()
	return m
}

func (c *Controller) IsTeleportingDisabled() bool { return c.mode.teleportLocked }

// PendingWaypoints is the number of queued, not yet active, requests.
func (c *Controller) PendingWaypoints() int { return c.waypoints.Pending() }

// Frame returns the last committed frame.
func (c *Controller) Frame() Frame { return c.frame }

func (c *Controller) Viewpoint() spatial.Transform { return c.viewpoint }

func (c *Controller) Rig() spatial.Transform { return c.rig }

func (c *Controller) JumpState() JumpState { return c.jump.State() }

// Tick advances the controller by one frame. It never fails; missing
// collaborators only disable the steps that need them.
func (c *Controller) Tick(now, dt time.Duration) Frame {
	if !c.attached || (!c.scene.Entered() && !c.scene.Ghost()) {
		return c.frame
	}
	c.seq++
	c.inImmersive = c.scene.Immersive()

	c.waypoints.Service(now, c)

	intent := c.input.Sample()
	prefs := c.input.Preferences()

	wasFlying := c.mode.flying
	if intent.Fly {
		c.mode.landWhenPossible = false
		c.SetFlyEnabled(!c.mode.flying)
	}
	didStopFlying := wasFlying && !c.mode.flying
	if c.mode.flying {
		c.nav.ForgetNode()
	}
	if c.motion.SnapRotate(intent.SnapRotateLeft, intent.SnapRotateRight, prefs.SnapRotationDegrees) {
		c.cues.Cue(cue.SnapRotate)
	}

	jumpStarted := false
	if !c.mode.motionLocked {
		if intent.Jump && c.jump.Start() {
			jumpStarted = true
			c.cues.Cue(cue.JumpStart)
		}
		step := c.jump.Tick(dt)
		c.viewpoint.Position = c.viewpoint.Position.Add(step.Delta)
		if step.Landed {
			c.cues.Cue(cue.Landed)
		}
	}

	c.motion.Accumulate(intent, prefs)
	navReady := c.nav.ZoneReady()
	snapRotated := spatial.RotateAroundWorldUp(c.viewpoint, c.motion.Yaw())
	displacement := c.motion.ConsumeFrame(MotionFrame{
		DT:            dt,
		Orientation:   snapRotated.Rotation,
		AllowVertical: c.mode.flying || !navReady,
		Boost:         intent.Boost,
		SpeedModifier: prefs.MovementSpeedModifier,
		PlayerScale:   c.viewpoint.PlayerScale(),
		Immersive:     c.inImmersive,
	})

	candidate := snapRotated
	applied := mgl64.Vec3{}
	if !c.mode.motionLocked {
		if displacement.TriedToMove {
			applied = displacement.Vector
			candidate.Position = candidate.Position.Add(applied)
		}

		recompute := didStopFlying || c.mode.landWhenPossible || jumpStarted
		if navReady && (recompute || displacement.TriedToMove) && (!c.mode.flying || c.mode.landWhenPossible) {
			c.settle(&candidate, recompute)
		}

		hasInput := intent.Strafe != 0 || intent.Forward != 0
		if !c.waypoints.Active() && c.mode.unoccupyOnMove && (hasInput || c.mode.teleportedSinceTravel) {
			c.mode.teleportedSinceTravel = false
			c.mode.unoccupyOnMove = false
			c.occupancy.ReleaseOccupiedWaypoints()
		}
	}

	c.viewpoint = candidate
	c.rig = c.deriveRig()
	c.commit(now, applied)
	c.motion.EndFrame()
	return c.frame
}

// settle clamps the candidate viewpoint onto the nav mesh, landing a pending
// flight when the correction is small enough.
func (c *Controller) settle(candidate *spatial.Transform, recompute bool) {
	height := c.jump.ViewpointHeight()
	resolved := c.nav.ResolveViewpointAt(c.viewpoint.Position, candidate.Position, height, recompute)
	correction := candidate.Position.Sub(resolved)

	switch {
	case c.mode.flying && c.mode.landWhenPossible && correction.LenSqr() < c.cfg.LandingTolerance && !c.waypoints.Active():
		c.mode.walk()
		if offset := c.jump.Offset(); offset != 0 {
			resolved = resolved.Sub(mgl64.Vec3{0, offset, 0})
		}
		c.jump.Cancel()
		candidate.Position = resolved
		c.cues.Cue(cue.FlyChanged)
		c.cues.Cue(cue.Landed)
		c.frameLogger().Debug("landed", log.Float64("correction", math.Sqrt(correction.LenSqr())))
	case !c.mode.flying:
		candidate.Position = resolved
	}
}

// deriveRig places the rig below the viewpoint, facing its heading. A jump
// lifts both, so the jump offset is not subtracted.
func (c *Controller) deriveRig() spatial.Transform {
	h := c.height.StandingHeight(true)
	return spatial.AffixToWorldUp(c.viewpoint).Translated(mgl64.Vec3{0, -h, -c.cfg.ForwardOffset})
}

func (c *Controller) commit(now time.Duration, displacement mgl64.Vec3) {
	f := Frame{
		Seq:          c.seq,
		Time:         now,
		Viewpoint:    c.viewpoint,
		Rig:          c.rig,
		Displacement: displacement,
		Flying:       c.mode.flying,
		Jump:         c.jump.State().Phase,
		Traveling:    c.waypoints.Active(),
	}
	f.Digest = f.digest()
	c.frame = f
}

func (c *Controller) frameLogger() log.Log {
	return c.logger.WithContext(log.ContextWithFrame(context.Background(), c.seq))
}

// waypointHost

func (c *Controller) currentViewpoint() spatial.Transform { return c.viewpoint }

func (c *Controller) eyeHeight() float64 { return c.height.StandingHeight(false) }

func (c *Controller) immersive() bool { return c.inImmersive }

func (c *Controller) navReady() bool { return c.nav.ZoneReady() }

func (c *Controller) occupy(opts Options) {
	c.mode.motionLocked = opts.WillDisableMotion && (!c.mobile || opts.WillDisableTeleporting)
	c.mode.teleportLocked = opts.WillDisableTeleporting
}

// travelByWaypoint moves the viewpoint to the eye position of a waypoint pose.
// Waypoints face away from the viewer, hence the half turn.
func (c *Controller) travelByWaypoint(target spatial.Transform, snap, maintainOrientation bool) {
	if !c.mode.flying && !snap {
		c.mode.fly(true)
	}
	c.mode.unoccupyOnMove = true
	c.mode.teleportedSinceTravel = false
	// the new pose is placed at eye height, any jump offset is discarded
	c.jump.Cancel()

	final := spatial.RotateAroundWorldUp(target, math.Pi)
	eye := c.cfg.DefaultEyeHeight
	if snap && c.nav.ZoneReady() {
		final.Position = c.nav.Resolve(final.Position, final.Position, true)
		eye = c.height.StandingHeight(false)
	}
	final = final.Translated(mgl64.Vec3{0, eye, c.cfg.ForwardOffset})

	if maintainOrientation {
		final.Rotation = c.viewpoint.Rotation
	}
	c.viewpoint = spatial.CameraForWaypoint(c.viewpoint, final)
	c.rig = c.deriveRig()
}
