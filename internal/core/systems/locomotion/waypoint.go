package locomotion

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/zeusync/locomotion/internal/core/events/cue"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/spatial"
	"github.com/zeusync/locomotion/pkg/generic"
	"github.com/zeusync/locomotion/pkg/sequence"
)

// Options are the per-waypoint travel flags.
type Options struct {
	SnapToNavMesh                  bool `json:"snap_to_nav_mesh" yaml:"snap_to_nav_mesh"`
	WillMaintainInitialOrientation bool `json:"will_maintain_initial_orientation" yaml:"will_maintain_initial_orientation"`
	WillDisableMotion              bool `json:"will_disable_motion" yaml:"will_disable_motion"`
	WillDisableTeleporting         bool `json:"will_disable_teleporting" yaml:"will_disable_teleporting"`
}

// Request is a queued waypoint travel. Its target lives in a pooled slot that
// is released exactly once, when the request completes.
type Request struct {
	ID      uuid.UUID
	Instant bool
	Options Options

	target *generic.Slot[spatial.Transform]
}

// Target returns the destination pose.
func (r *Request) Target() spatial.Transform { return r.target.Value }

// waypointHost is the part of the controller the engine drives.
type waypointHost interface {
	currentViewpoint() spatial.Transform
	eyeHeight() float64
	immersive() bool
	navReady() bool
	occupy(opts Options)
	travelByWaypoint(target spatial.Transform, snap, maintainOrientation bool)
}

// waypointEngine plays queued travel requests one at a time.
type waypointEngine struct {
	cfg    Config
	queue  *sequence.Queue[*Request]
	pool   *generic.Pool[spatial.Transform]
	cues   cue.Sink
	logger log.Log
	done   func(uuid.UUID)

	active    *Request
	start     spatial.Transform
	startTime time.Duration
	duration  time.Duration
}

func newWaypointEngine(cfg Config, cues cue.Sink, logger log.Log, done func(uuid.UUID)) *waypointEngine {
	pool := generic.NewHotPool(spatial.Identity, cfg.WaypointPoolSize).
		WithReset(func(t *spatial.Transform) { *t = spatial.Identity() })
	return &waypointEngine{
		cfg:    cfg,
		queue:  sequence.NewQueue[*Request](cfg.WaypointPoolSize),
		pool:   pool,
		cues:   cues,
		logger: logger,
		done:   done,
	}
}

// Enqueue appends a request to the tail of the queue. An active travel is not
// interrupted here; it completes early on the next service call.
func (e *waypointEngine) Enqueue(target spatial.Transform, instant bool, opts Options) uuid.UUID {
	slot := e.pool.Acquire()
	slot.Value = target
	req := &Request{ID: uuid.New(), Instant: instant, Options: opts, target: slot}
	e.queue.Enqueue(req)
	return req.ID
}

func (e *waypointEngine) Active() bool { return e.active != nil }

func (e *waypointEngine) ActiveRequest() *Request { return e.active }

func (e *waypointEngine) Pending() int { return e.queue.Len() }

func (e *waypointEngine) PoolStats() generic.PoolStats { return e.pool.Stats() }

// Service advances the queue by one frame.
func (e *waypointEngine) Service(now time.Duration, host waypointHost) {
	if e.active != nil && !e.queue.IsEmpty() {
		e.finish(host)
	}
	if e.active == nil {
		if req, ok := e.queue.Dequeue(); ok {
			e.activate(now, req, host)
		}
	}
	if e.active == nil {
		return
	}

	progress := 1.0
	if e.duration > 0 {
		progress = spatial.Clamp01(float64(now-e.startTime) / float64(e.duration))
	}
	if progress >= 1 {
		e.finish(host)
		return
	}

	pose := spatial.Interpolate(e.start, e.active.target.Value, spatial.EaseOutQuadratic(progress))
	host.travelByWaypoint(pose, false, e.active.Options.WillMaintainInitialOrientation)
}

func (e *waypointEngine) activate(now time.Duration, req *Request, host waypointHost) {
	e.active = req
	host.occupy(req.Options)

	viewpoint := host.currentViewpoint()
	immersive := host.immersive()

	e.duration = 0
	if !req.Instant && !(immersive && !e.cfg.LerpInImmersive) {
		distance := viewpoint.Position.Sub(req.target.Value.Position).Len()
		e.duration = time.Duration(distance / e.cfg.AverageTravelSpeed * float64(time.Second))
	}
	e.start = spatial.RotateAroundWorldUp(viewpoint, math.Pi).
		Translated(mgl64.Vec3{0, -host.eyeHeight(), e.cfg.ForwardOffset})
	e.startTime = now

	e.logger.Debug("waypoint travel started",
		log.String("request_id", req.ID.String()),
		log.Duration("duration", e.duration),
		log.Bool("instant", req.Instant),
	)
	if !immersive && e.duration > e.cfg.CueThreshold {
		e.cues.Cue(cue.WaypointStart)
	}
}

func (e *waypointEngine) finish(host waypointHost) {
	req := e.active
	if req.Options.SnapToNavMesh && !host.navReady() {
		e.logger.Warn("waypoint requested nav mesh snap but no nav mesh is loaded",
			log.String("request_id", req.ID.String()))
	}
	host.travelByWaypoint(req.target.Value, req.Options.SnapToNavMesh, req.Options.WillMaintainInitialOrientation)

	if err := e.pool.Release(req.target); err != nil {
		e.logger.Error("waypoint transform released twice",
			log.String("request_id", req.ID.String()), log.Error(err))
	}
	e.active = nil

	e.logger.Debug("waypoint travel finished", log.String("request_id", req.ID.String()))
	if host.immersive() || e.duration > 0 {
		e.cues.Cue(cue.WaypointEnd)
	}
	if e.done != nil {
		e.done(req.ID)
	}
}
