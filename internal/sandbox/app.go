package sandbox

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/locomotion/internal/core/input"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/spatial"
	"github.com/zeusync/locomotion/internal/core/systems/locomotion"
	"github.com/zeusync/locomotion/pkg/concurrent"
)

var errQuit = errors.New("sandbox: quit")

const eventBuffer = 128

// FramePublisher receives every committed frame. server.FrameFeed implements
// it.
type FramePublisher interface {
	Publish(frame locomotion.Frame) error
}

// Options configure an App.
type Options struct {
	TickInterval    time.Duration
	WaypointSpacing float64
	Publisher       FramePublisher
	Logger          log.Log
}

// App runs the controller against a terminal. Every controller call happens
// on the tick goroutine; terminal events reach it through a channel.
type App struct {
	screen   tcell.Screen
	view     *View
	world    *World
	keys     *input.Keyboard
	ctrl     *locomotion.Controller
	opts     Options
	logger   log.Log
	events   chan tcell.Event
	lastFeed error
}

func NewApp(screen tcell.Screen, view *View, world *World, keys *input.Keyboard, ctrl *locomotion.Controller, opts Options) *App {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second / 60
	}
	if opts.WaypointSpacing <= 0 {
		opts.WaypointSpacing = 4
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNop()
	}
	return &App{
		screen: screen,
		view:   view,
		world:  world,
		keys:   keys,
		ctrl:   ctrl,
		opts:   opts,
		logger: logger.With(log.String("system", "sandbox")),
		events: make(chan tcell.Event, eventBuffer),
	}
}

// Run polls terminal events and ticks the controller until ctx is done or
// the user quits. The screen is finalised on return.
func (a *App) Run(ctx context.Context) error {
	err := concurrent.Run(ctx, a.poll, a.loop)
	if errors.Is(err, errQuit) {
		a.logger.Info("quit requested")
		return nil
	}
	return err
}

func (a *App) poll(ctx context.Context) error {
	for {
		ev := a.screen.PollEvent()
		if ev == nil {
			return nil
		}
		select {
		case a.events <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *App) loop(ctx context.Context) error {
	defer a.screen.Fini()
	return concurrent.Every(ctx, a.opts.TickInterval, a.Step)
}

// Step handles queued events, advances the controller one frame and redraws.
func (a *App) Step(now, dt time.Duration) error {
drain:
	for {
		select {
		case ev := <-a.events:
			if err := a.handle(ev); err != nil {
				return err
			}
		default:
			break drain
		}
	}

	frame := a.ctrl.Tick(now, dt)
	if a.opts.Publisher != nil {
		err := a.opts.Publisher.Publish(frame)
		if err != nil && (a.lastFeed == nil || err.Error() != a.lastFeed.Error()) {
			a.logger.Warn("frame publish failed", log.Error(err))
		}
		a.lastFeed = err
	}
	a.view.Draw(frame, a.ctrl.Mode(), a.ctrl.PendingWaypoints(), a.world.Markers(), a.world.Status())
	return nil
}

// Post queues an event as if it came from the terminal.
func (a *App) Post(ev tcell.Event) {
	select {
	case a.events <- ev:
	default:
		a.logger.Warn("event dropped")
	}
}

func (a *App) handle(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		a.screen.Sync()
		return nil
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return errQuit
		case tcell.KeyRune:
			if a.command(ev.Rune()) {
				return nil
			}
		}
	}
	a.keys.HandleEvent(ev)
	return nil
}

// command handles the sandbox keys that are not locomotion input.
func (a *App) command(r rune) bool {
	switch r {
	case 'g':
		a.waypointAhead(false, locomotion.Options{SnapToNavMesh: true})
	case 'G':
		a.waypointAhead(true, locomotion.Options{SnapToNavMesh: true})
	case 'l':
		a.waypointAhead(false, locomotion.Options{
			SnapToNavMesh:          true,
			WillDisableMotion:      true,
			WillDisableTeleporting: true,
		})
	case 't':
		target := a.ahead()
		if !a.ctrl.TeleportTo(target) {
			a.logger.Info("teleport refused", log.Bool("teleport_locked", a.ctrl.IsTeleportingDisabled()))
		}
	case 'i':
		a.logger.Info("immersive toggled", log.Bool("immersive", a.world.ToggleImmersive()))
	case 'h':
		a.logger.Info("ghost toggled", log.Bool("ghost", a.world.ToggleGhost()))
	case 'x':
		a.ctrl.InvalidateNavCache()
	default:
		return false
	}
	return true
}

// ahead is the floor point WaypointSpacing in front of the rig.
func (a *App) ahead() mgl64.Vec3 {
	rig := a.ctrl.Rig()
	f := rig.Forward()
	heading := mgl64.Vec3{f.X(), 0, f.Z()}
	if heading.Len() < 1e-9 {
		heading = mgl64.Vec3{0, 0, -1}
	}
	return rig.Position.Add(heading.Normalize().Mul(a.opts.WaypointSpacing))
}

// waypointAhead queues a waypoint that leaves the avatar facing its current
// heading. Waypoint poses face away from the arriving avatar.
func (a *App) waypointAhead(instant bool, opts locomotion.Options) {
	p := a.ahead()
	target := spatial.RotateAroundWorldUp(spatial.At(p), spatial.Yaw(a.ctrl.Rig())+math.Pi)
	id := a.ctrl.EnqueueWaypointTravel(target, instant, opts)
	a.world.AddMarker(Marker{ID: id, Position: p, Instant: instant})
	a.logger.Debug("waypoint queued", log.String("id", id.String()), log.Bool("instant", instant))
}
