package injector

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/wire"

	"github.com/zeusync/locomotion/internal/config"
	"github.com/zeusync/locomotion/internal/core/audio"
	"github.com/zeusync/locomotion/internal/core/events/bus"
	"github.com/zeusync/locomotion/internal/core/events/cue"
	"github.com/zeusync/locomotion/internal/core/input"
	"github.com/zeusync/locomotion/internal/core/observability/log"
	"github.com/zeusync/locomotion/internal/core/spatial"
	"github.com/zeusync/locomotion/internal/core/systems/locomotion"
	"github.com/zeusync/locomotion/internal/core/systems/navigation/navmesh"
	"github.com/zeusync/locomotion/internal/sandbox"
	"github.com/zeusync/locomotion/internal/server"
)

// Runtime is everything the sandbox binary needs. Player and Feed are nil
// when disabled in the configuration.
type Runtime struct {
	Config     *config.Config
	Logger     *log.Logger
	Bus        bus.EventBus
	Mesh       *navmesh.Mesh
	Keyboard   *input.Keyboard
	World      *sandbox.World
	Controller *locomotion.Controller
	Player     *audio.Player
	Feed       *server.FrameFeed
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	ProvideCueSink,
	ProvideMesh,
	ProvideKeyboard,
	ProvideWorld,
	ProvideController,
	ProvidePlayer,
	ProvideFeed,
	wire.Struct(new(Runtime), "*"),
)

// ProvideLogger writes to the configured file, falling back to stderr.
func ProvideLogger(cfg *config.Config) (*log.Logger, func(), error) {
	level := log.ParseLevel(cfg.Log.Level)
	var logger *log.Logger
	switch {
	case cfg.Log.File != "":
		l, err := log.NewFile(level, cfg.Log.File)
		if err != nil {
			return nil, nil, err
		}
		logger = l
	case cfg.Log.Development:
		logger = log.NewDevelopment(level)
	default:
		logger = log.New(level)
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func ProvideCueSink(b bus.EventBus, logger log.Log) cue.Sink {
	return cue.NewBusSink(b, logger)
}

// ProvideMesh loads the mesh file when one is configured and builds the grid
// floor otherwise.
func ProvideMesh(cfg *config.Config) (*navmesh.Mesh, error) {
	nav := cfg.Navigation
	if nav.MeshFile != "" {
		mesh, err := navmesh.LoadYAMLFile(nav.MeshFile)
		if err != nil {
			return nil, err
		}
		if !mesh.HasZone(nav.Zone) {
			return nil, fmt.Errorf("nav mesh %q has no zone %q (zones: %v)", nav.MeshFile, nav.Zone, mesh.Zones())
		}
		return mesh, nil
	}
	mesh := navmesh.New()
	g := nav.Grid
	if err := mesh.Grid(nav.Zone, mgl64.Vec3(g.Origin), g.Cols, g.Rows, g.Cell); err != nil {
		return nil, err
	}
	return mesh, nil
}

func ProvideKeyboard(cfg *config.Config) *input.Keyboard {
	prefs := locomotion.DefaultPreferences()
	prefs.MovementSpeedModifier = cfg.Sandbox.SpeedModifier
	prefs.SnapRotationDegrees = cfg.Sandbox.SnapDegrees
	return input.NewKeyboard(prefs, input.DefaultHold)
}

func ProvideWorld(cfg *config.Config, logger log.Log) *sandbox.World {
	return sandbox.NewWorld(cfg.Avatar.EyeHeight, cfg.Avatar.CanFly, logger)
}

// ProvideController builds the controller and attaches it at the spawn point.
func ProvideController(cfg *config.Config, keys *input.Keyboard, world *sandbox.World, mesh *navmesh.Mesh, cues cue.Sink, logger log.Log) *locomotion.Controller {
	ctrl := locomotion.New(cfg.Locomotion, locomotion.Deps{
		Input:       keys,
		Scene:       world,
		Height:      world,
		Permissions: world,
		Occupancy:   world,
		Nav:         mesh,
		Zone:        cfg.Navigation.Zone,
		Cues:        cues,
		Logger:      logger,
		Mobile:      cfg.Avatar.Mobile,
	}, world.WaypointDone)

	spawn := mgl64.Vec3(cfg.Avatar.Spawn).Add(mgl64.Vec3{0, cfg.Avatar.EyeHeight, 0})
	ctrl.Attach(locomotion.Avatar{Viewpoint: spatial.At(spawn)})
	return ctrl
}

// ProvidePlayer subscribes the cue synthesiser to the bus when audio is on.
func ProvidePlayer(cfg *config.Config, b bus.EventBus, logger log.Log) (*audio.Player, func(), error) {
	if !cfg.Audio.Enabled {
		return nil, func() {}, nil
	}
	player := audio.NewPlayer(cfg.Audio.SampleRate, cfg.Audio.Volume, logger)
	if err := player.Attach(b); err != nil {
		return nil, nil, fmt.Errorf("attach audio: %w", err)
	}
	return player, func() { _ = player.Close() }, nil
}

func ProvideFeed(cfg *config.Config, logger log.Log) (*server.FrameFeed, func()) {
	if !cfg.Feed.Enabled {
		return nil, func() {}
	}
	feed := server.NewFrameFeed(logger)
	return feed, feed.Close
}
