package injector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/locomotion/internal/config"
	"github.com/zeusync/locomotion/internal/core/events/cue"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "locomotion.log")
	cfg.Avatar.Spawn = [3]float64{1, 0, 2}
	return cfg
}

func TestInitializeRuntime(t *testing.T) {
	cfg := testConfig(t)
	cfg.Feed.Enabled = true

	rt, cleanup, err := InitializeRuntime(cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.Nil(t, rt.Player)
	require.NotNil(t, rt.Feed)
	assert.True(t, rt.Mesh.HasZone(cfg.Navigation.Zone))
	assert.True(t, rt.Controller.Attached())

	vp := rt.Controller.Viewpoint().Position
	assert.InDelta(t, 1, vp.X(), 1e-9)
	assert.InDelta(t, 1.6, vp.Y(), 1e-9)
	assert.InDelta(t, 2, vp.Z(), 1e-9)
}

func TestRuntimeRoutesCuesToPlayer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Audio.Enabled = true

	rt, cleanup, err := InitializeRuntime(cfg)
	require.NoError(t, err)
	defer cleanup()
	require.NotNil(t, rt.Player)

	require.True(t, rt.Controller.SetFlyEnabled(true))
	assert.Equal(t, 1, rt.Player.Played(cue.FlyChanged))
}

func TestProvideMeshFromFile(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "mesh.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
zones:
  lobby:
    grid:
      origin: [0, 0, 0]
      cols: 2
      rows: 2
      cell: 1
`), 0o600))
	cfg.Navigation.MeshFile = path

	_, err := ProvideMesh(cfg)
	assert.ErrorContains(t, err, "no zone")

	cfg.Navigation.Zone = "lobby"
	mesh, err := ProvideMesh(cfg)
	require.NoError(t, err)
	_, ok := mesh.GetGroup("lobby", mgl64.Vec3{1, 0, 1})
	assert.True(t, ok)
}
