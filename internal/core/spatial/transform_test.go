package spatial

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestMatrixRoundTrip(t *testing.T) {
	in := Transform{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0}).Mul(mgl64.QuatRotate(-0.3, mgl64.Vec3{1, 0, 0})),
		Scale:    mgl64.Vec3{1, 2, 0.5},
	}
	out := FromMatrix(in.Matrix())
	assert.True(t, in.ApproxEqual(out, 1e-9), "got %+v", out)
	assert.InDelta(t, 2.0, out.PlayerScale(), eps)
}

func TestRotateAroundWorldUpKeepsPosition(t *testing.T) {
	in := At(mgl64.Vec3{4, 1.6, -2})
	out := RotateAroundWorldUp(in, math.Pi)

	assert.True(t, ApproxEqualVec(out.Position, in.Position, eps))
	assert.True(t, ApproxEqualVec(out.Forward(), mgl64.Vec3{0, 0, 1}, 1e-9))
}

func TestAffixToWorldUpDropsPitch(t *testing.T) {
	yaw := 0.9
	in := Identity()
	in.Rotation = mgl64.QuatRotate(yaw, WorldUp).Mul(mgl64.QuatRotate(0.4, mgl64.Vec3{1, 0, 0}))
	in.Position = mgl64.Vec3{1, 1, 1}

	out := AffixToWorldUp(in)
	assert.InDelta(t, yaw, Yaw(out), 1e-9)
	assert.InDelta(t, 0, out.Forward().Y(), 1e-9)
	assert.Equal(t, in.Position, out.Position)
}

func TestAffixToWorldUpLookingStraightDown(t *testing.T) {
	in := Identity()
	in.Rotation = mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0})

	out := AffixToWorldUp(in)
	assert.InDelta(t, 0, Yaw(out), 1e-9)
}

func TestCameraForWaypointKeepsPitch(t *testing.T) {
	pitch := mgl64.QuatRotate(0.25, mgl64.Vec3{1, 0, 0})
	camera := Identity()
	camera.Rotation = pitch

	waypoint := At(mgl64.Vec3{10, 0, 5})
	waypoint.Rotation = mgl64.QuatRotate(math.Pi/2, WorldUp)

	out := CameraForWaypoint(camera, waypoint)
	require.True(t, ApproxEqualVec(out.Position, waypoint.Position, 1e-9))
	assert.InDelta(t, math.Pi/2, Yaw(out), 1e-9)
	assert.InDelta(t, math.Sin(0.25), out.Forward().Y(), 1e-9)
}

func TestInterpolateEndpoints(t *testing.T) {
	a := At(mgl64.Vec3{0, 0, 0})
	b := At(mgl64.Vec3{10, 0, 0})
	b.Rotation = mgl64.QuatRotate(math.Pi/2, WorldUp)

	assert.True(t, Interpolate(a, b, 0).ApproxEqual(a, eps))
	assert.True(t, Interpolate(a, b, 1).ApproxEqual(b, eps))

	mid := Interpolate(a, b, 0.5)
	assert.InDelta(t, 5, mid.Position.X(), eps)
	assert.InDelta(t, math.Pi/4, Yaw(mid), 1e-9)
}

func TestEaseOutQuadratic(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutQuadratic(0))
	assert.Equal(t, 1.0, EaseOutQuadratic(1))
	assert.Equal(t, 0.75, EaseOutQuadratic(0.5))
	assert.Equal(t, 0.0, Clamp01(-2))
	assert.Equal(t, 1.0, Clamp01(3))
}
