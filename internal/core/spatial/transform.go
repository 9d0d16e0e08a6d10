package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// WorldUp is the +Y axis every yaw rotation is taken around.
var WorldUp = mgl64.Vec3{0, 1, 0}

const degenerateEpsilon = 1e-9

// Transform is a rigid pose with an optional non-uniform scale.
// Composition order is translation * rotation * scale.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// At returns an unrotated, unscaled transform placed at p.
func At(p mgl64.Vec3) Transform {
	t := Identity()
	t.Position = p
	return t
}

// Matrix converts the transform into a column-major 4x4 matrix.
func (t Transform) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Normalize().Mat4()).
		Mul4(mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

// FromMatrix decomposes an affine matrix. Shear is discarded.
func FromMatrix(m mgl64.Mat4) Transform {
	c0, c1, c2 := m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()
	sx, sy, sz := c0.Len(), c1.Len(), c2.Len()
	if m.Mat3().Det() < 0 {
		sx = -sx
	}

	t := Identity()
	t.Position = m.Col(3).Vec3()
	t.Scale = mgl64.Vec3{sx, sy, sz}
	if math.Abs(sx) < degenerateEpsilon || sy < degenerateEpsilon || sz < degenerateEpsilon {
		return t
	}

	rot := mgl64.Mat4FromCols(
		c0.Mul(1/sx).Vec4(0),
		c1.Mul(1/sy).Vec4(0),
		c2.Mul(1/sz).Vec4(0),
		mgl64.Vec4{0, 0, 0, 1},
	)
	t.Rotation = mgl64.Mat4ToQuat(rot).Normalize()
	return t
}

// Mul composes t with child, returning t * child.
func (t Transform) Mul(child Transform) Transform {
	return FromMatrix(t.Matrix().Mul4(child.Matrix()))
}

// Inverse returns the inverse pose.
func (t Transform) Inverse() Transform {
	return FromMatrix(t.Matrix().Inv())
}

// WithPosition returns a copy placed at p.
func (t Transform) WithPosition(p mgl64.Vec3) Transform {
	t.Position = p
	return t
}

// Translated moves the transform along its own (scaled, rotated) axes.
func (t Transform) Translated(local mgl64.Vec3) Transform {
	scaled := mgl64.Vec3{local.X() * t.Scale.X(), local.Y() * t.Scale.Y(), local.Z() * t.Scale.Z()}
	t.Position = t.Position.Add(t.Rotation.Rotate(scaled))
	return t
}

// Forward is the -Z axis of the pose, the viewing direction.
func (t Transform) Forward() mgl64.Vec3 {
	return t.Rotation.Rotate(mgl64.Vec3{0, 0, -1})
}

// PlayerScale is the length of the matrix' second column.
func (t Transform) PlayerScale() float64 {
	return t.Matrix().Col(1).Vec3().Len()
}

// ApproxEqual compares position, rotation and scale within eps.
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	if !ApproxEqualVec(t.Position, o.Position, eps) || !ApproxEqualVec(t.Scale, o.Scale, eps) {
		return false
	}
	// q and -q describe the same rotation
	return math.Abs(math.Abs(t.Rotation.Normalize().Dot(o.Rotation.Normalize()))-1) <= eps
}

// ApproxEqualVec compares components with an absolute tolerance.
func ApproxEqualVec(a, b mgl64.Vec3, eps float64) bool {
	return math.Abs(a.X()-b.X()) <= eps && math.Abs(a.Y()-b.Y()) <= eps && math.Abs(a.Z()-b.Z()) <= eps
}

// RotateAroundWorldUp turns the orientation around world up in place; position
// and scale are kept.
func RotateAroundWorldUp(t Transform, angle float64) Transform {
	if angle == 0 {
		return t
	}
	t.Rotation = mgl64.QuatRotate(angle, WorldUp).Mul(t.Rotation).Normalize()
	return t
}

// Yaw returns the heading of the pose around world up.
func Yaw(t Transform) float64 {
	f := t.Forward()
	h := mgl64.Vec3{f.X(), 0, f.Z()}
	if h.Len() < 1e-6 {
		up := t.Rotation.Rotate(WorldUp)
		if f.Y() > 0 {
			up = up.Mul(-1)
		}
		h = mgl64.Vec3{up.X(), 0, up.Z()}
		if h.Len() < 1e-6 {
			return 0
		}
	}
	h = h.Normalize()
	return math.Atan2(-h.X(), -h.Z())
}

// AffixToWorldUp drops pitch and roll, keeping only the heading. Position and
// scale are preserved.
func AffixToWorldUp(t Transform) Transform {
	t.Rotation = mgl64.QuatRotate(Yaw(t), WorldUp)
	return t
}

// CameraForWaypoint places the camera on the waypoint's heading and position
// while keeping the camera's own pitch and roll.
func CameraForWaypoint(camera, waypoint Transform) Transform {
	detach := AffixToWorldUp(camera).Matrix().Inv().Mul4(camera.Matrix())
	return FromMatrix(AffixToWorldUp(waypoint).Matrix().Mul4(detach))
}

// Interpolate blends two poses: linear for position and scale, spherical for
// rotation along the shortest arc.
func Interpolate(a, b Transform, t float64) Transform {
	qa, qb := a.Rotation.Normalize(), b.Rotation.Normalize()
	if qa.Dot(qb) < 0 {
		qb = mgl64.Quat{W: -qb.W, V: qb.V.Mul(-1)}
	}
	var rot mgl64.Quat
	switch {
	case t <= 0:
		rot = qa
	case t >= 1:
		rot = qb
	default:
		rot = mgl64.QuatSlerp(qa, qb, t)
	}
	return Transform{
		Position: lerp(a.Position, b.Position, t),
		Rotation: rot.Normalize(),
		Scale:    lerp(a.Scale, b.Scale, t),
	}
}

func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}
