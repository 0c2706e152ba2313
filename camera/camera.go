// Package camera implements a free-fly perspective camera driven by pitch and
// yaw angles.
//
// The camera works in a right handed, Y up world with OpenGL clip conventions.
// Multiply by ClipCorrection before handing a matrix to Vulkan.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxPitch is the largest pitch magnitude in radians (just under 89 degrees).
const MaxPitch = 1.5533

// Default projection and placement.
const (
	DefaultFOV    = 1.0472 // 60 degrees
	DefaultAspect = 16.0 / 9.0
	DefaultNear   = 0.1
	DefaultFar    = 1000.0
	DefaultYaw    = -math.Pi / 2
)

// WorldUp is the fixed up axis used for right vector derivation and MoveUp.
var WorldUp = mgl32.Vec3{0, 1, 0}

// ClipCorrection maps OpenGL clip space (Y up, depth -1..1) onto Vulkan clip
// space (Y down, depth 0..1).
var ClipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, -1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera is a perspective camera with cached view and projection matrices.
//
// Yaw is measured in the XZ plane from +X towards +Z, so a yaw of -Pi/2 looks
// down -Z: forward is (cos p cos y, sin p, cos p sin y). Cameras using the
// (sin y, ..., -cos y) form measure yaw from -Z instead and look down -Z at a
// yaw of 0; subtract Pi/2 from their yaw when porting.
//
// Every mutator refreshes the derived vectors and matrices it affects, so the
// cached state is never stale and Update is idempotent.
type Camera struct {
	position mgl32.Vec3
	pitch    float32
	yaw      float32

	forward mgl32.Vec3
	right   mgl32.Vec3
	up      mgl32.Vec3

	fov, aspect, near, far float32

	view       mgl32.Mat4
	projection mgl32.Mat4
}

// New returns a camera at (0, 0, 3) looking down -Z with a 60 degree field of
// view.
func New() *Camera {
	c := &Camera{
		position: mgl32.Vec3{0, 0, 3},
		yaw:      DefaultYaw,
		fov:      DefaultFOV,
		aspect:   DefaultAspect,
		near:     DefaultNear,
		far:      DefaultFar,
	}
	c.Update()
	return c
}

func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.position = p
	c.updateView()
}

func (c *Camera) Position() mgl32.Vec3 { return c.position }

// SetRotation sets absolute angles in radians. Pitch is clamped to
// [-MaxPitch, MaxPitch].
func (c *Camera) SetRotation(pitch, yaw float32) {
	c.pitch = clampPitch(pitch)
	c.yaw = yaw
	c.updateVectors()
	c.updateView()
}

func (c *Camera) Pitch() float32 { return c.pitch }
func (c *Camera) Yaw() float32   { return c.yaw }

// LookAt turns the camera towards target. It does nothing when target equals
// the camera position.
func (c *Camera) LookAt(target mgl32.Vec3) {
	dir := normalize(target.Sub(c.position))
	if dir.Len() == 0 {
		return
	}
	pitch := float32(math.Asin(float64(dir.Y())))
	yaw := float32(math.Atan2(float64(dir.Z()), float64(dir.X())))
	c.SetRotation(pitch, yaw)
}

// SetPerspective sets the projection parameters and recomputes the projection
// matrix. fov is the vertical field of view in radians.
func (c *Camera) SetPerspective(fov, aspect, near, far float32) {
	c.fov = fov
	c.aspect = aspect
	c.near = near
	c.far = far
	c.updateProjection()
}

// SetAspectRatio changes only the aspect ratio, typically after a resize.
func (c *Camera) SetAspectRatio(aspect float32) {
	c.aspect = aspect
	c.updateProjection()
}

func (c *Camera) FOV() float32         { return c.fov }
func (c *Camera) AspectRatio() float32 { return c.aspect }
func (c *Camera) Near() float32        { return c.near }
func (c *Camera) Far() float32         { return c.far }

// MoveForward moves along the view direction, including its vertical part.
func (c *Camera) MoveForward(distance float32) {
	c.SetPosition(c.position.Add(c.forward.Mul(distance)))
}

func (c *Camera) MoveRight(distance float32) {
	c.SetPosition(c.position.Add(c.right.Mul(distance)))
}

// MoveUp moves along WorldUp, not the camera's own up vector.
func (c *Camera) MoveUp(distance float32) {
	c.SetPosition(c.position.Add(WorldUp.Mul(distance)))
}

// Rotate applies a mouse-look delta in radians.
func (c *Camera) Rotate(deltaPitch, deltaYaw float32) {
	c.SetRotation(c.pitch+deltaPitch, c.yaw+deltaYaw)
}

// Update recomputes the direction vectors and both matrices from the current
// state.
func (c *Camera) Update() {
	c.updateVectors()
	c.updateView()
	c.updateProjection()
}

func (c *Camera) ViewMatrix() mgl32.Mat4       { return c.view }
func (c *Camera) ProjectionMatrix() mgl32.Mat4 { return c.projection }

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return c.projection.Mul4(c.view)
}

// MVP returns projection * view * model.
func (c *Camera) MVP(model mgl32.Mat4) mgl32.Mat4 {
	return c.projection.Mul4(c.view).Mul4(model)
}

func (c *Camera) Forward() mgl32.Vec3 { return c.forward }
func (c *Camera) Right() mgl32.Vec3   { return c.right }
func (c *Camera) Up() mgl32.Vec3      { return c.up }

func (c *Camera) updateVectors() {
	sp, cp := math.Sincos(float64(c.pitch))
	sy, cy := math.Sincos(float64(c.yaw))
	c.forward = normalize(mgl32.Vec3{
		float32(cp * cy),
		float32(sp),
		float32(cp * sy),
	})
	c.right = normalize(c.forward.Cross(WorldUp))
	c.up = normalize(c.right.Cross(c.forward))
}

func (c *Camera) updateView() {
	c.view = mgl32.LookAtV(c.position, c.position.Add(c.forward), WorldUp)
}

func (c *Camera) updateProjection() {
	c.projection = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
}

func clampPitch(p float32) float32 {
	if p > MaxPitch {
		return MaxPitch
	}
	if p < -MaxPitch {
		return -MaxPitch
	}
	return p
}

// normalize returns the zero vector for near-zero input instead of NaNs.
func normalize(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l <= 0.0001 {
		return mgl32.Vec3{}
	}
	return v.Mul(1 / l)
}
