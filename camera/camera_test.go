package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-4

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= eps
}

func vecNear(a, b mgl32.Vec3) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

func TestDefaultCameraLooksDownNegativeZ(t *testing.T) {
	c := New()

	if !vecNear(c.Forward(), mgl32.Vec3{0, 0, -1}) {
		t.Errorf("forward = %v, want (0,0,-1)", c.Forward())
	}
	if !vecNear(c.Position(), mgl32.Vec3{0, 0, 3}) {
		t.Errorf("position = %v, want (0,0,3)", c.Position())
	}

	c.MoveForward(1)
	if !vecNear(c.Position(), mgl32.Vec3{0, 0, 2}) {
		t.Errorf("position after MoveForward(1) = %v, want (0,0,2)", c.Position())
	}
}

func TestVectorsStayOrthonormal(t *testing.T) {
	c := New()
	for pitch := float32(-2); pitch <= 2; pitch += 0.25 {
		for yaw := float32(-7); yaw <= 7; yaw += 0.5 {
			c.SetRotation(pitch, yaw)
			f, r, u := c.Forward(), c.Right(), c.Up()

			for name, v := range map[string]mgl32.Vec3{"forward": f, "right": r, "up": u} {
				if !near(v.Len(), 1) {
					t.Fatalf("pitch=%v yaw=%v: |%s| = %v", pitch, yaw, name, v.Len())
				}
			}
			if !near(f.Dot(r), 0) || !near(f.Dot(u), 0) || !near(r.Dot(u), 0) {
				t.Fatalf("pitch=%v yaw=%v: vectors not orthogonal f=%v r=%v u=%v", pitch, yaw, f, r, u)
			}
		}
	}
}

func TestPitchIsClamped(t *testing.T) {
	c := New()

	c.SetRotation(10, 0)
	if c.Pitch() != MaxPitch {
		t.Errorf("pitch = %v, want %v", c.Pitch(), MaxPitch)
	}

	c.SetRotation(-10, 0)
	if c.Pitch() != -MaxPitch {
		t.Errorf("pitch = %v, want %v", c.Pitch(), -MaxPitch)
	}

	c.SetRotation(0, 0)
	for i := 0; i < 1000; i++ {
		c.Rotate(0.01, 0.02)
		if c.Pitch() > MaxPitch || c.Pitch() < -MaxPitch {
			t.Fatalf("pitch escaped clamp after %d rotations: %v", i, c.Pitch())
		}
	}
	if c.Pitch() != MaxPitch {
		t.Errorf("accumulated pitch = %v, want %v", c.Pitch(), MaxPitch)
	}
}

func TestLookAt(t *testing.T) {
	tests := []struct {
		pos, target mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 3}, mgl32.Vec3{0, 0, 0}},
		{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{1, 2, 3}, mgl32.Vec3{-4, 0.5, 7}},
		{mgl32.Vec3{5, 0, 5}, mgl32.Vec3{0, 3, 0}},
		{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, -1, 0.5}},
	}

	for _, tc := range tests {
		c := New()
		c.SetPosition(tc.pos)
		c.LookAt(tc.target)
		c.Update()

		want := tc.target.Sub(tc.pos).Normalize()
		if !vecNear(c.Forward(), want) {
			t.Errorf("LookAt(%v) from %v: forward = %v, want %v", tc.target, tc.pos, c.Forward(), want)
		}
	}
}

func TestLookAtSelfIsNoop(t *testing.T) {
	c := New()
	before := c.Forward()
	c.LookAt(c.Position())
	if c.Forward() != before {
		t.Errorf("forward changed to %v", c.Forward())
	}
}

func TestSetPerspectiveIsIdempotent(t *testing.T) {
	c := New()
	c.SetPerspective(0.9, 4.0/3.0, 0.5, 250)
	first := c.ProjectionMatrix()
	c.SetPerspective(0.9, 4.0/3.0, 0.5, 250)
	if c.ProjectionMatrix() != first {
		t.Errorf("projection differs:\n%v\n%v", first, c.ProjectionMatrix())
	}
	c.Update()
	if c.ProjectionMatrix() != first {
		t.Errorf("projection differs after Update")
	}
}

func TestSetAspectRatio(t *testing.T) {
	c := New()
	c.SetAspectRatio(2)
	want := mgl32.Perspective(DefaultFOV, 2, DefaultNear, DefaultFar)
	if c.ProjectionMatrix() != want {
		t.Errorf("projection = %v, want %v", c.ProjectionMatrix(), want)
	}
}

func TestMoveUpUsesWorldUp(t *testing.T) {
	c := New()
	c.SetRotation(1, 0.3)
	c.MoveUp(2)
	if !vecNear(c.Position(), mgl32.Vec3{0, 2, 3}) {
		t.Errorf("position = %v, want (0,2,3)", c.Position())
	}
}

func TestMoveRight(t *testing.T) {
	c := New()
	c.MoveRight(1)
	if !vecNear(c.Position(), mgl32.Vec3{1, 0, 3}) {
		t.Errorf("position = %v, want (1,0,3)", c.Position())
	}
}

func TestMatricesFollowState(t *testing.T) {
	c := New()
	c.SetPosition(mgl32.Vec3{1, 1, 1})
	want := mgl32.LookAtV(c.Position(), c.Position().Add(c.Forward()), WorldUp)
	if c.ViewMatrix() != want {
		t.Errorf("view matrix not refreshed by SetPosition")
	}

	model := mgl32.Translate3D(1, 2, 3)
	mvp := c.MVP(model)
	if mvp != c.ProjectionMatrix().Mul4(c.ViewMatrix()).Mul4(model) {
		t.Errorf("MVP != P*V*M")
	}
	if c.ViewProjection() != c.ProjectionMatrix().Mul4(c.ViewMatrix()) {
		t.Errorf("ViewProjection != P*V")
	}
}

func TestClipCorrection(t *testing.T) {
	p := ClipCorrection.Mul4x1(mgl32.Vec4{0, 1, -1, 1})
	if !near(p[1], -1) || !near(p[2], 0) {
		t.Errorf("corrected = %v", p)
	}
}

func TestYawIsMeasuredFromPositiveX(t *testing.T) {
	c := New()
	tests := []struct {
		yaw  float32
		want mgl32.Vec3
	}{
		{0, mgl32.Vec3{1, 0, 0}},
		{math.Pi / 2, mgl32.Vec3{0, 0, 1}},
		{-math.Pi / 2, mgl32.Vec3{0, 0, -1}},
	}
	for _, tt := range tests {
		c.SetRotation(0, tt.yaw)
		if !vecNear(c.Forward(), tt.want) {
			t.Errorf("yaw %v: forward = %v, want %v", tt.yaw, c.Forward(), tt.want)
		}
	}
}
