package imgui

import (
	"errors"
	"testing"

	minecart "github.com/ajh123/Minecart"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/inkyblackness/imgui-go"
	vk "github.com/vulkan-go/vulkan"
)

func TestClaims(t *testing.T) {
	tests := []struct {
		name                    string
		ev                      minecart.Event
		wantMouse, wantKeyboard bool
		claimed                 bool
	}{
		{"mouse wanted", minecart.Event{Type: minecart.EventMouseButton}, true, false, true},
		{"mouse not wanted", minecart.Event{Type: minecart.EventMouseMove}, false, true, false},
		{"scroll wanted", minecart.Event{Type: minecart.EventScroll}, true, false, true},
		{"key wanted", minecart.Event{Type: minecart.EventKey}, false, true, true},
		{"key not wanted", minecart.Event{Type: minecart.EventKey}, true, false, false},
		{"char wanted", minecart.Event{Type: minecart.EventChar}, false, true, true},
		{"close never", minecart.Event{Type: minecart.EventClose}, true, true, false},
		{"resize never", minecart.Event{Type: minecart.EventResize}, true, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := claims(tt.ev, tt.wantMouse, tt.wantKeyboard); got != tt.claimed {
				t.Errorf("claims() = %v, want %v", got, tt.claimed)
			}
		})
	}
}

func TestScissorFor(t *testing.T) {
	fb := vk.Extent2D{Width: 800, Height: 600}

	s, ok := scissorFor(imgui.Vec4{X: 10, Y: 20, Z: 110, W: 220}, fb)
	if !ok {
		t.Fatal("expected visible scissor")
	}
	if s.Offset.X != 10 || s.Offset.Y != 20 || s.Extent.Width != 100 || s.Extent.Height != 200 {
		t.Errorf("unexpected scissor %+v", s)
	}

	s, ok = scissorFor(imgui.Vec4{X: -50, Y: -50, Z: 1000, W: 1000}, fb)
	if !ok {
		t.Fatal("expected visible scissor")
	}
	if s.Offset.X != 0 || s.Offset.Y != 0 || s.Extent.Width != 800 || s.Extent.Height != 600 {
		t.Errorf("scissor not clamped: %+v", s)
	}

	if _, ok := scissorFor(imgui.Vec4{X: 900, Y: 0, Z: 950, W: 100}, fb); ok {
		t.Error("rectangle outside the framebuffer should not be visible")
	}
	if _, ok := scissorFor(imgui.Vec4{X: 10, Y: 10, Z: 10, W: 50}, fb); ok {
		t.Error("empty rectangle should not be visible")
	}
}

func TestOrthoProjection(t *testing.T) {
	p := orthoProjection(200, 100)

	transform := func(x, y float32) (float32, float32) {
		v := p.Mul4x1(mgl32.Vec4{x, y, 0, 1})
		return v.X(), v.Y()
	}
	near := func(a, b float32) bool { return a-b < 1e-5 && b-a < 1e-5 }
	if x, y := transform(0, 0); !near(x, -1) || !near(y, -1) {
		t.Errorf("top left = (%v, %v), want (-1, -1)", x, y)
	}
	if x, y := transform(200, 100); !near(x, 1) || !near(y, 1) {
		t.Errorf("bottom right = (%v, %v), want (1, 1)", x, y)
	}
	if x, y := transform(100, 50); !near(x, 0) || !near(y, 0) {
		t.Errorf("center = (%v, %v), want (0, 0)", x, y)
	}
	if z := p.Mul4x1(mgl32.Vec4{0, 0, 0, 1}).Z(); z < 0 || z > 1 {
		t.Errorf("depth %v outside [0, 1]", z)
	}
}

func TestGrowSize(t *testing.T) {
	if got := growSize(10); got != 64*1024 {
		t.Errorf("growSize(10) = %d", got)
	}
	if got := growSize(64*1024 + 1); got != 128*1024 {
		t.Errorf("growSize(64K+1) = %d", got)
	}
}

func TestAcquireRelease(t *testing.T) {
	if !acquire() {
		t.Fatal("first acquire failed")
	}
	if acquire() {
		t.Fatal("second acquire should fail while active")
	}
	release()
	if !acquire() {
		t.Fatal("acquire after release failed")
	}
	release()
}

func TestNewPreconditions(t *testing.T) {
	_, err := New(nil)
	if !errors.Is(err, minecart.ErrNilWindow) {
		t.Errorf("New(nil) = %v, want ErrNilWindow", err)
	}
	var e *minecart.Error
	if !errors.As(err, &e) || e.Kind != minecart.KindUI {
		t.Errorf("expected a UI error, got %v", err)
	}

	_, err = New(minecart.NewWindow(minecart.DefaultWindowConfig()))
	if !errors.Is(err, minecart.ErrNotInitialized) {
		t.Errorf("New(uninitialized) = %v, want ErrNotInitialized", err)
	}
	if active.Load() {
		t.Error("failed New must not leave the context marked active")
	}
}
