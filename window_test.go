package minecart

import (
	"errors"
	"testing"

	vk "github.com/vulkan-go/vulkan"
)

func TestNewWindowDefaults(t *testing.T) {
	w := NewWindow(WindowConfig{})
	cfg := w.Config()
	def := DefaultWindowConfig()

	if cfg.Title != def.Title || cfg.Width != def.Width || cfg.Height != def.Height {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.FramesInFlight != 2 {
		t.Errorf("FramesInFlight = %d", cfg.FramesInFlight)
	}

	w = NewWindow(WindowConfig{Title: "x", Width: 320, Height: 200, FramesInFlight: 3})
	if cfg := w.Config(); cfg.Width != 320 || cfg.Height != 200 || cfg.FramesInFlight != 3 || cfg.Title != "x" {
		t.Errorf("explicit config overwritten: %+v", cfg)
	}
}

func TestWindowBeforeInitialize(t *testing.T) {
	w := NewWindow(DefaultWindowConfig())

	if err := w.RenderFrame(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("RenderFrame: got %v", err)
	}
	if !w.ShouldClose() {
		t.Errorf("an uninitialized window should close")
	}
	if w.PollEvents() != nil {
		t.Errorf("expected no events")
	}
	if e := w.Extent(); e.Width != 0 || e.Height != 0 {
		t.Errorf("extent = %+v", e)
	}
	if w.Device() != nil || w.RenderPass() != nil {
		t.Errorf("expected no device objects")
	}

	w.SetShouldClose(true)
	w.SetCursorCaptured(true)
	w.Shutdown()
	w.Shutdown()
}

func TestWindowClearColor(t *testing.T) {
	w := NewWindow(DefaultWindowConfig())
	if w.ClearColor() != DefaultWindowConfig().ClearColor {
		t.Errorf("clear color = %v", w.ClearColor())
	}
	c := [4]float32{1, 0.5, 0.25, 1}
	w.SetClearColor(c)
	if w.ClearColor() != c {
		t.Errorf("clear color = %v", w.ClearColor())
	}
}

func TestEventQueue(t *testing.T) {
	var q eventQueue
	if q.drain() != nil {
		t.Fatalf("empty queue drained events")
	}

	q.push(Event{Type: EventKey})
	q.push(Event{Type: EventClose})
	got := q.drain()
	if len(got) != 2 || got[0].Type != EventKey || got[1].Type != EventClose {
		t.Errorf("drain = %+v", got)
	}
	if q.drain() != nil {
		t.Errorf("queue not empty after drain")
	}
}

func TestEventClassification(t *testing.T) {
	tests := []struct {
		typ      EventType
		mouse    bool
		keyboard bool
	}{
		{EventClose, false, false},
		{EventKey, false, true},
		{EventChar, false, true},
		{EventMouseButton, true, false},
		{EventMouseMove, true, false},
		{EventScroll, true, false},
		{EventResize, false, false},
	}
	for _, tt := range tests {
		ev := Event{Type: tt.typ}
		if ev.IsMouse() != tt.mouse || ev.IsKeyboard() != tt.keyboard {
			t.Errorf("%s: mouse=%v keyboard=%v", tt.typ, ev.IsMouse(), ev.IsKeyboard())
		}
	}
	if EventType(99).String() != "event(99)" {
		t.Errorf("unknown event type string = %q", EventType(99).String())
	}
}

func TestFrameContextActive(t *testing.T) {
	var nilFrame *FrameContext
	if nilFrame.Active() {
		t.Error("nil frame reported active")
	}
	f := &FrameContext{}
	if f.Active() {
		t.Error("zero frame reported active")
	}
	f.active = true
	if !f.Active() {
		t.Error("active frame reported inactive")
	}
}

func TestAcquireResult(t *testing.T) {
	tests := []struct {
		name     string
		res      vk.Result
		draw     bool
		recreate bool
	}{
		{"success", vk.Success, true, false},
		{"suboptimal", vk.Suboptimal, true, true},
		{"out of date", vk.ErrorOutOfDate, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draw, recreate, err := acquireResult(tt.res)
			if err != nil {
				t.Fatal(err)
			}
			if draw != tt.draw || recreate != tt.recreate {
				t.Errorf("draw=%v recreate=%v, want %v %v", draw, recreate, tt.draw, tt.recreate)
			}
		})
	}

	draw, _, err := acquireResult(vk.ErrorDeviceLost)
	var e *Error
	if draw || !errors.As(err, &e) || e.Kind != KindGPU {
		t.Errorf("device lost: draw=%v err=%v", draw, err)
	}
}

func TestMinimized(t *testing.T) {
	if !minimized(0, 0) || !minimized(800, 0) || !minimized(0, 600) {
		t.Error("zero sized framebuffer not treated as minimized")
	}
	if minimized(800, 600) {
		t.Error("visible framebuffer treated as minimized")
	}
}
