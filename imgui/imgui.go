// Package imgui draws Dear ImGui user interfaces into a minecart window.
//
// Only one UI may exist at a time since ImGui keeps a single current
// context per process.
package imgui

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	minecart "github.com/ajh123/Minecart"
	"github.com/inkyblackness/imgui-go"
	"github.com/vulkan-go/glfw/v3.3/glfw"
)

// ErrAlreadyActive is returned by New while another UI exists.
var ErrAlreadyActive = errors.New("an imgui context is already active")

var active atomic.Bool

func acquire() bool { return active.CompareAndSwap(false, true) }

func release() { active.Store(false) }

var glfwButtonIndexByID = map[glfw.MouseButton]int{
	glfw.MouseButton1: 0,
	glfw.MouseButton2: 1,
	glfw.MouseButton3: 2,
}

var glfwButtonIDByIndex = [3]glfw.MouseButton{
	glfw.MouseButton1,
	glfw.MouseButton2,
	glfw.MouseButton3,
}

// UI owns the ImGui context and the GPU resources to draw it.
type UI struct {
	context  *imgui.Context
	io       imgui.IO
	window   *minecart.Window
	renderer *renderer

	mouseJustPressed [3]bool

	wantMouse    bool
	wantKeyboard bool

	display  imgui.Vec2
	scale    imgui.Vec2
	rendered bool
}

// New creates the ImGui context for an initialized window along with the
// font texture and pipeline used by Draw.
func New(w *minecart.Window) (*UI, error) {
	const op = "new ui"
	if w == nil {
		return nil, minecart.NewError(minecart.KindUI, op, minecart.ErrNilWindow)
	}
	if !w.Initialized() {
		return nil, minecart.NewError(minecart.KindUI, op, fmt.Errorf("window %w", minecart.ErrNotInitialized))
	}
	if !acquire() {
		return nil, minecart.NewError(minecart.KindUI, op, ErrAlreadyActive)
	}

	context := imgui.CreateContext(nil)
	io := imgui.CurrentIO()

	r, err := newRenderer(w, io)
	if err != nil {
		context.Destroy()
		release()
		return nil, minecart.NewError(minecart.KindUI, op, err)
	}

	ui := &UI{
		context:  context,
		io:       io,
		window:   w,
		renderer: r,
		scale:    imgui.Vec2{X: 1, Y: 1},
	}
	ui.setKeyMapping()

	minecart.Logger().Debug("imgui context created")
	return ui, nil
}

// NewFrame starts a UI frame. dt is the time since the previous frame in
// seconds; values <= 0 keep ImGui's previous delta.
func (u *UI) NewFrame(dt float32) {
	u.wantMouse = u.io.WantCaptureMouse()
	u.wantKeyboard = u.io.WantCaptureKeyboard()

	if dt > 0 {
		u.io.SetDeltaTime(dt)
	}

	gw := u.window.GLFW()
	width, height := gw.GetSize()
	fbWidth, fbHeight := gw.GetFramebufferSize()
	u.display = imgui.Vec2{X: float32(width), Y: float32(height)}
	u.scale = imgui.Vec2{X: 1, Y: 1}
	if width > 0 && height > 0 {
		u.scale = imgui.Vec2{X: float32(fbWidth) / float32(width), Y: float32(fbHeight) / float32(height)}
	}
	u.io.SetDisplaySize(u.display)

	if gw.GetAttrib(glfw.Focused) != 0 {
		x, y := gw.GetCursorPos()
		u.io.SetMousePosition(imgui.Vec2{X: float32(x), Y: float32(y)})
	} else {
		u.io.SetMousePosition(imgui.Vec2{X: -math.MaxFloat32, Y: -math.MaxFloat32})
	}

	for i, id := range glfwButtonIDByIndex {
		down := u.mouseJustPressed[i] || gw.GetMouseButton(id) == glfw.Press
		u.io.SetMouseButtonDown(i, down)
		u.mouseJustPressed[i] = false
	}

	u.rendered = false
	imgui.NewFrame()
}

// Render ends the UI frame. Widgets must be submitted between NewFrame and
// Render.
func (u *UI) Render() {
	imgui.Render()
	u.rendered = true
}

// Draw records the last rendered UI frame into frame. It does nothing when
// Render has not been called since the last NewFrame.
func (u *UI) Draw(frame *minecart.FrameContext) error {
	if !u.rendered {
		return nil
	}
	if !frame.Active() {
		return minecart.NewError(minecart.KindUI, "draw", minecart.ErrFrameInactive)
	}
	if err := u.renderer.draw(frame, imgui.RenderedDrawData(), u.display, u.scale); err != nil {
		return minecart.NewError(minecart.KindUI, "draw", err)
	}
	return nil
}

// HandleEvent feeds an input event to ImGui and reports whether the UI
// claimed it.
func (u *UI) HandleEvent(ev minecart.Event) bool {
	switch ev.Type {
	case minecart.EventKey:
		if ev.Action == glfw.Press {
			u.io.KeyPress(int(ev.Key))
		}
		if ev.Action == glfw.Release {
			u.io.KeyRelease(int(ev.Key))
		}
		// Modifiers are not reliable across systems
		u.io.KeyCtrl(int(glfw.KeyLeftControl), int(glfw.KeyRightControl))
		u.io.KeyShift(int(glfw.KeyLeftShift), int(glfw.KeyRightShift))
		u.io.KeyAlt(int(glfw.KeyLeftAlt), int(glfw.KeyRightAlt))
		u.io.KeySuper(int(glfw.KeyLeftSuper), int(glfw.KeyRightSuper))
	case minecart.EventChar:
		if u.wantKeyboard {
			u.io.AddInputCharacters(string(ev.Char))
		}
	case minecart.EventMouseButton:
		if i, known := glfwButtonIndexByID[ev.Button]; known && ev.Action == glfw.Press && u.wantMouse {
			u.mouseJustPressed[i] = true
		}
	case minecart.EventScroll:
		if u.wantMouse {
			u.io.AddMouseWheelDelta(float32(ev.X), float32(ev.Y))
		}
	}
	return claims(ev, u.wantMouse, u.wantKeyboard)
}

func claims(ev minecart.Event, wantMouse, wantKeyboard bool) bool {
	switch {
	case ev.IsMouse():
		return wantMouse
	case ev.IsKeyboard():
		return wantKeyboard
	}
	return false
}

// WantsMouse reports whether ImGui wanted the mouse at the start of the frame.
func (u *UI) WantsMouse() bool { return u.wantMouse }

// WantsKeyboard reports whether ImGui wanted the keyboard at the start of the
// frame.
func (u *UI) WantsKeyboard() bool { return u.wantKeyboard }

// Destroy releases the UI. It must be called before the window shuts down
// and is safe to call more than once.
func (u *UI) Destroy() {
	if u.context == nil {
		return
	}
	if dev := u.window.Device(); dev != nil {
		dev.WaitIdle()
	}
	u.renderer.destroy()
	u.context.Destroy()
	u.context = nil
	release()
}

func (u *UI) setKeyMapping() {
	// ImGui uses these indices to look into its KeysDown array.
	u.io.KeyMap(imgui.KeyTab, int(glfw.KeyTab))
	u.io.KeyMap(imgui.KeyLeftArrow, int(glfw.KeyLeft))
	u.io.KeyMap(imgui.KeyRightArrow, int(glfw.KeyRight))
	u.io.KeyMap(imgui.KeyUpArrow, int(glfw.KeyUp))
	u.io.KeyMap(imgui.KeyDownArrow, int(glfw.KeyDown))
	u.io.KeyMap(imgui.KeyPageUp, int(glfw.KeyPageUp))
	u.io.KeyMap(imgui.KeyPageDown, int(glfw.KeyPageDown))
	u.io.KeyMap(imgui.KeyHome, int(glfw.KeyHome))
	u.io.KeyMap(imgui.KeyEnd, int(glfw.KeyEnd))
	u.io.KeyMap(imgui.KeyInsert, int(glfw.KeyInsert))
	u.io.KeyMap(imgui.KeyDelete, int(glfw.KeyDelete))
	u.io.KeyMap(imgui.KeyBackspace, int(glfw.KeyBackspace))
	u.io.KeyMap(imgui.KeySpace, int(glfw.KeySpace))
	u.io.KeyMap(imgui.KeyEnter, int(glfw.KeyEnter))
	u.io.KeyMap(imgui.KeyEscape, int(glfw.KeyEscape))
	u.io.KeyMap(imgui.KeyA, int(glfw.KeyA))
	u.io.KeyMap(imgui.KeyC, int(glfw.KeyC))
	u.io.KeyMap(imgui.KeyV, int(glfw.KeyV))
	u.io.KeyMap(imgui.KeyX, int(glfw.KeyX))
	u.io.KeyMap(imgui.KeyY, int(glfw.KeyY))
	u.io.KeyMap(imgui.KeyZ, int(glfw.KeyZ))
}
