package minecart

import (
	"fmt"

	"github.com/vulkan-go/glfw/v3.3/glfw"
)

type EventType int

const (
	EventClose EventType = iota + 1
	EventKey
	EventChar
	EventMouseButton
	EventMouseMove
	EventScroll
	EventResize
)

func (t EventType) String() string {
	switch t {
	case EventClose:
		return "close"
	case EventKey:
		return "key"
	case EventChar:
		return "char"
	case EventMouseButton:
		return "mouse-button"
	case EventMouseMove:
		return "mouse-move"
	case EventScroll:
		return "scroll"
	case EventResize:
		return "resize"
	}
	return fmt.Sprintf("event(%d)", int(t))
}

// Event is a window or input event collected from the glfw callbacks. Only
// the fields relevant to Type are set.
type Event struct {
	Type EventType

	// EventKey
	Key      glfw.Key
	Scancode int
	// EventKey and EventMouseButton
	Action glfw.Action
	Mods   glfw.ModifierKey

	// EventChar
	Char rune

	// EventMouseButton
	Button glfw.MouseButton

	// Cursor position for EventMouseMove, offsets for EventScroll.
	X, Y float64

	// EventResize, in framebuffer pixels.
	Width, Height int
}

// IsMouse reports whether the event is a mouse event.
func (e Event) IsMouse() bool {
	return e.Type == EventMouseButton || e.Type == EventMouseMove || e.Type == EventScroll
}

// IsKeyboard reports whether the event is a key or text input event.
func (e Event) IsKeyboard() bool {
	return e.Type == EventKey || e.Type == EventChar
}

// eventQueue buffers events between two PollEvents calls. glfw invokes the
// callbacks on the main thread during PollEvents so no locking is needed.
type eventQueue struct {
	events []Event
}

func (q *eventQueue) push(e Event) {
	q.events = append(q.events, e)
}

func (q *eventQueue) drain() []Event {
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}

func (q *eventQueue) install(w *glfw.Window) {
	w.SetCloseCallback(func(*glfw.Window) {
		q.push(Event{Type: EventClose})
	})
	w.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		q.push(Event{Type: EventKey, Key: key, Scancode: scancode, Action: action, Mods: mods})
	})
	w.SetCharCallback(func(_ *glfw.Window, char rune) {
		q.push(Event{Type: EventChar, Char: char})
	})
	w.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		q.push(Event{Type: EventMouseButton, Button: button, Action: action, Mods: mods})
	})
	w.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		q.push(Event{Type: EventMouseMove, X: x, Y: y})
	})
	w.SetScrollCallback(func(_ *glfw.Window, x, y float64) {
		q.push(Event{Type: EventScroll, X: x, Y: y})
	})
	w.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		q.push(Event{Type: EventResize, Width: width, Height: height})
	})
}
