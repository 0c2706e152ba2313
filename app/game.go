// Package app drives a Game through the frame loop of a minecart window.
package app

import (
	"errors"

	minecart "github.com/ajh123/Minecart"
	"github.com/ajh123/Minecart/config"
	"github.com/ajh123/Minecart/imgui"
)

// ErrStop may be returned from Game.Update or Game.Render to end the loop
// without reporting an error.
var ErrStop = errors.New("stop")

// Game is the set of hooks the Runner calls. Per frame the order is Update,
// Event for every unclaimed input event, RenderUI and finally Render.
type Game interface {
	// Init is called once after the window and UI exist.
	Init(ctx *Context) error
	Update(dt float32) error
	// Render records the game's draw commands into frame.
	Render(frame *minecart.FrameContext) error
	// RenderUI submits ImGui widgets.
	RenderUI()
	// Event receives input the UI did not claim. The return value reports
	// whether the game handled it.
	Event(ev minecart.Event) bool
	// Shutdown is called once, before the UI and window are destroyed, if
	// Init succeeded.
	Shutdown()
}

// Named is implemented by games that have a display name.
type Named interface {
	Name() string
}

// Versioned is implemented by games that report a version.
type Versioned interface {
	Version() string
}

// Name returns the game's name or "unknown".
func Name(g Game) string {
	if n, ok := g.(Named); ok && n.Name() != "" {
		return n.Name()
	}
	return "unknown"
}

// Version returns the game's version or "unknown".
func Version(g Game) string {
	if v, ok := g.(Versioned); ok && v.Version() != "" {
		return v.Version()
	}
	return "unknown"
}

// BaseGame implements every Game hook as a no-op. Embed it and override
// what is needed.
type BaseGame struct{}

func (BaseGame) Init(*Context) error                 { return nil }
func (BaseGame) Update(float32) error                { return nil }
func (BaseGame) Render(*minecart.FrameContext) error { return nil }
func (BaseGame) RenderUI()                           {}
func (BaseGame) Event(minecart.Event) bool           { return false }
func (BaseGame) Shutdown()                           {}

// Context is what a game gets to create its resources with.
type Context struct {
	Window *minecart.Window
	Device *minecart.Device
	UI     *imgui.UI
	Config *config.Config
	// Resources loads shaders from Config.Shaders.Dir when set.
	Resources *minecart.ResourceManager
}
