package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	minecart "github.com/ajh123/Minecart"
	"github.com/ajh123/Minecart/config"
	"github.com/ajh123/Minecart/imgui"
	"github.com/vulkan-go/glfw/v3.3/glfw"
)

// ErrRenderPanic wraps a panic recovered from Game.Render.
var ErrRenderPanic = errors.New("render panicked")

type frameWindow interface {
	Initialize() error
	PollEvents() []minecart.Event
	RenderFrame(layers ...minecart.RenderFunc) error
	ShouldClose() bool
	Shutdown()
}

type frameUI interface {
	NewFrame(dt float32)
	HandleEvent(ev minecart.Event) bool
	Render()
	Draw(frame *minecart.FrameContext) error
	Destroy()
}

// Runner owns the window and UI of a game and runs its frame loop.
type Runner struct {
	game Game
	cfg  *config.Config

	window frameWindow
	ui     frameUI
	ctx    *Context

	// newUI is called after the window is initialized.
	newUI func() (frameUI, error)
	clock func() float64
	last  float64
}

// NewRunner prepares a runner for game. A nil cfg means config.Default().
// Unless SetLogger was called before, logs go to stderr at cfg.Log.Level.
func NewRunner(game Game, cfg *config.Config) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if !minecart.LoggerSet() {
		minecart.SetLogger(newLogger(cfg, os.Stderr))
	}

	w := minecart.NewWindow(cfg.WindowConfig())
	resources := minecart.NewResourceManager()
	if cfg.Shaders.Dir != "" {
		resources.AddLoader(minecart.DirLoader(cfg.Shaders.Dir))
	}

	r := &Runner{
		game:   game,
		cfg:    cfg,
		window: w,
		ctx:    &Context{Window: w, Config: cfg, Resources: resources},
		clock:  glfw.GetTime,
	}
	r.newUI = func() (frameUI, error) {
		ui, err := imgui.New(w)
		if err != nil {
			return nil, err
		}
		r.ctx.Device = w.Device()
		r.ctx.UI = ui
		return ui, nil
	}
	return r
}

func newLogger(cfg *config.Config, out io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: cfg.LogLevel()}))
}

// Run creates a runner and runs game until it stops.
func Run(game Game, cfg *config.Config) error {
	return NewRunner(game, cfg).Run()
}

// Run initializes the window, the UI and the game, then renders frames until
// the window closes or the game stops. Teardown is game, UI, window.
//
// Failures while rendering the game are logged and end the loop without an
// error; failures of the window or UI are returned.
func (r *Runner) Run() error {
	log := minecart.Logger()

	if err := r.window.Initialize(); err != nil {
		return fmt.Errorf("unable to initialize window: %w", err)
	}
	defer r.window.Shutdown()

	ui, err := r.newUI()
	if err != nil {
		return fmt.Errorf("unable to initialize ui: %w", err)
	}
	r.ui = ui
	defer r.ui.Destroy()

	if err := r.game.Init(r.ctx); err != nil {
		return fmt.Errorf("unable to initialize %s: %w", Name(r.game), err)
	}
	defer r.game.Shutdown()

	log.Info("game started", "name", Name(r.game), "version", Version(r.game))

	r.last = r.clock()
	for {
		stop, err := r.frame()
		if err != nil {
			return err
		}
		if stop {
			log.Info("game stopped", "name", Name(r.game))
			return nil
		}
	}
}

// frame runs one iteration of the loop and reports whether to stop.
func (r *Runner) frame() (bool, error) {
	now := r.clock()
	dt := float32(now - r.last)
	r.last = now

	r.ui.NewFrame(dt)

	if err := r.game.Update(dt); err != nil {
		if errors.Is(err, ErrStop) {
			return true, nil
		}
		return true, fmt.Errorf("update failed: %w", err)
	}

	closed := false
	for _, ev := range r.window.PollEvents() {
		if ev.Type == minecart.EventClose {
			closed = true
		}
		if r.ui.HandleEvent(ev) {
			continue
		}
		r.game.Event(ev)
	}
	if closed || r.window.ShouldClose() {
		return true, nil
	}

	r.game.RenderUI()
	r.ui.Render()

	var gameErr error
	err := r.window.RenderFrame(
		func(frame *minecart.FrameContext) error {
			gameErr = r.renderGame(frame)
			return gameErr
		},
		r.ui.Draw,
	)

	if gameErr != nil {
		if !errors.Is(gameErr, ErrStop) {
			minecart.Logger().Error("render failed, stopping", "error", gameErr)
		}
		return true, nil
	}
	if err != nil {
		return true, fmt.Errorf("unable to render frame: %w", err)
	}
	return false, nil
}

func (r *Runner) renderGame(frame *minecart.FrameContext) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrRenderPanic, p)
		}
	}()
	return r.game.Render(frame)
}

// Context returns the context passed to Game.Init.
func (r *Runner) Context() *Context { return r.ctx }
