package app

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	minecart "github.com/ajh123/Minecart"
	"github.com/ajh123/Minecart/config"
)

type recorder struct {
	calls []string
}

func (r *recorder) add(s string) { r.calls = append(r.calls, s) }

type fakeWindow struct {
	rec *recorder

	initErr     error
	renderErr   error
	events      [][]minecart.Event
	shouldClose bool
	frames      int
}

func (w *fakeWindow) Initialize() error {
	w.rec.add("window.init")
	return w.initErr
}

func (w *fakeWindow) PollEvents() []minecart.Event {
	w.rec.add("window.poll")
	if len(w.events) == 0 {
		return nil
	}
	evs := w.events[0]
	w.events = w.events[1:]
	return evs
}

func (w *fakeWindow) RenderFrame(layers ...minecart.RenderFunc) error {
	w.rec.add("window.render")
	w.frames++
	frame := &minecart.FrameContext{FrameIndex: w.frames}
	var first error
	for _, l := range layers {
		if err := l(frame); err != nil && first == nil {
			first = err
		}
	}
	if first != nil {
		return first
	}
	return w.renderErr
}

func (w *fakeWindow) ShouldClose() bool { return w.shouldClose }

func (w *fakeWindow) Shutdown() { w.rec.add("window.shutdown") }

type fakeUI struct {
	rec    *recorder
	claims map[minecart.EventType]bool
	dts    []float32
}

func (u *fakeUI) NewFrame(dt float32) {
	u.rec.add("ui.newframe")
	u.dts = append(u.dts, dt)
}

func (u *fakeUI) HandleEvent(ev minecart.Event) bool {
	u.rec.add("ui.event:" + ev.Type.String())
	return u.claims[ev.Type]
}

func (u *fakeUI) Render() { u.rec.add("ui.render") }

func (u *fakeUI) Draw(*minecart.FrameContext) error {
	u.rec.add("ui.draw")
	return nil
}

func (u *fakeUI) Destroy() { u.rec.add("ui.destroy") }

type fakeGame struct {
	BaseGame
	rec *recorder

	initErr   error
	updateErr error
	// stopAfter makes Update return ErrStop on that frame (1 based).
	stopAfter int
	render    func() error
	updates   int
}

func (g *fakeGame) Init(*Context) error {
	g.rec.add("game.init")
	return g.initErr
}

func (g *fakeGame) Update(float32) error {
	g.updates++
	g.rec.add("game.update")
	if g.stopAfter > 0 && g.updates >= g.stopAfter {
		return ErrStop
	}
	return g.updateErr
}

func (g *fakeGame) Render(*minecart.FrameContext) error {
	g.rec.add("game.render")
	if g.render != nil {
		return g.render()
	}
	return nil
}

func (g *fakeGame) RenderUI() { g.rec.add("game.renderui") }

func (g *fakeGame) Event(ev minecart.Event) bool {
	g.rec.add("game.event:" + ev.Type.String())
	return true
}

func (g *fakeGame) Shutdown() { g.rec.add("game.shutdown") }

func newTestRunner(g *fakeGame, w *fakeWindow, u *fakeUI) *Runner {
	t := 0.0
	return &Runner{
		game:   g,
		window: w,
		ctx:    &Context{},
		newUI:  func() (frameUI, error) { return u, nil },
		clock: func() float64 {
			t += 0.5
			return t
		},
	}
}

func TestRunnerFrameOrder(t *testing.T) {
	rec := &recorder{}
	g := &fakeGame{rec: rec, stopAfter: 2}
	w := &fakeWindow{rec: rec, events: [][]minecart.Event{{{Type: minecart.EventKey}}}}
	u := &fakeUI{rec: rec}

	if err := newTestRunner(g, w, u).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"window.init",
		"game.init",
		// frame 1
		"ui.newframe",
		"game.update",
		"window.poll",
		"ui.event:key",
		"game.event:key",
		"game.renderui",
		"ui.render",
		"window.render",
		"game.render",
		"ui.draw",
		// frame 2 stops in update
		"ui.newframe",
		"game.update",
		// teardown
		"game.shutdown",
		"ui.destroy",
		"window.shutdown",
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls =\n%v\nwant\n%v", rec.calls, want)
	}
	if len(u.dts) != 2 || u.dts[0] != 0.5 || u.dts[1] != 0.5 {
		t.Errorf("delta times = %v", u.dts)
	}
}

func TestRunnerUIClaimsEvents(t *testing.T) {
	rec := &recorder{}
	g := &fakeGame{rec: rec, stopAfter: 2}
	w := &fakeWindow{rec: rec, events: [][]minecart.Event{{
		{Type: minecart.EventMouseButton},
		{Type: minecart.EventKey},
	}}}
	u := &fakeUI{rec: rec, claims: map[minecart.EventType]bool{minecart.EventMouseButton: true}}

	if err := newTestRunner(g, w, u).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, c := range rec.calls {
		if c == "game.event:mouse-button" {
			t.Error("game received an event the UI claimed")
		}
	}
	if !contains(rec.calls, "game.event:key") {
		t.Error("game did not receive the unclaimed key event")
	}
}

func TestRunnerStopsOnClose(t *testing.T) {
	rec := &recorder{}
	g := &fakeGame{rec: rec}
	w := &fakeWindow{rec: rec, events: [][]minecart.Event{{{Type: minecart.EventClose}}}}
	u := &fakeUI{rec: rec}

	if err := newTestRunner(g, w, u).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if w.frames != 0 {
		t.Errorf("rendered %d frames after close", w.frames)
	}
	if !contains(rec.calls, "game.event:close") {
		t.Error("close event not delivered to the game")
	}
}

func TestRunnerStopsOnShouldClose(t *testing.T) {
	rec := &recorder{}
	g := &fakeGame{rec: rec}
	w := &fakeWindow{rec: rec, shouldClose: true}

	if err := newTestRunner(g, w, &fakeUI{rec: rec}).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if g.updates != 1 || w.frames != 0 {
		t.Errorf("updates=%d frames=%d", g.updates, w.frames)
	}
}

func TestRunnerRenderFailureIsGraceful(t *testing.T) {
	tests := []struct {
		name   string
		render func() error
	}{
		{"error", func() error { return errors.New("boom") }},
		{"stop", func() error { return ErrStop }},
		{"panic", func() error { panic("boom") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			g := &fakeGame{rec: rec, render: tt.render}
			w := &fakeWindow{rec: rec}
			u := &fakeUI{rec: rec}

			if err := newTestRunner(g, w, u).Run(); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if w.frames != 1 {
				t.Errorf("frames = %d, want 1", w.frames)
			}
			if !contains(rec.calls, "ui.draw") {
				t.Error("UI layer should still be drawn in the failing frame")
			}
			if rec.calls[len(rec.calls)-1] != "window.shutdown" {
				t.Errorf("window not shut down last: %v", rec.calls)
			}
		})
	}
}

func TestRenderGameRecoversPanic(t *testing.T) {
	g := &fakeGame{rec: &recorder{}, render: func() error { panic("bad") }}
	r := newTestRunner(g, nil, nil)
	if err := r.renderGame(&minecart.FrameContext{}); !errors.Is(err, ErrRenderPanic) {
		t.Errorf("err = %v, want ErrRenderPanic", err)
	}
}

func TestRunnerWindowRenderErrorIsReturned(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("device lost")
	w := &fakeWindow{rec: rec, renderErr: boom}

	err := newTestRunner(&fakeGame{rec: rec}, w, &fakeUI{rec: rec}).Run()
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if !contains(rec.calls, "game.shutdown") || !contains(rec.calls, "window.shutdown") {
		t.Errorf("teardown incomplete: %v", rec.calls)
	}
}

func TestRunnerUpdateError(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("bad update")
	err := newTestRunner(&fakeGame{rec: rec, updateErr: boom}, &fakeWindow{rec: rec}, &fakeUI{rec: rec}).Run()
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestRunnerInitFailures(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("no gpu")
	err := newTestRunner(&fakeGame{rec: rec}, &fakeWindow{rec: rec, initErr: boom}, &fakeUI{rec: rec}).Run()
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if contains(rec.calls, "game.init") {
		t.Error("game initialized after window failure")
	}

	rec = &recorder{}
	err = newTestRunner(&fakeGame{rec: rec, initErr: boom}, &fakeWindow{rec: rec}, &fakeUI{rec: rec}).Run()
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	want := []string{"window.init", "game.init", "ui.destroy", "window.shutdown"}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

func TestRunnerLogsRenderFailure(t *testing.T) {
	prev := minecart.Logger()
	defer minecart.SetLogger(prev)

	var buf bytes.Buffer
	minecart.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	rec := &recorder{}
	g := &fakeGame{rec: rec, render: func() error { return errors.New("lost pipeline") }}
	if err := newTestRunner(g, &fakeWindow{rec: rec}, &fakeUI{rec: rec}).Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "render failed, stopping") || !strings.Contains(out, "lost pipeline") {
		t.Errorf("render failure not logged: %q", out)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	tests := []struct {
		level     string
		debug     bool
		infoShown bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := config.Default()
			cfg.Log.Level = tt.level

			var buf bytes.Buffer
			l := newLogger(cfg, &buf)
			l.Debug("debug record")
			l.Info("info record")
			l.Error("error record")

			out := buf.String()
			if strings.Contains(out, "debug record") != tt.debug {
				t.Errorf("debug shown = %v, want %v", !tt.debug, tt.debug)
			}
			if strings.Contains(out, "info record") != tt.infoShown {
				t.Errorf("info shown = %v, want %v", !tt.infoShown, tt.infoShown)
			}
			if !strings.Contains(out, "error record") {
				t.Error("error record missing")
			}
		})
	}
}

func TestNewRunnerKeepsExplicitLogger(t *testing.T) {
	prev := minecart.Logger()
	defer minecart.SetLogger(prev)

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	minecart.SetLogger(l)
	NewRunner(&fakeGame{rec: &recorder{}}, nil)
	if minecart.Logger() != l {
		t.Error("NewRunner replaced a logger set by the host")
	}
}

type namedGame struct {
	BaseGame
}

func (namedGame) Name() string    { return "cube" }
func (namedGame) Version() string { return "1.2" }

func TestNameAndVersion(t *testing.T) {
	if Name(BaseGame{}) != "unknown" || Version(BaseGame{}) != "unknown" {
		t.Error("BaseGame should be unknown")
	}
	if Name(namedGame{}) != "cube" || Version(namedGame{}) != "1.2" {
		t.Error("named game not reported")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
