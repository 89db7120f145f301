package canopy

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// maxFlushesPerFrame bounds the event loop of one frame. Events still queued
// afterwards wait for the next frame.
const maxFlushesPerFrame = 1024

// Application drives a Context through the frame pipeline: input, events,
// styling, animation, layout and drawing.
//
// Each Update flushes the event queue at most 1024 times. Events emitted
// beyond that stay queued and are dispatched on the next frame.
type Application struct {
	Layout        LayoutEngine
	Renderer      *Renderer
	Input         *EbitenInput // nil for headless use
	ClearColor    Color
	ScreenshotDir string
	// ExitWhenDone ends the game loop once the test runner finished and its
	// screenshots are written.
	ExitWhenDone bool

	cx     *Context
	events *EventManager

	testRunner      *TestRunner
	injectQueue     []syntheticEvent
	screenshotQueue []string
	fps             *fpsOverlay
	stats           debugStats // filled by Update, logged by Draw
}

// NewApplication returns an application with the stack layout and the
// default renderer. Polled input is off until Input is set.
func NewApplication(cx *Context) *Application {
	return &Application{
		Layout:     StackLayout{},
		Renderer:   NewRenderer(),
		ClearColor: ColorWhite,
		cx:         cx,
		events:     NewEventManager(),
	}
}

// Context returns the application's context.
func (a *Application) Context() *Context { return a.cx }

// ShowFPS toggles the FPS overlay.
func (a *Application) ShowFPS(on bool) {
	if on && a.fps == nil {
		a.fps = newFPSOverlay()
	} else if !on {
		a.fps = nil
	}
}

// FlushEvents dispatches queued events until the queue is empty or 1024
// passes ran, returning the number of passes. Events left over wait for the
// next call.
func (a *Application) FlushEvents() int {
	n := 0
	for {
		n++
		if !a.events.Flush(a.cx) {
			return n
		}
		if n >= maxFlushesPerFrame {
			a.cx.log.Warn("event queue not drained", zap.Int("passes", n))
			return n
		}
	}
}

// Update advances one frame of dt. The order is fixed: injected or polled
// input, events until the queue is empty, the cascade when styles are dirty,
// animations, then layout when it is dirty.
func (a *Application) Update(dt time.Duration) error {
	cx := a.cx
	stats := &a.stats
	*stats = debugStats{}
	var t0 time.Time
	if cx.debug {
		t0 = time.Now()
	}

	if a.testRunner != nil {
		a.testRunner.step(a)
	}
	if !a.processInjectedInput() && a.Input != nil {
		a.Input.Poll(cx)
	}
	if cx.debug {
		stats.inputTime = time.Since(t0)
		t0 = time.Now()
	}

	stats.eventCount = a.FlushEvents()
	if cx.debug {
		stats.eventTime = time.Since(t0)
		t0 = time.Now()
	}

	if cx.style.needsRestyle {
		cx.style.restyle(cx.tree)
		cx.cache.invalidateOrder()
	}
	if cx.debug {
		stats.styleTime = time.Since(t0)
		t0 = time.Now()
	}

	cx.style.tickAnimations(dt)
	if cx.debug {
		stats.animateTime = time.Since(t0)
		t0 = time.Now()
	}

	if cx.style.needsRelayout {
		a.Layout.Layout(cx)
	}
	if cx.debug {
		stats.layoutTime = time.Since(t0)
	}

	if a.fps != nil {
		a.fps.update(dt)
	}
	if cx.closeRequested {
		return ebiten.Termination
	}
	if a.ExitWhenDone && a.testRunner != nil && a.testRunner.Done() && len(a.screenshotQueue) == 0 {
		return ebiten.Termination
	}
	return nil
}

// NeedsRedraw reports whether anything visible changed since the last Draw.
func (a *Application) NeedsRedraw() bool {
	return a.cx.style.needsRedraw
}

// Draw renders the tree to screen, then writes queued screenshots and drops
// images nothing observes.
func (a *Application) Draw(screen *ebiten.Image) {
	cx := a.cx
	var t0 time.Time
	if cx.debug {
		t0 = time.Now()
	}
	screen.Fill(a.ClearColor.toRGBA())
	a.Renderer.Draw(cx, screen)
	if a.fps != nil {
		a.fps.draw(screen)
	}
	if cx.debug {
		a.stats.drawTime = time.Since(t0)
		a.stats.commandCount = len(a.Renderer.Commands())
		cx.debugLog(a.stats)
	}
	a.flushScreenshots(screen)
	cx.resources.collectGarbage()
}

// game adapts an Application to ebiten.Game.
type game struct {
	app *Application
	dt  time.Duration
}

func (g *game) Update() error {
	return g.app.Update(g.dt)
}

func (g *game) Draw(screen *ebiten.Image) {
	g.app.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.app.cx.DispatchResize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Run applies cfg to the application and runs the Ebitengine game loop until
// the window closes. Stylesheet errors are logged and returned only when the
// loop itself fails to start.
func Run(app *Application, cfg RunConfig) error {
	cx := app.cx
	if err := cfg.Validate(); err != nil {
		return err
	}
	log, err := cfg.Logging.NewLogger()
	if err != nil {
		return err
	}
	cx.SetLogger(log)
	cx.SetDebugMode(cfg.Debug)
	if cfg.DoubleClick > 0 {
		cx.SetDoubleClickInterval(cfg.DoubleClick)
	}

	var errs error
	cx.stylesheets = append(cx.stylesheets, cfg.Stylesheets...)
	if len(cfg.Stylesheets) > 0 {
		errs = multierr.Append(errs, cx.ReloadStyles())
	}
	if cfg.TestScript != "" {
		runner, err := loadTestScriptFile(cfg.TestScript)
		errs = multierr.Append(errs, err)
		if runner != nil {
			app.SetTestRunner(runner)
			app.ExitWhenDone = app.ExitWhenDone || cfg.ExitAfterScript
		}
	}
	if errs != nil {
		cx.log.Warn("startup", zap.Error(errs))
	}

	if cfg.ScreenshotDir != "" {
		app.ScreenshotDir = cfg.ScreenshotDir
	}
	if app.Input == nil {
		app.Input = NewEbitenInput()
	}
	app.ShowFPS(cfg.ShowFPS)

	tps := cfg.TPS
	if tps <= 0 {
		tps = ebiten.DefaultTPS
	}
	ebiten.SetTPS(tps)
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowClosingHandled(true)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	cx.DispatchResize(float64(cfg.Width), float64(cfg.Height))

	defer func() { _ = cx.log.Sync() }()
	return ebiten.RunGame(&game{app: app, dt: time.Second / time.Duration(tps)})
}
