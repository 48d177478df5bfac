// App Runner (C8) owns the root component, the runtime context, frame
// pacing, the exit flag, and the terminal I/O handle, and drives the loop
// spec §4.7 names: drain queues, poll input, dispatch input, render frame,
// run effects, then wait. The wait is a full frame interval after every
// tick, cut short only by Quit or stdin closing; render time is not
// subtracted from it, and it is not skipped when state changed during the
// render. Kept from the
// teacher: raw-mode enter/defer-restore, the SIGWINCH/SIGINT/SIGTERM signal
// channel, the stdin-reader goroutine, and the done channel in Run().
package scanline

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// AppMode selects one of spec §6's three build-time modes.
type AppMode int

const (
	ModeInline AppMode = iota
	ModeAltScreen
	ModeExplicitInline
)

// defaultFrameInterval is the default 60 FPS frame pacing target (spec §6).
const defaultFrameInterval = 16 * time.Millisecond

// App is one running reactive TUI application instance.
type App struct {
	ctx      *RuntimeContext
	root     RootFunc
	renderer RendererInterface
	term     *TerminalController

	width, height int
	frameInterval time.Duration
	disableThrott bool

	onRender func()
	onError  func(error)

	lastRender time.Time
	quit       chan struct{}
	quitOnce   bool
}

// RootFunc is the user-supplied root component: a plain function invoked
// once per frame inside the hook engine - spec's "component is a plain
// function () -> Element closing over hook-returned handles".
type RootFunc func(ctx *RuntimeContext) Element

// RunOptions configures Run, the full terminal-owning entry point.
type RunOptions struct {
	Width  int
	Height int
	Output io.Writer

	Mode AppMode
	// FPS is the target frame rate; 0 defaults to 60.
	FPS int
	// ExitOnCtrlC controls whether Ctrl+C exits the app. Defaults to true;
	// set explicitly false to let the root component handle it itself.
	ExitOnCtrlC *bool
	// ScreenReaderEnabled seeds RuntimeContext.ScreenReaderMode (spec §3;
	// no OS probe is implemented - see DESIGN.md).
	ScreenReaderEnabled bool

	OnMount   func(*App)
	OnUnmount func()
	OnRender  func()
	OnError   func(error)

	// CaptureConsole redirects stdout/stderr into a log panel toggled with
	// Ctrl+L (off unless set). MaxConsoleMessages bounds how many lines it
	// keeps (default 1000).
	CaptureConsole     bool
	MaxConsoleMessages int
}

func exitOnCtrlC(opts RunOptions) bool {
	if opts.ExitOnCtrlC == nil {
		return true
	}
	return *opts.ExitOnCtrlC
}

// NewApp constructs an App bound to a fresh RuntimeContext, without taking
// over the terminal - the programmatic entry point for tests and embedders
// that manage their own I/O. Run() is the batteries-included wrapper around
// this plus raw mode, signal handling, and a stdin reader.
func NewApp(root RootFunc, opts Options) *App {
	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	ctx := NewRuntimeContext()
	renderer := NewAuto(Options{
		Width: opts.Width, Height: opts.Height, Output: output,
		Pipeline: opts.Pipeline, DisableThrottle: opts.DisableThrottle,
	})

	return &App{
		ctx:           ctx,
		root:          root,
		renderer:      renderer,
		term:          NewTerminalController(output, Stdin()),
		width:         opts.Width,
		height:        opts.Height,
		frameInterval: defaultFrameInterval,
		disableThrott: opts.DisableThrottle,
		onRender:      opts.OnRender,
		onError:       opts.OnError,
		quit:          make(chan struct{}),
	}
}

// Context returns the app's RuntimeContext.
func (a *App) Context() *RuntimeContext { return a.ctx }

// Resize updates the app's terminal dimensions and forces a redraw on the
// next RenderFrame call (spec scenario 6).
func (a *App) Resize(width, height int) {
	a.width, a.height = width, height
	if r, ok := a.renderer.(*Renderer); ok {
		r.Resize(width, height)
	}
	a.ctx.MarkDirty()
}

// Quit asks the app to exit after the current tick.
func (a *App) Quit() {
	if !a.quitOnce {
		a.quitOnce = true
		close(a.quit)
	}
}

// Done reports whether Quit has been called.
func (a *App) Done() <-chan struct{} { return a.quit }

// RenderFrame is App Runner step 4 ("render frame"): expand the root
// component inside the hook engine, reconcile, lay out, record the
// measurement snapshot, and paint dirty rows. Panics from a Loud error
// (hook-order violations) are recovered here and handed to OnError, per I3.
func (a *App) RenderFrame() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = rerr
			} else {
				err = fmt.Errorf("scanline: panic during render: %v", r)
			}
			if a.onError != nil {
				a.onError(err)
			} else {
				Log().Error("render panic recovered", "error", err)
			}
		}
	}()

	a.ctx.beginFrame()
	expanded := Expand(a.ctx, rootElement(a.root))
	result := a.ctx.reconciler.Reconcile(expanded)
	layoutBox := ComputeLayout(result.Tree, LayoutContext{X: 0, Y: 0, Width: a.width, Height: a.height})
	a.ctx.measure.Record(layoutBox)
	a.ctx.flushLayoutEffects()

	a.renderer.Render(result.Tree)

	a.ctx.endFrame()
	a.ctx.flushEffects()

	if a.onRender != nil {
		a.onRender()
	}
	return nil
}

// rootElement wraps root as a Component element so Expand pushes a hook
// frame for it at RootNodeKey, exactly like any other component instance.
func rootElement(root RootFunc) Element {
	return Component("app-root", func(c *RuntimeContext) Element {
		return root(c)
	})
}

// DrainQueues is App Runner step 1: runs queued commands, and carries out
// any exec/terminal-control requests those commands produced.
func (a *App) DrainQueues() {
	a.ctx.scheduler.Drain()

	for _, termCmd := range a.ctx.scheduler.TakeTerminalRequests() {
		a.term.Apply(termCmd)
	}
	for _, spec := range a.ctx.scheduler.TakeExecRequests() {
		a.term.RunExec(spec)
		a.ctx.MarkDirty()
	}
	if a.ctx.scheduler.DidRequestQuit() {
		a.Quit()
	}
}

// ShouldThrottle reports whether a render should be skipped this tick
// because less than one frame interval has elapsed since the last one.
func (a *App) ShouldThrottle(now time.Time) bool {
	if a.disableThrott {
		return false
	}
	return now.Sub(a.lastRender) < a.frameInterval
}

// MarkRendered records the render timestamp used by ShouldThrottle.
func (a *App) MarkRendered(now time.Time) { a.lastRender = now }

// Run is the batteries-included entry point: it takes over the terminal
// (raw mode, alt-screen per Mode, signal handling, stdin reading) and
// drives the App Runner loop until Quit is called or stdin closes.
func Run(root RootFunc, opts RunOptions) error {
	width, height := opts.Width, opts.Height
	if width == 0 || height == 0 {
		if w, h, err := GetSize(Stdout()); err == nil {
			if width == 0 {
				width = w
			}
			if height == 0 {
				height = h
			}
		}
	}
	if cols, rows, xpx, ypx, err := GetSizePixels(Stdout()); err == nil && xpx > 0 && ypx > 0 && cols > 0 && rows > 0 {
		Log().Debug("terminal geometry",
			"cols", cols, "rows", rows,
			"cellWidthPx", float64(xpx)/float64(cols),
			"cellHeightPx", float64(ypx)/float64(rows))
	}
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = 60
	}
	frameInterval := time.Second / time.Duration(fps)

	maxMessages := opts.MaxConsoleMessages
	if maxMessages <= 0 {
		maxMessages = 1000
	}

	var logCapture *LogCapture
	showLogs := false
	if opts.CaptureConsole {
		logCapture = NewLogCapture(maxMessages)
		if err := logCapture.Start(); err != nil {
			Log().Warn("console capture unavailable", "error", err)
			logCapture = nil
		}
	}

	output := opts.Output
	if output == nil {
		if logCapture != nil {
			output = logCapture.OriginalStdout()
		} else {
			output = os.Stdout
		}
	}

	wrappedRoot := root
	if logCapture != nil {
		wrappedRoot = withConsolePanel(root, logCapture, &showLogs, width, height)
	}

	app := NewApp(wrappedRoot, Options{
		Width: width, Height: height, Output: output,
		OnRender: opts.OnRender, OnError: opts.OnError,
	})
	app.frameInterval = frameInterval
	app.ctx.SetScreenReaderMode(opts.ScreenReaderEnabled)

	if err := app.term.EnterRawMode(); err != nil {
		Log().Warn("raw mode unavailable, continuing without it", "error", err)
	}
	io.WriteString(output, HideCursor())
	if opts.Mode == ModeAltScreen {
		app.term.Apply(Cmd{Term: TermOpEnterAltScreen})
	}

	defer func() {
		app.term.Restore()
		io.WriteString(output, ClearScreen())
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGWINCH)
	defer signal.Stop(sigCh)

	cleanupLogToggle := app.ctx.Focus().SetGlobalKeyHandler(func(key string) bool {
		if logCapture == nil {
			return false
		}
		if key == CtrlL {
			showLogs = !showLogs
			app.ctx.MarkDirty()
			return true
		}
		if key == CtrlK && showLogs {
			logCapture.Clear()
			return true
		}
		return false
	})
	defer cleanupLogToggle()

	stdinClosed := make(chan struct{})
	go func() {
		buf := make([]byte, 64)
		pasteDecoder := &PasteDecoder{}
		for {
			select {
			case <-app.Done():
				return
			default:
			}
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(stdinClosed)
				return
			}
			raw := string(buf[:n])

			if exitOnCtrlC(opts) && IsQuitKey(raw) {
				app.Quit()
				return
			}

			if mouse, ok := DecodeMouse(raw); ok {
				app.ctx.scheduler.Dispatch(CallbackCmd(func() {
					if app.ctx.DispatchMouse(mouse) {
						app.ctx.MarkDirty()
					}
				}))
				continue
			}
			for _, ev := range pasteDecoder.Feed(raw) {
				ev := ev
				app.ctx.scheduler.Dispatch(CallbackCmd(func() {
					if app.ctx.DispatchPaste(ev) {
						app.ctx.MarkDirty()
					}
				}))
			}
			if raw == pasteStartSeq || raw == pasteEndSeq {
				continue
			}
			key := raw
			app.ctx.scheduler.Dispatch(CallbackCmd(func() {
				if app.ctx.DispatchKey(key) {
					app.ctx.MarkDirty()
				}
			}))
		}
	}()

	go func() {
		for sig := range sigCh {
			switch sig {
			case syscall.SIGWINCH:
				if w, h, err := GetSize(Stdout()); err == nil {
					width, height = w, h
					app.Resize(width, height)
				}
			case syscall.SIGINT, syscall.SIGTERM:
				app.Quit()
				return
			}
		}
	}()

	if opts.OnMount != nil {
		opts.OnMount(app)
	}

	var runErr error
	app.ctx.MarkDirty()
runLoop:
	for {
		select {
		case <-app.Done():
			break runLoop
		default:
		}

		app.DrainQueues()

		select {
		case <-app.Done():
			break runLoop
		default:
		}

		if app.ctx.ConsumeDirty() {
			now := time.Now()
			if !app.ShouldThrottle(now) {
				if err := app.RenderFrame(); err != nil {
					runErr = err
				}
				app.MarkRendered(now)
			} else {
				app.ctx.MarkDirty() // retry next tick
			}
		}

		select {
		case <-stdinClosed:
			// no more input: the app exits
			break runLoop
		case <-app.Done():
			break runLoop
		case <-time.After(frameInterval):
		}
	}

	if logCapture != nil {
		logCapture.Stop()
	}
	if opts.OnUnmount != nil {
		opts.OnUnmount()
	}
	app.ctx.Close()
	return runErr
}

func withConsolePanel(root RootFunc, logCapture *LogCapture, showLogs *bool, width, height int) RootFunc {
	return func(ctx *RuntimeContext) Element {
		appContent := root(ctx)
		if !*showLogs {
			return appContent
		}

		messages := logCapture.Messages()
		panelHeight := height / 3
		if panelHeight < 6 {
			panelHeight = 6
		}
		panelY := height - panelHeight
		maxLines := panelHeight - 4
		if len(messages) > maxLines {
			messages = messages[len(messages)-maxLines:]
		}

		lines := make([]Element, 0, len(messages)+1)
		lines = append(lines, Text(formatPanelHeader(len(logCapture.Messages()))).WithKey("header"))
		for i, msg := range messages {
			color := ColorWhite
			switch msg.Level {
			case LogLevelError:
				color = ColorRed
			case LogLevelWarn:
				color = ColorYellow
			}
			lines = append(lines, Box("box", ElementStyle{Visual: Style{Color: color}}, nil,
				Text(" "+FormatMessage(msg))).WithKey(fmt.Sprintf("line-%d", i)))
		}

		consolePanel := Box("box", ElementStyle{
			Layout: LayoutStyle{Position: PositionAbsolute, X: 0, Y: panelY, Width: width, Height: panelHeight},
			Border: BorderFacet{Style: BorderSingle},
			Visual: Style{Background: ColorBlack, Color: ColorWhite},
		}, map[string]any{"overflow": OverflowHidden}, lines...).WithKey("console-panel")

		return Box("box", ElementStyle{Layout: LayoutStyle{Width: width, Height: height}}, nil,
			appContent, consolePanel)
	}
}

func formatPanelHeader(count int) string {
	return fmt.Sprintf(" Console (%d) - Ctrl+L close, Ctrl+K clear", count)
}
