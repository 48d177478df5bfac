// Terminal Controller (C9) applies terminal control operations (clear,
// cursor show/hide, alt-screen, mouse/paste, title) and carries out the
// Exec suspend/resume sequence named in spec §4.6/§4.7. It generalizes
// link.go's single fire-and-forget exec.Command(...).Start() call into the
// full "leave raw mode, run the child inheriting stdio, resume" round trip
// (P7).
package scanline

import (
	"fmt"
	"io"
	"os"
	"os/exec"
)

const (
	ansiEnterAltScreen        = "\x1b[?1049h"
	ansiExitAltScreen         = "\x1b[?1049l"
	ansiEnableMouse           = "\x1b[?1000h\x1b[?1006h"
	ansiDisableMouse          = "\x1b[?1000l\x1b[?1006l"
	ansiEnableBracketedPaste  = "\x1b[?2004h"
	ansiDisableBracketedPaste = "\x1b[?2004l"
	ansiRequestWindowSize     = "\x1b[18t"
)

// TerminalController owns the terminal's raw-mode and mode-toggle state for
// one App, and is the only thing in the runtime allowed to write control
// escapes directly to the output (the Dirty Renderer writes cell content,
// never mode escapes).
type TerminalController struct {
	output io.Writer
	stdin  int

	rawState *State
	isRaw    bool

	altScreen     bool
	mouseEnabled  bool
	pasteEnabled  bool
}

// NewTerminalController creates a controller for the given output writer
// and stdin file descriptor (normally Stdout()'s writer and Stdin()'s fd).
func NewTerminalController(output io.Writer, stdinFd int) *TerminalController {
	return &TerminalController{output: output, stdin: stdinFd}
}

// EnterRawMode puts the terminal in raw mode, remembering the previous
// state for Restore. A no-op (returns nil) when stdin isn't a terminal -
// the same fallback app.go's teacher predecessor used for test harnesses.
func (t *TerminalController) EnterRawMode() error {
	if !IsTerminal(t.stdin) {
		return nil
	}
	state, err := MakeRaw(t.stdin)
	if err != nil {
		return err
	}
	t.rawState = state
	t.isRaw = true
	return nil
}

// Restore reverses every mode this controller turned on: cooked mode,
// cursor shown, mouse/paste off, alt-screen exited - the full teardown the
// App Runner's step 7 performs on exit.
func (t *TerminalController) Restore() {
	io.WriteString(t.output, ShowCursor())
	if t.mouseEnabled {
		io.WriteString(t.output, ansiDisableMouse)
		t.mouseEnabled = false
	}
	if t.pasteEnabled {
		io.WriteString(t.output, ansiDisableBracketedPaste)
		t.pasteEnabled = false
	}
	if t.altScreen {
		io.WriteString(t.output, ansiExitAltScreen)
		t.altScreen = false
	}
	if t.isRaw && t.rawState != nil {
		Restore(t.stdin, t.rawState)
		t.isRaw = false
	}
}

// Apply carries out one queued Cmd{Kind: CmdTerminal} operation.
func (t *TerminalController) Apply(cmd Cmd) {
	switch cmd.Term {
	case TermOpClear:
		io.WriteString(t.output, ClearScreen())
	case TermOpHideCursor:
		io.WriteString(t.output, HideCursor())
	case TermOpShowCursor:
		io.WriteString(t.output, ShowCursor())
	case TermOpEnterAltScreen:
		io.WriteString(t.output, ansiEnterAltScreen)
		t.altScreen = true
	case TermOpExitAltScreen:
		io.WriteString(t.output, ansiExitAltScreen)
		t.altScreen = false
	case TermOpEnableMouse:
		io.WriteString(t.output, ansiEnableMouse)
		t.mouseEnabled = true
	case TermOpDisableMouse:
		io.WriteString(t.output, ansiDisableMouse)
		t.mouseEnabled = false
	case TermOpEnableBracketedPaste:
		io.WriteString(t.output, ansiEnableBracketedPaste)
		t.pasteEnabled = true
	case TermOpDisableBracketedPaste:
		io.WriteString(t.output, ansiDisableBracketedPaste)
		t.pasteEnabled = false
	case TermOpSetTitle:
		fmt.Fprintf(t.output, "\x1b]0;%s\x07", cmd.Title)
	case TermOpRequestWindowSize:
		// The ioctl-based GetSize (term_linux.go/term_darwin.go) already
		// answers this synchronously on every resize; the CSI query exists
		// for protocol completeness (spec §6) but its terminal reply would
		// arrive as ordinary stdin bytes for the input decoder to skip.
		io.WriteString(t.output, ansiRequestWindowSize)
	}
}

// RunExec performs the Exec suspend/run/resume round trip: leave raw mode
// and the alt screen, flush, run the child inheriting stdio, then restore
// exactly the mode bits that were active before (P7), forcing a full
// redraw so the caller repaints over whatever the child printed.
func (t *TerminalController) RunExec(spec *ExecSpec) {
	wasRaw := t.isRaw
	wasAlt := t.altScreen
	wasMouse := t.mouseEnabled
	wasPaste := t.pasteEnabled

	if wasPaste {
		io.WriteString(t.output, ansiDisableBracketedPaste)
	}
	if wasMouse {
		io.WriteString(t.output, ansiDisableMouse)
	}
	if wasAlt {
		io.WriteString(t.output, ansiExitAltScreen)
	}
	if wasRaw && t.rawState != nil {
		Restore(t.stdin, t.rawState)
	}
	io.WriteString(t.output, ShowCursor())

	cmd := exec.Command(spec.Name, spec.Args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	runErr := cmd.Run()

	if wasRaw {
		if state, err := MakeRaw(t.stdin); err == nil {
			t.rawState = state
			t.isRaw = true
		}
	}
	if wasAlt {
		io.WriteString(t.output, ansiEnterAltScreen)
		t.altScreen = true
	}
	if wasMouse {
		io.WriteString(t.output, ansiEnableMouse)
		t.mouseEnabled = true
	}
	if wasPaste {
		io.WriteString(t.output, ansiEnableBracketedPaste)
		t.pasteEnabled = true
	}
	io.WriteString(t.output, HideCursor())
	io.WriteString(t.output, ClearScreen())

	if spec.OnExit != nil {
		spec.OnExit(runErr)
	}
}
