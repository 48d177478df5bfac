package scanline

import "time"

// CmdKind enumerates the taxonomy of side-effecting commands a component
// can return from an event handler instead of performing I/O inline -
// keeping Render/effect bodies synchronous and testable.
type CmdKind int

const (
	CmdNone CmdKind = iota
	CmdBatch
	CmdSequence
	CmdCallback
	CmdAsync
	CmdDelay
	CmdSleep
	CmdTick
	CmdEvery
	CmdAndThen
	CmdExec
	CmdTerminal
	CmdQuit
)

// TerminalOp enumerates the terminal control operations spec §4.6 names
// under the "Terminal(control_op)" Cmd variant: clear, cursor show/hide,
// title, mouse/paste toggles, alt-screen enter/exit, and a window-size
// query.
type TerminalOp int

const (
	TermOpClear TerminalOp = iota
	TermOpHideCursor
	TermOpShowCursor
	TermOpEnterAltScreen
	TermOpExitAltScreen
	TermOpEnableMouse
	TermOpDisableMouse
	TermOpEnableBracketedPaste
	TermOpDisableBracketedPaste
	TermOpSetTitle
	TermOpRequestWindowSize
)

// Cmd is a description of work for the Scheduler to carry out. Cmd values
// are data, not goroutines: building one has no side effects until it is
// handed to Scheduler.Dispatch.
type Cmd struct {
	Kind CmdKind

	Callback func()     // CmdCallback: run on the scheduler's dispatch thread
	Batch    []Cmd      // CmdBatch: fan out concurrently; CmdSequence: run in order, awaiting each step
	Async    func() Cmd // CmdAsync: run on the worker pool; result re-enters the queue

	After time.Duration // CmdDelay/CmdSleep/CmdTick/CmdEvery: how long to wait
	Then  *Cmd          // CmdDelay: the command to run once After elapses

	// Mapper produces the command to dispatch from the time the timer
	// fired. CmdTick calls it once, After after registration; CmdEvery
	// calls it every After, aligned to the first registration's deadline.
	Mapper func(fired time.Time) Cmd

	// AndThenCmd is the first command CmdAndThen runs; AndThenFollow is
	// invoked with that command's own result (its Then/Mapper/Async output,
	// or NoCmd for kinds with no natural result) to produce the next
	// command to dispatch.
	AndThenCmd    *Cmd
	AndThenFollow func(result Cmd) Cmd

	Exec  *ExecSpec  // CmdExec: suspend the terminal and run a foreign process
	Term  TerminalOp // CmdTerminal: a terminal control operation
	Title string     // CmdTerminal: TermOpSetTitle's argument
}

// ExecSpec describes a foreign process the Terminal Controller should run
// with the terminal temporarily restored to cooked mode and handed over
// wholesale (the suspend/resume flow an editor invocation like "open $EDITOR"
// needs) - see terminal.go.
type ExecSpec struct {
	Name string
	Args []string
	// OnExit receives the process's exit error (nil on success) once
	// terminal control has been handed back to the app.
	OnExit func(err error)
}

// NoCmd is the zero command: "nothing to do".
var NoCmd = Cmd{Kind: CmdNone}

// BatchCmd fans out every sub-command concurrently: none waits for another
// to finish before starting. Use SequenceCmd when later steps must wait.
func BatchCmd(cmds ...Cmd) Cmd {
	return Cmd{Kind: CmdBatch, Batch: cmds}
}

// SequenceCmd runs every sub-command in order, awaiting each one's
// completion (timer fire, async worker return, or synchronous execution)
// before starting the next.
func SequenceCmd(cmds ...Cmd) Cmd {
	return Cmd{Kind: CmdSequence, Batch: cmds}
}

// CallbackCmd wraps a plain function as a command run on the scheduler's
// dispatch thread (safe to touch hook state from).
func CallbackCmd(fn func()) Cmd {
	return Cmd{Kind: CmdCallback, Callback: fn}
}

// AsyncCmd runs fn on the worker pool (bounded by the scheduler's
// semaphore) and feeds its returned Cmd back into the queue once done -
// the pattern for network calls, file I/O, or anything else that must not
// block the render loop.
func AsyncCmd(fn func() Cmd) Cmd {
	return Cmd{Kind: CmdAsync, Async: fn}
}

// DelayCmd runs `then` once `after` has elapsed, via the scheduler's timer
// heap rather than a bare time.Sleep, so a delayed command is cancellable
// by dropping the app and doesn't block a worker slot while waiting.
func DelayCmd(after time.Duration, then Cmd) Cmd {
	return Cmd{Kind: CmdDelay, After: after, Then: &then}
}

// SleepCmd waits for d on the shared scheduler thread and dispatches
// nothing on its own - useful chained with AndThenCmd/SequenceCmd when a
// step needs a pause but no message of its own.
func SleepCmd(d time.Duration) Cmd {
	return Cmd{Kind: CmdSleep, After: d}
}

// TickCmd waits for d, once, then dispatches mapper's result - the
// one-shot "do this after a pause" primitive, distinct from DelayCmd only
// in that the dispatched command is computed from the fire time rather
// than fixed at construction.
func TickCmd(d time.Duration, mapper func(fired time.Time) Cmd) Cmd {
	return Cmd{Kind: CmdTick, After: d, Mapper: mapper}
}

// EveryCmd fires every d, aligned to the first registration's deadline
// (missed ticks under scheduler load are dropped, not queued up), and
// dispatches mapper's result each time - the periodic-broadcast primitive
// behind clocks and polling widgets that don't need per-instance teardown
// (UseInterval is the hook-scoped equivalent with automatic cleanup).
func EveryCmd(d time.Duration, mapper func(fired time.Time) Cmd) Cmd {
	return Cmd{Kind: CmdEvery, After: d, Mapper: mapper}
}

// AndThenCmd runs cmd, then calls follow with cmd's own result (NoCmd for
// a kind with no natural result value) and dispatches whatever follow
// returns.
func AndThenCmd(cmd Cmd, follow func(result Cmd) Cmd) Cmd {
	return Cmd{Kind: CmdAndThen, AndThenCmd: &cmd, AndThenFollow: follow}
}

// ExecCmd suspends the terminal and runs a foreign process to completion.
func ExecCmd(name string, args []string, onExit func(err error)) Cmd {
	return Cmd{Kind: CmdExec, Exec: &ExecSpec{Name: name, Args: args, OnExit: onExit}}
}

// TerminalCmd requests a terminal control operation (see TerminalOp). Title
// is only meaningful for TermOpSetTitle.
func TerminalCmd(op TerminalOp, title string) Cmd {
	return Cmd{Kind: CmdTerminal, Term: op, Title: title}
}

// QuitCmd asks the App Runner to exit after the current frame.
var QuitCmd = Cmd{Kind: CmdQuit}
