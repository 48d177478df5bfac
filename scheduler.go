package scanline

import (
	"container/heap"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// defaultAsyncConcurrency bounds how many AsyncCmd functions run at once.
// Each AsyncCmd still gets its own goroutine, which waits on the semaphore
// before running its function.
const defaultAsyncConcurrency = 8

// timerEntry is one registration on the shared scheduler thread (P8): a
// CmdDelay/CmdSleep's fixed payload, or a CmdTick/CmdEvery's mapper -
// never both. repeat > 0 makes it a CmdEvery: Drain reschedules it for
// at+repeat (skipping ahead past any deadlines already missed) instead of
// dropping it. onFire, when set, is a CmdSequence/CmdAndThen continuation
// notified with this entry's fired command once it pops.
type timerEntry struct {
	at     time.Time
	cmd    Cmd
	mapper func(time.Time) Cmd
	repeat time.Duration
	onFire func(result Cmd)

	// callback and cancelled serve RegisterInterval's direct, non-Cmd
	// registration (UseInterval's building block): callback runs in place
	// of cmd/mapper when set, and a repeating entry whose cancelled flag
	// is set is dropped instead of rescheduled.
	callback  func(time.Time)
	cancelled *atomic.Bool

	index int
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].at.Before(h[j].at) }
func (h timerHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index, h[j].index = i, j }
func (h *timerHeap) Push(x any)        { e := x.(*timerEntry); e.index = len(*h); *h = append(*h, e) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}

// Scheduler is the Command Executor (C7): a single dispatch thread shared
// by every frame, a bounded worker pool for AsyncCmd, and one timer heap
// shared by CmdDelay, CmdSleep, CmdTick, CmdEvery and UseInterval (P8: one
// scheduler thread, no per-timer goroutine). It is owned by one
// RuntimeContext, never shared across apps.
type Scheduler struct {
	mu      sync.Mutex
	queue   []Cmd
	timers  timerHeap
	sem     *semaphore.Weighted
	quit    bool
	execReq []*ExecSpec
	termReq []Cmd

	degraded bool // Degrade policy: async runtime unavailable, warn once

	wg sync.WaitGroup
}

// NewScheduler creates a scheduler with the default async concurrency.
func NewScheduler() *Scheduler {
	return &Scheduler{sem: semaphore.NewWeighted(defaultAsyncConcurrency)}
}

// Dispatch enqueues a command for the next Drain. Safe to call from any
// goroutine, including worker-pool goroutines feeding results back in.
func (s *Scheduler) Dispatch(cmd Cmd) {
	s.mu.Lock()
	s.queue = append(s.queue, cmd)
	s.mu.Unlock()
}

// DidRequestQuit reports whether a CmdQuit has been processed.
func (s *Scheduler) DidRequestQuit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quit
}

// TakeExecRequests returns and clears any ExecSpecs queued this drain, for
// the Terminal Controller to run with the terminal suspended.
func (s *Scheduler) TakeExecRequests() []*ExecSpec {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs := s.execReq
	s.execReq = nil
	return reqs
}

// TakeTerminalRequests returns and clears any terminal control ops queued
// this drain, for the Terminal Controller to apply in order.
func (s *Scheduler) TakeTerminalRequests() []Cmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	reqs := s.termReq
	s.termReq = nil
	return reqs
}

// registerTimer pushes entry onto the shared timer heap. Every Sleep/Tick/
// Every/Delay registration and every UseInterval tick goes through this one
// choke point so P8's "exactly one scheduler thread" holds regardless of
// how many timers are live.
func (s *Scheduler) registerTimer(entry *timerEntry) {
	s.mu.Lock()
	heap.Push(&s.timers, entry)
	s.mu.Unlock()
}

// Drain is App Runner step 1: run every queued synchronous command, spawn
// workers for async ones, and promote any timers whose deadline has
// passed into the queue for the *next* Drain (so an AsyncCmd or DelayCmd
// result never jumps the synchronous queue mid-drain). A repeating
// (CmdEvery) entry is rescheduled from its own deadline, not "now", so a
// burst of late Drains doesn't speed up its effective period.
func (s *Scheduler) Drain() {
	now := time.Now()

	s.mu.Lock()
	var fired []*timerEntry
	for s.timers.Len() > 0 && !s.timers[0].at.After(now) {
		entry := heap.Pop(&s.timers).(*timerEntry)
		fired = append(fired, entry)
		stopped := entry.cancelled != nil && entry.cancelled.Load()
		if entry.repeat > 0 && !stopped {
			next := entry.at.Add(entry.repeat)
			for !next.After(now) {
				next = next.Add(entry.repeat)
			}
			heap.Push(&s.timers, &timerEntry{
				at: next, mapper: entry.mapper, repeat: entry.repeat,
				callback: entry.callback, cancelled: entry.cancelled,
			})
		}
	}
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, entry := range fired {
		if entry.cancelled != nil && entry.cancelled.Load() {
			continue
		}
		if entry.callback != nil {
			entry.callback(entry.at)
			continue
		}
		result := entry.cmd
		if entry.mapper != nil {
			result = entry.mapper(entry.at)
		}
		if result.Kind != CmdNone {
			s.run(result)
		}
		if entry.onFire != nil {
			entry.onFire(result)
		}
	}

	for _, cmd := range pending {
		s.run(cmd)
	}
}

// RegisterInterval registers fn to run every period on the scheduler's
// shared timer thread (P8) and returns a cancel func that unregisters it -
// UseInterval's building block (spec: "use_interval registers a task on
// the shared scheduler and unregisters it on cleanup"), used directly
// rather than through a Cmd since it has no message to dispatch of its
// own, just a side-effecting callback.
func (s *Scheduler) RegisterInterval(period time.Duration, fn func(fired time.Time)) (cancel func()) {
	if period <= 0 || fn == nil {
		return func() {}
	}
	cancelled := new(atomic.Bool)
	s.registerTimer(&timerEntry{at: time.Now().Add(period), repeat: period, callback: fn, cancelled: cancelled})
	return func() { cancelled.Store(true) }
}

func (s *Scheduler) run(cmd Cmd) {
	switch cmd.Kind {
	case CmdNone:
	case CmdBatch:
		// Fan out: queue every sub-command for the *next* Drain instead of
		// recursing into s.run inline, so none of them can block on or
		// observe another batch member's progress - see CmdSequence for
		// the awaiting counterpart.
		for _, c := range cmd.Batch {
			s.Dispatch(c)
		}
	case CmdSequence:
		s.runSequence(cmd.Batch)
	case CmdCallback:
		if cmd.Callback != nil {
			cmd.Callback()
		}
	case CmdAsync:
		s.runAsync(cmd.Async, nil)
	case CmdDelay:
		then := NoCmd
		if cmd.Then != nil {
			then = *cmd.Then
		}
		s.registerTimer(&timerEntry{at: time.Now().Add(cmd.After), cmd: then})
	case CmdSleep:
		s.registerTimer(&timerEntry{at: time.Now().Add(cmd.After)})
	case CmdTick:
		s.registerTimer(&timerEntry{at: time.Now().Add(cmd.After), mapper: cmd.Mapper})
	case CmdEvery:
		s.registerTimer(&timerEntry{at: time.Now().Add(cmd.After), mapper: cmd.Mapper, repeat: cmd.After})
	case CmdAndThen:
		s.runAndThen(cmd)
	case CmdExec:
		s.mu.Lock()
		s.execReq = append(s.execReq, cmd.Exec)
		s.mu.Unlock()
	case CmdTerminal:
		s.mu.Lock()
		s.termReq = append(s.termReq, cmd)
		s.mu.Unlock()
	case CmdQuit:
		s.mu.Lock()
		s.quit = true
		s.mu.Unlock()
	}
}

// runSequence runs cmds one at a time, waiting for each to genuinely
// complete - timer fire, async worker return, or synchronous execution -
// before starting the next. This is the property (spec §4.6, "Sequence
// awaits each step") that distinguishes it from Batch's concurrent fan-out.
func (s *Scheduler) runSequence(cmds []Cmd) {
	if len(cmds) == 0 {
		return
	}
	s.runStep(cmds[0], func(Cmd) { s.runSequence(cmds[1:]) })
}

// runAndThen runs cmd.AndThenCmd and, once it completes, dispatches
// cmd.AndThenFollow applied to its result (spec §4.6, "AndThen invokes the
// follow with the first cmd's result").
func (s *Scheduler) runAndThen(cmd Cmd) {
	if cmd.AndThenCmd == nil {
		return
	}
	s.runStep(*cmd.AndThenCmd, func(result Cmd) {
		if cmd.AndThenFollow != nil {
			s.Dispatch(cmd.AndThenFollow(result))
		}
	})
}

// runStep runs one command and calls onDone once it has completed, with
// whatever command that step itself produced (NoCmd for kinds with no
// natural result): immediately for synchronous kinds, on worker return for
// Async, and on timer fire for Sleep/Tick/Delay. Sequence and AndThen both
// chain through this - it is the one place "did this command finish" is
// defined.
func (s *Scheduler) runStep(cmd Cmd, onDone func(result Cmd)) {
	switch cmd.Kind {
	case CmdAsync:
		s.runAsync(cmd.Async, onDone)
	case CmdDelay:
		then := NoCmd
		if cmd.Then != nil {
			then = *cmd.Then
		}
		s.registerTimer(&timerEntry{at: time.Now().Add(cmd.After), cmd: then, onFire: onDone})
	case CmdSleep:
		s.registerTimer(&timerEntry{at: time.Now().Add(cmd.After), onFire: onDone})
	case CmdTick:
		s.registerTimer(&timerEntry{at: time.Now().Add(cmd.After), mapper: cmd.Mapper, onFire: onDone})
	case CmdSequence:
		s.runSequenceStep(cmd.Batch, onDone)
	default:
		s.run(cmd)
		if onDone != nil {
			onDone(NoCmd)
		}
	}
}

func (s *Scheduler) runSequenceStep(cmds []Cmd, onDone func(result Cmd)) {
	if len(cmds) == 0 {
		if onDone != nil {
			onDone(NoCmd)
		}
		return
	}
	s.runStep(cmds[0], func(Cmd) { s.runSequenceStep(cmds[1:], onDone) })
}

// runAsync runs fn on the worker pool (bounded by the scheduler's
// semaphore), dispatches its result, and - when onDone is set (Sequence/
// AndThen chaining) - reports that same result once the worker returns.
func (s *Scheduler) runAsync(fn func() Cmd, onDone func(result Cmd)) {
	if fn == nil {
		if onDone != nil {
			onDone(NoCmd)
		}
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.sem.Acquire(context.Background(), 1); err != nil {
			s.mu.Lock()
			degradeOnce(&s.degraded, ErrAsyncRuntimeUnavailable, "async task pool semaphore acquire failed; command dropped")
			s.mu.Unlock()
			if onDone != nil {
				onDone(NoCmd)
			}
			return
		}
		defer s.sem.Release(1)
		result := fn()
		s.Dispatch(result)
		if onDone != nil {
			onDone(result)
		}
	}()
}

// Stop waits for outstanding async workers to finish. Called once, when
// the owning App exits, so a lingering goroutine never touches a torn-down
// RuntimeContext.
func (s *Scheduler) Stop() {
	s.wg.Wait()
}
