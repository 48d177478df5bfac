package scanline

import (
	"sync"
	"sync/atomic"
)

// AppId identifies one running App instance. Ids are allocated from a
// small recycle pool rather than a monotonic counter: long-lived processes
// that start and stop many short apps (tests, REPL-style tools) should not
// exhaust the int32 id space, and a recycled id is safe because an AppId is never
// compared across a runtime's lifetime - only used as a map key and a log
// field while the runtime that owns it is alive.
type AppId int32

var (
	appIdPoolMu   sync.Mutex
	appIdFree     []AppId
	appIdNextFree AppId = 1
)

// allocateAppId pops a recycled id, or mints a new one when the pool is empty.
func allocateAppId() AppId {
	appIdPoolMu.Lock()
	defer appIdPoolMu.Unlock()
	if n := len(appIdFree); n > 0 {
		id := appIdFree[n-1]
		appIdFree = appIdFree[:n-1]
		return id
	}
	id := appIdNextFree
	if id <= 0 {
		panicLoud(ErrIdCounterExhausted, "", "AppId counter wrapped around int32")
	}
	appIdNextFree++
	return id
}

func releaseAppId(id AppId) {
	appIdPoolMu.Lock()
	defer appIdPoolMu.Unlock()
	appIdFree = append(appIdFree, id)
}

// hookKind distinguishes the state a hook slot is carrying. nextSlot checks
// it on every revisit and panics when a slot comes back as another kind,
// which is how an out-of-order hook call is caught (P1).
type hookKind int

const (
	hookState hookKind = iota
	hookEffect
	hookLayoutEffect
	hookMemo
	hookCallback
	hookRef
	hookDebounce
	hookInterval
	hookContext
	// hookEvent is a zero-sized marker slot for UseInput/UseMouse/UsePaste
	// (hooks.go): those hooks don't carry persistent state of their own,
	// but still must occupy an ordinal slot so a conditional call is caught
	// by the same P1 ordering check as every other hook.
	hookEvent
)

// hookSlot is one ordinal slot within a component instance's hook frame.
// Slots progress Fresh -> Active(cleanup?) -> ... -> Dead, matched purely
// by call order within the component, the same invariant React hooks rely
// on: a component must call hooks in the same order every render.
type hookSlot struct {
	kind    hookKind
	value   any
	deps    []any
	cleanup func()
}

// hookFrame is the persistent hook-slot list for one component instance,
// identified by the NodeKey of the Element whose Render produced it.
type hookFrame struct {
	key      NodeKey
	slots    []*hookSlot
	cursor   int // reset to 0 at the start of every render of this instance
	mounted  bool
	lastSeen uint64 // frame counter this instance was last rendered in

	// contextValues holds this frame's UseContextProvider values, keyed by
	// *Context[T] identity. Reset every render (pushHookFrame) - a provider
	// must be called every render it wants its value visible, like any
	// other hook - and read by UseContext walking ctx.frameStack outward.
	contextValues map[any]any
}

// RuntimeContext is the per-App state threaded through every Render call:
// hook storage, the reconciler, focus/input/measure/theme managers and the
// command scheduler. Exactly one exists per running App (see I1) - nothing
// here is a package-level singleton, unlike the teacher's Manager().
type RuntimeContext struct {
	id AppId

	mu           sync.Mutex
	hookFrames   map[NodeKey]*hookFrame
	frameStack   []*hookFrame
	frameCounter uint64

	reconciler *Reconciler
	focus      *FocusManager
	theme      *Theme
	measure    *MeasureManager
	scheduler  *Scheduler

	// pendingEffects collects effects queued to run after the current
	// render completes (the "run effects" step of the App Runner loop).
	pendingEffects []func()

	// pendingLayoutEffects collects UseLayoutEffect callbacks, flushed by
	// the App Runner between ComputeLayout and renderer.Render so they can
	// read measured geometry before the frame paints (spec's open question
	// on use_layout_effect timing - this implementation runs it pre-paint).
	pendingLayoutEffects []func()

	// inputHandlers/mouseHandlers/pasteHandlers are flat, registration-
	// ordered handler lists cleared every frame (I4, spec §4.8): a
	// component re-registers its handler every render via UseInput/
	// UseMouse/UsePaste, so a handler whose component stopped rendering
	// simply isn't re-added - no explicit unregister call is needed.
	inputHandlers []func(key string) bool
	mouseHandlers []func(ev MouseEvent) bool
	pasteHandlers []func(ev PasteEvent) bool

	// screenReader is the screen-reader flag, read by components through
	// ScreenReaderMode. The built-in widgets do not change how they render
	// when it is set.
	screenReader atomic.Bool

	// dirty coalesces any number of state changes between two renders into
	// at most one render (P5, spec's "single dirty atomic flag"). UseState
	// setters and Dispatch* call MarkDirty; the App Runner checks and
	// clears it once per tick.
	dirty atomic.Bool
}

// MarkDirty flags that component state has changed since the last render,
// so the App Runner's next tick must render again.
func (ctx *RuntimeContext) MarkDirty() { ctx.dirty.Store(true) }

// ConsumeDirty reports whether the dirty flag was set and clears it -
// "test and clear" so a render can't be lost to a race between a setter
// and the App Runner reading the flag mid-tick.
func (ctx *RuntimeContext) ConsumeDirty() bool { return ctx.dirty.Swap(false) }

// NewRuntimeContext creates a fresh, independent runtime for one App.
func NewRuntimeContext() *RuntimeContext {
	return &RuntimeContext{
		id:         allocateAppId(),
		hookFrames: make(map[NodeKey]*hookFrame),
		reconciler: NewReconciler(),
		focus:      NewFocusManager(),
		theme:      NewTheme(DefaultPalette),
		measure:    NewMeasureManager(),
		scheduler:  NewScheduler(),
	}
}

// Close releases the runtime's AppId and stops its scheduler. Call once,
// when the owning App exits.
func (ctx *RuntimeContext) Close() {
	ctx.scheduler.Stop()
	releaseAppId(ctx.id)
}

// Id returns this runtime's AppId.
func (ctx *RuntimeContext) Id() AppId { return ctx.id }

// SetScreenReaderMode toggles screen-reader-friendly rendering.
func (ctx *RuntimeContext) SetScreenReaderMode(on bool) { ctx.screenReader.Store(on) }

// ScreenReaderMode reports whether screen-reader-friendly rendering is on.
func (ctx *RuntimeContext) ScreenReaderMode() bool { return ctx.screenReader.Load() }

// Focus returns this runtime's focus manager.
func (ctx *RuntimeContext) Focus() *FocusManager { return ctx.focus }

// Theme returns this runtime's theme.
func (ctx *RuntimeContext) Theme() *Theme { return ctx.theme }

// Measure returns this runtime's measure manager.
func (ctx *RuntimeContext) Measure() *MeasureManager { return ctx.measure }

// Scheduler returns this runtime's command executor.
func (ctx *RuntimeContext) Scheduler() *Scheduler { return ctx.scheduler }

// beginFrame resets the hook-frame visitation bookkeeping and the
// per-frame input/mouse/paste handler lists for a new render (I4).
func (ctx *RuntimeContext) beginFrame() {
	ctx.mu.Lock()
	ctx.frameCounter++
	ctx.inputHandlers = nil
	ctx.mouseHandlers = nil
	ctx.pasteHandlers = nil
	ctx.mu.Unlock()
}

// registerInputHandler appends a key handler for this frame, in call order.
func (ctx *RuntimeContext) registerInputHandler(h func(key string) bool) {
	ctx.mu.Lock()
	ctx.inputHandlers = append(ctx.inputHandlers, h)
	ctx.mu.Unlock()
}

// registerMouseHandler appends a mouse handler for this frame, in call order.
func (ctx *RuntimeContext) registerMouseHandler(h func(ev MouseEvent) bool) {
	ctx.mu.Lock()
	ctx.mouseHandlers = append(ctx.mouseHandlers, h)
	ctx.mu.Unlock()
}

// registerPasteHandler appends a paste handler for this frame, in call order.
func (ctx *RuntimeContext) registerPasteHandler(h func(ev PasteEvent) bool) {
	ctx.mu.Lock()
	ctx.pasteHandlers = append(ctx.pasteHandlers, h)
	ctx.mu.Unlock()
}

// DispatchKey runs key through the registered input handlers in
// registration order, then the focus manager (Tab navigation, the focused
// element, the global key handler), stopping at the first consumer.
func (ctx *RuntimeContext) DispatchKey(key string) bool {
	ctx.mu.Lock()
	handlers := append([]func(key string) bool(nil), ctx.inputHandlers...)
	ctx.mu.Unlock()
	for _, h := range handlers {
		if h(key) {
			return true
		}
	}
	return ctx.focus.HandleKey(key)
}

// DispatchMouse runs ev through the registered mouse handlers in
// registration order, stopping at the first consumer.
func (ctx *RuntimeContext) DispatchMouse(ev MouseEvent) bool {
	ctx.mu.Lock()
	handlers := append([]func(ev MouseEvent) bool(nil), ctx.mouseHandlers...)
	ctx.mu.Unlock()
	for _, h := range handlers {
		if h(ev) {
			return true
		}
	}
	return false
}

// DispatchPaste runs ev through the registered paste handlers in
// registration order, stopping at the first consumer.
func (ctx *RuntimeContext) DispatchPaste(ev PasteEvent) bool {
	ctx.mu.Lock()
	handlers := append([]func(ev PasteEvent) bool(nil), ctx.pasteHandlers...)
	ctx.mu.Unlock()
	for _, h := range handlers {
		if h(ev) {
			return true
		}
	}
	return false
}

// endFrame sweeps hook frames that were not visited this render, running
// their cleanups (Active -> Dead transition for every slot) and dropping
// them - this is how an unmounted component's effects get torn down.
func (ctx *RuntimeContext) endFrame() {
	ctx.mu.Lock()
	current := ctx.frameCounter
	var dead []NodeKey
	for key, frame := range ctx.hookFrames {
		if frame.lastSeen != current {
			dead = append(dead, key)
		}
	}
	for _, key := range dead {
		frame := ctx.hookFrames[key]
		delete(ctx.hookFrames, key)
		// Reverse order: a later hook's cleanup may depend on state an
		// earlier hook in the same component still owns (e.g. a ref a
		// later effect captured), the same unwind order components mount
		// and unmount their own children in.
		for i := len(frame.slots) - 1; i >= 0; i-- {
			if slot := frame.slots[i]; slot.cleanup != nil {
				slot.cleanup()
			}
		}
	}
	ctx.mu.Unlock()
}

// pushHookFrame enters the hook frame for the component instance at key,
// creating it on first mount, and resets its cursor to 0 so the component's
// hooks are matched by call order from the top.
func (ctx *RuntimeContext) pushHookFrame(key NodeKey) *hookFrame {
	ctx.mu.Lock()
	frame, ok := ctx.hookFrames[key]
	if !ok {
		frame = &hookFrame{key: key}
		ctx.hookFrames[key] = frame
	}
	frame.cursor = 0
	frame.mounted = true
	frame.lastSeen = ctx.frameCounter
	frame.contextValues = nil
	ctx.frameStack = append(ctx.frameStack, frame)
	ctx.mu.Unlock()
	return frame
}

// popHookFrame leaves the hook frame pushed by the matching pushHookFrame.
// It also closes out P1: if this render's cursor stopped short of the
// slot count a previous render established, some hook near the end of the
// component was skipped - a conditional hook call just as real as the
// kind-mismatch case nextSlot already catches.
func (ctx *RuntimeContext) popHookFrame() {
	ctx.mu.Lock()
	frame := ctx.frameStack[len(ctx.frameStack)-1]
	ctx.frameStack = ctx.frameStack[:len(ctx.frameStack)-1]
	cursor, slots := frame.cursor, len(frame.slots)
	ctx.mu.Unlock()
	if cursor < slots {
		panicLoud(ErrHookOrderViolation, frame.key,
			"fewer hooks called than the previous render - a hook was called conditionally")
	}
}

// currentFrame returns the hook frame for the component currently being
// rendered. It panics when called outside of a component's Render, the
// same way React hooks refuse to run outside a component body - calling a
// hook here without a frame is a programming error, not a runtime one.
func (ctx *RuntimeContext) currentFrame() *hookFrame {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if len(ctx.frameStack) == 0 {
		panic("scanline: hook called outside of component render")
	}
	return ctx.frameStack[len(ctx.frameStack)-1]
}

// nextSlot returns the slot at the current cursor for the active frame,
// creating it with the given kind on first visit (Fresh) and advancing the
// cursor so the next hook call in this render gets the next slot.
func (ctx *RuntimeContext) nextSlot(kind hookKind) (*hookSlot, bool) {
	frame := ctx.currentFrame()
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	fresh := frame.cursor >= len(frame.slots)
	if fresh {
		frame.slots = append(frame.slots, &hookSlot{kind: kind})
	}
	slot := frame.slots[frame.cursor]
	if !fresh && slot.kind != kind {
		// defer ctx.mu.Unlock() above still fires during this panic's unwind.
		panicLoud(ErrHookOrderViolation, frame.key,
			"hook call order changed between renders - a hook was called conditionally")
	}
	frame.cursor++
	return slot, fresh
}

// queueEffect appends fn to the effects run after the current render's
// expansion completes (App Runner step 5, "run effects").
func (ctx *RuntimeContext) queueEffect(fn func()) {
	ctx.mu.Lock()
	ctx.pendingEffects = append(ctx.pendingEffects, fn)
	ctx.mu.Unlock()
}

// flushEffects runs and clears all effects queued this frame.
func (ctx *RuntimeContext) flushEffects() {
	ctx.mu.Lock()
	pending := ctx.pendingEffects
	ctx.pendingEffects = nil
	ctx.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// queueLayoutEffect appends fn to the layout effects run between
// ComputeLayout and renderer.Render (app.go), ahead of flushEffects.
func (ctx *RuntimeContext) queueLayoutEffect(fn func()) {
	ctx.mu.Lock()
	ctx.pendingLayoutEffects = append(ctx.pendingLayoutEffects, fn)
	ctx.mu.Unlock()
}

// flushLayoutEffects runs and clears all layout effects queued this frame.
func (ctx *RuntimeContext) flushLayoutEffects() {
	ctx.mu.Lock()
	pending := ctx.pendingLayoutEffects
	ctx.pendingLayoutEffects = nil
	ctx.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// Context identifies one provider/consumer channel implicitly threaded
// through the component tree - the same role React's createContext plays:
// a deeply nested component can read a value an ancestor provided without
// every component in between forwarding it as a prop. Identity is the
// *Context[T] pointer itself, so each call to CreateContext mints a
// distinct channel even if T is the same type.
type Context[T any] struct {
	fallback T
}

// CreateContext returns a new Context; a consumer with no enclosing
// UseContextProvider sees fallback.
func CreateContext[T any](fallback T) *Context[T] {
	return &Context[T]{fallback: fallback}
}

// UseContextProvider makes value visible to UseContext(c) calls made by
// this component's descendants for the remainder of this render. It must
// be called unconditionally every render, like any other hook, and does
// not persist past the render that called it - expandNode keeps the
// provider's hook frame on ctx.frameStack for the duration of its
// subtree's expansion so descendants can see it.
func UseContextProvider[T any](ctx *RuntimeContext, c *Context[T], value T) {
	ctx.nextSlot(hookContext)
	frame := ctx.currentFrame()
	ctx.mu.Lock()
	if frame.contextValues == nil {
		frame.contextValues = make(map[any]any)
	}
	frame.contextValues[c] = value
	ctx.mu.Unlock()
}

// UseContext returns the value set by the nearest ancestor's
// UseContextProvider(ctx, c, ...) call, or c's fallback if none provided one.
func UseContext[T any](ctx *RuntimeContext, c *Context[T]) T {
	ctx.nextSlot(hookContext)
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	for i := len(ctx.frameStack) - 1; i >= 0; i-- {
		if v, ok := ctx.frameStack[i].contextValues[c]; ok {
			return v.(T)
		}
	}
	return c.fallback
}
