package scanline

import "time"

// Expand walks an authored element tree and replaces every functional
// component node (Element.Render != nil) with its rendered output, calling
// each component exactly once per frame inside a hook frame keyed by the
// component's NodeKey. The result contains only intrinsics and text leaves
// - the shape the reconciler and layout engine operate on.
func Expand(ctx *RuntimeContext, root Element) Element {
	return expandNode(ctx, root, RootNodeKey)
}

func expandNode(ctx *RuntimeContext, el Element, key NodeKey) Element {
	if el.Render != nil {
		frame := ctx.pushHookFrame(key)
		_ = frame
		result := el.Render(ctx)
		// A component may itself return another component's element
		// (higher-order components); expand under the same key so its
		// hook identity is the outer component's, not a child's. The
		// frame stays pushed through this recursive expansion (popped
		// only after) so a UseContextProvider call made during Render is
		// still visible to UseContext calls made by descendants as they
		// expand.
		expanded := expandNode(ctx, result, key)
		ctx.popHookFrame()
		return expanded
	}

	if el.IsText || len(el.Children) == 0 {
		return el
	}

	newChildren := make([]Element, len(el.Children))
	for i, child := range el.Children {
		newChildren[i] = expandNode(ctx, child, childNodeKey(key, child, i))
	}
	el.Children = newChildren
	return el
}

func depsEqual(a, b []any) bool {
	if a == nil || b == nil {
		return false // nil deps ("run every render") never compares equal
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// UseState returns the current value of a piece of component-local state
// and a setter that schedules it for the next render. The slot survives
// across frames as long as the component keeps being called at the same
// NodeKey; it is torn down (no cleanup needed, state has none) once the
// component stops being rendered.
func UseState[T any](ctx *RuntimeContext, initial T) (T, func(T)) {
	slot, fresh := ctx.nextSlot(hookState)
	if fresh {
		slot.value = initial
	}
	setter := func(v T) {
		ctx.mu.Lock()
		slot.value = v
		ctx.mu.Unlock()
		ctx.MarkDirty()
	}
	ctx.mu.Lock()
	current, _ := slot.value.(T)
	ctx.mu.Unlock()
	return current, setter
}

// UseRef returns a stable pointer to a mutable cell that does not trigger
// a re-render when written - the escape hatch for values a component needs
// to remember without them being part of its rendered state.
type Ref[T any] struct{ Current T }

func UseRef[T any](ctx *RuntimeContext, initial T) *Ref[T] {
	slot, fresh := ctx.nextSlot(hookRef)
	if fresh {
		slot.value = &Ref[T]{Current: initial}
	}
	return slot.value.(*Ref[T])
}

// UseEffect queues fn to run after this frame's render, but only when deps
// changed since the last render (or on first mount, or every render when
// deps is nil). If fn returns a non-nil cleanup, that cleanup runs before
// the next invocation and again on unmount - the same Fresh -> Active
// (cleanup?) -> ... -> Dead lifecycle the hook-slot state machine names.
func UseEffect(ctx *RuntimeContext, fn func() func(), deps []any) {
	slot, fresh := ctx.nextSlot(hookEffect)
	shouldRun := fresh || !depsEqual(slot.deps, deps)
	slot.deps = deps
	if !shouldRun {
		return
	}
	prevCleanup := slot.cleanup
	ctx.queueEffect(func() {
		if prevCleanup != nil {
			prevCleanup()
		}
		slot.cleanup = fn()
	})
}

// UseLayoutEffect is UseEffect but flushed synchronously between
// ComputeLayout and renderer.Render (app.go's render step), ahead of
// UseEffect's own flush - for effects that need this frame's measured
// sizes/positions before the user ever sees it paint, e.g. auto-scrolling
// a viewport so a newly-focused row lands on screen.
func UseLayoutEffect(ctx *RuntimeContext, fn func() func(), deps []any) {
	slot, fresh := ctx.nextSlot(hookLayoutEffect)
	shouldRun := fresh || !depsEqual(slot.deps, deps)
	slot.deps = deps
	if !shouldRun {
		return
	}
	prevCleanup := slot.cleanup
	ctx.queueLayoutEffect(func() {
		if prevCleanup != nil {
			prevCleanup()
		}
		slot.cleanup = fn()
	})
}

// UseMemo recomputes and caches compute() only when deps changed since the
// last render.
func UseMemo[T any](ctx *RuntimeContext, compute func() T, deps []any) T {
	slot, fresh := ctx.nextSlot(hookMemo)
	if fresh || !depsEqual(slot.deps, deps) {
		slot.value = compute()
		slot.deps = deps
	}
	return slot.value.(T)
}

// UseCallback returns the same function value across renders as long as
// deps are unchanged, so it can be compared/passed to memoized children
// without forcing them to re-render every frame.
func UseCallback[T any](ctx *RuntimeContext, fn T, deps []any) T {
	slot, fresh := ctx.nextSlot(hookCallback)
	if fresh || !depsEqual(slot.deps, deps) {
		slot.value = fn
		slot.deps = deps
	}
	return slot.value.(T)
}

// UseInput registers handler to receive key presses for this frame (spec
// §4.8's flat, registration-ordered input handler list). Call
// unconditionally every render - the list is rebuilt from scratch each
// frame, so a component that stops calling UseInput simply stops
// receiving keys, with nothing to explicitly unregister. It still claims a
// hook slot (a zero-sized hookEvent marker) purely so a conditional call
// is caught by the P1 ordering check the same way every other hook is.
func UseInput(ctx *RuntimeContext, handler func(key string) bool) {
	ctx.nextSlot(hookEvent)
	ctx.registerInputHandler(handler)
}

// UseMouse registers handler to receive mouse events for this frame.
func UseMouse(ctx *RuntimeContext, handler func(ev MouseEvent) bool) {
	ctx.nextSlot(hookEvent)
	ctx.registerMouseHandler(handler)
}

// UsePaste registers handler to receive paste events for this frame.
func UsePaste(ctx *RuntimeContext, handler func(ev PasteEvent) bool) {
	ctx.nextSlot(hookEvent)
	ctx.registerPasteHandler(handler)
}

// UseDebounce returns the last value that has been stable for at least
// delay: it changes only after value stops changing for that long. Built
// on UseEffect + UseState with a time.AfterFunc timer that is stopped and
// started again whenever value or delay changes.
func UseDebounce[T comparable](ctx *RuntimeContext, value T, delay time.Duration) T {
	debounced, setDebounced := UseState(ctx, value)
	timer := UseRef[*time.Timer](ctx, nil)

	UseEffect(ctx, func() func() {
		if timer.Current != nil {
			timer.Current.Stop()
		}
		timer.Current = time.AfterFunc(delay, func() {
			setDebounced(value)
		})
		return func() {
			if timer.Current != nil {
				timer.Current.Stop()
			}
		}
	}, []any{value, delay})

	return debounced
}

// UseInterval calls fn every interval for as long as the component stays
// mounted, stopping automatically when interval <= 0 or the component
// unmounts. It is the ticking primitive behind animations and polling
// widgets - the spec's supplemented "use_interval" hook. Registration runs
// on the scheduler's shared timer thread (P8: one scheduler thread, no
// per-timer goroutine) rather than a dedicated time.Ticker per instance.
func UseInterval(ctx *RuntimeContext, fn func(), interval time.Duration) {
	fnRef := UseRef(ctx, fn)
	fnRef.Current = fn

	UseEffect(ctx, func() func() {
		if interval <= 0 {
			return nil
		}
		return ctx.scheduler.RegisterInterval(interval, func(time.Time) {
			ctx.scheduler.Dispatch(CallbackCmd(func() {
				fnRef.Current()
			}))
		})
	}, []any{interval})
}
