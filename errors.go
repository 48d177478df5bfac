// Errors implement spec §7's taxonomy: Loud kinds panic with a typed
// *RuntimeError the App Runner recovers at the render-call boundary;
// Recover kinds return a degraded value plus a bumped counter; Degrade
// kinds log once, guarded by a per-site bool flag (degradeOnce); Surface kinds return a
// plain error up through Run(). No third-party error package is warranted
// for a closed, small taxonomy like this one.
package scanline

import (
	"errors"
	"fmt"
)

// RuntimeErrorKind names one of spec §7's error kinds.
type RuntimeErrorKind int

const (
	ErrHookOrderViolation RuntimeErrorKind = iota
	ErrReconcileInconsistency
	ErrLayoutInfeasible
	ErrSignalLockPoisoned
	ErrAsyncRuntimeUnavailable
	ErrTerminalIO
	ErrIdCounterExhausted
	ErrChildProcessExec
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case ErrHookOrderViolation:
		return "hook-order-violation"
	case ErrReconcileInconsistency:
		return "reconcile-inconsistency"
	case ErrLayoutInfeasible:
		return "layout-infeasible"
	case ErrSignalLockPoisoned:
		return "lock-poisoned"
	case ErrAsyncRuntimeUnavailable:
		return "async-runtime-unavailable"
	case ErrTerminalIO:
		return "terminal-io"
	case ErrIdCounterExhausted:
		return "id-counter-exhausted"
	case ErrChildProcessExec:
		return "child-process-exec"
	default:
		return "unknown"
	}
}

// RuntimeError carries a Kind, the component NodeKey it happened in (if
// any), and the wrapped cause. Loud kinds are panicked as *RuntimeError;
// Surface kinds are returned as plain errors wrapping one.
type RuntimeError struct {
	Kind      RuntimeErrorKind
	Component NodeKey
	Cause     error
}

func (e *RuntimeError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("scanline: %s in %s: %v", e.Kind, e.Component, e.Cause)
	}
	return fmt.Sprintf("scanline: %s: %v", e.Kind, e.Cause)
}

func (e *RuntimeError) Unwrap() error { return e.Cause }

// NewRuntimeError builds a RuntimeError, wrapping message as its cause.
func NewRuntimeError(kind RuntimeErrorKind, component NodeKey, message string) *RuntimeError {
	return &RuntimeError{Kind: kind, Component: component, Cause: errors.New(message)}
}

// panicLoud is the Loud policy: abort the current render by panicking with
// a typed *RuntimeError the App Runner's render-call recover() catches.
func panicLoud(kind RuntimeErrorKind, component NodeKey, message string) {
	panic(NewRuntimeError(kind, component, message))
}

// degradeOnce logs a one-time warning via Log().Warn: it does nothing when
// *already is true, and otherwise sets *already and logs. Callers own the
// flag and guard it with their own lock.
func degradeOnce(already *bool, kind RuntimeErrorKind, message string) {
	if *already {
		return
	}
	*already = true
	Log().Warn("degraded", "kind", kind.String(), "message", message)
}
