// Logging is the one ambient concern the teacher (`goli`) never modeled -
// diagnostics there go straight to fmt/io.Writer. spec §7's Loud/Recover/
// Degrade error policies need structured diagnostics, so this wires
// log/slog with github.com/lmittmann/tint as the handler: colored,
// human-readable lines on stderr, never the managed stdout the renderer
// owns.
package scanline

import (
	"log/slog"
	"os"
	"sync"

	"github.com/lmittmann/tint"
)

var (
	logMu sync.RWMutex
	log   = newDefaultLogger()
)

func newDefaultLogger() *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: slog.LevelInfo,
	}))
}

// Log returns the package-level logger, the way the teacher exposes a
// swappable package-level Global runtime pointer for tests.
func Log() *slog.Logger {
	logMu.RLock()
	defer logMu.RUnlock()
	return log
}

// SetLogger replaces the package-level logger - tests redirect it to a
// buffer the same way teacher's Reset() rebuilds Global for isolation.
func SetLogger(l *slog.Logger) {
	logMu.Lock()
	defer logMu.Unlock()
	log = l
}

// ResetLogger restores the default tint-on-stderr logger.
func ResetLogger() {
	SetLogger(newDefaultLogger())
}
