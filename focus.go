package scanline

import "sync"

// Focusable is the interface for any focusable element (input, button, etc).
type Focusable interface {
	Focused() bool
	Focus()
	Blur()
	Dispose()
	HandleKey(key string) bool
	SetFocused(focused bool)
}

// FocusManager manages focus state for terminal UI components. Unlike the
// teacher's package-level Manager(), one FocusManager belongs to exactly
// one RuntimeContext (see I1: ids, and by extension focus rings, are
// instance-local, not process-global).
type FocusManager struct {
	mu               sync.RWMutex
	currentFocused   Focusable
	registered       []Focusable
	globalKeyHandler func(key string) bool
}

// NewFocusManager creates an empty, unshared focus ring.
func NewFocusManager() *FocusManager {
	return &FocusManager{registered: make([]Focusable, 0)}
}

// Register adds a focusable to the manager.
func (m *FocusManager) Register(f Focusable) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = append(m.registered, f)
}

// Unregister removes a focusable from the manager.
func (m *FocusManager) Unregister(f Focusable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, registered := range m.registered {
		if registered == f {
			m.registered = append(m.registered[:i], m.registered[i+1:]...)
			break
		}
	}

	if m.currentFocused == f {
		m.currentFocused = nil
	}
}

// RequestFocus focuses a specific focusable.
func (m *FocusManager) RequestFocus(f Focusable) {
	m.mu.Lock()
	current := m.currentFocused
	if current == f {
		m.mu.Unlock()
		return
	}
	m.currentFocused = f
	m.mu.Unlock()

	if current != nil {
		current.SetFocused(false)
	}
	f.SetFocused(true)
}

// RequestBlur blurs a specific focusable.
func (m *FocusManager) RequestBlur(f Focusable) {
	m.mu.Lock()
	if m.currentFocused != f {
		m.mu.Unlock()
		return
	}
	m.currentFocused = nil
	m.mu.Unlock()
	f.SetFocused(false)
}

// Current returns the currently focused element.
func (m *FocusManager) Current() Focusable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentFocused
}

// Next focuses the next element in registration order.
func (m *FocusManager) Next() {
	m.mu.RLock()
	focusables := make([]Focusable, len(m.registered))
	copy(focusables, m.registered)
	current := m.currentFocused
	m.mu.RUnlock()

	if len(focusables) == 0 {
		return
	}
	if current == nil {
		focusables[0].Focus()
		return
	}

	currentIndex := indexOfFocusable(focusables, current)
	nextIndex := (currentIndex + 1) % len(focusables)
	focusables[nextIndex].Focus()
}

// Prev focuses the previous element in registration order.
func (m *FocusManager) Prev() {
	m.mu.RLock()
	focusables := make([]Focusable, len(m.registered))
	copy(focusables, m.registered)
	current := m.currentFocused
	m.mu.RUnlock()

	if len(focusables) == 0 {
		return
	}
	if current == nil {
		focusables[len(focusables)-1].Focus()
		return
	}

	currentIndex := indexOfFocusable(focusables, current)
	prevIndex := (currentIndex - 1 + len(focusables)) % len(focusables)
	focusables[prevIndex].Focus()
}

func indexOfFocusable(focusables []Focusable, target Focusable) int {
	for i, f := range focusables {
		if f == target {
			return i
		}
	}
	return -1
}

// HandleKey routes a keypress to the focused element. Handles Tab/Shift+Tab
// for focus navigation. Returns true if the key was consumed.
func (m *FocusManager) HandleKey(key string) bool {
	if key == Tab {
		m.Next()
		return true
	}
	if key == ShiftTab {
		m.Prev()
		return true
	}

	current := m.Current()
	if current != nil && current.HandleKey(key) {
		return true
	}

	m.mu.RLock()
	handler := m.globalKeyHandler
	m.mu.RUnlock()
	if handler != nil {
		return handler(key)
	}
	return false
}

// SetGlobalKeyHandler sets a handler for app-wide keyboard shortcuts,
// called for keys no focused element consumes. Returns a cleanup function.
func (m *FocusManager) SetGlobalKeyHandler(handler func(key string) bool) func() {
	m.mu.Lock()
	m.globalKeyHandler = handler
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.globalKeyHandler = nil
		m.mu.Unlock()
	}
}

// Set manually sets the focused element. Pass nil to blur all.
func (m *FocusManager) Set(f Focusable) {
	if f == nil {
		if current := m.Current(); current != nil {
			current.Blur()
		}
		return
	}
	f.Focus()
}

// GetAll returns all registered focusable elements.
func (m *FocusManager) GetAll() []Focusable {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]Focusable, len(m.registered))
	copy(result, m.registered)
	return result
}

// Clear removes all registered focusables and handlers.
func (m *FocusManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.currentFocused != nil {
		m.currentFocused.SetFocused(false)
	}
	m.currentFocused = nil
	m.registered = nil
	m.globalKeyHandler = nil
}

// legacyManager is a process-wide fallback FocusManager for code that has
// no RuntimeContext to hand - direct use of Input/Select from a unit test,
// or a one-off script. Real apps get their focus ring from
// RuntimeContext.Focus() instead; this exists strictly to ease migration,
// per the spec's allowance for a thread-local fallback outside any runtime.
var (
	legacyManager     *FocusManager
	legacyManagerOnce sync.Once
)

func legacyFocusManager() *FocusManager {
	legacyManagerOnce.Do(func() { legacyManager = NewFocusManager() })
	return legacyManager
}
