package scanline

import (
	"testing"
)

// mockFocusable is a test implementation of Focusable
type mockFocusable struct {
	focused    bool
	handleFunc func(key string) bool
}

func newMockFocusable() *mockFocusable {
	return &mockFocusable{}
}

func (m *mockFocusable) Focused() bool     { return m.focused }
func (m *mockFocusable) Focus()            { legacyFocusManager().RequestFocus(m) }
func (m *mockFocusable) Blur()             { legacyFocusManager().RequestBlur(m) }
func (m *mockFocusable) Dispose()          { legacyFocusManager().Unregister(m) }
func (m *mockFocusable) SetFocused(f bool) { m.focused = f }
func (m *mockFocusable) HandleKey(key string) bool {
	if m.handleFunc != nil {
		return m.handleFunc(key)
	}
	return false
}

func setupTest(t *testing.T) {
	t.Helper()
	legacyFocusManager().Clear()
}

func TestFocusManager_RegistersAutomatically(t *testing.T) {
	setupTest(t)

	if len(legacyFocusManager().GetAll()) != 0 {
		t.Error("expected no focusables initially")
	}

	f1 := newMockFocusable()
	legacyFocusManager().Register(f1)
	if len(legacyFocusManager().GetAll()) != 1 {
		t.Error("expected 1 focusable after register")
	}

	f2 := newMockFocusable()
	legacyFocusManager().Register(f2)
	if len(legacyFocusManager().GetAll()) != 2 {
		t.Error("expected 2 focusables")
	}

	f1.Dispose()
	if len(legacyFocusManager().GetAll()) != 1 {
		t.Error("expected 1 focusable after dispose")
	}

	f2.Dispose()
	if len(legacyFocusManager().GetAll()) != 0 {
		t.Error("expected 0 focusables after all disposed")
	}
}

func TestFocusManager_TracksFocusedElement(t *testing.T) {
	setupTest(t)

	f1 := newMockFocusable()
	f2 := newMockFocusable()
	legacyFocusManager().Register(f1)
	legacyFocusManager().Register(f2)

	if legacyFocusManager().Current() != nil {
		t.Error("expected no focused element initially")
	}

	f1.Focus()
	if legacyFocusManager().Current() != f1 {
		t.Error("expected f1 to be focused")
	}
	if !f1.focused {
		t.Error("f1 should be focused")
	}
	if f2.focused {
		t.Error("f2 should not be focused")
	}

	f2.Focus()
	if legacyFocusManager().Current() != f2 {
		t.Error("expected f2 to be focused")
	}
	if f1.focused {
		t.Error("f1 should not be focused")
	}
	if !f2.focused {
		t.Error("f2 should be focused")
	}

	f2.Blur()
	if legacyFocusManager().Current() != nil {
		t.Error("expected no focused element after blur")
	}
	if f2.focused {
		t.Error("f2 should not be focused after blur")
	}
}

func TestFocusManager_Next(t *testing.T) {
	setupTest(t)

	f1 := newMockFocusable()
	f2 := newMockFocusable()
	f3 := newMockFocusable()
	legacyFocusManager().Register(f1)
	legacyFocusManager().Register(f2)
	legacyFocusManager().Register(f3)

	legacyFocusManager().Next() // Focus first when none focused
	if legacyFocusManager().Current() != f1 {
		t.Error("expected f1 to be focused")
	}

	legacyFocusManager().Next()
	if legacyFocusManager().Current() != f2 {
		t.Error("expected f2 to be focused")
	}

	legacyFocusManager().Next()
	if legacyFocusManager().Current() != f3 {
		t.Error("expected f3 to be focused")
	}

	legacyFocusManager().Next() // Wraps around
	if legacyFocusManager().Current() != f1 {
		t.Error("expected f1 to be focused after wrap")
	}
}

func TestFocusManager_Prev(t *testing.T) {
	setupTest(t)

	f1 := newMockFocusable()
	f2 := newMockFocusable()
	f3 := newMockFocusable()
	legacyFocusManager().Register(f1)
	legacyFocusManager().Register(f2)
	legacyFocusManager().Register(f3)

	legacyFocusManager().Prev() // Focus last when none focused
	if legacyFocusManager().Current() != f3 {
		t.Error("expected f3 to be focused")
	}

	legacyFocusManager().Prev()
	if legacyFocusManager().Current() != f2 {
		t.Error("expected f2 to be focused")
	}

	legacyFocusManager().Prev()
	if legacyFocusManager().Current() != f1 {
		t.Error("expected f1 to be focused")
	}

	legacyFocusManager().Prev() // Wraps around
	if legacyFocusManager().Current() != f3 {
		t.Error("expected f3 to be focused after wrap")
	}
}

func TestFocusManager_HandleKeyTab(t *testing.T) {
	setupTest(t)

	f1 := newMockFocusable()
	f2 := newMockFocusable()
	legacyFocusManager().Register(f1)
	legacyFocusManager().Register(f2)

	f1.Focus()
	if legacyFocusManager().Current() != f1 {
		t.Error("expected f1 to be focused")
	}

	consumed := legacyFocusManager().HandleKey(Tab)
	if !consumed {
		t.Error("Tab should be consumed")
	}
	if legacyFocusManager().Current() != f2 {
		t.Error("expected f2 to be focused after Tab")
	}
}

func TestFocusManager_RoutesKeysToFocused(t *testing.T) {
	setupTest(t)

	keysReceived := ""
	f := newMockFocusable()
	f.handleFunc = func(key string) bool {
		keysReceived += key
		return true
	}
	legacyFocusManager().Register(f)
	f.Focus()

	legacyFocusManager().HandleKey("a")
	legacyFocusManager().HandleKey("b")

	if keysReceived != "ab" {
		t.Errorf("expected 'ab', got %q", keysReceived)
	}
}

func TestFocusManager_ReturnsFalseWhenNotFocused(t *testing.T) {
	setupTest(t)

	f := newMockFocusable()
	legacyFocusManager().Register(f)
	// Not focused

	consumed := legacyFocusManager().HandleKey("a")
	if consumed {
		t.Error("should return false when nothing focused")
	}
}

func TestFocusManager_UnregistersDisposedElements(t *testing.T) {
	setupTest(t)

	f1 := newMockFocusable()
	f2 := newMockFocusable()
	legacyFocusManager().Register(f1)
	legacyFocusManager().Register(f2)

	f1.Focus()
	if legacyFocusManager().Current() != f1 {
		t.Error("expected f1 to be focused")
	}

	f1.Dispose()
	if legacyFocusManager().Current() != nil {
		t.Error("expected no focused element after dispose")
	}
	if len(legacyFocusManager().GetAll()) != 1 {
		t.Error("expected 1 focusable remaining")
	}
	if legacyFocusManager().GetAll()[0] != f2 {
		t.Error("expected f2 to be remaining")
	}
}

func TestFocusManager_Set(t *testing.T) {
	setupTest(t)

	f := newMockFocusable()
	legacyFocusManager().Register(f)

	legacyFocusManager().Set(f)
	if legacyFocusManager().Current() != f {
		t.Error("expected f to be focused")
	}

	legacyFocusManager().Set(nil)
	if legacyFocusManager().Current() != nil {
		t.Error("expected no focused element")
	}
}

func TestFocusManager_GlobalKeyHandler(t *testing.T) {
	setupTest(t)

	globalKey := ""
	cleanup := legacyFocusManager().SetGlobalKeyHandler(func(key string) bool {
		globalKey = key
		return true
	})

	f := newMockFocusable()
	f.handleFunc = func(key string) bool {
		return false // Don't handle
	}
	legacyFocusManager().Register(f)
	f.Focus()

	legacyFocusManager().HandleKey("x")
	if globalKey != "x" {
		t.Errorf("expected 'x', got %q", globalKey)
	}

	cleanup()

	globalKey = ""
	legacyFocusManager().HandleKey("y")
	if globalKey != "" {
		t.Error("handler should be removed after cleanup")
	}
}
