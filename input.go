// Input provides text input handling for terminal UI.
package scanline

import (
	"strconv"
	"strings"
	"sync"
	"unicode"
)

// MouseButton identifies which button, or wheel direction, a MouseEvent
// reports. Teacher has no mouse support at all; this decodes the SGR mouse
// protocol (spec §6's "mouse tracking (SGR mode)").
type MouseButton int

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonMiddle
	MouseButtonRight
	MouseWheelUp
	MouseWheelDown
)

// MouseEventKind distinguishes a press, release, or drag/move report.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseMove
)

// MouseEvent is a decoded SGR mouse report: button, kind, and 0-indexed
// terminal cell coordinates.
type MouseEvent struct {
	Button MouseButton
	Kind   MouseEventKind
	X, Y   int
}

// DecodeMouse parses one SGR mouse escape sequence ("\x1b[<Cb;Cx;Cym" or
// "...M"), returning the event and true on success. SGR mode encodes
// button+modifier bits in Cb: bit 5 (32) marks a drag/move, bit 6 (64)
// marks a wheel event (bit 0 then selects direction).
func DecodeMouse(seq string) (MouseEvent, bool) {
	if !strings.HasPrefix(seq, "\x1b[<") {
		return MouseEvent{}, false
	}
	body := seq[3:]
	if len(body) == 0 {
		return MouseEvent{}, false
	}
	final := body[len(body)-1]
	var kind MouseEventKind
	switch final {
	case 'M':
		kind = MousePress
	case 'm':
		kind = MouseRelease
	default:
		return MouseEvent{}, false
	}
	parts := strings.SplitN(body[:len(body)-1], ";", 3)
	if len(parts) != 3 {
		return MouseEvent{}, false
	}
	cb, err1 := strconv.Atoi(parts[0])
	x, err2 := strconv.Atoi(parts[1])
	y, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return MouseEvent{}, false
	}

	button := MouseButtonNone
	switch cb & 3 {
	case 0:
		button = MouseButtonLeft
	case 1:
		button = MouseButtonMiddle
	case 2:
		button = MouseButtonRight
	}
	if cb&32 != 0 {
		kind = MouseMove
	}
	if cb&64 != 0 {
		kind = MousePress
		if cb&1 != 0 {
			button = MouseWheelDown
		} else {
			button = MouseWheelUp
		}
	}
	return MouseEvent{Button: button, Kind: kind, X: x - 1, Y: y - 1}, true
}

// PasteEventKind distinguishes the three events a bracketed paste produces.
type PasteEventKind int

const (
	PasteStart PasteEventKind = iota
	PasteContent
	PasteEnd
)

// PasteEvent is one event in a bracketed-paste sequence. Content is only
// meaningful for PasteContent.
type PasteEvent struct {
	Kind    PasteEventKind
	Content string
}

const (
	pasteStartSeq = "\x1b[200~"
	pasteEndSeq   = "\x1b[201~"
)

// PasteDecoder turns a stream of raw stdin reads into Start/Content/End
// events, tracking whether the decoder is inside a bracketed-paste block
// across reads - a paste's content can arrive split across multiple
// os.Stdin.Read calls, unlike a key press.
type PasteDecoder struct {
	inPaste bool
}

// Feed consumes data, emitting any paste events it contains.
func (d *PasteDecoder) Feed(data string) []PasteEvent {
	var events []PasteEvent
	for {
		if !d.inPaste {
			idx := strings.Index(data, pasteStartSeq)
			if idx < 0 {
				return events
			}
			events = append(events, PasteEvent{Kind: PasteStart})
			d.inPaste = true
			data = data[idx+len(pasteStartSeq):]
			continue
		}
		idx := strings.Index(data, pasteEndSeq)
		if idx < 0 {
			if data != "" {
				events = append(events, PasteEvent{Kind: PasteContent, Content: data})
			}
			return events
		}
		if data[:idx] != "" {
			events = append(events, PasteEvent{Kind: PasteContent, Content: data[:idx]})
		}
		events = append(events, PasteEvent{Kind: PasteEnd})
		d.inPaste = false
		data = data[idx+len(pasteEndSeq):]
	}
}

// InputState represents the state of an input field.
type InputState struct {
	Value     string
	CursorPos int
}

// InputKeyHandler is a keypress handler.
// Return new state to consume the key, or nil to let it bubble up.
type InputKeyHandler func(key string, state InputState) *InputState

// InputOptions configures input creation.
type InputOptions struct {
	// InitialValue is the starting text.
	InitialValue string
	// MaxLength limits the number of characters (0 = unlimited).
	MaxLength int
	// Mask character for passwords (e.g., "*").
	Mask rune
	// Placeholder text shown when input is empty.
	Placeholder string
	// OnKeypress is a custom keypress handler.
	OnKeypress InputKeyHandler
}

// Input represents a text input field. It holds its own mutable state
// rather than fine-grained signals: the hook-engine model re-renders every
// frame, so Input only needs ordinary mutex-guarded fields, read fresh on
// each Render instead of pushed through a subscriber graph.
type Input struct {
	mu        sync.RWMutex
	value     string
	cursorPos int
	focused   bool

	focusManager *FocusManager
	maxLength    int
	mask         rune
	placeholder  string
	onKeypress   InputKeyHandler
}

// NewInput creates a new input field registered with the given focus
// manager. Pass nil to fall back to the legacy process-wide manager (see
// focus.go) for code with no RuntimeContext at hand.
func NewInput(focusManager *FocusManager, opts InputOptions) *Input {
	if focusManager == nil {
		focusManager = legacyFocusManager()
	}

	handler := opts.OnKeypress
	if handler == nil {
		handler = DefaultInputHandler
	}

	inp := &Input{
		value:        opts.InitialValue,
		cursorPos:    len(opts.InitialValue),
		focusManager: focusManager,
		maxLength:    opts.MaxLength,
		mask:         opts.Mask,
		placeholder:  opts.Placeholder,
		onKeypress:   handler,
	}

	focusManager.Register(inp)
	return inp
}

// Value returns the current text value.
func (i *Input) Value() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.value
}

// CursorPos returns the cursor position.
func (i *Input) CursorPos() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.cursorPos
}

// Focused returns whether the input is focused.
func (i *Input) Focused() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.focused
}

// Focus gives focus to this input.
func (i *Input) Focus() {
	i.focusManager.RequestFocus(i)
}

// Blur removes focus from this input.
func (i *Input) Blur() {
	i.focusManager.RequestBlur(i)
}

// SetFocused sets the focused state (called by focus manager).
func (i *Input) SetFocused(f bool) {
	i.mu.Lock()
	i.focused = f
	i.mu.Unlock()
}

// Dispose unregisters from the focus manager.
func (i *Input) Dispose() {
	i.focusManager.Unregister(i)
}

// HandleKey processes a key press. Returns true if the key was consumed.
func (i *Input) HandleKey(key string) bool {
	if !i.Focused() {
		return false
	}

	state := i.GetState()
	newState := i.onKeypress(key, state)
	if newState == nil {
		return false
	}
	i.setState(*newState)
	return true
}

// SetValue updates the text value.
func (i *Input) SetValue(value string) {
	limited := i.applyMaxLength(value)
	i.mu.Lock()
	i.value = limited
	i.cursorPos = i.clampCursor(i.cursorPos, len(limited))
	i.mu.Unlock()
}

// SetCursorPos updates the cursor position.
func (i *Input) SetCursorPos(pos int) {
	i.mu.Lock()
	i.cursorPos = i.clampCursor(pos, len(i.value))
	i.mu.Unlock()
}

// Clear clears the input.
func (i *Input) Clear() {
	i.mu.Lock()
	i.value = ""
	i.cursorPos = 0
	i.mu.Unlock()
}

// DisplayValue returns the display text (with masking/placeholder).
func (i *Input) DisplayValue() string {
	val := i.Value()
	if len(val) == 0 && i.placeholder != "" {
		return i.placeholder
	}
	if i.mask != 0 {
		masked := make([]rune, len(val))
		for j := range masked {
			masked[j] = i.mask
		}
		return string(masked)
	}
	return val
}

// ShowingPlaceholder returns true if displaying placeholder text.
func (i *Input) ShowingPlaceholder() bool {
	return len(i.Value()) == 0 && i.placeholder != ""
}

// GetState returns the current state snapshot.
func (i *Input) GetState() InputState {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return InputState{Value: i.value, CursorPos: i.cursorPos}
}

func (i *Input) setState(state InputState) {
	limited := i.applyMaxLength(state.Value)
	i.mu.Lock()
	i.value = limited
	i.cursorPos = i.clampCursor(state.CursorPos, len(limited))
	i.mu.Unlock()
}

func (i *Input) applyMaxLength(val string) string {
	if i.maxLength > 0 && len(val) > i.maxLength {
		return val[:i.maxLength]
	}
	return val
}

func (i *Input) clampCursor(pos, length int) int {
	if pos < 0 {
		return 0
	}
	if pos > length {
		return length
	}
	return pos
}

// DefaultInputHandler implements standard text editing behavior.
var DefaultInputHandler = ComposeInputHandlers(
	InputNavigationHandler,
	InputDeletionHandler,
	InputShiftEnterHandler,
	InputPrintableHandler,
)

// ComposeInputHandlers combines multiple handlers into one.
// Handlers are tried in order until one returns non-nil.
func ComposeInputHandlers(handlers ...InputKeyHandler) InputKeyHandler {
	return func(key string, state InputState) *InputState {
		for _, h := range handlers {
			if result := h(key, state); result != nil {
				return result
			}
		}
		return nil
	}
}

// InputPrintableHandler inserts printable characters at cursor.
func InputPrintableHandler(key string, state InputState) *InputState {
	if len(key) >= 1 && isPrintable(key) {
		newValue := state.Value[:state.CursorPos] + key + state.Value[state.CursorPos:]
		return &InputState{
			Value:     newValue,
			CursorPos: state.CursorPos + len(key),
		}
	}
	return nil
}

// InputNavigationHandler handles arrow keys, home/end, word navigation.
func InputNavigationHandler(key string, state InputState) *InputState {
	switch key {
	case Left:
		if state.CursorPos > 0 {
			return &InputState{Value: state.Value, CursorPos: state.CursorPos - 1}
		}
		return &state

	case Right:
		if state.CursorPos < len(state.Value) {
			return &InputState{Value: state.Value, CursorPos: state.CursorPos + 1}
		}
		return &state

	case AltLeft, AltLeftCSI:
		// Move to start of previous word
		newPos := state.CursorPos
		for newPos > 0 && !isWordChar(rune(state.Value[newPos-1])) {
			newPos--
		}
		for newPos > 0 && isWordChar(rune(state.Value[newPos-1])) {
			newPos--
		}
		return &InputState{Value: state.Value, CursorPos: newPos}

	case AltRight, AltRightCSI:
		// Move to end of next word
		newPos := state.CursorPos
		for newPos < len(state.Value) && !isWordChar(rune(state.Value[newPos])) {
			newPos++
		}
		for newPos < len(state.Value) && isWordChar(rune(state.Value[newPos])) {
			newPos++
		}
		return &InputState{Value: state.Value, CursorPos: newPos}

	case Home, HomeAlt, CtrlA:
		lineStart := getLineStart(state.Value, state.CursorPos)
		return &InputState{Value: state.Value, CursorPos: lineStart}

	case End, EndAlt, CtrlE:
		lineEnd := getLineEnd(state.Value, state.CursorPos)
		return &InputState{Value: state.Value, CursorPos: lineEnd}

	case Up:
		newPos := moveCursorUp(state.Value, state.CursorPos)
		if newPos != state.CursorPos {
			return &InputState{Value: state.Value, CursorPos: newPos}
		}
		return &state

	case Down:
		newPos := moveCursorDown(state.Value, state.CursorPos)
		if newPos != state.CursorPos {
			return &InputState{Value: state.Value, CursorPos: newPos}
		}
		return &state
	}

	return nil
}

// InputDeletionHandler handles backspace, delete, word delete.
func InputDeletionHandler(key string, state InputState) *InputState {
	switch key {
	case Backspace, BackspaceCtrl:
		if state.CursorPos == 0 {
			return &state
		}
		return &InputState{
			Value:     state.Value[:state.CursorPos-1] + state.Value[state.CursorPos:],
			CursorPos: state.CursorPos - 1,
		}

	case Delete:
		if state.CursorPos >= len(state.Value) {
			return &state
		}
		return &InputState{
			Value:     state.Value[:state.CursorPos] + state.Value[state.CursorPos+1:],
			CursorPos: state.CursorPos,
		}

	case CtrlU:
		// Delete from cursor to start of line
		lineStart := getLineStart(state.Value, state.CursorPos)
		return &InputState{
			Value:     state.Value[:lineStart] + state.Value[state.CursorPos:],
			CursorPos: lineStart,
		}

	case CtrlW, AltBackspace:
		// Delete previous word
		if state.CursorPos == 0 {
			return &state
		}
		newPos := state.CursorPos
		for newPos > 0 && !isWordChar(rune(state.Value[newPos-1])) {
			newPos--
		}
		for newPos > 0 && isWordChar(rune(state.Value[newPos-1])) {
			newPos--
		}
		return &InputState{
			Value:     state.Value[:newPos] + state.Value[state.CursorPos:],
			CursorPos: newPos,
		}
	}

	return nil
}

// InputNewlineHandler inserts newline on Enter (for multiline editors).
func InputNewlineHandler(key string, state InputState) *InputState {
	if key == Enter || key == EnterLF || key == ShiftEnter {
		return &InputState{
			Value:     state.Value[:state.CursorPos] + "\n" + state.Value[state.CursorPos:],
			CursorPos: state.CursorPos + 1,
		}
	}
	return nil
}

// InputShiftEnterHandler inserts a newline on Shift+Enter or a bare line
// feed (EnterLF); plain Enter is left unhandled.
func InputShiftEnterHandler(key string, state InputState) *InputState {
	if key == ShiftEnter || key == EnterLF {
		return &InputState{
			Value:     state.Value[:state.CursorPos] + "\n" + state.Value[state.CursorPos:],
			CursorPos: state.CursorPos + 1,
		}
	}
	return nil
}

// Helper functions

func isPrintable(s string) bool {
	for _, r := range s {
		if r < ' ' || r > '~' {
			return false
		}
	}
	return true
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func getLineStart(value string, pos int) int {
	for i := pos - 1; i >= 0; i-- {
		if value[i] == '\n' {
			return i + 1
		}
	}
	return 0
}

func getLineEnd(value string, pos int) int {
	for i := pos; i < len(value); i++ {
		if value[i] == '\n' {
			return i
		}
	}
	return len(value)
}

func moveCursorUp(value string, pos int) int {
	lineStarts := []int{0}
	for i := 0; i < len(value); i++ {
		if value[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}

	// Find current line
	lineIndex := 0
	for i := len(lineStarts) - 1; i >= 0; i-- {
		if pos >= lineStarts[i] {
			lineIndex = i
			break
		}
	}

	if lineIndex == 0 {
		return pos // Already on first line
	}

	column := pos - lineStarts[lineIndex]
	prevLineStart := lineStarts[lineIndex-1]
	prevLineEnd := lineStarts[lineIndex] - 1
	prevLineLen := prevLineEnd - prevLineStart

	newPos := prevLineStart + column
	if column > prevLineLen {
		newPos = prevLineEnd
	}
	return newPos
}

func moveCursorDown(value string, pos int) int {
	lineStarts := []int{0}
	for i := 0; i < len(value); i++ {
		if value[i] == '\n' {
			lineStarts = append(lineStarts, i+1)
		}
	}

	// Find current line
	lineIndex := 0
	for i := len(lineStarts) - 1; i >= 0; i-- {
		if pos >= lineStarts[i] {
			lineIndex = i
			break
		}
	}

	if lineIndex >= len(lineStarts)-1 {
		return pos // Already on last line
	}

	column := pos - lineStarts[lineIndex]
	nextLineStart := lineStarts[lineIndex+1]
	var nextLineEnd int
	if lineIndex+2 < len(lineStarts) {
		nextLineEnd = lineStarts[lineIndex+2] - 1
	} else {
		nextLineEnd = len(value)
	}
	nextLineLen := nextLineEnd - nextLineStart

	newPos := nextLineStart + column
	if column > nextLineLen {
		newPos = nextLineEnd
	}
	return newPos
}
