// Link provides a clickable-hyperlink primitive for interactive UI.
package scanline

import (
	"os/exec"
	"runtime"
	"strings"
)

func init() {
	RegisterIntrinsic("link", &IntrinsicHandler{
		Measure:       measureLink,
		Layout:        layoutLink,
		Render:        RenderLinkToBuffer,
		RenderLogical: RenderLinkToLogicalBuffer,
	})
}

// LinkOptions configures link creation.
type LinkOptions struct {
	// URL is the target URL to open.
	URL string
	// OnClick is called when the link is activated (in addition to opening URL).
	OnClick func()
	// DisableFocus disables focus management registration.
	DisableFocus bool
}

// Link represents a clickable hyperlink component, focusable by default.
type Link struct {
	focused bool

	focusManager   *FocusManager
	url            string
	onClick        func()
	shouldRegister bool
	registered     bool
}

// NewLink creates a new link registered with the given focus manager (nil
// falls back to the legacy process-wide manager).
func NewLink(focusManager *FocusManager, opts LinkOptions) *Link {
	if focusManager == nil {
		focusManager = legacyFocusManager()
	}

	l := &Link{
		focusManager:   focusManager,
		url:            opts.URL,
		onClick:        opts.OnClick,
		shouldRegister: !opts.DisableFocus,
	}

	if l.shouldRegister {
		focusManager.Register(l)
		l.registered = true
	}

	return l
}

// URL returns the link's target URL.
func (l *Link) URL() string { return l.url }

// SetURL updates the link's target URL.
func (l *Link) SetURL(url string) { l.url = url }

// Focused returns whether the link is focused.
func (l *Link) Focused() bool { return l.focused }

// Focus gives focus to this link.
func (l *Link) Focus() { l.focusManager.RequestFocus(l) }

// Blur removes focus from this link.
func (l *Link) Blur() { l.focusManager.RequestBlur(l) }

// SetFocused sets the focused state (called by focus manager).
func (l *Link) SetFocused(f bool) { l.focused = f }

// Dispose unregisters from the focus manager.
func (l *Link) Dispose() {
	if l.registered {
		l.focusManager.Unregister(l)
		l.registered = false
	}
}

// HandleKey processes a key press. Returns true if the key was consumed.
func (l *Link) HandleKey(key string) bool {
	if !l.focused {
		return false
	}
	switch key {
	case Enter, EnterLF, Space:
		l.Activate()
		return true
	}
	return false
}

// Activate opens the URL and calls the onClick handler.
func (l *Link) Activate() {
	if l.url != "" {
		OpenURL(l.url)
	}
	if l.onClick != nil {
		l.onClick()
	}
}

// OpenURL opens the given URL in the default browser. Works on macOS,
// Linux, and Windows.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

func measureLink(node KeyedElement, ctx *LayoutContext) (int, int) {
	lines := splitLines(collectElementText(node.Element))
	width := 0
	for _, line := range lines {
		width = max(width, RuneWidth(line))
	}
	return width, len(lines)
}

func layoutLink(node KeyedElement, availWidth, availHeight int, ctx *LayoutContext) *LayoutBox {
	w, h := measureLink(node, ctx)
	return &LayoutBox{
		X: ctx.X, Y: ctx.Y, Width: w, Height: h,
		InnerX: ctx.X, InnerY: ctx.Y, InnerWidth: w, InnerHeight: h,
		Element: node.Element, Children: nil, ZIndex: node.Element.Style.Layout.ZIndex,
	}
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func linkState(el Element) (focused bool, url string) {
	if lnk, ok := el.Props["url"].(interface {
		Focused() bool
		URL() string
	}); ok {
		return lnk.Focused(), lnk.URL()
	}
	return false, ""
}

func linkComputedStyle(el Element) Style {
	baseStyle := el.Style.Visual
	focusedStyle := inputStyleProp(el, "focusedStyle", Style{Bold: true})
	if baseStyle.Color == ColorNone {
		baseStyle.Color = ColorBlue
	}
	baseStyle.Underline = true

	focused, url := linkState(el)
	computed := baseStyle
	if focused {
		computed = baseStyle.Merge(focusedStyle)
	}
	computed.HyperlinkURL = url
	return computed
}

// RenderLinkToBuffer renders a link to a CellBuffer using OSC 8 terminal
// hyperlink escapes (see ansi.go for the writer that emits them).
func RenderLinkToBuffer(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {
	el := box.Element
	x, y := box.X, box.Y
	computedStyle := linkComputedStyle(el)

	for lineIdx, line := range strings.Split(collectElementText(el), "\n") {
		lineY := y + lineIdx
		if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
			continue
		}
		charX := x
		for _, char := range line {
			if IsInClip(charX, lineY, clip) {
				buf.Set(charX, lineY, New(char, computedStyle))
			}
			charX++
		}
	}
}

// RenderLinkToLogicalBuffer is the LogicalBuffer counterpart of
// RenderLinkToBuffer.
func RenderLinkToLogicalBuffer(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {
	el := box.Element
	x, y := box.X, box.Y
	computedStyle := linkComputedStyle(el)

	for lineIdx, line := range strings.Split(collectElementText(el), "\n") {
		lineY := y + lineIdx
		if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
			continue
		}
		charX := x
		for _, char := range line {
			if IsInClip(charX, lineY, clip) {
				buf.Set(charX, lineY, New(char, computedStyle))
			}
			charX++
		}
	}
}
