// Button provides a clickable button primitive for interactive UI.
package scanline

import "strings"

// ButtonCornerStyle specifies the button corner appearance.
type ButtonCornerStyle string

const (
	ButtonCornerNone  ButtonCornerStyle = "none"
	ButtonCornerPill  ButtonCornerStyle = "pill"  // ▐ text ▌ - half blocks
	ButtonCornerRound ButtonCornerStyle = "round" //  text  - Nerd Font
	ButtonCornerArrow ButtonCornerStyle = "arrow" //  text  - Nerd Font
	ButtonCornerPixel ButtonCornerStyle = "pixel" // ▟ text ▙ - quadrant blocks
)

// ButtonCornerChars holds the characters for button corners.
type ButtonCornerChars struct {
	Left  rune
	Right rune
}

// ButtonCornerCharSets for different button styles. All use the button's
// background color as foreground for a shaped effect.
var ButtonCornerCharSets = map[ButtonCornerStyle]ButtonCornerChars{
	ButtonCornerPill:  {Left: '▐', Right: '▌'},
	ButtonCornerRound: {Left: '', Right: ''},
	ButtonCornerArrow: {Left: '', Right: ''},
	ButtonCornerPixel: {Left: '▟', Right: '▙'},
}

func init() {
	RegisterIntrinsic("button", &IntrinsicHandler{
		Measure:       measureButton,
		Layout:        layoutButton,
		Render:        RenderButtonToBuffer,
		RenderLogical: RenderButtonToLogicalBuffer,
	})
}

// ButtonOptions configures button creation.
type ButtonOptions struct {
	// OnClick is called when the button is activated (Enter/Space).
	OnClick func()
	// OnKeypress is a custom key handler (called before default handling).
	OnKeypress func(key string) bool
	// DisableFocus disables focus management registration.
	DisableFocus bool
}

// Button represents a clickable button component, focusable by default.
type Button struct {
	focused bool

	focusManager   *FocusManager
	onClick        func()
	onKeypress     func(key string) bool
	shouldRegister bool
	registered     bool
}

// NewButton creates a new button registered with the given focus manager
// (nil falls back to the legacy process-wide manager).
func NewButton(focusManager *FocusManager, opts ButtonOptions) *Button {
	if focusManager == nil {
		focusManager = legacyFocusManager()
	}

	b := &Button{
		focusManager:   focusManager,
		onClick:        opts.OnClick,
		onKeypress:     opts.OnKeypress,
		shouldRegister: !opts.DisableFocus,
	}

	if b.shouldRegister {
		focusManager.Register(b)
		b.registered = true
	}

	return b
}

// Focused returns whether the button is focused.
func (b *Button) Focused() bool { return b.focused }

// Focus gives focus to this button.
func (b *Button) Focus() { b.focusManager.RequestFocus(b) }

// Blur removes focus from this button.
func (b *Button) Blur() { b.focusManager.RequestBlur(b) }

// SetFocused sets the focused state (called by focus manager).
func (b *Button) SetFocused(f bool) { b.focused = f }

// Dispose unregisters from the focus manager.
func (b *Button) Dispose() {
	if b.registered {
		b.focusManager.Unregister(b)
		b.registered = false
	}
}

// HandleKey processes a key press. Returns true if the key was consumed.
func (b *Button) HandleKey(key string) bool {
	if !b.focused {
		return false
	}
	if b.onKeypress != nil && b.onKeypress(key) {
		return true
	}
	switch key {
	case Enter, EnterLF, Space:
		if b.onClick != nil {
			b.onClick()
		}
		return true
	}
	return false
}

// Click programmatically triggers the button's onClick handler.
func (b *Button) Click() {
	if b.onClick != nil {
		b.onClick()
	}
}

func measureButton(node KeyedElement, ctx *LayoutContext) (int, int) {
	layout := node.Element.Style.Layout

	contentWidth, contentHeight := 0, 0
	for _, c := range filterRelativeChildren(node) {
		w, h := MeasureNode(c)
		contentWidth = max(contentWidth, w)
		contentHeight = max(contentHeight, h)
	}

	totalWidth := contentWidth + layout.Padding.Left + layout.Padding.Right
	totalHeight := contentHeight + layout.Padding.Top + layout.Padding.Bottom

	finalWidth := totalWidth
	if layout.Width >= 0 {
		finalWidth = layout.Width
	}
	finalWidth = max(finalWidth, layout.MinWidth)

	finalHeight := totalHeight
	if layout.Height >= 0 {
		finalHeight = layout.Height
	}
	finalHeight = max(finalHeight, layout.MinHeight)

	return finalWidth, finalHeight
}

func layoutButton(node KeyedElement, availWidth, availHeight int, ctx *LayoutContext) *LayoutBox {
	layout := node.Element.Style.Layout

	measuredW, measuredH := measureButton(node, nil)
	buttonWidth := layout.Width
	if buttonWidth < 0 {
		buttonWidth = min(measuredW, availWidth-layout.Margin.Left-layout.Margin.Right)
	}
	buttonHeight := layout.Height
	if buttonHeight < 0 {
		buttonHeight = measuredH
	}

	buttonX := ctx.X + layout.Margin.Left
	buttonY := ctx.Y + layout.Margin.Top

	innerX := buttonX + layout.Padding.Left
	innerY := buttonY + layout.Padding.Top
	innerWidth := buttonWidth - layout.Padding.Left - layout.Padding.Right
	innerHeight := buttonHeight - layout.Padding.Top - layout.Padding.Bottom

	relativeChildren := filterRelativeChildren(node)
	childBoxes := make([]*LayoutBox, 0, len(relativeChildren))
	childY := innerY
	for _, c := range relativeChildren {
		result := LayoutNode(c, LayoutContext{X: innerX, Y: childY, Width: innerWidth, Height: innerHeight})
		childBoxes = append(childBoxes, result.Box)
		childY += result.Box.Height
	}

	return &LayoutBox{
		X: buttonX, Y: buttonY, Width: buttonWidth, Height: buttonHeight,
		InnerX: innerX, InnerY: innerY, InnerWidth: innerWidth, InnerHeight: innerHeight,
		Element: node.Element, Children: childBoxes, ZIndex: layout.ZIndex,
	}
}

func buttonCorners(el Element) (ButtonCornerChars, bool) {
	corner, _ := el.Props["corners"].(ButtonCornerStyle)
	chars, ok := ButtonCornerCharSets[corner]
	return chars, ok
}

func buttonFocused(el Element) bool {
	if btn, ok := el.Props["button"].(interface{ Focused() bool }); ok {
		return btn.Focused()
	}
	return false
}

func buttonComputedStyle(el Element) Style {
	base := el.Style.Visual
	focusedStyle, ok := el.Props["focusedStyle"].(Style)
	if !ok {
		focusedStyle = Style{Inverse: true}
	}
	if buttonFocused(el) {
		return base.Merge(focusedStyle)
	}
	return base
}

// RenderButtonToBuffer renders a button to a CellBuffer.
func RenderButtonToBuffer(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {
	el := box.Element
	x, y, width, height := box.X, box.Y, box.Width, box.Height

	computedStyle := buttonComputedStyle(el)
	chars, hasCorners := buttonCorners(el)

	if computedStyle.HasBackground() || buttonFocused(el) {
		for dy := 0; dy < height; dy++ {
			for dx := 0; dx < width; dx++ {
				if hasCorners && dy == 0 && (dx == 0 || dx == width-1) {
					continue
				}
				cellX, cellY := x+dx, y+dy
				if IsInClip(cellX, cellY, clip) {
					buf.Set(cellX, cellY, New(' ', computedStyle))
				}
			}
		}
	}

	if hasCorners {
		cornerFg := computedStyle.Background
		if cornerFg == ColorNone {
			cornerFg = ColorWhite
		}
		cornerDrawStyle := Style{Color: cornerFg}
		if IsInClip(x, y, clip) {
			buf.Set(x, y, New(chars.Left, cornerDrawStyle))
		}
		rightX := x + width - 1
		if IsInClip(rightX, y, clip) {
			buf.Set(rightX, y, New(chars.Right, cornerDrawStyle))
		}
	}

	for _, childBox := range box.Children {
		renderButtonChild(childBox, buf, clip, computedStyle)
	}
}

func renderButtonChild(box *LayoutBox, buf *CellBuffer, clip *ClipRegion, parentStyle Style) {
	if box == nil {
		return
	}
	el := box.Element
	x, y := box.X, box.Y

	if el.IsText {
		for lineIdx, line := range strings.Split(el.Text, "\n") {
			lineY := y + lineIdx
			if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
				continue
			}
			charX := x
			for _, char := range line {
				if IsInClip(charX, lineY, clip) {
					buf.SetCharMerge(charX, lineY, char, parentStyle)
				}
				charX++
			}
		}
		return
	}
	RenderToBuffer(box, buf, clip)
}

// RenderButtonToLogicalBuffer renders a button to a LogicalBuffer.
func RenderButtonToLogicalBuffer(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {
	el := box.Element
	x, y, width, height := box.X, box.Y, box.Width, box.Height

	computedStyle := buttonComputedStyle(el)
	chars, hasCorners := buttonCorners(el)

	if computedStyle.HasBackground() || buttonFocused(el) {
		for dy := 0; dy < height; dy++ {
			for dx := 0; dx < width; dx++ {
				if hasCorners && dy == 0 && (dx == 0 || dx == width-1) {
					continue
				}
				cellX, cellY := x+dx, y+dy
				if IsInClip(cellX, cellY, clip) {
					buf.Set(cellX, cellY, New(' ', computedStyle))
				}
			}
		}
	}

	if hasCorners {
		cornerFg := computedStyle.Background
		if cornerFg == ColorNone {
			cornerFg = ColorWhite
		}
		cornerDrawStyle := Style{Color: cornerFg}
		if IsInClip(x, y, clip) {
			buf.Set(x, y, New(chars.Left, cornerDrawStyle))
		}
		rightX := x + width - 1
		if IsInClip(rightX, y, clip) {
			buf.Set(rightX, y, New(chars.Right, cornerDrawStyle))
		}
	}

	for _, childBox := range box.Children {
		renderButtonChildLogical(childBox, buf, clip, computedStyle)
	}
}

func renderButtonChildLogical(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion, parentStyle Style) {
	if box == nil {
		return
	}
	el := box.Element
	x, y := box.X, box.Y

	if el.IsText {
		for lineIdx, line := range strings.Split(el.Text, "\n") {
			lineY := y + lineIdx
			if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
				continue
			}
			charX := x
			for _, char := range line {
				if IsInClip(charX, lineY, clip) {
					buf.SetMerge(charX, lineY, New(char, parentStyle))
				}
				charX++
			}
		}
		return
	}
	RenderToLogicalBuffer(box, buf, clip)
}
