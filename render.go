// Render provides the buffer rendering functions that walk a laid-out
// LayoutBox tree and paint cells - the second half of the Dirty Renderer,
// downstream of diff.go's cell-level change detection.
package scanline

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// RenderToBuffer renders a LayoutBox tree to a CellBuffer.
func RenderToBuffer(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {
	if box == nil {
		return
	}

	el := box.Element
	if el.IsText {
		renderPlainText(box, buf, clip)
		return
	}

	if el.TypeTag == "fragment" || el.TypeTag == "" {
		for _, childBox := range box.Children {
			RenderToBuffer(childBox, buf, clip)
		}
		return
	}

	handler := GetIntrinsicHandler(el.TypeTag)
	if handler == nil {
		panic("scanline: unknown element type: " + el.TypeTag)
	}
	if handler.Render != nil {
		handler.Render(box, buf, clip)
	}
}

// RenderToLogicalBuffer renders a LayoutBox tree to a LogicalBuffer.
func RenderToLogicalBuffer(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {
	if box == nil {
		return
	}

	el := box.Element
	if el.IsText {
		renderPlainTextLogical(box, buf, clip)
		return
	}

	if el.TypeTag == "fragment" || el.TypeTag == "" {
		for _, childBox := range box.Children {
			RenderToLogicalBuffer(childBox, buf, clip)
		}
		return
	}

	handler := GetIntrinsicHandler(el.TypeTag)
	if handler == nil {
		panic("scanline: unknown element type: " + el.TypeTag)
	}
	if handler.RenderLogical != nil {
		handler.RenderLogical(box, buf, clip)
	}
}

func renderPlainText(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {
	el := box.Element
	x, y := box.X, box.Y
	style := el.Style.Visual

	for lineIdx, line := range strings.Split(el.Text, "\n") {
		lineY := y + lineIdx
		if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
			continue
		}
		charX := x
		for _, char := range line {
			if IsInClip(charX, lineY, clip) {
				buf.SetCharMerge(charX, lineY, char, style)
			}
			charX += runewidth.RuneWidth(char)
		}
	}
}

func renderPlainTextLogical(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {
	el := box.Element
	x, y := box.X, box.Y
	style := el.Style.Visual

	for lineIdx, line := range strings.Split(el.Text, "\n") {
		lineY := y + lineIdx
		if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
			continue
		}
		charX := x
		for _, char := range line {
			if IsInClip(charX, lineY, clip) {
				buf.SetMerge(charX, lineY, New(char, style))
			}
			charX += runewidth.RuneWidth(char)
		}
	}
}

func inputStyleProp(el Element, key string, fallback Style) Style {
	if el.Props == nil {
		return fallback
	}
	if s, ok := el.Props[key].(Style); ok {
		return s
	}
	return fallback
}

// RenderInputToBuffer renders an <input> to a CellBuffer, including its
// cursor and horizontal/vertical scroll so the cursor is always visible.
func RenderInputToBuffer(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {
	el := box.Element
	x, y, width, height := box.X, box.Y, box.Width, box.Height

	baseStyle := el.Style.Visual
	if baseStyle.Color == ColorNone {
		baseStyle.Color = ColorWhite
	}
	cursorStyle := inputStyleProp(el, "cursorStyle", Style{Background: ColorWhite, Color: ColorBlack})
	placeholderStyle := inputStyleProp(el, "placeholderStyle", Style{Dim: true})

	displayValue, cursorPos, isFocused, isPlaceholder := inputState(el)

	textStyle := baseStyle
	if isPlaceholder {
		textStyle = baseStyle.Merge(placeholderStyle)
	}

	lines := strings.Split(displayValue, "\n")
	cursorLine, _ := inputCursorLine(lines, cursorPos)
	scrollY := 0
	if cursorLine >= height {
		scrollY = cursorLine - height + 1
	}

	for lineIdx := 0; lineIdx < height; lineIdx++ {
		lineY := y + lineIdx
		srcLineIdx := lineIdx + scrollY
		if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
			continue
		}

		if srcLineIdx >= len(lines) {
			for i := 0; i < width; i++ {
				if cx := x + i; IsInClip(cx, lineY, clip) {
					buf.SetCharMerge(cx, lineY, ' ', textStyle)
				}
			}
			continue
		}

		line := lines[srcLineIdx]
		lineRunes := []rune(line)
		lineCharPos := 0
		for i := 0; i < srcLineIdx; i++ {
			lineCharPos += len(lines[i]) + 1
		}
		cursorOnThisLine := isFocused && cursorPos >= lineCharPos && cursorPos <= lineCharPos+len(lineRunes)
		cursorColOnLine := cursorPos - lineCharPos

		scrollX := 0
		if cursorOnThisLine && cursorColOnLine >= width {
			scrollX = cursorColOnLine - width + 1
		}

		for i := 0; i < width; i++ {
			charX := x + i
			if !IsInClip(charX, lineY, clip) {
				continue
			}
			srcIdx := i + scrollX
			char := ' '
			if srcIdx < len(lineRunes) {
				char = lineRunes[srcIdx]
			}
			if cursorOnThisLine && srcIdx == cursorColOnLine {
				buf.Set(charX, lineY, New(char, cursorStyle))
			} else if srcIdx < len(lineRunes) {
				buf.SetCharMerge(charX, lineY, char, textStyle)
			} else {
				buf.SetCharMerge(charX, lineY, ' ', textStyle)
			}
		}
	}
}

// RenderInputToLogicalBuffer is the LogicalBuffer counterpart of
// RenderInputToBuffer.
func RenderInputToLogicalBuffer(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {
	el := box.Element
	x, y, width, height := box.X, box.Y, box.Width, box.Height

	baseStyle := el.Style.Visual
	if baseStyle.Color == ColorNone {
		baseStyle.Color = ColorWhite
	}
	cursorStyle := inputStyleProp(el, "cursorStyle", Style{Background: ColorWhite, Color: ColorBlack})
	placeholderStyle := inputStyleProp(el, "placeholderStyle", Style{Dim: true})

	displayValue, cursorPos, isFocused, isPlaceholder := inputState(el)

	textStyle := baseStyle
	if isPlaceholder {
		textStyle = baseStyle.Merge(placeholderStyle)
	}

	lines := strings.Split(displayValue, "\n")
	cursorLine, _ := inputCursorLine(lines, cursorPos)
	scrollY := 0
	if cursorLine >= height {
		scrollY = cursorLine - height + 1
	}

	for lineIdx := 0; lineIdx < height; lineIdx++ {
		lineY := y + lineIdx
		srcLineIdx := lineIdx + scrollY
		if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
			continue
		}

		if srcLineIdx >= len(lines) {
			for i := 0; i < width; i++ {
				if cx := x + i; IsInClip(cx, lineY, clip) {
					buf.SetMerge(cx, lineY, New(' ', textStyle))
				}
			}
			continue
		}

		line := lines[srcLineIdx]
		lineRunes := []rune(line)
		lineCharPos := 0
		for i := 0; i < srcLineIdx; i++ {
			lineCharPos += len(lines[i]) + 1
		}
		cursorOnThisLine := isFocused && cursorPos >= lineCharPos && cursorPos <= lineCharPos+len(lineRunes)
		cursorColOnLine := cursorPos - lineCharPos

		scrollX := 0
		if cursorOnThisLine && cursorColOnLine >= width {
			scrollX = cursorColOnLine - width + 1
		}

		for i := 0; i < width; i++ {
			charX := x + i
			if !IsInClip(charX, lineY, clip) {
				continue
			}
			srcIdx := i + scrollX
			char := ' '
			if srcIdx < len(lineRunes) {
				char = lineRunes[srcIdx]
			}
			if cursorOnThisLine && srcIdx == cursorColOnLine {
				buf.Set(charX, lineY, New(char, cursorStyle))
			} else {
				buf.SetMerge(charX, lineY, New(char, textStyle))
			}
		}
	}
}

func inputState(el Element) (displayValue string, cursorPos int, focused, placeholder bool) {
	if inp, ok := el.Props["input"].(interface {
		DisplayValue() string
		CursorPos() int
		Focused() bool
		ShowingPlaceholder() bool
	}); ok {
		return inp.DisplayValue(), inp.CursorPos(), inp.Focused(), inp.ShowingPlaceholder()
	}
	return "", 0, false, false
}

func inputCursorLine(lines []string, cursorPos int) (line, offset int) {
	tempPos := 0
	for i, l := range lines {
		if cursorPos >= tempPos && cursorPos <= tempPos+len(l) {
			return i, tempPos
		}
		tempPos += len(l) + 1
	}
	return 0, 0
}

func selectPointerRunes(el Element, width int, selected bool) []rune {
	runes := []rune(strings.Repeat(" ", width))
	if !selected {
		return runes
	}
	if pointer, ok := el.Props["pointer"].(Element); ok {
		return []rune(collectElementText(pointer))
	}
	return runes
}

// RenderSelectToBuffer renders a <select>'s option rows to a CellBuffer.
func RenderSelectToBuffer(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {
	el := box.Element
	x, y := box.X, box.Y

	pointerWidth := selectPointerWidth(el)
	baseOptionStyle := inputStyleProp(el, "optionStyle", EmptyStyle)
	selectedStyle := inputStyleProp(el, "selectedStyle", EmptyStyle)
	options := elementChildrenByTag(el.Children, "option")

	sel, _ := el.Props["select"].(interface{ IsSelectedIndex(int) bool })

	for idx, opt := range options {
		optY := y + idx
		if clip != nil && (optY < clip.MinY || optY >= clip.MaxY) {
			continue
		}

		isSelected := sel != nil && sel.IsSelectedIndex(idx)
		computedStyle := baseOptionStyle.Merge(opt.Style.Visual)
		if isSelected {
			computedStyle = computedStyle.Merge(selectedStyle)
		}

		pointerRunes := selectPointerRunes(el, pointerWidth, isSelected)
		for i := 0; i < pointerWidth && i < len(pointerRunes); i++ {
			if cx := x + i; IsInClip(cx, optY, clip) {
				buf.SetCharMerge(cx, optY, pointerRunes[i], EmptyStyle)
			}
		}

		charX := x + pointerWidth
		for _, char := range collectElementText(opt) {
			if IsInClip(charX, optY, clip) {
				buf.SetCharMerge(charX, optY, char, computedStyle)
			}
			charX += runewidth.RuneWidth(char)
		}
	}
}

// RenderSelectToLogicalBuffer is the LogicalBuffer counterpart of
// RenderSelectToBuffer.
func RenderSelectToLogicalBuffer(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {
	el := box.Element
	x, y := box.X, box.Y

	pointerWidth := selectPointerWidth(el)
	baseOptionStyle := inputStyleProp(el, "optionStyle", EmptyStyle)
	selectedStyle := inputStyleProp(el, "selectedStyle", EmptyStyle)
	options := elementChildrenByTag(el.Children, "option")

	sel, _ := el.Props["select"].(interface{ IsSelectedIndex(int) bool })

	for idx, opt := range options {
		optY := y + idx
		if clip != nil && (optY < clip.MinY || optY >= clip.MaxY) {
			continue
		}

		isSelected := sel != nil && sel.IsSelectedIndex(idx)
		computedStyle := baseOptionStyle.Merge(opt.Style.Visual)
		if isSelected {
			computedStyle = computedStyle.Merge(selectedStyle)
		}

		pointerRunes := selectPointerRunes(el, pointerWidth, isSelected)
		for i := 0; i < pointerWidth && i < len(pointerRunes); i++ {
			if cx := x + i; IsInClip(cx, optY, clip) {
				buf.SetMerge(cx, optY, New(pointerRunes[i], EmptyStyle))
			}
		}

		charX := x + pointerWidth
		for _, char := range collectElementText(opt) {
			if IsInClip(charX, optY, clip) {
				buf.SetMerge(charX, optY, New(char, computedStyle))
			}
			charX += runewidth.RuneWidth(char)
		}
	}
}
