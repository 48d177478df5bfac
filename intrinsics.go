// Intrinsics registers the built-in element types: box, text, input, select.
package scanline

import "strings"

func init() {
	RegisterIntrinsic("box", &IntrinsicHandler{
		Render:        renderBox,
		RenderLogical: renderBoxLogical,
	})

	RegisterIntrinsic("text", &IntrinsicHandler{
		Measure:       measureTextNode,
		Layout:        layoutTextNode,
		Render:        renderText,
		RenderLogical: renderTextLogical,
	})

	RegisterIntrinsic("input", &IntrinsicHandler{
		Measure:       measureInput,
		Layout:        layoutInput,
		Render:        RenderInputToBuffer,
		RenderLogical: RenderInputToLogicalBuffer,
	})

	RegisterIntrinsic("select", &IntrinsicHandler{
		Measure:       measureSelect,
		Layout:        layoutSelect,
		Render:        RenderSelectToBuffer,
		RenderLogical: RenderSelectToLogicalBuffer,
	})
}

// Box handlers. box has no special geometry: it registers no Measure or
// Layout, so measureNode/layoutNode size and place it with the same default
// container path they use for any type without a handler. The entry exists
// so the registry always has an explicit entry for the type named in a tree,
// and so border/background painting has a home in renderBox/renderBoxLogical.

func paintBoxBackground(x, y, width, height int, style Style, hasCorners bool, clip *ClipRegion, set func(x, y int, style Style)) {
	if !style.HasBackground() {
		return
	}
	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			cellX, cellY := x+dx, y+dy
			if IsInClip(cellX, cellY, clip) {
				set(cellX, cellY, Style{Background: style.Background, BackgroundRGB: style.BackgroundRGB})
			}
		}
	}
}

func renderBox(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {
	el := box.Element
	x, y, width, height := box.X, box.Y, box.Width, box.Height

	style := el.Style.Visual
	border := el.Style.Border

	paintBoxBackground(x, y, width, height, style, false, clip, func(px, py int, s Style) {
		buf.Set(px, py, New(' ', s))
	})

	if border.Style != "" && border.Style != BorderNone {
		chars := BorderCharSets[border.Style]
		borderColor := border.Color
		if borderColor == ColorNone {
			borderColor = style.Color
		}
		borderDrawStyle := Style{Color: borderColor}

		if IsInClip(x, y, clip) {
			buf.SetCharMerge(x, y, chars.TopLeft, borderDrawStyle)
		}
		topRunes := BorderLabelRunes(chars.Horizontal, border.Label, width-2)
		for dx, r := range topRunes {
			if IsInClip(x+1+dx, y, clip) {
				buf.SetCharMerge(x+1+dx, y, r, borderDrawStyle)
			}
		}
		if IsInClip(x+width-1, y, clip) {
			buf.SetCharMerge(x+width-1, y, chars.TopRight, borderDrawStyle)
		}
		for dy := 1; dy < height-1; dy++ {
			if IsInClip(x, y+dy, clip) {
				buf.SetCharMerge(x, y+dy, chars.Vertical, borderDrawStyle)
			}
			if IsInClip(x+width-1, y+dy, clip) {
				buf.SetCharMerge(x+width-1, y+dy, chars.Vertical, borderDrawStyle)
			}
		}
		if IsInClip(x, y+height-1, clip) {
			buf.SetCharMerge(x, y+height-1, chars.BottomLeft, borderDrawStyle)
		}
		for dx := 1; dx < width-1; dx++ {
			if IsInClip(x+dx, y+height-1, clip) {
				buf.SetCharMerge(x+dx, y+height-1, chars.Horizontal, borderDrawStyle)
			}
		}
		if IsInClip(x+width-1, y+height-1, clip) {
			buf.SetCharMerge(x+width-1, y+height-1, chars.BottomRight, borderDrawStyle)
		}
	}

	childClip := clipForOverflow(box, el, clip)
	for _, childBox := range box.Children {
		RenderToBuffer(childBox, buf, childClip)
	}
}

func renderBoxLogical(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {
	el := box.Element
	x, y, width, height := box.X, box.Y, box.Width, box.Height

	style := el.Style.Visual
	border := el.Style.Border

	paintBoxBackground(x, y, width, height, style, false, clip, func(px, py int, s Style) {
		buf.Set(px, py, New(' ', s))
	})

	if border.Style != "" && border.Style != BorderNone {
		chars := BorderCharSets[border.Style]
		borderColor := border.Color
		if borderColor == ColorNone {
			borderColor = style.Color
		}
		borderDrawStyle := Style{Color: borderColor}

		if IsInClip(x, y, clip) {
			buf.SetMerge(x, y, New(chars.TopLeft, borderDrawStyle))
		}
		topRunes := BorderLabelRunes(chars.Horizontal, border.Label, width-2)
		for dx, r := range topRunes {
			if IsInClip(x+1+dx, y, clip) {
				buf.SetMerge(x+1+dx, y, New(r, borderDrawStyle))
			}
		}
		if IsInClip(x+width-1, y, clip) {
			buf.SetMerge(x+width-1, y, New(chars.TopRight, borderDrawStyle))
		}
		for dy := 1; dy < height-1; dy++ {
			if IsInClip(x, y+dy, clip) {
				buf.SetMerge(x, y+dy, New(chars.Vertical, borderDrawStyle))
			}
			if IsInClip(x+width-1, y+dy, clip) {
				buf.SetMerge(x+width-1, y+dy, New(chars.Vertical, borderDrawStyle))
			}
		}
		if IsInClip(x, y+height-1, clip) {
			buf.SetMerge(x, y+height-1, New(chars.BottomLeft, borderDrawStyle))
		}
		for dx := 1; dx < width-1; dx++ {
			if IsInClip(x+dx, y+height-1, clip) {
				buf.SetMerge(x+dx, y+height-1, New(chars.Horizontal, borderDrawStyle))
			}
		}
		if IsInClip(x+width-1, y+height-1, clip) {
			buf.SetMerge(x+width-1, y+height-1, New(chars.BottomRight, borderDrawStyle))
		}
	}

	childClip := clipForOverflow(box, el, clip)
	for _, childBox := range box.Children {
		RenderToLogicalBuffer(childBox, buf, childClip)
	}
}

// overflow is carried as a string prop ("hidden"/"scroll"/"visible") rather
// than a Style field - it affects clipping only, not geometry, so it does
// not belong in LayoutStyle.
func elementOverflow(el Element) Overflow {
	if el.Props == nil {
		return OverflowVisible
	}
	switch v := el.Props["overflow"].(type) {
	case Overflow:
		return v
	case string:
		return Overflow(v)
	}
	return OverflowVisible
}

func clipForOverflow(box *LayoutBox, el Element, clip *ClipRegion) *ClipRegion {
	switch elementOverflow(el) {
	case OverflowHidden, OverflowScroll:
		return IntersectClip(clip, &ClipRegion{
			MinX: box.InnerX, MinY: box.InnerY,
			MaxX: box.InnerX + box.InnerWidth, MaxY: box.InnerY + box.InnerHeight,
		})
	default:
		return clip
	}
}

// Text handlers

func measureTextNode(node KeyedElement, ctx *LayoutContext) (int, int) {
	text := CollectTextContent(node)
	lines := strings.Split(text, "\n")
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, RuneWidth(line))
	}
	return maxWidth, len(lines)
}

func layoutTextNode(node KeyedElement, availWidth, availHeight int, ctx *LayoutContext) *LayoutBox {
	text := CollectTextContent(node)
	shouldWrap, _ := node.Element.Props["wrap"].(bool)

	var lines []string
	if shouldWrap {
		lines = WrapText(text, availWidth)
	} else {
		lines = strings.Split(text, "\n")
	}

	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, RuneWidth(line))
	}

	w := min(maxWidth, availWidth)
	h := len(lines)

	wrapped := node.Element
	wrapped.Text = strings.Join(lines, "\n")

	return &LayoutBox{
		X: ctx.X, Y: ctx.Y, Width: w, Height: h,
		InnerX: ctx.X, InnerY: ctx.Y, InnerWidth: w, InnerHeight: h,
		Element: wrapped, Children: nil, ZIndex: node.Element.Style.Layout.ZIndex,
	}
}

func renderText(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {
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
			charX++
		}
	}
}

func renderTextLogical(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {
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
			charX++
		}
	}
}

// Input handlers

func measureInput(node KeyedElement, ctx *LayoutContext) (int, int) {
	layout := node.Element.Style.Layout

	displayValue := ""
	if inp, ok := node.Element.Props["input"].(interface{ DisplayValue() string }); ok {
		displayValue = inp.DisplayValue()
	}

	lines := strings.Split(displayValue, "\n")
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, RuneWidth(line))
	}

	w := maxWidth + 1 // room for the cursor
	h := len(lines)

	if layout.Width >= 0 {
		w = layout.Width
	}
	if layout.Height >= 0 {
		h = layout.Height
	}
	return w, h
}

func layoutInput(node KeyedElement, availWidth, availHeight int, ctx *LayoutContext) *LayoutBox {
	w, h := measureInput(node, ctx)
	return &LayoutBox{
		X: ctx.X, Y: ctx.Y, Width: w, Height: h,
		InnerX: ctx.X, InnerY: ctx.Y, InnerWidth: w, InnerHeight: h,
		Element: node.Element, Children: nil, ZIndex: node.Element.Style.Layout.ZIndex,
	}
}

// Select handlers

func measureSelect(node KeyedElement, ctx *LayoutContext) (int, int) {
	pointerWidth := selectPointerWidth(node.Element)
	options := elementChildrenByTag(node.Element.Children, "option")

	maxOptionWidth := 0
	for _, opt := range options {
		maxOptionWidth = max(maxOptionWidth, RuneWidth(collectElementText(opt)))
	}
	return pointerWidth + maxOptionWidth, len(options)
}

func layoutSelect(node KeyedElement, availWidth, availHeight int, ctx *LayoutContext) *LayoutBox {
	w, h := measureSelect(node, ctx)

	// Registering options from the authored children happens every layout
	// pass and never triggers a re-render - it is bookkeeping, not state.
	options := elementChildrenByTag(node.Element.Children, "option")
	if sel, ok := node.Element.Props["select"].(interface {
		ClearOptions()
		SetOptionCount(int)
		RegisterOptionAny(int, any)
	}); ok {
		sel.ClearOptions()
		sel.SetOptionCount(len(options))
		for idx, opt := range options {
			if val, ok := opt.Props["value"]; ok {
				sel.RegisterOptionAny(idx, val)
			}
		}
	}

	return &LayoutBox{
		X: ctx.X, Y: ctx.Y, Width: w, Height: h,
		InnerX: ctx.X, InnerY: ctx.Y, InnerWidth: w, InnerHeight: h,
		Element: node.Element, Children: nil, ZIndex: node.Element.Style.Layout.ZIndex,
	}
}

func selectPointerWidth(el Element) int {
	if w, ok := el.Props["pointerWidth"].(int); ok {
		return w
	}
	return 2
}

func elementChildrenByTag(children []Element, tag string) []Element {
	var result []Element
	for _, c := range children {
		if c.TypeTag == tag {
			result = append(result, c)
		}
	}
	return result
}

func collectElementText(el Element) string {
	if el.IsText {
		return el.Text
	}
	var b strings.Builder
	for _, c := range el.Children {
		b.WriteString(collectElementText(c))
	}
	return b.String()
}
