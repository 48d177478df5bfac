// Layout provides the flexbox layout engine for terminal UI element trees.
package scanline

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
	"github.com/mattn/go-runewidth"
)

// Direction specifies the main axis for flex layout.
type Direction string

const (
	Row    Direction = "row"
	Column Direction = "column"
)

// Justify specifies alignment along the main axis.
type Justify string

const (
	JustifyStart        Justify = "start"
	JustifyCenter       Justify = "center"
	JustifyEnd          Justify = "end"
	JustifySpaceBetween Justify = "space-between"
	JustifySpaceAround  Justify = "space-around"
)

// Align specifies alignment along the cross axis.
type Align string

const (
	AlignStart   Align = "start"
	AlignCenter  Align = "center"
	AlignEnd     Align = "end"
	AlignStretch Align = "stretch"
)

// Position specifies positioning mode.
type Position string

const (
	PositionRelative Position = "relative"
	PositionAbsolute Position = "absolute"
)

// BorderStyle specifies the border appearance.
type BorderStyle string

const (
	BorderNone    BorderStyle = "none"
	BorderSingle  BorderStyle = "single"
	BorderDouble  BorderStyle = "double"
	BorderRounded BorderStyle = "rounded"
	BorderBold    BorderStyle = "bold"
)

// Overflow specifies overflow behavior.
type Overflow string

const (
	OverflowVisible Overflow = "visible"
	OverflowHidden  Overflow = "hidden"
	OverflowScroll  Overflow = "scroll"
)

// Spacing represents padding or margin on all sides.
type Spacing struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// UniformSpacing builds a Spacing with the same value on all four sides.
func UniformSpacing(v int) Spacing {
	return Spacing{Top: v, Right: v, Bottom: v, Left: v}
}

// BorderChars holds the characters for drawing a border.
type BorderChars struct {
	TopLeft     rune
	TopRight    rune
	BottomLeft  rune
	BottomRight rune
	Horizontal  rune
	Vertical    rune
}

// BorderCharSets maps each BorderStyle to its drawing characters.
var BorderCharSets = map[BorderStyle]BorderChars{
	BorderSingle: {
		TopLeft: '┌', TopRight: '┐', BottomLeft: '└', BottomRight: '┘',
		Horizontal: '─', Vertical: '│',
	},
	BorderDouble: {
		TopLeft: '╔', TopRight: '╗', BottomLeft: '╚', BottomRight: '╝',
		Horizontal: '═', Vertical: '║',
	},
	BorderRounded: {
		TopLeft: '╭', TopRight: '╮', BottomLeft: '╰', BottomRight: '╯',
		Horizontal: '─', Vertical: '│',
	},
	BorderBold: {
		TopLeft: '┏', TopRight: '┓', BottomLeft: '┗', BottomRight: '┛',
		Horizontal: '━', Vertical: '┃',
	},
}

// ClipRegion defines the visible area for clipping content.
type ClipRegion struct {
	MinX, MinY int // inclusive
	MaxX, MaxY int // exclusive
}

// IsInClip checks if a position is within the clip region.
func IsInClip(x, y int, clip *ClipRegion) bool {
	if clip == nil {
		return true
	}
	return x >= clip.MinX && x < clip.MaxX && y >= clip.MinY && y < clip.MaxY
}

// IntersectClip intersects two clip regions, returning the overlapping area.
func IntersectClip(a, b *ClipRegion) *ClipRegion {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &ClipRegion{
		MinX: max(a.MinX, b.MinX),
		MinY: max(a.MinY, b.MinY),
		MaxX: min(a.MaxX, b.MaxX),
		MaxY: min(a.MaxY, b.MaxY),
	}
}

// LayoutBox is the computed geometry for one element, in screen coordinates.
type LayoutBox struct {
	X, Y          int
	Width, Height int

	InnerX, InnerY              int // inside border and padding
	InnerWidth, InnerHeight     int

	Element Element
	NodeKey NodeKey // identity carried over from the reconciler, for focus/measure lookups

	Children []*LayoutBox
	ZIndex   int
}

// LayoutContext gives a layout step the space it has to work with.
type LayoutContext struct {
	X, Y          int
	Width, Height int
}

// LayoutResult is the outcome of laying out one subtree: its box, plus any
// absolutely-positioned descendants that must be merged at an ancestor.
type LayoutResult struct {
	Box           *LayoutBox
	AbsoluteBoxes []*LayoutBox
}

// RuneWidth returns the display width of a string using East-Asian width
// rules (wide CJK glyphs count as 2 cells), the way the renderer counts
// cells too - unlike the teacher's original ASCII-only rune count. ANSI
// escape sequences are stripped first, so they count as zero width.
func RuneWidth(s string) int {
	return runewidth.StringWidth(StripAnsi(s))
}

// ComputeLayout computes layout for an already-reconciled element tree.
// Unlike the teacher's ComputeLayout, it does not expand functional
// components - the hook engine (hooks.go) and reconciler (reconciler.go)
// have already reduced the tree to intrinsics and text leaves by the time
// layout runs.
func ComputeLayout(keyed KeyedElement, ctx LayoutContext) *LayoutBox {
	result := layoutNode(keyed, ctx)

	allAbsolute := collectAbsoluteBoxes(result.Box)
	allAbsolute = append(allAbsolute, result.AbsoluteBoxes...)
	sortByZIndex(allAbsolute)

	newChildren := make([]*LayoutBox, len(result.Box.Children)+len(allAbsolute))
	copy(newChildren, result.Box.Children)
	copy(newChildren[len(result.Box.Children):], allAbsolute)

	box := *result.Box
	box.Children = newChildren
	return &box
}

// KeyedElement pairs an Element with the NodeKey the reconciler assigned it.
type KeyedElement struct {
	Element  Element
	NodeKey  NodeKey
	Children []KeyedElement
}

func sortByZIndex(boxes []*LayoutBox) {
	for i := 0; i < len(boxes)-1; i++ {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].ZIndex > boxes[j].ZIndex {
				boxes[i], boxes[j] = boxes[j], boxes[i]
			}
		}
	}
}

func collectAbsoluteBoxes(box *LayoutBox) []*LayoutBox {
	var result []*LayoutBox
	for _, child := range box.Children {
		if child.Element.Style.Layout.Position == PositionAbsolute {
			result = append(result, child)
		}
		result = append(result, collectAbsoluteBoxes(child)...)
	}
	return result
}

// MeasureNode measures the natural size of a node before flex distribution.
func MeasureNode(node KeyedElement) (width, height int) {
	return measureNode(node)
}

func measureNode(node KeyedElement) (width, height int) {
	el := node.Element
	if el.IsText {
		return measureText(el.Text)
	}

	if handler := GetIntrinsicHandler(el.TypeTag); handler != nil {
		if handler.Measure != nil {
			return handler.Measure(node, nil)
		}
	}

	layout := el.Style.Layout
	borderSize := 0
	if el.Style.Border.Style != "" && el.Style.Border.Style != BorderNone {
		borderSize = 1
	}

	contentWidth, contentHeight := 0, 0
	relativeChildren := filterRelativeChildren(node)
	sizes := make([]struct{ w, h int }, len(relativeChildren))
	for i, c := range relativeChildren {
		w, h := measureNode(c)
		sizes[i] = struct{ w, h int }{w, h}
	}

	if layout.Direction == Row {
		for i, s := range sizes {
			contentWidth += s.w
			if i > 0 {
				contentWidth += layout.Gap
			}
			contentHeight = max(contentHeight, s.h)
		}
	} else {
		for i, s := range sizes {
			contentHeight += s.h
			if i > 0 {
				contentHeight += layout.Gap
			}
			contentWidth = max(contentWidth, s.w)
		}
	}

	totalWidth := contentWidth + layout.Padding.Left + layout.Padding.Right + borderSize*2
	totalHeight := contentHeight + layout.Padding.Top + layout.Padding.Bottom + borderSize*2

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

func measureText(text string) (int, int) {
	lines := strings.Split(text, "\n")
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, RuneWidth(line))
	}
	return maxWidth, len(lines)
}

// LayoutNode computes layout for a single already-keyed node.
func LayoutNode(node KeyedElement, ctx LayoutContext) LayoutResult {
	return layoutNode(node, ctx)
}

func layoutNode(node KeyedElement, ctx LayoutContext) LayoutResult {
	el := node.Element

	if el.TypeTag == "fragment" {
		return layoutFragment(node, ctx)
	}

	if el.IsText {
		maxWidth, lineCount := measureText(el.Text)
		w := min(maxWidth, ctx.Width)
		return LayoutResult{Box: &LayoutBox{
			X: ctx.X, Y: ctx.Y, Width: w, Height: lineCount,
			InnerX: ctx.X, InnerY: ctx.Y, InnerWidth: w, InnerHeight: lineCount,
			Element: el, NodeKey: node.NodeKey,
			ZIndex: el.Style.Layout.ZIndex,
		}}
	}

	if handler := GetIntrinsicHandler(el.TypeTag); handler != nil && handler.Layout != nil {
		box := handler.Layout(node, ctx.Width, ctx.Height, &ctx)
		box.NodeKey = node.NodeKey
		return LayoutResult{Box: box}
	}

	layout := el.Style.Layout
	border := el.Style.Border.Style
	borderSize := 0
	if border != "" && border != BorderNone {
		borderSize = 1
	}

	measuredW, measuredH := measureNode(node)

	boxWidth := layout.Width
	if boxWidth < 0 {
		boxWidth = ctx.Width - layout.Margin.Left - layout.Margin.Right
		if boxWidth < 0 {
			boxWidth = measuredW
		}
	}
	boxHeight := layout.Height
	if boxHeight < 0 {
		boxHeight = ctx.Height - layout.Margin.Top - layout.Margin.Bottom
		if boxHeight < 0 {
			boxHeight = measuredH
		}
	}

	boxX := ctx.X + layout.Margin.Left
	boxY := ctx.Y + layout.Margin.Top

	innerX := boxX + borderSize + layout.Padding.Left
	innerY := boxY + borderSize + layout.Padding.Top
	innerWidth := boxWidth - borderSize*2 - layout.Padding.Left - layout.Padding.Right
	innerHeight := boxHeight - borderSize*2 - layout.Padding.Top - layout.Padding.Bottom

	relativeChildren := filterRelativeChildren(node)
	absoluteChildren := filterAbsoluteChildren(node)

	measurements := make([]childMeasurement, len(relativeChildren))
	for i, c := range relativeChildren {
		w, h := measureNode(c)
		measurements[i] = childMeasurement{node: c, width: w, height: h}
	}

	var absoluteBoxes []*LayoutBox
	childBoxes := layoutFlexChildren(
		measurements,
		LayoutContext{X: innerX, Y: innerY, Width: innerWidth, Height: innerHeight},
		layout.Direction, layout.Justify, layout.Align, layout.Gap,
		&absoluteBoxes,
	)

	for _, absChild := range absoluteChildren {
		absLayout := absChild.Element.Style.Layout
		result := layoutNode(absChild, LayoutContext{
			X: boxX + absLayout.X, Y: boxY + absLayout.Y,
			Width: ctx.Width - absLayout.X, Height: ctx.Height - absLayout.Y,
		})
		absoluteBoxes = append(absoluteBoxes, result.Box)
		absoluteBoxes = append(absoluteBoxes, result.AbsoluteBoxes...)
	}

	return LayoutResult{
		Box: &LayoutBox{
			X: boxX, Y: boxY, Width: boxWidth, Height: boxHeight,
			InnerX: innerX, InnerY: innerY, InnerWidth: innerWidth, InnerHeight: innerHeight,
			Element: el, NodeKey: node.NodeKey,
			Children: childBoxes, ZIndex: layout.ZIndex,
		},
		AbsoluteBoxes: absoluteBoxes,
	}
}

func layoutFragment(node KeyedElement, ctx LayoutContext) LayoutResult {
	var children []*LayoutBox
	var absoluteBoxes []*LayoutBox
	offsetY := 0

	for _, child := range node.Children {
		if child.Element.Style.Layout.Position == PositionAbsolute {
			result := layoutNode(child, ctx)
			absoluteBoxes = append(absoluteBoxes, result.Box)
			absoluteBoxes = append(absoluteBoxes, result.AbsoluteBoxes...)
			continue
		}
		result := layoutNode(child, LayoutContext{
			X: ctx.X, Y: ctx.Y + offsetY, Width: ctx.Width, Height: ctx.Height - offsetY,
		})
		children = append(children, result.Box)
		absoluteBoxes = append(absoluteBoxes, result.AbsoluteBoxes...)
		offsetY += result.Box.Height + child.Element.Style.Layout.Margin.Bottom
	}

	return LayoutResult{Box: &LayoutBox{
		X: ctx.X, Y: ctx.Y, Width: ctx.Width, Height: offsetY,
		InnerX: ctx.X, InnerY: ctx.Y, InnerWidth: ctx.Width, InnerHeight: offsetY,
		Children: children,
	}, AbsoluteBoxes: absoluteBoxes}
}

// ChildMeasurement holds a measured child node (exported for intrinsic
// widgets that need to lay out their own children, e.g. select.go).
type ChildMeasurement struct {
	Node   KeyedElement
	Width  int
	Height int
}

type childMeasurement struct {
	node   KeyedElement
	width  int
	height int
}

// LayoutFlexChildren lays out children using flexbox rules; exported for
// intrinsic widgets building their own sub-layout.
func LayoutFlexChildren(
	children []ChildMeasurement, ctx LayoutContext,
	direction Direction, justify Justify, align Align, gap int,
	absoluteBoxes *[]*LayoutBox,
) []*LayoutBox {
	internal := make([]childMeasurement, len(children))
	for i, c := range children {
		internal[i] = childMeasurement{node: c.Node, width: c.Width, height: c.Height}
	}
	return layoutFlexChildren(internal, ctx, direction, justify, align, gap, absoluteBoxes)
}

func layoutFlexChildren(
	children []childMeasurement, ctx LayoutContext,
	direction Direction, justify Justify, align Align, gap int,
	absoluteBoxes *[]*LayoutBox,
) []*LayoutBox {
	if len(children) == 0 {
		return nil
	}

	isRow := direction == Row

	totalMainSize := 0
	for i, child := range children {
		margin := child.node.Element.Style.Layout.Margin
		var mainMargin, mainSize int
		if isRow {
			mainMargin, mainSize = margin.Left+margin.Right, child.width
		} else {
			mainMargin, mainSize = margin.Top+margin.Bottom, child.height
		}
		totalMainSize += mainMargin + mainSize
		if i > 0 {
			totalMainSize += gap
		}
	}

	availableMain, availableCross := ctx.Width, ctx.Height
	if !isRow {
		availableMain, availableCross = ctx.Height, ctx.Width
	}

	totalGrow := 0
	growValues := make([]int, len(children))
	for i, child := range children {
		layout := child.node.Element.Style.Layout
		grow := layout.Grow
		if isRow && layout.Width >= 0 {
			grow = 0
		} else if !isRow && layout.Height >= 0 {
			grow = 0
		}
		growValues[i] = grow
		totalGrow += grow
	}

	extraSpace := 0
	if totalGrow > 0 && availableMain > totalMainSize {
		extraSpace = availableMain - totalMainSize
	}

	growShares := make([]int, len(children))
	if totalGrow > 0 && extraSpace > 0 {
		remaining := extraSpace
		for i := range children {
			if growValues[i] > 0 {
				share := (extraSpace * growValues[i]) / totalGrow
				growShares[i] = share
				remaining -= share
			}
		}
		for i := range children {
			if remaining <= 0 {
				break
			}
			if growValues[i] > 0 {
				growShares[i]++
				remaining--
			}
		}
	}

	mainPos, extraGap := 0, 0
	switch justify {
	case JustifyStart:
		mainPos = 0
	case JustifyCenter:
		mainPos = max(0, (availableMain-totalMainSize)/2)
	case JustifyEnd:
		mainPos = max(0, availableMain-totalMainSize)
	case JustifySpaceBetween:
		if len(children) > 1 {
			extraGap = max(0, (availableMain-totalMainSize+gap*(len(children)-1))/(len(children)-1))
		}
	case JustifySpaceAround:
		if len(children) > 0 {
			totalSpace := availableMain - totalMainSize + gap*(len(children)-1)
			extraGap = totalSpace / len(children)
			mainPos = extraGap / 2
		}
	}

	var boxes []*LayoutBox
	for i, child := range children {
		margin := child.node.Element.Style.Layout.Margin
		var childMainSize, childCrossSize, marginBefore, marginAfter int
		if isRow {
			childMainSize, childCrossSize = child.width, child.height
			marginBefore, marginAfter = margin.Left, margin.Right
		} else {
			childMainSize, childCrossSize = child.height, child.width
			marginBefore, marginAfter = margin.Top, margin.Bottom
		}

		if growShares[i] > 0 {
			childMainSize += growShares[i]
		}

		crossPos, actualCrossSize := 0, childCrossSize
		switch align {
		case AlignStart:
			crossPos, actualCrossSize = 0, childCrossSize
		case AlignCenter:
			crossPos, actualCrossSize = max(0, (availableCross-childCrossSize)/2), childCrossSize
		case AlignEnd:
			crossPos, actualCrossSize = max(0, availableCross-childCrossSize), childCrossSize
		default: // AlignStretch, and the CSS-flex default
			crossPos, actualCrossSize = 0, availableCross
		}

		var childX, childY, childWidth, childHeight int
		if isRow {
			childX, childY = ctx.X+mainPos, ctx.Y+crossPos
			childWidth, childHeight = childMainSize+margin.Left+margin.Right, actualCrossSize+margin.Top+margin.Bottom
		} else {
			childX, childY = ctx.X+crossPos, ctx.Y+mainPos
			childWidth, childHeight = actualCrossSize+margin.Left+margin.Right, childMainSize+margin.Top+margin.Bottom
		}

		result := layoutNode(child.node, LayoutContext{X: childX, Y: childY, Width: childWidth, Height: childHeight})
		boxes = append(boxes, result.Box)
		*absoluteBoxes = append(*absoluteBoxes, result.AbsoluteBoxes...)

		effectiveGap := gap
		if justify == JustifySpaceBetween || justify == JustifySpaceAround {
			effectiveGap = extraGap
		}
		mainPos += marginBefore + childMainSize + marginAfter + effectiveGap
	}

	return boxes
}

// CollectTextContent recursively collects all text content from a node.
func CollectTextContent(node KeyedElement) string {
	if node.Element.IsText {
		return node.Element.Text
	}
	var result strings.Builder
	for _, child := range node.Children {
		result.WriteString(CollectTextContent(child))
	}
	return result.String()
}

// WrapText wraps text to fit within a given display width, breaking on
// uax29 word boundaries rather than ASCII spaces - this is what lets
// scanline wrap CJK and punctuation-heavy text correctly where the
// teacher's strings.LastIndex(" ") heuristic would misplace the break.
func WrapText(text string, maxWidth int) []string {
	if maxWidth <= 0 {
		return []string{text}
	}

	var outputLines []string
	for _, line := range strings.Split(text, "\n") {
		outputLines = append(outputLines, wrapLine(line, maxWidth)...)
	}
	return outputLines
}

func wrapLine(line string, maxWidth int) []string {
	if RuneWidth(line) <= maxWidth {
		return []string{line}
	}

	var lines []string
	var current strings.Builder
	currentWidth := 0

	flush := func() {
		lines = append(lines, strings.TrimRight(current.String(), " "))
		current.Reset()
		currentWidth = 0
	}

	seg := words.NewSegmenter([]byte(line))
	for seg.Next() {
		word := string(seg.Value())
		wordWidth := RuneWidth(word)

		if strings.TrimSpace(word) == "" && currentWidth == 0 {
			continue // don't start a wrapped line with whitespace
		}

		if wordWidth > maxWidth {
			// Hard-wrap a word wider than the line itself.
			if currentWidth > 0 {
				flush()
			}
			for _, r := range word {
				rw := runewidth.RuneWidth(r)
				if currentWidth+rw > maxWidth && currentWidth > 0 {
					flush()
				}
				current.WriteRune(r)
				currentWidth += rw
			}
			continue
		}

		if currentWidth+wordWidth > maxWidth {
			flush()
			if strings.TrimSpace(word) == "" {
				continue
			}
		}
		current.WriteString(word)
		currentWidth += wordWidth
	}
	if currentWidth > 0 || len(lines) == 0 {
		lines = append(lines, strings.TrimRight(current.String(), " "))
	}
	return lines
}

func filterRelativeChildren(node KeyedElement) []KeyedElement {
	var result []KeyedElement
	for _, child := range node.Children {
		if child.Element.Style.Layout.Position != PositionAbsolute {
			result = append(result, child)
		}
	}
	return result
}

func filterAbsoluteChildren(node KeyedElement) []KeyedElement {
	var result []KeyedElement
	for _, child := range node.Children {
		if child.Element.Style.Layout.Position == PositionAbsolute {
			result = append(result, child)
		}
	}
	return result
}

// FilterChildren returns children whose TypeTag matches typeStr.
func FilterChildren(node KeyedElement, typeStr string) []KeyedElement {
	var result []KeyedElement
	for _, child := range node.Children {
		if child.Element.TypeTag == typeStr {
			result = append(result, child)
		}
	}
	return result
}
