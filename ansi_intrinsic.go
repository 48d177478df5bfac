// Ansi intrinsic renders pre-escaped ANSI text verbatim (the escape codes
// are parsed into per-segment styles, see ansi_parse.go) instead of being
// stripped to plain text the way the "text" intrinsic treats its content.
package scanline

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

func init() {
	RegisterIntrinsic("ansi", &IntrinsicHandler{
		Measure:       measureAnsi,
		Layout:        layoutAnsi,
		Render:        renderAnsi,
		RenderLogical: renderAnsiLogical,
	})
}

func measureAnsi(node KeyedElement, ctx *LayoutContext) (int, int) {
	text := getAnsiContent(node.Element)
	lines := strings.Split(text, "\n")
	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, RuneWidth(line)) // RuneWidth already strips ANSI
	}
	margin := node.Element.Style.Layout.Margin
	return maxWidth + margin.Left + margin.Right, len(lines) + margin.Top + margin.Bottom
}

func layoutAnsi(node KeyedElement, availWidth, availHeight int, ctx *LayoutContext) *LayoutBox {
	text := getAnsiContent(node.Element)
	shouldWrap, _ := node.Element.Props["wrap"].(bool)
	margin := node.Element.Style.Layout.Margin

	contentWidth := max(0, availWidth-margin.Left-margin.Right)

	var lines []string
	if shouldWrap {
		lines = WrapText(text, contentWidth)
	} else {
		lines = strings.Split(text, "\n")
	}

	maxWidth := 0
	for _, line := range lines {
		maxWidth = max(maxWidth, RuneWidth(line))
	}

	w := min(maxWidth, contentWidth)
	h := len(lines)

	synthetic := node.Element
	synthetic.Props = clonedProps(node.Element.Props)
	synthetic.Props["content"] = strings.Join(lines, "\n")

	boxX := ctx.X + margin.Left
	boxY := ctx.Y + margin.Top

	return &LayoutBox{
		X: boxX, Y: boxY, Width: w, Height: h,
		InnerX: boxX, InnerY: boxY, InnerWidth: w, InnerHeight: h,
		Element: synthetic, Children: nil, ZIndex: node.Element.Style.Layout.ZIndex,
	}
}

func clonedProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	return out
}

func getAnsiContent(el Element) string {
	if s, ok := el.Props["content"].(string); ok {
		return s
	}
	return collectElementText(el)
}

func renderAnsi(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {
	el := box.Element
	x, y := box.X, box.Y
	baseStyle := el.Style.Visual
	lines := strings.Split(getAnsiContent(el), "\n")

	for lineIdx, line := range lines {
		lineY := y + lineIdx
		if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
			continue
		}
		charX := x
		for _, seg := range ParseAnsiLine(line, baseStyle) {
			for _, char := range seg.Text {
				if IsInClip(charX, lineY, clip) {
					buf.SetCharMerge(charX, lineY, char, seg.Style)
				}
				charX += runewidth.RuneWidth(char)
			}
		}
	}
}

func renderAnsiLogical(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {
	el := box.Element
	x, y := box.X, box.Y
	baseStyle := el.Style.Visual
	lines := strings.Split(getAnsiContent(el), "\n")

	for lineIdx, line := range lines {
		lineY := y + lineIdx
		if clip != nil && (lineY < clip.MinY || lineY >= clip.MaxY) {
			continue
		}
		charX := x
		for _, seg := range ParseAnsiLine(line, baseStyle) {
			for _, char := range seg.Text {
				if IsInClip(charX, lineY, clip) {
					buf.SetMerge(charX, lineY, New(char, seg.Style))
				}
				charX += runewidth.RuneWidth(char)
			}
		}
	}
}
