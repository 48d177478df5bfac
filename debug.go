package scanline

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// DebugLayout prints the layout tree to stdout for debugging.
func DebugLayout(box *LayoutBox) {
	FprintLayout(os.Stdout, box)
}

// SprintLayout returns the layout tree as a string for debugging.
func SprintLayout(box *LayoutBox) string {
	var sb strings.Builder
	FprintLayout(&sb, box)
	return sb.String()
}

// FprintLayout writes the layout tree to the given writer for debugging.
func FprintLayout(w io.Writer, box *LayoutBox) {
	fprintLayoutIndent(w, box, 0)
}

// FprintVisualMapping writes, for each logical row of buf, the visual row
// it starts at and how many visual rows it wrapped into at the given
// terminal width. A logical row spanning more than one visual row is where
// a single authored line got split by wrapping - useful when a rendered
// frame's scroll position looks off relative to its source content.
func FprintVisualMapping(w io.Writer, buf *LogicalBuffer, width int) {
	visual := buf.ToVisualRows(width)
	for y := 0; y < buf.Height(); y++ {
		start := visual.VisualRowForLogical(y)
		span := 1
		if y+1 < buf.Height() {
			span = visual.VisualRowForLogical(y+1) - start
		} else {
			span = len(visual.Rows) - start
		}
		fmt.Fprintf(w, "logical[%d] len=%d -> visual[%d..%d)\n", y, buf.RowLength(y), start, start+span)
	}
}

func fprintLayoutIndent(w io.Writer, box *LayoutBox, depth int) {
	indent := strings.Repeat("  ", depth)

	// Determine node type name
	nodeType := box.Element.TypeTag
	if box.Element.IsText {
		nodeType = "text"
	}
	if nodeType == "" {
		nodeType = "unknown"
	}

	// Position and dimensions
	line := fmt.Sprintf("%s%s x=%d y=%d w=%d h=%d", indent, nodeType, box.X, box.Y, box.Width, box.Height)

	// Show inner dimensions when they differ from outer
	if box.InnerX != box.X || box.InnerY != box.Y || box.InnerWidth != box.Width || box.InnerHeight != box.Height {
		line += fmt.Sprintf(" inner(x=%d y=%d w=%d h=%d)", box.InnerX, box.InnerY, box.InnerWidth, box.InnerHeight)
	}

	fmt.Fprintln(w, line)

	for _, child := range box.Children {
		fprintLayoutIndent(w, child, depth+1)
	}
}
