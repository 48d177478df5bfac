// Print offers a one-shot, non-interactive way to render an element tree
// to a string or writer - useful for snapshot tests and static CLI output
// that doesn't need the full App Runner loop.
package scanline

import (
	"io"
	"os"
	"strings"
)

// PrintOptions configures dimensions for Fprint.
type PrintOptions struct {
	Width  int // 0 = auto-detect terminal width (default 80)
	Height int // 0 = auto-detect terminal height (default 24)
}

// Print renders an element tree to stdout with ANSI styling.
func Print(el Element) {
	Fprint(os.Stdout, el, PrintOptions{})
}

// Sprint renders an element tree to a string with ANSI styling.
// Width/height auto-detected from terminal (falls back to 80x24).
func Sprint(el Element) string {
	var sb strings.Builder
	Fprint(&sb, el, PrintOptions{})
	return sb.String()
}

// Fprint renders an element tree to a writer with ANSI styling. It expands
// and reconciles against a fresh, throwaway RuntimeContext/Reconciler each
// call, so hook state never survives between Fprint calls - appropriate for
// one-shot rendering, not the App Runner's persistent per-frame identity.
func Fprint(w io.Writer, el Element, opts PrintOptions) {
	width := opts.Width
	height := opts.Height

	if width == 0 || height == 0 {
		tw, th, err := GetSize(Stdout())
		if err == nil {
			if width == 0 {
				width = tw
			}
			if height == 0 {
				height = th
			}
		}
	}
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	ctx := NewRuntimeContext()
	defer ctx.Close()

	expanded := Expand(ctx, el)
	keyed := NewReconciler().Reconcile(expanded).Tree

	layoutBox := ComputeLayout(keyed, LayoutContext{X: 0, Y: 0, Width: width, Height: height})

	contentHeight := min(layoutBox.Height, height)
	if contentHeight <= 0 {
		return
	}

	buf := NewCellBuffer(width, contentHeight)
	RenderToBuffer(layoutBox, buf, nil)

	lastRow := 0
	for y := contentHeight - 1; y >= 0; y-- {
		for x := 0; x < width; x++ {
			c := buf.Get(x, y)
			if c.Char != ' ' || c.Style != EmptyStyle {
				lastRow = y
				goto found
			}
		}
	}
found:

	output := bufferToAnsiLines(buf, lastRow)
	io.WriteString(w, output)
	io.WriteString(w, "\n")
}
