// Spacer is an invisible fixed-size layout primitive.
package scanline

func init() {
	RegisterIntrinsic("spacer", &IntrinsicHandler{
		Measure:       measureSpacer,
		Layout:        layoutSpacer,
		Render:        renderSpacer,
		RenderLogical: renderSpacerLogical,
	})
}

func measureSpacer(node KeyedElement, ctx *LayoutContext) (int, int) {
	layout := node.Element.Style.Layout
	return max(0, layout.Width), max(0, layout.Height)
}

func layoutSpacer(node KeyedElement, availWidth, availHeight int, ctx *LayoutContext) *LayoutBox {
	w, h := measureSpacer(node, nil)
	return &LayoutBox{
		X: ctx.X, Y: ctx.Y, Width: w, Height: h,
		InnerX: ctx.X, InnerY: ctx.Y, InnerWidth: w, InnerHeight: h,
		Element: node.Element,
	}
}

// renderSpacer is a no-op - spacers are invisible.
func renderSpacer(box *LayoutBox, buf *CellBuffer, clip *ClipRegion) {}

// renderSpacerLogical is a no-op - spacers are invisible.
func renderSpacerLogical(box *LayoutBox, buf *LogicalBuffer, clip *ClipRegion) {}
