// Package scanline provides the reactive terminal UI framework runtime.
package scanline

import "sync/atomic"

// LayoutStyle is the layout facet of a Style: flex direction, sizing,
// justification, alignment, spacing and positioning. It does not merge
// with another LayoutStyle on Style.Merge - the caller must choose one.
type LayoutStyle struct {
	Direction Direction
	Justify   Justify
	Align     Align
	Position  Position
	Width     int // -1 means unset (fill/measure)
	Height    int
	MinWidth  int
	MinHeight int
	Grow      int
	Gap       int
	Padding   Spacing
	Margin    Spacing
	X, Y      int // absolute-position offsets, only read when Position == PositionAbsolute
	ZIndex    int
}

// BorderFacet is the border facet of a Style.
type BorderFacet struct {
	Style BorderStyle
	Color Color
	Label string
}

// InternalFlags are framework-private bits carried on an Element's Style.
// They never come from user input and are never merged by Style.Merge;
// the reconciler and layout engine set them directly.
type InternalFlags struct {
	// Static marks a subtree as unchanging; the renderer paints it once
	// above the dynamic region instead of re-diffing it every frame.
	Static bool
}

// ElementStyle is the union of the four orthogonal style facets named in
// the data model: layout, visual, border, and internal flags.
type ElementStyle struct {
	Layout   LayoutStyle
	Visual   Style // defined in cell.go: color/background/bold/.../strikethrough
	Border   BorderFacet
	Internal InternalFlags
}

// Merge composes only the visual and border facets of two styles; the
// overlay's layout facet is ignored entirely and the overlay's internal
// flags are ignored too - merging a style never changes whether a subtree
// is static. Layout is deliberately excluded: a container sizes and
// positions itself once, and letting an overlay silently override layout
// would make reasoning about flex results impossible.
func (base ElementStyle) Merge(overlay ElementStyle) ElementStyle {
	result := base
	result.Visual = base.Visual.Merge(overlay.Visual)
	if overlay.Border.Style != "" && overlay.Border.Style != BorderNone {
		result.Border = overlay.Border
	} else if overlay.Border.Color != ColorNone {
		result.Border.Color = overlay.Border.Color
	}
	return result
}

// elementIdCounter hands out frame-local, monotonic ElementIds. It is
// process-wide (not per-runtime) because it only needs to be unique within
// a frame, never stable across frames - see I1.
var elementIdCounter atomic.Int64

// NextElementId allocates the next ElementId. ElementIds are unstable
// across frames by design; only NodeKey (see reconciler.go) carries
// identity across renders.
func NextElementId() int64 {
	id := elementIdCounter.Add(1)
	if id <= 0 {
		panicLoud(ErrIdCounterExhausted, "", "ElementId counter wrapped around int64")
	}
	return id
}

// Element is an immutable description of one UI node: either a container
// with ordered children, or a text leaf with a string payload. TypeTag is
// a stable identifier for "what kind of node this is" (an intrinsic name
// like "box" or "text", or a component's registered tag) and participates
// in NodeKey construction so that identically-keyed siblings of different
// kinds never collide (see reconciler.go).
type Element struct {
	TypeTag   string
	Key       string // author-supplied, stable across frames; "" if none
	ElementId int64  // frame-local only, assigned at construction time

	IsText bool
	Text   string // only meaningful when IsText

	Style ElementStyle

	// Props carries widget-specific, non-style data: focus primitives
	// (*Input, *Select), callbacks, hyperlink targets, and similar escape
	// hatches that a fixed Style cannot anticipate. Keyed by conventional
	// string names the way the teacher's node.Props map was.
	Props map[string]any

	// Render marks this Element as a functional component instance rather
	// than an intrinsic: the hook engine (hooks.go) calls Render(ctx) once
	// per frame, inside a hook frame keyed by this node's NodeKey, and
	// substitutes the result in its place before layout ever sees the tree.
	Render func(ctx *RuntimeContext) Element

	Children []Element
}

// Text creates a text leaf element.
func Text(content string) Element {
	return Element{
		TypeTag:   "text",
		ElementId: NextElementId(),
		IsText:    true,
		Text:      content,
	}
}

// Textf is a convenience text leaf that does not format - kept distinct
// from Text only to mirror call sites that previously built strings ad
// hoc; both are plain string payloads.
func Textf(content string) Element {
	return Text(content)
}

// Box creates a container element with the given style, props and
// children. typeTag identifies the intrinsic (e.g. "box") or component tag.
func Box(typeTag string, style ElementStyle, props map[string]any, children ...Element) Element {
	return Element{
		TypeTag:   typeTag,
		ElementId: NextElementId(),
		Style:     style,
		Props:     props,
		Children:  children,
	}
}

// Component creates a functional-component element: typeTag identifies the
// component for debugging/NodeKey composition, render is invoked once per
// frame by the hook engine.
func Component(typeTag string, render func(ctx *RuntimeContext) Element) Element {
	return Element{
		TypeTag:   typeTag,
		ElementId: NextElementId(),
		Render:    render,
	}
}

// WithKey returns a copy of the element with the given author-supplied key.
func (e Element) WithKey(key string) Element {
	e.Key = key
	return e
}

// PropsHash is a stable structural hash of everything about this element
// that the reconciler should treat as "props" for diffing purposes: style,
// text payload, and the Props map's comparable entries. It deliberately
// excludes ElementId (frame-local, meaningless for diffing) and Children
// (diffed recursively by the reconciler, not folded into the parent hash).
func (e Element) PropsHash() uint64 {
	h := newHasher()
	h.writeString(e.TypeTag)
	h.writeBool(e.IsText)
	h.writeString(e.Text)
	h.writeStyle(e.Style)
	h.writeProps(e.Props)
	return h.sum()
}
