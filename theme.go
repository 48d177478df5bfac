// Theme is a small semantic-color palette threaded through a RuntimeContext,
// letting components ask for "the accent color" instead of hard-coding a
// Color constant - the same push/pop-by-context idea the teacher's
// Owner/Global chain uses for the reactive root, applied to styling instead
// of signal scope.
package scanline

// Theme is a named palette of semantic colors. Components read it via
// RuntimeContext.Theme() rather than importing a global.
type Theme struct {
	Palette Palette
}

// Palette names the semantic colors a themed component can ask for.
type Palette struct {
	Primary   Color
	Secondary Color
	Accent    Color
	Success   Color
	Warning   Color
	Danger    Color
	Muted     Color
	Text      Color
	Background Color
}

// DefaultPalette is the palette new RuntimeContexts start with.
var DefaultPalette = Palette{
	Primary:    ColorCyan,
	Secondary:  ColorBlue,
	Accent:     ColorMagenta,
	Success:    ColorGreen,
	Warning:    ColorYellow,
	Danger:     ColorRed,
	Muted:      ColorBlack,
	Text:       ColorWhite,
	Background: ColorNone,
}

// NewTheme wraps a palette as a Theme.
func NewTheme(palette Palette) *Theme {
	return &Theme{Palette: palette}
}

// With returns a copy of the theme with overlay's non-zero fields applied
// over the receiver's palette - the "push a derived theme" operation a
// themed subtree uses to tint its children without mutating the parent.
func (t *Theme) With(overlay Palette) *Theme {
	p := t.Palette
	if overlay.Primary != ColorNone {
		p.Primary = overlay.Primary
	}
	if overlay.Secondary != ColorNone {
		p.Secondary = overlay.Secondary
	}
	if overlay.Accent != ColorNone {
		p.Accent = overlay.Accent
	}
	if overlay.Success != ColorNone {
		p.Success = overlay.Success
	}
	if overlay.Warning != ColorNone {
		p.Warning = overlay.Warning
	}
	if overlay.Danger != ColorNone {
		p.Danger = overlay.Danger
	}
	if overlay.Muted != ColorNone {
		p.Muted = overlay.Muted
	}
	if overlay.Text != ColorNone {
		p.Text = overlay.Text
	}
	if overlay.Background != ColorNone {
		p.Background = overlay.Background
	}
	return &Theme{Palette: p}
}
