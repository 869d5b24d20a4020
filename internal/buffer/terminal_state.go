package buffer

// MouseMode selects what mouse-reporting mode (if any) a terminal-driven
// buffer believes is active. The engine does not generate mouse events
// itself; this is state the parser (C5) can toggle and the renderer (C10)
// can query.
type MouseMode int

const (
	MouseOff MouseMode = iota
	MouseX10
	MouseNormal
	MouseButtonEvent
	MouseAnyEvent
)

// TextWindow is an optional scrolling sub-rectangle (DECSTBM-style region
// plus horizontal bounds) that confines cursor movement and scrolling.
type TextWindow struct {
	Left, Top, Right, Bottom int
}

// TerminalState holds the margins, scrolling region, mouse mode and ice
// flag carried by a terminal-driven TextBuffer (spec §3.3).
type TerminalState struct {
	MarginLeft, MarginRight int
	ScrollTop, ScrollBottom int
	Mouse                   MouseMode
	IceColors               bool
	Window                  *TextWindow
}

// NewTerminalState returns state with margins spanning [0, width) and
// scroll region spanning the full height.
func NewTerminalState(width, height int) TerminalState {
	return TerminalState{
		MarginLeft:    0,
		MarginRight:   width - 1,
		ScrollTop:     0,
		ScrollBottom:  height - 1,
	}
}
