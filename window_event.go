package canopy

import "image"

// --- Window events ---
//
// The input layer translates platform input into these messages. Pointer
// messages carry window coordinates and, where a target exists, coordinates
// local to that target's bounds.

// PointerInfo is shared by the pointer messages.
type PointerInfo struct {
	X, Y           float64 // window coordinates
	LocalX, LocalY float64 // relative to the target's bounds
	Button         MouseButton
	Modifiers      KeyModifiers
}

// MouseMove is sent to the hovered (or captured) entity when the cursor
// moves.
type MouseMove struct{ PointerInfo }

// MouseDown is sent when a button goes down.
type MouseDown struct{ PointerInfo }

// MouseUp is sent when a button is released.
type MouseUp struct{ PointerInfo }

// MouseDoubleClick is sent instead of a second MouseDown when two presses
// land on the same entity within the double-click interval.
type MouseDoubleClick struct{ PointerInfo }

// MouseScroll carries wheel movement in lines.
type MouseScroll struct {
	DeltaX, DeltaY float64
	Modifiers      KeyModifiers
}

// MouseEnter is sent directly to an entity the cursor moved onto.
type MouseEnter struct{}

// MouseLeave is sent directly to an entity the cursor moved off.
type MouseLeave struct{}

// PressDown is sent directly to the entity a button went down on.
type PressDown struct{ PointerInfo }

// Press is sent directly to the pressed entity when the button is released
// over it without a drag.
type Press struct{ PointerInfo }

// DragInfo is shared by the drag messages.
type DragInfo struct {
	PointerInfo
	StartX, StartY float64
	DeltaX, DeltaY float64 // movement since the previous drag message
}

// DragStart is sent once the pointer moves past the drag dead zone.
type DragStart struct{ DragInfo }

// Drag is sent for every move while dragging.
type Drag struct{ DragInfo }

// DragEnd is sent when the button is released after a drag.
type DragEnd struct{ DragInfo }

// KeyDown is sent to the focused entity.
type KeyDown struct {
	Key       Key
	Modifiers KeyModifiers
	Repeat    bool
}

// KeyUp is sent to the focused entity.
type KeyUp struct {
	Key       Key
	Modifiers KeyModifiers
}

// CharInput carries one typed character for the focused entity.
type CharInput struct {
	Char rune
}

// FocusIn is sent directly to an entity that gained focus.
type FocusIn struct{}

// FocusOut is sent directly to an entity that lost focus.
type FocusOut struct{}

// WindowResize is sent to the root when the window size changes.
type WindowResize struct {
	Width, Height float64
}

// WindowClose is sent to the root when the window is asked to close.
type WindowClose struct{}

// --- Internal events ---
//
// Intercepted by the event manager before routing; never delivered to
// listeners or views.

type redrawRequest struct{}

// imageLoaded carries a decoded image from a loader goroutine. The GPU
// image is created on the UI goroutine when the event is intercepted.
type imageLoaded struct {
	path string
	img  image.Image
	err  error
}
