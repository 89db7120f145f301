package canopy

import (
	"errors"
	"math"
	"time"

	"go.uber.org/zap"
)

// --- Constants ---

const (
	defaultDragDeadZone        = 4.0 // pixels
	defaultDoubleClickInterval = 500 * time.Millisecond
)

// --- Pointer state ---

type inputState struct {
	x, y float64

	down     bool
	button   MouseButton // button captured at press time
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	pressed  Entity // entity the button went down on
	dragging bool

	lastClick       time.Time
	lastClickEntity Entity

	modifiers KeyModifiers

	dragDeadZone        float64
	doubleClickInterval time.Duration
	now                 func() time.Time

	hitBuf []Entity
}

func newInputState() inputState {
	return inputState{
		pressed:             NullEntity,
		lastClickEntity:     NullEntity,
		dragDeadZone:        defaultDragDeadZone,
		doubleClickInterval: defaultDoubleClickInterval,
		now:                 time.Now,
	}
}

// forget drops references to a removed entity.
func (in *inputState) forget(e Entity) {
	if in.pressed == e {
		in.pressed = NullEntity
		in.dragging = false
	}
	if in.lastClickEntity == e {
		in.lastClickEntity = NullEntity
	}
}

// SetDragDeadZone sets the minimum movement in pixels before a drag starts.
func (cx *Context) SetDragDeadZone(pixels float64) {
	cx.input.dragDeadZone = pixels
}

// SetDoubleClickInterval sets the longest gap between two presses that still
// counts as a double click.
func (cx *Context) SetDoubleClickInterval(d time.Duration) {
	cx.input.doubleClickInterval = d
}

// SetModifiers records the modifier keys held down. Pointer and key messages
// carry them.
func (cx *Context) SetModifiers(mods KeyModifiers) {
	cx.input.modifiers = mods
}

// Modifiers returns the modifier keys held down.
func (cx *Context) Modifiers() KeyModifiers { return cx.input.modifiers }

// MousePosition returns the last pointer position in window coordinates.
func (cx *Context) MousePosition() Vec2 {
	return Vec2{cx.input.x, cx.input.y}
}

// --- Routing helpers ---

// pointerTarget is the captured entity if any, else the hovered one.
func (cx *Context) pointerTarget() Entity {
	if !cx.captured.IsNull() {
		return cx.captured
	}
	return cx.hovered
}

func (cx *Context) emitAt(target Entity, msg any, p Propagation) {
	cx.queue.push(&Event{
		Message:     msg,
		Target:      target,
		Origin:      target,
		Propagation: p,
	})
}

func (cx *Context) pointerInfo(target Entity, x, y float64, button MouseButton) PointerInfo {
	lx, ly := cx.WorldToLocal(target, x, y)
	return PointerInfo{
		X: x, Y: y, LocalX: lx, LocalY: ly,
		Button:    button,
		Modifiers: cx.input.modifiers,
	}
}

// setHovered moves the hover state to e, updating :hover on both ancestor
// chains. With emit set, MouseLeave and MouseEnter are sent.
func (cx *Context) setHovered(e Entity, emit bool) {
	old := cx.hovered
	if old == e {
		return
	}
	if cx.tree.Contains(old) {
		cx.style.setPseudoClass(old, PseudoHover, false)
		for a := range cx.tree.Ancestors(old) {
			cx.style.setPseudoClass(a, PseudoHover, false)
		}
	}
	cx.hovered = e
	cx.style.setPseudoClass(e, PseudoHover, true)
	for a := range cx.tree.Ancestors(e) {
		cx.style.setPseudoClass(a, PseudoHover, true)
	}
	if emit {
		if cx.tree.Contains(old) {
			cx.EmitTo(old, MouseLeave{})
		}
		cx.EmitTo(e, MouseEnter{})
	}
}

// --- Pointer state machine ---

// DispatchMouseMove records the pointer at window position (x, y), updates
// hover and drives drags.
func (cx *Context) DispatchMouseMove(x, y float64) {
	in := &cx.input
	in.x, in.y = x, y

	cx.setHovered(cx.hitTest(x, y), true)

	if in.down && !in.pressed.IsNull() {
		if x != in.lastX || y != in.lastY {
			if !in.dragging {
				dx := x - in.startX
				dy := y - in.startY
				if math.Sqrt(dx*dx+dy*dy) > in.dragDeadZone {
					in.dragging = true
					cx.emitAt(in.pressed, DragStart{cx.dragInfo(x, y, x-in.startX, y-in.startY)}, PropagationDirect)
				}
			}
			if in.dragging {
				cx.emitAt(in.pressed, Drag{cx.dragInfo(x, y, x-in.lastX, y-in.lastY)}, PropagationDirect)
			}
		}
		in.lastX, in.lastY = x, y
	}

	target := cx.pointerTarget()
	cx.emitAt(target, MouseMove{cx.pointerInfo(target, x, y, in.button)}, PropagationUp)
}

func (cx *Context) dragInfo(x, y, dx, dy float64) DragInfo {
	in := &cx.input
	return DragInfo{
		PointerInfo: cx.pointerInfo(in.pressed, x, y, in.button),
		StartX:      in.startX,
		StartY:      in.startY,
		DeltaX:      dx,
		DeltaY:      dy,
	}
}

// DispatchMouseButton records a button going down or up at the last pointer
// position.
func (cx *Context) DispatchMouseButton(button MouseButton, pressed bool) {
	in := &cx.input
	x, y := in.x, in.y

	if pressed {
		if in.down {
			// Only the first button of an interaction is tracked.
			return
		}
		target := cx.pointerTarget()
		in.down = true
		in.button = button
		in.startX, in.startY = x, y
		in.lastX, in.lastY = x, y
		in.pressed = target
		in.dragging = false

		cx.style.setPseudoClass(target, PseudoActive, true)
		cx.focusOnPress(target)

		info := cx.pointerInfo(target, x, y, button)
		now := in.now()
		if target == in.lastClickEntity && now.Sub(in.lastClick) <= in.doubleClickInterval {
			in.lastClickEntity = NullEntity
			cx.emitAt(target, MouseDoubleClick{info}, PropagationUp)
		} else {
			in.lastClickEntity = target
			in.lastClick = now
			cx.emitAt(target, MouseDown{info}, PropagationUp)
		}
		cx.emitAt(target, PressDown{info}, PropagationDirect)
		return
	}

	if !in.down || button != in.button {
		return
	}
	target := cx.pointerTarget()
	if p := in.pressed; !p.IsNull() {
		cx.style.setPseudoClass(p, PseudoActive, false)
		if in.dragging {
			cx.emitAt(p, DragEnd{cx.dragInfo(x, y, x-in.lastX, y-in.lastY)}, PropagationDirect)
		} else if p == target || p == cx.hovered {
			cx.emitAt(p, Press{cx.pointerInfo(p, x, y, button)}, PropagationDirect)
		}
	}
	cx.emitAt(target, MouseUp{cx.pointerInfo(target, x, y, button)}, PropagationUp)

	in.down = false
	in.pressed = NullEntity
	in.dragging = false
}

// focusOnPress focuses the nearest focusable entity at or above target.
func (cx *Context) focusOnPress(target Entity) {
	for e := target; !e.IsNull(); e = cx.tree.Parent(e) {
		if cx.style.hasAbility(e, AbilityFocusable) {
			if cx.style.pseudoClasses(e)&PseudoDisabled == 0 {
				cx.setFocus(e, false)
			}
			return
		}
	}
}

// DispatchScroll sends wheel movement to the pointer target.
func (cx *Context) DispatchScroll(dx, dy float64) {
	cx.emitAt(cx.pointerTarget(), MouseScroll{DeltaX: dx, DeltaY: dy, Modifiers: cx.input.modifiers}, PropagationUp)
}

// --- Keyboard ---

// DispatchKey sends a key transition to the focused entity. Tab and
// Shift+Tab move focus; F5 reloads the stylesheets.
func (cx *Context) DispatchKey(key Key, pressed bool) {
	cx.dispatchKey(key, pressed, false)
}

// DispatchKeyRepeat sends an auto-repeated key press to the focused entity.
func (cx *Context) DispatchKeyRepeat(key Key) {
	cx.dispatchKey(key, true, true)
}

func (cx *Context) dispatchKey(key Key, pressed, repeat bool) {
	mods := cx.input.modifiers
	if !pressed {
		cx.emitAt(cx.focused, KeyUp{Key: key, Modifiers: mods}, PropagationUp)
		return
	}
	cx.emitAt(cx.focused, KeyDown{Key: key, Modifiers: mods, Repeat: repeat}, PropagationUp)

	switch key {
	case KeyTab:
		if mods&ModShift != 0 {
			cx.FocusPrev()
		} else {
			cx.FocusNext()
		}
	case KeyF5:
		if repeat {
			return
		}
		if err := cx.ReloadStyles(); err != nil && !errors.Is(err, ErrNoStylesheet) {
			cx.log.Warn("style reload failed", zap.Error(err))
		}
	}
}

// DispatchChar sends one typed character to the focused entity.
func (cx *Context) DispatchChar(r rune) {
	cx.emitAt(cx.focused, CharInput{Char: r}, PropagationUp)
}

// --- Window ---

// DispatchResize records a new window size and tells the root about it.
func (cx *Context) DispatchResize(w, h float64) {
	if cx.windowSize.X == w && cx.windowSize.Y == h {
		return
	}
	cx.windowSize = Vec2{w, h}
	cx.style.needsRelayout = true
	cx.EmitTo(RootEntity, WindowResize{Width: w, Height: h})
}

// DispatchClose asks the root to close the window.
func (cx *Context) DispatchClose() {
	cx.EmitTo(RootEntity, WindowClose{})
}

// CloseRequested reports whether a WindowClose reached the root view.
func (cx *Context) CloseRequested() bool { return cx.closeRequested }
