package canopy

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// pointerScene lays out two recorder boxes: a over the top half of a 200x200
// window and b over the bottom half.
func pointerScene(t *testing.T) (cx *Context, a, b Entity, log *[]string) {
	t.Helper()
	log = new([]string)
	cx = NewContext()
	a = addTo(cx, RootEntity, &recorder{name: "a", log: log})
	b = addTo(cx, RootEntity, &recorder{name: "b", log: log})
	runLayout(cx, 200, 200)
	flush(t, cx)
	*log = (*log)[:0]
	return cx, a, b, log
}

func expectLog(t *testing.T, log *[]string, want ...string) {
	t.Helper()
	if diff := cmp.Diff(want, *log); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
	*log = (*log)[:0]
}

func TestHoverEnterLeave(t *testing.T) {
	cx, a, b, log := pointerScene(t)

	cx.DispatchMouseMove(10, 10)
	flush(t, cx)
	expectLog(t, log, "a:enter", "a:move")
	if cx.Hovered() != a || cx.style.pseudoClasses(a)&PseudoHover == 0 {
		t.Errorf("hovered = %v", cx.Hovered())
	}
	if cx.style.pseudoClasses(RootEntity)&PseudoHover == 0 {
		t.Error("ancestor of the hovered entity lacks :hover")
	}

	cx.DispatchMouseMove(10, 150)
	flush(t, cx)
	expectLog(t, log, "a:leave", "b:enter", "b:move")
	if cx.style.pseudoClasses(a)&PseudoHover != 0 {
		t.Error("stale :hover")
	}
	_ = b
}

func TestPressAndRelease(t *testing.T) {
	cx, a, _, log := pointerScene(t)
	cx.DispatchMouseMove(10, 10)
	flush(t, cx)
	*log = (*log)[:0]

	cx.DispatchMouseButton(MouseButtonLeft, true)
	if cx.style.pseudoClasses(a)&PseudoActive == 0 {
		t.Error("pressed entity lacks :active")
	}
	cx.DispatchMouseButton(MouseButtonLeft, false)
	flush(t, cx)
	expectLog(t, log, "a:down", "a:pressdown", "a:press", "a:up")
	if cx.style.pseudoClasses(a)&PseudoActive != 0 {
		t.Error("stale :active")
	}
}

func TestReleaseElsewhereIsNotPress(t *testing.T) {
	cx, _, _, log := pointerScene(t)
	cx.SetDragDeadZone(1000)
	cx.DispatchMouseMove(10, 10)
	cx.DispatchMouseButton(MouseButtonLeft, true)
	flush(t, cx)
	*log = (*log)[:0]

	cx.DispatchMouseMove(10, 150)
	cx.DispatchMouseButton(MouseButtonLeft, false)
	flush(t, cx)
	expectLog(t, log, "a:leave", "b:enter", "b:move", "b:up")
}

func TestOtherButtonsIgnoredDuringPress(t *testing.T) {
	cx, _, _, log := pointerScene(t)
	cx.DispatchMouseMove(10, 10)
	flush(t, cx)
	*log = (*log)[:0]

	cx.DispatchMouseButton(MouseButtonLeft, true)
	cx.DispatchMouseButton(MouseButtonRight, true)
	cx.DispatchMouseButton(MouseButtonRight, false)
	cx.DispatchMouseButton(MouseButtonLeft, false)
	flush(t, cx)
	expectLog(t, log, "a:down", "a:pressdown", "a:press", "a:up")
}

func TestDragDeadZone(t *testing.T) {
	cx, a, _, log := pointerScene(t)
	var drags []DragInfo
	cx.AddGlobalListener(func(cx *Context, ev *Event) {
		Map(ev, func(m DragStart) { drags = append(drags, m.DragInfo) })
		Map(ev, func(m Drag) { drags = append(drags, m.DragInfo) })
		Map(ev, func(m DragEnd) { drags = append(drags, m.DragInfo) })
	})
	cx.DispatchMouseMove(10, 10)
	flush(t, cx)
	*log = (*log)[:0]

	cx.DispatchMouseButton(MouseButtonLeft, true)
	cx.DispatchMouseMove(12, 10) // inside the dead zone
	cx.DispatchMouseMove(20, 10)
	cx.DispatchMouseMove(25, 10)
	cx.DispatchMouseButton(MouseButtonLeft, false)
	flush(t, cx)

	expectLog(t, log,
		"a:down", "a:pressdown",
		"a:move",
		"a:dragstart", "a:drag", "a:move",
		"a:drag", "a:move",
		"a:dragend", "a:up",
	)
	deltas := make([]float64, len(drags))
	for i, d := range drags {
		deltas[i] = d.DeltaX
		if d.StartX != 10 || d.StartY != 10 {
			t.Errorf("drag %d start = (%v, %v)", i, d.StartX, d.StartY)
		}
	}
	// Drag start reports the distance from the press, later messages the
	// step since the previous one.
	if diff := cmp.Diff([]float64{10, 8, 5, 0}, deltas); diff != "" {
		t.Errorf("deltas (-want +got):\n%s", diff)
	}
	if got := drags[1].LocalX; got != 20 {
		t.Errorf("LocalX = %v, want 20", got)
	}
	_ = a
}

func TestDoubleClick(t *testing.T) {
	cx, _, _, log := pointerScene(t)
	now := time.Unix(0, 0)
	cx.input.now = func() time.Time { return now }
	cx.DispatchMouseMove(10, 10)
	flush(t, cx)
	*log = (*log)[:0]

	click := func(after time.Duration) {
		now = now.Add(after)
		cx.DispatchMouseButton(MouseButtonLeft, true)
		cx.DispatchMouseButton(MouseButtonLeft, false)
		flush(t, cx)
	}
	click(0)
	click(100 * time.Millisecond)
	click(100 * time.Millisecond) // third press starts a new sequence
	click(600 * time.Millisecond)
	expectLog(t, log,
		"a:down", "a:pressdown", "a:press", "a:up",
		"a:dblclick", "a:pressdown", "a:press", "a:up",
		"a:down", "a:pressdown", "a:press", "a:up",
		"a:down", "a:pressdown", "a:press", "a:up",
	)
}

func TestDoubleClickNeedsSameEntity(t *testing.T) {
	cx, _, _, log := pointerScene(t)
	cx.input.now = func() time.Time { return time.Unix(0, 0) }
	cx.DispatchMouseMove(10, 10)
	cx.DispatchMouseButton(MouseButtonLeft, true)
	cx.DispatchMouseButton(MouseButtonLeft, false)
	cx.DispatchMouseMove(10, 150)
	flush(t, cx)
	*log = (*log)[:0]

	cx.DispatchMouseButton(MouseButtonLeft, true)
	flush(t, cx)
	expectLog(t, log, "b:down", "b:pressdown")
}

func TestCaptureRoutesPointer(t *testing.T) {
	cx, a, b, log := pointerScene(t)
	cx.DispatchMouseMove(10, 10)
	flush(t, cx)
	*log = (*log)[:0]

	cx.WithCurrent(a, func(cx *Context) { cx.Capture() })
	cx.DispatchMouseMove(10, 150)
	cx.DispatchScroll(0, 1)
	flush(t, cx)
	expectLog(t, log, "a:leave", "b:enter", "a:move", "a:scroll")
	if cx.Hovered() != b {
		t.Errorf("hovered = %v, want %v while captured", cx.Hovered(), b)
	}

	cx.WithCurrent(b, func(cx *Context) { cx.Release() })
	if cx.Captured() != a {
		t.Error("release by another entity dropped the capture")
	}
	cx.WithCurrent(a, func(cx *Context) { cx.Release() })
	cx.DispatchScroll(0, 1)
	flush(t, cx)
	expectLog(t, log, "b:scroll")
}

func TestClickFocusesFocusableAncestor(t *testing.T) {
	cx, a, _, _ := pointerScene(t)
	cx.SetFocusable(a, true)
	inner := addTo(cx, a, nil)
	runLayout(cx, 200, 200)
	cx.DispatchMouseMove(10, 10)
	if cx.Hovered() != inner {
		t.Fatalf("hovered = %v, want %v", cx.Hovered(), inner)
	}
	cx.DispatchMouseButton(MouseButtonLeft, true)
	if cx.Focused() != a {
		t.Errorf("focused = %v, want %v", cx.Focused(), a)
	}
	if cx.style.pseudoClasses(a)&PseudoFocusVisible != 0 {
		t.Error("pointer focus is :focus-visible")
	}

	cx.DispatchMouseButton(MouseButtonLeft, false)
	cx.SetDisabled(a, true)
	cx.clearFocus()
	cx.DispatchMouseButton(MouseButtonLeft, true)
	if cx.Focused() != RootEntity {
		t.Errorf("disabled entity took focus")
	}
}

func TestKeyboardRouting(t *testing.T) {
	cx, a, b, log := pointerScene(t)
	cx.SetFocusable(a, true)
	cx.SetFocusable(b, true)
	cx.WithCurrent(a, func(cx *Context) { cx.Focus() })
	flush(t, cx)
	*log = (*log)[:0]

	cx.DispatchKey(KeyEnter, true)
	cx.DispatchKey(KeyEnter, false)
	cx.DispatchChar('x')
	cx.DispatchKey(KeyTab, true)
	cx.DispatchKey(KeyTab, false)
	flush(t, cx)
	expectLog(t, log,
		"a:keydown:enter", "a:keyup:enter", "a:char",
		"a:keydown:tab", "a:focusout", "b:focusin", "b:keyup:tab",
	)

	cx.SetModifiers(ModShift)
	cx.DispatchKey(KeyTab, true)
	if cx.Focused() != a {
		t.Errorf("Shift+Tab focused %v, want %v", cx.Focused(), a)
	}
}

func TestKeyRepeat(t *testing.T) {
	cx := NewContext()
	var got []KeyDown
	cx.AddGlobalListener(func(cx *Context, ev *Event) {
		Map(ev, func(k KeyDown) { got = append(got, k) })
	})
	cx.DispatchKey(KeySpace, true)
	cx.DispatchKeyRepeat(KeySpace)
	flush(t, cx)
	want := []KeyDown{{Key: KeySpace}, {Key: KeySpace, Repeat: true}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("key downs (-want +got):\n%s", diff)
	}
}

func TestResizeAndClose(t *testing.T) {
	cx := NewContext()
	var sizes []WindowResize
	cx.AddGlobalListener(func(cx *Context, ev *Event) {
		Map(ev, func(m WindowResize) { sizes = append(sizes, m) })
	})
	cx.style.needsRelayout = false
	cx.DispatchResize(320, 240)
	cx.DispatchResize(320, 240) // unchanged
	cx.DispatchClose()
	flush(t, cx)

	if diff := cmp.Diff([]WindowResize{{320, 240}}, sizes); diff != "" {
		t.Errorf("resizes (-want +got):\n%s", diff)
	}
	if cx.WindowSize() != (Vec2{320, 240}) {
		t.Errorf("WindowSize = %v", cx.WindowSize())
	}
	if !cx.style.needsRelayout {
		t.Error("resize did not request layout")
	}
	if !cx.CloseRequested() {
		t.Error("close not requested")
	}
}

func TestRemoveForgetsPressedEntity(t *testing.T) {
	cx, a, _, log := pointerScene(t)
	cx.DispatchMouseMove(10, 10)
	cx.DispatchMouseButton(MouseButtonLeft, true)
	cx.Remove(a)
	runLayout(cx, 200, 200)
	flush(t, cx)
	*log = (*log)[:0]

	cx.DispatchMouseMove(50, 50)
	cx.DispatchMouseButton(MouseButtonLeft, false)
	flush(t, cx)
	// b slid up into the freed space.
	expectLog(t, log, "b:enter", "b:move", "b:up")
}

func TestHitTest(t *testing.T) {
	cx := NewContext()
	s := cx.style
	place := func(parent Entity, x, y, w, h float64) Entity {
		e := addTo(cx, parent, nil)
		s.PositionType.Insert(e, SelfDirected)
		s.Left.Insert(e, Pixels(x))
		s.Top.Insert(e, Pixels(y))
		s.Width.Insert(e, Pixels(w))
		s.Height.Insert(e, Pixels(h))
		return e
	}
	low := place(RootEntity, 0, 0, 100, 100)
	high := place(RootEntity, 50, 50, 100, 100)
	top := place(RootEntity, 60, 0, 30, 30)
	s.ZIndex.Insert(low, 5) // paints above high despite tree order
	hidden := place(RootEntity, 150, 0, 50, 50)
	s.Visibility.Insert(hidden, Hidden)
	shown := place(hidden, 0, 0, 20, 20)
	inert := place(RootEntity, 150, 100, 50, 50)
	cx.SetHoverable(inert, false)
	none := place(RootEntity, 0, 150, 50, 50)
	s.Display.Insert(none, DisplayNone)
	inNone := place(none, 0, 0, 50, 50)
	runLayout(cx, 200, 200)

	tests := []struct {
		name string
		x, y float64
		want Entity
	}{
		{"only low", 10, 10, low},
		{"overlap prefers higher z-index", 75, 75, low},
		{"high outside low", 120, 120, high},
		{"z-index beats later sibling", 70, 10, low},
		{"hidden box skipped", 190, 40, RootEntity},
		{"child of hidden box", 160, 10, shown},
		{"non-hoverable", 160, 120, RootEntity},
		{"display none subtree", 10, 160, RootEntity},
		{"empty", 199, 199, RootEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cx.EntityAt(tt.x, tt.y); got != tt.want {
				t.Errorf("EntityAt(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
	_, _ = top, inNone
}

func TestHitTestTransformed(t *testing.T) {
	cx := NewContext()
	e := addTo(cx, RootEntity, nil)
	cx.style.Width.Insert(e, Pixels(20))
	cx.style.Height.Insert(e, Pixels(20))
	cx.style.Transform.Insert(e, Transform{ScaleX: 3, ScaleY: 3})
	runLayout(cx, 200, 200)

	// Scaled around (10, 10), the box spans (-20, -20) to (40, 40).
	if got := cx.EntityAt(35, 35); got != e {
		t.Errorf("inside scaled box: got %v", got)
	}
	if got := cx.EntityAt(45, 45); got != RootEntity {
		t.Errorf("outside scaled box: got %v", got)
	}
}
