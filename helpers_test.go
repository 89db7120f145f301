package canopy

import (
	"testing"
	"time"
)

// addTo adds an entity with view v under parent.
func addTo(cx *Context, parent Entity, v View) Entity {
	var e Entity
	cx.WithCurrent(parent, func(cx *Context) {
		e = cx.Add(v, nil)
	})
	return e
}

// recorder is a view that logs the messages it receives.
type recorder struct {
	name    string
	log     *[]string
	consume func(ev *Event) bool
}

func (r *recorder) Event(cx *Context, ev *Event) {
	*r.log = append(*r.log, r.name+":"+messageName(ev.Message))
	if r.consume != nil && r.consume(ev) {
		ev.Consume()
	}
}

func messageName(msg any) string {
	switch m := msg.(type) {
	case string:
		return m
	case testMsg:
		return string(m)
	case MouseEnter:
		return "enter"
	case MouseLeave:
		return "leave"
	case MouseMove:
		return "move"
	case MouseDown:
		return "down"
	case MouseUp:
		return "up"
	case MouseDoubleClick:
		return "dblclick"
	case PressDown:
		return "pressdown"
	case Press:
		return "press"
	case DragStart:
		return "dragstart"
	case Drag:
		return "drag"
	case DragEnd:
		return "dragend"
	case KeyDown:
		return "keydown:" + m.Key.String()
	case KeyUp:
		return "keyup:" + m.Key.String()
	case FocusIn:
		return "focusin"
	case FocusOut:
		return "focusout"
	case CharInput:
		return "char"
	case MouseScroll:
		return "scroll"
	case WindowResize:
		return "resize"
	}
	return "?"
}

type testMsg string

// flush drains the event queue like one application frame.
func flush(t *testing.T, cx *Context) {
	t.Helper()
	em := NewEventManager()
	for i := 0; em.Flush(cx); i++ {
		if i > 100 {
			t.Fatal("event queue never drained")
		}
	}
}

// frame runs a headless application update.
func frame(t *testing.T, app *Application) {
	t.Helper()
	if err := app.Update(time.Second / 60); err != nil {
		t.Fatalf("Update: %v", err)
	}
}
