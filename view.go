package canopy

// View is the behavior attached to an entity. Event is called with the
// entity as the context's current entity.
type View interface {
	Event(cx *Context, ev *Event)
}

// Element is implemented by views that have an element name for type
// selectors, such as "button".
type Element interface {
	Element() string
}

// Drawer is implemented by views that paint on top of their styled box.
type Drawer interface {
	Draw(dc *DrawContext)
}

// ViewFunc adapts a function to the View interface.
type ViewFunc func(cx *Context, ev *Event)

// Event calls f.
func (f ViewFunc) Event(cx *Context, ev *Event) { f(cx, ev) }

// rootView is attached to the root entity. It closes the window on request.
type rootView struct{}

func (rootView) Element() string { return "window" }

func (rootView) Event(cx *Context, ev *Event) {
	Map(ev, func(WindowResize) {
		cx.NeedsRelayout()
	})
	Map(ev, func(WindowClose) {
		cx.closeRequested = true
	})
}

// ViewAs returns the view of e as a T. The second result is false when e has
// no view, the view is currently being dispatched to, or it is not a T.
func ViewAs[T any](cx *Context, e Entity) (T, bool) {
	v, ok := cx.views.Get(e)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// listenerFunc is the type-erased form of a per-entity listener.
type listenerFunc func(v View, cx *Context, ev *Event)

// AddListener installs fn as the listener of the current entity, replacing
// any previous one. The listener runs for every event before normal routing
// while the entity has a view of type V.
func AddListener[V View](cx *Context, fn func(v V, cx *Context, ev *Event)) {
	e := cx.current
	wrapped := func(v View, cx *Context, ev *Event) {
		if tv, ok := v.(V); ok {
			fn(tv, cx, ev)
		}
	}
	if !cx.listeners.Contains(e) {
		cx.listenerOrder = append(cx.listenerOrder, e)
	}
	cx.listeners.Insert(e, wrapped)
}

// AddGlobalListener registers fn to run for every event after the
// per-entity listeners. Global listeners are never removed.
func (cx *Context) AddGlobalListener(fn func(cx *Context, ev *Event)) {
	cx.globalListeners = append(cx.globalListeners, fn)
}

func (cx *Context) removeListener(e Entity) {
	if _, ok := cx.listeners.Remove(e); !ok {
		return
	}
	for i, le := range cx.listenerOrder {
		if le == e {
			cx.listenerOrder = append(cx.listenerOrder[:i], cx.listenerOrder[i+1:]...)
			return
		}
	}
}
