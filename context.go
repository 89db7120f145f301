package canopy

import (
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

// Context owns the state of one UI instance: the entity tree, styles, views,
// models, listeners and the event queue. Construction and event handling
// code act on the entity returned by Current.
//
// A Context is not safe for concurrent use. Other goroutines talk to it
// through a ContextProxy.
type Context struct {
	log   *zap.Logger
	debug bool
	store EntityStore

	entities entityManager
	tree     *Tree
	style    *Style
	cache    *cache

	views           SparseSet[View]
	models          SparseSet[[]Model]
	pendingModels   map[Entity][]Model
	listeners       SparseSet[listenerFunc]
	listenerOrder   []Entity
	globalListeners []func(*Context, *Event)
	ids             map[string]Entity

	current  Entity
	captured Entity
	hovered  Entity
	focused  Entity

	queue eventQueue
	input inputState

	themes      []string // user themes, parsed before stylesheet files
	stylesheets []string // stylesheet file paths
	resources   *resourceManager

	windowSize     Vec2
	closeRequested bool
}

// NewContext returns a context holding only the root entity, which carries
// a root view.
func NewContext() *Context {
	cx := &Context{
		log:           zap.NewNop().Named("canopy"),
		tree:          NewTree(),
		style:         NewStyle(),
		cache:         newCache(),
		pendingModels: make(map[Entity][]Model),
		ids:           make(map[string]Entity),
		current:       RootEntity,
		captured:      NullEntity,
		hovered:       RootEntity,
		focused:       RootEntity,
	}
	cx.input = newInputState()
	cx.resources = newResourceManager(cx)

	root := cx.entities.create()
	if root != RootEntity {
		panic("canopy: root entity mismatch")
	}
	cx.cache.add(root)
	cx.style.add(root)
	cx.style.Elements.Insert(root, rootView{}.Element())
	cx.views.Insert(root, rootView{})
	return cx
}

// SetLogger replaces the logger. The context logs under the name "canopy".
func (cx *Context) SetLogger(log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	cx.log = log.Named("canopy")
	cx.style.SetLogger(cx.log.Named("style"))
}

// Logger returns the context's logger.
func (cx *Context) Logger() *zap.Logger { return cx.log }

// SetEntityStore sets the optional ECS bridge.
func (cx *Context) SetEntityStore(store EntityStore) {
	cx.store = store
}

// SetDebugMode enables or disables debug checks. When enabled, tree depth and
// child count warnings and per-frame stats are logged.
func (cx *Context) SetDebugMode(enabled bool) {
	cx.debug = enabled
}

// Tree returns the entity tree. It must not be modified directly.
func (cx *Context) Tree() *Tree { return cx.tree }

// Style returns the style store.
func (cx *Context) Style() *Style { return cx.style }

// --- Current entity ---

// Current returns the entity that construction and event calls act on.
func (cx *Context) Current() Entity { return cx.current }

// SetCurrent moves the cursor. Prefer WithCurrent, which restores it.
func (cx *Context) SetCurrent(e Entity) { cx.current = e }

// WithCurrent runs fn with e as the current entity and restores the previous
// one afterwards, also when fn panics.
func (cx *Context) WithCurrent(e Entity, fn func(cx *Context)) {
	prev := cx.current
	cx.current = e
	defer func() { cx.current = prev }()
	fn(cx)
}

// --- Construction ---

// Add creates an entity under the current entity, attaches v to it and runs
// build with the new entity as current. v and build may be nil.
func (cx *Context) Add(v View, build func(cx *Context)) Entity {
	parent := cx.current
	if !cx.tree.Contains(parent) {
		panic(fmt.Sprintf("canopy: adding child to %v which is not in the tree", parent))
	}
	e := cx.entities.create()
	cx.tree.Add(e, parent)
	cx.cache.add(e)
	cx.style.add(e)
	if v != nil {
		cx.views.Insert(e, v)
		if el, ok := v.(Element); ok {
			cx.style.Elements.Insert(e, el.Element())
		}
	}
	if cx.debug {
		cx.debugCheckTree(e, parent)
	}
	if build != nil {
		cx.WithCurrent(e, build)
	}
	return e
}

// IsAlive reports whether e refers to a live entity.
func (cx *Context) IsAlive(e Entity) bool {
	return cx.entities.isAlive(e)
}

// Remove deletes e and its whole subtree with every record attached to them.
// Input capture on a removed entity is released; hover and focus fall back
// to the root. Removing the root or a dead entity panics.
func (cx *Context) Remove(e Entity) {
	if e == RootEntity {
		panic("canopy: cannot remove the root entity")
	}
	if !cx.entities.isAlive(e) || !cx.tree.Contains(e) {
		panic(fmt.Sprintf("canopy: removing dead entity %v", e))
	}

	branch := slices.Collect(cx.tree.Branch(e))
	if slices.Contains(branch, cx.hovered) {
		cx.setHovered(RootEntity, false)
	}
	if slices.Contains(branch, cx.focused) {
		cx.clearFocus()
	}
	for _, x := range slices.Backward(branch) {
		if id, ok := cx.style.IDs.Get(x); ok && cx.ids[id] == x {
			delete(cx.ids, id)
		}
		if cx.captured == x {
			cx.captured = NullEntity
		}
		cx.input.forget(x)

		cx.tree.Remove(x)
		cx.cache.remove(x)
		cx.style.Remove(x)
		cx.models.Remove(x)
		delete(cx.pendingModels, x)
		cx.views.Remove(x)
		cx.removeListener(x)
		cx.resources.removeObserver(x)
		cx.entities.destroy(x)
	}

	cx.style.needsRestyle = true
	cx.style.needsRelayout = true
	cx.style.needsRedraw = true
}

// --- Identity and selector data ---

// SetID gives e a unique identifier for Resolve and #id selectors.
func (cx *Context) SetID(e Entity, id string) {
	if old, ok := cx.style.IDs.Get(e); ok && cx.ids[old] == e {
		delete(cx.ids, old)
	}
	cx.ids[id] = e
	cx.style.IDs.Insert(e, id)
	cx.style.needsRestyle = true
}

// Resolve returns the entity registered under id.
func (cx *Context) Resolve(id string) (Entity, bool) {
	e, ok := cx.ids[id]
	return e, ok
}

// SetElement sets the element name matched by type selectors.
func (cx *Context) SetElement(e Entity, name string) {
	cx.style.Elements.Insert(e, name)
	cx.style.needsRestyle = true
}

// AddClass adds class names to e.
func (cx *Context) AddClass(e Entity, names ...string) {
	classes, _ := cx.style.Classes.Get(e)
	for _, n := range names {
		if !slices.Contains(classes, n) {
			classes = append(classes, n)
		}
	}
	cx.style.Classes.Insert(e, classes)
	cx.style.needsRestyle = true
}

// RemoveClass removes class names from e.
func (cx *Context) RemoveClass(e Entity, names ...string) {
	classes, ok := cx.style.Classes.Get(e)
	if !ok {
		return
	}
	classes = slices.DeleteFunc(classes, func(c string) bool {
		return slices.Contains(names, c)
	})
	cx.style.Classes.Insert(e, classes)
	cx.style.needsRestyle = true
}

// ToggleClass adds or removes a class name.
func (cx *Context) ToggleClass(e Entity, name string, on bool) {
	if on {
		cx.AddClass(e, name)
	} else {
		cx.RemoveClass(e, name)
	}
}

// SetIgnored makes e transparent to layout.
func (cx *Context) SetIgnored(e Entity, ignored bool) {
	cx.tree.SetIgnored(e, ignored)
	cx.style.needsRelayout = true
}

// SetHoverable controls whether e can be hit by the pointer.
func (cx *Context) SetHoverable(e Entity, on bool) {
	cx.style.setAbility(e, AbilityHoverable, on)
}

// SetFocusable controls whether e can take focus, including with Tab.
func (cx *Context) SetFocusable(e Entity, on bool) {
	cx.style.setAbility(e, AbilityFocusable|AbilityNavigable, on)
}

// SetDisabled toggles the :disabled pseudo-class.
func (cx *Context) SetDisabled(e Entity, on bool) {
	cx.style.setPseudoClass(e, PseudoDisabled, on)
}

// SetChecked toggles the :checked pseudo-class.
func (cx *Context) SetChecked(e Entity, on bool) {
	cx.style.setPseudoClass(e, PseudoChecked, on)
}

// SetSelected toggles the :selected pseudo-class.
func (cx *Context) SetSelected(e Entity, on bool) {
	cx.style.setPseudoClass(e, PseudoSelected, on)
}

// SetStyle parses one declaration, such as SetStyle(e, "width", "40px"), into
// e's inline values.
func (cx *Context) SetStyle(e Entity, property, value string) error {
	if err := cx.style.parseInline(e, property, value); err != nil {
		return fmt.Errorf("set %s on %v: %w", property, e, err)
	}
	cx.cache.invalidateOrder()
	cx.style.needsRelayout = true
	cx.style.needsRedraw = true
	return nil
}

// NeedsRestyle schedules a cascade pass for the next frame.
func (cx *Context) NeedsRestyle() { cx.style.needsRestyle = true }

// NeedsRelayout schedules layout for the next frame.
func (cx *Context) NeedsRelayout() { cx.style.needsRelayout = true }

// --- Events ---

// Emit sends msg from the current entity up the tree.
func (cx *Context) Emit(msg any) {
	cx.queue.push(&Event{
		Message:     msg,
		Target:      cx.current,
		Origin:      cx.current,
		Propagation: PropagationUp,
	})
}

// EmitTo sends msg directly to target.
func (cx *Context) EmitTo(target Entity, msg any) {
	cx.queue.push(&Event{
		Message:     msg,
		Target:      target,
		Origin:      cx.current,
		Propagation: PropagationDirect,
	})
}

// EmitCustom queues ev with the routing it already carries.
func (cx *Context) EmitCustom(ev *Event) {
	cx.queue.push(ev)
}

// RequestRedraw asks for a redraw on the next frame.
func (cx *Context) RequestRedraw() {
	cx.queue.push(&Event{
		Message:     redrawRequest{},
		Target:      RootEntity,
		Origin:      cx.current,
		Propagation: PropagationNone,
	})
}

// HasPendingEvents reports whether events are queued.
func (cx *Context) HasPendingEvents() bool {
	return cx.queue.len() > 0
}

// interceptInternal handles reserved messages. It reports true when ev was
// one of them and must not be routed.
func (cx *Context) interceptInternal(ev *Event) bool {
	switch msg := ev.Message.(type) {
	case redrawRequest:
		cx.style.needsRedraw = true
		return true
	case imageLoaded:
		cx.resources.finishLoad(msg)
		cx.style.needsRedraw = true
		return true
	}
	return false
}

// --- Input capture ---

// Capture routes all pointer input to the current entity until Release.
func (cx *Context) Capture() { cx.captured = cx.current }

// Release ends a capture held by the current entity.
func (cx *Context) Release() {
	if cx.captured == cx.current {
		cx.captured = NullEntity
	}
}

// Captured returns the entity holding the capture, or NullEntity.
func (cx *Context) Captured() Entity { return cx.captured }

// Hovered returns the entity under the pointer.
func (cx *Context) Hovered() Entity { return cx.hovered }

// --- Animations ---

// AddAnimation starts building a keyframe animation lasting d.
func (cx *Context) AddAnimation(d time.Duration) *AnimationBuilder {
	return cx.style.addAnimation(d)
}

// PlayAnimation starts animation id on e. Playing an animation that is
// already running on e restarts it.
func (cx *Context) PlayAnimation(e Entity, id AnimationID) {
	if !cx.style.playAnimation(e, id) {
		cx.log.Debug("animation has no keyframes", zap.Uint32("animation", uint32(id)))
	}
}

// StopAnimation removes animation id from e. The channels fall back to the
// cascade.
func (cx *Context) StopAnimation(e Entity, id AnimationID) {
	cx.style.stopAnimation(e, id)
}

// IsAnimating reports whether any channel of e is driven by an animation.
func (cx *Context) IsAnimating(e Entity) bool {
	for _, ch := range cx.style.animated {
		if a, ok := ch.(interface{ IsAnimating(Entity) bool }); ok && a.IsAnimating(e) {
			return true
		}
	}
	return false
}

// --- Geometry ---

// Bounds returns the layout rectangle of e in window coordinates.
func (cx *Context) Bounds(e Entity) Rect {
	return cx.cache.bounds(e)
}

// WindowSize returns the current window size.
func (cx *Context) WindowSize() Vec2 { return cx.windowSize }
