package canopy

// Focused returns the entity holding keyboard focus. It is the root when
// nothing else is focused.
func (cx *Context) Focused() Entity { return cx.focused }

// Focus gives keyboard focus to the current entity without the
// focus-visible state.
func (cx *Context) Focus() {
	cx.FocusWithVisibility(false)
}

// FocusWithVisibility gives keyboard focus to the current entity. When
// visible is true the entity also matches :focus-visible, as it does after
// keyboard navigation.
func (cx *Context) FocusWithVisibility(visible bool) {
	cx.setFocus(cx.current, visible)
}

func (cx *Context) setFocus(e Entity, visible bool) {
	if !cx.tree.Contains(e) {
		return
	}
	old := cx.focused
	if old == e {
		cx.style.setPseudoClass(e, PseudoFocusVisible, visible)
		return
	}

	if cx.tree.Contains(old) {
		cx.style.setPseudoClass(old, PseudoFocus|PseudoFocusVisible, false)
		cx.setFocusWithin(old, false)
	}
	cx.focused = e
	cx.style.setPseudoClass(e, PseudoFocus, true)
	cx.style.setPseudoClass(e, PseudoFocusVisible, visible)
	cx.setFocusWithin(e, true)

	if cx.tree.Contains(old) {
		cx.EmitTo(old, FocusOut{})
	}
	cx.EmitTo(e, FocusIn{})
}

// setFocusWithin toggles :focus-within on e and its ancestors.
func (cx *Context) setFocusWithin(e Entity, on bool) {
	cx.style.setPseudoClass(e, PseudoFocusWithin, on)
	for a := range cx.tree.Ancestors(e) {
		cx.style.setPseudoClass(a, PseudoFocusWithin, on)
	}
}

// clearFocus drops focus back to the root without focus events.
func (cx *Context) clearFocus() {
	if cx.tree.Contains(cx.focused) {
		cx.style.setPseudoClass(cx.focused, PseudoFocus|PseudoFocusVisible, false)
		cx.setFocusWithin(cx.focused, false)
	}
	cx.focused = RootEntity
}

// FocusNext moves focus to the next navigable entity in tree order, wrapping
// at the end.
func (cx *Context) FocusNext() {
	if e, ok := cx.nextNavigable(false); ok {
		cx.setFocus(e, true)
	}
}

// FocusPrev moves focus to the previous navigable entity in tree order,
// wrapping at the start.
func (cx *Context) FocusPrev() {
	if e, ok := cx.nextNavigable(true); ok {
		cx.setFocus(e, true)
	}
}

func (cx *Context) nextNavigable(backward bool) (Entity, bool) {
	var order []Entity
	start := -1
	for e := range cx.tree.Walk() {
		if e == cx.focused {
			start = len(order)
		}
		if cx.isNavigable(e) {
			order = append(order, e)
		} else if e == cx.focused {
			// Keep a position for an unnavigable focused entity.
			order = append(order, e)
		}
	}
	if len(order) == 0 {
		return NullEntity, false
	}
	n := len(order)
	i := start
	for range n {
		switch {
		case i < 0 && backward:
			i = n - 1
		case i < 0:
			i = 0
		case backward:
			i = (i - 1 + n) % n
		default:
			i = (i + 1) % n
		}
		if e := order[i]; e != cx.focused && cx.isNavigable(e) {
			return e, true
		}
	}
	return NullEntity, false
}

// isNavigable reports whether Tab can reach e: it must be navigable, enabled
// and displayed along with all of its ancestors.
func (cx *Context) isNavigable(e Entity) bool {
	if !cx.style.hasAbility(e, AbilityNavigable) {
		return false
	}
	if cx.style.pseudoClasses(e)&PseudoDisabled != 0 {
		return false
	}
	if cx.style.Display.Value(e) == DisplayNone {
		return false
	}
	for a := range cx.tree.Ancestors(e) {
		if cx.style.Display.Value(a) == DisplayNone {
			return false
		}
	}
	return true
}
