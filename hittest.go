package canopy

// collectHittable walks the tree in paint order, appending entities that can
// be hit by the pointer. Subtrees with display: none are skipped; hidden,
// ignored and non-hoverable entities are skipped but their children are not.
func (cx *Context) collectHittable(e Entity, buf []Entity) []Entity {
	s := cx.style
	if s.Display.Value(e) == DisplayNone {
		return buf
	}
	if s.Visibility.Value(e) == Visible && !cx.tree.IsIgnored(e) && s.hasAbility(e, AbilityHoverable) {
		buf = append(buf, e)
	}
	for _, child := range cx.paintChildren(e) {
		buf = cx.collectHittable(child, buf)
	}
	return buf
}

// containsLocal reports whether the window point falls inside e's box after
// undoing its transform.
func (cx *Context) containsLocal(e Entity, x, y float64) bool {
	b := cx.cache.bounds(e)
	if b.Width <= 0 || b.Height <= 0 {
		return false
	}
	lx, ly := cx.WorldToLocal(e, x, y)
	return lx >= 0 && lx <= b.Width && ly >= 0 && ly <= b.Height
}

// hitTest finds the topmost hittable entity at window position (x, y). It
// returns the root when nothing else is hit.
func (cx *Context) hitTest(x, y float64) Entity {
	cx.input.hitBuf = cx.collectHittable(RootEntity, cx.input.hitBuf[:0])

	// Reverse paint order: topmost first.
	for i := len(cx.input.hitBuf) - 1; i >= 0; i-- {
		e := cx.input.hitBuf[i]
		if cx.containsLocal(e, x, y) {
			return e
		}
	}
	return RootEntity
}

// EntityAt returns the topmost hittable entity at a window position.
func (cx *Context) EntityAt(x, y float64) Entity {
	return cx.hitTest(x, y)
}
