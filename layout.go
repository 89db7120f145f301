package canopy

// LayoutEngine computes the bounds of every entity and stores them in the
// context's cache.
type LayoutEngine interface {
	Layout(cx *Context)
}

// ContentSizer is implemented by views with an intrinsic size, such as a
// label or an image. It is used for auto sizes of entities without layout
// children and is called with the entity as current.
type ContentSizer interface {
	ContentSize(cx *Context) (w, h float64)
}

// StackLayout stacks parent-directed children in a column or a row.
//
// Along the stacking axis, pixel and percentage sizes and spacings are
// subtracted from the parent's inner size and the rest is shared between
// stretch units by factor. Across it, a stretch size fills the space left by
// the spacings and stretch spacings share what is left, which centres a child
// with equal stretch factors on both sides. Self-directed children are placed
// at their own left and top inside the parent's padding.
type StackLayout struct{}

type axis uint8

const (
	axisX axis = iota
	axisY
)

// axisStyle is the set of channels that control one axis of a child.
type axisStyle struct {
	before, size, after Units
	min, max            Units
}

func (cx *Context) axisStyle(e Entity, a axis) axisStyle {
	s := cx.style
	if a == axisX {
		return axisStyle{
			before: s.Left.Value(e), size: s.Width.Value(e), after: s.Right.Value(e),
			min: s.MinWidth.Value(e), max: s.MaxWidth.Value(e),
		}
	}
	return axisStyle{
		before: s.Top.Value(e), size: s.Height.Value(e), after: s.Bottom.Value(e),
		min: s.MinHeight.Value(e), max: s.MaxHeight.Value(e),
	}
}

// padding returns the child-space of e on both ends of an axis, in pixels.
func (cx *Context) padding(e Entity, a axis, parentSize float64) (float64, float64) {
	s := cx.style
	if a == axisX {
		return s.ChildLeft.Value(e).Resolve(parentSize, 0), s.ChildRight.Value(e).Resolve(parentSize, 0)
	}
	return s.ChildTop.Value(e).Resolve(parentSize, 0), s.ChildBottom.Value(e).Resolve(parentSize, 0)
}

// gap returns the spacing between consecutive stacked children of e.
func (cx *Context) gap(e Entity, parentSize float64) float64 {
	if cx.style.LayoutType.Value(e) == LayoutRow {
		return cx.style.ColBetween.Value(e).Resolve(parentSize, 0)
	}
	return cx.style.RowBetween.Value(e).Resolve(parentSize, 0)
}

func (cx *Context) mainAxis(e Entity) axis {
	if cx.style.LayoutType.Value(e) == LayoutRow {
		return axisX
	}
	return axisY
}

// laidOut reports whether e takes part in layout.
func (cx *Context) laidOut(e Entity) bool {
	return cx.style.Display.Value(e) != DisplayNone
}

func clampUnits(v float64, lo, hi Units, parent float64) float64 {
	if lo.Kind == UnitsPixels || lo.Kind == UnitsPercentage {
		v = max(v, lo.Resolve(parent, 0))
	}
	if hi.Kind == UnitsPixels || hi.Kind == UnitsPercentage {
		v = min(v, hi.Resolve(parent, v))
	}
	return v
}

func stretchOf(u Units) float64 {
	if u.Kind == UnitsStretch {
		return u.Value
	}
	return 0
}

// Layout places the root at the window size and lays out the whole tree.
func (StackLayout) Layout(cx *Context) {
	size := cx.windowSize
	cx.cache.setBounds(RootEntity, Rect{0, 0, size.X, size.Y})
	layoutStack(cx, RootEntity)
	// Ignored entities have no box of their own; they share their layout
	// parent's so transforms and hit tests inside them stay consistent.
	for e := range cx.tree.Walk() {
		if cx.tree.IsIgnored(e) {
			cx.cache.setBounds(e, cx.cache.bounds(cx.tree.LayoutParent(e)))
		}
	}
	cx.updateWorldTransforms(RootEntity, identityTransform, 1)
	cx.style.needsRelayout = false
	cx.style.needsRedraw = true
}

// measure returns the size e wants along a when its size is auto.
func measure(cx *Context, e Entity, a axis, parent float64) float64 {
	st := cx.axisStyle(e, a)
	switch st.size.Kind {
	case UnitsPixels, UnitsPercentage:
		return clampUnits(st.size.Resolve(parent, 0), st.min, st.max, parent)
	}

	padBefore, padAfter := cx.padding(e, a, parent)
	content := 0.0
	n := 0
	main := cx.mainAxis(e)
	for child := range cx.tree.LayoutChildren(e) {
		if !cx.laidOut(child) || cx.style.PositionType.Value(child) == SelfDirected {
			continue
		}
		cs := cx.axisStyle(child, a)
		extent := cs.before.Resolve(parent, 0) + cs.after.Resolve(parent, 0)
		if cs.size.Kind != UnitsStretch {
			extent += measure(cx, child, a, parent)
		}
		if a == main {
			content += extent
		} else {
			content = max(content, extent)
		}
		n++
	}
	if n > 1 && a == main {
		content += float64(n-1) * cx.gap(e, parent)
	}
	if n == 0 {
		if cs, ok := cx.views.Get(e); ok {
			if sizer, ok := cs.(ContentSizer); ok {
				var w, h float64
				cx.WithCurrent(e, func(cx *Context) { w, h = sizer.ContentSize(cx) })
				if a == axisX {
					content = w
				} else {
					content = h
				}
			}
		}
	}
	return clampUnits(content+padBefore+padAfter, st.min, st.max, parent)
}

// layoutStack lays out the children of e, whose bounds are already set, and
// recurses into them.
func layoutStack(cx *Context, e Entity) {
	b := cx.cache.bounds(e)
	padL, padR := cx.padding(e, axisX, b.Width)
	padT, padB := cx.padding(e, axisY, b.Height)
	inner := Rect{b.X + padL, b.Y + padT, max(0, b.Width-padL-padR), max(0, b.Height-padT-padB)}

	main := cx.mainAxis(e)
	cross := axisY
	if main == axisY {
		cross = axisX
	}
	innerMain, innerCross := inner.Height, inner.Width
	originMain, originCross := inner.Y, inner.X
	if main == axisX {
		innerMain, innerCross = inner.Width, inner.Height
		originMain, originCross = inner.X, inner.Y
	}

	var stacked []Entity
	for child := range cx.tree.LayoutChildren(e) {
		if !cx.laidOut(child) {
			continue
		}
		if cx.style.PositionType.Value(child) == SelfDirected {
			layoutSelf(cx, child, inner)
			continue
		}
		stacked = append(stacked, child)
	}

	// Main axis: fixed lengths first, then share the rest by stretch factor.
	gap := cx.gap(e, innerMain)
	free := innerMain
	if len(stacked) > 1 {
		free -= float64(len(stacked)-1) * gap
	}
	totalStretch := 0.0
	type slot struct{ before, size, after float64 }
	slots := make([]slot, len(stacked))
	for i, child := range stacked {
		st := cx.axisStyle(child, main)
		if st.size.Kind == UnitsAuto {
			slots[i].size = measure(cx, child, main, innerMain)
		} else {
			slots[i].size = st.size.Resolve(innerMain, 0)
		}
		slots[i].before = st.before.Resolve(innerMain, 0)
		slots[i].after = st.after.Resolve(innerMain, 0)
		free -= slots[i].before + slots[i].size + slots[i].after
		totalStretch += stretchOf(st.before) + stretchOf(st.size) + stretchOf(st.after)
	}
	unit := 0.0
	if totalStretch > 0 && free > 0 {
		unit = free / totalStretch
	}

	pos := originMain
	for i, child := range stacked {
		st := cx.axisStyle(child, main)
		s := slots[i]
		s.before += stretchOf(st.before) * unit
		s.after += stretchOf(st.after) * unit
		s.size += stretchOf(st.size) * unit
		s.size = clampUnits(s.size, st.min, st.max, innerMain)

		pos += s.before
		start, length := crossPlacement(cx, child, cross, innerCross)

		var r Rect
		if main == axisY {
			r = Rect{originCross + start, pos, length, s.size}
		} else {
			r = Rect{pos, originCross + start, s.size, length}
		}
		cx.cache.setBounds(child, r)
		pos += s.size + s.after + gap
	}

	for _, child := range stacked {
		layoutStack(cx, child)
	}
}

// crossPlacement resolves the offset and length of child across the stacking
// axis of its parent.
func crossPlacement(cx *Context, child Entity, a axis, inner float64) (start, length float64) {
	st := cx.axisStyle(child, a)
	before := st.before.Resolve(inner, 0)
	after := st.after.Resolve(inner, 0)
	switch st.size.Kind {
	case UnitsStretch:
		length = max(0, inner-before-after)
	case UnitsAuto:
		length = measure(cx, child, a, inner)
	default:
		length = st.size.Resolve(inner, 0)
	}
	length = clampUnits(length, st.min, st.max, inner)

	left := inner - before - after - length
	sb, sa := stretchOf(st.before), stretchOf(st.after)
	if left > 0 && sb+sa > 0 {
		before += left * sb / (sb + sa)
	}
	return before, length
}

// layoutSelf places a self-directed child at its own offsets inside area.
func layoutSelf(cx *Context, child Entity, area Rect) {
	x, w := crossPlacement(cx, child, axisX, area.Width)
	y, h := crossPlacement(cx, child, axisY, area.Height)
	cx.cache.setBounds(child, Rect{area.X + x, area.Y + y, w, h})
	layoutStack(cx, child)
}
