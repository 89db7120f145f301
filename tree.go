package canopy

import (
	"fmt"
	"iter"
)

// Tree stores the parent, child and sibling links of every entity. Links are
// kept in flat slices indexed by entity index so a snapshot is a handful of
// slice copies.
type Tree struct {
	entities    []Entity // occupant of each index, NullEntity when free
	parent      []Entity
	firstChild  []Entity
	lastChild   []Entity
	nextSibling []Entity
	prevSibling []Entity
	ignored     []bool

	count   int
	changed bool
}

// NewTree returns a tree holding only RootEntity.
func NewTree() *Tree {
	t := &Tree{}
	t.grow(0)
	t.entities[0] = RootEntity
	t.count = 1
	t.changed = true
	return t
}

func (t *Tree) grow(index int) {
	for len(t.entities) <= index {
		t.entities = append(t.entities, NullEntity)
		t.parent = append(t.parent, NullEntity)
		t.firstChild = append(t.firstChild, NullEntity)
		t.lastChild = append(t.lastChild, NullEntity)
		t.nextSibling = append(t.nextSibling, NullEntity)
		t.prevSibling = append(t.prevSibling, NullEntity)
		t.ignored = append(t.ignored, false)
	}
}

// Contains reports whether e is part of the tree.
func (t *Tree) Contains(e Entity) bool {
	if e.IsNull() {
		return false
	}
	i := e.Index()
	return i < len(t.entities) && t.entities[i] == e
}

// Len returns the number of entities in the tree, root included.
func (t *Tree) Len() int { return t.count }

// Add appends e as the last child of parent.
// Panics if e is already in the tree or parent is not.
func (t *Tree) Add(e, parent Entity) {
	if e.IsNull() {
		panic("canopy: cannot add null entity to tree")
	}
	if t.Contains(e) {
		panic(fmt.Sprintf("canopy: entity %v already in tree", e))
	}
	if !t.Contains(parent) {
		panic(fmt.Sprintf("canopy: parent %v not in tree", parent))
	}
	i := e.Index()
	t.grow(i)
	if t.entities[i] != NullEntity {
		panic(fmt.Sprintf("canopy: tree slot %d still held by %v", i, t.entities[i]))
	}
	t.entities[i] = e
	t.parent[i] = parent
	t.firstChild[i] = NullEntity
	t.lastChild[i] = NullEntity
	t.nextSibling[i] = NullEntity
	t.ignored[i] = false

	p := parent.Index()
	last := t.lastChild[p]
	t.prevSibling[i] = last
	if last.IsNull() {
		t.firstChild[p] = e
	} else {
		t.nextSibling[last.Index()] = e
	}
	t.lastChild[p] = e
	t.count++
	t.changed = true
}

// Remove detaches e from the tree. Children must be removed first.
func (t *Tree) Remove(e Entity) {
	if !t.Contains(e) {
		panic(fmt.Sprintf("canopy: removing entity %v not in tree", e))
	}
	if e == RootEntity {
		panic("canopy: cannot remove the root entity")
	}
	i := e.Index()
	if !t.firstChild[i].IsNull() {
		panic(fmt.Sprintf("canopy: removing entity %v that still has children", e))
	}
	p := t.parent[i].Index()
	prev, next := t.prevSibling[i], t.nextSibling[i]
	if prev.IsNull() {
		t.firstChild[p] = next
	} else {
		t.nextSibling[prev.Index()] = next
	}
	if next.IsNull() {
		t.lastChild[p] = prev
	} else {
		t.prevSibling[next.Index()] = prev
	}
	t.entities[i] = NullEntity
	t.parent[i] = NullEntity
	t.nextSibling[i] = NullEntity
	t.prevSibling[i] = NullEntity
	t.ignored[i] = false
	t.count--
	t.changed = true
}

// Parent returns the parent of e, or NullEntity for the root and for
// entities not in the tree.
func (t *Tree) Parent(e Entity) Entity {
	if !t.Contains(e) {
		return NullEntity
	}
	return t.parent[e.Index()]
}

// FirstChild returns the first child of e or NullEntity.
func (t *Tree) FirstChild(e Entity) Entity {
	if !t.Contains(e) {
		return NullEntity
	}
	return t.firstChild[e.Index()]
}

// NextSibling returns the sibling after e or NullEntity.
func (t *Tree) NextSibling(e Entity) Entity {
	if !t.Contains(e) {
		return NullEntity
	}
	return t.nextSibling[e.Index()]
}

// IsIgnored reports whether e is skipped by layout traversals.
func (t *Tree) IsIgnored(e Entity) bool {
	return t.Contains(e) && t.ignored[e.Index()]
}

// SetIgnored marks e as transparent to layout. Ignored entities still exist,
// receive events and are styled; layout sees their children in their place.
func (t *Tree) SetIgnored(e Entity, ignored bool) {
	if !t.Contains(e) {
		return
	}
	if t.ignored[e.Index()] != ignored {
		t.ignored[e.Index()] = ignored
		t.changed = true
	}
}

// IsAncestor reports whether a is a strict ancestor of e.
func (t *Tree) IsAncestor(a, e Entity) bool {
	for p := t.Parent(e); !p.IsNull(); p = t.Parent(p) {
		if p == a {
			return true
		}
	}
	return false
}

// Ancestors yields the parent of e, then its parent, up to the root.
func (t *Tree) Ancestors(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for p := t.Parent(e); !p.IsNull(); p = t.Parent(p) {
			if !yield(p) {
				return
			}
		}
	}
}

// Children yields the direct children of e in order.
func (t *Tree) Children(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		for c := t.FirstChild(e); !c.IsNull(); c = t.nextSibling[c.Index()] {
			if !yield(c) {
				return
			}
		}
	}
}

// Branch yields e and all of its descendants in depth-first pre-order.
func (t *Tree) Branch(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		if !t.Contains(e) {
			return
		}
		cur := e
		for {
			if !yield(cur) {
				return
			}
			if c := t.firstChild[cur.Index()]; !c.IsNull() {
				cur = c
				continue
			}
			// Climb until a next sibling exists, never leaving the branch.
			for {
				if cur == e {
					return
				}
				if s := t.nextSibling[cur.Index()]; !s.IsNull() {
					cur = s
					break
				}
				cur = t.parent[cur.Index()]
			}
		}
	}
}

// Walk yields every entity of the tree in depth-first pre-order.
func (t *Tree) Walk() iter.Seq[Entity] {
	return t.Branch(RootEntity)
}

// LayoutChildren yields the children of e as layout sees them: ignored
// children are replaced by their own layout children.
func (t *Tree) LayoutChildren(e Entity) iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		t.layoutChildren(e, yield)
	}
}

func (t *Tree) layoutChildren(e Entity, yield func(Entity) bool) bool {
	for c := t.FirstChild(e); !c.IsNull(); c = t.nextSibling[c.Index()] {
		if t.ignored[c.Index()] {
			if !t.layoutChildren(c, yield) {
				return false
			}
			continue
		}
		if !yield(c) {
			return false
		}
	}
	return true
}

// LayoutParent returns the nearest ancestor of e that is not ignored.
func (t *Tree) LayoutParent(e Entity) Entity {
	for p := range t.Ancestors(e) {
		if !t.ignored[p.Index()] {
			return p
		}
	}
	return NullEntity
}

// Clone returns an independent copy of the tree.
func (t *Tree) Clone() *Tree {
	return &Tree{
		entities:    append([]Entity(nil), t.entities...),
		parent:      append([]Entity(nil), t.parent...),
		firstChild:  append([]Entity(nil), t.firstChild...),
		lastChild:   append([]Entity(nil), t.lastChild...),
		nextSibling: append([]Entity(nil), t.nextSibling...),
		prevSibling: append([]Entity(nil), t.prevSibling...),
		ignored:     append([]bool(nil), t.ignored...),
		count:       t.count,
		changed:     t.changed,
	}
}

// depth returns the number of ancestors of e.
func (t *Tree) depth(e Entity) int {
	d := 0
	for range t.Ancestors(e) {
		d++
	}
	return d
}
