package canopy

import (
	"cmp"
	"slices"
)

// cacheEntry holds the per-frame geometry of one entity.
type cacheEntry struct {
	bounds  Rect       // layout box in window coordinates, before transforms
	world   [6]float64 // accumulated transform of the entity and its ancestors
	inverse [6]float64
	alpha   float64 // opacity multiplied down the tree
}

// cache stores layout results and the z-sorted child lists used for painting
// and hit testing.
type cache struct {
	entries SparseSet[cacheEntry]
	sorted  SparseSet[[]Entity]
	order   bool // sorted lists are valid
}

func newCache() *cache {
	return &cache{}
}

func (c *cache) add(e Entity) {
	c.entries.Insert(e, cacheEntry{world: identityTransform, inverse: identityTransform, alpha: 1})
	c.order = false
}

func (c *cache) remove(e Entity) {
	c.entries.Remove(e)
	c.sorted.Remove(e)
	c.order = false
}

func (c *cache) entry(e Entity) *cacheEntry {
	return c.entries.GetPtr(e)
}

func (c *cache) bounds(e Entity) Rect {
	en, _ := c.entries.Get(e)
	return en.bounds
}

func (c *cache) setBounds(e Entity, r Rect) {
	if en := c.entries.GetPtr(e); en != nil {
		en.bounds = r
	}
}

func (c *cache) invalidateOrder() {
	c.order = false
}

// paintChildren returns the children of e in paint order: ascending z-index,
// tree order among equal z-indices. The slice is owned by the cache.
func (cx *Context) paintChildren(e Entity) []Entity {
	c := cx.cache
	if !c.order {
		c.sorted.Clear()
		c.order = true
	}
	if list, ok := c.sorted.Get(e); ok {
		return list
	}
	var list []Entity
	for child := range cx.tree.Children(e) {
		list = append(list, child)
	}
	slices.SortStableFunc(list, func(a, b Entity) int {
		return cmp.Compare(cx.style.ZIndex.Value(a), cx.style.ZIndex.Value(b))
	})
	c.sorted.Insert(e, list)
	return list
}
