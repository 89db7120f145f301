package canopy

import (
	"cmp"
	"slices"
)

// CascadeOrder returns the rules from highest to lowest precedence: higher
// specificity first, and among equal specificity the later declaration
// first.
func (s *Style) CascadeOrder() []*StyleRule {
	order := slices.Clone(s.rules)
	slices.SortFunc(order, func(a, b *StyleRule) int {
		if c := cmp.Compare(b.Specificity, a.Specificity); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return order
}

// MatchedRules returns the rules matching e in cascade order.
func (s *Style) MatchedRules(tree *Tree, e Entity) []RuleID {
	return s.matchRules(s.CascadeOrder(), tree, e, nil)
}

func (s *Style) matchRules(order []*StyleRule, tree *Tree, e Entity, dst []RuleID) []RuleID {
	for _, r := range order {
		if r.Matches(s, tree, e) {
			dst = append(dst, r.ID)
		}
	}
	return dst
}

// restyle links every channel of every entity in the tree to the first
// matching rule that declares it. Reports whether any link changed.
func (s *Style) restyle(tree *Tree) bool {
	order := s.CascadeOrder()
	var matched []RuleID
	changed := false
	for e := range tree.Walk() {
		matched = s.matchRules(order, tree, e, matched[:0])
		for _, ch := range s.channels {
			if ch.link(e, matched) {
				changed = true
			}
		}
	}
	s.needsRestyle = false
	if changed {
		s.needsRelayout = true
		s.needsRedraw = true
	}
	return changed
}
