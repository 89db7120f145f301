package canopy

import "time"

// RuleID identifies a stylesheet rule. IDs grow in declaration order.
type RuleID uint32

// StyleSet holds one style channel: inline values set directly on entities,
// values declared by rules, and the rule each entity is currently linked to
// by the cascade.
type StyleSet[T any] struct {
	inline SparseSet[T]
	rules  map[RuleID]T
	linked SparseSet[RuleID]
	def    T
}

func newStyleSet[T any](def T) StyleSet[T] {
	return StyleSet[T]{def: def}
}

// Get resolves the channel for e: the inline value, else the linked rule's
// value. When neither exists it returns the channel default and false.
func (s *StyleSet[T]) Get(e Entity) (T, bool) {
	if v, ok := s.inline.Get(e); ok {
		return v, true
	}
	if r, ok := s.linked.Get(e); ok {
		if v, ok := s.rules[r]; ok {
			return v, true
		}
	}
	return s.def, false
}

// Value is Get without the presence flag.
func (s *StyleSet[T]) Value(e Entity) T {
	v, _ := s.Get(e)
	return v
}

// Default returns the channel default.
func (s *StyleSet[T]) Default() T { return s.def }

// Insert sets an inline value on e.
func (s *StyleSet[T]) Insert(e Entity, v T) {
	s.inline.Insert(e, v)
}

// Inline returns the inline value of e, if any.
func (s *StyleSet[T]) Inline(e Entity) (T, bool) {
	return s.inline.Get(e)
}

// RemoveInline drops the inline value of e so the cascade shows through.
func (s *StyleSet[T]) RemoveInline(e Entity) {
	s.inline.Remove(e)
}

// InsertRule records the value a rule declares for this channel.
func (s *StyleSet[T]) InsertRule(r RuleID, v T) {
	if s.rules == nil {
		s.rules = make(map[RuleID]T)
	}
	s.rules[r] = v
}

// RuleValue returns the value a rule declares for this channel.
func (s *StyleSet[T]) RuleValue(r RuleID) (T, bool) {
	v, ok := s.rules[r]
	return v, ok
}

// LinkedRule returns the rule e is linked to.
func (s *StyleSet[T]) LinkedRule(e Entity) (RuleID, bool) {
	return s.linked.Get(e)
}

// link points e at the first rule of matched that declares this channel.
// matched must be ordered from highest to lowest precedence. Reports
// whether the link changed.
func (s *StyleSet[T]) link(e Entity, matched []RuleID) bool {
	old, had := s.linked.Get(e)
	for _, r := range matched {
		if _, ok := s.rules[r]; ok {
			if had && old == r {
				return false
			}
			s.linked.Insert(e, r)
			return true
		}
	}
	if had {
		s.linked.Remove(e)
		return true
	}
	return false
}

func (s *StyleSet[T]) clearRules() {
	clear(s.rules)
	s.linked.Clear()
}

func (s *StyleSet[T]) remove(e Entity) {
	s.inline.Remove(e)
	s.linked.Remove(e)
}

// AnimatableSet is a StyleSet whose values can be driven over time by
// keyframe animations and transitions. An active animation takes precedence
// over inline and rule values.
type AnimatableSet[T Interpolator[T]] struct {
	StyleSet[T]

	animations  map[AnimationID]*animationState[T] // keyframe templates
	transitions map[RuleID]*animationState[T]      // transition templates, keyframes filled at start
	active      []*animationState[T]
}

func newAnimatableSet[T Interpolator[T]](def T) AnimatableSet[T] {
	return AnimatableSet[T]{StyleSet: newStyleSet(def)}
}

// Get resolves the channel for e, giving an active animation precedence.
func (s *AnimatableSet[T]) Get(e Entity) (T, bool) {
	if a := s.activeFor(e); a != nil {
		return a.value, true
	}
	return s.StyleSet.Get(e)
}

// Value is Get without the presence flag.
func (s *AnimatableSet[T]) Value(e Entity) T {
	v, _ := s.Get(e)
	return v
}

// IsAnimating reports whether an animation or transition currently drives
// the channel for e.
func (s *AnimatableSet[T]) IsAnimating(e Entity) bool {
	return s.activeFor(e) != nil
}

// activeFor returns the most recently started instance running on e.
func (s *AnimatableSet[T]) activeFor(e Entity) *animationState[T] {
	for i := len(s.active) - 1; i >= 0; i-- {
		if s.active[i].entity == e {
			return s.active[i]
		}
	}
	return nil
}

func (s *AnimatableSet[T]) template(id AnimationID, clock *animationClock) *animationState[T] {
	if s.animations == nil {
		s.animations = make(map[AnimationID]*animationState[T])
	}
	a, ok := s.animations[id]
	if !ok {
		a = &animationState[T]{id: id, clock: clock, entity: NullEntity}
		s.animations[id] = a
	}
	return a
}

func (s *AnimatableSet[T]) addTransition(r RuleID, id AnimationID, clock *animationClock) {
	if s.transitions == nil {
		s.transitions = make(map[RuleID]*animationState[T])
	}
	s.transitions[r] = &animationState[T]{id: id, clock: clock, entity: NullEntity}
}

// link re-links e and starts a transition when the resolved value changes
// because of a rule switch and one of the matched rules declares a
// transition for this channel.
func (s *AnimatableSet[T]) link(e Entity, matched []RuleID) bool {
	_, hadRule := s.linked.Get(e)
	before, _ := s.Get(e)
	if !s.StyleSet.link(e, matched) {
		return false
	}
	if !hadRule || s.inline.Contains(e) {
		return true
	}
	var tmpl *animationState[T]
	for _, r := range matched {
		if t, ok := s.transitions[r]; ok {
			tmpl = t
			break
		}
	}
	if tmpl == nil {
		return true
	}
	after, _ := s.StyleSet.Get(e)
	inst := tmpl.instance(e)
	inst.keyframes = []keyframe[T]{{time: 0, value: before}, {time: 1, value: after}}
	inst.value = before
	s.start(inst)
	return true
}

// play starts a copy of the animation template id on e. Reports false when
// this channel has no keyframes for id.
func (s *AnimatableSet[T]) play(e Entity, id AnimationID) bool {
	tmpl, ok := s.animations[id]
	if !ok || len(tmpl.keyframes) == 0 {
		return false
	}
	inst := tmpl.instance(e)
	inst.keyframes = tmpl.keyframes
	inst.value = tmpl.keyframes[0].value
	s.start(inst)
	return true
}

// start replaces any running instance with the same id on the same entity.
func (s *AnimatableSet[T]) start(inst *animationState[T]) {
	s.stop(inst.entity, inst.id)
	s.active = append(s.active, inst)
}

func (s *AnimatableSet[T]) stop(e Entity, id AnimationID) {
	n := 0
	for _, a := range s.active {
		if a.entity == e && a.id == id {
			continue
		}
		s.active[n] = a
		n++
	}
	clear(s.active[n:])
	s.active = s.active[:n]
}

// tick retires instances that completed on an earlier tick and advances the
// rest. Reports whether anything changed.
func (s *AnimatableSet[T]) tick(dt time.Duration) bool {
	changed := false
	n := 0
	for _, a := range s.active {
		changed = true
		if a.done {
			continue
		}
		a.advance(dt)
		s.active[n] = a
		n++
	}
	clear(s.active[n:])
	s.active = s.active[:n]
	return changed
}

func (s *AnimatableSet[T]) clearRules() {
	s.StyleSet.clearRules()
	clear(s.transitions)
}

func (s *AnimatableSet[T]) remove(e Entity) {
	s.StyleSet.remove(e)
	n := 0
	for _, a := range s.active {
		if a.entity == e {
			continue
		}
		s.active[n] = a
		n++
	}
	clear(s.active[n:])
	s.active = s.active[:n]
}
