package canopy

import (
	"time"

	"go.uber.org/zap"
)

// PseudoClass is a bitmask of the dynamic states selectors can match.
type PseudoClass uint16

const (
	PseudoHover PseudoClass = 1 << iota
	PseudoActive
	PseudoFocus
	PseudoFocusWithin
	PseudoFocusVisible
	PseudoChecked
	PseudoDisabled
	PseudoSelected
)

// pseudoClassList names the bits of PseudoClass in bit order.
var pseudoClassList = [...]string{
	"hover", "active", "focus", "focus-within",
	"focus-visible", "checked", "disabled", "selected",
}

var pseudoClassNames = map[string]PseudoClass{
	"hover":         PseudoHover,
	"active":        PseudoActive,
	"focus":         PseudoFocus,
	"focus-within":  PseudoFocusWithin,
	"focus-visible": PseudoFocusVisible,
	"checked":       PseudoChecked,
	"disabled":      PseudoDisabled,
	"selected":      PseudoSelected,
}

// Abilities describe how an entity takes part in interaction.
type Abilities uint8

const (
	AbilityHoverable Abilities = 1 << iota
	AbilityFocusable
	AbilityNavigable // reachable with Tab
)

// styleChannel is the type-erased view of a channel used for bulk operations.
type styleChannel interface {
	clearRules()
	remove(e Entity)
	link(e Entity, matched []RuleID) bool
}

// animatedChannel adds the animation operations of an AnimatableSet.
type animatedChannel interface {
	styleChannel
	play(e Entity, id AnimationID) bool
	stop(e Entity, id AnimationID)
	tick(dt time.Duration) bool
	addTransition(r RuleID, id AnimationID, clock *animationClock)
}

// Style is the per-entity style store: selector data, every style channel,
// the parsed rules, and the dirty flags the frame pipeline reads.
type Style struct {
	log *zap.Logger

	// Selector data.
	Elements      SparseSet[string]
	IDs           SparseSet[string]
	Classes       SparseSet[[]string]
	PseudoClasses SparseSet[PseudoClass]
	Abilities     SparseSet[Abilities]

	// Non-animatable channels.
	Display      StyleSet[Display]
	Visibility   StyleSet[Visibility]
	ZIndex       StyleSet[int]
	LayoutType   StyleSet[LayoutType]
	PositionType StyleSet[PositionType]
	MinWidth     StyleSet[Units]
	MaxWidth     StyleSet[Units]
	MinHeight    StyleSet[Units]
	MaxHeight    StyleSet[Units]
	ChildLeft    StyleSet[Units]
	ChildRight   StyleSet[Units]
	ChildTop     StyleSet[Units]
	ChildBottom  StyleSet[Units]
	RowBetween   StyleSet[Units]
	ColBetween   StyleSet[Units]

	// Animatable channels.
	Opacity                 AnimatableSet[Opacity]
	Left                    AnimatableSet[Units]
	Right                   AnimatableSet[Units]
	Top                     AnimatableSet[Units]
	Bottom                  AnimatableSet[Units]
	Width                   AnimatableSet[Units]
	Height                  AnimatableSet[Units]
	BackgroundColor         AnimatableSet[Color]
	BorderWidth             AnimatableSet[Units]
	BorderColor             AnimatableSet[Color]
	BorderTopLeftRadius     AnimatableSet[Units]
	BorderTopRightRadius    AnimatableSet[Units]
	BorderBottomLeftRadius  AnimatableSet[Units]
	BorderBottomRightRadius AnimatableSet[Units]
	OutlineWidth            AnimatableSet[Units]
	OutlineColor            AnimatableSet[Color]
	OutlineOffset           AnimatableSet[Units]
	FontColor               AnimatableSet[Color]
	FontSize                AnimatableSet[Units]
	Transform               AnimatableSet[Transform]

	rules       []*StyleRule
	nextRule    RuleID
	nextAnim    AnimationID
	diagnostics []Diagnostic

	channels []styleChannel
	animated []animatedChannel

	needsRestyle  bool
	needsRelayout bool
	needsRedraw   bool
}

// NewStyle returns an empty style store with every channel at its default.
func NewStyle() *Style {
	s := &Style{
		log: zap.NewNop(),

		Display:      newStyleSet(DisplayFlex),
		Visibility:   newStyleSet(Visible),
		LayoutType:   newStyleSet(LayoutColumn),
		PositionType: newStyleSet(ParentDirected),
		MinWidth:     newStyleSet(Auto),
		MaxWidth:     newStyleSet(Auto),
		MinHeight:    newStyleSet(Auto),
		MaxHeight:    newStyleSet(Auto),
		ChildLeft:    newStyleSet(Auto),
		ChildRight:   newStyleSet(Auto),
		ChildTop:     newStyleSet(Auto),
		ChildBottom:  newStyleSet(Auto),
		RowBetween:   newStyleSet(Auto),
		ColBetween:   newStyleSet(Auto),

		Opacity:                 newAnimatableSet(Opacity(1)),
		Left:                    newAnimatableSet(Auto),
		Right:                   newAnimatableSet(Auto),
		Top:                     newAnimatableSet(Auto),
		Bottom:                  newAnimatableSet(Auto),
		Width:                   newAnimatableSet(Stretch(1)),
		Height:                  newAnimatableSet(Stretch(1)),
		BackgroundColor:         newAnimatableSet(ColorTransparent),
		BorderWidth:             newAnimatableSet(Pixels(0)),
		BorderColor:             newAnimatableSet(ColorTransparent),
		BorderTopLeftRadius:     newAnimatableSet(Pixels(0)),
		BorderTopRightRadius:    newAnimatableSet(Pixels(0)),
		BorderBottomLeftRadius:  newAnimatableSet(Pixels(0)),
		BorderBottomRightRadius: newAnimatableSet(Pixels(0)),
		OutlineWidth:            newAnimatableSet(Pixels(0)),
		OutlineColor:            newAnimatableSet(ColorTransparent),
		OutlineOffset:           newAnimatableSet(Pixels(0)),
		FontColor:               newAnimatableSet(ColorBlack),
		FontSize:                newAnimatableSet(Pixels(16)),
		Transform:               newAnimatableSet(IdentityTransform),

		needsRestyle:  true,
		needsRelayout: true,
		needsRedraw:   true,
	}
	s.channels = []styleChannel{
		&s.Display, &s.Visibility, &s.ZIndex, &s.LayoutType, &s.PositionType,
		&s.MinWidth, &s.MaxWidth, &s.MinHeight, &s.MaxHeight,
		&s.ChildLeft, &s.ChildRight, &s.ChildTop, &s.ChildBottom,
		&s.RowBetween, &s.ColBetween,
	}
	s.animated = []animatedChannel{
		&s.Opacity, &s.Left, &s.Right, &s.Top, &s.Bottom, &s.Width, &s.Height,
		&s.BackgroundColor, &s.BorderWidth, &s.BorderColor,
		&s.BorderTopLeftRadius, &s.BorderTopRightRadius,
		&s.BorderBottomLeftRadius, &s.BorderBottomRightRadius,
		&s.OutlineWidth, &s.OutlineColor, &s.OutlineOffset,
		&s.FontColor, &s.FontSize, &s.Transform,
	}
	for _, ch := range s.animated {
		s.channels = append(s.channels, ch)
	}
	return s
}

// SetLogger sets the logger used for stylesheet diagnostics.
func (s *Style) SetLogger(log *zap.Logger) {
	s.log = log
}

// add registers the selector data of a new entity.
func (s *Style) add(e Entity) {
	s.PseudoClasses.Insert(e, 0)
	s.Abilities.Insert(e, AbilityHoverable)
	s.needsRestyle = true
	s.needsRelayout = true
	s.needsRedraw = true
}

// Remove purges every record of e.
func (s *Style) Remove(e Entity) {
	s.Elements.Remove(e)
	s.IDs.Remove(e)
	s.Classes.Remove(e)
	s.PseudoClasses.Remove(e)
	s.Abilities.Remove(e)
	for _, ch := range s.channels {
		ch.remove(e)
	}
}

// ClearRules drops every rule, rule binding, transition and diagnostic.
// Inline values and running animations are kept.
func (s *Style) ClearRules() {
	for _, ch := range s.channels {
		ch.clearRules()
	}
	s.rules = s.rules[:0]
	s.diagnostics = s.diagnostics[:0]
	s.needsRestyle = true
	s.needsRelayout = true
	s.needsRedraw = true
}

// Rules returns the parsed rules in declaration order.
func (s *Style) Rules() []*StyleRule { return s.rules }

// Diagnostics returns the problems found by the last parse.
func (s *Style) Diagnostics() []Diagnostic { return s.diagnostics }

func (s *Style) newAnimationID() AnimationID {
	id := s.nextAnim
	s.nextAnim++
	return id
}

func (s *Style) addAnimation(d time.Duration) *AnimationBuilder {
	return &AnimationBuilder{
		style: s,
		id:    s.newAnimationID(),
		clock: &animationClock{duration: d},
	}
}

// playAnimation starts animation id on e in every channel it has keyframes
// for. Reports whether any channel started.
func (s *Style) playAnimation(e Entity, id AnimationID) bool {
	started := false
	for _, ch := range s.animated {
		if ch.play(e, id) {
			started = true
		}
	}
	if started {
		s.needsRelayout = true
		s.needsRedraw = true
	}
	return started
}

func (s *Style) stopAnimation(e Entity, id AnimationID) {
	for _, ch := range s.animated {
		ch.stop(e, id)
	}
	s.needsRelayout = true
	s.needsRedraw = true
}

// tickAnimations advances every running animation by dt.
func (s *Style) tickAnimations(dt time.Duration) bool {
	changed := false
	for _, ch := range s.animated {
		if ch.tick(dt) {
			changed = true
		}
	}
	if changed {
		s.needsRelayout = true
		s.needsRedraw = true
	}
	return changed
}

func (s *Style) pseudoClasses(e Entity) PseudoClass {
	p, _ := s.PseudoClasses.Get(e)
	return p
}

func (s *Style) setPseudoClass(e Entity, p PseudoClass, on bool) bool {
	ptr := s.PseudoClasses.GetPtr(e)
	if ptr == nil {
		return false
	}
	old := *ptr
	if on {
		*ptr |= p
	} else {
		*ptr &^= p
	}
	if *ptr != old {
		s.needsRestyle = true
		return true
	}
	return false
}

func (s *Style) hasAbility(e Entity, a Abilities) bool {
	v, _ := s.Abilities.Get(e)
	return v&a != 0
}

func (s *Style) setAbility(e Entity, a Abilities, on bool) {
	ptr := s.Abilities.GetPtr(e)
	if ptr == nil {
		return
	}
	if on {
		*ptr |= a
	} else {
		*ptr &^= a
	}
}

func (s *Style) hasClass(e Entity, class string) bool {
	classes, _ := s.Classes.Get(e)
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}
