package canopy

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var (
	errUnknownProperty = errors.New("unknown property")
	errMissingValue    = errors.New("missing value")
)

// declTarget is where a declaration lands: a rule, or an entity's inline
// values.
type declTarget struct {
	rule   RuleID
	entity Entity
	inline bool
}

func ruleTarget(r RuleID) declTarget   { return declTarget{rule: r, entity: NullEntity} }
func inlineTarget(e Entity) declTarget { return declTarget{entity: e, inline: true} }

func setValue[T any](set *StyleSet[T], dst declTarget, v T) {
	if dst.inline {
		set.Insert(dst.entity, v)
		return
	}
	set.InsertRule(dst.rule, v)
}

type propertyBinder func(s *Style, dst declTarget, value []css.Token) error

type channelRef[T any] func(s *Style) *StyleSet[T]

func unitsProperty(ref channelRef[Units]) propertyBinder {
	return func(s *Style, dst declTarget, value []css.Token) error {
		u, err := parseSingle(value, parseUnits)
		if err != nil {
			return err
		}
		setValue(ref(s), dst, u)
		return nil
	}
}

func colorProperty(ref channelRef[Color]) propertyBinder {
	return func(s *Style, dst declTarget, value []css.Token) error {
		c, err := parseSingle(value, parseColorTokens)
		if err != nil {
			return err
		}
		setValue(ref(s), dst, c)
		return nil
	}
}

func keywordProperty[T any](ref func(s *Style) *StyleSet[T], keywords map[string]T) propertyBinder {
	return func(s *Style, dst declTarget, value []css.Token) error {
		kw := strings.ToLower(tokenText(value))
		v, ok := keywords[kw]
		if !ok {
			return fmt.Errorf("unknown keyword %q", kw)
		}
		setValue(ref(s), dst, v)
		return nil
	}
}

// boxProperty binds one to four lengths in CSS order: top, right, bottom,
// left.
func boxProperty(top, right, bottom, left channelRef[Units]) propertyBinder {
	return func(s *Style, dst declTarget, value []css.Token) error {
		vals, err := parseUnitsList(value, 1, 4)
		if err != nil {
			return err
		}
		t, r, b, l := expandBox(vals)
		setValue(top(s), dst, t)
		setValue(right(s), dst, r)
		setValue(bottom(s), dst, b)
		setValue(left(s), dst, l)
		return nil
	}
}

// strokeProperty binds a width and color pair given in any order. A style
// keyword such as solid is accepted and ignored.
func strokeProperty(width channelRef[Units], col channelRef[Color]) propertyBinder {
	return func(s *Style, dst declTarget, value []css.Token) error {
		var (
			w          Units
			c          Color
			hasW, hasC bool
		)
		for _, comp := range splitComponents(value) {
			if u, err := parseUnits(comp); err == nil && !hasW {
				w, hasW = u, true
				continue
			}
			if cc, err := parseColorTokens(comp); err == nil && !hasC {
				c, hasC = cc, true
				continue
			}
			if kw := strings.ToLower(tokenText(comp)); strokeStyles[kw] {
				continue
			}
			return fmt.Errorf("unexpected %q", tokenText(comp))
		}
		if !hasW && !hasC {
			return errMissingValue
		}
		if hasW {
			setValue(width(s), dst, w)
		}
		if hasC {
			setValue(col(s), dst, c)
		}
		return nil
	}
}

var strokeStyles = map[string]bool{"solid": true, "none": true, "dashed": true, "dotted": true}

var properties map[string]propertyBinder

func init() {
	properties = map[string]propertyBinder{
		"display": keywordProperty(func(s *Style) *StyleSet[Display] { return &s.Display },
			map[string]Display{"flex": DisplayFlex, "none": DisplayNone}),
		"visibility": keywordProperty(func(s *Style) *StyleSet[Visibility] { return &s.Visibility },
			map[string]Visibility{"visible": Visible, "hidden": Hidden}),
		"layout-type": keywordProperty(func(s *Style) *StyleSet[LayoutType] { return &s.LayoutType },
			map[string]LayoutType{"column": LayoutColumn, "row": LayoutRow}),
		"position-type": keywordProperty(func(s *Style) *StyleSet[PositionType] { return &s.PositionType },
			map[string]PositionType{"parent-directed": ParentDirected, "self-directed": SelfDirected}),
		"z-index":   bindZIndex,
		"opacity":   bindOpacity,
		"transform": bindTransform,

		"left":   unitsProperty(func(s *Style) *StyleSet[Units] { return &s.Left.StyleSet }),
		"right":  unitsProperty(func(s *Style) *StyleSet[Units] { return &s.Right.StyleSet }),
		"top":    unitsProperty(func(s *Style) *StyleSet[Units] { return &s.Top.StyleSet }),
		"bottom": unitsProperty(func(s *Style) *StyleSet[Units] { return &s.Bottom.StyleSet }),
		"width":  unitsProperty(func(s *Style) *StyleSet[Units] { return &s.Width.StyleSet }),
		"height": unitsProperty(func(s *Style) *StyleSet[Units] { return &s.Height.StyleSet }),

		"min-width":  unitsProperty(func(s *Style) *StyleSet[Units] { return &s.MinWidth }),
		"max-width":  unitsProperty(func(s *Style) *StyleSet[Units] { return &s.MaxWidth }),
		"min-height": unitsProperty(func(s *Style) *StyleSet[Units] { return &s.MinHeight }),
		"max-height": unitsProperty(func(s *Style) *StyleSet[Units] { return &s.MaxHeight }),

		"child-left":   unitsProperty(func(s *Style) *StyleSet[Units] { return &s.ChildLeft }),
		"child-right":  unitsProperty(func(s *Style) *StyleSet[Units] { return &s.ChildRight }),
		"child-top":    unitsProperty(func(s *Style) *StyleSet[Units] { return &s.ChildTop }),
		"child-bottom": unitsProperty(func(s *Style) *StyleSet[Units] { return &s.ChildBottom }),
		"row-between":  unitsProperty(func(s *Style) *StyleSet[Units] { return &s.RowBetween }),
		"col-between":  unitsProperty(func(s *Style) *StyleSet[Units] { return &s.ColBetween }),

		"background-color": colorProperty(func(s *Style) *StyleSet[Color] { return &s.BackgroundColor.StyleSet }),
		"border-color":     colorProperty(func(s *Style) *StyleSet[Color] { return &s.BorderColor.StyleSet }),
		"border-width":     unitsProperty(func(s *Style) *StyleSet[Units] { return &s.BorderWidth.StyleSet }),
		"outline-color":    colorProperty(func(s *Style) *StyleSet[Color] { return &s.OutlineColor.StyleSet }),
		"outline-width":    unitsProperty(func(s *Style) *StyleSet[Units] { return &s.OutlineWidth.StyleSet }),
		"outline-offset":   unitsProperty(func(s *Style) *StyleSet[Units] { return &s.OutlineOffset.StyleSet }),
		"font-size":        unitsProperty(func(s *Style) *StyleSet[Units] { return &s.FontSize.StyleSet }),
		"font-color":       colorProperty(func(s *Style) *StyleSet[Color] { return &s.FontColor.StyleSet }),
		"color":            colorProperty(func(s *Style) *StyleSet[Color] { return &s.FontColor.StyleSet }),

		"border-top-left-radius":     unitsProperty(func(s *Style) *StyleSet[Units] { return &s.BorderTopLeftRadius.StyleSet }),
		"border-top-right-radius":    unitsProperty(func(s *Style) *StyleSet[Units] { return &s.BorderTopRightRadius.StyleSet }),
		"border-bottom-left-radius":  unitsProperty(func(s *Style) *StyleSet[Units] { return &s.BorderBottomLeftRadius.StyleSet }),
		"border-bottom-right-radius": unitsProperty(func(s *Style) *StyleSet[Units] { return &s.BorderBottomRightRadius.StyleSet }),

		"space": boxProperty(
			func(s *Style) *StyleSet[Units] { return &s.Top.StyleSet },
			func(s *Style) *StyleSet[Units] { return &s.Right.StyleSet },
			func(s *Style) *StyleSet[Units] { return &s.Bottom.StyleSet },
			func(s *Style) *StyleSet[Units] { return &s.Left.StyleSet }),
		"child-space": boxProperty(
			func(s *Style) *StyleSet[Units] { return &s.ChildTop },
			func(s *Style) *StyleSet[Units] { return &s.ChildRight },
			func(s *Style) *StyleSet[Units] { return &s.ChildBottom },
			func(s *Style) *StyleSet[Units] { return &s.ChildLeft }),
		// Corners in CSS order: top-left, top-right, bottom-right, bottom-left.
		"border-radius": boxProperty(
			func(s *Style) *StyleSet[Units] { return &s.BorderTopLeftRadius.StyleSet },
			func(s *Style) *StyleSet[Units] { return &s.BorderTopRightRadius.StyleSet },
			func(s *Style) *StyleSet[Units] { return &s.BorderBottomRightRadius.StyleSet },
			func(s *Style) *StyleSet[Units] { return &s.BorderBottomLeftRadius.StyleSet }),
		"size": bindSize,
		"border": strokeProperty(
			func(s *Style) *StyleSet[Units] { return &s.BorderWidth.StyleSet },
			func(s *Style) *StyleSet[Color] { return &s.BorderColor.StyleSet }),
		"outline": strokeProperty(
			func(s *Style) *StyleSet[Units] { return &s.OutlineWidth.StyleSet },
			func(s *Style) *StyleSet[Color] { return &s.OutlineColor.StyleSet }),

		"transition": bindTransition,
	}
}

// shorthandChannels lists the channels a transition on a shorthand name
// covers.
var shorthandChannels = map[string][]string{
	"border":        {"border-width", "border-color"},
	"outline":       {"outline-width", "outline-color"},
	"border-radius": {"border-top-left-radius", "border-top-right-radius", "border-bottom-left-radius", "border-bottom-right-radius"},
	"space":         {"left", "right", "top", "bottom"},
	"size":          {"width", "height"},
	"color":         {"font-color"},
}

// animatedChannel returns the animatable channel with the given property
// name.
func (s *Style) animatedChannel(name string) (animatedChannel, bool) {
	switch name {
	case "opacity":
		return &s.Opacity, true
	case "left":
		return &s.Left, true
	case "right":
		return &s.Right, true
	case "top":
		return &s.Top, true
	case "bottom":
		return &s.Bottom, true
	case "width":
		return &s.Width, true
	case "height":
		return &s.Height, true
	case "background-color":
		return &s.BackgroundColor, true
	case "border-width":
		return &s.BorderWidth, true
	case "border-color":
		return &s.BorderColor, true
	case "border-top-left-radius":
		return &s.BorderTopLeftRadius, true
	case "border-top-right-radius":
		return &s.BorderTopRightRadius, true
	case "border-bottom-left-radius":
		return &s.BorderBottomLeftRadius, true
	case "border-bottom-right-radius":
		return &s.BorderBottomRightRadius, true
	case "outline-width":
		return &s.OutlineWidth, true
	case "outline-color":
		return &s.OutlineColor, true
	case "outline-offset":
		return &s.OutlineOffset, true
	case "font-color":
		return &s.FontColor, true
	case "font-size":
		return &s.FontSize, true
	case "transform":
		return &s.Transform, true
	}
	return nil, false
}

// bindDeclaration parses one declaration into dst. Nothing is written when
// an error is returned.
func (s *Style) bindDeclaration(dst declTarget, name string, value []css.Token) error {
	bind, ok := properties[name]
	if !ok {
		return errUnknownProperty
	}
	value = trimWhitespace(value)
	if len(value) == 0 {
		return errMissingValue
	}
	return bind(s, dst, value)
}

func bindZIndex(s *Style, dst declTarget, value []css.Token) error {
	if len(value) != 1 || value[0].TokenType != css.NumberToken {
		return fmt.Errorf("z-index takes an integer")
	}
	z, err := strconv.Atoi(string(value[0].Data))
	if err != nil {
		return fmt.Errorf("z-index takes an integer")
	}
	setValue(&s.ZIndex, dst, z)
	return nil
}

func bindOpacity(s *Style, dst declTarget, value []css.Token) error {
	if len(value) != 1 {
		return fmt.Errorf("opacity takes one value")
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(string(value[0].Data), "%"), 64)
	if err != nil {
		return fmt.Errorf("bad opacity %q", value[0].Data)
	}
	switch value[0].TokenType {
	case css.PercentageToken:
		v /= 100
	case css.NumberToken:
	default:
		return fmt.Errorf("bad opacity %q", value[0].Data)
	}
	setValue(&s.Opacity.StyleSet, dst, Opacity(clamp01(v)))
	return nil
}

func bindSize(s *Style, dst declTarget, value []css.Token) error {
	vals, err := parseUnitsList(value, 1, 2)
	if err != nil {
		return err
	}
	w, h := vals[0], vals[0]
	if len(vals) == 2 {
		h = vals[1]
	}
	setValue(&s.Width.StyleSet, dst, w)
	setValue(&s.Height.StyleSet, dst, h)
	return nil
}

func bindTransform(s *Style, dst declTarget, value []css.Token) error {
	tr, err := parseTransform(value)
	if err != nil {
		return err
	}
	setValue(&s.Transform.StyleSet, dst, tr)
	return nil
}

// bindTransition registers a transition template on every channel named by
// each comma separated item: property duration [timing] [delay].
func bindTransition(s *Style, dst declTarget, value []css.Token) error {
	if dst.inline {
		return fmt.Errorf("transition can only be declared in a rule")
	}
	type item struct {
		channels []animatedChannel
		clock    *animationClock
	}
	var items []item
	for _, group := range splitCommas(value) {
		comps := splitComponents(group)
		if len(comps) < 2 || len(comps) > 4 {
			return fmt.Errorf("transition needs a property and a duration")
		}
		name := strings.ToLower(tokenText(comps[0]))
		names := []string{name}
		if sh, ok := shorthandChannels[name]; ok {
			names = sh
		}
		var chans []animatedChannel
		for _, n := range names {
			ch, ok := s.animatedChannel(n)
			if !ok {
				return fmt.Errorf("%q cannot be transitioned", name)
			}
			chans = append(chans, ch)
		}
		clock := &animationClock{}
		var err error
		if clock.duration, err = parseDuration(comps[1]); err != nil {
			return err
		}
		for _, comp := range comps[2:] {
			if d, err := parseDuration(comp); err == nil {
				clock.delay = d
				continue
			}
			if clock.timing != nil {
				return fmt.Errorf("unexpected %q", tokenText(comp))
			}
			if clock.timing, err = ParseTiming(tokenText(comp)); err != nil {
				return err
			}
		}
		items = append(items, item{chans, clock})
	}
	for _, it := range items {
		id := s.newAnimationID()
		for _, ch := range it.channels {
			ch.addTransition(dst.rule, id, it.clock)
		}
	}
	return nil
}

// tokenText joins the token data back into source text.
func tokenText(toks []css.Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.Write(t.Data)
	}
	return b.String()
}

func trimWhitespace(toks []css.Token) []css.Token {
	for len(toks) > 0 && toks[0].TokenType == css.WhitespaceToken {
		toks = toks[1:]
	}
	for len(toks) > 0 && toks[len(toks)-1].TokenType == css.WhitespaceToken {
		toks = toks[:len(toks)-1]
	}
	return toks
}

// splitComponents splits a value on top level whitespace. Function calls
// stay in one component.
func splitComponents(toks []css.Token) [][]css.Token {
	return splitTop(toks, css.WhitespaceToken)
}

// splitCommas splits a value on top level commas.
func splitCommas(toks []css.Token) [][]css.Token {
	return splitTop(toks, css.CommaToken)
}

func splitTop(toks []css.Token, sep css.TokenType) [][]css.Token {
	var (
		out   [][]css.Token
		start int
		level int
	)
	for i, t := range toks {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken:
			level++
		case css.RightParenthesisToken:
			level--
		case sep:
			if level == 0 {
				if c := trimWhitespace(toks[start:i]); len(c) > 0 {
					out = append(out, c)
				}
				start = i + 1
			}
		}
	}
	if c := trimWhitespace(toks[start:]); len(c) > 0 {
		out = append(out, c)
	}
	return out
}

func parseSingle[T any](value []css.Token, fn func([]css.Token) (T, error)) (T, error) {
	comps := splitComponents(value)
	if len(comps) != 1 {
		var zero T
		return zero, fmt.Errorf("expected one value, got %d", len(comps))
	}
	return fn(comps[0])
}

func parseUnitsList(value []css.Token, lo, hi int) ([]Units, error) {
	comps := splitComponents(value)
	if len(comps) < lo || len(comps) > hi {
		return nil, fmt.Errorf("expected %d to %d lengths, got %d", lo, hi, len(comps))
	}
	vals := make([]Units, len(comps))
	for i, c := range comps {
		u, err := parseUnits(c)
		if err != nil {
			return nil, err
		}
		vals[i] = u
	}
	return vals, nil
}

func expandBox(v []Units) (top, right, bottom, left Units) {
	switch len(v) {
	case 1:
		return v[0], v[0], v[0], v[0]
	case 2:
		return v[0], v[1], v[0], v[1]
	case 3:
		return v[0], v[1], v[2], v[1]
	}
	return v[0], v[1], v[2], v[3]
}

// splitDimension splits a dimension token such as 12px into number and unit.
func splitDimension(b []byte) (float64, string, error) {
	num, unit := parse.Dimension(b)
	if num == 0 {
		return 0, "", fmt.Errorf("bad number %q", b)
	}
	v, err := strconv.ParseFloat(string(b[:num]), 64)
	if err != nil {
		return 0, "", err
	}
	return v, strings.ToLower(string(b[num : num+unit])), nil
}

// parseUnits parses one length: auto, a bare number or px for pixels, a
// percentage, or a stretch factor written 2s or stretch(2).
func parseUnits(comp []css.Token) (Units, error) {
	if len(comp) == 0 {
		return Units{}, errMissingValue
	}
	t := comp[0]
	if t.TokenType == css.FunctionToken && strings.EqualFold(string(t.Data), "stretch(") {
		if len(comp) != 3 || comp[1].TokenType != css.NumberToken {
			return Units{}, fmt.Errorf("bad stretch %q", tokenText(comp))
		}
		v, err := strconv.ParseFloat(string(comp[1].Data), 64)
		if err != nil {
			return Units{}, err
		}
		return Stretch(v), nil
	}
	if len(comp) != 1 {
		return Units{}, fmt.Errorf("bad length %q", tokenText(comp))
	}
	switch t.TokenType {
	case css.IdentToken:
		if strings.EqualFold(string(t.Data), "auto") {
			return Auto, nil
		}
	case css.NumberToken:
		v, err := strconv.ParseFloat(string(t.Data), 64)
		if err != nil {
			return Units{}, err
		}
		return Pixels(v), nil
	case css.PercentageToken:
		v, _, err := splitDimension(t.Data)
		if err != nil {
			return Units{}, err
		}
		return Percentage(v), nil
	case css.DimensionToken:
		v, unit, err := splitDimension(t.Data)
		if err != nil {
			return Units{}, err
		}
		switch unit {
		case "px":
			return Pixels(v), nil
		case "s":
			return Stretch(v), nil
		}
	}
	return Units{}, fmt.Errorf("bad length %q", t.Data)
}

func parseColorTokens(comp []css.Token) (Color, error) {
	return ParseColor(tokenText(comp))
}

// parseDuration parses 300ms or 0.3s.
func parseDuration(comp []css.Token) (time.Duration, error) {
	if len(comp) != 1 || comp[0].TokenType != css.DimensionToken {
		return 0, fmt.Errorf("bad duration %q", tokenText(comp))
	}
	v, unit, err := splitDimension(comp[0].Data)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "s":
		return time.Duration(v * float64(time.Second)), nil
	case "ms":
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return 0, fmt.Errorf("bad duration unit %q", unit)
}

func parseAngle(t css.Token) (float64, error) {
	if t.TokenType == css.NumberToken {
		v, err := strconv.ParseFloat(string(t.Data), 64)
		if err == nil && v == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("angle %q needs a unit", t.Data)
	}
	if t.TokenType != css.DimensionToken {
		return 0, fmt.Errorf("bad angle %q", t.Data)
	}
	v, unit, err := splitDimension(t.Data)
	if err != nil {
		return 0, err
	}
	switch unit {
	case "deg":
		return v * math.Pi / 180, nil
	case "rad":
		return v, nil
	case "turn":
		return v * 2 * math.Pi, nil
	}
	return 0, fmt.Errorf("bad angle unit %q", unit)
}

func parseLength(t css.Token) (float64, error) {
	switch t.TokenType {
	case css.NumberToken:
		return strconv.ParseFloat(string(t.Data), 64)
	case css.DimensionToken:
		v, unit, err := splitDimension(t.Data)
		if err != nil {
			return 0, err
		}
		if unit == "px" {
			return v, nil
		}
	}
	return 0, fmt.Errorf("bad length %q", t.Data)
}

// parseTransform parses none or a list of translate, scale, rotate and skew
// functions applied left to right.
func parseTransform(value []css.Token) (Transform, error) {
	if strings.EqualFold(tokenText(value), "none") {
		return IdentityTransform, nil
	}
	tr := IdentityTransform
	for _, comp := range splitComponents(value) {
		if comp[0].TokenType != css.FunctionToken || comp[len(comp)-1].TokenType != css.RightParenthesisToken {
			return Transform{}, fmt.Errorf("bad transform %q", tokenText(comp))
		}
		name := strings.ToLower(strings.TrimSuffix(string(comp[0].Data), "("))
		var args []css.Token
		for _, a := range comp[1 : len(comp)-1] {
			if a.TokenType != css.CommaToken && a.TokenType != css.WhitespaceToken {
				args = append(args, a)
			}
		}
		step, err := transformFunction(name, args)
		if err != nil {
			return Transform{}, err
		}
		tr = tr.Then(step)
	}
	return tr, nil
}

func transformFunction(name string, args []css.Token) (Transform, error) {
	step := IdentityTransform
	want := func(lo, hi int) error {
		if len(args) < lo || len(args) > hi {
			return fmt.Errorf("%s takes %d to %d arguments", name, lo, hi)
		}
		return nil
	}
	var err error
	switch name {
	case "translate", "translatex", "translatey":
		if err = want(1, 2); err != nil {
			return step, err
		}
		var x, y float64
		if x, err = parseLength(args[0]); err != nil {
			return step, err
		}
		if len(args) == 2 {
			if y, err = parseLength(args[1]); err != nil {
				return step, err
			}
		}
		switch name {
		case "translatex":
			step.TranslateX = x
		case "translatey":
			step.TranslateY = x
		default:
			step.TranslateX, step.TranslateY = x, y
		}
	case "scale", "scalex", "scaley":
		if err = want(1, 2); err != nil {
			return step, err
		}
		var x, y float64
		if x, err = strconv.ParseFloat(string(args[0].Data), 64); err != nil {
			return step, fmt.Errorf("bad scale %q", args[0].Data)
		}
		y = x
		if len(args) == 2 {
			if y, err = strconv.ParseFloat(string(args[1].Data), 64); err != nil {
				return step, fmt.Errorf("bad scale %q", args[1].Data)
			}
		}
		switch name {
		case "scalex":
			step.ScaleX = x
		case "scaley":
			step.ScaleY = x
		default:
			step.ScaleX, step.ScaleY = x, y
		}
	case "rotate":
		if err = want(1, 1); err != nil {
			return step, err
		}
		if step.Rotate, err = parseAngle(args[0]); err != nil {
			return step, err
		}
	case "skew", "skewx", "skewy":
		if err = want(1, 2); err != nil {
			return step, err
		}
		var x, y float64
		if x, err = parseAngle(args[0]); err != nil {
			return step, err
		}
		if len(args) == 2 {
			if y, err = parseAngle(args[1]); err != nil {
				return step, err
			}
		}
		switch name {
		case "skewx":
			step.SkewX = x
		case "skewy":
			step.SkewY = x
		default:
			step.SkewX, step.SkewY = x, y
		}
	default:
		return step, fmt.Errorf("unknown transform function %q", name)
	}
	return step, nil
}
