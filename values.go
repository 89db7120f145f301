package canopy

import (
	"fmt"
	"math"
	"strconv"
)

// Interpolator is implemented by every value type an animation can drive.
// Interpolate returns the value at position t in [0, 1] between the receiver
// and end.
type Interpolator[T any] interface {
	Interpolate(end T, t float64) T
}

// UnitsKind selects how a Units value is measured.
type UnitsKind uint8

const (
	UnitsAuto       UnitsKind = iota // size decided by the layout engine
	UnitsPixels                      // absolute pixels
	UnitsPercentage                  // percentage of the parent's size
	UnitsStretch                     // share of the remaining free space
)

// Units is a length used by the layout channels.
type Units struct {
	Kind  UnitsKind
	Value float64
}

// Auto is the Units value that lets the layout engine decide.
var Auto = Units{Kind: UnitsAuto}

// Pixels returns an absolute length.
func Pixels(v float64) Units { return Units{UnitsPixels, v} }

// Percentage returns a length relative to the parent.
func Percentage(v float64) Units { return Units{UnitsPercentage, v} }

// Stretch returns a flexible length weighted by factor.
func Stretch(factor float64) Units { return Units{UnitsStretch, factor} }

// Interpolate blends two lengths of the same kind numerically. Lengths of
// different kinds cannot be blended and switch over at the midpoint.
func (u Units) Interpolate(end Units, t float64) Units {
	if u.Kind != end.Kind {
		if t < 0.5 {
			return u
		}
		return end
	}
	return Units{u.Kind, lerp(u.Value, end.Value, t)}
}

// Resolve converts the length to pixels against the parent size. Auto and
// stretch lengths resolve to def.
func (u Units) Resolve(parent, def float64) float64 {
	switch u.Kind {
	case UnitsPixels:
		return u.Value
	case UnitsPercentage:
		return parent * u.Value / 100
	}
	return def
}

func (u Units) String() string {
	switch u.Kind {
	case UnitsPixels:
		return strconv.FormatFloat(u.Value, 'g', -1, 64) + "px"
	case UnitsPercentage:
		return strconv.FormatFloat(u.Value, 'g', -1, 64) + "%"
	case UnitsStretch:
		return strconv.FormatFloat(u.Value, 'g', -1, 64) + "s"
	}
	return "auto"
}

// Opacity is an alpha multiplier in [0, 1].
type Opacity float64

// Interpolate blends two opacities and clamps the result.
func (o Opacity) Interpolate(end Opacity, t float64) Opacity {
	return Opacity(clamp01(lerp(float64(o), float64(end), t)))
}

// Transform is a simple 2D transform applied around the entity's centre.
// Angles are in radians. Interpolation is field by field.
type Transform struct {
	TranslateX, TranslateY float64
	ScaleX, ScaleY         float64
	Rotate                 float64
	SkewX, SkewY           float64
}

// IdentityTransform leaves geometry unchanged.
var IdentityTransform = Transform{ScaleX: 1, ScaleY: 1}

// Interpolate blends every field linearly.
func (tr Transform) Interpolate(end Transform, t float64) Transform {
	return Transform{
		TranslateX: lerp(tr.TranslateX, end.TranslateX, t),
		TranslateY: lerp(tr.TranslateY, end.TranslateY, t),
		ScaleX:     lerp(tr.ScaleX, end.ScaleX, t),
		ScaleY:     lerp(tr.ScaleY, end.ScaleY, t),
		Rotate:     lerp(tr.Rotate, end.Rotate, t),
		SkewX:      lerp(tr.SkewX, end.SkewX, t),
		SkewY:      lerp(tr.SkewY, end.SkewY, t),
	}
}

// Then composes tr followed by next. Translations add, scales multiply,
// angles add.
func (tr Transform) Then(next Transform) Transform {
	return Transform{
		TranslateX: tr.TranslateX + next.TranslateX,
		TranslateY: tr.TranslateY + next.TranslateY,
		ScaleX:     tr.ScaleX * next.ScaleX,
		ScaleY:     tr.ScaleY * next.ScaleY,
		Rotate:     tr.Rotate + next.Rotate,
		SkewX:      tr.SkewX + next.SkewX,
		SkewY:      tr.SkewY + next.SkewY,
	}
}

func (tr Transform) String() string {
	return fmt.Sprintf("translate(%g, %g) scale(%g, %g) rotate(%gdeg) skew(%gdeg, %gdeg)",
		tr.TranslateX, tr.TranslateY, tr.ScaleX, tr.ScaleY,
		tr.Rotate*180/math.Pi, tr.SkewX*180/math.Pi, tr.SkewY*180/math.Pi)
}

// Display controls whether an entity takes part in layout and drawing.
type Display uint8

const (
	DisplayFlex Display = iota // laid out and drawn
	DisplayNone                // removed from layout, drawing and hit testing
)

// Visibility hides an entity while keeping its space in the layout.
type Visibility uint8

const (
	Visible Visibility = iota
	Hidden
)

// LayoutType selects the stacking axis for parent-directed children.
type LayoutType uint8

const (
	LayoutColumn LayoutType = iota // children stack top to bottom
	LayoutRow                      // children stack left to right
)

// PositionType selects who positions an entity.
type PositionType uint8

const (
	ParentDirected PositionType = iota // placed in the parent's stack
	SelfDirected                       // placed by its own left/top, out of the stack
)
