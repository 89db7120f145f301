package canopy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tanema/gween/ease"
)

// TimingFunction maps linear progress t in [0, 1] to eased progress.
type TimingFunction interface {
	Ease(t float64) float64
}

type linearTiming struct{}

func (linearTiming) Ease(t float64) float64 { return t }

// Linear progresses at constant speed.
var Linear TimingFunction = linearTiming{}

// The CSS keyword curves.
var (
	Ease      TimingFunction = CubicBezier{0.25, 0.1, 0.25, 1}
	EaseIn    TimingFunction = CubicBezier{0.42, 0, 1, 1}
	EaseOut   TimingFunction = CubicBezier{0, 0, 0.58, 1}
	EaseInOut TimingFunction = CubicBezier{0.42, 0, 0.58, 1}
)

// CubicBezier is a timing curve matching CSS cubic-bezier(). The curve runs
// from (0,0) to (1,1) with control points (X1,Y1) and (X2,Y2).
type CubicBezier struct {
	X1, Y1, X2, Y2 float64
}

// Ease solves the curve for x = t and returns its y.
func (c CubicBezier) Ease(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	u := t
	// Newton-Raphson converges quickly for most values.
	for range 8 {
		x := sampleCurve(c.X1, c.X2, u) - t
		if math.Abs(x) < 1e-7 {
			return sampleCurve(c.Y1, c.Y2, clamp01(u))
		}
		dx := sampleCurveDerivative(c.X1, c.X2, u)
		if math.Abs(dx) < 1e-7 {
			break
		}
		u -= x / dx
	}

	// Bisection fallback keeps the solution inside [0,1].
	lo, hi := 0.0, 1.0
	u = clamp01(u)
	for range 20 {
		x := sampleCurve(c.X1, c.X2, u) - t
		if math.Abs(x) < 1e-7 {
			break
		}
		if x > 0 {
			hi = u
		} else {
			lo = u
		}
		u = (lo + hi) * 0.5
	}
	return sampleCurve(c.Y1, c.Y2, u)
}

func sampleCurve(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*t*a + 3*inv*t*t*b + t*t*t
}

func sampleCurveDerivative(a, b, t float64) float64 {
	inv := 1 - t
	return 3*inv*inv*a + 6*inv*t*(b-a) + 3*t*t*(1-b)
}

// TweenTiming adapts a gween easing function to a TimingFunction.
type TweenTiming struct {
	Name string
	Fn   ease.TweenFunc
}

// Ease evaluates the easing function over a unit range and duration.
func (tt TweenTiming) Ease(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return float64(tt.Fn(float32(t), 0, 1, 1))
}

var tweenTimings = map[string]ease.TweenFunc{
	"in-quad":        ease.InQuad,
	"out-quad":       ease.OutQuad,
	"in-out-quad":    ease.InOutQuad,
	"in-cubic":       ease.InCubic,
	"out-cubic":      ease.OutCubic,
	"in-out-cubic":   ease.InOutCubic,
	"in-quart":       ease.InQuart,
	"out-quart":      ease.OutQuart,
	"in-out-quart":   ease.InOutQuart,
	"in-quint":       ease.InQuint,
	"out-quint":      ease.OutQuint,
	"in-out-quint":   ease.InOutQuint,
	"in-sine":        ease.InSine,
	"out-sine":       ease.OutSine,
	"in-out-sine":    ease.InOutSine,
	"in-expo":        ease.InExpo,
	"out-expo":       ease.OutExpo,
	"in-out-expo":    ease.InOutExpo,
	"in-circ":        ease.InCirc,
	"out-circ":       ease.OutCirc,
	"in-out-circ":    ease.InOutCirc,
	"in-elastic":     ease.InElastic,
	"out-elastic":    ease.OutElastic,
	"in-out-elastic": ease.InOutElastic,
	"in-back":        ease.InBack,
	"out-back":       ease.OutBack,
	"in-out-back":    ease.InOutBack,
	"in-bounce":      ease.InBounce,
	"out-bounce":     ease.OutBounce,
	"in-out-bounce":  ease.InOutBounce,
}

// ParseTiming resolves a timing function by its CSS name: linear, ease,
// ease-in, ease-out, ease-in-out, cubic-bezier(x1, y1, x2, y2), or one of the
// named tween curves such as out-bounce.
func ParseTiming(s string) (TimingFunction, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "linear":
		return Linear, nil
	case "ease":
		return Ease, nil
	case "ease-in":
		return EaseIn, nil
	case "ease-out":
		return EaseOut, nil
	case "ease-in-out":
		return EaseInOut, nil
	}
	if strings.HasPrefix(s, "cubic-bezier(") && strings.HasSuffix(s, ")") {
		args := strings.Split(s[len("cubic-bezier("):len(s)-1], ",")
		if len(args) != 4 {
			return nil, fmt.Errorf("cubic-bezier takes 4 arguments, got %d", len(args))
		}
		var p [4]float64
		for i, a := range args {
			v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
			if err != nil {
				return nil, fmt.Errorf("bad cubic-bezier argument %q", a)
			}
			p[i] = v
		}
		if p[0] < 0 || p[0] > 1 || p[2] < 0 || p[2] > 1 {
			return nil, fmt.Errorf("cubic-bezier x values must lie in [0, 1]")
		}
		return CubicBezier{p[0], p[1], p[2], p[3]}, nil
	}
	if fn, ok := tweenTimings[s]; ok {
		return TweenTiming{Name: s, Fn: fn}, nil
	}
	return nil, fmt.Errorf("unknown timing function %q", s)
}
