package canopy

import (
	"math"
	"testing"
)

func TestCubicBezierEndpoints(t *testing.T) {
	for _, fn := range []TimingFunction{Ease, EaseIn, EaseOut, EaseInOut} {
		if got := fn.Ease(0); got != 0 {
			t.Errorf("%v.Ease(0) = %v", fn, got)
		}
		if got := fn.Ease(1); got != 1 {
			t.Errorf("%v.Ease(1) = %v", fn, got)
		}
	}
}

func TestCubicBezierLinearCurve(t *testing.T) {
	// Control points on the diagonal give the identity curve.
	c := CubicBezier{1.0 / 3, 1.0 / 3, 2.0 / 3, 2.0 / 3}
	for _, x := range []float64{0.1, 0.25, 0.5, 0.9} {
		if got := c.Ease(x); math.Abs(got-x) > 1e-5 {
			t.Errorf("Ease(%v) = %v", x, got)
		}
	}
}

func TestCubicBezierSymmetry(t *testing.T) {
	// ease-in-out is point-symmetric around (0.5, 0.5).
	for _, x := range []float64{0.1, 0.3, 0.45} {
		a := EaseInOut.Ease(x)
		b := EaseInOut.Ease(1 - x)
		if math.Abs(a+b-1) > 1e-4 {
			t.Errorf("Ease(%v)+Ease(%v) = %v, want 1", x, 1-x, a+b)
		}
	}
	if got := EaseIn.Ease(0.5); got >= 0.5 {
		t.Errorf("ease-in at half = %v, want < 0.5", got)
	}
	if got := EaseOut.Ease(0.5); got <= 0.5 {
		t.Errorf("ease-out at half = %v, want > 0.5", got)
	}
}

func TestParseTiming(t *testing.T) {
	tests := []struct {
		in   string
		want TimingFunction
	}{
		{"linear", Linear},
		{"ease", Ease},
		{"EASE-IN", EaseIn},
		{"ease-out", EaseOut},
		{"ease-in-out", EaseInOut},
		{"cubic-bezier(0.1, 0.7, 1.0, 0.1)", CubicBezier{0.1, 0.7, 1, 0.1}},
	}
	for _, tt := range tests {
		got, err := ParseTiming(tt.in)
		if err != nil {
			t.Errorf("ParseTiming(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTiming(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseTimingTween(t *testing.T) {
	fn, err := ParseTiming("out-bounce")
	if err != nil {
		t.Fatal(err)
	}
	tt, ok := fn.(TweenTiming)
	if !ok || tt.Name != "out-bounce" {
		t.Fatalf("got %#v", fn)
	}
	if fn.Ease(0) != 0 || fn.Ease(1) != 1 {
		t.Errorf("endpoints = %v, %v", fn.Ease(0), fn.Ease(1))
	}
	if mid := fn.Ease(0.5); mid <= 0 || mid >= 1 {
		t.Errorf("Ease(0.5) = %v", mid)
	}
}

func TestParseTimingErrors(t *testing.T) {
	for _, in := range []string{"bogus", "cubic-bezier(1,2,3)", "cubic-bezier(2, 0, 0.5, 1)", "cubic-bezier(a,b,c,d)"} {
		if _, err := ParseTiming(in); err == nil {
			t.Errorf("ParseTiming(%q) succeeded", in)
		}
	}
}
