package canopy

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func assertNear(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > epsilon {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func assertMatrix(t *testing.T, name string, got, want [6]float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- Transform.Matrix ---

func TestMatrixIdentity(t *testing.T) {
	assertMatrix(t, "identity", IdentityTransform.Matrix(30, 40), identityTransform)
	if !IdentityTransform.IsIdentity() {
		t.Error("IdentityTransform is not identity")
	}
}

func TestMatrixTranslation(t *testing.T) {
	tr := Transform{TranslateX: 10, TranslateY: 20, ScaleX: 1, ScaleY: 1}
	assertMatrix(t, "translation", tr.Matrix(50, 50), [6]float64{1, 0, 0, 1, 10, 20})
}

func TestMatrixScaleAroundPivot(t *testing.T) {
	tr := Transform{ScaleX: 2, ScaleY: 3}
	got := tr.Matrix(16, 16)
	// The pivot stays in place.
	x, y := transformPoint(got, 16, 16)
	assertNear(t, "pivot x", x, 16)
	assertNear(t, "pivot y", y, 16)
	assertMatrix(t, "scale", got, [6]float64{2, 0, 0, 3, -16, -32})
}

func TestMatrixRotation90(t *testing.T) {
	tr := Transform{ScaleX: 1, ScaleY: 1, Rotate: math.Pi / 2}
	got := tr.Matrix(0, 0)
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", got, [6]float64{0, 1, -1, 0, 0, 0})
}

func TestMatrixSkew(t *testing.T) {
	tr := Transform{ScaleX: 1, ScaleY: 1, SkewX: math.Pi / 4}
	got := tr.Matrix(0, 0)
	assertMatrix(t, "skew", got, [6]float64{1, 0, 1, 1, 0, 0})
}

// --- multiplyAffine / invertAffine ---

func TestMultiplyAffineIdentity(t *testing.T) {
	m := [6]float64{2, 0.5, -1, 3, 7, 9}
	assertMatrix(t, "I*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*I", multiplyAffine(m, identityTransform), m)
}

func TestMultiplyAffineTranslations(t *testing.T) {
	a := [6]float64{1, 0, 0, 1, 10, 20}
	b := [6]float64{1, 0, 0, 1, 5, 7}
	assertMatrix(t, "a*b", multiplyAffine(a, b), [6]float64{1, 0, 0, 1, 15, 27})
}

func TestInvertAffine(t *testing.T) {
	m := Transform{TranslateX: 12, TranslateY: -4, ScaleX: 2, ScaleY: 0.5, Rotate: 0.7, SkewX: 0.2}.Matrix(30, 10)
	assertMatrix(t, "m*inv", multiplyAffine(m, invertAffine(m)), identityTransform)
}

func TestInvertAffineSingularReturnsIdentity(t *testing.T) {
	assertMatrix(t, "singular", invertAffine([6]float64{0, 0, 0, 0, 5, 5}), identityTransform)
	zero := Transform{}.Matrix(10, 10)
	assertMatrix(t, "zero scale", invertAffine(zero), identityTransform)
}

// --- World transforms ---

func TestWorldTransformParentChild(t *testing.T) {
	cx := NewContext()
	parent := addTo(cx, RootEntity, nil)
	cx.style.Width.Insert(parent, Pixels(100))
	cx.style.Height.Insert(parent, Pixels(100))
	cx.style.Transform.Insert(parent, Transform{TranslateX: 10, ScaleX: 1, ScaleY: 1})
	child := addTo(cx, parent, nil)
	cx.style.Transform.Insert(child, Transform{TranslateY: 5, ScaleX: 1, ScaleY: 1})
	runLayout(cx, 200, 200)

	x, y := cx.LocalToWorld(child, 0, 0)
	assertNear(t, "x", x, 10)
	assertNear(t, "y", y, 5)
}

func TestWorldToLocalRoundtrip(t *testing.T) {
	cx := NewContext()
	e := addTo(cx, RootEntity, nil)
	cx.style.Width.Insert(e, Pixels(40))
	cx.style.Height.Insert(e, Pixels(20))
	cx.style.Top.Insert(e, Pixels(30))
	cx.style.Transform.Insert(e, Transform{TranslateX: 3, ScaleX: 1.5, ScaleY: 0.5, Rotate: 1.1})
	runLayout(cx, 200, 200)

	for _, p := range [][2]float64{{0, 0}, {40, 20}, {12.5, 7}} {
		wx, wy := cx.LocalToWorld(e, p[0], p[1])
		lx, ly := cx.WorldToLocal(e, wx, wy)
		assertNear(t, "lx", lx, p[0])
		assertNear(t, "ly", ly, p[1])
	}
}

func TestLocalToWorldWithoutTransform(t *testing.T) {
	cx := NewContext()
	e := addTo(cx, RootEntity, nil)
	cx.style.Top.Insert(e, Pixels(30))
	cx.style.Height.Insert(e, Pixels(10))
	runLayout(cx, 100, 100)

	x, y := cx.LocalToWorld(e, 5, 5)
	assertNear(t, "x", x, 5)
	assertNear(t, "y", y, 35)
	lx, ly := cx.WorldToLocal(newEntity(99, 0), 7, 8)
	assertNear(t, "unknown x", lx, 7)
	assertNear(t, "unknown y", ly, 8)
}

func TestWorldToLocalZeroScale(t *testing.T) {
	cx := NewContext()
	e := addTo(cx, RootEntity, nil)
	cx.style.Transform.Insert(e, Transform{})
	runLayout(cx, 100, 100)
	lx, ly := cx.WorldToLocal(e, 50, 50)
	if math.IsNaN(lx) || math.IsNaN(ly) || math.IsInf(lx, 0) || math.IsInf(ly, 0) {
		t.Errorf("WorldToLocal = (%v, %v), want finite", lx, ly)
	}
}
