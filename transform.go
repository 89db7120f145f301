package canopy

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// Matrix returns the affine matrix [a, b, c, d, tx, ty] of tr applied around
// the pivot (px, py). Layout bounds are already in window coordinates, so the
// pivot is both removed and added back.
//
// Composition order:
//
//	Translate(-px, -py) -> Scale -> Skew -> Rotate -> Translate(px+TranslateX, py+TranslateY)
func (tr Transform) Matrix(px, py float64) [6]float64 {
	sx := tr.ScaleX
	sy := tr.ScaleY

	sin, cos := math.Sincos(tr.Rotate)

	var tanSkewX, tanSkewY float64
	if tr.SkewX != 0 {
		tanSkewX = math.Tan(tr.SkewX)
	}
	if tr.SkewY != 0 {
		tanSkewY = math.Tan(tr.SkewY)
	}

	// Scale and skew.
	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	// Rotate.
	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	return [6]float64{ra, rb, rc, rd, rtx + px + tr.TranslateX, rty + py + tr.TranslateY}
}

// IsIdentity reports whether tr leaves geometry unchanged.
func (tr Transform) IsIdentity() bool {
	return tr == IdentityTransform
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// updateWorldTransforms recomputes the world matrix and effective opacity of
// e and its subtree. A transform applies to the entity's own box and to
// everything drawn inside it.
func (cx *Context) updateWorldTransforms(e Entity, parent [6]float64, parentAlpha float64) {
	b := cx.cache.bounds(e)
	world := parent
	if tr := cx.style.Transform.Value(e); !tr.IsIdentity() {
		c := b.Center()
		world = multiplyAffine(parent, tr.Matrix(c.X, c.Y))
	}
	alpha := parentAlpha * float64(cx.style.Opacity.Value(e))

	en := cx.cache.entry(e)
	if en != nil {
		en.world = world
		en.inverse = invertAffine(world)
		en.alpha = alpha
	}
	for child := range cx.tree.Children(e) {
		cx.updateWorldTransforms(child, world, alpha)
	}
}

// WorldToLocal converts a window point into e's untransformed layout space,
// relative to the top-left of its bounds.
func (cx *Context) WorldToLocal(e Entity, wx, wy float64) (lx, ly float64) {
	en := cx.cache.entry(e)
	if en == nil {
		return wx, wy
	}
	x, y := transformPoint(en.inverse, wx, wy)
	return x - en.bounds.X, y - en.bounds.Y
}

// LocalToWorld converts a point relative to e's bounds into window space.
func (cx *Context) LocalToWorld(e Entity, lx, ly float64) (wx, wy float64) {
	en := cx.cache.entry(e)
	if en == nil {
		return lx, ly
	}
	return transformPoint(en.world, lx+en.bounds.X, ly+en.bounds.Y)
}
