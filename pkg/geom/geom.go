// Package geom provides the geometric primitives the trim core is built
// on: rays, planes, and the scalar/vector helpers shared by the camera
// and border code.
//
// All membership tests (on-plane, on-ray) accept a tolerance band of
// Epsilon. Points handed to the trim predicates often carry floating
// point error from upstream mesh operations, so exact comparisons are
// never used.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Epsilon is the tolerance used by all membership and equality tests.
const Epsilon = 1e-5

// AlmostEqual reports whether a and b differ by at most Epsilon.
func AlmostEqual(a, b float64) bool {
	return math.Abs(a-b) <= Epsilon
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b v3.Vec) v3.Vec {
	return a.Add(b).MulScalar(0.5)
}

// Orthogonal returns a vector orthogonal to v. The result is not
// normalized.
func Orthogonal(v v3.Vec) v3.Vec {
	if math.Abs(v.X) > math.Abs(v.Z) {
		return v3.Vec{X: -v.Y, Y: v.X, Z: 0}
	}
	return v3.Vec{X: 0, Y: -v.Z, Z: v.Y}
}

// Colinear reports whether v1 and v2 are parallel or anti-parallel.
func Colinear(v1, v2 v3.Vec) bool {
	return ColinearUnit(v1.Normalize(), v2.Normalize())
}

// ColinearUnit is Colinear for vectors already known to be unit length.
func ColinearUnit(v1, v2 v3.Vec) bool {
	return AlmostEqual(math.Abs(v1.Dot(v2)), 1)
}

// IsNaN reports whether any component of v is NaN.
func IsNaN(v v3.Vec) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}

// SmoothStep evaluates a quintic falloff around center: 1 inside
// innerRadius, 0 outside radius, smoothly interpolated between.
// innerRadius must not exceed radius.
func SmoothStep(v, center v3.Vec, innerRadius, radius float64) float64 {
	if innerRadius > radius {
		panic("geom: SmoothStep: innerRadius exceeds radius")
	}
	d := v.Sub(center).Length()
	if radius-innerRadius < Epsilon {
		if d > radius {
			return 0
		}
		return 1
	}
	x := clamp01((radius - d) / (radius - innerRadius))
	return x * x * x * (x*(x*6-15) + 10)
}

// LinearStep is SmoothStep with linear interpolation between the radii.
func LinearStep(v, center v3.Vec, innerRadius, radius float64) float64 {
	if innerRadius > radius {
		panic("geom: LinearStep: innerRadius exceeds radius")
	}
	d := v.Sub(center).Length()
	if radius-innerRadius < Epsilon {
		if d > radius {
			return 0
		}
		return 1
	}
	return clamp01((radius - d) / (radius - innerRadius))
}

// SolveQuadratic finds real roots of ax² + bx + c = 0. It returns up to
// two roots and the number found. A discriminant below Epsilon counts
// as no intersection, so tangent cases report zero roots. The branches
// on the sign of b pick the numerically stable root pair.
func SolveQuadratic(a, b, c float64) (s1, s2 float64, n int) {
	radicand := b*b - 4*a*c
	if radicand < Epsilon {
		return 0, 0, 0
	}
	root := math.Sqrt(radicand)
	switch {
	case b < -Epsilon:
		return (-b + root) / (2 * a), (2 * c) / (-b + root), 2
	case b > Epsilon:
		return (-b - root) / (2 * a), (2 * c) / (-b - root), 2
	default:
		return root / (2 * a), 0, 1
	}
}

// SolveCubic finds real roots of ax³ + bx² + cx + d = 0 with a != 0.
// It returns up to three roots (unordered) and the number found.
func SolveCubic(a, b, c, d float64) (s1, s2, s3 float64, n int) {
	return solveNormalizedCubic(b/a, c/a, d/a)
}

// solveNormalizedCubic solves x³ + ax² + bx + c = 0 by the
// trigonometric method for the three-root case and Cardano's formula
// otherwise.
func solveNormalizedCubic(a, b, c float64) (s1, s2, s3 float64, n int) {
	q := (a*a - 3*b) / 9
	r := (2*a*a*a - 9*a*b + 27*c) / 54
	w := r*r - q*q*q
	s := a / 3

	if w < 0 {
		theta := math.Acos(r / math.Sqrt(q*q*q))
		f := -2 * math.Sqrt(q)

		s1 = f*math.Cos(theta/3) - s
		s2 = f*math.Cos((theta+2*math.Pi)/3) - s
		s3 = f*math.Cos((theta-2*math.Pi)/3) - s
		return s1, s2, s3, 3
	}
	x := -sign(r) * math.Cbrt(math.Abs(r)+math.Sqrt(w))
	y := 0.0
	if !AlmostEqual(x, 0) {
		y = q / x
	}
	return x + y - s, 0, 0, 1
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
