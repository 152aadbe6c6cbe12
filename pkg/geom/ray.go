package geom

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Ray is a half-line: its origin plus all non-negative multiples of its
// direction. The direction is stored as given; camera rays arrive
// normalized, but nothing here requires unit length.
type Ray struct {
	origin    v3.Vec
	direction v3.Vec
}

// NewRay returns the ray starting at origin pointing along direction.
func NewRay(origin, direction v3.Vec) Ray {
	return Ray{origin: origin, direction: direction}
}

// Origin returns the ray's start point.
func (r Ray) Origin() v3.Vec { return r.origin }

// Direction returns the ray's direction vector.
func (r Ray) Direction() v3.Vec { return r.direction }

// PointAt returns origin + t*direction.
func (r Ray) PointAt(t float64) v3.Vec {
	return r.origin.Add(r.direction.MulScalar(t))
}

// OnRay reports whether p lies on the ray within Epsilon: close to the
// carrying line, at a parameter that is not significantly negative.
func (r Ray) OnRay(p v3.Vec) bool {
	t := p.Sub(r.origin).Dot(r.direction) / r.direction.Length2()
	if t < -Epsilon {
		return false
	}
	if t < 0 {
		t = 0
	}
	return r.PointAt(t).Sub(p).Length() <= Epsilon
}
