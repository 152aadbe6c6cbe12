package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is an infinite plane given by a point on it and a unit normal.
// The normal is normalized on construction and immutable afterwards.
type Plane struct {
	point  v3.Vec
	normal v3.Vec
}

// NewPlane returns the plane through point with the given normal.
func NewPlane(point, normal v3.Vec) Plane {
	return Plane{point: point, normal: normal.Normalize()}
}

// Point returns the plane's reference point.
func (p Plane) Point() v3.Vec { return p.point }

// Normal returns the plane's unit normal.
func (p Plane) Normal() v3.Vec { return p.normal }

// Distance returns the signed distance from v to the plane, positive on
// the side the normal points into.
func (p Plane) Distance(v v3.Vec) float64 {
	return p.normal.Dot(v.Sub(p.point))
}

// OnPlane reports whether v lies on the plane within Epsilon.
func (p Plane) OnPlane(v v3.Vec) bool {
	return math.Abs(p.Distance(v)) <= Epsilon
}

// Intersect intersects r with the plane. It returns the ray parameter
// of the hit and true, or false when the ray is parallel to the plane
// or the hit lies behind the ray's origin.
func (p Plane) Intersect(r Ray) (float64, bool) {
	denom := r.Direction().Dot(p.normal)
	if AlmostEqual(denom, 0) {
		return 0, false
	}
	t := p.point.Sub(r.Origin()).Dot(p.normal) / denom
	if t < 0 {
		return 0, false
	}
	return t, true
}
