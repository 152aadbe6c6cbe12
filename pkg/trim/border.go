package trim

import (
	"fmt"
	"image"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hsab/dilay/pkg/geom"
)

// Camera is the viewport collaborator a Border is built against: it
// unprojects screen points into world rays. *camera.Camera implements
// it.
type Camera interface {
	// Position returns the eye point in world space.
	Position() v3.Vec
	// Ray returns the world ray through the given screen point.
	Ray(p image.Point) geom.Ray
}

// Border is the cutting boundary built from one lasso gesture: an
// ordered chain of Segments, one per span of the lasso path, where
// consecutive segments share a bounding ray by construction. The chain
// topology is fixed at construction; only the per-segment polylines
// mutate afterwards, and only from the single cut pass that owns the
// Border.
type Border struct {
	segments []Segment
}

// NewBorder builds the border for a lasso of at least two screen
// points, unprojected through cam. offset shifts every plane point and
// edge origin along the aggregate lasso normal, nudging the border off
// the eye point. reverse walks the points backwards, flipping the
// winding and with it which half-space counts as enclosed. Fewer than
// two points is a programming error.
func NewBorder(cam Camera, points []image.Point, offset float64, reverse bool) *Border {
	n := len(points)
	if n < 2 {
		panic(fmt.Sprintf("trim: lasso needs at least 2 points, got %d", n))
	}

	first, last := 0, n-1
	if reverse {
		first, last = last, first
	}
	rFirst := cam.Ray(points[first])
	rLast := cam.Ray(points[last])
	baseNormal := rLast.Direction().Cross(rFirst.Direction()).Normalize()

	makePlane := func(i1, i2 int) geom.Plane {
		r1 := cam.Ray(points[i1])
		r2 := cam.Ray(points[i2])
		normal := r2.Direction().Cross(r1.Direction())
		point := cam.Position().Add(baseNormal.MulScalar(offset))
		return geom.NewPlane(point, normal)
	}
	makeRay := func(i int) geom.Ray {
		r := cam.Ray(points[i])
		return geom.NewRay(r.Origin().Add(baseNormal.MulScalar(offset)), r.Direction())
	}

	b := &Border{}
	switch {
	case n == 2 && !reverse:
		b.segments = append(b.segments, newSegmentPlane(makePlane(0, 1)))

	case n == 2:
		b.segments = append(b.segments, newSegmentPlane(makePlane(1, 0)))

	case !reverse:
		b.segments = append(b.segments, newSegmentStart(makePlane(0, 1), makeRay(1)))
		for i := 1; i < n-2; i++ {
			b.segments = append(b.segments, newSegment(makeRay(i), makeRay(i+1)))
		}
		b.segments = append(b.segments, newSegmentEnd(makeRay(n-2), makePlane(n-2, n-1)))

	default:
		b.segments = append(b.segments, newSegmentStart(makePlane(n-1, n-2), makeRay(n-2)))
		for i := n - 2; i > 1; i-- {
			b.segments = append(b.segments, newSegment(makeRay(i), makeRay(i-1)))
		}
		b.segments = append(b.segments, newSegmentEnd(makeRay(1), makePlane(1, 0)))
	}
	return b
}

// NumSegments returns the number of chain segments.
func (b *Border) NumSegments() int {
	return len(b.segments)
}

// Segment returns the i-th chain segment. Out-of-range indices are a
// programming error.
func (b *Border) Segment(i int) *Segment {
	return &b.segments[i]
}

// GetSegment returns the segment whose border contains both v1 and v2
// with at least one of the two off the bounding edges: the segment that
// owns the mesh edge between them. Callers only ask for edges already
// known to lie on the border, so finding no owner is a programming
// error.
func (b *Border) GetSegment(v1, v2 v3.Vec) *Segment {
	for i := range b.segments {
		s := &b.segments[i]
		on1, onEdge1 := s.OnBorder(v1)
		on2, onEdge2 := s.OnBorder(v2)
		if on1 && on2 && (!onEdge1 || !onEdge2) {
			return s
		}
	}
	panic("trim: no segment owns the given edge")
}

// OnBorder reports whether p lies on the border of any segment.
func (b *Border) OnBorder(p v3.Vec) bool {
	for i := range b.segments {
		if on, _ := b.segments[i].OnBorder(p); on {
			return true
		}
	}
	return false
}

// TrimVertex reports whether p falls in the enclosed half of space and
// must be cut away. Points on the border itself are never trimmed.
// Enclosure is decided by the even-odd rule: a ray cast from p against
// the lasso winding, along the negated sum of the segment plane
// normals, crosses the border an odd number of times exactly when p is
// enclosed.
func (b *Border) TrimVertex(p v3.Vec) bool {
	if b.OnBorder(p) {
		return false
	}
	direction := v3.Vec{}
	for i := range b.segments {
		direction = direction.Sub(b.segments[i].plane.Normal())
	}
	ray := geom.NewRay(p, direction)

	hits := 0
	for i := range b.segments {
		if _, ok := b.segments[i].Intersects(ray); ok {
			hits++
		}
	}
	return hits%2 == 1
}

// TrimFace reports whether the triangle (p1, p2, p3) must be cut away:
// any enclosed corner trims it. A triangle whose three corners all lie
// exactly on the border is decided by its edge midpoints instead, so
// that faces spanning the enclosed side of the border do not survive on
// a technicality.
func (b *Border) TrimFace(p1, p2, p3 v3.Vec) bool {
	if b.TrimVertex(p1) || b.TrimVertex(p2) || b.TrimVertex(p3) {
		return true
	}
	if b.OnBorder(p1) && b.OnBorder(p2) && b.OnBorder(p3) {
		return b.TrimVertex(geom.Midpoint(p1, p2)) ||
			b.TrimVertex(geom.Midpoint(p1, p3)) ||
			b.TrimVertex(geom.Midpoint(p2, p3))
	}
	return false
}

// AddVertex records a new boundary vertex: every segment whose border
// contains p receives the index. A vertex on no segment at all is a
// programming error.
func (b *Border) AddVertex(index int, p v3.Vec) {
	added := false
	for i := range b.segments {
		s := &b.segments[i]
		if on, _ := s.OnBorder(p); on {
			s.AddVertex(index, p)
			added = true
		}
	}
	if !added {
		panic(fmt.Sprintf("trim: vertex %d at %v is not on the border", index, p))
	}
}

// AddPolyline opens a new polyline on every segment.
func (b *Border) AddPolyline() {
	for i := range b.segments {
		b.segments[i].AddPolyline()
	}
}

// SetNewIndices remaps the stored vertex indices of every segment
// through newIndices.
func (b *Border) SetNewIndices(newIndices []int) {
	for i := range b.segments {
		b.segments[i].SetNewIndices(newIndices)
	}
}

// DeleteEmptyPolylines drops vertex-less polylines on every segment.
func (b *Border) DeleteEmptyPolylines() {
	for i := range b.segments {
		b.segments[i].DeleteEmptyPolylines()
	}
}

// HasVertices reports whether any segment accumulated at least one
// vertex.
func (b *Border) HasVertices() bool {
	for i := range b.segments {
		if b.segments[i].HasVertices() {
			return true
		}
	}
	return false
}

// OnlyObtuseAngles reports whether the border bends gently everywhere:
// no adjacent pair of segment planes meets at a strictly negative
// normal dot product. Borders of at most two segments trivially pass.
func (b *Border) OnlyObtuseAngles() bool {
	if len(b.segments) > 2 {
		for i := 0; i+1 < len(b.segments); i++ {
			n1 := b.segments[i].plane.Normal()
			n2 := b.segments[i+1].plane.Normal()
			if n1.Dot(n2) < 0 {
				return false
			}
		}
	}
	return true
}
