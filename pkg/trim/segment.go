// Package trim implements the piecewise-planar border used to cut a
// lassoed region out of a mesh. A Border is built once per lasso
// gesture from camera-unprojected rays; its Segments answer membership
// and intersection predicates during the cut pass and accumulate the
// polylines of new boundary vertices created along each segment.
package trim

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hsab/dilay/pkg/geom"
)

// Segment is one planar piece of the border: a cutting plane bounded on
// zero, one, or two sides by edge rays lying in the plane. The present
// edges span a convex wedge; a point on the plane belongs to the
// segment only when it falls inside that wedge. An absent edge leaves
// the segment unbounded on that side.
//
// A Segment also records polylines: ordered runs of mesh vertex indices
// created on it during cutting. Vertices append to the polyline opened
// by the most recent AddPolyline call.
type Segment struct {
	plane     geom.Plane
	edge1     *geom.Ray // nil when the segment is open on the incoming side
	edge2     *geom.Ray // nil when the segment is open on the outgoing side
	polylines [][]int
}

// newSegment builds an interior chain segment between two bounding
// rays. The plane passes through e1's origin with normal
// cross(e2.direction, e1.direction).
func newSegment(e1, e2 geom.Ray) Segment {
	plane := geom.NewPlane(e1.Origin(), e2.Direction().Cross(e1.Direction()))
	return Segment{plane: plane, edge1: &e1, edge2: &e2}
}

// newSegmentStart builds the first chain segment: unbounded on the
// incoming side, bounded by e2 toward the next segment.
func newSegmentStart(plane geom.Plane, e2 geom.Ray) Segment {
	return Segment{plane: plane, edge2: &e2}
}

// newSegmentEnd builds the last chain segment: bounded by e1 toward the
// previous segment, unbounded on the outgoing side.
func newSegmentEnd(e1 geom.Ray, plane geom.Plane) Segment {
	return Segment{plane: plane, edge1: &e1}
}

// newSegmentPlane builds an unbounded full-plane segment, the single
// segment of a two-point lasso.
func newSegmentPlane(plane geom.Plane) Segment {
	return Segment{plane: plane}
}

// Plane returns the segment's cutting plane.
func (s *Segment) Plane() geom.Plane { return s.plane }

// Edge1 returns the bounding ray toward the previous chain link, if
// present.
func (s *Segment) Edge1() (geom.Ray, bool) {
	if s.edge1 == nil {
		return geom.Ray{}, false
	}
	return *s.edge1, true
}

// Edge2 returns the bounding ray toward the next chain link, if
// present.
func (s *Segment) Edge2() (geom.Ray, bool) {
	if s.edge2 == nil {
		return geom.Ray{}, false
	}
	return *s.edge2, true
}

// Edge returns the ray this segment shares with the next chain link.
// Calling it on a segment without an outgoing edge is a programming
// error.
func (s *Segment) Edge() geom.Ray {
	if s.edge2 == nil {
		panic("trim: segment has no outgoing edge")
	}
	return *s.edge2
}

// isValidProjection reports whether p falls inside the wedge spanned by
// the present edges. Each present edge contributes one half-plane test;
// absent edges pass unconditionally. The point is assumed to lie near
// the plane; membership in the plane itself is not checked here.
func (s *Segment) isValidProjection(p v3.Vec) bool {
	n := s.plane.Normal()
	if s.edge1 != nil {
		if n.Dot(p.Sub(s.edge1.Origin()).Cross(s.edge1.Direction())) <= 0 {
			return false
		}
	}
	if s.edge2 != nil {
		if n.Dot(s.edge2.Direction().Cross(p.Sub(s.edge2.Origin()))) <= 0 {
			return false
		}
	}
	return true
}

// OnBorder reports whether p lies on this segment's border, either on a
// bounding edge (onEdge true) or on the plane inside the wedge (onEdge
// false). A point on the plane but outside the wedge is not on the
// border.
func (s *Segment) OnBorder(p v3.Vec) (onBorder, onEdge bool) {
	if s.edge1 != nil && s.edge1.OnRay(p) {
		return true, true
	}
	if s.edge2 != nil && s.edge2.OnRay(p) {
		return true, true
	}
	if s.plane.OnPlane(p) {
		return s.isValidProjection(p), false
	}
	return false, false
}

// Intersects intersects ray with the segment: the ray must hit the
// plane and the hit point must fall inside the wedge. A miss, for a
// parallel ray or an out-of-wedge hit, is a normal result.
func (s *Segment) Intersects(ray geom.Ray) (t float64, ok bool) {
	t, ok = s.plane.Intersect(ray)
	if !ok {
		return 0, false
	}
	if !s.isValidProjection(ray.PointAt(t)) {
		return 0, false
	}
	return t, true
}

// AddPolyline opens a new empty polyline.
func (s *Segment) AddPolyline() {
	s.polylines = append(s.polylines, nil)
}

// AddVertex appends a mesh vertex index to the current polyline. The
// point must satisfy OnBorder and a polyline must be open; violating
// either is a programming error.
func (s *Segment) AddVertex(index int, p v3.Vec) {
	if on, _ := s.OnBorder(p); !on {
		panic(fmt.Sprintf("trim: vertex %d at %v is not on the segment border", index, p))
	}
	if len(s.polylines) == 0 {
		panic("trim: AddVertex without an open polyline")
	}
	last := len(s.polylines) - 1
	s.polylines[last] = append(s.polylines[last], index)
}

// SetNewIndices remaps every stored vertex index through newIndices,
// the old-to-new table produced by mesh compaction. A stored index
// mapping to a negative entry refers to a deleted vertex, which is a
// programming error.
func (s *Segment) SetNewIndices(newIndices []int) {
	for _, poly := range s.polylines {
		for j, idx := range poly {
			ni := newIndices[idx]
			if ni < 0 {
				panic(fmt.Sprintf("trim: vertex %d remapped to a deleted index", idx))
			}
			poly[j] = ni
		}
	}
}

// DeleteEmptyPolylines drops polylines without vertices, preserving the
// order of the rest.
func (s *Segment) DeleteEmptyPolylines() {
	kept := s.polylines[:0]
	for _, p := range s.polylines {
		if len(p) > 0 {
			kept = append(kept, p)
		}
	}
	s.polylines = kept
}

// HasVertices reports whether any polyline holds at least one vertex.
func (s *Segment) HasVertices() bool {
	for _, p := range s.polylines {
		if len(p) > 0 {
			return true
		}
	}
	return false
}

// Polylines returns the accumulated polylines. The returned slices are
// the segment's own storage; callers must not mutate them.
func (s *Segment) Polylines() [][]int {
	return s.polylines
}
