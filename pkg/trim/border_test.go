package trim

import (
	"image"
	"math"
	"reflect"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hsab/dilay/pkg/camera"
	"github.com/hsab/dilay/pkg/geom"
)

// fanCamera maps the screen point (x, y) to the ray from (0, 0, 10)
// through the world point (x, y, 0), which keeps test geometry literal:
// a lasso point is also the world position it pins at z = 0.
type fanCamera struct{}

var _ Camera = fanCamera{}
var _ Camera = (*camera.Camera)(nil)

func (fanCamera) Position() v3.Vec { return v3.Vec{Z: 10} }

func (fanCamera) Ray(p image.Point) geom.Ray {
	eye := v3.Vec{Z: 10}
	target := v3.Vec{X: float64(p.X), Y: float64(p.Y)}
	return geom.NewRay(eye, target.Sub(eye).Normalize())
}

// tentPoints traces right to left over the top, so the winding encloses
// the open region below the path.
func tentPoints() []image.Point {
	return []image.Point{image.Pt(4, 0), image.Pt(0, 4), image.Pt(-4, 1)}
}

// alongRays returns eye + ta*dir(a) + tb*dir(b), a point in the span of
// the two unprojected lasso rays.
func alongRays(cam Camera, a, b image.Point, ta, tb float64) v3.Vec {
	ra, rb := cam.Ray(a), cam.Ray(b)
	return ra.Origin().
		Add(ra.Direction().MulScalar(ta)).
		Add(rb.Direction().MulScalar(tb))
}

func TestNewBorderShapes(t *testing.T) {
	cam := fanCamera{}

	tests := []struct {
		name     string
		points   []image.Point
		segments int
	}{
		{"two points", []image.Point{image.Pt(0, 0), image.Pt(4, 0)}, 1},
		{"three points", tentPoints(), 2},
		{"four points", []image.Point{image.Pt(5, 0), image.Pt(2, 4), image.Pt(-2, 4), image.Pt(-5, 0)}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBorder(cam, tt.points, 0, false)
			if got := b.NumSegments(); got != tt.segments {
				t.Fatalf("NumSegments = %d, want %d", got, tt.segments)
			}
			for i := 0; i < b.NumSegments(); i++ {
				_, e1 := b.Segment(i).Edge1()
				_, e2 := b.Segment(i).Edge2()
				if wantE1 := i > 0; e1 != wantE1 {
					t.Errorf("segment %d: Edge1 present = %v, want %v", i, e1, wantE1)
				}
				if wantE2 := i < b.NumSegments()-1; e2 != wantE2 {
					t.Errorf("segment %d: Edge2 present = %v, want %v", i, e2, wantE2)
				}
			}
		})
	}
}

func TestNewBorderTooFewPointsPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a single lasso point")
		}
	}()
	NewBorder(fanCamera{}, []image.Point{image.Pt(1, 2)}, 0, false)
}

func TestNewBorderSharedEdge(t *testing.T) {
	cam := fanCamera{}
	b := NewBorder(cam, tentPoints(), 0, false)

	out := b.Segment(0).Edge()
	in, ok := b.Segment(1).Edge1()
	if !ok {
		t.Fatal("second segment lost its incoming edge")
	}
	if !out.Origin().Equals(in.Origin(), 1e-12) || !out.Direction().Equals(in.Direction(), 1e-12) {
		t.Errorf("shared edge differs: %v/%v vs %v/%v",
			out.Origin(), out.Direction(), in.Origin(), in.Direction())
	}
	want := cam.Ray(image.Pt(0, 4))
	if !out.Direction().Equals(want.Direction(), 1e-12) {
		t.Errorf("shared edge direction = %v, want the middle lasso ray %v",
			out.Direction(), want.Direction())
	}
}

func TestBorderOnBorder(t *testing.T) {
	cam := fanCamera{}
	b := NewBorder(cam, tentPoints(), 0, false)

	// On the shared middle ray at z = 0.
	pb := v3.Vec{Y: 4}
	for i := 0; i < 2; i++ {
		onBorder, onEdge := b.Segment(i).OnBorder(pb)
		if !onBorder || !onEdge {
			t.Errorf("segment %d: OnBorder(shared ray point) = %v, %v, want true, true",
				i, onBorder, onEdge)
		}
	}

	// Interior of the first segment's wedge.
	q := alongRays(cam, image.Pt(4, 0), image.Pt(0, 4), 3, 3)
	if onBorder, onEdge := b.Segment(0).OnBorder(q); !onBorder || onEdge {
		t.Errorf("segment 0: OnBorder(wedge interior) = %v, %v, want true, false", onBorder, onEdge)
	}
	if onBorder, _ := b.Segment(1).OnBorder(q); onBorder {
		t.Error("segment 1 claims a point on segment 0 only")
	}

	if !b.OnBorder(pb) || !b.OnBorder(q) {
		t.Error("border misses its own points")
	}
	if b.OnBorder(v3.Vec{Y: 8}) {
		t.Error("point off every plane reported on border")
	}
}

func TestTrimVertex(t *testing.T) {
	cam := fanCamera{}
	fwd := NewBorder(cam, tentPoints(), 0, false)
	rev := NewBorder(cam, tentPoints(), 0, true)

	tests := []struct {
		name    string
		p       v3.Vec
		want    bool
		wantRev bool
	}{
		{"under the path", v3.Vec{X: 0.5, Y: 1.5}, true, false},
		{"under the path, closer", v3.Vec{X: 0.5, Y: 1.5, Z: 3}, true, false},
		{"under the path, left", v3.Vec{X: -1, Y: 2}, true, false},
		{"under the path, right", v3.Vec{X: 2, Y: 1}, true, false},
		{"far below the open side", v3.Vec{Y: -5}, true, false},
		{"beyond the right end", v3.Vec{X: 8, Y: -2}, false, true},
		{"beyond the left end", v3.Vec{X: -8}, false, true},
		{"above the path", v3.Vec{Y: 8}, false, true},
		{"above right", v3.Vec{X: 5, Y: 5}, false, true},
		{"above left", v3.Vec{X: -5, Y: 4}, false, true},
		{"behind the camera", v3.Vec{X: 0.3, Y: 0.8, Z: 13}, false, true},
		{"behind the camera, centered", v3.Vec{Y: 1, Z: 15}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fwd.TrimVertex(tt.p); got != tt.want {
				t.Errorf("TrimVertex(%v) = %v, want %v", tt.p, got, tt.want)
			}
			if got := rev.TrimVertex(tt.p); got != tt.wantRev {
				t.Errorf("reversed TrimVertex(%v) = %v, want %v", tt.p, got, tt.wantRev)
			}
		})
	}
}

func TestTrimVertexNeverTrimsBorderPoints(t *testing.T) {
	cam := fanCamera{}
	b := NewBorder(cam, tentPoints(), 0, false)

	points := []v3.Vec{
		{Y: 4}, // shared edge ray at z = 0
		alongRays(cam, image.Pt(4, 0), image.Pt(0, 4), 3, 3),
		alongRays(cam, image.Pt(-4, 1), image.Pt(0, 4), 2, 5),
	}
	for _, p := range points {
		if !b.OnBorder(p) {
			t.Fatalf("test point %v should be on the border", p)
		}
		if b.TrimVertex(p) {
			t.Errorf("TrimVertex(%v) = true for a border point", p)
		}
	}
}

func TestReverseMatchesReversedPoints(t *testing.T) {
	cam := fanCamera{}
	pts := tentPoints()
	flipped := []image.Point{pts[2], pts[1], pts[0]}

	rev := NewBorder(cam, pts, 0, true)
	fwd := NewBorder(cam, flipped, 0, false)

	if rev.NumSegments() != fwd.NumSegments() {
		t.Fatalf("segment counts differ: %d vs %d", rev.NumSegments(), fwd.NumSegments())
	}
	for i := 0; i < rev.NumSegments(); i++ {
		a, b := rev.Segment(i), fwd.Segment(i)
		if !a.Plane().Normal().Equals(b.Plane().Normal(), 1e-12) {
			t.Errorf("segment %d: normals differ: %v vs %v",
				i, a.Plane().Normal(), b.Plane().Normal())
		}
		if !a.Plane().Point().Equals(b.Plane().Point(), 1e-12) {
			t.Errorf("segment %d: plane points differ", i)
		}
		ae, aok := a.Edge2()
		be, bok := b.Edge2()
		if aok != bok {
			t.Fatalf("segment %d: outgoing edge presence differs", i)
		}
		if aok && !ae.Direction().Equals(be.Direction(), 1e-12) {
			t.Errorf("segment %d: outgoing edges differ", i)
		}
	}
}

func TestBorderOffset(t *testing.T) {
	cam := fanCamera{}
	pts := tentPoints()
	const offset = 0.7

	rFirst := cam.Ray(pts[0])
	rLast := cam.Ray(pts[2])
	baseNormal := rLast.Direction().Cross(rFirst.Direction()).Normalize()
	shift := baseNormal.MulScalar(offset)

	b := NewBorder(cam, pts, offset, false)

	wantPoint := cam.Position().Add(shift)
	if got := b.Segment(0).Plane().Point(); !got.Equals(wantPoint, 1e-12) {
		t.Errorf("plane point = %v, want %v", got, wantPoint)
	}
	if got := b.Segment(0).Edge().Origin(); !got.Equals(wantPoint, 1e-12) {
		t.Errorf("edge origin = %v, want %v", got, wantPoint)
	}
	if d := b.Segment(0).Plane().Distance(cam.Position()); math.Abs(d) < 0.5 {
		t.Errorf("eye sits %v from the shifted plane, want it pushed well off", d)
	}

	// The border is rigidly translated: membership moves with it.
	pb := v3.Vec{Y: 4}
	if b.OnBorder(pb) {
		t.Error("unshifted border point still reported on the shifted border")
	}
	if !b.OnBorder(pb.Add(shift)) {
		t.Error("shifted border point not found on the shifted border")
	}
}

func TestTwoPointBorder(t *testing.T) {
	cam := fanCamera{}
	pts := []image.Point{image.Pt(0, 0), image.Pt(4, 0)}
	b := NewBorder(cam, pts, 0, false)

	s := b.Segment(0)
	if _, ok := s.Edge1(); ok {
		t.Error("two-point border should have no incoming edge")
	}
	if _, ok := s.Edge2(); ok {
		t.Error("two-point border should have no outgoing edge")
	}
	if !s.Plane().Normal().Equals(v3.Vec{Y: 1}, 1e-12) {
		t.Fatalf("plane normal = %v, want +Y", s.Plane().Normal())
	}

	// Without edges the whole plane is border, arbitrarily far out.
	far := v3.Vec{X: 100, Z: -50}
	if !b.OnBorder(far) {
		t.Error("far on-plane point should be on the border")
	}
	if b.TrimVertex(far) {
		t.Error("border point must not be trimmed")
	}

	tests := []struct {
		name    string
		p       v3.Vec
		want    bool
		wantRev bool
	}{
		{"above the plane", v3.Vec{X: 1, Y: 5, Z: -3}, true, false},
		{"below the plane", v3.Vec{X: 1, Y: -5, Z: -3}, false, true},
		{"far below", v3.Vec{Y: -80}, false, true},
	}
	rev := NewBorder(cam, pts, 0, true)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.TrimVertex(tt.p); got != tt.want {
				t.Errorf("TrimVertex(%v) = %v, want %v", tt.p, got, tt.want)
			}
			if got := rev.TrimVertex(tt.p); got != tt.wantRev {
				t.Errorf("reversed TrimVertex(%v) = %v, want %v", tt.p, got, tt.wantRev)
			}
		})
	}
}

func TestFourPointBorder(t *testing.T) {
	cam := fanCamera{}
	pts := []image.Point{image.Pt(5, 0), image.Pt(2, 4), image.Pt(-2, 4), image.Pt(-5, 0)}
	b := NewBorder(cam, pts, 0, false)

	if b.NumSegments() != 3 {
		t.Fatalf("NumSegments = %d, want 3", b.NumSegments())
	}
	mid := b.Segment(1)
	if _, ok := mid.Edge1(); !ok {
		t.Fatal("middle segment lost its incoming edge")
	}
	if _, ok := mid.Edge2(); !ok {
		t.Fatal("middle segment lost its outgoing edge")
	}

	inWedge := alongRays(cam, pts[1], pts[2], 2, 2)
	if onBorder, onEdge := mid.OnBorder(inWedge); !onBorder || onEdge {
		t.Errorf("OnBorder(wedge interior) = %v, %v, want true, false", onBorder, onEdge)
	}

	// On the middle plane but outside the wedge, behind the incoming
	// edge: on no segment at all.
	outside := alongRays(cam, pts[1], pts[2], 4, -0.5)
	if !mid.Plane().OnPlane(outside) {
		t.Fatal("test point should lie on the middle plane")
	}
	if onBorder, _ := mid.OnBorder(outside); onBorder {
		t.Error("out-of-wedge point reported on the middle segment")
	}
	if b.OnBorder(outside) {
		t.Error("out-of-wedge point reported on the border")
	}

	if !b.TrimVertex(v3.Vec{Y: 1}) {
		t.Error("point under the path should be trimmed")
	}
	if b.TrimVertex(v3.Vec{Y: 8}) {
		t.Error("point above the path should not be trimmed")
	}
	if b.TrimVertex(v3.Vec{X: 7, Y: -1}) {
		t.Error("point beyond the right end should not be trimmed")
	}
}

func TestOnlyObtuseAngles(t *testing.T) {
	cam := fanCamera{}

	tests := []struct {
		name   string
		points []image.Point
		want   bool
	}{
		{
			name:   "gentle arc",
			points: []image.Point{image.Pt(5, 0), image.Pt(2, 4), image.Pt(-2, 4), image.Pt(-5, 0)},
			want:   true,
		},
		{
			name:   "zigzag",
			points: []image.Point{image.Pt(5, 0), image.Pt(0, 1), image.Pt(5, 2), image.Pt(0, 3)},
			want:   false,
		},
		{
			name: "sharp turn but only two segments",
			// The same kind of hairpin, below the chain-length cutoff.
			points: []image.Point{image.Pt(5, 0), image.Pt(0, 1), image.Pt(5, 2)},
			want:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBorder(cam, tt.points, 0, false)
			if got := b.OnlyObtuseAngles(); got != tt.want {
				t.Errorf("OnlyObtuseAngles = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetSegment(t *testing.T) {
	cam := fanCamera{}
	b := NewBorder(cam, tentPoints(), 0, false)

	pb := v3.Vec{Y: 4} // shared edge, onEdge on both segments
	q1 := alongRays(cam, image.Pt(4, 0), image.Pt(0, 4), 3, 3)
	q2 := alongRays(cam, image.Pt(4, 0), image.Pt(0, 4), 5, 2)

	if got := b.GetSegment(q1, pb); got != b.Segment(0) {
		t.Error("edge from wedge interior to shared ray should belong to segment 0")
	}
	if got := b.GetSegment(q1, q2); got != b.Segment(0) {
		t.Error("edge between two interior points should belong to segment 0")
	}
	if got := b.GetSegment(pb, alongRays(cam, image.Pt(-4, 1), image.Pt(0, 4), 2, 5)); got != b.Segment(1) {
		t.Error("edge into the second wedge should belong to segment 1")
	}
}

func TestGetSegmentNoOwnerPanics(t *testing.T) {
	b := NewBorder(fanCamera{}, tentPoints(), 0, false)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for an edge off the border")
		}
	}()
	b.GetSegment(v3.Vec{Y: 8}, v3.Vec{Y: 9})
}

func TestBorderAddVertexBroadcast(t *testing.T) {
	cam := fanCamera{}
	b := NewBorder(cam, tentPoints(), 0, false)

	// pb sits on both segments, q on segment 0 only.
	pb := v3.Vec{Y: 4}
	q := alongRays(cam, image.Pt(4, 0), image.Pt(0, 4), 3, 3)

	b.AddPolyline()
	b.AddVertex(7, pb)
	b.AddVertex(3, q)

	if got, want := b.Segment(0).Polylines(), [][]int{{7, 3}}; !reflect.DeepEqual(got, want) {
		t.Errorf("segment 0 polylines = %v, want %v", got, want)
	}
	if got, want := b.Segment(1).Polylines(), [][]int{{7}}; !reflect.DeepEqual(got, want) {
		t.Errorf("segment 1 polylines = %v, want %v", got, want)
	}
	if !b.HasVertices() {
		t.Error("HasVertices = false after adding vertices")
	}

	// Compaction: old 7 becomes 0, old 3 becomes 1.
	b.SetNewIndices([]int{-1, -1, -1, 1, -1, -1, -1, 0})
	if got, want := b.Segment(0).Polylines(), [][]int{{0, 1}}; !reflect.DeepEqual(got, want) {
		t.Errorf("segment 0 polylines after remap = %v, want %v", got, want)
	}
	if got, want := b.Segment(1).Polylines(), [][]int{{0}}; !reflect.DeepEqual(got, want) {
		t.Errorf("segment 1 polylines after remap = %v, want %v", got, want)
	}
}

func TestBorderAddVertexOffBorderPanics(t *testing.T) {
	b := NewBorder(fanCamera{}, tentPoints(), 0, false)
	b.AddPolyline()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for a vertex off the border")
		}
	}()
	b.AddVertex(0, v3.Vec{Y: 8})
}

func TestBorderDeleteEmptyPolylines(t *testing.T) {
	cam := fanCamera{}
	b := NewBorder(cam, tentPoints(), 0, false)
	q := alongRays(cam, image.Pt(4, 0), image.Pt(0, 4), 3, 3) // segment 0 only

	b.AddPolyline()
	b.AddVertex(4, q)
	b.AddPolyline()
	b.DeleteEmptyPolylines()

	if got, want := b.Segment(0).Polylines(), [][]int{{4}}; !reflect.DeepEqual(got, want) {
		t.Errorf("segment 0 polylines = %v, want %v", got, want)
	}
	if got := b.Segment(1).Polylines(); len(got) != 0 {
		t.Errorf("segment 1 polylines = %v, want none", got)
	}
	if !b.HasVertices() {
		t.Error("HasVertices = false while segment 0 still holds a vertex")
	}
	if b.Segment(1).HasVertices() {
		t.Error("segment 1 reports vertices after losing all polylines")
	}
}

func TestTrimFace(t *testing.T) {
	cam := fanCamera{}
	b := NewBorder(cam, tentPoints(), 0, false)

	inside := v3.Vec{X: 0.5, Y: 1.5}
	far1 := v3.Vec{Y: 8}
	far2 := v3.Vec{X: 8, Y: 8}
	far3 := v3.Vec{X: -8, Y: 6}

	// Border points on the first and second sheets.
	q1 := alongRays(cam, image.Pt(4, 0), image.Pt(0, 4), 3, 3)
	q2 := alongRays(cam, image.Pt(4, 0), image.Pt(0, 4), 5, 2)
	q3 := alongRays(cam, image.Pt(-4, 1), image.Pt(0, 4), 3, 3)
	q4 := alongRays(cam, image.Pt(4, 0), image.Pt(0, 4), 2, 4)

	tests := []struct {
		name       string
		p1, p2, p3 v3.Vec
		want       bool
	}{
		{"one corner enclosed", inside, far1, far2, true},
		{"all corners outside", far1, far2, far3, false},
		{"on border spanning both sheets", q1, q2, q3, true},
		{"on border within one sheet", q1, q2, q4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.TrimFace(tt.p1, tt.p2, tt.p3); got != tt.want {
				t.Errorf("TrimFace = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBorderThroughCamera(t *testing.T) {
	cam := camera.New(200, 200)
	pts := []image.Point{image.Pt(150, 100), image.Pt(100, 40), image.Pt(50, 100)}
	b := NewBorder(cam, pts, 0, false)

	center := cam.Ray(image.Pt(100, 80))
	if !b.TrimVertex(center.PointAt(4)) {
		t.Error("vertex toward the lasso center should be enclosed")
	}
	if b.TrimVertex(center.PointAt(-3)) {
		t.Error("vertex behind the camera must not be enclosed")
	}

	below := cam.Ray(image.Pt(100, 180)).PointAt(5)
	if !b.TrimVertex(below) {
		t.Error("the open side below the path should be enclosed")
	}
	above := cam.Ray(image.Pt(100, 10)).PointAt(5)
	if b.TrimVertex(above) {
		t.Error("above the path should not be enclosed")
	}

	rev := NewBorder(cam, pts, 0, true)
	if rev.TrimVertex(center.PointAt(4)) {
		t.Error("reversed winding should keep the lasso center")
	}
	if !rev.TrimVertex(above) {
		t.Error("reversed winding should enclose the upper side")
	}
}
