package engine

import (
	"errors"
	"fmt"
	"image"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hsab/dilay/pkg/camera"
	"github.com/hsab/dilay/pkg/mesh"
	"github.com/hsab/dilay/pkg/trim"
)

// Scene is the product of evaluating a scene script: a solid mesh, the
// viewport camera it is seen through, and the lasso that cuts it. The
// builtins mutate the scene in script order; (trim) performs the cut
// and stores its outcome in Result.
type Scene struct {
	Camera *camera.Camera
	Solid  *mesh.Mesh

	Lasso   []image.Point
	Offset  float64
	Reverse bool

	Result *TrimResult
}

// TrimResult records the outcome of a (trim) pass.
type TrimResult struct {
	Border       *trim.Border
	Kept         *mesh.Mesh
	Trimmed      *mesh.Mesh
	KeptFaces    int
	TrimmedFaces int
}

// NewScene returns a scene with the default viewport: an 800x600 camera
// on the +Z axis looking at the origin, no solid, no lasso.
func NewScene() *Scene {
	return &Scene{Camera: camera.New(800, 600)}
}

// runTrim cuts the scene's solid against the current lasso. Faces that
// fall on the enclosed side of the border move to the trimmed mesh, the
// rest stay in the kept mesh, and both are compacted to drop unused
// vertices. Kept vertices that sit exactly on the border are recorded
// as polyline points, remapped to the compacted indices, so callers can
// walk the rim of the cut.
func (s *Scene) runTrim() (*TrimResult, error) {
	if s.Solid == nil || s.Solid.IsEmpty() {
		return nil, errors.New("no solid defined, add a sphere or box before trimming")
	}
	if len(s.Lasso) < 2 {
		return nil, fmt.Errorf("lasso has %d points, need at least 2", len(s.Lasso))
	}

	border := trim.NewBorder(s.Camera, s.Lasso, s.Offset, s.Reverse)

	src := s.Solid
	var keptTris, trimmedTris [][3]int
	for _, tri := range src.Triangles {
		p1 := src.Positions[tri[0]]
		p2 := src.Positions[tri[1]]
		p3 := src.Positions[tri[2]]
		if border.TrimFace(p1, p2, p3) {
			trimmedTris = append(trimmedTris, tri)
		} else {
			keptTris = append(keptTris, tri)
		}
	}

	kept := &mesh.Mesh{
		Positions: append([]v3.Vec(nil), src.Positions...),
		Triangles: keptTris,
	}
	trimmed := &mesh.Mesh{
		Positions: append([]v3.Vec(nil), src.Positions...),
		Triangles: trimmedTris,
	}

	used := make([]bool, len(src.Positions))
	for _, tri := range keptTris {
		used[tri[0]] = true
		used[tri[1]] = true
		used[tri[2]] = true
	}

	// Surviving vertices on the border form the rim of the cut. They are
	// registered under their old indices; the compaction remap below
	// rewrites them, which is why only vertices of kept faces qualify.
	border.AddPolyline()
	for i, p := range src.Positions {
		if !used[i] {
			continue
		}
		if border.OnBorder(p) {
			border.AddVertex(i, p)
		}
	}

	remap := kept.Compact(func(i int) bool { return used[i] })
	border.SetNewIndices(remap)
	border.DeleteEmptyPolylines()

	usedTrimmed := make([]bool, len(src.Positions))
	for _, tri := range trimmedTris {
		usedTrimmed[tri[0]] = true
		usedTrimmed[tri[1]] = true
		usedTrimmed[tri[2]] = true
	}
	trimmed.Compact(func(i int) bool { return usedTrimmed[i] })

	return &TrimResult{
		Border:       border,
		Kept:         kept,
		Trimmed:      trimmed,
		KeptFaces:    len(keptTris),
		TrimmedFaces: len(trimmedTris),
	}, nil
}
