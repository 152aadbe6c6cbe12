package mesh

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// weldScale quantizes positions while welding marching-cubes output;
// corners within 1/weldScale of each other collapse into one vertex.
const weldScale = 1e6

// Sphere returns a sphere solid centered at the origin.
func Sphere(radius float64) sdf.SDF3 {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		panic(fmt.Sprintf("sdf.Sphere3D: %v", err))
	}
	return s
}

// Box returns a box solid of the given side lengths centered at the
// origin.
func Box(size v3.Vec) sdf.SDF3 {
	s, err := sdf.Box3D(size, 0)
	if err != nil {
		panic(fmt.Sprintf("sdf.Box3D: %v", err))
	}
	return s
}

// FromSDF polygonizes s with marching cubes at the given cell
// resolution and welds coincident triangle corners into shared indexed
// vertices, so every surface position gets exactly one index for border
// polylines to refer to. Degenerate triangles produced by the weld are
// dropped.
func FromSDF(s sdf.SDF3, cells int) *Mesh {
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	m := &Mesh{
		Positions: make([]v3.Vec, 0, len(triangles)),
		Triangles: make([][3]int, 0, len(triangles)),
	}
	indexOf := make(map[[3]int64]int, len(triangles))
	for _, tri := range triangles {
		var idx [3]int
		for j := 0; j < 3; j++ {
			v := tri[j]
			key := [3]int64{
				int64(math.Round(v.X * weldScale)),
				int64(math.Round(v.Y * weldScale)),
				int64(math.Round(v.Z * weldScale)),
			}
			i, ok := indexOf[key]
			if !ok {
				i = m.AddVertex(v)
				indexOf[key] = i
			}
			idx[j] = i
		}
		if idx[0] == idx[1] || idx[1] == idx[2] || idx[0] == idx[2] {
			continue
		}
		m.AddTriangle(idx[0], idx[1], idx[2])
	}
	return m
}
