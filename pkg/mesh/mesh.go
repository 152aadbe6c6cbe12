// Package mesh provides the indexed triangle mesh the cutting pipeline
// works on: positions addressed by the vertex indices border polylines
// store, compaction that produces the old-to-new remap table those
// polylines are rewritten through, and OBJ export for inspection.
package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// InvalidIndex marks a removed vertex in the remap table Compact
// returns.
const InvalidIndex = -1

// Mesh is an indexed triangle mesh. Triangles hold indices into
// Positions.
type Mesh struct {
	Positions []v3.Vec
	Triangles [][3]int
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// IsEmpty reports whether the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p v3.Vec) int {
	m.Positions = append(m.Positions, p)
	return len(m.Positions) - 1
}

// AddTriangle appends a triangle over existing vertex indices.
func (m *Mesh) AddTriangle(a, b, c int) {
	m.Triangles = append(m.Triangles, [3]int{a, b, c})
}

// Compact drops every vertex for which keep returns false, along with
// any triangle touching a dropped vertex, and rewrites the surviving
// triangles to the new indices. It returns the old-to-new index table,
// with InvalidIndex for dropped vertices.
func (m *Mesh) Compact(keep func(i int) bool) []int {
	remap := make([]int, len(m.Positions))
	kept := m.Positions[:0]
	for i, p := range m.Positions {
		if keep(i) {
			remap[i] = len(kept)
			kept = append(kept, p)
		} else {
			remap[i] = InvalidIndex
		}
	}
	m.Positions = kept

	tris := m.Triangles[:0]
	for _, t := range m.Triangles {
		a, b, c := remap[t[0]], remap[t[1]], remap[t[2]]
		if a == InvalidIndex || b == InvalidIndex || c == InvalidIndex {
			continue
		}
		tris = append(tris, [3]int{a, b, c})
	}
	m.Triangles = tris
	return remap
}
