package scene

import (
	"fmt"

	"github.com/akmonengine/overlap/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// TriangleSource produces the triangle soup of a shape in its local space.
// Degenerate triangles may be yielded; consumers filter them.
type TriangleSource interface {
	Triangles(yield func(a, b, c mgl64.Vec3))
	Bounds() geometry.AABB
}

// MeshSource is an indexed triangle list
type MeshSource struct {
	Vertices []mgl64.Vec3
	// Indices holds three vertex indices per triangle
	Indices []int
}

// NewMesh validates the indices against the vertices
func NewMesh(vertices []mgl64.Vec3, indices []int) (*MeshSource, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("scene: %d indices do not form whole triangles", len(indices))
	}
	for _, i := range indices {
		if i < 0 || i >= len(vertices) {
			return nil, fmt.Errorf("scene: vertex index %d out of range [0, %d)", i, len(vertices))
		}
	}
	return &MeshSource{Vertices: vertices, Indices: indices}, nil
}

// TriangleMesh builds an unindexed mesh from explicit triangles
func TriangleMesh(triangles ...geometry.Triangle) *MeshSource {
	m := &MeshSource{
		Vertices: make([]mgl64.Vec3, 0, len(triangles)*3),
		Indices:  make([]int, 0, len(triangles)*3),
	}
	for _, t := range triangles {
		base := len(m.Vertices)
		m.Vertices = append(m.Vertices, t.A, t.B, t.C)
		m.Indices = append(m.Indices, base, base+1, base+2)
	}
	return m
}

// BoxMesh builds the 12 outward facing triangles of a box centered on the
// origin.
func BoxMesh(halfExtents mgl64.Vec3) *MeshSource {
	h := halfExtents
	vertices := []mgl64.Vec3{
		{-h.X(), -h.Y(), -h.Z()},
		{+h.X(), -h.Y(), -h.Z()},
		{-h.X(), +h.Y(), -h.Z()},
		{+h.X(), +h.Y(), -h.Z()},
		{-h.X(), -h.Y(), +h.Z()},
		{+h.X(), -h.Y(), +h.Z()},
		{-h.X(), +h.Y(), +h.Z()},
		{+h.X(), +h.Y(), +h.Z()},
	}
	indices := []int{
		0, 2, 1, 1, 2, 3, // -Z
		4, 5, 6, 5, 7, 6, // +Z
		0, 1, 4, 1, 5, 4, // -Y
		2, 6, 3, 3, 6, 7, // +Y
		0, 4, 2, 2, 4, 6, // -X
		1, 3, 5, 3, 7, 5, // +X
	}
	return &MeshSource{Vertices: vertices, Indices: indices}
}

// Len returns the number of triangles
func (m *MeshSource) Len() int {
	return len(m.Indices) / 3
}

// Triangles yields every indexed triangle
func (m *MeshSource) Triangles(yield func(a, b, c mgl64.Vec3)) {
	for i := 0; i+2 < len(m.Indices); i += 3 {
		yield(m.Vertices[m.Indices[i]], m.Vertices[m.Indices[i+1]], m.Vertices[m.Indices[i+2]])
	}
}

// Bounds returns the box of the referenced vertices
func (m *MeshSource) Bounds() geometry.AABB {
	box := geometry.EmptyAABB()
	for _, i := range m.Indices {
		box = box.ExtendPoint(m.Vertices[i])
	}
	return box
}
