package scene

import (
	"sync"

	"github.com/akmonengine/overlap/geometry"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// DEFAULT_MESH_CELLS is the marching cubes resolution along the longest side
const DEFAULT_MESH_CELLS = 32

// SolidSource tessellates a signed distance solid with marching cubes. The
// mesh is rendered once, on first use, and is safe to share between
// goroutines.
type SolidSource struct {
	solid sdf.SDF3
	cells int

	once      sync.Once
	triangles [][3]mgl64.Vec3
	bounds    geometry.AABB
}

// NewSolidSource wraps solid. cells below 1 use DEFAULT_MESH_CELLS.
func NewSolidSource(solid sdf.SDF3, cells int) *SolidSource {
	if cells < 1 {
		cells = DEFAULT_MESH_CELLS
	}
	return &SolidSource{solid: solid, cells: cells}
}

// SolidBox is a box of the given full size centered on the origin
func SolidBox(size mgl64.Vec3, cells int) (*SolidSource, error) {
	s, err := sdf.Box3D(v3.Vec{X: size.X(), Y: size.Y(), Z: size.Z()}, 0)
	if err != nil {
		return nil, errors.Wrap(err, "scene: box solid")
	}
	return NewSolidSource(s, cells), nil
}

// SolidSphere is a sphere centered on the origin
func SolidSphere(radius float64, cells int) (*SolidSource, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, errors.Wrap(err, "scene: sphere solid")
	}
	return NewSolidSource(s, cells), nil
}

// SolidCylinder is a cylinder along Z centered on the origin
func SolidCylinder(height, radius float64, cells int) (*SolidSource, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, errors.Wrap(err, "scene: cylinder solid")
	}
	return NewSolidSource(s, cells), nil
}

func (s *SolidSource) render() {
	s.once.Do(func() {
		renderer := render.NewMarchingCubesUniform(s.cells)
		triangles := render.ToTriangles(s.solid, renderer)

		s.triangles = make([][3]mgl64.Vec3, 0, len(triangles))
		s.bounds = geometry.EmptyAABB()
		for _, tri := range triangles {
			var out [3]mgl64.Vec3
			for j := 0; j < 3; j++ {
				v := tri[j]
				out[j] = mgl64.Vec3{v.X, v.Y, v.Z}
				s.bounds = s.bounds.ExtendPoint(out[j])
			}
			s.triangles = append(s.triangles, out)
		}
	})
}

// Len returns the number of rendered triangles
func (s *SolidSource) Len() int {
	s.render()
	return len(s.triangles)
}

// Triangles yields the rendered mesh
func (s *SolidSource) Triangles(yield func(a, b, c mgl64.Vec3)) {
	s.render()
	for _, t := range s.triangles {
		yield(t[0], t[1], t[2])
	}
}

// Bounds returns the box of the rendered mesh, which may differ slightly
// from the solid's own bounding box.
func (s *SolidSource) Bounds() geometry.AABB {
	s.render()
	return s.bounds
}
