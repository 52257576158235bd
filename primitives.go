package overlap

import (
	"fmt"

	"github.com/akmonengine/overlap/geometry"
	"github.com/akmonengine/overlap/scene"
	"github.com/akmonengine/overlap/spatial"
	"github.com/go-gl/mathgl/mgl64"
)

// BOX_SLACK enlarges the root volume of every index so that items lying on
// the boundary stay inside it.
const BOX_SLACK = 1.01

// PrimitiveSet caches the world-space triangles of one shape, along with the
// spatial index built over them on demand.
type PrimitiveSet struct {
	path      scene.Path
	triangles []geometry.Triangle
	transform mgl64.Mat4
	inverse   mgl64.Mat4
	bounds    geometry.AABB

	indexKind spatial.Kind
	maxItems  int
	index     spatial.Index
}

func newPrimitiveSet(path scene.Path, transform, inverse mgl64.Mat4, kind spatial.Kind, maxItems int) *PrimitiveSet {
	return &PrimitiveSet{
		path:      path,
		transform: transform,
		inverse:   inverse,
		bounds:    geometry.EmptyAABB(),
		indexKind: kind,
		maxItems:  maxItems,
	}
}

// add appends a world-space triangle. Triangles cannot be added once the
// index exists.
func (p *PrimitiveSet) add(t geometry.Triangle) {
	if p.index != nil {
		panic("overlap: triangle added to an indexed primitive set")
	}
	p.triangles = append(p.triangles, t)
	p.bounds = p.bounds.Extend(t.BoundingBox())
}

func (p *PrimitiveSet) Len() int {
	return len(p.triangles)
}

// Triangle returns the i-th triangle in world space
func (p *PrimitiveSet) Triangle(i int) geometry.Triangle {
	return p.triangles[i]
}

// Bounds is the union of the triangle boxes, in world space
func (p *PrimitiveSet) Bounds() geometry.AABB {
	return p.bounds
}

func (p *PrimitiveSet) Path() scene.Path {
	return p.path
}

// Transform maps the shape's local space to world space
func (p *PrimitiveSet) Transform() mgl64.Mat4 {
	return p.transform
}

func (p *PrimitiveSet) InverseTransform() mgl64.Mat4 {
	return p.inverse
}

// Index returns the spatial index over the triangles, building it on first
// use. Items are *geometry.Triangle pointing into the set.
func (p *PrimitiveSet) Index() spatial.Index {
	if p.index != nil {
		return p.index
	}

	boxFn := func(item any) geometry.AABB {
		return item.(*geometry.Triangle).BoundingBox()
	}
	index, err := spatial.New(p.indexKind, p.bounds.Scale(BOX_SLACK), boxFn, p.maxItems)
	if err != nil {
		panic(fmt.Sprintf("overlap: cannot index %s: %v", p.path, err))
	}
	for i := range p.triangles {
		if err := index.Insert(&p.triangles[i]); err != nil {
			panic(fmt.Sprintf("overlap: cannot index %s: %v", p.path, err))
		}
	}
	p.index = index

	return p.index
}

// primitive describes one of the set triangles for the callbacks
func (p *PrimitiveSet) primitive(t *geometry.Triangle) *IntersectingPrimitive {
	world := t.Vertices()
	return &IntersectingPrimitive{
		Path: p.path,
		Type: PrimitiveTriangle,
		Vertex: [3]mgl64.Vec3{
			mgl64.TransformCoordinate(world[0], p.inverse),
			mgl64.TransformCoordinate(world[1], p.inverse),
			mgl64.TransformCoordinate(world[2], p.inverse),
		},
		WorldVertex: world,
	}
}
