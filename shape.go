package overlap

import (
	"github.com/akmonengine/overlap/geometry"
	"github.com/akmonengine/overlap/scene"
	"github.com/go-gl/mathgl/mgl64"
)

const degenerateWarning = "degenerate-triangle"

// shapeRecord is a shape found during the traversal of the current run
type shapeRecord struct {
	path  scene.Path
	box   geometry.XfBox
	prims *PrimitiveSet
}

func shapeBox(item any) geometry.AABB {
	return item.(*shapeRecord).box.Project()
}

// primitives extracts the shape's triangles on first use
func (s *shapeRecord) primitives(d *Detector) *PrimitiveSet {
	if s.prims != nil {
		return s.prims
	}

	set := newPrimitiveSet(s.path, s.box.Transform, s.box.Inverse(), d.config.IndexKind, d.config.MaxItemsPerNode)
	source := s.path.Tail().Geometry()
	if source != nil {
		source.Triangles(func(a, b, c mgl64.Vec3) {
			t := geometry.Triangle{A: a, B: b, C: c}.Transform(s.box.Transform)
			if geometry.IsDegenerate(t.A, t.B, t.C) {
				d.diag.WarnOnce(degenerateWarning, "dropping degenerate triangles, first one in %s", s.path)
				return
			}
			set.add(t)
		})
	}
	s.prims = set

	return s.prims
}
