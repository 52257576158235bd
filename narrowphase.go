package overlap

import (
	"fmt"

	"github.com/akmonengine/overlap/geometry"
)

// testPrimitives tests the triangles of two shapes against each other. The
// shape with more triangles is indexed, the other one is scanned against it.
// It returns false when a callback aborted.
func (d *Detector) testPrimitives(set1, set2 *PrimitiveSet) bool {
	indexed, scanned := set2, set1
	if set1.Len() > set2.Len() {
		indexed, scanned = set1, set2
	}
	if scanned.Len() == 0 {
		return true
	}

	epsilon := d.config.Epsilon
	index := indexed.Index()

	for i := range scanned.triangles {
		t1 := &scanned.triangles[i]
		box := t1.BoundingBox()
		if epsilon > 0 {
			box = box.Expand(epsilon)
		}

		for _, item := range index.Query(box) {
			t2 := item.(*geometry.Triangle)
			d.stats.TriangleChecks++
			if !t1.IntersectEpsilon(*t2, epsilon) {
				continue
			}

			d.stats.Hits++
			switch d.dispatch(scanned.primitive(t1), indexed.primitive(t2)) {
			case NEXT_SHAPE:
				return true
			case ABORT:
				return false
			}
		}
	}

	return true
}

// testInternal tests every pair of triangles within one shape with the
// exact test, whatever the epsilon.
func (d *Detector) testInternal(set *PrimitiveSet) bool {
	for i := range set.triangles {
		t1 := &set.triangles[i]
		for j := i + 1; j < len(set.triangles); j++ {
			t2 := &set.triangles[j]
			d.stats.TriangleChecks++
			if !t1.Intersect(*t2) {
				continue
			}

			d.stats.Hits++
			switch d.dispatch(set.primitive(t1), set.primitive(t2)) {
			case NEXT_SHAPE:
				return true
			case ABORT:
				return false
			}
		}
	}

	return true
}

// dispatch hands a hit to the callbacks in order, until one of them leaves
// the shape pair or aborts.
func (d *Detector) dispatch(p1, p2 *IntersectingPrimitive) Response {
	for _, cb := range d.callbacks {
		switch response := cb.fn(p1, p2); response {
		case NEXT_PRIMITIVE:
		case NEXT_SHAPE, ABORT:
			return response
		default:
			panic(fmt.Sprintf("overlap: invalid callback response %s", response))
		}
	}

	return NEXT_PRIMITIVE
}
