package spatial

import (
	"math"

	"github.com/akmonengine/overlap/geometry"
	"github.com/dhconnelly/rtreego"
)

// RTree adapts rtreego to the Index interface.
//
// rtreego treats touching rectangles as disjoint and rejects none of zero
// extent, so every rectangle is padded by a small margin relative to its
// coordinates.
type RTree struct {
	tree    *rtreego.Rtree
	boxFn   BoxFunc
	entries map[any]*rtreeEntry
}

type rtreeEntry struct {
	item any
	rect rtreego.Rect
}

func (e *rtreeEntry) Bounds() rtreego.Rect {
	return e.rect
}

// NewRTree creates an empty R-tree whose nodes hold at most maxItems
// entries.
func NewRTree(boxFn BoxFunc, maxItems int) *RTree {
	if maxItems < 4 {
		maxItems = 4
	}
	return &RTree{
		tree:    rtreego.NewTree(3, max(2, maxItems/4), maxItems),
		boxFn:   boxFn,
		entries: make(map[any]*rtreeEntry),
	}
}

// Len returns the number of stored items
func (r *RTree) Len() int {
	return r.tree.Size()
}

// Insert adds item under its padded box. Inserting a stored item again
// replaces its entry.
func (r *RTree) Insert(item any) error {
	rect, err := toRect(r.boxFn(item))
	if err != nil {
		return err
	}

	r.Remove(item)
	e := &rtreeEntry{item: item, rect: rect}
	r.entries[item] = e
	r.tree.Insert(e)

	return nil
}

// Remove deletes item if it is stored
func (r *RTree) Remove(item any) {
	e, ok := r.entries[item]
	if !ok {
		return
	}
	r.tree.Delete(e)
	delete(r.entries, item)
}

// Query returns the items whose padded box overlaps the padded query box
func (r *RTree) Query(box geometry.AABB) []any {
	if box.IsEmpty() || len(r.entries) == 0 {
		return nil
	}
	rect, err := toRect(box)
	if err != nil {
		return nil
	}

	hits := r.tree.SearchIntersect(rect)
	out := make([]any, 0, len(hits))
	for _, hit := range hits {
		out = append(out, hit.(*rtreeEntry).item)
	}
	return out
}

func toRect(box geometry.AABB) (rtreego.Rect, error) {
	if box.IsEmpty() {
		return rtreego.Rect{}, ErrOutOfBounds
	}

	scale := 1.0
	for axis := 0; axis < 3; axis++ {
		scale = math.Max(scale, math.Max(math.Abs(box.Min[axis]), math.Abs(box.Max[axis])))
	}
	pad := 1e-9 * scale

	lo := rtreego.Point{box.Min.X() - pad, box.Min.Y() - pad, box.Min.Z() - pad}
	hi := rtreego.Point{box.Max.X() + pad, box.Max.Y() + pad, box.Max.Z() + pad}

	return rtreego.NewRectFromPoints(lo, hi)
}
