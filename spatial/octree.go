package spatial

import (
	"github.com/akmonengine/overlap/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Octree is a recursively subdivided box index. An item lives in every leaf
// its box overlaps, so queries remove duplicates.
type Octree struct {
	root     *octreeNode
	boxFn    BoxFunc
	maxItems int
	// boxes remembers the box each stored item was inserted with
	boxes map[any]geometry.AABB
}

type octreeNode struct {
	bounds   geometry.AABB
	children *[8]*octreeNode
	items    []any
}

// NewOctree creates an empty octree covering bounds. A leaf holding
// maxItems items tries to split on the next insertion.
func NewOctree(bounds geometry.AABB, boxFn BoxFunc, maxItems int) *Octree {
	if maxItems < 1 {
		maxItems = DEFAULT_MAX_ITEMS
	}
	return &Octree{
		root:     &octreeNode{bounds: bounds},
		boxFn:    boxFn,
		maxItems: maxItems,
		boxes:    make(map[any]geometry.AABB),
	}
}

// Bounds returns the volume covered by the tree
func (o *Octree) Bounds() geometry.AABB {
	return o.root.bounds
}

// Len returns the number of stored items
func (o *Octree) Len() int {
	return len(o.boxes)
}

// Insert adds item to every leaf its box overlaps. Inserting a stored item
// again replaces its entry.
func (o *Octree) Insert(item any) error {
	box := o.boxFn(item)
	if !box.Overlaps(o.root.bounds) {
		return ErrOutOfBounds
	}
	o.Remove(item)
	o.boxes[item] = box
	o.root.add(item, box, o)
	return nil
}

// Remove deletes item from every leaf holding it
func (o *Octree) Remove(item any) {
	box, ok := o.boxes[item]
	if !ok {
		return
	}
	delete(o.boxes, item)
	o.root.remove(item, box)
}

// Query returns each item whose box overlaps box, once
func (o *Octree) Query(box geometry.AABB) []any {
	if box.IsEmpty() || len(o.boxes) == 0 {
		return nil
	}
	found := newDedup()
	o.root.query(box, o.boxFn, found)
	return found.items
}

func (n *octreeNode) isLeaf() bool {
	return n.children == nil
}

func (n *octreeNode) add(item any, box geometry.AABB, tree *Octree) {
	if !n.isLeaf() {
		for _, child := range n.children {
			if box.Overlaps(child.bounds) {
				child.add(item, box, tree)
			}
		}
		return
	}

	// Splits are retried every maxItems+1 insertions once a split failed
	count := len(n.items)
	if count >= tree.maxItems && count%(tree.maxItems+1) == tree.maxItems && n.split(tree.boxes) {
		n.add(item, box, tree)
		return
	}

	n.items = append(n.items, item)
}

// split distributes the leaf items over 8 octants. It gives up, leaving the
// node a leaf, when one octant would receive every item.
func (n *octreeNode) split(boxes map[any]geometry.AABB) bool {
	var children [8]*octreeNode
	for i, bounds := range octants(n.bounds) {
		children[i] = &octreeNode{bounds: bounds}
	}

	for _, item := range n.items {
		box := boxes[item]
		for _, child := range children {
			if box.Overlaps(child.bounds) {
				child.items = append(child.items, item)
			}
		}
	}

	for _, child := range children {
		if len(child.items) == len(n.items) {
			return false
		}
	}

	n.children = &children
	n.items = nil
	return true
}

func (n *octreeNode) remove(item any, box geometry.AABB) bool {
	if !n.isLeaf() {
		removed := false
		for _, child := range n.children {
			if box.Overlaps(child.bounds) && child.remove(item, box) {
				removed = true
			}
		}
		return removed
	}

	if i := indexOf(n.items, item); i >= 0 {
		n.items = removeAt(n.items, i)
		return true
	}
	return false
}

func (n *octreeNode) query(box geometry.AABB, boxFn BoxFunc, found *dedup) {
	if !n.isLeaf() {
		for _, child := range n.children {
			if box.Overlaps(child.bounds) {
				child.query(box, boxFn, found)
			}
		}
		return
	}

	for _, item := range n.items {
		if boxFn(item).Overlaps(box) {
			found.add(item)
		}
	}
}

func (n *octreeNode) depth() int {
	if n.isLeaf() {
		return 1
	}
	deepest := 0
	for _, child := range n.children {
		deepest = max(deepest, child.depth())
	}
	return deepest + 1
}

// octants splits bounds in 8 around its center
func octants(bounds geometry.AABB) [8]geometry.AABB {
	mid := bounds.Center()
	var out [8]geometry.AABB
	for i := 0; i < 8; i++ {
		var lo, hi mgl64.Vec3
		for axis := 0; axis < 3; axis++ {
			if i&(4>>axis) != 0 {
				lo[axis], hi[axis] = bounds.Min[axis], mid[axis]
			} else {
				lo[axis], hi[axis] = mid[axis], bounds.Max[axis]
			}
		}
		out[i] = geometry.AABB{Min: lo, Max: hi}
	}
	return out
}
