// Package spatial provides box-queryable containers used to discard
// candidate pairs before exact geometric tests.
package spatial

import (
	"github.com/akmonengine/overlap/geometry"
	"github.com/pkg/errors"
)

var (
	// ErrOutOfBounds is returned when an item's box misses the index volume
	ErrOutOfBounds = errors.New("spatial: item outside index bounds")
	// ErrUnknownKind is returned by New for an unsupported Kind
	ErrUnknownKind = errors.New("spatial: unknown index kind")
)

// BoxFunc returns the bounding box of a stored item. It must return the same
// box for an item for as long as the item is stored.
type BoxFunc func(item any) geometry.AABB

// Index stores opaque items and answers box overlap queries.
//
// Query results are a superset of the items whose box overlaps the query
// box: callers apply exact tests afterwards. Results carry no ordering.
// Items must be comparable, pointers in practice. Inserting a stored item
// again replaces its entry with one under its current box. An Index is not
// safe for concurrent use.
type Index interface {
	Insert(item any) error
	Remove(item any)
	Query(box geometry.AABB) []any
	Len() int
}

// Kind selects an Index implementation
type Kind int

const (
	KindOctree Kind = iota
	KindHashGrid
	KindRTree
)

const (
	// DEFAULT_MAX_ITEMS is the leaf capacity used when none is given
	DEFAULT_MAX_ITEMS = 64
	// gridResolution is the number of grid cells along the longest side
	// of the bounds for hash grids built by New.
	gridResolution = 32
	gridCells      = 4096
)

func (k Kind) String() string {
	switch k {
	case KindOctree:
		return "octree"
	case KindHashGrid:
		return "grid"
	case KindRTree:
		return "rtree"
	}
	return "unknown"
}

// ParseKind maps the names returned by Kind.String back to a Kind
func ParseKind(name string) (Kind, error) {
	for _, k := range []Kind{KindOctree, KindHashGrid, KindRTree} {
		if k.String() == name {
			return k, nil
		}
	}
	return 0, ErrUnknownKind
}

// New builds an empty index of the given kind covering bounds. maxItems is
// the octree leaf capacity and the rtree node capacity; values below 1 use
// DEFAULT_MAX_ITEMS.
func New(kind Kind, bounds geometry.AABB, boxFn BoxFunc, maxItems int) (Index, error) {
	if maxItems < 1 {
		maxItems = DEFAULT_MAX_ITEMS
	}

	switch kind {
	case KindOctree:
		return NewOctree(bounds, boxFn, maxItems), nil
	case KindHashGrid:
		size := bounds.Size()
		longest := max(size.X(), size.Y(), size.Z())
		cellSize := longest / gridResolution
		if cellSize <= 0 {
			cellSize = 1
		}
		return NewHashGrid(cellSize, gridCells, boxFn), nil
	case KindRTree:
		return NewRTree(boxFn, maxItems), nil
	}

	return nil, ErrUnknownKind
}

// dedup collects items once each, in first-seen order
type dedup struct {
	seen  map[any]struct{}
	items []any
}

func newDedup() *dedup {
	return &dedup{seen: make(map[any]struct{})}
}

func (d *dedup) add(item any) {
	if _, ok := d.seen[item]; ok {
		return
	}
	d.seen[item] = struct{}{}
	d.items = append(d.items, item)
}
