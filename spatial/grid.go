package spatial

import (
	"math"

	"github.com/akmonengine/overlap/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey holds the integer coordinates of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the items whose box touches any grid cell hashed to it
type Cell struct {
	items []any
}

// HashGrid is an unbounded uniform grid hashed onto a fixed array of cells.
// Distinct cells may share a slot, which only adds false positives.
type HashGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
	boxFn    BoxFunc
	// oversize holds items spanning more cells than the table has slots
	oversize []any
	// boxes remembers the box each stored item was inserted with
	boxes map[any]geometry.AABB
}

// ============================================================================
// Constructor
// ============================================================================

// NewHashGrid creates a grid of cubic cells of side cellSize, hashed onto
// numCells slots rounded up to a power of two.
func NewHashGrid(cellSize float64, numCells int, boxFn BoxFunc) *HashGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].items = make([]any, 0, 8)
	}

	return &HashGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
		boxFn:    boxFn,
		boxes:    make(map[any]geometry.AABB),
	}
}

// nextPowerOfTwo rounds n up to the next power of two
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// ============================================================================
// Index
// ============================================================================

// Len returns the number of stored items
func (sg *HashGrid) Len() int {
	return len(sg.boxes)
}

// Insert adds item to all the cells its box occupies. Inserting a stored
// item again replaces its entry, so a moved item can be refreshed.
func (sg *HashGrid) Insert(item any) error {
	box := sg.boxFn(item)
	if box.IsEmpty() {
		return ErrOutOfBounds
	}

	sg.Remove(item)
	sg.boxes[item] = box

	minCell, maxCell, ok := sg.cellRange(box)
	if !ok {
		sg.oversize = append(sg.oversize, item)
		return nil
	}

	sg.forEachSlot(minCell, maxCell, func(slot int) {
		cell := &sg.cells[slot]
		cell.items = append(cell.items, item)
	})

	return nil
}

// Remove deletes item from the cells it was inserted in
func (sg *HashGrid) Remove(item any) {
	box, stored := sg.boxes[item]
	if !stored {
		return
	}
	delete(sg.boxes, item)

	minCell, maxCell, ok := sg.cellRange(box)
	if !ok {
		if i := indexOf(sg.oversize, item); i >= 0 {
			sg.oversize = removeAt(sg.oversize, i)
		}
		return
	}

	sg.forEachSlot(minCell, maxCell, func(slot int) {
		cell := &sg.cells[slot]
		if i := indexOf(cell.items, item); i >= 0 {
			cell.items = removeAt(cell.items, i)
		}
	})
}

// Query returns each item whose box overlaps box, once
func (sg *HashGrid) Query(box geometry.AABB) []any {
	if box.IsEmpty() || len(sg.boxes) == 0 {
		return nil
	}

	found := newDedup()
	visit := func(item any) {
		if sg.boxFn(item).Overlaps(box) {
			found.add(item)
		}
	}

	minCell, maxCell, ok := sg.cellRange(box)
	if ok {
		sg.forEachSlot(minCell, maxCell, func(slot int) {
			for _, item := range sg.cells[slot].items {
				visit(item)
			}
		})
	} else {
		for i := range sg.cells {
			for _, item := range sg.cells[i].items {
				visit(item)
			}
		}
	}

	for _, item := range sg.oversize {
		visit(item)
	}

	return found.items
}

// Clear empties every cell while keeping their storage
func (sg *HashGrid) Clear() {
	for i := range sg.cells {
		clear(sg.cells[i].items)
		sg.cells[i].items = sg.cells[i].items[:0]
	}
	sg.oversize = nil
	clear(sg.boxes)
}

// cellRange returns the cells covered by box. It fails when the box covers
// more cells than there are slots, in which case walking every slot is
// cheaper.
func (sg *HashGrid) cellRange(box geometry.AABB) (CellKey, CellKey, bool) {
	span := 1.0
	for axis := 0; axis < 3; axis++ {
		span *= math.Floor(box.Max[axis]/sg.cellSize) - math.Floor(box.Min[axis]/sg.cellSize) + 1
	}
	if math.IsNaN(span) || span > float64(len(sg.cells)) {
		return CellKey{}, CellKey{}, false
	}
	return sg.worldToCell(box.Min), sg.worldToCell(box.Max), true
}

// forEachSlot calls fn once per distinct slot covered by the cell range
func (sg *HashGrid) forEachSlot(minCell, maxCell CellKey, fn func(slot int)) {
	visited := make(map[int]struct{})
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				slot := sg.hashCell(CellKey{x, y, z})
				if _, ok := visited[slot]; ok {
					continue
				}
				visited[slot] = struct{}{}
				fn(slot)
			}
		}
	}
}

// worldToCell converts a world position to cell coordinates
func (sg *HashGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell maps a cell onto a slot of the table
func (sg *HashGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}

func indexOf(items []any, item any) int {
	for i, stored := range items {
		if stored == item {
			return i
		}
	}
	return -1
}

func removeAt(items []any, i int) []any {
	last := len(items) - 1
	items[i] = items[last]
	items[last] = nil
	return items[:last]
}
