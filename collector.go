package overlap

import (
	"unsafe"

	"github.com/akmonengine/overlap/scene"
	"github.com/samber/lo"
)

type pairKey struct {
	nodeA *scene.Node
	nodeB *scene.Node
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(nodeA, nodeB *scene.Node) pairKey {
	ptrA := uintptr(unsafe.Pointer(nodeA))
	ptrB := uintptr(unsafe.Pointer(nodeB))

	if ptrB < ptrA {
		nodeA, nodeB = nodeB, nodeA
	}

	return pairKey{nodeA: nodeA, nodeB: nodeB}
}

// Hit is a copy of the two primitives handed to a callback
type Hit struct {
	A IntersectingPrimitive
	B IntersectingPrimitive
}

// ShapePair counts the hits found between two shapes. A and B are the same
// path for self intersections.
type ShapePair struct {
	A    scene.Path
	B    scene.Path
	Hits int
}

// Collector is an intersection callback recording every hit it receives
type Collector struct {
	// Response is returned for every recorded hit
	Response Response
	// Limit aborts the run once that many hits are recorded, 0 disables it
	Limit int

	hits  []Hit
	pairs map[pairKey]*ShapePair
	order []pairKey
}

func NewCollector(response Response) *Collector {
	return &Collector{
		Response: response,
		pairs:    make(map[pairKey]*ShapePair),
	}
}

// Attach registers the collector on d
func (c *Collector) Attach(d *Detector) CallbackID {
	return d.AddIntersectionCallback(c.Callback)
}

// Callback records the hit, it satisfies IntersectionFunc
func (c *Collector) Callback(a, b *IntersectingPrimitive) Response {
	if c.pairs == nil {
		c.pairs = make(map[pairKey]*ShapePair)
	}
	c.hits = append(c.hits, Hit{A: *a, B: *b})

	key := makePairKey(a.Path.Tail(), b.Path.Tail())
	pair, ok := c.pairs[key]
	if !ok {
		pair = &ShapePair{A: a.Path, B: b.Path}
		c.pairs[key] = pair
		c.order = append(c.order, key)
	}
	pair.Hits++

	if c.Limit > 0 && len(c.hits) >= c.Limit {
		return ABORT
	}
	return c.Response
}

func (c *Collector) Hits() []Hit {
	return c.hits
}

func (c *Collector) Len() int {
	return len(c.hits)
}

// Pairs returns the shape pairs in the order they were first hit
func (c *Collector) Pairs() []ShapePair {
	return lo.Map(c.order, func(key pairKey, _ int) ShapePair {
		return *c.pairs[key]
	})
}

// PairHits returns the number of hits recorded between the two shape nodes,
// in any order.
func (c *Collector) PairHits(nodeA, nodeB *scene.Node) int {
	if pair, ok := c.pairs[makePairKey(nodeA, nodeB)]; ok {
		return pair.Hits
	}
	return 0
}

func (c *Collector) Reset() {
	c.hits = nil
	c.order = nil
	clear(c.pairs)
}
