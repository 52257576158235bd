package overlap

import (
	"fmt"

	"github.com/akmonengine/overlap/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Response is returned by intersection callbacks to steer the run
type Response uint8

const (
	// NEXT_PRIMITIVE passes the hit to the next callback, then moves on to
	// the next candidate triangle.
	NEXT_PRIMITIVE Response = iota
	// NEXT_SHAPE leaves the current shape pair
	NEXT_SHAPE
	// ABORT stops the whole run. No callback is invoked afterwards.
	ABORT
)

func (r Response) String() string {
	switch r {
	case NEXT_PRIMITIVE:
		return "NEXT_PRIMITIVE"
	case NEXT_SHAPE:
		return "NEXT_SHAPE"
	case ABORT:
		return "ABORT"
	}
	return fmt.Sprintf("Response(%d)", uint8(r))
}

// PrimitiveType tells what an IntersectingPrimitive holds
type PrimitiveType uint8

const (
	PrimitiveTriangle PrimitiveType = iota
)

// IntersectingPrimitive describes one side of a detected hit. It is only
// valid during the callback invocation.
type IntersectingPrimitive struct {
	// Path leads to the shape owning the primitive
	Path scene.Path
	Type PrimitiveType
	// Vertex holds the vertices in the shape's local space
	Vertex [3]mgl64.Vec3
	// WorldVertex holds the vertices in world space
	WorldVertex [3]mgl64.Vec3
}

// IntersectionFunc is invoked for every hit, with the two primitives
type IntersectionFunc func(a, b *IntersectingPrimitive) Response

// FilterFunc vetoes a shape pair before any triangle is tested when it
// returns false.
type FilterFunc func(a, b scene.Path) bool

// VisitFunc is invoked on traversed nodes of the kind it was registered
// for. Returning scene.Prune skips the subtree, scene.Abort ends the run.
type VisitFunc func(path scene.Path) scene.Response

// CallbackID identifies a registered intersection callback
type CallbackID uint64
