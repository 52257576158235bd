package scene

import (
	"github.com/akmonengine/overlap/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Response tells the traversal how to go on after visiting a node
type Response int

const (
	// Continue descends into the node
	Continue Response = iota
	// Prune skips the node and its subtree
	Prune
	// Abort stops the traversal
	Abort
)

// Visitor receives the nodes of a traversal
type Visitor interface {
	// Visit is called for every node before its geometry and children
	Visit(path Path) Response
	// Shape is called for every visited node holding geometry, with the
	// node bounds placed in world space.
	Shape(path Path, box geometry.XfBox)
}

// Traverse walks the tree under root depth first, accumulating transforms.
// It returns false when a Visit aborted the walk.
func Traverse(root *Node, v Visitor) bool {
	if root == nil {
		return true
	}
	return walk(Path{root}, mgl64.Ident4(), v)
}

// TraversePath visits the nodes along path, then walks the subtree under its
// tail. Geometry on the way down is ignored: only the subtree under the
// tail yields shapes.
func TraversePath(path Path, v Visitor) bool {
	if len(path) == 0 {
		return true
	}

	world := mgl64.Ident4()
	for i := 0; i < len(path)-1; i++ {
		switch v.Visit(path[:i+1].Copy()) {
		case Prune:
			return true
		case Abort:
			return false
		}
		world = world.Mul4(path[i].Transform)
	}

	return walk(path.Copy(), world, v)
}

func walk(path Path, parent mgl64.Mat4, v Visitor) bool {
	switch v.Visit(path) {
	case Prune:
		return true
	case Abort:
		return false
	}

	node := path.Tail()
	world := parent.Mul4(node.Transform)

	if node.Geometry() != nil {
		v.Shape(path.Copy(), geometry.NewXfBox(node.Bounds(), world))
	}

	for _, child := range node.Children() {
		if !walk(append(path[:len(path):len(path)], child), world, v) {
			return false
		}
	}

	return true
}
