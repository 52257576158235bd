// Package scene is a small scene graph: named nodes carrying a capability
// Kind, a local transform, children and optional triangle geometry.
package scene

import (
	"github.com/akmonengine/overlap/geometry"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Kind tags what a node is, so traversal rules can enable or disable whole
// categories of nodes.
type Kind int

const (
	KindGroup Kind = iota
	KindShape
	KindDragger
	KindManipulator
	KindAnnotation
)

var kindNames = map[Kind]string{
	KindGroup:       "group",
	KindShape:       "shape",
	KindDragger:     "dragger",
	KindManipulator: "manipulator",
	KindAnnotation:  "annotation",
}

// ErrUnknownKind is returned by ParseKind for unsupported names
var ErrUnknownKind = errors.New("scene: unknown node kind")

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps the names returned by Kind.String back to a Kind
func ParseKind(name string) (Kind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, ErrUnknownKind
}

// Node is an element of the scene tree
type Node struct {
	Name      string
	Kind      Kind
	Transform mgl64.Mat4

	children []*Node
	geometry TriangleSource
	bounds   *geometry.AABB
}

// NewNode creates a node with an identity transform
func NewNode(name string, kind Kind) *Node {
	return &Node{
		Name:      name,
		Kind:      kind,
		Transform: mgl64.Ident4(),
	}
}

// NewShape creates a shape node holding source
func NewShape(name string, source TriangleSource) *Node {
	n := NewNode(name, KindShape)
	n.SetGeometry(source)
	return n
}

// AddChild appends children and returns n for chaining
func (n *Node) AddChild(children ...*Node) *Node {
	n.children = append(n.children, children...)
	return n
}

// Children returns the direct children in order
func (n *Node) Children() []*Node {
	return n.children
}

// SetTransform replaces the local transform and returns n for chaining
func (n *Node) SetTransform(m mgl64.Mat4) *Node {
	n.Transform = m
	return n
}

// Geometry returns the triangle source, or nil
func (n *Node) Geometry() TriangleSource {
	return n.geometry
}

// SetGeometry replaces the triangle source and drops the cached bounds
func (n *Node) SetGeometry(source TriangleSource) {
	n.geometry = source
	n.bounds = nil
}

// Bounds returns the local box of the node geometry, computed once. Nodes
// without geometry return an empty box.
func (n *Node) Bounds() geometry.AABB {
	if n.bounds == nil {
		box := geometry.EmptyAABB()
		if n.geometry != nil {
			box = n.geometry.Bounds()
		}
		n.bounds = &box
	}
	return *n.bounds
}
