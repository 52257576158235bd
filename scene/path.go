package scene

import "strings"

// Path is the chain of nodes from a root down to one node
type Path []*Node

// Tail returns the last node of the path, or nil for an empty path
func (p Path) Tail() *Node {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Copy returns a path that does not share storage with p
func (p Path) Copy() Path {
	return append(Path(nil), p...)
}

// Contains reports whether n is on the path
func (p Path) Contains(n *Node) bool {
	for _, node := range p {
		if node == n {
			return true
		}
	}
	return false
}

func (p Path) String() string {
	names := make([]string, len(p))
	for i, node := range p {
		names[i] = node.Name
	}
	return strings.Join(names, "/")
}
