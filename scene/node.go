package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type NodeID int

const NODE_INVALID NodeID = -1

type NodeKind int

const (
	NODE_KIND_TRANSFORM NodeKind = iota
	NODE_KIND_CAMERA
	NODE_KIND_LIGHT
	NODE_KIND_MESH
	NODE_KIND_JOINT
)

func (k NodeKind) String() string {
	switch k {
	case NODE_KIND_TRANSFORM:
		return "transform"
	case NODE_KIND_CAMERA:
		return "camera"
	case NODE_KIND_LIGHT:
		return "light"
	case NODE_KIND_MESH:
		return "mesh"
	case NODE_KIND_JOINT:
		return "joint"
	default:
		return "unknown"
	}
}

// Node is one element of a scene graph. The variant payload is picked once
// at construction: exactly one of Camera/Light/Meshes is meaningful,
// according to Kind. Parent is a weak back-pointer for traversal; the
// Children list is the owning edge.
type Node struct {
	ID       NodeID
	Name     string
	JointID  string
	Parent   NodeID
	Children []NodeID

	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3

	Kind   NodeKind
	Camera *Camera
	Light  *Light
	Meshes []*Mesh

	// skinning marks set after binding
	Skeleton     *Skeleton
	JointIndices []int
}

func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2])
	r := n.Rotation.Mat4()
	s := mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2])
	return t.Mul4(r).Mul4(s)
}

// Graph is an owning arena of nodes addressed by stable ids.
type Graph struct {
	Nodes []*Node
}

func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) NewNode(name string) *Node {
	n := &Node{
		ID:       NodeID(len(g.Nodes)),
		Name:     name,
		Parent:   NODE_INVALID,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Kind:     NODE_KIND_TRANSFORM,
	}
	g.Nodes = append(g.Nodes, n)
	return n
}

func (g *Graph) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(g.Nodes) {
		return nil
	}
	return g.Nodes[id]
}

// Attach links child under parent. A child already owned by another parent
// moves: the stale entry is dropped from the old parent's children so the
// children lists stay the only ownership edges.
func (g *Graph) Attach(parent, child NodeID) {
	p := g.Node(parent)
	c := g.Node(child)
	if p == nil || c == nil || parent == child {
		return
	}
	if c.Parent == parent {
		return
	}
	if old := g.Node(c.Parent); old != nil {
		for i, id := range old.Children {
			if id == child {
				old.Children = append(old.Children[:i], old.Children[i+1:]...)
				break
			}
		}
	}
	c.Parent = parent
	p.Children = append(p.Children, child)
}

// WorldMatrix composes local matrices root-to-node.
func (g *Graph) WorldMatrix(id NodeID) mgl32.Mat4 {
	n := g.Node(id)
	if n == nil {
		return mgl32.Ident4()
	}
	m := n.LocalMatrix()
	for p := g.Node(n.Parent); p != nil; p = g.Node(p.Parent) {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// Walk visits id and its subtree depth-first.
func (g *Graph) Walk(id NodeID, visit func(n *Node)) {
	n := g.Node(id)
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		g.Walk(c, visit)
	}
}
