package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Joint is one bone of a skeleton. Node points at the scene node that
// supplies its animated transform; ParentIndex forms a flat parent-pointer
// tree over the skeleton's joint list, -1 for roots. Deforming is false
// for joints synthesized to keep the hierarchy connected.
type Joint struct {
	Index       int
	ParentIndex int
	Name        string
	JointID     string
	Node        NodeID
	Root        NodeID
	Deforming   bool
}

// Skeleton owns its joints (joint.Index == list position) and two parallel
// arrays of 16 floats per joint: optional inverse-bind matrices sliced
// from the document buffer, and the derived skin matrices.
type Skeleton struct {
	Name   string
	Joints []*Joint
	Roots  []int

	InverseBind  []float32
	SkinMatrices []float32

	Clip *CompositeClip
}

func (s *Skeleton) JointByID(jointID string) *Joint {
	for _, j := range s.Joints {
		if j.JointID == jointID {
			return j
		}
	}
	return nil
}

// AddJoint appends a joint keeping the index == position invariant.
func (s *Skeleton) AddJoint(j *Joint) *Joint {
	j.Index = len(s.Joints)
	s.Joints = append(s.Joints, j)
	return j
}

// RecomputeRoots rebuilds the root list from the joints' parent indices.
// Only joints bound to a node count; declared but never matched joints are
// dangling, not roots.
func (s *Skeleton) RecomputeRoots() {
	s.Roots = s.Roots[:0]
	for _, j := range s.Joints {
		if j.ParentIndex < 0 && j.Node != NODE_INVALID {
			s.Roots = append(s.Roots, j.Index)
		}
	}
}

// InverseBindMatrix returns the sliced inverse-bind matrix of joint i,
// identity when the skin carries none.
func (s *Skeleton) InverseBindMatrix(i int) mgl32.Mat4 {
	if (i+1)*16 > len(s.InverseBind) {
		return mgl32.Ident4()
	}
	var m mgl32.Mat4
	copy(m[:], s.InverseBind[i*16:i*16+16])
	return m
}

// UpdateSkinMatrices recomputes the derived skin matrix array from the
// joints' current world transforms: world * inverseBind per joint, plain
// world when no inverse-bind data is present.
func (s *Skeleton) UpdateSkinMatrices(g *Graph) {
	if len(s.SkinMatrices) != len(s.Joints)*16 {
		s.SkinMatrices = make([]float32, len(s.Joints)*16)
	}
	for i, j := range s.Joints {
		world := mgl32.Ident4()
		if j.Node != NODE_INVALID {
			world = g.WorldMatrix(j.Node)
		}
		m := world
		if len(s.InverseBind) != 0 {
			m = world.Mul4(s.InverseBindMatrix(i))
		}
		copy(s.SkinMatrices[i*16:i*16+16], m[:])
	}
}
