package loader

import (
	"log"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/scene"
)

// meshNodeRef remembers which arena node carries which document mesh, so
// skin instancing can find the nodes to mark.
type meshNodeRef struct {
	node scene.NodeID
	mesh string
}

// bindSkeletons builds one skeleton per referenced skin and binds it to
// the mesh nodes each instancing node carries. Skins referenced from
// several nodes share one skeleton instance.
func (s *parseState) bindSkeletons() {
	for _, nodeID := range sortedKeys(s.doc.Nodes) {
		dn := s.doc.Nodes[nodeID]
		if dn.InstanceSkin == nil {
			continue
		}
		is := dn.InstanceSkin
		dskin, ok := s.doc.Skins[is.Skin]
		if !ok {
			log.Printf("Node %q instances missing skin %q", nodeID, is.Skin)
			continue
		}
		skel, ok := s.skeletons[is.Skin]
		if !ok {
			skel = s.buildSkeleton(is.Skin, dskin, is)
			s.skeletons[is.Skin] = skel
			s.lib.Skeletons[is.Skin] = skel
		}

		skinMeshes := make(map[string]bool, len(is.Meshes))
		for _, mid := range is.Meshes {
			skinMeshes[mid] = true
		}
		jointIndices := make([]int, len(dskin.Joints))
		for i := range jointIndices {
			jointIndices[i] = i
		}

		for _, ref := range s.meshNodes[nodeID] {
			if len(skinMeshes) != 0 && !skinMeshes[ref.mesh] {
				continue
			}
			n := s.lib.Graph.Node(ref.node)
			n.Skeleton = skel
			n.JointIndices = jointIndices
			// a skinned mesh needs its own material instance sized to
			// the skin's joint count
			for _, m := range n.Meshes {
				m.Material = m.Material.CloneForSkin(len(dskin.Joints))
			}
		}
	}

	for _, skinID := range sortedKeys(s.skeletons) {
		s.skeletons[skinID].UpdateSkinMatrices(s.lib.Graph)
	}
}

// buildSkeleton creates the joint list for one skin: declared joints
// first, in skin order, then a depth-first walk from every declared
// skeleton root binds them to nodes by joint id. Nodes inside the walked
// subtrees without a declared joint become non-deforming filler joints so
// parent chains stay connected.
func (s *parseState) buildSkeleton(skinID string, dskin *document.Skin, is *document.InstanceSkin) *scene.Skeleton {
	name := dskin.Name
	if name == "" {
		name = skinID
	}
	skel := &scene.Skeleton{Name: name}
	for _, jointID := range dskin.Joints {
		skel.AddJoint(&scene.Joint{
			ParentIndex: -1,
			JointID:     jointID,
			Node:        scene.NODE_INVALID,
			Root:        scene.NODE_INVALID,
			Deforming:   true,
		})
	}

	if dskin.InverseBindMatrices != "" {
		skel.InverseBind = s.dec.Mat4s(dskin.InverseBindMatrices)
		if skel.InverseBind != nil && len(skel.InverseBind) < len(dskin.Joints)*16 {
			log.Printf("Skin %q inverse-bind data covers %v joints, %v declared",
				skinID, len(skel.InverseBind)/16, len(dskin.Joints))
		}
	}

	for _, rootID := range is.Skeletons {
		rootNID, ok := s.nodesByID[rootID]
		if !ok {
			log.Printf("Skin %q declares missing skeleton root %q", skinID, rootID)
			continue
		}
		s.walkJoints(skel, rootNID, rootNID, -1)
	}
	skel.RecomputeRoots()

	for _, j := range skel.Joints {
		if j.Deforming && j.Node == scene.NODE_INVALID {
			log.Printf("Skin %q joint %q matched no node", skinID, j.JointID)
		}
	}
	return skel
}

func (s *parseState) walkJoints(skel *scene.Skeleton, rootNID, nid scene.NodeID, parentIndex int) {
	n := s.lib.Graph.Node(nid)
	if n == nil {
		return
	}

	var bound *scene.Joint
	if n.JointID != "" {
		if j := skel.JointByID(n.JointID); j != nil && j.Node == scene.NODE_INVALID {
			bound = j
		}
	}
	if bound != nil {
		bound.Node = nid
		bound.Name = n.Name
		bound.ParentIndex = parentIndex
		bound.Root = rootNID
	} else {
		bound = skel.AddJoint(&scene.Joint{
			ParentIndex: parentIndex,
			Name:        n.Name,
			JointID:     n.JointID,
			Node:        nid,
			Root:        rootNID,
			Deforming:   false,
		})
	}
	if n.Kind == scene.NODE_KIND_TRANSFORM {
		n.Kind = scene.NODE_KIND_JOINT
	}

	for _, c := range n.Children {
		s.walkJoints(skel, rootNID, c, bound.Index)
	}
}
