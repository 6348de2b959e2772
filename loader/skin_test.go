package loader

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/scene"
)

// skinDoc builds a two-joint skeleton under a plain armature node, with
// one skinned triangle instanced from a separate body node.
func skinDoc() (*document.Document, map[string][]byte) {
	ident := mgl32.Ident4()
	var ibm []float32
	ibm = append(ibm, ident[:]...)
	ibm = append(ibm, ident[:]...)

	doc, buffers := docWithAccessors(map[string]rawAccessor{
		"pos": {f32bytes(0, 0, 0, 1, 0, 0, 0, 1, 0), document.GL_FLOAT, document.SHAPE_VEC3, 3},
		"ibm": {f32bytes(ibm...), document.GL_FLOAT, document.SHAPE_MAT4, 2},
	})
	doc.Name = "s"
	doc.Nodes = map[string]*document.Node{
		"armature": {Children: []string{"hip"}},
		"hip":      {JointID: "J_hip", Children: []string{"knee"}, Translation: []float32{0, 1, 0}},
		"knee":     {JointID: "J_knee"},
		"body": {InstanceSkin: &document.InstanceSkin{
			Skin:      "skin",
			Skeletons: []string{"armature"},
			Meshes:    []string{"tri"},
		}},
	}
	doc.Meshes = map[string]*document.Mesh{
		"tri": {Primitives: []*document.Primitive{{
			Attributes: map[string]string{"POSITION": "pos"},
		}}},
	}
	doc.Skins = map[string]*document.Skin{
		"skin": {Joints: []string{"J_hip", "J_knee"}, InverseBindMatrices: "ibm"},
	}
	return doc, buffers
}

func TestBindSkeleton(t *testing.T) {
	doc, buffers := skinDoc()
	lib := parseTestDoc(doc, nil, buffers)

	skel := lib.Skeletons["skin"]
	if skel == nil {
		t.Fatalf("skeleton %q was not built", "skin")
	}
	// 2 declared joints plus the armature filler
	if len(skel.Joints) != 3 {
		t.Fatalf("skeleton has %v joints; expected 3", len(skel.Joints))
	}

	hip := skel.Joints[0]
	if hip.JointID != "J_hip" || !hip.Deforming || hip.Index != 0 {
		t.Errorf("joint 0 = %+v; expected the first declared joint", hip)
	}
	if hip.Node == scene.NODE_INVALID || lib.Graph.Node(hip.Node).Name != "hip" {
		t.Errorf("joint %q bound to %v; expected the hip node", hip.JointID, hip.Node)
	}
	if hip.ParentIndex != 2 {
		t.Errorf("joint %q parent=%v; expected the armature filler joint", hip.JointID, hip.ParentIndex)
	}
	if knee := skel.Joints[1]; knee.ParentIndex != 0 {
		t.Errorf("joint %q parent=%v; expected joint 0", knee.JointID, knee.ParentIndex)
	}

	filler := skel.Joints[2]
	if filler.Deforming {
		t.Errorf("filler joint %+v; expected non-deforming", filler)
	}
	if filler.Name != "armature" || filler.ParentIndex != -1 {
		t.Errorf("filler joint %+v; expected the armature root", filler)
	}
	if len(skel.Roots) != 1 || skel.Roots[0] != 2 {
		t.Errorf("Roots=%v; expected only the filler root", skel.Roots)
	}

	if len(skel.InverseBind) != 32 {
		t.Errorf("InverseBind has %v floats; expected 2 matrices", len(skel.InverseBind))
	}
	if len(skel.SkinMatrices) != 48 {
		t.Errorf("SkinMatrices has %v floats; expected one matrix per joint", len(skel.SkinMatrices))
	}
}

func TestBindSkeletonMarksJointNodes(t *testing.T) {
	doc, buffers := skinDoc()
	lib := parseTestDoc(doc, nil, buffers)

	for _, name := range []string{"armature", "hip", "knee"} {
		n := findNode(lib, name)
		if n == nil {
			t.Fatalf("node %q missing", name)
		}
		if n.Kind != scene.NODE_KIND_JOINT {
			t.Errorf("node %q kind=%v; expected joint after binding", name, n.Kind)
		}
	}
}

func TestBindSkeletonInstancesMesh(t *testing.T) {
	doc, buffers := skinDoc()
	lib := parseTestDoc(doc, nil, buffers)

	body := findNode(lib, "body")
	if body == nil || body.Kind != scene.NODE_KIND_MESH {
		t.Fatalf("body node %+v; expected a mesh payload from instanceSkin", body)
	}
	if body.Skeleton == nil || body.Skeleton != lib.Skeletons["skin"] {
		t.Errorf("body skeleton %+v; expected the shared skin skeleton", body.Skeleton)
	}
	if len(body.JointIndices) != 2 {
		t.Errorf("JointIndices=%v; expected the declared joint range", body.JointIndices)
	}
	if len(body.Meshes) != 1 {
		t.Fatalf("body carries %v meshes; expected 1", len(body.Meshes))
	}
	mat := body.Meshes[0].Material
	if mat.JointCount != 2 {
		t.Errorf("skinned material JointCount=%v; expected 2", mat.JointCount)
	}
	if body.Meshes[0] != lib.Meshes["tri"] {
		t.Errorf("instanced node carries a different mesh than the library table")
	}
}

func TestBindSkeletonSharedAcrossNodes(t *testing.T) {
	doc, buffers := skinDoc()
	doc.Nodes["body2"] = &document.Node{InstanceSkin: &document.InstanceSkin{
		Skin:      "skin",
		Skeletons: []string{"armature"},
		Meshes:    []string{"tri"},
	}}
	lib := parseTestDoc(doc, nil, buffers)

	a, b := findNode(lib, "body"), findNode(lib, "body2")
	if a == nil || b == nil || a.Skeleton == nil {
		t.Fatalf("instancing nodes missing skeletons")
	}
	if a.Skeleton != b.Skeleton {
		t.Errorf("two instances of one skin built separate skeletons")
	}
	if len(lib.Skeletons) != 1 {
		t.Errorf("library has %v skeletons; expected 1", len(lib.Skeletons))
	}
}

func TestBindSkeletonMissingSkin(t *testing.T) {
	doc, buffers := skinDoc()
	doc.Nodes["ghost"] = &document.Node{InstanceSkin: &document.InstanceSkin{Skin: "nope"}}
	lib := parseTestDoc(doc, nil, buffers)

	if _, ok := lib.Skeletons["nope"]; ok {
		t.Errorf("missing skin produced a skeleton")
	}
	if n := findNode(lib, "ghost"); n == nil || n.Skeleton != nil {
		t.Errorf("ghost node %+v; expected no skeleton binding", n)
	}
}
