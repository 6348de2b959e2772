package loader

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/scene"
)

func TestBuildGraphHierarchy(t *testing.T) {
	doc := &document.Document{
		Name:   "g",
		Scene:  "main",
		Scenes: map[string]*document.Scene{"main": {Nodes: []string{"top"}}},
		Nodes: map[string]*document.Node{
			"top":   {Children: []string{"child", "missing"}},
			"child": {Translation: []float32{1, 2, 3}},
			"loose": {},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	root := lib.Graph.Node(lib.Root)
	if root == nil || root.Name != "main" {
		t.Fatalf("library root %+v; expected a synthetic node named after the scene", root)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root has %v children; expected only the scene's nodes", len(root.Children))
	}
	top := lib.Graph.Node(root.Children[0])
	if top.Name != "top" || len(top.Children) != 1 {
		t.Fatalf("node %q has %v children; the missing child should be skipped", top.Name, len(top.Children))
	}
	child := lib.Graph.Node(top.Children[0])
	if child.Name != "child" || child.Translation != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("child %q translation %v; expected {1 2 3}", child.Name, child.Translation)
	}
	if loose := findNode(lib, "loose"); loose == nil || loose.Parent != scene.NODE_INVALID {
		t.Errorf("node outside the scene should stay unattached, got %+v", loose)
	}
}

func TestBuildGraphDuplicateChildClaim(t *testing.T) {
	doc := &document.Document{
		Name: "g",
		Nodes: map[string]*document.Node{
			"aparent": {Children: []string{"shared"}},
			"bparent": {Children: []string{"shared"}},
			"shared":  {},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	shared := findNode(lib, "shared")
	if shared == nil {
		t.Fatal("node \"shared\" missing")
	}
	winner := lib.Graph.Node(shared.Parent)
	if winner == nil || winner.Name != "bparent" {
		t.Fatalf("shared child bound to %+v; expected the later claim to win", winner)
	}
	if loser := findNode(lib, "aparent"); len(loser.Children) != 0 {
		t.Errorf("earlier parent kept children %v; expected the edge to move", loser.Children)
	}
	if len(winner.Children) != 1 || winner.Children[0] != shared.ID {
		t.Errorf("winner children %v; expected [%v]", winner.Children, shared.ID)
	}
}

func TestBuildGraphWithoutScene(t *testing.T) {
	doc := &document.Document{
		Name: "g",
		Nodes: map[string]*document.Node{
			"a": {Children: []string{"b"}},
			"b": {},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	root := lib.Graph.Node(lib.Root)
	if root.Name != "g" {
		t.Errorf("root name %q; expected the document name fallback", root.Name)
	}
	if len(root.Children) != 1 {
		t.Fatalf("root has %v children; expected only parentless nodes", len(root.Children))
	}
	if a := lib.Graph.Node(root.Children[0]); a.Name != "a" {
		t.Errorf("rooted node %q; expected %q", a.Name, "a")
	}
}

func TestNodeMatrixTransform(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))
	doc := &document.Document{
		Name: "g",
		Nodes: map[string]*document.Node{
			"n": {Matrix: m[:], Translation: []float32{9, 9, 9}},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	n := findNode(lib, "n")
	if n == nil {
		t.Fatalf("node %q missing", "n")
	}
	if n.Translation != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("Translation=%v; expected the decomposed matrix to win", n.Translation)
	}
	if n.Scale != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("Scale=%v; expected {2 2 2}", n.Scale)
	}
}

func TestNodeAxisAngleRotation(t *testing.T) {
	doc := &document.Document{
		Name: "g",
		Nodes: map[string]*document.Node{
			"n": {Rotation: []float32{0, 0, 1, math.Pi}},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	n := findNode(lib, "n")
	q := n.Rotation
	if q.W > 1e-5 || q.W < -1e-5 {
		t.Errorf("Rotation.W=%v; expected 0 for a half turn", q.W)
	}
	if z := q.V[2]; z < 0.99999 || z > 1.00001 {
		t.Errorf("Rotation axis=%v; expected z", q.V)
	}
}

func TestNodeVariantPrecedence(t *testing.T) {
	doc := &document.Document{
		Name: "g",
		Cameras: map[string]*document.Camera{
			"cam": {Type: "perspective", Perspective: &document.Perspective{YFov: 0.8}},
		},
		Lights: map[string]*document.Light{"sun": {Type: "directional"}},
		Meshes: map[string]*document.Mesh{"tri": {Primitives: []*document.Primitive{{}}}},
		Nodes: map[string]*document.Node{
			"n": {Camera: "cam", Lights: []string{"sun"}, Meshes: []string{"tri"}},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	n := findNode(lib, "n")
	if n.Kind != scene.NODE_KIND_CAMERA {
		t.Errorf("Kind=%v; expected the camera variant to win", n.Kind)
	}
	if n.Camera == nil || !n.Camera.Perspective || n.Camera.YFov != 0.8 {
		t.Errorf("Camera=%+v; expected the perspective entry", n.Camera)
	}
	if n.Light != nil || len(n.Meshes) != 0 {
		t.Errorf("Light=%v Meshes=%v; expected lower precedence payloads dropped", n.Light, n.Meshes)
	}
}

func TestNodeMultiLight(t *testing.T) {
	doc := &document.Document{
		Name: "g",
		Lights: map[string]*document.Light{
			"l1": {Type: "point"},
			"l2": {Type: "spot"},
		},
		Nodes: map[string]*document.Node{
			"n": {Lights: []string{"l1", "l2"}},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	n := findNode(lib, "n")
	if n.Kind != scene.NODE_KIND_TRANSFORM {
		t.Errorf("Kind=%v; expected a plain carrier above the spread lights", n.Kind)
	}
	if len(n.Children) != 2 {
		t.Fatalf("carrier has %v children; expected one per light", len(n.Children))
	}
	for _, cid := range n.Children {
		c := lib.Graph.Node(cid)
		if c.Kind != scene.NODE_KIND_LIGHT || c.Light == nil {
			t.Errorf("spread child %+v; expected a light node", c)
		}
	}
}

func TestNodeMultiMesh(t *testing.T) {
	doc := &document.Document{
		Name: "g",
		Meshes: map[string]*document.Mesh{
			"multi": {Primitives: []*document.Primitive{{}, {}}},
		},
		Nodes: map[string]*document.Node{
			"n": {Meshes: []string{"multi"}},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	n := findNode(lib, "n")
	if n.Kind != scene.NODE_KIND_TRANSFORM || len(n.Meshes) != 0 {
		t.Errorf("carrier kind=%v meshes=%v; expected payloads spread to children", n.Kind, n.Meshes)
	}
	if len(n.Children) != 2 {
		t.Fatalf("carrier has %v children; expected 2", len(n.Children))
	}
	names := map[string]bool{}
	for _, cid := range n.Children {
		c := lib.Graph.Node(cid)
		if c.Kind != scene.NODE_KIND_MESH || len(c.Meshes) != 1 {
			t.Errorf("spread child %+v; expected a single mesh node", c)
		}
		names[c.Name] = true
	}
	if !names["multi-0"] || !names["multi-1"] {
		t.Errorf("spread children named %v; expected the primitive names", names)
	}
}

func TestCameraKinds(t *testing.T) {
	doc := &document.Document{
		Name: "g",
		Cameras: map[string]*document.Camera{
			"o":   {Type: "orthographic", Orthographic: &document.Ortho{XMag: 2, YMag: 2}},
			"bad": {Type: "panini"},
		},
		Nodes: map[string]*document.Node{
			"n": {Camera: "bad"},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	o := lib.Cameras["o"]
	if o == nil || o.Perspective || o.XMag != 2 {
		t.Errorf("Cameras[%q]=%+v; expected an orthographic entry", "o", o)
	}
	if lib.Cameras["bad"] != nil {
		t.Errorf("unsupported projection kind was kept: %+v", lib.Cameras["bad"])
	}
	if n := findNode(lib, "n"); n.Kind != scene.NODE_KIND_TRANSFORM {
		t.Errorf("node with an unusable camera has kind %v; expected a plain transform", n.Kind)
	}
}

func TestLightDefaults(t *testing.T) {
	doc := &document.Document{
		Name: "g",
		Lights: map[string]*document.Light{
			"p":     {Type: "point", Point: &document.LightParams{Color: []float32{1, 0, 0}}},
			"weird": {Type: "volumetric"},
		},
		Nodes: map[string]*document.Node{
			"n": {Lights: []string{"p"}},
			"w": {Lights: []string{"weird"}},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	n := findNode(lib, "n")
	if n.Kind != scene.NODE_KIND_LIGHT || n.Light == nil {
		t.Fatalf("node %+v; expected a light payload", n)
	}
	l := n.Light
	if l.Type != scene.LIGHT_POINT || l.Color != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("light type=%v color=%v; expected point red", l.Type, l.Color)
	}
	if l.Intensity != 1 || l.ConstantAttenuation != 1 {
		t.Errorf("intensity=%v attenuation=%v; expected the defaults", l.Intensity, l.ConstantAttenuation)
	}
	if w := findNode(lib, "w"); w.Kind != scene.NODE_KIND_TRANSFORM {
		t.Errorf("node with an unknown light kind has kind %v; expected a plain transform", w.Kind)
	}
}
