package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/scene"
)

// parseTestDoc runs the parse stages over an already built document with
// preloaded buffers, the way load does after all fetches settle.
func parseTestDoc(doc *document.Document, reg *scene.ShaderRegistry, buffers map[string][]byte) *scene.Library {
	if reg == nil {
		reg = scene.DefaultShaderRegistry()
	}
	store := NewBufferStore(nil, nil)
	for name, data := range buffers {
		store.Preload(name, data)
	}
	l := &Loader{Registry: reg}
	return l.parse(doc, store, true)
}

type rawAccessor struct {
	data  []byte
	ctype uint32
	shape string
	count uint32
}

// docWithAccessors builds a document skeleton where every accessor owns
// its own buffer and a view spanning it whole.
func docWithAccessors(accs map[string]rawAccessor) (*document.Document, map[string][]byte) {
	doc := &document.Document{
		Name:        "test",
		Accessors:   make(map[string]*document.Accessor),
		BufferViews: make(map[string]*document.BufferView),
	}
	buffers := make(map[string][]byte)
	for name, a := range accs {
		doc.Accessors[name] = &document.Accessor{
			BufferView:    name,
			ComponentType: a.ctype,
			Type:          document.AccessorType{Shape: a.shape},
			Count:         a.count,
		}
		doc.BufferViews[name] = &document.BufferView{Buffer: name, ByteLength: uint32(len(a.data))}
		buffers[name] = a.data
	}
	return doc, buffers
}

func findNode(lib *scene.Library, name string) *scene.Node {
	for _, n := range lib.Graph.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// triangleGLTF builds a one-triangle document whose single buffer is
// referenced through the given uri spelling. The buffer also carries a
// two-key translation track targeting the root node.
func triangleGLTF(bufferURI string) []byte {
	return []byte(fmt.Sprintf(`{
	"asset": {"version": "1.0"},
	"scene": "main",
	"scenes": {"main": {"nodes": ["root"]}},
	"nodes": {"root": {"name": "root", "meshes": ["tri"]}},
	"meshes": {"tri": {"primitives": [
		{"attributes": {"POSITION": "acc_pos"}, "indices": "acc_idx", "material": "mat"}
	]}},
	"materials": {"mat": {"technique": "tech", "values": {"shininess": 90.51}}},
	"techniques": {"tech": {"program": "phong"}},
	"accessors": {
		"acc_pos": {"bufferView": "bv_pos", "componentType": 5126, "type": "VEC3", "count": 3,
			"min": [0, 0, 0], "max": [1, 1, 0]},
		"acc_idx": {"bufferView": "bv_idx", "componentType": 5123, "type": "SCALAR", "count": 3},
		"acc_time": {"bufferView": "bv_time", "componentType": 5126, "type": "SCALAR", "count": 2},
		"acc_trans": {"bufferView": "bv_trans", "componentType": 5126, "type": "VEC3", "count": 2}
	},
	"bufferViews": {
		"bv_pos": {"buffer": "bin", "byteOffset": 0, "byteLength": 36},
		"bv_idx": {"buffer": "bin", "byteOffset": 36, "byteLength": 6},
		"bv_time": {"buffer": "bin", "byteOffset": 42, "byteLength": 8},
		"bv_trans": {"buffer": "bin", "byteOffset": 50, "byteLength": 24}
	},
	"buffers": {"bin": {"uri": %q, "byteLength": 74}},
	"animations": {"slide": {
		"channels": [{"target": {"id": "root"}}],
		"parameters": {"TIME": "acc_time", "translation": "acc_trans"}
	}}
}`, bufferURI))
}

func triangleBIN() []byte {
	var bin bytes.Buffer
	binary.Write(&bin, binary.LittleEndian, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	binary.Write(&bin, binary.LittleEndian, []uint16{0, 1, 2})
	binary.Write(&bin, binary.LittleEndian, []float32{0, 2})
	binary.Write(&bin, binary.LittleEndian, []float32{0, 0, 0, 5, 0, 0})
	return bin.Bytes()
}

func triangleDataURI() string {
	return "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(triangleBIN())
}

func TestLoadDataURI(t *testing.T) {
	src := &memSource{files: map[string][]byte{"model/scene.gltf": triangleGLTF(triangleDataURI())}}

	l := New(src, nil)
	progressed, succeeded := false, false
	l.Events.OnProgress = func(p float32) {
		if p < 0 || p > 100 {
			t.Errorf("progress %v out of range", p)
		}
		progressed = true
	}
	l.Events.OnError = func(err error) { t.Errorf("unexpected load error: %v", err) }
	l.Events.OnSuccess = func(*scene.Library) { succeeded = true }

	lib, err := l.Load(context.Background(), "model/scene.gltf")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !progressed || !succeeded {
		t.Errorf("events progressed=%v succeeded=%v; expected both", progressed, succeeded)
	}
	if lib.Name != "model/scene.gltf" {
		t.Errorf("library name %q; expected the document name", lib.Name)
	}

	m := lib.Meshes["tri"]
	if m == nil {
		t.Fatalf("mesh %q was not built", "tri")
	}
	g := m.Geometry
	if len(g.Positions) != 3 || g.Positions[1] != ([3]float32{1, 0, 0}) {
		t.Errorf("positions %v; expected 3 decoded vertices", g.Positions)
	}
	if len(g.Indices) != 3 || g.IndexBits != 16 {
		t.Errorf("indices %v bits %v; expected 3 indices in 16 bit width", g.Indices, g.IndexBits)
	}
	if !g.HasBounds || g.BBoxMax != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("bounds %v..%v present=%v; expected declared min/max", g.BBoxMin, g.BBoxMax, g.HasBounds)
	}
	if m.Material == nil || m.Material.Program != "phong" {
		t.Fatalf("material %+v; expected the phong technique program", m.Material)
	}
	if gl := m.Material.Glossiness; gl < 0.499 || gl > 0.501 {
		t.Errorf("Glossiness=%v; expected 0.5 for shininess 90.51", gl)
	}

	root := lib.Graph.Node(lib.Root)
	if root == nil || len(root.Children) != 1 {
		t.Fatalf("library root has %+v; expected one scene node", root)
	}
	n := lib.Graph.Node(root.Children[0])
	if n.Kind != scene.NODE_KIND_MESH || len(n.Meshes) != 1 || n.Meshes[0] != m {
		t.Errorf("scene node kind=%v meshes=%v; expected the triangle mesh", n.Kind, n.Meshes)
	}

	if lib.Animation == nil || len(lib.Animation.Clips) != 1 {
		t.Fatalf("composite animation %+v; expected one clip", lib.Animation)
	}
	if lib.Animation.Duration != 2000 {
		t.Errorf("animation duration %v; expected 2000 ms", lib.Animation.Duration)
	}
}

func TestLoadExternalBuffer(t *testing.T) {
	src := &memSource{files: map[string][]byte{
		"model/scene.gltf": triangleGLTF("mesh.bin"),
		"model/mesh.bin":   triangleBIN(),
	}}
	l := New(src, nil)
	l.Events.OnError = func(err error) { t.Errorf("unexpected load error: %v", err) }

	lib, err := l.Load(context.Background(), "model/scene.gltf")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m := lib.Meshes["tri"]; m == nil || len(m.Geometry.Positions) != 3 {
		t.Errorf("external buffer positions were not decoded")
	}
	if lib.Animation == nil {
		t.Errorf("full load dropped the animation")
	}
}

func TestLoadSyncSkipsExternal(t *testing.T) {
	src := &memSource{files: map[string][]byte{
		"model/scene.gltf": triangleGLTF("mesh.bin"),
		"model/mesh.bin":   triangleBIN(),
	}}
	l := New(src, nil)

	lib, err := l.LoadSync(context.Background(), "model/scene.gltf")
	if err != nil {
		t.Fatalf("LoadSync failed: %v", err)
	}
	m := lib.Meshes["tri"]
	if m == nil {
		t.Fatalf("mesh %q was not built", "tri")
	}
	if m.Geometry.Positions != nil {
		t.Errorf("sync load fetched an external buffer")
	}
	if lib.Animation != nil {
		t.Errorf("sync load parsed animations")
	}
}

func TestLoadMissingBufferDegrades(t *testing.T) {
	src := &memSource{files: map[string][]byte{"model/scene.gltf": triangleGLTF("gone.bin")}}
	l := New(src, nil)
	var reported error
	l.Events.OnError = func(err error) { reported = err }

	lib, err := l.Load(context.Background(), "model/scene.gltf")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if reported == nil {
		t.Errorf("missing buffer fetch was not reported")
	}
	m := lib.Meshes["tri"]
	if m == nil {
		t.Fatalf("degraded load dropped the mesh")
	}
	if m.Geometry.Positions != nil {
		t.Errorf("positions %v; expected none without the buffer", m.Geometry.Positions)
	}
}

func TestLoadMissingDocument(t *testing.T) {
	l := New(&memSource{files: map[string][]byte{}}, nil)
	var reported error
	l.Events.OnError = func(err error) { reported = err }

	if _, err := l.Load(context.Background(), "nope.gltf"); err == nil {
		t.Fatalf("Load of a missing document succeeded")
	}
	if reported == nil {
		t.Errorf("OnError did not fire for a missing document")
	}
}

func TestLoadData(t *testing.T) {
	l := New(nil, nil)
	lib, err := l.LoadData(context.Background(), "upload.gltf", triangleGLTF(triangleDataURI()))
	if err != nil {
		t.Fatalf("LoadData failed: %v", err)
	}
	if lib.Name != "upload.gltf" {
		t.Errorf("library name %q; expected %q", lib.Name, "upload.gltf")
	}
	if m := lib.Meshes["tri"]; m == nil || len(m.Geometry.Positions) != 3 {
		t.Errorf("uploaded document mesh was not decoded")
	}
}

func TestLoadContainer(t *testing.T) {
	jsonChunk := bytes.Replace(triangleGLTF(""), []byte(`"bin"`), []byte(`"binary_glTF"`), -1)
	body := triangleBIN()

	var raw bytes.Buffer
	w := func(v uint32) { binary.Write(&raw, binary.LittleEndian, v) }
	w(document.CONTAINER_MAGIC)
	w(1)
	w(uint32(12 + 8 + len(jsonChunk) + 8 + len(body)))
	w(uint32(len(jsonChunk)))
	w(document.CONTAINER_CHUNK_JSON)
	raw.Write(jsonChunk)
	w(uint32(len(body)))
	w(document.CONTAINER_CHUNK_BIN)
	raw.Write(body)

	src := &memSource{files: map[string][]byte{"scene.glb": raw.Bytes()}}
	l := New(src, nil)
	l.Events.OnError = func(err error) { t.Errorf("unexpected load error: %v", err) }

	lib, err := l.Load(context.Background(), "scene.glb")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if m := lib.Meshes["tri"]; m == nil || len(m.Geometry.Positions) != 3 {
		t.Errorf("embedded container body was not used for attribute data")
	}
}
