package web

import (
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"log"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/loader"
	"github.com/mogaika/gltf_scene_browser/scene"
	"github.com/mogaika/gltf_scene_browser/status"
	"github.com/mogaika/gltf_scene_browser/utils"
	"github.com/mogaika/gltf_scene_browser/utils/fbxbuilder"
	"github.com/mogaika/gltf_scene_browser/utils/gltfutils"
	"github.com/mogaika/gltf_scene_browser/webutils"
)

var libLock sync.Mutex
var libraries = make(map[string]*scene.Library)

var uploadNames utils.NameGenerator

func isDocumentName(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".gltf", ".glb", ".json":
		return true
	default:
		return false
	}
}

// newDocumentLoader wires load reporting into the status broadcast so
// connected clients follow the progress of the document by name.
func newDocumentLoader(name string) (*loader.Loader, *status.Scope) {
	st := status.ForDocument(name)
	l := loader.New(ServerSource, ServerRegistry)
	l.Events = loader.Events{
		OnProgress: func(p float32) { st.Progress(p, "Fetching buffers") },
		OnError:    func(err error) { st.Error("%v", err) },
	}
	return l, st
}

func getLibrary(ctx context.Context, name string) (*scene.Library, error) {
	libLock.Lock()
	lib, ok := libraries[name]
	libLock.Unlock()
	if ok {
		return lib, nil
	}

	l, st := newDocumentLoader(name)
	st.Info("Loading document %q", name)
	lib, err := l.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	st.Success("Loaded %q", name)

	libLock.Lock()
	libraries[name] = lib
	libLock.Unlock()
	return lib, nil
}

type AnimationView struct {
	Name     string
	Duration float32
	Loop     bool
	Tracks   []string
}

type DocumentView struct {
	Name      string
	Meshes    []string
	Materials []string
	Textures  []string
	Cameras   []string
	Skeletons []string
	Animation *AnimationView
}

func buildDocumentView(lib *scene.Library) *DocumentView {
	v := &DocumentView{
		Name:      lib.Name,
		Meshes:    sortedNames(lib.Meshes),
		Materials: sortedNames(lib.Materials),
		Textures:  sortedNames(lib.Textures),
		Cameras:   sortedNames(lib.Cameras),
		Skeletons: sortedNames(lib.Skeletons),
	}
	if lib.Animation != nil {
		av := &AnimationView{
			Name:     lib.Animation.Name,
			Duration: lib.Animation.Duration,
			Loop:     lib.Animation.Loop,
		}
		for _, c := range lib.Animation.Clips {
			av.Tracks = append(av.Tracks, c.Name)
		}
		v.Animation = av
	}
	return v
}

type NodeView struct {
	Name        string
	Kind        string
	JointID     string
	Translation [3]float32
	Rotation    [4]float32
	Scale       [3]float32
	Camera      *scene.Camera
	Light       *scene.Light
	Meshes      []string
	Skeleton    string
	Children    []*NodeView
}

func buildNodeView(lib *scene.Library, id scene.NodeID) *NodeView {
	n := lib.Graph.Node(id)
	if n == nil {
		return nil
	}
	v := &NodeView{
		Name:        n.Name,
		Kind:        n.Kind.String(),
		JointID:     n.JointID,
		Translation: n.Translation,
		Rotation:    [4]float32{n.Rotation.X(), n.Rotation.Y(), n.Rotation.Z(), n.Rotation.W},
		Scale:       n.Scale,
		Camera:      n.Camera,
		Light:       n.Light,
	}
	for _, m := range n.Meshes {
		v.Meshes = append(v.Meshes, m.Name)
	}
	if n.Skeleton != nil {
		v.Skeleton = n.Skeleton.Name
	}
	for _, c := range n.Children {
		if cv := buildNodeView(lib, c); cv != nil {
			v.Children = append(v.Children, cv)
		}
	}
	return v
}

type GeometryView struct {
	Name      string
	Material  string
	Positions [][3]float32
	Normals   [][3]float32
	UV0       [][2]float32
	UV1       [][2]float32
	Colors    [][4]float32
	Joints    [][4]uint16
	Weights   [][3]float32
	Tangents  [][4]float32
	Indices   []uint32
	BBoxMin   [3]float32
	BBoxMax   [3]float32
	HasBounds bool
}

func HandlerAjaxDocuments(w http.ResponseWriter, r *http.Request) {
	names := make(map[string]bool)
	if ServerSource != nil {
		if files, err := ServerSource.List(); err != nil {
			log.Printf("[web] Failed to list source: %v", err)
		} else {
			for _, f := range files {
				if isDocumentName(f) {
					names[f] = true
				}
			}
		}
	}
	// uploaded documents live only in the cache
	libLock.Lock()
	for name := range libraries {
		names[name] = true
	}
	libLock.Unlock()

	documents := make([]string, 0, len(names))
	for name := range names {
		documents = append(documents, name)
	}
	sort.Strings(documents)
	webutils.WriteJson(w, documents)
}

func HandlerAjaxDocument(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if lib, err := getLibrary(r.Context(), name); err != nil {
		log.Printf("Error loading document: %v", err)
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, buildDocumentView(lib))
	}
}

func HandlerAjaxDocumentTree(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if lib, err := getLibrary(r.Context(), name); err != nil {
		log.Printf("Error loading document: %v", err)
		webutils.WriteError(w, err)
	} else {
		webutils.WriteJson(w, buildNodeView(lib, lib.Root))
	}
}

func HandlerAjaxDocumentGeometry(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	meshName := mux.Vars(r)["mesh"]
	lib, err := getLibrary(r.Context(), name)
	if err != nil {
		log.Printf("Error loading document: %v", err)
		webutils.WriteError(w, err)
		return
	}
	mesh, ok := lib.Meshes[meshName]
	if !ok {
		webutils.WriteError(w, fmt.Errorf("Document %q does not contain mesh %q", name, meshName))
		return
	}
	g := mesh.Geometry
	v := &GeometryView{
		Name:      g.Name,
		Positions: g.Positions,
		Normals:   g.Normals,
		UV0:       g.UV0,
		UV1:       g.UV1,
		Colors:    g.Colors,
		Joints:    g.Joints,
		Weights:   g.Weights,
		Tangents:  g.Tangents,
		Indices:   g.Indices,
		BBoxMin:   g.BBoxMin,
		BBoxMax:   g.BBoxMax,
		HasBounds: g.HasBounds,
	}
	if mesh.Material != nil {
		v.Material = mesh.Material.Name
	}
	webutils.WriteJson(w, v)
}

func HandlerDumpDocumentGLTF(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	lib, err := getLibrary(r.Context(), name)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFileHeaders(w, path.Base(name)+".glb")
	if err := gltfutils.ExportBinary(w, lib.ExportGLTFDefault()); err != nil {
		log.Printf("Failed to encode gltf: %v", err)
	}
}

func HandlerDumpDocumentFBX(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	lib, err := getLibrary(r.Context(), name)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	f := lib.ExportFbxDefault()
	attachTextureImages(r.Context(), f, lib)

	var buf bytes.Buffer
	if err := f.WriteZip(&buf, path.Base(name)+".fbx"); err != nil {
		webutils.WriteError(w, fmt.Errorf("Failed to export %q as fbx: %v", name, err))
		return
	}
	webutils.WriteFile(w, bytes.NewReader(buf.Bytes()), path.Base(name)+".zip")
}

// attachTextureImages bundles the image files the document references so
// the exported archive is viewable without the original source tree.
func attachTextureImages(ctx context.Context, f *fbxbuilder.FBXBuilder, lib *scene.Library) {
	seen := make(map[string]bool)
	for _, name := range sortedNames(lib.Textures) {
		t := lib.Textures[name]
		if t == nil || t.Image == "" || seen[t.Image] {
			continue
		}
		seen[t.Image] = true

		if data, isData, err := document.DecodeDataURI(t.Image); isData {
			if err != nil {
				log.Printf("[web] Failed to decode image of texture %q: %v", name, err)
				continue
			}
			f.AddExportFile(path.Base(t.Name), data)
			continue
		}
		if ServerSource == nil {
			continue
		}
		rc, _, err := ServerSource.Open(ctx, t.Image)
		if err != nil {
			log.Printf("[web] Failed to fetch image %q: %v", t.Image, err)
			continue
		}
		data, err := ioutil.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Printf("[web] Failed to read image %q: %v", t.Image, err)
			continue
		}
		f.AddExportFile(path.Base(t.Image), data)
	}
}

func HandlerUploadDocument(w http.ResponseWriter, r *http.Request) {
	name, data, err := webutils.ReadFormFile(r, "data")
	if err != nil {
		webutils.WriteError(w, fmt.Errorf("File stream getting error: %v", err))
		return
	}
	if name == "" || name == "blob" {
		name = uploadNames.Next() + ".gltf"
	}

	l, st := newDocumentLoader(name)
	st.Info("Loading uploaded document %q", name)
	lib, err := l.LoadData(r.Context(), name, data)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	st.Success("Loaded %q", name)

	libLock.Lock()
	libraries[name] = lib
	libLock.Unlock()

	webutils.WriteJson(w, buildDocumentView(lib))
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func HandlerWebsocketStatus(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[web] Websocket upgrade error: %v", err)
		return
	}
	status.NewClient(conn)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
