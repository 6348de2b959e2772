package loader

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/scene"
	"github.com/mogaika/gltf_scene_browser/utils"
)

// buildGraph assembles the node arena in two passes: first every node is
// created with its transform and payload variant, then children are
// attached. The two passes make forward references between nodes legal.
func (s *parseState) buildGraph() {
	s.resolveCameras()

	for _, id := range sortedKeys(s.doc.Nodes) {
		dn := s.doc.Nodes[id]
		name := dn.Name
		if name == "" {
			name = id
		}
		n := s.lib.Graph.NewNode(name)
		n.JointID = dn.JointID
		s.nodesByID[id] = n.ID
		s.applyTransform(id, n, dn)
		s.applyVariant(id, n, dn)
	}

	for _, id := range sortedKeys(s.doc.Nodes) {
		pid := s.nodesByID[id]
		for _, childID := range s.doc.Nodes[id].Children {
			cid, ok := s.nodesByID[childID]
			if !ok {
				log.Printf("Node %q lists missing child %q", id, childID)
				continue
			}
			s.lib.Graph.Attach(pid, cid)
		}
	}

	s.attachSceneRoots()
}

// attachSceneRoots creates the synthetic library root and hangs the active
// scene's nodes under it. Documents without a usable scene entry fall back
// to rooting every parentless node.
func (s *parseState) attachSceneRoots() {
	rootName := s.doc.Scene
	if rootName == "" {
		rootName = s.doc.Name
	}
	root := s.lib.Graph.NewNode(rootName)
	s.lib.Root = root.ID

	sceneEntry := s.doc.Scenes[s.doc.Scene]
	if sceneEntry == nil {
		if len(s.doc.Nodes) != 0 {
			log.Printf("Document %q has no usable scene entry, rooting parentless nodes", s.doc.Name)
		}
		for _, id := range sortedKeys(s.doc.Nodes) {
			nid := s.nodesByID[id]
			if s.lib.Graph.Node(nid).Parent == scene.NODE_INVALID {
				s.lib.Graph.Attach(root.ID, nid)
			}
		}
		return
	}
	for _, id := range sceneEntry.Nodes {
		nid, ok := s.nodesByID[id]
		if !ok {
			log.Printf("Scene %q lists missing node %q", s.doc.Scene, id)
			continue
		}
		s.lib.Graph.Attach(root.ID, nid)
	}
}

// applyTransform fills the node's local transform. A matrix wins over any
// translation, rotation or scale declared next to it and is decomposed so
// the node always carries trs form.
func (s *parseState) applyTransform(docID string, n *scene.Node, dn *document.Node) {
	if len(dn.Matrix) != 0 {
		if len(dn.Matrix) != 16 {
			log.Printf("Node %q has a %v element matrix, ignoring", docID, len(dn.Matrix))
		} else {
			var m mgl32.Mat4
			copy(m[:], dn.Matrix)
			n.Translation, n.Rotation, n.Scale = utils.DecomposeMat4(m)
			return
		}
	}
	if len(dn.Translation) >= 3 {
		n.Translation = mgl32.Vec3{dn.Translation[0], dn.Translation[1], dn.Translation[2]}
	}
	if len(dn.Rotation) >= 4 {
		axis := mgl32.Vec3{dn.Rotation[0], dn.Rotation[1], dn.Rotation[2]}
		n.Rotation = utils.AxisAngleToQuat(axis, dn.Rotation[3])
	}
	if len(dn.Scale) >= 3 {
		n.Scale = mgl32.Vec3{dn.Scale[0], dn.Scale[1], dn.Scale[2]}
	}
}

// applyVariant resolves the node's payload. Exactly one variant is chosen
// by precedence: camera, then lights, then meshes, else the node stays a
// plain transform. Multi-payload nodes spread their extra payloads over
// synthesized child nodes.
func (s *parseState) applyVariant(docID string, n *scene.Node, dn *document.Node) {
	if dn.Camera != "" {
		cam, ok := s.lib.Cameras[dn.Camera]
		if !ok {
			log.Printf("Node %q references missing or unsupported camera %q", docID, dn.Camera)
			return
		}
		n.Kind = scene.NODE_KIND_CAMERA
		n.Camera = cam
		return
	}

	if len(dn.Lights) != 0 {
		var lights []*scene.Light
		for _, lid := range dn.Lights {
			if l := s.resolveLight(lid); l != nil {
				lights = append(lights, l)
			}
		}
		switch len(lights) {
		case 0:
		case 1:
			n.Kind = scene.NODE_KIND_LIGHT
			n.Light = lights[0]
		default:
			for _, l := range lights {
				child := s.lib.Graph.NewNode(l.Name)
				child.Kind = scene.NODE_KIND_LIGHT
				child.Light = l
				s.lib.Graph.Attach(n.ID, child.ID)
			}
		}
		return
	}

	meshIDs := dn.Meshes
	if dn.InstanceSkin != nil && len(dn.InstanceSkin.Meshes) != 0 {
		meshIDs = append(append([]string{}, meshIDs...), dn.InstanceSkin.Meshes...)
	}
	if len(meshIDs) != 0 {
		var prims []*scene.Mesh
		var sources []string
		for _, mid := range meshIDs {
			ms, ok := s.meshesByID[mid]
			if !ok {
				log.Printf("Node %q references missing mesh %q", docID, mid)
				continue
			}
			for _, m := range ms {
				prims = append(prims, m)
				sources = append(sources, mid)
			}
		}
		switch len(prims) {
		case 0:
		case 1:
			n.Kind = scene.NODE_KIND_MESH
			n.Meshes = prims
			s.meshNodes[docID] = append(s.meshNodes[docID], meshNodeRef{node: n.ID, mesh: sources[0]})
		default:
			for i, m := range prims {
				child := s.lib.Graph.NewNode(m.Name)
				child.Kind = scene.NODE_KIND_MESH
				child.Meshes = []*scene.Mesh{m}
				s.lib.Graph.Attach(n.ID, child.ID)
				s.meshNodes[docID] = append(s.meshNodes[docID], meshNodeRef{node: child.ID, mesh: sources[i]})
			}
		}
	}
}

// resolveCameras builds the camera table. Cameras with an unsupported
// projection kind stay out of the table, so referencing nodes fall back to
// plain transforms.
func (s *parseState) resolveCameras() {
	for _, id := range sortedKeys(s.doc.Cameras) {
		dc := s.doc.Cameras[id]
		name := dc.Name
		if name == "" {
			name = id
		}
		switch dc.Type {
		case "perspective":
			p := dc.Perspective
			if p == nil {
				p = &document.Perspective{}
			}
			s.lib.Cameras[id] = &scene.Camera{
				Name:        name,
				Perspective: true,
				YFov:        p.YFov,
				AspectRatio: p.AspectRatio,
				ZNear:       p.ZNear,
				ZFar:        p.ZFar,
			}
		case "orthographic":
			o := dc.Orthographic
			if o == nil {
				o = &document.Ortho{}
			}
			s.lib.Cameras[id] = &scene.Camera{
				Name:  name,
				XMag:  o.XMag,
				YMag:  o.YMag,
				ZNear: o.ZNear,
				ZFar:  o.ZFar,
			}
		default:
			log.Printf("Camera %q has unsupported projection kind %q", id, dc.Type)
		}
	}
}

// resolveLight builds and caches one light entity. Unknown kinds and
// dangling references cache nil, warning once.
func (s *parseState) resolveLight(id string) *scene.Light {
	if l, ok := s.lightsByID[id]; ok {
		return l
	}
	dl, ok := s.doc.Lights[id]
	if !ok {
		log.Printf("Light %q is not declared", id)
		s.lightsByID[id] = nil
		return nil
	}
	var t scene.LightType
	switch dl.Type {
	case "directional":
		t = scene.LIGHT_DIRECTIONAL
	case "point":
		t = scene.LIGHT_POINT
	case "spot":
		t = scene.LIGHT_SPOT
	case "ambient":
		t = scene.LIGHT_AMBIENT
	default:
		log.Printf("Light %q has unknown kind %q", id, dl.Type)
		s.lightsByID[id] = nil
		return nil
	}

	name := dl.Name
	if name == "" {
		name = id
	}
	l := &scene.Light{
		Name:                name,
		Type:                t,
		Color:               mgl32.Vec3{1, 1, 1},
		Intensity:           1,
		ConstantAttenuation: 1,
		FallOffAngle:        math.Pi / 2,
	}
	if p := dl.Params(); p != nil {
		if len(p.Color) >= 3 {
			l.Color = mgl32.Vec3{p.Color[0], p.Color[1], p.Color[2]}
		}
		l.Intensity = floatOr(p.Intensity, 1)
		l.Distance = floatOr(p.Distance, 0)
		l.ConstantAttenuation = floatOr(p.ConstantAttenuation, 1)
		l.LinearAttenuation = floatOr(p.LinearAttenuation, 0)
		l.QuadraticAttenuation = floatOr(p.QuadraticAttenuation, 0)
		l.FallOffAngle = floatOr(p.FallOffAngle, math.Pi/2)
		l.FallOffExponent = floatOr(p.FallOffExponent, 0)
	}
	s.lightsByID[id] = l
	return l
}

func floatOr(v *float32, def float32) float32 {
	if v != nil {
		return *v
	}
	return def
}
