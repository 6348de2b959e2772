package scene

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mogaika/gltf_scene_browser/utils/gltfutils"
)

type gltfExporter struct {
	gc  *gltfutils.GLTFCacher
	lib *Library
}

// ExportGLTF rebuilds the library as a gltf 2.0 document: the node tree
// with trs transforms, geometry accessors written through the modeler and
// materials approximated as metallic-roughness. Shared meshes, materials
// and textures are written once through the cacher.
func (l *Library) ExportGLTF(gc *gltfutils.GLTFCacher) {
	e := &gltfExporter{gc: gc, lib: l}
	root := e.exportNode(l.Root)
	gc.Doc.Scenes[0].Nodes = append(gc.Doc.Scenes[0].Nodes, root)
}

// ExportGLTFDefault builds a standalone document around ExportGLTF.
func (l *Library) ExportGLTFDefault() *gltf.Document {
	gc := gltfutils.NewCacher()
	l.ExportGLTF(gc)
	return gc.Doc
}

func (e *gltfExporter) exportNode(id NodeID) uint32 {
	doc := e.gc.Doc
	n := e.lib.Graph.Node(id)

	node := &gltf.Node{
		Name:        n.Name,
		Translation: n.Translation,
		Rotation:    [4]float32{n.Rotation.X(), n.Rotation.Y(), n.Rotation.Z(), n.Rotation.W},
		Scale:       n.Scale,
	}

	if n.Kind == NODE_KIND_MESH && len(n.Meshes) != 0 {
		node.Mesh = gltf.Index(e.exportMesh(n.Meshes[0]))
		for _, m := range n.Meshes[1:] {
			doc.Nodes = append(doc.Nodes, &gltf.Node{
				Name:     m.Name,
				Mesh:     gltf.Index(e.exportMesh(m)),
				Rotation: [4]float32{0, 0, 0, 1},
				Scale:    [3]float32{1, 1, 1},
			})
			node.Children = append(node.Children, uint32(len(doc.Nodes)-1))
		}
	}

	for _, c := range n.Children {
		node.Children = append(node.Children, e.exportNode(c))
	}

	doc.Nodes = append(doc.Nodes, node)
	return uint32(len(doc.Nodes) - 1)
}

func (e *gltfExporter) exportMesh(m *Mesh) uint32 {
	return e.gc.GetCachedOr(m, func() interface{} {
		doc := e.gc.Doc
		g := m.Geometry

		attributes := make(map[string]uint32)
		attributes["POSITION"] = modeler.WritePosition(doc, g.Positions)
		if len(g.Normals) != 0 {
			attributes["NORMAL"] = modeler.WriteNormal(doc, g.Normals)
		}
		if len(g.UV0) != 0 {
			attributes["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, g.UV0)
		}
		if len(g.UV1) != 0 {
			attributes["TEXCOORD_1"] = modeler.WriteTextureCoord(doc, g.UV1)
		}
		if len(g.Colors) != 0 {
			attributes["COLOR_0"] = modeler.WriteColor(doc, g.Colors)
		}
		if len(g.Tangents) != 0 {
			attributes["TANGENT"] = modeler.WriteTangent(doc, g.Tangents)
		}
		if len(g.Joints) != 0 {
			attributes["JOINTS_0"] = modeler.WriteJoints(doc, g.Joints)
		}
		if len(g.Weights) != 0 {
			// the dropped fourth weight is the remainder against 1
			weights := make([][4]float32, len(g.Weights))
			for i, w := range g.Weights {
				w3 := 1 - w[0] - w[1] - w[2]
				if w3 < 0 {
					w3 = 0
				}
				weights[i] = [4]float32{w[0], w[1], w[2], w3}
			}
			attributes["WEIGHTS_0"] = modeler.WriteWeights(doc, weights)
		}

		primitive := &gltf.Primitive{
			Attributes: attributes,
		}
		if len(g.Indices) != 0 {
			if g.IndexBits == 16 {
				indices := make([]uint16, len(g.Indices))
				for i, v := range g.Indices {
					indices[i] = uint16(v)
				}
				primitive.Indices = gltf.Index(modeler.WriteIndices(doc, indices))
			} else {
				primitive.Indices = gltf.Index(modeler.WriteIndices(doc, g.Indices))
			}
		}
		if m.Material != nil {
			primitive.Material = gltf.Index(e.exportMaterial(m.Material))
		}

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name:       m.Name,
			Primitives: []*gltf.Primitive{primitive},
		})
		return uint32(len(doc.Meshes) - 1)
	}).(uint32)
}

func (e *gltfExporter) exportMaterial(m *Material) uint32 {
	return e.gc.GetCachedOr(m, func() interface{} {
		doc := e.gc.Doc

		color := new([4]float32)
		*color = [4]float32(m.Diffuse)
		roughness := m.Roughness
		metallic := float32(0)

		gltfMaterial := &gltf.Material{
			Name:        m.Name,
			DoubleSided: !m.Cull,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: color,
				MetallicFactor:  &metallic,
				RoughnessFactor: &roughness,
			},
			EmissiveFactor: [3]float32{m.Emission[0], m.Emission[1], m.Emission[2]},
		}
		if m.Transparent {
			gltfMaterial.AlphaMode = gltf.AlphaBlend
		}

		if m.DiffuseTexture != nil {
			gltfMaterial.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{
				Index: e.exportTexture(m.DiffuseTexture),
			}
		}
		if m.NormalTexture != nil {
			gltfMaterial.NormalTexture = &gltf.NormalTexture{
				Index: gltf.Index(e.exportTexture(m.NormalTexture)),
			}
		}

		doc.Materials = append(doc.Materials, gltfMaterial)
		return uint32(len(doc.Materials) - 1)
	}).(uint32)
}

func (e *gltfExporter) exportTexture(t *Texture) uint32 {
	return e.gc.GetCachedOr(t, func() interface{} {
		doc := e.gc.Doc

		sampler := &gltf.Sampler{
			Name: t.Name + "_sampler",
		}
		switch t.MagFilter {
		case FILTER_NEAREST:
			sampler.MagFilter = gltf.MagNearest
		default:
			sampler.MagFilter = gltf.MagLinear
		}
		switch t.MinFilter {
		case FILTER_NEAREST:
			sampler.MinFilter = gltf.MinNearest
		case FILTER_NEAREST_MIPMAP_NEAREST:
			sampler.MinFilter = gltf.MinNearestMipMapNearest
		case FILTER_LINEAR_MIPMAP_NEAREST:
			sampler.MinFilter = gltf.MinLinearMipMapNearest
		case FILTER_NEAREST_MIPMAP_LINEAR:
			sampler.MinFilter = gltf.MinNearestMipMapLinear
		case FILTER_LINEAR_MIPMAP_LINEAR:
			sampler.MinFilter = gltf.MinLinearMipMapLinear
		default:
			sampler.MinFilter = gltf.MinLinear
		}
		sampler.WrapS = translateGltfWrap(t.WrapS)
		sampler.WrapT = translateGltfWrap(t.WrapT)

		samplerIndex := uint32(len(doc.Samplers))
		doc.Samplers = append(doc.Samplers, sampler)

		imageIndex := uint32(len(doc.Images))
		doc.Images = append(doc.Images, &gltf.Image{
			Name: t.Name + "_image",
			URI:  t.Image,
		})

		doc.Textures = append(doc.Textures, &gltf.Texture{
			Name:    t.Name,
			Sampler: gltf.Index(samplerIndex),
			Source:  gltf.Index(imageIndex),
		})
		return uint32(len(doc.Textures) - 1)
	}).(uint32)
}

func translateGltfWrap(w Wrap) gltf.WrappingMode {
	switch w {
	case WRAP_CLAMP_TO_EDGE:
		return gltf.WrapClampToEdge
	case WRAP_MIRRORED_REPEAT:
		return gltf.WrapMirroredRepeat
	default:
		return gltf.WrapRepeat
	}
}
