package scene

import (
	"github.com/mogaika/fbx/builders/bfbx73"

	"github.com/mogaika/gltf_scene_browser/utils"
	"github.com/mogaika/gltf_scene_browser/utils/fbxbuilder"
)

type fbxExporter struct {
	b   *fbxbuilder.FBXBuilder
	lib *Library
}

// ExportFbx emits the library's node tree into the builder: one fbx model
// per node with its local trs, geometry and material objects connected to
// the mesh models. Shared geometries and materials are written once.
func (l *Library) ExportFbx(b *fbxbuilder.FBXBuilder) {
	e := &fbxExporter{b: b, lib: l}
	e.exportNode(l.Root, 0)
}

// ExportFbxDefault builds a standalone document around ExportFbx.
func (l *Library) ExportFbxDefault() *fbxbuilder.FBXBuilder {
	b := fbxbuilder.NewFBXBuilder(l.Name + ".fbx")
	l.ExportFbx(b)
	return b
}

func (e *fbxExporter) exportNode(id NodeID, parentFbxId int64) {
	n := e.lib.Graph.Node(id)
	if n == nil {
		return
	}

	class := "Null"
	if n.Kind == NODE_KIND_MESH && len(n.Meshes) != 0 {
		class = "Mesh"
	}

	modelId := e.b.GenerateId()
	rotation := utils.RadiansToDegreeV3(utils.QuatToEuler(n.Rotation))
	model := bfbx73.Model(modelId, n.Name+"\x00\x01Model", class).AddNodes(
		bfbx73.Version(232),
		bfbx73.Properties70().AddNodes(
			bfbx73.P("InheritType", "enum", "", "", int32(1)),
			bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
			bfbx73.P("Lcl Translation", "Lcl Translation", "", "A",
				float64(n.Translation[0]), float64(n.Translation[1]), float64(n.Translation[2])),
			bfbx73.P("Lcl Rotation", "Lcl Rotation", "", "A",
				float64(rotation[0]), float64(rotation[1]), float64(rotation[2])),
			bfbx73.P("Lcl Scaling", "Lcl Scaling", "", "A",
				float64(n.Scale[0]), float64(n.Scale[1]), float64(n.Scale[2])),
		),
		bfbx73.Shading(true),
		bfbx73.Culling("CullingOff"),
	)
	e.b.AddObjects(model)
	e.b.AddConnections(bfbx73.C("OO", modelId, parentFbxId))

	if class == "Mesh" {
		for i, m := range n.Meshes {
			targetId := modelId
			if i > 0 {
				subId := e.b.GenerateId()
				sub := bfbx73.Model(subId, m.Name+"\x00\x01Model", "Mesh").AddNodes(
					bfbx73.Version(232),
					bfbx73.Properties70().AddNodes(
						bfbx73.P("InheritType", "enum", "", "", int32(1)),
						bfbx73.P("DefaultAttributeIndex", "int", "Integer", "", int32(0)),
					),
					bfbx73.Shading(true),
					bfbx73.Culling("CullingOff"),
				)
				e.b.AddObjects(sub)
				e.b.AddConnections(bfbx73.C("OO", subId, modelId))
				targetId = subId
			}
			geometryId := e.exportGeometry(m.Geometry)
			e.b.AddConnections(bfbx73.C("OO", geometryId, targetId))
			if m.Material != nil {
				materialId := e.exportMaterial(m.Material)
				e.b.AddConnections(bfbx73.C("OO", materialId, targetId))
			}
		}
	} else {
		attrId := e.b.GenerateId()
		attr := bfbx73.NodeAttribute(attrId, n.Name+"\x00\x01NodeAttribute", "Null").AddNodes(
			bfbx73.TypeFlags("Null"),
		)
		e.b.AddObjects(attr)
		e.b.AddConnections(bfbx73.C("OO", attrId, modelId))
	}

	for _, c := range n.Children {
		e.exportNode(c, modelId)
	}
}

func (e *fbxExporter) exportGeometry(g *Geometry) int64 {
	return e.b.GetCachedOr(g, func() interface{} {
		vertices := make([]float64, 0, len(g.Positions)*3)
		for _, p := range g.Positions {
			vertices = append(vertices, float64(p[0]), float64(p[1]), float64(p[2]))
		}

		triCount := g.TriangleCount()
		indexes := make([]int32, 0, triCount*3)
		uvindexes := make([]int32, 0, triCount*3)
		for i := 0; i < triCount; i++ {
			i0, i1, i2 := g.triangle(i)
			// a polygon ends on the bitwise negated index
			indexes = append(indexes, int32(i0), int32(i1), -(int32(i2))-1)
			uvindexes = append(uvindexes, int32(i0), int32(i1), int32(i2))
		}

		geometryId := e.b.GenerateId()
		geometryLayer := bfbx73.Layer(0).AddNodes(
			bfbx73.Version(100),
		)
		geometry := bfbx73.Geometry(geometryId, g.Name+"\x00\x01Geometry", "Mesh").AddNodes(
			bfbx73.Properties70().AddNodes(
				bfbx73.P("Color", "ColorRGB", "Color", "", float64(1), float64(1), float64(1)),
			),
			bfbx73.GeometryVersion(124),
			bfbx73.Vertices(vertices),
			bfbx73.PolygonVertexIndex(indexes),
			geometryLayer,
		)

		if len(g.Normals) == len(g.Positions) && len(g.Normals) != 0 {
			normals := make([]float64, 0, len(g.Normals)*3)
			for _, nrm := range g.Normals {
				normals = append(normals, float64(nrm[0]), float64(nrm[1]), float64(nrm[2]))
			}
			geometry.AddNode(
				bfbx73.LayerElementNormal(0).AddNodes(
					bfbx73.Version(101),
					bfbx73.Name(""),
					bfbx73.MappingInformationType("ByVertice"),
					bfbx73.ReferenceInformationType("Direct"),
					bfbx73.Normals(normals),
				),
			)
			geometryLayer.AddNode(
				bfbx73.LayerElement().AddNodes(
					bfbx73.Type("LayerElementNormal"),
					bfbx73.TypedIndex(0),
				),
			)
		}

		if len(g.Colors) == len(g.Positions) && len(g.Colors) != 0 {
			rgba := make([]float64, 0, len(g.Colors)*4)
			for _, c := range g.Colors {
				rgba = append(rgba, float64(c[0]), float64(c[1]), float64(c[2]), float64(c[3]))
			}
			geometry.AddNode(
				bfbx73.LayerElementColor(0).AddNodes(
					bfbx73.Version(101),
					bfbx73.Name(""),
					bfbx73.MappingInformationType("ByVertice"),
					bfbx73.ReferenceInformationType("Direct"),
					bfbx73.Colors(rgba),
				),
			)
			geometryLayer.AddNode(
				bfbx73.LayerElement().AddNodes(
					bfbx73.Type("LayerElementColor"),
					bfbx73.TypedIndex(0),
				),
			)
		}

		if len(g.UV0) == len(g.Positions) && len(g.UV0) != 0 {
			uv := make([]float64, 0, len(g.UV0)*2)
			for _, t := range g.UV0 {
				// fbx uv space grows upward
				uv = append(uv, float64(t[0]), float64(1.0-t[1]))
			}
			geometry.AddNode(
				bfbx73.LayerElementUV(0).AddNodes(
					bfbx73.Version(101),
					bfbx73.Name(""),
					bfbx73.MappingInformationType("ByPolygonVertex"),
					bfbx73.ReferenceInformationType("IndexToDirect"),
					bfbx73.UV(uv),
					bfbx73.UVIndex(uvindexes),
				),
			)
			geometryLayer.AddNode(
				bfbx73.LayerElement().AddNodes(
					bfbx73.Type("LayerElementUV"),
					bfbx73.TypedIndex(0),
				),
			)
		}

		geometry.AddNode(
			bfbx73.LayerElementMaterial(0).AddNodes(
				bfbx73.Version(101),
				bfbx73.Name(""),
				bfbx73.MappingInformationType("AllSame"),
				bfbx73.ReferenceInformationType("IndexToDirect"),
				bfbx73.Materials([]int32{0}),
			),
		)
		geometryLayer.AddNode(
			bfbx73.LayerElement().AddNodes(
				bfbx73.Type("LayerElementMaterial"),
				bfbx73.TypedIndex(0),
			),
		)

		e.b.AddObjects(geometry)
		return geometryId
	}).(int64)
}

func (e *fbxExporter) exportMaterial(m *Material) int64 {
	return e.b.GetCachedOr(m, func() interface{} {
		shading := "lambert"
		switch m.Program {
		case "phong", "blinn":
			shading = "phong"
		}

		materialId := e.b.GenerateId()
		material := bfbx73.Material(materialId, m.Name+"\x00\x01Material", "").AddNodes(
			bfbx73.Version(102),
			bfbx73.ShadingModel(shading),
			bfbx73.MultiLayer(0),
			bfbx73.Properties70().AddNodes(
				bfbx73.P("AmbientColor", "Color", "", "A",
					float64(m.Ambient[0]), float64(m.Ambient[1]), float64(m.Ambient[2])),
				bfbx73.P("DiffuseColor", "Color", "", "A",
					float64(m.Diffuse[0]), float64(m.Diffuse[1]), float64(m.Diffuse[2])),
				bfbx73.P("SpecularColor", "Color", "", "A",
					float64(m.Specular[0]), float64(m.Specular[1]), float64(m.Specular[2])),
				bfbx73.P("EmissiveColor", "Color", "", "A",
					float64(m.Emission[0]), float64(m.Emission[1]), float64(m.Emission[2])),
				bfbx73.P("ShininessExponent", "Number", "", "A", float64(m.Shininess)),
				bfbx73.P("Opacity", "double", "Number", "", float64(m.Alpha)),
			),
		)
		e.b.AddObjects(material)
		return materialId
	}).(int64)
}
