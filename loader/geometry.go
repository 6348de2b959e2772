package loader

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/scene"
)

// buildMeshes turns every mesh primitive into a geometry entity backed by
// decoded attribute arrays. A mesh with several primitives yields one
// entity per primitive, named meshName-index.
func (s *parseState) buildMeshes() {
	for _, id := range sortedKeys(s.doc.Meshes) {
		dm := s.doc.Meshes[id]
		meshName := dm.Name
		if meshName == "" {
			meshName = id
		}
		var built []*scene.Mesh
		for i, p := range dm.Primitives {
			name := meshName
			if len(dm.Primitives) > 1 {
				name = fmt.Sprintf("%s-%d", meshName, i)
			}
			m := s.buildPrimitive(name, p)
			if m == nil {
				continue
			}
			s.lib.Meshes[name] = m
			built = append(built, m)
		}
		s.meshesByID[id] = built
	}
}

func (s *parseState) buildPrimitive(name string, p *document.Primitive) *scene.Mesh {
	if p == nil {
		return nil
	}
	if p.Mode != nil && uint32(*p.Mode) != document.GL_TRIANGLES {
		log.Printf("Primitive %q has unsupported mode %v, skipping", name, uint32(*p.Mode))
		return nil
	}

	g := &scene.Geometry{Name: name}
	for _, sem := range sortedKeys(p.Attributes) {
		accName := p.Attributes[sem]
		switch sem {
		case "POSITION":
			data, comps := s.dec.Floats(accName, false)
			g.Positions = groupVec3(name, sem, data, comps)
			s.applyBounds(g, accName)
		case "NORMAL":
			data, comps := s.dec.Floats(accName, false)
			g.Normals = groupVec3(name, sem, data, comps)
		case "TEXCOORD_0":
			data, comps := s.dec.Floats(accName, false)
			g.UV0 = groupVec2(name, sem, data, comps)
		case "TEXCOORD_1":
			data, comps := s.dec.Floats(accName, false)
			g.UV1 = groupVec2(name, sem, data, comps)
		case "COLOR":
			data, comps := s.dec.Floats(accName, true)
			g.Colors = groupColor(name, data, comps)
		case "JOINT":
			data, comps := s.dec.UInts(accName)
			g.Joints = groupJoints(name, data, comps)
		case "WEIGHT":
			data, comps := s.dec.Floats(accName, true)
			g.Weights = compactWeights(name, data, comps)
		default:
			log.Printf("Primitive %q has unrecognized attribute semantic %q, ignoring", name, sem)
		}
	}

	if p.Indices != "" {
		g.Indices, _ = s.dec.UInts(p.Indices)
		g.IndexBits = s.dec.IndexWidth(p.Indices)
	}

	var mat *scene.Material
	if p.Material != "" {
		var ok bool
		mat, ok = s.lib.Materials[p.Material]
		if !ok {
			log.Printf("Primitive %q references missing material %q, using default", name, p.Material)
		}
	}
	if mat == nil {
		mat = s.defaultMaterial()
	}

	if mat.HasNormalMap() && len(g.Tangents) == 0 {
		g.GenerateTangents()
	}

	return &scene.Mesh{Name: name, Geometry: g, Material: mat}
}

// applyBounds copies the position accessor's declared min/max into the
// geometry bounding box. Vertex data is never rescanned for bounds.
func (s *parseState) applyBounds(g *scene.Geometry, accName string) {
	acc, ok := s.doc.Accessors[accName]
	if !ok || len(acc.Min) < 3 || len(acc.Max) < 3 {
		return
	}
	g.BBoxMin = mgl32.Vec3{acc.Min[0], acc.Min[1], acc.Min[2]}
	g.BBoxMax = mgl32.Vec3{acc.Max[0], acc.Max[1], acc.Max[2]}
	g.HasBounds = true
}

func groupVec2(prim, sem string, data []float32, comps int) [][2]float32 {
	if data == nil {
		return nil
	}
	if comps != 2 {
		log.Printf("Primitive %q attribute %q has %v components, expected 2", prim, sem, comps)
		return nil
	}
	out := make([][2]float32, len(data)/2)
	for i := range out {
		out[i] = [2]float32{data[i*2], data[i*2+1]}
	}
	return out
}

func groupVec3(prim, sem string, data []float32, comps int) [][3]float32 {
	if data == nil {
		return nil
	}
	if comps != 3 {
		log.Printf("Primitive %q attribute %q has %v components, expected 3", prim, sem, comps)
		return nil
	}
	out := make([][3]float32, len(data)/3)
	for i := range out {
		out[i] = [3]float32{data[i*3], data[i*3+1], data[i*3+2]}
	}
	return out
}

// groupColor accepts rgb or rgba input and always stores rgba, padding
// alpha with 1.
func groupColor(prim string, data []float32, comps int) [][4]float32 {
	if data == nil {
		return nil
	}
	switch comps {
	case 3:
		out := make([][4]float32, len(data)/3)
		for i := range out {
			out[i] = [4]float32{data[i*3], data[i*3+1], data[i*3+2], 1}
		}
		return out
	case 4:
		out := make([][4]float32, len(data)/4)
		for i := range out {
			out[i] = [4]float32{data[i*4], data[i*4+1], data[i*4+2], data[i*4+3]}
		}
		return out
	default:
		log.Printf("Primitive %q attribute COLOR has %v components, expected 3 or 4", prim, comps)
		return nil
	}
}

func groupJoints(prim string, data []uint32, comps int) [][4]uint16 {
	if data == nil {
		return nil
	}
	if comps != 4 {
		log.Printf("Primitive %q attribute JOINT has %v components, expected 4", prim, comps)
		return nil
	}
	out := make([][4]uint16, len(data)/4)
	for i := range out {
		out[i] = [4]uint16{
			uint16(data[i*4]), uint16(data[i*4+1]),
			uint16(data[i*4+2]), uint16(data[i*4+3]),
		}
	}
	return out
}

// compactWeights keeps the first three weights of each vertex; the fourth
// is implied by the first three summing against 1 and is dropped when the
// source stores four.
func compactWeights(prim string, data []float32, comps int) [][3]float32 {
	if data == nil {
		return nil
	}
	switch comps {
	case 3:
		out := make([][3]float32, len(data)/3)
		for i := range out {
			out[i] = [3]float32{data[i*3], data[i*3+1], data[i*3+2]}
		}
		return out
	case 4:
		out := make([][3]float32, len(data)/4)
		for i := range out {
			out[i] = [3]float32{data[i*4], data[i*4+1], data[i*4+2]}
		}
		return out
	default:
		log.Printf("Primitive %q attribute WEIGHT has %v components, expected 3 or 4", prim, comps)
		return nil
	}
}
