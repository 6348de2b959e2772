package loader

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/scene"
)

// resolveMaterials flattens every material descriptor against its
// technique and the shader registry. Parameter precedence, weakest first:
// registry program defaults, technique parameter values, material values.
func (s *parseState) resolveMaterials() {
	for _, name := range sortedKeys(s.doc.Materials) {
		s.lib.Materials[name] = s.resolveMaterial(name, s.doc.Materials[name])
	}
}

func (s *parseState) resolveMaterial(name string, dm *document.Material) *scene.Material {
	m := &scene.Material{
		Name:       name,
		Diffuse:    mgl32.Vec4{1, 1, 1, 1},
		Shininess:  0.5,
		Glossiness: 0.5,
		Roughness:  0.5,
		Alpha:      1,
		DepthTest:  true,
		DepthWrite: true,
		Uniforms:   make(map[string][]float32),
		Textures:   make(map[string]*scene.Texture),
	}
	if dm.Name != "" {
		m.Name = dm.Name
	}

	var tech *document.Technique
	if dm.Technique != "" {
		var ok bool
		tech, ok = s.doc.Techniques[dm.Technique]
		if !ok {
			log.Printf("Material %q references missing technique %q", name, dm.Technique)
		}
	}
	if tech != nil {
		m.Program = tech.Program
	}
	if m.Program == "" && s.reg != nil {
		m.Program = s.reg.Fallback
	}

	if s.reg != nil {
		if prog := s.reg.Program(m.Program); prog != nil {
			for _, k := range sortedKeys(prog.Defaults) {
				s.applyMaterialValue(m, k, &document.Value{Floats: prog.Defaults[k]})
			}
		}
	}

	if tech != nil {
		for _, pname := range sortedKeys(tech.Parameters) {
			p := tech.Parameters[pname]
			// parameters bound to a semantic are fed by the renderer,
			// not by material values
			if p == nil || p.Semantic != "" || p.Value == nil {
				continue
			}
			s.applyMaterialValue(m, pname, p.Value)
		}
	}

	for _, k := range sortedKeys(dm.Values) {
		s.applyMaterialValue(m, k, dm.Values[k])
	}

	if tech != nil && tech.States != nil {
		st := tech.States
		m.Cull = st.CullEnabled()
		m.Transparent = st.BlendEnabled()
		if v, ok := st.DepthTest(); ok {
			m.DepthTest = v
		}
		if v, ok := st.DepthWrite(); ok {
			m.DepthWrite = v
		}
	}

	return m
}

// applyMaterialValue stores one parameter value on the material, routing
// texture references through the already built texture table and mirroring
// well-known names into typed fields.
func (s *parseState) applyMaterialValue(m *scene.Material, key string, v *document.Value) {
	if v == nil {
		return
	}
	if v.IsRef {
		tex, ok := s.lib.Textures[v.Ref]
		if !ok {
			log.Printf("Material %q parameter %q references missing texture %q", m.Name, key, v.Ref)
			tex = nil
		}
		// dangling references keep their nil slot so consumers see
		// the binding existed
		m.Textures[key] = tex
		switch key {
		case "diffuse":
			m.DiffuseTexture = tex
		case "bump", "bumpMap", "normalMap":
			m.NormalTexture = tex
		}
		return
	}
	if len(v.Floats) != 0 {
		m.Uniforms[key] = v.Floats
	}
	switch key {
	case "diffuse":
		if c, ok := v.Color(); ok {
			m.Diffuse = mgl32.Vec4(c)
		}
	case "specular":
		if c, ok := v.Color(); ok {
			m.Specular = mgl32.Vec4(c)
		}
	case "emission", "emissive":
		if c, ok := v.Color(); ok {
			m.Emission = mgl32.Vec4(c)
		}
	case "ambient":
		if c, ok := v.Color(); ok {
			m.Ambient = mgl32.Vec4(c)
		}
	case "shininess":
		if f, ok := v.Scalar(); ok {
			m.SetShininess(f)
		}
	case "transparency", "alpha":
		if f, ok := v.Scalar(); ok {
			m.Alpha = f
		}
	}
}

// defaultMaterial lazily builds the shared untextured material assigned to
// primitives without a usable material reference.
func (s *parseState) defaultMaterial() *scene.Material {
	if s.defMat == nil {
		s.defMat = s.resolveMaterial("default", &document.Material{})
	}
	return s.defMat
}
