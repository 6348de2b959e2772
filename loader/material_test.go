package loader

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/gltf_scene_browser/document"
)

func TestMaterialDefaults(t *testing.T) {
	doc := &document.Document{
		Name:      "m",
		Materials: map[string]*document.Material{"mat": {}},
	}
	lib := parseTestDoc(doc, nil, nil)

	m := lib.Materials["mat"]
	if m == nil {
		t.Fatalf("material %q was not resolved", "mat")
	}
	if m.Program != "lambert" {
		t.Errorf("Program=%q; expected the registry fallback", m.Program)
	}
	if m.Diffuse != (mgl32.Vec4{0.8, 0.8, 0.8, 1}) {
		t.Errorf("Diffuse=%v; expected the lambert default", m.Diffuse)
	}
	if m.Ambient != (mgl32.Vec4{0.2, 0.2, 0.2, 1}) {
		t.Errorf("Ambient=%v; expected the lambert default", m.Ambient)
	}
	if m.Alpha != 1 || !m.DepthTest || !m.DepthWrite {
		t.Errorf("Alpha=%v DepthTest=%v DepthWrite=%v; expected 1/true/true", m.Alpha, m.DepthTest, m.DepthWrite)
	}
	if m.Cull || m.Transparent {
		t.Errorf("Cull=%v Transparent=%v; expected both off without states", m.Cull, m.Transparent)
	}
}

func TestMaterialPrecedence(t *testing.T) {
	doc := &document.Document{
		Name: "m",
		Techniques: map[string]*document.Technique{
			"tech": {
				Program: "phong",
				Parameters: map[string]*document.TechParam{
					"diffuse":   {Value: &document.Value{Floats: []float32{0, 1, 0, 1}}},
					"shininess": {Value: &document.Value{Floats: []float32{8192}}},
					"viewMat":   {Semantic: "VIEW", Value: &document.Value{Floats: []float32{1}}},
				},
			},
		},
		Materials: map[string]*document.Material{
			"mat": {
				Technique: "tech",
				Values: map[string]*document.Value{
					"diffuse": {Floats: []float32{1, 0, 0, 1}},
				},
			},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	m := lib.Materials["mat"]
	if m == nil {
		t.Fatalf("material %q was not resolved", "mat")
	}
	if m.Program != "phong" {
		t.Errorf("Program=%q; expected %q", m.Program, "phong")
	}
	// material value beats the technique parameter
	if m.Diffuse != (mgl32.Vec4{1, 0, 0, 1}) {
		t.Errorf("Diffuse=%v; expected the material value to win", m.Diffuse)
	}
	// technique parameter beats the registry default of 64
	if m.Shininess != 8192 {
		t.Errorf("Shininess=%v; expected 8192", m.Shininess)
	}
	if m.Glossiness < 0.999 || m.Glossiness > 1.001 {
		t.Errorf("Glossiness=%v; expected 1 for shininess 8192", m.Glossiness)
	}
	// semantic bound parameters are renderer inputs, not uniforms
	if _, ok := m.Uniforms["viewMat"]; ok {
		t.Errorf("semantic parameter leaked into uniforms: %v", m.Uniforms["viewMat"])
	}
}

func TestMaterialTextureBinding(t *testing.T) {
	doc := &document.Document{
		Name:     "m",
		Images:   map[string]*document.Image{"img": {URI: "tex/skin.png"}},
		Textures: map[string]*document.Texture{"tex": {Source: "img"}},
		Materials: map[string]*document.Material{
			"mat": {Values: map[string]*document.Value{
				"diffuse": {Ref: "tex", IsRef: true},
				"bump":    {Ref: "missing", IsRef: true},
			}},
		},
	}
	lib := parseTestDoc(doc, nil, nil)

	m := lib.Materials["mat"]
	if m == nil {
		t.Fatalf("material %q was not resolved", "mat")
	}
	if m.DiffuseTexture == nil || m.DiffuseTexture.Name != "tex" {
		t.Errorf("DiffuseTexture=%+v; expected the resolved texture", m.DiffuseTexture)
	}
	if m.DiffuseTexture != nil && m.DiffuseTexture.Image != "tex/skin.png" {
		t.Errorf("texture image %q; expected the resolved uri", m.DiffuseTexture.Image)
	}
	// a dangling reference keeps its nil slot
	tex, ok := m.Textures["bump"]
	if !ok || tex != nil {
		t.Errorf("Textures[%q]=%v,%v; expected a recorded nil slot", "bump", tex, ok)
	}
	if m.NormalTexture != nil {
		t.Errorf("NormalTexture=%+v; expected nil for a dangling reference", m.NormalTexture)
	}
}

func TestMaterialStates(t *testing.T) {
	noWrite := document.RelaxedBool(false)
	doc := &document.Document{
		Name: "m",
		Techniques: map[string]*document.Technique{
			"tech": {States: &document.States{
				Enable:    []document.GLEnum{document.GL_CULL_FACE, document.GL_BLEND},
				DepthMask: &noWrite,
			}},
		},
		Materials: map[string]*document.Material{"mat": {Technique: "tech"}},
	}
	lib := parseTestDoc(doc, nil, nil)

	m := lib.Materials["mat"]
	if !m.Cull {
		t.Errorf("Cull=false; expected the enable list to turn culling on")
	}
	if !m.Transparent {
		t.Errorf("Transparent=false; expected the blend enable to mark transparency")
	}
	if m.DepthTest {
		t.Errorf("DepthTest=true; expected off when the enable list omits it")
	}
	if m.DepthWrite {
		t.Errorf("DepthWrite=true; expected the depthMask flag to win")
	}
}

func TestMaterialMissingTechnique(t *testing.T) {
	doc := &document.Document{
		Name:      "m",
		Materials: map[string]*document.Material{"mat": {Technique: "nope"}},
	}
	lib := parseTestDoc(doc, nil, nil)

	m := lib.Materials["mat"]
	if m == nil {
		t.Fatalf("material with a missing technique was dropped")
	}
	if m.Program != "lambert" {
		t.Errorf("Program=%q; expected the registry fallback", m.Program)
	}
}

func TestMaterialNamed(t *testing.T) {
	doc := &document.Document{
		Name:      "m",
		Materials: map[string]*document.Material{"mat0": {Name: "Gold"}},
	}
	lib := parseTestDoc(doc, nil, nil)

	if m := lib.Materials["mat0"]; m == nil || m.Name != "Gold" {
		t.Errorf("material name=%v; expected the declared name to win over the id", m)
	}
}
