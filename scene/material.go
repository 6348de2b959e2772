package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Material is a resolved shader parameter set plus render state flags.
// Uniforms carries every numeric parameter by name; well-known ones are
// additionally broken out into typed fields. Textures carries every
// texture-valued parameter, keeping nil entries for dangling references.
type Material struct {
	Name    string
	Program string

	Diffuse        mgl32.Vec4
	DiffuseTexture *Texture
	NormalTexture  *Texture
	Specular       mgl32.Vec4
	Emission       mgl32.Vec4
	Ambient        mgl32.Vec4

	Shininess  float32
	Glossiness float32
	Roughness  float32
	Alpha      float32

	Cull        bool
	Transparent bool
	DepthTest   bool
	DepthWrite  bool

	Uniforms map[string][]float32
	Textures map[string]*Texture

	// joint count baked into the skinned variant, 0 for unskinned
	JointCount int
}

func (m *Material) HasNormalMap() bool {
	return m.NormalTexture != nil
}

// SetShininess stores a raw specular exponent and derives the pbr-ish
// glossiness as log(shininess)/log(8192) clamped to [0,1], with roughness
// as its complement.
func (m *Material) SetShininess(shininess float32) {
	m.Shininess = shininess
	g := float32(0.5)
	if shininess > 0 {
		g = float32(math.Log(float64(shininess)) / math.Log(8192.0))
	}
	if g < 0 {
		g = 0
	} else if g > 1 {
		g = 1
	}
	m.Glossiness = g
	m.Roughness = 1 - g
}

// CloneForSkin returns an independent copy parametrized with the skin's
// joint count, so meshes with differing joint counts never share one
// material instance.
func (m *Material) CloneForSkin(jointCount int) *Material {
	c := *m
	c.JointCount = jointCount

	c.Uniforms = make(map[string][]float32, len(m.Uniforms))
	for k, v := range m.Uniforms {
		vv := make([]float32, len(v))
		copy(vv, v)
		c.Uniforms[k] = vv
	}
	c.Textures = make(map[string]*Texture, len(m.Textures))
	for k, v := range m.Textures {
		c.Textures[k] = v
	}
	return &c
}
