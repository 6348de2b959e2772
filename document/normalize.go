package document

import (
	"log"
	"sort"
)

var legacyAccessorShapes = map[uint32]string{
	GL_FLOAT:      SHAPE_SCALAR,
	GL_FLOAT_VEC2: SHAPE_VEC2,
	GL_FLOAT_VEC3: SHAPE_VEC3,
	GL_FLOAT_VEC4: SHAPE_VEC4,
	GL_FLOAT_MAT2: SHAPE_MAT2,
	GL_FLOAT_MAT3: SHAPE_MAT3,
	GL_FLOAT_MAT4: SHAPE_MAT4,
}

// normalize rewrites every legacy generation construct into its current
// shape right after deserialization, so downstream resolvers see a single
// schema. Works off structure, not the detected version, to stay robust
// against mixed-generation documents.
func (d *Document) normalize() {
	for _, b := range d.Buffers {
		if b.URI == "" {
			b.URI = b.Path
		}
	}

	for _, img := range d.Images {
		if img.URI == "" {
			img.URI = img.Path
		}
	}

	for name, a := range d.Accessors {
		if a.Type.Shape == "" && a.Type.Enum != 0 {
			shape, ok := legacyAccessorShapes[a.Type.Enum]
			if !ok {
				log.Printf("Accessor %q has unknown type enum %v", name, a.Type.Enum)
				continue
			}
			a.Type.Shape = shape
			if a.ComponentType == 0 {
				a.ComponentType = GL_FLOAT
			}
		}
		if a.Type.Shape != "" && a.ComponentType == 0 {
			a.ComponentType = GL_FLOAT
		}
	}

	for name, t := range d.Techniques {
		d.normalizeTechnique(name, t)
	}

	for _, m := range d.Materials {
		if it := m.InstanceTechnique; it != nil {
			if m.Technique == "" {
				m.Technique = it.Technique
			}
			if len(it.Values) != 0 {
				merged := make(map[string]*Value, len(it.Values)+len(m.Values))
				for k, v := range it.Values {
					merged[k] = v
				}
				for k, v := range m.Values {
					merged[k] = v
				}
				m.Values = merged
			}
			m.InstanceTechnique = nil
		}
	}

	for _, n := range d.Nodes {
		if n.Light != "" {
			n.Lights = append(n.Lights, n.Light)
			n.Light = ""
		}
		if is := n.InstanceSkin; is != nil && len(is.Meshes) == 0 {
			is.Meshes = is.Sources
			is.Sources = nil
		}
	}

	for _, m := range d.Meshes {
		for _, p := range m.Primitives {
			if p.Mode == nil {
				p.Mode = p.Primitive
			}
			p.Primitive = nil
		}
	}

	for _, c := range d.Cameras {
		if c.Type == "" {
			c.Type = c.Projection
		}
		switch c.Type {
		case "perspective":
			if c.Perspective == nil {
				c.Perspective = &Perspective{
					YFov:        deref(c.YFov),
					AspectRatio: deref(c.AspectRatio),
					ZNear:       deref(c.ZNear),
					ZFar:        deref(c.ZFar),
				}
			}
		case "orthographic":
			if c.Orthographic == nil {
				c.Orthographic = &Ortho{
					XMag:  deref(c.XMag),
					YMag:  deref(c.YMag),
					ZNear: deref(c.ZNear),
					ZFar:  deref(c.ZFar),
				}
			}
		}
	}

	if d.Scene == "" && len(d.Scenes) == 1 {
		for name := range d.Scenes {
			d.Scene = name
		}
	}
}

// normalizeTechnique lifts the legacy passes[pass] wrapper so the
// technique itself is the pass.
func (d *Document) normalizeTechnique(name string, t *Technique) {
	if len(t.Passes) == 0 {
		return
	}
	pass, ok := t.Passes[t.Pass]
	if !ok {
		// pick any pass deterministically rather than dropping the technique
		if t.Pass != "" {
			log.Printf("Technique %q references missing pass %q", name, t.Pass)
		}
		for _, pname := range sortedKeys(t.Passes) {
			pass = t.Passes[pname]
			break
		}
	}
	if pass == nil {
		return
	}
	if t.States == nil {
		t.States = pass.States
	}
	if t.Program == "" && pass.InstanceProgram != nil {
		t.Program = pass.InstanceProgram.Program
	}
	if t.Program == "" && pass.Details != nil && pass.Details.CommonProfile != nil {
		t.Program = pass.Details.CommonProfile.LightingModel
	}
	t.Passes = nil
	t.Pass = ""
}

func deref(f *float32) float32 {
	if f == nil {
		return 0
	}
	return *f
}

func sortedKeys(m map[string]*TechPass) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
