package document

import (
	"bytes"
	"encoding/json"
	"log"
)

// Value is a technique or material parameter value. The schema allows a
// bare number, a boolean, an array of numbers, or a string id referencing
// another document table.
type Value struct {
	Floats []float32
	Ref    string
	IsRef  bool
}

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	switch b[0] {
	case '"':
		v.IsRef = true
		return json.Unmarshal(b, &v.Ref)
	case '[':
		return json.Unmarshal(b, &v.Floats)
	case 't', 'f':
		var flag bool
		if err := json.Unmarshal(b, &flag); err != nil {
			return err
		}
		if flag {
			v.Floats = []float32{1}
		} else {
			v.Floats = []float32{0}
		}
		return nil
	default:
		var f float32
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		v.Floats = []float32{f}
		return nil
	}
}

// Scalar returns the value as a single number.
func (v *Value) Scalar() (float32, bool) {
	if v == nil || v.IsRef || len(v.Floats) == 0 {
		return 0, false
	}
	return v.Floats[0], true
}

// Color returns the value as an rgba quad; rgb triples get alpha 1.
func (v *Value) Color() ([4]float32, bool) {
	if v == nil || v.IsRef {
		return [4]float32{}, false
	}
	switch len(v.Floats) {
	case 3:
		return [4]float32{v.Floats[0], v.Floats[1], v.Floats[2], 1}, true
	case 4:
		return [4]float32{v.Floats[0], v.Floats[1], v.Floats[2], v.Floats[3]}, true
	default:
		return [4]float32{}, false
	}
}

// GLEnum is a GL constant that legacy documents spell by name ("REPEAT")
// and current documents by numeric value. Unknown names decode to zero so
// a single bad constant cannot fail the whole document.
type GLEnum uint32

var glEnumNames = map[string]uint32{
	"BYTE":           GL_BYTE,
	"UNSIGNED_BYTE":  GL_UNSIGNED_BYTE,
	"SHORT":          GL_SHORT,
	"UNSIGNED_SHORT": GL_UNSIGNED_SHORT,
	"INT":            GL_INT,
	"UNSIGNED_INT":   GL_UNSIGNED_INT,
	"FLOAT":          GL_FLOAT,
	"HALF_FLOAT":     GL_HALF_FLOAT,
	"HALF_FLOAT_OES": GL_HALF_FLOAT_OES,

	"FLOAT_VEC2": GL_FLOAT_VEC2,
	"FLOAT_VEC3": GL_FLOAT_VEC3,
	"FLOAT_VEC4": GL_FLOAT_VEC4,
	"FLOAT_MAT2": GL_FLOAT_MAT2,
	"FLOAT_MAT3": GL_FLOAT_MAT3,
	"FLOAT_MAT4": GL_FLOAT_MAT4,
	"SAMPLER_2D": GL_SAMPLER_2D,

	"NEAREST":                GL_NEAREST,
	"LINEAR":                 GL_LINEAR,
	"NEAREST_MIPMAP_NEAREST": GL_NEAREST_MIPMAP_NEAREST,
	"LINEAR_MIPMAP_NEAREST":  GL_LINEAR_MIPMAP_NEAREST,
	"NEAREST_MIPMAP_LINEAR":  GL_NEAREST_MIPMAP_LINEAR,
	"LINEAR_MIPMAP_LINEAR":   GL_LINEAR_MIPMAP_LINEAR,

	"CLAMP_TO_EDGE":   GL_CLAMP_TO_EDGE,
	"MIRRORED_REPEAT": GL_MIRRORED_REPEAT,
	"REPEAT":          GL_REPEAT,

	"TEXTURE_2D": GL_TEXTURE_2D,
	"RGBA":       GL_RGBA,

	"CULL_FACE":  GL_CULL_FACE,
	"DEPTH_TEST": GL_DEPTH_TEST,
	"BLEND":      GL_BLEND,

	"TRIANGLES": GL_TRIANGLES,
}

func (e *GLEnum) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, ok := glEnumNames[s]
		if !ok {
			log.Printf("Unknown gl constant name %q", s)
		}
		*e = GLEnum(v)
		return nil
	}
	var v uint32
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*e = GLEnum(v)
	return nil
}

// AccessorType holds the raw accessor type field: a shape name in current
// documents, a numeric GL enum in legacy ones. Normalization fills Shape
// from Enum for the legacy case.
type AccessorType struct {
	Shape string
	Enum  uint32
}

func (t *AccessorType) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &t.Shape)
	}
	return json.Unmarshal(b, &t.Enum)
}

// RelaxedBool accepts JSON booleans as well as the 0/1 numbers legacy
// documents use interchangeably for state flags.
type RelaxedBool bool

func (rb *RelaxedBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && (b[0] == 't' || b[0] == 'f') {
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*rb = RelaxedBool(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*rb = v != 0
	return nil
}
