package loader

import (
	"encoding/binary"
	"log"
	"math"

	"github.com/mogaika/gltf_scene_browser/3rdparty/half"
	"github.com/mogaika/gltf_scene_browser/document"
)

// attributeDecoder maps accessor descriptors onto decoded arrays backed
// by the buffer store. Every decode bounds-checks the composed range
// before touching buffer bytes; anything off returns nil after a warning
// so callers degrade per element.
type attributeDecoder struct {
	doc   *document.Document
	store *BufferStore
}

// raw resolves the accessor chain and returns the accessor together with
// the exact byte window it covers.
func (d *attributeDecoder) raw(name string) (*document.Accessor, []byte) {
	acc, ok := d.doc.Accessors[name]
	if !ok {
		log.Printf("Accessor %q is not declared", name)
		return nil, nil
	}
	view, ok := d.doc.BufferViews[acc.BufferView]
	if !ok {
		log.Printf("Accessor %q references missing buffer view %q", name, acc.BufferView)
		return nil, nil
	}
	buf := d.store.Get(view.Buffer)
	if buf == nil {
		log.Printf("Accessor %q depends on absent buffer %q", name, view.Buffer)
		return nil, nil
	}
	comps := acc.Components()
	csize := document.ComponentSize(acc.ComponentType)
	if comps == 0 || csize == 0 {
		log.Printf("Accessor %q has unsupported layout (shape %q, component type %v)",
			name, acc.Type.Shape, acc.ComponentType)
		return nil, nil
	}
	elemSize := uint64(comps * csize)
	if acc.ByteStride != 0 && uint64(acc.ByteStride) != elemSize {
		log.Printf("Accessor %q is interleaved (stride %v, element size %v), not supported",
			name, acc.ByteStride, elemSize)
		return nil, nil
	}
	need := uint64(acc.Count) * elemSize
	if view.ByteLength != 0 && uint64(acc.ByteOffset)+need > uint64(view.ByteLength) {
		log.Printf("Accessor %q overruns buffer view %q (%v+%v > %v)",
			name, acc.BufferView, acc.ByteOffset, need, view.ByteLength)
		return nil, nil
	}
	start := uint64(view.ByteOffset) + uint64(acc.ByteOffset)
	if start+need > uint64(len(buf)) {
		log.Printf("Accessor %q overruns buffer %q (%v+%v > %v)",
			name, view.Buffer, start, need, len(buf))
		return nil, nil
	}
	return acc, buf[start : start+need]
}

// Floats decodes the accessor into float components. Integer component
// types are converted in place; when normalized is set they are scaled to
// [0,1] ([-1,1] for signed). Returns the flat component array and the
// component count per element.
func (d *attributeDecoder) Floats(name string, normalized bool) ([]float32, int) {
	acc, raw := d.raw(name)
	if raw == nil {
		return nil, 0
	}
	comps := acc.Components()
	out := make([]float32, int(acc.Count)*comps)
	switch acc.ComponentType {
	case document.GL_FLOAT:
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	case document.GL_HALF_FLOAT, document.GL_HALF_FLOAT_OES:
		for i := range out {
			out[i] = half.Float16(binary.LittleEndian.Uint16(raw[i*2:])).Float32()
		}
	case document.GL_UNSIGNED_BYTE:
		for i := range out {
			v := float32(raw[i])
			if normalized {
				v /= 255.0
			}
			out[i] = v
		}
	case document.GL_BYTE:
		for i := range out {
			v := float32(int8(raw[i]))
			if normalized {
				v /= 127.0
			}
			out[i] = v
		}
	case document.GL_UNSIGNED_SHORT:
		for i := range out {
			v := float32(binary.LittleEndian.Uint16(raw[i*2:]))
			if normalized {
				v /= 65535.0
			}
			out[i] = v
		}
	case document.GL_SHORT:
		for i := range out {
			v := float32(int16(binary.LittleEndian.Uint16(raw[i*2:])))
			if normalized {
				v /= 32767.0
			}
			out[i] = v
		}
	case document.GL_UNSIGNED_INT:
		for i := range out {
			out[i] = float32(binary.LittleEndian.Uint32(raw[i*4:]))
		}
	case document.GL_INT:
		for i := range out {
			out[i] = float32(int32(binary.LittleEndian.Uint32(raw[i*4:])))
		}
	default:
		log.Printf("Accessor %q has unknown component type %v", name, acc.ComponentType)
		return nil, 0
	}
	return out, comps
}

// UInts decodes the accessor into unsigned integers. Used for indices and
// joint references; only unsigned component types qualify.
func (d *attributeDecoder) UInts(name string) ([]uint32, int) {
	acc, raw := d.raw(name)
	if raw == nil {
		return nil, 0
	}
	comps := acc.Components()
	out := make([]uint32, int(acc.Count)*comps)
	switch acc.ComponentType {
	case document.GL_UNSIGNED_BYTE:
		for i := range out {
			out[i] = uint32(raw[i])
		}
	case document.GL_UNSIGNED_SHORT:
		for i := range out {
			out[i] = uint32(binary.LittleEndian.Uint16(raw[i*2:]))
		}
	case document.GL_UNSIGNED_INT:
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
	default:
		log.Printf("Accessor %q: integer data expected, got component type %v", name, acc.ComponentType)
		return nil, 0
	}
	return out, comps
}

// Mat4s decodes a MAT4 accessor into a flat column-major float array
// owned by the caller, 16 components per matrix.
func (d *attributeDecoder) Mat4s(name string) []float32 {
	acc, ok := d.doc.Accessors[name]
	if ok && acc.Type.Shape != document.SHAPE_MAT4 {
		log.Printf("Accessor %q: matrix data expected, got shape %q", name, acc.Type.Shape)
		return nil
	}
	data, _ := d.Floats(name, false)
	return data
}

// IndexWidth reports whether the accessor's declared component type fits
// 16-bit index storage.
func (d *attributeDecoder) IndexWidth(name string) int {
	if acc, ok := d.doc.Accessors[name]; ok {
		switch acc.ComponentType {
		case document.GL_UNSIGNED_BYTE, document.GL_UNSIGNED_SHORT:
			return 16
		}
	}
	return 32
}
