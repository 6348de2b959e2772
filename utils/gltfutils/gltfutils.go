package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

// GLTFCacher wraps a document under construction and remembers which
// source entities were already exported, so shared resources are written
// once no matter how many consumers reference them.
type GLTFCacher struct {
	Doc   *gltf.Document
	cache map[interface{}]interface{}
}

func NewCacher() *GLTFCacher {
	return &GLTFCacher{
		Doc:   gltf.NewDocument(),
		cache: make(map[interface{}]interface{}),
	}
}

func (gc *GLTFCacher) AddCache(key interface{}, exported interface{}) {
	gc.cache[key] = exported
}

func (gc *GLTFCacher) GetCached(key interface{}) interface{} {
	return gc.cache[key]
}

func (gc *GLTFCacher) GetCachedOr(key interface{}, create func() interface{}) interface{} {
	if v, ok := gc.cache[key]; ok {
		return v
	}
	v := create()
	gc.cache[key] = v
	return v
}

// ExportBinary writes the document as a single glb blob.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}

// ExportText writes the document as plain json. External buffers keep
// their uris, embedded ones become data uris.
func ExportText(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = false
	return encoder.Encode(doc)
}
