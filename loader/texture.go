package loader

import (
	"log"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/fetch"
	"github.com/mogaika/gltf_scene_browser/scene"
)

func translateWrap(e document.GLEnum) scene.Wrap {
	switch uint32(e) {
	case 0, document.GL_REPEAT:
		return scene.WRAP_REPEAT
	case document.GL_CLAMP_TO_EDGE:
		return scene.WRAP_CLAMP_TO_EDGE
	case document.GL_MIRRORED_REPEAT:
		return scene.WRAP_MIRRORED_REPEAT
	default:
		log.Printf("Unknown wrap mode %v, assuming repeat", uint32(e))
		return scene.WRAP_REPEAT
	}
}

func translateFilter(e document.GLEnum, def scene.Filter) scene.Filter {
	switch uint32(e) {
	case 0:
		return def
	case document.GL_NEAREST:
		return scene.FILTER_NEAREST
	case document.GL_LINEAR:
		return scene.FILTER_LINEAR
	case document.GL_NEAREST_MIPMAP_NEAREST:
		return scene.FILTER_NEAREST_MIPMAP_NEAREST
	case document.GL_LINEAR_MIPMAP_NEAREST:
		return scene.FILTER_LINEAR_MIPMAP_NEAREST
	case document.GL_NEAREST_MIPMAP_LINEAR:
		return scene.FILTER_NEAREST_MIPMAP_LINEAR
	case document.GL_LINEAR_MIPMAP_LINEAR:
		return scene.FILTER_LINEAR_MIPMAP_LINEAR
	default:
		log.Printf("Unknown texture filter %v, assuming linear", uint32(e))
		return def
	}
}

// resolveTextures joins texture, image and sampler descriptors into the
// library texture table. Runs before materials so texture-valued uniforms
// can look entries up by name.
func (s *parseState) resolveTextures() {
	for _, name := range sortedKeys(s.doc.Textures) {
		dt := s.doc.Textures[name]
		if dt.Target != 0 && uint32(dt.Target) != document.GL_TEXTURE_2D {
			log.Printf("Texture %q has unsupported target %v, skipping", name, uint32(dt.Target))
			continue
		}
		img, ok := s.doc.Images[dt.Source]
		if !ok {
			log.Printf("Texture %q references missing image %q, skipping", name, dt.Source)
			continue
		}

		tex := &scene.Texture{
			Name:      name,
			Image:     fetch.Resolve(s.doc.Name, img.URI),
			Format:    uint32(dt.Format),
			WrapS:     scene.WRAP_REPEAT,
			WrapT:     scene.WRAP_REPEAT,
			MinFilter: scene.FILTER_LINEAR,
			MagFilter: scene.FILTER_LINEAR,
		}
		if tex.Format == 0 {
			tex.Format = document.GL_RGBA
		}

		if smp, ok := s.doc.Samplers[dt.Sampler]; ok {
			tex.WrapS = translateWrap(smp.WrapS)
			tex.WrapT = translateWrap(smp.WrapT)
			tex.MinFilter = translateFilter(smp.MinFilter, scene.FILTER_LINEAR)
			tex.MagFilter = translateFilter(smp.MagFilter, scene.FILTER_LINEAR)
		} else if dt.Sampler != "" {
			log.Printf("Texture %q references missing sampler %q, using defaults", name, dt.Sampler)
		}

		s.lib.Textures[name] = tex
	}
}
