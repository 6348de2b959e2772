package scene

type Wrap int

const (
	WRAP_REPEAT Wrap = iota
	WRAP_CLAMP_TO_EDGE
	WRAP_MIRRORED_REPEAT
)

type Filter int

const (
	FILTER_NEAREST Filter = iota
	FILTER_LINEAR
	FILTER_NEAREST_MIPMAP_NEAREST
	FILTER_LINEAR_MIPMAP_NEAREST
	FILTER_NEAREST_MIPMAP_LINEAR
	FILTER_LINEAR_MIPMAP_LINEAR
)

// Mipmapped reports whether the filter samples mip levels, which tells a
// renderer it has to generate them.
func (f Filter) Mipmapped() bool {
	switch f {
	case FILTER_NEAREST_MIPMAP_NEAREST, FILTER_LINEAR_MIPMAP_NEAREST,
		FILTER_NEAREST_MIPMAP_LINEAR, FILTER_LINEAR_MIPMAP_LINEAR:
		return true
	default:
		return false
	}
}

// Texture is sampler state plus a deferred image source. Pixel data is
// fetched by whoever consumes the texture, not by the loader.
type Texture struct {
	Name   string
	Image  string // uri, resolved relative to the document
	Format uint32 // gl pixel format value

	WrapS     Wrap
	WrapT     Wrap
	MinFilter Filter
	MagFilter Filter
}
