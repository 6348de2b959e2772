package document

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/gltf_scene_browser/config"
)

// GL constant values used by the schema. Legacy documents may spell these
// as names, see GLEnum.
const (
	GL_BYTE           = 5120
	GL_UNSIGNED_BYTE  = 5121
	GL_SHORT          = 5122
	GL_UNSIGNED_SHORT = 5123
	GL_INT            = 5124
	GL_UNSIGNED_INT   = 5125
	GL_FLOAT          = 5126
	GL_HALF_FLOAT     = 5131
	GL_HALF_FLOAT_OES = 36193

	GL_FLOAT_VEC2 = 35664
	GL_FLOAT_VEC3 = 35665
	GL_FLOAT_VEC4 = 35666
	GL_FLOAT_MAT2 = 35674
	GL_FLOAT_MAT3 = 35675
	GL_FLOAT_MAT4 = 35676
	GL_SAMPLER_2D = 35678

	GL_NEAREST                = 9728
	GL_LINEAR                 = 9729
	GL_NEAREST_MIPMAP_NEAREST = 9984
	GL_LINEAR_MIPMAP_NEAREST  = 9985
	GL_NEAREST_MIPMAP_LINEAR  = 9986
	GL_LINEAR_MIPMAP_LINEAR   = 9987

	GL_CLAMP_TO_EDGE   = 33071
	GL_MIRRORED_REPEAT = 33648
	GL_REPEAT          = 10497

	GL_TEXTURE_2D = 3553
	GL_RGBA       = 6408

	GL_CULL_FACE  = 2884
	GL_DEPTH_TEST = 2929
	GL_BLEND      = 3042

	GL_TRIANGLES = 4
)

const (
	SHAPE_SCALAR = "SCALAR"
	SHAPE_VEC2   = "VEC2"
	SHAPE_VEC3   = "VEC3"
	SHAPE_VEC4   = "VEC4"
	SHAPE_MAT2   = "MAT2"
	SHAPE_MAT3   = "MAT3"
	SHAPE_MAT4   = "MAT4"
)

// ShapeComponents returns how many numeric components one element of the
// given accessor shape holds, 0 for unknown shapes.
func ShapeComponents(shape string) int {
	switch shape {
	case SHAPE_SCALAR:
		return 1
	case SHAPE_VEC2:
		return 2
	case SHAPE_VEC3:
		return 3
	case SHAPE_VEC4:
		return 4
	case SHAPE_MAT2:
		return 4
	case SHAPE_MAT3:
		return 9
	case SHAPE_MAT4:
		return 16
	default:
		return 0
	}
}

// ComponentSize returns the byte width of one component of the given GL
// component type, 0 for unsupported types.
func ComponentSize(componentType uint32) int {
	switch componentType {
	case GL_BYTE, GL_UNSIGNED_BYTE:
		return 1
	case GL_SHORT, GL_UNSIGNED_SHORT, GL_HALF_FLOAT, GL_HALF_FLOAT_OES:
		return 2
	case GL_INT, GL_UNSIGNED_INT, GL_FLOAT:
		return 4
	default:
		return 0
	}
}

type Asset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

type Scene struct {
	Nodes []string `json:"nodes"`
}

type Buffer struct {
	URI        string `json:"uri"`
	Path       string `json:"path"` // legacy spelling of uri
	ByteLength uint32 `json:"byteLength"`
}

type BufferView struct {
	Buffer     string `json:"buffer"`
	ByteOffset uint32 `json:"byteOffset"`
	ByteLength uint32 `json:"byteLength"`
	Target     GLEnum `json:"target"`
}

type Accessor struct {
	BufferView    string       `json:"bufferView"`
	ByteOffset    uint32       `json:"byteOffset"`
	ByteStride    uint32       `json:"byteStride"`
	ComponentType uint32       `json:"componentType"`
	Type          AccessorType `json:"type"`
	Count         uint32       `json:"count"`
	Min           []float32    `json:"min"`
	Max           []float32    `json:"max"`
}

// Components returns the per-element component count after normalization.
func (a *Accessor) Components() int {
	return ShapeComponents(a.Type.Shape)
}

type Image struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
	Path string `json:"path"` // legacy spelling of uri
}

type Sampler struct {
	MagFilter GLEnum `json:"magFilter"`
	MinFilter GLEnum `json:"minFilter"`
	WrapS     GLEnum `json:"wrapS"`
	WrapT     GLEnum `json:"wrapT"`
}

type Texture struct {
	Sampler        string `json:"sampler"`
	Source         string `json:"source"`
	Target         GLEnum `json:"target"`
	Format         GLEnum `json:"format"`
	InternalFormat GLEnum `json:"internalFormat"`
}

type Material struct {
	Name              string            `json:"name"`
	Technique         string            `json:"technique"`
	Values            map[string]*Value `json:"values"`
	InstanceTechnique *InstanceTechnique `json:"instanceTechnique"` // legacy wrapper
}

type InstanceTechnique struct {
	Technique string            `json:"technique"`
	Values    map[string]*Value `json:"values"`
}

type Technique struct {
	Name       string                `json:"name"`
	Parameters map[string]*TechParam `json:"parameters"`
	States     *States               `json:"states"`
	Program    string                `json:"program"`

	// legacy generation wraps program and states in passes[pass]
	Pass   string               `json:"pass"`
	Passes map[string]*TechPass `json:"passes"`
}

type TechParam struct {
	Type     GLEnum `json:"type"`
	Semantic string `json:"semantic"`
	Value    *Value `json:"value"`
}

type TechPass struct {
	Details         *PassDetails     `json:"details"`
	InstanceProgram *InstanceProgram `json:"instanceProgram"`
	States          *States          `json:"states"`
}

type PassDetails struct {
	Type          string         `json:"type"`
	CommonProfile *CommonProfile `json:"commonProfile"`
}

type CommonProfile struct {
	LightingModel string   `json:"lightingModel"`
	Parameters    []string `json:"parameters"`
}

type InstanceProgram struct {
	Program    string            `json:"program"`
	Uniforms   map[string]string `json:"uniforms"`
	Attributes map[string]string `json:"attributes"`
}

type States struct {
	Enable []GLEnum `json:"enable"`

	// legacy flag spelling
	CullFaceEnable  *RelaxedBool `json:"cullFaceEnable"`
	DepthTestEnable *RelaxedBool `json:"depthTestEnable"`
	DepthMask       *RelaxedBool `json:"depthMask"`
	BlendEnable     *RelaxedBool `json:"blendEnable"`
}

func (s *States) hasEnable(v GLEnum) bool {
	for _, e := range s.Enable {
		if e == v {
			return true
		}
	}
	return false
}

func (s *States) CullEnabled() bool {
	if s == nil {
		return false
	}
	if s.CullFaceEnable != nil {
		return bool(*s.CullFaceEnable)
	}
	return s.hasEnable(GL_CULL_FACE)
}

func (s *States) BlendEnabled() bool {
	if s == nil {
		return false
	}
	if s.BlendEnable != nil {
		return bool(*s.BlendEnable)
	}
	return s.hasEnable(GL_BLEND)
}

func (s *States) DepthTest() (value bool, ok bool) {
	if s == nil {
		return false, false
	}
	if s.DepthTestEnable != nil {
		return bool(*s.DepthTestEnable), true
	}
	if len(s.Enable) > 0 {
		return s.hasEnable(GL_DEPTH_TEST), true
	}
	return false, false
}

func (s *States) DepthWrite() (value bool, ok bool) {
	if s == nil {
		return false, false
	}
	if s.DepthMask != nil {
		return bool(*s.DepthMask), true
	}
	return false, false
}

type Mesh struct {
	Name       string       `json:"name"`
	Primitives []*Primitive `json:"primitives"`
}

type Primitive struct {
	Attributes map[string]string `json:"attributes"`
	Indices    string            `json:"indices"`
	Material   string            `json:"material"`
	Mode       *GLEnum           `json:"mode"`
	Primitive  *GLEnum           `json:"primitive"` // legacy spelling of mode
}

type Node struct {
	Name         string        `json:"name"`
	Children     []string      `json:"children"`
	Matrix       []float32     `json:"matrix"`
	Translation  []float32     `json:"translation"`
	Rotation     []float32     `json:"rotation"` // axis-angle [x y z rad]
	Scale        []float32     `json:"scale"`
	Meshes       []string      `json:"meshes"`
	Camera       string        `json:"camera"`
	Lights       []string      `json:"lights"`
	Light        string        `json:"light"` // legacy singular spelling
	JointID      string        `json:"jointId"`
	InstanceSkin *InstanceSkin `json:"instanceSkin"`
}

type InstanceSkin struct {
	Skin      string   `json:"skin"`
	Skeletons []string `json:"skeletons"`
	Meshes    []string `json:"meshes"`
	Sources   []string `json:"sources"` // legacy spelling of meshes
}

type Skin struct {
	Name                string   `json:"name"`
	Joints              []string `json:"joints"`
	InverseBindMatrices string   `json:"inverseBindMatrices"`
}

type Animation struct {
	Name       string             `json:"name"`
	Channels   []*AnimationChannel `json:"channels"`
	Parameters map[string]string  `json:"parameters"`
}

type AnimationChannel struct {
	Target *AnimationTarget `json:"target"`
}

type AnimationTarget struct {
	ID string `json:"id"`
}

type Camera struct {
	Name         string       `json:"name"`
	Type         string       `json:"type"`
	Projection   string       `json:"projection"` // legacy spelling of type
	Perspective  *Perspective `json:"perspective"`
	Orthographic *Ortho       `json:"orthographic"`

	// legacy generation keeps projection parameters flat on the camera
	YFov        *float32 `json:"yfov"`
	AspectRatio *float32 `json:"aspectRatio"`
	ZNear       *float32 `json:"znear"`
	ZFar        *float32 `json:"zfar"`
	XMag        *float32 `json:"xmag"`
	YMag        *float32 `json:"ymag"`
}

type Perspective struct {
	YFov        float32 `json:"yfov"`
	AspectRatio float32 `json:"aspectRatio"`
	ZNear       float32 `json:"znear"`
	ZFar        float32 `json:"zfar"`
}

type Ortho struct {
	XMag  float32 `json:"xmag"`
	YMag  float32 `json:"ymag"`
	ZNear float32 `json:"znear"`
	ZFar  float32 `json:"zfar"`
}

type Light struct {
	Name        string       `json:"name"`
	Type        string       `json:"type"`
	Directional *LightParams `json:"directional"`
	Point       *LightParams `json:"point"`
	Spot        *LightParams `json:"spot"`
	Ambient     *LightParams `json:"ambient"`
}

type LightParams struct {
	Color                []float32 `json:"color"`
	Intensity            *float32  `json:"intensity"`
	Distance             *float32  `json:"distance"`
	ConstantAttenuation  *float32  `json:"constantAttenuation"`
	LinearAttenuation    *float32  `json:"linearAttenuation"`
	QuadraticAttenuation *float32  `json:"quadraticAttenuation"`
	FallOffAngle         *float32  `json:"fallOffAngle"`
	FallOffExponent      *float32  `json:"fallOffExponent"`
}

// Params returns the parameter block matching the light's declared type,
// nil when the type is unknown or the block is missing.
func (l *Light) Params() *LightParams {
	switch l.Type {
	case "directional":
		return l.Directional
	case "point":
		return l.Point
	case "spot":
		return l.Spot
	case "ambient":
		return l.Ambient
	default:
		return nil
	}
}

// Document is the parsed top-level scene descriptor. All collections map
// document-local names to entries. Immutable once parsed.
type Document struct {
	Asset       Asset                  `json:"asset"`
	Scene       string                 `json:"scene"`
	Scenes      map[string]*Scene      `json:"scenes"`
	Nodes       map[string]*Node       `json:"nodes"`
	Meshes      map[string]*Mesh       `json:"meshes"`
	Accessors   map[string]*Accessor   `json:"accessors"`
	BufferViews map[string]*BufferView `json:"bufferViews"`
	Buffers     map[string]*Buffer     `json:"buffers"`
	Materials   map[string]*Material   `json:"materials"`
	Techniques  map[string]*Technique  `json:"techniques"`
	Images      map[string]*Image      `json:"images"`
	Samplers    map[string]*Sampler    `json:"samplers"`
	Textures    map[string]*Texture    `json:"textures"`
	Skins       map[string]*Skin       `json:"skins"`
	Animations  map[string]*Animation  `json:"animations"`
	Cameras     map[string]*Camera     `json:"cameras"`
	Lights      map[string]*Light      `json:"lights"`

	Name   string               `json:"-"`
	Schema config.SchemaVersion `json:"-"`
}

// Parse decodes a scene document from raw bytes. Binary container files are
// split first; their embedded body, when present, is returned alongside the
// document so the caller can register it as a preloaded buffer.
func Parse(name string, data []byte) (*Document, []byte, error) {
	var body []byte
	if IsContainer(data) {
		var err error
		data, body, err = SplitContainer(data)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "Failed to split container %q", name)
		}
	}

	d := &Document{Name: name}
	if err := json.Unmarshal(data, d); err != nil {
		return nil, nil, errors.Wrapf(err, "Failed to unmarshal document %q", name)
	}

	d.Schema = detectSchema(d)
	d.normalize()

	return d, body, nil
}

// detectSchema decides which schema generation a document was authored
// against. An explicit config pin wins, then the asset version, then
// structural probes over generation-specific constructs.
func detectSchema(d *Document) config.SchemaVersion {
	if v := config.GetSchemaVersion(); v != config.SchemaUnknown {
		return v
	}
	if d.Asset.Version != "" {
		if strings.HasPrefix(d.Asset.Version, "0") {
			return config.Schema08
		}
		return config.Schema10
	}
	for _, t := range d.Techniques {
		if len(t.Passes) != 0 {
			return config.Schema08
		}
	}
	for _, a := range d.Accessors {
		if a.Type.Shape == "" && a.Type.Enum != 0 {
			return config.Schema08
		}
	}
	for _, b := range d.Buffers {
		if b.URI == "" && b.Path != "" {
			return config.Schema08
		}
	}
	return config.Schema10
}
