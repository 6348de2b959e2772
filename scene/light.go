package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightType int

const (
	LIGHT_DIRECTIONAL LightType = iota
	LIGHT_POINT
	LIGHT_SPOT
	LIGHT_AMBIENT
)

func (t LightType) String() string {
	switch t {
	case LIGHT_DIRECTIONAL:
		return "directional"
	case LIGHT_POINT:
		return "point"
	case LIGHT_SPOT:
		return "spot"
	case LIGHT_AMBIENT:
		return "ambient"
	default:
		return "unknown"
	}
}

type Light struct {
	Name      string
	Type      LightType
	Color     mgl32.Vec3
	Intensity float32
	Distance  float32

	ConstantAttenuation  float32
	LinearAttenuation    float32
	QuadraticAttenuation float32

	FallOffAngle    float32
	FallOffExponent float32
}
