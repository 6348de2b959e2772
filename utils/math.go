package utils

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// result in radians
func QuatToEuler(q mgl32.Quat) (e mgl32.Vec3) {
	sinr_cosp := float64(2 * (q.W*q.X() + q.Y()*q.Z()))
	cosr_cosp := float64(1 - 2*(q.X()*q.X()+q.Y()*q.Y()))

	e[0] = float32(math.Atan2(sinr_cosp, cosr_cosp))

	sinp := float64(2 * (q.W*q.Y() - q.Z()*q.X()))
	if math.Abs(sinp) >= 1 {
		e[1] = math.Pi / 2
		if sinp < 0 {
			e[1] *= -1
		}
	} else {
		e[1] = float32(math.Asin(sinp))
	}

	siny_cosp := float64(2 * (q.W*q.Z() + q.X()*q.Y()))
	cosy_cosp := float64(1 - 2*(q.Y()*q.Y()+q.Z()*q.Z()))
	e[2] = float32(math.Atan2(siny_cosp, cosy_cosp))

	return e
}

func RadiansToDegreeV3(v mgl32.Vec3) mgl32.Vec3 {
	return v.Mul(180.0 / math.Pi)
}

// AxisAngleToQuat converts a rotation given as axis + angle in radians to a
// normalized quaternion. A zero-length axis yields the identity rotation.
func AxisAngleToQuat(axis mgl32.Vec3, angle float32) mgl32.Quat {
	if axis.Len() == 0 {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatRotate(angle, axis.Normalize()).Normalize()
}

// DecomposeMat4 splits a column-major transform matrix into translation,
// rotation and scale. Shear and projection terms are not recovered.
func DecomposeMat4(m mgl32.Mat4) (translation mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	translation = m.Col(3).Vec3()

	c0 := m.Col(0).Vec3()
	c1 := m.Col(1).Vec3()
	c2 := m.Col(2).Vec3()
	scale = mgl32.Vec3{c0.Len(), c1.Len(), c2.Len()}

	// negative determinant means one basis axis is mirrored
	if m.Det() < 0 {
		scale[0] = -scale[0]
	}

	rot := mgl32.Ident4()
	if scale[0] != 0 {
		rot.SetCol(0, c0.Mul(1/scale[0]).Vec4(0))
	}
	if scale[1] != 0 {
		rot.SetCol(1, c1.Mul(1/scale[1]).Vec4(0))
	}
	if scale[2] != 0 {
		rot.SetCol(2, c2.Mul(1/scale[2]).Vec4(0))
	}
	rotation = mgl32.Mat4ToQuat(rot).Normalize()

	return translation, rotation, scale
}

func FloatArray32to64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}
