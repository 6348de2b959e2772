package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Geometry owns the attribute arrays of one mesh primitive. Never mutated
// after construction except by GenerateTangents.
type Geometry struct {
	Name string

	Positions [][3]float32
	Normals   [][3]float32
	UV0       [][2]float32
	UV1       [][2]float32
	Colors    [][4]float32
	Joints    [][4]uint16
	Weights   [][3]float32
	Tangents  [][4]float32

	Indices []uint32
	// IndexBits preserves the declared index width, 16 or 32, so
	// exporters can emit indices at the source precision.
	IndexBits int

	BBoxMin   mgl32.Vec3
	BBoxMax   mgl32.Vec3
	HasBounds bool
}

func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

func (g *Geometry) TriangleCount() int {
	if len(g.Indices) != 0 {
		return len(g.Indices) / 3
	}
	return len(g.Positions) / 3
}

// triangle returns the vertex indices of triangle i, honoring the index
// buffer when present.
func (g *Geometry) triangle(i int) (uint32, uint32, uint32) {
	if len(g.Indices) != 0 {
		return g.Indices[i*3], g.Indices[i*3+1], g.Indices[i*3+2]
	}
	return uint32(i * 3), uint32(i*3 + 1), uint32(i*3 + 2)
}

// GenerateTangents derives per-vertex tangents from positions and the
// first uv set. Each triangle writes its tangent to all three vertices,
// last write wins for shared ones. The w component stores handedness.
func (g *Geometry) GenerateTangents() {
	if len(g.Positions) == 0 || len(g.UV0) < len(g.Positions) {
		return
	}
	g.Tangents = make([][4]float32, len(g.Positions))

	for i := 0; i < g.TriangleCount(); i++ {
		i0, i1, i2 := g.triangle(i)
		if int(i0) >= len(g.Positions) || int(i1) >= len(g.Positions) || int(i2) >= len(g.Positions) {
			continue
		}

		p0 := mgl32.Vec3(g.Positions[i0])
		edge1 := mgl32.Vec3(g.Positions[i1]).Sub(p0)
		edge2 := mgl32.Vec3(g.Positions[i2]).Sub(p0)

		deltaU1 := g.UV0[i1][0] - g.UV0[i0][0]
		deltaV1 := g.UV0[i1][1] - g.UV0[i0][1]
		deltaU2 := g.UV0[i2][0] - g.UV0[i0][0]
		deltaV2 := g.UV0[i2][1] - g.UV0[i0][1]

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if dividend == 0 {
			continue
		}
		fc := 1.0 / dividend

		tangent := mgl32.Vec3{
			fc * (deltaV2*edge1[0] - deltaV1*edge2[0]),
			fc * (deltaV2*edge1[1] - deltaV1*edge2[1]),
			fc * (deltaV2*edge1[2] - deltaV1*edge2[2]),
		}
		if tangent.Len() == 0 {
			continue
		}
		tangent = tangent.Normalize()

		handedness := float32(1)
		if deltaV1*deltaU2-deltaV2*deltaU1 < 0 {
			handedness = -1
		}

		t4 := [4]float32{tangent[0], tangent[1], tangent[2], handedness}
		g.Tangents[i0] = t4
		g.Tangents[i1] = t4
		g.Tangents[i2] = t4
	}
}

// Mesh pairs one geometry with its resolved material.
type Mesh struct {
	Name     string
	Geometry *Geometry
	Material *Material
}
