package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"ibl-renderer/core"
)

// CreateSphere generates a UV sphere with its poles on ±Z. Sectors run
// around the Z axis and stacks from the north pole down. When flipped is set
// every triangle's winding is reversed. Tangents follow +U.
func CreateSphere(radius float32, sectors, stacks int, flipped bool) *Mesh {
	if sectors < 3 {
		sectors = 3
	}
	if stacks < 2 {
		stacks = 2
	}

	vertices := make([]core.Vertex, 0, (stacks+1)*(sectors+1))
	sectorStep := 2 * math32.Pi / float32(sectors)
	stackStep := math32.Pi / float32(stacks)

	for i := 0; i <= stacks; i++ {
		stackAngle := math32.Pi/2 - float32(i)*stackStep
		xy := math32.Cos(stackAngle)
		z := math32.Sin(stackAngle)

		for j := 0; j <= sectors; j++ {
			sectorAngle := float32(j) * sectorStep
			n := mgl32.Vec3{xy * math32.Cos(sectorAngle), xy * math32.Sin(sectorAngle), z}
			vertices = append(vertices, core.Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       mgl32.Vec2{float32(j) / float32(sectors), float32(i) / float32(stacks)},
			})
		}
	}

	tri := func(dst []uint32, a, b, c uint32) []uint32 {
		if flipped {
			return append(dst, a, c, b)
		}
		return append(dst, a, b, c)
	}

	indices := make([]uint32, 0, 6*sectors*(stacks-1))
	for i := 0; i < stacks; i++ {
		k1 := uint32(i * (sectors + 1))
		k2 := k1 + uint32(sectors+1)
		for j := 0; j < sectors; j, k1, k2 = j+1, k1+1, k2+1 {
			// the first and last stacks are fans around the poles
			if i != 0 {
				indices = tri(indices, k1, k2, k1+1)
			}
			if i != stacks-1 {
				indices = tri(indices, k1+1, k2, k2+1)
			}
		}
	}

	m := CreateMeshFromData("Sphere", vertices, indices)
	ComputeTangents(m)
	return m
}
