package compute

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"isoterrain/internal/marching"
)

// Cell results come back in std140 layout: a u32 triangle count, then five
// triangle slots of three vec3s each, every vec3 padded to 16 bytes.
const (
	cellStride      = 256
	cellTrisOffset  = 16
	triangleStride  = 48
	vec3Stride      = 16
	maxCellTris     = marching.MaxTrianglesPerCell
)

func readVec3(raw []byte) mgl32.Vec3 {
	return mgl32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(raw[0:])),
		math.Float32frombits(binary.LittleEndian.Uint32(raw[4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(raw[8:])),
	}
}

// decodeCells unpacks the mapped result buffer into the triangle soup,
// cells in buffer order, skipping empty slots.
func decodeCells(raw []byte) ([]marching.Triangle, error) {
	if len(raw)%cellStride != 0 {
		return nil, fmt.Errorf("result buffer length %d is not a multiple of the cell stride %d", len(raw), cellStride)
	}
	var tris []marching.Triangle
	for off := 0; off < len(raw); off += cellStride {
		count := binary.LittleEndian.Uint32(raw[off:])
		if count > maxCellTris {
			return nil, fmt.Errorf("cell at offset %d reports %d triangles, max is %d", off, count, maxCellTris)
		}
		for t := uint32(0); t < count; t++ {
			base := off + cellTrisOffset + int(t)*triangleStride
			tris = append(tris, marching.Triangle{
				A: readVec3(raw[base:]),
				B: readVec3(raw[base+vec3Stride:]),
				C: readVec3(raw[base+2*vec3Stride:]),
			})
		}
	}
	return tris, nil
}
