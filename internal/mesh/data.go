// Package mesh defines chunk coordinates, the renderable mesh payload, and
// the CPU chunk mesh builder.
package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"isoterrain/internal/marching"
)

// ChunkCoord identifies a chunk on the integer chunk grid.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Origin returns the world-space position of the chunk's minimum corner.
// Chunks are centered on coord*size, so the origin is offset by half a chunk.
func (c ChunkCoord) Origin(chunkWorldSize float32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X)*chunkWorldSize - chunkWorldSize/2,
		float32(c.Y)*chunkWorldSize - chunkWorldSize/2,
		float32(c.Z)*chunkWorldSize - chunkWorldSize/2,
	}
}

// DistSq returns the squared chunk-grid distance to o.
func (c ChunkCoord) DistSq(o ChunkCoord) int {
	dx := c.X - o.X
	dy := c.Y - o.Y
	dz := c.Z - o.Z
	return dx*dx + dy*dy + dz*dz
}

// Data is one chunk's renderable geometry: an un-indexed triangle soup with
// flat positions (3 floats per vertex), per-vertex normals replicated from
// the face normal, placeholder UVs, and a trivial ascending index array.
type Data struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
}

// VertexCount returns the number of vertices in the payload.
func (d *Data) VertexCount() int {
	return len(d.Positions) / 3
}

// TriangleCount returns the number of triangles in the payload.
func (d *Data) TriangleCount() int {
	return len(d.Indices) / 3
}

// FromTriangles flattens a triangle list into the renderable layout.
// Vertices are emitted in triangle order; face normals are computed as
// normalize(cross(b-a, c-a)) and written to all three vertices, giving flat
// shading with no smoothing across shared edges.
func FromTriangles(tris []marching.Triangle) *Data {
	n := len(tris)
	d := &Data{
		Positions: make([]float32, 0, n*9),
		Normals:   make([]float32, 0, n*9),
		UVs:       make([]float32, 0, n*6),
		Indices:   make([]uint32, 0, n*3),
	}

	for _, tri := range tris {
		normal := tri.Normal()
		for _, v := range [3]mgl32.Vec3{tri.A, tri.B, tri.C} {
			d.Indices = append(d.Indices, uint32(len(d.Positions)/3))
			d.Positions = append(d.Positions, v.X(), v.Y(), v.Z())
			d.Normals = append(d.Normals, normal.X(), normal.Y(), normal.Z())
			d.UVs = append(d.UVs, 0, 0)
		}
	}
	return d
}
