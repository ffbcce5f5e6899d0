package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"isoterrain/internal/field"
	"isoterrain/internal/marching"
)

// Builder polygonizes one chunk of the density field on the CPU. A Builder
// is immutable after construction and safe to use from concurrent workers;
// Build has no side effects on shared state.
type Builder struct {
	field       *field.Density
	res         int
	cellSize    float32
	iso         float32
	fieldOffset mgl32.Vec3
}

// NewBuilder creates a chunk mesh builder with res cells per axis.
func NewBuilder(f *field.Density, res int, cellSize, iso float32) *Builder {
	return &Builder{field: f, res: res, cellSize: cellSize, iso: iso}
}

// NewBuilderOffset creates a builder whose sampling domain is translated by
// off, for animated terrain. The seed is unchanged.
func NewBuilderOffset(f *field.Density, res int, cellSize, iso float32, off mgl32.Vec3) *Builder {
	b := NewBuilder(f, res, cellSize, iso)
	b.fieldOffset = off
	return b
}

// ChunkWorldSize returns the world-unit edge length of one chunk.
func (b *Builder) ChunkWorldSize() float32 {
	return float32(b.res) * b.cellSize
}

// Build evaluates the density field over the chunk's (res+1)-cubed corner
// grid, polygonizes every cell, and returns the flattened mesh payload.
// Vertex positions are chunk-local; the chunk origin is derived from the
// coordinate only for sampling, so adjacent chunks see a continuous field.
// Deterministic: the same coordinate and field always produce byte-identical
// output.
func (b *Builder) Build(coord ChunkCoord) (*Data, error) {
	origin := coord.Origin(b.ChunkWorldSize())
	n := b.res + 1

	// Sample each grid corner once instead of 8 times per cell.
	values := make([]float32, n*n*n)
	idx := func(x, y, z int) int { return (x*n+y)*n + z }
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				p := mgl32.Vec3{
					origin.X() + float32(x)*b.cellSize,
					origin.Y() + float32(y)*b.cellSize,
					origin.Z() + float32(z)*b.cellSize,
				}
				values[idx(x, y, z)] = b.field.SampleOffset(p, b.fieldOffset)
			}
		}
	}

	var tris []marching.Triangle
	var cell marching.Cell
	for x := 0; x < b.res; x++ {
		for y := 0; y < b.res; y++ {
			for z := 0; z < b.res; z++ {
				for i, off := range marching.CornerOffsets {
					cx := x + int(off.X())
					cy := y + int(off.Y())
					cz := z + int(off.Z())
					cell[i] = marching.Sample{
						Position: mgl32.Vec3{
							(float32(x) + off.X()) * b.cellSize,
							(float32(y) + off.Y()) * b.cellSize,
							(float32(z) + off.Z()) * b.cellSize,
						},
						Value: values[idx(cx, cy, cz)],
					}
				}
				tris = append(tris, marching.Polygonise(cell, b.iso)...)
			}
		}
	}

	return FromTriangles(tris), nil
}
