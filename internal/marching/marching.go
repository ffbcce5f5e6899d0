package marching

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sample is one corner evaluation of the density field.
type Sample struct {
	Position mgl32.Vec3
	Value    float32
}

// Cell is the 8 corner samples of one cube, in the canonical corner order
// documented in tables.go. The ordering must match the tables exactly or the
// emitted winding and geometry are wrong.
type Cell [8]Sample

// Triangle is three vertices stored by value. The mesh is a triangle soup:
// adjacent triangles duplicate vertices on purpose, there is no welding.
type Triangle struct {
	A, B, C mgl32.Vec3
}

// MaxTrianglesPerCell is the most triangles a single configuration can emit.
const MaxTrianglesPerCell = 5

// CornerOffsets gives each corner's position within a unit cell, in the
// canonical order. Scale by the cell size and add the cell origin to get a
// corner's world position.
var CornerOffsets = [8]mgl32.Vec3{
	{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1},
	{0, 1, 0}, {1, 1, 0}, {1, 1, 1}, {0, 1, 1},
}

// configIndex builds the 8-bit corner configuration: bit i set when corner i
// is below the iso-level. Flipping the comparison flips winding everywhere,
// so it is fixed here and nowhere else.
func configIndex(cell *Cell, iso float32) int {
	idx := 0
	for i := range cell {
		if cell[i].Value < iso {
			idx |= 1 << i
		}
	}
	return idx
}

// interpVertex returns the iso-surface crossing point on the edge between
// samples a and b. The divisor is guarded: equal corner values degenerate to
// the midpoint, and t is clamped to [0,1] so the point always stays on the
// edge segment.
func interpVertex(a, b Sample, iso float32) mgl32.Vec3 {
	delta := b.Value - a.Value
	t := float32(0.5)
	if math32.Abs(delta) > 1e-7 {
		t = (iso - a.Value) / delta
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	return a.Position.Add(b.Position.Sub(a.Position).Mul(t))
}

// Polygonise converts one cell into 0..5 triangles of the iso-surface
// density(p) = iso. The input cell is never mutated and the result is
// deterministic for identical input. Configurations 0x00 and 0xff (cell
// fully inside or outside) emit nothing.
func Polygonise(cell Cell, iso float32) []Triangle {
	idx := configIndex(&cell, iso)

	edges := edgeTable[idx]
	if edges == 0 {
		return nil
	}

	var verts [12]mgl32.Vec3
	for e := 0; e < 12; e++ {
		if edges&(1<<e) == 0 {
			continue
		}
		c := edgeCorners[e]
		verts[e] = interpVertex(cell[c[0]], cell[c[1]], iso)
	}

	tris := make([]Triangle, 0, MaxTrianglesPerCell)
	row := &triTable[idx]
	for i := 0; row[i] != -1; i += 3 {
		if i+2 >= len(row) {
			// A row without a sentinel means the constant tables are
			// corrupted; that is a programming error, not a runtime one.
			panic(fmt.Sprintf("marching: malformed triangle table entry %#02x", idx))
		}
		tris = append(tris, Triangle{
			A: verts[row[i]],
			B: verts[row[i+1]],
			C: verts[row[i+2]],
		})
	}
	return tris
}

// TriangleCount returns how many triangles a configuration emits, straight
// from the table. Exposed for table-consistency checks.
func TriangleCount(config int) int {
	n := 0
	row := &triTable[config]
	for i := 0; i < len(row) && row[i] != -1; i += 3 {
		n++
	}
	return n
}

// Normal returns the face normal normalize(cross(b-a, c-a)) used for flat
// shading. Degenerate triangles yield the zero vector.
func (t Triangle) Normal() mgl32.Vec3 {
	n := t.B.Sub(t.A).Cross(t.C.Sub(t.A))
	if n.Len() == 0 {
		return mgl32.Vec3{}
	}
	return n.Normalize()
}
