package marching

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// cellForConfig builds a unit cell whose corner values realize the given
// configuration at iso 0: set bits get value -1 (inside), clear bits +1.
func cellForConfig(config int) Cell {
	var c Cell
	for i := 0; i < 8; i++ {
		v := float32(1)
		if config&(1<<i) != 0 {
			v = -1
		}
		c[i] = Sample{Position: CornerOffsets[i], Value: v}
	}
	return c
}

func TestAllConfigsMatchTable(t *testing.T) {
	for config := 0; config < 256; config++ {
		cell := cellForConfig(config)
		tris := Polygonise(cell, 0)
		if got, want := len(tris), TriangleCount(config); got != want {
			t.Errorf("config %#02x: emitted %d triangles, table says %d", config, got, want)
		}
	}
}

func TestEmptyAndFullCells(t *testing.T) {
	if tris := Polygonise(cellForConfig(0x00), 0); len(tris) != 0 {
		t.Errorf("config 0x00 emitted %d triangles, want 0", len(tris))
	}
	if tris := Polygonise(cellForConfig(0xff), 0); len(tris) != 0 {
		t.Errorf("config 0xff emitted %d triangles, want 0", len(tris))
	}
}

func TestAllCornersOutside(t *testing.T) {
	// All corner values 1.0 with iso 0.7: every corner is outside, no surface.
	var cell Cell
	for i := range cell {
		cell[i] = Sample{Position: CornerOffsets[i], Value: 1.0}
	}
	if tris := Polygonise(cell, 0.7); len(tris) != 0 {
		t.Errorf("uniform cell emitted %d triangles, want 0", len(tris))
	}
}

func TestSingleCornerBelow(t *testing.T) {
	for corner := 0; corner < 8; corner++ {
		var cell Cell
		for i := range cell {
			v := float32(1.0)
			if i == corner {
				v = 0.0
			}
			cell[i] = Sample{Position: CornerOffsets[i], Value: v}
		}
		tris := Polygonise(cell, 0.5)
		if len(tris) != 1 {
			t.Errorf("corner %d below iso: emitted %d triangles, want 1", corner, len(tris))
		}
	}
}

func TestEdgeMaskDuality(t *testing.T) {
	// Complementary configurations cross the same edges.
	for config := 0; config < 256; config++ {
		if edgeTable[config] != edgeTable[255-config] {
			t.Errorf("edgeTable[%#02x] = %#03x but edgeTable[%#02x] = %#03x",
				config, edgeTable[config], 255-config, edgeTable[255-config])
		}
	}
}

func TestTriTableIndicesOnCrossedEdges(t *testing.T) {
	// Every edge index a configuration's triangles reference must be flagged
	// in that configuration's edge mask.
	for config := 0; config < 256; config++ {
		row := triTable[config]
		for i := 0; i < len(row) && row[i] != -1; i++ {
			e := row[i]
			if e < 0 || e > 11 {
				t.Fatalf("config %#02x: edge index %d out of range", config, e)
			}
			if edgeTable[config]&(uint16(1)<<uint(e)) == 0 {
				t.Errorf("config %#02x references edge %d not present in edge mask %#03x",
					config, e, edgeTable[config])
			}
		}
	}
}

// pointOnEdge reports whether p lies on the segment between the two corners,
// i.e. the implied interpolation factor is within [0,1] per axis.
func pointOnEdge(p, a, b mgl32.Vec3) bool {
	for axis := 0; axis < 3; axis++ {
		lo, hi := a[axis], b[axis]
		if lo > hi {
			lo, hi = hi, lo
		}
		if p[axis] < lo-1e-5 || p[axis] > hi+1e-5 {
			return false
		}
	}
	return true
}

func TestInterpolatedPointsStayOnEdges(t *testing.T) {
	// Random-ish corner values; every emitted vertex must sit on one of the
	// cell's 12 edges.
	values := [8]float32{0.9, -0.3, 0.1, -0.8, 0.4, -0.05, 0.7, -0.6}
	var cell Cell
	for i := range cell {
		cell[i] = Sample{Position: CornerOffsets[i], Value: values[i]}
	}
	tris := Polygonise(cell, 0)
	if len(tris) == 0 {
		t.Fatal("expected a surface crossing")
	}
	for _, tri := range tris {
		for _, p := range []mgl32.Vec3{tri.A, tri.B, tri.C} {
			ok := false
			for _, ec := range edgeCorners {
				if pointOnEdge(p, CornerOffsets[ec[0]], CornerOffsets[ec[1]]) {
					ok = true
					break
				}
			}
			if !ok {
				t.Errorf("vertex %v lies on no cell edge", p)
			}
		}
	}
}

func TestInterpEqualValuesMidpoint(t *testing.T) {
	a := Sample{Position: mgl32.Vec3{0, 0, 0}, Value: 0.5}
	b := Sample{Position: mgl32.Vec3{2, 0, 0}, Value: 0.5}
	p := interpVertex(a, b, 0.5)
	if p.X() != 1 {
		t.Errorf("equal corner values should interpolate to midpoint, got %v", p)
	}
}

func TestInterpClamped(t *testing.T) {
	// Iso outside the value range must clamp to the segment endpoints.
	a := Sample{Position: mgl32.Vec3{0, 0, 0}, Value: 0.0}
	b := Sample{Position: mgl32.Vec3{1, 0, 0}, Value: 0.001}
	p := interpVertex(a, b, 5.0)
	if p.X() < 0 || p.X() > 1 {
		t.Errorf("interpolation escaped the edge: %v", p)
	}
}

func TestPolygoniseDoesNotMutateInput(t *testing.T) {
	cell := cellForConfig(0x5a)
	before := cell
	Polygonise(cell, 0)
	if cell != before {
		t.Error("Polygonise mutated its input cell")
	}
}

func BenchmarkPolygonise(b *testing.B) {
	cell := cellForConfig(0x5a)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Polygonise(cell, 0)
	}
}
