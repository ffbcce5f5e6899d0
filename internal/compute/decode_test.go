package compute

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"isoterrain/internal/marching"
)

func putVec3(raw []byte, v mgl32.Vec3) {
	binary.LittleEndian.PutUint32(raw[0:], math.Float32bits(v.X()))
	binary.LittleEndian.PutUint32(raw[4:], math.Float32bits(v.Y()))
	binary.LittleEndian.PutUint32(raw[8:], math.Float32bits(v.Z()))
}

// encodeCell lays out one cell the way the kernel's std140 structs do.
func encodeCell(tris []marching.Triangle) []byte {
	raw := make([]byte, cellStride)
	binary.LittleEndian.PutUint32(raw, uint32(len(tris)))
	for i, tri := range tris {
		base := cellTrisOffset + i*triangleStride
		putVec3(raw[base:], tri.A)
		putVec3(raw[base+vec3Stride:], tri.B)
		putVec3(raw[base+2*vec3Stride:], tri.C)
	}
	return raw
}

func TestDecodeEmptyCells(t *testing.T) {
	raw := make([]byte, 4*cellStride)
	tris, err := decodeCells(raw)
	if err != nil {
		t.Fatalf("decodeCells: %v", err)
	}
	if len(tris) != 0 {
		t.Errorf("got %d triangles from empty cells", len(tris))
	}
}

func TestDecodeSkipsUnusedSlots(t *testing.T) {
	want := []marching.Triangle{
		{A: mgl32.Vec3{0, 0, 0}, B: mgl32.Vec3{1, 0, 0}, C: mgl32.Vec3{0, 1, 0}},
		{A: mgl32.Vec3{1, 1, 1}, B: mgl32.Vec3{2, 1, 1}, C: mgl32.Vec3{1, 2, 1}},
	}
	cell := encodeCell(want)
	// Garbage in the slots past triangle_count must be ignored.
	for i := cellTrisOffset + len(want)*triangleStride; i < cellStride; i++ {
		cell[i] = 0xff
	}

	tris, err := decodeCells(cell)
	if err != nil {
		t.Fatalf("decodeCells: %v", err)
	}
	if len(tris) != len(want) {
		t.Fatalf("got %d triangles, want %d", len(tris), len(want))
	}
	for i := range want {
		if tris[i] != want[i] {
			t.Errorf("triangle %d = %+v, want %+v", i, tris[i], want[i])
		}
	}
}

func TestDecodePreservesCellOrder(t *testing.T) {
	tri := func(x float32) marching.Triangle {
		return marching.Triangle{A: mgl32.Vec3{x, 0, 0}, B: mgl32.Vec3{x, 1, 0}, C: mgl32.Vec3{x, 0, 1}}
	}
	raw := append(encodeCell([]marching.Triangle{tri(1)}), encodeCell([]marching.Triangle{tri(2), tri(3)})...)

	tris, err := decodeCells(raw)
	if err != nil {
		t.Fatalf("decodeCells: %v", err)
	}
	if len(tris) != 3 {
		t.Fatalf("got %d triangles, want 3", len(tris))
	}
	for i, want := range []float32{1, 2, 3} {
		if tris[i].A.X() != want {
			t.Errorf("triangle %d out of order: A.X = %v, want %v", i, tris[i].A.X(), want)
		}
	}
}

func TestDecodeRejectsBadLength(t *testing.T) {
	if _, err := decodeCells(make([]byte, cellStride+1)); err == nil {
		t.Error("decodeCells accepted a truncated buffer")
	}
}

func TestDecodeRejectsOversizedCount(t *testing.T) {
	raw := make([]byte, cellStride)
	binary.LittleEndian.PutUint32(raw, maxCellTris+1)
	if _, err := decodeCells(raw); err == nil {
		t.Error("decodeCells accepted a triangle count past the slot limit")
	}
}

func TestKernelTablesMatchCPU(t *testing.T) {
	edges := marching.PackedEdgeTable()
	tris := marching.PackedTriangleTable()
	if len(edges) != 256 {
		t.Fatalf("edge table has %d entries", len(edges))
	}
	if len(tris) != 256*16 {
		t.Fatalf("triangle table has %d entries", len(tris))
	}
	for config := 0; config < 256; config++ {
		if uint16(edges[config]) != marching.EdgeMask(config) {
			t.Errorf("config %d: packed edge mask mismatch", config)
		}
		// Every referenced edge must be flagged in the edge mask.
		for i := 0; i < 16; i++ {
			e := tris[config*16+i]
			if e < 0 {
				break
			}
			if edges[config]&(uint32(1)<<uint(e)) == 0 {
				t.Errorf("config %d: triangle edge %d not in edge mask", config, e)
			}
		}
	}
}
