package mesh

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"isoterrain/internal/field"
	"isoterrain/internal/marching"
)

// hashData computes a SHA-256 over the payload's positions and indices.
func hashData(d *Data) [32]byte {
	h := sha256.New()
	var buf [4]byte
	for _, f := range d.Positions {
		binary.LittleEndian.PutUint32(buf[:], math.Float32bits(f))
		h.Write(buf[:])
	}
	for _, i := range d.Indices {
		binary.LittleEndian.PutUint32(buf[:], i)
		h.Write(buf[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func TestBuildDeterminism(t *testing.T) {
	f := field.New(12345, field.DefaultFrequency)
	b := NewBuilder(f, 16, 1.0, 0)

	coords := []ChunkCoord{{0, 0, 0}, {1, 0, 0}, {-2, 1, 3}}
	for _, coord := range coords {
		first, err := b.Build(coord)
		if err != nil {
			t.Fatalf("Build(%v): %v", coord, err)
		}
		second, err := b.Build(coord)
		if err != nil {
			t.Fatalf("Build(%v): %v", coord, err)
		}
		if hashData(first) != hashData(second) {
			t.Errorf("chunk %v: two builds produced different geometry", coord)
		}
	}
}

func TestBuildPayloadLayout(t *testing.T) {
	f := field.New(7, field.DefaultFrequency)
	b := NewBuilder(f, 8, 1.0, 0)

	d, err := b.Build(ChunkCoord{0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}

	nv := d.VertexCount()
	if nv%3 != 0 {
		t.Fatalf("vertex count %d is not a multiple of 3", nv)
	}
	if len(d.Normals) != len(d.Positions) {
		t.Errorf("normals length %d != positions length %d", len(d.Normals), len(d.Positions))
	}
	if len(d.UVs) != nv*2 {
		t.Errorf("UV length %d, want %d", len(d.UVs), nv*2)
	}
	if len(d.Indices) != nv {
		t.Fatalf("index count %d, want %d (soup)", len(d.Indices), nv)
	}
	for i, ix := range d.Indices {
		if int(ix) != i {
			t.Fatalf("index %d = %d, soup indices must ascend", i, ix)
		}
	}
	for _, uv := range d.UVs {
		if uv != 0 {
			t.Error("placeholder UVs must be zero")
			break
		}
	}
}

func TestBuildNormalsUnitLength(t *testing.T) {
	f := field.New(99, field.DefaultFrequency)
	b := NewBuilder(f, 8, 1.0, 0)

	d, err := b.Build(ChunkCoord{0, 0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if d.TriangleCount() == 0 {
		t.Skip("chunk produced no surface")
	}

	// All three vertices of a triangle share its face normal.
	for tri := 0; tri < d.TriangleCount(); tri++ {
		base := tri * 9
		n0 := mgl32.Vec3{d.Normals[base], d.Normals[base+1], d.Normals[base+2]}
		n1 := mgl32.Vec3{d.Normals[base+3], d.Normals[base+4], d.Normals[base+5]}
		n2 := mgl32.Vec3{d.Normals[base+6], d.Normals[base+7], d.Normals[base+8]}
		if n0 != n1 || n1 != n2 {
			t.Fatalf("triangle %d: normals not replicated across vertices", tri)
		}
		if l := n0.Len(); l != 0 && (l < 0.999 || l > 1.001) {
			t.Fatalf("triangle %d: normal length %v", tri, l)
		}
	}
}

func TestAdjacentChunksSampleContinuousField(t *testing.T) {
	// The +x face of chunk (0,0,0) and the -x face of chunk (1,0,0) sample
	// the same world positions, so the field values along the shared face
	// must agree. Verify through the sampling contract directly.
	f := field.New(4, field.DefaultFrequency)
	b := NewBuilder(f, 8, 1.0, 0)
	size := b.ChunkWorldSize()

	left := ChunkCoord{0, 0, 0}.Origin(size)
	right := ChunkCoord{1, 0, 0}.Origin(size)
	for y := 0; y <= 8; y++ {
		for z := 0; z <= 8; z++ {
			pLeft := mgl32.Vec3{left.X() + size, left.Y() + float32(y), left.Z() + float32(z)}
			pRight := mgl32.Vec3{right.X(), right.Y() + float32(y), right.Z() + float32(z)}
			if pLeft != pRight {
				t.Fatalf("face positions diverge: %v != %v", pLeft, pRight)
			}
			if f.Sample(pLeft) != f.Sample(pRight) {
				t.Fatal("field discontinuous across the chunk boundary")
			}
		}
	}
}

func TestFromTrianglesEmpty(t *testing.T) {
	d := FromTriangles(nil)
	if d.VertexCount() != 0 || d.TriangleCount() != 0 {
		t.Error("empty triangle list must flatten to an empty payload")
	}
}

func TestFromTrianglesSingle(t *testing.T) {
	tri := marching.Triangle{
		A: mgl32.Vec3{0, 0, 0},
		B: mgl32.Vec3{1, 0, 0},
		C: mgl32.Vec3{0, 1, 0},
	}
	d := FromTriangles([]marching.Triangle{tri})
	if d.VertexCount() != 3 {
		t.Fatalf("vertex count %d, want 3", d.VertexCount())
	}
	// cross((1,0,0),(0,1,0)) points +z.
	want := mgl32.Vec3{0, 0, 1}
	got := mgl32.Vec3{d.Normals[0], d.Normals[1], d.Normals[2]}
	if got != want {
		t.Errorf("face normal %v, want %v", got, want)
	}
}

func BenchmarkBuildChunk(b *testing.B) {
	f := field.New(42, field.DefaultFrequency)
	builder := NewBuilder(f, 16, 1.0, 0)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := builder.Build(ChunkCoord{X: i % 4, Y: 0, Z: i % 3}); err != nil {
			b.Fatal(err)
		}
	}
}
