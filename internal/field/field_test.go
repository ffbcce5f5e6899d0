package field

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSampleDeterministic(t *testing.T) {
	a := New(42, DefaultFrequency)
	b := New(42, DefaultFrequency)
	points := []mgl32.Vec3{
		{0, 0, 0}, {1.5, -3.25, 10}, {-100, 64, 7.75}, {1000, -1000, 0.5},
	}
	for _, p := range points {
		if va, vb := a.Sample(p), b.Sample(p); va != vb {
			t.Errorf("same seed diverged at %v: %v != %v", p, va, vb)
		}
	}
}

func TestSeedsDiffer(t *testing.T) {
	a := New(1, DefaultFrequency)
	b := New(2, DefaultFrequency)
	same := 0
	for i := 0; i < 16; i++ {
		p := mgl32.Vec3{float32(i) * 3.7, float32(i) * -1.3, float32(i)}
		if a.Sample(p) == b.Sample(p) {
			same++
		}
	}
	if same == 16 {
		t.Error("different seeds produced identical fields")
	}
}

func TestSampleRange(t *testing.T) {
	d := New(7, DefaultFrequency)
	for x := -8; x <= 8; x++ {
		for z := -8; z <= 8; z++ {
			v := d.Sample(mgl32.Vec3{float32(x) * 5, 12, float32(z) * 5})
			if v < -1.001 || v > 1.001 {
				t.Fatalf("sample at (%d,%d) out of range: %v", x, z, v)
			}
		}
	}
}

func TestSampleOffsetTranslates(t *testing.T) {
	d := New(9, DefaultFrequency)
	p := mgl32.Vec3{3, 4, 5}
	off := mgl32.Vec3{10, -2, 0.5}
	if got, want := d.SampleOffset(p, off), d.Sample(p.Add(off)); got != want {
		t.Errorf("SampleOffset = %v, want %v", got, want)
	}
	// Zero offset must be the identity.
	if got, want := d.SampleOffset(p, mgl32.Vec3{}), d.Sample(p); got != want {
		t.Errorf("zero offset changed the sample: %v != %v", got, want)
	}
}

func TestConcurrentSampling(t *testing.T) {
	d := New(3, DefaultFrequency)
	ref := d.Sample(mgl32.Vec3{1, 2, 3})

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if v := d.Sample(mgl32.Vec3{1, 2, 3}); v != ref {
					t.Errorf("concurrent sample diverged: %v != %v", v, ref)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func BenchmarkSample(b *testing.B) {
	d := New(42, DefaultFrequency)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		d.Sample(mgl32.Vec3{float32(i), 0, float32(-i)})
	}
}
