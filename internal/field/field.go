// Package field provides the scalar density field the terrain surface is
// extracted from. A field is immutable after construction and safe to sample
// from any number of worker goroutines concurrently.
package field

import (
	"github.com/go-gl/mathgl/mgl32"
	opensimplex "github.com/ojrac/opensimplex-go"
)

const (
	// DefaultFrequency is the noise frequency in cycles per world unit.
	DefaultFrequency = 1.0 / 64.0

	// DefaultOctaves layers of noise are summed per sample.
	DefaultOctaves = 4

	defaultPersistence = 0.5
	defaultLacunarity  = 2.0
)

// Density is a coherent-noise scalar field. Sample values are roughly in
// [-1, 1]: negative inside the surface, positive outside, with the implicit
// surface at density(p) = iso.
type Density struct {
	noise       opensimplex.Noise32
	frequency   float32
	octaves     int
	persistence float32
	lacunarity  float32
}

// New creates a density field with the given seed and frequency. The seed
// fully determines the field; two fields with the same seed and frequency
// are identical everywhere.
func New(seed int64, frequency float32) *Density {
	return &Density{
		noise:       opensimplex.NewNormalized32(seed),
		frequency:   frequency,
		octaves:     DefaultOctaves,
		persistence: defaultPersistence,
		lacunarity:  defaultLacunarity,
	}
}

// Sample evaluates the field at p. Pure and deterministic: same p, same
// result, no shared mutable state.
func (d *Density) Sample(p mgl32.Vec3) float32 {
	n := d.octaveNoise(p.X()*d.frequency, p.Y()*d.frequency, p.Z()*d.frequency)
	// Noise is normalized to [0,1]; map so that high noise is inside.
	return 1 - 2*n
}

// SampleOffset evaluates the field at p translated by off. Translating the
// domain animates the terrain without changing the seed.
func (d *Density) SampleOffset(p, off mgl32.Vec3) float32 {
	return d.Sample(p.Add(off))
}

// octaveNoise sums d.octaves layers of normalized simplex noise, halving
// amplitude and doubling frequency per layer, renormalized to [0,1].
func (d *Density) octaveNoise(x, y, z float32) float32 {
	amplitude := float32(1)
	frequency := float32(1)
	var sum, norm float32
	for i := 0; i < d.octaves; i++ {
		sum += amplitude * d.noise.Eval3(x*frequency, y*frequency, z*frequency)
		norm += amplitude
		amplitude *= d.persistence
		frequency *= d.lacunarity
	}
	return sum / norm
}
