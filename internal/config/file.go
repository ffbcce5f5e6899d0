package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// fileSettings mirrors the settings that may be overridden from a YAML file.
// Zero values mean "keep the default".
type fileSettings struct {
	ChunkResolution int     `yaml:"chunk_resolution"`
	CellSize        float32 `yaml:"cell_size"`
	ViewDistance    int     `yaml:"view_distance"`
	IsoLevel        float32 `yaml:"iso_level"`
	NoiseSeed       int64   `yaml:"noise_seed"`
	NoiseFrequency  float32 `yaml:"noise_frequency"`
	Workers         int     `yaml:"workers"`
	MeshCacheSize   int     `yaml:"mesh_cache_size"`
}

// Load reads a YAML settings file and applies the values it sets, going
// through the clamped setters. Missing keys keep their current values.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var fs fileSettings
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fs.ChunkResolution != 0 {
		SetChunkResolution(fs.ChunkResolution)
	}
	if fs.CellSize != 0 {
		SetCellSize(fs.CellSize)
	}
	if fs.ViewDistance != 0 {
		SetViewDistance(fs.ViewDistance)
	}
	if fs.IsoLevel != 0 {
		SetIsoLevel(fs.IsoLevel)
	}
	if fs.NoiseSeed != 0 {
		SetNoiseSeed(fs.NoiseSeed)
	}
	if fs.NoiseFrequency != 0 {
		SetNoiseFrequency(fs.NoiseFrequency)
	}
	if fs.Workers != 0 {
		SetWorkers(fs.Workers)
	}
	if fs.MeshCacheSize != 0 {
		SetMeshCacheSize(fs.MeshCacheSize)
	}
	return nil
}
