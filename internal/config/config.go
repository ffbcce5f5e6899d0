package config

import "sync"

// TerrainSettings holds the terrain streaming configuration.
type TerrainSettings struct {
	mu             sync.RWMutex
	chunkRes       int     // cells per chunk axis
	cellSize       float32 // world units per cell
	viewDistance   int     // in chunk units
	isoLevel       float32 // density threshold defining the surface
	noiseSeed      int64
	noiseFrequency float32
	workers        int // generation worker goroutines (0 = NumCPU)
	meshCacheSize  int // evicted meshes kept for quick reattach
}

var globalTerrainSettings = &TerrainSettings{
	chunkRes:       32,
	cellSize:       1.0,
	viewDistance:   5,
	isoLevel:       0.0,
	noiseSeed:      1337,
	noiseFrequency: 1.0 / 64.0,
	workers:        0,
	meshCacheSize:  64,
}

// GetChunkResolution returns the number of cells per chunk axis.
func GetChunkResolution() int {
	globalTerrainSettings.mu.RLock()
	defer globalTerrainSettings.mu.RUnlock()
	return globalTerrainSettings.chunkRes
}

// SetChunkResolution sets the cells per chunk axis.
func SetChunkResolution(res int) {
	globalTerrainSettings.mu.Lock()
	defer globalTerrainSettings.mu.Unlock()

	// Clamp to reasonable values; the GPU kernel dispatches 8-wide
	// workgroups, so keep it a multiple of 8.
	if res < 8 {
		res = 8
	}
	if res > 128 {
		res = 128
	}
	res -= res % 8

	globalTerrainSettings.chunkRes = res
}

// GetCellSize returns the world-unit size of one cell.
func GetCellSize() float32 {
	globalTerrainSettings.mu.RLock()
	defer globalTerrainSettings.mu.RUnlock()
	return globalTerrainSettings.cellSize
}

// SetCellSize sets the world-unit size of one cell.
func SetCellSize(size float32) {
	globalTerrainSettings.mu.Lock()
	defer globalTerrainSettings.mu.Unlock()
	if size <= 0 {
		size = 1.0
	}
	globalTerrainSettings.cellSize = size
}

// GetChunkWorldSize returns the world-unit edge length of one chunk.
func GetChunkWorldSize() float32 {
	globalTerrainSettings.mu.RLock()
	defer globalTerrainSettings.mu.RUnlock()
	return float32(globalTerrainSettings.chunkRes) * globalTerrainSettings.cellSize
}

// GetViewDistance returns the view distance in chunk units.
func GetViewDistance() int {
	globalTerrainSettings.mu.RLock()
	defer globalTerrainSettings.mu.RUnlock()
	return globalTerrainSettings.viewDistance
}

// SetViewDistance sets the view distance in chunk units.
func SetViewDistance(distance int) {
	globalTerrainSettings.mu.Lock()
	defer globalTerrainSettings.mu.Unlock()
	if distance < 0 {
		distance = 0
	}
	if distance > 32 {
		distance = 32
	}
	globalTerrainSettings.viewDistance = distance
}

// GetIsoLevel returns the density threshold defining the surface.
func GetIsoLevel() float32 {
	globalTerrainSettings.mu.RLock()
	defer globalTerrainSettings.mu.RUnlock()
	return globalTerrainSettings.isoLevel
}

// SetIsoLevel sets the density threshold defining the surface.
func SetIsoLevel(iso float32) {
	globalTerrainSettings.mu.Lock()
	defer globalTerrainSettings.mu.Unlock()
	globalTerrainSettings.isoLevel = iso
}

// GetNoiseSeed returns the density field seed.
func GetNoiseSeed() int64 {
	globalTerrainSettings.mu.RLock()
	defer globalTerrainSettings.mu.RUnlock()
	return globalTerrainSettings.noiseSeed
}

// SetNoiseSeed sets the density field seed.
func SetNoiseSeed(seed int64) {
	globalTerrainSettings.mu.Lock()
	defer globalTerrainSettings.mu.Unlock()
	globalTerrainSettings.noiseSeed = seed
}

// GetNoiseFrequency returns the density field frequency.
func GetNoiseFrequency() float32 {
	globalTerrainSettings.mu.RLock()
	defer globalTerrainSettings.mu.RUnlock()
	return globalTerrainSettings.noiseFrequency
}

// SetNoiseFrequency sets the density field frequency.
func SetNoiseFrequency(freq float32) {
	globalTerrainSettings.mu.Lock()
	defer globalTerrainSettings.mu.Unlock()
	if freq <= 0 {
		freq = 1.0 / 64.0
	}
	globalTerrainSettings.noiseFrequency = freq
}

// GetWorkers returns the number of generation workers (0 means NumCPU).
func GetWorkers() int {
	globalTerrainSettings.mu.RLock()
	defer globalTerrainSettings.mu.RUnlock()
	return globalTerrainSettings.workers
}

// SetWorkers sets the number of generation workers.
func SetWorkers(n int) {
	globalTerrainSettings.mu.Lock()
	defer globalTerrainSettings.mu.Unlock()
	if n < 0 {
		n = 0
	}
	globalTerrainSettings.workers = n
}

// GetMeshCacheSize returns how many evicted meshes are retained.
func GetMeshCacheSize() int {
	globalTerrainSettings.mu.RLock()
	defer globalTerrainSettings.mu.RUnlock()
	return globalTerrainSettings.meshCacheSize
}

// SetMeshCacheSize sets how many evicted meshes are retained. The LRU cache
// requires a positive size.
func SetMeshCacheSize(n int) {
	globalTerrainSettings.mu.Lock()
	defer globalTerrainSettings.mu.Unlock()
	if n < 1 {
		n = 1
	}
	globalTerrainSettings.meshCacheSize = n
}
