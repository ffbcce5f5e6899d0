// Package stream keeps the set of loaded terrain chunks in sync with the
// viewer position. Each tick it evicts chunks that left the view radius,
// polls in-flight generation tasks, and spawns tasks for chunks that entered
// the radius. All state is owned by the ticking goroutine; only the worker
// pool runs concurrently.
package stream

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	lru "github.com/hashicorp/golang-lru/v2"

	"isoterrain/internal/config"
	"isoterrain/internal/mesh"
	"isoterrain/internal/profiling"
	"isoterrain/internal/render"
	"isoterrain/internal/task"
)

// Builder produces the mesh for one chunk. Both the CPU mesh builder and the
// GPU offloader satisfy it.
type Builder interface {
	Build(coord mesh.ChunkCoord) (*mesh.Data, error)
}

type chunkState int

const (
	stateGenerating chunkState = iota
	stateReady
)

type record struct {
	state    chunkState
	handle   *task.Handle
	renderID render.ID
	data     *mesh.Data
}

// Stats is a snapshot of streaming counters, taken after a Tick.
type Stats struct {
	Visible    int
	Generating int
	Ready      int
	Cached     int
	Evicted    int
	Failed     int
}

// Manager owns the chunk records and drives the load/evict cycle. It is not
// safe for concurrent use; call Tick from a single goroutine.
type Manager struct {
	builder  Builder
	pool     *task.Pool
	registry render.Registry

	chunks map[mesh.ChunkCoord]*record
	cache  *lru.Cache[mesh.ChunkCoord, *mesh.Data]

	// Handles whose chunks were evicted mid-generation. Their results are
	// drained and discarded so task resources are not held forever.
	orphans []*task.Handle

	evicted int
	failed  int
}

func NewManager(builder Builder, pool *task.Pool, registry render.Registry) (*Manager, error) {
	cache, err := lru.New[mesh.ChunkCoord, *mesh.Data](config.GetMeshCacheSize())
	if err != nil {
		return nil, err
	}
	return &Manager{
		builder:  builder,
		pool:     pool,
		registry: registry,
		chunks:   make(map[mesh.ChunkCoord]*record),
		cache:    cache,
	}, nil
}

// visibleSet returns the chunk coords within the view radius of the viewer,
// nearest chunk first not guaranteed. The viewer's own chunk is always
// included, so a zero radius yields exactly one coord.
func visibleSet(viewer mgl32.Vec3, chunkWorldSize float32, viewDistance int) map[mesh.ChunkCoord]struct{} {
	cx := int(math.Round(float64(viewer.X() / chunkWorldSize)))
	cy := int(math.Round(float64(viewer.Y() / chunkWorldSize)))
	cz := int(math.Round(float64(viewer.Z() / chunkWorldSize)))

	d := viewDistance
	set := make(map[mesh.ChunkCoord]struct{})
	for dx := -d; dx <= d; dx++ {
		for dy := -d; dy <= d; dy++ {
			for dz := -d; dz <= d; dz++ {
				if dx*dx+dy*dy+dz*dz > d*d {
					continue
				}
				set[mesh.ChunkCoord{X: cx + dx, Y: cy + dy, Z: cz + dz}] = struct{}{}
			}
		}
	}
	return set
}

// Tick advances the streaming state machine one step: drain orphaned tasks,
// evict chunks that left the radius, integrate finished generation results,
// then request missing chunks. Eviction runs before spawning so the chunk
// count never overshoots the radius under movement.
func (m *Manager) Tick(viewer mgl32.Vec3) {
	defer profiling.Track("stream.Tick")()

	m.drainOrphans()

	chunkSize := config.GetChunkWorldSize()
	visible := visibleSet(viewer, chunkSize, config.GetViewDistance())

	for coord, rec := range m.chunks {
		if _, ok := visible[coord]; ok {
			continue
		}
		m.evict(coord, rec)
	}

	// Coords whose build just failed sit out the rest of this tick; they
	// are respawned on a later one.
	failedNow := make(map[mesh.ChunkCoord]struct{})
	for coord, rec := range m.chunks {
		if rec.state != stateGenerating {
			continue
		}
		res, ok := rec.handle.TryTake()
		if !ok {
			continue
		}
		if res.Err != nil {
			log.Printf("stream: chunk %v generation failed: %v", coord, res.Err)
			m.failed++
			delete(m.chunks, coord)
			failedNow[coord] = struct{}{}
			continue
		}
		rec.state = stateReady
		rec.handle = nil
		rec.data = res.Data
		rec.renderID = m.registry.Create(res.Data, coord.Origin(chunkSize))
	}

	for coord := range visible {
		if _, ok := m.chunks[coord]; ok {
			continue
		}
		if _, ok := failedNow[coord]; ok {
			continue
		}
		m.spawn(coord, chunkSize)
	}
}

func (m *Manager) spawn(coord mesh.ChunkCoord, chunkSize float32) {
	if data, ok := m.cache.Get(coord); ok {
		m.cache.Remove(coord)
		m.chunks[coord] = &record{
			state:    stateReady,
			data:     data,
			renderID: m.registry.Create(data, coord.Origin(chunkSize)),
		}
		return
	}
	handle := m.pool.Spawn(func() (*mesh.Data, error) {
		return m.builder.Build(coord)
	})
	m.chunks[coord] = &record{state: stateGenerating, handle: handle}
}

func (m *Manager) evict(coord mesh.ChunkCoord, rec *record) {
	switch rec.state {
	case stateReady:
		m.registry.Remove(rec.renderID)
		m.cache.Add(coord, rec.data)
	case stateGenerating:
		m.orphans = append(m.orphans, rec.handle)
	}
	delete(m.chunks, coord)
	m.evicted++
}

// drainOrphans discards results of tasks whose chunks were evicted before
// completion. Finished orphans are dropped; running ones stay queued.
func (m *Manager) drainOrphans() {
	remaining := m.orphans[:0]
	for _, h := range m.orphans {
		if _, ok := h.TryTake(); !ok {
			remaining = append(remaining, h)
		}
	}
	m.orphans = remaining
}

// Stats reports the current streaming counters.
func (m *Manager) Stats() Stats {
	s := Stats{
		Visible: len(m.chunks),
		Cached:  m.cache.Len(),
		Evicted: m.evicted,
		Failed:  m.failed,
	}
	for _, rec := range m.chunks {
		switch rec.state {
		case stateGenerating:
			s.Generating++
		case stateReady:
			s.Ready++
		}
	}
	return s
}

// Close abandons all in-flight work. Pending task results are left to the
// pool to finish; the pool's own Close drains them.
func (m *Manager) Close() {
	for coord, rec := range m.chunks {
		if rec.state == stateReady {
			m.registry.Remove(rec.renderID)
		}
		delete(m.chunks, coord)
	}
	m.orphans = nil
}
