// Command isoterrain streams marching-cubes terrain around a viewer moving
// on a circular path. It runs headless: chunks are generated on a worker
// pool (CPU noise or the GPU compute kernel), registered as renderables and
// evicted as the viewer moves on, with streaming stats logged once a second.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"isoterrain/internal/compute"
	"isoterrain/internal/config"
	"isoterrain/internal/field"
	"isoterrain/internal/mesh"
	"isoterrain/internal/profiling"
	"isoterrain/internal/render"
	"isoterrain/internal/stream"
	"isoterrain/internal/task"
)

const tickInterval = time.Second / 60

func main() {
	configPath := flag.String("config", "", "path to a YAML settings file")
	useGPU := flag.Bool("gpu", false, "polygonize chunks on the GPU compute kernel")
	duration := flag.Duration("duration", 0, "stop after this long (0 runs until interrupted)")
	flag.Parse()

	if *configPath != "" {
		if err := config.Load(*configPath); err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	res := config.GetChunkResolution()
	cellSize := config.GetCellSize()
	iso := config.GetIsoLevel()
	seed := config.GetNoiseSeed()
	freq := config.GetNoiseFrequency()

	var builder stream.Builder
	if *useGPU {
		off, err := compute.NewOffloader(res, cellSize, iso, freq, seed)
		if err != nil {
			log.Fatalf("gpu offloader: %v", err)
		}
		defer off.Release()
		builder = off
		log.Printf("polygonizing on GPU, %d^3 cells per chunk", res)
	} else {
		builder = mesh.NewBuilder(field.New(seed, freq), res, cellSize, iso)
		log.Printf("polygonizing on CPU, %d^3 cells per chunk", res)
	}

	pool := task.NewPool(config.GetWorkers())
	defer pool.Close()
	registry := render.NewObjects()
	manager, err := stream.NewManager(builder, pool, registry)
	if err != nil {
		log.Fatalf("stream manager: %v", err)
	}
	defer manager.Close()

	ctx, cancel := context.WithCancel(context.Background())
	closer.Bind(cancel)
	if *duration > 0 {
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	go func() {
		run(ctx, manager, registry)
		closer.Close()
	}()
	closer.Hold()
}

// run drives the tick loop until the context is done. The viewer orbits the
// origin at two chunk radii so streaming continuously loads and evicts.
func run(ctx context.Context, manager *stream.Manager, registry *render.Objects) {
	orbitRadius := 2 * config.GetChunkWorldSize()
	const orbitPeriod = 60 * time.Second

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	start := time.Now()
	lastReport := start

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		angle := 2 * math.Pi * float64(time.Since(start)) / float64(orbitPeriod)
		viewer := mgl32.Vec3{
			orbitRadius * float32(math.Cos(angle)),
			0,
			orbitRadius * float32(math.Sin(angle)),
		}

		profiling.ResetTick()
		tickStart := time.Now()
		manager.Tick(viewer)
		if d := time.Since(tickStart); d > tickInterval {
			log.Printf("tick took %.1fms: %s", float64(d.Microseconds())/1000.0, profiling.TopN(4))
		}

		if time.Since(lastReport) >= time.Second {
			lastReport = time.Now()
			s := manager.Stats()
			log.Printf("viewer %v ready=%d generating=%d cached=%d evicted=%d failed=%d triangles=%d",
				viewer, s.Ready, s.Generating, s.Cached, s.Evicted, s.Failed, registry.TriangleCount())
		}
	}
}
