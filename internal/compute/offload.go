// Package compute offloads chunk polygonization to a WebGPU compute kernel.
// The kernel evaluates its own density field and emits per-cell triangle
// lists; the host maps the result buffer back, decodes the triangle soup and
// assembles the same mesh payload the CPU builder produces. Buffers live only
// for the duration of one chunk build, so an owner that abandons the task
// never leaks GPU memory.
package compute

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"isoterrain/internal/marching"
	"isoterrain/internal/mesh"
)

//go:embed kernel.wgsl
var kernelSource string

var (
	// ErrDeviceLost reports that no usable GPU adapter or device could be
	// acquired, or that the device went away mid-build.
	ErrDeviceLost = errors.New("compute: gpu device lost")
	// ErrMapFailed reports that mapping the result buffer for readback
	// failed. The chunk can be retried.
	ErrMapFailed = errors.New("compute: result buffer map failed")
)

// kernelParams mirrors the Params uniform in kernel.wgsl. The vec3 origin
// leaves a 4-byte hole that CellSize fills.
type kernelParams struct {
	OriginX, OriginY, OriginZ float32
	CellSize                  float32
	Resolution                uint32
	Seed                      uint32
	Frequency                 float32
	IsoLevel                  float32
}

// Offloader builds chunk meshes on the GPU. It is safe for concurrent
// BuildChunk calls; wgpu serializes queue submissions internally.
type Offloader struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	pipeline *wgpu.ComputePipeline
	edgeBuf  *wgpu.Buffer
	triBuf   *wgpu.Buffer

	resolution int
	cellSize   float32
	isoLevel   float32
	frequency  float32
	seed       uint32
}

// NewOffloader acquires a GPU device, compiles the kernel and uploads the
// marching-cubes tables. resolution must be a multiple of the 8-wide
// workgroup, which the settings layer guarantees.
func NewOffloader(resolution int, cellSize, isoLevel, frequency float32, seed int64) (*Offloader, error) {
	if resolution%8 != 0 {
		return nil, fmt.Errorf("compute: resolution %d is not a multiple of 8", resolution)
	}

	instance := wgpu.CreateInstance(nil)
	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("%w: %v", ErrDeviceLost, err)
	}
	device, err := adapter.RequestDevice(nil)
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("%w: %v", ErrDeviceLost, err)
	}

	o := &Offloader{
		instance:   instance,
		adapter:    adapter,
		device:     device,
		queue:      device.GetQueue(),
		resolution: resolution,
		cellSize:   cellSize,
		isoLevel:   isoLevel,
		frequency:  frequency,
		seed:       uint32(seed),
	}

	shader, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "marching_cubes",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: kernelSource},
	})
	if err != nil {
		o.Release()
		return nil, fmt.Errorf("compute: compile kernel: %w", err)
	}
	defer shader.Release()

	o.pipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label: "marching_cubes",
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shader,
			EntryPoint: "polygonize",
		},
	})
	if err != nil {
		o.Release()
		return nil, fmt.Errorf("compute: create pipeline: %w", err)
	}

	o.edgeBuf, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "edge_table",
		Contents: wgpu.ToBytes(marching.PackedEdgeTable()),
		Usage:    wgpu.BufferUsageStorage,
	})
	if err != nil {
		o.Release()
		return nil, fmt.Errorf("compute: upload edge table: %w", err)
	}
	o.triBuf, err = device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "tri_table",
		Contents: wgpu.ToBytes(marching.PackedTriangleTable()),
		Usage:    wgpu.BufferUsageStorage,
	})
	if err != nil {
		o.Release()
		return nil, fmt.Errorf("compute: upload triangle table: %w", err)
	}
	return o, nil
}

// ChunkWorldSize reports the world-space edge length of one chunk.
func (o *Offloader) ChunkWorldSize() float32 {
	return float32(o.resolution) * o.cellSize
}

// Build dispatches the kernel for one chunk, blocks until the result
// buffer is mapped and returns the decoded mesh. All per-call buffers are
// unmapped and released before returning, on success and on error.
func (o *Offloader) Build(coord mesh.ChunkCoord) (*mesh.Data, error) {
	res := o.resolution
	origin := coord.Origin(o.ChunkWorldSize())
	params := kernelParams{
		OriginX:    origin.X(),
		OriginY:    origin.Y(),
		OriginZ:    origin.Z(),
		CellSize:   o.cellSize,
		Resolution: uint32(res),
		Seed:       o.seed,
		Frequency:  o.frequency,
		IsoLevel:   o.isoLevel,
	}

	resultSize := uint64(res*res*res) * cellStride

	paramsBuf, err := o.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "chunk_params",
		Contents: wgpu.ToBytes([]kernelParams{params}),
		Usage:    wgpu.BufferUsageUniform,
	})
	if err != nil {
		return nil, fmt.Errorf("compute: params for %v: %w", coord, err)
	}
	defer paramsBuf.Release()

	resultBuf, err := o.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "chunk_cells",
		Size:  resultSize,
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("compute: result buffer for %v: %w", coord, err)
	}
	defer resultBuf.Release()

	stagingBuf, err := o.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "chunk_staging",
		Size:  resultSize,
		Usage: wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("compute: staging buffer for %v: %w", coord, err)
	}
	defer stagingBuf.Release()

	bindGroup, err := o.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: o.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: paramsBuf, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: o.edgeBuf, Size: wgpu.WholeSize},
			{Binding: 2, Buffer: o.triBuf, Size: wgpu.WholeSize},
			{Binding: 3, Buffer: resultBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("compute: bind group for %v: %w", coord, err)
	}
	defer bindGroup.Release()

	encoder, err := o.device.CreateCommandEncoder(nil)
	if err != nil {
		return nil, fmt.Errorf("compute: encoder for %v: %w", coord, err)
	}
	defer encoder.Release()

	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(o.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	wg := uint32(res / 8)
	pass.DispatchWorkgroups(wg, wg, wg)
	if err := pass.End(); err != nil {
		return nil, fmt.Errorf("compute: pass for %v: %w", coord, err)
	}
	if err := encoder.CopyBufferToBuffer(resultBuf, 0, stagingBuf, 0, resultSize); err != nil {
		return nil, fmt.Errorf("compute: copy for %v: %w", coord, err)
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return nil, fmt.Errorf("compute: finish for %v: %w", coord, err)
	}
	defer cmd.Release()
	o.queue.Submit(cmd)

	var status wgpu.BufferMapAsyncStatus
	err = stagingBuf.MapAsync(wgpu.MapModeRead, 0, resultSize, func(s wgpu.BufferMapAsyncStatus) {
		status = s
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v (%v)", ErrMapFailed, err, coord)
	}
	o.device.Poll(true, nil)
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return nil, fmt.Errorf("%w: status %v (%v)", ErrMapFailed, status, coord)
	}

	mapped := stagingBuf.GetMappedRange(0, uint(resultSize))
	raw := make([]byte, len(mapped))
	copy(raw, mapped)
	stagingBuf.Unmap()

	tris, err := decodeCells(raw)
	if err != nil {
		return nil, fmt.Errorf("compute: decode %v: %w", coord, err)
	}
	return mesh.FromTriangles(tris), nil
}

// Release frees all device resources. The Offloader must not be used after.
func (o *Offloader) Release() {
	if o.triBuf != nil {
		o.triBuf.Release()
	}
	if o.edgeBuf != nil {
		o.edgeBuf.Release()
	}
	if o.pipeline != nil {
		o.pipeline.Release()
	}
	if o.device != nil {
		o.device.Release()
	}
	if o.adapter != nil {
		o.adapter.Release()
	}
	if o.instance != nil {
		o.instance.Release()
	}
}
