// Package task runs chunk generation work on a bounded worker pool and hands
// back poll-style handles, so a single-threaded tick loop can integrate
// results without ever blocking.
package task

import (
	"runtime"

	"github.com/alitto/pond/v2"

	"isoterrain/internal/mesh"
)

// Result is the outcome of one generation task.
type Result struct {
	Data *mesh.Data
	Err  error
}

// Handle tracks one spawned task. Handles are owned by a single goroutine
// (the tick loop); they are not safe for concurrent polling.
type Handle struct {
	done  chan Result
	taken bool
}

// TryTake returns the task's result without blocking. ok is false while the
// task is still running and after the result has already been taken once.
func (h *Handle) TryTake() (Result, bool) {
	if h.taken {
		return Result{}, false
	}
	select {
	case res := <-h.done:
		h.taken = true
		return res, true
	default:
		return Result{}, false
	}
}

// Pool bounds the number of concurrently running generation tasks.
type Pool struct {
	pool pond.Pool
}

// NewPool creates a pool with the given number of workers; workers <= 0
// means one per CPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{pool: pond.NewPool(workers)}
}

// Spawn queues work and returns its handle. The work function always runs to
// completion even if the handle is dropped, so any cleanup inside it (buffer
// unmapping, releases) is guaranteed to happen.
func (p *Pool) Spawn(work func() (*mesh.Data, error)) *Handle {
	h := &Handle{done: make(chan Result, 1)}
	p.pool.Submit(func() {
		data, err := work()
		h.done <- Result{Data: data, Err: err}
	})
	return h
}

// Close stops the pool after draining queued work.
func (p *Pool) Close() {
	p.pool.StopAndWait()
}
