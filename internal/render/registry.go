// Package render tracks the set of live chunk renderables. The streamer
// creates one object per ready chunk and removes it on eviction; the actual
// GPU upload happens behind the Registry interface so the streaming logic
// stays backend-agnostic.
package render

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"isoterrain/internal/mesh"
)

// ID names one registered renderable. Zero is never issued.
type ID uint64

// Registry is the surface the chunk streamer drives.
type Registry interface {
	// Create registers mesh data placed at the given world translation and
	// returns its handle.
	Create(data *mesh.Data, translation mgl32.Vec3) ID
	// Remove drops a renderable. Removing an unknown ID is a no-op.
	Remove(id ID)
}

// Object is one registered renderable.
type Object struct {
	Data        *mesh.Data
	Translation mgl32.Vec3
}

// Objects is an in-memory Registry. It backs the headless demo and tests;
// a GPU renderer would wrap it with buffer uploads.
type Objects struct {
	mu      sync.Mutex
	next    ID
	objects map[ID]Object
	removed int
}

func NewObjects() *Objects {
	return &Objects{objects: make(map[ID]Object)}
}

func (o *Objects) Create(data *mesh.Data, translation mgl32.Vec3) ID {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	o.objects[o.next] = Object{Data: data, Translation: translation}
	return o.next
}

func (o *Objects) Remove(id ID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.objects[id]; ok {
		delete(o.objects, id)
		o.removed++
	}
}

// Get returns a registered object.
func (o *Objects) Get(id ID) (Object, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	obj, ok := o.objects[id]
	return obj, ok
}

// Len reports the number of live renderables.
func (o *Objects) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.objects)
}

// Removed reports how many renderables have been removed so far.
func (o *Objects) Removed() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.removed
}

// TriangleCount sums triangles over all live renderables.
func (o *Objects) TriangleCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	total := 0
	for _, obj := range o.objects {
		total += obj.Data.TriangleCount()
	}
	return total
}
