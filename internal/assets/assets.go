// Package assets provides the in-memory image store shared by the probe
// registry and the filter pipeline. Probes reference image data through
// opaque handles; a handle that is not present in the store is simply "not
// loaded yet", never an error.
package assets

import (
	"sync"

	"github.com/shunkie/lightprobe/internal/cubemap"
)

// Handle identifies an image in the store.
type Handle string

// VoxelGrid is a 3D grid of ambient colors, one sample per voxel.
// It is the sample source for irradiance volumes; the resolver treats it
// as opaque and only checks presence.
type VoxelGrid struct {
	SizeX, SizeY, SizeZ int
	Data                []cubemap.Color
}

// NewVoxelGrid allocates a voxel grid of the given dimensions.
func NewVoxelGrid(sx, sy, sz int) *VoxelGrid {
	return &VoxelGrid{
		SizeX: sx,
		SizeY: sy,
		SizeZ: sz,
		Data:  make([]cubemap.Color, sx*sy*sz),
	}
}

// Store holds loaded image data, keyed by handle. All methods are safe for
// concurrent use; lookups during resolution only take the read lock.
type Store struct {
	mu       sync.RWMutex
	cubemaps map[Handle]*cubemap.Cubemap
	chains   map[Handle]*cubemap.MipChain
	voxels   map[Handle]*VoxelGrid
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		cubemaps: make(map[Handle]*cubemap.Cubemap),
		chains:   make(map[Handle]*cubemap.MipChain),
		voxels:   make(map[Handle]*VoxelGrid),
	}
}

// AddCubemap stores a cubemap under the given handle, replacing any
// previous entry.
func (s *Store) AddCubemap(h Handle, c *cubemap.Cubemap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cubemaps[h] = c
}

// Cubemap returns the cubemap for the handle, or (nil, false) if not loaded.
func (s *Store) Cubemap(h Handle) (*cubemap.Cubemap, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cubemaps[h]
	return c, ok
}

// HasCubemap reports whether the handle resolves to a loaded cubemap.
func (s *Store) HasCubemap(h Handle) bool {
	_, ok := s.Cubemap(h)
	return ok
}

// AddMipChain stores a mipmapped cubemap under the given handle.
func (s *Store) AddMipChain(h Handle, mc *cubemap.MipChain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains[h] = mc
}

// MipChain returns the mip chain for the handle, or (nil, false) if not loaded.
func (s *Store) MipChain(h Handle) (*cubemap.MipChain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mc, ok := s.chains[h]
	return mc, ok
}

// HasMipChain reports whether the handle resolves to a loaded mip chain.
func (s *Store) HasMipChain(h Handle) bool {
	_, ok := s.MipChain(h)
	return ok
}

// AddVoxels stores a voxel grid under the given handle.
func (s *Store) AddVoxels(h Handle, vg *VoxelGrid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voxels[h] = vg
}

// Voxels returns the voxel grid for the handle, or (nil, false) if not loaded.
func (s *Store) Voxels(h Handle) (*VoxelGrid, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vg, ok := s.voxels[h]
	return vg, ok
}

// HasVoxels reports whether the handle resolves to a loaded voxel grid.
func (s *Store) HasVoxels(h Handle) bool {
	_, ok := s.Voxels(h)
	return ok
}

// Remove drops the handle from the store, whatever it refers to.
func (s *Store) Remove(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cubemaps, h)
	delete(s.chains, h)
	delete(s.voxels, h)
}
