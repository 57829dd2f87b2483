package probe

import (
	"github.com/shunkie/lightprobe/internal/assets"
)

// AssetAvailability answers whether a handle currently resolves to loaded
// image data. A nil AssetAvailability treats every handle as loaded, which
// is convenient for tests and for registries that don't track assets.
type AssetAvailability interface {
	HasCubemap(h assets.Handle) bool
	HasMipChain(h assets.Handle) bool
	HasVoxels(h assets.Handle) bool
}

// FilteredMaps is the published output of the filter pipeline for one
// probe: the pair of map handles that substitute for a precomputed
// environment map.
type FilteredMaps struct {
	Diffuse  assets.Handle
	Specular assets.Handle
}

// FilteredSource reports completed filter results by probe ID. The filter
// pipeline implements this; ok is false while filtering is still running
// or was never triggered.
type FilteredSource interface {
	FilteredMaps(id ID) (FilteredMaps, bool)
}

// Record is one probe in a snapshot, ready for resolution. For generated
// environment maps EnvMap already points at the published filtered maps,
// with intensity, rotation and suppression flags taken from the live
// record at snapshot time.
type Record struct {
	ID     ID
	Seq    uint64
	Kind   Kind
	Volume Volume

	EnvMap     *EnvironmentMapLight
	Irradiance *IrradianceVolumeData
}

// Snapshot is an immutable, frame-pinned view of the registry. All resolver
// invocations within one frame share a single snapshot, so every fragment
// sees the same set of probes. Probes that are inactive, or whose light data
// is not yet loaded or filtered, are left out entirely.
type Snapshot struct {
	records []Record
}

// Records returns the snapshot's probe records in registration order.
func (s *Snapshot) Records() []Record {
	return s.records
}

// Len returns the number of resolvable probes in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.records)
}

// Snapshot builds the frame-pinned view used by the resolver. av gates
// probes on asset availability (nil means everything is loaded); filtered
// supplies completed runtime-filter results (nil means none are ready).
func (r *Registry) Snapshot(av AssetAvailability, filtered FilteredSource) *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := &Snapshot{records: make([]Record, 0, len(r.order))}
	for _, id := range r.order {
		e := r.entries[id]
		if !e.active {
			continue
		}

		rec := Record{
			ID:     e.id,
			Seq:    e.seq,
			Kind:   e.probe.Kind,
			Volume: e.vol,
		}

		switch e.probe.Kind {
		case ReflectionProbe:
			env, ok := resolveEnvMap(&e.probe, e.id, av, filtered)
			if !ok {
				continue
			}
			rec.EnvMap = env
		case IrradianceVolume:
			if av != nil && !av.HasVoxels(e.probe.Irradiance.Voxels) {
				continue
			}
			data := *e.probe.Irradiance
			rec.Irradiance = &data
		}

		s.records = append(s.records, rec)
	}
	return s
}

// resolveEnvMap produces the effective environment map for a reflection
// probe, or ok=false if its light data is not usable yet.
func resolveEnvMap(p *Probe, id ID, av AssetAvailability, filtered FilteredSource) (*EnvironmentMapLight, bool) {
	if p.EnvMap != nil {
		if av != nil && (!av.HasCubemap(p.EnvMap.DiffuseMap) || !av.HasMipChain(p.EnvMap.SpecularMap)) {
			return nil, false
		}
		env := *p.EnvMap
		return &env, true
	}

	if p.Generated != nil {
		if filtered == nil {
			return nil, false
		}
		maps, ok := filtered.FilteredMaps(id)
		if !ok {
			return nil, false
		}
		// Maps come from the pipeline; intensity, rotation and the
		// suppression flag follow the live record so changing them
		// never requires refiltering.
		return &EnvironmentMapLight{
			DiffuseMap:                maps.Diffuse,
			SpecularMap:               maps.Specular,
			Intensity:                 p.Generated.Intensity,
			Rotation:                  p.Generated.Rotation,
			AffectsLightmappedDiffuse: p.Generated.AffectsLightmappedDiffuse,
		}, true
	}

	return nil, false
}
