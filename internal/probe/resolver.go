package probe

import (
	"github.com/shunkie/lightprobe/pkg/math"
)

// SourceKind names the indirect-illumination source a fragment should
// sample for one light component.
type SourceKind uint8

const (
	// SourceNone means no source applies; only ambient light remains.
	SourceNone SourceKind = iota
	// SourceLightmap is the fragment's baked lightmap.
	SourceLightmap
	// SourceIrradianceVolume is a containing irradiance volume.
	SourceIrradianceVolume
	// SourceReflectionProbe is a containing reflection probe.
	SourceReflectionProbe
	// SourceViewEnvironmentMap is the view-level fallback environment map.
	SourceViewEnvironmentMap
)

// String returns the source kind name.
func (k SourceKind) String() string {
	switch k {
	case SourceNone:
		return "none"
	case SourceLightmap:
		return "lightmap"
	case SourceIrradianceVolume:
		return "irradiance-volume"
	case SourceReflectionProbe:
		return "reflection-probe"
	case SourceViewEnvironmentMap:
		return "view-environment-map"
	default:
		return "unknown"
	}
}

// Selection is one resolved source. Probe is set only when Source refers to
// a probe from the snapshot.
type Selection struct {
	Source SourceKind
	Probe  ID
}

// Resolution is the resolver output: the diffuse and specular sources for
// one fragment, chosen independently.
type Resolution struct {
	Diffuse  Selection
	Specular Selection
}

// LightmapInfo describes the fragment's baked lightmap state. HasSpecular
// is true only for lightmaps that encode a specular component, which is
// uncommon.
type LightmapInfo struct {
	Present     bool
	HasSpecular bool
}

// Resolve picks the diffuse and specular illumination source for a fragment
// at pos. viewEnv reports whether a view-level environment map exists as the
// global fallback. Resolve never fails: with nothing applicable both
// selections are SourceNone and only ambient light remains. The call is
// read-only on the snapshot and safe to issue from any number of goroutines
// at once.
func (s *Snapshot) Resolve(pos math.Vec3, lm LightmapInfo, viewEnv bool) Resolution {
	// The suppression flags gate diffuse use on lightmapped fragments
	// only, so the specular chain gets its own ungated probe candidate.
	irr, irrSuppressed := s.bestContaining(pos, IrradianceVolume, lm.Present)
	refl, reflSuppressed := s.bestContaining(pos, ReflectionProbe, lm.Present)
	reflSpec, _ := s.bestContaining(pos, ReflectionProbe, false)

	return Resolution{
		Diffuse:  resolveDiffuse(irr, irrSuppressed, refl, reflSuppressed, lm, viewEnv),
		Specular: resolveSpecular(reflSpec, lm, viewEnv),
	}
}

// bestContaining returns the best containing candidate of the given kind:
// smallest world volume first, registration order on exact ties. With
// lightmapGate set, candidates that do not affect lightmapped meshes are
// skipped; suppressed reports that at least one candidate was skipped
// that way.
func (s *Snapshot) bestContaining(pos math.Vec3, kind Kind, lightmapGate bool) (best *Record, suppressed bool) {
	for i := range s.records {
		rec := &s.records[i]
		if rec.Kind != kind || !rec.Volume.Contains(pos) {
			continue
		}
		if lightmapGate && !affectsLightmapped(rec) {
			suppressed = true
			continue
		}
		if best == nil || smaller(rec, best) {
			best = rec
		}
	}
	return best, suppressed
}

// affectsLightmapped reports whether the record may contribute diffuse
// light to a lightmapped fragment.
func affectsLightmapped(rec *Record) bool {
	switch rec.Kind {
	case IrradianceVolume:
		return rec.Irradiance.AffectsLightmappedMeshes
	default:
		return rec.EnvMap.AffectsLightmappedDiffuse
	}
}

// smaller reports whether a should be preferred over b: strictly smaller
// world volume, or equal volume but earlier registration.
func smaller(a, b *Record) bool {
	av, bv := a.Volume.WorldVolume(), b.Volume.WorldVolume()
	if av != bv {
		return av < bv
	}
	return a.Seq < b.Seq
}

// resolveDiffuse walks the diffuse chain: lightmap, irradiance volume,
// reflection probe, view environment map. A lightmap normally wins
// outright. Suppression skips individual candidates, not ranks: only when
// it left a rank with no applicable candidate does the chain continue
// below that rank, so the fragment still receives an environment term from
// the remaining sources.
func resolveDiffuse(irr *Record, irrSuppressed bool, refl *Record, reflSuppressed bool, lm LightmapInfo, viewEnv bool) Selection {
	if lm.Present {
		switch {
		case irrSuppressed && irr == nil:
			// The irradiance rank was emptied by suppression; continue
			// with the reflection-probe rank.
			if refl != nil {
				return Selection{Source: SourceReflectionProbe, Probe: refl.ID}
			}
			if viewEnv {
				return Selection{Source: SourceViewEnvironmentMap}
			}
			return Selection{}
		case reflSuppressed && refl == nil && irr == nil:
			// The reflection-probe rank was emptied by suppression and
			// no irradiance volume outranks it; continue with the
			// view-level fallback.
			if viewEnv {
				return Selection{Source: SourceViewEnvironmentMap}
			}
			return Selection{}
		default:
			return Selection{Source: SourceLightmap}
		}
	}

	if irr != nil {
		return Selection{Source: SourceIrradianceVolume, Probe: irr.ID}
	}
	if refl != nil {
		return Selection{Source: SourceReflectionProbe, Probe: refl.ID}
	}
	if viewEnv {
		return Selection{Source: SourceViewEnvironmentMap}
	}
	return Selection{}
}

// resolveSpecular walks the specular chain: lightmap (only when it encodes
// specular), reflection probe, view environment map. refl is the ungated
// candidate: a probe suppressed for diffuse still serves specular.
func resolveSpecular(refl *Record, lm LightmapInfo, viewEnv bool) Selection {
	if lm.Present && lm.HasSpecular {
		return Selection{Source: SourceLightmap}
	}
	if refl != nil {
		return Selection{Source: SourceReflectionProbe, Probe: refl.ID}
	}
	if viewEnv {
		return Selection{Source: SourceViewEnvironmentMap}
	}
	return Selection{}
}
