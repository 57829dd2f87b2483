// Package probe implements light probes for indirect illumination: cuboid
// probe volumes, the registry of active probes, frame-pinned snapshots, and
// the per-fragment priority resolver that picks a diffuse and a specular
// source independently.
//
// A light probe is a unit cube [-0.5, 0.5]^3 transformed into world space.
// It carries either an environment map (reflection probe) or a voxel grid of
// ambient samples (irradiance volume). When several sources could light a
// fragment, the highest-quality one wins, ranked separately for diffuse and
// specular light:
//
//	rank  diffuse               specular
//	1     lightmap              lightmap (if it encodes specular)
//	2     irradiance volume     reflection probe
//	3     reflection probe      view environment map
//	4     view environment map
//
// Ambient light is always added on top and never participates in the
// ranking.
package probe

import (
	"github.com/shunkie/lightprobe/internal/assets"
	"github.com/shunkie/lightprobe/pkg/math"
)

// ID identifies a registered probe. IDs are stable for the lifetime of the
// registry and never reused.
type ID uint32

// Kind distinguishes the two probe variants.
type Kind uint8

const (
	// ReflectionProbe supplies specular (and optionally diffuse) radiance
	// via an environment map.
	ReflectionProbe Kind = iota
	// IrradianceVolume supplies diffuse radiance via a sampled voxel grid.
	IrradianceVolume
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case ReflectionProbe:
		return "reflection-probe"
	case IrradianceVolume:
		return "irradiance-volume"
	default:
		return "unknown"
	}
}

// EnvironmentMapLight is a pair of prefiltered cubemap textures representing
// the radiance surrounding a region: a blurry diffuse irradiance map and a
// mipmapped, roughness-filtered specular map.
type EnvironmentMapLight struct {
	// DiffuseMap references the diffuse irradiance cubemap.
	DiffuseMap assets.Handle

	// SpecularMap references the mipmapped specular cubemap.
	SpecularMap assets.Handle

	// Intensity scales the light in radiance units. Zero is a valid
	// "off" state.
	Intensity float32

	// Rotation is applied to sampling directions before lookup.
	Rotation math.Quat

	// AffectsLightmappedDiffuse controls whether this light contributes
	// diffuse lighting to fragments that already have a lightmap. Set it
	// to false if the baking tool baked this light into the lightmaps,
	// to avoid counting the radiance twice.
	AffectsLightmappedDiffuse bool
}

// NewEnvironmentMapLight returns an EnvironmentMapLight with default
// settings: zero intensity, identity rotation, affecting lightmapped meshes.
func NewEnvironmentMapLight(diffuse, specular assets.Handle) EnvironmentMapLight {
	return EnvironmentMapLight{
		DiffuseMap:                diffuse,
		SpecularMap:               specular,
		Rotation:                  math.QuatIdentity(),
		AffectsLightmappedDiffuse: true,
	}
}

// GeneratedEnvironmentMapLight is an environment map filtered at runtime
// from a single raw cubemap. Until the filter pipeline publishes its output,
// the owning probe contributes nothing.
type GeneratedEnvironmentMapLight struct {
	// SourceMap references the raw cubemap to filter. Its face edge
	// length must be a power of two.
	SourceMap assets.Handle

	// Intensity, Rotation and AffectsLightmappedDiffuse have the same
	// meaning as on EnvironmentMapLight. They are applied at sample time
	// and changing them does not trigger refiltering.
	Intensity                 float32
	Rotation                  math.Quat
	AffectsLightmappedDiffuse bool
}

// NewGeneratedEnvironmentMapLight returns a GeneratedEnvironmentMapLight
// with default settings for the given source cubemap.
func NewGeneratedEnvironmentMapLight(source assets.Handle) GeneratedEnvironmentMapLight {
	return GeneratedEnvironmentMapLight{
		SourceMap:                 source,
		Rotation:                  math.QuatIdentity(),
		AffectsLightmappedDiffuse: true,
	}
}

// IrradianceVolumeData is the light payload of an irradiance volume: a 3D
// texture with one ambient-light sample per voxel.
type IrradianceVolumeData struct {
	// Voxels references the voxel grid in the asset store.
	Voxels assets.Handle

	// Intensity scales the light in radiance units.
	Intensity float32

	// AffectsLightmappedMeshes controls whether this volume lights
	// fragments that already have a lightmap. Unlike the environment map
	// flag it gates both diffuse and specular use of this source.
	AffectsLightmappedMeshes bool
}

// NewIrradianceVolumeData returns an IrradianceVolumeData with default
// settings for the given voxel grid.
func NewIrradianceVolumeData(voxels assets.Handle) IrradianceVolumeData {
	return IrradianceVolumeData{
		Voxels:                   voxels,
		AffectsLightmappedMeshes: true,
	}
}

// Probe couples a probe volume transform with exactly one kind of light
// payload. Use the constructors; they enforce that every payload comes with
// a bounding volume.
type Probe struct {
	// Transform maps the canonical unit cube [-0.5, 0.5]^3 into world
	// space. Translation, rotation and non-uniform scale are all allowed;
	// the transform must be invertible.
	Transform math.Mat4

	Kind Kind

	// Exactly one of the following is set, matching Kind.
	EnvMap     *EnvironmentMapLight
	Generated  *GeneratedEnvironmentMapLight
	Irradiance *IrradianceVolumeData
}

// NewReflectionProbe creates a reflection probe from a precomputed
// environment map.
func NewReflectionProbe(transform math.Mat4, env EnvironmentMapLight) Probe {
	return Probe{
		Transform: transform,
		Kind:      ReflectionProbe,
		EnvMap:    &env,
	}
}

// NewGeneratedReflectionProbe creates a reflection probe whose environment
// map is filtered at runtime from a raw cubemap.
func NewGeneratedReflectionProbe(transform math.Mat4, gen GeneratedEnvironmentMapLight) Probe {
	return Probe{
		Transform: transform,
		Kind:      ReflectionProbe,
		Generated: &gen,
	}
}

// NewIrradianceVolume creates an irradiance volume probe. The voxel data
// cannot exist without a bounding volume, so both arrive together.
func NewIrradianceVolume(transform math.Mat4, data IrradianceVolumeData) Probe {
	return Probe{
		Transform:  transform,
		Kind:       IrradianceVolume,
		Irradiance: &data,
	}
}
