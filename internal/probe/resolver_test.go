package probe

import (
	"testing"

	"github.com/shunkie/lightprobe/pkg/math"
)

// cubeAt builds a probe transform: an axis-aligned cube of edge length s
// centered at (x, y, z).
func cubeAt(x, y, z, s float32) math.Mat4 {
	return math.Translate(x, y, z).Mul(math.Scale(s, s, s))
}

func envLight(affectsLightmapped bool) EnvironmentMapLight {
	env := NewEnvironmentMapLight("d", "s")
	env.AffectsLightmappedDiffuse = affectsLightmapped
	return env
}

func irrData(affectsLightmapped bool) IrradianceVolumeData {
	data := NewIrradianceVolumeData("v")
	data.AffectsLightmappedMeshes = affectsLightmapped
	return data
}

func TestResolveNothingApplies(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(NewReflectionProbe(cubeAt(10, 0, 0, 1), envLight(true)))
	s := r.Snapshot(nil, nil)

	// Point outside every volume, no lightmap, no view env map.
	res := s.Resolve(math.Vec3{}, LightmapInfo{}, false)
	if res.Diffuse.Source != SourceNone {
		t.Errorf("diffuse = %v, want none", res.Diffuse.Source)
	}
	if res.Specular.Source != SourceNone {
		t.Errorf("specular = %v, want none", res.Specular.Source)
	}
}

func TestResolveOutsideFallsBackToViewEnv(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(NewReflectionProbe(cubeAt(10, 0, 0, 1), envLight(true)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{}, true)
	if res.Diffuse.Source != SourceViewEnvironmentMap {
		t.Errorf("diffuse = %v, want view env map", res.Diffuse.Source)
	}
	if res.Specular.Source != SourceViewEnvironmentMap {
		t.Errorf("specular = %v, want view env map", res.Specular.Source)
	}
}

func TestResolveSingleReflectionProbe(t *testing.T) {
	r := NewRegistry(nil)
	id, _ := r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(true)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{}, true)
	if res.Diffuse.Source != SourceReflectionProbe || res.Diffuse.Probe != id {
		t.Errorf("diffuse = %+v, want reflection probe %d", res.Diffuse, id)
	}
	if res.Specular.Source != SourceReflectionProbe || res.Specular.Probe != id {
		t.Errorf("specular = %+v, want reflection probe %d", res.Specular, id)
	}
}

func TestResolveIrradianceOutranksReflectionForDiffuse(t *testing.T) {
	r := NewRegistry(nil)
	reflID, _ := r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(true)))
	irrID, _ := r.Add(NewIrradianceVolume(cubeAt(0, 0, 0, 2), irrData(true)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{}, true)
	if res.Diffuse.Source != SourceIrradianceVolume || res.Diffuse.Probe != irrID {
		t.Errorf("diffuse = %+v, want irradiance volume %d", res.Diffuse, irrID)
	}
	// Irradiance volumes never serve specular.
	if res.Specular.Source != SourceReflectionProbe || res.Specular.Probe != reflID {
		t.Errorf("specular = %+v, want reflection probe %d", res.Specular, reflID)
	}
}

func TestResolveSmallerVolumeWins(t *testing.T) {
	r := NewRegistry(nil)
	// Two nested reflection probes with a 8:1 volume ratio.
	bigID, _ := r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(true)))
	smallID, _ := r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 1), envLight(true)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{}, false)
	if res.Specular.Probe != smallID {
		t.Errorf("specular probe = %d, want nested smaller probe %d", res.Specular.Probe, smallID)
	}

	// Outside the small cube but inside the big one, the big one serves.
	res = s.Resolve(math.Vec3{X: 0.9}, LightmapInfo{}, false)
	if res.Specular.Probe != bigID {
		t.Errorf("specular probe = %d, want enclosing probe %d", res.Specular.Probe, bigID)
	}
}

func TestResolveEqualVolumesUseRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	firstID, _ := r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 1), envLight(true)))
	r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 1), envLight(true)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{}, false)
	if res.Specular.Probe != firstID {
		t.Errorf("specular probe = %d, want first-registered %d", res.Specular.Probe, firstID)
	}
}

func TestResolveLightmapWinsDiffuse(t *testing.T) {
	r := NewRegistry(nil)
	id, _ := r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(true)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{Present: true}, true)
	if res.Diffuse.Source != SourceLightmap {
		t.Errorf("diffuse = %v, want lightmap", res.Diffuse.Source)
	}
	// A lightmap without specular content leaves specular to the probe.
	if res.Specular.Source != SourceReflectionProbe || res.Specular.Probe != id {
		t.Errorf("specular = %+v, want reflection probe %d", res.Specular, id)
	}
}

func TestResolveLightmapSpecular(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(true)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{Present: true, HasSpecular: true}, false)
	if res.Specular.Source != SourceLightmap {
		t.Errorf("specular = %v, want lightmap when it encodes specular", res.Specular.Source)
	}
}

func TestResolveSuppressionGatesDiffuseOnly(t *testing.T) {
	r := NewRegistry(nil)
	id, _ := r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(false)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{Present: true}, true)
	// The only candidate probe is suppressed for diffuse by the lightmap,
	// so the diffuse chain falls through to the view environment map.
	if res.Diffuse.Source != SourceViewEnvironmentMap {
		t.Errorf("diffuse = %v, want view env map after suppression", res.Diffuse.Source)
	}
	// Specular is unaffected by the diffuse suppression flag.
	if res.Specular.Source != SourceReflectionProbe || res.Specular.Probe != id {
		t.Errorf("specular = %+v, want reflection probe %d", res.Specular, id)
	}
}

func TestResolveSuppressedIrradianceFallsThrough(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(NewIrradianceVolume(cubeAt(0, 0, 0, 2), irrData(false)))
	reflID, _ := r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(true)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{Present: true}, true)
	if res.Diffuse.Source != SourceReflectionProbe || res.Diffuse.Probe != reflID {
		t.Errorf("diffuse = %+v, want fall-through to reflection probe %d", res.Diffuse, reflID)
	}
}

func TestResolveSuppressionWithoutFallback(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(false)))
	s := r.Snapshot(nil, nil)

	// No view env map to fall back to: diffuse ends up with nothing.
	res := s.Resolve(math.Vec3{}, LightmapInfo{Present: true}, false)
	if res.Diffuse.Source != SourceNone {
		t.Errorf("diffuse = %v, want none", res.Diffuse.Source)
	}
}

func TestResolveNoLightmapIgnoresSuppressionFlags(t *testing.T) {
	r := NewRegistry(nil)
	id, _ := r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(false)))
	s := r.Snapshot(nil, nil)

	// Without a lightmap the flag has no effect.
	res := s.Resolve(math.Vec3{}, LightmapInfo{}, false)
	if res.Diffuse.Source != SourceReflectionProbe || res.Diffuse.Probe != id {
		t.Errorf("diffuse = %+v, want reflection probe %d", res.Diffuse, id)
	}
}

func TestResolveSuppressionSkipsCandidateNotRank(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(NewIrradianceVolume(cubeAt(0, 0, 0, 2), irrData(false)))
	r.Add(NewIrradianceVolume(cubeAt(0, 0, 0, 2), irrData(true)))
	s := r.Snapshot(nil, nil)

	// One irradiance volume opted out, but another applicable one shares
	// its rank, so the chain is intact and the lightmap wins as usual.
	res := s.Resolve(math.Vec3{}, LightmapInfo{Present: true}, true)
	if res.Diffuse.Source != SourceLightmap {
		t.Errorf("diffuse = %v, want lightmap past a single suppressed candidate", res.Diffuse.Source)
	}
}

func TestResolveSuppressedProbeBesideApplicableProbe(t *testing.T) {
	r := NewRegistry(nil)
	r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(false)))
	r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(true)))
	s := r.Snapshot(nil, nil)

	res := s.Resolve(math.Vec3{}, LightmapInfo{Present: true}, true)
	if res.Diffuse.Source != SourceLightmap {
		t.Errorf("diffuse = %v, want lightmap past a single suppressed candidate", res.Diffuse.Source)
	}
}

func TestResolveSuppressedProbeBelowApplicableIrradiance(t *testing.T) {
	r := NewRegistry(nil)
	irrID, _ := r.Add(NewIrradianceVolume(cubeAt(0, 0, 0, 2), irrData(true)))
	r.Add(NewReflectionProbe(cubeAt(0, 0, 0, 2), envLight(false)))
	s := r.Snapshot(nil, nil)

	// The suppressed reflection probe sits below an applicable irradiance
	// volume it could never have outranked for diffuse, so the lightmap
	// wins; nothing falls through to the view environment map.
	res := s.Resolve(math.Vec3{}, LightmapInfo{Present: true}, true)
	if res.Diffuse.Source != SourceLightmap {
		t.Errorf("diffuse = %v, want lightmap", res.Diffuse.Source)
	}

	// Without the lightmap, the applicable irradiance volume serves.
	res = s.Resolve(math.Vec3{}, LightmapInfo{}, true)
	if res.Diffuse.Source != SourceIrradianceVolume || res.Diffuse.Probe != irrID {
		t.Errorf("diffuse = %+v, want irradiance volume %d", res.Diffuse, irrID)
	}
}
