package probe

import (
	"github.com/shunkie/lightprobe/pkg/math"
)

// Volume is a probe's bounding region: the canonical unit cube transformed
// into world space. The inverse transform is cached so containment tests
// are a matrix multiply and three interval checks.
type Volume struct {
	transform math.Mat4
	inverse   math.Mat4
	measure   float32
}

// NewVolume builds a Volume from a world transform. Returns
// ErrInvalidTransform if the transform is singular.
func NewVolume(transform math.Mat4) (Volume, error) {
	inv, ok := transform.InverseOK()
	if !ok {
		return Volume{}, ErrInvalidTransform
	}
	return Volume{
		transform: transform,
		inverse:   inv,
		measure:   math.Absf(transform.Determinant()),
	}, nil
}

// Contains reports whether the world-space point lies inside the volume.
// Points exactly on the boundary count as inside.
func (v Volume) Contains(p math.Vec3) bool {
	q := v.inverse.TransformVec3(p)
	return q.X >= -0.5 && q.X <= 0.5 &&
		q.Y >= -0.5 && q.Y <= 0.5 &&
		q.Z >= -0.5 && q.Z <= 0.5
}

// Transform returns the world transform the volume was built from.
func (v Volume) Transform() math.Mat4 {
	return v.transform
}

// WorldVolume returns the world-space volume of the region, the absolute
// determinant of the transform's 3x3 block. Used to prefer smaller, nested
// probes over enclosing ones.
func (v Volume) WorldVolume() float32 {
	return v.measure
}
