package probe

import (
	"errors"
	"testing"

	"github.com/shunkie/lightprobe/pkg/math"
)

func TestVolumeContainsUnitCube(t *testing.T) {
	v, err := NewVolume(math.Identity())
	if err != nil {
		t.Fatalf("NewVolume(identity) returned error: %v", err)
	}

	inside := []math.Vec3{
		{}, {X: 0.25, Y: -0.25, Z: 0.1},
		{X: 0.5, Y: 0.5, Z: 0.5}, // boundary corner counts as inside
		{X: -0.5, Y: 0, Z: 0.25}, // boundary face
	}
	for _, p := range inside {
		if !v.Contains(p) {
			t.Errorf("Contains(%v) = false, want true", p)
		}
	}

	outside := []math.Vec3{
		{X: 0.501}, {Y: -0.6}, {Z: 2},
		{X: 0.5, Y: 0.5, Z: 0.51},
	}
	for _, p := range outside {
		if v.Contains(p) {
			t.Errorf("Contains(%v) = true, want false", p)
		}
	}
}

func TestVolumeContainsTransformed(t *testing.T) {
	// Cube scaled 4x2x2 and moved to (10, 0, 0).
	m := math.Translate(10, 0, 0).Mul(math.Scale(4, 2, 2))
	v, err := NewVolume(m)
	if err != nil {
		t.Fatalf("NewVolume returned error: %v", err)
	}

	if !v.Contains(math.Vec3{X: 10}) {
		t.Error("center of transformed cube should be inside")
	}
	if !v.Contains(math.Vec3{X: 12, Y: 1, Z: -1}) {
		t.Error("transformed corner should be inside")
	}
	if v.Contains(math.Vec3{X: 12.1}) {
		t.Error("point past the half-extent should be outside")
	}
	if v.Contains(math.Vec3{}) {
		t.Error("world origin should be outside the moved cube")
	}
}

func TestVolumeContainsRotated(t *testing.T) {
	// 45 degrees around Y: the cube's corner reaches sqrt(2)/2 along X.
	v, err := NewVolume(math.RotateY(0.785398))
	if err != nil {
		t.Fatalf("NewVolume returned error: %v", err)
	}

	if !v.Contains(math.Vec3{X: 0.7}) {
		t.Error("point under the rotated corner should be inside")
	}
	if v.Contains(math.Vec3{X: 0.5, Z: 0.5}) {
		t.Error("axis-aligned corner should be outside after rotation")
	}
}

func TestVolumeInvalidTransform(t *testing.T) {
	_, err := NewVolume(math.Scale(1, 0, 1))
	if !errors.Is(err, ErrInvalidTransform) {
		t.Fatalf("NewVolume(singular) error = %v, want ErrInvalidTransform", err)
	}
}

func TestVolumeWorldVolume(t *testing.T) {
	v, err := NewVolume(math.Scale(2, 2, 2))
	if err != nil {
		t.Fatalf("NewVolume returned error: %v", err)
	}
	if got := v.WorldVolume(); got < 7.99 || got > 8.01 {
		t.Errorf("WorldVolume of 2x2x2 scale = %f, want 8", got)
	}
}
