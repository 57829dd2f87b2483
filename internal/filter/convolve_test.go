package filter

import (
	"testing"

	"github.com/shunkie/lightprobe/internal/cubemap"
)

const colorTolerance = 1e-3

func colorsClose(a, b cubemap.Color) bool {
	return absf(a.R-b.R) < colorTolerance &&
		absf(a.G-b.G) < colorTolerance &&
		absf(a.B-b.B) < colorTolerance
}

func absf(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestDiffuseUniformStaysUniform(t *testing.T) {
	c := cubemap.Color{R: 0.8, G: 0.4, B: 0.1}
	src := cubemap.NewUniform(16, c)

	out := Diffuse(src, 8, 128)
	if out.Size != 8 {
		t.Fatalf("diffuse output size = %d, want 8", out.Size)
	}
	for face := 0; face < cubemap.FaceCount; face++ {
		for y := 0; y < out.Size; y++ {
			for x := 0; x < out.Size; x++ {
				got := out.At(face, x, y)
				if !colorsClose(got, c) {
					t.Fatalf("face %d texel (%d,%d) = %v, want %v", face, x, y, got, c)
				}
			}
		}
	}
}

func TestSpecularUniformStaysUniform(t *testing.T) {
	c := cubemap.Color{R: 0.2, G: 0.9, B: 0.5}
	src := cubemap.NewUniform(8, c)

	chain := Specular(src, 64)
	for m, level := range chain.Levels {
		for face := 0; face < cubemap.FaceCount; face++ {
			for y := 0; y < level.Size; y++ {
				for x := 0; x < level.Size; x++ {
					got := level.At(face, x, y)
					if !colorsClose(got, c) {
						t.Fatalf("mip %d face %d texel (%d,%d) = %v, want %v", m, face, x, y, got, c)
					}
				}
			}
		}
	}
}

func TestSpecularMipLayout(t *testing.T) {
	src := cubemap.NewUniform(16, cubemap.Color{R: 1})
	chain := Specular(src, 16)

	if len(chain.Levels) != cubemap.MipCount(16) {
		t.Fatalf("chain has %d levels, want %d", len(chain.Levels), cubemap.MipCount(16))
	}
	for m, level := range chain.Levels {
		want := 16 >> m
		if want < 1 {
			want = 1
		}
		if level.Size != want {
			t.Errorf("mip %d size = %d, want %d", m, level.Size, want)
		}
	}
}

func TestRoughnessForMip(t *testing.T) {
	mips := 5
	if got := RoughnessForMip(0, mips); got != 0 {
		t.Errorf("RoughnessForMip(0) = %f, want 0 (mirror)", got)
	}
	if got := RoughnessForMip(mips-1, mips); got != 1 {
		t.Errorf("RoughnessForMip(last) = %f, want 1", got)
	}
	if got := RoughnessForMip(2, mips); absf(got-0.5) > 1e-6 {
		t.Errorf("RoughnessForMip(2) = %f, want 0.5", got)
	}
}

func TestDiffuseDirectional(t *testing.T) {
	// Light only on the +Y face: texels facing up must be brighter than
	// texels facing down.
	src := cubemap.New(8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.Set(cubemap.FacePosY, x, y, cubemap.Color{R: 1, G: 1, B: 1})
		}
	}

	out := Diffuse(src, 4, 256)
	up := out.At(cubemap.FacePosY, 2, 2)
	down := out.At(cubemap.FaceNegY, 2, 2)
	if up.R <= down.R {
		t.Errorf("upward irradiance %f should exceed downward %f", up.R, down.R)
	}
	if up.R < 0.4 {
		t.Errorf("upward irradiance %f too low for a lit upper hemisphere", up.R)
	}
}
