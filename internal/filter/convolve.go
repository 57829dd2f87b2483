// Package filter turns a single raw cubemap into the pair of maps an
// environment map light needs: a cosine-convolved diffuse irradiance
// cubemap and a GGX-roughness-prefiltered specular mip chain. The kernels
// are plain CPU convolutions, parallel per face; the Pipeline runs them as
// background jobs so shading never waits on filtering.
package filter

import (
	stdmath "math"
	"sync"

	"github.com/shunkie/lightprobe/internal/cubemap"
	"github.com/shunkie/lightprobe/pkg/math"
)

// hammersley returns the i-th point of an n-point low-discrepancy sequence
// in [0,1)^2. Deterministic, so filtering the same source twice produces
// identical maps.
func hammersley(i, n int) (float32, float32) {
	// Van der Corput radical inverse in base 2.
	bits := uint32(i)
	bits = (bits << 16) | (bits >> 16)
	bits = ((bits & 0x55555555) << 1) | ((bits & 0xAAAAAAAA) >> 1)
	bits = ((bits & 0x33333333) << 2) | ((bits & 0xCCCCCCCC) >> 2)
	bits = ((bits & 0x0F0F0F0F) << 4) | ((bits & 0xF0F0F0F0) >> 4)
	bits = ((bits & 0x00FF00FF) << 8) | ((bits & 0xFF00FF00) >> 8)
	return float32(i) / float32(n), float32(bits) * 2.3283064365386963e-10
}

// orthonormalBasis returns two unit vectors spanning the plane
// perpendicular to n.
func orthonormalBasis(n math.Vec3) (tangent, bitangent math.Vec3) {
	up := math.Vec3{X: 1}
	if math.Absf(n.X) > 0.9 {
		up = math.Vec3{Y: 1}
	}
	tangent = up.Cross(n).Normalize()
	bitangent = n.Cross(tangent)
	return tangent, bitangent
}

// Diffuse convolves the source over the hemisphere around each texel's
// direction with cosine weighting, producing a low-resolution irradiance
// cubemap. The reduction is order-independent; faces run in parallel.
func Diffuse(src *cubemap.Cubemap, size, samples int) *cubemap.Cubemap {
	if samples < 1 {
		samples = 1
	}
	out := cubemap.New(size)

	var wg sync.WaitGroup
	for face := 0; face < cubemap.FaceCount; face++ {
		wg.Add(1)
		go func(face int) {
			defer wg.Done()
			for y := 0; y < size; y++ {
				for x := 0; x < size; x++ {
					n := out.FaceDirection(face, x, y)
					out.Set(face, x, y, convolveDiffuse(src, n, samples))
				}
			}
		}(face)
	}
	wg.Wait()
	return out
}

// convolveDiffuse integrates cosine-weighted radiance around n. Sample
// directions are already cosine-distributed, so the plain average is the
// normalized result and a uniform source stays exactly uniform.
func convolveDiffuse(src *cubemap.Cubemap, n math.Vec3, samples int) cubemap.Color {
	tangent, bitangent := orthonormalBasis(n)

	var sum cubemap.Color
	for i := 0; i < samples; i++ {
		u1, u2 := hammersley(i, samples)

		// Cosine-weighted hemisphere sample in tangent space.
		r := float32(stdmath.Sqrt(float64(u1)))
		phi := 2 * stdmath.Pi * float64(u2)
		sx := r * float32(stdmath.Cos(phi))
		sy := r * float32(stdmath.Sin(phi))
		sz := float32(stdmath.Sqrt(float64(1 - u1)))

		dir := tangent.Scale(sx).Add(bitangent.Scale(sy)).Add(n.Scale(sz))
		sum = sum.Add(src.Sample(dir))
	}
	return sum.Scale(1 / float32(samples))
}

// RoughnessForMip returns the GGX roughness filtered into mip level m of a
// chain with mips levels: linear from 0 (mirror) to 1.
func RoughnessForMip(m, mips int) float32 {
	if mips <= 1 {
		return 0
	}
	return float32(m) / float32(mips-1)
}

// Specular builds the prefiltered specular mip chain. Level 0 is the
// unfiltered source; level m convolves with GGX roughness RoughnessForMip(m).
// Levels are independent of each other and run concurrently.
func Specular(src *cubemap.Cubemap, samples int) *cubemap.MipChain {
	if samples < 1 {
		samples = 1
	}
	chain := cubemap.NewMipChain(src.Size)
	mips := len(chain.Levels)

	var wg sync.WaitGroup
	for m := 0; m < mips; m++ {
		level := chain.Levels[m]
		roughness := RoughnessForMip(m, mips)

		for face := 0; face < cubemap.FaceCount; face++ {
			wg.Add(1)
			go func(level *cubemap.Cubemap, face int, roughness float32) {
				defer wg.Done()
				filterSpecularFace(src, level, face, roughness, samples)
			}(level, face, roughness)
		}
	}
	wg.Wait()
	return chain
}

func filterSpecularFace(src, out *cubemap.Cubemap, face int, roughness float32, samples int) {
	for y := 0; y < out.Size; y++ {
		for x := 0; x < out.Size; x++ {
			n := out.FaceDirection(face, x, y)
			if roughness == 0 {
				out.Set(face, x, y, src.Sample(n))
				continue
			}
			out.Set(face, x, y, convolveSpecular(src, n, roughness, samples))
		}
	}
}

// convolveSpecular prefilters one direction with the split-sum
// approximation: importance-sample GGX half vectors around n (with n as
// both view and reflection direction), accumulate reflected radiance
// weighted by n·l, and normalize by the weight sum so a uniform source
// stays uniform.
func convolveSpecular(src *cubemap.Cubemap, n math.Vec3, roughness float32, samples int) cubemap.Color {
	tangent, bitangent := orthonormalBasis(n)
	alpha := roughness * roughness

	var sum cubemap.Color
	var weight float32
	for i := 0; i < samples; i++ {
		u1, u2 := hammersley(i, samples)

		// GGX-distributed half vector in tangent space.
		phi := 2 * stdmath.Pi * float64(u1)
		cosTheta := float32(stdmath.Sqrt(float64((1 - u2) / (1 + (alpha*alpha-1)*u2))))
		sinTheta := float32(stdmath.Sqrt(float64(1 - cosTheta*cosTheta)))
		hx := sinTheta * float32(stdmath.Cos(phi))
		hy := sinTheta * float32(stdmath.Sin(phi))

		h := tangent.Scale(hx).Add(bitangent.Scale(hy)).Add(n.Scale(cosTheta))
		l := h.Scale(2 * n.Dot(h)).Sub(n)

		ndotl := n.Dot(l)
		if ndotl <= 0 {
			continue
		}
		sum = sum.Add(src.Sample(l).Scale(ndotl))
		weight += ndotl
	}

	if weight == 0 {
		return src.Sample(n)
	}
	return sum.Scale(1 / weight)
}
