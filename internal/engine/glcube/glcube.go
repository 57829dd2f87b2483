// Package glcube uploads filtered environment maps to OpenGL cubemap
// textures and renders them as a skybox for inspection.
package glcube

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/shunkie/lightprobe/internal/cubemap"
	"github.com/shunkie/lightprobe/internal/engine/glcube/shaders"
	"github.com/shunkie/lightprobe/internal/engine/shader"
	"github.com/shunkie/lightprobe/pkg/math"
)

// Upload creates a GL cubemap texture from a single-level cubemap. Face
// order matches GL_TEXTURE_CUBE_MAP_POSITIVE_X and onward.
func Upload(c *cubemap.Cubemap) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)

	for face := 0; face < cubemap.FaceCount; face++ {
		uploadFace(face, 0, c)
	}

	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)

	return tex
}

// UploadChain creates a GL cubemap texture with one GL mip level per chain
// level, so roughness can be sampled with textureLod.
func UploadChain(mc *cubemap.MipChain) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)

	for level, c := range mc.Levels {
		for face := 0; face < cubemap.FaceCount; face++ {
			uploadFace(face, int32(level), c)
		}
	}

	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_CUBE_MAP, gl.TEXTURE_MAX_LEVEL, int32(len(mc.Levels)-1))

	return tex
}

func uploadFace(face int, level int32, c *cubemap.Cubemap) {
	data := make([]float32, 0, c.Size*c.Size*3)
	for _, texel := range c.Faces[face] {
		data = append(data, texel.R, texel.G, texel.B)
	}
	gl.TexImage2D(
		uint32(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face),
		level,
		gl.RGB32F,
		int32(c.Size), int32(c.Size),
		0,
		gl.RGB, gl.FLOAT,
		unsafe.Pointer(&data[0]),
	)
}

// Delete frees a texture created by Upload or UploadChain.
func Delete(tex uint32) {
	gl.DeleteTextures(1, &tex)
}

// EnvRotation builds the lookup transform for an environment map rotated
// by q. Sample directions are rotated by the inverse, so the environment
// appears rotated instead of the viewer.
func EnvRotation(q math.Quat) math.Mat4 {
	inv := q.Conjugate()
	x := inv.RotateVec3(math.Vec3{X: 1})
	y := inv.RotateVec3(math.Vec3{Y: 1})
	z := inv.RotateVec3(math.Vec3{Z: 1})
	return math.FromMat3x3([9]float32{
		x.X, x.Y, x.Z,
		y.X, y.Y, y.Z,
		z.X, z.Y, z.Z,
	})
}

// SkyboxRenderer draws a cubemap texture as the scene background.
type SkyboxRenderer struct {
	program uint32

	locViewProj  int32
	locEnvRot    int32
	locLod       int32
	locIntensity int32

	vao uint32
	vbo uint32
}

// NewSkyboxRenderer compiles the skybox shader and builds the cube mesh.
func NewSkyboxRenderer() (*SkyboxRenderer, error) {
	sr := &SkyboxRenderer{}

	program, err := shader.CompileProgram(shaders.SkyboxVertexShader, shaders.SkyboxFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("skybox shader: %w", err)
	}
	sr.program = program

	sr.locViewProj = shader.GetUniform(program, "uViewProj")
	sr.locEnvRot = shader.GetUniform(program, "uEnvRotation")
	sr.locLod = shader.GetUniform(program, "uLod")
	sr.locIntensity = shader.GetUniform(program, "uIntensity")

	vertices := cubeVertices()

	gl.GenVertexArrays(1, &sr.vao)
	gl.BindVertexArray(sr.vao)

	gl.GenBuffers(1, &sr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, sr.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, unsafe.Pointer(&vertices[0]), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)

	gl.BindVertexArray(0)

	return sr, nil
}

// Draw renders the cubemap texture at the given mip level and intensity.
// The view matrix should have its translation stripped by the caller;
// envRot transforms lookup directions and comes from EnvRotation.
func (sr *SkyboxRenderer) Draw(viewProj, envRot math.Mat4, tex uint32, lod, intensity float32) {
	gl.UseProgram(sr.program)

	gl.UniformMatrix4fv(sr.locViewProj, 1, false, &viewProj[0])
	gl.UniformMatrix4fv(sr.locEnvRot, 1, false, &envRot[0])
	gl.Uniform1f(sr.locLod, lod)
	gl.Uniform1f(sr.locIntensity, intensity)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, tex)

	// LEQUAL so the far-plane depth from the vertex shader still passes.
	gl.DepthFunc(gl.LEQUAL)
	gl.BindVertexArray(sr.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 36)
	gl.BindVertexArray(0)
	gl.DepthFunc(gl.LESS)
}

// Close releases GL resources.
func (sr *SkyboxRenderer) Close() {
	gl.DeleteVertexArrays(1, &sr.vao)
	gl.DeleteBuffers(1, &sr.vbo)
	gl.DeleteProgram(sr.program)
}

func cubeVertices() []float32 {
	return []float32{
		// -Z
		-1, -1, -1, -1, 1, -1, 1, 1, -1,
		1, 1, -1, 1, -1, -1, -1, -1, -1,
		// +Z
		-1, -1, 1, 1, -1, 1, 1, 1, 1,
		1, 1, 1, -1, 1, 1, -1, -1, 1,
		// -X
		-1, 1, 1, -1, 1, -1, -1, -1, -1,
		-1, -1, -1, -1, -1, 1, -1, 1, 1,
		// +X
		1, 1, 1, 1, -1, 1, 1, -1, -1,
		1, -1, -1, 1, 1, -1, 1, 1, 1,
		// -Y
		-1, -1, -1, 1, -1, -1, 1, -1, 1,
		1, -1, 1, -1, -1, 1, -1, -1, -1,
		// +Y
		-1, 1, -1, -1, 1, 1, 1, 1, 1,
		1, 1, 1, 1, 1, -1, -1, 1, -1,
	}
}
