// Package cubemap provides CPU-side cubemap images used as image-based
// lighting sources. A cubemap stores six square faces of linear RGB texels
// and maps 3D directions to face texels and back.
package cubemap

import (
	stdmath "math"

	"github.com/shunkie/lightprobe/pkg/math"
)

// Cube face indices.
const (
	FacePosX = 0
	FaceNegX = 1
	FacePosY = 2
	FaceNegY = 3
	FacePosZ = 4
	FaceNegZ = 5

	// FaceCount is the number of faces in a cubemap.
	FaceCount = 6
)

// Color is a linear RGB color.
type Color struct {
	R, G, B float32
}

// Add returns c + other.
func (c Color) Add(other Color) Color {
	return Color{c.R + other.R, c.G + other.G, c.B + other.B}
}

// Scale returns c * s.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s}
}

// Cubemap is a six-faced square image with linear RGB texels.
// Faces are indexed by the Face* constants; texels are stored row-major
// with (0,0) in the top-left corner of each face.
type Cubemap struct {
	Size  int
	Faces [FaceCount][]Color
}

// New creates a cubemap with the given face edge length, all texels black.
func New(size int) *Cubemap {
	if size < 1 {
		size = 1
	}
	c := &Cubemap{Size: size}
	for f := range c.Faces {
		c.Faces[f] = make([]Color, size*size)
	}
	return c
}

// NewUniform creates a cubemap with every texel set to the given color.
func NewUniform(size int, col Color) *Cubemap {
	c := New(size)
	for f := range c.Faces {
		for i := range c.Faces[f] {
			c.Faces[f][i] = col
		}
	}
	return c
}

// At returns the texel at (x, y) on the given face.
func (c *Cubemap) At(face, x, y int) Color {
	return c.Faces[face][y*c.Size+x]
}

// Set writes the texel at (x, y) on the given face.
func (c *Cubemap) Set(face, x, y int, col Color) {
	c.Faces[face][y*c.Size+x] = col
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// FaceDirection returns the world-space direction through the center of
// texel (x, y) on the given face. The result is normalized.
func (c *Cubemap) FaceDirection(face, x, y int) math.Vec3 {
	u := 2*(float32(x)+0.5)/float32(c.Size) - 1
	v := 2*(float32(y)+0.5)/float32(c.Size) - 1
	return faceUVToDirection(face, u, v).Normalize()
}

// faceUVToDirection maps face-local coordinates u, v in [-1, 1] to an
// unnormalized direction. The layout matches the usual GL cubemap
// convention: v grows downward on every face.
func faceUVToDirection(face int, u, v float32) math.Vec3 {
	switch face {
	case FacePosX:
		return math.Vec3{X: 1, Y: -v, Z: -u}
	case FaceNegX:
		return math.Vec3{X: -1, Y: -v, Z: u}
	case FacePosY:
		return math.Vec3{X: u, Y: 1, Z: v}
	case FaceNegY:
		return math.Vec3{X: u, Y: -1, Z: -v}
	case FacePosZ:
		return math.Vec3{X: u, Y: -v, Z: 1}
	default:
		return math.Vec3{X: -u, Y: -v, Z: -1}
	}
}

// directionToFaceUV selects the face whose axis dominates the direction and
// returns the face-local coordinates in [-1, 1]. Inverse of faceUVToDirection.
func directionToFaceUV(dir math.Vec3) (face int, u, v float32) {
	a := dir.Abs()
	m := a.MaxComponent()

	switch {
	case a.X == m:
		if a.X == 0 {
			return FacePosX, 0, 0
		}
		if dir.X > 0 {
			return FacePosX, -dir.Z / a.X, -dir.Y / a.X
		}
		return FaceNegX, dir.Z / a.X, -dir.Y / a.X
	case a.Y == m:
		if dir.Y > 0 {
			return FacePosY, dir.X / a.Y, dir.Z / a.Y
		}
		return FaceNegY, dir.X / a.Y, -dir.Z / a.Y
	default:
		if dir.Z > 0 {
			return FacePosZ, dir.X / a.Z, -dir.Y / a.Z
		}
		return FaceNegZ, -dir.X / a.Z, -dir.Y / a.Z
	}
}

// Sample returns the bilinearly filtered color in the given direction.
func (c *Cubemap) Sample(dir math.Vec3) Color {
	face, u, v := directionToFaceUV(dir)

	// Texel-space coordinates of the sample point.
	fx := (u+1)/2*float32(c.Size) - 0.5
	fy := (v+1)/2*float32(c.Size) - 0.5

	x0 := int(stdmath.Floor(float64(fx)))
	y0 := int(stdmath.Floor(float64(fy)))
	tx := fx - float32(x0)
	ty := fy - float32(y0)

	x0 = clamp(x0, c.Size-1)
	y0 = clamp(y0, c.Size-1)
	x1 := clamp(x0+1, c.Size-1)
	y1 := clamp(y0+1, c.Size-1)

	c00 := c.At(face, x0, y0)
	c10 := c.At(face, x1, y0)
	c01 := c.At(face, x0, y1)
	c11 := c.At(face, x1, y1)

	top := c00.Scale(1 - tx).Add(c10.Scale(tx))
	bot := c01.Scale(1 - tx).Add(c11.Scale(tx))
	return top.Scale(1 - ty).Add(bot.Scale(ty))
}

func clamp(x, max int) int {
	if x < 0 {
		return 0
	}
	if x > max {
		return max
	}
	return x
}
