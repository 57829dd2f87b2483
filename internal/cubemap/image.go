package cubemap

import (
	"fmt"
	"image"
	stdmath "math"
)

// FaceNames are the conventional file stems for the six faces, in face
// constant order.
var FaceNames = [FaceCount]string{"posx", "negx", "posy", "negy", "posz", "negz"}

const displayGamma = 2.2

// FromFaceImages builds a cubemap from six equally sized square images,
// in face constant order. Pixel values are decoded from gamma space to
// linear.
func FromFaceImages(imgs [FaceCount]image.Image) (*Cubemap, error) {
	size := imgs[0].Bounds().Dx()
	for face, img := range imgs {
		b := img.Bounds()
		if b.Dx() != b.Dy() {
			return nil, fmt.Errorf("face %s: image %dx%d is not square", FaceNames[face], b.Dx(), b.Dy())
		}
		if b.Dx() != size {
			return nil, fmt.Errorf("face %s: size %d differs from face %s size %d",
				FaceNames[face], b.Dx(), FaceNames[0], size)
		}
	}

	c := New(size)
	for face, img := range imgs {
		b := img.Bounds()
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				c.Set(face, x, y, Color{
					R: toLinear(float32(r) / 0xffff),
					G: toLinear(float32(g) / 0xffff),
					B: toLinear(float32(bl) / 0xffff),
				})
			}
		}
	}
	return c, nil
}

// FaceImage renders one face as an 8-bit image, encoding linear values
// back to gamma space. Out-of-range values clip.
func (c *Cubemap) FaceImage(face int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, c.Size, c.Size))
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			texel := c.At(face, x, y)
			i := img.PixOffset(x, y)
			img.Pix[i+0] = toByte(texel.R)
			img.Pix[i+1] = toByte(texel.G)
			img.Pix[i+2] = toByte(texel.B)
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

func toLinear(v float32) float32 {
	return float32(stdmath.Pow(float64(v), displayGamma))
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xff
	}
	encoded := stdmath.Pow(float64(v), 1/displayGamma)
	return uint8(encoded*255 + 0.5)
}
