package cubemap

import (
	"image"
	"image/color"
	"testing"
)

func solidImage(size int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestFromFaceImagesRoundTrip(t *testing.T) {
	var imgs [FaceCount]image.Image
	for face := range imgs {
		imgs[face] = solidImage(4, color.NRGBA{R: 128, G: 64, B: 255, A: 255})
	}

	c, err := FromFaceImages(imgs)
	if err != nil {
		t.Fatalf("FromFaceImages: %v", err)
	}
	if c.Size != 4 {
		t.Fatalf("size = %d, want 4", c.Size)
	}

	out := c.FaceImage(FacePosX)
	got := out.NRGBAAt(1, 1)
	if got.R != 128 || got.G != 64 || got.B != 255 {
		t.Errorf("round trip pixel = %v, want {128 64 255}", got)
	}
}

func TestFromFaceImagesRejectsNonSquare(t *testing.T) {
	var imgs [FaceCount]image.Image
	for face := range imgs {
		imgs[face] = solidImage(4, color.NRGBA{A: 255})
	}
	imgs[2] = image.NewNRGBA(image.Rect(0, 0, 4, 8))

	if _, err := FromFaceImages(imgs); err == nil {
		t.Error("expected error for non-square face")
	}
}

func TestFromFaceImagesRejectsMismatchedSizes(t *testing.T) {
	var imgs [FaceCount]image.Image
	for face := range imgs {
		imgs[face] = solidImage(4, color.NRGBA{A: 255})
	}
	imgs[5] = solidImage(8, color.NRGBA{A: 255})

	if _, err := FromFaceImages(imgs); err == nil {
		t.Error("expected error for mismatched face sizes")
	}
}
