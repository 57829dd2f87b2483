// envfilter is a CLI utility for filtering environment map cubemaps.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	_ "image/jpeg" // JPEG decoder registration

	"github.com/shunkie/lightprobe/internal/cubemap"
	"github.com/shunkie/lightprobe/internal/filter"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "diffuse":
		cmdDiffuse(args)
	case "specular":
		cmdSpecular(args)
	case "info":
		cmdInfo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`envfilter - environment map filtering utility

A cubemap is a directory with six face images named posx, negx, posy,
negy, posz, negz (.png or .jpg).

Usage:
  envfilter <command> [options]

Commands:
  diffuse <dir> <outdir>   Convolve a diffuse irradiance map
  specular <dir> <outdir>  Prefilter a specular mip chain
  info <dir>               Show cubemap information

Options:
  -size N      Diffuse output face size (default 32)
  -samples N   Samples per texel (default 512 diffuse, 256 specular)

Examples:
  envfilter diffuse sky/ sky_irradiance/
  envfilter specular -samples 1024 sky/ sky_prefiltered/`)
}

func cmdDiffuse(args []string) {
	fs := flag.NewFlagSet("diffuse", flag.ExitOnError)
	size := fs.Int("size", 32, "Output face size")
	samples := fs.Int("samples", 512, "Samples per texel")
	fs.Parse(args)

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: envfilter diffuse [options] <dir> <outdir>")
		os.Exit(1)
	}

	src := loadCubemap(fs.Arg(0))
	out := filter.Diffuse(src, *size, *samples)
	writeCubemap(fs.Arg(1), out)
	fmt.Printf("Wrote %dx%d irradiance faces to %s\n", out.Size, out.Size, fs.Arg(1))
}

func cmdSpecular(args []string) {
	fs := flag.NewFlagSet("specular", flag.ExitOnError)
	samples := fs.Int("samples", 256, "Samples per texel")
	fs.Parse(args)

	if fs.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "Usage: envfilter specular [options] <dir> <outdir>")
		os.Exit(1)
	}

	src := loadCubemap(fs.Arg(0))
	if !cubemap.IsPowerOfTwo(src.Size) {
		fmt.Fprintf(os.Stderr, "Error: face size %d is not a power of two\n", src.Size)
		os.Exit(1)
	}

	chain := filter.Specular(src, *samples)
	for level, c := range chain.Levels {
		dir := filepath.Join(fs.Arg(1), fmt.Sprintf("mip%d", level))
		writeCubemap(dir, c)
	}
	fmt.Printf("Wrote %d mip levels to %s\n", len(chain.Levels), fs.Arg(1))
}

func cmdInfo(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Usage: envfilter info <dir>")
		os.Exit(1)
	}

	src := loadCubemap(args[0])
	fmt.Printf("Face size:    %dx%d\n", src.Size, src.Size)
	fmt.Printf("Power of two: %v\n", cubemap.IsPowerOfTwo(src.Size))
	fmt.Printf("Mip levels:   %d\n", cubemap.MipCount(src.Size))

	var sum cubemap.Color
	for face := 0; face < cubemap.FaceCount; face++ {
		for _, texel := range src.Faces[face] {
			sum = sum.Add(texel)
		}
	}
	n := float32(cubemap.FaceCount * src.Size * src.Size)
	fmt.Printf("Mean color:   %.4f %.4f %.4f (linear)\n", sum.R/n, sum.G/n, sum.B/n)
}

func loadCubemap(dir string) *cubemap.Cubemap {
	var imgs [cubemap.FaceCount]image.Image
	for face, name := range cubemap.FaceNames {
		img, err := loadFace(dir, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		imgs[face] = img
	}

	c, err := cubemap.FromFaceImages(imgs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return c
}

func loadFace(dir, name string) (image.Image, error) {
	for _, ext := range []string{".png", ".jpg", ".jpeg"} {
		path := filepath.Join(dir, name+ext)
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return img, nil
	}
	return nil, fmt.Errorf("face %s not found in %s", name, dir)
}

func writeCubemap(dir string, c *cubemap.Cubemap) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for face, name := range cubemap.FaceNames {
		path := filepath.Join(dir, name+".png")
		f, err := os.Create(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := png.Encode(f, c.FaceImage(face)); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Error encoding %s: %v\n", path, err)
			os.Exit(1)
		}
		f.Close()
	}
}
