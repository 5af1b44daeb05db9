// Package render encodes resolved composite rasters and per species masks to
// image files and draws overlay previews on the source photo.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/florascan/tilemask/resolve"
)

// Image converts the composite raster to an RGBA image using the catalog
// species colors.  Unassigned pixels are black.  The mapping is exact, one
// color per species with no blending, so the image can be decoded back to
// the species assignment.
func Image(c *resolve.Composite) *image.RGBA {

	width := c.Width()
	height := c.Height()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	catalog := c.Catalog()
	pixels := c.Pixels()

	// precompute the label to color table so the pixel loop is a lookup
	colors := make([]color.RGBA, catalog.Len()+1)
	colors[0] = color.RGBA{A: 255}

	for i := 0; i < catalog.Len(); i++ {
		colors[i+1] = catalog.ColorAt(i)
	}

	for y := 0; y < height; y++ {
		row := y * width

		for x := 0; x < width; x++ {
			clr := colors[pixels[row+x]]
			pos := img.PixOffset(x, y)

			img.Pix[pos+0] = clr.R
			img.Pix[pos+1] = clr.G
			img.Pix[pos+2] = clr.B
			img.Pix[pos+3] = clr.A
		}
	}

	return img
}

// MaskImage converts a per species binary mask to a white on black image
func MaskImage(c *resolve.Composite, speciesID string) (*image.Gray, error) {

	mask, err := c.BinaryMask(speciesID)

	if err != nil {
		return nil, err
	}

	img := image.NewGray(image.Rect(0, 0, c.Width(), c.Height()))

	for i, v := range mask {
		if v {
			img.Pix[i] = 255
		}
	}

	return img, nil
}

// WritePNG writes the composite raster to a PNG file.  PNG is lossless, so
// the pixel to species correspondence survives the round trip.
func WritePNG(file string, c *resolve.Composite) error {
	return writePNG(file, Image(c))
}

// WriteMaskPNG writes the binary mask of the given species to a PNG file
func WriteMaskPNG(file string, c *resolve.Composite, speciesID string) error {

	img, err := MaskImage(c, speciesID)

	if err != nil {
		return err
	}

	return writePNG(file, img)
}

// WriteImagePNG writes an arbitrary image to a PNG file.  Used for preview
// and other derived images that share the lossless encoding.
func WriteImagePNG(file string, img image.Image) error {
	return writePNG(file, img)
}

func writePNG(file string, img image.Image) error {

	f, err := os.Create(file)

	if err != nil {
		return fmt.Errorf("error creating %s: %w", file, err)
	}

	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("error encoding %s: %w", file, err)
	}

	return nil
}
