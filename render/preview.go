package render

import (
	"image"

	"golang.org/x/image/draw"
)

// Preview returns a copy of the image scaled so its longer side is at most
// maxDim pixels.  Nearest neighbour sampling keeps the species colors exact
// instead of blending them at region boundaries.
func Preview(img *image.RGBA, maxDim int) *image.RGBA {

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	longer := w
	if h > longer {
		longer = h
	}

	if longer <= maxDim {
		out := image.NewRGBA(b)
		copy(out.Pix, img.Pix)
		return out
	}

	scale := float64(maxDim) / float64(longer)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)

	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	out := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.NearestNeighbor.Scale(out, out.Bounds(), img, b, draw.Src, nil)

	return out
}
