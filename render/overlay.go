package render

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/florascan/tilemask/resolve"
)

// Overlay alpha blends the composite species colors on top of the source
// photo.  Unassigned pixels are left untouched.
//
// It is too slow to manipulate pixel by pixel using GoCV due to slowness
// over CGO, so we copy the bytes from the source image and manipulate the
// bytes directly before copying back to a Mat.
func Overlay(img *gocv.Mat, c *resolve.Composite, alpha float32) error {

	width := img.Cols()
	height := img.Rows()

	if width != c.Width() || height != c.Height() {
		return fmt.Errorf("source image %dx%d does not match raster %dx%d",
			width, height, c.Width(), c.Height())
	}

	catalog := c.Catalog()
	pixels := c.Pixels()
	imgData := img.ToBytes()

	for j := 0; j < height; j++ {
		for k := 0; k < width; k++ {

			idx := j*width + k

			if pixels[idx] == 0 {
				continue
			}

			clr := catalog.ColorAt(int(pixels[idx] - 1))

			// calculate position in the byte slice, Mat is BGR
			pixelPos := j*width*3 + k*3

			b, g, r := imgData[pixelPos+0], imgData[pixelPos+1], imgData[pixelPos+2]

			imgData[pixelPos+0] = uint8(float32(b)*(1-alpha) + float32(clr.B)*alpha)
			imgData[pixelPos+1] = uint8(float32(g)*(1-alpha) + float32(clr.G)*alpha)
			imgData[pixelPos+2] = uint8(float32(r)*(1-alpha) + float32(clr.R)*alpha)
		}
	}

	// copy back to the original mat
	tmpImg, err := gocv.NewMatFromBytes(height, width, gocv.MatTypeCV8UC3, imgData)

	if err != nil {
		return fmt.Errorf("error creating blended Mat: %w", err)
	}

	defer tmpImg.Close()
	tmpImg.CopyTo(img)

	return nil
}

// OverlayLabels draws each species scientific name and max tile confidence
// at the centroid of the region that species won on the raster
func OverlayLabels(img *gocv.Mat, c *resolve.Composite, font Font) {

	width := c.Width()
	pixels := c.Pixels()

	// accumulate pixel centroids per label value
	type acc struct {
		sumX, sumY, count int
	}

	centroids := make(map[int32]*acc)

	for j := 0; j < c.Height(); j++ {
		for k := 0; k < width; k++ {

			v := pixels[j*width+k]

			if v == 0 {
				continue
			}

			a, ok := centroids[v]
			if !ok {
				a = &acc{}
				centroids[v] = a
			}

			a.sumX += k
			a.sumY += j
			a.count++
		}
	}

	for _, sum := range c.Summary() {

		catIdx, _ := c.Catalog().Index(sum.SpeciesID)
		a, ok := centroids[int32(catIdx+1)]

		if !ok || a.count == 0 {
			// species lost every pixel to higher confidence claims
			continue
		}

		cx := a.sumX / a.count
		cy := a.sumY / a.count

		text := fmt.Sprintf("%s %.2f", sum.ScientificName, sum.MaxConfidence)
		textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

		textPos := image.Pt(cx-textSize.X/2, cy+textSize.Y/2)

		// box the text gets written on, in the species color
		bRect := image.Rect(textPos.X-font.LeftPad,
			textPos.Y-textSize.Y-font.TopPad,
			textPos.X+textSize.X+font.RightPad,
			textPos.Y+font.BottomPad)

		clr := c.Catalog().ColorAt(catIdx)
		gocv.Rectangle(img, bRect, clr, -1)

		gocv.PutTextWithParams(img, text, textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
