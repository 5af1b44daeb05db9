// Package resolve turns per tile species predictions for a source image into
// a composite label raster where every pixel holds the winning species.
package resolve

import (
	"errors"
	"fmt"
	"sort"

	"github.com/florascan/tilemask"
)

var (
	// ErrOutOfBounds is returned when a tile lies outside the image bounds.
	// Out of bounds geometry is never silently clipped.
	ErrOutOfBounds = errors.New("tile out of image bounds")

	// ErrUnknownSpecies is returned when a prediction references a species
	// that is not in the catalog.  Resolving it anyway would break color
	// determinism and downstream identifier matching.
	ErrUnknownSpecies = errors.New("species not in catalog")
)

// Tile is a rectangular region of the source image in pixel coordinates.
// Left/Top are inclusive, Right/Bottom exclusive.
type Tile struct {
	Left   int
	Top    int
	Right  int
	Bottom int
}

// Width returns the tile width in pixels
func (t Tile) Width() int {
	return t.Right - t.Left
}

// Height returns the tile height in pixels
func (t Tile) Height() int {
	return t.Bottom - t.Top
}

// Area returns the tile area in pixels
func (t Tile) Area() int {
	return t.Width() * t.Height()
}

// TilePrediction is the best species guess for one tile of a source image
type TilePrediction struct {
	// Tile is the region of the source image the prediction covers
	Tile Tile
	// SpeciesID is the catalog identifier of the predicted species
	SpeciesID string
	// Confidence is the prediction score from 0.0 to 1.0
	Confidence float32
}

// Resolver builds composite label rasters from tile predictions.  It holds a
// reference to the read-only species catalog and is safe for concurrent use,
// so a batch of images can be resolved by parallel workers sharing one
// Resolver.
type Resolver struct {
	catalog *tilemask.Catalog
}

// NewResolver returns a Resolver using the given species catalog for
// species validation and color assignment
func NewResolver(catalog *tilemask.Catalog) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve paints the given tile predictions into a composite raster of the
// given image dimensions.  Where tiles overlap, the pixel goes to the tile
// with the strictly highest confidence.  Equal confidences resolve to the
// prediction earliest in the input order, so the outcome is independent of
// any input permutation that keeps equal confidence predictions in their
// relative order.
//
// An empty prediction list is not an error and produces a fully unassigned
// raster.  A tile outside the image bounds or a species missing from the
// catalog fails the whole image without returning a partial raster.
func (r *Resolver) Resolve(width, height int, preds []TilePrediction) (*Composite, error) {

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions %dx%d", width, height)
	}

	// validate all predictions before painting anything
	for i, p := range preds {
		t := p.Tile

		if t.Left < 0 || t.Top < 0 || t.Right > width || t.Bottom > height ||
			t.Right <= t.Left || t.Bottom <= t.Top {
			return nil, fmt.Errorf("prediction %d tile (%d,%d,%d,%d) in %dx%d image: %w",
				i, t.Left, t.Top, t.Right, t.Bottom, width, height, ErrOutOfBounds)
		}

		if _, ok := r.catalog.Index(p.SpeciesID); !ok {
			return nil, fmt.Errorf("prediction %d species %q: %w",
				i, p.SpeciesID, ErrUnknownSpecies)
		}
	}

	c := &Composite{
		width:   width,
		height:  height,
		pixels:  make([]int32, width*height),
		catalog: r.catalog,
		tiles:   make(map[int]int),
		scores:  make(map[int][]float64),
	}

	// sort prediction indices by descending confidence.  the stable sort
	// keeps equal confidences in input order, so painting first writer wins
	// gives each pixel to the highest confidence tile covering it, with
	// ties going to the lowest original index.
	order := make([]int, len(preds))

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(i, j int) bool {
		return preds[order[i]].Confidence > preds[order[j]].Confidence
	})

	for _, n := range order {
		p := preds[n]
		catIdx, _ := r.catalog.Index(p.SpeciesID)
		label := int32(catIdx + 1)

		for y := p.Tile.Top; y < p.Tile.Bottom; y++ {
			row := y * width

			for x := p.Tile.Left; x < p.Tile.Right; x++ {
				if c.pixels[row+x] == 0 {
					c.pixels[row+x] = label
				}
			}
		}

		c.tiles[catIdx]++
		c.scores[catIdx] = append(c.scores[catIdx], float64(p.Confidence))
	}

	return c, nil
}
