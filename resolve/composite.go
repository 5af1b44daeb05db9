package resolve

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/florascan/tilemask"
)

// Composite is the resolved label raster for one source image.  Each pixel
// holds either the background value 0 (unassigned) or the catalog index of
// the winning species plus one.  A Composite is immutable after creation.
type Composite struct {
	width   int
	height  int
	pixels  []int32
	catalog *tilemask.Catalog

	// per catalog index bookkeeping gathered while painting
	tiles  map[int]int
	scores map[int][]float64
}

// LegendEntry maps one species to its display color
type LegendEntry struct {
	SpeciesID      string
	ScientificName string
	Color          color.RGBA
}

// Width returns the raster width in pixels
func (c *Composite) Width() int {
	return c.width
}

// Height returns the raster height in pixels
func (c *Composite) Height() int {
	return c.height
}

// Catalog returns the species catalog the raster was resolved against
func (c *Composite) Catalog() *tilemask.Catalog {
	return c.catalog
}

// Pixels returns the underlying label raster in row major order.  The slice
// must not be modified.
func (c *Composite) Pixels() []int32 {
	return c.pixels
}

// SpeciesAt returns the species ID assigned to the given pixel.  The second
// return value is false for unassigned pixels.
func (c *Composite) SpeciesAt(x, y int) (string, bool) {

	v := c.pixels[y*c.width+x]

	if v == 0 {
		return "", false
	}

	return c.catalog.At(int(v - 1)).ID, true
}

// presentIndices returns the catalog indices of the predicted species in
// ascending catalog order
func (c *Composite) presentIndices() []int {

	idx := make([]int, 0, len(c.tiles))

	for i := range c.tiles {
		idx = append(idx, i)
	}

	sort.Ints(idx)
	return idx
}

// Legend returns the color legend for the species predicted on this image,
// visited in catalog order.  Colors come from the catalog's pure color
// function, so the same species gets the same color in every legend.
func (c *Composite) Legend() []LegendEntry {

	var legend []LegendEntry

	for _, i := range c.presentIndices() {
		sp := c.catalog.At(i)

		legend = append(legend, LegendEntry{
			SpeciesID:      sp.ID,
			ScientificName: sp.ScientificName,
			Color:          c.catalog.ColorAt(i),
		})
	}

	return legend
}

// BinaryMask returns a same size boolean raster in row major order, true
// where the composite assigned the given species
func (c *Composite) BinaryMask(speciesID string) ([]bool, error) {

	catIdx, ok := c.catalog.Index(speciesID)

	if !ok {
		return nil, fmt.Errorf("species %q: %w", speciesID, ErrUnknownSpecies)
	}

	label := int32(catIdx + 1)
	mask := make([]bool, len(c.pixels))

	for i, v := range c.pixels {
		if v == label {
			mask[i] = true
		}
	}

	return mask, nil
}
