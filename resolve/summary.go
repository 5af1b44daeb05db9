package resolve

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// SpeciesSummary aggregates the resolved raster for one species
type SpeciesSummary struct {
	SpeciesID      string
	ScientificName string
	GBIFID         string
	// Tiles is the number of predictions that referenced the species
	Tiles int
	// Pixels is the number of raster pixels the species won
	Pixels int
	// Coverage is Pixels as a fraction of the whole raster
	Coverage float64
	// MaxConfidence and MeanConfidence aggregate the tile scores
	MaxConfidence  float64
	MeanConfidence float64
}

// Summary returns per species aggregates for the raster, in catalog order.
// Species whose every tile was overpainted by higher confidence claims still
// appear, with a zero pixel count.
func (c *Composite) Summary() []SpeciesSummary {

	counts := make(map[int]int)

	for _, v := range c.pixels {
		if v != 0 {
			counts[int(v-1)]++
		}
	}

	total := float64(c.width * c.height)
	var out []SpeciesSummary

	for _, i := range c.presentIndices() {
		sp := c.catalog.At(i)
		scores := c.scores[i]

		out = append(out, SpeciesSummary{
			SpeciesID:      sp.ID,
			ScientificName: sp.ScientificName,
			GBIFID:         sp.GBIFID,
			Tiles:          c.tiles[i],
			Pixels:         counts[i],
			Coverage:       float64(counts[i]) / total,
			MaxConfidence:  floats.Max(scores),
			MeanConfidence: stat.Mean(scores, nil),
		})
	}

	return out
}
