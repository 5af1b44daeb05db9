package export

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/florascan/tilemask/resolve"
)

// SpeciesMaskInfo describes one species entry of an image mask summary
type SpeciesMaskInfo struct {
	SpeciesID      string   `json:"species_id"`
	ScientificName string   `json:"scientific_name"`
	GBIFID         string   `json:"gbif_id"`
	ColorRGB       [3]uint8 `json:"color_rgb"`
	MaxConfidence  float64  `json:"max_confidence"`
	NumTiles       int      `json:"num_tiles"`
	Coverage       float64  `json:"coverage"`
}

// ImageMaskSummary is the downstream import contract for one composite mask
type ImageMaskSummary struct {
	ImageWidth        int               `json:"image_width"`
	ImageHeight       int               `json:"image_height"`
	CompositeMaskPath string            `json:"composite_mask_path"`
	Species           []SpeciesMaskInfo `json:"species"`
}

// MaskSummary maps source image name to its mask summary
type MaskSummary map[string]ImageMaskSummary

// BuildImageMaskSummary assembles the summary entry for one resolved image
func BuildImageMaskSummary(c *resolve.Composite, compositePath string) ImageMaskSummary {

	legend := c.Legend()
	colorByID := make(map[string][3]uint8, len(legend))

	for _, entry := range legend {
		colorByID[entry.SpeciesID] = [3]uint8{entry.Color.R, entry.Color.G, entry.Color.B}
	}

	out := ImageMaskSummary{
		ImageWidth:        c.Width(),
		ImageHeight:       c.Height(),
		CompositeMaskPath: compositePath,
	}

	for _, sum := range c.Summary() {
		out.Species = append(out.Species, SpeciesMaskInfo{
			SpeciesID:      sum.SpeciesID,
			ScientificName: sum.ScientificName,
			GBIFID:         sum.GBIFID,
			ColorRGB:       colorByID[sum.SpeciesID],
			MaxConfidence:  sum.MaxConfidence,
			NumTiles:       sum.Tiles,
			Coverage:       sum.Coverage,
		})
	}

	return out
}

// WriteMaskSummary writes the batch mask summary JSON
func WriteMaskSummary(file string, summary MaskSummary) error {

	data, err := json.MarshalIndent(summary, "", "  ")

	if err != nil {
		return errors.Wrap(err, "encoding mask summary")
	}

	if err := os.WriteFile(file, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", file)
	}

	return nil
}

// LoadMaskSummary reads a mask summary written by WriteMaskSummary
func LoadMaskSummary(file string) (MaskSummary, error) {

	data, err := os.ReadFile(file)

	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", file)
	}

	var summary MaskSummary

	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", file)
	}

	return summary, nil
}
