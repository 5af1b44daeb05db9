package survey

import (
	"github.com/florascan/tilemask/resolve"
)

// TileRecord is one tile level species prediction in the persisted
// prediction file format
type TileRecord struct {
	Left           int     `json:"box_left"`
	Top            int     `json:"box_top"`
	Width          int     `json:"box_width"`
	Height         int     `json:"box_height"`
	SpeciesID      string  `json:"species_id"`
	ScientificName string  `json:"scientific_name"`
	GBIFID         string  `json:"gbif_id"`
	Score          float32 `json:"score"`
	Organ          string  `json:"organ,omitempty"`
}

// ImagePredictions holds all tile predictions for one source image
type ImagePredictions struct {
	Image                string       `json:"image"`
	Width                int          `json:"width"`
	Height               int          `json:"height"`
	EstimatedCost        float64      `json:"estimated_cost,omitempty"`
	NbSubQueries         int          `json:"nb_sub_queries"`
	NbMatchingSubQueries int          `json:"nb_matching_sub_queries"`
	Uncovered            float64      `json:"uncovered"`
	Tiles                []TileRecord `json:"tiles"`
}

// TilePredictions converts the persisted records to resolver input
func (p *ImagePredictions) TilePredictions() []resolve.TilePrediction {

	out := make([]resolve.TilePrediction, 0, len(p.Tiles))

	for _, t := range p.Tiles {
		out = append(out, resolve.TilePrediction{
			Tile: resolve.Tile{
				Left:   t.Left,
				Top:    t.Top,
				Right:  t.Left + t.Width,
				Bottom: t.Top + t.Height,
			},
			SpeciesID:  t.SpeciesID,
			Confidence: t.Score,
		})
	}

	return out
}

// SpeciesIDs returns the distinct species identifiers referenced by the
// predictions, in first seen order
func (p *ImagePredictions) SpeciesIDs() []string {

	seen := make(map[string]bool)
	var ids []string

	for _, t := range p.Tiles {
		if !seen[t.SpeciesID] {
			seen[t.SpeciesID] = true
			ids = append(ids, t.SpeciesID)
		}
	}

	return ids
}
