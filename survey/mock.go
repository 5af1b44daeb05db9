package survey

import (
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/florascan/tilemask"
)

var mockOrgans = []string{"leaf", "bark", "flower", "fruit", "habit"}

// Mock generates synthetic survey predictions so the pipeline can be run
// without API quota.  Output is deterministic: the random source is seeded
// from the image name, so the same image always yields the same predictions.
type Mock struct {
	// Catalog supplies the species pool
	Catalog *tilemask.Catalog
	// Grid is the tile layout to predict over
	Grid Grid
	// SpeciesPerImage caps the distinct species drawn for one image.
	// A single survey photo realistically holds a handful of species,
	// not the whole catalog.
	SpeciesPerImage int
	// MatchProbability is the chance a tile gets a prediction at all
	MatchProbability float64
	// MinScore filters out low confidence predictions, mirroring the
	// min_score parameter of the live endpoint
	MinScore float32
}

// NewMock returns a Mock with the same defaults the original mock data
// generation used
func NewMock(catalog *tilemask.Catalog) *Mock {
	return &Mock{
		Catalog:          catalog,
		Grid:             Grid{TileSize: 518, Stride: 518},
		SpeciesPerImage:  8,
		MatchProbability: 0.70,
		MinScore:         0.10,
	}
}

// Predict generates tile predictions for an image of the given dimensions
func (m *Mock) Predict(imageName string, width, height int) (*ImagePredictions, error) {

	if m.Catalog.Len() == 0 {
		return nil, fmt.Errorf("mock predictor needs a non empty catalog")
	}

	h := fnv.New64a()
	h.Write([]byte(imageName))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	// draw the species subset for this image
	n := m.SpeciesPerImage
	if n > m.Catalog.Len() {
		n = m.Catalog.Len()
	}

	pool := rng.Perm(m.Catalog.Len())[:n]

	tiles := m.Grid.Tiles(width, height)

	preds := &ImagePredictions{
		Image:        imageName,
		Width:        width,
		Height:       height,
		NbSubQueries: len(tiles),
	}

	for _, tile := range tiles {
		if rng.Float64() > m.MatchProbability {
			continue
		}

		sp := m.Catalog.At(pool[rng.Intn(len(pool))])

		// skew scores toward the low end like real tile confidences
		score := float32(rng.Float64() * rng.Float64())

		if score < m.MinScore {
			continue
		}

		// a tile counts as matching only once it clears the score filter,
		// so Uncovered reflects the tiles actually emitted
		preds.NbMatchingSubQueries++

		preds.Tiles = append(preds.Tiles, TileRecord{
			Left:           tile.Left,
			Top:            tile.Top,
			Width:          tile.Width(),
			Height:         tile.Height(),
			SpeciesID:      sp.ID,
			ScientificName: sp.ScientificName,
			GBIFID:         sp.GBIFID,
			Score:          score,
			Organ:          mockOrgans[rng.Intn(len(mockOrgans))],
		})
	}

	if preds.NbSubQueries > 0 {
		preds.Uncovered = 1 - float64(preds.NbMatchingSubQueries)/float64(preds.NbSubQueries)
	}

	return preds, nil
}
