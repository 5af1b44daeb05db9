package resolve

import (
	"math"
	"testing"
)

func TestSummary(t *testing.T) {

	r := NewResolver(testCatalog(t))

	preds := []TilePrediction{
		{Tile: Tile{0, 0, 50, 100}, SpeciesID: "quercus-robur", Confidence: 0.6},
		{Tile: Tile{0, 0, 50, 100}, SpeciesID: "quercus-robur", Confidence: 0.8},
		{Tile: Tile{50, 0, 100, 100}, SpeciesID: "bellis-perennis", Confidence: 0.4},
	}

	c, err := r.Resolve(100, 100, preds)
	if err != nil {
		t.Fatal(err)
	}

	sum := c.Summary()

	if len(sum) != 2 {
		t.Fatalf("Expected 2 summary entries, got %d", len(sum))
	}

	// catalog order: quercus-robur first
	oak := sum[0]

	if oak.SpeciesID != "quercus-robur" {
		t.Fatalf("Expected quercus-robur first, got %s", oak.SpeciesID)
	}

	if oak.Tiles != 2 || oak.Pixels != 5000 {
		t.Errorf("Expected 2 tiles / 5000 px for oak, got %d / %d", oak.Tiles, oak.Pixels)
	}

	if math.Abs(oak.Coverage-0.5) > 1e-9 {
		t.Errorf("Expected oak coverage 0.5, got %f", oak.Coverage)
	}

	if math.Abs(oak.MaxConfidence-0.8) > 1e-6 {
		t.Errorf("Expected oak max confidence 0.8, got %f", oak.MaxConfidence)
	}

	if math.Abs(oak.MeanConfidence-0.7) > 1e-6 {
		t.Errorf("Expected oak mean confidence 0.7, got %f", oak.MeanConfidence)
	}

	daisy := sum[1]

	if daisy.SpeciesID != "bellis-perennis" || daisy.Pixels != 5000 || daisy.Tiles != 1 {
		t.Errorf("Unexpected daisy summary: %+v", daisy)
	}
}

func TestSummaryOverpaintedSpeciesKept(t *testing.T) {

	r := NewResolver(testCatalog(t))

	// the low confidence claim loses every pixel but stays in the summary
	preds := []TilePrediction{
		{Tile: Tile{0, 0, 10, 10}, SpeciesID: "trifolium-repens", Confidence: 0.2},
		{Tile: Tile{0, 0, 10, 10}, SpeciesID: "quercus-robur", Confidence: 0.9},
	}

	c, err := r.Resolve(10, 10, preds)
	if err != nil {
		t.Fatal(err)
	}

	sum := c.Summary()

	if len(sum) != 2 {
		t.Fatalf("Expected 2 summary entries, got %d", len(sum))
	}

	clover := sum[1]

	if clover.SpeciesID != "trifolium-repens" {
		t.Fatalf("Expected trifolium-repens second, got %s", clover.SpeciesID)
	}

	if clover.Pixels != 0 || clover.Tiles != 1 {
		t.Errorf("Expected 0 px / 1 tile for overpainted species, got %d / %d",
			clover.Pixels, clover.Tiles)
	}
}
