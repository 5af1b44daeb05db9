package export

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florascan/tilemask/resolve"
)

func TestSpeciesPolygonsMergesAdjacentTiles(t *testing.T) {

	preds := []resolve.TilePrediction{
		{Tile: resolve.Tile{Left: 0, Top: 0, Right: 100, Bottom: 100}, SpeciesID: "quercus-robur", Confidence: 0.8},
		{Tile: resolve.Tile{Left: 100, Top: 0, Right: 200, Bottom: 100}, SpeciesID: "quercus-robur", Confidence: 0.6},
		{Tile: resolve.Tile{Left: 500, Top: 500, Right: 600, Bottom: 600}, SpeciesID: "bellis-perennis", Confidence: 0.9},
	}

	polys, err := SpeciesPolygons(preds, "quercus-robur")
	require.NoError(t, err)

	// two edge sharing tiles union into a single ring
	require.Len(t, polys, 1)
	assert.Equal(t, image.Rect(0, 0, 200, 100), polys[0].Bounds())
}

func TestSpeciesPolygonsSeparateRegions(t *testing.T) {

	preds := []resolve.TilePrediction{
		{Tile: resolve.Tile{Left: 0, Top: 0, Right: 50, Bottom: 50}, SpeciesID: "quercus-robur", Confidence: 0.8},
		{Tile: resolve.Tile{Left: 100, Top: 100, Right: 150, Bottom: 150}, SpeciesID: "quercus-robur", Confidence: 0.7},
	}

	polys, err := SpeciesPolygons(preds, "quercus-robur")
	require.NoError(t, err)

	// disjoint tiles stay as two rings, sorted top to bottom
	require.Len(t, polys, 2)
	assert.Equal(t, image.Rect(0, 0, 50, 50), polys[0].Bounds())
	assert.Equal(t, image.Rect(100, 100, 150, 150), polys[1].Bounds())
}

func TestSpeciesPolygonsNoTiles(t *testing.T) {

	preds := []resolve.TilePrediction{
		{Tile: resolve.Tile{Left: 0, Top: 0, Right: 50, Bottom: 50}, SpeciesID: "bellis-perennis", Confidence: 0.8},
	}

	polys, err := SpeciesPolygons(preds, "quercus-robur")
	require.NoError(t, err)
	assert.Empty(t, polys)
}

func TestSpeciesPolygonsOverlappingTiles(t *testing.T) {

	preds := []resolve.TilePrediction{
		{Tile: resolve.Tile{Left: 0, Top: 0, Right: 100, Bottom: 100}, SpeciesID: "quercus-robur", Confidence: 0.8},
		{Tile: resolve.Tile{Left: 50, Top: 50, Right: 150, Bottom: 150}, SpeciesID: "quercus-robur", Confidence: 0.6},
	}

	polys, err := SpeciesPolygons(preds, "quercus-robur")
	require.NoError(t, err)

	require.Len(t, polys, 1)
	assert.Equal(t, image.Rect(0, 0, 150, 150), polys[0].Bounds())

	// the union outline of two offset squares is an L shaped octagon
	assert.Len(t, polys[0], 8)
}
