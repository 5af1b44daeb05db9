// Package survey obtains per tile species predictions for source images,
// either from the Pl@ntNet survey API or from a deterministic mock
// generator, and persists them as JSON between pipeline steps.
package survey

import (
	"github.com/florascan/tilemask/resolve"
)

// Grid describes the tile layout the survey endpoint applies to an image.
// Stride equal to TileSize gives a non overlapping grid, a smaller stride
// makes neighbouring tiles overlap.
type Grid struct {
	TileSize int
	Stride   int
}

// positions returns the start coordinates of each tile along one axis.
// Tiles step by Stride from zero and the run continues until the axis is
// covered, so the trailing tile may extend past srcLen and must be clamped
// by the caller.
func (g Grid) positions(srcLen int) []int {

	var pos []int

	for p := 0; p < srcLen; p += g.Stride {
		pos = append(pos, p)

		// remaining pixels are covered by this tile
		if p+g.TileSize >= srcLen {
			break
		}
	}

	return pos
}

// Tiles returns the tile grid for an image of the given dimensions.  Tiles
// at the right and bottom edges are clamped to the image so every tile lies
// within bounds.
func (g Grid) Tiles(width, height int) []resolve.Tile {

	xs := g.positions(width)
	ys := g.positions(height)

	tiles := make([]resolve.Tile, 0, len(xs)*len(ys))

	for _, y := range ys {
		for _, x := range xs {
			right := x + g.TileSize
			if right > width {
				right = width
			}

			bottom := y + g.TileSize
			if bottom > height {
				bottom = height
			}

			tiles = append(tiles, resolve.Tile{
				Left:   x,
				Top:    y,
				Right:  right,
				Bottom: bottom,
			})
		}
	}

	return tiles
}
