// Package export reshapes resolved rasters and tile predictions into the
// flat file artifacts the labeling platform imports: NDJSON annotation
// records, species and legend CSV files, and the mask summary JSON.
package export

import (
	"image"
	"sort"

	clipper "github.com/ctessum/go.clipper"
	"github.com/pkg/errors"

	"github.com/florascan/tilemask/resolve"
)

// Polygon is one closed ring of pixel coordinates
type Polygon []image.Point

// Bounds returns the bounding box of the ring
func (p Polygon) Bounds() image.Rectangle {

	if len(p) == 0 {
		return image.Rectangle{}
	}

	r := image.Rectangle{Min: p[0], Max: p[0]}

	for _, pt := range p[1:] {
		if pt.X < r.Min.X {
			r.Min.X = pt.X
		}
		if pt.Y < r.Min.Y {
			r.Min.Y = pt.Y
		}
		if pt.X > r.Max.X {
			r.Max.X = pt.X
		}
		if pt.Y > r.Max.Y {
			r.Max.Y = pt.Y
		}
	}

	return r
}

// SpeciesPolygons unions the tile rectangles one species claimed into a set
// of closed polygon rings.  Adjacent and overlapping tiles merge into a
// single ring, so a species spread over a block of tiles exports as one
// object instead of dozens of unit rectangles.
func SpeciesPolygons(preds []resolve.TilePrediction, speciesID string) ([]Polygon, error) {

	var paths clipper.Paths

	for _, p := range preds {
		if p.SpeciesID != speciesID {
			continue
		}

		t := p.Tile
		paths = append(paths, clipper.Path{
			&clipper.IntPoint{X: clipper.CInt(t.Left), Y: clipper.CInt(t.Top)},
			&clipper.IntPoint{X: clipper.CInt(t.Right), Y: clipper.CInt(t.Top)},
			&clipper.IntPoint{X: clipper.CInt(t.Right), Y: clipper.CInt(t.Bottom)},
			&clipper.IntPoint{X: clipper.CInt(t.Left), Y: clipper.CInt(t.Bottom)},
		})
	}

	if len(paths) == 0 {
		return nil, nil
	}

	c := clipper.NewClipper(clipper.IoNone)
	c.AddPaths(paths, clipper.PtSubject, true)

	solution, ok := c.Execute1(clipper.CtUnion, clipper.PftNonZero, clipper.PftNonZero)

	if !ok {
		return nil, errors.Errorf("polygon union failed for species %s", speciesID)
	}

	out := make([]Polygon, 0, len(solution))

	for _, path := range solution {
		ring := make(Polygon, 0, len(path))

		for _, pt := range path {
			ring = append(ring, image.Point{X: int(pt.X), Y: int(pt.Y)})
		}

		out = append(out, ring)
	}

	// clipper output order is not specified, sort rings for stable exports
	sort.Slice(out, func(i, j int) bool {
		bi, bj := out[i].Bounds(), out[j].Bounds()

		if bi.Min.Y != bj.Min.Y {
			return bi.Min.Y < bj.Min.Y
		}

		return bi.Min.X < bj.Min.X
	})

	return out, nil
}
