package export

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florascan/tilemask"
	"github.com/florascan/tilemask/resolve"
)

func testComposite(t *testing.T) (*tilemask.Catalog, []resolve.TilePrediction, *resolve.Composite) {
	t.Helper()

	cat, err := tilemask.NewCatalog([]tilemask.Species{
		{ID: "quercus-robur", ScientificName: "Quercus robur", GBIFID: "2878688"},
		{ID: "bellis-perennis", ScientificName: "Bellis perennis", GBIFID: "3117424"},
	})
	require.NoError(t, err)

	preds := []resolve.TilePrediction{
		{Tile: resolve.Tile{Left: 0, Top: 0, Right: 100, Bottom: 100}, SpeciesID: "quercus-robur", Confidence: 0.9},
		{Tile: resolve.Tile{Left: 100, Top: 0, Right: 200, Bottom: 100}, SpeciesID: "quercus-robur", Confidence: 0.5},
		{Tile: resolve.Tile{Left: 0, Top: 100, Right: 100, Bottom: 200}, SpeciesID: "bellis-perennis", Confidence: 0.7},
	}

	c, err := resolve.NewResolver(cat).Resolve(200, 200, preds)
	require.NoError(t, err)

	return cat, preds, c
}

func TestClassificationRows(t *testing.T) {

	cat, _, c := testComposite(t)
	e := NewExporter(cat)

	rows := e.ClassificationRows("img_001.jpg", c.Summary())
	require.Len(t, rows, 2)

	oak := rows[0]
	assert.NotEmpty(t, oak.UUID)
	assert.Equal(t, "img_001.jpg", oak.DataRow.GlobalKey)
	assert.Equal(t, "species", oak.Name)
	require.NotNil(t, oak.Answer)
	assert.Equal(t, "Quercus robur", oak.Answer.Name)
	assert.Equal(t, "2878688", oak.Answer.Value)
	assert.InDelta(t, 0.9, oak.Confidence, 1e-6)

	assert.Nil(t, oak.BBox)
	assert.Nil(t, oak.Mask)
	assert.Empty(t, oak.Polygon)

	// row ids must be unique
	assert.NotEqual(t, rows[0].UUID, rows[1].UUID)
}

func TestObjectRows(t *testing.T) {

	cat, preds, c := testComposite(t)
	e := NewExporter(cat)

	rows, err := e.ObjectRows("img_001.jpg", preds, c.Summary())
	require.NoError(t, err)

	// oak tiles merge into one region, daisy has its own
	require.Len(t, rows, 2)

	oak := rows[0]
	assert.Equal(t, "Plant", oak.Name)
	require.NotNil(t, oak.BBox)
	assert.Equal(t, BBox{Top: 0, Left: 0, Height: 100, Width: 200}, *oak.BBox)
	assert.NotEmpty(t, oak.Polygon)
	require.Len(t, oak.Classifications, 1)
	assert.Equal(t, "species", oak.Classifications[0].Name)
	assert.Equal(t, "Quercus robur", oak.Classifications[0].Answer.Name)

	daisy := rows[1]
	assert.Equal(t, BBox{Top: 100, Left: 0, Height: 100, Width: 100}, *daisy.BBox)
}

func TestMaskRows(t *testing.T) {

	cat, _, c := testComposite(t)
	e := NewExporter(cat)

	rows := e.MaskRows("img_001.jpg", "masks/img_001/composite.png", c)
	require.Len(t, rows, 2)

	oak := rows[0]
	require.NotNil(t, oak.Mask)
	assert.Equal(t, "masks/img_001/composite.png", oak.Mask.Path)

	wantColor, ok := cat.Color("quercus-robur")
	require.True(t, ok)
	assert.Equal(t, [3]uint8{wantColor.R, wantColor.G, wantColor.B}, oak.Mask.ColorRGB)

	require.Len(t, oak.Classifications, 1)
	assert.Equal(t, "2878688", oak.Classifications[0].Answer.Value)
}

func TestWriteNDJSON(t *testing.T) {

	cat, _, c := testComposite(t)
	e := NewExporter(cat)

	file := filepath.Join(t.TempDir(), "classifications.ndjson")
	rows := e.ClassificationRows("img_001.jpg", c.Summary())

	require.NoError(t, WriteNDJSON(file, rows))

	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()

	var decoded []AnnotationRow
	scanner := bufio.NewScanner(f)

	for scanner.Scan() {
		var row AnnotationRow
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		decoded = append(decoded, row)
	}

	require.NoError(t, scanner.Err())
	assert.Equal(t, rows, decoded)
}
