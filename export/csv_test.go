package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/florascan/tilemask"
)

func TestWriteSpeciesCSVRoundTrip(t *testing.T) {

	species := []tilemask.Species{
		{ID: "bellis-perennis", ScientificName: "Bellis perennis", Family: "Asteraceae", Genus: "Bellis", GBIFID: "3117424"},
		{ID: "quercus-robur", ScientificName: "Quercus robur", Family: "Fagaceae", Genus: "Quercus", GBIFID: "2878688"},
	}

	file := filepath.Join(t.TempDir(), "species_list.csv")
	require.NoError(t, WriteSpeciesCSV(file, species))

	// the written file is the catalog input format
	cat, err := tilemask.LoadCatalog(file)
	require.NoError(t, err)

	require.Equal(t, 2, cat.Len())
	assert.Equal(t, species[0], cat.At(0))
	assert.Equal(t, species[1], cat.At(1))
}

func TestWriteLegendCSV(t *testing.T) {

	_, _, c := testComposite(t)

	file := filepath.Join(t.TempDir(), "legend.csv")
	require.NoError(t, WriteLegendCSV(file, c.Legend()))

	f, err := os.Open(file)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	// header plus one row per species
	require.Len(t, records, 3)
	assert.Equal(t, []string{"species_id", "scientific_name", "color_hex", "r", "g", "b"}, records[0])
	assert.Equal(t, "quercus-robur", records[1][0])
	assert.Equal(t, "Quercus robur", records[1][1])
	assert.Regexp(t, `^#[0-9A-F]{6}$`, records[1][2])
}

func TestMaskSummaryRoundTrip(t *testing.T) {

	_, _, c := testComposite(t)

	summary := MaskSummary{
		"img_001.jpg": BuildImageMaskSummary(c, "mask_images/img_001.jpg/composite.png"),
	}

	entry := summary["img_001.jpg"]
	require.Len(t, entry.Species, 2)
	assert.Equal(t, 200, entry.ImageWidth)
	assert.Equal(t, "quercus-robur", entry.Species[0].SpeciesID)
	assert.Equal(t, 2, entry.Species[0].NumTiles)
	assert.InDelta(t, 0.5, entry.Species[0].Coverage, 1e-9)

	file := filepath.Join(t.TempDir(), "mask_summary.json")
	require.NoError(t, WriteMaskSummary(file, summary))

	loaded, err := LoadMaskSummary(file)
	require.NoError(t, err)
	assert.Equal(t, summary, loaded)
}
