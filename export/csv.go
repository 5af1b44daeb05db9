package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/florascan/tilemask"
	"github.com/florascan/tilemask/resolve"
)

// WriteSpeciesCSV writes the species catalog in the format LoadCatalog
// reads back
func WriteSpeciesCSV(file string, species []tilemask.Species) error {

	f, err := os.Create(file)

	if err != nil {
		return errors.Wrapf(err, "creating %s", file)
	}

	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"species_id", "scientific_name", "family", "genus", "gbif_id"}); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for _, sp := range species {
		if err := w.Write([]string{sp.ID, sp.ScientificName, sp.Family, sp.Genus, sp.GBIFID}); err != nil {
			return errors.Wrapf(err, "writing species %s", sp.ID)
		}
	}

	w.Flush()
	return w.Error()
}

// WriteLegendCSV writes the human readable species to color mapping of one
// resolved image
func WriteLegendCSV(file string, legend []resolve.LegendEntry) error {

	f, err := os.Create(file)

	if err != nil {
		return errors.Wrapf(err, "creating %s", file)
	}

	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"species_id", "scientific_name", "color_hex", "r", "g", "b"}); err != nil {
		return errors.Wrap(err, "writing header")
	}

	for _, entry := range legend {
		clr := entry.Color

		rec := []string{
			entry.SpeciesID,
			entry.ScientificName,
			fmt.Sprintf("#%02X%02X%02X", clr.R, clr.G, clr.B),
			fmt.Sprintf("%d", clr.R),
			fmt.Sprintf("%d", clr.G),
			fmt.Sprintf("%d", clr.B),
		}

		if err := w.Write(rec); err != nil {
			return errors.Wrapf(err, "writing legend entry %s", entry.SpeciesID)
		}
	}

	w.Flush()
	return w.Error()
}
