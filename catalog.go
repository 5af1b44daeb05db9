package tilemask

import (
	"encoding/csv"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"strings"
)

// Species is a single entry in the reference species catalog.
type Species struct {
	// ID is the stable identifier derived from the scientific name,
	// eg "quercus-robur".  All pipeline stages key on this value.
	ID string
	// ScientificName is the binomial name without author, eg "Quercus robur"
	ScientificName string
	// Family and Genus are the higher taxonomic ranks
	Family string
	Genus  string
	// GBIFID is the GBIF backbone taxon ID
	GBIFID string
}

// Catalog is the reference list of species a survey project can return.
// It is loaded once at process start and is read-only afterwards, so it can
// be shared by reference between parallel resolution workers without
// synchronisation.
type Catalog struct {
	species []Species
	index   map[string]int
}

// NewCatalog builds a catalog from the given species list.  The order of
// the list defines the catalog index of each species, which in turn fixes
// its display color, so callers must provide the list in a stable order.
func NewCatalog(species []Species) (*Catalog, error) {

	c := &Catalog{
		species: make([]Species, len(species)),
		index:   make(map[string]int, len(species)),
	}

	copy(c.species, species)

	for i, sp := range c.species {
		if sp.ID == "" {
			return nil, fmt.Errorf("species at position %d has empty ID", i)
		}

		if _, ok := c.index[sp.ID]; ok {
			return nil, fmt.Errorf("duplicate species ID %q", sp.ID)
		}

		c.index[sp.ID] = i
	}

	return c, nil
}

// LoadCatalog reads the species catalog from the given CSV file.  The file
// must have a header row followed by records of the form
// species_id,scientific_name,family,genus,gbif_id.
func LoadCatalog(file string) (*Catalog, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening catalog file: %w", err)
	}

	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5

	// skip header
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("error reading catalog header: %w", err)
	}

	var species []Species

	for {
		rec, err := r.Read()

		if err == io.EOF {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("error reading catalog record: %w", err)
		}

		species = append(species, Species{
			ID:             strings.TrimSpace(rec[0]),
			ScientificName: strings.TrimSpace(rec[1]),
			Family:         strings.TrimSpace(rec[2]),
			Genus:          strings.TrimSpace(rec[3]),
			GBIFID:         strings.TrimSpace(rec[4]),
		})
	}

	return NewCatalog(species)
}

// Len returns the number of species in the catalog
func (c *Catalog) Len() int {
	return len(c.species)
}

// Index returns the catalog position of the given species ID
func (c *Catalog) Index(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// At returns the species at the given catalog position
func (c *Catalog) At(i int) Species {
	return c.species[i]
}

// Species returns a copy of the full species list in catalog order
func (c *Catalog) Species() []Species {
	out := make([]Species, len(c.species))
	copy(out, c.species)
	return out
}

// Color returns the display color of the given species ID.  The second
// return value is false when the species is not in the catalog.
func (c *Catalog) Color(id string) (color.RGBA, bool) {

	i, ok := c.index[id]

	if !ok {
		return color.RGBA{}, false
	}

	return c.ColorAt(i), true
}

// golden ratio conjugate, used to step the hue wheel so neighbouring
// catalog entries get visually distant colors
const hueStep = 0.618033988749895

// ColorAt returns the display color for the given catalog position.  The
// color is a pure function of the position so the same species maps to the
// same color across images, runs and parallel workers.  Black is reserved
// for unassigned pixels and is never produced.
func (c *Catalog) ColorAt(i int) color.RGBA {
	h := math.Mod(float64(i)*hueStep, 1.0)
	return hsvToRGB(h, 0.82, 0.94)
}

// hsvToRGB converts hue/saturation/value in [0,1] to an opaque RGBA color
func hsvToRGB(h, s, v float64) color.RGBA {

	sector := int(h*6) % 6
	f := h*6 - math.Floor(h*6)

	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64

	switch sector {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return color.RGBA{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
		A: 255,
	}
}

// SpeciesKey derives the stable catalog identifier from a scientific name,
// eg "Quercus robur" becomes "quercus-robur".
func SpeciesKey(scientificName string) string {
	key := strings.ToLower(strings.TrimSpace(scientificName))
	return strings.Join(strings.Fields(key), "-")
}
