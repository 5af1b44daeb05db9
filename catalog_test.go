package tilemask

import (
	"os"
	"path/filepath"
	"testing"
)

func testSpeciesList() []Species {
	return []Species{
		{ID: "quercus-robur", ScientificName: "Quercus robur", Family: "Fagaceae", Genus: "Quercus", GBIFID: "2878688"},
		{ID: "bellis-perennis", ScientificName: "Bellis perennis", Family: "Asteraceae", Genus: "Bellis", GBIFID: "3117424"},
		{ID: "trifolium-repens", ScientificName: "Trifolium repens", Family: "Fabaceae", Genus: "Trifolium", GBIFID: "2973363"},
	}
}

func TestNewCatalog(t *testing.T) {

	cat, err := NewCatalog(testSpeciesList())
	if err != nil {
		t.Fatalf("NewCatalog returned an error: %v", err)
	}

	if cat.Len() != 3 {
		t.Errorf("Expected catalog length 3, got %d", cat.Len())
	}

	i, ok := cat.Index("bellis-perennis")
	if !ok || i != 1 {
		t.Errorf("Expected bellis-perennis at index 1, got %d (found=%v)", i, ok)
	}

	if _, ok := cat.Index("not-a-species"); ok {
		t.Error("Expected lookup of unknown species to fail")
	}
}

func TestNewCatalogDuplicateID(t *testing.T) {

	species := testSpeciesList()
	species = append(species, species[0])

	if _, err := NewCatalog(species); err == nil {
		t.Error("Expected error for duplicate species ID")
	}
}

func TestCatalogColorDeterminism(t *testing.T) {

	cat1, err := NewCatalog(testSpeciesList())
	if err != nil {
		t.Fatal(err)
	}

	// second catalog built independently from the same list
	cat2, err := NewCatalog(testSpeciesList())
	if err != nil {
		t.Fatal(err)
	}

	for _, sp := range testSpeciesList() {
		c1, ok1 := cat1.Color(sp.ID)
		c2, ok2 := cat2.Color(sp.ID)

		if !ok1 || !ok2 {
			t.Fatalf("Color lookup failed for %s", sp.ID)
		}

		if c1 != c2 {
			t.Errorf("Color for %s differs between catalog instances: %v vs %v", sp.ID, c1, c2)
		}

		// black is reserved for unassigned pixels
		if c1.R == 0 && c1.G == 0 && c1.B == 0 {
			t.Errorf("Species %s was assigned the background color", sp.ID)
		}
	}
}

func TestCatalogColorsDistinct(t *testing.T) {

	cat, err := NewCatalog(testSpeciesList())
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[[3]uint8]string)

	for i := 0; i < cat.Len(); i++ {
		clr := cat.ColorAt(i)
		key := [3]uint8{clr.R, clr.G, clr.B}

		if prev, ok := seen[key]; ok {
			t.Errorf("Species %s and %s share color %v", prev, cat.At(i).ID, clr)
		}

		seen[key] = cat.At(i).ID
	}
}

func TestLoadCatalog(t *testing.T) {

	file := filepath.Join(t.TempDir(), "species_list.csv")

	data := "species_id,scientific_name,family,genus,gbif_id\n" +
		"quercus-robur,Quercus robur,Fagaceae,Quercus,2878688\n" +
		"bellis-perennis,Bellis perennis,Asteraceae,Bellis,3117424\n"

	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadCatalog(file)
	if err != nil {
		t.Fatalf("LoadCatalog returned an error: %v", err)
	}

	if cat.Len() != 2 {
		t.Fatalf("Expected 2 species, got %d", cat.Len())
	}

	sp := cat.At(0)
	if sp.ID != "quercus-robur" || sp.ScientificName != "Quercus robur" ||
		sp.Family != "Fagaceae" || sp.Genus != "Quercus" || sp.GBIFID != "2878688" {
		t.Errorf("Unexpected first species record: %+v", sp)
	}
}

func TestSpeciesKey(t *testing.T) {

	cases := map[string]string{
		"Quercus robur":       "quercus-robur",
		"  Bellis   perennis": "bellis-perennis",
		"Poa annua L.":        "poa-annua-l.",
	}

	for in, want := range cases {
		if got := SpeciesKey(in); got != want {
			t.Errorf("SpeciesKey(%q) = %q, want %q", in, got, want)
		}
	}
}
