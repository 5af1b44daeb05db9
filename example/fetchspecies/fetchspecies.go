/*
fetchspecies downloads the full species list of a Pl@ntNet microproject and
writes it as the species catalog CSV shared by all later pipeline steps,
plus a raw JSON dump for reference.

Run once per project, the catalog fixes the species colors for every
subsequent mask build.
*/
package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/florascan/tilemask/export"
	"github.com/florascan/tilemask/survey"
)

func main() {

	envFile := flag.String("env", ".env", "Env file holding PLANTNET_API_KEY")
	baseURL := flag.String("base", survey.DefaultBaseURL, "Pl@ntNet API base URL")
	project := flag.String("project", "k-world-flora", "Pl@ntNet microproject slug")
	pageSize := flag.Int("pagesize", 500, "Species page size")
	outDir := flag.String("o", "output/species", "Output directory")

	flag.Parse()

	log := logrus.New()

	if err := godotenv.Load(*envFile); err != nil {
		log.WithError(err).Warnf("No env file loaded from %s", *envFile)
	}

	apiKey := os.Getenv("PLANTNET_API_KEY")

	if apiKey == "" {
		log.Fatal("PLANTNET_API_KEY is not set, add it to the .env file")
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Error creating output directory: %v", err)
	}

	client := survey.NewClient(survey.Config{
		BaseURL: *baseURL,
		APIKey:  apiKey,
		Project: *project,
		Retries: 2,
	}, log)

	species, err := client.FetchSpecies(*pageSize)

	if err != nil {
		log.Fatalf("Error fetching species list: %v", err)
	}

	log.Infof("Fetched %d species from project %s", len(species), *project)

	rawPath := filepath.Join(*outDir, "species_raw.json")
	raw, err := json.MarshalIndent(species, "", "  ")

	if err != nil {
		log.Fatalf("Error encoding raw species list: %v", err)
	}

	if err := os.WriteFile(rawPath, raw, 0644); err != nil {
		log.Fatalf("Error writing %s: %v", rawPath, err)
	}

	csvPath := filepath.Join(*outDir, "species_list.csv")

	if err := export.WriteSpeciesCSV(csvPath, species); err != nil {
		log.Fatalf("Error writing species catalog: %v", err)
	}

	withGBIF := 0
	for _, sp := range species {
		if sp.GBIFID != "" {
			withGBIF++
		}
	}

	log.Infof("Species catalog saved to %s (%d of %d with GBIF id)",
		csvPath, withGBIF, len(species))
}
