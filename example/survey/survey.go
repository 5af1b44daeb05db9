/*
survey runs multi-species survey identification over a directory of images
and saves the per tile predictions as JSON for the mask building step.

With -mock it generates deterministic synthetic predictions from the species
catalog instead of calling the API, so the rest of the pipeline can be
exercised without survey quota.
*/
package main

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/florascan/tilemask"
	"github.com/florascan/tilemask/survey"
)

func main() {

	imagesDir := flag.String("i", "images", "Directory of source images")
	catalogFile := flag.String("catalog", "output/species/species_list.csv", "Species catalog CSV")
	outFile := flag.String("o", "output/predictions/predictions.json", "Output predictions JSON")
	mock := flag.Bool("mock", false, "Generate mock predictions instead of calling the API")
	envFile := flag.String("env", ".env", "Env file holding PLANTNET_API_KEY")
	baseURL := flag.String("base", survey.DefaultBaseURL, "Pl@ntNet API base URL")
	project := flag.String("project", "k-world-flora", "Pl@ntNet microproject slug")
	tileSize := flag.Int("tilesize", 518, "Survey tile size in pixels")
	tileStride := flag.Int("stride", 259, "Survey tile stride in pixels")
	minScore := flag.Float64("minscore", 0.10, "Minimum prediction score")
	sleep := flag.Duration("sleep", 2*time.Second, "Pause between live API calls")

	flag.Parse()

	log := logrus.New()

	catalog, err := tilemask.LoadCatalog(*catalogFile)

	if err != nil {
		log.Fatalf("Error loading species catalog: %v", err)
	}

	images, err := listImages(*imagesDir)

	if err != nil {
		log.Fatalf("Error listing images: %v", err)
	}

	if len(images) == 0 {
		log.Fatalf("No images found in %s", *imagesDir)
	}

	log.Infof("Found %d image(s) in %s", len(images), *imagesDir)

	params := survey.DefaultSurveyParams()
	params.TileSize = *tileSize
	params.TileStride = *tileStride
	params.MinScore = float32(*minScore)

	var client *survey.Client

	if !*mock {
		if err := godotenv.Load(*envFile); err != nil {
			log.WithError(err).Warnf("No env file loaded from %s", *envFile)
		}

		apiKey := os.Getenv("PLANTNET_API_KEY")

		if apiKey == "" {
			log.Fatal("PLANTNET_API_KEY is not set, add it to the .env file or use -mock")
		}

		client = survey.NewClient(survey.Config{
			BaseURL: *baseURL,
			APIKey:  apiKey,
			Project: *project,
			Retries: 2,
		}, log)
	}

	mocker := survey.NewMock(catalog)
	mocker.Grid = survey.Grid{TileSize: *tileSize, Stride: *tileStride}
	mocker.MinScore = float32(*minScore)

	var batch []survey.ImagePredictions

	for i, imgPath := range images {
		name := filepath.Base(imgPath)
		log.Infof("[%d/%d] %s", i+1, len(images), name)

		img := gocv.IMRead(imgPath, gocv.IMReadColor)

		if img.Empty() {
			log.Warnf("Skipping %s, could not read image", name)
			continue
		}

		width, height := img.Cols(), img.Rows()
		img.Close()

		var preds *survey.ImagePredictions

		if *mock {
			preds, err = mocker.Predict(name, width, height)
		} else {
			if cost, cerr := client.EstimateSurveyCost(width, height, params); cerr != nil {
				log.WithError(cerr).Warn("Cost estimation failed")
			} else {
				log.Infof("  Estimated cost: %.1f credits", cost)
			}

			preds, err = client.SurveyTiles(imgPath, name, width, height, params)
		}

		if err != nil {
			if errors.Is(err, survey.ErrQuotaExceeded) {
				log.Fatal("API quota exceeded, stopping")
			}

			log.WithError(err).Warnf("Skipping %s", name)
			continue
		}

		log.Infof("  Tiles: %d, matching: %d, predictions: %d",
			preds.NbSubQueries, preds.NbMatchingSubQueries, len(preds.Tiles))

		batch = append(batch, *preds)

		if !*mock && i < len(images)-1 {
			// be polite to the API, survey calls are heavy
			time.Sleep(*sleep)
		}
	}

	if err := os.MkdirAll(filepath.Dir(*outFile), 0755); err != nil {
		log.Fatalf("Error creating output directory: %v", err)
	}

	if err := survey.SavePredictions(*outFile, batch); err != nil {
		log.Fatalf("Error saving predictions: %v", err)
	}

	log.Infof("Predictions for %d/%d image(s) saved to %s", len(batch), len(images), *outFile)
}

// listImages returns the image files in dir, sorted by name
func listImages(dir string) ([]string, error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, err
	}

	var images []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(images)
	return images, nil
}
