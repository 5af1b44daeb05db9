/*
buildmask resolves saved tile predictions into one composite segmentation
mask per image, plus a color legend, optional per species binary masks, and
an optional overlay preview on the source photo.

A failure on one image logs a warning and the batch continues, so a single
bad prediction set cannot sink a whole run.
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/florascan/tilemask"
	"github.com/florascan/tilemask/export"
	"github.com/florascan/tilemask/render"
	"github.com/florascan/tilemask/resolve"
	"github.com/florascan/tilemask/survey"
)

func main() {

	predsFile := flag.String("p", "output/predictions/predictions.json", "Predictions JSON from the survey step")
	catalogFile := flag.String("catalog", "output/species/species_list.csv", "Species catalog CSV")
	outDir := flag.String("o", "output/masks", "Output directory")
	imagesDir := flag.String("i", "", "Source images directory, enables overlay rendering")
	alpha := flag.Float64("alpha", 0.5, "Overlay blend transparency")
	speciesMasks := flag.Bool("masks", false, "Also write per species binary masks")
	previewDim := flag.Int("preview", 0, "Longest side of a scaled preview PNG, 0 disables")

	flag.Parse()

	log := logrus.New()

	catalog, err := tilemask.LoadCatalog(*catalogFile)

	if err != nil {
		log.Fatalf("Error loading species catalog: %v", err)
	}

	batch, err := survey.LoadPredictions(*predsFile)

	if err != nil {
		log.Fatalf("Error loading predictions: %v", err)
	}

	log.Infof("Loaded predictions for %d image(s)", len(batch))

	resolver := resolve.NewResolver(catalog)
	summary := make(export.MaskSummary)

	for _, preds := range batch {

		imgLog := log.WithField("image", preds.Image)

		c, err := resolver.Resolve(preds.Width, preds.Height, preds.TilePredictions())

		if err != nil {
			// per image isolation, one bad image must not abort the batch
			imgLog.WithError(err).Warn("Skipping image, resolution failed")
			continue
		}

		imgDir := filepath.Join(*outDir, "mask_images", preds.Image)

		if err := os.MkdirAll(imgDir, 0755); err != nil {
			log.Fatalf("Error creating %s: %v", imgDir, err)
		}

		compositePath := filepath.Join(imgDir, "composite.png")

		if err := render.WritePNG(compositePath, c); err != nil {
			imgLog.WithError(err).Warn("Skipping image, composite write failed")
			continue
		}

		if err := export.WriteLegendCSV(filepath.Join(imgDir, "legend.csv"), c.Legend()); err != nil {
			imgLog.WithError(err).Warn("Legend write failed")
		}

		if *speciesMasks {
			for _, entry := range c.Legend() {
				maskPath := filepath.Join(imgDir, entry.SpeciesID+".png")

				if err := render.WriteMaskPNG(maskPath, c, entry.SpeciesID); err != nil {
					imgLog.WithError(err).Warnf("Mask write failed for %s", entry.SpeciesID)
				}
			}
		}

		if *previewDim > 0 {
			preview := render.Preview(render.Image(c), *previewDim)

			if err := render.WriteImagePNG(filepath.Join(imgDir, "preview.png"), preview); err != nil {
				imgLog.WithError(err).Warn("Preview write failed")
			}
		}

		if *imagesDir != "" {
			if err := writeOverlay(*imagesDir, imgDir, preds.Image, c, float32(*alpha)); err != nil {
				imgLog.WithError(err).Warn("Overlay render failed")
			}
		}

		rel := filepath.ToSlash(filepath.Join("mask_images", preds.Image, "composite.png"))
		summary[preds.Image] = export.BuildImageMaskSummary(c, rel)

		for _, sp := range c.Summary() {
			imgLog.Infof("  %s: %d tiles, %d px, max conf %.4f",
				sp.ScientificName, sp.Tiles, sp.Pixels, sp.MaxConfidence)
		}
	}

	summaryPath := filepath.Join(*outDir, "mask_summary.json")

	if err := export.WriteMaskSummary(summaryPath, summary); err != nil {
		log.Fatalf("Error writing mask summary: %v", err)
	}

	log.Infof("Composite masks for %d image(s), summary saved to %s", len(summary), summaryPath)
}

// writeOverlay blends the composite over the source photo and writes it
// next to the mask artifacts
func writeOverlay(imagesDir, outDir, imageName string, c *resolve.Composite, alpha float32) error {

	srcPath := filepath.Join(imagesDir, imageName)
	img := gocv.IMRead(srcPath, gocv.IMReadColor)

	if img.Empty() {
		return fmt.Errorf("could not read source image %s", srcPath)
	}

	defer img.Close()

	if err := render.Overlay(&img, c, alpha); err != nil {
		return err
	}

	render.OverlayLabels(&img, c, render.DefaultFont())

	outPath := filepath.Join(outDir, "overlay.jpg")

	if ok := gocv.IMWrite(outPath, img); !ok {
		return fmt.Errorf("failed to write %s", outPath)
	}

	return nil
}
