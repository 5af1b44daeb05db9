/*
export converts saved predictions and built masks into NDJSON import files
for the labeling platform: global species classifications, merged bounding
box objects with polygons, and composite mask segmentation records.
*/
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/florascan/tilemask"
	"github.com/florascan/tilemask/export"
	"github.com/florascan/tilemask/resolve"
	"github.com/florascan/tilemask/survey"
)

func main() {

	predsFile := flag.String("p", "output/predictions/predictions.json", "Predictions JSON from the survey step")
	summaryFile := flag.String("s", "output/masks/mask_summary.json", "Mask summary JSON from the buildmask step")
	catalogFile := flag.String("catalog", "output/species/species_list.csv", "Species catalog CSV")
	outDir := flag.String("o", "output/annotations", "Output directory")

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

	maskSummary, err := export.LoadMaskSummary(*summaryFile)

	if err != nil {
		log.WithError(err).Warn("No mask summary loaded, mask records will be skipped")
		maskSummary = export.MaskSummary{}
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Error creating output directory: %v", err)
	}

	resolver := resolve.NewResolver(catalog)
	exporter := export.NewExporter(catalog)

	var classRows, objectRows, maskRows []export.AnnotationRow

	for _, preds := range batch {

		imgLog := log.WithField("image", preds.Image)

		tilePreds := preds.TilePredictions()
		c, err := resolver.Resolve(preds.Width, preds.Height, tilePreds)

		if err != nil {
			imgLog.WithError(err).Warn("Skipping image, resolution failed")
			continue
		}

		summaries := c.Summary()

		classRows = append(classRows, exporter.ClassificationRows(preds.Image, summaries)...)

		objects, err := exporter.ObjectRows(preds.Image, tilePreds, summaries)

		if err != nil {
			imgLog.WithError(err).Warn("Skipping object export")
		} else {
			objectRows = append(objectRows, objects...)
		}

		if entry, ok := maskSummary[preds.Image]; ok {
			maskRows = append(maskRows, exporter.MaskRows(preds.Image, entry.CompositeMaskPath, c)...)
		}
	}

	outputs := map[string][]export.AnnotationRow{
		"classifications.ndjson": classRows,
		"boxes.ndjson":           objectRows,
		"masks.ndjson":           maskRows,
	}

	for name, rows := range outputs {
		path := filepath.Join(*outDir, name)

		if err := export.WriteNDJSON(path, rows); err != nil {
			log.Fatalf("Error writing %s: %v", path, err)
		}

		log.Infof("Wrote %d row(s) to %s", len(rows), path)
	}
}
