package export

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/florascan/tilemask"
	"github.com/florascan/tilemask/resolve"
)

// DataRowRef identifies the platform data row an annotation attaches to
type DataRowRef struct {
	GlobalKey string `json:"globalKey"`
}

// BBox is an axis aligned bounding box in platform coordinates
type BBox struct {
	Top    int `json:"top"`
	Left   int `json:"left"`
	Height int `json:"height"`
	Width  int `json:"width"`
}

// Point is one polygon vertex
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Answer is a radio classification answer
type Answer struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Classification is a nested radio classification on an object annotation
type Classification struct {
	Name   string `json:"name"`
	Answer Answer `json:"answer"`
}

// MaskRef points an object annotation at a region of the composite mask
// image by its legend color
type MaskRef struct {
	Path     string   `json:"png"`
	ColorRGB [3]uint8 `json:"colorRGB"`
}

// AnnotationRow is one NDJSON import record.  Exactly one of Answer, BBox,
// Polygon or Mask is set depending on the annotation kind.
type AnnotationRow struct {
	UUID            string           `json:"uuid"`
	DataRow         DataRowRef       `json:"dataRow"`
	Name            string           `json:"name"`
	Confidence      float64          `json:"confidence,omitempty"`
	Answer          *Answer          `json:"answer,omitempty"`
	BBox            *BBox            `json:"bbox,omitempty"`
	Polygon         []Point          `json:"polygon,omitempty"`
	Mask            *MaskRef         `json:"mask,omitempty"`
	Classifications []Classification `json:"classifications,omitempty"`
}

// Exporter builds annotation rows against a fixed species catalog
type Exporter struct {
	catalog *tilemask.Catalog
}

// NewExporter returns an Exporter for the given catalog
func NewExporter(catalog *tilemask.Catalog) *Exporter {
	return &Exporter{catalog: catalog}
}

// speciesClassification builds the nested species radio answer attached to
// every object annotation
func speciesClassification(sum resolve.SpeciesSummary) Classification {
	return Classification{
		Name: "species",
		Answer: Answer{
			Name:  sum.ScientificName,
			Value: sum.GBIFID,
		},
	}
}

// ClassificationRows exports one global radio classification per species
// present on the image, carrying the max tile confidence
func (e *Exporter) ClassificationRows(globalKey string,
	summaries []resolve.SpeciesSummary) []AnnotationRow {

	rows := make([]AnnotationRow, 0, len(summaries))

	for _, sum := range summaries {
		rows = append(rows, AnnotationRow{
			UUID:       uuid.Must(uuid.NewV4()).String(),
			DataRow:    DataRowRef{GlobalKey: globalKey},
			Name:       "species",
			Confidence: sum.MaxConfidence,
			Answer: &Answer{
				Name:  sum.ScientificName,
				Value: sum.GBIFID,
			},
		})
	}

	return rows
}

// ObjectRows exports one object annotation per merged tile region of each
// species: the union polygon of the species tiles plus its bounding box,
// with the species as a nested classification
func (e *Exporter) ObjectRows(globalKey string, preds []resolve.TilePrediction,
	summaries []resolve.SpeciesSummary) ([]AnnotationRow, error) {

	var rows []AnnotationRow

	for _, sum := range summaries {
		polys, err := SpeciesPolygons(preds, sum.SpeciesID)

		if err != nil {
			return nil, err
		}

		for _, poly := range polys {
			b := poly.Bounds()

			points := make([]Point, 0, len(poly))
			for _, pt := range poly {
				points = append(points, Point{X: pt.X, Y: pt.Y})
			}

			rows = append(rows, AnnotationRow{
				UUID:       uuid.Must(uuid.NewV4()).String(),
				DataRow:    DataRowRef{GlobalKey: globalKey},
				Name:       "Plant",
				Confidence: sum.MaxConfidence,
				BBox: &BBox{
					Top:    b.Min.Y,
					Left:   b.Min.X,
					Height: b.Dy(),
					Width:  b.Dx(),
				},
				Polygon:         points,
				Classifications: []Classification{speciesClassification(sum)},
			})
		}
	}

	return rows, nil
}

// MaskRows exports one mask object annotation per species, each referencing
// its legend color inside the shared composite mask image
func (e *Exporter) MaskRows(globalKey, maskPath string,
	c *resolve.Composite) []AnnotationRow {

	summaries := c.Summary()
	rows := make([]AnnotationRow, 0, len(summaries))

	for _, sum := range summaries {
		clr, _ := e.catalog.Color(sum.SpeciesID)

		rows = append(rows, AnnotationRow{
			UUID:       uuid.Must(uuid.NewV4()).String(),
			DataRow:    DataRowRef{GlobalKey: globalKey},
			Name:       "Plant",
			Confidence: sum.MaxConfidence,
			Mask: &MaskRef{
				Path:     maskPath,
				ColorRGB: [3]uint8{clr.R, clr.G, clr.B},
			},
			Classifications: []Classification{speciesClassification(sum)},
		})
	}

	return rows
}

// WriteNDJSON writes annotation rows to a file, one JSON object per line
func WriteNDJSON(file string, rows []AnnotationRow) error {

	f, err := os.Create(file)

	if err != nil {
		return errors.Wrapf(err, "creating %s", file)
	}

	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	for _, row := range rows {
		if err := enc.Encode(row); err != nil {
			return errors.Wrapf(err, "encoding row %s", row.UUID)
		}
	}

	return w.Flush()
}
