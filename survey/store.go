package survey

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// SavePredictions writes the prediction batch to a JSON file, one entry per
// source image
func SavePredictions(file string, preds []ImagePredictions) error {

	data, err := json.MarshalIndent(preds, "", "  ")

	if err != nil {
		return errors.Wrap(err, "encoding predictions")
	}

	if err := os.WriteFile(file, data, 0644); err != nil {
		return errors.Wrapf(err, "writing %s", file)
	}

	return nil
}

// LoadPredictions reads a prediction batch written by SavePredictions
func LoadPredictions(file string) ([]ImagePredictions, error) {

	data, err := os.ReadFile(file)

	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", file)
	}

	var preds []ImagePredictions

	if err := json.Unmarshal(data, &preds); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", file)
	}

	return preds, nil
}
